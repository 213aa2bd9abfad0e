package usecase

import (
	"makerspace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ParticipantRoster maintains the workshop roster alongside booking writes
type ParticipantRoster interface {
	AddParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error
	RemoveParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error
}

type participantRoster struct {
	log          *logrus.Logger
	workshopRepo repository.WorkshopRepository
}

func NewParticipantRoster(log *logrus.Logger, workshopRepo repository.WorkshopRepository) ParticipantRoster {
	return &participantRoster{
		log:          log,
		workshopRepo: workshopRepo,
	}
}

// AddParticipant is a no-op when the user is already listed
func (r *participantRoster) AddParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error {
	if err := r.workshopRepo.AddParticipant(db, workshopID, userID); err != nil {
		r.log.Warnf("Failed to add user %s to workshop %s roster: %+v", userID, workshopID, err)
		return err
	}
	return nil
}

// RemoveParticipant drops every entry of the user
func (r *participantRoster) RemoveParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error {
	if err := r.workshopRepo.RemoveParticipant(db, workshopID, userID); err != nil {
		r.log.Warnf("Failed to remove user %s from workshop %s roster: %+v", userID, workshopID, err)
		return err
	}
	return nil
}
