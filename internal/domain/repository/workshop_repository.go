package repository

import (
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkshopRepository interface {
	Create(db *gorm.DB, workshop *entity.Workshop) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Workshop, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Workshop, error)
	FindAll(db *gorm.DB, filter *entity.SessionFilter) ([]entity.Workshop, int64, error)
	Update(db *gorm.DB, workshop *entity.Workshop) error
	Delete(db *gorm.DB, id uuid.UUID) error

	// Roster
	AddParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error
	RemoveParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error
}
