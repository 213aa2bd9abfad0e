package usecase

import (
	"makerspace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationGuard enforces one active booking per user and workshop.
// Events and services deliberately allow repeat bookings.
type RegistrationGuard interface {
	HasActiveRegistration(db *gorm.DB, userID, workshopID uuid.UUID) (bool, error)
}

type registrationGuard struct {
	bookingRepo repository.BookingRepository
}

func NewRegistrationGuard(bookingRepo repository.BookingRepository) RegistrationGuard {
	return &registrationGuard{bookingRepo: bookingRepo}
}

func (g *registrationGuard) HasActiveRegistration(db *gorm.DB, userID, workshopID uuid.UUID) (bool, error) {
	booking, err := g.bookingRepo.FindActiveByUserAndWorkshop(db, userID, workshopID)
	if err != nil {
		return false, err
	}
	return booking != nil, nil
}
