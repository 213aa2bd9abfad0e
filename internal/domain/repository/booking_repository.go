package repository

import (
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(db *gorm.DB, booking *entity.Booking) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindAll(db *gorm.DB, filter *entity.BookingFilter) ([]entity.Booking, int64, error)
	Update(db *gorm.DB, booking *entity.Booking) error
	Delete(db *gorm.DB, id uuid.UUID) error

	// SumActiveParticipants totals number_of_participants over pending and
	// confirmed bookings of a target, skipping excludeID when given.
	SumActiveParticipants(db *gorm.DB, bookingType entity.BookingType, targetID uuid.UUID, excludeID *uuid.UUID) (int, error)
	CountActiveByTarget(db *gorm.DB, bookingType entity.BookingType, targetID uuid.UUID) (int64, error)
	FindActiveByUserAndWorkshop(db *gorm.DB, userID, workshopID uuid.UUID) (*entity.Booking, error)
}
