package repository

import (
	"errors"

	"makerspace-booking/internal/domain/entity"
	domainRepo "makerspace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(db *gorm.DB, booking *entity.Booking) error {
	return db.Omit(clause.Associations).Create(booking).Error
}

func (r *bookingRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := withTargets(db).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the booking row until the transaction ends
func (r *bookingRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindAll(db *gorm.DB, filter *entity.BookingFilter) ([]entity.Booking, int64, error) {
	query := db.Model(&entity.Booking{})
	if filter != nil {
		if filter.UserID != nil {
			query = query.Where("user_id = ?", *filter.UserID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.BookingType != "" {
			query = query.Where("booking_type = ?", filter.BookingType)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []entity.Booking
	query = withTargets(query).Order("created_at DESC")
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset())
	}
	if err := query.Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Update writes the booking's own columns; preloaded targets are left untouched
func (r *bookingRepository) Update(db *gorm.DB, booking *entity.Booking) error {
	return db.Omit(clause.Associations).Save(booking).Error
}

func (r *bookingRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Where("id = ?", id).Delete(&entity.Booking{}).Error
}

func (r *bookingRepository) SumActiveParticipants(db *gorm.DB, bookingType entity.BookingType, targetID uuid.UUID, excludeID *uuid.UUID) (int, error) {
	var total int
	query := db.Model(&entity.Booking{}).
		Select("COALESCE(SUM(number_of_participants), 0)").
		Where(bookingType.ReferenceColumn()+" = ?", targetID).
		Where("status IN ?", entity.ActiveBookingStatuses)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *bookingRepository) CountActiveByTarget(db *gorm.DB, bookingType entity.BookingType, targetID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Booking{}).
		Where(bookingType.ReferenceColumn()+" = ?", targetID).
		Where("status IN ?", entity.ActiveBookingStatuses).
		Count(&count).Error
	return count, err
}

func (r *bookingRepository) FindActiveByUserAndWorkshop(db *gorm.DB, userID, workshopID uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.Where("user_id = ? AND workshop_id = ? AND status IN ?", userID, workshopID, entity.ActiveBookingStatuses).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func withTargets(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Event").Preload("Service").Preload("Workshop", withBookedParticipants)
}
