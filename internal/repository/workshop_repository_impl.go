package repository

import (
	"errors"

	"makerspace-booking/internal/domain/entity"
	domainRepo "makerspace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type workshopRepository struct{}

func NewWorkshopRepository() domainRepo.WorkshopRepository {
	return &workshopRepository{}
}

func (r *workshopRepository) Create(db *gorm.DB, workshop *entity.Workshop) error {
	return db.Omit(clause.Associations).Create(workshop).Error
}

func (r *workshopRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Workshop, error) {
	var workshop entity.Workshop
	err := db.Scopes(withBookedParticipants).
		Preload("Host").Preload("Category").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("workshop_participants.id ASC")
		}).
		Where("workshops.id = ?", id).First(&workshop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &workshop, nil
}

// FindByIDForUpdate locks the workshop row. Neither the roster nor
// BookedParticipants is loaded.
func (r *workshopRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Workshop, error) {
	var workshop entity.Workshop
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&workshop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &workshop, nil
}

func (r *workshopRepository) FindAll(db *gorm.DB, filter *entity.SessionFilter) ([]entity.Workshop, int64, error) {
	query := applySessionFilter(db.Model(&entity.Workshop{}), "workshops", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var workshops []entity.Workshop
	query = query.Scopes(withBookedParticipants).
		Preload("Category").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("workshop_participants.id ASC")
		}).
		Order("date ASC, time ASC")
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset())
	}
	if err := query.Find(&workshops).Error; err != nil {
		return nil, 0, err
	}
	return workshops, total, nil
}

func (r *workshopRepository) Update(db *gorm.DB, workshop *entity.Workshop) error {
	return db.Omit(clause.Associations).Save(workshop).Error
}

func (r *workshopRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	if err := db.Where("workshop_id = ?", id).Delete(&entity.WorkshopParticipant{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&entity.Workshop{}).Error
}

// AddParticipant appends userID to the roster unless it is already present
func (r *workshopRepository) AddParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error {
	var count int64
	err := db.Model(&entity.WorkshopParticipant{}).
		Where("workshop_id = ? AND user_id = ?", workshopID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&entity.WorkshopParticipant{WorkshopID: workshopID, UserID: userID}).Error
}

// RemoveParticipant deletes every roster entry of userID
func (r *workshopRepository) RemoveParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error {
	return db.Where("workshop_id = ? AND user_id = ?", workshopID, userID).
		Delete(&entity.WorkshopParticipant{}).Error
}

// withBookedParticipants adds the participant sum of active bookings as
// booked_participants, the figure the capacity guard compares against.
func withBookedParticipants(db *gorm.DB) *gorm.DB {
	return db.Select(
		"workshops.*, (SELECT COALESCE(SUM(b.number_of_participants), 0) FROM bookings b "+
			"WHERE b.workshop_id = workshops.id AND b.status IN ?) AS booked_participants",
		entity.ActiveBookingStatuses,
	)
}
