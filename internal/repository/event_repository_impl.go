package repository

import (
	"errors"
	"time"

	"makerspace-booking/internal/domain/entity"
	domainRepo "makerspace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventRepository struct{}

func NewEventRepository() domainRepo.EventRepository {
	return &eventRepository{}
}

func (r *eventRepository) Create(db *gorm.DB, event *entity.Event) error {
	return db.Omit(clause.Associations).Create(event).Error
}

func (r *eventRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := db.Preload("Host").Preload("Category").Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given transaction.
// Bookings against the same event serialize on this lock.
func (r *eventRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll(db *gorm.DB, filter *entity.SessionFilter) ([]entity.Event, int64, error) {
	query := applySessionFilter(db.Model(&entity.Event{}), "events", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []entity.Event
	query = query.Preload("Category").Order("date ASC, time ASC")
	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset())
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(db *gorm.DB, event *entity.Event) error {
	return db.Omit(clause.Associations).Save(event).Error
}

func (r *eventRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Where("id = ?", id).Delete(&entity.Event{}).Error
}

// applySessionFilter is shared by the event and workshop listings
func applySessionFilter(query *gorm.DB, table string, filter *entity.SessionFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.CategoryID != nil {
		query = query.Where(table+".category_id = ?", *filter.CategoryID)
	}
	if filter.HostID != nil {
		query = query.Where(table+".host_id = ?", *filter.HostID)
	}
	if filter.Status != "" {
		query = query.Where(table+".status = ?", filter.Status)
	}
	if filter.UpcomingOnly {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		query = query.Where(table+".status = ? AND "+table+".date >= ?", entity.SessionStatusUpcoming, today)
	}
	return query
}
