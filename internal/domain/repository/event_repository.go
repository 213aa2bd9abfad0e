package repository

import (
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository interface {
	Create(db *gorm.DB, event *entity.Event) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Event, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Event, error)
	FindAll(db *gorm.DB, filter *entity.SessionFilter) ([]entity.Event, int64, error)
	Update(db *gorm.DB, event *entity.Event) error
	Delete(db *gorm.DB, id uuid.UUID) error
}
