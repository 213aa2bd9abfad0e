package repository

import (
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(db *gorm.DB, category *entity.Category) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Category, error)
	FindAll(db *gorm.DB) ([]entity.Category, error)
	Delete(db *gorm.DB, id uuid.UUID) error
}
