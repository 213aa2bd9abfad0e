package repository

import (
	"errors"

	"makerspace-booking/internal/domain/entity"
	domainRepo "makerspace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct{}

func NewCategoryRepository() domainRepo.CategoryRepository {
	return &categoryRepository{}
}

func (r *categoryRepository) Create(db *gorm.DB, category *entity.Category) error {
	return db.Create(category).Error
}

func (r *categoryRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	err := db.Where("id = ?", id).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(db *gorm.DB) ([]entity.Category, error) {
	var categories []entity.Category
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Where("id = ?", id).Delete(&entity.Category{}).Error
}
