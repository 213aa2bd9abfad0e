package repository

import (
	"errors"

	"makerspace-booking/internal/domain/entity"
	domainRepo "makerspace-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

// Create runs in a savepoint when db is already a transaction, so a failed
// insert leaves the caller's transaction usable.
func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User").Create(log).Error
	})
}

func (r *auditLogRepository) FindAll(db *gorm.DB, page entity.Pagination) ([]entity.AuditLog, int64, error) {
	var total int64
	if err := db.Model(&entity.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []entity.AuditLog
	query := db.Preload("User.Role").Order("created_at DESC, id DESC")
	if page.Limit > 0 {
		query = query.Limit(page.Limit).Offset(page.Offset())
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *auditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := db.Preload("User.Role").Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}
