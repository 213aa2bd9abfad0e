package repository

import (
	"context"

	domainRepo "makerspace-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) Conn(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

// WithinTransaction commits when fn returns nil and rolls back otherwise
func (t *transactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
