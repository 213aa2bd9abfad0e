package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands repositories the connection to run on: the pool for
// plain reads, or a transaction spanning a unit of work.
type Transactor interface {
	Conn(ctx context.Context) *gorm.DB
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
