package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateServiceRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	Price       *float64   `json:"price" validate:"required,gte=0"`
	Duration    string     `json:"duration" validate:"required,max=50"`
	IsActive    *bool      `json:"is_active"`
}

type UpdateServiceRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	Duration    *string    `json:"duration" validate:"omitempty,max=50"`
	IsActive    *bool      `json:"is_active"`
}

// Response DTOs

type ServiceResponse struct {
	ID          uuid.UUID         `json:"id"`
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Price       string            `json:"price"`
	Duration    string            `json:"duration"`
	IsActive    bool              `json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Total    int               `json:"total"`
}
