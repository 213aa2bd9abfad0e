package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateEventRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Location    string     `json:"location" validate:"omitempty,max=255"`
	Date        string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string     `json:"time" validate:"required,max=20"`
	Price       *float64   `json:"price" validate:"required,gte=0"`
	Capacity    int        `json:"capacity" validate:"required,min=1"`
}

type UpdateEventRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
	Date        *string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        *string    `json:"time" validate:"omitempty,max=20"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1"`
	Status      *string    `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

type CreateWorkshopRequest struct {
	CategoryID      *uuid.UUID `json:"category_id"`
	Title           string     `json:"title" validate:"required,max=255"`
	Description     string     `json:"description" validate:"omitempty,max=5000"`
	Location        string     `json:"location" validate:"omitempty,max=255"`
	Date            string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string     `json:"time" validate:"required,max=20"`
	Duration        string     `json:"duration" validate:"required,max=50"`
	Price           *float64   `json:"price" validate:"required,gte=0"`
	MaxParticipants int        `json:"max_participants" validate:"required,min=1"`
}

type UpdateWorkshopRequest struct {
	CategoryID      *uuid.UUID `json:"category_id"`
	Title           *string    `json:"title" validate:"omitempty,max=255"`
	Description     *string    `json:"description" validate:"omitempty,max=5000"`
	Location        *string    `json:"location" validate:"omitempty,max=255"`
	Date            *string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time            *string    `json:"time" validate:"omitempty,max=20"`
	Duration        *string    `json:"duration" validate:"omitempty,max=50"`
	Price           *float64   `json:"price" validate:"omitempty,gte=0"`
	MaxParticipants *int       `json:"max_participants" validate:"omitempty,min=1"`
	Status          *string    `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

// SessionListQuery filters event and workshop listings
type SessionListQuery struct {
	CategoryID   *uuid.UUID
	Status       string
	UpcomingOnly bool
	PageQuery
}

// Response DTOs

type EventResponse struct {
	ID          uuid.UUID         `json:"id"`
	HostID      uuid.UUID         `json:"host_id"`
	CategoryID  *uuid.UUID        `json:"category_id,omitempty"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Location    string            `json:"location,omitempty"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Price       string            `json:"price"`
	Capacity    int               `json:"capacity"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Total  int64           `json:"total"`
}

type WorkshopResponse struct {
	ID                 uuid.UUID         `json:"id"`
	HostID             uuid.UUID         `json:"host_id"`
	CategoryID         *uuid.UUID        `json:"category_id,omitempty"`
	Category           *CategoryResponse `json:"category,omitempty"`
	Title              string            `json:"title"`
	Description        string            `json:"description,omitempty"`
	Location           string            `json:"location,omitempty"`
	Date               string            `json:"date"`
	Time               string            `json:"time"`
	Duration           string            `json:"duration"`
	Price              string            `json:"price"`
	MaxParticipants    int               `json:"max_participants"`
	BookedParticipants int               `json:"booked_participants"`
	Status             string            `json:"status"`
	Participants       []uuid.UUID       `json:"participants"`
	IsFull             bool              `json:"is_full"`
	IsUpcoming         bool              `json:"is_upcoming"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type WorkshopListResponse struct {
	Workshops []WorkshopResponse `json:"workshops"`
	Total     int64              `json:"total"`
}
