package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CustomerDetailsRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

type CreateBookingRequest struct {
	BookingType          string                 `json:"booking_type" validate:"required,oneof=event service workshop"`
	EventID              *uuid.UUID             `json:"event_id" validate:"required_if=BookingType event"`
	ServiceID            *uuid.UUID             `json:"service_id" validate:"required_if=BookingType service"`
	WorkshopID           *uuid.UUID             `json:"workshop_id" validate:"required_if=BookingType workshop"`
	Date                 string                 `json:"date" validate:"required,datetime=2006-01-02"`
	Time                 string                 `json:"time" validate:"required,max=20"`
	NumberOfParticipants *int                   `json:"number_of_participants" validate:"omitempty,min=1"`
	PaymentMethod        string                 `json:"payment_method" validate:"required,max=50"`
	CustomerDetails      CustomerDetailsRequest `json:"customer_details"`
	Notes                string                 `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateBookingRequest is a partial update; nil fields are left unchanged
type UpdateBookingRequest struct {
	Status               *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	PaymentStatus        *string `json:"payment_status" validate:"omitempty,oneof=pending paid refunded failed"`
	Notes                *string `json:"notes" validate:"omitempty,max=2000"`
	NumberOfParticipants *int    `json:"number_of_participants" validate:"omitempty,min=1"`
}

type BookingListQuery struct {
	Status      string
	BookingType string
	PageQuery
}

// Response DTOs

type CustomerDetailsResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type BookingResponse struct {
	ID                   uuid.UUID               `json:"id"`
	UserID               uuid.UUID               `json:"user_id"`
	BookingType          string                  `json:"booking_type"`
	EventID              *uuid.UUID              `json:"event_id,omitempty"`
	ServiceID            *uuid.UUID              `json:"service_id,omitempty"`
	WorkshopID           *uuid.UUID              `json:"workshop_id,omitempty"`
	Date                 string                  `json:"date"`
	Time                 string                  `json:"time"`
	Status               string                  `json:"status"`
	PaymentStatus        string                  `json:"payment_status"`
	PaymentMethod        string                  `json:"payment_method"`
	NumberOfParticipants int                     `json:"number_of_participants"`
	TotalPrice           string                  `json:"total_price"`
	Duration             string                  `json:"duration,omitempty"`
	CustomerDetails      CustomerDetailsResponse `json:"customer_details"`
	Notes                string                  `json:"notes,omitempty"`
	BookingDate          time.Time               `json:"booking_date"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`

	User     *UserResponse     `json:"user,omitempty"`
	Event    *EventResponse    `json:"event,omitempty"`
	Service  *ServiceResponse  `json:"service,omitempty"`
	Workshop *WorkshopResponse `json:"workshop,omitempty"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int64             `json:"total"`
}

// DeletedResponse is returned by delete endpoints
type DeletedResponse struct {
	ID uuid.UUID `json:"id"`
}

// CapacityExceededDetails explains a rejected booking to the client
type CapacityExceededDetails struct {
	CurrentCount int `json:"current_count"`
	Requested    int `json:"requested"`
	Limit        int `json:"limit"`
}
