package entity

import (
	"errors"
	"fmt"
)

var ErrInvalidStatusTransition = errors.New("invalid booking status transition")

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ActiveBookingStatuses hold capacity and count toward duplicate checks
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// CanTransitionTo reports whether next is reachable from s.
// Staying in the same status is always allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return status, nil
}

// PaymentStatus moves independently of BookingStatus
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %q", s)
	}
	return status, nil
}

// BookingType selects which target a booking references
type BookingType string

const (
	BookingTypeEvent    BookingType = "event"
	BookingTypeService  BookingType = "service"
	BookingTypeWorkshop BookingType = "workshop"
)

func (t BookingType) IsValid() bool {
	switch t {
	case BookingTypeEvent, BookingTypeService, BookingTypeWorkshop:
		return true
	}
	return false
}

// IsCapacityLimited reports whether the target type has a participant limit
func (t BookingType) IsCapacityLimited() bool {
	return t == BookingTypeEvent || t == BookingTypeWorkshop
}

// ReferenceColumn is the bookings column holding the target ID
func (t BookingType) ReferenceColumn() string {
	switch t {
	case BookingTypeEvent:
		return "event_id"
	case BookingTypeService:
		return "service_id"
	case BookingTypeWorkshop:
		return "workshop_id"
	}
	return ""
}

func ParseBookingType(s string) (BookingType, error) {
	t := BookingType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid booking type: %q", s)
	}
	return t, nil
}
