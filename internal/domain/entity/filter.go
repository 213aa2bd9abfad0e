package entity

import "github.com/google/uuid"

// Pagination is a 1-based page request
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the row offset of the page
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// BookingFilter narrows booking listings.
// Used by repository layer to avoid coupling with delivery DTOs.
type BookingFilter struct {
	UserID      *uuid.UUID
	Status      BookingStatus
	BookingType BookingType
	Pagination
}

// SessionFilter narrows event and workshop listings
type SessionFilter struct {
	CategoryID   *uuid.UUID
	HostID       *uuid.UUID
	Status       SessionStatus
	UpcomingOnly bool
	Pagination
}
