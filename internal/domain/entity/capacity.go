package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookableTarget is a capacity-limited booking target (event or workshop)
type BookableTarget interface {
	TargetType() BookingType
	TargetID() uuid.UUID
	CapacityLimit() int
	UnitPrice() decimal.Decimal
}

// Capacity is the occupancy of a target: participants held by active
// bookings against its limit.
type Capacity struct {
	CurrentCount int `json:"current_count"`
	Limit        int `json:"limit"`
}

// Admits reports whether adding requested participants stays within the limit
func (c Capacity) Admits(requested int) bool {
	return c.CurrentCount+requested <= c.Limit
}

func (c Capacity) Remaining() int {
	if c.CurrentCount >= c.Limit {
		return 0
	}
	return c.Limit - c.CurrentCount
}

func (c Capacity) IsFull() bool {
	return c.CurrentCount >= c.Limit
}
