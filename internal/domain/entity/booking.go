package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidBooking = errors.New("invalid booking")

// CustomerDetails is the contact snapshot taken when the booking is made
type CustomerDetails struct {
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"type:varchar(255);not null" json:"email"`
	Phone string `gorm:"type:varchar(30)" json:"phone,omitempty"`
}

// Booking is a user's reservation against exactly one event, service or workshop
type Booking struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingType          BookingType     `gorm:"type:varchar(20);not null;index" json:"booking_type"`
	EventID              *uuid.UUID      `gorm:"type:uuid;index" json:"event_id,omitempty"`
	ServiceID            *uuid.UUID      `gorm:"type:uuid;index" json:"service_id,omitempty"`
	WorkshopID           *uuid.UUID      `gorm:"type:uuid;index" json:"workshop_id,omitempty"`
	Date                 time.Time       `gorm:"type:date;not null" json:"date"`
	Time                 string          `gorm:"type:varchar(20);not null" json:"time"`
	Status               BookingStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus        PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentMethod        string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	NumberOfParticipants int             `gorm:"not null;default:1" json:"number_of_participants"`
	TotalPrice           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	Duration             string          `gorm:"type:varchar(50)" json:"duration,omitempty"`
	Customer             CustomerDetails `gorm:"embedded;embeddedPrefix:customer_" json:"customer_details"`
	Notes                string          `gorm:"type:text" json:"notes,omitempty"`
	BookingDate          time.Time       `gorm:"not null" json:"booking_date"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Event    *Event    `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Service  *Service  `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Workshop *Workshop `gorm:"foreignKey:WorkshopID" json:"workshop,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// TargetID returns the referenced event, service or workshop ID
func (b *Booking) TargetID() uuid.UUID {
	var ref *uuid.UUID
	switch b.BookingType {
	case BookingTypeEvent:
		ref = b.EventID
	case BookingTypeService:
		ref = b.ServiceID
	case BookingTypeWorkshop:
		ref = b.WorkshopID
	}
	if ref == nil {
		return uuid.Nil
	}
	return *ref
}

// SetTarget points the booking at id according to its BookingType
func (b *Booking) SetTarget(id uuid.UUID) {
	b.EventID, b.ServiceID, b.WorkshopID = nil, nil, nil
	switch b.BookingType {
	case BookingTypeEvent:
		b.EventID = &id
	case BookingTypeService:
		b.ServiceID = &id
	case BookingTypeWorkshop:
		b.WorkshopID = &id
	}
}

func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}

// TransitionTo moves the booking to next if the lifecycle allows it
func (b *Booking) TransitionTo(next BookingStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBooking, next)
	}
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, next)
	}
	b.Status = next
	return nil
}

// Validate checks the cross-field invariants that the schema alone cannot express
func (b *Booking) Validate() error {
	if b.UserID == uuid.Nil {
		return fmt.Errorf("%w: user is required", ErrInvalidBooking)
	}
	if !b.BookingType.IsValid() {
		return fmt.Errorf("%w: unknown booking type %q", ErrInvalidBooking, b.BookingType)
	}

	refs := map[BookingType]*uuid.UUID{
		BookingTypeEvent:    b.EventID,
		BookingTypeService:  b.ServiceID,
		BookingTypeWorkshop: b.WorkshopID,
	}
	for t, ref := range refs {
		if t == b.BookingType && (ref == nil || *ref == uuid.Nil) {
			return fmt.Errorf("%w: %s booking requires %s", ErrInvalidBooking, t, t.ReferenceColumn())
		}
		if t != b.BookingType && ref != nil {
			return fmt.Errorf("%w: %s booking must not set %s", ErrInvalidBooking, b.BookingType, t.ReferenceColumn())
		}
	}

	if b.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidBooking)
	}
	if strings.TrimSpace(b.Time) == "" {
		return fmt.Errorf("%w: time is required", ErrInvalidBooking)
	}
	if !b.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidBooking, b.Status)
	}
	if !b.PaymentStatus.IsValid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidBooking, b.PaymentStatus)
	}
	if b.NumberOfParticipants < 1 {
		return fmt.Errorf("%w: number of participants must be at least 1", ErrInvalidBooking)
	}
	if b.TotalPrice.IsNegative() {
		return fmt.Errorf("%w: total price must not be negative", ErrInvalidBooking)
	}
	if b.BookingType != BookingTypeEvent && strings.TrimSpace(b.Duration) == "" {
		return fmt.Errorf("%w: duration is required for %s bookings", ErrInvalidBooking, b.BookingType)
	}
	if strings.TrimSpace(b.Customer.Name) == "" || strings.TrimSpace(b.Customer.Email) == "" {
		return fmt.Errorf("%w: customer name and email are required", ErrInvalidBooking)
	}
	return nil
}

// ComputeTotalPrice prices a booking. Services charge a flat price;
// events and workshops charge per participant.
func ComputeTotalPrice(bookingType BookingType, unitPrice decimal.Decimal, participants int) decimal.Decimal {
	if bookingType == BookingTypeService {
		return unitPrice
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(participants)))
}
