package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a hosted session whose capacity is checked against live booking counts
type Event struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HostID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"host_id"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Location    string          `gorm:"type:varchar(255)" json:"location,omitempty"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Time        string          `gorm:"type:varchar(20);not null" json:"time"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Capacity    int             `gorm:"not null" json:"capacity"`
	Status      SessionStatus   `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Host     *User     `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) TargetType() BookingType      { return BookingTypeEvent }
func (e *Event) TargetID() uuid.UUID          { return e.ID }
func (e *Event) CapacityLimit() int           { return e.Capacity }
func (e *Event) UnitPrice() decimal.Decimal   { return e.Price }
func (e *Event) IsHostedBy(id uuid.UUID) bool { return e.HostID == id }

// IsOpenForRegistration reports whether bookings may be created or resized
func (e *Event) IsOpenForRegistration() bool {
	return e.Status == SessionStatusUpcoming
}
