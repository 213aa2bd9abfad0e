package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Workshop is a hosted session with a participant roster.
// The roster mirrors users holding an active booking and is written only by
// the booking lifecycle.
type Workshop struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	HostID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"host_id"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Title           string          `gorm:"type:varchar(255);not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	Location        string          `gorm:"type:varchar(255)" json:"location,omitempty"`
	Date            time.Time       `gorm:"type:date;not null;index" json:"date"`
	Time            string          `gorm:"type:varchar(20);not null" json:"time"`
	Duration        string          `gorm:"type:varchar(50);not null" json:"duration"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	MaxParticipants int             `gorm:"not null" json:"max_participants"`
	Status          SessionStatus   `gorm:"type:varchar(20);not null;default:'upcoming';index" json:"status"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Participant sum of active bookings; read-only, selected by the repository
	BookedParticipants int `gorm:"->;-:migration" json:"booked_participants"`

	// Relationships
	Host         *User                 `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Category     *Category             `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Participants []WorkshopParticipant `gorm:"foreignKey:WorkshopID" json:"participants,omitempty"`
}

func (Workshop) TableName() string {
	return "workshops"
}

func (w *Workshop) TargetType() BookingType      { return BookingTypeWorkshop }
func (w *Workshop) TargetID() uuid.UUID          { return w.ID }
func (w *Workshop) CapacityLimit() int           { return w.MaxParticipants }
func (w *Workshop) UnitPrice() decimal.Decimal   { return w.Price }
func (w *Workshop) IsHostedBy(id uuid.UUID) bool { return w.HostID == id }

// IsOpenForRegistration reports whether bookings may be created or cancelled
func (w *Workshop) IsOpenForRegistration() bool {
	return w.Status == SessionStatusUpcoming
}

// Occupancy counts seats the same way the capacity guard does: participants
// held by active bookings, not roster entries.
func (w *Workshop) Occupancy() Capacity {
	return Capacity{CurrentCount: w.BookedParticipants, Limit: w.MaxParticipants}
}

func (w *Workshop) IsFull() bool {
	return w.Occupancy().IsFull()
}

// IsUpcoming reports whether the workshop is still scheduled and in the future
func (w *Workshop) IsUpcoming(now time.Time) bool {
	return w.Status == SessionStatusUpcoming && w.Date.After(now)
}

// ParticipantIDs returns roster user IDs in registration order
func (w *Workshop) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(w.Participants))
	for i, p := range w.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// WorkshopParticipant is one roster entry; ID gives registration order
type WorkshopParticipant struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkshopID uuid.UUID `gorm:"type:uuid;not null;index" json:"workshop_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (WorkshopParticipant) TableName() string {
	return "workshop_participants"
}
