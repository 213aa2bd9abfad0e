package service

import (
	"context"
	"time"

	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Routing keys of booking lifecycle messages
const (
	BookingEventCreated   = "booking.created"
	BookingEventUpdated   = "booking.updated"
	BookingEventCancelled = "booking.cancelled"
	BookingEventDeleted   = "booking.deleted"
)

// MessagePublisher is satisfied by rabbitmq.Publisher
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// BookingMessage is the body of every booking.* message
type BookingMessage struct {
	BookingID            uuid.UUID `json:"booking_id"`
	UserID               uuid.UUID `json:"user_id"`
	BookingType          string    `json:"booking_type"`
	TargetID             uuid.UUID `json:"target_id"`
	Status               string    `json:"status"`
	PaymentStatus        string    `json:"payment_status"`
	NumberOfParticipants int       `json:"number_of_participants"`
	TotalPrice           string    `json:"total_price"`
	OccurredAt           time.Time `json:"occurred_at"`
}

// BookingEventPublisher announces committed booking changes. Delivery is
// best-effort: failures are logged and never reach the caller.
type BookingEventPublisher interface {
	Publish(ctx context.Context, routingKey string, booking *entity.Booking)
}

type bookingEventPublisher struct {
	publisher MessagePublisher
	log       *logrus.Logger
}

// NewBookingEventPublisher wraps publisher; a nil publisher disables messaging.
func NewBookingEventPublisher(publisher MessagePublisher, log *logrus.Logger) BookingEventPublisher {
	return &bookingEventPublisher{
		publisher: publisher,
		log:       log,
	}
}

func NewBookingMessage(booking *entity.Booking) BookingMessage {
	return BookingMessage{
		BookingID:            booking.ID,
		UserID:               booking.UserID,
		BookingType:          string(booking.BookingType),
		TargetID:             booking.TargetID(),
		Status:               string(booking.Status),
		PaymentStatus:        string(booking.PaymentStatus),
		NumberOfParticipants: booking.NumberOfParticipants,
		TotalPrice:           booking.TotalPrice.StringFixed(2),
		OccurredAt:           time.Now().UTC(),
	}
}

func (p *bookingEventPublisher) Publish(ctx context.Context, routingKey string, booking *entity.Booking) {
	if p.publisher == nil || booking == nil {
		return
	}

	if err := p.publisher.Publish(ctx, routingKey, NewBookingMessage(booking)); err != nil {
		p.log.Warnf("Failed to publish %s for booking %s: %+v", routingKey, booking.ID, err)
		return
	}
	p.log.Debugf("Published %s for booking %s", routingKey, booking.ID)
}
