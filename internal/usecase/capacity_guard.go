package usecase

import (
	"errors"
	"fmt"

	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrEventNotFound      = errors.New("event not found")
	ErrWorkshopNotFound   = errors.New("workshop not found")
	ErrInvalidBookingType = errors.New("booking type has no capacity limit")
)

// CapacityExceededError carries the numbers behind a rejection
type CapacityExceededError struct {
	CurrentCount int
	Requested    int
	Limit        int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: %d of %d places taken, %d requested", e.CurrentCount, e.Limit, e.Requested)
}

func (e *CapacityExceededError) Unwrap() error {
	return ErrCapacityExceeded
}

type CapacityCheck struct {
	Allowed bool
	entity.Capacity
}

// CapacityGuard decides whether a target can admit more participants.
// Occupancy is the participant sum of the target's pending and confirmed
// bookings. The guard only reads; callers that go on to write must run it
// inside the transaction that holds the target's row lock.
type CapacityGuard interface {
	CheckCapacity(db *gorm.DB, targetType entity.BookingType, targetID uuid.UUID, requested int, excludeBookingID *uuid.UUID) (*CapacityCheck, error)
	Check(db *gorm.DB, target entity.BookableTarget, requested int, excludeBookingID *uuid.UUID) (*CapacityCheck, error)
}

type capacityGuard struct {
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	eventRepo    repository.EventRepository
	workshopRepo repository.WorkshopRepository
}

func NewCapacityGuard(
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	workshopRepo repository.WorkshopRepository,
) CapacityGuard {
	return &capacityGuard{
		log:          log,
		bookingRepo:  bookingRepo,
		eventRepo:    eventRepo,
		workshopRepo: workshopRepo,
	}
}

// CheckCapacity resolves the target first, so a missing target is reported
// as not found rather than as a capacity result.
func (g *capacityGuard) CheckCapacity(db *gorm.DB, targetType entity.BookingType, targetID uuid.UUID, requested int, excludeBookingID *uuid.UUID) (*CapacityCheck, error) {
	var target entity.BookableTarget

	switch targetType {
	case entity.BookingTypeEvent:
		event, err := g.eventRepo.FindByID(db, targetID)
		if err != nil {
			g.log.Warnf("Failed to find event %s: %+v", targetID, err)
			return nil, err
		}
		if event == nil {
			return nil, ErrEventNotFound
		}
		target = event
	case entity.BookingTypeWorkshop:
		workshop, err := g.workshopRepo.FindByID(db, targetID)
		if err != nil {
			g.log.Warnf("Failed to find workshop %s: %+v", targetID, err)
			return nil, err
		}
		if workshop == nil {
			return nil, ErrWorkshopNotFound
		}
		target = workshop
	default:
		return nil, ErrInvalidBookingType
	}

	return g.Check(db, target, requested, excludeBookingID)
}

func (g *capacityGuard) Check(db *gorm.DB, target entity.BookableTarget, requested int, excludeBookingID *uuid.UUID) (*CapacityCheck, error) {
	current, err := g.bookingRepo.SumActiveParticipants(db, target.TargetType(), target.TargetID(), excludeBookingID)
	if err != nil {
		g.log.Warnf("Failed to count participants for %s %s: %+v", target.TargetType(), target.TargetID(), err)
		return nil, err
	}

	capacity := entity.Capacity{CurrentCount: current, Limit: target.CapacityLimit()}
	return &CapacityCheck{
		Allowed:  capacity.Admits(requested),
		Capacity: capacity,
	}, nil
}

// Reject converts a failed check into a CapacityExceededError
func (c *CapacityCheck) Reject(requested int) error {
	if c.Allowed {
		return nil
	}
	return &CapacityExceededError{
		CurrentCount: c.CurrentCount,
		Requested:    requested,
		Limit:        c.Limit,
	}
}
