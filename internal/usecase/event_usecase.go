package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"makerspace-booking/internal/converter"
	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/domain/repository"
	"makerspace-booking/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSessionHasBookings  = errors.New("session still has bookings")
	ErrCapacityBelowBooked = errors.New("capacity cannot be lower than the number of booked participants")
)

type EventUsecase interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEvent(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error)
	GetEvents(ctx context.Context, query dto.SessionListQuery) (*dto.EventListResponse, error)
	UpdateEvent(ctx context.Context, eventID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, eventID uuid.UUID) (*dto.DeletedResponse, error)
}

type eventUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	eventRepo         repository.EventRepository
	bookingRepo       repository.BookingRepository
	categoryRepo      repository.CategoryRepository
	capacityGuard     CapacityGuard
	auditService      service.AuditService
	availabilityCache service.AvailabilityCache
}

func NewEventUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	eventRepo repository.EventRepository,
	bookingRepo repository.BookingRepository,
	categoryRepo repository.CategoryRepository,
	capacityGuard CapacityGuard,
	auditService service.AuditService,
	availabilityCache service.AvailabilityCache,
) EventUsecase {
	return &eventUsecase{
		tx:                tx,
		log:               log,
		eventRepo:         eventRepo,
		bookingRepo:       bookingRepo,
		categoryRepo:      categoryRepo,
		capacityGuard:     capacityGuard,
		auditService:      auditService,
		availabilityCache: availabilityCache,
	}
}

func (u *eventUsecase) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !act.CanHost() {
		return nil, ErrForbidden
	}

	date, err := parseSessionDate(req.Date)
	if err != nil {
		return nil, err
	}

	event := &entity.Event{
		HostID:      act.UserID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        date,
		Time:        req.Time,
		Price:       priceFromFloat(*req.Price),
		Capacity:    req.Capacity,
		Status:      entity.SessionStatusUpcoming,
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := ensureCategory(tx, u.categoryRepo, event.CategoryID); err != nil {
			return err
		}
		if err := u.eventRepo.Create(tx, event); err != nil {
			u.log.Errorf("Failed to create event: %+v", err)
			return err
		}
		auditCreate(ctx, u.log, u.auditService, tx, act, entity.AuditActionEventCreate, "event", event.ID.String(), converter.EventToResponse(event))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Event created: id=%s, host=%s", event.ID, event.HostID)
	return u.GetEvent(ctx, event.ID)
}

func (u *eventUsecase) GetEvent(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error) {
	event, err := u.eventRepo.FindByID(u.tx.Conn(ctx), eventID)
	if err != nil {
		u.log.Warnf("Failed to find event %s: %+v", eventID, err)
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return converter.EventToResponse(event), nil
}

func (u *eventUsecase) GetEvents(ctx context.Context, query dto.SessionListQuery) (*dto.EventListResponse, error) {
	filter, err := sessionFilterFromQuery(query)
	if err != nil {
		return nil, err
	}

	events, total, err := u.eventRepo.FindAll(u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list events: %+v", err)
		return nil, err
	}

	return &dto.EventListResponse{
		Events: converter.EventsToResponses(events),
		Total:  total,
	}, nil
}

// UpdateEvent applies a partial update. Lowering the capacity is refused
// while more participants than the new value hold active bookings.
func (u *eventUsecase) UpdateEvent(ctx context.Context, eventID uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		event, err := u.eventRepo.FindByIDForUpdate(tx, eventID)
		if err != nil {
			u.log.Warnf("Failed to lock event %s: %+v", eventID, err)
			return err
		}
		if event == nil {
			return ErrEventNotFound
		}
		if !act.CanManage(event.HostID) {
			return ErrForbidden
		}
		before := converter.EventToResponse(event)

		if req.CategoryID != nil {
			if err := ensureCategory(tx, u.categoryRepo, req.CategoryID); err != nil {
				return err
			}
			event.CategoryID = req.CategoryID
		}
		if req.Title != nil {
			event.Title = *req.Title
		}
		if req.Description != nil {
			event.Description = *req.Description
		}
		if req.Location != nil {
			event.Location = *req.Location
		}
		if req.Date != nil {
			date, err := parseSessionDate(*req.Date)
			if err != nil {
				return err
			}
			event.Date = date
		}
		if req.Time != nil {
			event.Time = *req.Time
		}
		if req.Price != nil {
			event.Price = priceFromFloat(*req.Price)
		}
		if req.Status != nil {
			status, err := entity.ParseSessionStatus(*req.Status)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			event.Status = status
		}
		if req.Capacity != nil && *req.Capacity != event.Capacity {
			event.Capacity = *req.Capacity
			if err := ensureCapacityCoversBookings(tx, u.capacityGuard, event); err != nil {
				return err
			}
		}

		if err := u.eventRepo.Update(tx, event); err != nil {
			u.log.Errorf("Failed to update event %s: %+v", eventID, err)
			return err
		}
		auditUpdate(ctx, u.log, u.auditService, tx, act, entity.AuditActionEventUpdate, "event", eventID.String(), before, converter.EventToResponse(event))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.availabilityCache.Invalidate(ctx, entity.BookingTypeEvent, eventID)
	return u.GetEvent(ctx, eventID)
}

// DeleteEvent refuses while bookings reference the event
func (u *eventUsecase) DeleteEvent(ctx context.Context, eventID uuid.UUID) (*dto.DeletedResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		event, err := u.eventRepo.FindByIDForUpdate(tx, eventID)
		if err != nil {
			u.log.Warnf("Failed to lock event %s: %+v", eventID, err)
			return err
		}
		if event == nil {
			return ErrEventNotFound
		}
		if !act.CanManage(event.HostID) {
			return ErrForbidden
		}

		active, err := u.bookingRepo.CountActiveByTarget(tx, entity.BookingTypeEvent, eventID)
		if err != nil {
			u.log.Warnf("Failed to count bookings of event %s: %+v", eventID, err)
			return err
		}
		if active > 0 {
			return ErrSessionHasBookings
		}

		if err := u.eventRepo.Delete(tx, eventID); err != nil {
			if isForeignKeyError(err) {
				return ErrSessionHasBookings
			}
			u.log.Errorf("Failed to delete event %s: %+v", eventID, err)
			return err
		}
		auditDelete(ctx, u.log, u.auditService, tx, act, entity.AuditActionEventDelete, "event", eventID.String(), converter.EventToResponse(event))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.availabilityCache.Invalidate(ctx, entity.BookingTypeEvent, eventID)
	u.log.Infof("Event deleted: id=%s, by=%s", eventID, act.UserID)
	return &dto.DeletedResponse{ID: eventID}, nil
}

func parseSessionDate(s string) (time.Time, error) {
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return date, nil
}

func priceFromFloat(price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Round(2)
}

// ensureCapacityCoversBookings runs the capacity guard against the new limit
// with nothing requested, so it passes exactly when current <= limit.
func ensureCapacityCoversBookings(tx *gorm.DB, guard CapacityGuard, target entity.BookableTarget) error {
	check, err := guard.Check(tx, target, 0, nil)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return fmt.Errorf("%w: %d booked, %d requested", ErrCapacityBelowBooked, check.CurrentCount, check.Limit)
	}
	return nil
}

func sessionFilterFromQuery(query dto.SessionListQuery) (*entity.SessionFilter, error) {
	page := query.PageQuery.Normalize()
	filter := &entity.SessionFilter{
		CategoryID:   query.CategoryID,
		UpcomingOnly: query.UpcomingOnly,
		Pagination:   entity.Pagination{Page: page.Page, Limit: page.Limit},
	}
	if query.Status != "" {
		status, err := entity.ParseSessionStatus(query.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = status
	}
	return filter, nil
}
