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
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingNotOwned         = errors.New("booking does not belong to you")
	ErrDuplicateRegistration   = errors.New("you already have an active booking for this workshop")
	ErrWorkshopNotOpen         = errors.New("workshop is not open for registration")
	ErrEventNotOpen            = errors.New("event is not open for registration")
	ErrServiceUnavailable      = errors.New("service is not available for booking")
	ErrParticipantsNotEditable = errors.New("number of participants can only be changed on active event bookings")
)

// activeWorkshopRegistrationIndex backs the duplicate-registration guard at the storage layer
const activeWorkshopRegistrationIndex = "uq_bookings_active_workshop_user"

const dateLayout = "2006-01-02"

type BookingUsecase interface {
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	GetMyBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error)
	GetAllBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error)
	UpdateBooking(ctx context.Context, bookingID uuid.UUID, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) (*dto.DeletedResponse, error)
}

type bookingUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	bookingRepo       repository.BookingRepository
	eventRepo         repository.EventRepository
	workshopRepo      repository.WorkshopRepository
	serviceRepo       repository.ServiceRepository
	capacityGuard     CapacityGuard
	registrationGuard RegistrationGuard
	roster            ParticipantRoster
	auditService      service.AuditService
	availabilityCache service.AvailabilityCache
	publisher         service.BookingEventPublisher
}

func NewBookingUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	eventRepo repository.EventRepository,
	workshopRepo repository.WorkshopRepository,
	serviceRepo repository.ServiceRepository,
	capacityGuard CapacityGuard,
	registrationGuard RegistrationGuard,
	roster ParticipantRoster,
	auditService service.AuditService,
	availabilityCache service.AvailabilityCache,
	publisher service.BookingEventPublisher,
) BookingUsecase {
	return &bookingUsecase{
		tx:                tx,
		log:               log,
		bookingRepo:       bookingRepo,
		eventRepo:         eventRepo,
		workshopRepo:      workshopRepo,
		serviceRepo:       serviceRepo,
		capacityGuard:     capacityGuard,
		registrationGuard: registrationGuard,
		roster:            roster,
		auditService:      auditService,
		availabilityCache: availabilityCache,
		publisher:         publisher,
	}
}

// CreateBooking books a service, event or workshop for the current user.
//
// Flow, inside one transaction:
// 1. Resolve the target; events and workshops are locked FOR UPDATE
// 2. Workshops only: reject if not upcoming, or if the user already holds an active booking
// 3. Capacity guard for events and workshops
// 4. Price and duration from the target, then entity validation
// 5. Insert, add to the workshop roster, write the audit entry
//
// Any failure rolls the whole unit back. Cache invalidation and the
// booking.created message follow the commit.
func (u *bookingUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := newBookingFromRequest(act.UserID, req)
	if err != nil {
		return nil, err
	}
	targetID := booking.TargetID()
	participants := booking.NumberOfParticipants

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		switch booking.BookingType {
		case entity.BookingTypeService:
			svc, err := u.serviceRepo.FindByID(tx, targetID)
			if err != nil {
				u.log.Warnf("Failed to find service %s: %+v", targetID, err)
				return err
			}
			if svc == nil {
				return ErrServiceNotFound
			}
			if !svc.IsBookable() {
				return ErrServiceUnavailable
			}
			booking.TotalPrice = entity.ComputeTotalPrice(entity.BookingTypeService, svc.Price, participants)
			booking.Duration = svc.Duration

		case entity.BookingTypeEvent:
			event, err := u.eventRepo.FindByIDForUpdate(tx, targetID)
			if err != nil {
				u.log.Warnf("Failed to lock event %s: %+v", targetID, err)
				return err
			}
			if event == nil {
				return ErrEventNotFound
			}
			if !event.IsOpenForRegistration() {
				return ErrEventNotOpen
			}
			if err := u.admit(tx, booking, event, participants, nil); err != nil {
				return err
			}

		case entity.BookingTypeWorkshop:
			workshop, err := u.workshopRepo.FindByIDForUpdate(tx, targetID)
			if err != nil {
				u.log.Warnf("Failed to lock workshop %s: %+v", targetID, err)
				return err
			}
			if workshop == nil {
				return ErrWorkshopNotFound
			}
			if !workshop.IsOpenForRegistration() {
				return ErrWorkshopNotOpen
			}
			registered, err := u.registrationGuard.HasActiveRegistration(tx, act.UserID, workshop.ID)
			if err != nil {
				u.log.Warnf("Failed to check registration of user %s for workshop %s: %+v", act.UserID, workshop.ID, err)
				return err
			}
			if registered {
				return ErrDuplicateRegistration
			}
			if err := u.admit(tx, booking, workshop, participants, nil); err != nil {
				return err
			}
			booking.Duration = workshop.Duration
		}

		if err := booking.Validate(); err != nil {
			return err
		}

		if err := u.bookingRepo.Create(tx, booking); err != nil {
			if isDuplicateKeyError(err, activeWorkshopRegistrationIndex) {
				return ErrDuplicateRegistration
			}
			u.log.Errorf("Failed to insert booking: %+v", err)
			return err
		}

		if booking.BookingType == entity.BookingTypeWorkshop {
			if err := u.roster.AddParticipant(tx, targetID, act.UserID); err != nil {
				return err
			}
		}

		u.audit(ctx, tx, act, entity.AuditActionBookingCreate, booking, nil, bookingSnapshot(booking))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.afterWrite(ctx, service.BookingEventCreated, booking)
	u.log.Infof("Booking created: id=%s, type=%s, target=%s, participants=%d", booking.ID, booking.BookingType, targetID, participants)

	return u.reload(ctx, booking), nil
}

func (u *bookingUsecase) GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := u.bookingRepo.FindByID(u.tx.Conn(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if err := authorizeBooking(act, booking); err != nil {
		return nil, err
	}

	return converter.BookingToResponse(booking), nil
}

// GetMyBookings lists the current user's bookings, newest first
func (u *bookingUsecase) GetMyBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	filter, err := bookingFilterFromQuery(query)
	if err != nil {
		return nil, err
	}
	filter.UserID = &act.UserID

	return u.listBookings(ctx, filter)
}

// GetAllBookings lists every booking; admin only
func (u *bookingUsecase) GetAllBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !act.IsAdmin() {
		return nil, ErrForbidden
	}

	filter, err := bookingFilterFromQuery(query)
	if err != nil {
		return nil, err
	}

	return u.listBookings(ctx, filter)
}

// UpdateBooking applies a partial update. Every field is checked before the
// first write, so a rejected update leaves the booking untouched.
//
// A status change must follow the lifecycle; moving to cancelled has the same
// effects as CancelBooking. A participant change is limited to active event
// bookings and re-runs the capacity guard without this booking's own seats.
func (u *bookingUsecase) UpdateBooking(ctx context.Context, bookingID uuid.UUID, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		nextStatus  *entity.BookingStatus
		nextPayment *entity.PaymentStatus
	)
	if req.Status != nil {
		status, err := entity.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBooking, err)
		}
		nextStatus = &status
	}
	if req.PaymentStatus != nil {
		payment, err := entity.ParsePaymentStatus(*req.PaymentStatus)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBooking, err)
		}
		nextPayment = &payment
	}

	var (
		booking    *entity.Booking
		cancelling bool
	)
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = u.lockBooking(tx, act, bookingID)
		if err != nil {
			return err
		}
		before := bookingSnapshot(booking)

		wasCancelled := booking.IsCancelled()
		if nextStatus != nil {
			if err := booking.TransitionTo(*nextStatus); err != nil {
				return err
			}
			cancelling = booking.IsCancelled() && !wasCancelled
		}

		if cancelling && booking.BookingType == entity.BookingTypeWorkshop {
			if err := u.ensureWorkshopCancellable(tx, act, booking); err != nil {
				return err
			}
		}

		if req.NumberOfParticipants != nil && *req.NumberOfParticipants != booking.NumberOfParticipants {
			requested := *req.NumberOfParticipants
			if booking.BookingType != entity.BookingTypeEvent || !booking.IsActive() {
				return ErrParticipantsNotEditable
			}
			event, err := u.eventRepo.FindByIDForUpdate(tx, booking.TargetID())
			if err != nil {
				u.log.Warnf("Failed to lock event %s: %+v", booking.TargetID(), err)
				return err
			}
			if event == nil {
				return ErrEventNotFound
			}
			if !event.IsOpenForRegistration() {
				return ErrEventNotOpen
			}
			if err := u.admit(tx, booking, event, requested, &booking.ID); err != nil {
				return err
			}
		}

		if nextPayment != nil {
			booking.PaymentStatus = *nextPayment
		}
		if req.Notes != nil {
			booking.Notes = *req.Notes
		}

		if err := booking.Validate(); err != nil {
			return err
		}
		if err := u.bookingRepo.Update(tx, booking); err != nil {
			u.log.Errorf("Failed to update booking %s: %+v", booking.ID, err)
			return err
		}

		if cancelling && booking.BookingType == entity.BookingTypeWorkshop {
			if err := u.roster.RemoveParticipant(tx, booking.TargetID(), booking.UserID); err != nil {
				return err
			}
		}

		action := entity.AuditActionBookingUpdate
		if cancelling {
			action = entity.AuditActionBookingCancel
		}
		u.audit(ctx, tx, act, action, booking, before, bookingSnapshot(booking))
		return nil
	})
	if err != nil {
		return nil, err
	}

	routingKey := service.BookingEventUpdated
	if cancelling {
		routingKey = service.BookingEventCancelled
	}
	u.afterWrite(ctx, routingKey, booking)

	return u.reload(ctx, booking), nil
}

// CancelBooking moves a booking to cancelled and frees its seats.
// Cancelling an already cancelled booking returns it unchanged.
func (u *bookingUsecase) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		booking          *entity.Booking
		alreadyCancelled bool
	)
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		booking, err = u.lockBooking(tx, act, bookingID)
		if err != nil {
			return err
		}
		if booking.IsCancelled() {
			alreadyCancelled = true
			return nil
		}
		before := bookingSnapshot(booking)
		if err := booking.TransitionTo(entity.BookingStatusCancelled); err != nil {
			return err
		}
		if booking.BookingType == entity.BookingTypeWorkshop {
			if err := u.ensureWorkshopCancellable(tx, act, booking); err != nil {
				return err
			}
		}

		if err := u.bookingRepo.Update(tx, booking); err != nil {
			u.log.Errorf("Failed to cancel booking %s: %+v", booking.ID, err)
			return err
		}

		if booking.BookingType == entity.BookingTypeWorkshop {
			if err := u.roster.RemoveParticipant(tx, booking.TargetID(), booking.UserID); err != nil {
				return err
			}
		}

		u.audit(ctx, tx, act, entity.AuditActionBookingCancel, booking, before, bookingSnapshot(booking))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyCancelled {
		u.afterWrite(ctx, service.BookingEventCancelled, booking)
		u.log.Infof("Booking cancelled: id=%s, by=%s", booking.ID, act.UserID)
	}

	return u.reload(ctx, booking), nil
}

// DeleteBooking removes the booking record.
// For an active workshop booking the roster entry is removed first on a
// best-effort basis: a failure there is logged and the delete still proceeds.
func (u *bookingUsecase) DeleteBooking(ctx context.Context, bookingID uuid.UUID) (*dto.DeletedResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	conn := u.tx.Conn(ctx)
	booking, err := u.bookingRepo.FindByID(conn, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if err := authorizeBooking(act, booking); err != nil {
		return nil, err
	}

	// A cancelled booking already left the roster; the user may hold a newer active one.
	if booking.BookingType == entity.BookingTypeWorkshop && booking.IsActive() {
		if err := u.roster.RemoveParticipant(conn, booking.TargetID(), booking.UserID); err != nil {
			u.log.Errorf("Roster cleanup failed for booking %s, deleting anyway: %+v", booking.ID, err)
		}
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.bookingRepo.Delete(tx, booking.ID); err != nil {
			u.log.Errorf("Failed to delete booking %s: %+v", booking.ID, err)
			return err
		}
		u.audit(ctx, tx, act, entity.AuditActionBookingDelete, booking, bookingSnapshot(booking), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.afterWrite(ctx, service.BookingEventDeleted, booking)
	u.log.Infof("Booking deleted: id=%s, by=%s", booking.ID, act.UserID)

	return &dto.DeletedResponse{ID: booking.ID}, nil
}

func (u *bookingUsecase) listBookings(ctx context.Context, filter *entity.BookingFilter) (*dto.BookingListResponse, error) {
	bookings, total, err := u.bookingRepo.FindAll(u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list bookings: %+v", err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    total,
	}, nil
}

// lockBooking loads the booking FOR UPDATE and checks the actor may act on it
func (u *bookingUsecase) lockBooking(tx *gorm.DB, act actor, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := u.bookingRepo.FindByIDForUpdate(tx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to lock booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if err := authorizeBooking(act, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ensureWorkshopCancellable enforces that owners cancel only while the
// workshop is upcoming. Admins may cancel at any stage.
func (u *bookingUsecase) ensureWorkshopCancellable(tx *gorm.DB, act actor, booking *entity.Booking) error {
	workshop, err := u.workshopRepo.FindByIDForUpdate(tx, booking.TargetID())
	if err != nil {
		u.log.Warnf("Failed to lock workshop %s: %+v", booking.TargetID(), err)
		return err
	}
	if workshop == nil {
		return ErrWorkshopNotFound
	}
	if !workshop.IsOpenForRegistration() && !act.IsAdmin() {
		return ErrWorkshopNotOpen
	}
	return nil
}

// admit runs the capacity guard for requested participants and, when the
// target has room, prices the booking at the target's unit price.
func (u *bookingUsecase) admit(tx *gorm.DB, booking *entity.Booking, target entity.BookableTarget, requested int, exclude *uuid.UUID) error {
	check, err := u.capacityGuard.Check(tx, target, requested, exclude)
	if err != nil {
		return err
	}
	if err := check.Reject(requested); err != nil {
		return err
	}
	booking.NumberOfParticipants = requested
	booking.TotalPrice = entity.ComputeTotalPrice(target.TargetType(), target.UnitPrice(), requested)
	return nil
}

func (u *bookingUsecase) audit(ctx context.Context, tx *gorm.DB, act actor, action string, booking *entity.Booking, oldValue, newValue interface{}) {
	switch {
	case oldValue == nil:
		auditCreate(ctx, u.log, u.auditService, tx, act, action, "booking", booking.ID.String(), newValue)
	case newValue == nil:
		auditDelete(ctx, u.log, u.auditService, tx, act, action, "booking", booking.ID.String(), oldValue)
	default:
		auditUpdate(ctx, u.log, u.auditService, tx, act, action, "booking", booking.ID.String(), oldValue, newValue)
	}
}

// afterWrite runs the post-commit side effects; neither can fail the request
func (u *bookingUsecase) afterWrite(ctx context.Context, routingKey string, booking *entity.Booking) {
	if booking.BookingType.IsCapacityLimited() {
		u.availabilityCache.Invalidate(ctx, booking.BookingType, booking.TargetID())
	}
	u.publisher.Publish(ctx, routingKey, booking)
}

// reload fetches the booking with its relations for the response
func (u *bookingUsecase) reload(ctx context.Context, booking *entity.Booking) *dto.BookingResponse {
	full, err := u.bookingRepo.FindByID(u.tx.Conn(ctx), booking.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		return converter.BookingToResponse(booking)
	}
	return converter.BookingToResponse(full)
}

func authorizeBooking(act actor, booking *entity.Booking) error {
	if act.IsAdmin() || booking.IsOwnedBy(act.UserID) {
		return nil
	}
	return ErrBookingNotOwned
}

// newBookingFromRequest builds a pending booking. Price and duration are
// filled in once the target is resolved.
func newBookingFromRequest(userID uuid.UUID, req *dto.CreateBookingRequest) (*entity.Booking, error) {
	bookingType, err := entity.ParseBookingType(req.BookingType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidBooking, err)
	}

	refs := map[entity.BookingType]*uuid.UUID{
		entity.BookingTypeEvent:    req.EventID,
		entity.BookingTypeService:  req.ServiceID,
		entity.BookingTypeWorkshop: req.WorkshopID,
	}
	for t, ref := range refs {
		if t != bookingType && ref != nil {
			return nil, fmt.Errorf("%w: %s booking must not set %s", entity.ErrInvalidBooking, bookingType, t.ReferenceColumn())
		}
	}
	targetID := refs[bookingType]
	if targetID == nil || *targetID == uuid.Nil {
		return nil, fmt.Errorf("%w: %s booking requires %s", entity.ErrInvalidBooking, bookingType, bookingType.ReferenceColumn())
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", entity.ErrInvalidBooking)
	}

	participants := 1
	if req.NumberOfParticipants != nil {
		participants = *req.NumberOfParticipants
	}

	booking := &entity.Booking{
		UserID:               userID,
		BookingType:          bookingType,
		Date:                 date,
		Time:                 req.Time,
		Status:               entity.BookingStatusPending,
		PaymentStatus:        entity.PaymentStatusPending,
		PaymentMethod:        req.PaymentMethod,
		NumberOfParticipants: participants,
		Customer: entity.CustomerDetails{
			Name:  req.CustomerDetails.Name,
			Email: req.CustomerDetails.Email,
			Phone: req.CustomerDetails.Phone,
		},
		Notes:       req.Notes,
		BookingDate: time.Now().UTC(),
	}
	booking.SetTarget(*targetID)
	return booking, nil
}

func bookingFilterFromQuery(query dto.BookingListQuery) (*entity.BookingFilter, error) {
	page := query.PageQuery.Normalize()
	filter := &entity.BookingFilter{
		Pagination: entity.Pagination{Page: page.Page, Limit: page.Limit},
	}
	if query.Status != "" {
		status, err := entity.ParseBookingStatus(query.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = status
	}
	if query.BookingType != "" {
		bookingType, err := entity.ParseBookingType(query.BookingType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.BookingType = bookingType
	}
	return filter, nil
}

// bookingSnapshot is the audit view of the mutable booking fields
func bookingSnapshot(b *entity.Booking) map[string]interface{} {
	return map[string]interface{}{
		"booking_type":           string(b.BookingType),
		"target_id":              b.TargetID().String(),
		"status":                 string(b.Status),
		"payment_status":         string(b.PaymentStatus),
		"number_of_participants": b.NumberOfParticipants,
		"total_price":            b.TotalPrice.StringFixed(2),
		"notes":                  b.Notes,
	}
}
