package usecase

import (
	"context"
	"fmt"

	"makerspace-booking/internal/converter"
	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/domain/repository"
	"makerspace-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type WorkshopUsecase interface {
	CreateWorkshop(ctx context.Context, req *dto.CreateWorkshopRequest) (*dto.WorkshopResponse, error)
	GetWorkshop(ctx context.Context, workshopID uuid.UUID) (*dto.WorkshopResponse, error)
	GetWorkshops(ctx context.Context, query dto.SessionListQuery) (*dto.WorkshopListResponse, error)
	UpdateWorkshop(ctx context.Context, workshopID uuid.UUID, req *dto.UpdateWorkshopRequest) (*dto.WorkshopResponse, error)
	DeleteWorkshop(ctx context.Context, workshopID uuid.UUID) (*dto.DeletedResponse, error)
}

type workshopUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	workshopRepo      repository.WorkshopRepository
	bookingRepo       repository.BookingRepository
	categoryRepo      repository.CategoryRepository
	capacityGuard     CapacityGuard
	auditService      service.AuditService
	availabilityCache service.AvailabilityCache
}

func NewWorkshopUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	workshopRepo repository.WorkshopRepository,
	bookingRepo repository.BookingRepository,
	categoryRepo repository.CategoryRepository,
	capacityGuard CapacityGuard,
	auditService service.AuditService,
	availabilityCache service.AvailabilityCache,
) WorkshopUsecase {
	return &workshopUsecase{
		tx:                tx,
		log:               log,
		workshopRepo:      workshopRepo,
		bookingRepo:       bookingRepo,
		categoryRepo:      categoryRepo,
		capacityGuard:     capacityGuard,
		auditService:      auditService,
		availabilityCache: availabilityCache,
	}
}

func (u *workshopUsecase) CreateWorkshop(ctx context.Context, req *dto.CreateWorkshopRequest) (*dto.WorkshopResponse, error) {
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

	workshop := &entity.Workshop{
		HostID:          act.UserID,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		Date:            date,
		Time:            req.Time,
		Duration:        req.Duration,
		Price:           priceFromFloat(*req.Price),
		MaxParticipants: req.MaxParticipants,
		Status:          entity.SessionStatusUpcoming,
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := ensureCategory(tx, u.categoryRepo, workshop.CategoryID); err != nil {
			return err
		}
		if err := u.workshopRepo.Create(tx, workshop); err != nil {
			u.log.Errorf("Failed to create workshop: %+v", err)
			return err
		}
		auditCreate(ctx, u.log, u.auditService, tx, act, entity.AuditActionWorkshopCreate, "workshop", workshop.ID.String(), converter.WorkshopToResponse(workshop))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Workshop created: id=%s, host=%s", workshop.ID, workshop.HostID)
	return u.GetWorkshop(ctx, workshop.ID)
}

// GetWorkshop includes the roster in registration order
func (u *workshopUsecase) GetWorkshop(ctx context.Context, workshopID uuid.UUID) (*dto.WorkshopResponse, error) {
	workshop, err := u.workshopRepo.FindByID(u.tx.Conn(ctx), workshopID)
	if err != nil {
		u.log.Warnf("Failed to find workshop %s: %+v", workshopID, err)
		return nil, err
	}
	if workshop == nil {
		return nil, ErrWorkshopNotFound
	}
	return converter.WorkshopToResponse(workshop), nil
}

func (u *workshopUsecase) GetWorkshops(ctx context.Context, query dto.SessionListQuery) (*dto.WorkshopListResponse, error) {
	filter, err := sessionFilterFromQuery(query)
	if err != nil {
		return nil, err
	}

	workshops, total, err := u.workshopRepo.FindAll(u.tx.Conn(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list workshops: %+v", err)
		return nil, err
	}

	return &dto.WorkshopListResponse{
		Workshops: converter.WorkshopsToResponses(workshops),
		Total:     total,
	}, nil
}

func (u *workshopUsecase) UpdateWorkshop(ctx context.Context, workshopID uuid.UUID, req *dto.UpdateWorkshopRequest) (*dto.WorkshopResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		locked, err := u.workshopRepo.FindByIDForUpdate(tx, workshopID)
		if err != nil {
			u.log.Warnf("Failed to lock workshop %s: %+v", workshopID, err)
			return err
		}
		if locked == nil {
			return ErrWorkshopNotFound
		}
		if !act.CanManage(locked.HostID) {
			return ErrForbidden
		}

		// The locked row carries neither roster nor booked count.
		workshop, err := u.workshopRepo.FindByID(tx, workshopID)
		if err != nil {
			u.log.Warnf("Failed to load workshop %s: %+v", workshopID, err)
			return err
		}
		if workshop == nil {
			return ErrWorkshopNotFound
		}
		before := converter.WorkshopToResponse(workshop)

		if req.CategoryID != nil {
			if err := ensureCategory(tx, u.categoryRepo, req.CategoryID); err != nil {
				return err
			}
			workshop.CategoryID = req.CategoryID
			workshop.Category = nil
		}
		if req.Title != nil {
			workshop.Title = *req.Title
		}
		if req.Description != nil {
			workshop.Description = *req.Description
		}
		if req.Location != nil {
			workshop.Location = *req.Location
		}
		if req.Date != nil {
			date, err := parseSessionDate(*req.Date)
			if err != nil {
				return err
			}
			workshop.Date = date
		}
		if req.Time != nil {
			workshop.Time = *req.Time
		}
		if req.Duration != nil {
			workshop.Duration = *req.Duration
		}
		if req.Price != nil {
			workshop.Price = priceFromFloat(*req.Price)
		}
		if req.Status != nil {
			status, err := entity.ParseSessionStatus(*req.Status)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			workshop.Status = status
		}
		if req.MaxParticipants != nil && *req.MaxParticipants != workshop.MaxParticipants {
			workshop.MaxParticipants = *req.MaxParticipants
			if err := ensureCapacityCoversBookings(tx, u.capacityGuard, workshop); err != nil {
				return err
			}
		}

		if err := u.workshopRepo.Update(tx, workshop); err != nil {
			u.log.Errorf("Failed to update workshop %s: %+v", workshopID, err)
			return err
		}
		auditUpdate(ctx, u.log, u.auditService, tx, act, entity.AuditActionWorkshopUpdate, "workshop", workshopID.String(), before, converter.WorkshopToResponse(workshop))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.availabilityCache.Invalidate(ctx, entity.BookingTypeWorkshop, workshopID)
	return u.GetWorkshop(ctx, workshopID)
}

// DeleteWorkshop refuses while bookings reference the workshop. The roster
// goes with it.
func (u *workshopUsecase) DeleteWorkshop(ctx context.Context, workshopID uuid.UUID) (*dto.DeletedResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		workshop, err := u.workshopRepo.FindByIDForUpdate(tx, workshopID)
		if err != nil {
			u.log.Warnf("Failed to lock workshop %s: %+v", workshopID, err)
			return err
		}
		if workshop == nil {
			return ErrWorkshopNotFound
		}
		if !act.CanManage(workshop.HostID) {
			return ErrForbidden
		}

		active, err := u.bookingRepo.CountActiveByTarget(tx, entity.BookingTypeWorkshop, workshopID)
		if err != nil {
			u.log.Warnf("Failed to count bookings of workshop %s: %+v", workshopID, err)
			return err
		}
		if active > 0 {
			return ErrSessionHasBookings
		}

		if err := u.workshopRepo.Delete(tx, workshopID); err != nil {
			if isForeignKeyError(err) {
				return ErrSessionHasBookings
			}
			u.log.Errorf("Failed to delete workshop %s: %+v", workshopID, err)
			return err
		}
		auditDelete(ctx, u.log, u.auditService, tx, act, entity.AuditActionWorkshopDelete, "workshop", workshopID.String(), converter.WorkshopToResponse(workshop))
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.availabilityCache.Invalidate(ctx, entity.BookingTypeWorkshop, workshopID)
	u.log.Infof("Workshop deleted: id=%s, by=%s", workshopID, act.UserID)
	return &dto.DeletedResponse{ID: workshopID}, nil
}
