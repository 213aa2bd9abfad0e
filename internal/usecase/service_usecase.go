package usecase

import (
	"context"
	"errors"

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
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceInUse    = errors.New("service is referenced by bookings")
)

type ServiceUsecase interface {
	CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetService(ctx context.Context, serviceID uuid.UUID) (*dto.ServiceResponse, error)
	GetServices(ctx context.Context, categoryID *uuid.UUID) (*dto.ServiceListResponse, error)
	UpdateService(ctx context.Context, serviceID uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	DeleteService(ctx context.Context, serviceID uuid.UUID) (*dto.DeletedResponse, error)
}

type serviceUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	serviceRepo  repository.ServiceRepository
	categoryRepo repository.CategoryRepository
	auditService service.AuditService
}

func NewServiceUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	serviceRepo repository.ServiceRepository,
	categoryRepo repository.CategoryRepository,
	auditService service.AuditService,
) ServiceUsecase {
	return &serviceUsecase{
		tx:           tx,
		log:          log,
		serviceRepo:  serviceRepo,
		categoryRepo: categoryRepo,
		auditService: auditService,
	}
}

func (u *serviceUsecase) CreateService(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !act.IsAdmin() {
		return nil, ErrForbidden
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	svc := &entity.Service{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       priceFromFloat(*req.Price),
		Duration:    req.Duration,
		IsActive:    &isActive,
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := ensureCategory(tx, u.categoryRepo, svc.CategoryID); err != nil {
			return err
		}
		if err := u.serviceRepo.Create(tx, svc); err != nil {
			u.log.Errorf("Failed to create service: %+v", err)
			return err
		}
		auditCreate(ctx, u.log, u.auditService, tx, act, entity.AuditActionServiceCreate, "service", svc.ID.String(), converter.ServiceToResponse(svc))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.GetService(ctx, svc.ID)
}

func (u *serviceUsecase) GetService(ctx context.Context, serviceID uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(u.tx.Conn(ctx), serviceID)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", serviceID, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return converter.ServiceToResponse(svc), nil
}

func (u *serviceUsecase) GetServices(ctx context.Context, categoryID *uuid.UUID) (*dto.ServiceListResponse, error) {
	services, err := u.serviceRepo.FindAll(u.tx.Conn(ctx), categoryID)
	if err != nil {
		u.log.Warnf("Failed to list services: %+v", err)
		return nil, err
	}

	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Total:    len(services),
	}, nil
}

func (u *serviceUsecase) UpdateService(ctx context.Context, serviceID uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !act.IsAdmin() {
		return nil, ErrForbidden
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		svc, err := u.serviceRepo.FindByID(tx, serviceID)
		if err != nil {
			u.log.Warnf("Failed to find service %s: %+v", serviceID, err)
			return err
		}
		if svc == nil {
			return ErrServiceNotFound
		}
		before := converter.ServiceToResponse(svc)

		if req.CategoryID != nil {
			if err := ensureCategory(tx, u.categoryRepo, req.CategoryID); err != nil {
				return err
			}
			svc.CategoryID = req.CategoryID
		}
		if req.Name != nil {
			svc.Name = *req.Name
		}
		if req.Description != nil {
			svc.Description = *req.Description
		}
		if req.Price != nil {
			svc.Price = priceFromFloat(*req.Price)
		}
		if req.Duration != nil {
			svc.Duration = *req.Duration
		}
		if req.IsActive != nil {
			svc.IsActive = req.IsActive
		}

		if err := u.serviceRepo.Update(tx, svc); err != nil {
			u.log.Errorf("Failed to update service %s: %+v", serviceID, err)
			return err
		}
		auditUpdate(ctx, u.log, u.auditService, tx, act, entity.AuditActionServiceUpdate, "service", serviceID.String(), before, converter.ServiceToResponse(svc))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.GetService(ctx, serviceID)
}

// DeleteService is refused once any booking references the service;
// deactivate it instead.
func (u *serviceUsecase) DeleteService(ctx context.Context, serviceID uuid.UUID) (*dto.DeletedResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !act.IsAdmin() {
		return nil, ErrForbidden
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		svc, err := u.serviceRepo.FindByID(tx, serviceID)
		if err != nil {
			u.log.Warnf("Failed to find service %s: %+v", serviceID, err)
			return err
		}
		if svc == nil {
			return ErrServiceNotFound
		}

		if err := u.serviceRepo.Delete(tx, serviceID); err != nil {
			if isForeignKeyError(err) {
				return ErrServiceInUse
			}
			u.log.Errorf("Failed to delete service %s: %+v", serviceID, err)
			return err
		}
		auditDelete(ctx, u.log, u.auditService, tx, act, entity.AuditActionServiceDelete, "service", serviceID.String(), converter.ServiceToResponse(svc))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.DeletedResponse{ID: serviceID}, nil
}
