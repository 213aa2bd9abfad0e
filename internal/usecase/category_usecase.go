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
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category with this name already exists")
)

type CategoryUsecase interface {
	CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetCategories(ctx context.Context) (*dto.CategoryListResponse, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) (*dto.DeletedResponse, error)
}

type categoryUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	categoryRepo repository.CategoryRepository
	auditService service.AuditService
}

func NewCategoryUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	categoryRepo repository.CategoryRepository,
	auditService service.AuditService,
) CategoryUsecase {
	return &categoryUsecase{
		tx:           tx,
		log:          log,
		categoryRepo: categoryRepo,
		auditService: auditService,
	}
}

func (u *categoryUsecase) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !act.IsAdmin() {
		return nil, ErrForbidden
	}

	category := &entity.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.categoryRepo.Create(tx, category); err != nil {
			if isDuplicateKeyError(err, "categories") {
				return ErrCategoryExists
			}
			u.log.Errorf("Failed to create category: %+v", err)
			return err
		}
		auditCreate(ctx, u.log, u.auditService, tx, act, entity.AuditActionCategoryCreate, "category", category.ID.String(), converter.CategoryToResponse(category))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.CategoryToResponse(category), nil
}

func (u *categoryUsecase) GetCategories(ctx context.Context) (*dto.CategoryListResponse, error) {
	categories, err := u.categoryRepo.FindAll(u.tx.Conn(ctx))
	if err != nil {
		u.log.Warnf("Failed to list categories: %+v", err)
		return nil, err
	}

	return &dto.CategoryListResponse{
		Categories: converter.CategoriesToResponses(categories),
		Total:      len(categories),
	}, nil
}

// DeleteCategory detaches sessions and services; their category_id becomes NULL
func (u *categoryUsecase) DeleteCategory(ctx context.Context, categoryID uuid.UUID) (*dto.DeletedResponse, error) {
	act, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !act.IsAdmin() {
		return nil, ErrForbidden
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		category, err := u.categoryRepo.FindByID(tx, categoryID)
		if err != nil {
			u.log.Warnf("Failed to find category %s: %+v", categoryID, err)
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}

		if err := u.categoryRepo.Delete(tx, categoryID); err != nil {
			u.log.Errorf("Failed to delete category %s: %+v", categoryID, err)
			return err
		}
		auditDelete(ctx, u.log, u.auditService, tx, act, entity.AuditActionCategoryDelete, "category", categoryID.String(), converter.CategoryToResponse(category))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.DeletedResponse{ID: categoryID}, nil
}

// ensureCategory checks an optional category reference
func ensureCategory(db *gorm.DB, categoryRepo repository.CategoryRepository, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	category, err := categoryRepo.FindByID(db, *categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}
