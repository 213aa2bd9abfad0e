package usecase

import (
	"context"

	"makerspace-booking/internal/converter"
	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/domain/repository"
	"makerspace-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AvailabilityUsecase serves the public occupancy read model of events and
// workshops. Answers may lag a write by at most the cache TTL when an
// invalidation was lost; booking creation never reads from here.
type AvailabilityUsecase interface {
	GetAvailability(ctx context.Context, targetType entity.BookingType, targetID uuid.UUID) (*dto.AvailabilityResponse, error)
}

type availabilityUsecase struct {
	tx            repository.Transactor
	log           *logrus.Logger
	capacityGuard CapacityGuard
	cache         service.AvailabilityCache
}

func NewAvailabilityUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	capacityGuard CapacityGuard,
	cache service.AvailabilityCache,
) AvailabilityUsecase {
	return &availabilityUsecase{
		tx:            tx,
		log:           log,
		capacityGuard: capacityGuard,
		cache:         cache,
	}
}

func (u *availabilityUsecase) GetAvailability(ctx context.Context, targetType entity.BookingType, targetID uuid.UUID) (*dto.AvailabilityResponse, error) {
	if !targetType.IsCapacityLimited() {
		return nil, ErrInvalidBookingType
	}

	if capacity, ok := u.cache.Get(ctx, targetType, targetID); ok {
		return converter.CapacityToAvailability(targetType, targetID, *capacity), nil
	}

	check, err := u.capacityGuard.CheckCapacity(u.tx.Conn(ctx), targetType, targetID, 0, nil)
	if err != nil {
		return nil, err
	}

	u.cache.Set(ctx, targetType, targetID, check.Capacity)
	return converter.CapacityToAvailability(targetType, targetID, check.Capacity), nil
}
