package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// RedisAvailabilityKeyPrefix namespaces cached capacity snapshots
	RedisAvailabilityKeyPrefix = "availability:"

	defaultAvailabilityTTL = 30 * time.Second
	redisCacheTimeout      = 2 * time.Second
)

// AvailabilityCache keeps short-lived capacity snapshots for the public
// availability endpoints. It is never consulted by the booking write path.
type AvailabilityCache interface {
	Get(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID) (*entity.Capacity, bool)
	Set(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID, capacity entity.Capacity)
	Invalidate(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID)
}

type redisAvailabilityCache struct {
	redisClient *redis.Client
	ttl         time.Duration
	log         *logrus.Logger
}

// NewAvailabilityCache returns a Redis-backed cache, or a no-op cache when
// redisClient is nil.
func NewAvailabilityCache(redisClient *redis.Client, ttl time.Duration, log *logrus.Logger) AvailabilityCache {
	if redisClient == nil {
		return noopAvailabilityCache{}
	}
	if ttl <= 0 {
		ttl = defaultAvailabilityTTL
	}
	return &redisAvailabilityCache{
		redisClient: redisClient,
		ttl:         ttl,
		log:         log,
	}
}

// AvailabilityKey builds the Redis key of a target's snapshot
func AvailabilityKey(bookingType entity.BookingType, targetID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", RedisAvailabilityKeyPrefix, bookingType, targetID)
}

func (c *redisAvailabilityCache) Get(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID) (*entity.Capacity, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.redisClient.Get(ctx, AvailabilityKey(bookingType, targetID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnf("Failed to read availability cache for %s %s: %+v", bookingType, targetID, err)
		}
		return nil, false
	}

	var capacity entity.Capacity
	if err := json.Unmarshal(raw, &capacity); err != nil {
		c.log.Warnf("Discarding malformed availability cache entry for %s %s: %+v", bookingType, targetID, err)
		return nil, false
	}
	return &capacity, true
}

func (c *redisAvailabilityCache) Set(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID, capacity entity.Capacity) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := json.Marshal(capacity)
	if err != nil {
		c.log.Warnf("Failed to encode availability for %s %s: %+v", bookingType, targetID, err)
		return
	}
	if err := c.redisClient.Set(ctx, AvailabilityKey(bookingType, targetID), raw, c.ttl).Err(); err != nil {
		c.log.Warnf("Failed to write availability cache for %s %s: %+v", bookingType, targetID, err)
	}
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := c.redisClient.Del(ctx, AvailabilityKey(bookingType, targetID)).Err(); err != nil {
		c.log.Warnf("Failed to invalidate availability cache for %s %s: %+v", bookingType, targetID, err)
	}
}

type noopAvailabilityCache struct{}

func (noopAvailabilityCache) Get(context.Context, entity.BookingType, uuid.UUID) (*entity.Capacity, bool) {
	return nil, false
}
func (noopAvailabilityCache) Set(context.Context, entity.BookingType, uuid.UUID, entity.Capacity) {}
func (noopAvailabilityCache) Invalidate(context.Context, entity.BookingType, uuid.UUID)          {}
