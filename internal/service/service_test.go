package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// --- Mock MessagePublisher ---

type mockMessagePublisher struct {
	publishFn func(ctx context.Context, routingKey string, payload any) error
	keys      []string
	payloads  []any
}

func (m *mockMessagePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	m.keys = append(m.keys, routingKey)
	m.payloads = append(m.payloads, payload)
	if m.publishFn != nil {
		return m.publishFn(ctx, routingKey, payload)
	}
	return nil
}

// --- Mock AuditLogRepository ---

type mockAuditLogRepo struct {
	created   []*entity.AuditLog
	createErr error
}

func (m *mockAuditLogRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, log)
	return nil
}
func (m *mockAuditLogRepo) FindAll(db *gorm.DB, page entity.Pagination) ([]entity.AuditLog, int64, error) {
	return nil, 0, nil
}
func (m *mockAuditLogRepo) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	return nil, nil
}

func TestBookingEventPublisher_Publish(t *testing.T) {
	workshopID := uuid.New()
	booking := &entity.Booking{
		ID:                   uuid.New(),
		UserID:               uuid.New(),
		BookingType:          entity.BookingTypeWorkshop,
		WorkshopID:           &workshopID,
		Status:               entity.BookingStatusPending,
		PaymentStatus:        entity.PaymentStatusPending,
		NumberOfParticipants: 2,
		TotalPrice:           decimal.NewFromInt(30),
	}

	mock := &mockMessagePublisher{}
	NewBookingEventPublisher(mock, newTestLogger()).Publish(context.Background(), BookingEventCreated, booking)

	require.Len(t, mock.keys, 1)
	assert.Equal(t, BookingEventCreated, mock.keys[0])

	msg, ok := mock.payloads[0].(BookingMessage)
	require.True(t, ok)
	assert.Equal(t, booking.ID, msg.BookingID)
	assert.Equal(t, workshopID, msg.TargetID)
	assert.Equal(t, "workshop", msg.BookingType)
	assert.Equal(t, "30.00", msg.TotalPrice)
}

func TestBookingEventPublisher_SwallowsErrors(t *testing.T) {
	mock := &mockMessagePublisher{
		publishFn: func(ctx context.Context, routingKey string, payload any) error {
			return errors.New("broker down")
		},
	}
	pub := NewBookingEventPublisher(mock, newTestLogger())

	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), BookingEventDeleted, &entity.Booking{ID: uuid.New()})
	})
	assert.Len(t, mock.keys, 1)
}

func TestBookingEventPublisher_NilPublisherIsNoop(t *testing.T) {
	pub := NewBookingEventPublisher(nil, newTestLogger())
	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), BookingEventCreated, &entity.Booking{ID: uuid.New()})
	})
}

func TestAuditService_RecordsMetadata(t *testing.T) {
	repo := &mockAuditLogRepo{}
	svc := NewAuditService(newTestLogger(), repo)
	userID := uuid.New()

	err := svc.LogUpdate(context.Background(), nil, &userID, entity.AuditActionBookingUpdate, "booking", "b-1", "pending", "confirmed")
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	logEntry := repo.created[0]
	assert.Equal(t, entity.AuditActionBookingUpdate, logEntry.Action)
	assert.Equal(t, &userID, logEntry.UserID)
	assert.Equal(t, "booking", logEntry.Metadata["entity"])
	assert.Equal(t, "pending", logEntry.Metadata["old_value"])
	assert.Equal(t, "confirmed", logEntry.Metadata["new_value"])
}

func TestAuditService_ReturnsRepositoryError(t *testing.T) {
	repo := &mockAuditLogRepo{createErr: errors.New("insert failed")}
	svc := NewAuditService(newTestLogger(), repo)

	err := svc.LogDelete(context.Background(), nil, nil, entity.AuditActionBookingDelete, "booking", "b-1", nil)
	assert.Error(t, err)
}

func TestAvailabilityKey(t *testing.T) {
	id := uuid.MustParse("6f1f7c1e-8c1a-4d55-9d43-0a3c2b7f9e10")
	assert.Equal(t, "availability:event:6f1f7c1e-8c1a-4d55-9d43-0a3c2b7f9e10", AvailabilityKey(entity.BookingTypeEvent, id))
}

func TestNewAvailabilityCache_NilClientIsNoop(t *testing.T) {
	cache := NewAvailabilityCache(nil, 0, newTestLogger())
	id := uuid.New()

	cache.Set(context.Background(), entity.BookingTypeWorkshop, id, entity.Capacity{CurrentCount: 1, Limit: 5})
	got, ok := cache.Get(context.Background(), entity.BookingTypeWorkshop, id)
	assert.False(t, ok)
	assert.Nil(t, got)
}
