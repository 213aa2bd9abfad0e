package usecase

import (
	"testing"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	store        *memStore
	audit        *recordingAudit
	cache        *memCache
	bookings     *bookingFixture
	events       EventUsecase
	workshops    WorkshopUsecase
	services     ServiceUsecase
	categories   CategoryUsecase
	availability AvailabilityUsecase
}

func newCatalogFixture() *catalogFixture {
	bf := newBookingFixture()
	store := bf.store
	log := newTestLogger()
	tx := &fakeTransactor{store: store}
	bookingRepo := &fakeBookingRepo{store: store}
	eventRepo := &fakeEventRepo{store: store}
	workshopRepo := &fakeWorkshopRepo{store: store}
	categoryRepo := &fakeCategoryRepo{store: store}
	guard := NewCapacityGuard(log, bookingRepo, eventRepo, workshopRepo)

	return &catalogFixture{
		store:        store,
		audit:        bf.audit,
		cache:        bf.cache,
		bookings:     bf,
		events:       NewEventUsecase(tx, log, eventRepo, bookingRepo, categoryRepo, guard, bf.audit, bf.cache),
		workshops:    NewWorkshopUsecase(tx, log, workshopRepo, bookingRepo, categoryRepo, guard, bf.audit, bf.cache),
		services:     NewServiceUsecase(tx, log, &fakeServiceRepo{store: store}, categoryRepo, bf.audit),
		categories:   NewCategoryUsecase(tx, log, categoryRepo, bf.audit),
		availability: NewAvailabilityUsecase(tx, log, guard, bf.cache),
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestEventUsecase_CreateAssignsHost(t *testing.T) {
	f := newCatalogFixture()
	host := uuid.New()

	resp, err := f.events.CreateEvent(ctxAs(host, entity.RoleIDHost), &dto.CreateEventRequest{
		Title:    "Open shop night",
		Date:     "2030-05-01",
		Time:     "19:00",
		Price:    floatPtr(12.5),
		Capacity: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, host, resp.HostID)
	assert.Equal(t, "12.50", resp.Price)
	assert.Equal(t, "upcoming", resp.Status)
	assert.Equal(t, []string{entity.AuditActionEventCreate}, f.audit.actions())

	_, err = f.events.CreateEvent(ctxAs(uuid.New(), entity.RoleIDUser), &dto.CreateEventRequest{
		Title: "Not allowed", Date: "2030-05-01", Time: "19:00", Price: floatPtr(0), Capacity: 1,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	missing := uuid.New()
	_, err = f.events.CreateEvent(ctxAs(host, entity.RoleIDHost), &dto.CreateEventRequest{
		CategoryID: &missing, Title: "Orphan", Date: "2030-05-01", Time: "19:00", Price: floatPtr(0), Capacity: 1,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestEventUsecase_UpdateOwnershipAndCapacity(t *testing.T) {
	f := newCatalogFixture()
	event := f.store.addEvent(20, 10)
	hostCtx := ctxAs(event.HostID, entity.RoleIDHost)

	_, err := f.bookings.usecase.CreateBooking(ctxAs(uuid.New(), entity.RoleIDUser), bookingRequest(entity.BookingTypeEvent, event.ID, 4))
	require.NoError(t, err)

	_, err = f.events.UpdateEvent(ctxAs(uuid.New(), entity.RoleIDHost), event.ID, &dto.UpdateEventRequest{Title: strPtr("Hijacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.events.UpdateEvent(hostCtx, event.ID, &dto.UpdateEventRequest{Capacity: intPtr(3)})
	assert.ErrorIs(t, err, ErrCapacityBelowBooked)
	assert.Equal(t, 10, f.store.events[event.ID].Capacity)

	resp, err := f.events.UpdateEvent(hostCtx, event.ID, &dto.UpdateEventRequest{Capacity: intPtr(4), Title: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Capacity)
	assert.Equal(t, "Renamed", resp.Title)
	assert.Contains(t, f.cache.invalidated, cacheKey(entity.BookingTypeEvent, event.ID))

	_, err = f.events.UpdateEvent(ctxAs(uuid.New(), entity.RoleIDAdmin), event.ID, &dto.UpdateEventRequest{Status: strPtr("ongoing")})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusOngoing, f.store.events[event.ID].Status)
}

func TestEventUsecase_DeleteBlockedByActiveBookings(t *testing.T) {
	f := newCatalogFixture()
	event := f.store.addEvent(20, 10)
	userCtx := ctxAs(uuid.New(), entity.RoleIDUser)
	hostCtx := ctxAs(event.HostID, entity.RoleIDHost)

	booking, err := f.bookings.usecase.CreateBooking(userCtx, bookingRequest(entity.BookingTypeEvent, event.ID, 1))
	require.NoError(t, err)

	_, err = f.events.DeleteEvent(hostCtx, event.ID)
	assert.ErrorIs(t, err, ErrSessionHasBookings)

	_, err = f.bookings.usecase.DeleteBooking(userCtx, booking.ID)
	require.NoError(t, err)

	resp, err := f.events.DeleteEvent(hostCtx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, resp.ID)

	_, err = f.events.GetEvent(hostCtx, event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestWorkshopUsecase_GetIncludesRoster(t *testing.T) {
	f := newCatalogFixture()
	workshop := f.store.addWorkshop(40, 2)
	userA, userB := uuid.New(), uuid.New()

	_, err := f.bookings.usecase.CreateBooking(ctxAs(userA, entity.RoleIDUser), bookingRequest(entity.BookingTypeWorkshop, workshop.ID, 1))
	require.NoError(t, err)
	_, err = f.bookings.usecase.CreateBooking(ctxAs(userB, entity.RoleIDUser), bookingRequest(entity.BookingTypeWorkshop, workshop.ID, 1))
	require.NoError(t, err)

	resp, err := f.workshops.GetWorkshop(ctxAs(userA, entity.RoleIDUser), workshop.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userA, userB}, resp.Participants)
	assert.True(t, resp.IsFull)

	_, err = f.workshops.UpdateWorkshop(ctxAs(workshop.HostID, entity.RoleIDHost), workshop.ID, &dto.UpdateWorkshopRequest{MaxParticipants: intPtr(1)})
	assert.ErrorIs(t, err, ErrCapacityBelowBooked)

	_, err = f.workshops.DeleteWorkshop(ctxAs(uuid.New(), entity.RoleIDAdmin), workshop.ID)
	assert.ErrorIs(t, err, ErrSessionHasBookings)
}

func TestWorkshopUsecase_DeleteDropsRoster(t *testing.T) {
	f := newCatalogFixture()
	host := uuid.New()

	created, err := f.workshops.CreateWorkshop(ctxAs(host, entity.RoleIDHost), &dto.CreateWorkshopRequest{
		Title:           "CNC basics",
		Date:            "2030-06-01",
		Time:            "09:00",
		Duration:        "4h",
		Price:           floatPtr(80),
		MaxParticipants: 6,
	})
	require.NoError(t, err)
	assert.Empty(t, created.Participants)
	assert.NotNil(t, created.Participants)

	_, err = f.workshops.DeleteWorkshop(ctxAs(uuid.New(), entity.RoleIDHost), created.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.workshops.DeleteWorkshop(ctxAs(host, entity.RoleIDHost), created.ID)
	require.NoError(t, err)
	assert.Empty(t, f.store.workshops)
}

func TestAvailabilityUsecase_CachesSnapshot(t *testing.T) {
	f := newCatalogFixture()
	event := f.store.addEvent(20, 10)
	ctx := ctxAs(uuid.New(), entity.RoleIDUser)

	_, err := f.bookings.usecase.CreateBooking(ctx, bookingRequest(entity.BookingTypeEvent, event.ID, 3))
	require.NoError(t, err)

	resp, err := f.availability.GetAvailability(ctx, entity.BookingTypeEvent, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.CurrentCount)
	assert.Equal(t, 7, resp.Remaining)
	assert.False(t, resp.IsFull)
	assert.Equal(t, 1, f.cache.sets)

	again, err := f.availability.GetAvailability(ctx, entity.BookingTypeEvent, event.ID)
	require.NoError(t, err)
	assert.Equal(t, resp, again)
	assert.Equal(t, 1, f.cache.sets)

	_, err = f.bookings.usecase.CreateBooking(ctx, bookingRequest(entity.BookingTypeEvent, event.ID, 7))
	require.NoError(t, err)

	full, err := f.availability.GetAvailability(ctx, entity.BookingTypeEvent, event.ID)
	require.NoError(t, err)
	assert.True(t, full.IsFull)
	assert.Equal(t, 0, full.Remaining)
}

func TestAvailabilityUsecase_Errors(t *testing.T) {
	f := newCatalogFixture()
	ctx := ctxAs(uuid.New(), entity.RoleIDUser)

	_, err := f.availability.GetAvailability(ctx, entity.BookingTypeService, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidBookingType)

	_, err = f.availability.GetAvailability(ctx, entity.BookingTypeWorkshop, uuid.New())
	assert.ErrorIs(t, err, ErrWorkshopNotFound)
}

func TestCategoryAndServiceUsecases(t *testing.T) {
	f := newCatalogFixture()
	admin := ctxAs(uuid.New(), entity.RoleIDAdmin)

	category, err := f.categories.CreateCategory(admin, &dto.CreateCategoryRequest{Name: "Electronics"})
	require.NoError(t, err)

	_, err = f.categories.CreateCategory(admin, &dto.CreateCategoryRequest{Name: "Electronics"})
	assert.ErrorIs(t, err, ErrCategoryExists)

	_, err = f.categories.CreateCategory(ctxAs(uuid.New(), entity.RoleIDHost), &dto.CreateCategoryRequest{Name: "Textiles"})
	assert.ErrorIs(t, err, ErrForbidden)

	svc, err := f.services.CreateService(admin, &dto.CreateServiceRequest{
		CategoryID: &category.ID,
		Name:       "Laser cutter induction",
		Price:      floatPtr(35),
		Duration:   "90m",
	})
	require.NoError(t, err)
	assert.True(t, svc.IsActive)
	assert.Equal(t, "35.00", svc.Price)

	inactive := false
	updated, err := f.services.UpdateService(admin, svc.ID, &dto.UpdateServiceRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	list, err := f.services.GetServices(admin, &category.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, err = f.services.DeleteService(admin, uuid.New())
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = f.categories.DeleteCategory(admin, category.ID)
	require.NoError(t, err)
	_, err = f.categories.DeleteCategory(admin, category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestWorkshopUsecase_FullBySeatsNotRoster(t *testing.T) {
	f := newCatalogFixture()
	workshop := f.store.addWorkshop(40, 2)
	userA, userB := uuid.New(), uuid.New()

	_, err := f.bookings.usecase.CreateBooking(ctxAs(userA, entity.RoleIDUser), bookingRequest(entity.BookingTypeWorkshop, workshop.ID, 2))
	require.NoError(t, err)

	resp, err := f.workshops.GetWorkshop(ctxAs(userB, entity.RoleIDUser), workshop.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userA}, resp.Participants)
	assert.Equal(t, 2, resp.BookedParticipants)
	assert.True(t, resp.IsFull)

	list, err := f.workshops.GetWorkshops(ctxAs(userB, entity.RoleIDUser), dto.SessionListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Workshops, 1)
	assert.True(t, list.Workshops[0].IsFull)

	_, err = f.bookings.usecase.CreateBooking(ctxAs(userB, entity.RoleIDUser), bookingRequest(entity.BookingTypeWorkshop, workshop.ID, 1))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestWorkshopUsecase_UpdateAuditsLoadedSnapshot(t *testing.T) {
	f := newCatalogFixture()
	workshop := f.store.addWorkshop(40, 2)
	user := uuid.New()

	_, err := f.bookings.usecase.CreateBooking(ctxAs(user, entity.RoleIDUser), bookingRequest(entity.BookingTypeWorkshop, workshop.ID, 2))
	require.NoError(t, err)

	_, err = f.workshops.UpdateWorkshop(ctxAs(workshop.HostID, entity.RoleIDHost), workshop.ID, &dto.UpdateWorkshopRequest{Title: strPtr("Advanced soldering")})
	require.NoError(t, err)

	last := f.audit.entries[len(f.audit.entries)-1]
	require.Equal(t, entity.AuditActionWorkshopUpdate, last.Action)
	before, ok := last.OldValue.(*dto.WorkshopResponse)
	require.True(t, ok)
	assert.Equal(t, "Intro to soldering", before.Title)
	assert.Equal(t, []uuid.UUID{user}, before.Participants)
	assert.Equal(t, 2, before.BookedParticipants)
	assert.True(t, before.IsFull)

	after, ok := last.NewValue.(*dto.WorkshopResponse)
	require.True(t, ok)
	assert.Equal(t, "Advanced soldering", after.Title)
	assert.Equal(t, []uuid.UUID{user}, after.Participants)
}
