package usecase

import (
	"context"
	"io"
	"sort"
	"time"

	"makerspace-booking/internal/delivery/http/middleware"
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func ctxAs(userID uuid.UUID, roleID int) context.Context {
	return middleware.ContextWithUser(context.Background(), userID, roleID)
}

// memStore is the in-memory database behind the fake repositories
type memStore struct {
	bookings   map[uuid.UUID]entity.Booking
	events     map[uuid.UUID]entity.Event
	workshops  map[uuid.UUID]entity.Workshop
	services   map[uuid.UUID]entity.Service
	categories map[uuid.UUID]entity.Category
	roster     []entity.WorkshopParticipant
	rosterSeq  int64
	clock      time.Time

	failAddParticipant    error
	failRemoveParticipant error
}

func newMemStore() *memStore {
	return &memStore{
		bookings:   map[uuid.UUID]entity.Booking{},
		events:     map[uuid.UUID]entity.Event{},
		workshops:  map[uuid.UUID]entity.Workshop{},
		services:   map[uuid.UUID]entity.Service{},
		categories: map[uuid.UUID]entity.Category{},
		clock:      time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so listings have a stable order
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memSnapshot struct {
	bookings   map[uuid.UUID]entity.Booking
	events     map[uuid.UUID]entity.Event
	workshops  map[uuid.UUID]entity.Workshop
	services   map[uuid.UUID]entity.Service
	categories map[uuid.UUID]entity.Category
	roster     []entity.WorkshopParticipant
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memSnapshot {
	return memSnapshot{
		bookings:   copyMap(s.bookings),
		events:     copyMap(s.events),
		workshops:  copyMap(s.workshops),
		services:   copyMap(s.services),
		categories: copyMap(s.categories),
		roster:     append([]entity.WorkshopParticipant(nil), s.roster...),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.bookings = snap.bookings
	s.events = snap.events
	s.workshops = snap.workshops
	s.services = snap.services
	s.categories = snap.categories
	s.roster = snap.roster
}

func (s *memStore) rosterOf(workshopID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for _, p := range s.roster {
		if p.WorkshopID == workshopID {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

func (s *memStore) addEvent(price float64, capacity int) *entity.Event {
	event := entity.Event{
		ID:       uuid.New(),
		HostID:   uuid.New(),
		Title:    "Laser cutting night",
		Date:     time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC),
		Time:     "18:00",
		Price:    decimal.NewFromFloat(price),
		Capacity: capacity,
		Status:   entity.SessionStatusUpcoming,
	}
	s.events[event.ID] = event
	return &event
}

func (s *memStore) addWorkshop(price float64, maxParticipants int) *entity.Workshop {
	workshop := entity.Workshop{
		ID:              uuid.New(),
		HostID:          uuid.New(),
		Title:           "Intro to soldering",
		Date:            time.Date(2030, 4, 1, 0, 0, 0, 0, time.UTC),
		Time:            "10:00",
		Duration:        "3h",
		Price:           decimal.NewFromFloat(price),
		MaxParticipants: maxParticipants,
		Status:          entity.SessionStatusUpcoming,
	}
	s.workshops[workshop.ID] = workshop
	return &workshop
}

func (s *memStore) addService(price float64) *entity.Service {
	active := true
	svc := entity.Service{
		ID:       uuid.New(),
		Name:     "3D print review",
		Price:    decimal.NewFromFloat(price),
		Duration: "1h",
		IsActive: &active,
	}
	s.services[svc.ID] = svc
	return &svc
}

// fakeTransactor rolls the store back when fn fails
type fakeTransactor struct {
	store *memStore
}

func (t *fakeTransactor) Conn(ctx context.Context) *gorm.DB {
	return nil
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type fakeBookingRepo struct {
	store *memStore
}

func (r *fakeBookingRepo) Create(db *gorm.DB, booking *entity.Booking) error {
	if booking.BookingType == entity.BookingTypeWorkshop && booking.IsActive() {
		for _, b := range r.store.bookings {
			if b.BookingType == entity.BookingTypeWorkshop && b.IsActive() &&
				b.UserID == booking.UserID && b.TargetID() == booking.TargetID() {
				return &pgconn.PgError{Code: "23505", ConstraintName: activeWorkshopRegistrationIndex}
			}
		}
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := r.store.tick()
	booking.CreatedAt, booking.UpdatedAt = now, now
	r.store.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *fakeBookingRepo) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	return r.FindByID(db, id)
}

func (r *fakeBookingRepo) FindAll(db *gorm.DB, filter *entity.BookingFilter) ([]entity.Booking, int64, error) {
	var matched []entity.Booking
	for _, b := range r.store.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.BookingType != "" && b.BookingType != filter.BookingType {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (r *fakeBookingRepo) Update(db *gorm.DB, booking *entity.Booking) error {
	booking.UpdatedAt = r.store.tick()
	r.store.bookings[booking.ID] = *booking
	return nil
}

func (r *fakeBookingRepo) Delete(db *gorm.DB, id uuid.UUID) error {
	delete(r.store.bookings, id)
	return nil
}

func (r *fakeBookingRepo) SumActiveParticipants(db *gorm.DB, bookingType entity.BookingType, targetID uuid.UUID, excludeID *uuid.UUID) (int, error) {
	sum := 0
	for _, b := range r.store.bookings {
		if b.BookingType != bookingType || b.TargetID() != targetID || !b.IsActive() {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		sum += b.NumberOfParticipants
	}
	return sum, nil
}

func (r *fakeBookingRepo) CountActiveByTarget(db *gorm.DB, bookingType entity.BookingType, targetID uuid.UUID) (int64, error) {
	var n int64
	for _, b := range r.store.bookings {
		if b.BookingType == bookingType && b.TargetID() == targetID && b.IsActive() {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) FindActiveByUserAndWorkshop(db *gorm.DB, userID, workshopID uuid.UUID) (*entity.Booking, error) {
	for _, b := range r.store.bookings {
		if b.BookingType == entity.BookingTypeWorkshop && b.UserID == userID && b.TargetID() == workshopID && b.IsActive() {
			return &b, nil
		}
	}
	return nil, nil
}

type fakeEventRepo struct {
	store *memStore
}

func (r *fakeEventRepo) Create(db *gorm.DB, event *entity.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.store.events[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Event, error) {
	e, ok := r.store.events[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r *fakeEventRepo) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Event, error) {
	return r.FindByID(db, id)
}

func (r *fakeEventRepo) FindAll(db *gorm.DB, filter *entity.SessionFilter) ([]entity.Event, int64, error) {
	var events []entity.Event
	for _, e := range r.store.events {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		events = append(events, e)
	}
	return events, int64(len(events)), nil
}

func (r *fakeEventRepo) Update(db *gorm.DB, event *entity.Event) error {
	r.store.events[event.ID] = *event
	return nil
}

func (r *fakeEventRepo) Delete(db *gorm.DB, id uuid.UUID) error {
	delete(r.store.events, id)
	return nil
}

type fakeWorkshopRepo struct {
	store *memStore
}

func (r *fakeWorkshopRepo) Create(db *gorm.DB, workshop *entity.Workshop) error {
	if workshop.ID == uuid.Nil {
		workshop.ID = uuid.New()
	}
	r.store.workshops[workshop.ID] = *workshop
	return nil
}

func (r *fakeWorkshopRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Workshop, error) {
	w, ok := r.store.workshops[id]
	if !ok {
		return nil, nil
	}
	w.Participants = r.participants(id)
	w.BookedParticipants = 0
	for _, b := range r.store.bookings {
		if b.BookingType == entity.BookingTypeWorkshop && b.TargetID() == id && b.IsActive() {
			w.BookedParticipants += b.NumberOfParticipants
		}
	}
	return &w, nil
}

func (r *fakeWorkshopRepo) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Workshop, error) {
	w, ok := r.store.workshops[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *fakeWorkshopRepo) FindAll(db *gorm.DB, filter *entity.SessionFilter) ([]entity.Workshop, int64, error) {
	var workshops []entity.Workshop
	for id := range r.store.workshops {
		w, _ := r.FindByID(db, id)
		if filter.Status != "" && w.Status != filter.Status {
			continue
		}
		workshops = append(workshops, *w)
	}
	return workshops, int64(len(workshops)), nil
}

func (r *fakeWorkshopRepo) Update(db *gorm.DB, workshop *entity.Workshop) error {
	stored := *workshop
	stored.Participants = nil
	stored.BookedParticipants = 0
	r.store.workshops[workshop.ID] = stored
	return nil
}

func (r *fakeWorkshopRepo) Delete(db *gorm.DB, id uuid.UUID) error {
	kept := r.store.roster[:0:0]
	for _, p := range r.store.roster {
		if p.WorkshopID != id {
			kept = append(kept, p)
		}
	}
	r.store.roster = kept
	delete(r.store.workshops, id)
	return nil
}

func (r *fakeWorkshopRepo) AddParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error {
	if r.store.failAddParticipant != nil {
		return r.store.failAddParticipant
	}
	for _, p := range r.store.roster {
		if p.WorkshopID == workshopID && p.UserID == userID {
			return nil
		}
	}
	r.store.rosterSeq++
	r.store.roster = append(r.store.roster, entity.WorkshopParticipant{
		ID:         r.store.rosterSeq,
		WorkshopID: workshopID,
		UserID:     userID,
	})
	return nil
}

func (r *fakeWorkshopRepo) RemoveParticipant(db *gorm.DB, workshopID, userID uuid.UUID) error {
	if r.store.failRemoveParticipant != nil {
		return r.store.failRemoveParticipant
	}
	kept := r.store.roster[:0:0]
	for _, p := range r.store.roster {
		if p.WorkshopID != workshopID || p.UserID != userID {
			kept = append(kept, p)
		}
	}
	r.store.roster = kept
	return nil
}

func (r *fakeWorkshopRepo) participants(workshopID uuid.UUID) []entity.WorkshopParticipant {
	var participants []entity.WorkshopParticipant
	for _, p := range r.store.roster {
		if p.WorkshopID == workshopID {
			participants = append(participants, p)
		}
	}
	return participants
}

type fakeServiceRepo struct {
	store *memStore
}

func (r *fakeServiceRepo) Create(db *gorm.DB, service *entity.Service) error {
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	r.store.services[service.ID] = *service
	return nil
}

func (r *fakeServiceRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	s, ok := r.store.services[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeServiceRepo) FindAll(db *gorm.DB, categoryID *uuid.UUID) ([]entity.Service, error) {
	var services []entity.Service
	for _, s := range r.store.services {
		if categoryID != nil && (s.CategoryID == nil || *s.CategoryID != *categoryID) {
			continue
		}
		services = append(services, s)
	}
	return services, nil
}

func (r *fakeServiceRepo) Update(db *gorm.DB, service *entity.Service) error {
	r.store.services[service.ID] = *service
	return nil
}

func (r *fakeServiceRepo) Delete(db *gorm.DB, id uuid.UUID) error {
	delete(r.store.services, id)
	return nil
}

type fakeCategoryRepo struct {
	store *memStore
}

func (r *fakeCategoryRepo) Create(db *gorm.DB, category *entity.Category) error {
	for _, c := range r.store.categories {
		if c.Name == category.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_categories_name"}
		}
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.store.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Category, error) {
	c, ok := r.store.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeCategoryRepo) FindAll(db *gorm.DB) ([]entity.Category, error) {
	var categories []entity.Category
	for _, c := range r.store.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

func (r *fakeCategoryRepo) Delete(db *gorm.DB, id uuid.UUID) error {
	delete(r.store.categories, id)
	return nil
}

type auditEntry struct {
	Action   string
	Entity   string
	EntityID string
	OldValue interface{}
	NewValue interface{}
}

type recordingAudit struct {
	entries []auditEntry
	err     error
}

func (a *recordingAudit) record(action, entityName, entityID string, oldValue, newValue interface{}) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, auditEntry{Action: action, Entity: entityName, EntityID: entityID, OldValue: oldValue, NewValue: newValue})
	return nil
}

func (a *recordingAudit) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	return a.record(action, entityName, entityID, nil, newValue)
}

func (a *recordingAudit) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return a.record(action, entityName, entityID, oldValue, newValue)
}

func (a *recordingAudit) LogDelete(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue interface{}) error {
	return a.record(action, entityName, entityID, oldValue, nil)
}

func (a *recordingAudit) actions() []string {
	actions := make([]string, len(a.entries))
	for i, e := range a.entries {
		actions[i] = e.Action
	}
	return actions
}

type memCache struct {
	entries     map[string]entity.Capacity
	invalidated []string
	sets        int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]entity.Capacity{}}
}

func cacheKey(bookingType entity.BookingType, id uuid.UUID) string {
	return string(bookingType) + ":" + id.String()
}

func (c *memCache) Get(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID) (*entity.Capacity, bool) {
	capacity, ok := c.entries[cacheKey(bookingType, targetID)]
	if !ok {
		return nil, false
	}
	return &capacity, true
}

func (c *memCache) Set(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID, capacity entity.Capacity) {
	c.sets++
	c.entries[cacheKey(bookingType, targetID)] = capacity
}

func (c *memCache) Invalidate(ctx context.Context, bookingType entity.BookingType, targetID uuid.UUID) {
	key := cacheKey(bookingType, targetID)
	delete(c.entries, key)
	c.invalidated = append(c.invalidated, key)
}

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, booking *entity.Booking) {
	p.keys = append(p.keys, routingKey)
}

// stubRegistrationGuard always reports no prior registration
type stubRegistrationGuard struct{}

func (stubRegistrationGuard) HasActiveRegistration(db *gorm.DB, userID, workshopID uuid.UUID) (bool, error) {
	return false, nil
}

// bookingFixture wires the booking use case over one memStore
type bookingFixture struct {
	store     *memStore
	audit     *recordingAudit
	cache     *memCache
	publisher *recordingPublisher
	usecase   BookingUsecase
}

func newBookingFixture() *bookingFixture {
	return newBookingFixtureWithGuard(nil)
}

func newBookingFixtureWithGuard(guard RegistrationGuard) *bookingFixture {
	store := newMemStore()
	log := newTestLogger()
	bookingRepo := &fakeBookingRepo{store: store}
	eventRepo := &fakeEventRepo{store: store}
	workshopRepo := &fakeWorkshopRepo{store: store}
	if guard == nil {
		guard = NewRegistrationGuard(bookingRepo)
	}

	f := &bookingFixture{
		store:     store,
		audit:     &recordingAudit{},
		cache:     newMemCache(),
		publisher: &recordingPublisher{},
	}
	f.usecase = NewBookingUsecase(
		&fakeTransactor{store: store},
		log,
		bookingRepo,
		eventRepo,
		workshopRepo,
		&fakeServiceRepo{store: store},
		NewCapacityGuard(log, bookingRepo, eventRepo, workshopRepo),
		guard,
		NewParticipantRoster(log, workshopRepo),
		f.audit,
		f.cache,
		f.publisher,
	)
	return f
}
