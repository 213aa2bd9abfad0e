package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/usecase"
	"makerspace-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBookingUsecase returns whatever the test configured
type mockBookingUsecase struct {
	createResp *dto.BookingResponse
	listResp   *dto.BookingListResponse
	err        error

	gotCreate *dto.CreateBookingRequest
	gotQuery  dto.BookingListQuery
}

func (m *mockBookingUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	m.gotCreate = req
	return m.createResp, m.err
}

func (m *mockBookingUsecase) GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	return m.createResp, m.err
}

func (m *mockBookingUsecase) GetMyBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error) {
	m.gotQuery = query
	return m.listResp, m.err
}

func (m *mockBookingUsecase) GetAllBookings(ctx context.Context, query dto.BookingListQuery) (*dto.BookingListResponse, error) {
	m.gotQuery = query
	return m.listResp, m.err
}

func (m *mockBookingUsecase) UpdateBooking(ctx context.Context, bookingID uuid.UUID, req *dto.UpdateBookingRequest) (*dto.BookingResponse, error) {
	return m.createResp, m.err
}

func (m *mockBookingUsecase) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	return m.createResp, m.err
}

func (m *mockBookingUsecase) DeleteBooking(ctx context.Context, bookingID uuid.UUID) (*dto.DeletedResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.DeletedResponse{ID: bookingID}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
	Meta    *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
	} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func validCreateBody(workshopID uuid.UUID) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"booking_type":           "workshop",
		"workshop_id":            workshopID,
		"date":                   "2030-04-01",
		"time":                   "10:00",
		"number_of_participants": 1,
		"payment_method":         "card",
		"customer_details": map[string]string{
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
			"phone": "+44 20 7946 0000",
		},
	})
	return body
}

func postCreate(h *BookingHandler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, req)
	return rec
}

func TestCreateBooking_Success(t *testing.T) {
	workshopID := uuid.New()
	mock := &mockBookingUsecase{createResp: &dto.BookingResponse{ID: uuid.New(), Status: "pending", TotalPrice: "40.00"}}
	h := NewBookingHandler(mock, validator.NewValidator())

	rec := postCreate(h, validCreateBody(workshopID))

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.True(t, body.Success)
	require.NotNil(t, mock.gotCreate)
	assert.Equal(t, workshopID, *mock.gotCreate.WorkshopID)
	assert.Equal(t, 1, *mock.gotCreate.NumberOfParticipants)
}

func TestCreateBooking_RejectsBadInput(t *testing.T) {
	h := NewBookingHandler(&mockBookingUsecase{}, validator.NewValidator())

	rec := postCreate(h, []byte(`{"booking_type":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec).Error)

	rec = postCreate(h, []byte(`{"booking_type":"workshop","date":"01-04-2030","time":"10:00","payment_method":"card","customer_details":{"name":"Ada","email":"not-an-email"}}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body.Error)

	var details map[string]string
	require.NoError(t, json.Unmarshal(body.Details, &details))
	assert.Contains(t, details, "workshop_id")
	assert.Contains(t, details, "date")
	assert.Contains(t, details, "customer_details.email")
}

func TestCreateBooking_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"capacity", &usecase.CapacityExceededError{CurrentCount: 1, Requested: 1, Limit: 1}, http.StatusBadRequest, "Capacity exceeded"},
		{"duplicate", usecase.ErrDuplicateRegistration, http.StatusBadRequest, "You already have an active booking for this workshop"},
		{"workshop closed", usecase.ErrWorkshopNotOpen, http.StatusBadRequest, "Workshop is not open for registration"},
		{"event closed", usecase.ErrEventNotOpen, http.StatusBadRequest, "Event is not open for registration"},
		{"invalid booking", fmt.Errorf("%w: event booking must not set workshop_id", entity.ErrInvalidBooking), http.StatusBadRequest, "invalid booking: event booking must not set workshop_id"},
		{"unauthenticated", usecase.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"not found", usecase.ErrWorkshopNotFound, http.StatusNotFound, "Workshop not found"},
		{"unexpected", errors.New("connection reset by peer"), http.StatusInternalServerError, "Failed to create booking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBookingHandler(&mockBookingUsecase{err: tt.err}, validator.NewValidator())

			rec := postCreate(h, validCreateBody(uuid.New()))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestCreateBooking_CapacityDetails(t *testing.T) {
	h := NewBookingHandler(&mockBookingUsecase{err: &usecase.CapacityExceededError{CurrentCount: 8, Requested: 3, Limit: 10}}, validator.NewValidator())

	rec := postCreate(h, validCreateBody(uuid.New()))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var details dto.CapacityExceededDetails
	require.NoError(t, json.Unmarshal(decode(t, rec).Details, &details))
	assert.Equal(t, dto.CapacityExceededDetails{CurrentCount: 8, Requested: 3, Limit: 10}, details)
}

func TestBookingByID_Routes(t *testing.T) {
	bookingID := uuid.New()

	tests := []struct {
		name       string
		id         string
		err        error
		call       func(h *BookingHandler, w http.ResponseWriter, r *http.Request)
		wantStatus int
	}{
		{"get malformed id", "not-a-uuid", nil, (*BookingHandler).GetBooking, http.StatusBadRequest},
		{"get not owned", bookingID.String(), usecase.ErrBookingNotOwned, (*BookingHandler).GetBooking, http.StatusForbidden},
		{"get missing", bookingID.String(), usecase.ErrBookingNotFound, (*BookingHandler).GetBooking, http.StatusNotFound},
		{"cancel terminal", bookingID.String(), fmt.Errorf("%w: completed -> cancelled", entity.ErrInvalidStatusTransition), (*BookingHandler).CancelBooking, http.StatusBadRequest},
		{"cancel ok", bookingID.String(), nil, (*BookingHandler).CancelBooking, http.StatusOK},
		{"delete ok", bookingID.String(), nil, (*BookingHandler).DeleteBooking, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBookingHandler(&mockBookingUsecase{err: tt.err, createResp: &dto.BookingResponse{ID: bookingID}}, validator.NewValidator())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+tt.id, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()

			tt.call(h, rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestUpdateBooking_ValidatesStatus(t *testing.T) {
	h := NewBookingHandler(&mockBookingUsecase{}, validator.NewValidator())
	id := uuid.New().String()

	req := httptest.NewRequest(http.MethodPut, "/api/v1/bookings/"+id, bytes.NewReader([]byte(`{"status":"archived"}`)))
	req = mux.SetURLVars(req, map[string]string{"id": id})
	rec := httptest.NewRecorder()

	h.UpdateBooking(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(decode(t, rec).Details, &details))
	assert.Equal(t, "status must be one of: pending confirmed cancelled completed", details["status"])
}

func TestGetMyBookings_Pagination(t *testing.T) {
	mock := &mockBookingUsecase{listResp: &dto.BookingListResponse{Bookings: []dto.BookingResponse{}, Total: 45}}
	h := NewBookingHandler(mock, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?page=2&limit=20&status=confirmed", nil)
	rec := httptest.NewRecorder()
	h.GetMyBookings(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 2, body.Meta.Page)
	assert.EqualValues(t, 45, body.Meta.Total)
	assert.Equal(t, "confirmed", mock.gotQuery.Status)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings?page=two", nil)
	rec = httptest.NewRecorder()
	h.GetMyBookings(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteError_Conflicts(t *testing.T) {
	for _, err := range []error{usecase.ErrSessionHasBookings, usecase.ErrCapacityBelowBooked, usecase.ErrCategoryExists, usecase.ErrServiceInUse} {
		rec := httptest.NewRecorder()
		writeError(rec, err, "fallback")
		assert.Equal(t, http.StatusConflict, rec.Code, err.Error())
	}

	rec := httptest.NewRecorder()
	writeError(rec, usecase.ErrForbidden, "fallback")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
