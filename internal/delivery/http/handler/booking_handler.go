package handler

import (
	"encoding/json"
	"net/http"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/usecase"
	"makerspace-booking/pkg/response"
	"makerspace-booking/pkg/validator"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.CreateBooking(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	booking, err := h.bookingUsecase.GetBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, err, "Failed to get booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingUsecase.GetMyBookings(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get bookings")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Bookings retrieved successfully", bookings,
		response.NewMeta(query.Page, query.Limit, bookings.Total))
}

// GetAllBookings is the admin listing across every user
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingUsecase.GetAllBookings(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get bookings")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Bookings retrieved successfully", bookings,
		response.NewMeta(query.Page, query.Limit, bookings.Total))
}

func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.UpdateBooking(r.Context(), bookingID, &req)
	if err != nil {
		writeError(w, err, "Failed to update booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking updated successfully", booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	booking, err := h.bookingUsecase.CancelBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, err, "Failed to cancel booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", booking)
}

func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	deleted, err := h.bookingUsecase.DeleteBooking(r.Context(), bookingID)
	if err != nil {
		writeError(w, err, "Failed to delete booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking deleted successfully", deleted)
}

func (h *BookingHandler) listQuery(w http.ResponseWriter, r *http.Request) (dto.BookingListQuery, bool) {
	page, err := parsePageQuery(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid pagination parameters", nil)
		return dto.BookingListQuery{}, false
	}

	return dto.BookingListQuery{
		Status:      r.URL.Query().Get("status"),
		BookingType: r.URL.Query().Get("booking_type"),
		PageQuery:   page,
	}, true
}
