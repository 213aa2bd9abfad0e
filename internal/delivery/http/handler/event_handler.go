package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/usecase"
	"makerspace-booking/pkg/response"
	"makerspace-booking/pkg/validator"
)

type EventHandler struct {
	eventUsecase        usecase.EventUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewEventHandler(eventUsecase usecase.EventUsecase, availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *EventHandler {
	return &EventHandler{
		eventUsecase:        eventUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	event, err := h.eventUsecase.CreateEvent(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create event")
		return
	}

	response.Success(w, http.StatusCreated, "Event created successfully", event)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid event ID", nil)
		return
	}

	event, err := h.eventUsecase.GetEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err, "Failed to get event")
		return
	}

	response.Success(w, http.StatusOK, "Event retrieved successfully", event)
}

func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	query, err := parseSessionListQuery(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid query parameters", nil)
		return
	}

	events, err := h.eventUsecase.GetEvents(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get events")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Events retrieved successfully", events,
		response.NewMeta(query.Page, query.Limit, events.Total))
}

func (h *EventHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid event ID", nil)
		return
	}

	availability, err := h.availabilityUsecase.GetAvailability(r.Context(), entity.BookingTypeEvent, eventID)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid event ID", nil)
		return
	}

	var req dto.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	event, err := h.eventUsecase.UpdateEvent(r.Context(), eventID, &req)
	if err != nil {
		writeError(w, err, "Failed to update event")
		return
	}

	response.Success(w, http.StatusOK, "Event updated successfully", event)
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid event ID", nil)
		return
	}

	deleted, err := h.eventUsecase.DeleteEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, err, "Failed to delete event")
		return
	}

	response.Success(w, http.StatusOK, "Event deleted successfully", deleted)
}

// parseSessionListQuery reads the filters shared by event and workshop listings
func parseSessionListQuery(r *http.Request) (dto.SessionListQuery, error) {
	page, err := parsePageQuery(r)
	if err != nil {
		return dto.SessionListQuery{}, err
	}
	categoryID, err := parseCategoryQuery(r)
	if err != nil {
		return dto.SessionListQuery{}, err
	}

	query := dto.SessionListQuery{
		CategoryID: categoryID,
		Status:     r.URL.Query().Get("status"),
		PageQuery:  page,
	}
	if v := r.URL.Query().Get("upcoming"); v != "" {
		upcoming, err := strconv.ParseBool(v)
		if err != nil {
			return dto.SessionListQuery{}, err
		}
		query.UpcomingOnly = upcoming
	}
	return query, nil
}
