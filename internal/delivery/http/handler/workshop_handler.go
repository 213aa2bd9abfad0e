package handler

import (
	"encoding/json"
	"net/http"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/usecase"
	"makerspace-booking/pkg/response"
	"makerspace-booking/pkg/validator"
)

type WorkshopHandler struct {
	workshopUsecase     usecase.WorkshopUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewWorkshopHandler(workshopUsecase usecase.WorkshopUsecase, availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *WorkshopHandler {
	return &WorkshopHandler{
		workshopUsecase:     workshopUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *WorkshopHandler) CreateWorkshop(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWorkshopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	workshop, err := h.workshopUsecase.CreateWorkshop(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create workshop")
		return
	}

	response.Success(w, http.StatusCreated, "Workshop created successfully", workshop)
}

func (h *WorkshopHandler) GetWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid workshop ID", nil)
		return
	}

	workshop, err := h.workshopUsecase.GetWorkshop(r.Context(), workshopID)
	if err != nil {
		writeError(w, err, "Failed to get workshop")
		return
	}

	response.Success(w, http.StatusOK, "Workshop retrieved successfully", workshop)
}

func (h *WorkshopHandler) GetWorkshops(w http.ResponseWriter, r *http.Request) {
	query, err := parseSessionListQuery(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid query parameters", nil)
		return
	}

	workshops, err := h.workshopUsecase.GetWorkshops(r.Context(), query)
	if err != nil {
		writeError(w, err, "Failed to get workshops")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Workshops retrieved successfully", workshops,
		response.NewMeta(query.Page, query.Limit, workshops.Total))
}

func (h *WorkshopHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	workshopID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid workshop ID", nil)
		return
	}

	availability, err := h.availabilityUsecase.GetAvailability(r.Context(), entity.BookingTypeWorkshop, workshopID)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *WorkshopHandler) UpdateWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid workshop ID", nil)
		return
	}

	var req dto.UpdateWorkshopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	workshop, err := h.workshopUsecase.UpdateWorkshop(r.Context(), workshopID, &req)
	if err != nil {
		writeError(w, err, "Failed to update workshop")
		return
	}

	response.Success(w, http.StatusOK, "Workshop updated successfully", workshop)
}

func (h *WorkshopHandler) DeleteWorkshop(w http.ResponseWriter, r *http.Request) {
	workshopID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid workshop ID", nil)
		return
	}

	deleted, err := h.workshopUsecase.DeleteWorkshop(r.Context(), workshopID)
	if err != nil {
		writeError(w, err, "Failed to delete workshop")
		return
	}

	response.Success(w, http.StatusOK, "Workshop deleted successfully", deleted)
}
