package handler

import (
	"encoding/json"
	"net/http"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/usecase"
	"makerspace-booking/pkg/response"
	"makerspace-booking/pkg/validator"
)

// CatalogHandler serves categories and services
type CatalogHandler struct {
	categoryUsecase usecase.CategoryUsecase
	serviceUsecase  usecase.ServiceUsecase
	validator       *validator.CustomValidator
}

func NewCatalogHandler(categoryUsecase usecase.CategoryUsecase, serviceUsecase usecase.ServiceUsecase, validator *validator.CustomValidator) *CatalogHandler {
	return &CatalogHandler{
		categoryUsecase: categoryUsecase,
		serviceUsecase:  serviceUsecase,
		validator:       validator,
	}
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryUsecase.GetCategories(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get categories")
		return
	}

	response.Success(w, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	category, err := h.categoryUsecase.CreateCategory(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create category")
		return
	}

	response.Success(w, http.StatusCreated, "Category created successfully", category)
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	deleted, err := h.categoryUsecase.DeleteCategory(r.Context(), categoryID)
	if err != nil {
		writeError(w, err, "Failed to delete category")
		return
	}

	response.Success(w, http.StatusOK, "Category deleted successfully", deleted)
}

func (h *CatalogHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseCategoryQuery(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid category ID", nil)
		return
	}

	services, err := h.serviceUsecase.GetServices(r.Context(), categoryID)
	if err != nil {
		writeError(w, err, "Failed to get services")
		return
	}

	response.Success(w, http.StatusOK, "Services retrieved successfully", services)
}

func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid service ID", nil)
		return
	}

	svc, err := h.serviceUsecase.GetService(r.Context(), serviceID)
	if err != nil {
		writeError(w, err, "Failed to get service")
		return
	}

	response.Success(w, http.StatusOK, "Service retrieved successfully", svc)
}

func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.serviceUsecase.CreateService(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create service")
		return
	}

	response.Success(w, http.StatusCreated, "Service created successfully", svc)
}

func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid service ID", nil)
		return
	}

	var req dto.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	svc, err := h.serviceUsecase.UpdateService(r.Context(), serviceID, &req)
	if err != nil {
		writeError(w, err, "Failed to update service")
		return
	}

	response.Success(w, http.StatusOK, "Service updated successfully", svc)
}

func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid service ID", nil)
		return
	}

	deleted, err := h.serviceUsecase.DeleteService(r.Context(), serviceID)
	if err != nil {
		writeError(w, err, "Failed to delete service")
		return
	}

	response.Success(w, http.StatusOK, "Service deleted successfully", deleted)
}
