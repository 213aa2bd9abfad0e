package handler

import (
	"errors"
	"net/http"
	"strconv"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/internal/usecase"
	"makerspace-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps use case errors onto HTTP statuses. Unknown errors become
// a 500 carrying only the fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var capErr *usecase.CapacityExceededError

	switch {
	case errors.As(err, &capErr):
		response.Error(w, http.StatusBadRequest, "Capacity exceeded", dto.CapacityExceededDetails{
			CurrentCount: capErr.CurrentCount,
			Requested:    capErr.Requested,
			Limit:        capErr.Limit,
		})

	case errors.Is(err, entity.ErrInvalidBooking),
		errors.Is(err, entity.ErrInvalidStatusTransition),
		errors.Is(err, usecase.ErrInvalidInput):
		response.BadRequest(w, err.Error())

	case errors.Is(err, usecase.ErrDuplicateRegistration),
		errors.Is(err, usecase.ErrParticipantsNotEditable),
		errors.Is(err, usecase.ErrWorkshopNotOpen),
		errors.Is(err, usecase.ErrEventNotOpen),
		errors.Is(err, usecase.ErrServiceUnavailable),
		errors.Is(err, usecase.ErrInvalidBookingType):
		response.BadRequest(w, capitalize(err.Error()))

	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Unauthorized")

	case errors.Is(err, usecase.ErrBookingNotOwned),
		errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "You don't have permission to access this resource")

	case errors.Is(err, usecase.ErrBookingNotFound),
		errors.Is(err, usecase.ErrEventNotFound),
		errors.Is(err, usecase.ErrWorkshopNotFound),
		errors.Is(err, usecase.ErrServiceNotFound),
		errors.Is(err, usecase.ErrCategoryNotFound),
		errors.Is(err, usecase.ErrAuditLogNotFound):
		response.NotFound(w, capitalize(err.Error()))

	case errors.Is(err, usecase.ErrSessionHasBookings),
		errors.Is(err, usecase.ErrCapacityBelowBooked),
		errors.Is(err, usecase.ErrCategoryExists),
		errors.Is(err, usecase.ErrServiceInUse):
		response.Conflict(w, capitalize(err.Error()))

	default:
		response.InternalServerError(w, fallback)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// parsePageQuery reads ?page=&limit=. Missing values fall back to defaults
// during normalization; malformed ones are rejected.
func parsePageQuery(r *http.Request) (dto.PageQuery, error) {
	var q dto.PageQuery
	query := r.URL.Query()

	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		q.Page = page
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		q.Limit = limit
	}
	return q.Normalize(), nil
}

// parseCategoryQuery reads an optional ?category_id=
func parseCategoryQuery(r *http.Request) (*uuid.UUID, error) {
	v := r.URL.Query().Get("category_id")
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
