package converter

import (
	"time"

	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

func CategoryToResponse(category *entity.Category) *dto.CategoryResponse {
	if category == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
	}
}

func CategoriesToResponses(categories []entity.Category) []dto.CategoryResponse {
	responses := make([]dto.CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *CategoryToResponse(&categories[i])
	}
	return responses
}

func ServiceToResponse(service *entity.Service) *dto.ServiceResponse {
	if service == nil {
		return nil
	}
	return &dto.ServiceResponse{
		ID:          service.ID,
		CategoryID:  service.CategoryID,
		Category:    CategoryToResponse(service.Category),
		Name:        service.Name,
		Description: service.Description,
		Price:       service.Price.StringFixed(2),
		Duration:    service.Duration,
		IsActive:    service.IsBookable(),
		CreatedAt:   service.CreatedAt,
		UpdatedAt:   service.UpdatedAt,
	}
}

func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, len(services))
	for i := range services {
		responses[i] = *ServiceToResponse(&services[i])
	}
	return responses
}

// EventToResponse converts an Event entity to EventResponse DTO
func EventToResponse(event *entity.Event) *dto.EventResponse {
	if event == nil {
		return nil
	}
	return &dto.EventResponse{
		ID:          event.ID,
		HostID:      event.HostID,
		CategoryID:  event.CategoryID,
		Category:    CategoryToResponse(event.Category),
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		Date:        event.Date.Format(dateLayout),
		Time:        event.Time,
		Price:       event.Price.StringFixed(2),
		Capacity:    event.Capacity,
		Status:      string(event.Status),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func EventsToResponses(events []entity.Event) []dto.EventResponse {
	responses := make([]dto.EventResponse, len(events))
	for i := range events {
		responses[i] = *EventToResponse(&events[i])
	}
	return responses
}

// WorkshopToResponse converts a Workshop entity to WorkshopResponse DTO.
// Participants reflect the roster as loaded; an unloaded roster renders empty.
// IsFull follows the booked participant count, not the roster length.
func WorkshopToResponse(workshop *entity.Workshop) *dto.WorkshopResponse {
	if workshop == nil {
		return nil
	}
	participants := workshop.ParticipantIDs()
	if participants == nil {
		participants = []uuid.UUID{}
	}
	return &dto.WorkshopResponse{
		ID:                 workshop.ID,
		HostID:             workshop.HostID,
		CategoryID:         workshop.CategoryID,
		Category:           CategoryToResponse(workshop.Category),
		Title:              workshop.Title,
		Description:        workshop.Description,
		Location:           workshop.Location,
		Date:               workshop.Date.Format(dateLayout),
		Time:               workshop.Time,
		Duration:           workshop.Duration,
		Price:              workshop.Price.StringFixed(2),
		MaxParticipants:    workshop.MaxParticipants,
		BookedParticipants: workshop.BookedParticipants,
		Status:             string(workshop.Status),
		Participants:       participants,
		IsFull:             workshop.IsFull(),
		IsUpcoming:         workshop.IsUpcoming(time.Now()),
		CreatedAt:          workshop.CreatedAt,
		UpdatedAt:          workshop.UpdatedAt,
	}
}

func WorkshopsToResponses(workshops []entity.Workshop) []dto.WorkshopResponse {
	responses := make([]dto.WorkshopResponse, len(workshops))
	for i := range workshops {
		responses[i] = *WorkshopToResponse(&workshops[i])
	}
	return responses
}

func CapacityToAvailability(targetType entity.BookingType, targetID uuid.UUID, capacity entity.Capacity) *dto.AvailabilityResponse {
	return &dto.AvailabilityResponse{
		TargetType:   string(targetType),
		TargetID:     targetID,
		CurrentCount: capacity.CurrentCount,
		Limit:        capacity.Limit,
		Remaining:    capacity.Remaining(),
		IsFull:       capacity.IsFull(),
	}
}
