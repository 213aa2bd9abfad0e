package converter

import (
	"makerspace-booking/internal/delivery/dto"
	"makerspace-booking/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO,
// including whichever target relation was preloaded.
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	return &dto.BookingResponse{
		ID:                   booking.ID,
		UserID:               booking.UserID,
		BookingType:          string(booking.BookingType),
		EventID:              booking.EventID,
		ServiceID:            booking.ServiceID,
		WorkshopID:           booking.WorkshopID,
		Date:                 booking.Date.Format(dateLayout),
		Time:                 booking.Time,
		Status:               string(booking.Status),
		PaymentStatus:        string(booking.PaymentStatus),
		PaymentMethod:        booking.PaymentMethod,
		NumberOfParticipants: booking.NumberOfParticipants,
		TotalPrice:           booking.TotalPrice.StringFixed(2),
		Duration:             booking.Duration,
		CustomerDetails: dto.CustomerDetailsResponse{
			Name:  booking.Customer.Name,
			Email: booking.Customer.Email,
			Phone: booking.Customer.Phone,
		},
		Notes:       booking.Notes,
		BookingDate: booking.BookingDate,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
		User:        UserToResponse(booking.User),
		Event:       EventToResponse(booking.Event),
		Service:     ServiceToResponse(booking.Service),
		Workshop:    WorkshopToResponse(booking.Workshop),
	}
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}
