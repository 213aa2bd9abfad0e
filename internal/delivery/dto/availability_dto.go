package dto

import "github.com/google/uuid"

type AvailabilityResponse struct {
	TargetType   string    `json:"target_type"`
	TargetID     uuid.UUID `json:"target_id"`
	CurrentCount int       `json:"current_count"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	IsFull       bool      `json:"is_full"`
}
