package models

import "time"

// BookingStatus is the structured outcome of a scheduling attempt.
type BookingStatus string

const (
	BookingSuccess        BookingStatus = "success"
	BookingNoAvailability BookingStatus = "no_availability"
	BookingError          BookingStatus = "error"
)

// BookingRequest carries everything a single scheduling attempt needs.
// ProfessionalName is optional; empty means any professional.
type BookingRequest struct {
	UserName         string `json:"user_name" binding:"required"`
	Day              string `json:"day" binding:"required"`
	Time             string `json:"time" binding:"required"`
	ProfessionalName string `json:"professional_name,omitempty"`
}

// BookingResult is returned to the agent and the HTTP API. Message is always
// a human readable sentence.
type BookingResult struct {
	Status       BookingStatus `json:"status"`
	Message      string        `json:"message"`
	EventID      string        `json:"event_id,omitempty"`
	Professional string        `json:"professional,omitempty"`
	Start        *time.Time    `json:"start,omitempty"`
}
