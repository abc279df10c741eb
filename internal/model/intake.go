package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// IntakeStatus enumerates the scheduling state of an intake.
type IntakeStatus string

const (
	IntakeStatusScheduled IntakeStatus = "scheduled"
	IntakeStatusCancelled IntakeStatus = "cancelled"
)

// Intake validation errors.
var (
	ErrIntakeDates             = errors.New("intake end date is before start date")
	ErrRegistrationWindow      = errors.New("registration closes before it opens")
	ErrCapacityBelowRegistered = errors.New("capacity is below the number of registered students")
	ErrIntakeFull              = errors.New("intake is full")
	ErrIntakeClosed            = errors.New("intake is not open for registration")
)

// Intake is a scheduled offering of a course.
type Intake struct {
	ID                   uuid.UUID    `json:"id"`
	CourseID             uuid.UUID    `json:"course_id"`
	CourseTitle          string       `json:"course_title,omitempty"`
	StartDate            time.Time    `json:"start_date"`
	EndDate              time.Time    `json:"end_date"`
	RegistrationOpensAt  time.Time    `json:"registration_opens_at"`
	RegistrationClosesAt time.Time    `json:"registration_closes_at"`
	Capacity             int          `json:"capacity"`
	Registered           int          `json:"registered"`
	Location             string       `json:"location"`
	Status               IntakeStatus `json:"status"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// SeatsLeft returns the remaining capacity, never negative.
func (i *Intake) SeatsLeft() int {
	if left := i.Capacity - i.Registered; left > 0 {
		return left
	}
	return 0
}

// IsOpen reports whether a visitor can request enrollment at the given time.
func (i *Intake) IsOpen(now time.Time) bool {
	return i.Status == IntakeStatusScheduled &&
		!now.Before(i.RegistrationOpensAt) &&
		!now.After(i.RegistrationClosesAt) &&
		i.Registered < i.Capacity
}

// Validate checks the date and capacity invariants.
func (i *Intake) Validate() error {
	if i.EndDate.Before(i.StartDate) {
		return ErrIntakeDates
	}
	if i.RegistrationClosesAt.Before(i.RegistrationOpensAt) {
		return ErrRegistrationWindow
	}
	if i.Capacity < i.Registered {
		return ErrCapacityBelowRegistered
	}
	return nil
}

// IntakeRequest is the payload for creating or updating an intake.
type IntakeRequest struct {
	CourseID             uuid.UUID    `json:"course_id" binding:"required"`
	StartDate            time.Time    `json:"start_date" binding:"required"`
	EndDate              time.Time    `json:"end_date" binding:"required"`
	RegistrationOpensAt  time.Time    `json:"registration_opens_at" binding:"required"`
	RegistrationClosesAt time.Time    `json:"registration_closes_at" binding:"required"`
	Capacity             int          `json:"capacity" binding:"required,min=1,max=10000"`
	Location             string       `json:"location" binding:"omitempty,max=200"`
	Status               IntakeStatus `json:"status" binding:"omitempty,oneof=scheduled cancelled"`
}
