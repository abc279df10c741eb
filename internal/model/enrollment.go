package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates the lifecycle states of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentRequested EnrollmentStatus = "requested"
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment errors.
var (
	ErrInvalidTransition = errors.New("invalid enrollment status transition")
	ErrAlreadyEnrolled   = errors.New("user already holds an enrollment for this intake")
)

// enrollmentTransitions lists the allowed target states per source state.
// cancelled and completed are terminal.
var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentRequested: {EnrollmentEnrolled, EnrollmentCancelled},
	EnrollmentEnrolled:  {EnrollmentCompleted, EnrollmentCancelled},
}

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentRequested, EnrollmentEnrolled, EnrollmentCancelled, EnrollmentCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentCancelled || s == EnrollmentCompleted
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	for _, allowed := range enrollmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsSeat reports whether an enrollment in this state counts against
// intake capacity.
func (s EnrollmentStatus) HoldsSeat() bool {
	return s == EnrollmentEnrolled || s == EnrollmentCompleted
}

// ValidateTransition returns ErrInvalidTransition (wrapped with both states)
// when from → to is not allowed.
func ValidateTransition(from, to EnrollmentStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// SeatDelta returns how intake.registered changes for from → to.
func SeatDelta(from, to EnrollmentStatus) int {
	switch {
	case !from.HoldsSeat() && to.HoldsSeat():
		return 1
	case from.HoldsSeat() && !to.HoldsSeat():
		return -1
	}
	return 0
}

// Enrollment is a user's request to join an intake.
type Enrollment struct {
	ID              uuid.UUID        `json:"id"`
	IntakeID        uuid.UUID        `json:"intake_id"`
	UserID          uuid.UUID        `json:"user_id"`
	Status          EnrollmentStatus `json:"status"`
	Note            string           `json:"note"`
	AdminNote       string           `json:"admin_note,omitempty"`
	StatusChangedAt time.Time        `json:"status_changed_at"`
	ReminderSentAt  *time.Time       `json:"reminder_sent_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// EnrollmentDetail joins an enrollment with the data shown in lists and
// notification emails.
type EnrollmentDetail struct {
	Enrollment
	CourseID        uuid.UUID `json:"course_id"`
	CourseTitle     string    `json:"course_title"`
	CoursePrice     int64     `json:"course_price_cents"`
	IntakeStartDate time.Time `json:"intake_start_date"`
	IntakeEndDate   time.Time `json:"intake_end_date"`
	IntakeLocation  string    `json:"intake_location"`
	UserEmail       string    `json:"user_email"`
	UserName        string    `json:"user_name"`
	Payment         *Payment  `json:"payment,omitempty"`
}

// TransitionResult describes what a committed status change did.
type TransitionResult struct {
	Enrollment EnrollmentDetail `json:"enrollment"`
	From       EnrollmentStatus `json:"from"`
	To         EnrollmentStatus `json:"to"`
	Payment    *Payment         `json:"payment,omitempty"`
	Refund     *Refund          `json:"refund,omitempty"`
}

// CreateEnrollmentRequest is the payload a user sends to request a seat.
type CreateEnrollmentRequest struct {
	IntakeID uuid.UUID `json:"intake_id" binding:"required"`
	Note     string    `json:"note" binding:"omitempty,max=1000"`
}

// TransitionEnrollmentRequest is the payload an admin sends to move an
// enrollment through its lifecycle.
type TransitionEnrollmentRequest struct {
	Status    EnrollmentStatus `json:"status" binding:"required,oneof=enrolled cancelled completed"`
	AdminNote string           `json:"admin_note" binding:"omitempty,max=1000"`
}
