package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RefundStatus enumerates the review states of a refund.
type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundProcessed RefundStatus = "processed"
)

// Refund errors.
var (
	ErrInvalidRefundTransition = errors.New("invalid refund status transition")
	ErrRefundExceedsPayment    = errors.New("refund exceeds the refundable amount")
	ErrPaymentNotPaid          = errors.New("payment has not been paid")
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundPending:  {RefundApproved, RefundRejected},
	RefundApproved: {RefundProcessed},
}

// ValidateRefundTransition checks a refund review step.
func ValidateRefundTransition(from, to RefundStatus) error {
	for _, allowed := range refundTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidRefundTransition, from, to)
}

// Refundable returns how much of amount is still refundable given the
// amounts of existing refunds that were not rejected.
func Refundable(amount int64, committed ...int64) int64 {
	left := amount
	for _, c := range committed {
		left -= c
	}
	if left < 0 {
		return 0
	}
	return left
}

// Refund is money returned against a paid payment.
type Refund struct {
	ID          uuid.UUID    `json:"id"`
	PaymentID   uuid.UUID    `json:"payment_id"`
	AmountCents int64        `json:"amount_cents"`
	Reason      string       `json:"reason"`
	Status      RefundStatus `json:"status"`
	ProcessedAt *time.Time   `json:"processed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// RefundDetail joins a refund with the context used in lists and emails.
type RefundDetail struct {
	Refund
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	CourseTitle  string    `json:"course_title"`
	UserEmail    string    `json:"user_email"`
	UserName     string    `json:"user_name"`
}

// CreateRefundRequest is the admin payload for opening a refund.
type CreateRefundRequest struct {
	PaymentID   uuid.UUID `json:"payment_id" binding:"required"`
	AmountCents int64     `json:"amount_cents" binding:"required,min=1"`
	Reason      string    `json:"reason" binding:"required,min=3,max=500"`
}

// UpdateRefundStatusRequest is the admin payload for reviewing a refund.
type UpdateRefundStatusRequest struct {
	Status RefundStatus `json:"status" binding:"required,oneof=approved rejected processed"`
}
