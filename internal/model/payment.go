package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus enumerates the states of an enrollment payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ErrPaymentLocked is returned when editing fields that are frozen once a
// payment left the pending state.
var ErrPaymentLocked = errors.New("payment is no longer pending")

// Payment is the single payment record attached to an enrollment.
type Payment struct {
	ID           uuid.UUID     `json:"id"`
	EnrollmentID uuid.UUID     `json:"enrollment_id"`
	AmountCents  int64         `json:"amount_cents"`
	Status       PaymentStatus `json:"status"`
	Method       string        `json:"method"`
	Reference    string        `json:"reference"`
	PaidAt       *time.Time    `json:"paid_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// PaymentDetail joins a payment with its enrollment context for admin lists.
type PaymentDetail struct {
	Payment
	EnrollmentStatus EnrollmentStatus `json:"enrollment_status"`
	CourseTitle      string           `json:"course_title"`
	UserEmail        string           `json:"user_email"`
	UserName         string           `json:"user_name"`
	RefundedCents    int64            `json:"refunded_cents"`
}

// PaymentAction is the side effect an enrollment transition has on its payment.
type PaymentAction int

const (
	PaymentNoop PaymentAction = iota
	// PaymentUpsertPending creates the payment, or resets it to pending with
	// the current course price.
	PaymentUpsertPending
	// PaymentCancel marks a pending payment cancelled.
	PaymentCancel
	// PaymentRefund keeps a paid payment and opens a refund for what is left.
	PaymentRefund
)

func (a PaymentAction) String() string {
	switch a {
	case PaymentUpsertPending:
		return "upsert_pending"
	case PaymentCancel:
		return "cancel"
	case PaymentRefund:
		return "refund"
	}
	return "noop"
}

// PaymentSyncFor decides how the payment follows an enrollment moving to
// status to. existing is nil when no payment row exists yet.
func PaymentSyncFor(to EnrollmentStatus, existing *Payment) PaymentAction {
	switch to {
	case EnrollmentEnrolled:
		if existing != nil && existing.Status == PaymentPaid {
			return PaymentNoop
		}
		return PaymentUpsertPending
	case EnrollmentCancelled:
		if existing == nil {
			return PaymentNoop
		}
		switch existing.Status {
		case PaymentPending:
			return PaymentCancel
		case PaymentPaid:
			return PaymentRefund
		}
	}
	return PaymentNoop
}

// UpdatePaymentRequest is the admin payload for recording or correcting a payment.
type UpdatePaymentRequest struct {
	AmountCents *int64     `json:"amount_cents" binding:"omitempty,min=0"`
	MarkPaid    bool       `json:"mark_paid"`
	Method      string     `json:"method" binding:"omitempty,oneof=cash bank_transfer card cheque other"`
	Reference   string     `json:"reference" binding:"omitempty,max=120"`
	PaidAt      *time.Time `json:"paid_at"`
}

// Apply mutates p according to req. Amount changes and marking paid are
// only allowed while the payment is pending; method and reference may be
// corrected at any time.
func (req *UpdatePaymentRequest) Apply(p *Payment, now time.Time) error {
	if (req.AmountCents != nil || req.MarkPaid) && p.Status != PaymentPending {
		return ErrPaymentLocked
	}
	if req.AmountCents != nil {
		p.AmountCents = *req.AmountCents
	}
	if req.Method != "" {
		p.Method = req.Method
	}
	if req.Reference != "" {
		p.Reference = req.Reference
	}
	if req.MarkPaid {
		paidAt := now
		if req.PaidAt != nil {
			paidAt = *req.PaidAt
		}
		p.Status = PaymentPaid
		p.PaidAt = &paidAt
	}
	return nil
}
