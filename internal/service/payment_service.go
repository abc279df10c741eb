package service

import (
	"context"
	"net/url"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentService lets admins record and correct manual payments.
type PaymentService struct {
	payments repository.PaymentRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(payments repository.PaymentRepository, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		log:      log.With().Str("component", "payment").Logger(),
		now:      time.Now,
	}
}

func (s *PaymentService) List(ctx context.Context, q url.Values) ([]model.PaymentDetail, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.PaymentListSpec)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.payments.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return items, params.Pagination(total), nil
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error) {
	return s.payments.GetDetail(ctx, id)
}

// Update applies req to the payment under a row lock. Amount changes and
// marking paid fail with model.ErrPaymentLocked once the payment settled.
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePaymentRequest) (*model.PaymentDetail, error) {
	now := s.now()
	p, err := s.payments.Update(ctx, id, func(p *model.Payment) error {
		return req.Apply(p, now)
	})
	if err != nil {
		return nil, err
	}
	if req.MarkPaid {
		s.log.Info().Str("payment_id", p.ID.String()).Int64("amount_cents", p.AmountCents).Msg("payment recorded")
	}
	return s.payments.GetDetail(ctx, p.ID)
}
