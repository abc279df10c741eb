package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/mail"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RefundService manages refunds against paid payments.
type RefundService struct {
	refunds  repository.RefundRepository
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewRefundService creates a new RefundService.
func NewRefundService(refunds repository.RefundRepository, notifier Notifier, log zerolog.Logger) *RefundService {
	return &RefundService{
		refunds:  refunds,
		notifier: notifier,
		log:      log.With().Str("component", "refund").Logger(),
		now:      time.Now,
	}
}

// Create opens a pending refund. The payment must be paid and the amount
// must fit in what is still refundable.
func (s *RefundService) Create(ctx context.Context, req *model.CreateRefundRequest) (*model.RefundDetail, error) {
	return s.refunds.Create(ctx, req.PaymentID, req.AmountCents, strings.TrimSpace(req.Reason))
}

func (s *RefundService) List(ctx context.Context, q url.Values) ([]model.RefundDetail, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.RefundListSpec)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.refunds.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return items, params.Pagination(total), nil
}

func (s *RefundService) Get(ctx context.Context, id uuid.UUID) (*model.RefundDetail, error) {
	return s.refunds.GetDetail(ctx, id)
}

// UpdateStatus reviews a refund and emails the student about the outcome.
func (s *RefundService) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateRefundStatusRequest) (*model.RefundDetail, error) {
	r, err := s.refunds.UpdateStatus(ctx, id, req.Status, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.notifier.Enqueue(ctx, mail.RefundUpdated(r)); err != nil {
		s.log.Error().Err(err).Str("refund_id", r.ID.String()).Msg("failed to queue refund email")
	}
	return r, nil
}
