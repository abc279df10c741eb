package repository

import (
	"context"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefundListSpec describes the admin refund list.
var RefundListSpec = datatable.Spec{
	Sortable: map[string]string{
		"amount":       "rf.amount_cents",
		"created_at":   "rf.created_at",
		"processed_at": "rf.processed_at",
	},
	DefaultSort: "created_at.desc",
	Filters: map[string]datatable.Filter{
		"status":       {Kind: datatable.In, Columns: []string{"rf.status"}},
		"payment_id":   {Kind: datatable.UUID, Columns: []string{"rf.payment_id"}},
		"q":            {Kind: datatable.Search, Columns: []string{"p.email", "p.full_name", "rf.reason"}},
		"created_from": {Kind: datatable.DateFrom, Columns: []string{"rf.created_at"}},
		"created_to":   {Kind: datatable.DateTo, Columns: []string{"rf.created_at"}},
	},
}

type RefundRepository interface {
	Create(ctx context.Context, paymentID uuid.UUID, amountCents int64, reason string) (*model.RefundDetail, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.RefundDetail, error)
	List(ctx context.Context, params datatable.Params) ([]model.RefundDetail, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to model.RefundStatus, at time.Time) (*model.RefundDetail, error)
}

type refundRepository struct {
	pool *pgxpool.Pool
}

func NewRefundRepository(pool *pgxpool.Pool) RefundRepository {
	return &refundRepository{pool: pool}
}

const refundColumns = `id, payment_id, amount_cents, reason, status, processed_at, created_at, updated_at`

func scanRefund(row pgx.Row, rf *model.Refund) error {
	return row.Scan(&rf.ID, &rf.PaymentID, &rf.AmountCents, &rf.Reason, &rf.Status, &rf.ProcessedAt, &rf.CreatedAt, &rf.UpdatedAt)
}

const refundDetailFrom = `
	FROM refunds rf
	JOIN payments pay ON pay.id = rf.payment_id
	JOIN enrollments e ON e.id = pay.enrollment_id
	JOIN intakes i ON i.id = e.intake_id
	JOIN courses c ON c.id = i.course_id
	JOIN profiles p ON p.id = e.user_id`

const refundDetailSelect = `SELECT rf.id, rf.payment_id, rf.amount_cents, rf.reason, rf.status, rf.processed_at,
		rf.created_at, rf.updated_at, e.id, c.title, p.email, p.full_name` + refundDetailFrom

func scanRefundDetail(row pgx.Row, d *model.RefundDetail) error {
	return row.Scan(&d.ID, &d.PaymentID, &d.AmountCents, &d.Reason, &d.Status, &d.ProcessedAt,
		&d.CreatedAt, &d.UpdatedAt, &d.EnrollmentID, &d.CourseTitle, &d.UserEmail, &d.UserName)
}

func getRefundDetail(ctx context.Context, q querier, id uuid.UUID) (*model.RefundDetail, error) {
	d := &model.RefundDetail{}
	if err := scanRefundDetail(q.QueryRow(ctx, refundDetailSelect+` WHERE rf.id = $1`, id), d); err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

// committedRefunds sums refunds against a payment that were not rejected.
func committedRefunds(ctx context.Context, q querier, paymentID uuid.UUID) (int64, error) {
	var sum int64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM refunds WHERE payment_id = $1 AND status <> $2`,
		paymentID, model.RefundRejected,
	).Scan(&sum)
	return sum, err
}

func insertRefund(ctx context.Context, q querier, paymentID uuid.UUID, amount int64, reason string) (*model.Refund, error) {
	rf := &model.Refund{}
	err := scanRefund(q.QueryRow(ctx,
		`INSERT INTO refunds (payment_id, amount_cents, reason, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+refundColumns,
		paymentID, amount, reason, model.RefundPending), rf)
	if err != nil {
		return nil, mapError(err)
	}
	return rf, nil
}

// Create opens a refund against a paid payment. The payment row is locked
// so concurrent refunds cannot exceed the paid amount together.
func (r *refundRepository) Create(ctx context.Context, paymentID uuid.UUID, amountCents int64, reason string) (*model.RefundDetail, error) {
	var detail *model.RefundDetail
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		p := &model.Payment{}
		err := scanPayment(tx.QueryRow(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID), p)
		if err != nil {
			return mapError(err)
		}
		if p.Status != model.PaymentPaid {
			return model.ErrPaymentNotPaid
		}

		committed, err := committedRefunds(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if amountCents > model.Refundable(p.AmountCents, committed) {
			return model.ErrRefundExceedsPayment
		}

		rf, err := insertRefund(ctx, tx, p.ID, amountCents, reason)
		if err != nil {
			return err
		}
		detail, err = getRefundDetail(ctx, tx, rf.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *refundRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.RefundDetail, error) {
	return getRefundDetail(ctx, r.pool, id)
}

func (r *refundRepository) List(ctx context.Context, params datatable.Params) ([]model.RefundDetail, int, error) {
	where, args := params.Where(1)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+refundDetailFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx, refundDetailSelect+where+params.OrderBy()+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []model.RefundDetail{}
	for rows.Next() {
		var d model.RefundDetail
		if err := scanRefundDetail(rows, &d); err != nil {
			return nil, 0, err
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// UpdateStatus reviews a refund. Processing the refund that brings the
// processed total up to the payment amount marks the payment refunded.
func (r *refundRepository) UpdateStatus(ctx context.Context, id uuid.UUID, to model.RefundStatus, at time.Time) (*model.RefundDetail, error) {
	var detail *model.RefundDetail
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		rf := &model.Refund{}
		err := scanRefund(tx.QueryRow(ctx, `SELECT `+refundColumns+` FROM refunds WHERE id = $1 FOR UPDATE`, id), rf)
		if err != nil {
			return mapError(err)
		}
		if err := model.ValidateRefundTransition(rf.Status, to); err != nil {
			return err
		}

		var processedAt *time.Time
		if to == model.RefundProcessed {
			processedAt = &at
		}
		if _, err := tx.Exec(ctx,
			`UPDATE refunds SET status = $2, processed_at = COALESCE($3, processed_at), updated_at = NOW() WHERE id = $1`,
			rf.ID, to, processedAt); err != nil {
			return err
		}

		if to == model.RefundProcessed {
			if _, err := tx.Exec(ctx,
				`UPDATE payments pay SET status = $2, updated_at = NOW()
				 WHERE pay.id = $1
				   AND pay.amount_cents <= (SELECT COALESCE(SUM(amount_cents), 0) FROM refunds WHERE payment_id = $1 AND status = $3)`,
				rf.PaymentID, model.PaymentRefunded, model.RefundProcessed); err != nil {
				return err
			}
		}

		detail, err = getRefundDetail(ctx, tx, rf.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
