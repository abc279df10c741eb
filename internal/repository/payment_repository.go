package repository

import (
	"context"
	"errors"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentListSpec describes the admin payment list.
var PaymentListSpec = datatable.Spec{
	Sortable: map[string]string{
		"amount":     "pay.amount_cents",
		"created_at": "pay.created_at",
		"paid_at":    "pay.paid_at",
	},
	DefaultSort: "created_at.desc",
	Filters: map[string]datatable.Filter{
		"status":    {Kind: datatable.In, Columns: []string{"pay.status"}},
		"method":    {Kind: datatable.Equals, Columns: []string{"pay.method"}},
		"q":         {Kind: datatable.Search, Columns: []string{"p.email", "p.full_name", "pay.reference"}},
		"paid_from": {Kind: datatable.DateFrom, Columns: []string{"pay.paid_at"}},
		"paid_to":   {Kind: datatable.DateTo, Columns: []string{"pay.paid_at"}},
	},
}

type PaymentRepository interface {
	GetDetail(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error)
	List(ctx context.Context, params datatable.Params) ([]model.PaymentDetail, int, error)
	// Update locks the payment, lets fn mutate it and persists the result.
	Update(ctx context.Context, id uuid.UUID, fn func(p *model.Payment) error) (*model.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `id, enrollment_id, amount_cents, status, method, reference, paid_at, created_at, updated_at`

func scanPayment(row pgx.Row, p *model.Payment) error {
	return row.Scan(&p.ID, &p.EnrollmentID, &p.AmountCents, &p.Status, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
}

// lockPaymentByEnrollment returns the enrollment's payment locked for
// update, or nil when none exists.
func lockPaymentByEnrollment(ctx context.Context, tx pgx.Tx, enrollmentID uuid.UUID) (*model.Payment, error) {
	p := &model.Payment{}
	err := scanPayment(tx.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE enrollment_id = $1 FOR UPDATE`, enrollmentID), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

const paymentDetailSelect = `SELECT pay.id, pay.enrollment_id, pay.amount_cents, pay.status, pay.method, pay.reference,
		pay.paid_at, pay.created_at, pay.updated_at, e.status, c.title, p.email, p.full_name,
		COALESCE((SELECT SUM(rf.amount_cents) FROM refunds rf WHERE rf.payment_id = pay.id AND rf.status = 'processed'), 0)` +
	paymentDetailFrom

const paymentDetailFrom = `
	FROM payments pay
	JOIN enrollments e ON e.id = pay.enrollment_id
	JOIN intakes i ON i.id = e.intake_id
	JOIN courses c ON c.id = i.course_id
	JOIN profiles p ON p.id = e.user_id`

func scanPaymentDetail(row pgx.Row, d *model.PaymentDetail) error {
	return row.Scan(&d.ID, &d.EnrollmentID, &d.AmountCents, &d.Status, &d.Method, &d.Reference,
		&d.PaidAt, &d.CreatedAt, &d.UpdatedAt, &d.EnrollmentStatus, &d.CourseTitle, &d.UserEmail, &d.UserName,
		&d.RefundedCents)
}

func (r *paymentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error) {
	d := &model.PaymentDetail{}
	if err := scanPaymentDetail(r.pool.QueryRow(ctx, paymentDetailSelect+` WHERE pay.id = $1`, id), d); err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

func (r *paymentRepository) List(ctx context.Context, params datatable.Params) ([]model.PaymentDetail, int, error) {
	where, args := params.Where(1)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+paymentDetailFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx, paymentDetailSelect+where+params.OrderBy()+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []model.PaymentDetail{}
	for rows.Next() {
		var d model.PaymentDetail
		if err := scanPaymentDetail(rows, &d); err != nil {
			return nil, 0, err
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

func (r *paymentRepository) Update(ctx context.Context, id uuid.UUID, fn func(p *model.Payment) error) (*model.Payment, error) {
	p := &model.Payment{}
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := scanPayment(tx.QueryRow(ctx,
			`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id), p)
		if err != nil {
			return mapError(err)
		}
		if err := fn(p); err != nil {
			return err
		}
		return scanPayment(tx.QueryRow(ctx,
			`UPDATE payments SET amount_cents = $2, status = $3, method = $4, reference = $5, paid_at = $6, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+paymentColumns,
			p.ID, p.AmountCents, p.Status, p.Method, p.Reference, p.PaidAt), p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
