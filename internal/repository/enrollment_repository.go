package repository

import (
	"context"
	"errors"
	"time"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrollmentListSpec describes enrollment lists. user_id doubles as the
// owner scope for the learner's own list.
var EnrollmentListSpec = datatable.Spec{
	Sortable: map[string]string{
		"created_at":        "e.created_at",
		"status":            "e.status",
		"status_changed_at": "e.status_changed_at",
		"start_date":        "i.start_date",
	},
	DefaultSort: "created_at.desc",
	Filters: map[string]datatable.Filter{
		"status":       {Kind: datatable.In, Columns: []string{"e.status"}},
		"intake_id":    {Kind: datatable.UUID, Columns: []string{"e.intake_id"}},
		"course_id":    {Kind: datatable.UUID, Columns: []string{"i.course_id"}},
		"user_id":      {Kind: datatable.UUID, Columns: []string{"e.user_id"}},
		"q":            {Kind: datatable.Search, Columns: []string{"p.email", "p.full_name", "c.title"}},
		"created_from": {Kind: datatable.DateFrom, Columns: []string{"e.created_at"}},
		"created_to":   {Kind: datatable.DateTo, Columns: []string{"e.created_at"}},
	},
}

// TransitionInput describes a status change. Check, when set, runs against
// the locked row before anything is written.
type TransitionInput struct {
	ID        uuid.UUID
	To        model.EnrollmentStatus
	AdminNote string
	At        time.Time
	Check     func(e *model.Enrollment) error
}

// refundReasonCancelled is the reason recorded on refunds opened by a
// cancellation.
const refundReasonCancelled = "enrollment cancelled"

type EnrollmentRepository interface {
	CreateOrReopen(ctx context.Context, e *model.Enrollment) error
	GetDetail(ctx context.Context, id uuid.UUID) (*model.EnrollmentDetail, error)
	List(ctx context.Context, params datatable.Params) ([]model.EnrollmentDetail, int, error)
	Transition(ctx context.Context, in TransitionInput) (*model.TransitionResult, error)
	ListCompletable(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	ListReminderDue(ctx context.Context, from, to time.Time) ([]model.EnrollmentDetail, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

const enrollmentFrom = `
	FROM enrollments e
	JOIN intakes i ON i.id = e.intake_id
	JOIN courses c ON c.id = i.course_id
	JOIN profiles p ON p.id = e.user_id
	LEFT JOIN payments pay ON pay.enrollment_id = e.id`

const enrollmentSelect = `SELECT e.id, e.intake_id, e.user_id, e.status, e.note, e.admin_note, e.status_changed_at,
		e.reminder_sent_at, e.created_at, e.updated_at,
		c.id, c.title, c.price_cents, i.start_date, i.end_date, i.location, p.email, p.full_name,
		pay.id, pay.amount_cents, pay.status, pay.method, pay.reference, pay.paid_at, pay.created_at, pay.updated_at` +
	enrollmentFrom

func scanEnrollmentDetail(row pgx.Row, d *model.EnrollmentDetail) error {
	var (
		payID        *uuid.UUID
		payAmount    *int64
		payStatus    *string
		payMethod    *string
		payReference *string
		payPaidAt    *time.Time
		payCreated   *time.Time
		payUpdated   *time.Time
	)
	err := row.Scan(&d.ID, &d.IntakeID, &d.UserID, &d.Status, &d.Note, &d.AdminNote, &d.StatusChangedAt,
		&d.ReminderSentAt, &d.CreatedAt, &d.UpdatedAt,
		&d.CourseID, &d.CourseTitle, &d.CoursePrice, &d.IntakeStartDate, &d.IntakeEndDate, &d.IntakeLocation,
		&d.UserEmail, &d.UserName,
		&payID, &payAmount, &payStatus, &payMethod, &payReference, &payPaidAt, &payCreated, &payUpdated)
	if err != nil {
		return err
	}
	d.Payment = nil
	if payID != nil {
		d.Payment = &model.Payment{
			ID:           *payID,
			EnrollmentID: d.ID,
			AmountCents:  *payAmount,
			Status:       model.PaymentStatus(*payStatus),
			Method:       *payMethod,
			Reference:    *payReference,
			PaidAt:       payPaidAt,
			CreatedAt:    *payCreated,
			UpdatedAt:    *payUpdated,
		}
	}
	return nil
}

func getEnrollmentDetail(ctx context.Context, q querier, id uuid.UUID) (*model.EnrollmentDetail, error) {
	d := &model.EnrollmentDetail{}
	if err := scanEnrollmentDetail(q.QueryRow(ctx, enrollmentSelect+` WHERE e.id = $1`, id), d); err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

// CreateOrReopen inserts a requested enrollment, or reopens the user's
// cancelled one for the same intake. Any other existing row yields
// model.ErrAlreadyEnrolled.
func (r *enrollmentRepository) CreateOrReopen(ctx context.Context, e *model.Enrollment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (intake_id, user_id, status, note, status_changed_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (intake_id, user_id) DO UPDATE
		   SET status = EXCLUDED.status, note = EXCLUDED.note, admin_note = '',
		       status_changed_at = EXCLUDED.status_changed_at, reminder_sent_at = NULL, updated_at = NOW()
		   WHERE enrollments.status = $6
		 RETURNING id, admin_note, created_at, updated_at`,
		e.IntakeID, e.UserID, model.EnrollmentRequested, e.Note, e.StatusChangedAt, model.EnrollmentCancelled,
	).Scan(&e.ID, &e.AdminNote, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrAlreadyEnrolled
		}
		return mapError(err)
	}
	e.Status = model.EnrollmentRequested
	e.ReminderSentAt = nil
	return nil
}

func (r *enrollmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.EnrollmentDetail, error) {
	return getEnrollmentDetail(ctx, r.pool, id)
}

func (r *enrollmentRepository) List(ctx context.Context, params datatable.Params) ([]model.EnrollmentDetail, int, error) {
	where, args := params.Where(1)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+enrollmentFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx, enrollmentSelect+where+params.OrderBy()+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := []model.EnrollmentDetail{}
	for rows.Next() {
		var d model.EnrollmentDetail
		if err := scanEnrollmentDetail(rows, &d); err != nil {
			return nil, 0, err
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// Transition moves an enrollment to a new status in one transaction:
// the enrollment row is locked, the intake seat count is adjusted with a
// capacity-guarded update, and the payment follows model.PaymentSyncFor.
func (r *enrollmentRepository) Transition(ctx context.Context, in TransitionInput) (*model.TransitionResult, error) {
	var result *model.TransitionResult

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		e := &model.Enrollment{}
		err := tx.QueryRow(ctx,
			`SELECT id, intake_id, user_id, status FROM enrollments WHERE id = $1 FOR UPDATE`, in.ID,
		).Scan(&e.ID, &e.IntakeID, &e.UserID, &e.Status)
		if err != nil {
			return mapError(err)
		}
		if in.Check != nil {
			if err := in.Check(e); err != nil {
				return err
			}
		}
		if err := model.ValidateTransition(e.Status, in.To); err != nil {
			return err
		}

		switch model.SeatDelta(e.Status, in.To) {
		case 1:
			tag, err := tx.Exec(ctx,
				`UPDATE intakes SET registered = registered + 1, updated_at = NOW()
				 WHERE id = $1 AND registered < capacity`, e.IntakeID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return model.ErrIntakeFull
			}
		case -1:
			if _, err := tx.Exec(ctx,
				`UPDATE intakes SET registered = GREATEST(registered - 1, 0), updated_at = NOW()
				 WHERE id = $1`, e.IntakeID); err != nil {
				return err
			}
		}

		payment, refund, err := syncPayment(ctx, tx, e, in.To)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE enrollments
			 SET status = $2, admin_note = CASE WHEN $3 = '' THEN admin_note ELSE $3 END,
			     status_changed_at = $4, updated_at = NOW()
			 WHERE id = $1`,
			e.ID, in.To, in.AdminNote, in.At); err != nil {
			return err
		}

		detail, err := getEnrollmentDetail(ctx, tx, e.ID)
		if err != nil {
			return err
		}
		result = &model.TransitionResult{
			Enrollment: *detail,
			From:       e.Status,
			To:         in.To,
			Payment:    payment,
			Refund:     refund,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// syncPayment applies the payment side effect of moving e to status to.
// It returns the payment it wrote and the refund it opened, if any.
func syncPayment(ctx context.Context, tx pgx.Tx, e *model.Enrollment, to model.EnrollmentStatus) (*model.Payment, *model.Refund, error) {
	existing, err := lockPaymentByEnrollment(ctx, tx, e.ID)
	if err != nil {
		return nil, nil, err
	}

	switch model.PaymentSyncFor(to, existing) {
	case model.PaymentUpsertPending:
		p := &model.Payment{}
		err := scanPayment(tx.QueryRow(ctx,
			`INSERT INTO payments (enrollment_id, amount_cents, status)
			 SELECT $1, c.price_cents, $3
			 FROM intakes i JOIN courses c ON c.id = i.course_id
			 WHERE i.id = $2
			 ON CONFLICT (enrollment_id) DO UPDATE
			   SET amount_cents = EXCLUDED.amount_cents, status = EXCLUDED.status,
			       method = '', reference = '', paid_at = NULL, updated_at = NOW()
			 RETURNING `+paymentColumns,
			e.ID, e.IntakeID, model.PaymentPending), p)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil

	case model.PaymentCancel:
		p := &model.Payment{}
		err := scanPayment(tx.QueryRow(ctx,
			`UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+paymentColumns,
			existing.ID, model.PaymentCancelled), p)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil

	case model.PaymentRefund:
		committed, err := committedRefunds(ctx, tx, existing.ID)
		if err != nil {
			return nil, nil, err
		}
		amount := model.Refundable(existing.AmountCents, committed)
		if amount == 0 {
			return existing, nil, nil
		}
		refund, err := insertRefund(ctx, tx, existing.ID, amount, refundReasonCancelled)
		if err != nil {
			return nil, nil, err
		}
		return existing, refund, nil
	}
	return existing, nil, nil
}

// ListCompletable returns enrolled enrollments whose intake has ended and
// whose payment is settled.
func (r *enrollmentRepository) ListCompletable(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id
		 FROM enrollments e
		 JOIN intakes i ON i.id = e.intake_id
		 JOIN payments pay ON pay.enrollment_id = e.id
		 WHERE e.status = $1 AND pay.status = $2 AND i.end_date < $3
		 ORDER BY i.end_date ASC`,
		model.EnrollmentEnrolled, model.PaymentPaid, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListReminderDue returns enrolled enrollments of intakes starting in
// [from, to) that have not been reminded yet.
func (r *enrollmentRepository) ListReminderDue(ctx context.Context, from, to time.Time) ([]model.EnrollmentDetail, error) {
	rows, err := r.pool.Query(ctx,
		enrollmentSelect+`
		 WHERE e.status = $1 AND e.reminder_sent_at IS NULL
		   AND i.status = $2 AND i.start_date >= $3 AND i.start_date < $4
		 ORDER BY i.start_date ASC`,
		model.EnrollmentEnrolled, model.IntakeStatusScheduled, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.EnrollmentDetail
	for rows.Next() {
		var d model.EnrollmentDetail
		if err := scanEnrollmentDetail(rows, &d); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *enrollmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE enrollments SET reminder_sent_at = $2 WHERE id = $1 AND reminder_sent_at IS NULL`, id, at)
	return err
}
