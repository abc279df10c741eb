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

// IntakeListSpec describes the admin intake list.
var IntakeListSpec = datatable.Spec{
	Sortable: map[string]string{
		"start_date": "i.start_date",
		"capacity":   "i.capacity",
		"registered": "i.registered",
		"created_at": "i.created_at",
	},
	DefaultSort: "start_date.desc",
	Filters: map[string]datatable.Filter{
		"course_id":  {Kind: datatable.UUID, Columns: []string{"i.course_id"}},
		"status":     {Kind: datatable.In, Columns: []string{"i.status"}},
		"start_from": {Kind: datatable.DateFrom, Columns: []string{"i.start_date"}},
		"start_to":   {Kind: datatable.DateTo, Columns: []string{"i.start_date"}},
		"q":          {Kind: datatable.Search, Columns: []string{"c.title", "i.location"}},
	},
}

type IntakeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Intake, error)
	List(ctx context.Context, params datatable.Params) ([]model.Intake, int, error)
	ListOpenByCourse(ctx context.Context, courseID uuid.UUID, now time.Time) ([]model.Intake, error)
	Create(ctx context.Context, in *model.Intake) error
	Update(ctx context.Context, in *model.Intake) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type intakeRepository struct {
	pool *pgxpool.Pool
}

func NewIntakeRepository(pool *pgxpool.Pool) IntakeRepository {
	return &intakeRepository{pool: pool}
}

const intakeSelect = `SELECT i.id, i.course_id, c.title, i.start_date, i.end_date, i.registration_opens_at,
		i.registration_closes_at, i.capacity, i.registered, i.location, i.status, i.created_at, i.updated_at
	FROM intakes i
	JOIN courses c ON c.id = i.course_id`

func scanIntake(row pgx.Row, in *model.Intake) error {
	return row.Scan(&in.ID, &in.CourseID, &in.CourseTitle, &in.StartDate, &in.EndDate, &in.RegistrationOpensAt,
		&in.RegistrationClosesAt, &in.Capacity, &in.Registered, &in.Location, &in.Status, &in.CreatedAt, &in.UpdatedAt)
}

func collectIntakes(rows pgx.Rows) ([]model.Intake, error) {
	defer rows.Close()
	intakes := []model.Intake{}
	for rows.Next() {
		var in model.Intake
		if err := scanIntake(rows, &in); err != nil {
			return nil, err
		}
		intakes = append(intakes, in)
	}
	return intakes, rows.Err()
}

func (r *intakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Intake, error) {
	in := &model.Intake{}
	if err := scanIntake(r.pool.QueryRow(ctx, intakeSelect+` WHERE i.id = $1`, id), in); err != nil {
		return nil, mapError(err)
	}
	return in, nil
}

func (r *intakeRepository) List(ctx context.Context, params datatable.Params) ([]model.Intake, int, error) {
	where, args := params.Where(1)

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM intakes i JOIN courses c ON c.id = i.course_id`+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx, intakeSelect+where+params.OrderBy()+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	intakes, err := collectIntakes(rows)
	return intakes, total, err
}

// ListOpenByCourse returns intakes a visitor can still register for.
func (r *intakeRepository) ListOpenByCourse(ctx context.Context, courseID uuid.UUID, now time.Time) ([]model.Intake, error) {
	rows, err := r.pool.Query(ctx,
		intakeSelect+`
		 WHERE i.course_id = $1
		   AND i.status = $2
		   AND i.registration_opens_at <= $3
		   AND i.registration_closes_at >= $3
		   AND i.registered < i.capacity
		 ORDER BY i.start_date ASC`,
		courseID, model.IntakeStatusScheduled, now,
	)
	if err != nil {
		return nil, err
	}
	return collectIntakes(rows)
}

func (r *intakeRepository) Create(ctx context.Context, in *model.Intake) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO intakes (course_id, start_date, end_date, registration_opens_at, registration_closes_at, capacity, location, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, registered, created_at, updated_at`,
		in.CourseID, in.StartDate, in.EndDate, in.RegistrationOpensAt, in.RegistrationClosesAt, in.Capacity, in.Location, in.Status,
	).Scan(&in.ID, &in.Registered, &in.CreatedAt, &in.UpdatedAt)
	return mapWriteError(err)
}

// Update modifies an intake. The capacity check runs against the current
// registered count so a concurrent enrollment cannot slip past it.
func (r *intakeRepository) Update(ctx context.Context, in *model.Intake) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE intakes SET course_id = $1, start_date = $2, end_date = $3, registration_opens_at = $4,
			registration_closes_at = $5, capacity = $6, location = $7, status = $8, updated_at = NOW()
		 WHERE id = $9 AND registered <= $6
		 RETURNING registered, created_at, updated_at`,
		in.CourseID, in.StartDate, in.EndDate, in.RegistrationOpensAt, in.RegistrationClosesAt,
		in.Capacity, in.Location, in.Status, in.ID,
	).Scan(&in.Registered, &in.CreatedAt, &in.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return mapWriteError(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM intakes WHERE id = $1)`, in.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return model.ErrCapacityBelowRegistered
}

// Delete removes an intake. Intakes with enrollments return ErrInUse.
func (r *intakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM intakes WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
