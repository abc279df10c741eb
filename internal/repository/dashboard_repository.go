package repository

import (
	"context"
	"time"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// DashboardTotals holds the headline counters.
type DashboardTotals struct {
	Courses          int `json:"courses"`
	PublishedCourses int `json:"published_courses"`
	OpenIntakes      int `json:"open_intakes"`
	Users            int `json:"users"`
}

// DashboardRevenue holds lifetime money totals in cents.
type DashboardRevenue struct {
	PaidCents     int64 `json:"paid_cents"`
	RefundedCents int64 `json:"refunded_cents"`
	NetCents      int64 `json:"net_cents"`
}

// MonthlyPoint is one bucket of a monthly chart series.
type MonthlyPoint struct {
	Month string `json:"month"`
	Value int64  `json:"value"`
}

// DashboardUpcomingIntake represents an intake that has not started yet.
type DashboardUpcomingIntake struct {
	ID          uuid.UUID `json:"id"`
	CourseTitle string    `json:"course_title"`
	StartDate   time.Time `json:"start_date"`
	Capacity    int       `json:"capacity"`
	Registered  int       `json:"registered"`
	FillRatio   float64   `json:"fill_ratio"`
}

// GetTotals retrieves the high-level counters for the dashboard.
func (r *DashboardRepository) GetTotals(ctx context.Context, now time.Time) (DashboardTotals, error) {
	var t DashboardTotals
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM courses WHERE is_published),
			(SELECT COUNT(*) FROM intakes
			  WHERE status = $2 AND registration_opens_at <= $1 AND registration_closes_at >= $1 AND registered < capacity),
			(SELECT COUNT(*) FROM profiles WHERE role = $3)`,
		now, model.IntakeStatusScheduled, model.RoleAuthenticated,
	).Scan(&t.Courses, &t.PublishedCourses, &t.OpenIntakes, &t.Users)
	return t, err
}

// GetEnrollmentStatusCounts retrieves the distribution of enrollments by status.
func (r *DashboardRepository) GetEnrollmentStatusCounts(ctx context.Context) (map[model.EnrollmentStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM enrollments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.EnrollmentStatus]int{
		model.EnrollmentRequested: 0,
		model.EnrollmentEnrolled:  0,
		model.EnrollmentCancelled: 0,
		model.EnrollmentCompleted: 0,
	}
	for rows.Next() {
		var status model.EnrollmentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetRevenue sums settled payments and processed refunds.
func (r *DashboardRepository) GetRevenue(ctx context.Context) (DashboardRevenue, error) {
	var rev DashboardRevenue
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE paid_at IS NOT NULL AND status IN ($1, $2)),
			(SELECT COALESCE(SUM(amount_cents), 0) FROM refunds WHERE status = $3)`,
		model.PaymentPaid, model.PaymentRefunded, model.RefundProcessed,
	).Scan(&rev.PaidCents, &rev.RefundedCents)
	rev.NetCents = rev.PaidCents - rev.RefundedCents
	return rev, err
}

const monthSeries = `generate_series(
		date_trunc('month', $1::timestamptz) - interval '11 months',
		date_trunc('month', $1::timestamptz),
		interval '1 month') AS m(month)`

// GetMonthlyRequests counts enrollment requests per month over the last
// twelve months, oldest first.
func (r *DashboardRepository) GetMonthlyRequests(ctx context.Context, now time.Time) ([]MonthlyPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(m.month, 'YYYY-MM'), COUNT(e.id)
		 FROM `+monthSeries+`
		 LEFT JOIN enrollments e ON date_trunc('month', e.created_at) = m.month
		 GROUP BY m.month ORDER BY m.month`, now)
	if err != nil {
		return nil, err
	}
	return collectMonthly(rows)
}

// GetMonthlyRevenue sums paid amounts per month of payment over the last
// twelve months, oldest first.
func (r *DashboardRepository) GetMonthlyRevenue(ctx context.Context, now time.Time) ([]MonthlyPoint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(m.month, 'YYYY-MM'), COALESCE(SUM(pay.amount_cents), 0)
		 FROM `+monthSeries+`
		 LEFT JOIN payments pay ON pay.paid_at IS NOT NULL AND date_trunc('month', pay.paid_at) = m.month
		 GROUP BY m.month ORDER BY m.month`, now)
	if err != nil {
		return nil, err
	}
	return collectMonthly(rows)
}

func collectMonthly(rows pgx.Rows) ([]MonthlyPoint, error) {
	defer rows.Close()
	var points []MonthlyPoint
	for rows.Next() {
		var p MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// GetUpcomingIntakes retrieves the next N scheduled intakes.
func (r *DashboardRepository) GetUpcomingIntakes(ctx context.Context, now time.Time, limit int) ([]DashboardUpcomingIntake, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT i.id, c.title, i.start_date, i.capacity, i.registered
		 FROM intakes i
		 JOIN courses c ON c.id = i.course_id
		 WHERE i.status = $1 AND i.start_date >= $2
		 ORDER BY i.start_date ASC LIMIT $3`,
		model.IntakeStatusScheduled, now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intakes := []DashboardUpcomingIntake{}
	for rows.Next() {
		var in DashboardUpcomingIntake
		if err := rows.Scan(&in.ID, &in.CourseTitle, &in.StartDate, &in.Capacity, &in.Registered); err != nil {
			return nil, err
		}
		if in.Capacity > 0 {
			in.FillRatio = float64(in.Registered) / float64(in.Capacity)
		}
		intakes = append(intakes, in)
	}
	return intakes, rows.Err()
}
