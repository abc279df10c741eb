package repository

import (
	"context"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseListSpec describes the admin course list.
var CourseListSpec = datatable.Spec{
	Sortable: map[string]string{
		"title":      "c.title",
		"price":      "c.price_cents",
		"created_at": "c.created_at",
	},
	DefaultSort: "created_at.desc",
	Filters: map[string]datatable.Filter{
		"q":            {Kind: datatable.Search, Columns: []string{"c.title", "c.slug"}},
		"category_id":  {Kind: datatable.Int, Columns: []string{"c.category_id"}},
		"is_published": {Kind: datatable.Bool, Columns: []string{"c.is_published"}},
	},
}

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseSelect = `SELECT c.id, c.category_id, cc.name, c.title, c.slug, c.summary, c.description,
		c.price_cents, c.duration_hours, c.image_url, c.is_published, c.created_at, c.updated_at
	FROM courses c
	JOIN course_categories cc ON cc.id = c.category_id`

func scanCourse(row pgx.Row, c *model.Course) error {
	return row.Scan(&c.ID, &c.CategoryID, &c.CategoryName, &c.Title, &c.Slug, &c.Summary, &c.Description,
		&c.PriceCents, &c.DurationHours, &c.ImageURL, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt)
}

func collectCourses(rows pgx.Rows) ([]model.Course, error) {
	defer rows.Close()
	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// List returns a page of courses for the admin.
func (r *CourseRepository) List(ctx context.Context, params datatable.Params) ([]model.Course, int, error) {
	where, args := params.Where(1)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx, courseSelect+where+params.OrderBy()+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	courses, err := collectCourses(rows)
	return courses, total, err
}

// ListPublished returns published courses, optionally restricted to a
// category slug.
func (r *CourseRepository) ListPublished(ctx context.Context, categorySlug string) ([]model.Course, error) {
	query := courseSelect + ` WHERE c.is_published`
	var args []interface{}
	if categorySlug != "" {
		query += ` AND cc.slug = $1`
		args = append(args, categorySlug)
	}
	query += ` ORDER BY c.title ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectCourses(rows)
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	if err := scanCourse(r.pool.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id), c); err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// GetPublishedBySlug retrieves a published course by slug.
func (r *CourseRepository) GetPublishedBySlug(ctx context.Context, slug string) (*model.Course, error) {
	c := &model.Course{}
	if err := scanCourse(r.pool.QueryRow(ctx, courseSelect+` WHERE c.slug = $1 AND c.is_published`, slug), c); err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// Create inserts a new course. A duplicate slug returns ErrDuplicate and an
// unknown category returns ErrInvalidReference.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (category_id, title, slug, summary, description, price_cents, duration_hours, image_url, is_published)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		c.CategoryID, c.Title, c.Slug, c.Summary, c.Description, c.PriceCents, c.DurationHours, c.ImageURL, c.IsPublished,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapWriteError(err)
}

// Update modifies a course.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE courses SET category_id = $1, title = $2, slug = $3, summary = $4, description = $5,
			price_cents = $6, duration_hours = $7, image_url = $8, is_published = $9, updated_at = NOW()
		 WHERE id = $10
		 RETURNING created_at, updated_at`,
		c.CategoryID, c.Title, c.Slug, c.Summary, c.Description, c.PriceCents, c.DurationHours, c.ImageURL, c.IsPublished, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapWriteError(err)
}

// Delete removes a course. Courses with intakes return ErrInUse.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
