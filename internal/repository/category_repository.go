package repository

import (
	"context"
	"fmt"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryListSpec describes the admin category list.
var CategoryListSpec = datatable.Spec{
	Sortable: map[string]string{
		"name":         "cc.name",
		"created_at":   "cc.created_at",
		"course_count": "course_count",
	},
	DefaultSort: "name.asc",
	Filters: map[string]datatable.Filter{
		"q": {Kind: datatable.Search, Columns: []string{"cc.name", "cc.slug"}},
	},
}

// CategoryRepository handles course category data access.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// course_count counts every course for admins and only published ones for
// the public catalog.
const categorySelect = `SELECT cc.id, cc.name, cc.slug, cc.description,
		(SELECT COUNT(*) FROM courses c WHERE c.category_id = cc.id%s) AS course_count,
		cc.created_at, cc.updated_at
	FROM course_categories cc`

func scanCategory(row pgx.Row, c *model.CourseCategory) error {
	return row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CourseCount, &c.CreatedAt, &c.UpdatedAt)
}

func categoryQuery(publishedOnly bool) string {
	if publishedOnly {
		return fmt.Sprintf(categorySelect, " AND c.is_published")
	}
	return fmt.Sprintf(categorySelect, "")
}

// List returns a page of categories.
func (r *CategoryRepository) List(ctx context.Context, params datatable.Params) ([]model.CourseCategory, int, error) {
	where, args := params.Where(1)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM course_categories cc`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, limitArgs := params.LimitOffset(len(args) + 1)
	rows, err := r.pool.Query(ctx, categoryQuery(false)+where+params.OrderBy()+limit, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	categories := []model.CourseCategory{}
	for rows.Next() {
		var c model.CourseCategory
		if err := scanCategory(rows, &c); err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

// ListPublic returns every category with its published course count.
func (r *CategoryRepository) ListPublic(ctx context.Context) ([]model.CourseCategory, error) {
	rows, err := r.pool.Query(ctx, categoryQuery(true)+` ORDER BY cc.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.CourseCategory{}
	for rows.Next() {
		var c model.CourseCategory
		if err := scanCategory(rows, &c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id int) (*model.CourseCategory, error) {
	c := &model.CourseCategory{}
	if err := scanCategory(r.pool.QueryRow(ctx, categoryQuery(false)+` WHERE cc.id = $1`, id), c); err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *model.CourseCategory) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO course_categories (name, slug, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Slug, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// Update modifies a category.
func (r *CategoryRepository) Update(ctx context.Context, c *model.CourseCategory) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE course_categories SET name = $1, slug = $2, description = $3, updated_at = NOW()
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		c.Name, c.Slug, c.Description, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// Delete removes a category. Categories that still hold courses return ErrInUse.
func (r *CategoryRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM course_categories WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
