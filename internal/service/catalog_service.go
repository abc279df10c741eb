package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/careacademy/academy-backend/internal/config"
	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/markdown"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type categoryStore interface {
	List(ctx context.Context, params datatable.Params) ([]model.CourseCategory, int, error)
	ListPublic(ctx context.Context) ([]model.CourseCategory, error)
	GetByID(ctx context.Context, id int) (*model.CourseCategory, error)
	Create(ctx context.Context, c *model.CourseCategory) error
	Update(ctx context.Context, c *model.CourseCategory) error
	Delete(ctx context.Context, id int) error
}

type courseStore interface {
	List(ctx context.Context, params datatable.Params) ([]model.Course, int, error)
	ListPublished(ctx context.Context, categorySlug string) ([]model.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogService manages categories and courses and serves the cached
// public catalog.
type CatalogService struct {
	categories categoryStore
	courses    courseStore
	intakes    repository.IntakeRepository
	cache      CatalogCache
	log        zerolog.Logger
	now        func() time.Time
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	categories *repository.CategoryRepository,
	courses *repository.CourseRepository,
	intakes repository.IntakeRepository,
	cache CatalogCache,
	log zerolog.Logger,
) *CatalogService {
	return newCatalogService(categories, courses, intakes, cache, log)
}

func newCatalogService(categories categoryStore, courses courseStore, intakes repository.IntakeRepository, cache CatalogCache, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		courses:    courses,
		intakes:    intakes,
		cache:      cache,
		log:        log.With().Str("component", "catalog").Logger(),
		now:        time.Now,
	}
}

// Invalidate drops every cached catalog response. Failures are logged only;
// entries still expire on their own TTL.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate catalog cache")
	}
}

// cached serves key from the cache or fills it with load. Cache errors
// degrade to a direct load.
func cached[T any](ctx context.Context, s *CatalogService, key func(version int64) string, load func() (T, error)) (T, error) {
	version, err := s.cache.Version(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog cache unavailable")
		return load()
	}
	k := key(version)

	var hit T
	ok, err := s.cache.Get(ctx, k, &hit)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("key", k).Msg("failed to read catalog cache")
	case ok:
		return hit, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, k, v); err != nil {
		s.log.Warn().Err(err).Str("key", k).Msg("failed to write catalog cache")
	}
	return v, nil
}

// --- Public catalog ---

// PublicCategories lists categories that have at least one published course.
func (s *CatalogService) PublicCategories(ctx context.Context) ([]model.CourseCategory, error) {
	return cached(ctx, s, config.CacheKey.CatalogCategoriesKey, func() ([]model.CourseCategory, error) {
		return s.categories.ListPublic(ctx)
	})
}

// PublicCourses lists published courses, optionally within one category.
func (s *CatalogService) PublicCourses(ctx context.Context, categorySlug string) ([]model.Course, error) {
	categorySlug = strings.TrimSpace(categorySlug)
	key := func(v int64) string { return config.CacheKey.CatalogCoursesKey(v, categorySlug) }
	return cached(ctx, s, key, func() ([]model.Course, error) {
		return s.courses.ListPublished(ctx, categorySlug)
	})
}

// PublicCourse returns a published course with its rendered description and
// the intakes currently open for registration.
func (s *CatalogService) PublicCourse(ctx context.Context, slug string) (*model.PublicCourse, error) {
	key := func(v int64) string { return config.CacheKey.CatalogCourseKey(v, slug) }
	return cached(ctx, s, key, func() (*model.PublicCourse, error) {
		c, err := s.courses.GetPublishedBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		html, err := markdown.ToHTML(c.Description)
		if err != nil {
			return nil, err
		}
		intakes, err := s.intakes.ListOpenByCourse(ctx, c.ID, s.now())
		if err != nil {
			return nil, err
		}
		if intakes == nil {
			intakes = []model.Intake{}
		}
		return &model.PublicCourse{Course: *c, DescriptionHTML: html, OpenIntakes: intakes}, nil
	})
}

// --- Categories ---

func (s *CatalogService) ListCategories(ctx context.Context, q url.Values) ([]model.CourseCategory, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.CategoryListSpec)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.categories.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return items, params.Pagination(total), nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int) (*model.CourseCategory, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.CourseCategory, error) {
	c := &model.CourseCategory{}
	applyCategory(c, req)
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int, req *model.CategoryRequest) (*model.CourseCategory, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCategory(c, req)
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	return c, nil
}

// DeleteCategory removes a category. Categories that still hold courses
// return repository.ErrInUse.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func applyCategory(c *model.CourseCategory, req *model.CategoryRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Description = strings.TrimSpace(req.Description)
	c.Slug = model.Slugify(req.Slug)
	if c.Slug == "" {
		c.Slug = model.Slugify(c.Name)
	}
}

// --- Courses ---

func (s *CatalogService) ListCourses(ctx context.Context, q url.Values) ([]model.Course, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.CourseListSpec)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.courses.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return items, params.Pagination(total), nil
}

func (s *CatalogService) GetCourse(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return s.courses.GetByID(ctx, id)
}

func (s *CatalogService) CreateCourse(ctx context.Context, req *model.CourseRequest) (*model.Course, error) {
	c := &model.Course{}
	applyCourse(c, req)
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	return c, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id uuid.UUID, req *model.CourseRequest) (*model.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCourse(c, req)
	if err := s.courses.Update(ctx, c); err != nil {
		return nil, err
	}
	s.Invalidate(ctx)
	return c, nil
}

// DeleteCourse removes a course. Courses with intakes return repository.ErrInUse.
func (s *CatalogService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func applyCourse(c *model.Course, req *model.CourseRequest) {
	c.CategoryID = req.CategoryID
	c.Title = strings.TrimSpace(req.Title)
	c.Summary = strings.TrimSpace(req.Summary)
	c.Description = req.Description
	c.PriceCents = req.PriceCents
	c.DurationHours = req.DurationHours
	c.ImageURL = strings.TrimSpace(req.ImageURL)
	c.IsPublished = req.IsPublished
	c.Slug = model.Slugify(req.Slug)
	if c.Slug == "" {
		c.Slug = model.Slugify(c.Title)
	}
}
