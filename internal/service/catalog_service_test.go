package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	version int64
	entries map[string][]byte
	down    bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Version(context.Context) (int64, error) {
	if c.down {
		return 0, errors.New("cache down")
	}
	return c.version, nil
}

func (c *memoryCache) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.version++
	return nil
}

type fakeCourses struct {
	courses      []model.Course
	publishedHit int
	created      []*model.Course
}

func (f *fakeCourses) List(context.Context, datatable.Params) ([]model.Course, int, error) {
	return f.courses, len(f.courses), nil
}

func (f *fakeCourses) ListPublished(_ context.Context, categorySlug string) ([]model.Course, error) {
	f.publishedHit++
	return f.courses, nil
}

func (f *fakeCourses) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	for i := range f.courses {
		if f.courses[i].ID == id {
			c := f.courses[i]
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCourses) GetPublishedBySlug(_ context.Context, slug string) (*model.Course, error) {
	for i := range f.courses {
		if f.courses[i].Slug == slug && f.courses[i].IsPublished {
			c := f.courses[i]
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCourses) Create(_ context.Context, c *model.Course) error {
	c.ID = uuid.New()
	f.created = append(f.created, c)
	f.courses = append(f.courses, *c)
	return nil
}

func (f *fakeCourses) Update(context.Context, *model.Course) error { return nil }
func (f *fakeCourses) Delete(context.Context, uuid.UUID) error     { return nil }

type fakeCategories struct{}

func (fakeCategories) List(context.Context, datatable.Params) ([]model.CourseCategory, int, error) {
	return nil, 0, nil
}
func (fakeCategories) ListPublic(context.Context) ([]model.CourseCategory, error) { return nil, nil }
func (fakeCategories) GetByID(context.Context, int) (*model.CourseCategory, error) {
	return nil, repository.ErrNotFound
}
func (fakeCategories) Create(_ context.Context, c *model.CourseCategory) error { c.ID = 1; return nil }
func (fakeCategories) Update(context.Context, *model.CourseCategory) error     { return nil }
func (fakeCategories) Delete(context.Context, int) error                       { return nil }

func newTestCatalog() (*CatalogService, *fakeCourses, *fakeIntakes, *memoryCache) {
	courses := &fakeCourses{courses: []model.Course{{
		ID:          uuid.New(),
		Title:       "Manual Handling",
		Slug:        "manual-handling",
		Description: "## Outcomes\n\nLift **safely**.\n\n<script>alert(1)</script>",
		IsPublished: true,
	}}}
	intakes := newFakeIntakes()
	cache := newMemoryCache()
	return newCatalogService(fakeCategories{}, courses, intakes, cache, zerolog.Nop()), courses, intakes, cache
}

func TestPublicCourseRendersMarkdown(t *testing.T) {
	svc, _, intakes, _ := newTestCatalog()
	intakes.open = []model.Intake{{ID: uuid.New(), Capacity: 10}}

	c, err := svc.PublicCourse(context.Background(), "manual-handling")
	require.NoError(t, err)
	assert.Contains(t, c.DescriptionHTML, `<h2 id="outcomes">Outcomes</h2>`)
	assert.Contains(t, c.DescriptionHTML, "<strong>safely</strong>")
	assert.NotContains(t, c.DescriptionHTML, "<script>")
	assert.Len(t, c.OpenIntakes, 1)

	_, err = svc.PublicCourse(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPublicCoursesCacheAndInvalidate(t *testing.T) {
	svc, courses, _, cache := newTestCatalog()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := svc.PublicCourses(ctx, "")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	}
	assert.Equal(t, 1, courses.publishedHit, "served from cache after the first load")

	_, err := svc.CreateCourse(ctx, &model.CourseRequest{CategoryID: 1, Title: "Infection Control Basics", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cache.version)

	list, err := svc.PublicCourses(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, courses.publishedHit)
}

func TestPublicCoursesWithoutCache(t *testing.T) {
	svc, courses, _, cache := newTestCatalog()
	cache.down = true

	for i := 0; i < 2; i++ {
		_, err := svc.PublicCourses(context.Background(), "")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, courses.publishedHit)
}

func TestCreateCourseDerivesSlug(t *testing.T) {
	svc, courses, _, _ := newTestCatalog()

	c, err := svc.CreateCourse(context.Background(), &model.CourseRequest{CategoryID: 1, Title: " Palliative Care: An Introduction "})
	require.NoError(t, err)
	assert.Equal(t, "palliative-care-an-introduction", c.Slug)
	assert.Equal(t, "Palliative Care: An Introduction", c.Title)

	c, err = svc.CreateCourse(context.Background(), &model.CourseRequest{CategoryID: 1, Title: "Anything", Slug: "Custom Slug"})
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", c.Slug)
	assert.Len(t, courses.created, 2)
}
