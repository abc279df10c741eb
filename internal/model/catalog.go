package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CourseCategory groups courses in the public catalog.
type CourseCategory struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CourseCount int       `json:"course_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRequest is the payload for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Slug        string `json:"slug" binding:"omitempty,max=140"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// Course is a training course offered by the institute.
type Course struct {
	ID            uuid.UUID `json:"id"`
	CategoryID    int       `json:"category_id"`
	CategoryName  string    `json:"category_name,omitempty"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Summary       string    `json:"summary"`
	Description   string    `json:"description"`
	PriceCents    int64     `json:"price_cents"`
	DurationHours int       `json:"duration_hours"`
	ImageURL      string    `json:"image_url"`
	IsPublished   bool      `json:"is_published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	CategoryID    int    `json:"category_id" binding:"required,min=1"`
	Title         string `json:"title" binding:"required,min=3,max=200"`
	Slug          string `json:"slug" binding:"omitempty,max=220"`
	Summary       string `json:"summary" binding:"omitempty,max=500"`
	Description   string `json:"description" binding:"omitempty,max=50000"`
	PriceCents    int64  `json:"price_cents" binding:"min=0"`
	DurationHours int    `json:"duration_hours" binding:"min=0,max=10000"`
	ImageURL      string `json:"image_url" binding:"omitempty,max=500"`
	IsPublished   bool   `json:"is_published"`
}

// PublicCourse is the catalog view of a course, with rendered description
// and the intakes a visitor can still register for.
type PublicCourse struct {
	Course
	DescriptionHTML string   `json:"description_html"`
	OpenIntakes     []Intake `json:"open_intakes"`
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a URL slug from a title: lowercase ASCII words joined by
// single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
