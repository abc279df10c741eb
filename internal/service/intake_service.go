package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/careacademy/academy-backend/internal/datatable"
	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/careacademy/academy-backend/internal/response"
	"github.com/google/uuid"
)

// CatalogInvalidator drops cached public catalog data.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// IntakeService manages scheduled course offerings.
type IntakeService struct {
	intakes repository.IntakeRepository
	catalog CatalogInvalidator
}

// NewIntakeService creates a new IntakeService.
func NewIntakeService(intakes repository.IntakeRepository, catalog CatalogInvalidator) *IntakeService {
	return &IntakeService{intakes: intakes, catalog: catalog}
}

func (s *IntakeService) List(ctx context.Context, q url.Values) ([]model.Intake, *response.Pagination, error) {
	params, err := datatable.Parse(q, repository.IntakeListSpec)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.intakes.List(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return items, params.Pagination(total), nil
}

func (s *IntakeService) Get(ctx context.Context, id uuid.UUID) (*model.Intake, error) {
	return s.intakes.GetByID(ctx, id)
}

// Create schedules a new intake with no registered students.
func (s *IntakeService) Create(ctx context.Context, req *model.IntakeRequest) (*model.Intake, error) {
	in := &model.Intake{Status: model.IntakeStatusScheduled}
	applyIntake(in, req)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.intakes.Create(ctx, in); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return in, nil
}

// Update edits an intake. Capacity can never drop below the seats already
// taken; the repository re-checks this against the locked row.
func (s *IntakeService) Update(ctx context.Context, id uuid.UUID, req *model.IntakeRequest) (*model.Intake, error) {
	in, err := s.intakes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyIntake(in, req)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.intakes.Update(ctx, in); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return in, nil
}

// Delete removes an intake. Intakes with enrollments return repository.ErrInUse.
func (s *IntakeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.intakes.Delete(ctx, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

func applyIntake(in *model.Intake, req *model.IntakeRequest) {
	in.CourseID = req.CourseID
	in.StartDate = req.StartDate
	in.EndDate = req.EndDate
	in.RegistrationOpensAt = req.RegistrationOpensAt
	in.RegistrationClosesAt = req.RegistrationClosesAt
	in.Capacity = req.Capacity
	in.Location = strings.TrimSpace(req.Location)
	if req.Status != "" {
		in.Status = req.Status
	}
}
