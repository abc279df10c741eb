package service

import (
	"context"
	"time"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
)

const upcomingIntakeLimit = 5

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	Totals                 repository.DashboardTotals           `json:"totals"`
	EnrollmentStatusCounts map[model.EnrollmentStatus]int       `json:"enrollment_status_counts"`
	Revenue                repository.DashboardRevenue          `json:"revenue"`
	MonthlyRequests        []repository.MonthlyPoint            `json:"monthly_requests"`
	MonthlyRevenue         []repository.MonthlyPoint            `json:"monthly_revenue"`
	UpcomingIntakes        []repository.DashboardUpcomingIntake `json:"upcoming_intakes"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo *repository.DashboardRepository
	now  func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// GetDashboardData fetches every dashboard block sequentially.
func (s *DashboardService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	now := s.now()
	var (
		data = &DashboardData{}
		err  error
	)

	if data.Totals, err = s.repo.GetTotals(ctx, now); err != nil {
		return nil, err
	}
	if data.EnrollmentStatusCounts, err = s.repo.GetEnrollmentStatusCounts(ctx); err != nil {
		return nil, err
	}
	if data.Revenue, err = s.repo.GetRevenue(ctx); err != nil {
		return nil, err
	}
	if data.MonthlyRequests, err = s.repo.GetMonthlyRequests(ctx, now); err != nil {
		return nil, err
	}
	if data.MonthlyRevenue, err = s.repo.GetMonthlyRevenue(ctx, now); err != nil {
		return nil, err
	}
	if data.UpcomingIntakes, err = s.repo.GetUpcomingIntakes(ctx, now, upcomingIntakeLimit); err != nil {
		return nil, err
	}
	return data, nil
}
