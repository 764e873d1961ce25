package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sxroads/hypertrophy/internal/domain/weeklymetrics"
	"github.com/sxroads/hypertrophy/internal/domain/weeklyreport"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// WeeklyReportService implements the get-or-create and regenerate contracts
// for a user's weekly report, delegating prose generation to a
// ReportGenerator.
type WeeklyReportService struct {
	workouts *repository.WorkoutRepository
	metrics  *repository.WeeklyMetricsRepository
	reports  *repository.WeeklyReportRepository
	gen      ReportGenerator
}

// NewWeeklyReportService creates a new WeeklyReportService.
func NewWeeklyReportService(workouts *repository.WorkoutRepository, metrics *repository.WeeklyMetricsRepository, reports *repository.WeeklyReportRepository, gen ReportGenerator) *WeeklyReportService {
	return &WeeklyReportService{workouts: workouts, metrics: metrics, reports: reports, gen: gen}
}

// GetOrCreate returns the existing report for (userID, weekStart) unchanged,
// or generates and persists a fresh one.
func (s *WeeklyReportService) GetOrCreate(ctx context.Context, userID string, weekStart time.Time) (*weeklyreport.WeeklyReport, error) {
	weekStart = weeklymetrics.WeekStart(weekStart)

	existing, err := s.reports.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to look up weekly report: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	return s.generate(ctx, userID, weekStart)
}

// Regenerate deletes any existing report for (userID, weekStart) and always
// produces a fresh one.
func (s *WeeklyReportService) Regenerate(ctx context.Context, userID string, weekStart time.Time) (*weeklyreport.WeeklyReport, error) {
	weekStart = weeklymetrics.WeekStart(weekStart)

	if err := s.reports.Delete(ctx, userID, weekStart); err != nil {
		return nil, fmt.Errorf("failed to delete existing weekly report: %w", err)
	}
	return s.generate(ctx, userID, weekStart)
}

func (s *WeeklyReportService) generate(ctx context.Context, userID string, weekStart time.Time) (*weeklyreport.WeeklyReport, error) {
	weekEnd := weeklymetrics.WeekEnd(weekStart)

	workouts, err := s.workouts.ListCompletedInRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed workouts: %w", err)
	}
	metrics, err := s.metrics.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to look up weekly metrics: %w", err)
	}

	text := s.gen.Generate(metrics, workouts)

	rep, vr := weeklyreport.NewWeeklyReport(weeklyreport.NewWeeklyReportInput{
		ID:         uuid.New().String(),
		UserID:     userID,
		WeekStart:  weekStart,
		ReportText: text,
	})
	if !vr.Valid {
		return nil, vr.Error()
	}

	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to persist weekly report: %w", err)
	}
	return rep, nil
}
