package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/db"
	"github.com/sxroads/hypertrophy/internal/domain/weeklyreport"
)

// WeeklyReportRepository implements persistence for WeeklyReport entities.
type WeeklyReportRepository struct {
	queries *db.Queries
}

// NewWeeklyReportRepository creates a new WeeklyReportRepository.
func NewWeeklyReportRepository(sqlDB *sql.DB) *WeeklyReportRepository {
	return &WeeklyReportRepository{queries: db.New(sqlDB)}
}

// WithTx returns a repository scoped to an in-flight transaction.
func (r *WeeklyReportRepository) WithTx(tx *sql.Tx) *WeeklyReportRepository {
	return &WeeklyReportRepository{queries: r.queries.WithTx(tx)}
}

// Create inserts a new report row.
func (r *WeeklyReportRepository) Create(ctx context.Context, rep *weeklyreport.WeeklyReport) error {
	err := r.queries.CreateWeeklyReport(ctx, db.CreateWeeklyReportParams{
		ID:          rep.ID,
		UserID:      rep.UserID,
		WeekStart:   rep.WeekStart.Format("2006-01-02"),
		ReportText:  rep.ReportText,
		GeneratedAt: rep.GeneratedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to create weekly report: %w", err)
	}
	return nil
}

// GetByUserAndWeek fetches a user's report for one week. Returns nil, nil if
// it has not been generated yet.
func (r *WeeklyReportRepository) GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*weeklyreport.WeeklyReport, error) {
	row, err := r.queries.GetWeeklyReport(ctx, userID, weekStart.Format("2006-01-02"))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weekly report: %w", err)
	}
	return toDomainWeeklyReport(row)
}

// Delete removes a user's report for one week, used by the regenerate
// path, which then generates and stores a fresh report at once.
func (r *WeeklyReportRepository) Delete(ctx context.Context, userID string, weekStart time.Time) error {
	if err := r.queries.DeleteWeeklyReport(ctx, userID, weekStart.Format("2006-01-02")); err != nil {
		return fmt.Errorf("failed to delete weekly report: %w", err)
	}
	return nil
}

// Reattribute moves every report row owned by fromUserID to toUserID.
func (r *WeeklyReportRepository) Reattribute(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	n, err := r.queries.ReattributeWeeklyReports(ctx, fromUserID, toUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to reattribute weekly reports: %w", err)
	}
	return n, nil
}

func toDomainWeeklyReport(row db.WeeklyReport) (*weeklyreport.WeeklyReport, error) {
	weekStart, err := time.Parse("2006-01-02", row.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to parse week_start: %w", err)
	}
	generatedAt, err := time.Parse(time.RFC3339, row.GeneratedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated_at: %w", err)
	}
	return &weeklyreport.WeeklyReport{
		ID:          row.ID,
		UserID:      row.UserID,
		WeekStart:   weekStart,
		ReportText:  row.ReportText,
		GeneratedAt: generatedAt,
	}, nil
}
