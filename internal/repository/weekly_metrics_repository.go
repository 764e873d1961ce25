package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/db"
	"github.com/sxroads/hypertrophy/internal/domain/weeklymetrics"
)

// WeeklyMetricsRepository implements persistence for WeeklyMetrics entities.
type WeeklyMetricsRepository struct {
	queries *db.Queries
}

// NewWeeklyMetricsRepository creates a new WeeklyMetricsRepository.
func NewWeeklyMetricsRepository(sqlDB *sql.DB) *WeeklyMetricsRepository {
	return &WeeklyMetricsRepository{queries: db.New(sqlDB)}
}

// WithTx returns a repository scoped to an in-flight transaction.
func (r *WeeklyMetricsRepository) WithTx(tx *sql.Tx) *WeeklyMetricsRepository {
	return &WeeklyMetricsRepository{queries: r.queries.WithTx(tx)}
}

// Upsert writes a user's metrics for one week, replacing any existing row
// for (user_id, week_start).
func (r *WeeklyMetricsRepository) Upsert(ctx context.Context, m *weeklymetrics.WeeklyMetrics) error {
	err := r.queries.UpsertWeeklyMetric(ctx, db.UpsertWeeklyMetricParams{
		ID:             m.ID,
		UserID:         m.UserID,
		WeekStart:      m.WeekStart.Format("2006-01-02"),
		TotalWorkouts:  int64(m.TotalWorkouts),
		TotalVolume:    m.TotalVolume,
		ExercisesCount: int64(m.ExercisesCount),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert weekly metrics: %w", err)
	}
	return nil
}

// GetByUserAndWeek fetches one user's metrics for one week. Returns nil, nil
// if the week has never been computed.
func (r *WeeklyMetricsRepository) GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*weeklymetrics.WeeklyMetrics, error) {
	row, err := r.queries.GetWeeklyMetric(ctx, userID, weekStart.Format("2006-01-02"))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weekly metrics: %w", err)
	}
	return toDomainWeeklyMetrics(row)
}

// ListByUser lists a user's weekly metrics newest-week-first.
func (r *WeeklyMetricsRepository) ListByUser(ctx context.Context, userID string) ([]*weeklymetrics.WeeklyMetrics, error) {
	rows, err := r.queries.ListWeeklyMetricsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly metrics: %w", err)
	}
	metrics := make([]*weeklymetrics.WeeklyMetrics, len(rows))
	for i, row := range rows {
		m, err := toDomainWeeklyMetrics(row)
		if err != nil {
			return nil, err
		}
		metrics[i] = m
	}
	return metrics, nil
}

// Reattribute moves every weekly-metrics row owned by fromUserID to
// toUserID. The caller must rebuild toUserID's metrics afterward to collapse
// any (user_id, week_start) collisions left by the re-attribution.
func (r *WeeklyMetricsRepository) Reattribute(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	n, err := r.queries.ReattributeWeeklyMetrics(ctx, fromUserID, toUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to reattribute weekly metrics: %w", err)
	}
	return n, nil
}

// DeleteByUser removes every weekly-metrics row for a user, used by
// rebuild_weekly_metrics to recompute a user's weeks from scratch.
func (r *WeeklyMetricsRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.queries.DeleteWeeklyMetricsByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete weekly metrics: %w", err)
	}
	return nil
}

// Truncate deletes every weekly-metrics row (full rebuild).
func (r *WeeklyMetricsRepository) Truncate(ctx context.Context) error {
	if err := r.queries.TruncateWeeklyMetrics(ctx); err != nil {
		return fmt.Errorf("failed to truncate weekly metrics: %w", err)
	}
	return nil
}

func toDomainWeeklyMetrics(row db.WeeklyMetric) (*weeklymetrics.WeeklyMetrics, error) {
	weekStart, err := time.Parse("2006-01-02", row.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to parse week_start: %w", err)
	}
	return &weeklymetrics.WeeklyMetrics{
		ID:             row.ID,
		UserID:         row.UserID,
		WeekStart:      weekStart,
		TotalWorkouts:  int(row.TotalWorkouts),
		TotalVolume:    row.TotalVolume,
		ExercisesCount: int(row.ExercisesCount),
	}, nil
}
