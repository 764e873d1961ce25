package db

import "context"

// UpsertWeeklyMetricParams holds the arguments for UpsertWeeklyMetric.
type UpsertWeeklyMetricParams struct {
	ID             string
	UserID         string
	WeekStart      string
	TotalWorkouts  int64
	TotalVolume    float64
	ExercisesCount int64
}

// UpsertWeeklyMetric writes a user's metrics for one week, replacing any
// existing row for (user_id, week_start) (Weekly Aggregator §4.6).
func (q *Queries) UpsertWeeklyMetric(ctx context.Context, arg UpsertWeeklyMetricParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO weekly_metrics (id, user_id, week_start, total_workouts, total_volume, exercises_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, week_start) DO UPDATE SET
			total_workouts = excluded.total_workouts,
			total_volume = excluded.total_volume,
			exercises_count = excluded.exercises_count
	`, arg.ID, arg.UserID, arg.WeekStart, arg.TotalWorkouts, arg.TotalVolume, arg.ExercisesCount)
	return err
}

const selectWeeklyMetric = `
SELECT id, user_id, week_start, total_workouts, total_volume, exercises_count
FROM weekly_metrics WHERE user_id = ? AND week_start = ?
`

// GetWeeklyMetric fetches one user's metrics for one week. Returns
// sql.ErrNoRows if the week has never been computed.
func (q *Queries) GetWeeklyMetric(ctx context.Context, userID, weekStart string) (WeeklyMetric, error) {
	var m WeeklyMetric
	err := q.db.QueryRowContext(ctx, selectWeeklyMetric, userID, weekStart).Scan(
		&m.ID, &m.UserID, &m.WeekStart, &m.TotalWorkouts, &m.TotalVolume, &m.ExercisesCount,
	)
	return m, err
}

// ListWeeklyMetricsByUser lists a user's weekly metrics newest-week-first.
func (q *Queries) ListWeeklyMetricsByUser(ctx context.Context, userID string) ([]WeeklyMetric, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, user_id, week_start, total_workouts, total_volume, exercises_count FROM weekly_metrics WHERE user_id = ? ORDER BY week_start DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []WeeklyMetric
	for rows.Next() {
		var m WeeklyMetric
		if err := rows.Scan(&m.ID, &m.UserID, &m.WeekStart, &m.TotalWorkouts, &m.TotalVolume, &m.ExercisesCount); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// ReattributeWeeklyMetrics moves every weekly-metrics row owned by fromUserID
// to toUserID. Identity Merge relies on the caller to rebuild toUserID's
// metrics afterward, since the two users' rows for the same week cannot both
// survive under the unique(user_id, week_start) constraint.
func (q *Queries) ReattributeWeeklyMetrics(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, "UPDATE OR REPLACE weekly_metrics SET user_id = ? WHERE user_id = ?", toUserID, fromUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteWeeklyMetricsByUser removes every weekly-metrics row for a user, used
// by rebuild_weekly_metrics to recompute a user's weeks from scratch.
func (q *Queries) DeleteWeeklyMetricsByUser(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM weekly_metrics WHERE user_id = ?", userID)
	return err
}

// TruncateWeeklyMetrics deletes every weekly-metrics row (full rebuild).
func (q *Queries) TruncateWeeklyMetrics(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM weekly_metrics")
	return err
}
