package db

import (
	"context"
	"database/sql"
	"strings"
)

const selectWorkoutByID = `
SELECT workout_id, user_id, started_at, ended_at, status FROM workouts_projection WHERE workout_id = ?
`

// GetWorkout fetches a workout projection row. Returns sql.ErrNoRows if absent.
func (q *Queries) GetWorkout(ctx context.Context, workoutID string) (WorkoutProjection, error) {
	var w WorkoutProjection
	err := q.db.QueryRowContext(ctx, selectWorkoutByID, workoutID).Scan(&w.WorkoutID, &w.UserID, &w.StartedAt, &w.EndedAt, &w.Status)
	return w, err
}

// InsertWorkoutParams holds the arguments for InsertWorkout.
type InsertWorkoutParams struct {
	WorkoutID string
	UserID    string
	StartedAt string
	EndedAt   sql.NullString
	Status    string
}

// InsertWorkout creates a new workout projection row.
func (q *Queries) InsertWorkout(ctx context.Context, arg InsertWorkoutParams) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO workouts_projection (workout_id, user_id, started_at, ended_at, status) VALUES (?, ?, ?, ?, ?)",
		arg.WorkoutID, arg.UserID, arg.StartedAt, arg.EndedAt, arg.Status,
	)
	return err
}

// UpdateWorkoutStartedAtParams holds the arguments for UpdateWorkoutStartedAt.
type UpdateWorkoutStartedAtParams struct {
	WorkoutID string
	StartedAt string
	Status    string
	EndedAt   sql.NullString
}

// UpdateWorkoutStartedAt applies a (possibly repeated) WorkoutStarted event to an existing row.
func (q *Queries) UpdateWorkoutStartedAt(ctx context.Context, arg UpdateWorkoutStartedAtParams) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE workouts_projection SET started_at = ?, status = ?, ended_at = ? WHERE workout_id = ?",
		arg.StartedAt, arg.Status, arg.EndedAt, arg.WorkoutID,
	)
	return err
}

// CompleteWorkoutParams holds the arguments for CompleteWorkout.
type CompleteWorkoutParams struct {
	WorkoutID string
	EndedAt   string
}

// CompleteWorkout applies a WorkoutEnded event to an existing row.
func (q *Queries) CompleteWorkout(ctx context.Context, arg CompleteWorkoutParams) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE workouts_projection SET ended_at = ?, status = 'completed' WHERE workout_id = ?",
		arg.EndedAt, arg.WorkoutID,
	)
	return err
}

// TruncateWorkouts deletes every workout projection row (full rebuild, after sets are truncated).
func (q *Queries) TruncateWorkouts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM workouts_projection")
	return err
}

// ReattributeWorkouts moves every workout row owned by fromUserID to toUserID.
func (q *Queries) ReattributeWorkouts(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, "UPDATE workouts_projection SET user_id = ? WHERE user_id = ?", toUserID, fromUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListWorkoutsByUser lists a user's workouts newest-first.
func (q *Queries) ListWorkoutsByUser(ctx context.Context, userID string) ([]WorkoutProjection, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT workout_id, user_id, started_at, ended_at, status FROM workouts_projection WHERE user_id = ? ORDER BY started_at DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkoutRows(rows)
}

// ListCompletedWorkoutsByUserInRange lists a user's completed workouts whose
// started_at date falls in [weekStart, weekEnd] (both inclusive, date-only).
func (q *Queries) ListCompletedWorkoutsByUserInRange(ctx context.Context, userID, weekStart, weekEnd string) ([]WorkoutProjection, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT workout_id, user_id, started_at, ended_at, status FROM workouts_projection
		 WHERE user_id = ? AND status = 'completed' AND date(started_at) >= ? AND date(started_at) <= ?`,
		userID, weekStart, weekEnd,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkoutRows(rows)
}

// ListAllCompletedWorkoutsByUser lists every completed workout for a user,
// for Weekly Aggregator's rebuild_weekly_metrics grouping pass.
func (q *Queries) ListAllCompletedWorkoutsByUser(ctx context.Context, userID string) ([]WorkoutProjection, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT workout_id, user_id, started_at, ended_at, status FROM workouts_projection WHERE user_id = ? AND status = 'completed'",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkoutRows(rows)
}

// ListDistinctUsersWithWorkouts returns every user_id that owns at least one
// workout projection row, for the full rebuild's aggregator fan-out.
func (q *Queries) ListDistinctUsersWithWorkouts(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT DISTINCT user_id FROM workouts_projection")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WorkoutIDsOwnedByUser filters workoutIDs down to the ones owned by userID,
// in a single batch authorization query (Query Layer §4.8).
func (q *Queries) WorkoutIDsOwnedByUser(ctx context.Context, userID string, workoutIDs []string) ([]string, error) {
	if len(workoutIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(workoutIDs))
	args := make([]interface{}, 0, len(workoutIDs)+1)
	args = append(args, userID)
	for i, id := range workoutIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := "SELECT workout_id FROM workouts_projection WHERE user_id = ? AND workout_id IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned = append(owned, id)
	}
	return owned, rows.Err()
}

func scanWorkoutRows(rows *sql.Rows) ([]WorkoutProjection, error) {
	var workouts []WorkoutProjection
	for rows.Next() {
		var w WorkoutProjection
		if err := rows.Scan(&w.WorkoutID, &w.UserID, &w.StartedAt, &w.EndedAt, &w.Status); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}
