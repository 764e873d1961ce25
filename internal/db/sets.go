package db

import (
	"context"
	"database/sql"
	"strings"
)

const selectSetByID = `
SELECT set_id, workout_id, exercise_id, reps, weight, completed_at FROM sets_projection WHERE set_id = ?
`

// GetSet fetches a set projection row. Returns sql.ErrNoRows if absent.
func (q *Queries) GetSet(ctx context.Context, setID string) (SetProjection, error) {
	var s SetProjection
	err := q.db.QueryRowContext(ctx, selectSetByID, setID).Scan(&s.SetID, &s.WorkoutID, &s.ExerciseID, &s.Reps, &s.Weight, &s.CompletedAt)
	return s, err
}

// UpsertSetParams holds the arguments for UpsertSet.
type UpsertSetParams struct {
	SetID       string
	WorkoutID   string
	ExerciseID  string
	Reps        sql.NullInt64
	Weight      sql.NullFloat64
	CompletedAt string
}

// UpsertSet inserts a set row, or updates reps/weight/exercise_id/completed_at
// on a set_id collision (Projection Updater §4.4 Phase B).
func (q *Queries) UpsertSet(ctx context.Context, arg UpsertSetParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sets_projection (set_id, workout_id, exercise_id, reps, weight, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(set_id) DO UPDATE SET
			exercise_id = excluded.exercise_id,
			reps = excluded.reps,
			weight = excluded.weight,
			completed_at = excluded.completed_at
	`, arg.SetID, arg.WorkoutID, arg.ExerciseID, arg.Reps, arg.Weight, arg.CompletedAt)
	return err
}

// TruncateSets deletes every set projection row (full rebuild, before workouts are truncated).
func (q *Queries) TruncateSets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM sets_projection")
	return err
}

// ListSetsByWorkout lists a workout's sets ordered by completed_at ascending.
func (q *Queries) ListSetsByWorkout(ctx context.Context, workoutID string) ([]SetProjection, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT set_id, workout_id, exercise_id, reps, weight, completed_at FROM sets_projection WHERE workout_id = ? ORDER BY completed_at ASC",
		workoutID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSetRows(rows)
}

// ListSetsByWorkouts batch-fetches all sets for a list of workout_ids in a
// single query (Query Layer and Weekly Aggregator both forbid per-workout fetches).
func (q *Queries) ListSetsByWorkouts(ctx context.Context, workoutIDs []string) ([]SetProjection, error) {
	if len(workoutIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(workoutIDs))
	args := make([]interface{}, len(workoutIDs))
	for i, id := range workoutIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := "SELECT set_id, workout_id, exercise_id, reps, weight, completed_at FROM sets_projection WHERE workout_id IN (" +
		strings.Join(placeholders, ",") + ") ORDER BY completed_at ASC"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSetRows(rows)
}

// ListSetsByWorkoutAndExercise narrows ListSetsByWorkout to one exercise_id,
// used by the last-sets-per-exercise query.
func (q *Queries) ListSetsByWorkoutAndExercise(ctx context.Context, workoutID, exerciseID string) ([]SetProjection, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT set_id, workout_id, exercise_id, reps, weight, completed_at FROM sets_projection WHERE workout_id = ? AND exercise_id = ? ORDER BY completed_at ASC",
		workoutID, exerciseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSetRows(rows)
}

// MostRecentWorkoutForExercise finds the most recently started workout of a
// user that contains at least one set for exerciseID.
func (q *Queries) MostRecentWorkoutForExercise(ctx context.Context, userID, exerciseID string) (WorkoutProjection, error) {
	var w WorkoutProjection
	err := q.db.QueryRowContext(ctx, `
		SELECT w.workout_id, w.user_id, w.started_at, w.ended_at, w.status
		FROM workouts_projection w
		JOIN sets_projection s ON s.workout_id = w.workout_id
		WHERE w.user_id = ? AND s.exercise_id = ?
		ORDER BY w.started_at DESC
		LIMIT 1
	`, userID, exerciseID).Scan(&w.WorkoutID, &w.UserID, &w.StartedAt, &w.EndedAt, &w.Status)
	return w, err
}

func scanSetRows(rows *sql.Rows) ([]SetProjection, error) {
	var sets []SetProjection
	for rows.Next() {
		var s SetProjection
		if err := rows.Scan(&s.SetID, &s.WorkoutID, &s.ExerciseID, &s.Reps, &s.Weight, &s.CompletedAt); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}
