package db

import (
	"context"
	"strings"
)

const selectExerciseByID = `
SELECT exercise_id, name, muscle_category, created_at FROM exercises WHERE exercise_id = ?
`

// GetExercise fetches a single catalog entry by id.
func (q *Queries) GetExercise(ctx context.Context, exerciseID string) (Exercise, error) {
	var e Exercise
	err := q.db.QueryRowContext(ctx, selectExerciseByID, exerciseID).Scan(&e.ExerciseID, &e.Name, &e.MuscleCategory, &e.CreatedAt)
	return e, err
}

// ListExercises returns the full fixed catalog ordered by muscle_category, name.
func (q *Queries) ListExercises(ctx context.Context) ([]Exercise, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT exercise_id, name, muscle_category, created_at FROM exercises ORDER BY muscle_category, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ExerciseID, &e.Name, &e.MuscleCategory, &e.CreatedAt); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// ExerciseNamesByIDs batch-fetches exercise_id -> name for a set of ids, in
// a single query (Query Layer §4.8 forbids per-workout exercise lookups).
func (q *Queries) ExerciseNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := "SELECT exercise_id, name FROM exercises WHERE exercise_id IN (" + strings.Join(placeholders, ",") + ")"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
