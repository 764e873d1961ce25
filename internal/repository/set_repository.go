package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/db"
	"github.com/sxroads/hypertrophy/internal/domain/set"
)

// SetRepository implements persistence for Set projection entities.
type SetRepository struct {
	queries *db.Queries
}

// NewSetRepository creates a new SetRepository.
func NewSetRepository(sqlDB *sql.DB) *SetRepository {
	return &SetRepository{queries: db.New(sqlDB)}
}

// WithTx returns a repository scoped to an in-flight transaction.
func (r *SetRepository) WithTx(tx *sql.Tx) *SetRepository {
	return &SetRepository{queries: r.queries.WithTx(tx)}
}

// Upsert inserts a set row, or updates it on a set_id collision (Projection
// Updater §4.4 Phase B).
func (r *SetRepository) Upsert(ctx context.Context, s *set.Set) error {
	err := r.queries.UpsertSet(ctx, db.UpsertSetParams{
		SetID:       s.SetID,
		WorkoutID:   s.WorkoutID,
		ExerciseID:  s.ExerciseID,
		Reps:        toNullInt64(s.Reps),
		Weight:      toNullFloat64(s.Weight),
		CompletedAt: s.CompletedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert set: %w", err)
	}
	return nil
}

// Truncate deletes every set projection row (full rebuild, before workouts
// are truncated).
func (r *SetRepository) Truncate(ctx context.Context) error {
	if err := r.queries.TruncateSets(ctx); err != nil {
		return fmt.Errorf("failed to truncate sets: %w", err)
	}
	return nil
}

// ListByWorkout lists a workout's sets ordered by completed_at ascending.
func (r *SetRepository) ListByWorkout(ctx context.Context, workoutID string) ([]*set.Set, error) {
	rows, err := r.queries.ListSetsByWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	return toDomainSets(rows)
}

// ListByWorkouts batch-fetches all sets for a list of pre-authorized
// workout_ids in a single query.
func (r *SetRepository) ListByWorkouts(ctx context.Context, workoutIDs []string) ([]*set.Set, error) {
	rows, err := r.queries.ListSetsByWorkouts(ctx, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch list sets: %w", err)
	}
	return toDomainSets(rows)
}

// ListByWorkoutAndExercise narrows ListByWorkout to one exercise, for the
// last-sets-per-exercise query.
func (r *SetRepository) ListByWorkoutAndExercise(ctx context.Context, workoutID, exerciseID string) ([]*set.Set, error) {
	rows, err := r.queries.ListSetsByWorkoutAndExercise(ctx, workoutID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets by workout and exercise: %w", err)
	}
	return toDomainSets(rows)
}

func toNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func toNullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func toDomainSets(rows []db.SetProjection) ([]*set.Set, error) {
	sets := make([]*set.Set, len(rows))
	for i, row := range rows {
		completedAt, err := time.Parse(time.RFC3339, row.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse set completed_at: %w", err)
		}
		var reps *int
		if row.Reps.Valid {
			v := int(row.Reps.Int64)
			reps = &v
		}
		var weight *float64
		if row.Weight.Valid {
			v := row.Weight.Float64
			weight = &v
		}
		sets[i] = &set.Set{
			SetID:       row.SetID,
			WorkoutID:   row.WorkoutID,
			ExerciseID:  row.ExerciseID,
			Reps:        reps,
			Weight:      weight,
			CompletedAt: completedAt,
		}
	}
	return sets, nil
}
