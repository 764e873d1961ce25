package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/db"
	"github.com/sxroads/hypertrophy/internal/domain/workout"
)

// WorkoutRepository implements persistence for Workout projection entities.
type WorkoutRepository struct {
	queries *db.Queries
}

// NewWorkoutRepository creates a new WorkoutRepository.
func NewWorkoutRepository(sqlDB *sql.DB) *WorkoutRepository {
	return &WorkoutRepository{queries: db.New(sqlDB)}
}

// WithTx returns a repository scoped to an in-flight transaction.
func (r *WorkoutRepository) WithTx(tx *sql.Tx) *WorkoutRepository {
	return &WorkoutRepository{queries: r.queries.WithTx(tx)}
}

// GetByID retrieves a workout projection by id. Returns nil, nil if absent.
func (r *WorkoutRepository) GetByID(ctx context.Context, workoutID string) (*workout.Workout, error) {
	row, err := r.queries.GetWorkout(ctx, workoutID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workout: %w", err)
	}
	return toDomainWorkout(row)
}

// Insert creates a new workout projection row.
func (r *WorkoutRepository) Insert(ctx context.Context, w *workout.Workout) error {
	err := r.queries.InsertWorkout(ctx, db.InsertWorkoutParams{
		WorkoutID: w.WorkoutID,
		UserID:    w.UserID,
		StartedAt: w.StartedAt.Format(time.RFC3339),
		EndedAt:   toNullString(w.EndedAt),
		Status:    string(w.Status),
	})
	if err != nil {
		return fmt.Errorf("failed to insert workout: %w", err)
	}
	return nil
}

// UpdateStarted re-applies a WorkoutStarted event to an existing row.
func (r *WorkoutRepository) UpdateStarted(ctx context.Context, w *workout.Workout) error {
	err := r.queries.UpdateWorkoutStartedAt(ctx, db.UpdateWorkoutStartedAtParams{
		WorkoutID: w.WorkoutID,
		StartedAt: w.StartedAt.Format(time.RFC3339),
		Status:    string(w.Status),
		EndedAt:   toNullString(w.EndedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to update workout started_at: %w", err)
	}
	return nil
}

// Complete applies a WorkoutEnded event to an existing row.
func (r *WorkoutRepository) Complete(ctx context.Context, workoutID string, endedAt time.Time) error {
	err := r.queries.CompleteWorkout(ctx, db.CompleteWorkoutParams{
		WorkoutID: workoutID,
		EndedAt:   endedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to complete workout: %w", err)
	}
	return nil
}

// Truncate deletes every workout projection row (full rebuild, after sets
// have been truncated).
func (r *WorkoutRepository) Truncate(ctx context.Context) error {
	if err := r.queries.TruncateWorkouts(ctx); err != nil {
		return fmt.Errorf("failed to truncate workouts: %w", err)
	}
	return nil
}

// Reattribute moves every workout row owned by fromUserID to toUserID.
func (r *WorkoutRepository) Reattribute(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	n, err := r.queries.ReattributeWorkouts(ctx, fromUserID, toUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to reattribute workouts: %w", err)
	}
	return n, nil
}

// ListByUser lists a user's workouts newest-first.
func (r *WorkoutRepository) ListByUser(ctx context.Context, userID string) ([]*workout.Workout, error) {
	rows, err := r.queries.ListWorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	return toDomainWorkouts(rows)
}

// ListCompletedInRange lists a user's completed workouts whose started_at
// date falls within [weekStart, weekEnd] inclusive.
func (r *WorkoutRepository) ListCompletedInRange(ctx context.Context, userID string, weekStart, weekEnd time.Time) ([]*workout.Workout, error) {
	rows, err := r.queries.ListCompletedWorkoutsByUserInRange(ctx, userID, weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list completed workouts in range: %w", err)
	}
	return toDomainWorkouts(rows)
}

// ListAllCompletedByUser lists every completed workout for a user, for the
// Weekly Aggregator's rebuild_weekly_metrics grouping pass.
func (r *WorkoutRepository) ListAllCompletedByUser(ctx context.Context, userID string) ([]*workout.Workout, error) {
	rows, err := r.queries.ListAllCompletedWorkoutsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed workouts: %w", err)
	}
	return toDomainWorkouts(rows)
}

// ListDistinctUsersWithWorkouts returns every user_id owning at least one
// workout projection row, for the full rebuild's aggregator fan-out.
func (r *WorkoutRepository) ListDistinctUsersWithWorkouts(ctx context.Context) ([]string, error) {
	ids, err := r.queries.ListDistinctUsersWithWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with workouts: %w", err)
	}
	return ids, nil
}

// OwnedBy filters workoutIDs down to the ones owned by userID, in a single
// batch authorization query (Query Layer §4.8).
func (r *WorkoutRepository) OwnedBy(ctx context.Context, userID string, workoutIDs []string) ([]string, error) {
	owned, err := r.queries.WorkoutIDsOwnedByUser(ctx, userID, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize workout ids: %w", err)
	}
	return owned, nil
}

// MostRecentWithExercise finds the most recently started workout of a user
// containing at least one set for exerciseID.
func (r *WorkoutRepository) MostRecentWithExercise(ctx context.Context, userID, exerciseID string) (*workout.Workout, error) {
	row, err := r.queries.MostRecentWorkoutForExercise(ctx, userID, exerciseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find most recent workout for exercise: %w", err)
	}
	return toDomainWorkout(row)
}

func toNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func toDomainWorkout(row db.WorkoutProjection) (*workout.Workout, error) {
	startedAt, err := time.Parse(time.RFC3339, row.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workout started_at: %w", err)
	}
	var endedAt *time.Time
	if row.EndedAt.Valid {
		t, err := time.Parse(time.RFC3339, row.EndedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse workout ended_at: %w", err)
		}
		endedAt = &t
	}
	return &workout.Workout{
		WorkoutID: row.WorkoutID,
		UserID:    row.UserID,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Status:    workout.Status(row.Status),
	}, nil
}

func toDomainWorkouts(rows []db.WorkoutProjection) ([]*workout.Workout, error) {
	workouts := make([]*workout.Workout, len(rows))
	for i, row := range rows {
		w, err := toDomainWorkout(row)
		if err != nil {
			return nil, err
		}
		workouts[i] = w
	}
	return workouts, nil
}
