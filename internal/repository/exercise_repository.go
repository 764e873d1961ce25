package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/db"
	"github.com/sxroads/hypertrophy/internal/domain/exercise"
)

// ExerciseRepository implements read-only access to the fixed exercise
// catalog.
type ExerciseRepository struct {
	queries *db.Queries
}

// NewExerciseRepository creates a new ExerciseRepository.
func NewExerciseRepository(sqlDB *sql.DB) *ExerciseRepository {
	return &ExerciseRepository{queries: db.New(sqlDB)}
}

// GetByID retrieves a single catalog entry by id. Returns nil, nil if absent.
func (r *ExerciseRepository) GetByID(ctx context.Context, exerciseID string) (*exercise.Exercise, error) {
	row, err := r.queries.GetExercise(ctx, exerciseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return toDomainExercise(row)
}

// List returns the full fixed catalog ordered by muscle_category, name.
func (r *ExerciseRepository) List(ctx context.Context) ([]*exercise.Exercise, error) {
	rows, err := r.queries.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	exercises := make([]*exercise.Exercise, len(rows))
	for i, row := range rows {
		e, err := toDomainExercise(row)
		if err != nil {
			return nil, err
		}
		exercises[i] = e
	}
	return exercises, nil
}

// NamesByIDs batch-fetches exercise_id -> name for a set of ids, in a single
// query (Query Layer §4.8 forbids per-workout exercise lookups).
func (r *ExerciseRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names, err := r.queries.ExerciseNamesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch exercise names: %w", err)
	}
	return names, nil
}

func toDomainExercise(row db.Exercise) (*exercise.Exercise, error) {
	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exercise created_at: %w", err)
	}
	return &exercise.Exercise{
		ExerciseID:     row.ExerciseID,
		Name:           row.Name,
		MuscleCategory: row.MuscleCategory,
		CreatedAt:      createdAt,
	}, nil
}
