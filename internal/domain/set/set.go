// Package set provides domain logic for the Set projection entity. This
// package contains pure business logic with no database dependencies, making
// it testable in isolation.
package set

import (
	"errors"
	"strings"
	"time"

	"github.com/sxroads/hypertrophy/internal/validation"
)

// Validation errors.
var (
	ErrSetIDRequired      = errors.New("set_id is required")
	ErrWorkoutIDRequired  = errors.New("workout_id is required")
	ErrExerciseIDRequired = errors.New("exercise_id is required")
)

// Set is a single completed set within a workout, derived from a
// SetCompleted event. Reps and Weight are nullable to mirror the stored
// column, though the Payload Validator requires both to be present and
// positive on the originating event.
type Set struct {
	SetID       string
	WorkoutID   string
	ExerciseID  string
	Reps        *int
	Weight      *float64
	CompletedAt time.Time
}

// ValidationResult is an alias for the shared validation.Result type.
type ValidationResult = validation.Result

// NewValidationResult creates a valid result.
func NewValidationResult() *ValidationResult {
	return validation.NewResult()
}

// NewSetInput contains the input for deriving a set projection row from a
// SetCompleted event.
type NewSetInput struct {
	SetID       string
	WorkoutID   string
	ExerciseID  string
	Reps        int
	Weight      float64
	CompletedAt time.Time
}

// NewSet validates input and constructs a Set.
func NewSet(input NewSetInput) (*Set, *ValidationResult) {
	result := NewValidationResult()

	if strings.TrimSpace(input.SetID) == "" {
		result.AddError(ErrSetIDRequired)
	}
	if strings.TrimSpace(input.WorkoutID) == "" {
		result.AddError(ErrWorkoutIDRequired)
	}
	if strings.TrimSpace(input.ExerciseID) == "" {
		result.AddError(ErrExerciseIDRequired)
	}

	if !result.Valid {
		return nil, result
	}

	reps := input.Reps
	weight := input.Weight
	return &Set{
		SetID:       input.SetID,
		WorkoutID:   input.WorkoutID,
		ExerciseID:  input.ExerciseID,
		Reps:        &reps,
		Weight:      &weight,
		CompletedAt: input.CompletedAt,
	}, result
}

// Volume returns reps*weight for this set, treating either nullable field as
// zero when absent (Weekly Aggregator §4.6).
func (s *Set) Volume() float64 {
	if s.Reps == nil || s.Weight == nil {
		return 0
	}
	return float64(*s.Reps) * (*s.Weight)
}
