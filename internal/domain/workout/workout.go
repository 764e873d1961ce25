// Package workout provides domain logic for the Workout projection entity.
// This package contains pure business logic with no database dependencies,
// making it testable in isolation.
package workout

import (
	"errors"
	"strings"
	"time"

	"github.com/sxroads/hypertrophy/internal/validation"
)

// Status represents the status of a workout projection.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Validation errors.
var (
	ErrWorkoutIDRequired = errors.New("workout_id is required")
	ErrUserIDRequired    = errors.New("user_id is required")
	ErrInvalidStatus     = errors.New("status must be 'in_progress', 'completed', or 'cancelled'")
	ErrAlreadyCompleted  = errors.New("workout is already completed")
)

// Workout is a read-optimized projection derived from WorkoutStarted and
// WorkoutEnded events.
type Workout struct {
	WorkoutID string
	UserID    string
	StartedAt time.Time
	EndedAt   *time.Time
	Status    Status
}

// ValidationResult is an alias for the shared validation.Result type.
type ValidationResult = validation.Result

// NewValidationResult creates a valid result.
func NewValidationResult() *ValidationResult {
	return validation.NewResult()
}

// ValidateStatus reports whether s is one of the three known statuses.
func ValidateStatus(s Status) error {
	switch s {
	case StatusInProgress, StatusCompleted, StatusCancelled:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// NewWorkoutInput contains the input for deriving a workout projection row
// from a WorkoutStarted event.
type NewWorkoutInput struct {
	WorkoutID string
	UserID    string
	StartedAt time.Time
}

// NewWorkout constructs a Workout in status in_progress, as the Projection
// Updater does the first time it sees a workout_id.
func NewWorkout(input NewWorkoutInput) (*Workout, *ValidationResult) {
	result := NewValidationResult()

	if strings.TrimSpace(input.WorkoutID) == "" {
		result.AddError(ErrWorkoutIDRequired)
	}
	if strings.TrimSpace(input.UserID) == "" {
		result.AddError(ErrUserIDRequired)
	}

	if !result.Valid {
		return nil, result
	}

	return &Workout{
		WorkoutID: input.WorkoutID,
		UserID:    input.UserID,
		StartedAt: input.StartedAt,
		EndedAt:   nil,
		Status:    StatusInProgress,
	}, result
}

// ApplyStarted re-applies a (possibly repeated or out-of-order) WorkoutStarted
// event to an existing row: the started_at timestamp is refreshed, but a
// terminal status is preserved rather than reopened.
func (w *Workout) ApplyStarted(startedAt time.Time) {
	w.StartedAt = startedAt
	if w.Status != StatusCompleted && w.Status != StatusCancelled {
		w.Status = StatusInProgress
		w.EndedAt = nil
	}
}

// ApplyEnded marks the workout completed, as the Projection Updater does on
// a WorkoutEnded event for an existing row.
func (w *Workout) ApplyEnded(endedAt time.Time) {
	w.EndedAt = &endedAt
	w.Status = StatusCompleted
}

// Synthesize builds a degraded placeholder workout for a WorkoutEnded event
// whose WorkoutStarted has not yet been received: started_at is set equal to
// ended_at and the row is immediately marked completed.
func Synthesize(workoutID, userID string, endedAt time.Time) *Workout {
	return &Workout{
		WorkoutID: workoutID,
		UserID:    userID,
		StartedAt: endedAt,
		EndedAt:   &endedAt,
		Status:    StatusCompleted,
	}
}

// IsTerminal returns true once the workout has reached a completed or
// cancelled status.
func (w *Workout) IsTerminal() bool {
	return w.Status == StatusCompleted || w.Status == StatusCancelled
}

// Validate performs full validation on an existing workout.
func (w *Workout) Validate() *ValidationResult {
	result := NewValidationResult()

	if strings.TrimSpace(w.WorkoutID) == "" {
		result.AddError(ErrWorkoutIDRequired)
	}
	if strings.TrimSpace(w.UserID) == "" {
		result.AddError(ErrUserIDRequired)
	}
	if err := ValidateStatus(w.Status); err != nil {
		result.AddError(err)
	}

	return result
}
