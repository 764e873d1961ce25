// Package payload implements the Payload Validator: parsing and validating
// an event's opaque JSON payload against the schema implied by its
// event_type. It is the boundary between untyped ingress and typed internal
// handling; it performs no cross-event checks.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/domain/syncevent"
)

// ErrInvalidPayload is returned (wrapped with a reason) whenever a payload
// fails to parse or fails a field constraint.
var ErrInvalidPayload = errors.New("invalid payload")

// WorkoutStarted is the validated payload of a WorkoutStarted event.
type WorkoutStarted struct {
	WorkoutID string
	StartedAt time.Time
}

// WorkoutEnded is the validated payload of a WorkoutEnded event.
type WorkoutEnded struct {
	WorkoutID string
	EndedAt   time.Time
}

// ExerciseAdded is the validated payload of an ExerciseAdded event. It is
// retained for audit only; it does not drive any projection mutation.
type ExerciseAdded struct {
	WorkoutID    string
	ExerciseID   string
	ExerciseName string
}

// SetCompleted is the validated payload of a SetCompleted event.
type SetCompleted struct {
	WorkoutID   string
	ExerciseID  string
	SetID       string
	Reps        int
	Weight      float64
	CompletedAt time.Time
}

type rawPayload struct {
	WorkoutID    *string  `json:"workout_id"`
	ExerciseID   *string  `json:"exercise_id"`
	ExerciseName *string  `json:"exercise_name"`
	SetID        *string  `json:"set_id"`
	StartedAt    *string  `json:"started_at"`
	EndedAt      *string  `json:"ended_at"`
	CompletedAt  *string  `json:"completed_at"`
	Reps         *float64 `json:"reps"`
	Weight       *float64 `json:"weight"`
}

// Validate parses raw (the event's stored JSON text) according to eventType
// and returns the validated, typed payload value, or ErrInvalidPayload.
func Validate(eventType syncevent.EventType, raw string) (interface{}, error) {
	var r rawPayload
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("%w: malformed json: %v", ErrInvalidPayload, err)
	}

	switch eventType {
	case syncevent.WorkoutStarted:
		return validateWorkoutStarted(r)
	case syncevent.WorkoutEnded:
		return validateWorkoutEnded(r)
	case syncevent.ExerciseAdded:
		return validateExerciseAdded(r)
	case syncevent.SetCompleted:
		return validateSetCompleted(r)
	default:
		return nil, fmt.Errorf("%w: unknown event_type %q", ErrInvalidPayload, eventType)
	}
}

func validateWorkoutStarted(r rawPayload) (*WorkoutStarted, error) {
	if r.WorkoutID == nil || *r.WorkoutID == "" {
		return nil, fmt.Errorf("%w: workout_id is required", ErrInvalidPayload)
	}
	startedAt, err := requireTime(r.StartedAt, "started_at")
	if err != nil {
		return nil, err
	}
	return &WorkoutStarted{WorkoutID: *r.WorkoutID, StartedAt: startedAt}, nil
}

func validateWorkoutEnded(r rawPayload) (*WorkoutEnded, error) {
	if r.WorkoutID == nil || *r.WorkoutID == "" {
		return nil, fmt.Errorf("%w: workout_id is required", ErrInvalidPayload)
	}
	endedAt, err := requireTime(r.EndedAt, "ended_at")
	if err != nil {
		return nil, err
	}
	return &WorkoutEnded{WorkoutID: *r.WorkoutID, EndedAt: endedAt}, nil
}

func validateExerciseAdded(r rawPayload) (*ExerciseAdded, error) {
	if r.WorkoutID == nil || *r.WorkoutID == "" {
		return nil, fmt.Errorf("%w: workout_id is required", ErrInvalidPayload)
	}
	if r.ExerciseID == nil || *r.ExerciseID == "" {
		return nil, fmt.Errorf("%w: exercise_id is required", ErrInvalidPayload)
	}
	if r.ExerciseName == nil || *r.ExerciseName == "" {
		return nil, fmt.Errorf("%w: exercise_name is required", ErrInvalidPayload)
	}
	return &ExerciseAdded{WorkoutID: *r.WorkoutID, ExerciseID: *r.ExerciseID, ExerciseName: *r.ExerciseName}, nil
}

func validateSetCompleted(r rawPayload) (*SetCompleted, error) {
	if r.WorkoutID == nil || *r.WorkoutID == "" {
		return nil, fmt.Errorf("%w: workout_id is required", ErrInvalidPayload)
	}
	if r.ExerciseID == nil || *r.ExerciseID == "" {
		return nil, fmt.Errorf("%w: exercise_id is required", ErrInvalidPayload)
	}
	if r.SetID == nil || *r.SetID == "" {
		return nil, fmt.Errorf("%w: set_id is required", ErrInvalidPayload)
	}
	if r.Reps == nil || *r.Reps <= 0 {
		return nil, fmt.Errorf("%w: reps must be greater than 0", ErrInvalidPayload)
	}
	if r.Weight == nil || *r.Weight <= 0 {
		return nil, fmt.Errorf("%w: weight must be greater than 0", ErrInvalidPayload)
	}
	completedAt, err := requireTime(r.CompletedAt, "completed_at")
	if err != nil {
		return nil, err
	}
	return &SetCompleted{
		WorkoutID:   *r.WorkoutID,
		ExerciseID:  *r.ExerciseID,
		SetID:       *r.SetID,
		Reps:        int(*r.Reps),
		Weight:      *r.Weight,
		CompletedAt: completedAt,
	}, nil
}

func requireTime(s *string, field string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidPayload, field)
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s is not a valid RFC3339 timestamp", ErrInvalidPayload, field)
	}
	return t, nil
}
