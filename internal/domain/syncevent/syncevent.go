// Package syncevent provides domain logic for the persisted SyncEvent entity
// that makes up the append-only event log. This package contains pure
// business logic with no database dependencies, making it testable in
// isolation.
package syncevent

import (
	"errors"
	"strings"
	"time"

	"github.com/sxroads/hypertrophy/internal/validation"
)

// EventType identifies the shape of an event's payload.
type EventType string

const (
	WorkoutStarted EventType = "WorkoutStarted"
	WorkoutEnded   EventType = "WorkoutEnded"
	ExerciseAdded  EventType = "ExerciseAdded"
	SetCompleted   EventType = "SetCompleted"
)

// Validation errors.
var (
	ErrEventIDRequired     = errors.New("event_id is required")
	ErrUserIDRequired      = errors.New("user_id is required")
	ErrDeviceIDRequired    = errors.New("device_id is required")
	ErrInvalidEventType    = errors.New("event_type must be one of WorkoutStarted, WorkoutEnded, ExerciseAdded, SetCompleted")
	ErrSequenceNotPositive = errors.New("sequence_number must be a positive integer")
	ErrPayloadRequired     = errors.New("payload is required")
)

// SyncEvent is one immutable row of the event log.
type SyncEvent struct {
	EventID        string
	EventType      EventType
	Payload        string
	UserID         string
	DeviceID       string
	SequenceNumber int64
	CorrelationID  *string
	CreatedAt      time.Time
}

// ValidationResult is an alias for the shared validation.Result type.
type ValidationResult = validation.Result

// NewValidationResult creates a valid result.
func NewValidationResult() *ValidationResult {
	return validation.NewResult()
}

// ValidateEventType reports whether t is one of the four known event types.
func ValidateEventType(t EventType) error {
	switch t {
	case WorkoutStarted, WorkoutEnded, ExerciseAdded, SetCompleted:
		return nil
	default:
		return ErrInvalidEventType
	}
}

// ValidateSequenceNumber reports whether n is a positive sequence number.
func ValidateSequenceNumber(n int64) error {
	if n <= 0 {
		return ErrSequenceNotPositive
	}
	return nil
}

// NewSyncEventInput contains the input data for creating a new SyncEvent
// from a batch-ingestion candidate.
type NewSyncEventInput struct {
	EventID        string
	EventType      EventType
	Payload        string
	UserID         string
	DeviceID       string
	SequenceNumber int64
	CorrelationID  *string
}

// NewSyncEvent validates input and constructs a SyncEvent with CreatedAt set
// to now. It does not validate the payload's internal shape — that is the
// Payload Validator's job (see internal/domain/payload).
func NewSyncEvent(input NewSyncEventInput) (*SyncEvent, *ValidationResult) {
	result := NewValidationResult()

	if strings.TrimSpace(input.EventID) == "" {
		result.AddError(ErrEventIDRequired)
	}
	if strings.TrimSpace(input.UserID) == "" {
		result.AddError(ErrUserIDRequired)
	}
	if strings.TrimSpace(input.DeviceID) == "" {
		result.AddError(ErrDeviceIDRequired)
	}
	if err := ValidateEventType(input.EventType); err != nil {
		result.AddError(err)
	}
	if err := ValidateSequenceNumber(input.SequenceNumber); err != nil {
		result.AddError(err)
	}
	if strings.TrimSpace(input.Payload) == "" {
		result.AddError(ErrPayloadRequired)
	}

	if !result.Valid {
		return nil, result
	}

	return &SyncEvent{
		EventID:        input.EventID,
		EventType:      input.EventType,
		Payload:        input.Payload,
		UserID:         input.UserID,
		DeviceID:       input.DeviceID,
		SequenceNumber: input.SequenceNumber,
		CorrelationID:  input.CorrelationID,
		CreatedAt:      time.Now(),
	}, result
}
