// Package service implements the core event ingestion and projection
// pipeline: the Ingestion Service, the incremental Projection Updater, the
// full Projection Rebuilder, the Weekly Aggregator, Identity Merge, the
// Query Layer, and the supplemented Report Generator and user lifecycle
// operations. Every exported type here is a boundary the HTTP adapter
// (internal/api) drives; none of it knows about HTTP.
package service

import (
	"time"
)

// SyncEventCandidate is one event offered to the Ingestion Service by a sync
// call, before existence/validity have been checked.
type SyncEventCandidate struct {
	EventID        string
	EventType      string
	Payload        string
	SequenceNumber int64
	CorrelationID  *string
}

// AckCursor reports the largest sequence_number a device's events have been
// durably accepted through.
type AckCursor struct {
	DeviceID          string
	LastAckedSequence *int64
}

// SyncResult is the Ingestion Service's per-call outcome.
type SyncResult struct {
	AckCursor        AckCursor
	AcceptedCount    int
	RejectedCount    int
	RejectedEventIDs []string
}

// ProjectionDelta summarizes what the Projection Updater touched in one
// incremental pass, for observability (see the event package's
// WithProjectionDelta payload).
type ProjectionDelta struct {
	WorkoutsTouched     int
	SetsTouched         int
	OrphanSetsSkipped   int
	SynthesizedWorkouts int
}

// RebuildResult is the Projection Rebuilder's outcome.
type RebuildResult struct {
	EventsReplayed  int
	WorkoutsCreated int
	SetsCreated     int
	OrphanSets      int
	UsersRebuilt    int
}

// MergeResult is Identity Merge's outcome.
type MergeResult struct {
	Merged               bool
	AnonymousUserID      string
	RealUserID           string
	EventsReattributed   int64
	WorkoutsReattributed int64
	MetricsReattributed  int64
	ReportsReattributed  int64
}

// WorkoutSummary annotates a workout projection row with the aggregates the
// Query Layer's list endpoint must compute without N+1 queries.
type WorkoutSummary struct {
	WorkoutID        string
	UserID           string
	StartedAt        time.Time
	EndedAt          *time.Time
	Status           string
	SetCount         int
	TotalVolume      float64
	DistinctExercise []string
}

// SetView annotates a set projection row with its exercise's human-readable
// name for display.
type SetView struct {
	SetID        string
	WorkoutID    string
	ExerciseID   string
	ExerciseName string
	Reps         *int
	Weight       *float64
	CompletedAt  time.Time
}
