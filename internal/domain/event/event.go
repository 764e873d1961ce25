// Package event provides an in-memory event bus for decoupling the
// ingestion/projection pipeline from side effects like logging and metrics.
package event

import "time"

// EventType identifies the type of state event that occurred.
type EventType string

const (
	// EventSyncAccepted fires once per ingestion call, after the Ingestion
	// Service has finished classifying and persisting a batch.
	EventSyncAccepted EventType = "SYNC_ACCEPTED"
	// EventProjectionUpdated fires after the Projection Updater commits an
	// incremental delta for a user.
	EventProjectionUpdated EventType = "PROJECTION_UPDATED"
	// EventProjectionRebuilt fires after the Projection Rebuilder completes a
	// full rebuild.
	EventProjectionRebuilt EventType = "PROJECTION_REBUILT"
	// EventMergeCompleted fires after Identity Merge commits a re-attribution.
	EventMergeCompleted EventType = "MERGE_COMPLETED"
	// EventWeeklyMetricsUpdated fires after the Weekly Aggregator upserts a
	// user's metrics for one week.
	EventWeeklyMetricsUpdated EventType = "WEEKLY_METRICS_UPDATED"
)

// ValidEventTypes contains all valid event types for validation.
var ValidEventTypes = map[EventType]bool{
	EventSyncAccepted:         true,
	EventProjectionUpdated:    true,
	EventProjectionRebuilt:    true,
	EventMergeCompleted:       true,
	EventWeeklyMetricsUpdated: true,
}

// StateEvent represents a notification emitted by the core as a side effect
// of a pipeline operation. Events carry contextual information about what
// changed.
type StateEvent struct {
	// Type identifies the kind of event.
	Type EventType
	// UserID is the UUID of the user the event concerns.
	UserID string
	// DeviceID is the UUID of the device associated with the event, when
	// applicable (sync events; empty for every other event type).
	DeviceID string
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Payload contains event-specific data.
	// Keys and values depend on the event type.
	Payload map[string]interface{}
}

// NewStateEvent creates a new StateEvent with the given type, user ID, and
// device ID. The timestamp is set to the current time.
func NewStateEvent(eventType EventType, userID, deviceID string) StateEvent {
	return StateEvent{
		Type:      eventType,
		UserID:    userID,
		DeviceID:  deviceID,
		Timestamp: time.Now(),
		Payload:   make(map[string]interface{}),
	}
}

// WithPayload adds payload data to the event and returns the event for chaining.
func (e StateEvent) WithPayload(key string, value interface{}) StateEvent {
	if e.Payload == nil {
		e.Payload = make(map[string]interface{})
	}
	e.Payload[key] = value
	return e
}

// GetString retrieves a string value from the payload.
// Returns empty string if the key doesn't exist or isn't a string.
func (e StateEvent) GetString(key string) string {
	if e.Payload == nil {
		return ""
	}
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}

// GetInt retrieves an int value from the payload.
// Returns 0 if the key doesn't exist or isn't an int.
func (e StateEvent) GetInt(key string) int {
	if e.Payload == nil {
		return 0
	}
	if v, ok := e.Payload[key].(int); ok {
		return v
	}
	return 0
}

// GetFloat64 retrieves a float64 value from the payload.
// Returns 0.0 if the key doesn't exist or isn't a float64.
func (e StateEvent) GetFloat64(key string) float64 {
	if e.Payload == nil {
		return 0.0
	}
	if v, ok := e.Payload[key].(float64); ok {
		return v
	}
	return 0.0
}

// GetBool retrieves a bool value from the payload.
// Returns false if the key doesn't exist or isn't a bool.
func (e StateEvent) GetBool(key string) bool {
	if e.Payload == nil {
		return false
	}
	if v, ok := e.Payload[key].(bool); ok {
		return v
	}
	return false
}

// Payload keys for common event data.
const (
	// PayloadAcceptedCount is the key for the number of events accepted by a sync call.
	PayloadAcceptedCount = "acceptedCount"
	// PayloadRejectedCount is the key for the number of events rejected by a sync call.
	PayloadRejectedCount = "rejectedCount"
	// PayloadLastAckedSequence is the key for the ack cursor's last acked sequence number.
	PayloadLastAckedSequence = "lastAckedSequence"
	// PayloadWorkoutsTouched is the key for how many workout rows a projection update touched.
	PayloadWorkoutsTouched = "workoutsTouched"
	// PayloadSetsTouched is the key for how many set rows a projection update touched.
	PayloadSetsTouched = "setsTouched"
	// PayloadOrphanSetsSkipped is the key for how many SetCompleted events were skipped for a missing workout.
	PayloadOrphanSetsSkipped = "orphanSetsSkipped"
	// PayloadSynthesizedWorkouts is the key for how many workouts were synthesized from out-of-order WorkoutEnded events.
	PayloadSynthesizedWorkouts = "synthesizedWorkouts"
	// PayloadUsersRebuilt is the key for how many users' weekly metrics a full rebuild recomputed.
	PayloadUsersRebuilt = "usersRebuilt"
	// PayloadAnonymousUserID is the key for the source user_id of an identity merge.
	PayloadAnonymousUserID = "anonymousUserId"
	// PayloadRealUserID is the key for the target user_id of an identity merge.
	PayloadRealUserID = "realUserId"
	// PayloadEventsReattributed is the key for how many event rows a merge re-attributed.
	PayloadEventsReattributed = "eventsReattributed"
	// PayloadWeekStart is the key for the ISO week a weekly-metrics update concerns.
	PayloadWeekStart = "weekStart"
	// PayloadTotalVolume is the key for a week's total volume.
	PayloadTotalVolume = "totalVolume"
)
