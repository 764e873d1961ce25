package event

// HandlerRegistry manages the registration of event handlers and provides
// a central place to wire up event-driven integrations.
type HandlerRegistry struct {
	bus *Bus
}

// NewHandlerRegistry creates a new handler registry backed by the given event bus.
func NewHandlerRegistry(bus *Bus) *HandlerRegistry {
	return &HandlerRegistry{bus: bus}
}

// Bus returns the underlying event bus.
func (r *HandlerRegistry) Bus() *Bus {
	return r.bus
}

// RegisterHandler registers a handler function for a specific event type.
func (r *HandlerRegistry) RegisterHandler(eventType EventType, handler EventHandler) {
	r.bus.Subscribe(eventType, handler)
}

// RegisterMultiple registers a handler for multiple event types.
func (r *HandlerRegistry) RegisterMultiple(eventTypes []EventType, handler EventHandler) {
	r.bus.SubscribeMultiple(eventTypes, handler)
}

// StateEventBuilder provides a fluent API for building StateEvents with
// common payload patterns.
type StateEventBuilder struct {
	event StateEvent
}

// NewEventBuilder creates a new event builder for the given event type.
func NewEventBuilder(eventType EventType, userID, deviceID string) *StateEventBuilder {
	return &StateEventBuilder{
		event: NewStateEvent(eventType, userID, deviceID),
	}
}

// WithSyncResult adds the Ingestion Service's outcome fields to the payload.
func (b *StateEventBuilder) WithSyncResult(acceptedCount, rejectedCount int, lastAckedSequence int64) *StateEventBuilder {
	b.event = b.event.
		WithPayload(PayloadAcceptedCount, acceptedCount).
		WithPayload(PayloadRejectedCount, rejectedCount).
		WithPayload(PayloadLastAckedSequence, lastAckedSequence)
	return b
}

// WithProjectionDelta adds the Projection Updater's per-call touch counts.
func (b *StateEventBuilder) WithProjectionDelta(workoutsTouched, setsTouched, orphanSetsSkipped, synthesizedWorkouts int) *StateEventBuilder {
	b.event = b.event.
		WithPayload(PayloadWorkoutsTouched, workoutsTouched).
		WithPayload(PayloadSetsTouched, setsTouched).
		WithPayload(PayloadOrphanSetsSkipped, orphanSetsSkipped).
		WithPayload(PayloadSynthesizedWorkouts, synthesizedWorkouts)
	return b
}

// WithRebuildResult adds the Projection Rebuilder's fan-out count.
func (b *StateEventBuilder) WithRebuildResult(usersRebuilt int) *StateEventBuilder {
	b.event = b.event.WithPayload(PayloadUsersRebuilt, usersRebuilt)
	return b
}

// WithMergeResult adds Identity Merge's source/target ids and re-attribution count.
func (b *StateEventBuilder) WithMergeResult(anonymousUserID, realUserID string, eventsReattributed int) *StateEventBuilder {
	b.event = b.event.
		WithPayload(PayloadAnonymousUserID, anonymousUserID).
		WithPayload(PayloadRealUserID, realUserID).
		WithPayload(PayloadEventsReattributed, eventsReattributed)
	return b
}

// WithWeeklyMetrics adds the Weekly Aggregator's per-week result.
func (b *StateEventBuilder) WithWeeklyMetrics(weekStart string, totalVolume float64) *StateEventBuilder {
	b.event = b.event.
		WithPayload(PayloadWeekStart, weekStart).
		WithPayload(PayloadTotalVolume, totalVolume)
	return b
}

// WithPayload adds a custom payload field.
func (b *StateEventBuilder) WithPayload(key string, value interface{}) *StateEventBuilder {
	b.event = b.event.WithPayload(key, value)
	return b
}

// Build returns the constructed event.
func (b *StateEventBuilder) Build() StateEvent {
	return b.event
}
