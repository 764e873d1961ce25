package event

import (
	"context"
	"testing"
)

func TestNewHandlerRegistry(t *testing.T) {
	bus := NewBus()
	registry := NewHandlerRegistry(bus)

	if registry == nil {
		t.Fatal("expected non-nil registry")
	}
	if registry.Bus() != bus {
		t.Error("expected registry to wrap the same bus")
	}
}

func TestHandlerRegistry_RegisterHandler(t *testing.T) {
	bus := NewBus()
	registry := NewHandlerRegistry(bus)

	called := false
	registry.RegisterHandler(EventSyncAccepted, func(ctx context.Context, evt StateEvent) error {
		called = true
		return nil
	})

	evt := NewStateEvent(EventSyncAccepted, "user", "device")
	_ = bus.Publish(context.Background(), evt)

	if !called {
		t.Error("expected handler to be called")
	}
}

func TestHandlerRegistry_RegisterMultiple(t *testing.T) {
	bus := NewBus()
	registry := NewHandlerRegistry(bus)

	callCount := 0
	registry.RegisterMultiple(
		[]EventType{EventSyncAccepted, EventProjectionUpdated, EventMergeCompleted},
		func(ctx context.Context, evt StateEvent) error {
			callCount++
			return nil
		},
	)

	_ = bus.Publish(context.Background(), NewStateEvent(EventSyncAccepted, "user", "device"))
	_ = bus.Publish(context.Background(), NewStateEvent(EventProjectionUpdated, "user", "device"))
	_ = bus.Publish(context.Background(), NewStateEvent(EventMergeCompleted, "user", "device"))

	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestStateEventBuilder_WithSyncResult(t *testing.T) {
	evt := NewEventBuilder(EventSyncAccepted, "user-123", "device-456").
		WithSyncResult(3, 1, 4).
		Build()

	if evt.Type != EventSyncAccepted {
		t.Errorf("expected type %s, got %s", EventSyncAccepted, evt.Type)
	}
	if evt.UserID != "user-123" {
		t.Errorf("expected userID user-123, got %s", evt.UserID)
	}
	if evt.DeviceID != "device-456" {
		t.Errorf("expected deviceID device-456, got %s", evt.DeviceID)
	}
	if evt.GetInt(PayloadAcceptedCount) != 3 {
		t.Errorf("expected acceptedCount 3, got %d", evt.GetInt(PayloadAcceptedCount))
	}
	if evt.GetInt(PayloadRejectedCount) != 1 {
		t.Errorf("expected rejectedCount 1, got %d", evt.GetInt(PayloadRejectedCount))
	}
}

func TestStateEventBuilder_WithProjectionDelta(t *testing.T) {
	evt := NewEventBuilder(EventProjectionUpdated, "user", "device").
		WithProjectionDelta(2, 5, 1, 0).
		Build()

	if evt.GetInt(PayloadWorkoutsTouched) != 2 {
		t.Errorf("expected workoutsTouched 2, got %d", evt.GetInt(PayloadWorkoutsTouched))
	}
	if evt.GetInt(PayloadSetsTouched) != 5 {
		t.Errorf("expected setsTouched 5, got %d", evt.GetInt(PayloadSetsTouched))
	}
	if evt.GetInt(PayloadOrphanSetsSkipped) != 1 {
		t.Errorf("expected orphanSetsSkipped 1, got %d", evt.GetInt(PayloadOrphanSetsSkipped))
	}
}

func TestStateEventBuilder_WithRebuildResult(t *testing.T) {
	evt := NewEventBuilder(EventProjectionRebuilt, "", "").
		WithRebuildResult(7).
		Build()

	if evt.GetInt(PayloadUsersRebuilt) != 7 {
		t.Errorf("expected usersRebuilt 7, got %d", evt.GetInt(PayloadUsersRebuilt))
	}
}

func TestStateEventBuilder_WithMergeResult(t *testing.T) {
	evt := NewEventBuilder(EventMergeCompleted, "real-user", "").
		WithMergeResult("anon-user", "real-user", 12).
		Build()

	if evt.GetString(PayloadAnonymousUserID) != "anon-user" {
		t.Errorf("expected anonymousUserId anon-user, got %s", evt.GetString(PayloadAnonymousUserID))
	}
	if evt.GetString(PayloadRealUserID) != "real-user" {
		t.Errorf("expected realUserId real-user, got %s", evt.GetString(PayloadRealUserID))
	}
	if evt.GetInt(PayloadEventsReattributed) != 12 {
		t.Errorf("expected eventsReattributed 12, got %d", evt.GetInt(PayloadEventsReattributed))
	}
}

func TestStateEventBuilder_WithWeeklyMetrics(t *testing.T) {
	evt := NewEventBuilder(EventWeeklyMetricsUpdated, "user", "").
		WithWeeklyMetrics("2026-07-27", 4500.0).
		Build()

	if evt.GetString(PayloadWeekStart) != "2026-07-27" {
		t.Errorf("expected weekStart 2026-07-27, got %s", evt.GetString(PayloadWeekStart))
	}
	if evt.GetFloat64(PayloadTotalVolume) != 4500.0 {
		t.Errorf("expected totalVolume 4500.0, got %f", evt.GetFloat64(PayloadTotalVolume))
	}
}

func TestStateEventBuilder_WithPayload(t *testing.T) {
	evt := NewEventBuilder(EventSyncAccepted, "user", "device").
		WithPayload("customKey", "customValue").
		Build()

	if evt.GetString("customKey") != "customValue" {
		t.Errorf("expected customKey=customValue, got %s", evt.GetString("customKey"))
	}
}
