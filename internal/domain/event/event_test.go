package event

import (
	"testing"
	"time"
)

func TestNewStateEvent(t *testing.T) {
	before := time.Now()
	evt := NewStateEvent(EventSyncAccepted, "user-123", "device-456")
	after := time.Now()

	if evt.Type != EventSyncAccepted {
		t.Errorf("expected type %s, got %s", EventSyncAccepted, evt.Type)
	}
	if evt.UserID != "user-123" {
		t.Errorf("expected userID user-123, got %s", evt.UserID)
	}
	if evt.DeviceID != "device-456" {
		t.Errorf("expected deviceID device-456, got %s", evt.DeviceID)
	}
	if evt.Timestamp.Before(before) || evt.Timestamp.After(after) {
		t.Error("timestamp should be between before and after test execution")
	}
	if evt.Payload == nil {
		t.Error("payload should be initialized")
	}
}

func TestStateEvent_WithPayload(t *testing.T) {
	evt := NewStateEvent(EventProjectionUpdated, "user-123", "device-456").
		WithPayload("key1", "value1").
		WithPayload("key2", 42)

	if evt.Payload["key1"] != "value1" {
		t.Errorf("expected key1=value1, got %v", evt.Payload["key1"])
	}
	if evt.Payload["key2"] != 42 {
		t.Errorf("expected key2=42, got %v", evt.Payload["key2"])
	}
}

func TestStateEvent_GetString(t *testing.T) {
	evt := NewStateEvent(EventProjectionUpdated, "user", "device").
		WithPayload("strKey", "hello").
		WithPayload("intKey", 123)

	if got := evt.GetString("strKey"); got != "hello" {
		t.Errorf("expected 'hello', got '%s'", got)
	}
	if got := evt.GetString("intKey"); got != "" {
		t.Errorf("expected empty string for int value, got '%s'", got)
	}
	if got := evt.GetString("missing"); got != "" {
		t.Errorf("expected empty string for missing key, got '%s'", got)
	}

	emptyEvent := StateEvent{}
	if got := emptyEvent.GetString("any"); got != "" {
		t.Errorf("expected empty string for nil payload, got '%s'", got)
	}
}

func TestStateEvent_GetInt(t *testing.T) {
	evt := NewStateEvent(EventProjectionUpdated, "user", "device").
		WithPayload("intKey", 42).
		WithPayload("strKey", "notanint")

	if got := evt.GetInt("intKey"); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := evt.GetInt("strKey"); got != 0 {
		t.Errorf("expected 0 for string value, got %d", got)
	}
	if got := evt.GetInt("missing"); got != 0 {
		t.Errorf("expected 0 for missing key, got %d", got)
	}

	emptyEvent := StateEvent{}
	if got := emptyEvent.GetInt("any"); got != 0 {
		t.Errorf("expected 0 for nil payload, got %d", got)
	}
}

func TestStateEvent_GetFloat64(t *testing.T) {
	evt := NewStateEvent(EventWeeklyMetricsUpdated, "user", "device").
		WithPayload("floatKey", 3.14).
		WithPayload("strKey", "notafloat")

	if got := evt.GetFloat64("floatKey"); got != 3.14 {
		t.Errorf("expected 3.14, got %f", got)
	}
	if got := evt.GetFloat64("strKey"); got != 0.0 {
		t.Errorf("expected 0.0 for string value, got %f", got)
	}
	if got := evt.GetFloat64("missing"); got != 0.0 {
		t.Errorf("expected 0.0 for missing key, got %f", got)
	}

	emptyEvent := StateEvent{}
	if got := emptyEvent.GetFloat64("any"); got != 0.0 {
		t.Errorf("expected 0.0 for nil payload, got %f", got)
	}
}

func TestStateEvent_GetBool(t *testing.T) {
	evt := NewStateEvent(EventMergeCompleted, "user", "device").
		WithPayload("boolTrue", true).
		WithPayload("boolFalse", false).
		WithPayload("strKey", "notabool")

	if got := evt.GetBool("boolTrue"); !got {
		t.Error("expected true, got false")
	}
	if got := evt.GetBool("boolFalse"); got {
		t.Error("expected false, got true")
	}
	if got := evt.GetBool("strKey"); got {
		t.Error("expected false for string value, got true")
	}
	if got := evt.GetBool("missing"); got {
		t.Error("expected false for missing key, got true")
	}

	emptyEvent := StateEvent{}
	if got := emptyEvent.GetBool("any"); got {
		t.Error("expected false for nil payload, got true")
	}
}

func TestValidEventTypes(t *testing.T) {
	expectedTypes := []EventType{
		EventSyncAccepted,
		EventProjectionUpdated,
		EventProjectionRebuilt,
		EventMergeCompleted,
		EventWeeklyMetricsUpdated,
	}

	for _, et := range expectedTypes {
		if !ValidEventTypes[et] {
			t.Errorf("expected %s to be a valid event type", et)
		}
	}

	if ValidEventTypes["INVALID_EVENT_TYPE"] {
		t.Error("INVALID_EVENT_TYPE should not be valid")
	}
}

func TestStateEvent_WithPayload_NilPayload(t *testing.T) {
	evt := StateEvent{
		Type:   EventSyncAccepted,
		UserID: "user",
	}

	evt = evt.WithPayload("key", "value")

	if evt.Payload == nil {
		t.Error("payload should be initialized after WithPayload")
	}
	if evt.Payload["key"] != "value" {
		t.Errorf("expected payload[key]=value, got %v", evt.Payload["key"])
	}
}
