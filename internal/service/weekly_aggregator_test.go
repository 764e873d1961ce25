package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sxroads/hypertrophy/internal/domain/weeklymetrics"
)

func TestWeeklyAggregator_CalculateWeeklyMetrics_SumsVolumeAndExercises(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	u := h.createUser(t, true)
	deviceID := uuid.New().String()

	monday := weeklymetrics.WeekStart(time.Now())
	workoutAStart := monday.Add(10 * time.Hour)
	workoutAEnd := workoutAStart.Add(time.Hour)
	workoutBStart := monday.Add(48*time.Hour + 10*time.Hour)
	workoutBEnd := workoutBStart.Add(time.Hour)

	benchID := "00000000-0000-0000-0000-000000000001"
	squatID := "00000000-0000-0000-0000-00000000000e"

	_, err := h.ingestion.Sync(ctx, deviceID, u.UserID, []SyncEventCandidate{
		{EventID: uuid.New().String(), EventType: "WorkoutStarted", Payload: workoutStartedPayload("w1", workoutAStart), SequenceNumber: 1},
		{EventID: uuid.New().String(), EventType: "SetCompleted", Payload: setCompletedPayload("w1", benchID, uuid.New().String(), 10, 100, workoutAStart.Add(time.Minute)), SequenceNumber: 2},
		{EventID: uuid.New().String(), EventType: "WorkoutEnded", Payload: workoutEndedPayload("w1", workoutAEnd), SequenceNumber: 3},
		{EventID: uuid.New().String(), EventType: "WorkoutStarted", Payload: workoutStartedPayload("w2", workoutBStart), SequenceNumber: 4},
		{EventID: uuid.New().String(), EventType: "SetCompleted", Payload: setCompletedPayload("w2", squatID, uuid.New().String(), 5, 200, workoutBStart.Add(time.Minute)), SequenceNumber: 5},
		{EventID: uuid.New().String(), EventType: "WorkoutEnded", Payload: workoutEndedPayload("w2", workoutBEnd), SequenceNumber: 6},
	})
	require.NoError(t, err)

	metrics, err := h.query.GetOrCreateWeeklyMetrics(ctx, u.UserID, monday)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.Equal(t, 2, metrics.TotalWorkouts)
	assert.Equal(t, float64(10*100+5*200), metrics.TotalVolume)
	assert.Equal(t, 2, metrics.ExercisesCount)
}

func TestWeeklyAggregator_RebuildForUser_RecomputesEveryTouchedWeek(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	u := h.createUser(t, true)
	deviceID := uuid.New().String()

	thisWeek := weeklymetrics.WeekStart(time.Now())
	lastWeek := thisWeek.Add(-7 * 24 * time.Hour)

	start1 := lastWeek.Add(10 * time.Hour)
	start2 := thisWeek.Add(10 * time.Hour)

	_, err := h.ingestion.Sync(ctx, deviceID, u.UserID, []SyncEventCandidate{
		{EventID: uuid.New().String(), EventType: "WorkoutStarted", Payload: workoutStartedPayload("wA", start1), SequenceNumber: 1},
		{EventID: uuid.New().String(), EventType: "WorkoutEnded", Payload: workoutEndedPayload("wA", start1.Add(time.Hour)), SequenceNumber: 2},
		{EventID: uuid.New().String(), EventType: "WorkoutStarted", Payload: workoutStartedPayload("wB", start2), SequenceNumber: 3},
		{EventID: uuid.New().String(), EventType: "WorkoutEnded", Payload: workoutEndedPayload("wB", start2.Add(time.Hour)), SequenceNumber: 4},
	})
	require.NoError(t, err)

	require.NoError(t, h.aggregator.RebuildForUser(ctx, u.UserID))

	m1, err := h.weeklyMetrics.GetByUserAndWeek(ctx, u.UserID, lastWeek)
	require.NoError(t, err)
	require.NotNil(t, m1)
	assert.Equal(t, 1, m1.TotalWorkouts)

	m2, err := h.weeklyMetrics.GetByUserAndWeek(ctx, u.UserID, thisWeek)
	require.NoError(t, err)
	require.NotNil(t, m2)
	assert.Equal(t, 1, m2.TotalWorkouts)
}
