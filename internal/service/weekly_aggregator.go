package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sxroads/hypertrophy/internal/domain/event"
	"github.com/sxroads/hypertrophy/internal/domain/weeklymetrics"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// WeeklyAggregator computes and persists per-user, per-ISO-week workout
// totals from the workout/set projections.
type WeeklyAggregator struct {
	workouts *repository.WorkoutRepository
	sets     *repository.SetRepository
	metrics  *repository.WeeklyMetricsRepository
	bus      *event.Bus
	logger   *logging.Logger
}

// NewWeeklyAggregator creates a new WeeklyAggregator.
func NewWeeklyAggregator(workouts *repository.WorkoutRepository, sets *repository.SetRepository, metrics *repository.WeeklyMetricsRepository, bus *event.Bus, logger *logging.Logger) *WeeklyAggregator {
	return &WeeklyAggregator{workouts: workouts, sets: sets, metrics: metrics, bus: bus, logger: logger}
}

// CalculateWeeklyMetrics recomputes and upserts userID's metrics for the ISO
// week opening on weekStart, batch-fetching sets for every workout in that
// week in a single query.
func (a *WeeklyAggregator) CalculateWeeklyMetrics(ctx context.Context, userID string, weekStart time.Time) (*weeklymetrics.WeeklyMetrics, error) {
	weekStart = weeklymetrics.WeekStart(weekStart)
	weekEnd := weeklymetrics.WeekEnd(weekStart)

	workouts, err := a.workouts.ListCompletedInRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed workouts: %w", err)
	}

	workoutIDs := make([]string, len(workouts))
	for i, w := range workouts {
		workoutIDs[i] = w.WorkoutID
	}
	var totalVolume float64
	exercises := map[string]struct{}{}
	if len(workoutIDs) > 0 {
		sets, err := a.sets.ListByWorkouts(ctx, workoutIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to batch list sets: %w", err)
		}
		for _, s := range sets {
			totalVolume += s.Volume()
			exercises[s.ExerciseID] = struct{}{}
		}
	}

	id := uuid.New().String()
	if existing, err := a.metrics.GetByUserAndWeek(ctx, userID, weekStart); err != nil {
		return nil, fmt.Errorf("failed to check existing weekly metrics: %w", err)
	} else if existing != nil {
		id = existing.ID
	}

	m, vr := weeklymetrics.NewWeeklyMetrics(weeklymetrics.NewWeeklyMetricsInput{
		ID:             id,
		UserID:         userID,
		WeekStart:      weekStart,
		TotalWorkouts:  len(workouts),
		TotalVolume:    totalVolume,
		ExercisesCount: len(exercises),
	})
	if !vr.Valid {
		return nil, vr.Error()
	}

	if err := a.metrics.Upsert(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to upsert weekly metrics: %w", err)
	}

	if a.bus != nil {
		a.bus.PublishAsync(ctx, event.NewEventBuilder(event.EventWeeklyMetricsUpdated, userID, "").
			WithWeeklyMetrics(weekStart.Format("2006-01-02"), totalVolume).Build())
	}

	return m, nil
}

// RebuildForUser recomputes every ISO week in which userID has a completed
// workout, grouping by week_start(started_at).
func (a *WeeklyAggregator) RebuildForUser(ctx context.Context, userID string) error {
	workouts, err := a.workouts.ListAllCompletedByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list completed workouts: %w", err)
	}

	seen := map[time.Time]bool{}
	var weeks []time.Time
	for _, w := range workouts {
		ws := weeklymetrics.WeekStart(w.StartedAt)
		if !seen[ws] {
			seen[ws] = true
			weeks = append(weeks, ws)
		}
	}

	for _, ws := range weeks {
		if _, err := a.CalculateWeeklyMetrics(ctx, userID, ws); err != nil {
			return fmt.Errorf("failed to rebuild week %s: %w", ws.Format("2006-01-02"), err)
		}
	}
	return nil
}
