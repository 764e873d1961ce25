package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sxroads/hypertrophy/internal/domain/event"
	"github.com/sxroads/hypertrophy/internal/domain/syncevent"
	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// ProjectionRebuilder replays the entire event log to recompute workout and
// set projections from scratch, for operational reconciliation.
type ProjectionRebuilder struct {
	sqlDB      *sql.DB
	events     *repository.EventRepository
	workouts   *repository.WorkoutRepository
	sets       *repository.SetRepository
	updater    *ProjectionUpdater
	aggregator *WeeklyAggregator
	bus        *event.Bus
	logger     *logging.Logger
}

// NewProjectionRebuilder creates a new ProjectionRebuilder.
func NewProjectionRebuilder(sqlDB *sql.DB, events *repository.EventRepository, workouts *repository.WorkoutRepository, sets *repository.SetRepository, updater *ProjectionUpdater, aggregator *WeeklyAggregator, bus *event.Bus, logger *logging.Logger) *ProjectionRebuilder {
	return &ProjectionRebuilder{sqlDB: sqlDB, events: events, workouts: workouts, sets: sets, updater: updater, aggregator: aggregator, bus: bus, logger: logger}
}

// Rebuild truncates every projection table and replays the event log in
// (device_id, sequence_number) order, one Projection Updater transaction per
// user, then recomputes weekly metrics for every user left with a workout.
func (r *ProjectionRebuilder) Rebuild(ctx context.Context) (*RebuildResult, error) {
	tx, err := r.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewRebuildFailed(fmt.Sprintf("failed to begin truncate transaction: %v", err))
	}
	if err := r.sets.WithTx(tx).Truncate(ctx); err != nil {
		_ = tx.Rollback()
		return nil, apperrors.NewRebuildFailed(fmt.Sprintf("failed to truncate sets: %v", err))
	}
	if err := r.workouts.WithTx(tx).Truncate(ctx); err != nil {
		_ = tx.Rollback()
		return nil, apperrors.NewRebuildFailed(fmt.Sprintf("failed to truncate workouts: %v", err))
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewRebuildFailed(fmt.Sprintf("failed to commit truncation: %v", err))
	}

	events, err := r.events.ListOrdered(ctx)
	if err != nil {
		return nil, apperrors.NewRebuildFailed(fmt.Sprintf("failed to list events: %v", err))
	}

	byUser := map[string][]*syncevent.SyncEvent{}
	var userOrder []string
	for _, e := range events {
		if _, ok := byUser[e.UserID]; !ok {
			userOrder = append(userOrder, e.UserID)
		}
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	result := &RebuildResult{EventsReplayed: len(events)}
	for _, userID := range userOrder {
		delta, err := r.updater.Apply(ctx, userID, byUser[userID])
		if err != nil {
			return nil, apperrors.NewRebuildFailed(fmt.Sprintf("failed to replay events for user %s: %v", userID, err))
		}
		result.WorkoutsCreated += delta.WorkoutsTouched
		result.SetsCreated += delta.SetsTouched
		result.OrphanSets += delta.OrphanSetsSkipped
	}

	usersWithWorkouts, err := r.workouts.ListDistinctUsersWithWorkouts(ctx)
	if err != nil {
		r.logger.Errorw("failed to list users with workouts after rebuild", "error", err)
	} else {
		result.UsersRebuilt = len(usersWithWorkouts)
		for _, userID := range usersWithWorkouts {
			if err := r.aggregator.RebuildForUser(ctx, userID); err != nil {
				r.logger.Errorw("weekly metrics rebuild failed during full rebuild", "error", err, "user_id", userID)
			}
		}
	}

	if r.bus != nil {
		r.bus.PublishAsync(ctx, event.NewEventBuilder(event.EventProjectionRebuilt, "", "").
			WithRebuildResult(result.UsersRebuilt).Build())
	}

	return result, nil
}
