package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sxroads/hypertrophy/internal/domain/event"
	"github.com/sxroads/hypertrophy/internal/domain/payload"
	"github.com/sxroads/hypertrophy/internal/domain/set"
	"github.com/sxroads/hypertrophy/internal/domain/syncevent"
	"github.com/sxroads/hypertrophy/internal/domain/workout"
	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// ProjectionUpdater applies a freshly persisted batch of one user's events to
// the workout/set projections, in the two-phase order the set→workout
// foreign key requires.
type ProjectionUpdater struct {
	sqlDB      *sql.DB
	workouts   *repository.WorkoutRepository
	sets       *repository.SetRepository
	aggregator *WeeklyAggregator
	bus        *event.Bus
	logger     *logging.Logger
}

// NewProjectionUpdater creates a new ProjectionUpdater.
func NewProjectionUpdater(sqlDB *sql.DB, workouts *repository.WorkoutRepository, sets *repository.SetRepository, aggregator *WeeklyAggregator, bus *event.Bus, logger *logging.Logger) *ProjectionUpdater {
	return &ProjectionUpdater{sqlDB: sqlDB, workouts: workouts, sets: sets, aggregator: aggregator, bus: bus, logger: logger}
}

type workoutCacheEntry struct {
	w     *workout.Workout
	isNew bool
}

// Apply upserts workout and set projections for events, all of which belong
// to userID, then triggers a best-effort weekly-metrics rebuild for that
// user. A transaction failure rolls back only the projection changes; the
// caller's event log append is unaffected.
func (u *ProjectionUpdater) Apply(ctx context.Context, userID string, events []*syncevent.SyncEvent) (*ProjectionDelta, error) {
	if len(events) == 0 {
		return &ProjectionDelta{}, nil
	}

	tx, err := u.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	workoutsTx := u.workouts.WithTx(tx)
	setsTx := u.sets.WithTx(tx)

	cache := map[string]*workoutCacheEntry{}
	var order []string
	synthesized := 0

	touch := func(workoutID string) (*workoutCacheEntry, error) {
		if entry, ok := cache[workoutID]; ok {
			return entry, nil
		}
		existing, err := workoutsTx.GetByID(ctx, workoutID)
		if err != nil {
			return nil, err
		}
		entry := &workoutCacheEntry{w: existing, isNew: existing == nil}
		cache[workoutID] = entry
		order = append(order, workoutID)
		return entry, nil
	}

	// Phase A: workout events.
	for _, e := range events {
		switch e.EventType {
		case syncevent.WorkoutStarted:
			p, err := payload.Validate(e.EventType, e.Payload)
			if err != nil {
				return nil, apperrors.NewProjectionUpdateFailed(fmt.Sprintf("unexpected invalid payload on persisted event %s: %v", e.EventID, err))
			}
			ws := p.(*payload.WorkoutStarted)
			entry, err := touch(ws.WorkoutID)
			if err != nil {
				return nil, apperrors.NewProjectionUpdateFailed(err.Error())
			}
			if entry.w == nil {
				w, vr := workout.NewWorkout(workout.NewWorkoutInput{WorkoutID: ws.WorkoutID, UserID: userID, StartedAt: ws.StartedAt})
				if !vr.Valid {
					return nil, apperrors.NewProjectionUpdateFailed(vr.Error().Error())
				}
				entry.w = w
			} else {
				entry.w.ApplyStarted(ws.StartedAt)
			}
		case syncevent.WorkoutEnded:
			p, err := payload.Validate(e.EventType, e.Payload)
			if err != nil {
				return nil, apperrors.NewProjectionUpdateFailed(fmt.Sprintf("unexpected invalid payload on persisted event %s: %v", e.EventID, err))
			}
			we := p.(*payload.WorkoutEnded)
			entry, err := touch(we.WorkoutID)
			if err != nil {
				return nil, apperrors.NewProjectionUpdateFailed(err.Error())
			}
			if entry.w == nil {
				entry.w = workout.Synthesize(we.WorkoutID, userID, we.EndedAt)
				synthesized++
				u.logger.Warnw("synthesizing workout from out-of-order WorkoutEnded", "workout_id", we.WorkoutID, "user_id", userID)
			} else {
				entry.w.ApplyEnded(we.EndedAt)
			}
		}
	}

	for _, id := range order {
		entry := cache[id]
		if entry.isNew {
			if err := workoutsTx.Insert(ctx, entry.w); err != nil {
				return nil, apperrors.NewProjectionUpdateFailed(err.Error())
			}
		} else if err := workoutsTx.UpdateStarted(ctx, entry.w); err != nil {
			return nil, apperrors.NewProjectionUpdateFailed(err.Error())
		}
	}

	// Phase B: set events, only after workout rows are visible in this tx.
	setsTouched := 0
	orphanSkipped := 0
	for _, e := range events {
		if e.EventType != syncevent.SetCompleted {
			continue
		}
		p, err := payload.Validate(e.EventType, e.Payload)
		if err != nil {
			return nil, apperrors.NewProjectionUpdateFailed(fmt.Sprintf("unexpected invalid payload on persisted event %s: %v", e.EventID, err))
		}
		sc := p.(*payload.SetCompleted)

		entry, ok := cache[sc.WorkoutID]
		if !ok {
			w, err := workoutsTx.GetByID(ctx, sc.WorkoutID)
			if err != nil {
				return nil, apperrors.NewProjectionUpdateFailed(err.Error())
			}
			if w != nil {
				entry = &workoutCacheEntry{w: w}
				cache[sc.WorkoutID] = entry
			}
		}
		if entry == nil {
			orphanSkipped++
			u.logger.Warnw("skipping SetCompleted for unknown workout", "workout_id", sc.WorkoutID, "set_id", sc.SetID)
			continue
		}

		s, vr := set.NewSet(set.NewSetInput{
			SetID:       sc.SetID,
			WorkoutID:   sc.WorkoutID,
			ExerciseID:  sc.ExerciseID,
			Reps:        sc.Reps,
			Weight:      sc.Weight,
			CompletedAt: sc.CompletedAt,
		})
		if !vr.Valid {
			return nil, apperrors.NewProjectionUpdateFailed(vr.Error().Error())
		}
		if err := setsTx.Upsert(ctx, s); err != nil {
			return nil, apperrors.NewProjectionUpdateFailed(err.Error())
		}
		setsTouched++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit projection update: %w", err)
	}
	committed = true

	if err := u.aggregator.RebuildForUser(ctx, userID); err != nil {
		u.logger.Errorw("weekly metrics rebuild failed after projection update", "error", err, "user_id", userID)
	}

	delta := &ProjectionDelta{
		WorkoutsTouched:     len(order),
		SetsTouched:         setsTouched,
		OrphanSetsSkipped:   orphanSkipped,
		SynthesizedWorkouts: synthesized,
	}

	if u.bus != nil {
		u.bus.PublishAsync(ctx, event.NewEventBuilder(event.EventProjectionUpdated, userID, "").
			WithProjectionDelta(delta.WorkoutsTouched, delta.SetsTouched, delta.OrphanSetsSkipped, delta.SynthesizedWorkouts).Build())
	}

	return delta, nil
}
