package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/domain/exercise"
	"github.com/sxroads/hypertrophy/internal/domain/set"
	"github.com/sxroads/hypertrophy/internal/domain/weeklymetrics"
	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// QueryService implements the read contracts external adapters drive: the
// annotated workout/set views, the exercise catalog, and weekly metrics
// lookups. Every list method here is written to stay at O(1) queries
// regardless of how many workouts or sets it returns.
type QueryService struct {
	workouts   *repository.WorkoutRepository
	sets       *repository.SetRepository
	exercises  *repository.ExerciseRepository
	metrics    *repository.WeeklyMetricsRepository
	aggregator *WeeklyAggregator
}

// NewQueryService creates a new QueryService.
func NewQueryService(workouts *repository.WorkoutRepository, sets *repository.SetRepository, exercises *repository.ExerciseRepository, metrics *repository.WeeklyMetricsRepository, aggregator *WeeklyAggregator) *QueryService {
	return &QueryService{workouts: workouts, sets: sets, exercises: exercises, metrics: metrics, aggregator: aggregator}
}

// ListWorkouts returns userID's workouts newest-first, each annotated with
// its set count, total volume, and distinct exercise names.
func (q *QueryService) ListWorkouts(ctx context.Context, userID string) ([]*WorkoutSummary, error) {
	workouts, err := q.workouts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	if len(workouts) == 0 {
		return []*WorkoutSummary{}, nil
	}

	workoutIDs := make([]string, len(workouts))
	for i, w := range workouts {
		workoutIDs[i] = w.WorkoutID
	}
	sets, err := q.sets.ListByWorkouts(ctx, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to batch list sets: %w", err)
	}

	byWorkout := map[string][]string{}
	exerciseIDs := map[string]struct{}{}
	volumeByWorkout := map[string]float64{}
	exercisesByWorkout := map[string]map[string]struct{}{}
	for _, s := range sets {
		volumeByWorkout[s.WorkoutID] += s.Volume()
		if exercisesByWorkout[s.WorkoutID] == nil {
			exercisesByWorkout[s.WorkoutID] = map[string]struct{}{}
		}
		exercisesByWorkout[s.WorkoutID][s.ExerciseID] = struct{}{}
		byWorkout[s.WorkoutID] = append(byWorkout[s.WorkoutID], s.ExerciseID)
		exerciseIDs[s.ExerciseID] = struct{}{}
	}

	names, err := q.exerciseNames(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]*WorkoutSummary, len(workouts))
	for i, w := range workouts {
		distinct := exercisesByWorkout[w.WorkoutID]
		exerciseNames := make([]string, 0, len(distinct))
		for id := range distinct {
			if name, ok := names[id]; ok {
				exerciseNames = append(exerciseNames, name)
			}
		}
		summaries[i] = &WorkoutSummary{
			WorkoutID:        w.WorkoutID,
			UserID:           w.UserID,
			StartedAt:        w.StartedAt,
			EndedAt:          w.EndedAt,
			Status:           string(w.Status),
			SetCount:         len(byWorkout[w.WorkoutID]),
			TotalVolume:      volumeByWorkout[w.WorkoutID],
			DistinctExercise: exerciseNames,
		}
	}
	return summaries, nil
}

// GetWorkoutSets returns userID's sets for one workout, authorizing
// ownership first.
func (q *QueryService) GetWorkoutSets(ctx context.Context, userID, workoutID string) ([]*SetView, error) {
	owned, err := q.workouts.OwnedBy(ctx, userID, []string{workoutID})
	if err != nil {
		return nil, fmt.Errorf("failed to authorize workout: %w", err)
	}
	if len(owned) == 0 {
		return nil, apperrors.NewNotFound("workout", workoutID)
	}

	sets, err := q.sets.ListByWorkout(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	return q.toSetViews(ctx, sets)
}

// BatchGetWorkoutSets batch-fetches sets for a list of workout_ids, silently
// dropping any id not owned by userID.
func (q *QueryService) BatchGetWorkoutSets(ctx context.Context, userID string, workoutIDs []string) ([]*SetView, error) {
	owned, err := q.workouts.OwnedBy(ctx, userID, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize workouts: %w", err)
	}
	if len(owned) == 0 {
		return []*SetView{}, nil
	}

	sets, err := q.sets.ListByWorkouts(ctx, owned)
	if err != nil {
		return nil, fmt.Errorf("failed to batch list sets: %w", err)
	}
	return q.toSetViews(ctx, sets)
}

// LastSetsForExercise finds userID's most recently started workout
// containing exerciseID and returns that workout's sets for it.
func (q *QueryService) LastSetsForExercise(ctx context.Context, userID, exerciseID string) ([]*SetView, error) {
	w, err := q.workouts.MostRecentWithExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find most recent workout: %w", err)
	}
	if w == nil {
		return []*SetView{}, nil
	}

	sets, err := q.sets.ListByWorkoutAndExercise(ctx, w.WorkoutID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sets for exercise: %w", err)
	}
	return q.toSetViews(ctx, sets)
}

// ListExercises returns the full fixed catalog.
func (q *QueryService) ListExercises(ctx context.Context) ([]*exercise.Exercise, error) {
	exercises, err := q.exercises.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	return exercises, nil
}

// GetOrCreateWeeklyMetrics returns the already-computed metrics for
// (userID, weekStart), computing them on first access.
func (q *QueryService) GetOrCreateWeeklyMetrics(ctx context.Context, userID string, weekStart time.Time) (*weeklymetrics.WeeklyMetrics, error) {
	weekStart = weeklymetrics.WeekStart(weekStart)

	existing, err := q.metrics.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to look up weekly metrics: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	return q.aggregator.CalculateWeeklyMetrics(ctx, userID, weekStart)
}

func (q *QueryService) exerciseNames(ctx context.Context, ids map[string]struct{}) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	idList := make([]string, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	names, err := q.exercises.NamesByIDs(ctx, idList)
	if err != nil {
		return nil, fmt.Errorf("failed to batch fetch exercise names: %w", err)
	}
	return names, nil
}

func (q *QueryService) toSetViews(ctx context.Context, sets []*set.Set) ([]*SetView, error) {
	ids := map[string]struct{}{}
	for _, s := range sets {
		ids[s.ExerciseID] = struct{}{}
	}
	names, err := q.exerciseNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*SetView, len(sets))
	for i, s := range sets {
		views[i] = &SetView{
			SetID:        s.SetID,
			WorkoutID:    s.WorkoutID,
			ExerciseID:   s.ExerciseID,
			ExerciseName: names[s.ExerciseID],
			Reps:         s.Reps,
			Weight:       s.Weight,
			CompletedAt:  s.CompletedAt,
		}
	}
	return views, nil
}
