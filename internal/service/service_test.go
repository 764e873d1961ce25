package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sxroads/hypertrophy/internal/database"
	"github.com/sxroads/hypertrophy/internal/domain/event"
	"github.com/sxroads/hypertrophy/internal/domain/user"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// testHarness wires a temp-file SQLite database, migrated with the project's
// goose migrations, through the full service layer. Every *_test.go in this
// package shares it.
type testHarness struct {
	db  *sql.DB
	bus *event.Bus

	events        *repository.EventRepository
	workouts      *repository.WorkoutRepository
	sets          *repository.SetRepository
	users         *repository.UserRepository
	exercises     *repository.ExerciseRepository
	weeklyMetrics *repository.WeeklyMetricsRepository
	weeklyReports *repository.WeeklyReportRepository

	aggregator *WeeklyAggregator
	updater    *ProjectionUpdater
	ingestion  *IngestionService
	rebuilder  *ProjectionRebuilder
	merge      *IdentityMerge
	query      *QueryService
	reports    *WeeklyReportService
	lifecycle  *UserLifecycle
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	migrationsPath := findMigrationsPath(t)
	db, cleanup, err := database.OpenTemp(migrationsPath)
	if err != nil {
		t.Fatalf("failed to open temp db: %v", err)
	}
	t.Cleanup(cleanup)

	logger := logging.NewNop()
	bus := event.NewBus()

	h := &testHarness{
		db:            db,
		bus:           bus,
		events:        repository.NewEventRepository(db),
		workouts:      repository.NewWorkoutRepository(db),
		sets:          repository.NewSetRepository(db),
		users:         repository.NewUserRepository(db),
		exercises:     repository.NewExerciseRepository(db),
		weeklyMetrics: repository.NewWeeklyMetricsRepository(db),
		weeklyReports: repository.NewWeeklyReportRepository(db),
	}

	h.aggregator = NewWeeklyAggregator(h.workouts, h.sets, h.weeklyMetrics, bus, logger)
	h.updater = NewProjectionUpdater(db, h.workouts, h.sets, h.aggregator, bus, logger)
	h.ingestion = NewIngestionService(db, h.events, h.updater, bus, logger)
	h.rebuilder = NewProjectionRebuilder(db, h.events, h.workouts, h.sets, h.updater, h.aggregator, bus, logger)
	h.merge = NewIdentityMerge(db, h.users, h.events, h.workouts, h.weeklyMetrics, h.weeklyReports, h.aggregator, bus, logger)
	h.query = NewQueryService(h.workouts, h.sets, h.exercises, h.weeklyMetrics, h.aggregator)
	h.reports = NewWeeklyReportService(h.workouts, h.weeklyMetrics, h.weeklyReports, NewTemplateReportGenerator())
	h.lifecycle = NewUserLifecycle(h.users)

	return h
}

func findMigrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller info")
	}
	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	t.Fatal("migrations directory not found")
	return ""
}

// createUser inserts a registered or anonymous user directly via the
// repository, bypassing HTTP, for test fixtures.
func (h *testHarness) createUser(t *testing.T, anonymous bool) *user.User {
	t.Helper()
	var u *user.User
	if anonymous {
		var vr *user.ValidationResult
		u, vr = user.NewAnonymousUser(uuid.New().String())
		if !vr.Valid {
			t.Fatalf("failed to build anonymous test user: %v", vr.Error())
		}
	} else {
		email := fmt.Sprintf("%s@example.com", uuid.New().String())
		hash := "hashed"
		u = &user.User{
			UserID:       uuid.New().String(),
			Email:        &email,
			PasswordHash: &hash,
			IsAnonymous:  false,
			CreatedAt:    time.Now(),
		}
	}
	if err := h.users.Create(context.Background(), u); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func workoutStartedPayload(workoutID string, startedAt time.Time) string {
	return fmt.Sprintf(`{"workout_id":%q,"started_at":%q}`, workoutID, startedAt.Format(time.RFC3339))
}

func workoutEndedPayload(workoutID string, endedAt time.Time) string {
	return fmt.Sprintf(`{"workout_id":%q,"ended_at":%q}`, workoutID, endedAt.Format(time.RFC3339))
}

func setCompletedPayload(workoutID, exerciseID, setID string, reps int, weight float64, completedAt time.Time) string {
	return fmt.Sprintf(`{"workout_id":%q,"exercise_id":%q,"set_id":%q,"reps":%d,"weight":%g,"completed_at":%q}`,
		workoutID, exerciseID, setID, reps, weight, completedAt.Format(time.RFC3339))
}
