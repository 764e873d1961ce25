// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sxroads/hypertrophy/internal/api"
	"github.com/sxroads/hypertrophy/internal/domain/event"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/middleware"
	"github.com/sxroads/hypertrophy/internal/repository"
	"github.com/sxroads/hypertrophy/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port   int
	DB     *sql.DB
	Logger *logging.Logger
	Bus    *event.Bus
}

// Server represents the HTTP server.
type Server struct {
	config     Config
	httpServer *http.Server
	handler    http.Handler

	events        *repository.EventRepository
	workouts      *repository.WorkoutRepository
	sets          *repository.SetRepository
	users         *repository.UserRepository
	exercises     *repository.ExerciseRepository
	weeklyMetrics *repository.WeeklyMetricsRepository
	weeklyReports *repository.WeeklyReportRepository

	aggregator *service.WeeklyAggregator
	updater    *service.ProjectionUpdater
	ingestion  *service.IngestionService
	rebuilder  *service.ProjectionRebuilder
	merge      *service.IdentityMerge
	query      *service.QueryService
	reports    *service.WeeklyReportService
	lifecycle  *service.UserLifecycle
}

// New creates a new Server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus()
	}

	events := repository.NewEventRepository(cfg.DB)
	workouts := repository.NewWorkoutRepository(cfg.DB)
	sets := repository.NewSetRepository(cfg.DB)
	users := repository.NewUserRepository(cfg.DB)
	exercises := repository.NewExerciseRepository(cfg.DB)
	weeklyMetrics := repository.NewWeeklyMetricsRepository(cfg.DB)
	weeklyReports := repository.NewWeeklyReportRepository(cfg.DB)

	aggregator := service.NewWeeklyAggregator(workouts, sets, weeklyMetrics, bus, logger)
	updater := service.NewProjectionUpdater(cfg.DB, workouts, sets, aggregator, bus, logger)
	ingestion := service.NewIngestionService(cfg.DB, events, updater, bus, logger)
	rebuilder := service.NewProjectionRebuilder(cfg.DB, events, workouts, sets, updater, aggregator, bus, logger)
	merge := service.NewIdentityMerge(cfg.DB, users, events, workouts, weeklyMetrics, weeklyReports, aggregator, bus, logger)
	query := service.NewQueryService(workouts, sets, exercises, weeklyMetrics, aggregator)
	reportGen := service.NewTemplateReportGenerator()
	reports := service.NewWeeklyReportService(workouts, weeklyMetrics, weeklyReports, reportGen)
	lifecycle := service.NewUserLifecycle(users)

	s := &Server{
		config:        cfg,
		events:        events,
		workouts:      workouts,
		sets:          sets,
		users:         users,
		exercises:     exercises,
		weeklyMetrics: weeklyMetrics,
		weeklyReports: weeklyReports,
		aggregator:    aggregator,
		updater:       updater,
		ingestion:     ingestion,
		rebuilder:     rebuilder,
		merge:         merge,
		query:         query,
		reports:       reports,
		lifecycle:     lifecycle,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = mux

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the server's http.Handler, for use in tests that drive
// requests through httptest.Server without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	syncHandler := api.NewSyncHandler(s.ingestion)
	userHandler := api.NewUserHandler(s.lifecycle, s.merge)
	workoutHandler := api.NewWorkoutHandler(s.query)
	metricsHandler := api.NewMetricsHandler(s.query, s.aggregator)
	reportHandler := api.NewReportHandler(s.reports)
	exerciseHandler := api.NewExerciseHandler(s.query)
	projectionHandler := api.NewProjectionHandler(s.rebuilder)

	authCfg := middleware.AuthConfig{
		WriteError: api.WriteError,
	}

	requireAuth := middleware.RequireAuth(authCfg)
	requireAdmin := middleware.RequireAdmin(authCfg)

	withAuth := func(h http.HandlerFunc) http.Handler {
		return requireAuth(http.HandlerFunc(h))
	}
	withAdmin := func(h http.HandlerFunc) http.Handler {
		return middleware.ChainMiddleware(requireAuth, requireAdmin)(http.HandlerFunc(h))
	}

	// Health check (no auth required).
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Device sync is the event-ingestion entry point; devices authenticate
	// as the user whose events they carry.
	mux.Handle("POST /sync", withAuth(syncHandler.Sync))

	// Anonymous user creation precedes authentication, by design: a device
	// calls this before it has any credentials at all.
	mux.HandleFunc("POST /users/anonymous", userHandler.CreateAnonymous)
	mux.Handle("GET /users/me", withAuth(userHandler.Me))
	mux.Handle("POST /users/merge", withAuth(userHandler.Merge))

	// Workout and set projection reads take user_id from the query string;
	// the sets endpoints check workout ownership against that user_id. The
	// handlers do not compare user_id with the authenticated identity.
	mux.Handle("GET /workouts", withAuth(workoutHandler.List))
	mux.Handle("GET /workouts/{id}/sets", withAuth(workoutHandler.Sets))
	mux.Handle("GET /workouts/sets/batch", withAuth(workoutHandler.BatchSets))
	mux.Handle("GET /exercises/{id}/last-sets", withAuth(workoutHandler.LastSetsForExercise))

	mux.Handle("GET /metrics/weekly", withAuth(metricsHandler.Weekly))
	mux.Handle("POST /metrics/weekly/rebuild", withAuth(metricsHandler.RebuildWeekly))

	mux.Handle("GET /reports/weekly", withAuth(reportHandler.Weekly))
	mux.Handle("POST /reports/weekly/regenerate", withAuth(reportHandler.RegenerateWeekly))

	// The exercise catalog is seeded, read-only reference data.
	mux.HandleFunc("GET /exercises", exerciseHandler.List)

	// Full projection rebuild truncates and replays the entire event log;
	// restricted to operators.
	mux.Handle("POST /projections/rebuild", withAdmin(projectionHandler.Rebuild))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server's address after it starts listening.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// FindAvailablePort asks the OS for a free TCP port and returns an error if
// the port it gets is below 1024.
func FindAvailablePort() (int, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, fmt.Errorf("failed to find available port: %w", err)
	}
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	if port < 1024 {
		return 0, fmt.Errorf("got port %d which is a privileged port", port)
	}
	return port, nil
}
