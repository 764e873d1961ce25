package api

import (
	"net/http"
	"time"

	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/service"
)

// MetricsHandler exposes weekly volume aggregates.
type MetricsHandler struct {
	query      *service.QueryService
	aggregator *service.WeeklyAggregator
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(query *service.QueryService, aggregator *service.WeeklyAggregator) *MetricsHandler {
	return &MetricsHandler{query: query, aggregator: aggregator}
}

type weeklyMetricsResponse struct {
	UserID         string  `json:"user_id"`
	WeekStart      string  `json:"week_start"`
	TotalWorkouts  int     `json:"total_workouts"`
	TotalVolume    float64 `json:"total_volume"`
	ExercisesCount int     `json:"exercises_count"`
}

// Weekly handles GET /metrics/weekly?user_id=&week_start=.
func (h *MetricsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id is required"))
		return
	}
	weekStart, err := parseRequiredWeekStart(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics, err := h.query.GetOrCreateWeeklyMetrics(r.Context(), userID, *weekStart)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, weeklyMetricsResponse{
		UserID:         metrics.UserID,
		WeekStart:      metrics.WeekStart.UTC().Format("2006-01-02"),
		TotalWorkouts:  metrics.TotalWorkouts,
		TotalVolume:    metrics.TotalVolume,
		ExercisesCount: metrics.ExercisesCount,
	})
}

type rebuildMessageResponse struct {
	Message string `json:"message"`
}

// RebuildWeekly handles POST /metrics/weekly/rebuild?user_id=.
func (h *MetricsHandler) RebuildWeekly(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id is required"))
		return
	}
	if err := h.aggregator.RebuildForUser(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, rebuildMessageResponse{Message: "weekly metrics rebuilt"})
}

func parseRequiredWeekStart(r *http.Request) (*time.Time, error) {
	weekStart, err := ParseFilterDate(r.URL.Query(), "week_start")
	if err != nil {
		return nil, err
	}
	if weekStart == nil {
		return nil, apperrors.NewBadRequest("week_start is required")
	}
	return weekStart, nil
}
