package api

import (
	"net/http"
	"strings"

	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/service"
)

// WorkoutHandler exposes the read side of the projection: workouts, sets,
// and exercise history.
type WorkoutHandler struct {
	query *service.QueryService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(query *service.QueryService) *WorkoutHandler {
	return &WorkoutHandler{query: query}
}

type workoutSummaryResponse struct {
	WorkoutID        string   `json:"workout_id"`
	UserID           string   `json:"user_id"`
	StartedAt        string   `json:"started_at"`
	EndedAt          *string  `json:"ended_at"`
	Status           string   `json:"status"`
	SetCount         int      `json:"set_count"`
	TotalVolume      float64  `json:"total_volume"`
	DistinctExercise []string `json:"distinct_exercises"`
}

func toWorkoutSummaryResponse(w *service.WorkoutSummary) workoutSummaryResponse {
	var endedAt *string
	if w.EndedAt != nil {
		s := w.EndedAt.UTC().Format(timeFormat)
		endedAt = &s
	}
	return workoutSummaryResponse{
		WorkoutID:        w.WorkoutID,
		UserID:           w.UserID,
		StartedAt:        w.StartedAt.UTC().Format(timeFormat),
		EndedAt:          endedAt,
		Status:           w.Status,
		SetCount:         w.SetCount,
		TotalVolume:      w.TotalVolume,
		DistinctExercise: w.DistinctExercise,
	}
}

type setViewResponse struct {
	SetID        string   `json:"set_id"`
	WorkoutID    string   `json:"workout_id"`
	ExerciseID   string   `json:"exercise_id"`
	ExerciseName string   `json:"exercise_name"`
	Reps         *int     `json:"reps"`
	Weight       *float64 `json:"weight"`
	CompletedAt  string   `json:"completed_at"`
}

func toSetViewResponse(s *service.SetView) setViewResponse {
	return setViewResponse{
		SetID:        s.SetID,
		WorkoutID:    s.WorkoutID,
		ExerciseID:   s.ExerciseID,
		ExerciseName: s.ExerciseName,
		Reps:         s.Reps,
		Weight:       s.Weight,
		CompletedAt:  s.CompletedAt.UTC().Format(timeFormat),
	}
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

// List handles GET /workouts?user_id=.
func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id is required"))
		return
	}
	workouts, err := h.query.ListWorkouts(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]workoutSummaryResponse, len(workouts))
	for i, wk := range workouts {
		resp[i] = toWorkoutSummaryResponse(wk)
	}
	writeData(w, http.StatusOK, resp)
}

// Sets handles GET /workouts/{id}/sets?user_id=.
func (h *WorkoutHandler) Sets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	workoutID := r.PathValue("id")
	if userID == "" || workoutID == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id and workout id are required"))
		return
	}
	sets, err := h.query.GetWorkoutSets(r.Context(), userID, workoutID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]setViewResponse, len(sets))
	for i, s := range sets {
		resp[i] = toSetViewResponse(s)
	}
	writeData(w, http.StatusOK, resp)
}

// BatchSets handles GET /workouts/sets/batch?workout_ids=&user_id=.
func (h *WorkoutHandler) BatchSets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	rawIDs := r.URL.Query().Get("workout_ids")
	if userID == "" || rawIDs == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id and workout_ids are required"))
		return
	}
	workoutIDs := strings.Split(rawIDs, ",")
	sets, err := h.query.BatchGetWorkoutSets(r.Context(), userID, workoutIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]setViewResponse, len(sets))
	for i, s := range sets {
		resp[i] = toSetViewResponse(s)
	}
	writeData(w, http.StatusOK, resp)
}

// LastSetsForExercise handles GET /exercises/{id}/last-sets?user_id=.
func (h *WorkoutHandler) LastSetsForExercise(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	exerciseID := r.PathValue("id")
	if userID == "" || exerciseID == "" {
		writeDomainError(w, apperrors.NewBadRequest("user_id and exercise id are required"))
		return
	}
	sets, err := h.query.LastSetsForExercise(r.Context(), userID, exerciseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]setViewResponse, len(sets))
	for i, s := range sets {
		resp[i] = toSetViewResponse(s)
	}
	writeData(w, http.StatusOK, resp)
}
