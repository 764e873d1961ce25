package api

import (
	"net/http"

	"github.com/sxroads/hypertrophy/internal/service"
)

// ExerciseHandler exposes the read-only seeded exercise catalog.
type ExerciseHandler struct {
	query *service.QueryService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(query *service.QueryService) *ExerciseHandler {
	return &ExerciseHandler{query: query}
}

type exerciseResponse struct {
	ExerciseID     string `json:"exercise_id"`
	Name           string `json:"name"`
	MuscleCategory string `json:"muscle_category"`
}

// List handles GET /exercises.
func (h *ExerciseHandler) List(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.query.ListExercises(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]exerciseResponse, len(exercises))
	for i, e := range exercises {
		resp[i] = exerciseResponse{ExerciseID: e.ExerciseID, Name: e.Name, MuscleCategory: e.MuscleCategory}
	}
	writeData(w, http.StatusOK, resp)
}
