package api

import (
	"net/http"

	"github.com/sxroads/hypertrophy/internal/service"
)

// ProjectionHandler exposes administrative projection maintenance.
type ProjectionHandler struct {
	rebuilder *service.ProjectionRebuilder
}

// NewProjectionHandler creates a new ProjectionHandler.
func NewProjectionHandler(rebuilder *service.ProjectionRebuilder) *ProjectionHandler {
	return &ProjectionHandler{rebuilder: rebuilder}
}

// Rebuild handles POST /projections/rebuild.
func (h *ProjectionHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	result, err := h.rebuilder.Rebuild(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"message":          "projection rebuilt",
		"events_replayed":  result.EventsReplayed,
		"workouts_created": result.WorkoutsCreated,
		"sets_created":     result.SetsCreated,
		"orphan_sets":      result.OrphanSets,
		"users_rebuilt":    result.UsersRebuilt,
	})
}
