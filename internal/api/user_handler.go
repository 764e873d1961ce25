package api

import (
	"net/http"

	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/middleware"
	"github.com/sxroads/hypertrophy/internal/service"
)

// UserHandler exposes user lifecycle and identity merge operations.
type UserHandler struct {
	lifecycle *service.UserLifecycle
	merge     *service.IdentityMerge
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(lifecycle *service.UserLifecycle, merge *service.IdentityMerge) *UserHandler {
	return &UserHandler{lifecycle: lifecycle, merge: merge}
}

type anonymousUserResponse struct {
	UserID      string `json:"user_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// CreateAnonymous handles POST /users/anonymous.
func (h *UserHandler) CreateAnonymous(w http.ResponseWriter, r *http.Request) {
	u, err := h.lifecycle.CreateAnonymousUser(r.Context())
	if err != nil {
		writeDomainError(w, apperrors.NewInternal("failed to create anonymous user", err))
		return
	}
	writeData(w, http.StatusCreated, anonymousUserResponse{UserID: u.UserID, IsAnonymous: u.IsAnonymous})
}

type meResponse struct {
	UserID      string  `json:"user_id"`
	Email       *string `json:"email"`
	IsAnonymous bool    `json:"is_anonymous"`
	Gender      *string `json:"gender"`
	Age         *int    `json:"age"`
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeDomainError(w, apperrors.NewUnauthorized("authentication required"))
		return
	}
	u, err := h.lifecycle.GetUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var gender *string
	if u.Gender != nil {
		g := string(*u.Gender)
		gender = &g
	}
	writeData(w, http.StatusOK, meResponse{
		UserID:      u.UserID,
		Email:       u.Email,
		IsAnonymous: u.IsAnonymous,
		Gender:      gender,
		Age:         u.Age,
	})
}

type mergeRequest struct {
	AnonymousUserID string `json:"anonymous_user_id"`
}

type mergeResponse struct {
	Merged               bool   `json:"merged"`
	AnonymousUserID      string `json:"anonymous_user_id"`
	RealUserID           string `json:"real_user_id"`
	EventsReattributed   int64  `json:"events_reattributed"`
	WorkoutsReattributed int64  `json:"workouts_reattributed"`
	MetricsReattributed  int64  `json:"metrics_reattributed"`
	ReportsReattributed  int64  `json:"reports_reattributed"`
}

// Merge handles POST /users/merge.
func (h *UserHandler) Merge(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == "" {
		writeDomainError(w, apperrors.NewUnauthorized("authentication required"))
		return
	}
	var req mergeRequest
	if err := readJSON(r, &req); err != nil || req.AnonymousUserID == "" {
		writeDomainError(w, apperrors.NewBadRequest("anonymous_user_id is required"))
		return
	}

	result, err := h.merge.Merge(r.Context(), req.AnonymousUserID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, mergeResponse{
		Merged:               result.Merged,
		AnonymousUserID:      result.AnonymousUserID,
		RealUserID:           result.RealUserID,
		EventsReattributed:   result.EventsReattributed,
		WorkoutsReattributed: result.WorkoutsReattributed,
		MetricsReattributed:  result.MetricsReattributed,
		ReportsReattributed:  result.ReportsReattributed,
	})
}
