package api

import (
	"net/http"

	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/middleware"
	"github.com/sxroads/hypertrophy/internal/service"
)

// SyncHandler exposes the Ingestion Service over HTTP.
type SyncHandler struct {
	ingestion *service.IngestionService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(ingestion *service.IngestionService) *SyncHandler {
	return &SyncHandler{ingestion: ingestion}
}

type syncEventRequest struct {
	EventID        string  `json:"event_id"`
	EventType      string  `json:"event_type"`
	Payload        string  `json:"payload"`
	SequenceNumber int64   `json:"sequence_number"`
	CorrelationID  *string `json:"correlation_id,omitempty"`
}

type syncRequest struct {
	DeviceID string             `json:"device_id"`
	UserID   string             `json:"user_id"`
	Events   []syncEventRequest `json:"events"`
}

type ackCursorResponse struct {
	DeviceID          string `json:"device_id"`
	LastAckedSequence *int64 `json:"last_acked_sequence"`
}

type syncResponse struct {
	AckCursor        ackCursorResponse `json:"ack_cursor"`
	AcceptedCount    int               `json:"accepted_count"`
	RejectedCount    int               `json:"rejected_count"`
	RejectedEventIDs []string          `json:"rejected_event_ids"`
}

// Sync handles POST /sync.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := readJSON(r, &req); err != nil {
		writeDomainError(w, apperrors.NewBadRequest("invalid JSON body"))
		return
	}

	authenticatedUserID := middleware.GetUserID(r)
	if req.UserID != "" && req.UserID != authenticatedUserID && !middleware.IsAdmin(r) {
		writeDomainError(w, apperrors.NewForbidden("user_id does not match the authenticated identity"))
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = authenticatedUserID
	}

	candidates := make([]service.SyncEventCandidate, len(req.Events))
	for i, e := range req.Events {
		candidates[i] = service.SyncEventCandidate{
			EventID:        e.EventID,
			EventType:      e.EventType,
			Payload:        e.Payload,
			SequenceNumber: e.SequenceNumber,
			CorrelationID:  e.CorrelationID,
		}
	}

	result, err := h.ingestion.Sync(r.Context(), req.DeviceID, userID, candidates)
	if err != nil {
		// BatchShapeInvalid carries no result; NoneAccepted does, but both are
		// reported as client errors per the sync response contract.
		writeDomainError(w, err)
		return
	}

	resp := syncResponse{
		AckCursor:        ackCursorResponse{DeviceID: result.AckCursor.DeviceID, LastAckedSequence: result.AckCursor.LastAckedSequence},
		AcceptedCount:    result.AcceptedCount,
		RejectedCount:    result.RejectedCount,
		RejectedEventIDs: result.RejectedEventIDs,
	}
	writeData(w, http.StatusOK, resp)
}
