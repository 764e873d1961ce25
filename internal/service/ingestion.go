package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sxroads/hypertrophy/internal/domain/event"
	"github.com/sxroads/hypertrophy/internal/domain/payload"
	"github.com/sxroads/hypertrophy/internal/domain/syncevent"
	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/logging"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// IngestionService implements the batch-shape validation, idempotent append,
// and projection handoff described for event ingestion.
type IngestionService struct {
	sqlDB    *sql.DB
	events   *repository.EventRepository
	updater  *ProjectionUpdater
	bus      *event.Bus
	logger   *logging.Logger
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(sqlDB *sql.DB, events *repository.EventRepository, updater *ProjectionUpdater, bus *event.Bus, logger *logging.Logger) *IngestionService {
	return &IngestionService{sqlDB: sqlDB, events: events, updater: updater, bus: bus, logger: logger}
}

// Sync classifies and persists a device's batch of candidate events, then
// hands the newly persisted ones to the Projection Updater.
func (s *IngestionService) Sync(ctx context.Context, deviceID, userID string, candidates []SyncEventCandidate) (*SyncResult, error) {
	if reason := validateBatchShape(candidates); reason != "" {
		return nil, apperrors.NewBatchShapeInvalid(reason)
	}

	eventIDs := make([]string, len(candidates))
	for i, c := range candidates {
		eventIDs[i] = c.EventID
	}
	present, err := s.events.Exists(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to probe existing events: %w", err)
	}

	var (
		staged           []*syncevent.SyncEvent
		rejectedEventIDs []string
		acceptedCount    int
		lastAcked        *int64
	)
	markAccepted := func(seq int64) {
		acceptedCount++
		if lastAcked == nil || seq > *lastAcked {
			v := seq
			lastAcked = &v
		}
	}

	for _, c := range candidates {
		if present[c.EventID] {
			markAccepted(c.SequenceNumber)
			continue
		}
		if _, err := payload.Validate(syncevent.EventType(c.EventType), c.Payload); err != nil {
			rejectedEventIDs = append(rejectedEventIDs, c.EventID)
			continue
		}
		se, vr := syncevent.NewSyncEvent(syncevent.NewSyncEventInput{
			EventID:        c.EventID,
			EventType:      syncevent.EventType(c.EventType),
			Payload:        c.Payload,
			UserID:         userID,
			DeviceID:       deviceID,
			SequenceNumber: c.SequenceNumber,
			CorrelationID:  c.CorrelationID,
		})
		if !vr.Valid {
			rejectedEventIDs = append(rejectedEventIDs, c.EventID)
			continue
		}
		staged = append(staged, se)
	}

	inserted, insertRejected, err := s.insertStaged(ctx, staged)
	if err != nil {
		return nil, fmt.Errorf("failed to insert staged events: %w", err)
	}
	rejectedEventIDs = append(rejectedEventIDs, insertRejected...)
	for _, se := range inserted {
		markAccepted(se.SequenceNumber)
	}

	if len(inserted) > 0 {
		ids := make([]string, len(inserted))
		for i, se := range inserted {
			ids[i] = se.EventID
		}
		toProject, err := s.events.ListByIDs(ctx, ids)
		if err != nil {
			s.logger.Errorw("failed to load inserted events for projection handoff", "error", err, "user_id", userID)
		} else if _, err := s.updater.Apply(ctx, userID, toProject); err != nil {
			s.logger.Errorw("projection update failed after sync, event log remains durable", "error", err, "user_id", userID)
		}
	}

	result := &SyncResult{
		AckCursor:        AckCursor{DeviceID: deviceID, LastAckedSequence: lastAcked},
		AcceptedCount:    acceptedCount,
		RejectedCount:    len(rejectedEventIDs),
		RejectedEventIDs: rejectedEventIDs,
	}

	if s.bus != nil {
		var seq int64
		if lastAcked != nil {
			seq = *lastAcked
		}
		s.bus.PublishAsync(ctx, event.NewEventBuilder(event.EventSyncAccepted, userID, deviceID).
			WithSyncResult(acceptedCount, result.RejectedCount, seq).Build())
	}

	if acceptedCount == 0 && result.RejectedCount > 0 {
		return result, apperrors.NewNoneAccepted(rejectedEventIDs)
	}
	return result, nil
}

// insertStaged persists staged in a single transaction; on a unique-constraint
// race it falls back to per-event insertion, treating the collision as
// accepted-duplicate rather than rejected.
func (s *IngestionService) insertStaged(ctx context.Context, staged []*syncevent.SyncEvent) (inserted []*syncevent.SyncEvent, rejected []string, err error) {
	if len(staged) == 0 {
		return nil, nil, nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	txEvents := s.events.WithTx(tx)
	if err := txEvents.AppendBatch(ctx, staged); err != nil {
		_ = tx.Rollback()
		return s.insertPerEvent(ctx, staged)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit batch insert: %w", err)
	}
	return staged, nil, nil
}

// insertPerEvent is the §4.3 step-4 fallback: each event gets its own
// transaction so a unique-constraint collision on one does not abort the
// others.
func (s *IngestionService) insertPerEvent(ctx context.Context, staged []*syncevent.SyncEvent) (inserted []*syncevent.SyncEvent, rejected []string, err error) {
	for _, se := range staged {
		tx, txErr := s.sqlDB.BeginTx(ctx, nil)
		if txErr != nil {
			return nil, nil, fmt.Errorf("failed to begin per-event transaction: %w", txErr)
		}
		insertErr := s.events.WithTx(tx).InsertOne(ctx, se)
		if insertErr == nil {
			if commitErr := tx.Commit(); commitErr != nil {
				return nil, nil, fmt.Errorf("failed to commit per-event insert: %w", commitErr)
			}
			inserted = append(inserted, se)
			continue
		}
		_ = tx.Rollback()
		if isUniqueConstraintViolation(insertErr) {
			inserted = append(inserted, se)
			continue
		}
		s.logger.Warnw("event rejected on per-event insert fallback", "event_id", se.EventID, "error", insertErr)
		rejected = append(rejected, se.EventID)
	}
	return inserted, rejected, nil
}

// validateBatchShape returns a non-empty reason if candidates fails the
// whole-batch-reject rules, or "" if the batch is well-formed.
func validateBatchShape(candidates []SyncEventCandidate) string {
	if len(candidates) == 0 {
		return "batch is empty"
	}
	var lastSeq int64
	for i, c := range candidates {
		if c.EventID == "" {
			return "event_id is required for every event"
		}
		if i > 0 && c.SequenceNumber <= lastSeq {
			return "sequence_numbers must be strictly increasing within a batch"
		}
		lastSeq = c.SequenceNumber
	}
	return ""
}
