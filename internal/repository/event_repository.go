// Package repository provides database repository implementations.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/db"
	"github.com/sxroads/hypertrophy/internal/domain/syncevent"
)

// EventRepository implements persistence for SyncEvent entities using the
// hand-authored query layer.
type EventRepository struct {
	queries *db.Queries
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(sqlDB *sql.DB) *EventRepository {
	return &EventRepository{queries: db.New(sqlDB)}
}

// WithTx returns a repository scoped to an in-flight transaction.
func (r *EventRepository) WithTx(tx *sql.Tx) *EventRepository {
	return &EventRepository{queries: r.queries.WithTx(tx)}
}

// Exists returns the subset of eventIDs already present in the log, in a
// single query (Event Store §4.2).
func (r *EventRepository) Exists(ctx context.Context, eventIDs []string) (map[string]bool, error) {
	present, err := r.queries.ExistingEventIDs(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to probe existing events: %w", err)
	}
	set := make(map[string]bool, len(present))
	for _, id := range present {
		set[id] = true
	}
	return set, nil
}

// AppendBatch inserts every event in a single transaction-scoped call. The
// caller is expected to have already started the transaction this
// repository was scoped to via WithTx.
func (r *EventRepository) AppendBatch(ctx context.Context, events []*syncevent.SyncEvent) error {
	for _, e := range events {
		if err := r.insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// InsertOne inserts a single event, used by the Ingestion Service's
// per-event fallback path after a batch-level unique-constraint race.
func (r *EventRepository) InsertOne(ctx context.Context, e *syncevent.SyncEvent) error {
	return r.insert(ctx, e)
}

func (r *EventRepository) insert(ctx context.Context, e *syncevent.SyncEvent) error {
	err := r.queries.InsertEvent(ctx, db.InsertEventParams{
		EventID:        e.EventID,
		EventType:      string(e.EventType),
		Payload:        e.Payload,
		UserID:         e.UserID,
		DeviceID:       e.DeviceID,
		SequenceNumber: e.SequenceNumber,
		CorrelationID:  e.CorrelationID,
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// ListByIDs fetches events by id, ordered by (device_id, sequence_number),
// for handoff to the Projection Updater.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []string) ([]*syncevent.SyncEvent, error) {
	rows, err := r.queries.ListEventsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by id: %w", err)
	}
	return toDomainEvents(rows)
}

// ListOrdered iterates the entire log in (device_id, sequence_number) order,
// for the Projection Rebuilder's full replay.
func (r *EventRepository) ListOrdered(ctx context.Context) ([]*syncevent.SyncEvent, error) {
	rows, err := r.queries.ListEventsOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return toDomainEvents(rows)
}

// CountByUser returns how many events a user owns, used by Identity Merge to
// decide whether a merge is a no-op.
func (r *EventRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	count, err := r.queries.CountEventsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// Reattribute moves every event row owned by fromUserID to toUserID.
func (r *EventRepository) Reattribute(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	n, err := r.queries.ReattributeEvents(ctx, fromUserID, toUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to reattribute events: %w", err)
	}
	return n, nil
}

func toDomainEvents(rows []db.Event) ([]*syncevent.SyncEvent, error) {
	events := make([]*syncevent.SyncEvent, len(rows))
	for i, row := range rows {
		createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event created_at: %w", err)
		}
		var correlationID *string
		if row.CorrelationID.Valid {
			v := row.CorrelationID.String
			correlationID = &v
		}
		events[i] = &syncevent.SyncEvent{
			EventID:        row.EventID,
			EventType:      syncevent.EventType(row.EventType),
			Payload:        row.Payload,
			UserID:         row.UserID,
			DeviceID:       row.DeviceID,
			SequenceNumber: row.SequenceNumber,
			CorrelationID:  correlationID,
			CreatedAt:      createdAt,
		}
	}
	return events, nil
}
