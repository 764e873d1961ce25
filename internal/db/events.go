package db

import (
	"context"
	"fmt"
	"strings"
)

const insertEvent = `
INSERT INTO events (event_id, event_type, payload, user_id, device_id, sequence_number, correlation_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertEventParams holds the arguments for InsertEvent.
type InsertEventParams struct {
	EventID        string
	EventType      string
	Payload        string
	UserID         string
	DeviceID       string
	SequenceNumber int64
	CorrelationID  *string
	CreatedAt      string
}

// InsertEvent appends one event row.
func (q *Queries) InsertEvent(ctx context.Context, arg InsertEventParams) error {
	_, err := q.db.ExecContext(ctx, insertEvent,
		arg.EventID, arg.EventType, arg.Payload, arg.UserID, arg.DeviceID,
		arg.SequenceNumber, arg.CorrelationID, arg.CreatedAt,
	)
	return err
}

// ExistingEventIDs returns the subset of ids already present in the events
// table, in a single query (never per-id — see Event Store §4.2).
func (q *Queries) ExistingEventIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("SELECT event_id FROM events WHERE event_id IN (%s)", strings.Join(placeholders, ","))

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var present []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		present = append(present, id)
	}
	return present, rows.Err()
}

const listEventsOrderedBase = `
SELECT event_id, event_type, payload, user_id, device_id, sequence_number, correlation_id, created_at
FROM events
`

// ListEventsOrdered iterates the entire log in (device_id, sequence_number) order.
func (q *Queries) ListEventsOrdered(ctx context.Context) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEventsOrderedBase+" ORDER BY device_id, sequence_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEventRows(rows)
}

// ListEventsOrderedByUser iterates one user's events in (device_id, sequence_number) order.
func (q *Queries) ListEventsOrderedByUser(ctx context.Context, userID string) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEventsOrderedBase+" WHERE user_id = ? ORDER BY device_id, sequence_number", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEventRows(rows)
}

// ListEventsByIDs fetches events by id, ordered by (device_id, sequence_number)
// for handoff to the Projection Updater.
func (q *Queries) ListEventsByIDs(ctx context.Context, ids []string) ([]Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := listEventsOrderedBase + fmt.Sprintf(" WHERE event_id IN (%s) ORDER BY device_id, sequence_number", strings.Join(placeholders, ","))

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEventRows(rows)
}

// CountEventsByUser returns how many events a user owns; used by Identity
// Merge to decide whether a merge is a no-op.
func (q *Queries) CountEventsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

// ReattributeEvents moves every event row owned by fromUserID to toUserID.
func (q *Queries) ReattributeEvents(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, "UPDATE events SET user_id = ? WHERE user_id = ?", toUserID, fromUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEventRows(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.EventID, &e.EventType, &e.Payload, &e.UserID, &e.DeviceID, &e.SequenceNumber, &e.CorrelationID, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
