// Package db contains hand-written, sqlc-style query accessors over the
// event-sourcing schema. Each method runs one SQL statement and maps rows
// to Params/Row structs; it holds no business logic.
package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, letting callers scope a
// Queries instance to a single transaction or the whole connection pool.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries wraps a DBTX with the event-sourcing schema's prepared statements.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to db (either *sql.DB or a *sql.Tx).
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q bound to tx instead of its current DBTX.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
