package db

import (
	"context"
	"database/sql"
)

const insertUser = `
INSERT INTO users (user_id, email, password_hash, is_anonymous, gender, age, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// CreateUserParams holds the arguments for CreateUser.
type CreateUserParams struct {
	UserID       string
	Email        sql.NullString
	PasswordHash sql.NullString
	IsAnonymous  bool
	Gender       sql.NullString
	Age          sql.NullInt64
	CreatedAt    string
}

// CreateUser inserts a new user row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, insertUser,
		arg.UserID, arg.Email, arg.PasswordHash, arg.IsAnonymous, arg.Gender, arg.Age, arg.CreatedAt,
	)
	return err
}

const selectUserByID = `
SELECT user_id, email, password_hash, is_anonymous, gender, age, created_at
FROM users WHERE user_id = ?
`

// GetUser fetches a user by id. Returns sql.ErrNoRows if absent.
func (q *Queries) GetUser(ctx context.Context, userID string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, selectUserByID, userID).Scan(
		&u.UserID, &u.Email, &u.PasswordHash, &u.IsAnonymous, &u.Gender, &u.Age, &u.CreatedAt,
	)
	return u, err
}

// DeleteUser removes a user row (used only by Identity Merge, once, on the
// anonymous source after re-attribution).
func (q *Queries) DeleteUser(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", userID)
	return err
}

// ErrNoRows re-exports database/sql.ErrNoRows so callers need not import
// database/sql solely to compare against it.
var ErrNoRows = sql.ErrNoRows
