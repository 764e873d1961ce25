package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sxroads/hypertrophy/internal/db"
	"github.com/sxroads/hypertrophy/internal/domain/user"
)

// UserRepository implements persistence for User entities.
type UserRepository struct {
	queries *db.Queries
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(sqlDB *sql.DB) *UserRepository {
	return &UserRepository{queries: db.New(sqlDB)}
}

// WithTx returns a repository scoped to an in-flight transaction.
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{queries: r.queries.WithTx(tx)}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.queries.CreateUser(ctx, db.CreateUserParams{
		UserID:       u.UserID,
		Email:        toNullStringPtr(u.Email),
		PasswordHash: toNullStringPtr(u.PasswordHash),
		IsAnonymous:  u.IsAnonymous,
		Gender:       toNullGender(u.Gender),
		Age:          toNullIntPtr(u.Age),
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id. Returns nil, nil if absent.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*user.User, error) {
	row, err := r.queries.GetUser(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(row)
}

// Delete removes a user row, used only by Identity Merge on the anonymous
// source after re-attribution.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	if err := r.queries.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func toNullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullIntPtr(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func toNullGender(g *user.Gender) sql.NullString {
	if g == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*g), Valid: true}
}

func toDomainUser(row db.User) (*user.User, error) {
	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user created_at: %w", err)
	}
	u := &user.User{
		UserID:      row.UserID,
		IsAnonymous: row.IsAnonymous,
		CreatedAt:   createdAt,
	}
	if row.Email.Valid {
		v := row.Email.String
		u.Email = &v
	}
	if row.PasswordHash.Valid {
		v := row.PasswordHash.String
		u.PasswordHash = &v
	}
	if row.Gender.Valid {
		g := user.Gender(row.Gender.String)
		u.Gender = &g
	}
	if row.Age.Valid {
		v := int(row.Age.Int64)
		u.Age = &v
	}
	return u, nil
}
