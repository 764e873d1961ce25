package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sxroads/hypertrophy/internal/domain/user"
	apperrors "github.com/sxroads/hypertrophy/internal/errors"
	"github.com/sxroads/hypertrophy/internal/repository"
)

// UserLifecycle implements anonymous-user creation and identity lookup, the
// two user operations that sit outside Identity Merge.
type UserLifecycle struct {
	users *repository.UserRepository
}

// NewUserLifecycle creates a new UserLifecycle.
func NewUserLifecycle(users *repository.UserRepository) *UserLifecycle {
	return &UserLifecycle{users: users}
}

// CreateAnonymousUser inserts a new pre-registration user row and returns it.
func (l *UserLifecycle) CreateAnonymousUser(ctx context.Context) (*user.User, error) {
	u, vr := user.NewAnonymousUser(uuid.New().String())
	if !vr.Valid {
		return nil, vr.Error()
	}
	if err := l.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create anonymous user: %w", err)
	}
	return u, nil
}

// GetUser fetches a user by id for the /users/me identity check.
func (l *UserLifecycle) GetUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, apperrors.NewNotFound("user", userID)
	}
	return u, nil
}
