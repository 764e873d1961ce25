package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle_CreateAnonymousUser_PersistsAndIsRetrievable(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	u, err := h.lifecycle.CreateAnonymousUser(ctx)
	require.NoError(t, err)
	assert.True(t, u.IsAnonymous)
	assert.Nil(t, u.Email)

	fetched, err := h.lifecycle.GetUser(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, fetched.UserID)
}

func TestUserLifecycle_GetUser_NotFound(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	_, err := h.lifecycle.GetUser(ctx, uuid.New().String())
	assert.Error(t, err)
}
