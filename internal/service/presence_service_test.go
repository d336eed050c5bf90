package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/tawk/internal/domain"
)

func TestPresenceLifecycle(t *testing.T) {
	ctx := context.Background()
	userRepo := newMemUserRepo()
	svc := NewPresenceService(userRepo)

	alice := seedUser(t, userRepo, "alice")

	require.NoError(t, svc.Connected(ctx, alice.ID, "sock-1"))
	got, err := userRepo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnline, got.Status)
	require.NotNil(t, got.SocketID)
	assert.Equal(t, "sock-1", *got.SocketID)

	require.NoError(t, svc.Disconnected(ctx, alice.ID))
	got, err = userRepo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOffline, got.Status)
	// Last known socket id survives the offline transition.
	require.NotNil(t, got.SocketID)
	assert.Equal(t, "sock-1", *got.SocketID)
}
