package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/tawk/internal/domain"
)

func seedUser(t *testing.T, repo *memUserRepo, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		Status:      domain.StatusOffline,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func newFriendFixture(t *testing.T) (*FriendService, *memUserRepo, *memFriendRepo, *recordingNotifier) {
	t.Helper()
	userRepo := newMemUserRepo()
	friendRepo := newMemFriendRepo()
	notifier := &recordingNotifier{}
	svc := NewFriendService(friendRepo, userRepo)
	svc.SetNotifier(notifier)
	return svc, userRepo, friendRepo, notifier
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending request and notifies both sides", func(t *testing.T) {
		svc, userRepo, _, notifier := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, req.SenderID)
		assert.Equal(t, bob.ID, req.ReceiverID)

		require.Len(t, notifier.requests, 1)
		assert.Equal(t, req.ID, notifier.requests[0].ID)
	})

	t.Run("rejects self-friending", func(t *testing.T) {
		svc, userRepo, _, _ := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")

		_, err := svc.SendRequest(ctx, alice.ID, alice.ID)
		assert.ErrorIs(t, err, ErrCannotRequestSelf)
	})

	t.Run("rejects unknown receiver", func(t *testing.T) {
		svc, userRepo, _, _ := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")

		_, err := svc.SendRequest(ctx, alice.ID, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("at most one pending request per ordered pair", func(t *testing.T) {
		svc, userRepo, _, _ := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, alice.ID, bob.ID)
		assert.ErrorIs(t, err, ErrRequestAlreadyExists)
	})

	t.Run("rejects when already friends", func(t *testing.T) {
		svc, userRepo, _, _ := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		require.NoError(t, svc.AcceptRequest(ctx, bob.ID, req.ID))

		_, err = svc.SendRequest(ctx, alice.ID, bob.ID)
		assert.ErrorIs(t, err, ErrAlreadyFriends)
	})
}

func TestAcceptRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("makes the friendship symmetric and consumes the request", func(t *testing.T) {
		svc, userRepo, _, notifier := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		require.NoError(t, svc.AcceptRequest(ctx, bob.ID, req.ID))

		aliceFriends, err := svc.ListFriends(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, aliceFriends, 1)
		assert.Equal(t, bob.ID, aliceFriends[0].OtherUserID)

		bobFriends, err := svc.ListFriends(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, bobFriends, 1)
		assert.Equal(t, alice.ID, bobFriends[0].OtherUserID)

		pending, err := svc.ListIncomingRequests(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)

		require.Len(t, notifier.accepted, 1)
		assert.Equal(t, [2]uuid.UUID{alice.ID, bob.ID}, notifier.accepted[0])
	})

	t.Run("consumed id fails with not found and mutates nothing", func(t *testing.T) {
		svc, userRepo, friendRepo, _ := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		require.NoError(t, svc.AcceptRequest(ctx, bob.ID, req.ID))

		before := len(friendRepo.friendships)
		err = svc.AcceptRequest(ctx, bob.ID, req.ID)
		assert.ErrorIs(t, err, ErrRequestNotFound)
		assert.Equal(t, before, len(friendRepo.friendships))
	})

	t.Run("only the receiver can accept", func(t *testing.T) {
		svc, userRepo, _, _ := newFriendFixture(t)
		alice := seedUser(t, userRepo, "alice")
		bob := seedUser(t, userRepo, "bob")

		req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		err = svc.AcceptRequest(ctx, alice.ID, req.ID)
		assert.ErrorIs(t, err, ErrNotRequestReceiver)
	})
}

func TestDeclineRequest(t *testing.T) {
	ctx := context.Background()

	svc, userRepo, _, notifier := newFriendFixture(t)
	alice := seedUser(t, userRepo, "alice")
	bob := seedUser(t, userRepo, "bob")

	req, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeclineRequest(ctx, bob.ID, req.ID))

	// Consumed without creating a friendship.
	friends, err := svc.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	err = svc.DeclineRequest(ctx, bob.ID, req.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	require.Len(t, notifier.declined, 1)
	assert.Equal(t, alice.ID, notifier.declined[0])
}
