package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return NewClient(hub, nil, userID, Services{})
}

func TestHubBindLookup(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	assert.Nil(t, hub.Lookup(userID))

	client := newTestClient(hub, userID)
	hub.Bind(client)
	assert.Same(t, client, hub.Lookup(userID))
}

func TestHubRebindReplacesOldConnection(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newTestClient(hub, userID)
	hub.Bind(first)

	second := newTestClient(hub, userID)
	hub.Bind(second)

	// Last connect wins; the replaced connection is shut down.
	assert.Same(t, second, hub.Lookup(userID))
	select {
	case <-first.done:
	default:
		t.Fatal("replaced connection was not shut down")
	}
}

func TestHubUnbindIgnoresStaleConnection(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	first := newTestClient(hub, userID)
	hub.Bind(first)

	second := newTestClient(hub, userID)
	hub.Bind(second)

	// The old connection's disconnect must not clobber the reconnect.
	assert.False(t, hub.Unbind(first))
	assert.Same(t, second, hub.Lookup(userID))

	assert.True(t, hub.Unbind(second))
	assert.Nil(t, hub.Lookup(userID))

	// Unbind is idempotent.
	assert.False(t, hub.Unbind(second))
}

func TestHubSendToUser(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	evt, err := NewEvent(EventTypeRequestSent, NoticePayload{Message: "hi"})
	require.NoError(t, err)

	// Offline: dropped, not an error.
	assert.False(t, hub.SendToUser(userID, evt))

	client := newTestClient(hub, userID)
	hub.Bind(client)

	assert.True(t, hub.SendToUser(userID, evt))
	select {
	case data := <-client.send:
		assert.Contains(t, string(data), EventTypeRequestSent)
	default:
		t.Fatal("no event queued")
	}
}
