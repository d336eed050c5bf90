package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message types carried over the wire. File messages are accepted and
// persisted but their payload handling is a stub.
const (
	MessageTypeText = "text"
	MessageTypeLink = "link"
	MessageTypeFile = "file"
)

// Conversation is a one-to-one conversation. Exactly one exists per pair
// of users, with User1ID < User2ID (canonical order).
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields for frontend
	OtherUserID          uuid.UUID `json:"other_user_id"`
	OtherUserUsername    string    `json:"other_username"`
	OtherUserDisplayName string    `json:"other_display_name"`
	OtherUserStatus      string    `json:"other_status"`
}

// Message is immutable once appended. Seq is assigned by the store and
// defines delivery order within the conversation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	From           uuid.UUID `json:"from"`
	To             uuid.UUID `json:"to"`
	Type           string    `json:"type"`
	Text           string    `json:"text"`
	Seq            int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsParticipant reports whether the user is one of the two participants.
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the peer of the given participant.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// CanonicalPair orders two user ids so that the smaller one comes first,
// matching how conversation and friendship rows are stored.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
