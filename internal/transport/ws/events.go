package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/tawk/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeFriendRequest     = "friend_request"
	EventTypeAcceptRequest     = "accept_request"
	EventTypeDeclineRequest    = "decline_request"
	EventTypeGetConversations  = "get_direct_conversations"
	EventTypeStartConversation = "start_conversation"
	EventTypeGetMessages       = "get_messages"
	EventTypeTextMessage       = "text_message"
	EventTypeEnd               = "end"
	EventTypePing              = "ping"
)

// Event types - Server → Client
const (
	EventTypeNewFriendRequest = "new_friend_request"
	EventTypeRequestSent      = "request_sent"
	EventTypeRequestAccepted  = "request_accepted"
	EventTypeRequestDeclined  = "request_declined"
	EventTypeStartChat        = "start_chat"
	EventTypeNewMessage       = "new_message"
	EventTypeConversations    = "conversations"
	EventTypeMessages         = "messages"
	EventTypePong             = "pong"
	EventTypeError            = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type FriendRequestPayload struct {
	From uuid.UUID `json:"from"`
	To   uuid.UUID `json:"to"`
}

type RequestIDPayload struct {
	RequestID uuid.UUID `json:"request_id"`
}

type GetConversationsPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type StartConversationPayload struct {
	From uuid.UUID `json:"from"`
	To   uuid.UUID `json:"to"`
}

type GetMessagesPayload struct {
	ConversationID uuid.UUID `json:"conversation_id"`
}

type TextMessagePayload struct {
	Message        string    `json:"message"`
	ConversationID uuid.UUID `json:"conversation_id"`
	From           uuid.UUID `json:"from"`
	To             uuid.UUID `json:"to"`
	Type           string    `json:"type"`
}

type EndPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// --- Server → Client payloads ---

// NoticePayload carries the human-readable notice the original requests
// workflow sends alongside friend request events.
type NoticePayload struct {
	Message string `json:"message"`
}

type StartChatPayload struct {
	Conversation domain.Conversation `json:"conversation"`
}

type NewMessagePayload struct {
	ConversationID uuid.UUID      `json:"conversation_id"`
	Message        domain.Message `json:"message"`
}

type ConversationsPayload struct {
	Conversations []domain.Conversation `json:"conversations"`
}

type MessagesPayload struct {
	ConversationID uuid.UUID        `json:"conversation_id"`
	Messages       []domain.Message `json:"messages"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
