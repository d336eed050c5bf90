package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/tawk/internal/domain"
	"github.com/vedran77/tawk/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait     = 10 * time.Second
	pingInterval  = 30 * time.Second
	handleTimeout = 10 * time.Second
	sendBufSize   = 256
)

// ChatAPI is the slice of ChatService the dispatcher needs.
type ChatAPI interface {
	GetOrCreateConversation(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	SendMessage(ctx context.Context, input service.SendMessageInput) (*domain.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}

// FriendAPI is the slice of FriendService the dispatcher needs.
type FriendAPI interface {
	SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.FriendRequest, error)
	AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) error
	DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error
}

// PresenceAPI is the slice of PresenceService the connection lifecycle
// needs.
type PresenceAPI interface {
	Connected(ctx context.Context, userID uuid.UUID, socketID string) error
	Disconnected(ctx context.Context, userID uuid.UUID) error
}

// Services bundles the handlers inbound events dispatch to.
type Services struct {
	Chat     ChatAPI
	Friends  FriendAPI
	Presence PresenceAPI
}

// Client represents a single WebSocket connection bound to a user.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   uuid.UUID
	socketID string
	services Services

	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, services Services) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		socketID: uuid.NewString(),
		services: services,
		send:     make(chan []byte, sendBufSize),
		done:     make(chan struct{}),
	}
}

// shutdown releases the connection. Safe to call more than once.
func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close(websocket.StatusNormalClosure, "")
		}
	})
}

// ReadPump reads inbound events and dispatches them until the connection
// drops. On exit it unbinds from the hub and, if this was still the bound
// connection, marks the user offline — a stale pump must not flip a fresh
// reconnect to offline.
func (c *Client) ReadPump() {
	defer func() {
		if c.hub.Unbind(c) {
			ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
			if err := c.services.Presence.Disconnected(ctx, c.userID); err != nil {
				log.Printf("ws: %v", err)
			}
			cancel()
		}
		c.shutdown()
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent demultiplexes one inbound event. Handler failures are
// logged and reported on the connection as an error event; the connection
// stays usable for subsequent events. The bound identity is authoritative
// for every "from"/"user_id" field a payload carries.
func (c *Client) handleEvent(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	switch event.Type {
	case EventTypeFriendRequest:
		var p FriendRequestPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.To == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid friend_request payload")
			return
		}
		if _, err := c.services.Friends.SendRequest(ctx, c.userID, p.To); err != nil {
			c.serviceError(event.Type, err)
		}

	case EventTypeAcceptRequest:
		var p RequestIDPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.RequestID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid accept_request payload")
			return
		}
		if err := c.services.Friends.AcceptRequest(ctx, c.userID, p.RequestID); err != nil {
			c.serviceError(event.Type, err)
		}

	case EventTypeDeclineRequest:
		var p RequestIDPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.RequestID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid decline_request payload")
			return
		}
		if err := c.services.Friends.DeclineRequest(ctx, c.userID, p.RequestID); err != nil {
			c.serviceError(event.Type, err)
		}

	case EventTypeGetConversations:
		convs, err := c.services.Chat.ListConversations(ctx, c.userID)
		if err != nil {
			c.serviceError(event.Type, err)
			return
		}
		c.reply(EventTypeConversations, ConversationsPayload{Conversations: convs})

	case EventTypeStartConversation:
		var p StartConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.To == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid start_conversation payload")
			return
		}
		conv, err := c.services.Chat.GetOrCreateConversation(ctx, c.userID, p.To)
		if err != nil {
			c.serviceError(event.Type, err)
			return
		}
		// start_chat goes to the initiating connection only.
		c.reply(EventTypeStartChat, StartChatPayload{Conversation: *conv})

	case EventTypeGetMessages:
		var p GetMessagesPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ConversationID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid get_messages payload")
			return
		}
		messages, err := c.services.Chat.ListMessages(ctx, p.ConversationID)
		if err != nil {
			c.serviceError(event.Type, err)
			return
		}
		c.reply(EventTypeMessages, MessagesPayload{ConversationID: p.ConversationID, Messages: messages})

	case EventTypeTextMessage:
		var p TextMessagePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ConversationID == uuid.Nil || p.To == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid text_message payload")
			return
		}
		// Delivery to both sides happens through the notifier once the
		// message is persisted.
		_, err := c.services.Chat.SendMessage(ctx, service.SendMessageInput{
			ConversationID: p.ConversationID,
			From:           c.userID,
			To:             p.To,
			Type:           p.Type,
			Text:           p.Message,
		})
		if err != nil {
			c.serviceError(event.Type, err)
		}

	case EventTypeEnd:
		c.shutdown()

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// reply queues a one-shot response event for this connection only.
func (c *Client) reply(eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) serviceError(eventType string, err error) {
	log.Printf("ws: %s from %s failed: %v", eventType, c.userID, err)
	c.sendError(errorCode(err), err.Error())
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return "NOT_FOUND"
	case errors.Is(err, service.ErrCannotRequestSelf),
		errors.Is(err, service.ErrCannotChatSelf),
		errors.Is(err, service.ErrRequestAlreadyExists),
		errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrNotRequestReceiver),
		errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrInvalidMessageType),
		errors.Is(err, service.ErrEmptyMessage):
		return "INVALID_ARGUMENT"
	default:
		return "STORE_UNAVAILABLE"
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	c.reply(EventTypeError, ErrorPayload{Code: code, Message: message})
}
