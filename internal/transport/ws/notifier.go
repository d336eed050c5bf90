package ws

import (
	"log"

	"github.com/google/uuid"
	"github.com/vedran77/tawk/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub. Every
// push is best-effort: a drop means the recipient is offline and is an
// observable outcome here, never a failure for the sender.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeNewMessage, NewMessagePayload{
		ConversationID: msg.ConversationID,
		Message:        *msg,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	// Each side is delivered independently; one being offline never
	// blocks the other.
	n.push(EventTypeNewMessage, msg.To, evt)
	n.push(EventTypeNewMessage, msg.From, evt)
}

func (n *HubNotifier) NotifyFriendRequest(req *domain.FriendRequest) {
	n.notice(EventTypeNewFriendRequest, req.ReceiverID, "New friend request received")
	n.notice(EventTypeRequestSent, req.SenderID, "Request sent successfully")
}

func (n *HubNotifier) NotifyRequestAccepted(senderID, receiverID uuid.UUID) {
	n.notice(EventTypeRequestAccepted, senderID, "Friend request accepted")
	n.notice(EventTypeRequestAccepted, receiverID, "Friend request accepted")
}

func (n *HubNotifier) NotifyRequestDeclined(senderID uuid.UUID) {
	n.notice(EventTypeRequestDeclined, senderID, "Friend request declined")
}

func (n *HubNotifier) notice(eventType string, userID uuid.UUID, message string) {
	evt, err := NewEvent(eventType, NoticePayload{Message: message})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.push(eventType, userID, evt)
}

func (n *HubNotifier) push(eventType string, userID uuid.UUID, evt *Event) {
	if !n.hub.SendToUser(userID, evt) {
		log.Printf("ws notifier: %s to %s dropped (offline)", eventType, userID)
	}
}
