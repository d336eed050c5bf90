package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/tawk/internal/domain"
	"github.com/vedran77/tawk/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrCannotChatSelf       = errors.New("cannot start a conversation with yourself")
	ErrInvalidMessageType   = errors.New("invalid message type")
	ErrEmptyMessage         = errors.New("message text is required")
	ErrUserNotFound         = errors.New("user not found")
)

// Notifier pushes real-time events to connected clients. Every push is
// best-effort: an offline recipient is skipped, never an error.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyFriendRequest(req *domain.FriendRequest)
	NotifyRequestAccepted(senderID, receiverID uuid.UUID)
	NotifyRequestDeclined(senderID uuid.UUID)
}

type ChatService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
	notifier Notifier
}

func NewChatService(convRepo repository.ConversationRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		convRepo: convRepo,
		userRepo: userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// GetOrCreateConversation finds or creates the conversation between two
// users. Repeated and concurrent calls for the same pair, in either
// argument order, return the same conversation.
func (s *ChatService) GetOrCreateConversation(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.Conversation, error) {
	if userID == otherUserID {
		return nil, ErrCannotChatSelf
	}

	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	u1, u2 := domain.CanonicalPair(userID, otherUserID)
	conv, err := s.convRepo.GetOrCreate(ctx, u1, u2)
	if err != nil {
		return nil, fmt.Errorf("get-or-create conversation: %w", err)
	}

	conv.OtherUserID = otherUserID
	conv.OtherUserUsername = other.Username
	conv.OtherUserDisplayName = other.DisplayName
	conv.OtherUserStatus = other.Status
	return conv, nil
}

// ListConversations returns all conversations for a user, peer profile
// included.
func (s *ChatService) ListConversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}

type SendMessageInput struct {
	ConversationID uuid.UUID
	From           uuid.UUID
	To             uuid.UUID
	Type           string
	Text           string
}

// SendMessage persists a message with a server-assigned timestamp and then
// pushes it to both participants. Persistence is the success signal;
// delivery to an offline side is dropped silently.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error) {
	if input.Type == "" {
		input.Type = domain.MessageTypeText
	}
	switch input.Type {
	case domain.MessageTypeText, domain.MessageTypeLink, domain.MessageTypeFile:
	default:
		return nil, ErrInvalidMessageType
	}
	if input.Text == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.convRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	if !conv.IsParticipant(input.From) || !conv.IsParticipant(input.To) {
		return nil, ErrNotParticipant
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: input.ConversationID,
		From:           input.From,
		To:             input.To,
		Type:           input.Type,
		Text:           input.Text,
		CreatedAt:      time.Now(),
	}

	if err := s.convRepo.AppendMessage(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrConversationMissing) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("appending message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}

	return msg, nil
}

// ListMessages returns the full ordered history of a conversation.
func (s *ChatService) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	messages, err := s.convRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}
