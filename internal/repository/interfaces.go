package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/tawk/internal/domain"
)

// Store-level errors. Services translate these into their own sentinels;
// repositories surface them so constraint violations stay distinguishable
// from plain query failures.
var (
	ErrDuplicate           = errors.New("duplicate row")
	ErrConversationMissing = errors.New("conversation does not exist")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdatePresence sets the status and, when socketID is non-nil, the
	// last known socket id.
	UpdatePresence(ctx context.Context, id uuid.UUID, status string, socketID *string) error
	// ListDiscoverable returns users that are neither the caller, nor
	// friends of the caller, nor in a pending request with the caller.
	ListDiscoverable(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
}

type FriendRepository interface {
	// CreateRequest returns ErrDuplicate when a pending request for the
	// same (sender, receiver) pair already exists.
	CreateRequest(ctx context.Context, req *domain.FriendRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*domain.FriendRequest, error)
	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error)
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	// CreateFriendship is idempotent: inserting an existing canonical pair
	// is a no-op.
	CreateFriendship(ctx context.Context, f *domain.Friendship) error
	AreFriends(ctx context.Context, userA, userB uuid.UUID) (bool, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error)
}

type ConversationRepository interface {
	// GetOrCreate finds the conversation for the canonical pair (user1,
	// user2), creating it atomically if absent. Concurrent calls for the
	// same pair all observe the same conversation.
	GetOrCreate(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	// AppendMessage is a single atomic insert; the store assigns msg.Seq.
	// Returns ErrConversationMissing when the conversation is absent.
	AppendMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}
