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
	ErrCannotRequestSelf    = errors.New("cannot send a friend request to yourself")
	ErrRequestAlreadyExists = errors.New("a pending request already exists")
	ErrAlreadyFriends       = errors.New("you are already friends")
	ErrRequestNotFound      = errors.New("friend request not found")
	ErrNotRequestReceiver   = errors.New("only the request receiver can perform this action")
)

type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *FriendService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SendRequest creates a pending friend request and notifies both sides.
// The store's unique pair index keeps this to one pending request per
// (sender, receiver) even under concurrent sends.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrCannotRequestSelf
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	already, err := s.friendRepo.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyFriends
	}

	req := &domain.FriendRequest{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now(),
	}

	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRequestAlreadyExists
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyFriendRequest(req)
	}

	return req, nil
}

// AcceptRequest consumes a pending request: the friendship becomes
// symmetric in one insert and the request row is deleted. Accepting an
// already-consumed id fails with ErrRequestNotFound and changes nothing.
func (s *FriendService) AcceptRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.ReceiverID != userID {
		return ErrNotRequestReceiver
	}

	sender, err := s.userRepo.GetByID(ctx, req.SenderID)
	if err != nil {
		return err
	}
	receiver, err := s.userRepo.GetByID(ctx, req.ReceiverID)
	if err != nil {
		return err
	}
	if sender == nil || receiver == nil {
		return ErrUserNotFound
	}

	u1, u2 := domain.CanonicalPair(req.SenderID, req.ReceiverID)
	friendship := &domain.Friendship{
		ID:        uuid.New(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: time.Now(),
	}
	if err := s.friendRepo.CreateFriendship(ctx, friendship); err != nil {
		return fmt.Errorf("creating friendship: %w", err)
	}

	if err := s.friendRepo.DeleteRequest(ctx, requestID); err != nil {
		return fmt.Errorf("deleting friend request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyRequestAccepted(req.SenderID, req.ReceiverID)
	}

	return nil
}

// DeclineRequest consumes a pending request without creating a friendship.
func (s *FriendService) DeclineRequest(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.ReceiverID != userID {
		return ErrNotRequestReceiver
	}

	if err := s.friendRepo.DeleteRequest(ctx, requestID); err != nil {
		return fmt.Errorf("deleting friend request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyRequestDeclined(req.SenderID)
	}

	return nil
}

// ListFriends returns all friends of a user.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	friends, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []domain.Friendship{}
	}
	return friends, nil
}

// ListIncomingRequests returns pending requests received by the user.
func (s *FriendService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	reqs, err := s.friendRepo.ListIncomingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.FriendRequest{}
	}
	return reqs, nil
}

// ListDiscoverable returns users the caller could send a request to.
func (s *FriendService) ListDiscoverable(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	users, err := s.userRepo.ListDiscoverable(ctx, userID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}
