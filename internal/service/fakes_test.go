package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vedran77/tawk/internal/domain"
	"github.com/vedran77/tawk/internal/repository"
)

// In-memory repositories mirroring the store-level guarantees the
// postgres implementations get from their constraints: unique pair
// indexes and atomic appends.

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UpdatePresence(_ context.Context, id uuid.UUID, status string, socketID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	u.Status = status
	if socketID != nil {
		sid := *socketID
		u.SocketID = &sid
	}
	return nil
}

func (r *memUserRepo) ListDiscoverable(_ context.Context, userID uuid.UUID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []domain.User
	for _, u := range r.users {
		if u.ID != userID {
			users = append(users, *u)
		}
	}
	return users, nil
}

type memFriendRepo struct {
	mu          sync.Mutex
	requests    map[uuid.UUID]*domain.FriendRequest
	friendships map[[2]uuid.UUID]*domain.Friendship
}

func newMemFriendRepo() *memFriendRepo {
	return &memFriendRepo{
		requests:    make(map[uuid.UUID]*domain.FriendRequest),
		friendships: make(map[[2]uuid.UUID]*domain.Friendship),
	}
}

func (r *memFriendRepo) CreateRequest(_ context.Context, req *domain.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.SenderID == req.SenderID && existing.ReceiverID == req.ReceiverID {
			return repository.ErrDuplicate
		}
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memFriendRepo) GetRequestByID(_ context.Context, id uuid.UUID) (*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *memFriendRepo) ListIncomingRequests(_ context.Context, userID uuid.UUID) ([]domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reqs []domain.FriendRequest
	for _, req := range r.requests {
		if req.ReceiverID == userID {
			reqs = append(reqs, *req)
		}
	}
	return reqs, nil
}

func (r *memFriendRepo) DeleteRequest(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

func (r *memFriendRepo) CreateFriendship(_ context.Context, f *domain.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]uuid.UUID{f.User1ID, f.User2ID}
	if _, ok := r.friendships[key]; ok {
		return nil
	}
	cp := *f
	r.friendships[key] = &cp
	return nil
}

func (r *memFriendRepo) AreFriends(_ context.Context, userA, userB uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u1, u2 := domain.CanonicalPair(userA, userB)
	_, ok := r.friendships[[2]uuid.UUID{u1, u2}]
	return ok, nil
}

func (r *memFriendRepo) ListFriends(_ context.Context, userID uuid.UUID) ([]domain.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var friends []domain.Friendship
	for _, f := range r.friendships {
		if f.User1ID == userID || f.User2ID == userID {
			cp := *f
			cp.OtherUserID = cp.User1ID
			if cp.User1ID == userID {
				cp.OtherUserID = cp.User2ID
			}
			friends = append(friends, cp)
		}
	}
	return friends, nil
}

type memConversationRepo struct {
	mu       sync.Mutex
	byPair   map[[2]uuid.UUID]*domain.Conversation
	byID     map[uuid.UUID]*domain.Conversation
	messages map[uuid.UUID][]domain.Message
	nextSeq  int64
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		byPair:   make(map[[2]uuid.UUID]*domain.Conversation),
		byID:     make(map[uuid.UUID]*domain.Conversation),
		messages: make(map[uuid.UUID][]domain.Message),
	}
}

func (r *memConversationRepo) GetOrCreate(_ context.Context, user1ID, user2ID uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]uuid.UUID{user1ID, user2ID}
	if conv, ok := r.byPair[key]; ok {
		cp := *conv
		return &cp, nil
	}
	conv := &domain.Conversation{
		ID:      uuid.New(),
		User1ID: user1ID,
		User2ID: user2ID,
	}
	r.byPair[key] = conv
	r.byID[conv.ID] = conv
	cp := *conv
	return &cp, nil
}

func (r *memConversationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *conv
	return &cp, nil
}

func (r *memConversationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var convs []domain.Conversation
	for _, conv := range r.byID {
		if conv.IsParticipant(userID) {
			convs = append(convs, *conv)
		}
	}
	return convs, nil
}

func (r *memConversationRepo) AppendMessage(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[msg.ConversationID]; !ok {
		return repository.ErrConversationMissing
	}
	r.nextSeq++
	msg.Seq = r.nextSeq
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], *msg)
	return nil
}

func (r *memConversationRepo) ListMessages(_ context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// recordingNotifier captures pushes so tests can assert on routing.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []domain.Message
	requests []domain.FriendRequest
	accepted [][2]uuid.UUID
	declined []uuid.UUID
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, *msg)
}

func (n *recordingNotifier) NotifyFriendRequest(req *domain.FriendRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, *req)
}

func (n *recordingNotifier) NotifyRequestAccepted(senderID, receiverID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, [2]uuid.UUID{senderID, receiverID})
}

func (n *recordingNotifier) NotifyRequestDeclined(senderID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.declined = append(n.declined, senderID)
}
