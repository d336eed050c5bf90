package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/tawk/internal/domain"
	"github.com/vedran77/tawk/internal/repository"
)

// PresenceService persists online/offline transitions driven by the
// connection lifecycle. Both writes are best-effort: callers log failures
// and keep the connection alive.
type PresenceService struct {
	userRepo repository.UserRepository
}

func NewPresenceService(userRepo repository.UserRepository) *PresenceService {
	return &PresenceService{userRepo: userRepo}
}

// Connected marks the user online and records socketID as the last known
// connection token.
func (s *PresenceService) Connected(ctx context.Context, userID uuid.UUID, socketID string) error {
	if err := s.userRepo.UpdatePresence(ctx, userID, domain.StatusOnline, &socketID); err != nil {
		return fmt.Errorf("marking user online: %w", err)
	}
	return nil
}

// Disconnected marks the user offline. The last known socket id is kept.
func (s *PresenceService) Disconnected(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdatePresence(ctx, userID, domain.StatusOffline, nil); err != nil {
		return fmt.Errorf("marking user offline: %w", err)
	}
	return nil
}
