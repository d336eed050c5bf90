package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Status       string    `json:"status"`
	// SocketID is the last connection id seen for this user, written
	// best-effort on connect. Routing never reads it back; live handles
	// stay in the ws hub.
	SocketID  *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
