package handlers

import (
	"log"
	"net/http"

	"github.com/vedran77/tawk/internal/service"
	"github.com/vedran77/tawk/internal/transport/http/middleware"
)

// UserHandler serves the discovery views the chat client needs before any
// socket traffic: who can I befriend, who are my friends, who is waiting
// on me.
type UserHandler struct {
	friendService *service.FriendService
}

func NewUserHandler(friendService *service.FriendService) *UserHandler {
	return &UserHandler{friendService: friendService}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	users, err := h.friendService.ListDiscoverable(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list users: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friends, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list friends: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"friends": friends})
}

func (h *UserHandler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	requests, err := h.friendService.ListIncomingRequests(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list friend requests: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}
