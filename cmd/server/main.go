package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vedran77/tawk/internal/config"
	"github.com/vedran77/tawk/internal/database"
	postgresrepo "github.com/vedran77/tawk/internal/repository/postgres"
	"github.com/vedran77/tawk/internal/service"
	"github.com/vedran77/tawk/internal/transport/http/handlers"
	"github.com/vedran77/tawk/internal/transport/http/middleware"
	"github.com/vedran77/tawk/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	friendRepo := postgresrepo.NewFriendRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	friendService := service.NewFriendService(friendRepo, userRepo)
	chatService := service.NewChatService(convRepo, userRepo)
	presenceService := service.NewPresenceService(userRepo)

	// WebSocket hub + notifier
	hub := ws.NewHub()
	notifier := ws.NewHubNotifier(hub)
	friendService.SetNotifier(notifier)
	chatService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(friendService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Users
	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(userHandler.ListUsers)))
	mux.Handle("GET /api/v1/users/friends", auth(http.HandlerFunc(userHandler.ListFriends)))
	mux.Handle("GET /api/v1/users/requests", auth(http.HandlerFunc(userHandler.ListFriendRequests)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, ws.Services{
		Chat:     chatService,
		Friends:  friendService,
		Presence: presenceService,
	}, cfg.JWTSecret))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.CORS(mux),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
