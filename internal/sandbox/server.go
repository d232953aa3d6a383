package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"stockdeck/internal/cache"
	"stockdeck/internal/model"
)

// Server assembles the sandbox: store, token service, hub, and router.
type Server struct {
	Store  *Store
	Tokens *TokenService
	Hub    *Hub
	Router *chi.Mux
}

// NewServer wires the sandbox components together and starts the hub.
func NewServer(store *Store, tokenCache cache.Cache, tokenTTL time.Duration) *Server {
	tokens := NewTokenService(tokenCache, tokenTTL)
	hub := NewHub()
	go hub.Run()

	router := NewRouter(RouterConfig{
		Auth:      NewAuthHandler(store, tokens),
		Users:     NewUserHandler(store),
		Stores:    NewStoreHandler(store),
		SKUs:      NewSKUHandler(store),
		Inventory: NewInventoryHandler(store, hub),
		Hub:       hub,
		Tokens:    tokens,
		Store:     store,
	})

	return &Server{Store: store, Tokens: tokens, Hub: hub, Router: router}
}

// Seed ensures the bootstrap manager account exists so a fresh database is
// immediately usable.
func (s *Server) Seed(ctx context.Context, adminPassword string) error {
	_, _, err := s.Store.GetUserByUsername(ctx, "admin")
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if _, err := s.Store.CreateUser(ctx, "admin", "admin@localhost", string(hash), model.RoleManager); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	logrus.Info("seeded bootstrap manager account")
	return nil
}

// Shutdown stops the hub and closes the store.
func (s *Server) Shutdown() {
	s.Hub.Stop()
	if err := s.Store.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close store")
	}
}
