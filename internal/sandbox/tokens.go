package sandbox

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stockdeck/internal/cache"
)

const (
	// tokenPrefix marks every session token issued by the sandbox.
	tokenPrefix = "sdk_"

	// tokenKeyPrefix namespaces token keys in the cache.
	tokenKeyPrefix = "token:"
)

// sessionData is the cached payload behind one token.
type sessionData struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService issues and validates opaque session tokens backed by a cache,
// so multiple sandbox instances sharing a Redis honor each other's sessions.
type TokenService struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewTokenService creates a token service with the given token lifetime.
func NewTokenService(c cache.Cache, ttl time.Duration) *TokenService {
	return &TokenService{cache: c, ttl: ttl}
}

// Generate creates a session token for a user and stores it with the TTL.
func (s *TokenService) Generate(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := tokenPrefix + hex.EncodeToString(buf)

	data := sessionData{
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.ttl),
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := s.cache.Set(ctx, tokenKeyPrefix+token, payload, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Validate checks a token and returns the owning user id.
func (s *TokenService) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	if len(token) < len(tokenPrefix) || token[:len(tokenPrefix)] != tokenPrefix {
		return "", fmt.Errorf("invalid token format")
	}

	payload, err := s.cache.Get(ctx, tokenKeyPrefix+token)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", fmt.Errorf("token not found or expired")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	var data sessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return "", fmt.Errorf("failed to parse session: %w", err)
	}
	if time.Now().After(data.ExpiresAt) {
		_ = s.cache.Delete(ctx, tokenKeyPrefix+token)
		return "", fmt.Errorf("token expired")
	}
	return data.UserID, nil
}

// Revoke deletes a token.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, tokenKeyPrefix+token)
}
