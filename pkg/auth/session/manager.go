package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/semprebellasuporte2025/semprebella-backend/pkg/config"
	redisclient "github.com/semprebellasuporte2025/semprebella-backend/pkg/redis"
)

// ErrSessionExpired signals the server-side session is gone, either
// revoked or idle past the inactivity window.
var ErrSessionExpired = errors.New("session expired")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager owns server-side session records in Redis. Each session key
// carries a sliding TTL equal to the idle timeout; every authenticated
// request touches the key, so the session dies only after the full
// window passes with no activity.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	idle  time.Duration
}

// Toucher exposes the surface the auth middleware needs.
type Toucher interface {
	Touch(ctx context.Context, sessionID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	idle := cfg.IdleTimeout()
	if idle <= 0 {
		return nil, fmt.Errorf("session idle timeout must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		idle:  idle,
	}, nil
}

// Start records a new session for the user and returns nothing; the
// session id is the JWT jti chosen by the caller.
func (m *Manager) Start(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(sessionID), userID.String(), m.idle)
}

// Touch slides the idle window forward. It returns false when the session
// no longer exists.
func (m *Manager) Touch(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, fmt.Errorf("session id is required")
	}
	refreshed, err := m.store.Expire(ctx, m.keyer.SessionKey(sessionID), m.idle)
	if err != nil {
		return false, err
	}
	return refreshed, nil
}

// Owner returns the user id stored for the session.
func (m *Manager) Owner(ctx context.Context, sessionID string) (uuid.UUID, error) {
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return uuid.Nil, ErrSessionExpired
		}
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt session record: %w", err)
	}
	return id, nil
}

// Revoke deletes the session record, logging the user out everywhere the
// token is presented.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// NewSessionID produces the identifier used as both JWT jti and Redis key.
func NewSessionID() string {
	return uuid.NewString()
}
