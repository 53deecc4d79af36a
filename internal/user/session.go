package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storefront-go/storefront/internal/redisx"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session is what an auth token resolves to.
type Session struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
}

// SessionStore keeps opaque bearer tokens in redis with a TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, u *User) (string, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("session: failed to generate token: %w", err)
	}

	data, err := json.Marshal(Session{UserID: u.ID, IsAdmin: u.IsAdmin})
	if err != nil {
		return "", fmt.Errorf("session: failed to encode session: %w", err)
	}

	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: failed to store session: %w", err)
	}
	return token.String(), nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	key := fmt.Sprintf(redisx.KeySession, token)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session: failed to fetch session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: failed to decode session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	key := fmt.Sprintf(redisx.KeySession, token)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("session: failed to delete session: %w", err)
	}
	return nil
}
