package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storefront-go/storefront/internal/redisx"
)

// Store persists one cart per user in redis.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) key(userID uuid.UUID) string {
	return fmt.Sprintf(redisx.KeyCart, userID)
}

// Get returns the user's cart. A missing key is an empty cart, not an error.
func (s *Store) Get(ctx context.Context, userID uuid.UUID) (Cart, error) {
	data, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, nil
		}
		return nil, fmt.Errorf("cart: failed to get cart for user %s: %w", userID, err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cart: failed to decode cart for user %s: %w", userID, err)
	}
	return c, nil
}

// Set replaces the user's cart in a single write.
func (s *Store) Set(ctx context.Context, userID uuid.UUID, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: failed to encode cart for user %s: %w", userID, err)
	}
	if err := s.rdb.Set(ctx, s.key(userID), data, redisx.TTLCart).Err(); err != nil {
		return fmt.Errorf("cart: failed to store cart for user %s: %w", userID, err)
	}
	return nil
}

// UpdateLine sets the quantity for one line, removing it at quantity <= 0.
func (s *Store) UpdateLine(ctx context.Context, userID uuid.UUID, line Line) (Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if line.Quantity <= 0 {
		delete(c, line.Key())
	} else {
		c[line.Key()] = line
	}
	if err := s.Set(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear drops the user's cart.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("cart: failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}

// MergeGuest merges a guest cart into the server-side cart and writes the
// result back atomically, returning the merged cart.
func (s *Store) MergeGuest(ctx context.Context, userID uuid.UUID, guest Cart) (Cart, error) {
	server, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := Merge(guest, server)
	if err := s.Set(ctx, userID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
