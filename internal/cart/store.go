package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key string, ttl time.Duration, fn func(current string, found bool) (string, error)) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// Store keeps session carts in Redis as JSON documents.
type Store struct {
	kv  kvStore
	ttl time.Duration
}

// NewStore binds a cart store to a Redis client. Each save refreshes ttl.
func NewStore(kv kvStore, ttl time.Duration) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Store{kv: kv, ttl: ttl}, nil
}

// Get loads the cart for sessionID. A missing session yields an empty cart.
func (s *Store) Get(ctx context.Context, sessionID string) (Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return Clear(), nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return decodeCart(raw)
}

func decodeCart(raw string) (Cart, error) {
	var stored Cart
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	// aggregates are never trusted from storage
	return withItems(stored.Items), nil
}

// Update applies fn to the stored cart and saves the result, refreshing its
// expiry. Redis reruns fn when another request changed the cart meanwhile, so
// concurrent edits of one session never overwrite each other. Errors from fn
// are returned as is.
func (s *Store) Update(ctx context.Context, sessionID string, fn func(Cart) (Cart, error)) (Cart, error) {
	var updated Cart
	err := s.kv.Update(ctx, s.kv.CartKey(sessionID), s.ttl, func(current string, found bool) (string, error) {
		c := Clear()
		if found {
			decoded, err := decodeCart(current)
			if err != nil {
				return "", err
			}
			c = decoded
		}
		next, err := fn(c)
		if err != nil {
			return "", err
		}
		updated = withItems(next.Items)
		payload, err := json.Marshal(updated)
		if err != nil {
			return "", fmt.Errorf("encode cart: %w", err)
		}
		return string(payload), nil
	})
	if err != nil {
		return Cart{}, err
	}
	return updated, nil
}

// Delete drops the session cart.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(sessionID)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
