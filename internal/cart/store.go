package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-headunit/internal/cache"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

// Store persists carts by session id.
type Store interface {
	Load(ctx context.Context, session string) (Cart, error)
	Save(ctx context.Context, session string, c Cart) error
	Delete(ctx context.Context, session string) error
}

// RedisStore keeps each cart as a JSON document with a sliding TTL.
type RedisStore struct {
	R   *redis.Client
	TTL time.Duration
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return s.TTL
}

// Load returns the stored cart or an empty cart when none exists.
func (s RedisStore) Load(ctx context.Context, session string) (Cart, error) {
	if s.R == nil {
		return Cart{}, errors.New("cart: redis client not configured")
	}
	data, err := s.R.Get(ctx, cache.KeyCart(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{Lines: []pricing.Line{}}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("cart: load: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("cart: decode: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []pricing.Line{}
	}
	return c, nil
}

// Save writes the cart and refreshes its expiry.
func (s RedisStore) Save(ctx context.Context, session string, c Cart) error {
	if s.R == nil {
		return errors.New("cart: redis client not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.R.Set(ctx, cache.KeyCart(session), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// Delete removes the cart.
func (s RedisStore) Delete(ctx context.Context, session string) error {
	if s.R == nil {
		return errors.New("cart: redis client not configured")
	}
	if err := s.R.Del(ctx, cache.KeyCart(session)).Err(); err != nil {
		return fmt.Errorf("cart: delete: %w", err)
	}
	return nil
}
