package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-headunit/internal/cache"
	"github.com/noah-isme/backend-headunit/internal/common"
	"github.com/noah-isme/backend-headunit/internal/obs"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

var (
	// ErrLineNotFound indicates the requested line index is out of range.
	ErrLineNotFound = errors.New("cart: line not found")
	// ErrUnknownItem indicates a catalog id that does not resolve.
	ErrUnknownItem = errors.New("cart: unknown catalog item")
	// ErrTooManyLines is returned when a cart would exceed MaxLines.
	ErrTooManyLines = errors.New("cart: too many lines")
)

// Locker serialises writers of the same cart.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service implements session cart operations.
type Service struct {
	Store    Store
	Catalog  pricing.CatalogLookup
	Locker   Locker
	LockTTL  time.Duration
	MaxLines int
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) maxLines() int {
	if s.MaxLines <= 0 {
		return 50
	}
	return s.MaxLines
}

// Get returns a snapshot of the session's cart.
func (s *Service) Get(ctx context.Context, session string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Load(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	return c.Snapshot(), nil
}

// AddLine appends a configured line. A postcode on the line's options becomes
// the cart's effective postcode.
func (s *Service) AddLine(ctx context.Context, session string, line pricing.Line) (Cart, error) {
	if s.Catalog != nil {
		if _, ok := s.Catalog.Lookup(line.CatalogID); !ok {
			return Cart{}, &common.AppError{
				Code:       "NOT_FOUND",
				Message:    fmt.Sprintf("unit %d not found", line.CatalogID),
				HTTPStatus: http.StatusNotFound,
				Err:        ErrUnknownItem,
			}
		}
	}
	return s.mutate(ctx, session, "add", func(c *Cart) error {
		if len(c.Lines) >= s.maxLines() {
			return &common.AppError{Code: "CART_FULL", Message: "cart is full", HTTPStatus: http.StatusUnprocessableEntity, Err: ErrTooManyLines}
		}
		c.Lines = append(c.Lines, line)
		c.applyLinePostcode(line.Options)
		return nil
	})
}

// UpdateLine replaces the options of the line at index.
func (s *Service) UpdateLine(ctx context.Context, session string, index int, opts pricing.Options) (Cart, error) {
	return s.mutate(ctx, session, "update", func(c *Cart) error {
		if index < 0 || index >= len(c.Lines) {
			return lineNotFound(index)
		}
		c.Lines[index].Options = opts
		c.applyLinePostcode(opts)
		return nil
	})
}

// RemoveLine deletes the line at index; later lines shift down by one.
func (s *Service) RemoveLine(ctx context.Context, session string, index int) (Cart, error) {
	return s.mutate(ctx, session, "remove", func(c *Cart) error {
		if index < 0 || index >= len(c.Lines) {
			return lineNotFound(index)
		}
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
		return nil
	})
}

// SetContext updates the order-level postcode and/or display currency.
func (s *Service) SetContext(ctx context.Context, session string, u ContextUpdate) (Cart, error) {
	return s.mutate(ctx, session, "context", func(c *Cart) error {
		c.applyContext(u)
		return nil
	})
}

// Clear discards the session's cart.
func (s *Service) Clear(ctx context.Context, session string) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.withLock(ctx, session, func(ctx context.Context) error {
		if err := s.Store.Delete(ctx, session); err != nil {
			return err
		}
		obs.ObserveCartMutation("clear")
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, session, op string, fn func(*Cart) error) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	var out Cart
	err := s.withLock(ctx, session, func(ctx context.Context) error {
		c, err := s.Store.Load(ctx, session)
		if err != nil {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		c.UpdatedAt = s.now()
		if err := s.Store.Save(ctx, session, c); err != nil {
			return err
		}
		out = c.Snapshot()
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	obs.ObserveCartMutation(op)
	zerolog.Ctx(ctx).Debug().Str("op", op).Int("lines", len(out.Lines)).Msg("cart_mutated")
	return out, nil
}

func (s *Service) withLock(ctx context.Context, session string, fn func(context.Context) error) error {
	if s.Locker == nil {
		return fn(ctx)
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return s.Locker.WithLock(ctx, cache.KeyCartLock(session), ttl, fn)
}

func lineNotFound(index int) error {
	return &common.AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("cart line %d not found", index),
		HTTPStatus: http.StatusNotFound,
		Err:        ErrLineNotFound,
	}
}
