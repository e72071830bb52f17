package checkout

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/backend-headunit/internal/cart"
	"github.com/noah-isme/backend-headunit/internal/currency"
	"github.com/noah-isme/backend-headunit/internal/obs"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

// CartReader returns a snapshot of a session cart.
type CartReader interface {
	Get(ctx context.Context, session string) (cart.Cart, error)
}

// Service prices carts for display. Pricing itself never fails; only loading
// the session cart can.
type Service struct {
	Carts  CartReader
	Engine *pricing.Engine
}

// Summary prices the session's stored cart.
func (s *Service) Summary(ctx context.Context, session string) (pricing.OrderSummary, error) {
	if s == nil || s.Carts == nil || s.Engine == nil {
		return pricing.OrderSummary{}, errors.New("checkout service not configured")
	}
	c, err := s.Carts.Get(ctx, session)
	if err != nil {
		return pricing.OrderSummary{}, err
	}
	return s.Quote(ctx, c.Lines, c.Context), nil
}

// Quote prices an arbitrary cart without touching session state.
func (s *Service) Quote(ctx context.Context, lines []pricing.Line, pc pricing.Context) pricing.OrderSummary {
	_, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.Quote")
	defer span.End()

	summary := s.Engine.PriceOrder(lines, pc)

	span.SetAttributes(
		attribute.Int("order.lines", summary.ItemCount),
		attribute.String("order.zone", string(summary.Zone)),
		attribute.Bool("order.local", summary.Local),
		attribute.String("order.currency", summary.Currency),
		attribute.Int64("order.grand_cents", summary.Base.Grand),
	)
	obs.ObserveQuote(string(summary.Zone), summary.Local, summary.Base.Grand)
	zerolog.Ctx(ctx).Debug().
		Int("lines", summary.ItemCount).
		Str("zone", string(summary.Zone)).
		Bool("local", summary.Local).
		Int64("grand", summary.Base.Grand).
		Msg("order_priced")
	return summary
}

// Currencies lists the display currencies the engine can convert into.
func (s *Service) Currencies() (string, []currency.Rate) {
	if s == nil || s.Engine == nil || s.Engine.Currency == nil {
		return "", []currency.Rate{}
	}
	return s.Engine.Currency.Base(), s.Engine.Currency.Rates()
}
