package checkout

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-headunit/internal/common"
	"github.com/noah-isme/backend-headunit/internal/money"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

// Handler exposes pricing over HTTP.
type Handler struct {
	Svc *Service
}

type quoteItem struct {
	CatalogID int             `json:"catalogId"`
	Options   pricing.Options `json:"options"`
}

// quoteRequest caps the line count only; the engine degrades on anything it
// cannot resolve.
type quoteRequest struct {
	Items    []quoteItem `json:"items" validate:"max=50"`
	Postcode string      `json:"postcode"`
	Currency string      `json:"currency"`
}

type formattedTotals struct {
	Subtotal     string `json:"subtotal"`
	AddOns       string `json:"addOns"`
	Installation string `json:"installation"`
	Callout      string `json:"callout"`
	Shipping     string `json:"shipping"`
	Grand        string `json:"grand"`
}

type summaryView struct {
	pricing.OrderSummary
	Formatted formattedTotals `json:"formatted"`
}

func format(t pricing.Totals, code string) formattedTotals {
	f := func(m money.Money) string { return code + " " + money.Format(m) }
	return formattedTotals{
		Subtotal:     f(t.Subtotal),
		AddOns:       f(t.AddOns),
		Installation: f(t.Installation),
		Callout:      f(t.Callout),
		Shipping:     f(t.Shipping),
		Grand:        f(t.Grand),
	}
}

func view(s pricing.OrderSummary) summaryView {
	return summaryView{OrderSummary: s, Formatted: format(s.Display, s.Currency)}
}

// Summary handles GET /cart/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	session, ok := common.SessionID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "SESSION_REQUIRED", "session is required", nil)
		return
	}
	summary, err := h.Svc.Summary(r.Context(), session)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("cart_summary_failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to load cart", nil)
		return
	}
	common.Data(w, http.StatusOK, view(summary))
}

// Quote handles POST /quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		common.WriteAppError(w, appErr)
		return
	}
	pc := pricing.Context{Postcode: strings.TrimSpace(req.Postcode), Currency: req.Currency}
	explicit := pc.Postcode != ""
	lines := make([]pricing.Line, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, pricing.Line{CatalogID: it.CatalogID, Options: it.Options})
		// Without an order postcode the last line postcode applies.
		if !explicit && it.Options.Postcode != "" {
			pc.Postcode = it.Options.Postcode
		}
	}
	summary := h.Svc.Quote(r.Context(), lines, pc)
	common.Data(w, http.StatusOK, view(summary))
}

// Currencies handles GET /currencies.
func (h *Handler) Currencies(w http.ResponseWriter, r *http.Request) {
	base, rates := h.Svc.Currencies()
	common.Data(w, http.StatusOK, map[string]any{"base": base, "currencies": rates})
}
