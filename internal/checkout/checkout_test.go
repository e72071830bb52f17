package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/cart"
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/checkout"
	"github.com/noah-isme/backend-headunit/internal/common"
	"github.com/noah-isme/backend-headunit/internal/config"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

func newEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	items, err := catalog.FileSource{}.Load(context.Background())
	require.NoError(t, err)
	cat, err := catalog.NewService(catalog.ServiceConfig{Items: items})
	require.NoError(t, err)
	rules := config.DefaultRules()
	return &pricing.Engine{
		Catalog:  cat,
		Geo:      rules.Classifier(),
		Fees:     rules.FeeSchedule(),
		Shipping: rules.Estimator(),
		Currency: rules.Converter(),
	}
}

func newCarts(t *testing.T, engine *pricing.Engine) *cart.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &cart.Service{Store: cart.RedisStore{R: client, TTL: time.Hour}, Catalog: engine.Catalog}
}

type summaryBody struct {
	Data struct {
		ItemCount int            `json:"itemCount"`
		Zone      string         `json:"zone"`
		Local     bool           `json:"local"`
		Currency  string         `json:"currency"`
		Base      pricing.Totals `json:"base"`
		Display   pricing.Totals `json:"display"`
		Formatted struct {
			Grand    string `json:"grand"`
			Shipping string `json:"shipping"`
		} `json:"formatted"`
	} `json:"data"`
}

func TestSummaryPricesSessionCart(t *testing.T) {
	engine := newEngine(t)
	carts := newCarts(t, engine)
	svc := &checkout.Service{Carts: carts, Engine: engine}
	ctx := context.Background()

	_, err := carts.AddLine(ctx, "s1", pricing.Line{CatalogID: 0, Options: pricing.Options{Install: true, Callout: true, Postcode: "4000"}})
	require.NoError(t, err)

	got, err := svc.Summary(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, pricing.Totals{Subtotal: 55000, Installation: 9000, Callout: 6000, Shipping: 1295, Grand: 71295}, got.Base)

	empty, err := svc.Summary(ctx, "nobody")
	require.NoError(t, err)
	require.Zero(t, empty.ItemCount)
	require.Zero(t, empty.Base.Grand)
}

func TestSummaryHandler(t *testing.T) {
	engine := newEngine(t)
	carts := newCarts(t, engine)
	h := &checkout.Handler{Svc: &checkout.Service{Carts: carts, Engine: engine}}

	_, err := carts.AddLine(context.Background(), "6f1c1d2e-8a4b-4c3d-9e2f-0a1b2c3d4e5f", pricing.Line{CatalogID: 1, Options: pricing.Options{Install: true}})
	require.NoError(t, err)
	_, err = carts.SetContext(context.Background(), "6f1c1d2e-8a4b-4c3d-9e2f-0a1b2c3d4e5f", cart.ContextUpdate{Postcode: strPtr("4500")})
	require.NoError(t, err)

	handler := common.Session(common.SessionConfig{})(http.HandlerFunc(h.Summary))
	req := httptest.NewRequest(http.MethodGet, "/cart/summary", nil)
	req.Header.Set(common.SessionHeader, "6f1c1d2e-8a4b-4c3d-9e2f-0a1b2c3d4e5f")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body summaryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "QLD", body.Data.Zone)
	require.False(t, body.Data.Local)
	require.Equal(t, int64(63295), body.Data.Base.Grand)
	require.Equal(t, "AUD 632.95", body.Data.Formatted.Grand)
}

func postQuote(t *testing.T, h *checkout.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/quote", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Quote(rec, req)
	return rec
}

func TestQuoteHandler(t *testing.T) {
	engine := newEngine(t)
	h := &checkout.Handler{Svc: &checkout.Service{Engine: engine}}

	rec := postQuote(t, h, `{"items":[{"catalogId":0,"options":{"install":"on","callout":"yes"}},{"catalogId":99}],"postcode":"9999","currency":"AUD"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body summaryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Data.ItemCount)
	require.Equal(t, "AUS", body.Data.Zone)
	require.Equal(t, pricing.Totals{Subtotal: 55000, Shipping: 1495, Grand: 56495}, body.Data.Base)
	require.Equal(t, "AUD 564.95", body.Data.Formatted.Grand)
}

func TestQuoteHandlerConvertsDisplayCurrency(t *testing.T) {
	engine := newEngine(t)
	h := &checkout.Handler{Svc: &checkout.Service{Engine: engine}}

	rec := postQuote(t, h, `{"items":[{"catalogId":0,"options":{"install":true,"gps":true,"dashcam":true}}],"postcode":"4000","currency":"usd"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body summaryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "USD", body.Data.Currency)
	require.Equal(t, int64(36300), body.Data.Display.Subtotal)
	require.Equal(t, int64(855), body.Data.Display.Shipping)
	require.Equal(t, "USD 8.55", body.Data.Formatted.Shipping)
}

func TestQuoteUsesLinePostcodeWhenOrderHasNone(t *testing.T) {
	engine := newEngine(t)
	h := &checkout.Handler{Svc: &checkout.Service{Engine: engine}}

	rec := postQuote(t, h, `{"items":[{"catalogId":0,"options":{"postcode":"9999"}},{"catalogId":0,"options":{"postcode":"4000"}}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body summaryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "QLD", body.Data.Zone)
	require.True(t, body.Data.Local)

	rec = postQuote(t, h, `{"items":[{"catalogId":0,"options":{"postcode":"4000"}}],"postcode":"9999"}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "AUS", body.Data.Zone)
}

func TestQuoteHandlerValidation(t *testing.T) {
	engine := newEngine(t)
	h := &checkout.Handler{Svc: &checkout.Service{Engine: engine}}

	rec := postQuote(t, h, `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	items := make([]string, 51)
	for i := range items {
		items[i] = `{"catalogId":0}`
	}
	rec = postQuote(t, h, `{"items":[`+strings.Join(items, ",")+`]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteHandlerDegradesUnknownInputs(t *testing.T) {
	engine := newEngine(t)
	h := &checkout.Handler{Svc: &checkout.Service{Engine: engine}}

	rec := postQuote(t, h, `{"items":[{"catalogId":-1},{"catalogId":0}],"postcode":"9999"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var body summaryBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Data.ItemCount)
	require.Equal(t, int64(56495), body.Data.Base.Grand)

	rec = postQuote(t, h, `{"items":[{"catalogId":0}],"postcode":"9999","currency":"EURO"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = summaryBody{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "AUD", body.Data.Currency)
	require.Equal(t, body.Data.Base, body.Data.Display)

	rec = postQuote(t, h, `{"items":[{"catalogId":0,"options":{"install":true}}],"postcode":"QLD 4000 AUSTRALIA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = summaryBody{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "AUS", body.Data.Zone)
	require.False(t, body.Data.Local)
	require.Equal(t, int64(1495), body.Data.Base.Shipping)
}

func TestCurrenciesHandler(t *testing.T) {
	h := &checkout.Handler{Svc: &checkout.Service{Engine: newEngine(t)}}
	rec := httptest.NewRecorder()
	h.Currencies(rec, httptest.NewRequest(http.MethodGet, "/currencies", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Base       string `json:"base"`
			Currencies []struct {
				Code       string `json:"code"`
				Multiplier string `json:"multiplier"`
			} `json:"currencies"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "AUD", body.Data.Base)
	codes := make([]string, 0, len(body.Data.Currencies))
	for _, c := range body.Data.Currencies {
		codes = append(codes, c.Code)
	}
	require.Equal(t, []string{"AUD", "EUR", "GBP", "NZD", "USD"}, codes)
	require.Equal(t, "0.66", body.Data.Currencies[4].Multiplier)
}

func strPtr(s string) *string { return &s }
