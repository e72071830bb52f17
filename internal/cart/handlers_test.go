package cart_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/cart"
	"github.com/noah-isme/backend-headunit/internal/common"
)

const testSession = "6f1c1d2e-8a4b-4c3d-9e2f-0a1b2c3d4e5f"

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newService(t)
	h := &cart.Handler{Svc: svc}
	r := chi.NewRouter()
	r.Use(common.Session(common.SessionConfig{CookieName: "hu_session"}))
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Patch("/cart/items/{index}", h.UpdateItem)
	r.Delete("/cart/items/{index}", h.RemoveItem)
	r.Put("/cart/context", h.SetContext)
	r.Delete("/cart", h.Clear)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.SessionHeader, testSession)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type cartBody struct {
	Data struct {
		Lines []struct {
			Index     int            `json:"index"`
			CatalogID int            `json:"catalogId"`
			Options   map[string]any `json:"options"`
		} `json:"lines"`
		ItemCount int `json:"itemCount"`
		Context   struct {
			Postcode string `json:"postcode"`
			Currency string `json:"currency"`
		} `json:"context"`
	} `json:"data"`
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartBody {
	t.Helper()
	var body cartBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandlerAddAndGet(t *testing.T) {
	r := newRouter(t)

	rec := do(t, r, http.MethodPost, "/cart/items", `{"catalogId":1,"options":{"install":"on","premium_brand":"Harman Kardon","postcode":"4000"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, testSession, rec.Header().Get(common.SessionHeader))

	body := decodeCart(t, rec)
	require.Equal(t, 1, body.Data.ItemCount)
	require.Equal(t, true, body.Data.Lines[0].Options["install"])
	require.Equal(t, "Harman Kardon", body.Data.Lines[0].Options["premiumBrand"])
	require.Equal(t, "4000", body.Data.Context.Postcode)

	rec = do(t, r, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, decodeCart(t, rec).Data.ItemCount)
}

func TestHandlerAddUnknownItem(t *testing.T) {
	r := newRouter(t)
	rec := do(t, r, http.MethodPost, "/cart/items", `{"catalogId":99}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"NOT_FOUND"`)
}

func TestHandlerAddValidation(t *testing.T) {
	r := newRouter(t)

	rec := do(t, r, http.MethodPost, "/cart/items", `{"options":{}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "catalogId")

	rec = do(t, r, http.MethodPost, "/cart/items", `{"catalogId":0,"bogus":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUpdateRemoveAndClear(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/cart/items", `{"catalogId":0}`).Code)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/cart/items", `{"catalogId":1}`).Code)

	rec := do(t, r, http.MethodPatch, "/cart/items/1", `{"options":{"gps":true,"postcode":"4217"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeCart(t, rec)
	require.Equal(t, true, body.Data.Lines[1].Options["gps"])
	require.Equal(t, "4217", body.Data.Context.Postcode)

	rec = do(t, r, http.MethodPatch, "/cart/items/7", `{"options":{}}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, r, http.MethodDelete, "/cart/items/abc", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodDelete, "/cart/items/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeCart(t, rec)
	require.Len(t, body.Data.Lines, 1)
	require.Equal(t, 0, body.Data.Lines[0].Index)
	require.Equal(t, 1, body.Data.Lines[0].CatalogID)

	rec = do(t, r, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 0, decodeCart(t, do(t, r, http.MethodGet, "/cart", "")).Data.ItemCount)
}

func TestHandlerSetContext(t *testing.T) {
	r := newRouter(t)

	rec := do(t, r, http.MethodPut, "/cart/context", `{"postcode":"9999","currency":"usd"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeCart(t, rec)
	require.Equal(t, "9999", body.Data.Context.Postcode)
	require.Equal(t, "USD", body.Data.Context.Currency)

	rec = do(t, r, http.MethodPut, "/cart/context", `{"postcode":"QLD 4000 AUSTRALIA","currency":"dollars"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeCart(t, rec)
	require.Equal(t, "QLD 4000 AUSTRALIA", body.Data.Context.Postcode)
	require.Equal(t, "DOLLARS", body.Data.Context.Currency)
}

func TestHandlerRequiresSession(t *testing.T) {
	svc, _ := newService(t)
	h := &cart.Handler{Svc: svc}
	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
