package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}

func TestCSRFIssuesCookieOnSafeRequest(t *testing.T) {
	handler := CSRF{}.Middleware(okHandler(http.StatusOK))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "X-CSRF-Token", cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Empty(t, rr.Result().Cookies())
}

func TestCSRFBlocksMissingToken(t *testing.T) {
	handler := CSRF{Header: "X-CSRF-Token"}.Middleware(okHandler(http.StatusOK))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil))
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, rr.Body.String(), "CSRF_FAILED")
}

func TestCSRFAllowsMatchingToken(t *testing.T) {
	handler := CSRF{Header: "X-CSRF-Token"}.Middleware(okHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	req.Header.Set("X-CSRF-Token", "secure-token")
	req.AddCookie(&http.Cookie{Name: "X-CSRF-Token", Value: "secure-token"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
	req.Header.Set("X-CSRF-Token", "secure-token")
	req.AddCookie(&http.Cookie{Name: "X-CSRF-Token", Value: "other-token!"})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCSRFSkipsHeaderSessions(t *testing.T) {
	handler := CSRF{}.Middleware(okHandler(http.StatusAccepted))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	req.Header.Set("X-Session-ID", "0b1c6a4e-4e0e-4c4b-9d0e-6f1d7f1f2a33")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusAccepted, rr.Code)
}
