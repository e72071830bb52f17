package security

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-headunit/internal/common"
)

// CSRF protects cookie-based session flows using the double-submit technique.
type CSRF struct {
	// Header names both the request header and the cookie carrying the token.
	Header string
	Secure bool
	Domain string
}

// Middleware issues a token cookie on safe requests and requires unsafe
// requests to echo it in the header. Clients that identify their session with
// the X-Session-ID header instead of a cookie are not exposed to CSRF and skip
// the check.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	name := strings.TrimSpace(c.Header)
	if name == "" {
		name = "X-CSRF-Token"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(name)
		hasCookie := err == nil && strings.TrimSpace(cookie.Value) != ""

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			if !hasCookie {
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    uuid.NewString(),
					Path:     "/",
					Domain:   c.Domain,
					Secure:   c.Secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			next.ServeHTTP(w, r)
			return
		}

		if strings.TrimSpace(r.Header.Get(common.SessionHeader)) != "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(name))
		if token == "" {
			forbidden(w, "missing csrf token")
			return
		}
		if !hasCookie {
			forbidden(w, "missing csrf cookie")
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) != 1 {
			forbidden(w, "invalid csrf token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func forbidden(w http.ResponseWriter, message string) {
	common.JSONError(w, http.StatusForbidden, "CSRF_FAILED", message, nil)
}
