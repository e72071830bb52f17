package common

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const sessionIDKey ctxKey = "session/id"

// SessionHeader lets non-browser clients carry the session id explicitly.
const SessionHeader = "X-Session-ID"

// WithSessionID stores the session identifier on the provided context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionID extracts the session identifier from the context if present.
func SessionID(ctx context.Context) (string, bool) {
	v := ctx.Value(sessionIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// SessionConfig controls the session cookie.
type SessionConfig struct {
	CookieName string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	TTL        time.Duration
}

// Session resolves the caller's session id from the X-Session-ID header or
// the session cookie, minting a new one when neither carries a valid id.
// The id is echoed back in the response header and refreshed in the cookie.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = "hu_session"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionFromRequest(r, name)
			if id == "" {
				id = uuid.NewString()
			}
			cookie := &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				Domain:   cfg.Domain,
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: cfg.SameSite,
			}
			if cfg.TTL > 0 {
				cookie.MaxAge = int(cfg.TTL / time.Second)
				cookie.Expires = time.Now().Add(cfg.TTL)
			}
			http.SetCookie(w, cookie)
			w.Header().Set(SessionHeader, id)
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

func sessionFromRequest(r *http.Request, cookieName string) string {
	if v := validSessionID(r.Header.Get(SessionHeader)); v != "" {
		return v
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return validSessionID(c.Value)
	}
	return ""
}

func validSessionID(raw string) string {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return id.String()
}
