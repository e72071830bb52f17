package common

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// IdempotencyHeader carries the client-chosen key on write requests.
	IdempotencyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency store.
	ReplayedHeader = "Idempotent-Replayed"

	idemPending = "pending"
)

// Idem makes session-scoped write requests repeatable. The first request with
// a key runs the handler and stores its response; repeats replay it. A repeat
// that arrives while the first is still running gets 409. Server errors are
// not stored so the client may retry with the same key.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body"`
}

// idemKey scopes a client key to the session and the request route, so the
// same key sent to a different endpoint is a new request.
func idemKey(session, method, path, key string) string {
	sum := sha256.Sum256([]byte(session + "|" + method + " " + path + "|" + key))
	return "idem:" + hex.EncodeToString(sum[:])
}

// Middleware applies the idempotency contract to requests that carry an
// Idempotency-Key header. Requests without one, or with no Redis configured,
// pass straight through. The store being unreachable yields 503.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyHeader)
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		session, _ := SessionID(ctx)
		key := idemKey(session, r.Method, r.URL.Path, header)

		claimed, err := i.R.SetNX(ctx, key, idemPending, i.TTL).Result()
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("idempotency_store_unavailable")
			JSONError(w, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "could not verify idempotency key", nil)
			return
		}
		if !claimed {
			i.replay(ctx, w, key)
			return
		}

		capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			// Detached from the request so a cancelled client still settles the key.
			settle, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			defer cancel()
			if capture.status >= http.StatusInternalServerError {
				_ = i.R.Del(settle, key).Err()
				return
			}
			payload, err := json.Marshal(storedResponse{
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err == nil {
				err = i.R.Set(settle, key, payload, i.TTL).Err()
			}
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("idempotency_store_write_failed")
				_ = i.R.Del(settle, key).Err()
			}
		}()
		next.ServeHTTP(capture, r)
	})
}

func (i Idem) replay(ctx context.Context, w http.ResponseWriter, key string) {
	raw, err := i.R.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		JSONError(w, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE", "could not verify idempotency key", nil)
		return
	}
	var stored storedResponse
	if len(raw) == 0 || string(raw) == idemPending || json.Unmarshal(raw, &stored) != nil {
		JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "a request with this key is still in progress", nil)
		return
	}
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	if !c.wroteHeader {
		c.status = code
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.wroteHeader = true
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}
