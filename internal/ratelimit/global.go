package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/backend-headunit/internal/common"
)

// NewRedisStore returns a limiter store shared by every API replica.
func NewRedisStore(rdb *redis.Client) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "ratelimit:global"})
}

// NewGlobal builds a per-client-IP fixed-window limiter for the whole API.
// rate uses the "<limit>-<period>" format, e.g. "300-M".
func NewGlobal(rate string, store limiter.Store) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(strings.TrimSpace(rate))
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate %q: %w", rate, err)
	}
	instance := limiter.New(store, parsed)
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithKeyGetter(common.ClientIP),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later", nil)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rate limiter unavailable", nil)
		}),
	)
	return mw.Handler, nil
}
