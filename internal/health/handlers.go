package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/noah-isme/backend-headunit/internal/common"
)

// Pinger is anything that can be probed for reachability, such as a Redis
// client wrapper or a pgx pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Probe is one named readiness dependency.
type Probe struct {
	Name    string
	Target  Pinger
	Timeout time.Duration
}

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady toggles readiness, e.g. to drain traffic during shutdown.
func SetReady(v bool) { ready.Store(v) }

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Probes []Probe
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes. Every probe runs even
// after one fails so the response names all unhealthy dependencies.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
		return
	}
	ctx := r.Context()
	status := make(map[string]string, len(h.Probes))
	healthy := true
	for _, probe := range h.Probes {
		if err := probe.run(ctx); err != nil {
			status[probe.Name] = err.Error()
			healthy = false
			continue
		}
		status[probe.Name] = "ok"
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func (p Probe) run(ctx context.Context) error {
	if p.Target == nil {
		return errNotConfigured
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Target.Ping(ctx)
}
