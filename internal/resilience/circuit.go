package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned while the breaker is shedding calls.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State is a breaker state. The numeric values double as the breaker_state
// gauge reading.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	}
	return "unknown"
}

// Breaker trips when the failure ratio over the last window outcomes reaches
// a threshold. After openFor it admits a single probe; the probe's outcome
// closes or reopens it.
type Breaker struct {
	mu       sync.Mutex
	state    State
	outcomes []bool // ring of recent results, true == failure
	next     int
	filled   int
	failures int
	ratio    float64
	openFor  time.Duration
	openedAt time.Time
	probing  bool
	target   string
	now      func() time.Time
}

// NewBreaker judges the last window outcomes. Nothing trips until window
// outcomes have been seen.
func NewBreaker(window int, failureRatio float64, openFor time.Duration) *Breaker {
	window = max(window, 1)
	if failureRatio <= 0 || failureRatio > 1 {
		failureRatio = 0.5
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &Breaker{
		outcomes: make([]bool, window),
		ratio:    failureRatio,
		openFor:  openFor,
		now:      time.Now,
	}
}

// WithTarget names the guarded dependency in metrics and logs.
func (b *Breaker) WithTarget(target string) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = strings.TrimSpace(target)
	b.publishLocked()
	return b
}

// WithClock replaces the time source.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	return b
}

// Allow reports whether a call may proceed. Callers that get true must
// Report the outcome. A nil breaker always allows.
func (b *Breaker) Allow(ctx context.Context) bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.openFor {
			return false
		}
		b.transitionLocked(ctx, HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return true
}

// Report records a call outcome.
func (b *Breaker) Report(ctx context.Context, success bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		b.probing = false
		if success {
			b.transitionLocked(ctx, Closed)
		} else {
			b.transitionLocked(ctx, Open)
		}
		return
	}

	failed := !success
	if b.filled == len(b.outcomes) {
		if b.outcomes[b.next] {
			b.failures--
		}
	} else {
		b.filled++
	}
	b.outcomes[b.next] = failed
	if failed {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.outcomes)

	if b.filled == len(b.outcomes) && float64(b.failures)/float64(b.filled) >= b.ratio {
		b.transitionLocked(ctx, Open)
	}
}

// State returns the current state without advancing the cool-off.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Target returns the dependency label, "default" when unnamed.
func (b *Breaker) Target() string {
	if b == nil {
		return "default"
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label()
}

func (b *Breaker) label() string {
	if b.target == "" {
		return "default"
	}
	return b.target
}

func (b *Breaker) transitionLocked(ctx context.Context, to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	switch to {
	case Open:
		b.openedAt = b.now()
	case Closed:
		clear(b.outcomes)
		b.next, b.filled, b.failures = 0, 0, 0
	}
	b.publishLocked()
	recordTransition(b.label(), from, to)

	evt := zerolog.Ctx(ctx).Info().
		Str("target", b.label()).
		Str("from_state", from.String()).
		Str("to_state", to.String())
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		evt = evt.Str("trace_id", sc.TraceID().String())
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) publishLocked() {
	BreakerState.WithLabelValues(b.label()).Set(float64(b.state))
}

// Backoff doubles base per attempt (1-based) and spreads the result by
// +/- jitter, a fraction of the delay.
func Backoff(base time.Duration, attempt int, jitter float64) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base << (max(attempt, 1) - 1)
	if jitter <= 0 {
		return d
	}
	spread := float64(d) * jitter
	return d + time.Duration((rand.Float64()*2-1)*spread)
}
