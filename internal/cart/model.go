package cart

import (
	"strings"
	"time"

	"github.com/noah-isme/backend-headunit/internal/pricing"
)

// Cart is a session's ordered list of configured lines plus the order-level
// pricing context.
type Cart struct {
	Lines     []pricing.Line  `json:"lines"`
	Context   pricing.Context `json:"context"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Snapshot returns a deep copy that shares no backing arrays with c.
func (c Cart) Snapshot() Cart {
	out := c
	out.Lines = append(make([]pricing.Line, 0, len(c.Lines)), c.Lines...)
	return out
}

// ContextUpdate carries a partial context change. Nil fields are left alone.
type ContextUpdate struct {
	Postcode *string
	Currency *string
}

func (c *Cart) applyLinePostcode(opts pricing.Options) {
	if pc := strings.TrimSpace(opts.Postcode); pc != "" {
		c.Context.Postcode = pc
	}
}

func (c *Cart) applyContext(u ContextUpdate) {
	if u.Postcode != nil {
		c.Context.Postcode = strings.TrimSpace(*u.Postcode)
	}
	if u.Currency != nil {
		c.Context.Currency = strings.ToUpper(strings.TrimSpace(*u.Currency))
	}
}
