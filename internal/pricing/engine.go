package pricing

import (
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/currency"
	"github.com/noah-isme/backend-headunit/internal/geo"
	"github.com/noah-isme/backend-headunit/internal/shipping"
)

// CatalogLookup resolves catalog items by id.
type CatalogLookup interface {
	Lookup(id int) (catalog.Item, bool)
}

// Engine prices carts. It holds only read-only collaborators and is safe for
// concurrent use.
type Engine struct {
	Catalog  CatalogLookup
	Geo      *geo.Classifier
	Fees     FeeSchedule
	Shipping *shipping.Estimator
	Currency *currency.Converter
}

// PriceOrder computes the order summary. It never fails: unknown catalog ids
// are dropped, unparsable postcodes are treated as non-local in the fallback
// zone and unknown currencies convert at 1:1.
func (e *Engine) PriceOrder(lines []Line, pc Context) OrderSummary {
	resolved := make([]Line, 0, len(lines))
	summaries := make([]LineSummary, 0, len(lines))
	for idx, line := range lines {
		item, ok := e.lookup(line.CatalogID)
		if !ok {
			continue
		}
		resolved = append(resolved, line)
		summaries = append(summaries, LineSummary{Index: idx, Item: item, Options: line.Options})
	}

	where := e.classify(pc.Postcode)

	var base Totals
	for i := range summaries {
		ls := &summaries[i]
		ls.AddOns = e.Fees.AddOnFee(ls.Options)
		ls.Installation = e.Fees.LineInstallFee(ls.Item, ls.Options, where.Local)
		base.Subtotal += ls.Item.Price
		base.AddOns += ls.AddOns
		base.Installation += ls.Installation
	}
	base.Callout = e.Fees.CalloutFee(resolved, where.Local)
	if e.Shipping != nil {
		base.Shipping = e.Shipping.Quote(pc.Postcode, where.Zone, len(resolved))
	}
	base.Grand = base.Subtotal + base.AddOns + base.Installation + base.Callout + base.Shipping

	summary := OrderSummary{
		Lines:     summaries,
		ItemCount: len(resolved),
		Postcode:  where.Postcode,
		Zone:      where.Zone,
		Local:     where.Local,
		Area:      where.Area,
		Base:      base,
		Display:   base,
	}
	if e.Currency != nil {
		summary.BaseCurrency = e.Currency.Base()
		summary.Currency = e.Currency.Resolve(pc.Currency)
		summary.Display = e.convert(base, summary.Currency)
	}
	return summary
}

func (e *Engine) lookup(id int) (catalog.Item, bool) {
	if e.Catalog == nil {
		return catalog.Item{}, false
	}
	return e.Catalog.Lookup(id)
}

func (e *Engine) classify(postcode string) geo.Classification {
	if e.Geo == nil {
		return geo.NewClassifier(nil, nil, geo.ZoneAUS).Classify(postcode)
	}
	return e.Geo.Classify(postcode)
}

func (e *Engine) convert(t Totals, code string) Totals {
	return Totals{
		Subtotal:     e.Currency.Convert(t.Subtotal, code),
		AddOns:       e.Currency.Convert(t.AddOns, code),
		Installation: e.Currency.Convert(t.Installation, code),
		Callout:      e.Currency.Convert(t.Callout, code),
		Shipping:     e.Currency.Convert(t.Shipping, code),
		Grand:        e.Currency.Convert(t.Grand, code),
	}
}
