package pricing

import (
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/money"
)

// FeeSchedule holds the configurable fee rates.
type FeeSchedule struct {
	InstallStandard money.Money
	InstallLuxury   money.Money
	Callout         money.Money
	GPS             money.Money
	Dashcam         money.Money
}

// InstallFee returns the installation rate for item: the luxury tier when the
// item is flagged luxury, the standard tier otherwise. Gating on locality and
// the line's install flag is the caller's concern.
func (f FeeSchedule) InstallFee(item catalog.Item) money.Money {
	if item.Luxury {
		return f.InstallLuxury
	}
	return f.InstallStandard
}

// LineInstallFee applies the install gate for a single line.
func (f FeeSchedule) LineInstallFee(item catalog.Item, opts Options, isLocal bool) money.Money {
	if !isLocal || !opts.Install {
		return 0
	}
	return f.InstallFee(item)
}

// CalloutFee is a whole-order charge levied at most once: the order must have
// at least one line, one of them must want a callout, and the postcode must be
// inside a service area.
func (f FeeSchedule) CalloutFee(lines []Line, isLocal bool) money.Money {
	if !isLocal || len(lines) == 0 {
		return 0
	}
	for _, line := range lines {
		if line.Options.Callout {
			return f.Callout
		}
	}
	return 0
}

// AddOnFee sums the flat add-on amounts selected on one line. Add-ons ship
// anywhere and are not gated by locality.
func (f FeeSchedule) AddOnFee(opts Options) money.Money {
	var total money.Money
	if opts.GPS {
		total += f.GPS
	}
	if opts.Dashcam {
		total += f.Dashcam
	}
	return total
}
