package geo

import (
	"strconv"
	"strings"
)

// Zone is a coarse geographic bucket driving the shipping base rate.
type Zone string

const (
	// ZoneQLD covers Queensland postcodes outside more specific sub-regions.
	ZoneQLD Zone = "QLD"
	// ZoneGC covers the Gold Coast sub-region of Queensland.
	ZoneGC Zone = "GC"
	// ZoneAUS is the national fallback zone.
	ZoneAUS Zone = "AUS"
)

// ZoneRule maps an inclusive postcode range to a zone. Rules are evaluated in
// order and the first match wins, so more specific ranges must come first.
type ZoneRule struct {
	Zone Zone
	From int
	To   int
}

// ServiceArea is a named inclusive postcode range served by on-site installers.
type ServiceArea struct {
	Name string
	From int
	To   int
}

// Classification is the result of classifying a postcode.
type Classification struct {
	Postcode string `json:"postcode"`
	Zone     Zone   `json:"zone"`
	Local    bool   `json:"local"`
	Area     string `json:"area,omitempty"`
}

// Classifier resolves postcodes into zones and service-area membership.
type Classifier struct {
	zones    []ZoneRule
	areas    []ServiceArea
	fallback Zone
}

// NewClassifier constructs a Classifier. An empty fallback defaults to ZoneAUS.
func NewClassifier(zones []ZoneRule, areas []ServiceArea, fallback Zone) *Classifier {
	if fallback == "" {
		fallback = ZoneAUS
	}
	return &Classifier{
		zones:    append([]ZoneRule(nil), zones...),
		areas:    append([]ServiceArea(nil), areas...),
		fallback: fallback,
	}
}

// Classify never fails: postcodes that do not parse as integers resolve to the
// fallback zone and are never local.
func (c *Classifier) Classify(postcode string) Classification {
	trimmed := strings.TrimSpace(postcode)
	result := Classification{Postcode: trimmed, Zone: c.fallback}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return result
	}
	result.Zone = c.zoneFor(n)
	if area, ok := c.areaFor(n); ok {
		result.Local = true
		result.Area = area.Name
	}
	return result
}

// Fallback returns the zone used when no rule matches.
func (c *Classifier) Fallback() Zone { return c.fallback }

func (c *Classifier) zoneFor(n int) Zone {
	for _, rule := range c.zones {
		if n >= rule.From && n <= rule.To {
			return rule.Zone
		}
	}
	return c.fallback
}

func (c *Classifier) areaFor(n int) (ServiceArea, bool) {
	for _, area := range c.areas {
		if n >= area.From && n <= area.To {
			return area, true
		}
	}
	return ServiceArea{}, false
}
