package vin

import "strings"

// AudioRule lists the factory audio brands fitted by one make, in match
// priority order.
type AudioRule struct {
	Make     string
	Keywords []string
}

// AudioMatcher infers a premium audio brand from a make and free text.
type AudioMatcher struct {
	rules []AudioRule
}

// NewAudioMatcher keeps rules in the given order; the first rule whose make
// matches is the only one consulted.
func NewAudioMatcher(rules []AudioRule) *AudioMatcher {
	out := make([]AudioRule, 0, len(rules))
	for _, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				kw = append(kw, k)
			}
		}
		out = append(out, AudioRule{Make: strings.TrimSpace(r.Make), Keywords: kw})
	}
	return &AudioMatcher{rules: out}
}

// Match returns the first keyword of the make's rule that occurs in text,
// compared case-insensitively. It returns "" when nothing matches.
func (m *AudioMatcher) Match(vehicleMake, text string) string {
	if m == nil {
		return ""
	}
	vehicleMake = strings.TrimSpace(vehicleMake)
	haystack := strings.ToLower(text)
	for _, r := range m.rules {
		if !strings.EqualFold(r.Make, vehicleMake) {
			continue
		}
		for _, k := range r.Keywords {
			if strings.Contains(haystack, strings.ToLower(k)) {
				return k
			}
		}
		return ""
	}
	return ""
}
