package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/backend-headunit/internal/money"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Source supplies the ordered catalog at startup.
type Source interface {
	Load(ctx context.Context) ([]Item, error)
}

// FileSource loads the catalog from a YAML document. An empty Path uses the
// embedded seed catalog.
type FileSource struct {
	Path string
}

type catalogFile struct {
	Units []Item `yaml:"units"`
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) ([]Item, error) {
	_ = ctx
	data := defaultCatalog
	if path := strings.TrimSpace(s.Path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file: %w", err)
		}
		data = raw
	}
	return DecodeYAML(data)
}

// DecodeYAML parses a catalog document and converts prices into minor units.
func DecodeYAML(data []byte) ([]Item, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	items := make([]Item, 0, len(doc.Units))
	for _, it := range doc.Units {
		price, err := money.Parse(it.PriceText)
		if err != nil {
			return nil, fmt.Errorf("unit %d: %w", it.ID, err)
		}
		it.Price = price
		it.PriceText = ""
		items = append(items, it)
	}
	return items, nil
}

// Validate checks catalog invariants: unique non-negative ids, non-negative
// prices and ordered year ranges.
func Validate(items []Item) error {
	seen := make(map[int]struct{}, len(items))
	var errs []error
	for _, it := range items {
		if it.ID < 0 {
			errs = append(errs, fmt.Errorf("unit %d: negative id", it.ID))
		}
		if _, dup := seen[it.ID]; dup {
			errs = append(errs, fmt.Errorf("unit %d: duplicate id", it.ID))
		}
		seen[it.ID] = struct{}{}
		if strings.TrimSpace(it.Brand) == "" || strings.TrimSpace(it.Model) == "" {
			errs = append(errs, fmt.Errorf("unit %d: brand and model are required", it.ID))
		}
		if it.Price < 0 {
			errs = append(errs, fmt.Errorf("unit %d: negative price", it.ID))
		}
		if it.YearFrom != 0 && it.YearTo != 0 && it.YearFrom > it.YearTo {
			errs = append(errs, fmt.Errorf("unit %d: year_from after year_to", it.ID))
		}
	}
	return errors.Join(errs...)
}
