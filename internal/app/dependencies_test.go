package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/app"
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/config"
	"github.com/noah-isme/backend-headunit/internal/pricing"
)

func TestNewPricingDefaults(t *testing.T) {
	p, err := app.NewPricing(context.Background(), "", nil)
	require.NoError(t, err)
	require.Len(t, p.Catalog.All(), 2)

	got := p.Engine.PriceOrder(
		[]pricing.Line{{CatalogID: 0, Options: pricing.Options{Install: true, Callout: true}}},
		pricing.Context{Postcode: "4000"},
	)
	require.EqualValues(t, 71295, got.Base.Grand)
}

func TestNewPricingRejectsBadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_currency: [\n"), 0o600))

	_, err := app.NewPricing(context.Background(), path, nil)
	require.Error(t, err)
}

func TestNewPricingCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`units:
  - id: 7
    brand: Mazda
    model: "3 (BM)"
    year_from: 2014
    year_to: 2019
    size: '8"'
    luxury: "no"
    price: "480.00"
`), 0o600))

	p, err := app.NewPricing(context.Background(), "", catalog.FileSource{Path: path})
	require.NoError(t, err)
	item, ok := p.Catalog.Lookup(7)
	require.True(t, ok)
	require.EqualValues(t, 48000, item.Price)
}

func TestAudioMatcherFromRules(t *testing.T) {
	m := app.AudioMatcher(config.DefaultRules())
	require.Equal(t, "Harman Kardon", m.Match("BMW", "330i harman kardon"))
	require.Equal(t, "JBL", m.Match("toyota", "Camry SL JBL"))
	require.Empty(t, m.Match("Kia", "JBL"))
}

func TestCatalogSourceSelection(t *testing.T) {
	cfg := &config.Config{CatalogSource: config.CatalogSourceFile, CatalogFile: "units.yaml"}
	require.Equal(t, catalog.FileSource{Path: "units.yaml"}, app.CatalogSource(cfg, nil))

	cfg.CatalogSource = config.CatalogSourcePostgres
	_, ok := app.CatalogSource(cfg, nil).(catalog.PostgresSource)
	require.True(t, ok)
}
