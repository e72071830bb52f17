package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-headunit/internal/catalog"
)

func TestSeedCatalog(t *testing.T) {
	items, err := catalog.FileSource{}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, catalog.Item{
		ID: 0, Brand: "Toyota", Model: "Corolla (E170)", YearFrom: 2013, YearTo: 2018,
		Size: `9"`, Luxury: false, Price: 55000,
	}, items[0])
	require.Equal(t, 1, items[1].ID)
	require.True(t, bool(items[1].Luxury))
	require.Equal(t, int64(62000), items[1].Price)
}

func TestDecodeYAMLTruthyAndErrors(t *testing.T) {
	items, err := catalog.DecodeYAML([]byte(`
units:
  - {id: 4, brand: Audi, model: A4 (B8), luxury: "Y", price: "700.5"}
  - {id: 5, brand: Mazda, model: "3 (BM)", luxury: "0", price: "480"}
`))
	require.NoError(t, err)
	require.True(t, bool(items[0].Luxury))
	require.Equal(t, int64(70050), items[0].Price)
	require.False(t, bool(items[1].Luxury))

	_, err = catalog.DecodeYAML([]byte("units:\n  - {id: 1, brand: A, model: B, price: cheap}\n"))
	require.Error(t, err)

	_, err = catalog.DecodeYAML([]byte("units:\n  - {id: 1, colour: red, price: \"1\"}\n"))
	require.Error(t, err)
}

func TestNewServiceRejectsInvalidCatalog(t *testing.T) {
	_, err := catalog.NewService(catalog.ServiceConfig{Items: []catalog.Item{
		{ID: 1, Brand: "A", Model: "B"},
		{ID: 1, Brand: "A", Model: "C"},
	}})
	require.Error(t, err)

	_, err = catalog.NewService(catalog.ServiceConfig{Items: []catalog.Item{
		{ID: 2, Brand: "A", Model: "B", YearFrom: 2010, YearTo: 2005},
	}})
	require.Error(t, err)
}

func TestLookupAndCompatible(t *testing.T) {
	svc := newSeedService(t)

	it, ok := svc.Lookup(1)
	require.True(t, ok)
	require.Equal(t, "BMW", it.Brand)

	_, ok = svc.Lookup(42)
	require.False(t, ok)

	_, err := svc.Get(42)
	require.True(t, errors.Is(err, catalog.ErrNotFound))

	require.Len(t, svc.Compatible("toyota", 2015), 1)
	require.Empty(t, svc.Compatible("toyota", 2019))
	require.Len(t, svc.Compatible("BMW", 0), 1)
	require.Empty(t, svc.Compatible("", 2015))
}

type stubSource struct{ err error }

func (s stubSource) Load(context.Context) ([]catalog.Item, error) { return nil, s.err }

func TestLoadPropagatesSourceError(t *testing.T) {
	_, err := catalog.Load(context.Background(), stubSource{err: errors.New("boom")}, catalog.ServiceConfig{})
	require.ErrorContains(t, err, "boom")

	_, err = catalog.Load(context.Background(), nil, catalog.ServiceConfig{})
	require.Error(t, err)
}
