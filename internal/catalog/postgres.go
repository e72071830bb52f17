package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const listUnitsSQL = `SELECT id, brand, model, year_from, year_to, size, luxury, price_cents
FROM units
ORDER BY position, id`

const upsertUnitSQL = `INSERT INTO units (id, brand, model, year_from, year_to, size, luxury, price_cents, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    brand = EXCLUDED.brand,
    model = EXCLUDED.model,
    year_from = EXCLUDED.year_from,
    year_to = EXCLUDED.year_to,
    size = EXCLUDED.size,
    luxury = EXCLUDED.luxury,
    price_cents = EXCLUDED.price_cents,
    position = EXCLUDED.position`

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TxBeginner is the subset of pgxpool.Pool used when seeding.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresSource loads the catalog from the units table.
type PostgresSource struct {
	DB Querier
}

// Load implements Source.
func (s PostgresSource) Load(ctx context.Context) ([]Item, error) {
	if s.DB == nil {
		return nil, errors.New("catalog: postgres source not configured")
	}
	rows, err := s.DB.Query(ctx, listUnitsSQL)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it     Item
			luxury bool
		)
		if err := rows.Scan(&it.ID, &it.Brand, &it.Model, &it.YearFrom, &it.YearTo, &it.Size, &luxury, &it.Price); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		it.Luxury = Truthy(luxury)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return items, nil
}

// Seed upserts items into the units table preserving their order. All rows
// are written in one transaction; a failed upsert leaves the table untouched.
func Seed(ctx context.Context, db TxBeginner, items []Item) error {
	if db == nil {
		return errors.New("catalog: seed target not configured")
	}
	return pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		for pos, it := range items {
			if _, err := tx.Exec(ctx, upsertUnitSQL,
				it.ID, it.Brand, it.Model, it.YearFrom, it.YearTo, it.Size, bool(it.Luxury), it.Price, pos,
			); err != nil {
				return fmt.Errorf("upsert unit %d: %w", it.ID, err)
			}
		}
		return nil
	})
}

// Migrate applies the embedded catalog schema migrations to databaseURL.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// migrateURL rewrites postgres URLs to the scheme registered by the pgx/v5
// migrate driver.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
