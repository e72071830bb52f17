package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/config"
	"github.com/noah-isme/backend-headunit/internal/obs"
	"github.com/noah-isme/backend-headunit/internal/pricing"
	"github.com/noah-isme/backend-headunit/internal/vin"
)

// Pricing bundles the read-only collaborators shared by the API and the
// offline tools.
type Pricing struct {
	Rules   *config.Rules
	Catalog *catalog.Service
	Engine  *pricing.Engine
}

// NewPricing loads rules and catalog and assembles the engine. An empty
// rulesFile uses the embedded rule tables.
func NewPricing(ctx context.Context, rulesFile string, src catalog.Source) (*Pricing, error) {
	rules, err := config.LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = catalog.FileSource{}
	}
	items, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	svc, err := catalog.NewService(catalog.ServiceConfig{Items: items})
	if err != nil {
		return nil, err
	}
	return &Pricing{Rules: rules, Catalog: svc, Engine: NewEngine(rules, svc)}, nil
}

// NewEngine wires the rule tables around a catalog lookup.
func NewEngine(rules *config.Rules, lookup pricing.CatalogLookup) *pricing.Engine {
	return &pricing.Engine{
		Catalog:  lookup,
		Geo:      rules.Classifier(),
		Fees:     rules.FeeSchedule(),
		Shipping: rules.Estimator(),
		Currency: rules.Converter(),
	}
}

// AudioMatcher converts the premium-audio table into a VIN matcher.
func AudioMatcher(rules *config.Rules) *vin.AudioMatcher {
	out := make([]vin.AudioRule, 0, len(rules.PremiumAudio))
	for _, r := range rules.PremiumAudio {
		out = append(out, vin.AudioRule{Make: r.Make, Keywords: r.Keywords})
	}
	return vin.NewAudioMatcher(out)
}

// CatalogSource picks the catalog source named by cfg. The pool is only used
// for the postgres source.
func CatalogSource(cfg *config.Config, pool *pgxpool.Pool) catalog.Source {
	if cfg.UsesPostgres() {
		return catalog.PostgresSource{DB: pool}
	}
	return catalog.FileSource{Path: cfg.CatalogFile}
}

// OpenPostgres connects a traced pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, databaseURL, applicationName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// OpenRedis parses url into a client. Instrumentation is left to the caller.
func OpenRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}
