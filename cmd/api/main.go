package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-headunit/internal/app"
	"github.com/noah-isme/backend-headunit/internal/cache"
	"github.com/noah-isme/backend-headunit/internal/cart"
	"github.com/noah-isme/backend-headunit/internal/catalog"
	"github.com/noah-isme/backend-headunit/internal/checkout"
	"github.com/noah-isme/backend-headunit/internal/common"
	"github.com/noah-isme/backend-headunit/internal/config"
	"github.com/noah-isme/backend-headunit/internal/health"
	"github.com/noah-isme/backend-headunit/internal/lock"
	"github.com/noah-isme/backend-headunit/internal/obs"
	"github.com/noah-isme/backend-headunit/internal/ratelimit"
	"github.com/noah-isme/backend-headunit/internal/resilience"
	"github.com/noah-isme/backend-headunit/internal/security"
	"github.com/noah-isme/backend-headunit/internal/shipping"
	"github.com/noah-isme/backend-headunit/internal/vin"
)

const serviceName = "headunit-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "headunit")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)
	if err := resilience.RegisterMetrics(nil); err != nil {
		logger.Fatal().Err(err).Msg("register upstream metrics")
	}

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		if cfg.CatalogMigrate {
			if err := catalog.Migrate(cfg.DatabaseURL); err != nil {
				logger.Fatal().Err(err).Msg("migrate catalog")
			}
		}
		pool, err = app.OpenPostgres(ctx, cfg.DatabaseURL, serviceName)
		if err != nil {
			logger.Fatal().Err(err).Msg("open database")
		}
		defer pool.Close()
	}

	redisClient, err := app.OpenRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	pricingDeps, err := app.NewPricing(ctx, cfg.RulesFile, app.CatalogSource(cfg, pool))
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise pricing")
	}
	logger.Info().
		Str("catalog_source", cfg.CatalogSource).
		Int("units", len(pricingDeps.Catalog.All())).
		Str("base_currency", pricingDeps.Rules.BaseCurrency).
		Msg("pricing ready")

	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: pricingDeps.Catalog})

	cartSvc := &cart.Service{
		Store:   cart.RedisStore{R: redisClient, TTL: cfg.CartTTL},
		Catalog: pricingDeps.Catalog,
		Locker:  lock.Locker{R: redisClient, RetryBackoff: 25 * time.Millisecond, MaxWait: 2 * time.Second},
		LockTTL: 5 * time.Second,
	}
	cartHandler := &cart.Handler{Svc: cartSvc}

	checkoutHandler := &checkout.Handler{Svc: &checkout.Service{Carts: cartSvc, Engine: pricingDeps.Engine}}

	vinHandler := &vin.Handler{Svc: &vin.Service{
		Decoder: vin.NewNHTSAClient(cfg.VINBaseURL, cfg.VINTimeout),
		Cache:   cache.NewJSON(redisClient, cfg.VINCacheTTL),
		Catalog: pricingDeps.Catalog,
		Audio:   app.AudioMatcher(pricingDeps.Rules),
	}}
	vinLimit := ratelimit.Handler{
		Limiter: ratelimit.SlidingWindow{Client: redisClient, Prefix: "ratelimit:"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("vin"),
			Window: cfg.VINRateLimitWindow,
			Max:    cfg.VINRateLimitMax,
		},
		OnError: func(_ *http.Request, err error) { logger.Warn().Err(err).Msg("vin rate limiter unavailable") },
	}

	shipHandler := &shipping.Handler{Geo: pricingDeps.Engine.Geo, Estimator: pricingDeps.Engine.Shipping}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	limiterStore, err := ratelimit.NewRedisStore(redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit store")
	}
	globalLimit, err := ratelimit.NewGlobal(cfg.RateLimit, limiterStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit")
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.CookieSecure, HSTSMaxAge: 31536000}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", common.SessionHeader, common.IdempotencyHeader},
		ExposedHeaders:   []string{common.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	probes := []health.Probe{health.RedisProbe(redisClient, envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300))}
	if pool != nil {
		probes = append(probes, health.PostgresProbe(pool, envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500)))
	}
	healthHandler := health.Handler{Probes: probes}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(globalLimit)
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		v.Use(common.Session(common.SessionConfig{
			CookieName: cfg.SessionCookieName,
			Domain:     cfg.CookieDomain,
			Secure:     cfg.CookieSecure,
			SameSite:   cfg.CookieSameSite,
			TTL:        cfg.CartTTL,
		}))
		v.Use(obs.RequestLogger{Logger: logger}.Middleware)
		if cfg.CSRFEnabled {
			v.Use(security.CSRF{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain}.Middleware)
		}

		v.Get("/units", catalogHandler.Units)
		v.Get("/units/{id}", catalogHandler.Unit)

		v.With(vinLimit.Middleware).Post("/vin/decode", vinHandler.Decode)

		v.Route("/cart", func(c chi.Router) {
			c.Get("/", cartHandler.Get)
			c.Get("/summary", checkoutHandler.Summary)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/items", cartHandler.AddItem)
				g.Patch("/items/{index}", cartHandler.UpdateItem)
				g.Delete("/items/{index}", cartHandler.RemoveItem)
				g.Put("/context", cartHandler.SetContext)
				g.Delete("/", cartHandler.Clear)
			})
		})

		v.Post("/quote", checkoutHandler.Quote)
		v.Get("/currencies", checkoutHandler.Currencies)
		v.Post("/shipping/quote", shipHandler.Quote)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	waitForShutdown(srv, logger)
}

func waitForShutdown(srv *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	health.SetReady(false)
	logger.Info().Msg("server draining")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
