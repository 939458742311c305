// Command offline-proxy runs the offline caching worker in front of an
// upstream origin. It is the single deployed worker binary: one
// configuration file (or environment) selects the version, manifest,
// route patterns and cache backend.
package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/shopcircle/offline-worker/pkg/cache"
	"github.com/shopcircle/offline-worker/pkg/config"
	"github.com/shopcircle/offline-worker/pkg/fallback"
	"github.com/shopcircle/offline-worker/pkg/logging"
	"github.com/shopcircle/offline-worker/pkg/metrics"
	"github.com/shopcircle/offline-worker/pkg/worker"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		bootLogger := logging.Setup(logging.DefaultConfig())
		bootLogger.Fatal().Err(err).Msg("Configuration error")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("offline-proxy")

	store, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Cache store setup failed")
	}
	defer closeStore()

	upstream, err := cfg.UpstreamURL()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid upstream")
	}

	w, err := worker.New(worker.Options{
		Version:   cfg.Version,
		CacheName: cfg.CacheName,
		Precache:  cfg.Precache,
		Upstream:  upstream,
		Store:     store,
		Fallbacks: fallback.NewTable(fallback.Config{
			IconPathPrefix: cfg.IconPathPrefix,
			APIHosts:       cfg.APIHosts,
			ImageHosts:     cfg.ImageHosts,
		}),
		CacheFirst: worker.StaticAssetMatcher(cfg.IconPathPrefix, cfg.ManifestPath),
		Claimer: worker.ClaimerFunc(func(ctx context.Context) error {
			// A fronting proxy governs every client by construction.
			logger.Info().Msg("Claimed clients")
			return nil
		}),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Worker setup failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := w.Install(ctx); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Install failed")
	}
	if err := w.Activate(ctx); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("Activate failed")
	}
	cancel()

	addr := ":" + getEnv("PORT", "8080")
	logger.Info().
		Str("addr", addr).
		Str("upstream", cfg.Upstream).
		Str("store", w.StoreName()).
		Msg("Starting offline proxy")

	if err := http.ListenAndServe(addr, newRouter(w, upstream, logger)); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// loadConfig reads the YAML file named by CONFIG, or assembles a
// configuration from environment variables.
func loadConfig() (config.Config, error) {
	if path := os.Getenv("CONFIG"); path != "" {
		return config.Load(path)
	}

	cfg := config.Default()
	cfg.Version = getEnv("VERSION", "")
	cfg.Upstream = getEnv("UPSTREAM", "")
	cfg.Store.Backend = getEnv("STORE_BACKEND", "memory")
	cfg.Store.Redis.Addr = getEnv("REDIS_URL", "localhost:6379")
	cfg.Store.LevelDB.Path = getEnv("LEVELDB_PATH", "./data/cache")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func buildStore(cfg config.Config, logger zerolog.Logger) (cache.Store, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Store.Redis.Addr,
			DB:   cfg.Store.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		logger.Info().Str("addr", cfg.Store.Redis.Addr).Msg("Connected to Redis")
		return cache.NewRedisStore(client), func() { client.Close() }, nil

	case "leveldb":
		store, err := cache.OpenLevelStore(cfg.Store.LevelDB.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.Store.LevelDB.Path).Msg("Opened LevelDB cache")
		return store, func() { store.Close() }, nil

	default:
		return cache.NewMemoryStore(), func() {}, nil
	}
}

// newRouter builds the serving surface: the catch-all interception
// handler plus the control, health and metrics endpoints.
func newRouter(w *worker.Worker, upstream *url.URL, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/-/healthz", func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Gatherer, promhttp.HandlerOpts{}))
	r.Post("/-/control", controlHandler(w, logger))
	r.Handle("/*", fetchHandler(w, upstream, logger))

	return r
}

// controlHandler is the client message channel: a narrow command
// endpoint accepting one message shape. No body is returned; the
// effect is observed through the worker becoming active.
func controlHandler(w *worker.Worker, logger zerolog.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		var msg worker.Message
		if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
			http.Error(rw, "invalid message", http.StatusBadRequest)
			return
		}
		w.HandleMessage(req.Context(), msg)
		rw.WriteHeader(http.StatusAccepted)
	}
}

// fetchHandler rebuilds the incoming request against the upstream
// origin and hands it to the worker, which decides between network,
// cache and synthetic fallback.
func fetchHandler(w *worker.Worker, upstream *url.URL, logger zerolog.Logger) http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		target := *req.URL
		target.Scheme = upstream.Scheme
		target.Host = upstream.Host

		out, err := http.NewRequestWithContext(req.Context(), req.Method, target.String(), req.Body)
		if err != nil {
			http.Error(rw, "bad request", http.StatusBadRequest)
			return
		}
		out.Header = req.Header.Clone()

		resp, err := w.HandleFetch(out)
		if err != nil {
			logger.Error().Err(err).Str("url", target.String()).Msg("Fetch failed")
			http.Error(rw, "upstream request failed", http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			for _, value := range values {
				rw.Header().Add(key, value)
			}
		}
		rw.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(rw, resp.Body); err != nil {
			logger.Warn().Err(err).Msg("Failed to write response body")
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
