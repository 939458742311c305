// Package worker implements the offline caching worker: lifecycle
// management (install, activate), fetch interception with two caching
// strategies, and the client message channel.
//
// The worker owns one named cache store per deployed version
// ("<cache_name>-v<version>"). Install pre-populates the current store
// from the static asset manifest; activation drops every other store
// and claims open clients. Fetch handling is described in strategy.go.
package worker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shopcircle/offline-worker/pkg/cache"
	"github.com/shopcircle/offline-worker/pkg/fallback"
)

// State is the worker lifecycle state.
type State int32

const (
	// StateNew is the state before Install has run.
	StateNew State = iota

	// StateInstalling covers cache pre-population.
	StateInstalling

	// StateWaiting means installed and ready to activate.
	StateWaiting

	// StateActivating covers stale-store cleanup and client claiming.
	StateActivating

	// StateActive means the worker governs fetches.
	StateActive

	// StateRedundant means a newer worker superseded this one.
	StateRedundant
)

// String returns the lifecycle state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInstalling:
		return "installing"
	case StateWaiting:
		return "waiting"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateRedundant:
		return "redundant"
	default:
		return "unknown"
	}
}

// MessageSkipWaiting is the single command accepted on the client
// message channel: force a waiting worker to activate immediately.
const MessageSkipWaiting = "SKIP_WAITING"

// Message is the shape of a client message.
type Message struct {
	Type string `json:"type"`
}

// ClientClaimer takes control of currently open clients during
// activation. Implementations are invoked best-effort; failures are
// logged, never fatal.
type ClientClaimer interface {
	Claim(ctx context.Context) error
}

// ClaimerFunc adapts a function to the ClientClaimer interface.
type ClaimerFunc func(ctx context.Context) error

// Claim implements ClientClaimer.
func (f ClaimerFunc) Claim(ctx context.Context) error { return f(ctx) }

// Options configures a Worker.
type Options struct {
	// Version identifies the deployment; it is embedded in the store
	// name so activation can tell current from stale. Required.
	Version string

	// CacheName is the store name prefix (default "offline").
	CacheName string

	// Precache is the static asset manifest: URL paths fetched and
	// stored at install time.
	Precache []string

	// Upstream is the origin precache paths (and relative fetches) are
	// resolved against. Required when Precache is non-empty.
	Upstream *url.URL

	// Store is the cache backend. Required.
	Store cache.Store

	// Client performs network fetches for the strategies. Defaults to
	// an http.Client with a 30s timeout.
	Client *http.Client

	// Fallbacks synthesizes last-resort responses. Defaults to a table
	// with only the generic 503 rule.
	Fallbacks *fallback.Table

	// CacheFirst selects requests handled by the cache-first strategy
	// (static, rarely-changing assets). Defaults to never, i.e. all
	// eligible requests go network-first.
	CacheFirst func(*http.Request) bool

	// Claimer is invoked after activation cleanup. Optional.
	Claimer ClientClaimer

	// Logger is the worker logger. Defaults to the global logger with
	// component=worker.
	Logger *zerolog.Logger
}

// Worker is the offline caching worker. One instance exists per
// worker-script evaluation; its four handlers (Install, Activate,
// HandleFetch, HandleMessage) map the platform's install/activate/
// fetch/message events.
type Worker struct {
	state atomic.Int32

	storeName  string
	store      cache.Store
	precache   []string
	upstream   *url.URL
	client     *http.Client
	transport  http.RoundTripper
	fallbacks  *fallback.Table
	cacheFirst func(*http.Request) bool
	claimer    ClientClaimer
	logger     zerolog.Logger
}

// New creates a Worker from opts.
func New(opts Options) (*Worker, error) {
	if opts.Version == "" {
		return nil, fmt.Errorf("version is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if len(opts.Precache) > 0 && opts.Upstream == nil {
		return nil, fmt.Errorf("upstream is required when precache paths are set")
	}

	cacheName := opts.CacheName
	if cacheName == "" {
		cacheName = "offline"
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	fallbacks := opts.Fallbacks
	if fallbacks == nil {
		fallbacks = fallback.NewTable(fallback.Config{})
	}

	cacheFirst := opts.CacheFirst
	if cacheFirst == nil {
		cacheFirst = func(*http.Request) bool { return false }
	}

	var logger zerolog.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = log.With().Str("component", "worker").Logger()
	}

	storeName := fmt.Sprintf("%s-v%s", cacheName, opts.Version)

	return &Worker{
		storeName:  storeName,
		store:      opts.Store,
		precache:   opts.Precache,
		upstream:   opts.Upstream,
		client:     client,
		transport:  transport,
		fallbacks:  fallbacks,
		cacheFirst: cacheFirst,
		claimer:    opts.Claimer,
		logger:     logger.With().Str("store", storeName).Logger(),
	}, nil
}

// StoreName returns the current versioned store name.
func (w *Worker) StoreName() string {
	return w.storeName
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
	w.logger.Debug().Str("state", s.String()).Msg("Lifecycle transition")
}

// MarkRedundant records that a newer worker superseded this one.
func (w *Worker) MarkRedundant() {
	w.setState(StateRedundant)
}
