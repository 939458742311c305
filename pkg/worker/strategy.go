package worker

import (
	"net/http"
	"strings"

	"github.com/shopcircle/offline-worker/pkg/cache"
	"github.com/shopcircle/offline-worker/pkg/router"
)

// HandleFetch produces a response for one intercepted request.
//
// Ineligible requests (non-GET, non-http scheme, local hosts) are
// forwarded to the network untouched. Eligible requests run one of two
// strategies, chosen once:
//
//   - cache-first, for static assets: cached snapshot wins, the network
//     is only consulted on a miss, and a network failure synthesizes a
//     fallback.
//   - network-first, for everything else: fresh response wins and 2xx
//     responses are snapshotted into the store; on network failure the
//     cached snapshot is served, and failing that the fallback table.
//
// Concurrent fetches of the same URL are handled independently, with no
// coalescing. Duplicate writes are harmless because snapshots are
// immutable and per-key replacement is atomic.
func (w *Worker) HandleFetch(req *http.Request) (*http.Response, error) {
	d := router.Evaluate(req)
	if !d.Eligible {
		w.logger.Debug().Str("url", req.URL.String()).Str("rule", d.Rule).Msg("Passing request through")
		FetchesTotal.WithLabelValues("pass", "forwarded").Inc()
		return w.transport.RoundTrip(outbound(req))
	}

	if w.cacheFirst(req) {
		return w.fetchCacheFirst(req)
	}
	return w.fetchNetworkFirst(req)
}

func (w *Worker) fetchCacheFirst(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := cache.NewKey(req)

	entry, err := w.store.Match(ctx, w.storeName, key)
	if err == nil {
		FetchesTotal.WithLabelValues("cache_first", "cache").Inc()
		return cache.EntryToResponse(entry), nil
	}
	if err != cache.ErrCacheMiss {
		w.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("Cache match error")
	}

	resp, err := w.client.Do(outbound(req))
	if err != nil {
		w.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("Static asset unreachable")
		return w.synthesize(req, "cache_first"), nil
	}

	FetchesTotal.WithLabelValues("cache_first", "network").Inc()
	return resp, nil
}

func (w *Worker) fetchNetworkFirst(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := cache.NewKey(req)

	resp, err := w.client.Do(outbound(req))
	if err == nil {
		// Only successful responses are cached; error statuses pass
		// through unmodified and leave the store untouched.
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			entry, err := cache.ResponseToEntry(resp)
			if err != nil {
				w.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("Snapshot failed")
			} else if err := w.store.Put(ctx, w.storeName, key, entry); err != nil {
				w.logger.Warn().Err(err).Str("url", req.URL.String()).Msg("Cache write failed")
			}
		}
		FetchesTotal.WithLabelValues("network_first", "network").Inc()
		return resp, nil
	}

	w.logger.Debug().Err(err).Str("url", req.URL.String()).Msg("Network failed, trying cache")

	entry, merr := w.store.Match(ctx, w.storeName, key)
	if merr == nil {
		FetchesTotal.WithLabelValues("network_first", "cache").Inc()
		return cache.EntryToResponse(entry), nil
	}
	if merr != cache.ErrCacheMiss {
		w.logger.Warn().Err(merr).Str("url", req.URL.String()).Msg("Cache match error")
	}

	return w.synthesize(req, "network_first"), nil
}

func (w *Worker) synthesize(req *http.Request, strategy string) *http.Response {
	class := w.fallbacks.Classify(req)
	FetchesTotal.WithLabelValues(strategy, "fallback").Inc()
	FallbacksTotal.WithLabelValues(class).Inc()
	w.logger.Info().Str("url", req.URL.String()).Str("class", class).Msg("Serving synthetic fallback")
	return w.fallbacks.Synthesize(req)
}

// outbound clones a possibly server-received request into a form the
// http client accepts (RequestURI must be empty on outgoing requests).
func outbound(req *http.Request) *http.Request {
	clone := req.Clone(req.Context())
	clone.RequestURI = ""
	return clone
}

// StaticAssetMatcher returns a cache-first selector for the web app
// manifest and icon assets, the resource classes whose content only
// changes with a deployment.
func StaticAssetMatcher(iconPathPrefix, manifestPath string) func(*http.Request) bool {
	return func(req *http.Request) bool {
		if manifestPath != "" && req.URL.Path == manifestPath {
			return true
		}
		return iconPathPrefix != "" && strings.HasPrefix(req.URL.Path, iconPathPrefix)
	}
}
