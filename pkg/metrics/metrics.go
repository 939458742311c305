// Package metrics provides the Prometheus registry reference for the
// offline worker. Metric variables are defined in their respective
// packages (cache, worker) to maintain modularity and avoid circular
// dependencies.
//
// This package documents all available metrics in one place.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registerer all worker metrics are registered with,
// automatically via promauto in their defining packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the worker metrics for the /metrics endpoint.
var Gatherer = prometheus.DefaultGatherer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - sw_cache_hits_total{backend} (Counter): Cache hits by backend (memory, redis, leveldb)
//   - sw_cache_misses_total (Counter): Cache misses
//   - sw_cache_stored_bytes_total{backend} (Counter): Bytes written into the cache
//   - sw_cache_errors_total{operation} (Counter): Cache operation errors
//
// Worker Metrics (pkg/worker):
//   - sw_fetch_total{strategy, outcome} (Counter): Intercepted fetches by strategy
//     (pass, cache_first, network_first) and outcome (forwarded, cache, network, fallback)
//   - sw_fallback_total{class} (Counter): Synthetic responses by resource class
//     (icon, api, image, generic)
//   - sw_precache_assets_total{result} (Counter): Install-time manifest population by result
//   - sw_stores_dropped_total (Counter): Stale stores removed during activation
//   - sw_messages_total{type} (Counter): Client messages by type
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(sw_cache_hits_total[5m])) /
//   (sum(rate(sw_cache_hits_total[5m])) + sum(rate(sw_cache_misses_total[5m])))
//
//   # Offline Fallback Rate
//   sum(rate(sw_fallback_total[5m])) / sum(rate(sw_fetch_total[5m]))
//
//   # Share of fetches answered from cache while offline
//   rate(sw_fetch_total{strategy="network_first",outcome="cache"}[5m])
