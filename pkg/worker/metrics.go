package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal tracks handled fetches by strategy and outcome
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sw_fetch_total",
		Help: "Total intercepted fetches by strategy and outcome",
	}, []string{"strategy", "outcome"}) // outcome: forwarded, cache, network, fallback

	// FallbacksTotal tracks synthetic responses by resource class
	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sw_fallback_total",
		Help: "Total synthetic fallback responses by resource class",
	}, []string{"class"})

	// PrecacheAssets tracks install-time manifest population by result
	PrecacheAssets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sw_precache_assets_total",
		Help: "Total precached manifest assets by result",
	}, []string{"result"}) // "ok", "error"

	// StoresDropped counts stale stores removed during activation
	StoresDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sw_stores_dropped_total",
		Help: "Total stale cache stores dropped during activation",
	})

	// MessagesTotal counts client messages by type
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sw_messages_total",
		Help: "Total client messages received by type",
	}, []string{"type"})
)
