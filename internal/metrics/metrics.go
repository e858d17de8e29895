// Package metrics holds the Prometheus collectors shared by the dashboard
// client and the reference backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "village"

var (
	// CacheRefreshes counts full cache refreshes by outcome ("ok" or "error").
	CacheRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "refreshes_total",
		Help:      "Full resource cache refreshes by cache and result.",
	}, []string{"cache", "result"})

	// CacheStaleOverwrites counts refreshes applied after the cache changed
	// while the request was in flight.
	CacheStaleOverwrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "stale_overwrites_total",
		Help:      "Refresh results applied over a newer cache version.",
	}, []string{"cache"})

	// PushEvents counts inbound push events by type and outcome
	// ("handled", "irrelevant", "unknown").
	PushEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "push",
		Name:      "events_total",
		Help:      "Inbound push events by type and outcome.",
	}, []string{"type", "outcome"})

	// PushPublished counts events published by the backend.
	PushPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "push",
		Name:      "published_total",
		Help:      "Push events published by room kind and result.",
	}, []string{"room", "result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
