// Copyright 2025 R5 Labs
// This file is part of the R5 Core library.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

// Package metrics is a thin wrapper around prometheus/client_golang,
// grounded on other_examples/64ba0c18_primeanetwork-rpc-guard, the one file
// in the retrieval pack that wires client_golang end to end.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DispatchOK counts successful dispatches by method.
	DispatchOK = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_dispatch_ok_total", Help: "Successful RPC dispatches."},
		[]string{"method"},
	)
	// DispatchErrors counts failed dispatches by method and error class.
	DispatchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_dispatch_errors_total", Help: "Failed RPC dispatches."},
		[]string{"method", "class"},
	)
	// CacheHits/CacheMisses/CacheWrites instrument the cache decorator.
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_cache_hits_total", Help: "Cache decorator hits."},
		[]string{"operation"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_cache_misses_total", Help: "Cache decorator misses."},
		[]string{"operation"},
	)
	CacheWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_cache_writes_total", Help: "Cache decorator writes."},
		[]string{"operation"},
	)
	// RateLimitFailures counts rate-limit-store infrastructure failures
	// (fail-open events), spec.md §4.5.2.
	RateLimitFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_ratelimit_store_failures_total", Help: "Rate-limit store failures (fail-open)."},
		[]string{"backend"},
	)
	// RateLimitRejections counts requests actually denied by a rate-limit check.
	RateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_ratelimit_rejections_total", Help: "Requests rejected by the rate limiter."},
		[]string{"method"},
	)
	// WSConnections is a gauge of currently open WebSocket connections.
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "gateway_ws_connections", Help: "Currently open WebSocket connections."},
	)
	// WSSubscriptions is a gauge of currently active subscriptions.
	WSSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "gateway_ws_subscriptions", Help: "Currently active subscriptions."},
	)
	// WSDuplicatesSuppressed counts notification frames suppressed by the
	// subscription runtime's duplicate-suppression cache.
	WSDuplicatesSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "gateway_ws_duplicates_suppressed_total", Help: "Notification frames suppressed as duplicates."},
	)
)

func init() {
	prometheus.MustRegister(
		DispatchOK, DispatchErrors,
		CacheHits, CacheMisses, CacheWrites,
		RateLimitFailures, RateLimitRejections,
		WSConnections, WSSubscriptions, WSDuplicatesSuppressed,
	)
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
