// Package metrics exposes Prometheus collectors for searches, sessions and
// the HTTP API.
package metrics

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "describo_searches_total",
			Help: "Total number of product searches",
		},
		[]string{"input_type"},
	)

	searchResultsEmpty = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "describo_search_empty_results_total",
			Help: "Searches that matched no product",
		},
	)

	searchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "describo_search_duration_seconds",
			Help:    "Time spent extracting keywords and matching products",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
		},
	)

	interactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "describo_interactions_total",
			Help: "Interactions appended to session logs, by action kind",
		},
		[]string{"kind"},
	)

	gateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "describo_gate_decisions_total",
			Help: "Checkout gate outcomes",
		},
		[]string{"outcome"}, // human or challenge
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "describo_sessions_active",
			Help: "Number of live sessions",
		},
	)

	sessionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "describo_sessions_expired_total",
			Help: "Sessions evicted for idleness",
		},
	)

	transcriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "describo_transcriptions_total",
			Help: "Speech-to-text attempts",
		},
		[]string{"result"}, // ok or error
	)

	analyticsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "describo_analytics_dropped_total",
			Help: "Search events dropped because the recorder queue was full",
		},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "describo_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "describo_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	registered atomic.Bool
)

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	if !registered.CompareAndSwap(false, true) {
		return
	}
	prometheus.MustRegister(
		searchesTotal,
		searchResultsEmpty,
		searchDurationSeconds,
		interactionsTotal,
		gateDecisionsTotal,
		sessionsActive,
		sessionsExpiredTotal,
		transcriptionsTotal,
		analyticsDroppedTotal,
		httpRequestsTotal,
		httpRequestDurationSeconds,
	)
}

// ObserveSearch records one search.
func ObserveSearch(inputType string, results int, took time.Duration) {
	searchesTotal.WithLabelValues(inputType).Inc()
	if results == 0 {
		searchResultsEmpty.Inc()
	}
	searchDurationSeconds.Observe(took.Seconds())
}

// ObserveInteraction counts an appended interaction. Actions are an open
// vocabulary, so they are folded into a few kinds to bound cardinality.
func ObserveInteraction(action string) {
	interactionsTotal.WithLabelValues(ActionKind(action)).Inc()
}

// ActionKind buckets an action name for labelling.
func ActionKind(action string) string {
	switch {
	case action == "search":
		return "search"
	case strings.HasPrefix(action, "voice"):
		return "voice"
	case strings.HasPrefix(action, "checkout"):
		return "checkout"
	case strings.HasPrefix(action, "product"), strings.HasPrefix(action, "example"):
		return "browse"
	default:
		return "other"
	}
}

// ObserveGate records a checkout gate decision.
func ObserveGate(human bool) {
	if human {
		gateDecisionsTotal.WithLabelValues("human").Inc()
		return
	}
	gateDecisionsTotal.WithLabelValues("challenge").Inc()
}

// SetSessionsActive sets the live session gauge.
func SetSessionsActive(n int) {
	sessionsActive.Set(float64(n))
}

// AddSessionsExpired counts idle evictions.
func AddSessionsExpired(n int) {
	if n > 0 {
		sessionsExpiredTotal.Add(float64(n))
	}
}

// ObserveTranscription records a transcription attempt.
func ObserveTranscription(err error) {
	if err != nil {
		transcriptionsTotal.WithLabelValues("error").Inc()
		return
	}
	transcriptionsTotal.WithLabelValues("ok").Inc()
}

// IncAnalyticsDropped counts a dropped analytics event.
func IncAnalyticsDropped() {
	analyticsDroppedTotal.Inc()
}

// Middleware returns a gin middleware recording request counts and
// durations. Routes are labelled by their registered pattern so session IDs
// do not leak into label values.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
