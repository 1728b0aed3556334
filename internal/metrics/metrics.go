package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/phone-insights/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Validation cache

	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phoneinsights",
		Name:      "cache_lookups_total",
		Help:      "Validation cache reads, by result (hit, miss, error).",
	}, []string{"backend", "result"})

	CacheEvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "phoneinsights",
		Name:      "cache_evictions_total",
		Help:      "Stale validation cache entries removed by the sweeper.",
	})

	CacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "phoneinsights",
		Name:      "cache_entries",
		Help:      "Entries held by the in-memory validation cache after the last sweep.",
	})

	// Provider

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "phoneinsights",
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of phone validation provider calls.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	LookupsCoalescedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "phoneinsights",
		Name:      "lookups_coalesced_total",
		Help:      "Lookups that waited on another caller's in-flight provider call for the same key.",
	})

	// Searches

	SearchesRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phoneinsights",
		Name:      "searches_recorded_total",
		Help:      "Searches persisted, by validity.",
	}, []string{"valid"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "phoneinsights",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phoneinsights",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "phoneinsights",
		Name:      "http_requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})
)

func Register() {
	prometheus.MustRegister(
		CacheLookupsTotal,
		CacheEvictionsTotal,
		CacheEntries,
		ProviderRequestDuration,
		LookupsCoalescedTotal,
		SearchesRecordedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		HTTPRequestsInFlight,
	)
}

// NewServer serves /metrics plus the liveness and readiness checks.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
