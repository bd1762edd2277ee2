package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cropsight_analysis_requests_total",
		Help: "Total analysis requests by flow (single, batch, series)",
	}, []string{"flow"})
	IndexUnitErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cropsight_index_unit_errors_total",
		Help: "Total failed per-index analysis units",
	}, []string{"index"})
	ProviderCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cropsight_provider_calls_total",
		Help: "Total imagery provider calls by operation and outcome",
	}, []string{"op", "outcome"})
	ProviderCallDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cropsight_provider_call_duration_ms",
		Help:    "Imagery provider call duration in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
	}, []string{"op"})
	SceneCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cropsight_scene_cache_hits_total",
		Help: "Total scene cache hits",
	})
	SceneCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cropsight_scene_cache_misses_total",
		Help: "Total scene cache misses",
	})
	YieldReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cropsight_yield_reports_total",
		Help: "Total yield reports by health status",
	}, []string{"health"})
)

func init() {
	prometheus.MustRegister(AnalysisRequestsTotal)
	prometheus.MustRegister(IndexUnitErrorsTotal)
	prometheus.MustRegister(ProviderCallsTotal)
	prometheus.MustRegister(ProviderCallDurationMs)
	prometheus.MustRegister(SceneCacheHitsTotal)
	prometheus.MustRegister(SceneCacheMissesTotal)
	prometheus.MustRegister(YieldReportsTotal)
}

// Handler exposes the registered collectors for scraping; mounted at /metrics
// in the server main.
func Handler() http.Handler { return promhttp.Handler() }
