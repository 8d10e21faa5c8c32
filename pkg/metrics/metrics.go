// Package metrics provides Prometheus metrics for the oracle feeder.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CycleOutcomesTotal counts update cycles by outcome status.
	CycleOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_cycle_outcomes_total",
			Help: "Total number of update cycles by outcome (success, noop, stale, error)",
		},
		[]string{"status"},
	)

	// ConsecutiveErrors is a gauge of the current consecutive-error count.
	ConsecutiveErrors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "oracle_consecutive_errors",
			Help: "Current number of consecutive failed update cycles",
		},
	)

	// PublishAttemptsTotal counts registry publish attempts by result class.
	PublishAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_publish_attempts_total",
			Help: "Total number of registry publish attempts by result class",
		},
		[]string{"class"},
	)

	// PublishWaitSeconds is a histogram of waits between publish retries.
	PublishWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oracle_publish_wait_seconds",
			Help:    "Wait durations between publish retry attempts",
			Buckets: []float64{1, 2, 3, 5, 8, 10, 15},
		},
	)

	// SourceFetchesTotal counts successful quote fetches per source and symbol.
	SourceFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_source_fetches_total",
			Help: "Total number of successful quote fetches per source",
		},
		[]string{"source", "symbol"},
	)

	// SourceErrorsTotal counts failed quote fetches per source.
	SourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_source_errors_total",
			Help: "Total number of failed quote fetches per source",
		},
		[]string{"source"},
	)

	// FXResolutionsTotal counts FX factor resolutions by route.
	FXResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_fx_resolutions_total",
			Help: "Total number of FX factor resolutions by route (direct_market, secondary_market, peg_fallback)",
		},
		[]string{"symbol", "route"},
	)

	// PriceAgeSeconds is a gauge of the contributing quote age per pair.
	PriceAgeSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "oracle_price_age_seconds",
			Help: "Age of the quote contributing to the last composed price",
		},
		[]string{"pair"},
	)

	// LastSuccessTimestamp is the unix time of the last successful publish.
	LastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "oracle_last_success_timestamp",
			Help: "Unix timestamp of the last successful oracle publish",
		},
	)

	// LoopBackoffSeconds is a histogram of in-loop backoff delays.
	LoopBackoffSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oracle_loop_backoff_seconds",
			Help:    "Backoff delays applied after unexpected cycle errors",
			Buckets: []float64{5, 10, 20, 40, 80, 160, 300},
		},
	)
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		CycleOutcomesTotal,
		ConsecutiveErrors,
		PublishAttemptsTotal,
		PublishWaitSeconds,
		SourceFetchesTotal,
		SourceErrorsTotal,
		FXResolutionsTotal,
		PriceAgeSeconds,
		LastSuccessTimestamp,
		LoopBackoffSeconds,
	)
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      http.DefaultServeMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// RecordCycle records an update cycle outcome.
func RecordCycle(status string, consecutiveErrors int) {
	CycleOutcomesTotal.WithLabelValues(status).Inc()
	ConsecutiveErrors.Set(float64(consecutiveErrors))
}

// RecordPublishAttempt records a registry publish attempt.
func RecordPublishAttempt(class string) {
	PublishAttemptsTotal.WithLabelValues(class).Inc()
}

// RecordPublishWait records a wait between publish retries.
func RecordPublishWait(d time.Duration) {
	PublishWaitSeconds.Observe(d.Seconds())
}

// RecordSourceFetch records a successful quote fetch.
func RecordSourceFetch(source, symbol string) {
	SourceFetchesTotal.WithLabelValues(source, symbol).Inc()
}

// RecordSourceError records a failed quote fetch.
func RecordSourceError(source string) {
	SourceErrorsTotal.WithLabelValues(source).Inc()
}

// RecordFXResolution records an FX factor resolution.
func RecordFXResolution(symbol, route string) {
	FXResolutionsTotal.WithLabelValues(symbol, route).Inc()
}

// RecordPriceAge records the age of a composed price's contributing quote.
func RecordPriceAge(pair string, ageSeconds int64) {
	PriceAgeSeconds.WithLabelValues(pair).Set(float64(ageSeconds))
}

// RecordPublishSuccess records a successful oracle publish.
func RecordPublishSuccess() {
	LastSuccessTimestamp.SetToCurrentTime()
}

// RecordLoopBackoff records an in-loop backoff delay.
func RecordLoopBackoff(d time.Duration) {
	LoopBackoffSeconds.Observe(d.Seconds())
}
