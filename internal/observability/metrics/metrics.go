package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "alertreport_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	reportGenerateTotal   *prometheus.CounterVec
	reportGenerateLatency *prometheus.HistogramVec
	reportMapOmitted      *prometheus.CounterVec

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	authFailures prometheus.Counter
)

// Init registers report service metrics.
func Init() {
	registerOnce.Do(func() {
		reportGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_generate_total",
				Help: "Total report generate operations by format and result",
			},
			[]string{"format", "result"},
		)
		reportGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_generate_latency_seconds",
				Help:    "Report generate latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		reportMapOmitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_map_omitted_total",
				Help: "Total reports rendered without a map section by reason",
			},
			[]string{"reason"},
		)

		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Total upstream monitoring API requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_request_latency_seconds",
				Help:    "Upstream monitoring API latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "result"},
		)

		authFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "auth_failures_total",
				Help: "Total rejected requests with missing or malformed credentials",
			},
		)

		prometheus.MustRegister(
			reportGenerateTotal,
			reportGenerateLatency,
			reportMapOmitted,
			upstreamRequests,
			upstreamLatency,
			authFailures,
		)
	})
}

// ObserveReportGenerate records generate latency and result by format.
func ObserveReportGenerate(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportGenerateTotal != nil {
		reportGenerateTotal.WithLabelValues(format, result).Inc()
	}
	if reportGenerateLatency != nil {
		reportGenerateLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncReportMapOmitted counts a report rendered without its map section.
func IncReportMapOmitted(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if reportMapOmitted != nil {
		reportMapOmitted.WithLabelValues(reason).Inc()
	}
}

// ObserveUpstreamRequest records one upstream call's latency and result.
func ObserveUpstreamRequest(endpoint, result string, duration time.Duration) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if upstreamRequests != nil {
		upstreamRequests.WithLabelValues(endpoint, result).Inc()
	}
	if upstreamLatency != nil {
		upstreamLatency.WithLabelValues(endpoint, result).Observe(duration.Seconds())
	}
}

// IncAuthFailure counts a rejected request.
func IncAuthFailure() {
	if authFailures != nil {
		authFailures.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
