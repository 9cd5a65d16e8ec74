// Package prom contains prometheus metrics exported by sparkbytes.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	inFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sparkbytes_requests_in_flight",
			Help: "Number of requests currently being served by the handler.",
		},
		[]string{"handler"},
	)
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkbytes_requests_total",
			Help: "Total number of requests for the handler.",
		},
		[]string{"handler", "code", "method"},
	)
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparkbytes_response_duration_seconds",
			Help:    "A histogram of request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
	writeHeader = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparkbytes_write_header_duration_seconds",
			Help:    "A histogram of time to first write latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparkbytes_response_size_bytes",
			Help:    "A histogram of response sizes.",
			Buckets: []float64{200, 500, 900, 1500, 5000},
		},
		[]string{"handler"},
	)
)

func init() {
	prometheus.MustRegister(inFlight, requests, duration, writeHeader, responseSize)
}

// Handler returns a handler that exports metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// InstrumentHandler decorates an HTTP handler with prometheus metrics
// labelled with name. Wrapping several handlers with the same name adds up
// their metrics.
func InstrumentHandler(name string, handler http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": name}

	handler = promhttp.InstrumentHandlerInFlight(inFlight.With(labels), handler)
	handler = promhttp.InstrumentHandlerCounter(requests.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerDuration(duration.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerTimeToWriteHeader(writeHeader.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerResponseSize(responseSize.MustCurryWith(labels), handler)

	return handler
}
