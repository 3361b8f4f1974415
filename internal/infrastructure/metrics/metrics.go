// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkscribe"

// Metrics holds the service collectors
type Metrics struct {
	RequestDuration   *prometheus.HistogramVec
	Predictions       *prometheus.CounterVec
	PipelineErrors    *prometheus.CounterVec
	ExtractionLatency prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Classified pages by predicted label.",
		}, []string{"label"}),
		PipelineErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_errors_total",
			Help:      "Failed pipeline operations by reason.",
		}, []string{"reason"}),
		ExtractionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent fetching and extracting page text.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	reg.MustRegister(m.RequestDuration, m.Predictions, m.PipelineErrors, m.ExtractionLatency)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObservePrediction counts a label returned by the classifier
func (m *Metrics) ObservePrediction(label string) {
	m.Predictions.WithLabelValues(label).Inc()
}

// ObserveError counts a failed operation
func (m *Metrics) ObserveError(reason string) {
	m.PipelineErrors.WithLabelValues(reason).Inc()
}

// ObserveExtraction records the duration of a text extraction
func (m *Metrics) ObserveExtraction(elapsed time.Duration) {
	m.ExtractionLatency.Observe(elapsed.Seconds())
}
