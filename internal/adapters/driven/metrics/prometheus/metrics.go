// Package prometheus records pipeline metrics with the Prometheus client.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docsight/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.Metrics = (*Metrics)(nil)

const namespace = "docsight"

// Metrics holds the pipeline collectors.
type Metrics struct {
	registry *prometheus.Registry

	StageDuration     *prometheus.HistogramVec
	StageErrorsTotal  *prometheus.CounterVec
	DocumentsTotal    prometheus.Counter
	PagesTotal        prometheus.Counter
	FieldsTotal       *prometheus.CounterVec
	ResultConfidences prometheus.Histogram
	IndexVectors      *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a fresh registry. A nil registry
// creates one, so tests and repeated construction never collide on the
// global default.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		StageErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_errors_total",
				Help:      "Total number of failed pipeline stages",
			},
			[]string{"stage"},
		),
		DocumentsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_processed_total",
				Help:      "Total number of processed documents",
			},
		),
		PagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_processed_total",
				Help:      "Total number of rendered and OCRed pages",
			},
		),
		FieldsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fields_extracted_total",
				Help:      "Total number of extracted fields by strategy",
			},
			[]string{"field", "strategy"},
		),
		ResultConfidences: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "result_confidence",
				Help:      "Aggregate confidence of query results",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		IndexVectors: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "index_vectors",
				Help:      "Number of vectors in each index",
			},
			[]string{"modality"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage records a stage duration and counts failures.
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.StageErrorsTotal.WithLabelValues(stage).Inc()
	}
}

// DocumentProcessed counts a document and its pages.
func (m *Metrics) DocumentProcessed(pages int) {
	m.DocumentsTotal.Inc()
	m.PagesTotal.Add(float64(pages))
}

// FieldExtracted counts one extracted field.
func (m *Metrics) FieldExtracted(field, strategy string) {
	m.FieldsTotal.WithLabelValues(field, strategy).Inc()
}

// ResultConfidence records a result's aggregate confidence.
func (m *Metrics) ResultConfidence(confidence float64) {
	m.ResultConfidences.Observe(confidence)
}

// IndexSize sets the vector count of an index.
func (m *Metrics) IndexSize(modality string, n int) {
	m.IndexVectors.WithLabelValues(modality).Set(float64(n))
}
