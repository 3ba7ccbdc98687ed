package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/funding-engine/funding"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	registry *prometheus.Registry

	AssessmentsTotal   *prometheus.CounterVec
	StreamEligible     *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	AssessmentLatency  prometheus.Histogram
}

// NewMetrics registers the API metrics on a fresh registry, so several
// handlers can coexist in one process (tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AssessmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "funding_assessments_total",
			Help: "Total number of eligibility assessments, labeled by source",
		}, []string{"source"}),
		StreamEligible: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "funding_stream_eligible_total",
			Help: "Number of assessments finding the learner eligible, labeled by stream",
		}, []string{"stream"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "funding_validation_failures_total",
			Help: "Number of rejected inputs, labeled by field",
		}, []string{"field"}),
		AssessmentLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "funding_assessment_duration_seconds",
			Help:    "Time spent validating and evaluating one assessment",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeAssessment(source string, a funding.Assessment) {
	m.AssessmentsTotal.WithLabelValues(source).Inc()
	for _, r := range a.Results {
		if r.Eligible {
			m.StreamEligible.WithLabelValues(string(r.Stream)).Inc()
		}
	}
}

func (m *Metrics) observeRejection(fields []string) {
	for _, f := range fields {
		m.ValidationFailures.WithLabelValues(f).Inc()
	}
}
