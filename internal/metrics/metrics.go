// Package metrics exposes Prometheus counters for ingestion and analysis.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cpa"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	notesTotal       *prometheus.CounterVec
	duplicatesTotal  prometheus.Counter
	envelopesCreated prometheus.Counter
	overrideFailures prometheus.Counter

	analysisRuns     *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	recommendations  *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Labels: stage (keyword, thematic, similarity, created)
		notesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "notes_total",
			Help:      "Notes stored, by routing stage",
		}, []string{"stage"}),
		duplicatesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duplicates_total",
			Help:      "Notes that matched an existing card in their envelope",
		}),
		envelopesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "envelopes_created_total",
			Help:      "Envelopes created by routing",
		}),
		overrideFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "override_failures_total",
			Help:      "Failed calls to the optional override extractor",
		}),
		// Labels: status (ok, error)
		analysisRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Batch analysis runs by status",
		}, []string{"status"}),
		analysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Batch analysis run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		// Labels: kind (duplicate, assignee_conflict, cluster_suggestion, suggestion)
		recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "recommendations_total",
			Help:      "Recommendations appended, by kind",
		}, []string{"kind"}),
	}
}

// NoteStored records a stored or deduplicated note.
func (m *Metrics) NoteStored(stage string, created, duplicate bool) {
	if m == nil {
		return
	}
	if duplicate {
		m.duplicatesTotal.Inc()
		return
	}
	m.notesTotal.WithLabelValues(stage).Inc()
	if created {
		m.envelopesCreated.Inc()
	}
}

// OverrideFailed records one failed override call.
func (m *Metrics) OverrideFailed() {
	if m == nil {
		return
	}
	m.overrideFailures.Inc()
}

// AnalysisRun records a finished analysis run. counts maps recommendation
// kind to the number appended.
func (m *Metrics) AnalysisRun(elapsed time.Duration, err error, counts map[string]int) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.analysisRuns.WithLabelValues(status).Inc()
	m.analysisDuration.Observe(elapsed.Seconds())
	for kind, n := range counts {
		m.recommendations.WithLabelValues(kind).Add(float64(n))
	}
}
