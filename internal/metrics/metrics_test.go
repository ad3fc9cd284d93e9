package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNoteStored(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.NoteStored("created", true, false)
	m.NoteStored("keyword", false, false)
	m.NoteStored("keyword", false, true)

	require.Equal(t, 1.0, testutil.ToFloat64(m.notesTotal.WithLabelValues("created")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.notesTotal.WithLabelValues("keyword")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.duplicatesTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.envelopesCreated))
}

func TestAnalysisRun(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AnalysisRun(time.Second, nil, map[string]int{"duplicate": 2, "suggestion": 1})
	m.AnalysisRun(time.Second, errors.New("boom"), nil)

	require.Equal(t, 1.0, testutil.ToFloat64(m.analysisRuns.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.analysisRuns.WithLabelValues("error")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.recommendations.WithLabelValues("duplicate")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.NoteStored("created", true, false)
	m.OverrideFailed()
	m.AnalysisRun(0, nil, nil)
}
