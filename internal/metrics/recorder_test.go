package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorder_AllMethodsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("render", ResultSuccess)
	r.IncBuildOutcome("success")
	r.SetPagesRendered(3)
	r.IncDocumentRejected()
}

func TestPrometheusRecorder_RegistersAndRecords(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveStageDuration("render", 50*time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("render", ResultWarning)
	r.IncBuildOutcome("warning")
	r.SetPagesRendered(12)
	r.IncDocumentRejected()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["stylebook_stage_duration_seconds"])
	require.True(t, names["stylebook_build_outcomes_total"])
	require.True(t, names["stylebook_pages_rendered"])
	require.True(t, names["stylebook_documents_rejected_total"])
}

func TestPrometheusRecorder_NilReceiverSafe(t *testing.T) {
	var r *PrometheusRecorder
	r.ObserveStageDuration("render", time.Second)
	r.IncBuildOutcome("success")
}
