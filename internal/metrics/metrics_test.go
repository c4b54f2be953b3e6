package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TurnGenerated("opening")
	m.TurnGenerated("opening")
	m.TurnGenerated("rebuttal")
	m.ClaimsVerified(3)
	m.LieDetected("critical")
	m.DebateCompleted("success")
	m.VoteRecorded("pro")
	m.PhaseDone("live", 2*time.Second)
	m.ExternalCall("llm", "argument", 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turnsGenerated.WithLabelValues("opening")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsGenerated.WithLabelValues("rebuttal")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.claimsVerified))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.liesDetected.WithLabelValues("critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.debatesCompleted.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.votesRecorded.WithLabelValues("pro")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.TurnGenerated("opening")
	m.ClaimsVerified(1)
	m.LieDetected("warning")
	m.DebateCompleted("failure")
	m.PhaseDone("live", time.Second)
	m.ExternalCall("llm", "summary", time.Second)
	m.VoteRecorded("con")
}
