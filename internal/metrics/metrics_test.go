package metrics_test

import (
	"testing"

	"dispatch/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus(t *testing.T) {
	// Given
	reg := prometheus.NewRegistry()
	m, err := metrics.NewPrometheus(reg)
	require.NoError(t, err)

	// When
	m.DispatchCompleted("offered")
	m.DispatchCompleted("offered")
	m.DispatchCompleted("queued")
	m.ClaimConflict()
	m.TransitionApplied("accepted")
	m.SweepItem("requeued")
	m.ReconciliationGap()

	// Then
	count, err := testutil.GatherAndCount(reg, "dispatch_dispatches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per outcome")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 5)
}

func TestPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewPrometheus(reg)
	require.NoError(t, err)

	_, err = metrics.NewPrometheus(reg)

	require.Error(t, err)
}
