package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LinesClassified.WithLabelValues("roster_single").Add(3)
	m.SegmentsScheduled.WithLabelValues("ASSIGNED").Inc()
	m.ScheduledSeconds.Add(90)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.LinesClassified.WithLabelValues("roster_single")))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.ScheduledSeconds))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(families), 3)
}
