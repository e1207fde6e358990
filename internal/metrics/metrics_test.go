package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.FetchOutcome("ok")
	c.FetchOutcome("503")
	c.FetchOutcome("503")
	c.Fallback("hit")
	c.NormalizeFailure("parse")
	c.SnapshotWrite("error")
	c.PipelineDuration(120 * time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Fetches.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Fetches.WithLabelValues("503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Fallbacks.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NormalizeFailures.WithLabelValues("parse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotWrites.WithLabelValues("error")))

	n, err := testutil.GatherAndCount(reg, "weather_pipeline_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
