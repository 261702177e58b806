package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.Inc(CounterSnapshot)
	m.Inc(CounterSnapshot)
	m.Add(CounterTrade, 3)
	m.Inc(_counter_end)

	assert.Equal(t, uint64(2), m.Count(CounterSnapshot))
	assert.Equal(t, uint64(3), m.Count(CounterTrade))

	snap := m.Snapshot()
	assert.Equal(t, map[Counter]uint64{CounterSnapshot: 2, CounterTrade: 3}, snap.Counts)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(CounterDelta)
	m.ObserveHandle(time.Millisecond)
	m.ObserveLag(1, time.Now())
	assert.Zero(t, m.Count(CounterDelta))
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestLatencyStats(t *testing.T) {
	m := NewMetrics()
	m.ObserveHandle(2 * time.Millisecond)
	m.ObserveHandle(4 * time.Millisecond)
	m.ObserveHandle(-time.Millisecond)

	s := m.Snapshot().HandleLatency
	assert.Equal(t, uint64(2), s.Count)
	assert.Equal(t, 2*time.Millisecond, s.Min)
	assert.Equal(t, 4*time.Millisecond, s.Max)
	assert.Equal(t, 3*time.Millisecond, s.Avg)

	now := time.UnixMilli(1_000_500)
	m.ObserveLag(1_000_000, now)
	m.ObserveLag(0, now)
	assert.Equal(t, uint64(1), m.Snapshot().FeedLag.Count)
	assert.Equal(t, 500*time.Millisecond, m.Snapshot().FeedLag.Max)
}

func TestCollector(t *testing.T) {
	m := NewMetrics()
	m.Add(CounterDelta, 7)

	c := NewCollector("lunofeed", m)
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	counters := int(_counter_end) - 1
	assert.Equal(t, counters+6, testutil.CollectAndCount(c))

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "lunofeed_deltas_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, float64(7), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
