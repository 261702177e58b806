package obs

import (
	"sync/atomic"
	"time"
)

// Counter names one feed counter.
type Counter uint8

const (
	_counter_beg Counter = iota
	CounterSnapshot
	CounterDelta
	CounterTrade
	CounterEmptyMessage
	CounterDroppedMessage
	CounterUnknownDelete
	CounterUnknownSide
	CounterMalformedLevel
	CounterEvictedTrade
	CounterSequenceGap
	CounterQueueDrop
	CounterQueueClosed
	CounterSinkError
	_counter_end
)

func (c Counter) IsAvailable() bool {
	return c > _counter_beg && c < _counter_end
}

func (c Counter) String() string {
	switch c {
	case CounterSnapshot:
		return "snapshots"
	case CounterDelta:
		return "deltas"
	case CounterTrade:
		return "trades"
	case CounterEmptyMessage:
		return "empty_messages"
	case CounterDroppedMessage:
		return "dropped_messages"
	case CounterUnknownDelete:
		return "unknown_deletes"
	case CounterUnknownSide:
		return "unknown_sides"
	case CounterMalformedLevel:
		return "malformed_levels"
	case CounterEvictedTrade:
		return "evicted_trades"
	case CounterSequenceGap:
		return "sequence_gaps"
	case CounterQueueDrop:
		return "queue_drops"
	case CounterQueueClosed:
		return "queue_closed"
	case CounterSinkError:
		return "sink_errors"
	default:
		return "unknown"
	}
}

// Metrics collects lightweight counters and latency stats.
type Metrics struct {
	counts [_counter_end]uint64

	handleLatency LatencyStats
	feedLag       LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Counts        map[Counter]uint64
	HandleLatency LatencySnapshot
	FeedLag       LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Inc increments a counter.
func (m *Metrics) Inc(c Counter) {
	m.Add(c, 1)
}

// Add adds n to a counter.
func (m *Metrics) Add(c Counter, n uint64) {
	if m == nil || !c.IsAvailable() || n == 0 {
		return
	}
	atomic.AddUint64(&m.counts[c], n)
}

// Count reads a single counter.
func (m *Metrics) Count(c Counter) uint64 {
	if m == nil || !c.IsAvailable() {
		return 0
	}
	return atomic.LoadUint64(&m.counts[c])
}

// ObserveHandle measures how long one message took to reconcile.
func (m *Metrics) ObserveHandle(d time.Duration) {
	if m == nil {
		return
	}
	m.handleLatency.Observe(d)
}

// ObserveLag measures the delay between the venue timestamp (ms) and now.
func (m *Metrics) ObserveLag(eventMs int64, now time.Time) {
	if m == nil || eventMs <= 0 {
		return
	}
	m.feedLag.Observe(now.Sub(time.UnixMilli(eventMs)))
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	counts := make(map[Counter]uint64)
	for c := _counter_beg + 1; c < _counter_end; c++ {
		if v := atomic.LoadUint64(&m.counts[c]); v > 0 {
			counts[c] = v
		}
	}
	return Snapshot{
		Counts:        counts,
		HandleLatency: m.handleLatency.Snapshot(),
		FeedLag:       m.feedLag.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
