package obs

import "github.com/prometheus/client_golang/prometheus"

var _ prometheus.Collector = (*Collector)(nil)

// Collector exposes Metrics to a prometheus registry. Values are read from a
// Snapshot at scrape time.
type Collector struct {
	m        *Metrics
	counters [_counter_end]*prometheus.Desc
	handle   *prometheus.Desc
	lag      *prometheus.Desc
}

func NewCollector(namespace string, m *Metrics) *Collector {
	c := &Collector{
		m: m,
		handle: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "handle_latency_seconds"),
			"Time spent reconciling one message.",
			[]string{"stat"}, nil,
		),
		lag: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "feed_lag_seconds"),
			"Delay between the venue timestamp and reconciliation.",
			[]string{"stat"}, nil,
		),
	}
	for cnt := _counter_beg + 1; cnt < _counter_end; cnt++ {
		c.counters[cnt] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", cnt.String()+"_total"),
			"Feed counter "+cnt.String()+".",
			nil, nil,
		)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for cnt := _counter_beg + 1; cnt < _counter_end; cnt++ {
		ch <- c.counters[cnt]
	}
	ch <- c.handle
	ch <- c.lag
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.m.Snapshot()
	for cnt := _counter_beg + 1; cnt < _counter_end; cnt++ {
		ch <- prometheus.MustNewConstMetric(c.counters[cnt], prometheus.CounterValue, float64(snap.Counts[cnt]))
	}
	collectLatency(ch, c.handle, snap.HandleLatency)
	collectLatency(ch, c.lag, snap.FeedLag)
}

func collectLatency(ch chan<- prometheus.Metric, desc *prometheus.Desc, s LatencySnapshot) {
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, s.Min.Seconds(), "min")
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, s.Max.Seconds(), "max")
	ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, s.Avg.Seconds(), "avg")
}
