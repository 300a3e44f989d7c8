package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/andreiashu/geolookup"
)

// metrics provides observability for the lookup server.
type metrics struct {
	Lookups        prometheus.Counter
	LookupDuration prometheus.Histogram
	EmptyResults   prometheus.Counter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	IndexEntries   *prometheus.GaugeVec
	Ready          prometheus.Gauge
}

// newMetrics registers the server metrics with reg.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		Lookups: f.NewCounter(prometheus.CounterOpts{
			Name: "geolookup_lookups_total",
			Help: "Total number of /lookup requests answered",
		}),
		LookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "geolookup_lookup_duration_seconds",
			Help:    "Duration of index lookups, cache misses only",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		EmptyResults: f.NewCounter(prometheus.CounterOpts{
			Name: "geolookup_empty_results_total",
			Help: "Total number of lookups returning no results",
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "geolookup_cache_hits_total",
			Help: "Total lookup response cache hits",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "geolookup_cache_misses_total",
			Help: "Total lookup response cache misses",
		}),
		IndexEntries: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "geolookup_index_entries",
			Help: "Number of index entries by kind",
		}, []string{"kind"}),
		Ready: f.NewGauge(prometheus.GaugeOpts{
			Name: "geolookup_ready",
			Help: "1 once the index has been built",
		}),
	}
}

func (m *metrics) observeLookup(d time.Duration, n int) {
	if m == nil {
		return
	}
	m.LookupDuration.Observe(d.Seconds())
	if n == 0 {
		m.EmptyResults.Inc()
	}
}

// setIndex records the size of a freshly built index.
func (m *metrics) setIndex(idx *geolookup.Index) {
	if m == nil {
		return
	}
	for kind, n := range idx.CountByKind() {
		m.IndexEntries.WithLabelValues(string(kind)).Set(float64(n))
	}
	m.Ready.Set(1)
}
