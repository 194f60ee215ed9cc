//go:build prometheus

// Package metrics exposes allocator.StatsSnapshot as Prometheus gauges and
// counters, gated behind the prometheus build tag so the default build
// carries no Prometheus dependency surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fklr/atomalloc/internal/allocator"
)

// Recorder registers and updates the allocator's Prometheus series.
type Recorder struct {
	allocated   prometheus.Counter
	freed       prometheus.Counter
	current     prometheus.Gauge
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewDefaultRecorder creates and registers the allocator's metric series
// against the global Prometheus registry.
func NewDefaultRecorder() *Recorder {
	return NewRecorder(prometheus.DefaultRegisterer)
}

// NewRecorder creates and registers the allocator's metric series against
// reg. Passing prometheus.DefaultRegisterer registers them globally.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		allocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atomalloc_bytes_allocated_total",
			Help: "Total bytes allocated across the allocator's lifetime.",
		}),
		freed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atomalloc_bytes_freed_total",
			Help: "Total bytes freed across the allocator's lifetime.",
		}),
		current: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atomalloc_bytes_in_use",
			Help: "Bytes currently held by outstanding allocations.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atomalloc_cache_hits_total",
			Help: "Allocation requests satisfied from the reuse cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atomalloc_cache_misses_total",
			Help: "Allocation requests that fell back to the memory pool.",
		}),
	}
	reg.MustRegister(r.allocated, r.freed, r.current, r.cacheHits, r.cacheMisses)
	return r
}

// ObserveDelta updates the Prometheus counters by the increase in each
// cumulative field since prev, and sets the gauge to snap.Current. It
// returns snap for use as the next call's prev.
func (r *Recorder) ObserveDelta(prev, snap allocator.StatsSnapshot) allocator.StatsSnapshot {
	if snap.Allocated > prev.Allocated {
		r.allocated.Add(float64(snap.Allocated - prev.Allocated))
	}
	if snap.Freed > prev.Freed {
		r.freed.Add(float64(snap.Freed - prev.Freed))
	}
	if snap.CacheHits > prev.CacheHits {
		r.cacheHits.Add(float64(snap.CacheHits - prev.CacheHits))
	}
	if snap.CacheMisses > prev.CacheMisses {
		r.cacheMisses.Add(float64(snap.CacheMisses - prev.CacheMisses))
	}
	r.current.Set(float64(snap.Current))
	return snap
}
