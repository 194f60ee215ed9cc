//go:build !prometheus

// Package metrics exposes allocator.StatsSnapshot as Prometheus gauges and
// counters. The default build carries this no-op Recorder so the
// prometheus/client_golang dependency is only pulled in under the
// prometheus build tag.
package metrics

import "github.com/fklr/atomalloc/internal/allocator"

// Recorder is a no-op placeholder matching the prometheus-tagged build's
// API surface.
type Recorder struct{}

// NewDefaultRecorder returns a Recorder that discards every observation.
func NewDefaultRecorder() *Recorder { return &Recorder{} }

// ObserveDelta is a no-op; it returns snap unchanged so callers can still
// thread it through as the next call's prev.
func (r *Recorder) ObserveDelta(prev, snap allocator.StatsSnapshot) allocator.StatsSnapshot {
	return snap
}
