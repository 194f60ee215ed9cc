package allocator

import (
	"runtime"
	"sync/atomic"
)

// Stats holds five independent counters: monotonic allocated/freed bytes
// and cache hit/miss counts, plus current bytes, which rises on allocation
// and falls on deallocation. Cross-counter consistency (e.g.
// allocated = freed + current) is not guaranteed at any instant — counters
// are process-wide and eventually consistent (spec.md §9).
type Stats struct {
	allocated atomic.Uint64
	freed     atomic.Uint64
	current   atomic.Int64
	cacheHits atomic.Uint64
	cacheMiss atomic.Uint64
}

// StatsSnapshot is a point-in-time read of all five counters.
type StatsSnapshot struct {
	Allocated   uint64
	Freed       uint64
	Current     int64
	CacheHits   uint64
	CacheMisses uint64
}

func (s *Stats) recordAllocation(size int) {
	s.allocated.Add(uint64(size))
	s.current.Add(int64(size))
	runtime.Gosched()
}

func (s *Stats) recordDeallocation(size int) {
	s.freed.Add(uint64(size))
	s.current.Add(-int64(size))
	runtime.Gosched()
}

func (s *Stats) recordCacheHit() {
	s.cacheHits.Add(1)
	runtime.Gosched()
}

func (s *Stats) recordCacheMiss() {
	s.cacheMiss.Add(1)
	runtime.Gosched()
}

// Snapshot returns a consistent-enough read of all counters for reporting.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Allocated:   s.allocated.Load(),
		Freed:       s.freed.Load(),
		Current:     s.current.Load(),
		CacheHits:   s.cacheHits.Load(),
		CacheMisses: s.cacheMiss.Load(),
	}
	runtime.Gosched()
	return snap
}
