package allocator

import "testing"

func TestSizeClassIndexBoundaries(t *testing.T) {
	cases := []struct {
		size    int
		wantIdx int
		wantOK  bool
	}{
		{1, 0, true},
		{32, 0, true},
		{33, 1, true},
		{64, 1, true},
		{8192, 8, true},
		{8193, 0, false},
	}
	for _, c := range cases {
		idx, ok := sizeClassIndex(c.size)
		if ok != c.wantOK {
			t.Fatalf("size %d: got ok=%v want %v", c.size, ok, c.wantOK)
		}
		if ok && idx != c.wantIdx {
			t.Fatalf("size %d: got idx %d want %d", c.size, idx, c.wantIdx)
		}
	}
}

func TestBlockCacheHitCountedOnce(t *testing.T) {
	cfg := TestConfig()
	stats := &Stats{}
	manager := newBlockManager(cfg)
	pool := newMemoryPool(cfg, stats)
	bc := newBlockCache(manager, pool, stats)

	b, err := bc.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	bc.Deallocate(b)

	before := stats.Snapshot()
	b2, err := bc.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	after := stats.Snapshot()

	if after.CacheHits != before.CacheHits+1 {
		t.Fatalf("got %d new cache hits, want exactly 1", after.CacheHits-before.CacheHits)
	}
	_ = b2
}

func TestBlockCacheMissFallsBackToPool(t *testing.T) {
	cfg := TestConfig()
	stats := &Stats{}
	manager := newBlockManager(cfg)
	pool := newMemoryPool(cfg, stats)
	bc := newBlockCache(manager, pool, stats)

	_, err := bc.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	snap := stats.Snapshot()
	if snap.CacheMisses != 1 {
		t.Fatalf("got %d cache misses, want 1", snap.CacheMisses)
	}
}

func TestBlockCacheOutOfRangeBypassesCache(t *testing.T) {
	cfg := TestConfig()
	cfg.MaxBlockSize = 1 << 20
	cfg.MaxMemory = 1 << 20 // effective cap 768KiB leaves room for a 16KiB block
	stats := &Stats{}
	manager := newBlockManager(cfg)
	pool := newMemoryPool(cfg, stats)
	bc := newBlockCache(manager, pool, stats)

	b, err := bc.Allocate(16384) // above the largest fixed cache class (8192)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	bc.Deallocate(b)

	if _, ok := sizeClassIndex(16384); ok {
		t.Fatal("expected 16384 to fall outside the cache's fixed size classes")
	}
}
