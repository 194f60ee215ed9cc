package allocator

import (
	"sync/atomic"
)

// cacheLinePad separates hot, independently-contended atomic fields so two
// of them never share a cache line under concurrent racing allocators —
// the same concern spec.md §5 raises about the total_memory CAS. Grounded
// on the same need golang.org/x/sys/cpu.CacheLinePad addresses elsewhere in
// the ecosystem; hand-rolled here since its exact export surface could not
// be confirmed against the pack's vendored copy (see DESIGN.md).
type cacheLinePad [64]byte

// SizePool is the free-list for one exact power-of-two block size. Its
// queue is lock-free and unordered; allocated (blocks currently handed out)
// and total (blocks ever created) are advisory counters for observation
// only (spec.md §4.2).
type SizePool struct {
	blockSize int
	free      blockStack
	_         cacheLinePad
	allocated atomic.Int64
	total     atomic.Int64
}

func newSizePool(blockSize int) *SizePool {
	return &SizePool{blockSize: blockSize}
}

func (p *SizePool) getFreeBlock() *Block {
	return p.free.pop()
}

func (p *SizePool) pushFreeBlock(b *Block) {
	p.free.push(b)
}

// MemoryPool owns one SizePool per power-of-two size between the
// configured min and max block sizes, and enforces the global byte budget
// via a single CAS-guarded total_memory counter (spec.md §4.3).
type MemoryPool struct {
	cfg   Config
	stats *Stats
	pools []*SizePool // indexed by log2(size) - log2(MinBlockSize)

	_           cacheLinePad
	totalMemory atomic.Int64
}

// newMemoryPool builds SizePools for every power of two from
// cfg.MinBlockSize to cfg.MaxBlockSize inclusive.
func newMemoryPool(cfg Config, stats *Stats) *MemoryPool {
	mp := &MemoryPool{cfg: cfg, stats: stats}
	for size := cfg.MinBlockSize; size <= cfg.MaxBlockSize; size *= 2 {
		mp.pools = append(mp.pools, newSizePool(size))
	}
	return mp
}

func (mp *MemoryPool) poolIndex(rounded int) (int, bool) {
	idx := log2(rounded) - log2(mp.cfg.MinBlockSize)
	if idx < 0 || idx >= len(mp.pools) {
		return 0, false
	}
	return idx, true
}

// allocateWithGeneration implements spec.md §4.3's allocate_with_generation:
// round up, map to a SizePool, try the free list, and otherwise reserve
// budget via a single-shot CAS (no retry) before constructing a fresh
// Block.
func (mp *MemoryPool) allocateWithGeneration(requestedSize int, generation uint64) (*Block, error) {
	rounded := nextPowerOfTwo(requestedSize)
	if rounded > mp.cfg.MaxBlockSize {
		return nil, outOfMemory()
	}

	idx, ok := mp.poolIndex(rounded)
	if !ok {
		return nil, invalidSize(requestedSize, mp.cfg.MaxBlockSize)
	}
	pool := mp.pools[idx]

	effectiveMax := (mp.cfg.MaxMemory * 3) / 4

	snapshot := mp.totalMemory.Load()
	if snapshot+int64(rounded) > int64(effectiveMax) {
		return nil, outOfMemory()
	}

	if b := pool.getFreeBlock(); b != nil {
		if b.TryAcquire() {
			pool.allocated.Add(1)
			return b, nil
		}
		// Lost the race for this free-list entry (shouldn't happen since a
		// block only leaves the free list once) — fall through to fresh
		// construction rather than spin.
	}

	if !mp.totalMemory.CompareAndSwap(snapshot, snapshot+int64(rounded)) {
		return nil, outOfMemory()
	}

	b := newBlock(rounded, generation)
	b.TryAcquire()
	mp.stats.recordAllocation(rounded)
	pool.total.Add(1)
	pool.allocated.Add(1)
	return b, nil
}

// deallocate returns block to its SizePool, decrementing total_memory by
// its size (spec.md §9 flags this as the source of the known
// under-counting behavior; see DESIGN.md for the resolution taken).
func (mp *MemoryPool) deallocate(b *Block) {
	size := b.Size()
	idx, ok := mp.poolIndex(size)
	if !ok {
		return
	}
	pool := mp.pools[idx]

	mp.totalMemory.Add(-int64(size))
	b.Release()
	pool.pushFreeBlock(b)
	mp.stats.recordDeallocation(size)
	pool.allocated.Add(-1)
}
