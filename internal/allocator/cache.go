package allocator

// cacheSizeClasses are the fixed power-of-two buckets the BlockCache
// dispatches to; a request outside this range bypasses the cache and goes
// straight to the MemoryPool (spec.md §4.6).
var cacheSizeClasses = []int{32, 64, 128, 256, 512, 1024, 2048, 4096, 8192}

// BlockCache is the front door: it dispatches to a SizeClass and falls back
// to the MemoryPool on a miss (spec.md §4.6).
type BlockCache struct {
	manager *BlockManager
	pool    *MemoryPool
	stats   *Stats
	classes []*SizeClass
}

func newBlockCache(manager *BlockManager, pool *MemoryPool, stats *Stats) *BlockCache {
	bc := &BlockCache{manager: manager, pool: pool, stats: stats}
	bc.classes = make([]*SizeClass, len(cacheSizeClasses))
	for i, size := range cacheSizeClasses {
		bc.classes[i] = newSizeClass(size)
	}
	return bc
}

// sizeClassIndex maps size to an index into cacheSizeClasses, or false if
// size falls outside the cache's range entirely.
func sizeClassIndex(size int) (int, bool) {
	if size <= 32 {
		return 0, true
	}
	sizeLog2 := log2(nextPowerOfTwo(size))
	idx := sizeLog2 - 5 // 32 == 2^5
	if idx < 0 || idx >= len(cacheSizeClasses) {
		return 0, false
	}
	return idx, true
}

// Allocate tries the matching SizeClass first; on a hit it records exactly
// one cache hit and one allocation for the block's actual size. On a miss
// it records a cache miss, mints a fresh generation, and delegates to the
// MemoryPool.
//
// spec.md §9 flags that a naive implementation double-counts cache hits
// (once here, once in an outer caller) — this is the single point where a
// hit is ever recorded.
func (bc *BlockCache) Allocate(size int) (*Block, error) {
	if idx, ok := sizeClassIndex(size); ok {
		if b := bc.classes[idx].GetBlock(); b != nil {
			bc.stats.recordAllocation(b.Size())
			bc.stats.recordCacheHit()
			return b, nil
		}
	}

	bc.stats.recordCacheMiss()
	generation := bc.manager.newGeneration()
	return bc.pool.allocateWithGeneration(size, generation)
}

// Deallocate releases exclusivity, zeroes the block via the BlockManager,
// and either returns it to its SizeClass or forwards it to the MemoryPool
// if its size doesn't match any cache class.
func (bc *BlockCache) Deallocate(b *Block) {
	size := b.Size()
	b.Release()
	bc.manager.zeroBlock(b)

	if idx, ok := sizeClassIndex(size); ok && cacheSizeClasses[idx] == size {
		bc.classes[idx].ReturnBlock(b)
		bc.stats.recordDeallocation(size)
		return
	}

	bc.pool.deallocate(b)
}
