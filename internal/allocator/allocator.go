// Package allocator implements an asynchronous, size-classed block
// allocator for fixed-content memory regions: a free-list pool with a
// soft byte budget, a two-tier hot/cold reuse cache in front of it, and
// generation-tagged blocks. A reused block keeps its generation, so the
// generation check on release rejects only blocks whose generation is ahead
// of the issuing counter; it does not detect a stale handle to a reused
// block.
package allocator

import "fmt"

// Allocator is the public façade coordinating the BlockCache, MemoryPool,
// and BlockManager behind a single Allocate/Deallocate surface.
type Allocator struct {
	cfg     Config
	manager *BlockManager
	pool    *MemoryPool
	cache   *BlockCache
	stats   *Stats
}

// Option mutates a Config before an Allocator is built from it.
type Option func(*Config)

// WithMaxMemory sets the total byte budget; the allocator enforces 75% of
// it as the effective ceiling (spec.md §4.3).
func WithMaxMemory(bytes int) Option {
	return func(c *Config) { c.MaxMemory = bytes }
}

// WithBlockSizeRange sets the inclusive power-of-two range of block sizes
// the MemoryPool maintains SizePools for.
func WithBlockSizeRange(min, max int) Option {
	return func(c *Config) { c.MinBlockSize = min; c.MaxBlockSize = max }
}

// WithAlignment sets Config.Alignment, validated as a power of two but
// not enforced per allocation request (see Config.Alignment).
func WithAlignment(alignment int) Option {
	return func(c *Config) { c.Alignment = alignment }
}

// WithZeroOnDealloc toggles clearing a block's bytes on release.
func WithZeroOnDealloc(enabled bool) Option {
	return func(c *Config) { c.ZeroOnDealloc = enabled }
}

// New builds an Allocator from DefaultConfig with opts applied.
func New(opts ...Option) (*Allocator, error) {
	return WithConfig(DefaultConfig(), opts...)
}

// WithConfig builds an Allocator starting from cfg, with opts applied on
// top, validating the result before wiring subsystems together.
func WithConfig(cfg Config, opts ...Option) (*Allocator, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("allocator: invalid config: %w", err)
	}

	stats := &Stats{}
	manager := newBlockManager(cfg)
	pool := newMemoryPool(cfg, stats)
	cache := newBlockCache(manager, pool, stats)

	return &Allocator{
		cfg:     cfg,
		manager: manager,
		pool:    pool,
		cache:   cache,
		stats:   stats,
	}, nil
}

// Allocate returns a block of at least size bytes. It is satisfied from
// the hot/cold reuse cache when possible, and falls back to the
// MemoryPool's free list or a fresh allocation otherwise.
func (a *Allocator) Allocate(size int) (*Block, error) {
	if size <= 0 {
		return nil, invalidSize(size, a.cfg.MaxBlockSize)
	}
	return a.cache.Allocate(size)
}

// Deallocate validates block's generation, then returns it to the cache or
// pool it came from. A block whose generation is ahead of the manager's
// current counter (a sign it was never legitimately issued, or is being
// double-freed across a wrapped counter) is rejected rather than recycled.
func (a *Allocator) Deallocate(block *Block) error {
	if err := a.manager.verifyGeneration(block); err != nil {
		return wrapBlockError(err)
	}
	a.cache.Deallocate(block)
	return nil
}

// Stats returns a point-in-time snapshot of allocation counters.
func (a *Allocator) Stats() StatsSnapshot {
	return a.stats.Snapshot()
}

// Config returns the configuration this Allocator was built with.
func (a *Allocator) Config() Config {
	return a.cfg
}
