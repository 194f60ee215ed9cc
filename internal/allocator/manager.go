package allocator

import "sync/atomic"

// BlockManager issues monotonic generations and coordinates zero-on-release
// and staleness validation (spec.md §4.4).
type BlockManager struct {
	cfg               Config
	currentGeneration atomic.Uint64
}

func newBlockManager(cfg Config) *BlockManager {
	return &BlockManager{cfg: cfg}
}

// newGeneration returns the pre-increment value of the generation counter,
// per spec.md: "new_generation() returns fetch_add(1) — the pre-increment
// value."
func (m *BlockManager) newGeneration() uint64 {
	return m.currentGeneration.Add(1) - 1
}

// verifyGeneration reports InvalidGeneration if block's generation is
// strictly greater than the current counter. Fresh blocks legitimately hold
// the current value, so equality is allowed. If zero_on_dealloc is
// disabled, verification always succeeds.
func (m *BlockManager) verifyGeneration(b *Block) error {
	if !m.cfg.ZeroOnDealloc {
		return nil
	}

	blockGen := b.Generation()
	current := m.currentGeneration.Load()
	if blockGen > current {
		return &BlockError{Kind: ErrInvalidGeneration, Block: blockGen, Expected: current}
	}
	return nil
}

// zeroBlock clears b's bytes iff zero_on_dealloc is enabled.
func (m *BlockManager) zeroBlock(b *Block) {
	if m.cfg.ZeroOnDealloc {
		b.Clear()
	}
}
