package allocator

import "sync/atomic"

// SizeClass is a two-tier (hot/cold) lock-free reuse cache for blocks of
// one fixed size. Hot is consulted first; every eighth successful GetBlock
// promotes a return to hot rather than cold (spec.md §4.5).
type SizeClass struct {
	size int
	hot  blockStack
	cold blockStack

	_               cacheLinePad
	allocationCount atomic.Uint64
}

func newSizeClass(size int) *SizeClass {
	return &SizeClass{size: size}
}

// GetBlock pops hot (up to two attempts), then cold (one attempt); a
// popped candidate must match this class's size and successfully
// TryAcquire, otherwise it is dropped and the next attempt proceeds. It
// returns nil if nothing acquirable was found.
func (c *SizeClass) GetBlock() *Block {
	for attempt := 0; attempt < 2; attempt++ {
		if b := c.hot.pop(); b != nil {
			if b.Size() == c.size && b.TryAcquire() {
				c.allocationCount.Add(1)
				return b
			}
			continue
		}
		break
	}

	if b := c.cold.pop(); b != nil {
		if b.Size() == c.size && b.TryAcquire() {
			c.allocationCount.Add(1)
			return b
		}
	}

	return nil
}

// ReturnBlock pushes b back into this class's hot or cold queue. Every
// eighth return (allocation_count & 7 == 0) goes to hot; the rest go to
// cold. It panics if b's size doesn't match this class, since that would
// violate the size-class invariant that every enqueued block matches its
// class's declared size.
func (c *SizeClass) ReturnBlock(b *Block) {
	if b.Size() != c.size {
		panic("allocator: block size does not match size class")
	}

	if c.allocationCount.Load()&7 == 0 {
		c.hot.push(b)
	} else {
		c.cold.push(b)
	}
}
