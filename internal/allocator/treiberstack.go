package allocator

import "sync/atomic"

// blockStack is a lock-free, unordered bag of *Block built as a Treiber
// stack: a single head pointer updated via CAS loop. Insertion order is
// irrelevant (spec.md §4.2 "any order is acceptable; strict FIFO is not
// required"), which is exactly what a Treiber stack gives cheaply — this is
// the Go stand-in for the Rust source's crossbeam::queue::SegQueue; no
// lock-free queue library appears anywhere in the example pack, so this is
// built directly on sync/atomic (stdlib; see DESIGN.md).
type blockStack struct {
	head atomic.Pointer[stackNode]
}

type stackNode struct {
	block *Block
	next  *stackNode
}

func (s *blockStack) push(b *Block) {
	n := &stackNode{block: b}
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			return
		}
	}
}

func (s *blockStack) pop() *Block {
	for {
		old := s.head.Load()
		if old == nil {
			return nil
		}
		if s.head.CompareAndSwap(old, old.next) {
			return old.block
		}
	}
}
