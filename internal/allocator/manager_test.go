package allocator

import "testing"

func TestBlockManagerGenerationIsPreIncrement(t *testing.T) {
	cfg := TestConfig()
	m := newBlockManager(cfg)

	first := m.newGeneration()
	second := m.newGeneration()
	if first != 0 {
		t.Fatalf("got first generation %d, want 0", first)
	}
	if second != 1 {
		t.Fatalf("got second generation %d, want 1", second)
	}
}

func TestBlockManagerVerifyGenerationRejectsFuture(t *testing.T) {
	cfg := TestConfig()
	cfg.ZeroOnDealloc = true
	m := newBlockManager(cfg)

	m.newGeneration() // advances counter to 1
	b := newBlock(64, 99)
	if err := m.verifyGeneration(b); err == nil {
		t.Fatal("expected InvalidGeneration for a block ahead of the counter")
	}
}

func TestBlockManagerVerifyGenerationSkippedWhenZeroingDisabled(t *testing.T) {
	cfg := TestConfig()
	cfg.ZeroOnDealloc = false
	m := newBlockManager(cfg)

	b := newBlock(64, 99)
	if err := m.verifyGeneration(b); err != nil {
		t.Fatalf("expected verification to be skipped, got %v", err)
	}
}

func TestBlockManagerZeroBlockRespectsConfig(t *testing.T) {
	cfg := TestConfig()
	cfg.ZeroOnDealloc = true
	m := newBlockManager(cfg)

	b := newBlock(32, 0)
	b.Write(0, []byte{1, 2, 3})
	m.zeroBlock(b)
	if !b.IsZeroed() {
		t.Fatal("expected zeroBlock to clear the block when ZeroOnDealloc is true")
	}
}

func TestBlockManagerZeroBlockNoOpWhenDisabled(t *testing.T) {
	cfg := TestConfig()
	cfg.ZeroOnDealloc = false
	m := newBlockManager(cfg)

	b := newBlock(32, 0)
	b.Write(0, []byte{1, 2, 3})
	m.zeroBlock(b)
	if b.IsZeroed() {
		t.Fatal("expected zeroBlock to leave the block untouched when ZeroOnDealloc is false")
	}
}
