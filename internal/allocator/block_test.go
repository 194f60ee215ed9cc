package allocator

import "testing"

func TestBlockTryAcquireExclusive(t *testing.T) {
	b := newBlock(64, 0)
	if !b.TryAcquire() {
		t.Fatal("expected first TryAcquire to succeed")
	}
	if b.TryAcquire() {
		t.Fatal("expected second TryAcquire to fail while held")
	}
	b.Release()
	if !b.TryAcquire() {
		t.Fatal("expected TryAcquire to succeed after Release")
	}
}

func TestBlockFreshIsZeroed(t *testing.T) {
	b := newBlock(32, 0)
	if !b.IsZeroed() {
		t.Fatal("expected fresh block to be zeroed")
	}
	if err := b.Write(0, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if b.IsZeroed() {
		t.Fatal("expected zeroed bit cleared after Write")
	}
	b.Clear()
	if !b.IsZeroed() {
		t.Fatal("expected zeroed bit set after Clear")
	}
}

func TestBlockWriteReadRoundTrip(t *testing.T) {
	b := newBlock(128, 0)
	payload := make([]byte, 2200) // spans multiple yield chunks
	for i := range payload {
		payload[i] = byte(i)
	}
	b2 := newBlock(2200, 0)
	if err := b2.Write(0, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := b2.Read(0, len(payload))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d: got %d want %d", i, got[i], payload[i])
		}
	}
	_ = b
}

func TestBlockWriteOutOfBounds(t *testing.T) {
	b := newBlock(16, 0)
	if err := b.Write(10, []byte{1, 2, 3, 4, 5, 6, 7, 8}); err == nil {
		t.Fatal("expected OutOfBounds error")
	}
}

func TestBlockReadOutOfBounds(t *testing.T) {
	b := newBlock(16, 0)
	if _, err := b.Read(0, 32); err == nil {
		t.Fatal("expected OutOfBounds error")
	}
}

func TestBlockGenerationUpdate(t *testing.T) {
	b := newBlock(16, 5)
	if b.Generation() != 5 {
		t.Fatalf("got generation %d want 5", b.Generation())
	}
	b.updateGeneration(9)
	if b.Generation() != 9 {
		t.Fatalf("got generation %d want 9", b.Generation())
	}
	if !b.TryAcquire() {
		t.Fatal("updateGeneration must preserve in-use flag semantics")
	}
}
