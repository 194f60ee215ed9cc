package log

import "testing"

func TestNewProductionLogger(t *testing.T) {
	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false): %v", err)
	}
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
	defer logger.Sync()
}

func TestNewDevelopmentLogger(t *testing.T) {
	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true): %v", err)
	}
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
	defer logger.Sync()
}
