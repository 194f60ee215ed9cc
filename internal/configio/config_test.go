package configio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
schema_version: "1.0.0"
max_memory: 16384
min_block_size: 64
max_block_size: 1024
alignment: 8
cache_ttl: 60s
max_caches: 100
initial_pool_size: 4096
zero_on_dealloc: true
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTemp(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16384, cfg.MaxMemory)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
}

func TestLoadRejectsMissingSchemaVersion(t *testing.T) {
	path := writeTemp(t, `
max_memory: 16384
min_block_size: 64
max_block_size: 1024
alignment: 8
max_caches: 100
initial_pool_size: 4096
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for missing schema_version")
}

func TestLoadRejectsIncompatibleSchemaVersion(t *testing.T) {
	path := writeTemp(t, `
schema_version: "2.0.0"
max_memory: 16384
min_block_size: 64
max_block_size: 1024
alignment: 8
max_caches: 100
initial_pool_size: 4096
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for schema_version outside ^1")
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeTemp(t, `
schema_version: "1.0.0"
max_memory: 16384
min_block_size: 100
max_block_size: 1024
alignment: 8
max_caches: 100
initial_pool_size: 4096
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for non-power-of-two min_block_size")
}

func TestWatcherDeliversReload(t *testing.T) {
	path := writeTemp(t, validYAML)
	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	updated := validYAML + "\n" // trivial content change to trigger a write event
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-w.Updates():
		assert.Equal(t, 16384, cfg.MaxMemory)
	case err := <-w.Errors():
		t.Fatalf("unexpected reload error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherAppliesSafeFieldChange(t *testing.T) {
	path := writeTemp(t, validYAML)
	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	updated := `
schema_version: "1.0.0"
max_memory: 16384
min_block_size: 64
max_block_size: 1024
alignment: 8
cache_ttl: 120s
max_caches: 100
initial_pool_size: 4096
zero_on_dealloc: true
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-w.Updates():
		assert.Equal(t, 120*time.Second, cfg.CacheTTL)
	case err := <-w.Errors():
		t.Fatalf("unexpected reload error for a safe field change: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherRejectsStructuralFieldChange(t *testing.T) {
	path := writeTemp(t, validYAML)
	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	updated := `
schema_version: "1.0.0"
max_memory: 16384
min_block_size: 128
max_block_size: 1024
alignment: 8
cache_ttl: 60s
max_caches: 100
initial_pool_size: 4096
zero_on_dealloc: true
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-w.Updates():
		t.Fatalf("expected a min_block_size change to be rejected, got applied config %+v", cfg)
	case err := <-w.Errors():
		assert.Error(t, err, "expected a reload error naming the rejected structural field")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rejection")
	}
}
