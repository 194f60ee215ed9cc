package allocator

import (
	"fmt"
	"time"
)

// Config controls the allocator's memory limits, cache behavior, and
// zeroing policy. The zero value is not valid; use DefaultConfig or
// TestConfig and override fields before calling Validate/WithConfig.
type Config struct {
	// MaxMemory is the configured memory budget in bytes. The allocator
	// enforces a soft 75% effective cap against this value (spec.md §4.3).
	MaxMemory int
	// MinBlockSize is the smallest size class the pool will serve, and must
	// be a power of two.
	MinBlockSize int
	// MaxBlockSize is the largest size class the pool will serve, and must
	// be a power of two >= MinBlockSize.
	MaxBlockSize int
	// Alignment is accepted and validated as a power of two, but no
	// byte-level alignment adjustment is performed by the core.
	Alignment int

	// CacheTTL is currently unused by the core; reserved for a future
	// time-based eviction policy.
	CacheTTL time.Duration
	// MaxCaches must be > 0. It is validated but not used by the core: the
	// cache always has its nine fixed size classes.
	MaxCaches int
	// InitialPoolSize is the minimum memory budget the pool must support.
	InitialPoolSize int

	// ZeroOnDealloc controls whether released blocks are scrubbed before
	// re-entering the reuse cache, and whether generation verification is
	// enforced at all (spec.md §4.4).
	ZeroOnDealloc bool
}

// DefaultConfig returns the production-sized default configuration.
func DefaultConfig() Config {
	return Config{
		MaxMemory:       1024 * 1024 * 1024, // 1GB
		MaxBlockSize:    64 * 1024,          // 64KB
		MinBlockSize:    64,                 // 64B
		Alignment:       16,
		CacheTTL:        300 * time.Second,
		MaxCaches:       1000,
		InitialPoolSize: 1024 * 1024, // 1MB
		ZeroOnDealloc:   true,
	}
}

// TestConfig returns a small configuration suited to unit tests.
func TestConfig() Config {
	return Config{
		MaxMemory:       16 * 1024,
		MaxBlockSize:    1024,
		MinBlockSize:    64,
		Alignment:       8,
		CacheTTL:        60 * time.Second,
		MaxCaches:       100,
		InitialPoolSize: 4 * 1024,
		ZeroOnDealloc:   true,
	}
}

// Validate checks the configuration against the constraints in spec.md §6.
func (c *Config) Validate() error {
	if c.MaxMemory < c.InitialPoolSize {
		return fmt.Errorf("max_memory (%d) must be >= initial_pool_size (%d)", c.MaxMemory, c.InitialPoolSize)
	}
	if !isPowerOfTwo(c.MinBlockSize) {
		return fmt.Errorf("min_block_size (%d) must be a power of two", c.MinBlockSize)
	}
	if !isPowerOfTwo(c.MaxBlockSize) {
		return fmt.Errorf("max_block_size (%d) must be a power of two", c.MaxBlockSize)
	}
	if c.MaxBlockSize < c.MinBlockSize {
		return fmt.Errorf("max_block_size (%d) must be >= min_block_size (%d)", c.MaxBlockSize, c.MinBlockSize)
	}
	if !isPowerOfTwo(c.Alignment) {
		return fmt.Errorf("alignment (%d) must be a power of two", c.Alignment)
	}
	if c.MaxCaches <= 0 {
		return fmt.Errorf("max_caches must be > 0")
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func log2(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}
