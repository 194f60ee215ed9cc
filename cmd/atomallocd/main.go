// Command atomallocd runs the block allocator as a long-lived process: it
// loads its configuration, watches the config file for changes, logs
// periodic allocation statistics, and exercises a small synthetic workload
// so the allocator's subsystems (cache, pool, generation tracking) stay
// warm for observation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sys/cpu"

	"github.com/fklr/atomalloc/internal/allocator"
	"github.com/fklr/atomalloc/internal/breaker"
	"github.com/fklr/atomalloc/internal/configio"
	opserrors "github.com/fklr/atomalloc/internal/errors"
	"github.com/fklr/atomalloc/internal/log"
	"github.com/fklr/atomalloc/internal/metrics"
	"github.com/fklr/atomalloc/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	var (
		configPath     = flag.String("config", "", "path to a YAML allocator config (default config is used if empty)")
		development    = flag.Bool("dev", false, "use a development (console) logger instead of JSON")
		jaegerEndpoint = flag.String("jaeger", "", "Jaeger collector endpoint; tracing is disabled if empty")
		statsInterval  = flag.Duration("stats-interval", 10*time.Second, "how often to log a stats snapshot")
		showVersion    = flag.Bool("version", false, "print version information and exit")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "atomalloc block allocator daemon.\n\nOPTIONS:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("atomallocd %s (cpu: avx2=%v sse4.2=%v)\n", serviceVersion, cpu.X86.HasAVX2, cpu.X86.HasSSE42)
		return
	}

	logger, err := log.New(*development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "atomallocd: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := allocator.DefaultConfig()
	if *configPath != "" {
		loaded, err := configio.Load(*configPath)
		if err != nil {
			logger.Fatal("failed to load config", log.Error(opserrors.ConfigLoadFailed(*configPath, err)))
		}
		cfg = loaded
	}

	alloc, err := allocator.WithConfig(cfg)
	if err != nil {
		logger.Fatal("invalid allocator config", log.Error(err))
	}

	cb := breaker.New("atomallocd", breaker.DefaultSettings(), logger)
	recorder := metrics.NewDefaultRecorder()

	if *jaegerEndpoint != "" {
		if err := telemetry.Init(*jaegerEndpoint); err != nil {
			logger.Warn("tracing disabled", log.Error(opserrors.TracingInitFailed(*jaegerEndpoint, err)))
		} else {
			defer telemetry.Shutdown(context.Background())
		}
	}
	traced := telemetry.Wrap(alloc)

	var watcher *configio.Watcher
	if *configPath != "" {
		watcher, err = configio.NewWatcher(*configPath)
		if err != nil {
			logger.Warn("config hot-reload disabled", log.Error(err))
		} else {
			defer watcher.Close()
			logger.Info("watching config for changes", log.String("path", *configPath))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("atomallocd starting",
		log.Int("min_block_size", cfg.MinBlockSize),
		log.Int("max_block_size", cfg.MaxBlockSize),
		log.Int("max_memory", cfg.MaxMemory),
	)

	ticker := time.NewTicker(*statsInterval)
	defer ticker.Stop()

	var updates <-chan allocator.Config
	var reloadErrs <-chan error
	if watcher != nil {
		updates = watcher.Updates()
		reloadErrs = watcher.Errors()
	}

	var prev allocator.StatsSnapshot
	outstanding := make([]*allocator.Block, 0, 16)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			snap := alloc.Stats()
			prev = recorder.ObserveDelta(prev, snap)
			logger.Info("stats",
				log.Uint64("allocated", snap.Allocated),
				log.Uint64("freed", snap.Freed),
				log.Uint64("cache_hits", snap.CacheHits),
				log.Uint64("cache_misses", snap.CacheMisses),
			)

			if b, err := cb.Allocate(alloc, 256); err == nil {
				outstanding = append(outstanding, b)
			} else if cb.State() == gobreaker.StateOpen {
				logger.Warn("synthetic allocation skipped", log.Error(opserrors.BreakerOpen("atomallocd")))
			}
			if len(outstanding) > 8 {
				b := outstanding[0]
				outstanding = outstanding[1:]
				if err := traced.Deallocate(ctx, b); err != nil {
					logger.Warn("deallocate failed", log.Error(err))
				}
			}
		case cfg := <-updates:
			// Hot reload validates the new config for visibility only; the
			// running Allocator's subsystems (pool sizing, cache classes)
			// are fixed at construction and are not migrated in place.
			logger.Info("config reloaded",
				log.Int("max_memory", cfg.MaxMemory),
				log.Int("max_block_size", cfg.MaxBlockSize),
			)
		case err := <-reloadErrs:
			logger.Warn("config reload failed", log.Error(err))
		}
	}

	logger.Info("atomallocd stopped")
}
