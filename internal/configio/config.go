// Package configio loads allocator.Config from YAML files and can watch
// those files for changes, grounded on the same fsnotify idiom the
// teacher's virtual filesystem watcher uses.
package configio

import (
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/fklr/atomalloc/internal/allocator"
)

// schemaConstraint is the range of config schema versions this build
// understands. Bumping MaxBlockSize's type or adding a required field
// should bump the major version and this constraint together.
const schemaConstraint = "^1"

// FileConfig is the on-disk YAML representation of allocator.Config. Field
// names are snake_case to match the Rust original's config.rs and the rest
// of this repo's YAML-facing structs.
type FileConfig struct {
	SchemaVersion   string        `yaml:"schema_version"`
	MaxMemory       int           `yaml:"max_memory"`
	MinBlockSize    int           `yaml:"min_block_size"`
	MaxBlockSize    int           `yaml:"max_block_size"`
	Alignment       int           `yaml:"alignment"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	MaxCaches       int           `yaml:"max_caches"`
	InitialPoolSize int           `yaml:"initial_pool_size"`
	ZeroOnDealloc   bool          `yaml:"zero_on_dealloc"`
}

func (fc FileConfig) toAllocatorConfig() allocator.Config {
	return allocator.Config{
		MaxMemory:       fc.MaxMemory,
		MinBlockSize:    fc.MinBlockSize,
		MaxBlockSize:    fc.MaxBlockSize,
		Alignment:       fc.Alignment,
		CacheTTL:        fc.CacheTTL,
		MaxCaches:       fc.MaxCaches,
		InitialPoolSize: fc.InitialPoolSize,
		ZeroOnDealloc:   fc.ZeroOnDealloc,
	}
}

// Load reads path as YAML, checks its schema_version against the version
// this build supports, and returns the resulting allocator.Config after
// running allocator.Config.Validate.
func Load(path string) (allocator.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return allocator.Config{}, fmt.Errorf("configio: read %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return allocator.Config{}, fmt.Errorf("configio: parse %s: %w", path, err)
	}

	if err := checkSchemaVersion(fc.SchemaVersion); err != nil {
		return allocator.Config{}, fmt.Errorf("configio: %s: %w", path, err)
	}

	cfg := fc.toAllocatorConfig()
	if err := cfg.Validate(); err != nil {
		return allocator.Config{}, fmt.Errorf("configio: %s: %w", path, err)
	}
	return cfg, nil
}

func checkSchemaVersion(version string) error {
	if version == "" {
		return fmt.Errorf("missing schema_version")
	}
	constraint, err := semver.NewConstraint(schemaConstraint)
	if err != nil {
		return err
	}
	sv, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q: %w", version, err)
	}
	if !constraint.Check(sv) {
		return fmt.Errorf("schema_version %s does not satisfy %s", version, schemaConstraint)
	}
	return nil
}

// structuralFieldChange reports the first structural field that differs
// between prev and next. Only min_block_size, max_block_size, and
// alignment are structural: the running Allocator's MemoryPool/SizeClass
// layout is built around them at construction time and cannot be migrated
// in place. cache_ttl, max_caches, and zero_on_dealloc are safe to apply
// live.
func structuralFieldChange(prev, next allocator.Config) string {
	switch {
	case prev.MinBlockSize != next.MinBlockSize:
		return "min_block_size"
	case prev.MaxBlockSize != next.MaxBlockSize:
		return "max_block_size"
	case prev.Alignment != next.Alignment:
		return "alignment"
	default:
		return ""
	}
}

// Watcher re-loads a config file whenever it changes on disk. A reload
// that only changes safe-to-apply fields (cache_ttl, max_caches,
// zero_on_dealloc) is delivered on Updates. A reload that changes a
// structural field (min_block_size, max_block_size, alignment) is
// rejected: it is reported on Errors instead, and the last-applied config
// is left in place, since the pools built around those fields are not
// migrated in place. Parse/validation failures are also delivered on
// Errors.
type Watcher struct {
	fsw     *fsnotify.Watcher
	path    string
	current allocator.Config
	updates chan allocator.Config
	errs    chan error
	done    chan struct{}
}

// NewWatcher loads path once to establish the baseline config, then
// starts watching path directly for writes and creates.
func NewWatcher(path string) (*Watcher, error) {
	initial, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("configio: initial load of %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("configio: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("configio: watch %s: %w", path, err)
	}

	w := &Watcher{
		fsw:     fsw,
		path:    path,
		current: initial,
		updates: make(chan allocator.Config, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.errs <- err
				continue
			}
			if field := structuralFieldChange(w.current, cfg); field != "" {
				w.errs <- fmt.Errorf("configio: %s: rejected reload changing structural field %q live; restart to apply it", w.path, field)
				continue
			}
			w.current = cfg
			w.updates <- cfg
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.errs <- err
		case <-w.done:
			return
		}
	}
}

// Updates delivers each successfully reloaded configuration.
func (w *Watcher) Updates() <-chan allocator.Config { return w.updates }

// Errors delivers reload failures (parse/validate errors, fsnotify errors).
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
