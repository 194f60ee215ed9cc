// Package log builds the structured logger shared by the allocator daemon
// and its ambient subsystems.
package log

import "go.uber.org/zap"

// New builds a production (JSON) logger, or a development (console,
// debug-level) logger when development is true.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Fields re-exports the zap field constructors callers commonly need, so
// packages that only log allocator events don't need their own zap import.
var (
	String   = zap.String
	Int      = zap.Int
	Uint64   = zap.Uint64
	Duration = zap.Duration
	Error    = zap.Error
)
