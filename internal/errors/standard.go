// Package errors provides a caller-tagged error format for the ambient
// subsystems (config loading, tracing, circuit breaking) that sit around
// the core allocator. The core allocator has its own domain-specific
// taxonomy in allocator.AllocError/BlockError; this package is for
// operational failures that aren't part of that taxonomy.
package errors

import (
	"fmt"
	"runtime"
)

// Category groups operational errors by the ambient subsystem that raised
// them.
type Category string

const (
	CategoryConfig    Category = "CONFIG"
	CategoryTelemetry Category = "TELEMETRY"
	CategoryBreaker   Category = "BREAKER"
	CategorySystem    Category = "SYSTEM"
)

// OpError is a consistently formatted operational error carrying the
// function that raised it, for log correlation.
type OpError struct {
	Category Category
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Category, e.Code, e.Message, e.Caller)
}

// New builds an OpError, recording the immediate caller's function name.
func New(category Category, code, message string, context map[string]interface{}) *OpError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &OpError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// ConfigLoadFailed wraps a configio.Load or Watch failure with the path
// that failed to load.
func ConfigLoadFailed(path string, cause error) *OpError {
	return New(CategoryConfig, "CONFIG_LOAD_FAILED",
		fmt.Sprintf("failed to load config from %s: %v", path, cause),
		map[string]interface{}{"path": path, "cause": cause})
}

// TracingInitFailed wraps a telemetry.Init failure with the collector
// endpoint that was attempted.
func TracingInitFailed(endpoint string, cause error) *OpError {
	return New(CategoryTelemetry, "TRACING_INIT_FAILED",
		fmt.Sprintf("failed to initialize tracing against %s: %v", endpoint, cause),
		map[string]interface{}{"endpoint": endpoint, "cause": cause})
}

// BreakerOpen reports that name's circuit breaker is open and rejecting
// requests.
func BreakerOpen(name string) *OpError {
	return New(CategoryBreaker, "BREAKER_OPEN",
		fmt.Sprintf("circuit breaker %s is open", name),
		map[string]interface{}{"breaker": name})
}
