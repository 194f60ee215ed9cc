// Package breaker wraps allocator.Allocator.Allocate with a circuit
// breaker, so a run of allocation failures (sustained budget exhaustion)
// trips open and fails fast instead of letting every caller independently
// retry against a pool that has no room.
package breaker

import (
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fklr/atomalloc/internal/allocator"
)

// Breaker guards Allocate calls with a gobreaker.CircuitBreaker.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// Settings controls when the breaker trips and how long it stays open.
type Settings struct {
	// MinRequests is the minimum sample size ReadyToTrip considers.
	MinRequests uint32
	// FailureRatio is the fraction of failed requests (in [0,1]) within the
	// sample that trips the breaker open.
	FailureRatio float64
}

// DefaultSettings trips after at least 10 requests with a 60% failure rate,
// matching the ratio-based ReadyToTrip idiom used elsewhere in the corpus.
func DefaultSettings() Settings {
	return Settings{MinRequests: 10, FailureRatio: 0.6}
}

// New builds a Breaker named name, logging state transitions through logger.
func New(name string, settings Settings, logger *zap.Logger) *Breaker {
	b := &Breaker{logger: logger}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("allocator circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return b
}

// Allocate runs alloc.Allocate(size) through the breaker. When the breaker
// is open it fails immediately with gobreaker.ErrOpenState instead of
// reaching the allocator at all.
func (b *Breaker) Allocate(alloc *allocator.Allocator, size int) (*allocator.Block, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return alloc.Allocate(size)
	})
	if err != nil {
		return nil, err
	}
	return result.(*allocator.Block), nil
}

// State reports the breaker's current state (closed, half-open, or open).
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
