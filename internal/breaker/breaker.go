// Package breaker gates upstream calls with a consecutive-failure circuit
// breaker backed by sony/gobreaker.
package breaker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/crimson-sun/djenbridge/internal/metrics"
	"github.com/crimson-sun/djenbridge/internal/model"
)

// State mirrors the breaker state machine.
type State string

const (
	Closed   State = "closed"
	HalfOpen State = "half-open"
	Open     State = "open"
)

// ErrOpen is returned without calling upstream while the breaker is open,
// or while its half-open probe is already in flight.
var ErrOpen = errors.New("circuit breaker open")

const (
	DefaultFailureThreshold = 3
	DefaultCoolDown         = 60 * time.Second
)

// Config controls the trip policy.
type Config struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that open the circuit
	CoolDown         time.Duration // open → half-open delay
}

// Breaker wraps a gobreaker.CircuitBreaker for calls returning T.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a Breaker. Invalid-query errors count as successes: they
// say nothing about upstream health.
func New[T any](cfg Config) *Breaker[T] {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = DefaultCoolDown
	}
	if cfg.Name == "" {
		cfg.Name = "djen"
	}
	threshold := cfg.FailureThreshold

	metrics.BreakerState.Set(0)
	return &Breaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 1,
			Timeout:     cfg.CoolDown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
				metrics.BreakerState.Set(gaugeValue(to))
			},
			IsSuccessful: isSuccessful,
		}),
	}
}

// Execute runs fn unless the circuit is open. A rejected call returns an
// error wrapping ErrOpen.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return v, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return v, err
}

// State reports the current state. Reading it may move an open breaker
// whose cool-down elapsed to half-open.
func (b *Breaker[T]) State() State {
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return Open
	case gobreaker.StateHalfOpen:
		return HalfOpen
	default:
		return Closed
	}
}

// ConsecutiveFailures reports the current failure streak.
func (b *Breaker[T]) ConsecutiveFailures() uint32 {
	return b.cb.Counts().ConsecutiveFailures
}

func isSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var iq *model.InvalidQueryError
	return errors.As(err, &iq)
}

func gaugeValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
