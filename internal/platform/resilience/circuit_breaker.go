package resilience

import (
	"context"
	"errors"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = crerr.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards calls to one upstream dependency.
// A disabled breaker runs every call and always reports closed.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	enabled bool
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, logger *logging.Logger) *CircuitBreaker {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = NormalizeCircuitBreakerConfig(cfg)
	threshold := uint32(cfg.FailureThreshold)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(cfg.HalfOpenMaxReq),
		Interval:    cfg.FailureWindow,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about upstream health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		enabled: cfg.Enabled,
	}
}

// Execute runs fn through the breaker. Rejections are returned as ErrCircuitOpen.
func (b *CircuitBreaker) Execute(fn func() ([]byte, error)) ([]byte, error) {
	if b == nil || !b.enabled {
		return fn()
	}

	out, err := b.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, crerr.Mark(crerr.Wrap(err, b.breaker.Name()), ErrCircuitOpen)
	}
	if err != nil {
		return nil, err
	}

	raw, _ := out.([]byte)
	return raw, nil
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil || !b.enabled {
		return CircuitStateClosed
	}
	switch b.breaker.State() {
	case gobreaker.StateOpen:
		return CircuitStateOpen
	case gobreaker.StateHalfOpen:
		return CircuitStateHalfOpen
	default:
		return CircuitStateClosed
	}
}
