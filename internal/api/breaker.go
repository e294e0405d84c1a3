package api

import (
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
)

// newBreaker opens after three consecutive transport or 5xx failures and
// lets a probe through after 30 seconds.
func newBreaker(logger *slog.Logger) circuitbreaker.CircuitBreaker[*response] {
	return circuitbreaker.New[*response](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("commerce api circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})
}
