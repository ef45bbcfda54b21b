package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker guarding the graph store.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
}

// DefaultBreakerConfig trips after a 60% failure ratio over at least three
// calls and probes again after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		ReadyToTripRatio: 0.6,
	}
}

// BreakerStore wraps a Store with circuit breaking so a dead graph backend
// fails fast instead of stacking up timeouts on every query.
type BreakerStore struct {
	store  Store
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerStore wraps the store.
func NewBreakerStore(store Store, cfg BreakerConfig, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        "graph-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("graph store circuit breaker state change",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerStore{
		store:  store,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

// Run implements Store.
func (b *BreakerStore) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, err := b.cb.Execute(func() (interface{}, error) {
		return b.store.Run(ctx, query, params)
	})
	if err != nil {
		return nil, err
	}
	return rows.([]map[string]any), nil
}

// Close implements Store.
func (b *BreakerStore) Close(ctx context.Context) error {
	return b.store.Close(ctx)
}
