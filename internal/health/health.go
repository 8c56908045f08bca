// Package health provides cached component health probes and a service-level
// aggregator. Probes run on their own tickers; readers never block.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Pinger is implemented by components that expose a health check.
// HealthPing must return nil when the component is healthy.
type Pinger interface {
	HealthPing(ctx context.Context) error
}

// Checker is implemented by component-level checkers.
type Checker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// PingChecker adapts any Pinger (store, transit provider) into a Checker.
type PingChecker struct {
	name         string
	target       Pinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewPingChecker returns a checker that starts unhealthy until its first
// successful probe.
func NewPingChecker(name string, target Pinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	return &PingChecker{name: name, target: target, log: log, probeTimeout: probeTimeout}
}

// Name returns the checker name.
func (c *PingChecker) Name() string { return c.name }

// IsHealthy returns the cached health status (non-blocking).
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start begins periodic probing until ctx is cancelled.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		to := c.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		probeCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		if err := c.target.HealthPing(probeCtx); err != nil {
			c.log.Error().Stack().Str("checker", c.name).Err(err).Msg("health probe failed")
			c.healthy.Store(0)
			return
		}
		c.healthy.Store(1)
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// Service aggregates component checkers into a single service health flag.
type Service struct {
	healthy atomic.Int32
	deps    []Checker
	log     zerolog.Logger
}

// NewService builds the aggregator; it starts unhealthy.
func NewService(log zerolog.Logger, deps ...Checker) *Service {
	return &Service{deps: deps, log: log}
}

// IsHealthy returns cached service health.
func (s *Service) IsHealthy() bool { return s.healthy.Load() == 1 }

// Start periodically evaluates dependency health and logs transitions.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(0)
	eval := func() {
		all := int32(1)
		for _, c := range s.deps {
			if !c.IsHealthy() {
				all = 0
			}
		}
		s.healthy.Store(all)
		if all != prev {
			if all == 1 {
				s.log.Info().Msg("service health: UP")
			} else {
				s.log.Error().Msg("service health: DOWN")
			}
			prev = all
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
