// Package calendarservice wires configuration, storage, providers and the
// HTTP API into a runnable shadow calendar service.
package calendarservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/api"
	"github.com/careerpilot/shadowcal/internal/auth"
	"github.com/careerpilot/shadowcal/internal/config"
	"github.com/careerpilot/shadowcal/internal/enrich"
	"github.com/careerpilot/shadowcal/internal/factory"
	"github.com/careerpilot/shadowcal/internal/geocode"
	"github.com/careerpilot/shadowcal/internal/health"
	"github.com/careerpilot/shadowcal/internal/logger"
	"github.com/careerpilot/shadowcal/internal/schedule"
	"github.com/careerpilot/shadowcal/internal/services"
	"github.com/careerpilot/shadowcal/internal/store"
	"github.com/careerpilot/shadowcal/internal/transit"
)

// Run starts the shadow calendar HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("shadowcal")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("transit_base_url", cfg.TransitBaseURL).
		Str("geocode_base_url", cfg.GeocodeBaseURL).
		Msg("Shadow calendar service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	transitClient := transit.New(cfg.TransitBaseURL, cfg.TransitAPIKey, log)
	geoClient := geocode.New(
		cfg.GeocodeBaseURL,
		cfg.GeocodeAPIKey,
		time.Duration(cfg.GeocodeCacheTTLHours)*time.Hour,
		cfg.GeocodeCacheSize,
		log,
	)

	router := buildRouter(st, transitClient, geoClient, cfg, log)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, st, transitClient)

	// Block startup until the store reports healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires domain services and handlers.
func buildRouter(st store.Store, transitClient *transit.Client, geoClient *geocode.Client, cfg *config.Config, log zerolog.Logger) http.Handler {
	synth := schedule.NewCommuteSynthesizer(transitClient, geoClient, log)
	projector := schedule.NewProjector(transitClient, log)

	deps := api.Deps{
		Calendar:   services.NewCalendarService(st, synth, log),
		Preflight:  services.NewPreflightService(st, projector, geoClient, log),
		Enricher:   enrich.New(transitClient, cfg.EnrichConcurrency, log),
		Authorizer: auth.NewMockAuthorizer(),
	}
	return api.NewRouter(deps)
}

// startHealthCheckers starts component checkers and the service-level
// aggregator, then binds aggregate health into the health endpoint.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, transitClient *transit.Client) *health.Service {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.Checker
	if p, ok := st.(health.Pinger); ok {
		storeChecker := health.NewPingChecker("store", p, log, probeTimeout)
		go storeChecker.Start(ctx, interval)
		checkers = append(checkers, storeChecker)
	}

	transitChecker := health.NewPingChecker("transit", transitClient, log, probeTimeout)
	go transitChecker.Start(ctx, interval)
	checkers = append(checkers, transitChecker)

	svcHealth := health.NewService(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.Service) error {
	// Checkers start unhealthy and need a first probe cycle to flip.
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
