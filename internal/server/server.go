package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"batchgate/internal/api"
	"batchgate/internal/batch"
	"batchgate/internal/cache"
	"batchgate/internal/config"
	"batchgate/internal/dispatch"
	"batchgate/internal/jsonpath"
	"batchgate/internal/ws"
)

// Server represents the main server
type Server struct {
	cfg        *config.Config
	dispatcher batch.Dispatcher
	respCache  cache.Cache
	monitor    *dispatch.Monitor
	apiServer  *http.Server
	wsServer   *http.Server
	logger     zerolog.Logger
}

// New creates a new Server
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	// Create cache based on config
	var respCache cache.Cache
	if cfg.IsCacheEnabled() {
		respCache = cache.NewMemoryCache(cfg.Cache.Size, cfg.Cache.GetTTLDuration())
		logger.Info().
			Int("size", cfg.Cache.Size).
			Int("ttl", cfg.Cache.TTL).
			Msg("cache enabled")
	} else {
		respCache = cache.NewNoopCache()
		logger.Info().Msg("cache disabled")
	}

	// Build the dispatch chain: backend forwarder, optionally behind the cache
	forwarder := dispatch.NewForwarder(cfg.BackendURL, dispatch.RetryConfig{
		Enabled:     cfg.RetryEnabled,
		MaxAttempts: cfg.RetryMaxAttempts,
	}, logger)

	var dispatcher batch.Dispatcher = forwarder
	if cfg.IsCacheEnabled() {
		dispatcher = dispatch.NewCachingDispatcher(forwarder, respCache, logger)
	}

	monitor := dispatch.NewMonitor(cfg.BackendURL, cfg.GetHealthCheckIntervalDuration(), logger)

	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		respCache:  respCache,
		monitor:    monitor,
		logger:     logger,
	}, nil
}

// Start starts the server
func (s *Server) Start() error {
	s.monitor.Start()

	executor := batch.NewExecutor(s.dispatcher, jsonpath.Evaluate, s.logger)

	apiHandler := api.NewHandler(executor, s.cfg, s.monitor.Healthy, s.logger)
	wsHandler := ws.NewHandler(executor, s.logger)

	apiAddr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	wsAddr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.WSPort)

	// Batch execution has no per-item deadline, so neither server sets read or
	// write timeouts that could cut a long-running batch short.
	s.apiServer = &http.Server{
		Addr:              apiAddr,
		Handler:           apiHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", apiAddr).Msg("starting batch API server")
		if err := s.apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("batch API server error")
		}
	}()

	s.wsServer = &http.Server{
		Addr:              wsAddr,
		Handler:           wsHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", wsAddr).Msg("starting WebSocket server")
		if err := s.wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("WebSocket server error")
		}
	}()

	s.logger.Info().
		Str("batch", fmt.Sprintf("http://%s/batch", apiAddr)).
		Str("ws", fmt.Sprintf("ws://%s/", wsAddr)).
		Str("backend", s.cfg.BackendURL).
		Msg("endpoints available")

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server...")

	var apiErr, wsErr error

	if s.apiServer != nil {
		apiErr = s.apiServer.Shutdown(ctx)
	}
	if s.wsServer != nil {
		wsErr = s.wsServer.Shutdown(ctx)
	}

	s.monitor.Stop()
	s.respCache.Close()

	if apiErr != nil {
		return fmt.Errorf("batch API server shutdown error: %w", apiErr)
	}
	if wsErr != nil {
		return fmt.Errorf("WebSocket server shutdown error: %w", wsErr)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}
