// Propsight - Real Estate Listing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propsight

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/propsight/internal/api"
	"github.com/tomtom215/propsight/internal/auth"
	"github.com/tomtom215/propsight/internal/cache"
	"github.com/tomtom215/propsight/internal/config"
	"github.com/tomtom215/propsight/internal/filter"
	"github.com/tomtom215/propsight/internal/logging"
	"github.com/tomtom215/propsight/internal/middleware"
	"github.com/tomtom215/propsight/internal/supervisor"
	"github.com/tomtom215/propsight/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	perfWindow         = 1000
	cacheJanitorEvery  = time.Minute
	httpIdleTimeout    = 60 * time.Second
	httpMaxHeaderBytes = 1 << 20
)

func main() {
	tokenFor := flag.String("token", "", "print a signed JWT for this user ID and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if *tokenFor != "" {
		if err := printToken(cfg, *tokenFor); err != nil {
			logging.Fatal().Err(err).Msg("Failed to issue token")
		}
		return
	}

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("tier", cfg.Recommend.Tier).
		Msg("Starting Propsight")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comp, err := buildComponents(ctx, cfg, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize components")
	}
	defer func() {
		if err := comp.Close(); err != nil {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger(logging.WithComponent("supervisor")),
		supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout},
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	server, err := buildHTTPServer(cfg, comp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to build HTTP server")
		return
	}
	addServices(tree, cfg, comp, server)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("Propsight stopped")
}

// buildHTTPServer assembles the handler, router and server.
func buildHTTPServer(cfg *config.Config, comp *components) (*http.Server, error) {
	compiler, err := filter.NewCompiler(nil)
	if err != nil {
		return nil, fmt.Errorf("filter compiler: %w", err)
	}

	deps := api.Deps{
		Store:   comp.db,
		Engine:  comp.engine,
		Config:  cfg,
		Cache:   comp.cache,
		Filters: compiler,
		Matrix:  comp.matrix,
		Perf:    middleware.NewPerformanceMonitor(perfWindow),
		Version: version,
	}
	// Typed nils must not reach the interface fields.
	if comp.emitter != nil {
		deps.Emitter = comp.emitter
	}
	if comp.consumer != nil {
		deps.Consumer = comp.consumer
	}

	handler, err := api.NewHandler(deps)
	if err != nil {
		return nil, fmt.Errorf("api handler: %w", err)
	}

	router := api.NewRouter(handler, comp.auth, api.ChiMiddlewareConfigFromSecurity(&cfg.Security))

	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       httpIdleTimeout,
		MaxHeaderBytes:    httpMaxHeaderBytes,
	}, nil
}

// addServices places every long-running component in its layer.
func addServices(tree *supervisor.SupervisorTree, cfg *config.Config, comp *components, server *http.Server) {
	logger := logging.Logger()

	tree.AddDataService(services.NewMatrixRefreshService(comp.matrix, cfg.Recommend.MatrixRefreshInterval, logger))
	if mem, ok := comp.cache.(*cache.Memory); ok {
		tree.AddDataService(services.NewCacheJanitorService(mem, cacheJanitorEvery, logger))
	}

	if comp.emitter != nil {
		tree.AddMessagingService(comp.emitter)
	}
	if comp.consumer != nil {
		tree.AddMessagingService(comp.consumer)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
}

// printToken writes a JWT for userID to stdout.
func printToken(cfg *config.Config, userID string) error {
	manager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return err
	}
	token, err := manager.GenerateToken(userID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
