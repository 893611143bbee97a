// Package server runs the devserver: it builds the middleware from the
// configuration file, mounts it together with the registration endpoint,
// and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-yaml"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/n9te9/go-graphql-devserver/config"
	"github.com/n9te9/go-graphql-devserver/devsource"
	"github.com/n9te9/go-graphql-devserver/middleware"
	"github.com/n9te9/go-graphql-devserver/registry"
)

const shutdownTimeout = 5 * time.Second

// Run starts the devserver with the given configuration file and blocks
// until SIGTERM or interrupt.
func Run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	if cfg.Opentelemetry.TracingSetting.Enable {
		shutdown, err := initTracing(ctx, cfg.ServiceName, cfg.Opentelemetry.TracingSetting.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to shut down tracer provider", zap.Error(err))
			}
		}()
	}

	handler, err := buildMiddleware(cfg, logger)
	if err != nil {
		return err
	}

	reg := registry.New(handler, registrationBuilder(cfg, logger), logger)
	go reg.Start()
	defer reg.Close()

	mux := http.NewServeMux()
	mux.Handle(cfg.Endpoint, reg)
	mux.HandleFunc("/sources/registration", reg.HandleRegistration)

	var root http.Handler = mux
	if cfg.Opentelemetry.TracingSetting.Enable {
		root = otelhttp.NewHandler(root, cfg.ServiceName)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("devserver started",
			zap.Int("port", cfg.Port),
			zap.String("endpoint", cfg.Endpoint),
			zap.Bool("mock", cfg.Mock.Enable),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("devserver stopped")

	return nil
}

// buildMiddleware composes the middleware from the configured sources with
// discovered dev sources layered over them.
func buildMiddleware(cfg *config.Config, logger *zap.Logger) (*middleware.Middleware, error) {
	sources := cfg.DataSources()
	if cfg.DevSourcesDir != "" {
		discovered, err := devsource.Load(cfg.DevSourcesDir)
		if err != nil {
			return nil, err
		}
		if len(discovered) > 0 {
			logger.Info("discovered dev sources",
				zap.String("dir", cfg.DevSourcesDir),
				zap.Int("count", len(discovered)),
			)
		}
		sources = devsource.Override(sources, discovered)
	}

	opts := cfg.Options()
	opts.Sources = sources
	opts.Logger = logger
	return middleware.New(opts)
}

// registrationBuilder rebuilds the middleware from a registration body: a
// YAML list of source settings replacing the configured sources.
func registrationBuilder(cfg *config.Config, logger *zap.Logger) registry.BuildFunc {
	return func(body []byte) (http.Handler, error) {
		var settings []config.SourceSetting
		if err := yaml.Unmarshal(body, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse registration body: %w", err)
		}

		opts := cfg.Options()
		opts.Sources = config.ConvertSources(settings)
		opts.Logger = logger
		return middleware.New(opts)
	}
}
