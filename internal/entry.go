// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/libris/internal/catalog"
	"github.com/starford/libris/internal/mcpserver"
	"github.com/starford/libris/internal/metrics"
	"github.com/starford/libris/internal/sse"
	"github.com/starford/libris/internal/store"
	"github.com/starford/libris/internal/web"
)

func (app *application) setup() (*Config, *slog.Logger, error) {
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	logger := app.logger
	if logger == nil {
		// Initialize structured JSON logger.
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)
	return app.config, logger, nil
}

// NewHTTPHandler builds the full HTTP surface: middleware, health checks,
// metrics and the catalog routes.
func NewHTTPHandler(svc *catalog.Service, views *web.Renderer, events http.Handler, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", web.Live)
	r.Get("/health/ready", web.Ready(svc.Ping))

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Mount("/", web.NewRouter(svc, views, events))
	return r
}

// Run starts the HTTP server with the given options and blocks until a
// shutdown signal arrives or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	cfg, logger, err := app.setup()
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("templates_dir", cfg.Web.TemplatesDir),
		slog.Bool("metrics_enabled", cfg.Metrics.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	views, err := web.NewRenderer(cfg.Web.TemplatesDir)
	if err != nil {
		return fmt.Errorf("init templates: %w", err)
	}

	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	svcOpts := []catalog.Option{catalog.WithNotifier(broker)}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		svcOpts = append(svcOpts, catalog.WithMetrics(m))
	}
	svc := catalog.NewService(db, svcOpts...)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHTTPHandler(svc, views, broker, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Web.WatchTemplates {
		g.Go(func() error {
			return views.Watch(gCtx, cfg.Web.TemplatesDir, logger)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Streaming clients would otherwise hold Shutdown until the timeout.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the catalog as MCP tools over stdin/stdout. Logs go to
// stderr so they never mix with the protocol stream.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.logger == nil && app.config != nil {
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}

	cfg, logger, err := app.setup()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	logger.Info("MCP server starting", slog.String("sqlite_path", cfg.SQLite.Path))
	if err := mcpserver.New(catalog.NewService(db)).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
