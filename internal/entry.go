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

	"github.com/starford/devarchitect/internal/api"
	"github.com/starford/devarchitect/internal/architectservice"
	"github.com/starford/devarchitect/internal/generation"
	"github.com/starford/devarchitect/internal/generator"
	"github.com/starford/devarchitect/internal/history"
	"github.com/starford/devarchitect/internal/kv"
	"github.com/starford/devarchitect/internal/mcpserver"
	"github.com/starford/devarchitect/internal/prefs"
	"github.com/starford/devarchitect/internal/sse"
)

// Components is the wired application graph shared by the HTTP server,
// the MCP server, and the CLI commands.
type Components struct {
	Config  *Config
	Logger  *slog.Logger
	Store   kv.Store
	History *history.Store
	Broker  *sse.Broker
	Service *architectservice.Service

	closeStore func() error
}

// Close stops the broker and releases the store.
func (c *Components) Close() error {
	c.Broker.Close()
	return c.closeStore()
}

// Build wires storage, the generation service, and the controller from the
// configured options. Callers must Close the result.
func Build(ctx context.Context, opts ...Option) (*Components, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("model", cfg.Generator.Model),
		slog.Bool("online", cfg.Generator.Online()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, closeStore, err := kv.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	gen := app.generator
	if gen == nil {
		gen, err = newGenerator(ctx, cfg.Generator, logger)
		if err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	broker := sse.NewBroker(500 * time.Millisecond)
	hist := history.New(store, logger)
	ctrl := generation.New(gen, hist, logger,
		generation.WithObserver(func(st generation.State) {
			broker.Publish(sse.Event{Type: sse.TypeGenerationState, Data: st})
		}),
	)
	svc := architectservice.NewService(ctrl, hist, prefs.New(store, logger), broker.PublishHistoryChanged)

	return &Components{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		History:    hist,
		Broker:     broker,
		Service:    svc,
		closeStore: closeStore,
	}, nil
}

func newGenerator(ctx context.Context, cfg GeneratorConfig, logger *slog.Logger) (generator.Service, error) {
	if !cfg.Online() {
		logger.Warn("No API key configured, using offline generator",
			slog.Duration("delay", cfg.OfflineDelay))
		return generator.NewOffline(cfg.OfflineDelay), nil
	}
	gen, err := generator.NewGemini(ctx, generator.GeminiConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}
	return gen, nil
}

// Handler builds the root chi router: health checks plus the API under /api.
func (c *Components) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(c.Service, c.Config.Auth.AuthEnabled(), c.Config.Auth.Token, c.Broker))

	return r
}

// Run starts the HTTP server with the given options and blocks until a
// shutdown signal or ctx cancellation.
func Run(ctx context.Context, opts ...Option) error {
	c, err := Build(ctx, opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg := c.Config
	logger := c.Logger

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: c.Handler(),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	// Watch the file store so edits from other processes reach SSE clients.
	if fs, ok := c.Store.(*kv.File); ok && cfg.Storage.Watch {
		g.Go(func() error {
			err := kv.Watch(gCtx, fs, logger, func(key string) {
				if key == c.History.Key() {
					c.Broker.PublishHistoryChanged("external")
				}
			})
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		stop()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr unless
// WithLogOutput says otherwise.
func RunMCP(ctx context.Context, version string, opts ...Option) error {
	c, err := Build(ctx, append([]Option{WithLogOutput(os.Stderr)}, opts...)...)
	if err != nil {
		return err
	}
	defer c.Close()

	c.Logger.Info("MCP server starting", slog.String("version", version))
	return mcpserver.New(c.Service, version).ServeStdio()
}
