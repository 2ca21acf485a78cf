package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/extbind/internal/bootstrap"
	"github.com/vk/extbind/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	sequencer  *bootstrap.Sequencer
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. When no modules are given the core modules are
// loaded.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...bootstrap.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	logger.Debug("Extension modules selected.", "count", len(modules))

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		sequencer: bootstrap.New(modules...),
	}
}

// Sequencer returns the application's sequencer. This is primarily for testing.
func (a *App) Sequencer() *bootstrap.Sequencer {
	return a.sequencer
}

// Context returns ctx carrying the application logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
