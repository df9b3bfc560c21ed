package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/specialistvlad/pipewright/internal/config"
	"github.com/specialistvlad/pipewright/internal/logstore"
	"github.com/specialistvlad/pipewright/internal/registry"
	"github.com/specialistvlad/pipewright/internal/runner"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     config.Loader
	executor   runner.Executor
	registry   *registry.Registry
	logs       *logstore.Store
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and action
// registry. A nil executor selects the local shell executor.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, exec runner.Executor) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	logger = logger.With("run_id", uuid.NewString())
	logger.Debug("Logger configured successfully.")

	if exec == nil {
		exec = runner.NewShell()
	}

	reg := registry.New()
	registry.RegisterCore(reg)
	logger.Debug("Core actions registered.")

	logs, err := logstore.New(appConfig.LogRetentionEntries, appConfig.LogRetentionBytes)
	if err != nil {
		// Bounds were defaulted by NewConfig, so this is a programmer error.
		panic(fmt.Errorf("failed to initialize log store: %w", err))
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   appConfig,
		loader:   loader,
		executor: exec,
		registry: reg,
		logs:     logs,
	}
}

// Registry returns the application's action registry. This is primarily
// for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
