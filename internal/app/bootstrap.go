package app

import (
	"os"

	"go.uber.org/zap"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/engine/composite"
	"github.com/dshills/folio/internal/engine/shortcut"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/plugin"
	"github.com/dshills/folio/internal/style"
)

// bootstrap initializes the components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Configuration
	cfg, err := app.loadConfig()
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.config = cfg

	// 2. Logging
	console := app.opts.LogOutput
	if console == nil {
		console = os.Stderr
	}
	if app.opts.Quiet {
		console = nil
	}
	app.logger, err = logging.New(cfg.Logging, logging.WithConsole(console))
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	app.logger.Debug("configuration loaded", zap.Strings("sources", cfg.Sources()))

	// 3. Theme
	app.theme = style.NewTheme()
	if cfg.Theme.Path != "" {
		if err := app.ReloadTheme(); err != nil {
			return &InitError{Component: "theme", Err: err}
		}
	}

	// 4. Node classes and shortcuts
	app.registry = composite.NewRegistry()
	app.shortcuts = shortcut.NewDefaultRegistry(shortcut.WithLogger(app.logger.Named("shortcut")))

	// 5. Dispatcher
	app.dispatcher = dispatcher.New(cfg.DispatcherConfig())
	app.dispatcher.SetLogger(app.logger.Named("dispatch"))
	if err := RegisterHandlers(app.dispatcher); err != nil {
		return &InitError{Component: "handlers", Err: err}
	}
	app.registerHooks()

	// 6. Plugins
	paths := cfg.Plugins.Paths
	if len(paths) == 0 {
		paths = plugin.DefaultPluginPaths()
	}
	app.plugins = plugin.NewManager(plugin.ManagerConfig{
		PluginPaths:      paths,
		ExecutionTimeout: cfg.Plugins.Timeout.Std(),
		Disabled:         cfg.Plugins.Disabled,
	}, plugin.Env{
		Dispatcher: app.dispatcher,
		Logger:     app.logger.Logger,
		Text:       app.shortcuts.ExportText,
	})

	return nil
}

func (app *Application) loadConfig() (*config.Config, error) {
	if app.opts.Config != nil {
		return app.opts.Config, nil
	}
	opts := []config.Option{config.WithFile(app.opts.ConfigPath)}
	for path, v := range app.opts.Overrides {
		opts = append(opts, config.WithOverride(path, v))
	}
	if app.opts.LogLevel != "" {
		opts = append(opts, config.WithOverride("logging.level", app.opts.LogLevel))
	}
	return config.Load(opts...)
}
