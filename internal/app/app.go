// Package app wires folio's components together: configuration, logging,
// the theme, the node registries, the command dispatcher, plugins and the
// set of open documents.
package app

import (
	"context"
	"io"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/folio/internal/config"
	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/engine/shortcut"
	"github.com/dshills/folio/internal/logging"
	"github.com/dshills/folio/internal/plugin"
	"github.com/dshills/folio/internal/style"
)

// Application is the central coordinator for folio's components.
type Application struct {
	config *config.Config
	logger *logging.Logger
	theme  *style.Theme

	registry   *editor.Registry
	shortcuts  *shortcut.Registry
	dispatcher *dispatcher.Dispatcher
	plugins    *plugin.Manager

	documents *DocumentManager

	closed atomic.Bool
	opts   Options
}

// Options configures the application.
type Options struct {
	// Config is used as is when set; otherwise configuration is loaded
	// from ConfigPath, the environment and Overrides.
	Config *config.Config

	// ConfigPath is an explicit configuration file.
	ConfigPath string

	// LogLevel overrides logging.level.
	LogLevel string

	// Overrides set dotted configuration paths above every other layer.
	Overrides map[string]any

	// LogOutput receives console logs, os.Stderr when nil.
	LogOutput io.Writer

	// Quiet disables console logging. A configured log file still
	// receives entries.
	Quiet bool
}

// New creates an application.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:      opts,
		documents: NewDocumentManager(),
	}
	if err := app.bootstrap(); err != nil {
		if app.logger != nil {
			app.logger.Close()
		}
		return nil, err
	}
	return app, nil
}

// Close unloads plugins, closes every document and flushes the logger.
func (app *Application) Close(ctx context.Context) error {
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if app.plugins != nil {
		err = app.plugins.UnloadAll(ctx)
	}
	for _, doc := range app.documents.All() {
		if key, ok := app.documents.keyOf(doc); ok {
			app.documents.remove(key)
		}
		doc.close()
	}
	app.dispatcher.SetEditor(nil)

	app.logger.Debug("application closed")
	if cerr := app.logger.Close(); err == nil {
		err = cerr
	}
	return err
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config { return app.config }

// Logger returns the application logger.
func (app *Application) Logger() *zap.Logger { return app.logger.Logger }

// SetLogLevel changes the log level at runtime.
func (app *Application) SetLogLevel(level string) error { return app.logger.SetLevel(level) }

// Theme returns the style theme shared by every document.
func (app *Application) Theme() *style.Theme { return app.theme }

// Registry returns the node type registry.
func (app *Application) Registry() *editor.Registry { return app.registry }

// Shortcuts returns the shortcut transformer registry.
func (app *Application) Shortcuts() *shortcut.Registry { return app.shortcuts }

// Dispatcher returns the command dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher { return app.dispatcher }

// Plugins returns the plugin manager.
func (app *Application) Plugins() *plugin.Manager { return app.plugins }

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager { return app.documents }

// ActiveDocument returns the active document, or nil.
func (app *Application) ActiveDocument() *Document { return app.documents.Active() }
