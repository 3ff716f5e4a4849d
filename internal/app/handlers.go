package app

import (
	"github.com/dshills/folio/internal/dispatcher"
	"github.com/dshills/folio/internal/dispatcher/handlers/blocks"
	"github.com/dshills/folio/internal/dispatcher/handlers/format"
	"github.com/dshills/folio/internal/dispatcher/hook"
)

// RegisterHandlers registers the built-in command handlers with d.
func RegisterHandlers(d *dispatcher.Dispatcher) error {
	if err := blocks.NewHandler().Register(d); err != nil {
		return err
	}
	return format.NewHandler().Register(d)
}

// registerHooks installs the audit hook and, when the configuration denies
// commands, the filter hook.
func (app *Application) registerHooks() {
	app.dispatcher.RegisterHook(hook.NewAuditHook(app.logger.Named("audit").Sugar()))
	if deny := app.config.Dispatcher.Deny; len(deny) > 0 {
		app.dispatcher.RegisterHook(hook.NewFilterHook(nil, deny))
	}
}
