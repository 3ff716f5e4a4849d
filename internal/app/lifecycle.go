package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dshills/folio/internal/engine/codec"
	"github.com/dshills/folio/internal/engine/editor"
	"github.com/dshills/folio/internal/style"
)

// editorOptions returns the options every document editor is built with.
func (app *Application) editorOptions(name string) []editor.Option {
	return []editor.Option{
		editor.WithRegistry(app.registry),
		editor.WithTheme(app.theme),
		editor.WithLogger(app.logger.Named("editor")),
		editor.WithMaxTransformPasses(app.config.Editor.MaxTransformPasses),
		editor.WithName(name),
	}
}

// newDocument wraps ed, attaches shortcuts and registers it.
func (app *Application) newDocument(key, path string, ed *editor.Editor, report *codec.Report) *Document {
	doc := newDocument(path, ed, report)
	doc.detach = append(doc.detach, app.shortcuts.Attach(ed))
	app.documents.add(key, doc)
	app.dispatcher.SetEditor(ed)
	return doc
}

// OpenFile imports a document from disk and makes it active. An already
// open file is activated instead. Content problems are reported in
// Document.Report, not as errors.
func (app *Application) OpenFile(path string) (*Document, error) {
	if app.closed.Load() {
		return nil, ErrClosed
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if doc, ok := app.documents.Get(abs); ok {
		app.activate(doc)
		return doc, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &FileError{Op: "open", Path: abs, Err: err}
	}
	return app.OpenBytes(abs, data)
}

// OpenBytes imports data as the document at path and makes it active.
// Path may be empty for a scratch document.
func (app *Application) OpenBytes(path string, data []byte) (*Document, error) {
	if app.closed.Load() {
		return nil, ErrClosed
	}
	key, name := path, filepath.Base(path)
	if path == "" {
		key, name = app.documents.scratchKey()
	}

	ed, report, err := codec.NewEditor(data, app.editorOptions(name)...)
	if err != nil {
		return nil, &FileError{Op: "import", Path: name, Err: err}
	}
	doc := app.newDocument(key, path, ed, report)
	if path == "" {
		doc.Name = name
	}

	if !report.Clean() {
		app.logger.Warn("document imported with problems",
			zap.String("document", name),
			zap.Bool("substituted", report.Substituted),
			zap.Int("unknown", len(report.Unknown)),
			zap.Int("rejected", len(report.Rejected)),
		)
	}
	return doc, nil
}

// NewScratch creates an empty document and makes it active.
func (app *Application) NewScratch() (*Document, error) {
	return app.OpenBytes("", nil)
}

// Activate makes doc the document commands operate on.
func (app *Application) Activate(doc *Document) error {
	if _, ok := app.documents.keyOf(doc); !ok {
		return ErrDocumentNotFound
	}
	app.activate(doc)
	return nil
}

func (app *Application) activate(doc *Document) {
	app.documents.setActive(doc)
	app.dispatcher.SetEditor(doc.Editor)
}

// SaveDocument writes the active document back to its file.
func (app *Application) SaveDocument() error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if doc.IsScratch() {
		return ErrNoFilePath
	}
	return app.save(doc, doc.Path)
}

// SaveDocumentAs writes the active document to path and re-keys it.
func (app *Application) SaveDocumentAs(path string) error {
	doc := app.documents.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := app.save(doc, abs); err != nil {
		return err
	}
	if key, ok := app.documents.keyOf(doc); ok && key != abs {
		app.documents.remove(key)
		app.documents.add(abs, doc)
	}
	doc.Path, doc.Name = abs, filepath.Base(abs)
	return nil
}

func (app *Application) save(doc *Document, path string) error {
	data, err := doc.Export(codec.WithIndent("  "))
	if err != nil {
		return &FileError{Op: "export", Path: path, Err: err}
	}
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	doc.SetModified(false)
	app.logger.Info("document saved", zap.String("path", path), zap.Int("bytes", len(data)+1))
	return nil
}

// CloseDocument closes doc. Unsaved changes are kept unless force is set.
func (app *Application) CloseDocument(doc *Document, force bool) error {
	if doc == nil {
		return ErrNoActiveDocument
	}
	if doc.IsModified() && !force {
		return fmt.Errorf("%s: %w", doc.Name, ErrUnsavedChanges)
	}
	key, ok := app.documents.keyOf(doc)
	if !ok {
		return ErrDocumentNotFound
	}
	if _, err := app.documents.remove(key); err != nil {
		return err
	}
	doc.close()

	if next := app.documents.Active(); next != nil {
		app.dispatcher.SetEditor(next.Editor)
	} else {
		app.dispatcher.SetEditor(nil)
	}
	return nil
}

// ExportText renders the active document in the shortcut text protocol.
func (app *Application) ExportText() (string, error) {
	doc := app.documents.Active()
	if doc == nil {
		return "", ErrNoActiveDocument
	}
	return app.shortcuts.ExportText(doc.Editor.State()), nil
}

// ReloadTheme re-reads the configured theme file over the built-in theme.
// The theme object is shared, so open documents see the change.
func (app *Application) ReloadTheme() error {
	path := app.config.Theme.Path
	if path == "" {
		return nil
	}
	loaded, err := style.LoadFile(path)
	if err != nil {
		return err
	}
	app.theme.Merge(loaded)
	app.logger.Info("theme loaded", zap.String("path", path), zap.String("name", loaded.Name()))
	return nil
}

// LoadPlugins loads every enabled plugin on the configured paths. Plugins
// that fail are logged and skipped; the joined error is returned.
func (app *Application) LoadPlugins(ctx context.Context) error {
	err := app.plugins.LoadAll(ctx)
	if err != nil {
		app.logger.Warn("some plugins failed to load", zap.Error(err))
	}
	return err
}

// LoadPluginFiles loads the given plugin files or directories.
func (app *Application) LoadPluginFiles(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if _, err := app.plugins.LoadPath(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RunPlugins runs the main function of every loaded plugin against the
// active document.
func (app *Application) RunPlugins(ctx context.Context) ([]string, error) {
	if app.documents.Active() == nil {
		return nil, ErrNoActiveDocument
	}
	return app.plugins.RunMain(ctx)
}
