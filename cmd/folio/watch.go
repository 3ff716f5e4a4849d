package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/folio/internal/app"
	"github.com/dshills/folio/internal/watcher"
)

func (c *cli) newWatchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-check a document every time it changes",
		Long: `watch checks the document, then checks it again after every change
until interrupted. A configured theme file is watched as well and reloaded
when it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			log := c.app.Logger()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			doc, err := c.app.OpenFile(path)
			if err != nil {
				return err
			}
			printReport(out, doc)

			w, err := watcher.New(watcher.WithDebounce(debounce), watcher.WithLogger(log))
			if err != nil {
				return err
			}
			defer w.Close()
			if err := w.Watch(path); err != nil {
				return err
			}
			themePath := c.app.Config().Theme.Path
			if themePath != "" {
				if err := w.Watch(themePath); err != nil {
					log.Warn("theme not watched", zap.String("path", themePath), zap.Error(err))
				}
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-w.Errors():
					if !ok {
						return nil
					}
					log.Warn("watch error", zap.Error(err))
				case ev, ok := <-w.Events():
					if !ok {
						return nil
					}
					if themePath != "" && sameFile(ev.Path, themePath) {
						if err := c.app.ReloadTheme(); err != nil {
							log.Warn("theme reload failed", zap.Error(err))
						}
						continue
					}
					if !ev.Exists() {
						fmt.Fprintf(out, "%s: removed\n", filepath.Base(ev.Path))
						continue
					}
					if doc, err = reopen(c.app, doc, path); err != nil {
						log.Warn("reload failed", zap.String("path", path), zap.Error(err))
						continue
					}
					printReport(out, doc)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "delay that coalesces bursts of changes")
	return cmd
}

// reopen discards the open copy of the document and imports it again. A
// nil result means nothing is open for path.
func reopen(a *app.Application, doc *app.Document, path string) (*app.Document, error) {
	if doc != nil {
		if err := a.CloseDocument(doc, true); err != nil && !errors.Is(err, app.ErrDocumentNotFound) {
			return nil, err
		}
	}
	return a.OpenFile(path)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
