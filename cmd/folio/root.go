package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"golang.org/x/term"

	"github.com/dshills/folio/internal/app"
)

// Color modes for --color.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

var errInvalidColor = errors.New("--color must be auto, always or never")

// cli holds the global flags and the application built from them.
type cli struct {
	configPath string
	logLevel   string
	quiet      bool
	color      string

	app *app.Application
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "folio",
		Short: "Work with folio rich documents",
		Long: `folio reads serialized folio documents, normalizes them, renders them
as shortcut text and runs Lua plugins against them.

Configuration is read from $XDG_CONFIG_HOME/folio/config.toml unless
--config names another file. FOLIO_ environment variables override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["app"] == "none" {
				return nil
			}
			switch c.color {
			case colorAuto, colorAlways, colorNever:
			default:
				return errInvalidColor
			}
			a, err := app.New(app.Options{
				ConfigPath: c.configPath,
				LogLevel:   c.logLevel,
				LogOutput:  cmd.ErrOrStderr(),
				Quiet:      c.quiet,
			})
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close(context.WithoutCancel(cmd.Context()))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "configuration file")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "disable console logging")
	pf.StringVar(&c.color, "color", colorAuto, "colorize JSON output: auto, always or never")

	root.AddCommand(
		c.newFmtCmd(),
		c.newTextCmd(),
		c.newCheckCmd(),
		c.newRunCmd(),
		c.newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

// writeJSON prints a document, colorized when enabled.
func (c *cli) writeJSON(w io.Writer, data []byte) error {
	if c.useColor(w) {
		data = pretty.Color(data, nil)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err := w.Write(data)
	return err
}

func (c *cli) useColor(w io.Writer) bool {
	switch c.color {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"app": "none"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "folio %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
}
