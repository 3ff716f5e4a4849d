package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/folio/internal/app"
	"github.com/dshills/folio/internal/engine/codec"
)

var errNotClean = errors.New("document did not import cleanly")

func (c *cli) newFmtCmd() *cobra.Command {
	var write bool
	var indent string
	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Normalize a document and print it",
		Long: `fmt imports a document, applying node replacements and dropping unknown
nodes, and exports it again. With --write the file is rewritten in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.app.OpenFile(args[0])
			if err != nil {
				return err
			}
			if write {
				return c.app.SaveDocument()
			}
			data, err := doc.Export(codec.WithIndent(indent))
			if err != nil {
				return err
			}
			return c.writeJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file instead of printing")
	cmd.Flags().StringVar(&indent, "indent", "  ", "indentation of printed output")
	return cmd
}

func (c *cli) newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <file>",
		Short: "Print a document as shortcut text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.OpenFile(args[0]); err != nil {
				return err
			}
			text, err := c.app.ExportText()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func (c *cli) newCheckCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Import documents and report what could not be kept",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirty := 0
			for _, path := range args {
				doc, err := c.app.OpenFile(path)
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), doc)
				if !doc.Report.Clean() {
					dirty++
				}
			}
			if strict && dirty > 0 {
				return fmt.Errorf("%d of %d: %w", dirty, len(args), errNotClean)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when a document loses content on import")
	return cmd
}

func printReport(w io.Writer, doc *app.Document) {
	status := "ok"
	if !doc.Report.Clean() {
		status = "lossy"
	}
	fmt.Fprintf(w, "%s: %s\n", doc.Name, status)
	fmt.Fprint(w, doc.Report.String())
}

func (c *cli) newRunCmd() *cobra.Command {
	var write, all bool
	cmd := &cobra.Command{
		Use:   "run <file> <plugin>...",
		Short: "Run Lua plugins against a document",
		Long: `run loads each plugin file or directory, calls its main function with
the document active and prints the result. With --all the plugins on the
configured plugin paths are loaded too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.app.OpenFile(args[0])
			if err != nil {
				return err
			}
			if all {
				// Broken plugins are logged and skipped.
				_ = c.app.LoadPlugins(ctx)
			}
			if err := c.app.LoadPluginFiles(ctx, args[1:]...); err != nil {
				return err
			}
			if _, err := c.app.RunPlugins(ctx); err != nil {
				return err
			}
			if write {
				return c.app.SaveDocument()
			}
			data, err := doc.Export(codec.WithIndent("  "))
			if err != nil {
				return err
			}
			return c.writeJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "save the result to the document file")
	cmd.Flags().BoolVar(&all, "all", false, "also load plugins from the configured paths")
	return cmd
}
