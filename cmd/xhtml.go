package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/transcribe-cli/internal/splitter"
	"github.com/sells-group/transcribe-cli/internal/xhtml"
)

var xhtmlOutput string

var xhtmlCmd = &cobra.Command{
	Use:   "xhtml <book.xhtml>",
	Short: "Extract page texts from a scanned-book XHTML file into CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("xhtml"); err != nil {
			return err
		}

		out := xhtmlOutput
		if out == "" {
			out = splitter.BaseName(args[0]) + ".csv"
		}
		n, err := runXHTML(args[0], out)
		if err != nil {
			return err
		}

		zap.L().Info("xhtml extraction complete",
			zap.String("file", args[0]),
			zap.String("output", out),
			zap.Int("pages", n),
		)
		return nil
	},
}

// runXHTML converts input to a one-column CSV at output and returns the page
// count.
func runXHTML(input, output string) (int, error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, eris.Wrap(err, "xhtml: open input")
	}
	defer in.Close() //nolint:errcheck

	pages, err := xhtml.ExtractPages(in)
	if err != nil {
		return 0, eris.Wrapf(err, "xhtml %s", input)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return 0, eris.Wrap(err, "xhtml: create output directory")
	}
	out, err := os.Create(output)
	if err != nil {
		return 0, eris.Wrap(err, "xhtml: create output")
	}
	if err := xhtml.WriteCSV(out, pages); err != nil {
		_ = out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, eris.Wrap(err, "xhtml: close output")
	}
	return len(pages), nil
}

func init() {
	xhtmlCmd.Flags().StringVarP(&xhtmlOutput, "output", "o", "", "CSV path (default <input>.csv)")
	rootCmd.AddCommand(xhtmlCmd)
}
