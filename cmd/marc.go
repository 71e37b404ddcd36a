package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/transcribe-cli/internal/marc"
)

var marcOutput string

var marcCmd = &cobra.Command{
	Use:   "marc",
	Short: "Build MARCXML records",
}

var marcFormCmd = &cobra.Command{
	Use:   "form <form.yaml>",
	Short: "Build records from a YAML form file (one document per record)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("marc"); err != nil {
			return err
		}

		forms, err := marc.LoadForms(args[0])
		if err != nil {
			return err
		}
		recs := make([]marc.Record, 0, len(forms))
		for i, f := range forms {
			rec, err := f.Build()
			if err != nil {
				return eris.Wrapf(err, "form %d", i+1)
			}
			recs = append(recs, rec)
		}
		return writeMARC(cmd.OutOrStdout(), marcOutput, recs)
	},
}

var marcHTMLCmd = &cobra.Command{
	Use:   "html <page.html>...",
	Short: "Build records by harvesting metadata from HTML pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("marc"); err != nil {
			return err
		}

		opts := marc.Options{
			Leader:              cfg.MARC.Leader,
			ControlNumberPrefix: cfg.MARC.ControlNumberPrefix,
		}
		recs := make([]marc.Record, 0, len(args))
		for _, path := range args {
			rec, err := marcFromFile(path, opts)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
		}
		return writeMARC(cmd.OutOrStdout(), marcOutput, recs)
	},
}

func marcFromFile(path string, opts marc.Options) (marc.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return marc.Record{}, eris.Wrap(err, "marc: open page")
	}
	defer f.Close() //nolint:errcheck

	rec, err := marc.FromHTML(f, opts)
	if err != nil {
		return marc.Record{}, eris.Wrapf(err, "marc %s", path)
	}
	return rec, nil
}

// writeMARC writes the collection to path, or to stdout when path is empty.
func writeMARC(stdout io.Writer, path string, recs []marc.Record) error {
	data, err := marc.Marshal(recs...)
	if err != nil {
		return err
	}

	if path == "" {
		_, err := stdout.Write(append(data, '\n'))
		return eris.Wrap(err, "marc: write output")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "marc: write output")
	}
	zap.L().Info("marc records written",
		zap.String("output", path),
		zap.Int("records", len(recs)),
	)
	return nil
}

func init() {
	marcCmd.PersistentFlags().StringVarP(&marcOutput, "output", "o", "", "XML path (default stdout)")
	marcCmd.AddCommand(marcFormCmd, marcHTMLCmd)
	rootCmd.AddCommand(marcCmd)
}
