package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/transcribe-cli/internal/splitter"
)

var (
	splitMarker   string
	splitByImage  bool
	splitOutput   string
	splitPadWidth int
)

var splitCmd = &cobra.Command{
	Use:   "split <transcript.txt>",
	Short: "Split a transcript into numbered text files packed in a ZIP",
	Long: `Splits a transcript at every occurrence of --marker, or at "Image <n>"
headings with --image, and writes the pieces into a ZIP archive.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if splitPadWidth > 0 {
			cfg.Split.PadWidth = splitPadWidth
		}
		if err := cfg.Validate("split"); err != nil {
			return err
		}
		splitMarker = strings.TrimSpace(splitMarker)
		if splitByImage == (splitMarker != "") {
			return eris.New("split: exactly one of --marker or --image is required")
		}

		out := splitOutput
		if out == "" {
			out = splitter.BaseName(args[0]) + ".zip"
		}
		n, err := runSplit(args[0], out, splitMarker, splitByImage, cfg.Split.PadWidth)
		if err != nil {
			return err
		}

		zap.L().Info("split complete",
			zap.String("file", args[0]),
			zap.String("output", out),
			zap.Int("parts", n),
		)
		return nil
	},
}

// runSplit splits the input file and writes the archive to output. It
// returns the number of parts written.
func runSplit(input, output, marker string, byImage bool, padWidth int) (int, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return 0, eris.Wrap(err, "split: read input")
	}
	text := string(data)

	var parts []splitter.Part
	if byImage {
		parts, err = splitter.ByImage(text)
	} else {
		var chunks []string
		chunks, err = splitter.ByMarker(text, marker)
		parts = splitter.NameChunks(splitter.BaseName(input), chunks, padWidth)
	}
	if err != nil {
		return 0, eris.Wrapf(err, "split %s", input)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return 0, eris.Wrap(err, "split: create output directory")
	}
	f, err := os.Create(output)
	if err != nil {
		return 0, eris.Wrap(err, "split: create archive")
	}
	if err := splitter.WriteArchive(f, parts); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, eris.Wrap(err, "split: close archive")
	}
	return len(parts), nil
}

func init() {
	f := splitCmd.Flags()
	f.StringVar(&splitMarker, "marker", "", "text that starts each piece")
	f.BoolVar(&splitByImage, "image", false, `split at "Image <n>" headings`)
	f.StringVarP(&splitOutput, "output", "o", "", "archive path (default <input>.zip)")
	f.IntVar(&splitPadWidth, "pad-width", 0, "digits in piece numbers (default from config)")
	rootCmd.AddCommand(splitCmd)
}
