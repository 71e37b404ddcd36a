package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/transcribe-cli/internal/dedupe"
	"github.com/sells-group/transcribe-cli/internal/records"
	"github.com/sells-group/transcribe-cli/internal/splitter"
	"github.com/sells-group/transcribe-cli/internal/textnorm"
)

var (
	dedupeOutput        string
	dedupeReport        string
	dedupeSeed          uint64
	dedupeSubjectCol    string
	dedupeAnnotationCol string
	dedupeCharset       string
	dedupeSheet         string
	dedupeConcurrency   int
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <export.csv|export.xlsx>...",
	Short: "Collapse duplicate transcriptions to one annotation per subject",
	Long: `Reads one or more classification exports, cleans each annotation and keeps
one annotation per subject. With a single input the result goes to --output.
With several inputs each result is written as <name><suffix>.csv, into the
--output directory when one is given, otherwise next to its input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyDedupeFlags(cmd)
		if err := cfg.Validate("dedupe"); err != nil {
			return err
		}

		jobs := planDedupe(args, dedupeOutput, dedupeReport)
		return runDedupe(cmd.Context(), jobs)
	},
}

// dedupeJob is one input file and where its results go.
type dedupeJob struct {
	Input  string
	Output string
	Report string // empty skips the report
}

func applyDedupeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Dedupe.Seed = int64(dedupeSeed)
	}
	if dedupeSubjectCol != "" {
		cfg.Columns.Subject = dedupeSubjectCol
	}
	if dedupeAnnotationCol != "" {
		cfg.Columns.Annotation = dedupeAnnotationCol
	}
	if dedupeCharset != "" {
		cfg.Columns.Charset = dedupeCharset
	}
	if dedupeConcurrency > 0 {
		cfg.Dedupe.Concurrency = dedupeConcurrency
	}
}

// planDedupe maps inputs to output and report paths. With several inputs,
// names that would collide (same base name, shared output or report
// directory) get a "_2", "_3", ... suffix.
func planDedupe(inputs []string, output, report string) []dedupeJob {
	if len(inputs) == 1 {
		out := output
		if out == "" {
			out = cfg.Dedupe.DefaultName
		}
		return []dedupeJob{{Input: inputs[0], Output: out, Report: report}}
	}

	taken := make(map[string]bool, 2*len(inputs))
	jobs := make([]dedupeJob, len(inputs))
	for i, in := range inputs {
		base := splitter.BaseName(in) + cfg.Dedupe.OutputSuffix
		dir := output
		if dir == "" {
			dir = filepath.Dir(in)
		}

		var job dedupeJob
		for n := 1; ; n++ {
			name := base
			if n > 1 {
				name = fmt.Sprintf("%s_%d", base, n)
			}
			job = dedupeJob{Input: in, Output: filepath.Join(dir, name+".csv")}
			if report != "" {
				job.Report = filepath.Join(report, name+"-report.csv")
			}
			if !taken[job.Output] && (job.Report == "" || !taken[job.Report]) {
				break
			}
		}
		taken[job.Output] = true
		if job.Report != "" {
			taken[job.Report] = true
		}
		jobs[i] = job
	}
	return jobs
}

func runDedupe(ctx context.Context, jobs []dedupeJob) error {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))
	start := time.Now()

	normalizer := textnorm.New(cfg.Clean.ExtraFragments...)
	readOpts := records.ReadOptions{
		Columns: records.Columns{
			Subject:    cfg.Columns.Subject,
			Annotation: cfg.Columns.Annotation,
		},
		Charset: cfg.Columns.Charset,
		Sheet:   dedupeSheet,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Dedupe.Concurrency)

	for _, job := range jobs {
		g.Go(func() error {
			recs, err := records.ReadFile(gctx, job.Input, readOpts)
			if err != nil {
				return eris.Wrapf(err, "dedupe %s", job.Input)
			}

			opts := []dedupe.Option{dedupe.WithNormalizer(normalizer)}
			if cfg.Dedupe.Seed != 0 {
				opts = append(opts, dedupe.WithSeed(uint64(cfg.Dedupe.Seed)))
			}
			out, details := dedupe.New(opts...).Run(recs)

			if err := records.WriteCSVFile(job.Output, out); err != nil {
				return eris.Wrapf(err, "dedupe %s", job.Input)
			}
			if job.Report != "" {
				if err := records.WriteReportFile(job.Report, details); err != nil {
					return eris.Wrapf(err, "dedupe %s", job.Input)
				}
			}

			log.Info("file deduplicated",
				zap.String("file", job.Input),
				zap.String("output", job.Output),
				zap.Int("records", len(recs)),
				zap.Int("subjects", len(out)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "dedupe run")
	}

	log.Info("dedupe complete",
		zap.Int("files", len(jobs)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func init() {
	f := dedupeCmd.Flags()
	f.StringVarP(&dedupeOutput, "output", "o", "", "output file (single input) or directory (several inputs)")
	f.StringVar(&dedupeReport, "report", "", "per-subject report file (single input) or directory (several inputs)")
	f.Uint64Var(&dedupeSeed, "seed", 0, "random seed for tie-breaks (0 seeds from the clock)")
	f.StringVar(&dedupeSubjectCol, "subject-col", "", "subject id column (default from config)")
	f.StringVar(&dedupeAnnotationCol, "annotation-col", "", "annotation column (default from config)")
	f.StringVar(&dedupeCharset, "charset", "", "CSV input encoding, e.g. windows-1252 (default from config)")
	f.StringVar(&dedupeSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	f.IntVar(&dedupeConcurrency, "concurrency", 0, "files processed in parallel (default from config)")
	rootCmd.AddCommand(dedupeCmd)
}
