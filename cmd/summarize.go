/*
Copyright © 2025 John Guittar <guittarj@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guittarj/TraitsTransplants/internal/iocorpus"
	"github.com/guittarj/TraitsTransplants/internal/iostore"
	"github.com/guittarj/TraitsTransplants/internal/iotables"
	"github.com/guittarj/TraitsTransplants/pkg/config"
	"github.com/guittarj/TraitsTransplants/pkg/dissim"
	"github.com/guittarj/TraitsTransplants/pkg/pipeline"
)

// getSummarizeCmd returns the summarize command.
// Extracted as a function to facilitate testing.
func getSummarizeCmd() *cobra.Command {
	var (
		noCheckpoint bool
		resume       bool
	)

	summarizeCmd := &cobra.Command{
		Use:   "summarize",
		Short: "Aggregate simulated distance-to-control over the corpus",
		Long: `Stream the simulation corpus into one summary table.

This command:
  1. Reads the field cover, metadata, trait and target parameter tables
  2. Pre-filters corpus files by the (d, m) pair in their names
  3. Scores every eligible simulated community against its field controls,
     for every configured trait, across concurrent workers
  4. Collapses results into a bounded running summary with reps-weighted
     means, flushing every N (file, trait) units
  5. Copies each group's earliest observed-vs-control distance forward to
     the pretreatment year
  6. Writes simdistances.csv and simdistances_baseline.csv

A failed corpus file is logged and skipped; the stream continues. With a
checkpoint database the running summary survives interruption and
--resume picks up where the last flush left off.

Examples:
  # Everything from config.yaml
  traitsim summarize

  # Explicit corpus and targets, 8 workers, no checkpoint file
  traitsim summarize --corpus sims/ --targets targets.csv \
    -j 8 --no-checkpoint

  # Continue an interrupted pass
  traitsim summarize --resume`,
		Aliases: []string{"agg"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, noCheckpoint, resume)
		},
	}

	registerTableFlags(summarizeCmd)
	summarizeCmd.Flags().String("targets", "", "target parameter CSV")
	summarizeCmd.Flags().String("corpus", "", "simulation corpus directory")
	summarizeCmd.Flags().String("checkpoint", "",
		"checkpoint database path (default: cache dir)")
	summarizeCmd.Flags().IntP("jobs", "j", 0, "number of concurrent workers")
	summarizeCmd.Flags().Int("flush-every", 0,
		"processed (file, trait) units between buffer collapses")
	summarizeCmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false,
		"keep the running summary in memory only")
	summarizeCmd.Flags().BoolVar(&resume, "resume", false,
		"keep checkpoint contents from a previous interrupted pass")

	return summarizeCmd
}

func runSummarize(cmd *cobra.Command, noCheckpoint, resume bool) error {
	if err := applyTableFlags(cmd); err != nil {
		return err
	}

	var flagOpts []config.Option
	if s, err := cmd.Flags().GetString("targets"); err == nil && s != "" {
		flagOpts = append(flagOpts, config.OptTargetsFile(s))
	}
	if s, err := cmd.Flags().GetString("corpus"); err == nil && s != "" {
		flagOpts = append(flagOpts, config.OptCorpusDir(s))
	}
	if s, err := cmd.Flags().GetString("checkpoint"); err == nil && s != "" {
		flagOpts = append(flagOpts, config.OptCheckpointDB(s))
	}
	if i, err := cmd.Flags().GetInt("jobs"); err == nil && i > 0 {
		flagOpts = append(flagOpts, config.OptJobsNumber(i))
	}
	if i, err := cmd.Flags().GetInt("flush-every"); err == nil && i > 0 {
		flagOpts = append(flagOpts, config.OptFlushEvery(i))
	}
	cfg.Update(flagOpts)

	err := requirePaths(
		[2]string{"cover file", cfg.Paths.CoverFile},
		[2]string{"meta file", cfg.Paths.MetaFile},
		[2]string{"traits file", cfg.Paths.TraitsFile},
		[2]string{"targets file", cfg.Paths.TargetsFile},
		[2]string{"corpus dir", cfg.Paths.CorpusDir},
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	engine, err := loadEngine(cfg)
	if err != nil {
		return err
	}
	targets, err := iotables.ReadTargets(
		cfg.Paths.TargetsFile, cfg.Pipeline.SignifDigits,
	)
	if err != nil {
		return err
	}
	slog.Info("Target parameters loaded",
		"file", cfg.Paths.TargetsFile, "sites", targets.Len())

	store, err := openStore(ctx, noCheckpoint)
	if err != nil {
		return err
	}
	defer store.Close()

	if !resume {
		if err = store.Reset(ctx); err != nil {
			return err
		}
	}

	agg := iocorpus.New(cfg, engine, targets, store)
	res, err := agg.Summarize(ctx)
	if err != nil {
		return err
	}

	summaryPath := filepath.Join(cfg.Paths.OutputDir, "simdistances.csv")
	if err = iotables.WriteSummary(summaryPath, res.Summary); err != nil {
		return err
	}

	extended := append(res.Baseline, res.Summary...)
	dissim.SortRecords(extended)
	extendedPath := filepath.Join(
		cfg.Paths.OutputDir, "simdistances_baseline.csv",
	)
	if err = iotables.WriteSummary(extendedPath, extended); err != nil {
		return err
	}

	slog.Info("Summary written",
		"summary", summaryPath,
		"extended", extendedPath,
		"groups", len(res.Summary),
		"baseline_rows", len(res.Baseline),
	)
	return nil
}

// openStore picks the summary store: the SQLite checkpoint unless
// disabled, defaulting to the cache directory when no path is configured.
func openStore(ctx context.Context, noCheckpoint bool) (pipeline.SummaryStore, error) {
	if noCheckpoint {
		return pipeline.NewMemStore(), nil
	}
	path := cfg.Paths.CheckpointDB
	if path == "" {
		path = config.CheckpointFilePath(cfg.HomeDir)
	}
	store, err := iostore.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Checkpoint store open", "path", store.Path())
	return store, nil
}
