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
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/guittarj/TraitsTransplants/internal/iotables"
	"github.com/guittarj/TraitsTransplants/pkg/dissim"
)

// getObservedCmd returns the observed command.
// Extracted as a function to facilitate testing.
func getObservedCmd() *cobra.Command {
	observedCmd := &cobra.Command{
		Use:   "observed",
		Short: "Compute field distance-to-control for every turf and trait",
		Long: `Score every observed field community against its matched
controls (same destination site, same year, control treatment) under every
configured trait.

The compositional pseudo-trait uses Bray-Curtis dissimilarity; all other
traits reduce each community to a community-weighted mean and compare the
scalars. Turfs with no qualifying controls, or whose species all lack a
trait value, yield NA.

Writes fielddistances.csv to the output directory.

Examples:
  # All paths from config.yaml
  traitsim observed

  # Explicit tables, selected traits
  traitsim observed --cover cover.csv --meta meta.csv \
    --trait-table traits.csv --traits cover,sla`,
		RunE: runObserved,
	}

	registerTableFlags(observedCmd)
	return observedCmd
}

func runObserved(cmd *cobra.Command, args []string) error {
	if err := applyTableFlags(cmd); err != nil {
		return err
	}
	err := requirePaths(
		[2]string{"cover file", cfg.Paths.CoverFile},
		[2]string{"meta file", cfg.Paths.MetaFile},
		[2]string{"traits file", cfg.Paths.TraitsFile},
	)
	if err != nil {
		return err
	}

	engine, err := loadEngine(cfg)
	if err != nil {
		return err
	}

	var recs []dissim.Record
	for _, trait := range cfg.Pipeline.Traits {
		traitRecs, err := engine.ScoreObserved(trait)
		if err != nil {
			return err
		}
		recs = append(recs, traitRecs...)
	}
	dissim.SortRecords(recs)

	outPath := filepath.Join(cfg.Paths.OutputDir, "fielddistances.csv")
	if err = iotables.WriteObserved(outPath, recs); err != nil {
		return err
	}

	slog.Info("Observed distances written",
		"file", outPath,
		"turfs", engine.Comm.Len(),
		"traits", len(cfg.Pipeline.Traits),
		"records", len(recs),
	)
	return nil
}
