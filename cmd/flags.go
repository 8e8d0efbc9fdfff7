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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guittarj/TraitsTransplants/internal/iotables"
	"github.com/guittarj/TraitsTransplants/pkg/config"
	"github.com/guittarj/TraitsTransplants/pkg/dissim"
)

// registerTableFlags adds the flags shared by commands that read the field
// reference tables. Flag values override config.yaml and env vars.
func registerTableFlags(cmd *cobra.Command) {
	cmd.Flags().String("cover", "", "field community (percent cover) CSV")
	cmd.Flags().String("meta", "", "turf metadata CSV")
	cmd.Flags().String("trait-table", "", "per-species trait CSV")
	cmd.Flags().String("out", "", "output directory")
	cmd.Flags().StringSlice("traits", nil,
		"traits to score (default: all configured)")
}

// applyTableFlags converts the shared flags into config options.
func applyTableFlags(cmd *cobra.Command) error {
	var flagOpts []config.Option

	if s, err := cmd.Flags().GetString("cover"); err == nil && s != "" {
		flagOpts = append(flagOpts, config.OptCoverFile(s))
	}
	if s, err := cmd.Flags().GetString("meta"); err == nil && s != "" {
		flagOpts = append(flagOpts, config.OptMetaFile(s))
	}
	if s, err := cmd.Flags().GetString("trait-table"); err == nil && s != "" {
		flagOpts = append(flagOpts, config.OptTraitsFile(s))
	}
	if s, err := cmd.Flags().GetString("out"); err == nil && s != "" {
		flagOpts = append(flagOpts, config.OptOutputDir(s))
	}
	if ss, err := cmd.Flags().GetStringSlice("traits"); err == nil && len(ss) > 0 {
		flagOpts = append(flagOpts, config.OptTraits(ss))
	}

	cfg.Update(flagOpts)
	return nil
}

// requirePaths fails early when a command is missing one of its input
// tables; each entry is ("human name", configured path).
func requirePaths(pairs ...[2]string) error {
	for _, p := range pairs {
		if p[1] == "" {
			return fmt.Errorf(
				"%s is not set; use a flag, config.yaml or a TRAITSIM_ env var",
				p[0],
			)
		}
	}
	return nil
}

// loadEngine reads the three field tables and assembles the scoring
// engine shared by all commands.
func loadEngine(cfg *config.Config) (*dissim.Engine, error) {
	comm, err := iotables.ReadCover(cfg.Paths.CoverFile)
	if err != nil {
		return nil, err
	}
	meta, err := iotables.ReadMeta(
		cfg.Paths.MetaFile, cfg.Pipeline.ControlTreatments,
	)
	if err != nil {
		return nil, err
	}
	traits, err := iotables.ReadTraits(cfg.Paths.TraitsFile)
	if err != nil {
		return nil, err
	}

	return &dissim.Engine{
		Comm:             comm,
		Meta:             meta,
		Traits:           traits,
		CompositionTrait: cfg.Pipeline.CompositionTrait,
	}, nil
}
