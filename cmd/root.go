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
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guittarj/TraitsTransplants/internal/iofs"
	"github.com/guittarj/TraitsTransplants/pkg/config"
	"github.com/guittarj/TraitsTransplants/pkg/logger"
)

var (
	// Version and Build are set by build flags.
	Version = "dev"
	Build   = "unknown"

	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Version: fmt.Sprintf("version: %s\nbuild:   %s", Version, Build),
	Use:     "traitsim",
	Short:   "Compare transplant-experiment communities against neutral simulations",
	Long: `traitsim scores plant-community change in climate-transplant
experiments against a trait-blind neutral model.

It reads the field cover table, turf metadata and species traits, filters a
directory of simulated-abundance files down to the calibrated (d, m)
parameter pairs, computes the dissimilarity of every simulated community to
its local field controls (compositional Bray-Curtis or trait-weighted
means), and merges everything into one bounded summary table.`,
	PersistentPreRunE: bootstrap,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		return err
	}

	// Initialize logging with hardcoded defaults.
	// Will be reconfigured later with user's config settings.
	defaultLog := config.LogConfig{
		Format:      "text",
		Level:       "info",
		Destination: "stderr",
	}
	if err = logger.Init(config.LogDir(homeDir), defaultLog); err != nil {
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded.
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings and proper log file location.
	if err = logger.Init(config.LogDir(cfg.HomeDir), cfg.Log); err != nil {
		return err
	}

	slog.Debug("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Remove the automatic "traitsim version" prefix.
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V.
	rootCmd.Flags().BoolP("version", "V", false, "version for traitsim")

	rootCmd.AddCommand(getObservedCmd())
	rootCmd.AddCommand(getSummarizeCmd())
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are
	// allowed. These match the fields included in config.ToOptions().
	v.SetEnvPrefix("TRAITSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Input and output paths
	v.BindEnv("paths.cover_file", "PATHS_COVER_FILE")
	v.BindEnv("paths.meta_file", "PATHS_META_FILE")
	v.BindEnv("paths.traits_file", "PATHS_TRAITS_FILE")
	v.BindEnv("paths.targets_file", "PATHS_TARGETS_FILE")
	v.BindEnv("paths.corpus_dir", "PATHS_CORPUS_DIR")
	v.BindEnv("paths.output_dir", "PATHS_OUTPUT_DIR")
	v.BindEnv("paths.checkpoint_db", "PATHS_CHECKPOINT_DB")

	// Pipeline configuration
	v.BindEnv("pipeline.signif_digits", "PIPELINE_SIGNIF_DIGITS")
	v.BindEnv("pipeline.pretreatment_year", "PIPELINE_PRETREATMENT_YEAR")
	v.BindEnv("pipeline.flush_every", "PIPELINE_FLUSH_EVERY")

	// Log configuration
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.destination", "LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "JOBS_NUMBER")

	v.AutomaticEnv()
}
