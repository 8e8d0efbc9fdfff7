// Package config provides configuration management for the traitsim pipeline.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation failures inside Option functions are reported via slog and the
// previous value is kept.
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with a warning - config remains valid
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Environment Variables
//
// Use TRAITSIM_ prefix with underscores for nesting:
//
//	TRAITSIM_PATHS_CORPUS_DIR=/data/sims
//	TRAITSIM_PIPELINE_FLUSH_EVERY=50
//	TRAITSIM_LOG_LEVEL=debug
//	TRAITSIM_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Config represents the complete traitsim configuration.
type Config struct {
	// Paths locates all input tables, the simulation corpus and outputs.
	// All paths are explicit; the pipeline never consults the working
	// directory implicitly.
	Paths PathsConfig `mapstructure:"paths" yaml:"paths"`

	// Pipeline contains the distance-pipeline tuning knobs.
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent corpus-file workers.
	// Defaults to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and log directories reside.
	// It is set by the CLI during init; there is no default value for it.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// PathsConfig locates the reference tables and the simulation corpus.
type PathsConfig struct {
	// CoverFile is the field community table: turfID, year, one column
	// per species with percent cover.
	CoverFile string `mapstructure:"cover_file" yaml:"cover_file"`

	// MetaFile is the turf metadata table:
	// turfID, siteID, destSiteID, year, treatment.
	MetaFile string `mapstructure:"meta_file" yaml:"meta_file"`

	// TraitsFile is the per-species trait table.
	TraitsFile string `mapstructure:"traits_file" yaml:"traits_file"`

	// TargetsFile is the target parameter table: site, d, m.
	TargetsFile string `mapstructure:"targets_file" yaml:"targets_file"`

	// CorpusDir is the directory holding simulated-abundance files,
	// named sim_d<d>_m<m>_r<rep>.csv.
	CorpusDir string `mapstructure:"corpus_dir" yaml:"corpus_dir"`

	// OutputDir receives the summary tables.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// CheckpointDB is the SQLite file holding the running summary between
	// flushes. Empty means keep the running summary in memory only.
	CheckpointDB string `mapstructure:"checkpoint_db" yaml:"checkpoint_db"`
}

// PipelineConfig contains the distance-pipeline settings.
type PipelineConfig struct {
	// Traits lists the traits to score. The name in CompositionTrait
	// selects whole-composition distance; every other name must be a
	// column of the trait table and selects community-weighted-mean
	// distance.
	Traits []string `mapstructure:"traits" yaml:"traits"`

	// CompositionTrait is the pseudo-trait name that requests the
	// compositional (Bray-Curtis) metric.
	CompositionTrait string `mapstructure:"composition_trait" yaml:"composition_trait"`

	// ControlTreatments are the treatment codes that mark a turf as an
	// untransplanted control.
	ControlTreatments []string `mapstructure:"control_treatments" yaml:"control_treatments"`

	// SignifDigits is the number of significant digits used when matching
	// immigration rates (m) between the target table and the corpus.
	// Absorbs floating-point noise from file-name encoding.
	SignifDigits int `mapstructure:"signif_digits" yaml:"signif_digits"`

	// PretreatmentYear is the baseline year that receives copied
	// observed-vs-control distances after aggregation.
	PretreatmentYear int `mapstructure:"pretreatment_year" yaml:"pretreatment_year"`

	// FlushEvery is the number of processed (file, trait) units between
	// collapses of the accumulation buffer. Bounds peak memory; does not
	// change results.
	FlushEvery int `mapstructure:"flush_every" yaml:"flush_every"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT.
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Paths: PathsConfig{
			OutputDir: ".",
		},
		Pipeline: PipelineConfig{
			Traits: []string{
				"cover", "leaf.area", "max.height", "seed.mass",
				"sla", "buds", "lateral", "offspring", "persistence",
			},
			CompositionTrait:  "cover",
			ControlTreatments: []string{"TTC", "TT1"},
			SignifDigits:      3,
			PretreatmentYear:  2009,
			FlushEvery:        20,
		},
		Log: LogConfig{
			Format:      "text",
			Level:       "info",
			Destination: "stderr",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
