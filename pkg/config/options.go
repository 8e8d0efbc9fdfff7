package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptCoverFile sets the path of the field community (percent cover) table.
func OptCoverFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Cover File", s) {
			c.Paths.CoverFile = s
		}
	}
}

// OptMetaFile sets the path of the turf metadata table.
func OptMetaFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Meta File", s) {
			c.Paths.MetaFile = s
		}
	}
}

// OptTraitsFile sets the path of the per-species trait table.
func OptTraitsFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Traits File", s) {
			c.Paths.TraitsFile = s
		}
	}
}

// OptTargetsFile sets the path of the target parameter table.
func OptTargetsFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Targets File", s) {
			c.Paths.TargetsFile = s
		}
	}
}

// OptCorpusDir sets the directory holding the simulation corpus.
func OptCorpusDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Corpus Dir", s) {
			c.Paths.CorpusDir = s
		}
	}
}

// OptOutputDir sets the directory receiving the summary tables.
func OptOutputDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Dir", s) {
			c.Paths.OutputDir = s
		}
	}
}

// OptCheckpointDB sets the SQLite file holding the running summary.
// An empty string keeps the running summary in memory only, so it is
// accepted as-is.
func OptCheckpointDB(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Paths.CheckpointDB = s
	}
}

// OptTraits sets the list of traits to score.
func OptTraits(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Pipeline.Traits = ss
		}
	}
}

// OptCompositionTrait sets the pseudo-trait name that selects the
// compositional metric.
func OptCompositionTrait(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Composition Trait", s) {
			c.Pipeline.CompositionTrait = s
		}
	}
}

// OptControlTreatments sets the treatment codes that mark control turfs.
func OptControlTreatments(ss []string) Option {
	return func(c *Config) {
		if len(ss) > 0 {
			c.Pipeline.ControlTreatments = ss
		}
	}
}

// OptSignifDigits sets the significant digits used when matching
// immigration rates.
func OptSignifDigits(i int) Option {
	return func(c *Config) {
		if isValidInt("Signif Digits", i) {
			c.Pipeline.SignifDigits = i
		}
	}
}

// OptPretreatmentYear sets the baseline year for copied observed distances.
func OptPretreatmentYear(i int) Option {
	return func(c *Config) {
		if isValidInt("Pretreatment Year", i) {
			c.Pipeline.PretreatmentYear = i
		}
	}
}

// OptFlushEvery sets the number of processed (file, trait) units between
// collapses of the accumulation buffer.
func OptFlushEvery(i int) Option {
	return func(c *Config) {
		if isValidInt("Flush Every", i) {
			c.Pipeline.FlushEvery = i
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where log output goes.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent corpus-file workers.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory used to derive config, cache and log
// locations. Set once by the CLI during init.
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Dir", s) {
			c.HomeDir = s
		}
	}
}
