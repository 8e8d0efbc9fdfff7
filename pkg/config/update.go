package config

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir).
// Used for round-tripping config.yaml <-> Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Paths.CoverFile
	if s != "" {
		res = append(res, OptCoverFile(s))
	}
	s = c.Paths.MetaFile
	if s != "" {
		res = append(res, OptMetaFile(s))
	}
	s = c.Paths.TraitsFile
	if s != "" {
		res = append(res, OptTraitsFile(s))
	}
	s = c.Paths.TargetsFile
	if s != "" {
		res = append(res, OptTargetsFile(s))
	}
	s = c.Paths.CorpusDir
	if s != "" {
		res = append(res, OptCorpusDir(s))
	}
	s = c.Paths.OutputDir
	if s != "" {
		res = append(res, OptOutputDir(s))
	}
	s = c.Paths.CheckpointDB
	if s != "" {
		res = append(res, OptCheckpointDB(s))
	}

	if len(c.Pipeline.Traits) > 0 {
		res = append(res, OptTraits(c.Pipeline.Traits))
	}
	s = c.Pipeline.CompositionTrait
	if s != "" {
		res = append(res, OptCompositionTrait(s))
	}
	if len(c.Pipeline.ControlTreatments) > 0 {
		res = append(res, OptControlTreatments(c.Pipeline.ControlTreatments))
	}
	i = c.Pipeline.SignifDigits
	if i > 0 {
		res = append(res, OptSignifDigits(i))
	}
	i = c.Pipeline.PretreatmentYear
	if i > 0 {
		res = append(res, OptPretreatmentYear(i))
	}
	i = c.Pipeline.FlushEvery
	if i > 0 {
		res = append(res, OptFlushEvery(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		slog.Warn("Option value cannot be empty, ignoring", "option", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		slog.Warn("Option value has to be a positive number, ignoring",
			"option", name, "value", i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	slog.Warn("Option does not support value, ignoring",
		"option", name, "value", val,
		"valid", strings.Join(vals, ", "),
	)
	return false
}
