package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guittarj/TraitsTransplants/pkg/config"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "traitsim"),
		},
		{
			msg: "cache dir",
			fn:  config.CacheDir,
			res: filepath.Join(tempHome, ".cache", "traitsim"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "traitsim", "logs"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "traitsim", "config.yaml"),
		},
		{
			msg: "checkpoint file",
			fn:  config.CheckpointFilePath,
			res: filepath.Join(tempHome, ".cache", "traitsim", "checkpoint.db"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()

	t.Run("creates valid default config", func(t *testing.T) {
		require.NotNil(t, cfg)

		assert.Equal(t, ".", cfg.Paths.OutputDir)
		assert.Empty(t, cfg.Paths.CorpusDir)

		assert.Equal(t, "cover", cfg.Pipeline.CompositionTrait)
		assert.Contains(t, cfg.Pipeline.Traits, "cover")
		assert.Contains(t, cfg.Pipeline.Traits, "sla")
		assert.Equal(t, []string{"TTC", "TT1"}, cfg.Pipeline.ControlTreatments)
		assert.Equal(t, 3, cfg.Pipeline.SignifDigits)
		assert.Equal(t, 2009, cfg.Pipeline.PretreatmentYear)
		assert.Equal(t, 20, cfg.Pipeline.FlushEvery)

		assert.Equal(t, "text", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "stderr", cfg.Log.Destination)

		assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
	})
}

func TestOptions(t *testing.T) {
	t.Run("valid values applied", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptCorpusDir("/data/sims"),
			config.OptFlushEvery(50),
			config.OptJobsNumber(4),
			config.OptLogLevel("debug"),
			config.OptTraits([]string{"cover", "sla"}),
		})
		assert.Equal(t, "/data/sims", cfg.Paths.CorpusDir)
		assert.Equal(t, 50, cfg.Pipeline.FlushEvery)
		assert.Equal(t, 4, cfg.JobsNumber)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, []string{"cover", "sla"}, cfg.Pipeline.Traits)
	})

	t.Run("invalid values rejected, config stays valid", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptCorpusDir("  "),
			config.OptFlushEvery(-1),
			config.OptLogLevel("loud"),
			config.OptLogFormat("xml"),
		})
		assert.Empty(t, cfg.Paths.CorpusDir)
		assert.Equal(t, 20, cfg.Pipeline.FlushEvery)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("checkpoint may be empty", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptCheckpointDB("")})
		assert.Empty(t, cfg.Paths.CheckpointDB)
	})
}

func TestToOptionsRoundTrip(t *testing.T) {
	src := config.New()
	src.Update([]config.Option{
		config.OptCoverFile("cover.csv"),
		config.OptMetaFile("meta.csv"),
		config.OptTraitsFile("traits.csv"),
		config.OptTargetsFile("targets.csv"),
		config.OptCorpusDir("sims"),
		config.OptSignifDigits(4),
		config.OptPretreatmentYear(2008),
		config.OptJobsNumber(2),
	})

	dst := config.New()
	dst.Update(src.ToOptions())

	assert.Equal(t, src.Paths, dst.Paths)
	assert.Equal(t, src.Pipeline, dst.Pipeline)
	assert.Equal(t, src.Log, dst.Log)
	assert.Equal(t, src.JobsNumber, dst.JobsNumber)
}
