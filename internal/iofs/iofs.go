// Package iofs prepares the file-system layout of the application: config,
// cache and log directories, plus a generated default config.yaml.
package iofs

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/guittarj/TraitsTransplants/pkg/config"
)

const configHeader = `# traitsim configuration.
# Generated with default values; edit paths before the first run.
# Precedence: CLI flags > TRAITSIM_* env vars > this file > defaults.
`

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes a default config.yaml on first run. An existing
// file is never overwritten.
func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	data, err := yaml.Marshal(config.New())
	if err != nil {
		return WriteConfigError(configPath, err)
	}
	data = append([]byte(configHeader), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return WriteConfigError(configPath, err)
	}

	return nil
}
