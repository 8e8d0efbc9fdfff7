package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "traitsim"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/traitsim by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files, including the
// default checkpoint database.
// Returns ~/.cache/traitsim by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/traitsim/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/traitsim/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// CheckpointFilePath returns the default path of the checkpoint database.
// Returns ~/.cache/traitsim/checkpoint.db by default.
func CheckpointFilePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "checkpoint.db")
}
