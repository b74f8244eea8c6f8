package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigFile returns the per-user config file location. The base
// directory honors CLIPSIFT_CONFIG_DIR.
func DefaultConfigFile() (string, error) {
	if dir := os.Getenv("CLIPSIFT_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.yaml"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "clipsift", "config.yaml"), nil
}

// defaultDataDir is where the database and spilled blobs live unless
// configured otherwise. It honors CLIPSIFT_DATA_DIR and falls back through
// the user cache dir to a dotdir in $HOME.
func defaultDataDir() string {
	if dir := os.Getenv("CLIPSIFT_DATA_DIR"); dir != "" {
		return dir
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "clipsift")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clipsift"
	}
	return filepath.Join(home, ".clipsift")
}

// EnsureDataDirs creates the directories the configured paths point into.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{filepath.Dir(cfg.Storage.DBPath)}
	if cfg.Blob.SpillDir != "" {
		dirs = append(dirs, cfg.Blob.SpillDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
