package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths contains the standard paths for Tavern's own data, distinct from
// the external runtime's transcript directory (see RuntimeRoot in
// config.go).
type Paths struct {
	Data   string // ~/.local/share/tavern
	Config string // ~/.config/tavern
	Cache  string // ~/.cache/tavern
	State  string // ~/.local/state/tavern
}

// GetPaths returns the standard paths for Tavern data.
func GetPaths() *Paths {
	return &Paths{
		Data:   filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), "tavern"),
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), "tavern"),
		Cache:  filepath.Join(getEnvOrDefault("XDG_CACHE_HOME", defaultCacheHome()), "tavern"),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), "tavern"),
	}
}

// EnsurePaths creates all required directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Data, p.Config, p.Cache, p.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// StoragePath returns the directory backing the durable SessionStore.
func (p *Paths) StoragePath() string {
	return filepath.Join(p.Data, "storage")
}

// ThemesPath returns the directory user-supplied name-pool themes load from.
func (p *Paths) ThemesPath() string {
	return filepath.Join(p.Config, "themes")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func defaultCacheHome() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "cache")
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}

func defaultStateHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(GetPaths().Config, "tavern.json")
}

// ProjectConfigPath returns the path to a project's local config file.
func ProjectConfigPath(directory string) string {
	return filepath.Join(directory, ".tavern", "tavern.json")
}
