package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
)

// Config holds process-wide Tavern settings, read once at startup.
type Config struct {
	// RuntimeBin is the path or name of the LLM runtime CLI subprocess.
	RuntimeBin string `json:"runtimeBin"`
	// RuntimeRoot is the external runtime's state directory, the parent of
	// its per-project transcript directories (see internal/transcript).
	RuntimeRoot string `json:"runtimeRoot"`
	// ConcurrencyCap bounds simultaneous in-flight LLM calls process-wide.
	ConcurrencyCap int `json:"concurrencyCap"`
	// Theme names the built-in or user theme the name pool should load.
	// Empty selects the embedded default theme.
	Theme string `json:"theme"`
}

// DefaultConfig returns Tavern's baseline configuration.
func DefaultConfig() Config {
	return Config{
		RuntimeBin:     "claude",
		RuntimeRoot:    filepath.Join(os.Getenv("HOME"), ".claude"),
		ConcurrencyCap: 10,
		Theme:          "",
	}
}

// Load merges configuration from the global file, the project-local file,
// a project-local .env, and environment variables, in that priority order
// (each source overrides the one before it).
func Load(directory string) (*Config, error) {
	cfg := DefaultConfig()

	paths := GetPaths()
	loadConfigFile(filepath.Join(paths.Config, "tavern.json"), &cfg)
	loadConfigFile(filepath.Join(paths.Config, "tavern.jsonc"), &cfg)

	if directory != "" {
		loadConfigFile(filepath.Join(directory, ".tavern", "tavern.json"), &cfg)
		loadConfigFile(filepath.Join(directory, ".tavern", "tavern.jsonc"), &cfg)

		// Best-effort: a missing .env is not an error.
		_ = godotenv.Load(filepath.Join(directory, ".env"))
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// loadConfigFile reads a single JSON or JSONC file and merges any fields
// it sets into cfg. A missing or unparsable file is silently skipped; the
// merged result simply falls back to whatever was already in cfg.
func loadConfigFile(path string, cfg *Config) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	data = jsonc.ToJSON(data)

	var override Config
	if err := json.Unmarshal(data, &override); err != nil {
		return
	}

	mergeConfig(cfg, &override)
}

// mergeConfig overwrites fields in target with any non-zero fields set in
// source.
func mergeConfig(target, source *Config) {
	if source.RuntimeBin != "" {
		target.RuntimeBin = source.RuntimeBin
	}
	if source.RuntimeRoot != "" {
		target.RuntimeRoot = source.RuntimeRoot
	}
	if source.ConcurrencyCap != 0 {
		target.ConcurrencyCap = source.ConcurrencyCap
	}
	if source.Theme != "" {
		target.Theme = source.Theme
	}
}

// applyEnvOverrides applies the highest-priority configuration source:
// environment variables, which may have just been populated by a .env
// file loaded in Load.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TAVERN_RUNTIME_BIN"); v != "" {
		cfg.RuntimeBin = v
	}
	if v := os.Getenv("TAVERN_RUNTIME_ROOT"); v != "" {
		cfg.RuntimeRoot = v
	}
	if v := os.Getenv("TAVERN_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("TAVERN_CONCURRENCY_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ConcurrencyCap = n
		}
	}
}

// Save writes cfg as indented JSON to path, creating parent directories
// as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
