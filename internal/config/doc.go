// Package config loads Tavern's configuration: XDG paths, the merged
// project/global settings file, .env overrides, and name-pool themes.
//
// # Configuration loading
//
// Load reads, in priority order:
//
//  1. Global config (~/.config/tavern/tavern.json or tavern.jsonc)
//  2. Project config (<dir>/.tavern/tavern.json or tavern.jsonc)
//  3. A .env file in the project directory (github.com/joho/godotenv)
//  4. Environment variables (TAVERN_RUNTIME_BIN, TAVERN_RUNTIME_ROOT,
//     TAVERN_CONCURRENCY_CAP)
//
// Both config files tolerate // and /* */ comments via
// github.com/tidwall/jsonc. Settings are read once at process start and
// never re-read mid-session.
//
// # Name-pool themes
//
// Themes are loaded the same way, as YAML (gopkg.in/yaml.v3) or JSONC
// documents, from the config directory's themes subfolder. A built-in
// default theme is embedded in the binary so the system always has at
// least one usable theme.
package config
