package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed themes/default.yaml
var embeddedThemes embed.FS

// Theme is an ordered sequence of name tiers loaded from a YAML or JSONC
// document. It is data, not code: the NameGenerator consumes it but the
// config package only knows how to find and parse it.
type Theme struct {
	Tiers [][]string `json:"tiers" yaml:"tiers"`
}

// LoadTheme resolves a theme by name. Empty name (or "default") loads the
// theme embedded in the binary. Any other name is looked up as
// "<name>.yaml" or "<name>.jsonc" under the config directory's themes
// subfolder.
func LoadTheme(name string) (*Theme, error) {
	if name == "" || name == "default" {
		data, err := embeddedThemes.ReadFile("themes/default.yaml")
		if err != nil {
			return nil, fmt.Errorf("load embedded theme: %w", err)
		}
		return parseYAMLTheme(data)
	}

	dir := GetPaths().ThemesPath()

	if data, err := os.ReadFile(filepath.Join(dir, name+".yaml")); err == nil {
		return parseYAMLTheme(data)
	}
	if data, err := os.ReadFile(filepath.Join(dir, name+".jsonc")); err == nil {
		return parseJSONCTheme(data)
	}
	if data, err := os.ReadFile(filepath.Join(dir, name+".json")); err == nil {
		return parseJSONCTheme(data)
	}

	return nil, fmt.Errorf("theme %q not found under %s", name, dir)
}

func parseYAMLTheme(data []byte) (*Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse theme yaml: %w", err)
	}
	return &t, nil
}

func parseJSONCTheme(data []byte) (*Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(jsonc.ToJSON(data), &t); err != nil {
		return nil, fmt.Errorf("parse theme jsonc: %w", err)
	}
	return &t, nil
}
