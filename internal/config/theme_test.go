package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultTheme(t *testing.T) {
	theme, err := LoadTheme("")
	require.NoError(t, err)
	require.NotEmpty(t, theme.Tiers)
	assert.NotEmpty(t, theme.Tiers[0])
}

func TestLoadDefaultThemeByName(t *testing.T) {
	theme, err := LoadTheme("default")
	require.NoError(t, err)
	require.NotEmpty(t, theme.Tiers)
}

func TestLoadUserYAMLTheme(t *testing.T) {
	tmpHome := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)
	defer os.Setenv("HOME", oldHome)

	themesDir := GetPaths().ThemesPath()
	require.NoError(t, os.MkdirAll(themesDir, 0755))

	yamlTheme := "tiers:\n  - [\"Alpha\", \"Beta\"]\n  - [\"Gamma\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(themesDir, "custom.yaml"), []byte(yamlTheme), 0644))

	theme, err := LoadTheme("custom")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Alpha", "Beta"}, {"Gamma"}}, theme.Tiers)
}

func TestLoadUserJSONCTheme(t *testing.T) {
	tmpHome := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)
	defer os.Setenv("HOME", oldHome)

	themesDir := GetPaths().ThemesPath()
	require.NoError(t, os.MkdirAll(themesDir, 0755))

	jsoncTheme := `{
		// single tier theme
		"tiers": [["Solo"]]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(themesDir, "solo.jsonc"), []byte(jsoncTheme), 0644))

	theme, err := LoadTheme("solo")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Solo"}}, theme.Tiers)
}

func TestLoadMissingTheme(t *testing.T) {
	tmpHome := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpHome)
	defer os.Setenv("HOME", oldHome)

	_, err := LoadTheme("does-not-exist")
	assert.Error(t, err)
}
