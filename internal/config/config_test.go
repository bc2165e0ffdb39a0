package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	return tmpDir
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "claude", cfg.RuntimeBin)
	assert.Equal(t, 10, cfg.ConcurrencyCap)
	assert.Empty(t, cfg.Theme)
}

func TestLoadProjectConfig(t *testing.T) {
	isolateHome(t)
	projectDir := t.TempDir()

	config := `{"runtimeBin": "claude-custom", "concurrencyCap": 4}`
	configPath := filepath.Join(projectDir, ".tavern", "tavern.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	cfg, err := Load(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "claude-custom", cfg.RuntimeBin)
	assert.Equal(t, 4, cfg.ConcurrencyCap)
}

func TestLoadJSONCComments(t *testing.T) {
	isolateHome(t)
	projectDir := t.TempDir()

	jsoncConfig := `{
		// runtime binary override
		"runtimeBin": "claude-beta",
		/* concurrency
		   cap */
		"concurrencyCap": 3
	}`
	configPath := filepath.Join(projectDir, ".tavern", "tavern.jsonc")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte(jsoncConfig), 0644))

	cfg, err := Load(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "claude-beta", cfg.RuntimeBin)
	assert.Equal(t, 3, cfg.ConcurrencyCap)
}

func TestConfigMergeProjectOverridesGlobal(t *testing.T) {
	tmpHome := isolateHome(t)
	projectDir := t.TempDir()

	globalConfig := `{"runtimeBin": "claude-global", "theme": "forest"}`
	globalPath := filepath.Join(tmpHome, ".config", "tavern", "tavern.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(globalPath), 0755))
	require.NoError(t, os.WriteFile(globalPath, []byte(globalConfig), 0644))

	projectConfig := `{"runtimeBin": "claude-project"}`
	projectPath := filepath.Join(projectDir, ".tavern", "tavern.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(projectPath), 0755))
	require.NoError(t, os.WriteFile(projectPath, []byte(projectConfig), 0644))

	cfg, err := Load(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "claude-project", cfg.RuntimeBin)
	assert.Equal(t, "forest", cfg.Theme)
}

func TestLoadDotEnv(t *testing.T) {
	isolateHome(t)
	projectDir := t.TempDir()

	envFile := filepath.Join(projectDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TAVERN_RUNTIME_BIN=claude-from-env\n"), 0644))
	defer os.Unsetenv("TAVERN_RUNTIME_BIN")

	cfg, err := Load(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "claude-from-env", cfg.RuntimeBin)
}

func TestEnvOverridesFileConfig(t *testing.T) {
	isolateHome(t)
	projectDir := t.TempDir()

	config := `{"runtimeBin": "claude-from-file"}`
	configPath := filepath.Join(projectDir, ".tavern", "tavern.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	os.Setenv("TAVERN_RUNTIME_BIN", "claude-from-real-env")
	defer os.Unsetenv("TAVERN_RUNTIME_BIN")

	cfg, err := Load(projectDir)
	require.NoError(t, err)

	assert.Equal(t, "claude-from-real-env", cfg.RuntimeBin)
}

func TestConcurrencyCapEnvOverrideIgnoresInvalid(t *testing.T) {
	isolateHome(t)

	os.Setenv("TAVERN_CONCURRENCY_CAP", "not-a-number")
	defer os.Unsetenv("TAVERN_CONCURRENCY_CAP")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.ConcurrencyCap)
}

func TestSaveAndReload(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "tavern.json")

	cfg := DefaultConfig()
	cfg.RuntimeBin = "claude-saved"

	require.NoError(t, Save(&cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "claude-saved")
}
