package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Calculator.Output)
	assert.Nil(t, cfg.Calculator.Formulas)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigValues(t *testing.T) {
	path := writeTemp(t, `
[calculator]
formulas = ["epley", "brzycki"]
output = "json"
share-url = "https://lift.example/"

[storage]
db = "/tmp/lift.db"

[log]
level = "debug"
json = true

[server]
addr = "127.0.0.1:9090"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"epley", "brzycki"}, cfg.Calculator.Formulas)
	require.NotNil(t, cfg.Calculator.Output)
	assert.Equal(t, "json", *cfg.Calculator.Output)
	assert.Equal(t, "https://lift.example/", *cfg.Calculator.ShareURL)
	assert.Equal(t, "/tmp/lift.db", *cfg.Storage.DB)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.True(t, *cfg.Log.JSON)
	assert.Nil(t, cfg.Log.File)
	assert.Equal(t, "127.0.0.1:9090", *cfg.Server.Addr)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	_, err := LoadConfig(writeTemp(t, "[calculator]\nformula = [\"epley\"]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculator.formula")
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := LoadConfig(writeTemp(t, "[calculator\n"))
	require.Error(t, err)
}

func TestDefaultPathsHonorXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, filepath.Join("/cfg", "liftcalc", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "liftcalc", "liftcalc.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/state", "liftcalc", "liftcalc.log"), DefaultLogPath())
}
