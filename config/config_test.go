package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "airline.db", cfg.DB.Path)
	assert.Equal(t, time.Second, cfg.Sim.TickInterval)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	// GIVEN: A YAML file and an env override for the port
	dir := t.TempDir()
	path := filepath.Join(dir, "airline.yaml")
	yamlConfig := `
environment: production
server:
  port: 9090
db:
  path: /var/lib/airline/save.db
sim:
  tick_interval: 250ms
  start_paused: true
  scenario: starter-hub
`
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o600))
	t.Setenv("AIRLINE_CONFIG_PATH", path)
	t.Setenv("AIRLINE_HTTP_PORT", "9191")

	// WHEN: Loading
	cfg, err := Load()

	// THEN: File values apply and env wins over the file
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "/var/lib/airline/save.db", cfg.DB.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Sim.TickInterval)
	assert.True(t, cfg.Sim.StartPaused)
	assert.Equal(t, "starter-hub", cfg.Sim.Scenario)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("AIRLINE_HTTP_PORT", "eighty")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.DB.Path = " "
	cfg.Log.Level = "loud"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "db.path")
	assert.Contains(t, err.Error(), "log.level")
}
