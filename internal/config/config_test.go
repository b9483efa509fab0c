package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.True(t, cfg.Database.IsEmbedded())
	require.Equal(t, "./data/userhub.db", cfg.Database.Path)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, 9091, cfg.Metrics.Port)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
database:
  driver: postgres
  host: db.internal
  user: app
  database: userhub
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.False(t, cfg.Database.IsEmbedded())
	require.Contains(t, cfg.Database.DSN(), "host=db.internal")
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("USERHUB_SERVER_PORT", "8181")
	t.Setenv("USERHUB_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8181, cfg.Server.Port)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8000},
			Database: DatabaseConfig{Driver: "sqlite", Path: "./data/userhub.db"},
			Logging:  LoggingConfig{Level: "info"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Database.Driver = "oracle"
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Database.Path = ""
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Database = DatabaseConfig{Driver: "postgres", Host: "localhost", User: "app", Database: "userhub"}
	require.NoError(t, cfg.Validate())

	cfg.Database.User = ""
	require.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())
}
