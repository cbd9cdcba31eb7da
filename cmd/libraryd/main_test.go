package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigReadsFlagsEnvironmentAndFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "libraryd.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("jwt-issuer: from-file\nshutdown-timeout: 3s\n"), 0o600))
	t.Setenv("LIBRARY_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--" + flagConfig, configPath,
		"--" + flagDatabaseURL, "sqlite://data/library.db",
		"--" + flagListenAddr, ":9191",
	}))

	cfg := &runtimeConfig{}
	require.NoError(t, loadConfig(cmd, cfg))
	assert.Equal(t, "sqlite://data/library.db", cfg.DatabaseURL)
	assert.Equal(t, "gorm", cfg.PostgresDriver)
	assert.Equal(t, ":9191", cfg.Server.ListenAddr)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "from-file", cfg.Server.JWTIssuer)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Server.AuthEnabled())
}

func TestLoadConfigDefaults(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := &runtimeConfig{}
	require.NoError(t, loadConfig(cmd, cfg))
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, "library", cfg.Server.JWTIssuer)
}
