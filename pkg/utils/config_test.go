package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeEnvFile(t, `APP_NAME=coffee
PORT=9090
JWT_SECRET=file-secret
JWT_ACCESS_TTL_MINUTES=15
DB_NAME=coffee_db
CORS_ORIGINS=http://a.test, http://b.test
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "coffee", cfg.App.Name)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "coffee_db", cfg.Database.Name)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeEnvFile(t, "JWT_SECRET=s\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.Verification.CodeTTL)
	assert.Equal(t, 48*time.Hour, cfg.Sweep.Retention)
	assert.Equal(t, "@hourly", cfg.Sweep.Schedule)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 3, cfg.Email.MaxRetries)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("PORT", "7070")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "7070", cfg.App.Port)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeEnvFile(t, "PORT=8081\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
}
