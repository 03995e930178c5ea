package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9000
  env: development
database:
  url: postgres://file/db
jwt:
  secret: file-secret
  ttl: 15
email:
  provider: smtp
  smtp_host: smtp.example.com
storage:
  type: s3
  bucket: gallery
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "JWT_SECRET", "SERVER_PORT", "SERVER_ENV", "EMAIL_PROVIDER", "STORAGE_TYPE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "postgres://file/db", cfg.Database.DSN)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL())
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "s3", cfg.Storage.Type)
	// defaults
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL())
	assert.Equal(t, "@every 15m", cfg.Workers.ExpirySpec)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoadEnvOnlyWhenFileMissing(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "production", cfg.Server.Env)
}

func TestValidate(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(writeConfig(t, "server:\n  port: 1\n"))
	assert.ErrorContains(t, err, "database.url")

	_, err = Load(writeConfig(t, "database:\n  url: x\n"))
	assert.ErrorContains(t, err, "jwt.secret")

	_, err = Load(writeConfig(t, "database:\n  url: x\njwt:\n  secret: y\nemail:\n  provider: pigeon\n"))
	assert.ErrorContains(t, err, "email provider")
}

func TestUploadPolicyAllows(t *testing.T) {
	p := UploadPolicy{AllowedTypes: []string{"image/png", "image/jpeg"}}

	assert.True(t, p.Allows("image/png"))
	assert.True(t, p.Allows("IMAGE/JPEG; charset=binary"))
	assert.False(t, p.Allows("application/pdf"))
}
