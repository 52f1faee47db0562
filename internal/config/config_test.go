package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	path := writeConfig(t, `
database:
  host: localhost
  port: 5432
  user: app
  password: ${TEST_DB_PASSWORD}
  dbname: contentsearch
  sslmode: disable
providers:
  json:
    base_url: http://localhost:9001
  xml:
    base_url: http://localhost:9002
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "http://localhost:9001", cfg.Providers.JSON.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 3, cfg.Providers.Retry.MaxAttempts)
	assert.Equal(t, "contents", cfg.Meilisearch.Index)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_DSNAndURL(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  port: 5433
  user: app
  password: pw
  dbname: cs
  sslmode: require
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "host=db port=5433 user=app password=pw dbname=cs sslmode=require", cfg.Database.DSN())
	assert.Equal(t, "postgres://app:pw@db:5433/cs?sslmode=require", cfg.Database.URL())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
