package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, meta.BackendRest, cfg.Backend)
	assert.Equal(t, meta.DefaultDomain, cfg.Platform.URL)
	assert.Equal(t, meta.DefaultBucket, cfg.Storage.Bucket)
	assert.Equal(t, time.Hour, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 5*time.Second, cfg.Location.LookupTimeout)
	assert.Equal(t, meta.DefaultCountriesURL, cfg.Location.CountriesURL)
	assert.Equal(t, 24*time.Hour, cfg.Location.CountriesTTL)
	assert.Equal(t, filepath.Join(home, ".casos", "countries.json"), cfg.Location.CountriesCache)
	assert.Equal(t, meta.UploadConcurrency, cfg.Upload.Concurrency)
	assert.Equal(t, meta.DefaultPageSize, cfg.Feed.PageSize)
	assert.Equal(t, filepath.Join(home, ".casos", "casos.db"), cfg.Local.DBPath)
	assert.Equal(t, filepath.Join(home, ".casos", "session.json"), cfg.Session.Path)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
backend: local
storage:
  bucket: evidencias
  signed_url_ttl: 10m
location:
  lookup_timeout: 250ms
  countries_url: ""
upload:
  concurrency: 5
  convert_webp: true
`)
	t.Setenv("CASOS_API_KEY", "anon-key")
	t.Setenv("CASOS_MODERATION_ENDPOINT", "http://localhost:9000/classify")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, meta.BackendLocal, cfg.Backend)
	assert.Equal(t, "evidencias", cfg.Storage.Bucket)
	assert.Equal(t, 10*time.Minute, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Location.LookupTimeout)
	assert.Empty(t, cfg.Location.CountriesURL)
	assert.Equal(t, 5, cfg.Upload.Concurrency)
	assert.True(t, cfg.Upload.ConvertWebp)
	assert.Equal(t, "anon-key", cfg.Platform.APIKey)
	assert.Equal(t, "http://localhost:9000/classify", cfg.Moderation.Endpoint)
}

func TestApplyArguments(t *testing.T) {
	cfg, err := Load(writeConfig(t, "backend: rest\n"))
	require.NoError(t, err)
	cfg.Apply(&Argument{Backend: meta.BackendLocal, BaseDomain: "http://127.0.0.1:54321", ApiKey: "k"})
	assert.Equal(t, meta.BackendLocal, cfg.Backend)
	assert.Equal(t, "http://127.0.0.1:54321", cfg.Platform.URL)
	assert.Equal(t, "k", cfg.Platform.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeConfig(t, "{}\n"))
		require.NoError(t, err)
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "ftp" }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "s3" }},
		{"oss without credentials", func(c *Config) { c.Storage.Driver = meta.StorageDriverOSS }},
		{"empty bucket", func(c *Config) { c.Storage.Bucket = "" }},
		{"zero concurrency", func(c *Config) { c.Upload.Concurrency = 0 }},
		{"zero page size", func(c *Config) { c.Feed.PageSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
