package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  url: jdbc:postgresql://db.example.com:5432/app
  user: svc_reporting
  region: eu-central-1

provider: azure

azure:
  tenant_id: 11111111-1111-1111-1111-111111111111
  client_id: 22222222-2222-2222-2222-222222222222

cache:
  ttl: 9m

timeout: 90s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "jdbc:postgresql://db.example.com:5432/app", cfg.Connection.URL)
	assert.Equal(t, "svc_reporting", cfg.Connection.User)
	assert.Equal(t, "eu-central-1", cfg.Connection.Region)
	assert.Equal(t, "azure", cfg.Provider)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", cfg.Azure.TenantID)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", cfg.Azure.ClientID)
	assert.Equal(t, "9m", cfg.Cache.TTL)
	assert.Equal(t, "90s", cfg.Timeout)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  url: jdbc:postgresql://localhost/postgres
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "jdbc:postgresql://localhost/postgres", cfg.Connection.URL)
	assert.Equal(t, "", cfg.Connection.User)
	assert.Equal(t, "", cfg.Provider)
	assert.Equal(t, "", cfg.Cache.TTL)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, FileConfig{}, *cfg)
}
