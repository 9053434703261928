package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty temp dir so no stray phone2pc.yaml is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 1.0, cfg.Sensitivity)
	assert.Equal(t, 0.7, cfg.Smoothing)
	assert.Equal(t, 5*time.Second, cfg.StatusInterval)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
	assert.Equal(t, 1<<20, cfg.ReadBuffer)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, "127.0.0.1:5080", cfg.API.Addr)
	assert.Empty(t, cfg.API.Token)
	assert.False(t, cfg.Firewall)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	chdir(t)

	cfg, used, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Empty(t, used)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileInWorkingDir(t *testing.T) {
	dir := chdir(t)
	content := `
port: 6000
sensitivity: 2.5
status_interval: 2s
api:
  enabled: false
  token: abc
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "phone2pc.yaml"), []byte(content), 0644))

	cfg, used, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "phone2pc.yaml", filepath.Base(used))
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, 2.5, cfg.Sensitivity)
	assert.Equal(t, 0.7, cfg.Smoothing)
	assert.Equal(t, 2*time.Second, cfg.StatusInterval)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, "abc", cfg.API.Token)
	assert.Equal(t, "127.0.0.1:5080", cfg.API.Addr)
}

func TestLoadGlobalConfig(t *testing.T) {
	home := chdir(t)
	global := filepath.Join(home, GlobalConfigDir)
	require.NoError(t, os.MkdirAll(global, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(global, "phone2pc.yaml"), []byte("port: 7000\n"), 0644))

	cfg, _, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "phone2pc.yaml"), []byte("port: 6000\nsmoothing: 0.2\n"), 0644))
	t.Setenv("PHONE2PC_PORT", "6500")
	t.Setenv("PHONE2PC_API_ADDR", "0.0.0.0:9000")

	cfg, _, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 6500, cfg.Port)
	assert.Equal(t, 0.2, cfg.Smoothing)
	assert.Equal(t, "0.0.0.0:9000", cfg.API.Addr)
}

func TestExplicitSetWins(t *testing.T) {
	chdir(t)
	t.Setenv("PHONE2PC_PORT", "6500")

	v := NewViper()
	v.Set("port", 6600)
	cfg, _, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 6600, cfg.Port)
}

func TestExplicitFileMustExist(t *testing.T) {
	dir := chdir(t)
	_, _, err := Load(NewViper(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestExplicitJSONFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host": "127.0.0.1", "firewall": true}`), 0644))

	cfg, used, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.True(t, cfg.Firewall)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "phone2pc.yaml"), []byte("port: 70000\n"), 0644))

	_, _, err := Load(NewViper(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port 70000")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty host", func(c *Config) { c.Host = " " }, "host"},
		{"zero port", func(c *Config) { c.Port = 0 }, "port"},
		{"negative port", func(c *Config) { c.Port = -1 }, "port"},
		{"zero status interval", func(c *Config) { c.StatusInterval = 0 }, "status_interval"},
		{"negative read timeout", func(c *Config) { c.ReadTimeout = -time.Second }, "read_timeout"},
		{"negative read buffer", func(c *Config) { c.ReadBuffer = -1 }, "read_buffer"},
		{"api without addr", func(c *Config) { c.API.Addr = "" }, "api.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	cfg := DefaultConfig()
	cfg.API.Enabled = false
	cfg.API.Addr = ""
	assert.NoError(t, cfg.Validate())
}
