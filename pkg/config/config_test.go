package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/treasuremap/pkg/cache"
	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTopN, cfg.TopN)
	assert.Equal(t, 60*time.Second, cfg.ToolTimeout.Duration)
	assert.Equal(t, cache.BackendFile, cfg.Cache.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Path)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.toml", `
manifest_path = "crates/app/Cargo.toml"
match_requirements = true
top_n = 20
tool_timeout = "90s"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "2h"

[server]
addr = "localhost:9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "crates/app/Cargo.toml", cfg.ManifestPath)
	assert.True(t, cfg.MatchRequirements)
	assert.Equal(t, 20, cfg.TopN)
	assert.Equal(t, 90*time.Second, cfg.ToolTimeout.Duration)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL.Duration)
	assert.Equal(t, "localhost:9000", cfg.Server.Addr)

	opts := cfg.CacheOptions()
	assert.Equal(t, cache.BackendRedis, opts.Backend)
	assert.Equal(t, "redis://localhost:6379/0", opts.RedisURL)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "c.toml", "top_n = 5\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 60*time.Second, cfg.ToolTimeout.Duration)
	assert.Equal(t, cache.BackendFile, cfg.Cache.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    apperrors.Code
	}{
		{"syntax", "top_n = ", apperrors.ErrCodeInvalidConfig},
		{"bad duration", `tool_timeout = "soon"`, apperrors.ErrCodeInvalidConfig},
		{"unknown key", "colour = true\n", apperrors.ErrCodeInvalidConfig},
		{"top_n zero", "top_n = 0\n", apperrors.ErrCodeInvalidConfig},
		{"negative timeout", `tool_timeout = "-1s"`, apperrors.ErrCodeInvalidConfig},
		{"backend", "[cache]\nbackend = \"memcached\"\n", apperrors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", apperrors.ErrCodeInvalidConfig},
		{"addr", "[server]\naddr = \"nope\"\n", apperrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "c.toml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetCode(err), "error: %v", err)
		})
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeFileNotFound))
}

func TestLoad_Search(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path, "no file found falls back to defaults")

	writeConfig(t, xdg, "treasuremap/config.toml", "top_n = 7\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TopN)

	writeConfig(t, ".", FileName, "top_n = 3\n")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TopN, "the working directory wins")
	assert.Equal(t, FileName, cfg.Path)
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, []string{FileName, filepath.Join("/xdg", "treasuremap", "config.toml")}, SearchPaths())
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("later")))
}
