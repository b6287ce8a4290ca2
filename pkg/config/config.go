// Package config loads treasuremap settings from a TOML file.
//
// A config file is optional. Lookup order is an explicit path, then
// treasuremap.toml in the working directory, then
// $XDG_CONFIG_HOME/treasuremap/config.toml. Command-line flags override
// whatever the file sets.
//
//	manifest_path = "crates/app/Cargo.toml"
//	match_requirements = true
//	top_n = 20
//	tool_timeout = "90s"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "2h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/treasuremap/pkg/cache"
	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
	"github.com/matzehuels/treasuremap/pkg/toolexec"
)

// FileName is the project-local config file name.
const FileName = "treasuremap.toml"

// Default values.
const (
	DefaultTopN       = 10
	DefaultServerAddr = ":8080"
)

// Config holds every file-configurable setting.
type Config struct {
	ManifestPath      string   `toml:"manifest_path"`
	MatchRequirements bool     `toml:"match_requirements"`
	TopN              int      `toml:"top_n" validate:"gte=1,lte=1000"`
	ToolTimeout       Duration `toml:"tool_timeout" validate:"gt=0"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend" validate:"oneof=file redis none"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url" validate:"required_if=Backend redis"`
	TTL      Duration `toml:"ttl" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"hostname_port"`
}

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		TopN:        DefaultTopN,
		ToolTimeout: Duration{toolexec.DefaultTimeout},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.TTLToolOutput},
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(Duration); ok {
			return int64(d.Duration)
		}
		return nil
	}, Duration{})
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
			}
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(fields, ", "))
		}
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid config")
	}
	return nil
}

// SearchPaths returns the implicit config locations in lookup order.
func SearchPaths() []string {
	paths := []string{FileName}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if d, err := os.UserConfigDir(); err == nil {
			dir = d
		}
	}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, "treasuremap", "config.toml"))
	}
	return paths
}

// Load reads the config at path. An empty path searches SearchPaths and
// falls back to Default when no file exists. An explicit path must exist.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, p := range SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return Default(), nil
		}
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
