// Package config loads plantbeam configuration.
//
// Configuration lives in a TOML file at ~/.config/plantbeam/config.toml
// (or $XDG_CONFIG_HOME/plantbeam/config.toml). A missing file is not an
// error; defaults apply. Precedence, lowest to highest: defaults, config
// file, environment, command-line flags (flags are applied by the CLI
// layer on top of the loaded Config).
//
// Recognized environment variables:
//
//	PLANTBEAM_SERVER      overrides the self-hosted server URL
//	PLANTBEAM_OUTPUT_DIR  overrides the diagram output directory
package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jmswint/plantbeam/pkg/cache"
	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/render"
	"github.com/jmswint/plantbeam/pkg/server"
	"github.com/jmswint/plantbeam/pkg/token"
)

// Cache backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the root configuration.
type Config struct {
	// OutputDir is where rendered diagrams are written.
	OutputDir string `toml:"output_dir"`

	// Format is the default output image format.
	Format string `toml:"format"`

	// LocalURL overrides the self-hosted server URL in the default
	// endpoint chain. Ignored when Servers is set.
	LocalURL string `toml:"local_url"`

	// Servers replaces the default endpoint chain entirely. Order is the
	// fallback order.
	Servers []ServerConfig `toml:"servers"`

	Cache CacheConfig `toml:"cache"`
}

// ServerConfig describes one rendering endpoint.
type ServerConfig struct {
	Name   string `toml:"name"`
	URL    string `toml:"url"`
	Scheme string `toml:"scheme"` // deflate, hex, or kroki; defaults to deflate

	// Prefix is prepended to tokens in the URL path ("~h" for hex on the
	// public server).
	Prefix string `toml:"prefix"`

	// PathPrefix sits between the base URL and the format segment
	// ("plantuml" for kroki-style servers).
	PathPrefix string `toml:"path_prefix"`
}

// CacheConfig selects and configures the render cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // file (default), redis, none
	Dir     string `toml:"dir"`     // file backend; defaults under the user cache dir

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir: render.DefaultOutputDir,
		Format:    render.DefaultFormat,
		Cache:     CacheConfig{Backend: BackendFile},
	}
}

// Path returns the default config file location.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "plantbeam", "config.toml")
}

// Load reads the config file from the default location.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file, applying defaults and environment
// overrides. A missing file yields the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults
		case err != nil:
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PLANTBEAM_SERVER"); v != "" {
		c.LocalURL = v
	}
	if v := os.Getenv("PLANTBEAM_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
}

func (c *Config) validate() error {
	if c.Format != "" && c.Format != "png" && c.Format != "svg" {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid format: %q", c.Format)
	}
	switch c.Cache.Backend {
	case "", BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend: %q", c.Cache.Backend)
	}
	for _, s := range c.Servers {
		if s.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "server %q has no url", s.Name)
		}
		switch token.Scheme(s.Scheme) {
		case "", token.SchemeDeflate, token.SchemeHex, token.SchemeKroki:
		default:
			return errors.New(errors.ErrCodeInvalidConfig,
				"unknown token scheme %q for server %q", s.Scheme, s.Name)
		}
	}
	return nil
}

// Endpoints builds the endpoint fallback chain from the configuration.
func (c Config) Endpoints() []server.Endpoint {
	if len(c.Servers) == 0 {
		eps := server.DefaultEndpoints()
		if c.LocalURL != "" {
			eps[0].BaseURL = c.LocalURL
		}
		return eps
	}

	eps := make([]server.Endpoint, 0, len(c.Servers))
	for _, s := range c.Servers {
		scheme := token.Scheme(s.Scheme)
		if scheme == "" {
			scheme = token.SchemeDeflate
		}
		eps = append(eps, server.Endpoint{
			Name:       s.Name,
			BaseURL:    s.URL,
			Scheme:     scheme,
			Prefix:     s.Prefix,
			PathPrefix: s.PathPrefix,
		})
	}
	return eps
}

// OpenCache constructs the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case "", BackendFile:
		dir := c.Cache.Dir
		if dir == "" {
			base, err := os.UserCacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = filepath.Join(base, "plantbeam")
		}
		return cache.NewFileCache(dir)
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		})
	case BackendNone:
		return cache.NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend: %q", c.Cache.Backend)
	}
}
