package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmswint/plantbeam/pkg/errors"
	"github.com/jmswint/plantbeam/pkg/render"
	"github.com/jmswint/plantbeam/pkg/server"
	"github.com/jmswint/plantbeam/pkg/token"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.OutputDir != render.DefaultOutputDir {
		t.Errorf("output dir = %q", cfg.OutputDir)
	}
	if cfg.Format != "png" {
		t.Errorf("format = %q", cfg.Format)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
output_dir = "out/diagrams"
format = "svg"
local_url = "http://plantuml.internal:8080"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.OutputDir != "out/diagrams" || cfg.Format != "svg" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	eps := cfg.Endpoints()
	if len(eps) != len(server.DefaultEndpoints()) {
		t.Fatalf("got %d endpoints", len(eps))
	}
	if eps[0].BaseURL != "http://plantuml.internal:8080" {
		t.Errorf("local URL not applied: %q", eps[0].BaseURL)
	}
}

func TestLoadFromBadTOML(t *testing.T) {
	path := writeConfig(t, "output_dir = [broken")
	if _, err := LoadFrom(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad format", `format = "gif"`},
		{"bad cache backend", "[cache]\nbackend = \"memcached\""},
		{"server without url", "[[servers]]\nname = \"x\""},
		{"bad scheme", "[[servers]]\nname = \"x\"\nurl = \"http://x\"\nscheme = \"base32\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadFrom(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
output_dir = "from-file"
local_url = "http://from-file:8080"
`)
	t.Setenv("PLANTBEAM_SERVER", "http://from-env:9090")
	t.Setenv("PLANTBEAM_OUTPUT_DIR", "from-env")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.OutputDir != "from-env" {
		t.Errorf("output dir = %q, want env value", cfg.OutputDir)
	}
	if cfg.Endpoints()[0].BaseURL != "http://from-env:9090" {
		t.Errorf("local URL = %q, want env value", cfg.Endpoints()[0].BaseURL)
	}
}

func TestCustomServerChain(t *testing.T) {
	path := writeConfig(t, `
[[servers]]
name = "staging"
url = "http://staging:8080"

[[servers]]
name = "mirror"
url = "https://mirror.example.com"
scheme = "kroki"
path_prefix = "plantuml"
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	eps := cfg.Endpoints()
	if len(eps) != 2 {
		t.Fatalf("got %d endpoints, want 2", len(eps))
	}
	if eps[0].Scheme != token.SchemeDeflate {
		t.Errorf("default scheme = %q, want deflate", eps[0].Scheme)
	}
	if eps[1].Scheme != token.SchemeKroki || eps[1].PathPrefix != "plantuml" {
		t.Errorf("second endpoint = %+v", eps[1])
	}
}
