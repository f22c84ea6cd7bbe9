package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/starbridge/pkg/errors"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[render]
mirror_x = false
max_elements = 5000
time_budget = "2s"
width = 1200

[check]
tolerance = 0.1

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "1h"

[log]
level = "debug"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Render.MirrorX == nil || *cfg.Render.MirrorX {
		t.Errorf("mirror_x = %v, want explicit false", cfg.Render.MirrorX)
	}
	if cfg.Render.MaxElements != 5000 || cfg.Render.TimeBudget.Std() != 2*time.Second || cfg.Render.Width != 1200 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Check.Tolerance != 0.1 {
		t.Errorf("tolerance = %v", cfg.Check.Tolerance)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.TTL.Std() != time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Render.MirrorX != nil || cfg.Cache.Backend != "" {
		t.Errorf("empty config = %+v", cfg)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", "[render"},
		{"bad duration", "[render]\ntime_budget = \"soon\""},
		{"unknown key", "[render]\ncolour = 1"},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"bad tolerance", "[check]\ntolerance = 2.0"},
		{"negative budget", "[render]\nmax_elements = -1"},
		{"bad level", "[log]\nlevel = \"loud\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input)); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("[check]\ntolerance = 0.3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil || cfg.Check.Tolerance != 0.3 {
		t.Fatalf("Load = %+v, %v", cfg, err)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := LoadDefault()
	if err != nil || cfg == nil {
		t.Fatalf("LoadDefault without file = %v, %v", cfg, err)
	}

	os.MkdirAll(filepath.Join(dir, "starbridge"), 0o755)
	os.WriteFile(filepath.Join(dir, "starbridge", FileName), []byte("[log]\nlevel = \"warn\"\n"), 0o644)
	cfg, err = LoadDefault()
	if err != nil || cfg.Log.Level != "warn" {
		t.Errorf("LoadDefault = %+v, %v", cfg, err)
	}
}
