// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()

	cfg := Default()

	if err := cfg.validate(); err != nil {
		t.Fatalf("default configuration does not validate: %v", err)
	}

	if cfg.Loader.Attribute != "data-include" {
		t.Errorf("default attribute = %q", cfg.Loader.Attribute)
	}

	if cfg.Loader.Timeout != 10*time.Second {
		t.Errorf("default timeout = %s", cfg.Loader.Timeout)
	}

	if !cfg.Cache.Enabled || cfg.Cache.Size != 256 {
		t.Errorf("default cache = %+v", cfg.Cache)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HTMLWEAVE_ATTRIBUTE", "data-fragment")
	t.Setenv("HTMLWEAVE_TIMEOUT", "3s")
	t.Setenv("HTMLWEAVE_MAX_CONCURRENT", "4")
	t.Setenv("HTMLWEAVE_CACHE", "false")
	t.Setenv("HTMLWEAVE_LOG_OUTPUTS", "/dev/stderr, /dev/stdout")

	var cfg Config
	if err := cfg.LoadConfig(""); err != nil {
		t.Fatal(err)
	}

	if cfg.Loader.Attribute != "data-fragment" {
		t.Errorf("attribute = %q, want env override", cfg.Loader.Attribute)
	}

	if cfg.Loader.Timeout != 3*time.Second {
		t.Errorf("timeout = %s, want 3s", cfg.Loader.Timeout)
	}

	if cfg.Loader.MaxConcurrent != 4 {
		t.Errorf("maxConcurrent = %d, want 4", cfg.Loader.MaxConcurrent)
	}

	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by env override")
	}

	if len(cfg.Log.Outputs) != 2 || cfg.Log.Outputs[1] != "/dev/stdout" {
		t.Errorf("log outputs = %v, want two trimmed entries", cfg.Log.Outputs)
	}
}

func TestLoadConfigYAMLFile(t *testing.T) {
	t.Setenv("HTMLWEAVE_ATTRIBUTE", "") // avoid interference from the host environment
	os.Unsetenv("HTMLWEAVE_ATTRIBUTE")

	configPath := filepath.Join(t.TempDir(), "config.yml")

	yamlConfig := `
loader:
  attribute: data-partial
  sanitize: true
cache:
  cacheSize: 64
widgets:
  carousel:
    perView:
      "0": 2
log:
  logLevel: warn
`

	if err := os.WriteFile(configPath, []byte(yamlConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg Config
	if err := cfg.LoadConfig(configPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Loader.Attribute != "data-partial" {
		t.Errorf("attribute = %q, want YAML value", cfg.Loader.Attribute)
	}

	if !cfg.Loader.Sanitize {
		t.Error("sanitize should be enabled by YAML")
	}

	if cfg.Cache.Size != 64 {
		t.Errorf("cache size = %d, want 64", cfg.Cache.Size)
	}

	if got := cfg.Widgets.Carousel.PerView["0"]; got != 2 {
		t.Errorf("perView[0] = %d, want 2", got)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}

	// Untouched sections keep their defaults.
	if cfg.Loader.Timeout != 10*time.Second {
		t.Errorf("timeout = %s, want default", cfg.Loader.Timeout)
	}
}

// TestEnvBeatsYAML checks layer precedence: environment variables override
// values from the YAML file.
func TestEnvBeatsYAML(t *testing.T) {
	t.Setenv("HTMLWEAVE_ATTRIBUTE", "data-env-wins")

	configPath := filepath.Join(t.TempDir(), "config.yml")

	if err := os.WriteFile(configPath, []byte("loader:\n  attribute: data-yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg Config
	if err := cfg.LoadConfig(configPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Loader.Attribute != "data-env-wins" {
		t.Errorf("attribute = %q, environment must override YAML", cfg.Loader.Attribute)
	}
}

// TestLoadConfigMissingYAMLFile verifies a nonexistent config path is not
// an error; defaults apply.
func TestLoadConfigMissingYAMLFile(t *testing.T) {
	t.Parallel()

	var cfg Config
	if err := cfg.LoadConfig(filepath.Join(t.TempDir(), "nope.yml")); err != nil {
		t.Fatal(err)
	}

	if cfg.Loader.Attribute != "data-include" {
		t.Errorf("attribute = %q, want default", cfg.Loader.Attribute)
	}
}

func TestLoadConfigBadEnvValue(t *testing.T) {
	t.Setenv("HTMLWEAVE_TIMEOUT", "not-a-duration")

	var cfg Config
	if err := cfg.LoadConfig(""); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "invalid attribute name",
			mutate:  func(c *Config) { c.Loader.Attribute = "1bad attr" },
			wantErr: errInvalidAttribute,
		},
		{
			name: "attribute collision",
			mutate: func(c *Config) {
				c.Loader.Attribute = "data-x"
				c.Loader.LoadedAttribute = "data-x"
			},
			wantErr: errAttributeCollision,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Loader.Timeout = 0 },
			wantErr: errNonPositiveTimeout,
		},
		{
			name:    "negative concurrency cap",
			mutate:  func(c *Config) { c.Loader.MaxConcurrent = -1 },
			wantErr: errNegativeMaxConcurrent,
		},
		{
			name: "zero cache size with cache enabled",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Size = 0
			},
			wantErr: errNonPositiveCacheSize,
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.Request.RatePerSecond = -2 },
			wantErr: errNegativeRate,
		},
		{
			name: "throttling without burst",
			mutate: func(c *Config) {
				c.Request.RatePerSecond = 5
				c.Request.RateBurst = 0
			},
			wantErr: errNonPositiveRateBurst,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: errInvalidLogLevel,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "logfmt" },
			wantErr: errInvalidLogFormat,
		},
		{
			name: "fragment saving without a location",
			mutate: func(c *Config) {
				c.Development.SaveFragments = true
				c.Development.FragmentSaveLocation = ""
			},
			wantErr: errSaveLocationUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(&cfg)

			if err := cfg.validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCarouselValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*CarouselConfig)
		wantErr error
	}{
		{
			name:    "non-numeric breakpoint",
			mutate:  func(c *CarouselConfig) { c.PerView = map[string]int{"sm": 2} },
			wantErr: errInvalidBreakpoint,
		},
		{
			name:    "negative breakpoint",
			mutate:  func(c *CarouselConfig) { c.PerView = map[string]int{"-768": 2} },
			wantErr: errInvalidBreakpoint,
		},
		{
			name:    "zero slides",
			mutate:  func(c *CarouselConfig) { c.PerView = map[string]int{"768": 0} },
			wantErr: errNonPositiveSlidesCount,
		},
		{
			name:    "negative autoplay",
			mutate:  func(c *CarouselConfig) { c.AutoplayInterval = -time.Second },
			wantErr: errNegativeAutoplay,
		},
		{
			name:    "empty selector",
			mutate:  func(c *CarouselConfig) { c.NavPrevSelector = "" },
			wantErr: errEmptyCarouselSelector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			carousel := Default().Widgets.Carousel
			tt.mutate(&carousel)

			if err := carousel.validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
