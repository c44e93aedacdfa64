// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package config holds the application configuration.

Configuration is assembled from four layers, each overriding the last:
built-in defaults, a YAML file, a .env file, and environment variables
(HTMLWEAVE_* with `env` struct tags).
*/
package config

import (
	"fmt"
	"time"
)

// Global exposes the composer configuration.
var Global Config

// Config holds the full application configuration.
type Config struct {
	Build buildInfo `yaml:"-"`

	Loader struct {
		// Attribute is the reference attribute that marks an element
		// as a fragment placeholder.
		Attribute string `env:"HTMLWEAVE_ATTRIBUTE,overwrite" yaml:"attribute"`

		// LoadedAttribute records the resolved fragment path on an
		// element after a successful load, so ReloadSection can find
		// it again once Attribute has been removed.
		LoadedAttribute string `env:"HTMLWEAVE_LOADED_ATTRIBUTE,overwrite" yaml:"loadedAttribute"`

		// ShowIndicator inserts a transient loading indicator into
		// empty placeholders while their fetch is in flight.
		ShowIndicator bool `env:"HTMLWEAVE_SHOW_INDICATOR,overwrite" yaml:"showIndicator"`

		// Timeout bounds each individual fragment fetch.
		Timeout time.Duration `env:"HTMLWEAVE_TIMEOUT,overwrite" yaml:"timeout"`

		// MaxConcurrent caps the number of in-flight fetches.
		// Zero means no cap: every placeholder is fetched at once.
		MaxConcurrent int `env:"HTMLWEAVE_MAX_CONCURRENT,overwrite" yaml:"maxConcurrent"`

		// Sanitize runs fetched fragment markup through the
		// sanitization policy before insertion.
		Sanitize bool `env:"HTMLWEAVE_SANITIZE,overwrite" yaml:"sanitize"`
	} `yaml:"loader"`

	Cache struct {
		Enabled     bool `env:"HTMLWEAVE_CACHE,overwrite" yaml:"enabled"`
		Size        int  `env:"HTMLWEAVE_CACHE_SIZE,overwrite" yaml:"cacheSize"`
		Compression bool `env:"HTMLWEAVE_CACHE_COMPRESSION,overwrite" yaml:"compression"`
	} `yaml:"cache"`

	Request struct {
		UserAgent      string `env:"HTMLWEAVE_USER_AGENT,overwrite" yaml:"userAgent"`
		AcceptLanguage string `env:"HTMLWEAVE_ACCEPTLANGUAGE,overwrite" yaml:"acceptLanguage"`

		// RatePerSecond throttles fragment fetches against the
		// origin. Zero disables throttling.
		RatePerSecond int `env:"HTMLWEAVE_RATE_PER_SECOND,overwrite" yaml:"ratePerSecond"`
		RateBurst     int `env:"HTMLWEAVE_RATE_BURST,overwrite" yaml:"rateBurst"`
	} `yaml:"request"`

	Widgets WidgetsConfig `yaml:"widgets"`

	Log struct {
		Level   string   `env:"HTMLWEAVE_LOG_LEVEL,overwrite" yaml:"logLevel"`
		Outputs []string `env:"HTMLWEAVE_LOG_OUTPUTS,overwrite" yaml:"logOutputs"`
		Format  string   `env:"HTMLWEAVE_LOG_FORMAT,overwrite" yaml:"logFormat"`
	} `yaml:"log"`

	Development struct {
		// SaveFragments writes every fetched fragment body to
		// FragmentSaveLocation for debugging.
		SaveFragments        bool   `env:"HTMLWEAVE_SAVE_FRAGMENTS,overwrite" yaml:"saveFragments"`
		FragmentSaveLocation string `env:"HTMLWEAVE_FRAGMENT_SAVE_LOCATION,overwrite" yaml:"fragmentSaveLocation"`
	} `yaml:"development"`
}

// WidgetsConfig controls the post-composition widget routines.
type WidgetsConfig struct {
	Enabled  bool           `env:"HTMLWEAVE_WIDGETS,overwrite" yaml:"enabled"`
	Carousel CarouselConfig `yaml:"carousel"`
}

// CarouselConfig holds the global carousel settings. Individual carousel
// containers may override any of these through a JSON value in their
// data-carousel attribute.
type CarouselConfig struct {
	// PerView maps a minimum viewport width in pixels to the number
	// of slides visible at that breakpoint.
	PerView map[string]int `yaml:"perView"`

	Loop             bool          `env:"HTMLWEAVE_CAROUSEL_LOOP,overwrite" yaml:"loop"`
	AutoplayInterval time.Duration `env:"HTMLWEAVE_CAROUSEL_AUTOPLAY,overwrite" yaml:"autoplayInterval"`

	NavPrevSelector    string `yaml:"navPrevSelector"`
	NavNextSelector    string `yaml:"navNextSelector"`
	PaginationSelector string `yaml:"paginationSelector"`
}

// Default returns a configuration populated with defaults only.
// Library consumers and tests use this instead of LoadConfig.
func Default() Config {
	var cfg Config

	cfg.SetDefaults()

	return cfg
}

// LoadConfig loads the configuration from all sources into cfg.
//
// configFilePath may be empty, in which case only defaults, the .env file,
// and environment variables apply.
func (cfg *Config) LoadConfig(configFilePath string) error {
	cfg.SetDefaults()

	cfg.Build.load()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	cfg.setupLogging()

	cfg.print()

	return nil
}
