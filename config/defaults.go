// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	// Default per-fetch timeout in milliseconds.
	defaultFetchTimeoutMs = 10_000
	// Default carousel autoplay interval in milliseconds.
	defaultCarouselAutoplayMs = 5000

	defaultCacheSize = 256
	defaultRateBurst = 4
)

// SetDefaults populates the configuration with default values.
func (cfg *Config) SetDefaults() {
	cfg.Loader.Attribute = "data-include"
	cfg.Loader.LoadedAttribute = "data-include-loaded"
	cfg.Loader.ShowIndicator = true
	cfg.Loader.Timeout = defaultFetchTimeoutMs * time.Millisecond
	cfg.Loader.MaxConcurrent = 0
	cfg.Loader.Sanitize = false

	cfg.Cache.Enabled = true
	cfg.Cache.Size = defaultCacheSize
	cfg.Cache.Compression = false

	cfg.Request.UserAgent = "htmlweave/" + BuildVersion
	cfg.Request.AcceptLanguage = "en-US,en;q=0.5"
	cfg.Request.RatePerSecond = 0
	cfg.Request.RateBurst = defaultRateBurst

	cfg.Widgets.Enabled = true
	cfg.Widgets.Carousel = CarouselConfig{
		PerView: map[string]int{
			"0":    1,
			"768":  2,
			"1200": 3,
		},
		Loop:               true,
		AutoplayInterval:   defaultCarouselAutoplayMs * time.Millisecond,
		NavPrevSelector:    ".carousel-prev",
		NavNextSelector:    ".carousel-next",
		PaginationSelector: ".carousel-pagination",
	}

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Development.SaveFragments = false
	cfg.Development.FragmentSaveLocation = "/tmp/htmlweave/fragments"
}
