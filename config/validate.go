// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
)

// validation errors.
var (
	errInvalidAttribute        = errors.New("loader.attribute is not a valid attribute name")
	errInvalidLoadedAttribute  = errors.New("loader.loadedAttribute is not a valid attribute name")
	errAttributeCollision      = errors.New("loader.attribute and loader.loadedAttribute must differ")
	errNonPositiveTimeout      = errors.New("loader.timeout must be positive")
	errNegativeMaxConcurrent   = errors.New("loader.maxConcurrent must not be negative")
	errNonPositiveCacheSize    = errors.New("cache.cacheSize must be positive when cache is enabled")
	errNegativeRate            = errors.New("request.ratePerSecond must not be negative")
	errNonPositiveRateBurst    = errors.New("request.rateBurst must be positive when throttling is enabled")
	errInvalidLogLevel         = errors.New("invalid log.logLevel value")
	errInvalidLogFormat        = errors.New("invalid log.logFormat value")
	errInvalidBreakpoint       = errors.New("widgets.carousel.perView keys must be non-negative integers")
	errNonPositiveSlidesCount  = errors.New("widgets.carousel.perView values must be positive")
	errNegativeAutoplay        = errors.New("widgets.carousel.autoplayInterval must not be negative")
	errEmptyCarouselSelector   = errors.New("widgets.carousel selectors must not be empty")
	errSaveLocationUnspecified = errors.New("development.fragmentSaveLocation must be set when saveFragments is enabled")
)

var (
	attributeNameRegexp = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_:-]*$`)

	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
)

// validate checks the assembled configuration for consistency.
func (cfg *Config) validate() error {
	if !attributeNameRegexp.MatchString(cfg.Loader.Attribute) {
		return fmt.Errorf("%w: %q", errInvalidAttribute, cfg.Loader.Attribute)
	}

	if !attributeNameRegexp.MatchString(cfg.Loader.LoadedAttribute) {
		return fmt.Errorf("%w: %q", errInvalidLoadedAttribute, cfg.Loader.LoadedAttribute)
	}

	if cfg.Loader.Attribute == cfg.Loader.LoadedAttribute {
		return errAttributeCollision
	}

	if cfg.Loader.Timeout <= 0 {
		return errNonPositiveTimeout
	}

	if cfg.Loader.MaxConcurrent < 0 {
		return errNegativeMaxConcurrent
	}

	if cfg.Cache.Enabled && cfg.Cache.Size <= 0 {
		return errNonPositiveCacheSize
	}

	if cfg.Request.RatePerSecond < 0 {
		return errNegativeRate
	}

	if cfg.Request.RatePerSecond > 0 && cfg.Request.RateBurst <= 0 {
		return errNonPositiveRateBurst
	}

	if !slices.Contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.Log.Level)
	}

	if !slices.Contains(validLogFormats, cfg.Log.Format) {
		return fmt.Errorf("%w: %q", errInvalidLogFormat, cfg.Log.Format)
	}

	if err := cfg.Widgets.Carousel.validate(); err != nil {
		return err
	}

	if cfg.Development.SaveFragments && cfg.Development.FragmentSaveLocation == "" {
		return errSaveLocationUnspecified
	}

	return nil
}

func (c *CarouselConfig) validate() error {
	for breakpoint, slides := range c.PerView {
		width, err := strconv.Atoi(breakpoint)
		if err != nil || width < 0 {
			return fmt.Errorf("%w: %q", errInvalidBreakpoint, breakpoint)
		}

		if slides <= 0 {
			return fmt.Errorf("%w: %q -> %d", errNonPositiveSlidesCount, breakpoint, slides)
		}
	}

	if c.AutoplayInterval < 0 {
		return errNegativeAutoplay
	}

	if c.NavPrevSelector == "" || c.NavNextSelector == "" || c.PaginationSelector == "" {
		return errEmptyCarouselSelector
	}

	return nil
}
