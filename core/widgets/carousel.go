// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widgets

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"codeberg.org/htmlweave/htmlweave/config"
)

const (
	carouselAttr        = "data-carousel"
	carouselOptionsAttr = "data-carousel-options"
	carouselSlideAttr   = "data-carousel-slide"
	slideCountAttr      = "data-slide-count"
)

// carouselOptions are the effective settings written onto each carousel
// container for the browser runtime to pick up.
type carouselOptions struct {
	// PerView maps a minimum viewport width in pixels to the number of
	// visible slides at that breakpoint.
	PerView    map[string]int `json:"perView"`
	Loop       bool           `json:"loop"`
	AutoplayMs int64          `json:"autoplayMs"`
	NavPrev    string         `json:"navPrev"`
	NavNext    string         `json:"navNext"`
	Pagination string         `json:"pagination"`
}

// setupCarousel prepares every carousel container: it strips wiring injected
// by a previous pass, regenerates pagination bullets (one per slide), wires
// the navigation controls, and writes the effective options onto the
// container. Global settings may be overridden per container through a JSON
// value in its data-carousel attribute.
func setupCarousel(doc *goquery.Document, cfg config.WidgetsConfig) error {
	containers := doc.Find("[" + carouselAttr + "]")
	if containers.Length() == 0 {
		return nil
	}

	var firstErr error

	containers.Each(func(_ int, container *goquery.Selection) {
		opts := optionsFromConfig(cfg.Carousel)
		applyOverrides(&opts, container.AttrOr(carouselAttr, ""))

		// Strip wiring injected by a previous pass so repeated setup
		// never duplicates generated markup.
		container.Find("[" + wiredAttr + "]").Remove()

		slides := container.Find("[" + carouselSlideAttr + "]")

		if pagination := container.Find(opts.Pagination).First(); pagination.Length() > 0 {
			var b strings.Builder

			for i := range slides.Length() {
				fmt.Fprintf(&b,
					`<button type="button" class="carousel-bullet" %s aria-label="Go to slide %d"></button>`,
					wiredAttr, i+1)
			}

			pagination.AppendHtml(b.String())
		}

		// Without looping the carousel starts pinned to the first
		// slide, so the previous control begins disabled.
		wireNavControl(container, opts.NavPrev, "Previous slide", !opts.Loop)
		wireNavControl(container, opts.NavNext, "Next slide", false)

		payload, err := json.Marshal(opts)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to serialize carousel options: %w", err)
			}

			return
		}

		container.SetAttr(carouselOptionsAttr, string(payload))
		container.SetAttr(slideCountAttr, strconv.Itoa(slides.Length()))
	})

	return firstErr
}

func wireNavControl(container *goquery.Selection, selector, label string, startDisabled bool) {
	control := container.Find(selector).First()
	if control.Length() == 0 {
		return
	}

	control.SetAttr("aria-label", label)

	if startDisabled {
		control.SetAttr("disabled", "")
	} else {
		control.RemoveAttr("disabled")
	}
}

func optionsFromConfig(c config.CarouselConfig) carouselOptions {
	return carouselOptions{
		PerView:    maps.Clone(c.PerView),
		Loop:       c.Loop,
		AutoplayMs: c.AutoplayInterval.Milliseconds(),
		NavPrev:    c.NavPrevSelector,
		NavNext:    c.NavNextSelector,
		Pagination: c.PaginationSelector,
	}
}

// applyOverrides merges a per-container JSON override into opts. A missing
// or non-JSON attribute value leaves the global settings untouched; unknown
// keys are ignored.
func applyOverrides(opts *carouselOptions, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}

	if !gjson.Valid(raw) {
		log.Debug().
			Str("value", raw).
			Msg("Ignoring non-JSON carousel attribute value")

		return
	}

	override := gjson.Parse(raw)

	if v := override.Get("loop"); v.Exists() {
		opts.Loop = v.Bool()
	}

	if v := override.Get("autoplayMs"); v.Exists() {
		opts.AutoplayMs = v.Int()
	}

	if v := override.Get("perView"); v.IsObject() {
		if opts.PerView == nil {
			opts.PerView = make(map[string]int)
		}

		for breakpoint, slides := range v.Map() {
			opts.PerView[breakpoint] = int(slides.Int())
		}
	}

	if v := override.Get("navPrev"); v.Exists() {
		opts.NavPrev = v.String()
	}

	if v := override.Get("navNext"); v.Exists() {
		opts.NavNext = v.String()
	}

	if v := override.Get("pagination"); v.Exists() {
		opts.Pagination = v.String()
	}
}
