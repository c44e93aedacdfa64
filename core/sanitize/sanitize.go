// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package sanitize applies an HTML sanitization policy to fragment markup
// fetched from origins the page author does not fully control.
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

// newPolicy builds the fragment policy: the UGC baseline plus the styling
// and data attributes the widget routines rely on. Scripts are stripped,
// which is the point of enabling sanitization for untrusted origins.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowAttrs("class", "id", "role").Globally()
	p.AllowAttrs("aria-hidden", "aria-label", "aria-expanded", "aria-controls").Globally()
	p.AllowDataAttributes()
	p.AllowElements("section", "article", "aside", "nav", "header", "footer", "figure", "figcaption", "button")
	p.AllowAttrs("style").Matching(regexp.MustCompile(`^[a-zA-Z0-9:;,.()#%\s-]*$`)).Globally()

	return p
}

// Fragment sanitizes fragment markup, returning only the allowed subset.
func Fragment(markup string) string {
	return policy.Sanitize(markup)
}
