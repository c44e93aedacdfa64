// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widgets

import (
	"github.com/PuerkitoBio/goquery"

	"codeberg.org/htmlweave/htmlweave/config"
)

// setupSearch wires the search toggle to the full-page search overlay.
//
// Markup convention: a toggle element carrying data-search-toggle and an
// overlay container carrying data-search-overlay.
func setupSearch(doc *goquery.Document, _ config.WidgetsConfig) error {
	toggle := doc.Find("[data-search-toggle]").First()
	overlay := doc.Find("[data-search-overlay]").First()

	if toggle.Length() == 0 || overlay.Length() == 0 {
		return nil
	}

	overlayID := ensureID(overlay, "search-overlay")

	overlay.SetAttr("role", "dialog")
	overlay.SetAttr("aria-modal", "true")
	overlay.SetAttr("hidden", "")

	toggle.SetAttr("aria-controls", overlayID)
	toggle.SetAttr("aria-expanded", "false")
	toggle.SetAttr("aria-haspopup", "dialog")

	return nil
}
