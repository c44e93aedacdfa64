// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widgets

import (
	"github.com/PuerkitoBio/goquery"

	"codeberg.org/htmlweave/htmlweave/config"
)

// setupSidebar prepares slide-in side panels and their toggles.
//
// Markup convention: each panel carries data-sidebar="<name>"; each toggle
// carries data-sidebar-toggle="<name>" referencing the panel it controls.
func setupSidebar(doc *goquery.Document, _ config.WidgetsConfig) error {
	panels := doc.Find("[data-sidebar]")
	if panels.Length() == 0 {
		return nil
	}

	panels.Each(func(_ int, panel *goquery.Selection) {
		ensureID(panel, "sidebar")

		panel.SetAttr("data-wv-state", "closed")
		panel.SetAttr("aria-hidden", "true")
	})

	doc.Find("[data-sidebar-toggle]").Each(func(_ int, toggle *goquery.Selection) {
		name := toggle.AttrOr("data-sidebar-toggle", "")
		if name == "" {
			return
		}

		panel := doc.Find(`[data-sidebar="` + name + `"]`).First()
		if panel.Length() == 0 {
			return
		}

		toggle.SetAttr("aria-controls", panel.AttrOr("id", ""))
		toggle.SetAttr("aria-expanded", "false")
	})

	return nil
}
