// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widgets

import (
	"github.com/PuerkitoBio/goquery"

	"codeberg.org/htmlweave/htmlweave/config"
)

// setupAccordion prepares collapsible accordion sections.
//
// Markup convention: a container carrying data-accordion holds items
// carrying data-accordion-item, each with a data-accordion-header and a
// data-accordion-panel child. All panels start collapsed.
func setupAccordion(doc *goquery.Document, _ config.WidgetsConfig) error {
	sections := doc.Find("[data-accordion]")
	if sections.Length() == 0 {
		return nil
	}

	sections.Each(func(_ int, section *goquery.Selection) {
		section.Find("[data-accordion-item]").Each(func(_ int, item *goquery.Selection) {
			header := item.Find("[data-accordion-header]").First()
			panel := item.Find("[data-accordion-panel]").First()

			if header.Length() == 0 || panel.Length() == 0 {
				return
			}

			headerID := ensureID(header, "accordion-header")
			panelID := ensureID(panel, "accordion-panel")

			header.SetAttr("aria-expanded", "false")
			header.SetAttr("aria-controls", panelID)

			panel.SetAttr("aria-labelledby", headerID)
			panel.SetAttr("hidden", "")
		})
	})

	return nil
}
