// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package widgets

import (
	"github.com/PuerkitoBio/goquery"

	"codeberg.org/htmlweave/htmlweave/config"
	"codeberg.org/htmlweave/htmlweave/core/idgen"
)

// setupNavigation wires the primary navigation toggle to its menu.
//
// Markup convention: a toggle element carrying data-nav-toggle and a menu
// element carrying data-nav-menu.
func setupNavigation(doc *goquery.Document, _ config.WidgetsConfig) error {
	toggle := doc.Find("[data-nav-toggle]").First()
	menu := doc.Find("[data-nav-menu]").First()

	if toggle.Length() == 0 || menu.Length() == 0 {
		return nil
	}

	menuID := ensureID(menu, "nav-menu")

	toggle.SetAttr("aria-controls", menuID)
	toggle.SetAttr("aria-expanded", "false")
	menu.SetAttr("data-wv-state", "closed")

	return nil
}

// ensureID returns the element's id, generating and assigning one when missing.
func ensureID(sel *goquery.Selection, prefix string) string {
	if id, ok := sel.Attr("id"); ok && id != "" {
		return id
	}

	id := prefix + "-" + idgen.Make()
	sel.SetAttr("id", id)

	return id
}
