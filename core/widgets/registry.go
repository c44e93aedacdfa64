// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package widgets prepares page-level interactive widgets after a composed
document has all of its fragments in place.

Routines run in a fixed registration order. Every routine is a no-op when
its target markup is absent, and is idempotent: wiring injected by a
previous pass is stripped before fresh wiring is added, so running the
registry repeatedly never duplicates generated markup.
*/
package widgets

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"codeberg.org/htmlweave/htmlweave/config"
)

// wiredAttr marks elements injected by a widget routine so a later pass can
// strip them before re-injecting.
const wiredAttr = "data-wv-wired"

// RunFunc is a widget setup routine operating on the composed document.
type RunFunc func(doc *goquery.Document, cfg config.WidgetsConfig) error

type routine struct {
	name string
	run  RunFunc
}

// Registry holds named widget routines in invocation order.
type Registry struct {
	routines []routine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Default returns a registry with the built-in routines in their fixed
// order: navigation, search, sidebar, accordion, carousel.
func Default() *Registry {
	r := NewRegistry()

	r.Register("navigation", setupNavigation)
	r.Register("search", setupSearch)
	r.Register("sidebar", setupSidebar)
	r.Register("accordion", setupAccordion)
	r.Register("carousel", setupCarousel)

	return r
}

// Register appends a named routine to the registry.
func (r *Registry) Register(name string, fn RunFunc) {
	r.routines = append(r.routines, routine{name: name, run: fn})
}

// Names returns the routine names in invocation order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.routines))
	for i, rt := range r.routines {
		names[i] = rt.name
	}

	return names
}

// RunAll invokes every routine in order. A routine error is logged and does
// not stop the remaining routines; widget preparation is never fatal.
func (r *Registry) RunAll(doc *goquery.Document, cfg config.WidgetsConfig) {
	for _, rt := range r.routines {
		if err := rt.run(doc, cfg); err != nil {
			log.Warn().
				Err(err).
				Str("widget", rt.name).
				Msg("Widget setup failed")
		}
	}
}
