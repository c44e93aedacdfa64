// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Lifecycle classes applied to placeholders.
const (
	// LoadingClass marks a placeholder whose fetch is in flight.
	LoadingClass = "wv-loading"

	// ErrorClass marks a placeholder that settled in the error state.
	ErrorClass = "wv-error"
)

const indicatorMarkup = `<span class="wv-indicator" data-wv-indicator aria-hidden="true"></span>`

// markLoading flags a placeholder as in flight, inserting a transient
// indicator when the element is empty.
func markLoading(sel *goquery.Selection) {
	sel.AddClass(LoadingClass)

	if sel.Children().Length() == 0 && strings.TrimSpace(sel.Text()) == "" {
		sel.SetHtml(indicatorMarkup)
	}
}

// insertSection settles a placeholder into the loaded state: the fetched
// markup replaces the element's content (dropping any loading indicator),
// embedded scripts are rebuilt as fresh nodes, the reference attribute is
// removed so the element is never reprocessed, and the resolved path is
// recorded for explicit reloads.
func (l *Loader) insertSection(ph placeholder, content string) {
	ph.sel.RemoveClass(LoadingClass)
	ph.sel.RemoveClass(ErrorClass)

	ph.sel.SetHtml(content)

	rebuildScripts(ph.sel)

	ph.sel.RemoveAttr(l.cfg.Loader.Attribute)
	ph.sel.SetAttr(l.cfg.Loader.LoadedAttribute, ph.path)

	log.Debug().
		Str("path", ph.path).
		Msg("Section loaded")

	if l.onSuccess != nil {
		l.onSuccess(ph.path)
	}

	l.events.emitLoaded(SectionLoaded{Element: ph.sel, Path: ph.path, Content: content})
}

// failSection settles a placeholder into the error state: the loading
// indicator is dropped, the element gains the error class, and its content
// becomes a minimal human-readable block naming the failed path.
func (l *Loader) failSection(ph placeholder, err error) SectionError {
	ph.sel.RemoveClass(LoadingClass)
	ph.sel.AddClass(ErrorClass)

	ph.sel.SetHtml(fmt.Sprintf(
		`<div class="wv-error-block" role="alert">Failed to load section %s</div>`,
		html.EscapeString(ph.path),
	))

	log.Warn().
		Err(err).
		Str("path", ph.path).
		Msg("Section failed to load")

	if l.onError != nil {
		l.onError(ph.path, err)
	}

	ev := SectionError{Element: ph.sel, Path: ph.path, Err: err}
	l.events.emitError(ev)

	return ev
}
