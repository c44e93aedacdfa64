// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ReloadSection re-resolves the first element matching selector. The
// element's recorded path is evicted from the cache, so the fragment is
// always re-fetched, and the single-placeholder load repeats: the element
// settles into the loaded or errored state and the matching per-section
// notification fires. The batch notification does not fire and widget
// preparation does not rerun for a single reload.
//
// ReloadSection is a no-op when no element matches or the element carries
// no recorded path. The returned error is the load failure, if any; it has
// already been routed through the error handler.
func (l *Loader) ReloadSection(ctx context.Context, doc *goquery.Document, base *url.URL, selector string) error {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		log.Debug().
			Str("selector", selector).
			Msg("ReloadSection: no matching element")

		return nil
	}

	// A not-yet-loaded element still carries the reference attribute;
	// a loaded one carries the bookkeeping attribute instead.
	path := strings.TrimSpace(sel.AttrOr(l.cfg.Loader.Attribute, ""))
	if path == "" {
		path = strings.TrimSpace(sel.AttrOr(l.cfg.Loader.LoadedAttribute, ""))
	}

	if path == "" {
		log.Debug().
			Str("selector", selector).
			Msg("ReloadSection: element has no recorded path")

		return nil
	}

	resolved, err := resolvePath(base, path)
	if err != nil {
		log.Warn().
			Err(err).
			Str("path", path).
			Msg("ReloadSection: recorded path is not a valid URL")

		return nil
	}

	if l.cache != nil {
		l.cache.Remove(resolved)
	}

	ph := placeholder{sel: sel, path: path, resolved: resolved}

	if l.cfg.Loader.ShowIndicator {
		markLoading(sel)
	}

	text, err := l.resolve(ctx, resolved)
	if err != nil {
		l.failSection(ph, err)

		return err
	}

	l.insertSection(ph, text)

	return nil
}
