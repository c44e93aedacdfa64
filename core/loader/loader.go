// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package loader implements the fragment composition pipeline: it discovers
placeholder elements in a parsed document, fetches the referenced fragment
documents concurrently, splices the fetched markup into the placeholders,
rebuilds embedded script elements, emits per-section and per-batch
notifications, and finally runs the widget registry over the composed
document.

Every placeholder reaches exactly one terminal state per batch: loaded or
errored. A failing placeholder never aborts the batch, and there is no
retry policy; failures are terminal until an explicit ReloadSection call.
*/
package loader

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/htmlweave/htmlweave/config"
	"codeberg.org/htmlweave/htmlweave/core/fetch"
	"codeberg.org/htmlweave/htmlweave/core/fragcache"
	"codeberg.org/htmlweave/htmlweave/core/sanitize"
	"codeberg.org/htmlweave/htmlweave/core/widgets"
)

// Loader composes documents out of fragments. Construct with New; the zero
// value is not ready for use.
type Loader struct {
	cfg      config.Config
	client   *fetch.Client
	cache    *fragcache.Cache
	registry *widgets.Registry
	events   Events

	onSuccess func(path string)
	onError   func(path string, err error)
}

// Option customizes a Loader beyond what configuration covers.
type Option func(*Loader)

// WithEvents registers notification handlers.
func WithEvents(ev Events) Option {
	return func(l *Loader) { l.events = ev }
}

// WithClient substitutes the fetch client.
func WithClient(c *fetch.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithRegistry substitutes the widget registry run after batch completion.
func WithRegistry(r *widgets.Registry) Option {
	return func(l *Loader) { l.registry = r }
}

// WithSuccessCallback registers a callback invoked per successfully loaded
// placeholder.
func WithSuccessCallback(fn func(path string)) Option {
	return func(l *Loader) { l.onSuccess = fn }
}

// WithErrorCallback registers a callback invoked per failed placeholder.
func WithErrorCallback(fn func(path string, err error)) Option {
	return func(l *Loader) { l.onError = fn }
}

// New builds a Loader from the given configuration.
func New(cfg config.Config, opts ...Option) *Loader {
	l := &Loader{
		cfg:      cfg,
		client:   fetch.New(cfg),
		registry: widgets.Default(),
	}

	if cfg.Cache.Enabled {
		cache, err := fragcache.New(cfg.Cache.Size, cfg.Cache.Compression)
		if err != nil {
			// Only reachable with an invalid size, which config
			// validation rejects; run uncached rather than fail.
			log.Warn().Err(err).Msg("Fragment cache unavailable, running uncached")
		} else {
			l.cache = cache
		}
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Report summarizes one initialization pass.
type Report struct {
	// Total is the number of placeholders with usable reference paths.
	Total int

	// Loaded is the number of placeholders that resolved successfully.
	Loaded int

	// Failed lists the placeholders that ended in the error state.
	Failed []SectionError
}

// placeholder is one load target discovered during a scan.
type placeholder struct {
	sel *goquery.Selection

	// path is the raw reference attribute value.
	path string

	// resolved is path resolved against the page base URL.
	resolved string
}

// Init scans doc for placeholder elements, loads every referenced fragment
// concurrently, and settles each placeholder into its terminal state. When
// all placeholders have settled it emits the batch notification and runs
// the widget registry. A document without placeholders is a no-op.
func (l *Loader) Init(ctx context.Context, doc *goquery.Document, base *url.URL) Report {
	placeholders := l.discover(doc, base)
	if len(placeholders) == 0 {
		log.Debug().Msg("No fragment placeholders found")

		return Report{}
	}

	if l.cfg.Loader.ShowIndicator {
		for _, ph := range placeholders {
			markLoading(ph.sel)
		}
	}

	type outcome struct {
		text string
		err  error
	}

	outcomes := make([]outcome, len(placeholders))

	// Fetch concurrently; mutate the document only after every fetch has
	// settled. Each goroutine writes to its own index, so no lock is
	// needed, and a failure never cancels the siblings.
	g, gctx := errgroup.WithContext(ctx)
	if l.cfg.Loader.MaxConcurrent > 0 {
		g.SetLimit(l.cfg.Loader.MaxConcurrent)
	}

	for i, ph := range placeholders {
		g.Go(func() error {
			text, err := l.resolve(gctx, ph.resolved)
			outcomes[i] = outcome{text: text, err: err}

			return nil
		})
	}

	// Workers never return errors; Wait is a pure barrier.
	_ = g.Wait()

	report := Report{Total: len(placeholders)}

	for i, ph := range placeholders {
		if err := outcomes[i].err; err != nil {
			report.Failed = append(report.Failed, l.failSection(ph, err))

			continue
		}

		l.insertSection(ph, outcomes[i].text)
		report.Loaded++
	}

	log.Info().
		Int("total", report.Total).
		Int("loaded", report.Loaded).
		Msg("All sections settled")

	l.events.emitAll(AllSectionsLoaded{Total: report.Total, Loaded: report.Loaded})

	if l.cfg.Widgets.Enabled {
		l.registry.RunAll(doc, l.cfg.Widgets)
	}

	return report
}

// ClearCache empties the fragment cache. Already-inserted content is not
// affected.
func (l *Loader) ClearCache() {
	if l.cache != nil {
		l.cache.Purge()
	}
}

// discover collects the load targets: every element carrying the reference
// attribute with a usable path. Elements with an empty or unparseable path
// are a configuration error, logged and skipped.
func (l *Loader) discover(doc *goquery.Document, base *url.URL) []placeholder {
	var placeholders []placeholder

	doc.Find("[" + l.cfg.Loader.Attribute + "]").Each(func(_ int, sel *goquery.Selection) {
		path := strings.TrimSpace(sel.AttrOr(l.cfg.Loader.Attribute, ""))
		if path == "" {
			log.Warn().Msg("Placeholder is missing its reference path, skipping")

			return
		}

		resolved, err := resolvePath(base, path)
		if err != nil {
			log.Warn().
				Err(err).
				Str("path", path).
				Msg("Placeholder reference path is not a valid URL, skipping")

			return
		}

		placeholders = append(placeholders, placeholder{sel: sel, path: path, resolved: resolved})
	})

	return placeholders
}

// resolve returns the fragment text for a resolved URL, from the cache when
// possible. Fetched text is sanitized (when configured) before it is cached
// so cache hits and misses see the same content.
func (l *Loader) resolve(ctx context.Context, resolved string) (string, error) {
	if l.cache != nil {
		if text, ok := l.cache.Get(resolved); ok {
			log.Debug().Str("url", resolved).Msg("Fragment cache hit")

			return text, nil
		}
	}

	text, err := l.client.GetText(ctx, resolved)
	if err != nil {
		return "", err
	}

	if l.cfg.Loader.Sanitize {
		text = sanitize.Fragment(text)
	}

	if l.cache != nil {
		l.cache.Add(resolved, text)
	}

	return text, nil
}

func resolvePath(base *url.URL, path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	if base == nil {
		return ref.String(), nil
	}

	return base.ResolveReference(ref).String(), nil
}
