// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import "github.com/PuerkitoBio/goquery"

// SectionLoaded is emitted for every placeholder that resolves successfully.
type SectionLoaded struct {
	Element *goquery.Selection
	Path    string
	Content string
}

// SectionError is emitted for every placeholder whose load fails.
type SectionError struct {
	Element *goquery.Selection
	Path    string
	Err     error
}

// AllSectionsLoaded is emitted once per batch, after every placeholder has
// settled and before widget preparation runs.
type AllSectionsLoaded struct {
	Total  int
	Loaded int
}

// Events holds the notification handlers a consumer may register. Handlers
// are invoked synchronously on the composing goroutine; nil handlers are
// skipped.
type Events struct {
	SectionLoaded     func(SectionLoaded)
	SectionError      func(SectionError)
	AllSectionsLoaded func(AllSectionsLoaded)
}

func (e Events) emitLoaded(ev SectionLoaded) {
	if e.SectionLoaded != nil {
		e.SectionLoaded(ev)
	}
}

func (e Events) emitError(ev SectionError) {
	if e.SectionError != nil {
		e.SectionError(ev)
	}
}

func (e Events) emitAll(ev AllSectionsLoaded) {
	if e.AllSectionsLoaded != nil {
		e.AllSectionsLoaded(ev)
	}
}
