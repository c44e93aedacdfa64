// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"slices"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rebuildScripts replaces every script element under sel with a freshly
// created node carrying the same attributes and text. Script nodes that
// arrive through content assignment are treated as inert by DOM consumers;
// rebuilding each as a new node restores execution when the composed
// document is interpreted. Node positions are preserved.
func rebuildScripts(sel *goquery.Selection) int {
	rebuilt := 0

	sel.Find("script").Each(func(_ int, script *goquery.Selection) {
		for _, old := range script.Nodes {
			parent := old.Parent
			if parent == nil {
				continue
			}

			fresh := &html.Node{
				Type:     html.ElementNode,
				DataAtom: atom.Script,
				Data:     "script",
				Attr:     slices.Clone(old.Attr),
			}

			for child := old.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					fresh.AppendChild(&html.Node{Type: html.TextNode, Data: child.Data})
				}
			}

			parent.InsertBefore(fresh, old)
			parent.RemoveChild(old)

			rebuilt++
		}
	})

	return rebuilt
}
