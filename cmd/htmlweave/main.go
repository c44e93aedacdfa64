// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Htmlweave composes an HTML page from fragment placeholders: it fetches every
referenced fragment concurrently, splices the markup into the page, and
prepares the interactive widgets of the composed document.
*/
package main

func main() {
	Execute()
}
