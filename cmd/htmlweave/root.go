// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/htmlweave/htmlweave/config"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "htmlweave [page]",
		Short: "Compose an HTML page from fragment placeholders",
		Long: `Htmlweave reads an HTML page, resolves every fragment placeholder in it,
and writes the composed document.

The page argument is an http(s) URL, a local file path, or "-" for stdin.
Fragment references are resolved against the page URL; for file and stdin
input an explicit --base URL is required.

Examples:
  # Compose a page fetched from an origin
  htmlweave https://example.org/index.html

  # Compose a local template against a fragment origin
  htmlweave --base https://example.org/ --out dist/index.html index.html

  # Use a configuration file
  htmlweave -c htmlweave.yml https://example.org/index.html`,
		Args:          cobra.ExactArgs(1),
		RunE:          runWeave,
		Version:       config.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("config", "c", "", "Configuration file path")
	cmd.Flags().StringP("base", "b", "", "Base URL for resolving fragment references")
	cmd.Flags().StringP("out", "o", "", "Write the composed document to this file instead of stdout")

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
