// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"codeberg.org/htmlweave/htmlweave/config"
	"codeberg.org/htmlweave/htmlweave/core/audit"
	"codeberg.org/htmlweave/htmlweave/core/fetch"
	"codeberg.org/htmlweave/htmlweave/core/loader"
)

var (
	errBaseRequired   = errors.New("--base is required for file and stdin input")
	errNotAbsoluteURL = errors.New("base must be an absolute http(s) URL")
)

// runWeave executes the composition.
func runWeave(cmd *cobra.Command, args []string) error {
	audit.SetDefaultLogger()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	if err := config.Global.LoadConfig(configPath); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	baseFlag, err := cmd.Flags().GetString("base")
	if err != nil {
		return err
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := fetch.New(config.Global)

	page, base, err := readPage(ctx, client, args[0], baseFlag)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	report := loader.New(config.Global, loader.WithClient(client)).Init(ctx, doc, base)

	composed, err := doc.Html()
	if err != nil {
		return fmt.Errorf("failed to render composed document: %w", err)
	}

	if err := writeOutput(outPath, composed); err != nil {
		return err
	}

	// Failed sections carry inline error blocks in the output; the exit
	// status still reflects the incomplete composition.
	if failed := len(report.Failed); failed > 0 {
		return fmt.Errorf("%d of %d sections failed to load", failed, report.Total)
	}

	return nil
}

// readPage loads the page to compose and determines the base URL fragment
// references resolve against.
func readPage(ctx context.Context, client *fetch.Client, arg, baseFlag string) (string, *url.URL, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		base, err := parseBase(baseFlag, arg)
		if err != nil {
			return "", nil, err
		}

		page, err := client.GetText(ctx, arg)
		if err != nil {
			return "", nil, fmt.Errorf("failed to fetch page %s: %w", arg, err)
		}

		return page, base, nil
	}

	base, err := parseBase(baseFlag, "")
	if err != nil {
		return "", nil, err
	}

	if arg == "-" {
		page, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		return string(page), base, nil
	}

	page, err := os.ReadFile(arg) // #nosec G304 -- Reading the user-supplied input page
	if err != nil {
		return "", nil, fmt.Errorf("failed to read page %s: %w", arg, err)
	}

	return string(page), base, nil
}

// parseBase parses the --base flag, falling back to the page URL when the
// page itself was fetched from an origin.
func parseBase(baseFlag, pageURL string) (*url.URL, error) {
	raw := baseFlag
	if raw == "" {
		raw = pageURL
	}

	if raw == "" {
		return nil, errBaseRequired
	}

	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}

	if !base.IsAbs() || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", errNotAbsoluteURL, raw)
	}

	return base, nil
}

// writeOutput writes the composed document to the given path, or to stdout
// when the path is empty.
func writeOutput(outPath, composed string) error {
	if outPath == "" {
		if _, err := io.WriteString(os.Stdout, composed); err != nil {
			return fmt.Errorf("failed to write composed document: %w", err)
		}

		return nil
	}

	if dir := filepath.Dir(outPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(outPath, []byte(composed), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	return nil
}
