// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package fetch performs the network side of fragment loading: HTTP GET
requests bounded by a per-request timeout, marked with a header that
signals a programmatic request, optionally throttled against the origin,
and recorded as audit spans.
*/
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/htmlweave/htmlweave/config"
	"codeberg.org/htmlweave/htmlweave/core/audit"
	"codeberg.org/htmlweave/htmlweave/core/idgen"
)

// RequestedWithValue is sent in the X-Requested-With header of every
// fragment fetch so origins can tell composer traffic from page traffic.
const RequestedWithValue = "htmlweave"

var (
	// ErrTimedOut marks a fetch that exceeded the configured timeout.
	ErrTimedOut = errors.New("fragment fetch timed out")

	errErrorStatus = errors.New("fragment fetch returned error status")
)

// FetchError represents a fragment fetch that reached the origin but came
// back with a non-success status.
type FetchError struct {
	// StatusCode is the HTTP status code from the response. Always
	// outside the 2xx range.
	StatusCode int

	// URL is the resolved fragment URL that failed.
	URL string

	// Err is the underlying error cause.
	Err error
}

// Error returns a formatted error message including the status code.
func (e *FetchError) Error() string {
	var b strings.Builder

	b.WriteString(e.Err.Error())

	if text := http.StatusText(e.StatusCode); text != "" {
		b.WriteString(": ")
		b.WriteString(text)
	}

	b.WriteString(fmt.Sprintf(" (status code: %d)", e.StatusCode))

	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches fragment documents.
type Client struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	userAgent      string
	acceptLanguage string
	timeout        time.Duration
}

// New builds a Client from the given configuration.
func New(cfg config.Config) *Client {
	var limiter *rate.Limiter
	if cfg.Request.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Request.RatePerSecond), cfg.Request.RateBurst)
	}

	return &Client{
		httpClient:     HTTPClient,
		limiter:        limiter,
		userAgent:      cfg.Request.UserAgent,
		acceptLanguage: cfg.Request.AcceptLanguage,
		timeout:        cfg.Loader.Timeout,
	}
}

// Timeout returns the configured per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// GetText fetches url and returns the response body as text.
//
// The request is bounded by the configured timeout. A non-2xx status is
// returned as a *FetchError; a request that exceeds the timeout is returned
// as an error matching ErrTimedOut.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait aborted: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("X-Requested-With", RequestedWithValue)

	body, statusCode, err := c.send(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %w", ErrTimedOut, c.timeout, err)
		}

		return "", err
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return "", &FetchError{
			StatusCode: statusCode,
			URL:        url,
			Err:        errErrorStatus,
		}
	}

	return string(body), nil
}

// send executes the HTTP request, reads the body, and records the fetch as
// an audit span.
func (c *Client) send(ctx context.Context, req *http.Request) (_ []byte, _ int, err error) {
	span := audit.Span{
		Destination: audit.ToOrigin,
		RequestID:   idgen.Make(),
		Method:      req.Method,
		URL:         req.URL.String(),
	}

	_ = span.Begin(ctx)

	defer func() {
		span.Error = err
		span.End()
		span.Log()
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Body = body

	return body, resp.StatusCode, nil
}
