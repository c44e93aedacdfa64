// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/htmlweave/htmlweave/config"
)

func newTestClient(timeout time.Duration) *Client {
	cfg := config.Default()
	cfg.Loader.Timeout = timeout

	return New(cfg)
}

func TestGetText(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		var gotRequestedWith string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRequestedWith = r.Header.Get("X-Requested-With")

			w.Write([]byte("<section>hello</section>"))
		}))
		defer srv.Close()

		client := newTestClient(time.Second)

		text, err := client.GetText(context.Background(), srv.URL+"/section.html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if text != "<section>hello</section>" {
			t.Errorf("unexpected body: %q", text)
		}

		if gotRequestedWith != RequestedWithValue {
			t.Errorf("expected X-Requested-With %q, got %q", RequestedWithValue, gotRequestedWith)
		}
	})

	t.Run("ErrorStatus", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not here", http.StatusNotFound)
		}))
		defer srv.Close()

		client := newTestClient(time.Second)

		_, err := client.GetText(context.Background(), srv.URL+"/missing.html")
		if err == nil {
			t.Fatal("expected error for 404 response")
		}

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %T: %v", err, err)
		}

		if fetchErr.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", fetchErr.StatusCode)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.Write([]byte("<p>too late</p>"))
		}))
		defer srv.Close()

		client := newTestClient(50 * time.Millisecond)

		start := time.Now()

		_, err := client.GetText(context.Background(), srv.URL+"/slow.html")
		if err == nil {
			t.Fatal("expected timeout error")
		}

		if !errors.Is(err, ErrTimedOut) {
			t.Errorf("expected ErrTimedOut, got: %v", err)
		}

		if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
			t.Errorf("timeout did not abort the request promptly, took %s", elapsed)
		}
	})

	t.Run("NetworkFailure", func(t *testing.T) {
		t.Parallel()

		// A closed server produces a connection error.
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		srv.Close()

		client := newTestClient(time.Second)

		_, err := client.GetText(context.Background(), srv.URL+"/gone.html")
		if err == nil {
			t.Fatal("expected network error")
		}

		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			t.Errorf("network failure must not be a *FetchError: %v", err)
		}
	})
}

func TestGetTextRateLimited(t *testing.T) {
	t.Parallel()

	t.Run("SpacesRequests", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<p>ok</p>"))
		}))
		defer srv.Close()

		cfg := config.Default()
		cfg.Request.RatePerSecond = 10
		cfg.Request.RateBurst = 1

		client := New(cfg)

		start := time.Now()

		for range 3 {
			if _, err := client.GetText(context.Background(), srv.URL+"/frag.html"); err != nil {
				t.Fatal(err)
			}
		}

		// Burst 1 at 10 per second forces at least 100ms between each
		// of the three requests.
		if elapsed := time.Since(start); elapsed < 180*time.Millisecond {
			t.Errorf("requests were not throttled, 3 fetches took %s", elapsed)
		}
	})

	t.Run("AbortedWait", func(t *testing.T) {
		t.Parallel()

		cfg := config.Default()
		cfg.Request.RatePerSecond = 1
		cfg.Request.RateBurst = 1

		client := New(cfg)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.GetText(ctx, "http://origin.test/frag.html")
		if err == nil {
			t.Fatal("expected an error from the aborted limiter wait")
		}

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled in the chain, got: %v", err)
		}

		if !strings.Contains(err.Error(), "rate limiter wait aborted") {
			t.Errorf("error must name the limiter wait: %v", err)
		}
	})
}

// TestFetchErrorFormat pins the status code rendering so inline error blocks
// and logs stay readable.
func TestFetchErrorFormat(t *testing.T) {
	t.Parallel()

	err := &FetchError{
		StatusCode: http.StatusBadGateway,
		URL:        "https://origin.test/frag.html",
		Err:        errErrorStatus,
	}

	want := "fragment fetch returned error status: Bad Gateway (status code: 502)"
	if err.Error() != want {
		t.Errorf("unexpected message:\n got: %s\nwant: %s", err.Error(), want)
	}

	if !errors.Is(err, errErrorStatus) {
		t.Error("expected errors.Is to match the underlying cause")
	}
}
