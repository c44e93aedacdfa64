// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fragcache

import (
	"strconv"
	"strings"
	"sync"
	"testing"
)

// TestNew checks the creation of a new Cache with both valid and invalid sizes.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ValidSize_NoCompression", func(t *testing.T) {
		t.Parallel()

		cache, err := New(3, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cache == nil {
			t.Fatal("expected cache to be initialized")
		}

		// Immediately after creation, the cache should be empty.
		if cache.Len() != 0 {
			t.Errorf("expected cache length to be 0, got %d", cache.Len())
		}
	})

	t.Run("ValidSize_WithCompression", func(t *testing.T) {
		t.Parallel()

		cache, err := New(3, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cache == nil {
			t.Fatal("expected cache to be initialized")
		}
	})

	t.Run("InvalidSize", func(t *testing.T) {
		t.Parallel()

		if _, err := New(0, false); err == nil {
			t.Fatal("expected error for zero size")
		}

		if _, err := New(-1, false); err == nil {
			t.Fatal("expected error for negative size")
		}
	})
}

func TestAddGet(t *testing.T) {
	t.Parallel()

	cache, err := New(2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache.Add("header.html", "<header>site</header>")

	got, ok := cache.Get("header.html")
	if !ok {
		t.Fatal("expected header.html to be present")
	}

	if got != "<header>site</header>" {
		t.Errorf("unexpected text: %q", got)
	}

	if _, ok := cache.Get("footer.html"); ok {
		t.Error("expected footer.html to be absent")
	}
}

func TestAddUpdatesExisting(t *testing.T) {
	t.Parallel()

	cache, _ := New(2, false)

	cache.Add("a.html", "old")

	if evicted := cache.Add("a.html", "new"); evicted {
		t.Error("updating an existing entry must not evict")
	}

	got, _ := cache.Get("a.html")
	if got != "new" {
		t.Errorf("expected updated text, got %q", got)
	}

	if cache.Len() != 1 {
		t.Errorf("expected single entry, got %d", cache.Len())
	}
}

func TestEvictionOrder(t *testing.T) {
	t.Parallel()

	cache, _ := New(2, false)

	cache.Add("a.html", "a")
	cache.Add("b.html", "b")

	// Touch a.html so b.html becomes the oldest.
	cache.Get("a.html")

	if evicted := cache.Add("c.html", "c"); !evicted {
		t.Error("expected an eviction when exceeding capacity")
	}

	if _, ok := cache.Get("b.html"); ok {
		t.Error("expected b.html to have been evicted")
	}

	if _, ok := cache.Get("a.html"); !ok {
		t.Error("expected a.html to survive eviction")
	}
}

func TestPeekDoesNotPromote(t *testing.T) {
	t.Parallel()

	cache, _ := New(2, false)

	cache.Add("a.html", "a")
	cache.Add("b.html", "b")

	// Peek must not promote a.html, so it stays the oldest.
	if _, ok := cache.Peek("a.html"); !ok {
		t.Fatal("expected a.html present")
	}

	cache.Add("c.html", "c")

	if _, ok := cache.Get("a.html"); ok {
		t.Error("expected a.html to have been evicted despite Peek")
	}
}

func TestRemoveAndPurge(t *testing.T) {
	t.Parallel()

	cache, _ := New(4, false)

	cache.Add("a.html", "a")
	cache.Add("b.html", "b")

	if !cache.Remove("a.html") {
		t.Error("expected Remove to report the entry was present")
	}

	if cache.Remove("a.html") {
		t.Error("expected Remove to report the entry was absent")
	}

	cache.Purge()

	if cache.Len() != 0 {
		t.Errorf("expected empty cache after Purge, got %d entries", cache.Len())
	}

	if _, ok := cache.Get("b.html"); ok {
		t.Error("expected b.html gone after Purge")
	}
}

func TestKeysOldestFirst(t *testing.T) {
	t.Parallel()

	cache, _ := New(3, false)

	cache.Add("a.html", "a")
	cache.Add("b.html", "b")
	cache.Add("c.html", "c")
	cache.Get("a.html")

	keys := cache.Keys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}

	if keys[0] != "b.html" || keys[2] != "a.html" {
		t.Errorf("unexpected key order: %v", keys)
	}
}

// TestCompressionRoundTrip verifies that compressible fragment text survives
// a store/retrieve cycle with compression enabled.
func TestCompressionRoundTrip(t *testing.T) {
	t.Parallel()

	cache, err := New(2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Highly repetitive markup compresses well below its original size.
	text := strings.Repeat("<li class=\"gallery-item\">thumb</li>", 200)

	cache.Add("gallery.html", text)

	got, ok := cache.Get("gallery.html")
	if !ok {
		t.Fatal("expected gallery.html present")
	}

	if got != text {
		t.Error("decompressed text does not match original")
	}

	// Short text that does not benefit from compression is stored as-is.
	cache.Add("tiny.html", "<p>x</p>")

	got, ok = cache.Get("tiny.html")
	if !ok || got != "<p>x</p>" {
		t.Errorf("unexpected tiny fragment round trip: %q, %v", got, ok)
	}
}

// TestConcurrentAccess hammers the cache from multiple goroutines to catch
// data races under the race detector.
func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache, _ := New(32, false)

	var wg sync.WaitGroup

	for worker := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 200 {
				path := "frag" + strconv.Itoa((worker+i)%64) + ".html"

				cache.Add(path, strings.Repeat("x", i%32))
				cache.Get(path)

				if i%17 == 0 {
					cache.Remove(path)
				}
			}
		}()
	}

	wg.Wait()

	if cache.Len() > 32 {
		t.Errorf("cache exceeded capacity: %d", cache.Len())
	}
}
