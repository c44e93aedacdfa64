// Copyright 2024 - 2026, the htmlweave contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package fragcache provides a thread-safe, fixed-capacity least-recently-used
cache mapping fragment paths to fragment text. The cache evicts the least
recently used entry when it reaches capacity. When created with compression
enabled via [New], fragment text may be stored in compressed form and is
transparently decompressed by [Cache.Get] and [Cache.Peek].
*/
package fragcache

import (
	"container/list"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is a fixed-capacity, least-recently-used fragment cache that is safe
// for concurrent use. Instances must be constructed with [New]; the zero
// value is not ready for use.
type Cache struct {
	size            int                      // Maximum capacity of the cache (number of entries)
	evictList       *list.List               // A doubly-linked list to manage the eviction order
	items           map[string]*list.Element // Maps fragment paths to their corresponding linked-list elements
	lock            sync.RWMutex             // For thread-safe operations
	compressEnabled bool                     // Whether transparent compression is enabled
	zstdEnc         *zstd.Encoder            // Reusable zstd encoder for block operations
	zstdDec         *zstd.Decoder            // Reusable zstd decoder for block operations
}

// cacheEntry holds the path/text pair stored in each linked-list element.
type cacheEntry struct {
	path       string
	text       string
	compressed []byte // set instead of text when the entry is stored compressed
}

// New creates a new cache with the specified maximum size.
//
// If compress is true, fragment text is stored in a compressed form when
// this reduces space and is transparently decompressed on retrieval.
//
// It returns an error if size is not a positive integer.
func New(size int, compress bool) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache{
		size:            size,
		evictList:       list.New(),
		items:           make(map[string]*list.Element),
		compressEnabled: compress,
	}

	if compress {
		// Create reusable encoder/decoder for block (stateless) operations.
		// A nil writer/reader lets us use EncodeAll/DecodeAll without streams.
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.zstdEnc = enc
		c.zstdDec = dec
	}

	return c, nil
}

// Add adds or updates the fragment text for path.
//
// If the path exists, it becomes the most recently used.
// If the cache is at capacity, the least recently used entry is evicted.
// Add reports whether an eviction occurred.
func (c *Cache) Add(path, text string) bool {
	// Compression is the heavy part; do it before acquiring the lock.
	stored, compressed := c.prepareText(text)

	c.lock.Lock()
	defer c.lock.Unlock()

	// If the entry already exists, move it to the front as "most recently
	// used" and update its text.
	if ent, ok := c.items[path]; ok {
		c.evictList.MoveToFront(ent)

		if cacheEnt, ok := ent.Value.(*cacheEntry); ok {
			cacheEnt.text = stored
			cacheEnt.compressed = compressed
		}

		return false
	}

	c.items[path] = c.evictList.PushFront(&cacheEntry{
		path:       path,
		text:       stored,
		compressed: compressed,
	})

	// If we've exceeded our capacity, remove the oldest entry from the back of the list.
	evicted := c.evictList.Len() > c.size
	if evicted {
		c.removeOldest()
	}

	return evicted
}

// Get retrieves the fragment text for path and marks it as most recently used.
//
// The second result reports whether the path was found.
func (c *Cache) Get(path string) (string, bool) {
	// Lock for write since we will move the element to the front.
	c.lock.Lock()

	ent, ok := c.items[path]
	if !ok {
		c.lock.Unlock()

		return "", false
	}

	c.evictList.MoveToFront(ent)

	cacheEnt, ok := ent.Value.(*cacheEntry)
	if !ok {
		c.lock.Unlock()

		return "", false
	}

	// Copy fields needed for decompression and release the lock early.
	text := cacheEnt.text
	compressed := cacheEnt.compressed

	c.lock.Unlock()

	return c.decompressText(text, compressed)
}

// Peek retrieves the fragment text for path without modifying the LRU order.
//
// The second result reports whether the path was found.
func (c *Cache) Peek(path string) (string, bool) {
	c.lock.RLock()

	ent, ok := c.items[path]
	if !ok {
		c.lock.RUnlock()

		return "", false
	}

	cacheEnt, ok := ent.Value.(*cacheEntry)
	if !ok {
		c.lock.RUnlock()

		return "", false
	}

	text := cacheEnt.text
	compressed := cacheEnt.compressed

	c.lock.RUnlock()

	return c.decompressText(text, compressed)
}

// Remove deletes the entry associated with path from the cache.
//
// Remove reports whether the path was present and removed.
func (c *Cache) Remove(path string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if ent, ok := c.items[path]; ok {
		c.removeElement(ent)

		return true
	}

	return false
}

// Purge empties the cache. Already-composed documents are unaffected.
func (c *Cache) Purge() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.evictList.Init()
	c.items = make(map[string]*list.Element)
}

// Keys returns a slice of all paths in the cache, from the oldest to the newest.
func (c *Cache) Keys() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	keys := make([]string, len(c.items))
	index := 0

	// The back of the list is the oldest entry.
	for ent := c.evictList.Back(); ent != nil; ent = ent.Prev() {
		if cacheEnt, ok := ent.Value.(*cacheEntry); ok {
			keys[index] = cacheEnt.path
			index++
		}
	}

	return keys
}

// Len returns the current number of entries in the cache.
func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.evictList.Len()
}

// removeOldest removes the oldest entry from both the linked list and the map.
func (c *Cache) removeOldest() {
	ent := c.evictList.Back()
	if ent != nil {
		c.removeElement(ent)
	}
}

// removeElement removes a specific list element from the eviction list and
// deletes it from the map.
func (c *Cache) removeElement(e *list.Element) {
	c.evictList.Remove(e)

	if kv, ok := e.Value.(*cacheEntry); ok {
		delete(c.items, kv.path)
	}
}

// prepareText compresses the fragment text when compression is enabled and
// actually reduces size. It returns either the text or its compressed form.
//
// Safe to call without holding the lock; the zstd encoder supports
// concurrent EncodeAll calls.
func (c *Cache) prepareText(text string) (string, []byte) {
	if !c.compressEnabled || len(text) == 0 {
		return text, nil
	}

	orig := []byte(text)

	compressedBytes := c.zstdEnc.EncodeAll(orig, nil)
	if len(compressedBytes) < len(orig) {
		return "", compressedBytes
	}

	return text, nil
}

// decompressText returns the actual fragment text, performing decompression
// if needed. If decompression fails (which should be extremely rare), the
// entry is considered unavailable.
func (c *Cache) decompressText(text string, compressed []byte) (string, bool) {
	if compressed == nil {
		return text, true
	}

	if c.zstdDec == nil {
		return "", false
	}

	decoded, err := c.zstdDec.DecodeAll(compressed, nil)
	if err != nil {
		return "", false
	}

	return string(decoded), true
}
