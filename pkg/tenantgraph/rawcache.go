// Copyright 2025 Microsoft Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tenantgraph

import (
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
)

// CachedResponse is the value RawResponseCache stores for a URI: the bytes
// the transport returned and the status code they came with.
type CachedResponse struct {
	StatusCode int
	Body       []byte
}

// defaultRawCacheMaxEntries bounds RawResponseCache's memory footprint on a
// long discovery run over a large tenant; it is not part of the spec's
// enumerated configuration surface because it is an operational safety
// valve, not a correctness knob. lru.Cache itself treats 0 as unbounded, but
// NewRawResponseCache never passes 0: a non-positive bound becomes this
// default.
const defaultRawCacheMaxEntries = 100_000

// RawResponseCache is the deduplication layer closest to the network: a
// concurrent mapping from normalized request URI to the response it
// produced. lru.Cache itself is not concurrency-safe, so every access here
// is guarded by mu.
type RawResponseCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// NewRawResponseCache returns an empty RawResponseCache bounded to
// maxEntries; a non-positive maxEntries falls back to
// defaultRawCacheMaxEntries.
func NewRawResponseCache(maxEntries int) *RawResponseCache {
	if maxEntries <= 0 {
		maxEntries = defaultRawCacheMaxEntries
	}
	return &RawResponseCache{cache: lru.New(maxEntries)}
}

func normalizeURI(uri string) string {
	return strings.ToLower(uri)
}

// Get returns the cached response for uri, if present.
func (c *RawResponseCache) Get(uri string) (CachedResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(normalizeURI(uri))
	if !ok {
		return CachedResponse{}, false
	}
	return v.(CachedResponse), true
}

// Set installs (or overwrites) the cached response for uri. RequestRouter
// calls this after every transport call that returned 200, under either
// cache mode, so that later UseCache reads benefit (§4.2).
func (c *RawResponseCache) Set(uri string, resp CachedResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(normalizeURI(uri), resp)
}

// Reset clears the cache for a fresh discovery generation.
func (c *RawResponseCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Clear()
}

// Len returns the number of cached responses. Used by tests asserting
// cache cardinality (testable property 4).
func (c *RawResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}
