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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawResponseCacheGetSet(t *testing.T) {
	cache := NewRawResponseCache(0)

	_, ok := cache.Get("/subscriptions/x")
	assert.False(t, ok)

	cache.Set("/subscriptions/X", CachedResponse{StatusCode: 200, Body: []byte("body")})

	got, ok := cache.Get("/subscriptions/x")
	require.True(t, ok, "lookup should be case-insensitive")
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, "body", string(got.Body))
}

func TestRawResponseCacheLenAndReset(t *testing.T) {
	cache := NewRawResponseCache(0)
	cache.Set("/a", CachedResponse{StatusCode: 200})
	cache.Set("/b", CachedResponse{StatusCode: 200})
	assert.Equal(t, 2, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("/a")
	assert.False(t, ok)
}

func TestRawResponseCacheDefaultBound(t *testing.T) {
	cache := NewRawResponseCache(-1)
	require.NotNil(t, cache.cache)
}
