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
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// StateCache is the deduplication layer closest to callers: a thread-safe
// mapping from canonical resource identifier to its fully-built StateNode.
// It is backed by orcaman/concurrent-map, whose sharded Upsert gives the
// atomic "tryInsert"/merge primitives the design notes require (§9) without
// the engine ever taking a read-then-write lock of its own.
type StateCache struct {
	nodes cmap.ConcurrentMap[string, *StateNode]
}

// NewStateCache returns an empty StateCache.
func NewStateCache() *StateCache {
	return &StateCache{nodes: cmap.New[*StateNode]()}
}

// Get returns the cached node for id, if present.
func (c *StateCache) Get(id graphid.ID) (*StateNode, bool) {
	return c.nodes.Get(string(id.Canonical()))
}

// TryInsert installs node if id is absent, or returns the node that won the
// race. This is the "final tryInsert on StateCache" step 8 of NodeBuilder's
// algorithm describes: exactly one build wins per id, the loser discards its
// work and returns the winner.
func (c *StateCache) TryInsert(id graphid.ID, node *StateNode) (winner *StateNode, installed bool) {
	key := string(id.Canonical())

	c.nodes.Upsert(key, node, func(exists bool, existing, candidate *StateNode) *StateNode {
		if exists {
			winner = existing
			installed = false
			return existing
		}
		winner = candidate
		installed = true
		return candidate
	})

	return winner, installed
}

// Upgrade merges mode's aspects into whatever node is currently cached for
// id, using StateNode.withAspects so aspects are only ever added (the CRDT-
// style monotonic extension design note). If id is not present, nothing is
// installed and nil is returned. The merge runs under the shard's own lock via
// Upsert, so concurrent upgraders converge without a separate compare-and-swap
// loop.
func (c *StateCache) Upgrade(id graphid.ID, mode DiscoveryMode, iam IAM, policy Policy) *StateNode {
	key := string(id.Canonical())
	var result *StateNode

	if !c.nodes.Has(key) {
		return nil
	}

	c.nodes.Upsert(key, nil, func(exists bool, existing, _ *StateNode) *StateNode {
		if !exists || existing == nil {
			result = nil
			return existing
		}
		result = existing.withAspects(mode, iam, policy)
		return result
	})

	return result
}

// Show returns a snapshot slice of every cached node — the cache
// introspection accessor §12 adds to make cache-cardinality assertions
// (testable property 4) possible from outside the package.
func (c *StateCache) Show() []*StateNode {
	items := c.nodes.Items()
	out := make([]*StateNode, 0, len(items))
	for _, n := range items {
		out = append(out, n)
	}
	return out
}

// Len reports the number of cached nodes.
func (c *StateCache) Len() int {
	return c.nodes.Count()
}

// Reset clears the cache for a fresh discovery generation.
func (c *StateCache) Reset() {
	c.nodes.Clear()
}
