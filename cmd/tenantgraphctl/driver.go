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

package main

import (
	"context"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
	"github.com/Azure/azure-tenant-graph/pkg/tenantgraph"
)

// InclusionFlags decides which child resource types a traversal follows.
// The core engine has no notion of "interesting" children; that judgment
// belongs entirely to this driver (§4.7).
type InclusionFlags struct {
	ManagementGroups bool
	Subscriptions    bool
	ResourceGroups   bool
	Resources        bool
}

// Includes reports whether t should be followed during recursion.
// Any type that isn't one of the three well-known container types falls
// under Resources.
func (f InclusionFlags) Includes(t graphid.ResourceType) bool {
	switch t {
	case graphid.ResourceTypeManagementGroups:
		return f.ManagementGroups
	case graphid.ResourceTypeSubscriptions:
		return f.Subscriptions
	case graphid.ResourceTypeResourceGroups:
		return f.ResourceGroups
	default:
		return f.Resources
	}
}

// DiscoverOptions configures one Discover run.
type DiscoverOptions struct {
	Inclusion      InclusionFlags
	DiscoveryMode  tenantgraph.DiscoveryMode
	CacheMode      tenantgraph.CacheMode
	ThrottleLimit  int
	Recurse        bool
	ExcludePathIDs map[graphid.ID]struct{}
}

// Discover repeatedly fetches a growing frontier of identifiers starting
// from roots: each pass hands its frontier to fetcher, filters the
// resulting nodes' children by opts.Inclusion and opts.ExcludePathIDs, and
// feeds whatever survives into the next pass. The loop stops when a pass
// discovers no new identifiers or when opts.Recurse is false (a single
// pass over roots only).
func Discover(
	ctx context.Context, fetcher *tenantgraph.BulkFetcher, roots []graphid.ID, opts DiscoverOptions,
) ([]*tenantgraph.StateNode, []tenantgraph.Diagnostic) {

	seen := make(map[graphid.ID]struct{}, len(roots))
	var nodes []*tenantgraph.StateNode
	var diagnostics []tenantgraph.Diagnostic

	frontier := filterExcluded(markSeen(roots, seen), opts.ExcludePathIDs)

	for len(frontier) > 0 {
		result := fetcher.FromIDs(ctx, frontier, opts.ThrottleLimit, opts.CacheMode, opts.DiscoveryMode)
		diagnostics = append(diagnostics, result.Diagnostics...)
		nodes = append(nodes, result.Nodes...)

		if !opts.Recurse {
			break
		}

		var next []graphid.ID
		for _, node := range result.Nodes {
			next = append(next, childIDs(node, opts.Inclusion)...)
		}

		frontier = filterExcluded(markSeen(next, seen), opts.ExcludePathIDs)
	}

	return nodes, diagnostics
}

// childIDs returns the identifiers of node's children and linked resources
// that inclusion admits.
func childIDs(node *tenantgraph.StateNode, inclusion InclusionFlags) []graphid.ID {
	var ids []graphid.ID
	for _, ref := range node.Children {
		if inclusion.Includes(ref.Type) {
			ids = append(ids, ref.ID)
		}
	}
	for _, ref := range node.LinkedResources {
		if inclusion.Includes(ref.Type) {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// markSeen returns the subset of ids not already present in seen, recording
// each returned id's canonical form in seen as it goes.
func markSeen(ids []graphid.ID, seen map[graphid.ID]struct{}) []graphid.ID {
	var out []graphid.ID
	for _, id := range ids {
		if id == "" {
			continue
		}
		canonical := id.Canonical()
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, id)
	}
	return out
}

// filterExcluded drops any id whose canonical form appears in excluded.
func filterExcluded(ids []graphid.ID, excluded map[graphid.ID]struct{}) []graphid.ID {
	if len(excluded) == 0 {
		return ids
	}
	var out []graphid.ID
	for _, id := range ids {
		if _, ok := excluded[id.Canonical()]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
