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
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Azure/azure-tenant-graph/internal/obslog"
	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// defaultThrottleLimit is the fan-out BulkFetcher uses when the caller
// doesn't override it (§6).
const defaultThrottleLimit = 4

// BulkResult is the union of nodes BulkFetcher successfully built plus the
// diagnostics collection for everything that failed along the way.
type BulkResult struct {
	Nodes       []*StateNode
	Diagnostics []Diagnostic
}

// BulkFetcher dispatches NodeBuilder work over a list of identifiers under
// a bounded worker pool (§4.6).
type BulkFetcher struct {
	builder *NodeBuilder
}

// NewBulkFetcher wires a BulkFetcher over builder.
func NewBulkFetcher(builder *NodeBuilder) *BulkFetcher {
	return &BulkFetcher{builder: builder}
}

// FromIDsDefault calls FromIDs with the default throttle limit (§6).
func (f *BulkFetcher) FromIDsDefault(ctx context.Context, ids []graphid.ID, cacheMode CacheMode, discoveryMode DiscoveryMode) BulkResult {
	return f.FromIDs(ctx, ids, defaultThrottleLimit, cacheMode, discoveryMode)
}

// FromIDs builds every (deduplicated, non-empty) id in ids and returns the
// union of resulting nodes alongside a diagnostics collection for anything
// that failed. A single worker's failure never aborts its siblings.
//
// throttleLimit selects the dispatch strategy: 0 is "direct" materialization
// from whatever is already cached (no forced re-fetch of the primary
// record; an id not yet in StateCache is still fetched and built as
// usual); 1 is serial; >1 is parallel with that many concurrent workers. A
// batch that collapses to a single id after deduplication is always run
// serially regardless of throttleLimit, to avoid worker-pool overhead for a
// single unit of work.
func (f *BulkFetcher) FromIDs(
	ctx context.Context, ids []graphid.ID, throttleLimit int, cacheMode CacheMode, discoveryMode DiscoveryMode,
) BulkResult {

	deduped := dedupeIDs(ids)
	if len(deduped) == 0 {
		return BulkResult{}
	}

	batchID := uuid.NewString()
	logger := obslog.LoggerFromContext(ctx)
	logger.V(1).Info("starting bulk fetch",
		obslog.LogValues{}.AddOperationID(batchID).AddThrottleLimit(throttleLimit).
			AddCacheMode(cacheMode.String()).AddDiscoveryMode(discoveryMode.String())...)

	var nodes []*StateNode
	var diagnostics []Diagnostic

	switch {
	case throttleLimit == 0:
		// "Direct" materialization never forces a fresh primary fetch: it
		// trusts that the caller already warmed StateCache (e.g. via a
		// prior children listing that recursively built these nodes), so
		// UseCache is used unconditionally regardless of the cacheMode
		// argument.
		nodes, diagnostics = f.serial(ctx, deduped, UseCache, discoveryMode)
	case throttleLimit == 1 || len(deduped) == 1:
		nodes, diagnostics = f.serial(ctx, deduped, cacheMode, discoveryMode)
	default:
		nodes, diagnostics = f.parallel(ctx, deduped, throttleLimit, cacheMode, discoveryMode)
	}

	logger.V(1).Info("finished bulk fetch",
		obslog.LogValues{}.AddOperationID(batchID).AddDiagnosticCount(len(diagnostics))...)

	return BulkResult{Nodes: nodes, Diagnostics: diagnostics}
}

func (f *BulkFetcher) serial(
	ctx context.Context, ids []graphid.ID, cacheMode CacheMode, discoveryMode DiscoveryMode,
) ([]*StateNode, []Diagnostic) {

	var nodes []*StateNode
	var diagnostics []Diagnostic

	for _, id := range ids {
		node, diags, err := f.builder.BuildTolerant(ctx, id, cacheMode, discoveryMode)
		diagnostics = append(diagnostics, diags...)
		if err != nil {
			diagnostics = append(diagnostics, Diagnostic{ID: string(id), Err: err})
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes, diagnostics
}

func (f *BulkFetcher) parallel(
	ctx context.Context, ids []graphid.ID, throttleLimit int, cacheMode CacheMode, discoveryMode DiscoveryMode,
) ([]*StateNode, []Diagnostic) {

	sem := semaphore.NewWeighted(int64(throttleLimit))

	var mu sync.Mutex
	var wg sync.WaitGroup
	var nodes []*StateNode
	var diagnostics []Diagnostic

	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: stop dispatching new workers, but leave
			// whatever has already completed in place (§5 cancellation).
			mu.Lock()
			diagnostics = append(diagnostics, Diagnostic{ID: string(id), Err: err})
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(id graphid.ID) {
			defer wg.Done()
			defer sem.Release(1)

			node, diags, err := f.builder.BuildTolerant(ctx, id, cacheMode, discoveryMode)

			mu.Lock()
			defer mu.Unlock()
			diagnostics = append(diagnostics, diags...)
			if err != nil {
				diagnostics = append(diagnostics, Diagnostic{ID: string(id), Err: err})
				return
			}
			nodes = append(nodes, node)
		}(id)
	}

	wg.Wait()
	return nodes, diagnostics
}

// dedupeIDs drops empty strings and case-insensitive duplicates, preserving
// first-seen order.
func dedupeIDs(ids []graphid.ID) []graphid.ID {
	seen := make(map[graphid.ID]struct{}, len(ids))
	out := make([]graphid.ID, 0, len(ids))

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
