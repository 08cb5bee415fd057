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
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Azure/azure-tenant-graph/internal/metrics"
	"github.com/Azure/azure-tenant-graph/internal/obslog"
	"github.com/Azure/azure-tenant-graph/pkg/armerr"
	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// maxParentChainDepth bounds the parent-chain walk (§4.3 step 6); exceeding
// it means the tenant's parent graph has a cycle.
const maxParentChainDepth = 32

// NodeBuilder constructs StateNode records from an identifier, per the
// eight-step algorithm of §4.3. It is the only component that writes to
// StateCache.
type NodeBuilder struct {
	router   *RequestRouter
	cache    *StateCache
	children *ChildrenLister
	parents  *ParentResolver

	// inflight collapses concurrent Build calls for the same canonical id
	// into one fetch-and-derive, the single-flight upgrade to duplicate
	// suppression §5 and §10.5 describe as an implementation strategy, not
	// a relaxation of the final tryInsert correctness contract.
	inflight singleflight.Group

	metrics *metrics.Collectors
}

// NewNodeBuilder wires a NodeBuilder over its collaborators.
func NewNodeBuilder(router *RequestRouter, cache *StateCache, children *ChildrenLister, parents *ParentResolver) *NodeBuilder {
	return &NodeBuilder{router: router, cache: cache, children: children, parents: parents}
}

// WithMetrics attaches a metrics.Collectors that Build/BuildTolerant report
// against. A nil or never-called WithMetrics leaves metrics recording a
// no-op, so tests and the default engine wiring don't need a registry.
func (b *NodeBuilder) WithMetrics(m *metrics.Collectors) *NodeBuilder {
	b.metrics = m
	return b
}

// Build returns the StateNode for id, constructing (or upgrading) it as
// needed. A failed IAM/policy sub-query is fatal to the whole build — "top
// level single-id operations" propagate their errors to the caller (§7).
// BulkFetcher uses BuildTolerant instead, where the same failure degrades
// that aspect to empty and is reported as a diagnostic (§4.6, S5).
func (b *NodeBuilder) Build(ctx context.Context, id graphid.ID, cacheMode CacheMode, discoveryMode DiscoveryMode) (*StateNode, error) {
	node, _, err := b.build(ctx, id, cacheMode, discoveryMode, nil)
	return node, err
}

// BuildTolerant behaves like Build except that a sub-query failure while
// fetching IAM/policy aspects does not fail the build: the affected slice
// is left empty and a Diagnostic describing the failure is returned
// alongside the otherwise-complete node.
func (b *NodeBuilder) BuildTolerant(
	ctx context.Context, id graphid.ID, cacheMode CacheMode, discoveryMode DiscoveryMode,
) (*StateNode, []Diagnostic, error) {
	var diags []Diagnostic
	node, _, err := b.build(ctx, id, cacheMode, discoveryMode, &diags)
	return node, diags, err
}

func (b *NodeBuilder) build(
	ctx context.Context, id graphid.ID, cacheMode CacheMode, discoveryMode DiscoveryMode, diagSink *[]Diagnostic,
) (*StateNode, bool, error) {

	canonical := id.Canonical()

	if cacheMode == UseCache {
		if existing, ok := b.cache.Get(canonical); ok {
			if existing.HasAspects(discoveryMode) {
				b.metrics.RecordCacheHit("state")
				return existing, false, nil
			}
			upgraded, err := b.upgrade(ctx, existing, discoveryMode, diagSink)
			return upgraded, false, err
		}
	}

	logger := obslog.LoggerFromContext(ctx)
	logger.V(1).Info("building node",
		obslog.LogValues{}.AddResourceID(string(id)).AddCacheMode(cacheMode.String()).AddDiscoveryMode(discoveryMode.String())...)

	inflightKey := string(canonical)
	if diagSink != nil {
		inflightKey += "|tolerant"
	}

	started := time.Now()
	v, err, _ := b.inflight.Do(inflightKey, func() (any, error) {
		return b.buildFresh(ctx, id, discoveryMode, diagSink)
	})
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	b.metrics.ObserveBuild(outcome, time.Since(started))
	if err != nil {
		return nil, false, err
	}
	return v.(*StateNode), true, nil
}

func (b *NodeBuilder) buildFresh(
	ctx context.Context, id graphid.ID, discoveryMode DiscoveryMode, diagSink *[]Diagnostic,
) (*StateNode, error) {

	resourceType, err := graphid.DeriveType(id)
	if err != nil {
		return nil, err
	}

	// Step 2: the primary record is always fetched fresh (SkipCache at the
	// RequestRouter level), independent of the NodeBuilder-level cacheMode
	// argument, which only gates the StateCache short-circuit in build.
	path, err := b.router.PathForType(ctx, id, resourceType, Stable)
	if err != nil {
		return nil, err
	}

	resp, err := b.router.Get(ctx, path, SkipCache)
	if err != nil {
		return nil, fmt.Errorf("fetching primary record for %q: %w", id, err)
	}

	elements, isList, err := Decode(resp)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", id, err)
	}
	if isList {
		return nil, &armerr.AmbiguousIdentifier{ID: string(id)}
	}
	raw := elements[0]

	children, linked, err := b.children.List(ctx, id, resourceType, UseCache)
	if err != nil {
		return nil, fmt.Errorf("listing children of %q: %w", id, err)
	}

	parentRef, err := b.parents.Resolve(ctx, id, resourceType, raw, UseCache)
	if err != nil {
		return nil, fmt.Errorf("resolving parent of %q: %w", id, err)
	}

	parents, err := b.walkParentChain(ctx, parentRef)
	if err != nil {
		return nil, err
	}

	node := &StateNode{
		ID:              id,
		Type:            resourceType,
		Name:            extractName(raw, resourceType, id),
		Raw:             decodeRawAny(raw),
		Provider:        resourceType.Namespace(),
		Children:        children,
		LinkedResources: linked,
		Parent:          parentRef,
		Parents:         parents,
	}
	node.ParentPath = parentPathOf(parents)
	node.ResourcePath = node.ParentPath + "/" + graphid.ShortName(id)

	if discoveryMode != ExcludeBoth {
		iam, policy, err := b.fetchAspects(ctx, id, resourceType, discoveryMode, diagSink)
		if err != nil {
			return nil, fmt.Errorf("fetching IAM/policy for %q: %w", id, err)
		}
		node.IAM = iam
		node.Policy = policy
	}
	node.fetched = discoveryMode

	// Step 8: exactly one build wins per id.
	winner, installed := b.cache.TryInsert(id, node)
	if installed {
		return winner, nil
	}
	if winner.HasAspects(discoveryMode) {
		return winner, nil
	}
	return b.upgrade(ctx, winner, discoveryMode, diagSink)
}

// walkParentChain materializes the ordered root->immediate-parent chain by
// recursively building each ancestor (so ancestors are themselves cached),
// reading off its own Parent until nil. Depth is bounded at
// maxParentChainDepth to guard against cycles (§4.3 step 6). Ancestors are
// always built with ExcludeBoth, so aspect-fetch tolerance never applies
// here.
func (b *NodeBuilder) walkParentChain(ctx context.Context, parent *graphid.Ref) ([]graphid.Ref, error) {
	if parent == nil {
		return nil, nil
	}

	var chain []graphid.Ref
	current := parent
	depth := 0

	for current != nil {
		depth++
		if depth > maxParentChainDepth {
			return nil, &armerr.CycleDetected{ID: string(current.ID), Depth: depth}
		}

		chain = append(chain, *current)

		ancestor, err := b.Build(ctx, current.ID, UseCache, ExcludeBoth)
		if err != nil {
			return nil, fmt.Errorf("building ancestor %q: %w", current.ID, err)
		}
		current = ancestor.Parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func parentPathOf(parents []graphid.Ref) string {
	if len(parents) == 0 {
		return ""
	}
	segs := make([]string, len(parents))
	for i, p := range parents {
		segs[i] = graphid.ShortName(p.ID)
	}
	return "/" + strings.Join(segs, "/")
}

// fetchAspects issues the IAM/policy sub-queries discoveryMode requests for
// resourceType, per its TypePolicy (§4.3 step 7). When diagSink is non-nil,
// a failed sub-query degrades to an empty slice and is appended to diagSink
// instead of aborting the whole fetch (§4.6's "worker failures do not abort
// sibling work", applied at sub-query granularity for S5).
func (b *NodeBuilder) fetchAspects(
	ctx context.Context, id graphid.ID, resourceType graphid.ResourceType, discoveryMode DiscoveryMode, diagSink *[]Diagnostic,
) (IAM, Policy, error) {

	policy := PolicyFor(resourceType)
	var iam IAM
	var pol Policy

	if discoveryMode.WantsIAM() {
		for _, kind := range policy.IAMQueries {
			refs, err := b.fetchSubQuery(ctx, id, kind)
			if err != nil {
				if diagSink == nil {
					return IAM{}, Policy{}, err
				}
				*diagSink = append(*diagSink, Diagnostic{ID: string(id), Err: err})
				continue
			}
			switch kind {
			case SubQueryRoleDefinitions:
				iam.RoleDefinitions = refs
			case SubQueryRoleAssignments:
				iam.RoleAssignments = refs
			}
		}
	}

	if discoveryMode.WantsPolicy() {
		for _, kind := range policy.PolicyQueries {
			refs, err := b.fetchSubQuery(ctx, id, kind)
			if err != nil {
				if diagSink == nil {
					return IAM{}, Policy{}, err
				}
				*diagSink = append(*diagSink, Diagnostic{ID: string(id), Err: err})
				continue
			}
			switch kind {
			case SubQueryPolicyDefinitions:
				pol.PolicyDefinitions = refs
			case SubQueryPolicySetDefinitions:
				pol.PolicySetDefinitions = refs
			case SubQueryPolicyAssignments:
				pol.PolicyAssignments = refs
			}
		}
	}

	return iam, pol, nil
}

func (b *NodeBuilder) fetchSubQuery(ctx context.Context, id graphid.ID, kind SubQueryKind) ([]graphid.Ref, error) {
	subID := graphid.ID(string(id) + kind.suffix())

	path, err := b.router.PathForType(ctx, subID, kind.resourceType(), Stable)
	if err != nil {
		return nil, err
	}
	if kind.atScope() {
		path = appendQuery(path, "$filter", "atScope()")
	}

	resp, err := b.router.Get(ctx, path, UseCache)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", subID, err)
	}

	elements, _, err := Decode(resp)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", subID, err)
	}

	if kind == SubQueryRoleDefinitions {
		return refsFromRoleDefinitionElements(elements), nil
	}
	return refsFromElements(elements), nil
}

// upgrade fetches whatever aspects discoveryMode requests that existing
// lacks and installs the merged node into StateCache, per the CRDT-style
// monotonic extension design note (§9) — aspects already present are never
// re-fetched, so a call that only widens IAM->IncludeBoth issues policy
// sub-queries alone (S6).
func (b *NodeBuilder) upgrade(
	ctx context.Context, existing *StateNode, discoveryMode DiscoveryMode, diagSink *[]Diagnostic,
) (*StateNode, error) {

	wantIAM := discoveryMode.WantsIAM() && !existing.fetched.WantsIAM()
	wantPolicy := discoveryMode.WantsPolicy() && !existing.fetched.WantsPolicy()

	var fetchMode DiscoveryMode
	switch {
	case wantIAM && wantPolicy:
		fetchMode = IncludeBoth
	case wantIAM:
		fetchMode = IncludeIAM
	case wantPolicy:
		fetchMode = IncludePolicy
	default:
		return existing, nil
	}

	iam, policy, err := b.fetchAspects(ctx, existing.ID, existing.Type, fetchMode, diagSink)
	if err != nil {
		return nil, fmt.Errorf("upgrading %q: %w", existing.ID, err)
	}

	return b.cache.Upgrade(existing.ID, fetchMode, iam, policy), nil
}
