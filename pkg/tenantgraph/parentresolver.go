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
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Azure/azure-tenant-graph/internal/obslog"
	"github.com/Azure/azure-tenant-graph/pkg/armerr"
	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// managementGroupsScope is the fixed collection scope §4.5 names for the
// subscription-parent fallback scan.
const managementGroupsScope = graphid.ID("/providers/Microsoft.Management/managementGroups")

// ParentResolver locates a node's parent per the type-specific rules of
// §4.5, sharing a ParentHintMap with ChildrenLister so the expensive
// management-group scan is only ever a fallback.
type ParentResolver struct {
	router *RequestRouter
	hints  *ParentHintMap
}

// NewParentResolver wires a ParentResolver over router and hints.
func NewParentResolver(router *RequestRouter, hints *ParentHintMap) *ParentResolver {
	return &ParentResolver{router: router, hints: hints}
}

// Resolve returns id's parent, or nil if id is a root with no parent. A
// permission failure while locating the parent is recovered locally: it is
// logged and nil is returned rather than propagated, per §4.5's "all parent
// lookups must tolerate permission errors on the parent."
func (p *ParentResolver) Resolve(
	ctx context.Context, id graphid.ID, resourceType graphid.ResourceType, raw json.RawMessage, mode CacheMode,
) (*graphid.Ref, error) {

	var ref *graphid.Ref
	var err error

	switch PolicyFor(resourceType).Parent {
	case ParentManagementGroupDetails:
		ref, err = resolveManagementGroupParent(raw)
	case ParentSubscriptionHintOrScan:
		ref, err = p.resolveSubscriptionParent(ctx, id, mode)
	case ParentResourceGroupSubscriptionPrefix:
		ref, err = resolveResourceGroupParent(id)
	default:
		ref, err = resolveGenericParent(id)
	}

	if err == nil {
		return ref, nil
	}

	var denied *armerr.ParentLookupDenied
	if errors.As(err, &denied) {
		logger := obslog.LoggerFromContext(ctx)
		logger.Info("parent lookup denied, treating parent as null",
			obslog.LogValues{}.AddResourceID(string(id)).AddCloudErrorMessage(denied.Error())...)
		return nil, nil
	}

	return nil, err
}

func resolveManagementGroupParent(raw json.RawMessage) (*graphid.Ref, error) {
	var probe struct {
		Properties struct {
			Details struct {
				Parent struct {
					ID string `json:"id"`
				} `json:"parent"`
			} `json:"details"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, nil
	}

	parentID := probe.Properties.Details.Parent.ID
	if parentID == "" {
		return nil, nil
	}

	return &graphid.Ref{ID: graphid.ID(parentID), Type: graphid.ResourceTypeManagementGroups}, nil
}

// resolveSubscriptionParent consults the ParentHintMap first; on a miss it
// falls back to scanning every management group's descendants for one that
// lists id as a child — the expensive path §4.5 and §9 warn against relying
// on.
func (p *ParentResolver) resolveSubscriptionParent(ctx context.Context, id graphid.ID, mode CacheMode) (*graphid.Ref, error) {
	if hint, ok := p.hints.Lookup(id); ok {
		return &hint, nil
	}

	path, err := p.router.PathForType(ctx, managementGroupsScope, graphid.ResourceTypeManagementGroups, Stable)
	if err != nil {
		return nil, err
	}

	resp, err := p.router.Get(ctx, path, mode)
	if err != nil {
		if isPermissionDenied(err) {
			return nil, &armerr.ParentLookupDenied{ID: string(id), Cause: err}
		}
		return nil, err
	}

	elements, _, err := Decode(resp)
	if err != nil {
		return nil, err
	}

	for _, el := range elements {
		ref, err := refFromElement(el)
		if err != nil {
			continue
		}

		descendants, err := fetchManagementGroupDescendants(ctx, p.router, p.hints, ref.ID, mode)
		if err != nil {
			if isPermissionDenied(err) {
				continue
			}
			return nil, err
		}

		for _, d := range descendants {
			if strings.EqualFold(d.ID, string(id)) && d.Properties.Parent.ID != "" {
				return &graphid.Ref{ID: graphid.ID(d.Properties.Parent.ID), Type: graphid.ResourceTypeManagementGroups}, nil
			}
		}
	}

	return nil, nil
}

func resolveResourceGroupParent(id graphid.ID) (*graphid.Ref, error) {
	prefix, ok := graphid.ResourceGroupSubscriptionPrefix(id)
	if !ok {
		return nil, nil
	}
	return &graphid.Ref{ID: prefix, Type: graphid.ResourceTypeSubscriptions}, nil
}

func resolveGenericParent(id graphid.ID) (*graphid.Ref, error) {
	stripped, ok := graphid.StripTrailingProviderSegment(id)
	if !ok {
		return nil, nil
	}

	resourceType, err := graphid.DeriveType(stripped)
	if err != nil {
		return nil, nil
	}

	return &graphid.Ref{ID: stripped, Type: resourceType}, nil
}

func isPermissionDenied(err error) bool {
	var apiErr *armerr.ApiCallFailed
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusForbidden
	}
	return false
}
