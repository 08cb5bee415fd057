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
	"fmt"
	"strings"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// managementGroupDescendant is one element of a management group's
// /descendants listing.
type managementGroupDescendant struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Properties struct {
		Parent struct {
			ID string `json:"id"`
		} `json:"parent"`
	} `json:"properties"`
}

// fetchManagementGroupDescendants issues `GET {mgID}/descendants` and
// records every descendant's parent edge into hints — the opportunistic
// harvesting §4.4 and §9 describe, performed regardless of whether the
// descendant turns out to be a direct child or a linked (indirect)
// descendant of mgID. Shared by ChildrenLister (listing mgID's own
// children) and ParentResolver (scanning for a subscription's parent).
func fetchManagementGroupDescendants(
	ctx context.Context, router *RequestRouter, hints *ParentHintMap, mgID graphid.ID, mode CacheMode,
) ([]managementGroupDescendant, error) {

	listID := graphid.ID(string(mgID) + "/descendants")
	path, err := router.PathForType(ctx, listID, graphid.ResourceTypeManagementGroups, Stable)
	if err != nil {
		return nil, err
	}

	resp, err := router.Get(ctx, path, mode)
	if err != nil {
		return nil, err
	}

	elements, _, err := Decode(resp)
	if err != nil {
		return nil, fmt.Errorf("decoding descendants of %q: %w", mgID, err)
	}

	descendants := make([]managementGroupDescendant, 0, len(elements))
	for _, el := range elements {
		var d managementGroupDescendant
		if unmarshalErr := json.Unmarshal(el, &d); unmarshalErr != nil {
			continue
		}
		if d.ID == "" {
			continue
		}
		descendants = append(descendants, d)

		if d.Properties.Parent.ID != "" {
			// A descendant that is itself a subscription still has a
			// management-group parent; the hint's value type is always
			// managementGroups here because /descendants only nests under
			// management groups.
			hints.Record(graphid.ID(d.ID), graphid.Ref{
				ID:   graphid.ID(d.Properties.Parent.ID),
				Type: graphid.ResourceTypeManagementGroups,
			})
		}
	}

	return descendants, nil
}

// ChildrenLister dispatches a resource type's children/linked-resources
// listing per the §4.4 table.
type ChildrenLister struct {
	router *RequestRouter
	hints  *ParentHintMap
}

// NewChildrenLister wires a ChildrenLister over router, recording parent
// hints harvested during management-group descendants listings into hints.
func NewChildrenLister(router *RequestRouter, hints *ParentHintMap) *ChildrenLister {
	return &ChildrenLister{router: router, hints: hints}
}

// List returns (children, linkedResources) for id of resourceType, per the
// type's ChildrenStrategy. Resource types with ChildrenNone return two nil
// slices and no error.
func (l *ChildrenLister) List(
	ctx context.Context, id graphid.ID, resourceType graphid.ResourceType, mode CacheMode,
) ([]graphid.Ref, []graphid.Ref, error) {

	switch PolicyFor(resourceType).Children {
	case ChildrenManagementGroupDescendants:
		return l.listManagementGroupDescendants(ctx, id, mode)
	case ChildrenSubscriptionResourceGroups:
		children, err := l.listSimple(ctx, id, "/resourceGroups", graphid.ResourceTypeResourceGroups, mode)
		return children, nil, err
	case ChildrenResourceGroupResources:
		children, err := l.listSimple(ctx, id, "/resources", graphid.ResourceTypeGenericResources, mode)
		return children, nil, err
	default:
		return nil, nil, nil
	}
}

func (l *ChildrenLister) listManagementGroupDescendants(
	ctx context.Context, id graphid.ID, mode CacheMode) ([]graphid.Ref, []graphid.Ref, error) {

	descendants, err := fetchManagementGroupDescendants(ctx, l.router, l.hints, id, mode)
	if err != nil {
		return nil, nil, err
	}

	var children, linked []graphid.Ref
	for _, d := range descendants {
		resourceType := graphid.ResourceType(d.Type)
		if resourceType == "" {
			resourceType, err = graphid.DeriveType(graphid.ID(d.ID))
			if err != nil {
				continue
			}
		}
		ref := graphid.Ref{ID: graphid.ID(d.ID), Type: resourceType}

		if strings.EqualFold(d.Properties.Parent.ID, string(id)) {
			children = append(children, ref)
		} else {
			linked = append(linked, ref)
		}
	}

	return children, linked, nil
}

func (l *ChildrenLister) listSimple(
	ctx context.Context, id graphid.ID, suffix string, resourceType graphid.ResourceType, mode CacheMode,
) ([]graphid.Ref, error) {

	listID := graphid.ID(string(id) + suffix)
	path, err := l.router.PathForType(ctx, listID, resourceType, Stable)
	if err != nil {
		return nil, err
	}

	resp, err := l.router.Get(ctx, path, mode)
	if err != nil {
		return nil, err
	}

	elements, _, err := Decode(resp)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", listID, err)
	}

	switch resourceType {
	case graphid.ResourceTypeResourceGroups:
		return refsFromResourceGroupElements(elements), nil
	case graphid.ResourceTypeGenericResources:
		return refsFromResourceGroupScopedElements(elements), nil
	default:
		return refsFromElements(elements), nil
	}
}
