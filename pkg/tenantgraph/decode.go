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
	"encoding/json"
	"fmt"

	azcorearm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// idTypeOnly is the minimal shape every listing element this package reads
// carries: its own id and, where the provider bothers to echo it, its type.
// Elements that omit "type" (some listing endpoints do) have it derived
// from the id instead.
type idTypeOnly struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// refFromElement decodes one listing element into a graphid.Ref.
func refFromElement(raw json.RawMessage) (graphid.Ref, error) {
	var probe idTypeOnly
	if err := json.Unmarshal(raw, &probe); err != nil {
		return graphid.Ref{}, fmt.Errorf("decoding listing element: %w", err)
	}
	if probe.ID == "" {
		return graphid.Ref{}, fmt.Errorf("listing element has no id")
	}

	resourceType := graphid.ResourceType(probe.Type)
	if resourceType == "" {
		derived, err := graphid.DeriveType(graphid.ID(probe.ID))
		if err != nil {
			return graphid.Ref{}, err
		}
		resourceType = derived
	}

	return graphid.Ref{ID: graphid.ID(probe.ID), Type: resourceType}, nil
}

// refsFromElements decodes every element, skipping (not failing on) entries
// that don't carry a usable id — defensive against partially-malformed
// listing payloads from providers that are still being onboarded.
func refsFromElements(elements []json.RawMessage) []graphid.Ref {
	refs := make([]graphid.Ref, 0, len(elements))
	for _, el := range elements {
		ref, err := refFromElement(el)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// refsFromRoleDefinitionElements decodes a role-definitions listing,
// validating each element through graphid.ParseRoleDefinitionResourceID
// rather than the generic DeriveType path used by refFromElement: this
// listing's shape is fixed to one resource type, so an element whose id
// doesn't parse as a role-definition id is dropped rather than mistyped.
func refsFromRoleDefinitionElements(elements []json.RawMessage) []graphid.Ref {
	refs := make([]graphid.Ref, 0, len(elements))
	for _, el := range elements {
		var probe idTypeOnly
		if err := json.Unmarshal(el, &probe); err != nil || probe.ID == "" {
			continue
		}
		if _, err := graphid.ParseRoleDefinitionResourceID(probe.ID); err != nil {
			continue
		}
		refs = append(refs, graphid.Ref{ID: graphid.ID(probe.ID), Type: "Microsoft.Authorization/roleDefinitions"})
	}
	return refs
}

// refsFromResourceGroupElements decodes a subscription's /resourceGroups
// listing, validating each element through
// graphid.ParseResourceGroupResourceID instead of trusting the listing's
// echoed (or derived) type blindly.
func refsFromResourceGroupElements(elements []json.RawMessage) []graphid.Ref {
	refs := make([]graphid.Ref, 0, len(elements))
	for _, el := range elements {
		var probe idTypeOnly
		if err := json.Unmarshal(el, &probe); err != nil || probe.ID == "" {
			continue
		}
		if _, err := graphid.ParseResourceGroupResourceID(probe.ID); err != nil {
			continue
		}
		refs = append(refs, graphid.Ref{ID: graphid.ID(probe.ID), Type: graphid.ResourceTypeResourceGroups})
	}
	return refs
}

// refsFromResourceGroupScopedElements decodes a resource group's /resources
// listing. Every element here is resource-group-scoped by construction (it
// was listed under one), so each is validated through
// graphid.ParseResourceGroupScopedResourceID against its own derived type
// rather than trusted as-is; an id that doesn't parse as a well-formed
// resource-group-scoped id for its claimed type is dropped.
func refsFromResourceGroupScopedElements(elements []json.RawMessage) []graphid.Ref {
	refs := make([]graphid.Ref, 0, len(elements))
	for _, el := range elements {
		ref, err := refFromElement(el)
		if err != nil {
			continue
		}
		expected, err := azcorearm.ParseResourceType(string(ref.Type))
		if err != nil {
			continue
		}
		if _, err := graphid.ParseResourceGroupScopedResourceID(string(ref.ID), expected); err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// extractName derives a StateNode's display name from its raw payload:
// subscriptions use displayName (top-level or nested under properties),
// everything else uses the name property or falls back to the identifier's
// final path segment.
func extractName(raw json.RawMessage, resourceType graphid.ResourceType, id graphid.ID) string {
	var probe struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		Properties  struct {
			DisplayName string `json:"displayName"`
		} `json:"properties"`
	}
	_ = json.Unmarshal(raw, &probe)

	if resourceType == graphid.ResourceTypeSubscriptions {
		if probe.DisplayName != "" {
			return probe.DisplayName
		}
		if probe.Properties.DisplayName != "" {
			return probe.Properties.DisplayName
		}
	}

	if probe.Name != "" {
		return probe.Name
	}
	return graphid.ShortName(id)
}

// decodeRawAny unmarshals raw into a generic JSON value for StateNode.Raw:
// payloads are stored opaquely, with no per-resource-type schema modeling.
func decodeRawAny(raw json.RawMessage) any {
	var v any
	_ = json.Unmarshal(raw, &v)
	return v
}
