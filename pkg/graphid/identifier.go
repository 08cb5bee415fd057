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

// Package graphid implements resource-identifier parsing and resource-type
// derivation: the path grammar is generic (any cloud resource id), so unlike
// the teacher's per-resource-kind Parse*ResourceID helpers (subnets, vnets,
// NSGs, ...) this package derives a type from shape alone, per a small fixed
// set of ordered rules, and must work for resource types it has never seen
// a name for.
package graphid

import (
	"regexp"
	"strings"

	"github.com/Azure/azure-tenant-graph/pkg/armerr"
)

// ID is an absolute, case-insensitive resource identifier path, e.g.
// "/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/rg1".
// Canonical() lowercases it for use as a cache key; the original casing of
// an ID as supplied by a caller or a provider response is preserved in
// StateNode.ID for display purposes.
type ID string

// Canonical returns the lowercase form of an ID, used as a cache key so that
// "the same node discovered under two case-different ids" (§9) collapses to
// one cache entry as the specification mandates.
func (i ID) Canonical() ID {
	return ID(strings.ToLower(string(i)))
}

func (i ID) String() string { return string(i) }

// HasPrefix reports whether i begins with prefix, case-insensitively —
// the test the StateNode "children begin with their parent's id" invariant
// requires.
func (i ID) HasPrefix(prefix ID) bool {
	return strings.HasPrefix(strings.ToLower(string(i)), strings.ToLower(string(prefix)))
}

// ShortName returns the final path segment of an identifier, e.g.
// ShortName("/subscriptions/x/resourceGroups/rg1") == "rg1".
func ShortName(id ID) string {
	trimmed := strings.TrimRight(string(id), "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}

// ResourceType is a "{namespace}/{type}" pair, e.g.
// "Microsoft.Management/managementGroups". Compound resource types (e.g. a
// subnet nested under a virtual network) join their nested type segments
// with "/": "Microsoft.Network/virtualNetworks/subnets".
type ResourceType string

func (t ResourceType) String() string { return string(t) }

// Namespace returns the portion of the type before the first "/".
func (t ResourceType) Namespace() string {
	idx := strings.Index(string(t), "/")
	if idx < 0 {
		return string(t)
	}
	return string(t)[:idx]
}

// CaseFolded returns the lowercase form used for ApiVersionRegistry keys and
// cache lookups.
func (t ResourceType) CaseFolded() string {
	return strings.ToLower(string(t))
}

// Well-known synthetic resource types produced by the derivation rules for
// collection scopes that have no explicit provider segment.
const (
	ResourceTypeGenericResources = ResourceType("Microsoft.Resources/resources")
	ResourceTypeResourceGroups   = ResourceType("Microsoft.Resources/resourceGroups")
	ResourceTypeSubscriptions    = ResourceType("Microsoft.Resources/subscriptions")
	ResourceTypeManagementGroups = ResourceType("Microsoft.Management/managementGroups")
)

var (
	resourceGroupSuffix = regexp.MustCompile(`(?i)/resourcegroups(?:/[^/]+)?/?$`)
	subscriptionSuffix  = regexp.MustCompile(`(?i)/subscriptions(?:/[^/]+)?/?$`)
	resourcesSuffix     = regexp.MustCompile(`(?i)/resources/?$`)
)

// DeriveType implements the §3 derivation rules, first match wins:
//  1. if the id contains "/providers/", the type is the innermost
//     "{namespace}/{type}" segment following the last "/providers/"
//  2. else if it ends in "/resources", the synthetic generic-resources type
//  3. else if it ends in "/resourceGroups" or "/resourceGroups/{name}"
//  4. else if it ends in "/subscriptions" or "/subscriptions/{id}", where
//     {id} is any single path segment (not only a GUID)
//
// Anything else is UnknownResourceType.
func DeriveType(id ID) (ResourceType, error) {
	raw := string(id)
	lower := strings.ToLower(raw)

	if idx := strings.LastIndex(lower, "/providers/"); idx >= 0 {
		rest := raw[idx+len("/providers/"):]
		t := typeFromProviderSegment(rest)
		if t == "" {
			return "", &armerr.UnknownResourceType{ID: raw}
		}
		return ResourceType(t), nil
	}

	switch {
	case resourcesSuffix.MatchString(lower):
		return ResourceTypeGenericResources, nil
	case resourceGroupSuffix.MatchString(lower):
		return ResourceTypeResourceGroups, nil
	case subscriptionSuffix.MatchString(lower):
		return ResourceTypeSubscriptions, nil
	}

	return "", &armerr.UnknownResourceType{ID: raw}
}

// typeFromProviderSegment extracts "{namespace}/{type...}" from the path
// segment following the last "/providers/". The segment alternates
// type/name pairs after the namespace (type1/name1/type2/name2/...); the
// resource type is the namespace followed by every type segment, joined,
// dropping the interleaved names. A trailing type segment with no name
// (a collection-listing scope) is included.
func typeFromProviderSegment(rest string) string {
	segs := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segs) < 2 {
		return ""
	}

	namespace := segs[0]
	var typeParts []string
	for i := 1; i < len(segs); i += 2 {
		if segs[i] == "" {
			return ""
		}
		typeParts = append(typeParts, segs[i])
	}
	if len(typeParts) == 0 {
		return ""
	}

	return namespace + "/" + strings.Join(typeParts, "/")
}

// Ref is a lightweight pointer to another node: the shape used for
// StateNode.Children, .LinkedResources and .Parent.
type Ref struct {
	ID   ID           `json:"id"`
	Type ResourceType `json:"type"`
}

// resourceGroupSubscriptionPrefixPattern matches the "/subscriptions/{id}"
// prefix of a resource-group-scoped (or deeper) identifier. Subscription ids
// are almost always GUIDs in production but the grammar here accepts any
// single path segment, since the derivation rule only cares about extracting
// the subscription's scope, not validating its shape.
var resourceGroupSubscriptionPrefixPattern = regexp.MustCompile(`(?i)^(/subscriptions/[^/]+)`)

// ResourceGroupSubscriptionPrefix extracts the "/subscriptions/{id}" prefix
// of a resource-group-scoped (or deeper) identifier, per the ParentResolver
// resource-group rule (§4.5).
func ResourceGroupSubscriptionPrefix(id ID) (ID, bool) {
	m := resourceGroupSubscriptionPrefixPattern.FindStringSubmatch(string(id))
	if m == nil {
		return "", false
	}
	return ID(m[1]), true
}

// StripTrailingProviderSegment strips the trailing "/providers/{ns}/{type}/{name}"
// segment from an identifier, returning the remaining scope — the
// ParentResolver rule for "any other resource" (§4.5). For a nested
// resource ("/providers/{ns}/{type1}/{name1}/{type2}/{name2}...") only the
// final "/{type}/{name}" pair is stripped, so the result is the enclosing
// resource rather than its scope.
func StripTrailingProviderSegment(id ID) (ID, bool) {
	lower := strings.ToLower(string(id))
	idx := strings.LastIndex(lower, "/providers/")
	if idx < 0 {
		return "", false
	}
	rest := string(id)[idx+len("/providers/"):]
	segs := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segs) < 3 {
		// namespace/type/name at minimum; anything shorter has no
		// trailing resource to strip off.
		return "", false
	}
	if len(segs) >= 5 {
		trimmed := strings.TrimRight(string(id), "/")
		for i := 0; i < 2; i++ {
			trimmed = trimmed[:strings.LastIndex(trimmed, "/")]
		}
		return ID(trimmed), true
	}
	return ID(string(id)[:idx]), true
}
