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

import "github.com/Azure/azure-tenant-graph/pkg/graphid"

// ChildrenStrategy selects how a resource type's children/linked resources
// are listed (§4.4).
type ChildrenStrategy int

const (
	ChildrenNone ChildrenStrategy = iota
	ChildrenManagementGroupDescendants
	ChildrenSubscriptionResourceGroups
	ChildrenResourceGroupResources
)

// ParentStrategy selects how a resource type's parent is located (§4.5).
type ParentStrategy int

const (
	ParentManagementGroupDetails ParentStrategy = iota
	ParentSubscriptionHintOrScan
	ParentResourceGroupSubscriptionPrefix
	ParentStripTrailingProviderSegment
)

// SubQueryKind identifies one of the five IAM/policy sub-collection queries
// NodeBuilder issues against a resource's scope.
type SubQueryKind int

const (
	SubQueryRoleDefinitions SubQueryKind = iota
	SubQueryRoleAssignments
	SubQueryPolicyDefinitions
	SubQueryPolicySetDefinitions
	SubQueryPolicyAssignments
)

// suffix returns the provider path segment appended to a scope id to list
// this sub-collection.
func (k SubQueryKind) suffix() string {
	switch k {
	case SubQueryRoleDefinitions:
		return "/providers/Microsoft.Authorization/roleDefinitions"
	case SubQueryRoleAssignments:
		return "/providers/Microsoft.Authorization/roleAssignments"
	case SubQueryPolicyDefinitions:
		return "/providers/Microsoft.Authorization/policyDefinitions"
	case SubQueryPolicySetDefinitions:
		return "/providers/Microsoft.Authorization/policySetDefinitions"
	case SubQueryPolicyAssignments:
		return "/providers/Microsoft.Authorization/policyAssignments"
	default:
		return ""
	}
}

// atScope reports whether this sub-query must append "$filter=atScope()" —
// true for the two assignment listings (§4.3 step 7, §6).
func (k SubQueryKind) atScope() bool {
	return k == SubQueryRoleAssignments || k == SubQueryPolicyAssignments
}

// resourceType returns the ResourceType this sub-query's elements decode as.
func (k SubQueryKind) resourceType() graphid.ResourceType {
	switch k {
	case SubQueryRoleDefinitions:
		return "Microsoft.Authorization/roleDefinitions"
	case SubQueryRoleAssignments:
		return "Microsoft.Authorization/roleAssignments"
	case SubQueryPolicyDefinitions:
		return "Microsoft.Authorization/policyDefinitions"
	case SubQueryPolicySetDefinitions:
		return "Microsoft.Authorization/policySetDefinitions"
	case SubQueryPolicyAssignments:
		return "Microsoft.Authorization/policyAssignments"
	default:
		return ""
	}
}

// TypePolicy is the per-ResourceType table entry the design notes (§9)
// prescribe in place of a switch scattered across methods: everything
// NodeBuilder, the children lister and the parent resolver need to know
// about how a given resource type behaves.
type TypePolicy struct {
	Children ChildrenStrategy
	Parent   ParentStrategy

	IAMQueries    []SubQueryKind
	PolicyQueries []SubQueryKind
}

var (
	iamQueriesAll    = []SubQueryKind{SubQueryRoleDefinitions, SubQueryRoleAssignments}
	policyQueriesAll = []SubQueryKind{SubQueryPolicyDefinitions, SubQueryPolicySetDefinitions, SubQueryPolicyAssignments}
	policyQueriesRG  = []SubQueryKind{SubQueryPolicyAssignments}
)

var typePolicyTable = map[graphid.ResourceType]TypePolicy{
	graphid.ResourceTypeManagementGroups: {
		Children:      ChildrenManagementGroupDescendants,
		Parent:        ParentManagementGroupDetails,
		IAMQueries:    iamQueriesAll,
		PolicyQueries: policyQueriesAll,
	},
	graphid.ResourceTypeSubscriptions: {
		Children:      ChildrenSubscriptionResourceGroups,
		Parent:        ParentSubscriptionHintOrScan,
		IAMQueries:    iamQueriesAll,
		PolicyQueries: policyQueriesAll,
	},
	graphid.ResourceTypeResourceGroups: {
		Children:      ChildrenResourceGroupResources,
		Parent:        ParentResourceGroupSubscriptionPrefix,
		IAMQueries:    iamQueriesAll,
		PolicyQueries: policyQueriesRG,
	},
}

// PolicyFor returns the TypePolicy for resourceType, falling back to the
// "any other resource" policy (no children, parent by stripping the
// trailing provider segment, no IAM/policy sub-queries) for anything not
// explicitly listed.
func PolicyFor(resourceType graphid.ResourceType) TypePolicy {
	if p, ok := typePolicyTable[resourceType]; ok {
		return p
	}
	return TypePolicy{Children: ChildrenNone, Parent: ParentStripTrailingProviderSegment}
}
