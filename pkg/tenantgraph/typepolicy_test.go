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

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

func TestPolicyForKnownTypes(t *testing.T) {
	mg := PolicyFor(graphid.ResourceTypeManagementGroups)
	assert.Equal(t, ChildrenManagementGroupDescendants, mg.Children)
	assert.Equal(t, ParentManagementGroupDetails, mg.Parent)
	assert.Equal(t, iamQueriesAll, mg.IAMQueries)
	assert.Equal(t, policyQueriesAll, mg.PolicyQueries)

	sub := PolicyFor(graphid.ResourceTypeSubscriptions)
	assert.Equal(t, ChildrenSubscriptionResourceGroups, sub.Children)
	assert.Equal(t, ParentSubscriptionHintOrScan, sub.Parent)
	assert.Equal(t, policyQueriesAll, sub.PolicyQueries)

	rg := PolicyFor(graphid.ResourceTypeResourceGroups)
	assert.Equal(t, ChildrenResourceGroupResources, rg.Children)
	assert.Equal(t, ParentResourceGroupSubscriptionPrefix, rg.Parent)
	assert.Equal(t, policyQueriesRG, rg.PolicyQueries, "resource groups only list policy assignments, not definitions")
}

func TestPolicyForFallback(t *testing.T) {
	p := PolicyFor(graphid.ResourceType("Microsoft.Network/virtualNetworks"))
	assert.Equal(t, ChildrenNone, p.Children)
	assert.Equal(t, ParentStripTrailingProviderSegment, p.Parent)
	assert.Nil(t, p.IAMQueries)
	assert.Nil(t, p.PolicyQueries)
}

func TestSubQueryKindSuffixAndScope(t *testing.T) {
	assert.Equal(t, "/providers/Microsoft.Authorization/roleDefinitions", SubQueryRoleDefinitions.suffix())
	assert.False(t, SubQueryRoleDefinitions.atScope())

	assert.Equal(t, "/providers/Microsoft.Authorization/roleAssignments", SubQueryRoleAssignments.suffix())
	assert.True(t, SubQueryRoleAssignments.atScope())

	assert.True(t, SubQueryPolicyAssignments.atScope())
	assert.False(t, SubQueryPolicyDefinitions.atScope())

	assert.Equal(t, graphid.ResourceType("Microsoft.Authorization/roleAssignments"), SubQueryRoleAssignments.resourceType())
}
