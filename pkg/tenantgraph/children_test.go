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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

func TestChildrenListerManagementGroupPartitionsDirectAndLinked(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/providers/Microsoft.Management/managementGroups/root/descendants", http.StatusOK, `{
		"value": [
			{"id": "/providers/Microsoft.Management/managementGroups/child1", "type": "Microsoft.Management/managementGroups",
			 "properties": {"parent": {"id": "/providers/Microsoft.Management/managementGroups/root"}}},
			{"id": "/subscriptions/00000000-0000-0000-0000-000000000099", "type": "Microsoft.Resources/subscriptions",
			 "properties": {"parent": {"id": "/providers/Microsoft.Management/managementGroups/child1"}}}
		]
	}`)
	router, _ := newTestRouter(transport)
	hints := NewParentHintMap()
	lister := NewChildrenLister(router, hints)

	id := graphid.ID("/providers/Microsoft.Management/managementGroups/root")
	children, linked, err := lister.List(context.Background(), id, graphid.ResourceTypeManagementGroups, UseCache)
	require.NoError(t, err)

	require.Len(t, children, 1)
	assert.Equal(t, graphid.ID("/providers/Microsoft.Management/managementGroups/child1"), children[0].ID)

	require.Len(t, linked, 1)
	assert.Equal(t, graphid.ID("/subscriptions/00000000-0000-0000-0000-000000000099"), linked[0].ID)

	// Every descendant, direct or linked, must leave a parent hint behind.
	hint, ok := hints.Lookup(graphid.ID("/subscriptions/00000000-0000-0000-0000-000000000099"))
	require.True(t, ok)
	assert.Equal(t, graphid.ID("/providers/Microsoft.Management/managementGroups/child1"), hint.ID)
}

func TestChildrenListerSubscriptionListsResourceGroups(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/resourceGroups", http.StatusOK, `{
		"value": [{"id": "/subscriptions/sub1/resourceGroups/rg1", "type": "Microsoft.Resources/resourceGroups"}]
	}`)
	router, _ := newTestRouter(transport)
	lister := NewChildrenLister(router, NewParentHintMap())

	children, linked, err := lister.List(context.Background(), "/subscriptions/sub1", graphid.ResourceTypeSubscriptions, UseCache)
	require.NoError(t, err)
	assert.Nil(t, linked)
	require.Len(t, children, 1)
	assert.Equal(t, graphid.ID("/subscriptions/sub1/resourceGroups/rg1"), children[0].ID)
}

func TestChildrenListerResourceGroupListsResources(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/resourceGroups/rg1/resources", http.StatusOK, `{
		"value": [{"id": "/subscriptions/sub1/resourceGroups/rg1/providers/Microsoft.Network/virtualNetworks/vnet1", "type": "Microsoft.Network/virtualNetworks"}]
	}`)
	router, _ := newTestRouter(transport)
	lister := NewChildrenLister(router, NewParentHintMap())

	children, linked, err := lister.List(context.Background(), "/subscriptions/sub1/resourceGroups/rg1", graphid.ResourceTypeResourceGroups, UseCache)
	require.NoError(t, err)
	assert.Nil(t, linked)
	require.Len(t, children, 1)
}

func TestChildrenListerUnknownTypeReturnsNothing(t *testing.T) {
	router, _ := newTestRouter(newFakeTransport())
	lister := NewChildrenLister(router, NewParentHintMap())

	children, linked, err := lister.List(context.Background(), "/subscriptions/sub1/x", graphid.ResourceType("Microsoft.Network/virtualNetworks"), UseCache)
	require.NoError(t, err)
	assert.Nil(t, children)
	assert.Nil(t, linked)
}
