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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

func TestParentResolverManagementGroupDetails(t *testing.T) {
	router, _ := newTestRouter(newFakeTransport())
	resolver := NewParentResolver(router, NewParentHintMap())

	raw := json.RawMessage(`{"properties":{"details":{"parent":{"id":"/providers/Microsoft.Management/managementGroups/root"}}}}`)
	ref, err := resolver.Resolve(context.Background(), "/providers/Microsoft.Management/managementGroups/child1", graphid.ResourceTypeManagementGroups, raw, UseCache)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, graphid.ID("/providers/Microsoft.Management/managementGroups/root"), ref.ID)
}

func TestParentResolverManagementGroupRootHasNoParent(t *testing.T) {
	router, _ := newTestRouter(newFakeTransport())
	resolver := NewParentResolver(router, NewParentHintMap())

	raw := json.RawMessage(`{"properties":{"details":{}}}`)
	ref, err := resolver.Resolve(context.Background(), "/providers/Microsoft.Management/managementGroups/root", graphid.ResourceTypeManagementGroups, raw, UseCache)
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestParentResolverSubscriptionUsesHintShortCircuit(t *testing.T) {
	transport := newFakeTransport()
	router, _ := newTestRouter(transport)
	hints := NewParentHintMap()
	id := graphid.ID("/subscriptions/sub1")
	hints.Record(id, graphid.Ref{ID: "/providers/Microsoft.Management/managementGroups/mg1", Type: graphid.ResourceTypeManagementGroups})

	resolver := NewParentResolver(router, hints)
	ref, err := resolver.Resolve(context.Background(), id, graphid.ResourceTypeSubscriptions, nil, UseCache)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, graphid.ID("/providers/Microsoft.Management/managementGroups/mg1"), ref.ID)

	assert.Equal(t, 0, transport.totalCalls(), "a hint hit must short-circuit any transport call")
}

func TestParentResolverSubscriptionFallsBackToScan(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/providers/Microsoft.Management/managementGroups", http.StatusOK, `{
		"value": [{"id": "/providers/Microsoft.Management/managementGroups/mg1", "type": "Microsoft.Management/managementGroups"}]
	}`)
	transport.respond("/providers/Microsoft.Management/managementGroups/mg1/descendants", http.StatusOK, `{
		"value": [{"id": "/subscriptions/sub1", "type": "Microsoft.Resources/subscriptions",
		           "properties": {"parent": {"id": "/providers/Microsoft.Management/managementGroups/mg1"}}}]
	}`)
	router, _ := newTestRouter(transport)
	resolver := NewParentResolver(router, NewParentHintMap())

	ref, err := resolver.Resolve(context.Background(), "/subscriptions/sub1", graphid.ResourceTypeSubscriptions, nil, UseCache)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, graphid.ID("/providers/Microsoft.Management/managementGroups/mg1"), ref.ID)
}

func TestParentResolverSubscriptionScanToleratesPerMgDenial(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/providers/Microsoft.Management/managementGroups", http.StatusOK, `{
		"value": [
			{"id": "/providers/Microsoft.Management/managementGroups/denied", "type": "Microsoft.Management/managementGroups"},
			{"id": "/providers/Microsoft.Management/managementGroups/mg1", "type": "Microsoft.Management/managementGroups"}
		]
	}`)
	transport.respond("/providers/Microsoft.Management/managementGroups/denied/descendants", http.StatusForbidden,
		`{"error":{"code":"AuthorizationFailed","message":"denied"}}`)
	transport.respond("/providers/Microsoft.Management/managementGroups/mg1/descendants", http.StatusOK, `{
		"value": [{"id": "/subscriptions/sub1", "type": "Microsoft.Resources/subscriptions",
		           "properties": {"parent": {"id": "/providers/Microsoft.Management/managementGroups/mg1"}}}]
	}`)
	router, _ := newTestRouter(transport)
	resolver := NewParentResolver(router, NewParentHintMap())

	ref, err := resolver.Resolve(context.Background(), "/subscriptions/sub1", graphid.ResourceTypeSubscriptions, nil, UseCache)
	require.NoError(t, err, "a 403 on one management group's descendants must not fail the whole scan")
	require.NotNil(t, ref)
	assert.Equal(t, graphid.ID("/providers/Microsoft.Management/managementGroups/mg1"), ref.ID)
}

func TestParentResolverSubscriptionTopLevelDenialYieldsNilParent(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/providers/Microsoft.Management/managementGroups", http.StatusForbidden,
		`{"error":{"code":"AuthorizationFailed","message":"denied"}}`)
	router, _ := newTestRouter(transport)
	resolver := NewParentResolver(router, NewParentHintMap())

	ref, err := resolver.Resolve(context.Background(), "/subscriptions/sub1", graphid.ResourceTypeSubscriptions, nil, UseCache)
	require.NoError(t, err, "a denied top-level listing is recovered, not propagated")
	assert.Nil(t, ref)
}

func TestParentResolverResourceGroupPrefix(t *testing.T) {
	router, _ := newTestRouter(newFakeTransport())
	resolver := NewParentResolver(router, NewParentHintMap())

	id := graphid.ID("/subscriptions/sub1/resourceGroups/rg1")
	ref, err := resolver.Resolve(context.Background(), id, graphid.ResourceTypeResourceGroups, nil, UseCache)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, graphid.ID("/subscriptions/sub1"), ref.ID)
}

func TestParentResolverGenericStripsProviderSegment(t *testing.T) {
	router, _ := newTestRouter(newFakeTransport())
	resolver := NewParentResolver(router, NewParentHintMap())

	id := graphid.ID("/subscriptions/sub1/resourceGroups/rg1/providers/Microsoft.Network/virtualNetworks/vnet1/subnets/subnet1")
	ref, err := resolver.Resolve(context.Background(), id, graphid.ResourceType("Microsoft.Network/virtualNetworks/subnets"), nil, UseCache)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, graphid.ID("/subscriptions/sub1/resourceGroups/rg1/providers/Microsoft.Network/virtualNetworks/vnet1"), ref.ID)
}
