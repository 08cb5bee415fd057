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

package graphid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/azure-tenant-graph/pkg/armerr"
)

func TestDeriveType(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected ResourceType
	}{
		{
			name:     "management group",
			id:       "/providers/Microsoft.Management/managementGroups/root",
			expected: "Microsoft.Management/managementGroups",
		},
		{
			name:     "subscription",
			id:       "/subscriptions/00000000-0000-0000-0000-000000000001",
			expected: ResourceTypeSubscriptions,
		},
		{
			name:     "subscriptions collection scope",
			id:       "/subscriptions",
			expected: ResourceTypeSubscriptions,
		},
		{
			name:     "resource group",
			id:       "/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/rg1",
			expected: ResourceTypeResourceGroups,
		},
		{
			name:     "resource groups collection scope",
			id:       "/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups",
			expected: ResourceTypeResourceGroups,
		},
		{
			name:     "generic resources collection scope",
			id:       "/subscriptions/00000000-0000-0000-0000-000000000001/resources",
			expected: ResourceTypeGenericResources,
		},
		{
			name:     "arm resource under a resource group",
			id:       "/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/rg1/providers/Microsoft.Storage/storageAccounts/acct1",
			expected: "Microsoft.Storage/storageAccounts",
		},
		{
			name:     "nested compound resource type",
			id:       "/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/rg1/providers/Microsoft.Network/virtualNetworks/vnet1/subnets/subnet1",
			expected: "Microsoft.Network/virtualNetworks/subnets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveType(ID(tt.id))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeriveTypeUnknown(t *testing.T) {
	_, err := DeriveType(ID("/not/a/recognized/shape"))
	require.Error(t, err)

	var unknown *armerr.UnknownResourceType
	assert.ErrorAs(t, err, &unknown)
}

// TestDeriveTypeCanonicalizationIdempotence is testable property 2: typeOf(id) == typeOf(lowercase(id)).
func TestDeriveTypeCanonicalizationIdempotence(t *testing.T) {
	ids := []string{
		"/providers/Microsoft.Management/managementGroups/root",
		"/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/RG1",
		"/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/rg1/providers/Microsoft.Storage/storageAccounts/Acct1",
	}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			upper, err := DeriveType(ID(id))
			require.NoError(t, err)

			lower, err := DeriveType(ID(id).Canonical())
			require.NoError(t, err)

			assert.Equal(t, strings.ToLower(string(upper)), strings.ToLower(string(lower)))
		})
	}
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "root", ShortName(ID("/providers/Microsoft.Management/managementGroups/root")))
	assert.Equal(t, "rg1", ShortName(ID("/subscriptions/x/resourceGroups/rg1")))
	assert.Equal(t, "rg1", ShortName(ID("/subscriptions/x/resourceGroups/rg1/")))
}

func TestIDHasPrefix(t *testing.T) {
	parent := ID("/subscriptions/X")
	child := ID("/subscriptions/x/resourceGroups/rg1")
	assert.True(t, child.HasPrefix(parent))
	assert.False(t, parent.HasPrefix(child))
}

func TestResourceGroupSubscriptionPrefix(t *testing.T) {
	id := ID("/subscriptions/00000000-0000-0000-0000-000000000001/resourceGroups/rg1")
	prefix, ok := ResourceGroupSubscriptionPrefix(id)
	require.True(t, ok)
	assert.Equal(t, ID("/subscriptions/00000000-0000-0000-0000-000000000001"), prefix)
}

func TestStripTrailingProviderSegment(t *testing.T) {
	id := ID("/subscriptions/x/resourceGroups/rg1/providers/Microsoft.Storage/storageAccounts/acct1")
	scope, ok := StripTrailingProviderSegment(id)
	require.True(t, ok)
	assert.Equal(t, ID("/subscriptions/x/resourceGroups/rg1"), scope)

	_, ok = StripTrailingProviderSegment(ID("/subscriptions/x/resourceGroups/rg1"))
	assert.False(t, ok)
}
