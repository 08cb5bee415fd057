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
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azure/azure-tenant-graph/pkg/armerr"
)

func TestApiVersionRegistryResolvesStableAndLatest(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/providers", http.StatusOK, providersListingBody)
	registry := NewApiVersionRegistry(transport, "sub1")

	stable, err := registry.ApiVersion(context.Background(), "Microsoft.Management/managementGroups", Stable)
	require.NoError(t, err)
	assert.Equal(t, "2023-04-01", stable, "stable must be the max date-shaped version, excluding the preview")

	latest, err := registry.ApiVersion(context.Background(), "Microsoft.Management/managementGroups", Latest)
	require.NoError(t, err)
	assert.Equal(t, "2023-04-01", latest, "latest is the lexicographic max regardless of shape")
}

func TestApiVersionRegistryBootstrapsOnce(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/providers", http.StatusOK, providersListingBody)
	registry := NewApiVersionRegistry(transport, "sub1")

	_, err := registry.ApiVersion(context.Background(), "Microsoft.Resources/subscriptions", Stable)
	require.NoError(t, err)
	_, err = registry.ApiVersion(context.Background(), "Microsoft.Resources/resourceGroups", Stable)
	require.NoError(t, err)

	assert.Equal(t, 1, transport.callCount("/subscriptions/sub1/providers"),
		"a second resolved-type lookup must not re-bootstrap")
}

func TestApiVersionRegistryConcurrentBootstrapCollapses(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/providers", http.StatusOK, providersListingBody)
	registry := NewApiVersionRegistry(transport, "sub1")

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = registry.ApiVersion(context.Background(), "Microsoft.Resources/subscriptions", Stable)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, transport.callCount("/subscriptions/sub1/providers"),
		"concurrent callers racing the bootstrap must share one listing call")
}

func TestApiVersionRegistryUnknownTypeAfterBootstrap(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/providers", http.StatusOK, providersListingBody)
	registry := NewApiVersionRegistry(transport, "sub1")

	_, err := registry.ApiVersion(context.Background(), "Microsoft.Nonexistent/thing", Stable)
	require.Error(t, err)
	var unknown *armerr.UnknownResourceType
	assert.True(t, errors.As(err, &unknown))
}

func TestApiVersionRegistryEmptyListingFails(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/providers", http.StatusOK, `{"value":[]}`)
	registry := NewApiVersionRegistry(transport, "sub1")

	_, err := registry.ApiVersion(context.Background(), "Microsoft.Resources/subscriptions", Stable)
	require.Error(t, err)
	var failed *armerr.ProviderDiscoveryFailed
	assert.True(t, errors.As(err, &failed))
}

func TestApiVersionRegistryInstall(t *testing.T) {
	registry := NewApiVersionRegistry(newFakeTransport(), "sub1")
	registry.Install([]Provider{
		{Namespace: "Microsoft.Resources", ResourceTypes: []ProviderResourceType{
			{ResourceType: "subscriptions", APIVersions: []string{"2021-01-01", "2022-12-01"}},
		}},
	})

	v, err := registry.ApiVersion(context.Background(), "Microsoft.Resources/subscriptions", Stable)
	require.NoError(t, err)
	assert.Equal(t, "2022-12-01", v)
}

func TestApiVersionRegistryReset(t *testing.T) {
	transport := newFakeTransport()
	transport.respond("/subscriptions/sub1/providers", http.StatusOK, providersListingBody)
	registry := NewApiVersionRegistry(transport, "sub1")

	_, err := registry.ApiVersion(context.Background(), "Microsoft.Resources/subscriptions", Stable)
	require.NoError(t, err)

	registry.Reset()

	_, err = registry.ApiVersion(context.Background(), "Microsoft.Resources/subscriptions", Stable)
	require.NoError(t, err)
	assert.Equal(t, 2, transport.callCount("/subscriptions/sub1/providers"), "Reset must force a fresh bootstrap")
}
