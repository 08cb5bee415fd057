// Copyright 2026 Microsoft Corporation
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

package azureclients

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/Azure/azure-tenant-graph/pkg/tenantgraph"
)

// ResourceProvidersClient is the subset of armresources.ProvidersClient
// ListResourceProviders needs: the bulk listing pager, not the
// single-namespace Get, since ApiVersionRegistry.Install wants every
// provider's full api-version table in one pass.
type ResourceProvidersClient interface {
	NewListPager(options *armresources.ProvidersClientListOptions) *runtime.Pager[armresources.ProvidersClientListResponse]
}

var _ ResourceProvidersClient = (*armresources.ProvidersClient)(nil)

// ListResourceProviders walks client's provider listing to completion and
// converts it to the shape tenantgraph.ApiVersionRegistry.Install consumes —
// a typed-SDK alternative to the registry's own lazy, raw-transport
// bootstrap call for a caller that already has a ProvidersClient wired (the
// demo CLI's Complete builds one to pre-populate the registry).
func ListResourceProviders(ctx context.Context, client ResourceProvidersClient) ([]tenantgraph.Provider, error) {
	var providers []tenantgraph.Provider

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Value {
			if p == nil || p.Namespace == nil {
				continue
			}
			resourceTypes := make([]tenantgraph.ProviderResourceType, 0, len(p.ResourceTypes))
			for _, rt := range p.ResourceTypes {
				if rt == nil || rt.ResourceType == nil {
					continue
				}
				versions := make([]string, 0, len(rt.APIVersions))
				for _, v := range rt.APIVersions {
					if v != nil {
						versions = append(versions, *v)
					}
				}
				resourceTypes = append(resourceTypes, tenantgraph.ProviderResourceType{
					ResourceType: *rt.ResourceType,
					APIVersions:  versions,
				})
			}
			providers = append(providers, tenantgraph.Provider{
				Namespace:     *p.Namespace,
				ResourceTypes: resourceTypes,
			})
		}
	}

	return providers, nil
}
