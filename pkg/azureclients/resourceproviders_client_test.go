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
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResourceProvidersClient struct {
	namespace    string
	resourceType string
	apiVersions  []string
}

func (f *fakeResourceProvidersClient) NewListPager(
	_ *armresources.ProvidersClientListOptions,
) *runtime.Pager[armresources.ProvidersClientListResponse] {

	served := false
	return runtime.NewPager(runtime.PagingHandler[armresources.ProvidersClientListResponse]{
		More: func(armresources.ProvidersClientListResponse) bool { return !served },
		Fetcher: func(context.Context, *armresources.ProvidersClientListResponse) (
			armresources.ProvidersClientListResponse, error) {
			served = true

			versions := make([]*string, len(f.apiVersions))
			for i := range f.apiVersions {
				versions[i] = strptr(f.apiVersions[i])
			}

			var resp armresources.ProvidersClientListResponse
			resp.Value = []*armresources.Provider{
				{
					Namespace: strptr(f.namespace),
					ResourceTypes: []*armresources.ProviderResourceType{
						{ResourceType: strptr(f.resourceType), APIVersions: versions},
					},
				},
			}
			return resp, nil
		},
	})
}

func TestListResourceProviders(t *testing.T) {
	client := &fakeResourceProvidersClient{
		namespace:    "Microsoft.Resources",
		resourceType: "resourceGroups",
		apiVersions:  []string{"2022-09-01", "2021-01-01"},
	}

	providers, err := ListResourceProviders(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "Microsoft.Resources", providers[0].Namespace)
	require.Len(t, providers[0].ResourceTypes, 1)
	assert.Equal(t, "resourceGroups", providers[0].ResourceTypes[0].ResourceType)
	assert.Equal(t, []string{"2022-09-01", "2021-01-01"}, providers[0].ResourceTypes[0].APIVersions)
}
