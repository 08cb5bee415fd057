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

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// ResourceGroupsClient is the subset of armresources.ResourceGroupsClient the
// demo CLI uses to confirm an explicitly supplied --root-id that parses as
// a resource group actually exists before traversal starts.
type ResourceGroupsClient interface {
	Get(ctx context.Context, resourceGroupName string, options *armresources.ResourceGroupsClientGetOptions) (
		armresources.ResourceGroupsClientGetResponse, error)
}

var _ ResourceGroupsClient = (*armresources.ResourceGroupsClient)(nil)
