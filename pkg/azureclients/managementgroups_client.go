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
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/managementgroups/armmanagementgroups"
)

// ManagementGroupsClient is the subset of armmanagementgroups.Client the
// root-discovery helpers in this package need. Only methods actually called
// from this module belong here; add to the interface (and every
// implementation) before calling anything new on the real client.
type ManagementGroupsClient interface {
	NewListPager(options *armmanagementgroups.ClientListOptions) *runtime.Pager[armmanagementgroups.ClientListResponse]
}

var _ ManagementGroupsClient = (*armmanagementgroups.Client)(nil)
