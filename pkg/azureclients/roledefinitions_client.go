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
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
)

// RoleDefinitionsClient is the subset of armauthorization.RoleDefinitionsClient
// CheckRoleDefinitionsAccess needs.
type RoleDefinitionsClient interface {
	NewListPager(scope string, options *armauthorization.RoleDefinitionsClientListOptions) *runtime.Pager[armauthorization.RoleDefinitionsClientListResponse]
}

var _ RoleDefinitionsClient = (*armauthorization.RoleDefinitionsClient)(nil)

// CheckRoleDefinitionsAccess fetches the first page of scope's role
// definitions and discards it: a pre-flight check the demo CLI runs before
// a --include-iam traversal, so a missing "Microsoft.Authorization/roleDefinitions/read"
// grant surfaces as one clear error up front instead of as a Diagnostic on
// every single node the traversal later visits.
func CheckRoleDefinitionsAccess(ctx context.Context, client RoleDefinitionsClient, scope string) error {
	pager := client.NewListPager(scope, nil)
	if !pager.More() {
		return nil
	}
	if _, err := pager.NextPage(ctx); err != nil {
		return fmt.Errorf("listing role definitions at %q: %w", scope, err)
	}
	return nil
}
