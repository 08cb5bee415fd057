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
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
)

// PolicyDefinitionsClient is the subset of armpolicy.DefinitionsClient
// CheckPolicyDefinitionsAccess needs.
type PolicyDefinitionsClient interface {
	NewListPager(options *armpolicy.DefinitionsClientListOptions) *runtime.Pager[armpolicy.DefinitionsClientListResponse]
}

var _ PolicyDefinitionsClient = (*armpolicy.DefinitionsClient)(nil)

// CheckPolicyDefinitionsAccess fetches the first page of the client's bound
// subscription's policy definitions and discards it: the --include-policy
// counterpart to CheckRoleDefinitionsAccess, run once up front rather than
// surfacing a permission failure as a Diagnostic on every node.
func CheckPolicyDefinitionsAccess(ctx context.Context, client PolicyDefinitionsClient) error {
	pager := client.NewListPager(nil)
	if !pager.More() {
		return nil
	}
	if _, err := pager.NextPage(ctx); err != nil {
		return fmt.Errorf("listing policy definitions: %w", err)
	}
	return nil
}
