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
	"fmt"
	"strings"

	azcorearm "github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
)

// ParseResourceGroupScopedResourceID parses rawResourceID and validates that
// it is a resource-group-scoped Azure Resource ID of the given resourceType.
// Used by tenantgraph's resource-group listing decode to validate each
// element of a /resources listing against its own derived type rather than
// trusting the listing's echoed shape as-is.
func ParseResourceGroupScopedResourceID(
	rawResourceID string, resourceType azcorearm.ResourceType) (azcorearm.ResourceID, error) {

	res, err := azcorearm.ParseResourceID(rawResourceID)
	if err != nil {
		return azcorearm.ResourceID{}, fmt.Errorf("'%s' is not a valid Azure Resource ID: %w", rawResourceID, err)
	}

	if !strings.EqualFold(res.ResourceType.String(), resourceType.String()) {
		return azcorearm.ResourceID{},
			fmt.Errorf("'%s' is not a valid '%s' Resource ID", rawResourceID, resourceType)
	}

	if res.SubscriptionID == "" {
		return azcorearm.ResourceID{},
			fmt.Errorf("error parsing '%s': subscription id could not be parsed", rawResourceID)
	}

	if res.ResourceGroupName == "" {
		return azcorearm.ResourceID{},
			fmt.Errorf("error parsing '%s': resource group could not be parsed", rawResourceID)
	}

	if res.Name == "" {
		return azcorearm.ResourceID{}, fmt.Errorf(
			"error parsing '%s': '%s' resource name could not be parsed", resourceType, rawResourceID,
		)
	}

	return *res, nil
}

// ParseRoleDefinitionResourceID parses an Azure role-definition Resource ID.
// Used by tenantgraph's IAM sub-query decode to validate each role
// definition listing element before it is normalized to an {id,type} ref.
func ParseRoleDefinitionResourceID(rawRoleDefinitionResourceID string) (azcorearm.ResourceID, error) {
	roleDefinitionResourceType, err := azcorearm.ParseResourceType("Microsoft.Authorization/roleDefinitions")
	if err != nil {
		return azcorearm.ResourceID{}, fmt.Errorf("error parsing role definition resource type: %w", err)
	}

	res, err := azcorearm.ParseResourceID(rawRoleDefinitionResourceID)
	if err != nil {
		return azcorearm.ResourceID{},
			fmt.Errorf("'%s' is not a valid Azure Resource ID: %w", rawRoleDefinitionResourceID, err)
	}

	if !strings.EqualFold(res.ResourceType.String(), roleDefinitionResourceType.String()) {
		return azcorearm.ResourceID{},
			fmt.Errorf("'%s' is not a valid '%s' Resource ID", rawRoleDefinitionResourceID, roleDefinitionResourceType)
	}

	return *res, nil
}

// ParseResourceGroupResourceID parses and validates an Azure Resource Group
// Resource ID string. Used by tenantgraph's subscription resource-group
// listing decode, and by the demo CLI to validate an explicitly supplied
// resource-group root before starting a traversal from it.
func ParseResourceGroupResourceID(rawResourceGroupResourceID string) (azcorearm.ResourceID, error) {
	resourceGroupResourceType, err := azcorearm.ParseResourceType("Microsoft.Resources/resourceGroups")
	if err != nil {
		return azcorearm.ResourceID{}, fmt.Errorf("error parsing resource group resource type: %w", err)
	}

	res, err := azcorearm.ParseResourceID(rawResourceGroupResourceID)
	if err != nil {
		return azcorearm.ResourceID{},
			fmt.Errorf("'%s' is not a valid Azure Resource ID: %w", rawResourceGroupResourceID, err)
	}

	if !strings.EqualFold(res.ResourceType.String(), resourceGroupResourceType.String()) {
		return azcorearm.ResourceID{},
			fmt.Errorf("'%s' is not a valid '%s' Resource ID", rawResourceGroupResourceID, resourceGroupResourceType)
	}

	return *res, nil
}
