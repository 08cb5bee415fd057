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

// Package azureclients holds narrow, typed-SDK client interfaces and the
// root-discovery helpers a caller uses to seed the engine with starting
// identifiers. None of this is imported by pkg/tenantgraph: the engine's own
// per-resource fetches stay on the generic transport, since the discovery
// algorithm must work over resource types with no typed client at all.
package azureclients

import (
	"context"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// ListRootManagementGroups returns every management group the caller's
// credential can list at the tenant root scope. The management group API
// does not expose a "give me only roots" filter; the demo CLI hands every
// returned group to the engine and lets ParentResolver/ChildrenLister
// establish the real hierarchy.
func ListRootManagementGroups(ctx context.Context, client ManagementGroupsClient) ([]graphid.Ref, error) {
	var refs []graphid.Ref

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, mg := range page.Value {
			if mg == nil || mg.ID == nil {
				continue
			}
			refs = append(refs, graphid.Ref{ID: graphid.ID(*mg.ID), Type: graphid.ResourceTypeManagementGroups})
		}
	}

	return refs, nil
}

// ListAccessibleSubscriptions returns every subscription visible to the
// caller's credential, the other class of root identifier a traversal can
// start from when the caller has no management-group access at all.
func ListAccessibleSubscriptions(ctx context.Context, client SubscriptionsClient) ([]graphid.Ref, error) {
	var refs []graphid.Ref

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, sub := range page.Value {
			if sub == nil || sub.ID == nil {
				continue
			}
			refs = append(refs, graphid.Ref{ID: graphid.ID(*sub.ID), Type: graphid.ResourceTypeSubscriptions})
		}
	}

	return refs, nil
}
