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
	"errors"

	"github.com/Azure/azure-tenant-graph/pkg/armerr"
)

// Diagnostic records a single non-aborting failure encountered while
// building one identifier: either the identifier's entire build failed
// (BulkFetcher) or one of its optional IAM/policy sub-queries did
// (NodeBuilder.BuildTolerant). The identifier the failure pertains to is
// always ID, so a caller can correlate a Diagnostic back to the input list
// even though the failed identifier has no corresponding StateNode.
type Diagnostic struct {
	ID  string
	Err error
}

// ParentLookupDenied reports whether this diagnostic originates from a
// permission failure while resolving a parent. In practice ParentResolver
// recovers these internally (§4.5) rather than surfacing them here, but the
// helper exists for callers partitioning a diagnostics collection by kind.
func (d Diagnostic) ParentLookupDenied() bool {
	var target *armerr.ParentLookupDenied
	return errors.As(d.Err, &target)
}

// ApiCallFailed reports whether this diagnostic wraps a non-200 provider
// response.
func (d Diagnostic) ApiCallFailed() bool {
	var target *armerr.ApiCallFailed
	return errors.As(d.Err, &target)
}

// PartitionByKind splits diagnostics into API-call failures and everything
// else (ambiguous identifiers, cycles, unknown types, provider discovery
// failures), the grouping a caller reporting a discovery run's health would
// want.
func PartitionByKind(diagnostics []Diagnostic) (apiFailures, other []Diagnostic) {
	for _, d := range diagnostics {
		if d.ApiCallFailed() {
			apiFailures = append(apiFailures, d)
		} else {
			other = append(other, d)
		}
	}
	return apiFailures, other
}
