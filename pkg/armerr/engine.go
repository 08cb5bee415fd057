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

package armerr

import "fmt"

// ProviderDiscoveryFailed is raised when ApiVersionRegistry's bootstrap
// listing call returns no providers. It is fatal at first use: nothing can
// resolve an API version without it.
type ProviderDiscoveryFailed struct {
	SubscriptionID string
	Cause          error
}

func (e *ProviderDiscoveryFailed) Error() string {
	return fmt.Sprintf("provider discovery failed for subscription %q: %v", e.SubscriptionID, e.Cause)
}

func (e *ProviderDiscoveryFailed) Unwrap() error { return e.Cause }

// UnknownResourceType is raised when a resource identifier matches none of
// the type-derivation rules. Fatal for that identifier.
type UnknownResourceType struct {
	ID string
}

func (e *UnknownResourceType) Error() string {
	return fmt.Sprintf("could not derive a resource type for id %q", e.ID)
}

// ApiCallFailed wraps a non-200 response from the resource-management API,
// decoded from the provider's own {error:{code,message}} envelope.
type ApiCallFailed struct {
	StatusCode int
	Code       string
	Message    string
	Path       string
}

func (e *ApiCallFailed) Error() string {
	return fmt.Sprintf("request to %q failed with status %d (%s): %s", e.Path, e.StatusCode, e.Code, e.Message)
}

// AsCloudError renders the failure as a CloudError, e.g. for callers that
// want to inspect or re-serialize it using the shared error shape.
func (e *ApiCallFailed) AsCloudError() *CloudError {
	return &CloudError{
		StatusCode: e.StatusCode,
		CloudErrorBody: &CloudErrorBody{
			Code:    e.Code,
			Message: e.Message,
			Target:  e.Path,
		},
	}
}

// AmbiguousIdentifier is raised when a request that was expected to resolve
// to a single record instead returned a list. Fatal for that identifier;
// the caller must narrow it.
type AmbiguousIdentifier struct {
	ID string
}

func (e *AmbiguousIdentifier) Error() string {
	return fmt.Sprintf("%q resolved to a list where a single record was expected", e.ID)
}

// ParentLookupDenied is raised when locating a node's parent fails due to
// insufficient permissions. Recovered locally by ParentResolver: logged as a
// warning and the parent is treated as null.
type ParentLookupDenied struct {
	ID    string
	Cause error
}

func (e *ParentLookupDenied) Error() string {
	return fmt.Sprintf("parent lookup denied for %q: %v", e.ID, e.Cause)
}

func (e *ParentLookupDenied) Unwrap() error { return e.Cause }

// CycleDetected is raised when walking a node's parent chain exceeds the
// maximum permitted depth. Fatal for that identifier.
type CycleDetected struct {
	ID    string
	Depth int
}

func (e *CycleDetected) Error() string {
	return fmt.Sprintf("parent chain for %q exceeded maximum depth %d", e.ID, e.Depth)
}
