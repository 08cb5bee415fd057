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

// Package tenantgraph is the discovery and caching engine: it walks a
// resource identifier down through its descendants, resolving API versions,
// deduplicating fetches through two interlocking caches, and assembling
// StateNode records. Authentication and HTTP transport are out of scope —
// the engine only depends on the narrow Transport interface below.
package tenantgraph

import "context"

// Transport is the authenticated HTTP primitive the engine consumes. It is
// intentionally minimal: the engine only ever issues GET requests, and the
// caller is responsible for authentication, retries below the transport
// layer, and TLS. See internal/azsdk for the production implementation over
// the generic ARM request pipeline.
type Transport interface {
	// SendRequest issues method against path (an absolute path plus query
	// string, not a full URL) and returns the raw status code and response
	// body. The engine decides how to interpret the body.
	SendRequest(ctx context.Context, method, path string) (statusCode int, body []byte, err error)
}
