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
	"context"
	"net/http"
	"strings"
	"sync"
)

// route is one registered response for fakeTransport: a case-insensitive
// prefix match against the requested path (ignoring its query string) so
// tests don't need to spell out every api-version the registry resolves.
type route struct {
	pathPrefix string
	status     int
	body       string
}

// fakeTransport is the hand-rolled Transport double every tenantgraph test
// exercises against, with a call-count recorder so assertions like "zero
// additional transport calls" (S2) or "only IAM/policy sub-queries, not the
// primary GET" (S6) are first-class expectations rather than counter
// variables threaded through test bodies.
type fakeTransport struct {
	mu     sync.Mutex
	routes []route
	calls  []string // recorded full paths, in call order
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{}
}

// respond registers a response for any request whose path (sans query
// string) starts with pathPrefix, case-insensitively. Later registrations
// take precedence over earlier ones with the same prefix.
func (f *fakeTransport) respond(pathPrefix string, status int, body string) *fakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append([]route{{pathPrefix: pathPrefix, status: status, body: body}}, f.routes...)
	return f
}

func (f *fakeTransport) SendRequest(_ context.Context, _ string, path string) (int, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	routes := f.routes
	f.mu.Unlock()

	bare := path
	if idx := strings.Index(bare, "?"); idx >= 0 {
		bare = bare[:idx]
	}
	lowerBare := strings.ToLower(bare)

	for _, r := range routes {
		if strings.HasPrefix(lowerBare, strings.ToLower(r.pathPrefix)) {
			return r.status, []byte(r.body), nil
		}
	}

	return http.StatusNotFound, []byte(`{"error":{"code":"NotFound","message":"no route registered"}}`), nil
}

// callCount returns how many SendRequest calls have been made whose path
// (sans query string) starts with pathPrefix, case-insensitively.
func (f *fakeTransport) callCount(pathPrefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	lowerPrefix := strings.ToLower(pathPrefix)
	count := 0
	for _, c := range f.calls {
		bare := c
		if idx := strings.Index(bare, "?"); idx >= 0 {
			bare = bare[:idx]
		}
		if strings.HasPrefix(strings.ToLower(bare), lowerPrefix) {
			count++
		}
	}
	return count
}

func (f *fakeTransport) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// providersListingBody is a minimal bootstrap response covering every
// resource type the test suite's fixtures need an api-version for.
const providersListingBody = `{
  "value": [
    {
      "namespace": "Microsoft.Management",
      "resourceTypes": [
        {"resourceType": "managementGroups", "apiVersions": ["2023-04-01", "2020-05-01", "2021-04-01-preview"]}
      ]
    },
    {
      "namespace": "Microsoft.Resources",
      "resourceTypes": [
        {"resourceType": "subscriptions", "apiVersions": ["2022-12-01", "2021-01-01"]},
        {"resourceType": "resourceGroups", "apiVersions": ["2022-09-01"]},
        {"resourceType": "resources", "apiVersions": ["2022-09-01"]}
      ]
    },
    {
      "namespace": "Microsoft.Authorization",
      "resourceTypes": [
        {"resourceType": "roleDefinitions", "apiVersions": ["2022-04-01"]},
        {"resourceType": "roleAssignments", "apiVersions": ["2022-04-01"]},
        {"resourceType": "policyDefinitions", "apiVersions": ["2021-06-01"]},
        {"resourceType": "policySetDefinitions", "apiVersions": ["2021-06-01"]},
        {"resourceType": "policyAssignments", "apiVersions": ["2022-06-01"]}
      ]
    },
    {
      "namespace": "Microsoft.Network",
      "resourceTypes": [
        {"resourceType": "virtualNetworks/subnets", "apiVersions": ["2023-05-01"]}
      ]
    }
  ]
}`

// newTestRouter wires a RequestRouter (and its ApiVersionRegistry) over
// transport, pre-seeding the bootstrap provider listing so tests don't pay
// for it repeatedly or need to special-case its call count.
func newTestRouter(transport *fakeTransport) (*RequestRouter, *ApiVersionRegistry) {
	transport.respond("/subscriptions/00000000-0000-0000-0000-00000000000b/providers", http.StatusOK, providersListingBody)
	versions := NewApiVersionRegistry(transport, "00000000-0000-0000-0000-00000000000b")
	raw := NewRawResponseCache(0)
	return NewRequestRouter(transport, versions, raw), versions
}

func newTestEngine(transport *fakeTransport) (*NodeBuilder, *StateCache, *ParentHintMap) {
	router, _ := newTestRouter(transport)
	cache := NewStateCache()
	hints := NewParentHintMap()
	children := NewChildrenLister(router, hints)
	parents := NewParentResolver(router, hints)
	return NewNodeBuilder(router, cache, children, parents), cache, hints
}
