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
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Azure/azure-tenant-graph/internal/metrics"
	"github.com/Azure/azure-tenant-graph/pkg/armerr"
	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// RequestRouter is the single choke point between NodeBuilder/BulkFetcher
// and the network: it composes a path, decides whether the raw-response
// cache can answer it, and collapses the `{value:[...]}` listing envelope
// ARM wraps every collection response in down to a plain slice (§4.2).
type RequestRouter struct {
	transport Transport
	versions  *ApiVersionRegistry
	raw       *RawResponseCache

	metrics *metrics.Collectors
}

// NewRequestRouter wires a RequestRouter over transport, using versions to
// resolve api-version query parameters and raw as the response cache.
func NewRequestRouter(transport Transport, versions *ApiVersionRegistry, raw *RawResponseCache) *RequestRouter {
	return &RequestRouter{transport: transport, versions: versions, raw: raw}
}

// WithMetrics attaches a metrics.Collectors that Get reports cache hits and
// API errors against. Left unset, these recordings are a no-op.
func (r *RequestRouter) WithMetrics(m *metrics.Collectors) *RequestRouter {
	r.metrics = m
	return r
}

// appendQuery adds a key=value pair to path, using "?" if path carries no
// query string yet and "&" otherwise — the composition rule §4.2 names.
func appendQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%s", path, sep, key, value)
}

// Path composes an absolute request path for id's primary record (or
// listing scope), resolving id's resource type and the matching api-version
// for release.
func (r *RequestRouter) Path(ctx context.Context, id graphid.ID, release Release) (string, error) {
	resourceType, err := graphid.DeriveType(id)
	if err != nil {
		return "", err
	}
	return r.PathForType(ctx, id, resourceType, release)
}

// PathForType composes a path when the caller already knows id's resource
// type (e.g. a children listing whose type is fixed by the listing rule
// rather than derived from id itself).
func (r *RequestRouter) PathForType(
	ctx context.Context, id graphid.ID, resourceType graphid.ResourceType, release Release) (string, error) {

	apiVersion, err := r.versions.ApiVersion(ctx, resourceType, release)
	if err != nil {
		return "", err
	}
	return appendQuery(string(id), "api-version", apiVersion), nil
}

// Get issues a GET for path, consulting and populating the raw-response
// cache per mode: UseCache returns a hit without calling the transport;
// SkipCache always calls the transport but still writes a 200 result back, so
// a later UseCache call benefits (§4.2). Non-200 responses are never cached,
// so a later UseCache call retries them.
func (r *RequestRouter) Get(ctx context.Context, path string, mode CacheMode) (CachedResponse, error) {
	if mode == UseCache {
		if cached, ok := r.raw.Get(path); ok {
			r.metrics.RecordCacheHit("raw")
			return cached, nil
		}
	}

	status, body, err := r.transport.SendRequest(ctx, http.MethodGet, path)
	if err != nil {
		return CachedResponse{}, fmt.Errorf("requesting %q: %w", path, err)
	}

	resp := CachedResponse{StatusCode: status, Body: body}

	if status != http.StatusOK {
		r.metrics.RecordApiError(strconv.Itoa(status))
		return resp, decodeAPIError(status, path, body)
	}

	r.raw.Set(path, resp)
	return resp, nil
}

// listing is the envelope for a collection GET: {"value": [...]}. A
// direct-record GET returns the bare JSON object instead.
type listing struct {
	Value []json.RawMessage `json:"value"`
}

// Decode interprets resp.Body as either a singleton record or a
// `{value:[...]}` listing, collapsing the latter to its element slice. The
// bool result reports which of the two the body was: a single record comes
// back as a one-element slice with false, a listing (of any length) with
// true. A listing with zero elements decodes to an empty, non-nil slice of
// raw messages.
func Decode(resp CachedResponse) ([]json.RawMessage, bool, error) {
	var probe listing
	if err := json.Unmarshal(resp.Body, &probe); err == nil && probe.Value != nil {
		return probe.Value, true, nil
	}

	// Not a {value:[...]} envelope: treat the whole body as one record.
	return []json.RawMessage{resp.Body}, false, nil
}

// decodeAPIError decodes a non-200 response body as a CloudError envelope
// and returns the corresponding ApiCallFailed. A body that fails to parse as
// the envelope still yields an ApiCallFailed, with the raw body text as the
// message, so callers are never handed a bare "status N" with no context.
func decodeAPIError(status int, path string, body []byte) error {
	var envelope struct {
		Error armerr.CloudErrorBody `json:"error"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == "" {
		return &armerr.ApiCallFailed{
			StatusCode: status,
			Code:       "Unknown",
			Message:    strings.TrimSpace(string(body)),
			Path:       path,
		}
	}

	return &armerr.ApiCallFailed{
		StatusCode: status,
		Code:       envelope.Error.Code,
		Message:    envelope.Error.Message,
		Path:       path,
	}
}
