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
	"regexp"
	"strings"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Azure/azure-tenant-graph/pkg/armerr"
	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// bootstrapAPIVersion is the fixed api-version used for the one bulk
// provider-listing call ApiVersionRegistry makes to populate itself (§6);
// it cannot come from the registry itself, which would be circular.
const bootstrapAPIVersion = "2020-06-01"

var stableDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Provider is a decoded entry from the provider-listing response: one
// resource-provider namespace and the resource types it registers, each
// with the api-versions it supports.
type Provider struct {
	Namespace     string
	ResourceTypes []ProviderResourceType
}

// ProviderResourceType is one resource type entry within a Provider listing.
type ProviderResourceType struct {
	ResourceType string
	APIVersions  []string
}

// ApiVersionRegistry resolves "{namespace}/{type}" to an api-version string
// for the requested release channel, bootstrapped from one bulk
// provider-listing call per tenant (§4.1). It is backed by a concurrent map
// so concurrent resolvers never block each other, and a singleflight group
// so concurrent callers that all miss the registry before it is populated
// share one bootstrap call rather than each issuing their own.
type ApiVersionRegistry struct {
	transport      Transport
	subscriptionID string

	resolved     cmap.ConcurrentMap[string, string]
	group        singleflight.Group
	bootstrapped atomic.Bool
}

// NewApiVersionRegistry returns a registry that bootstraps itself (on first
// miss) by listing providers against subscriptionID — "the current
// authenticated context's default subscription" (§4.1).
func NewApiVersionRegistry(transport Transport, subscriptionID string) *ApiVersionRegistry {
	return &ApiVersionRegistry{
		transport:      transport,
		subscriptionID: subscriptionID,
		resolved:       cmap.New[string](),
	}
}

func registryKey(resourceType graphid.ResourceType, release Release) string {
	return strings.ToLower(fmt.Sprintf("%s (%s)", resourceType, release))
}

// ApiVersion resolves resourceType/release to an api-version string,
// bootstrapping the registry on first miss.
func (r *ApiVersionRegistry) ApiVersion(
	ctx context.Context, resourceType graphid.ResourceType, release Release) (string, error) {

	key := registryKey(resourceType, release)
	if v, ok := r.resolved.Get(key); ok {
		return v, nil
	}

	if err := r.ensureBootstrapped(ctx); err != nil {
		return "", err
	}

	if v, ok := r.resolved.Get(key); ok {
		return v, nil
	}

	return "", &armerr.UnknownResourceType{ID: string(resourceType)}
}

func (r *ApiVersionRegistry) ensureBootstrapped(ctx context.Context) error {
	if r.bootstrapped.Load() {
		return nil
	}

	_, err, _ := r.group.Do("bootstrap", func() (any, error) {
		if r.bootstrapped.Load() {
			return nil, nil
		}

		path := fmt.Sprintf("/subscriptions/%s/providers?api-version=%s", r.subscriptionID, bootstrapAPIVersion)

		status, body, sendErr := r.transport.SendRequest(ctx, http.MethodGet, path)
		if sendErr != nil {
			return nil, &armerr.ProviderDiscoveryFailed{SubscriptionID: r.subscriptionID, Cause: sendErr}
		}
		if status != http.StatusOK {
			apiErr := decodeAPIError(status, path, body)
			return nil, &armerr.ProviderDiscoveryFailed{SubscriptionID: r.subscriptionID, Cause: apiErr}
		}

		providers, decodeErr := DecodeProviderListing(body)
		if decodeErr != nil {
			return nil, &armerr.ProviderDiscoveryFailed{SubscriptionID: r.subscriptionID, Cause: decodeErr}
		}
		if len(providers) == 0 {
			return nil, &armerr.ProviderDiscoveryFailed{SubscriptionID: r.subscriptionID}
		}

		r.install(providers)
		r.bootstrapped.Store(true)
		return nil, nil
	})

	return err
}

// Install feeds externally-sourced provider listings (e.g. from a typed SDK
// client instead of the raw transport, see pkg/azureclients) directly into
// the registry, computing stable/latest the same way the transport-driven
// bootstrap does. Useful for callers that already have a ProvidersClient
// wired for other reasons and would rather not pay for a second listing
// call through the generic transport.
func (r *ApiVersionRegistry) Install(providers []Provider) {
	r.install(providers)
	r.bootstrapped.Store(true)
}

func (r *ApiVersionRegistry) install(providers []Provider) {
	for _, p := range providers {
		for _, rt := range p.ResourceTypes {
			fullType := graphid.ResourceType(p.Namespace + "/" + rt.ResourceType)
			stable, latest := computeReleases(rt.APIVersions)
			if latest != "" {
				r.resolved.Set(registryKey(fullType, Latest), latest)
			}
			if stable != "" {
				r.resolved.Set(registryKey(fullType, Stable), stable)
			}
		}
	}
}

// Reset clears resolved versions and forces the next ApiVersion call to
// bootstrap again.
func (r *ApiVersionRegistry) Reset() {
	r.resolved.Clear()
	r.bootstrapped.Store(false)
}

func computeReleases(versions []string) (stable, latest string) {
	for _, v := range versions {
		if v > latest {
			latest = v
		}
		if stableDatePattern.MatchString(v) && v > stable {
			stable = v
		}
	}
	return stable, latest
}

type providerListingResponse struct {
	Value []struct {
		Namespace     string `json:"namespace"`
		ResourceTypes []struct {
			ResourceType string   `json:"resourceType"`
			APIVersions  []string `json:"apiVersions"`
		} `json:"resourceTypes"`
	} `json:"value"`
}

// DecodeProviderListing decodes a `GET .../providers` response body into
// Provider records.
func DecodeProviderListing(body []byte) ([]Provider, error) {
	var parsed providerListingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding provider listing: %w", err)
	}

	providers := make([]Provider, 0, len(parsed.Value))
	for _, p := range parsed.Value {
		resourceTypes := make([]ProviderResourceType, 0, len(p.ResourceTypes))
		for _, rt := range p.ResourceTypes {
			resourceTypes = append(resourceTypes, ProviderResourceType{
				ResourceType: rt.ResourceType,
				APIVersions:  rt.APIVersions,
			})
		}
		providers = append(providers, Provider{Namespace: p.Namespace, ResourceTypes: resourceTypes})
	}

	return providers, nil
}
