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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/managementgroups/armmanagementgroups"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armpolicy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Azure/azure-tenant-graph/internal/azsdk"
	"github.com/Azure/azure-tenant-graph/internal/metrics"
	"github.com/Azure/azure-tenant-graph/internal/obslog"
	"github.com/Azure/azure-tenant-graph/pkg/azureclients"
	"github.com/Azure/azure-tenant-graph/pkg/graphid"
	"github.com/Azure/azure-tenant-graph/pkg/tenantgraph"
)

// DefaultOptions returns the flag defaults tenantgraphctl starts from.
func DefaultOptions() *RawOptions {
	return &RawOptions{
		IncludeManagementGroups: true,
		IncludeSubscriptions:    true,
		IncludeResourceGroups:   true,
		IncludeResources:        true,
		Recurse:                 true,
		ThrottleLimit:           4,
		CloudEndpoint:           "https://management.azure.com",
	}
}

// RawOptions holds unvalidated input values, one field per flag.
type RawOptions struct {
	RootIDs        []string
	DiscoverRoots  bool
	SubscriptionID string

	IncludeManagementGroups bool
	IncludeSubscriptions    bool
	IncludeResourceGroups   bool
	IncludeResources        bool
	IncludeIAM              bool
	IncludePolicy           bool

	Recurse        bool
	ExcludePathIDs []string
	ThrottleLimit  int

	CloudEndpoint string
	MetricsAddr   string
	LogVerbosity  int
}

func (o *RawOptions) BindOptions(cmd *cobra.Command) error {
	cmd.Flags().StringSliceVar(&o.RootIDs, "root-id", o.RootIDs,
		"Identifier to start traversal from. Repeatable.")
	cmd.Flags().BoolVar(&o.DiscoverRoots, "discover-roots", o.DiscoverRoots,
		"Seed traversal roots from every management group and subscription the credential can list.")
	cmd.Flags().StringVar(&o.SubscriptionID, "subscription-id", o.SubscriptionID,
		"Subscription used to bootstrap the API-version registry's provider listing.")

	cmd.Flags().BoolVar(&o.IncludeManagementGroups, "include-management-groups", o.IncludeManagementGroups,
		"Follow management group children during recursion.")
	cmd.Flags().BoolVar(&o.IncludeSubscriptions, "include-subscriptions", o.IncludeSubscriptions,
		"Follow subscription children during recursion.")
	cmd.Flags().BoolVar(&o.IncludeResourceGroups, "include-resource-groups", o.IncludeResourceGroups,
		"Follow resource group children during recursion.")
	cmd.Flags().BoolVar(&o.IncludeResources, "include-resources", o.IncludeResources,
		"Follow individual resource children during recursion.")
	cmd.Flags().BoolVar(&o.IncludeIAM, "include-iam", o.IncludeIAM,
		"Fetch role definitions and role assignments for every discovered node.")
	cmd.Flags().BoolVar(&o.IncludePolicy, "include-policy", o.IncludePolicy,
		"Fetch policy definitions, policy set definitions and policy assignments for every discovered node.")

	cmd.Flags().BoolVar(&o.Recurse, "recurse", o.Recurse,
		"Recurse into discovered children. False builds only the root identifiers.")
	cmd.Flags().StringSliceVar(&o.ExcludePathIDs, "exclude-path-id", o.ExcludePathIDs,
		"Identifier to prune from traversal (exact, case-insensitive match); its children are not followed from it, but descendants listed by another node are still visited. Repeatable.")
	cmd.Flags().IntVar(&o.ThrottleLimit, "throttle-limit", o.ThrottleLimit,
		"Concurrent worker count per BulkFetcher pass. 0 is serial and reuses cached nodes (uncached ids are still fetched), 1 is serial.")

	cmd.Flags().StringVar(&o.CloudEndpoint, "cloud-endpoint", o.CloudEndpoint, "ARM resource manager endpoint.")
	cmd.Flags().StringVar(&o.MetricsAddr, "metrics-addr", o.MetricsAddr,
		"Address to serve Prometheus metrics on during the run, e.g. \":9090\". Empty disables metrics.")
	cmd.Flags().IntVarP(&o.LogVerbosity, "verbosity", "v", o.LogVerbosity, "Log verbosity level.")

	return nil
}

// validatedOptions is a private wrapper enforcing Validate() before Complete().
type validatedOptions struct {
	*RawOptions

	discoveryMode  tenantgraph.DiscoveryMode
	excludePathIDs map[graphid.ID]struct{}
}

type ValidatedOptions struct {
	*validatedOptions
}

func (o *RawOptions) Validate() (*ValidatedOptions, error) {
	if len(o.RootIDs) == 0 && !o.DiscoverRoots {
		return nil, fmt.Errorf("at least one --root-id is required unless --discover-roots is set")
	}
	if o.ThrottleLimit < 0 {
		return nil, fmt.Errorf("--throttle-limit must be >= 0, got %d", o.ThrottleLimit)
	}

	discoveryMode := tenantgraph.ExcludeBoth
	switch {
	case o.IncludeIAM && o.IncludePolicy:
		discoveryMode = tenantgraph.IncludeBoth
	case o.IncludeIAM:
		discoveryMode = tenantgraph.IncludeIAM
	case o.IncludePolicy:
		discoveryMode = tenantgraph.IncludePolicy
	}

	excludeSet := make(map[graphid.ID]struct{}, len(o.ExcludePathIDs))
	for _, id := range o.ExcludePathIDs {
		excludeSet[graphid.ID(id).Canonical()] = struct{}{}
	}

	return &ValidatedOptions{
		validatedOptions: &validatedOptions{
			RawOptions:     o,
			discoveryMode:  discoveryMode,
			excludePathIDs: excludeSet,
		},
	}, nil
}

// completedOptions is a private wrapper enforcing Complete() before Run().
type completedOptions struct {
	fetcher     *tenantgraph.BulkFetcher
	roots       []graphid.ID
	discoverOpt DiscoverOptions

	metricsRegistry *prometheus.Registry
	metricsAddr     string
}

type Options struct {
	*completedOptions
}

// Complete builds the engine stack, resolves traversal roots (including, if
// requested, discovering them from the Azure management-group and
// subscription listing APIs), and returns a fully runnable Options.
func (o *ValidatedOptions) Complete(ctx context.Context) (*Options, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("acquiring Azure credential: %w", err)
	}

	registry := prometheus.NewRegistry()
	collectors := metrics.New(registry)

	transport, err := azsdk.NewPipelineTransport(cred, azsdk.ComponentCLI, o.CloudEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building ARM transport: %w", err)
	}

	versions := tenantgraph.NewApiVersionRegistry(transport, o.SubscriptionID)
	if o.SubscriptionID != "" {
		if providersClient, clientErr := armresources.NewProvidersClient(o.SubscriptionID, cred, nil); clientErr == nil {
			if providers, listErr := azureclients.ListResourceProviders(ctx, providersClient); listErr == nil {
				// Best effort: a failure here just leaves the registry to
				// bootstrap itself lazily off the raw transport instead.
				versions.Install(providers)
			}
		}
	}

	raw := tenantgraph.NewRawResponseCache(4096)
	router := tenantgraph.NewRequestRouter(transport, versions, raw).WithMetrics(collectors)
	cache := tenantgraph.NewStateCache()
	hints := tenantgraph.NewParentHintMap()
	children := tenantgraph.NewChildrenLister(router, hints)
	parents := tenantgraph.NewParentResolver(router, hints)
	builder := tenantgraph.NewNodeBuilder(router, cache, children, parents).WithMetrics(collectors)
	fetcher := tenantgraph.NewBulkFetcher(builder)

	if err := validateResourceGroupRoots(ctx, cred, o.RootIDs); err != nil {
		return nil, err
	}

	roots := make([]graphid.ID, 0, len(o.RootIDs))
	for _, id := range o.RootIDs {
		roots = append(roots, graphid.ID(id))
	}

	if o.DiscoverRoots {
		discovered, err := discoverRoots(ctx, cred)
		if err != nil {
			return nil, fmt.Errorf("discovering traversal roots: %w", err)
		}
		roots = append(roots, discovered...)
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("no traversal roots: supply --root-id or --discover-roots")
	}

	if err := checkDiscoveryAccess(ctx, cred, o.RawOptions, string(roots[0])); err != nil {
		return nil, err
	}

	return &Options{
		completedOptions: &completedOptions{
			fetcher: fetcher,
			roots:   roots,
			discoverOpt: DiscoverOptions{
				Inclusion: InclusionFlags{
					ManagementGroups: o.IncludeManagementGroups,
					Subscriptions:    o.IncludeSubscriptions,
					ResourceGroups:   o.IncludeResourceGroups,
					Resources:        o.IncludeResources,
				},
				DiscoveryMode:  o.discoveryMode,
				CacheMode:      tenantgraph.UseCache,
				ThrottleLimit:  o.ThrottleLimit,
				Recurse:        o.Recurse,
				ExcludePathIDs: o.excludePathIDs,
			},
			metricsRegistry: registry,
			metricsAddr:     o.MetricsAddr,
		},
	}, nil
}

// discoverRoots lists every management group and subscription cred can see
// and returns their identifiers as traversal roots: management-group ids
// first, then subscription ids, all of them roots of the first pass.
func discoverRoots(ctx context.Context, cred azcore.TokenCredential) ([]graphid.ID, error) {
	mgClient, err := armmanagementgroups.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building management groups client: %w", err)
	}
	mgRefs, err := azureclients.ListRootManagementGroups(ctx, mgClient)
	if err != nil {
		return nil, fmt.Errorf("listing management groups: %w", err)
	}

	subClient, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("building subscriptions client: %w", err)
	}
	subRefs, err := azureclients.ListAccessibleSubscriptions(ctx, subClient)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	ids := make([]graphid.ID, 0, len(mgRefs)+len(subRefs))
	for _, ref := range mgRefs {
		ids = append(ids, ref.ID)
	}
	for _, ref := range subRefs {
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// validateResourceGroupRoots confirms every explicitly supplied root that
// parses as a resource-group id actually exists, so a typo in --root-id
// fails fast with one clear error instead of surfacing as an opaque 404
// deep inside the first traversal pass. Roots that aren't resource-group
// ids (management groups, subscriptions, arbitrary resources) are left to
// the traversal itself.
func validateResourceGroupRoots(ctx context.Context, cred azcore.TokenCredential, rootIDs []string) error {
	for _, raw := range rootIDs {
		parsed, err := graphid.ParseResourceGroupResourceID(raw)
		if err != nil {
			continue
		}

		client, err := armresources.NewResourceGroupsClient(parsed.SubscriptionID, cred, nil)
		if err != nil {
			return fmt.Errorf("building resource groups client for %q: %w", raw, err)
		}

		var rgClient azureclients.ResourceGroupsClient = client
		if _, err := rgClient.Get(ctx, parsed.ResourceGroupName, nil); err != nil {
			return fmt.Errorf("validating resource group root %q: %w", raw, err)
		}
	}
	return nil
}

// checkDiscoveryAccess runs a one-shot pre-flight listing call for every
// aspect o requests via its IncludeIAM/IncludePolicy flags (the policy check
// only when o.SubscriptionID is set), before a
// potentially long traversal starts: a missing
// "roleDefinitions/read" or policy "definitions/read" grant then surfaces
// once, clearly, rather than as a Diagnostic on every node NodeBuilder
// later visits.
func checkDiscoveryAccess(ctx context.Context, cred azcore.TokenCredential, o *RawOptions, scope string) error {
	if o.IncludeIAM {
		rdClient, err := armauthorization.NewRoleDefinitionsClient(cred, nil)
		if err != nil {
			return fmt.Errorf("building role definitions client: %w", err)
		}
		if err := azureclients.CheckRoleDefinitionsAccess(ctx, rdClient, scope); err != nil {
			return fmt.Errorf("--include-iam pre-flight check failed: %w", err)
		}
	}

	if o.IncludePolicy && o.SubscriptionID != "" {
		pdClient, err := armpolicy.NewDefinitionsClient(o.SubscriptionID, cred, nil)
		if err != nil {
			return fmt.Errorf("building policy definitions client: %w", err)
		}
		if err := azureclients.CheckPolicyDefinitionsAccess(ctx, pdClient); err != nil {
			return fmt.Errorf("--include-policy pre-flight check failed: %w", err)
		}
	}

	return nil
}

func (opts *Options) Run(ctx context.Context) error {
	logger, err := logr.FromContext(ctx)
	if err != nil {
		logger = obslog.DefaultLogger()
	}

	if opts.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(opts.metricsRegistry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: opts.metricsAddr, Handler: mux}
		go func() {
			if serveErr := server.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				logger.Error(serveErr, "metrics server stopped")
			}
		}()
		logger.Info("serving metrics", "addr", opts.metricsAddr)
	}

	logger.V(1).Info("starting discovery", "root_count", len(opts.roots))

	nodes, diagnostics := Discover(ctx, opts.fetcher, opts.roots, opts.discoverOpt)

	encoder := json.NewEncoder(os.Stdout)
	for _, node := range nodes {
		if encodeErr := encoder.Encode(node); encodeErr != nil {
			return fmt.Errorf("encoding node %q: %w", node.ID, encodeErr)
		}
	}

	for _, diag := range diagnostics {
		logger.Error(diag.Err, "build diagnostic", "id", diag.ID)
	}

	logger.Info("discovery finished", "node_count", len(nodes), "diagnostic_count", len(diagnostics))
	return nil
}
