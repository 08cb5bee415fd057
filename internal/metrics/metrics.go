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

// Package metrics registers the engine's prometheus instrumentation.
// Exposing these via an HTTP handler is the caller's job; this package only
// owns the collectors themselves.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors holds every metric NodeBuilder and RequestRouter increment.
// Construct one with New and thread it through the engine's constructors;
// there is no package-level default registry singleton.
type Collectors struct {
	BuildsTotal    *prometheus.CounterVec
	BuildDuration  *prometheus.HistogramVec
	CacheHitsTotal *prometheus.CounterVec
	ApiErrorsTotal *prometheus.CounterVec
}

// New registers the engine's collectors against registry and returns the
// handle callers use to record observations.
func New(registry prometheus.Registerer) *Collectors {
	return &Collectors{
		BuildsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenantgraph_builds_total",
				Help: "Count of NodeBuilder.Build calls by outcome.",
			},
			[]string{"outcome"},
		),
		BuildDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:                            "tenantgraph_build_duration_seconds",
				Help:                            "Latency of NodeBuilder.Build calls.",
				NativeHistogramBucketFactor:     1.1,
				NativeHistogramMaxBucketNumber:  100,
				NativeHistogramMinResetDuration: 1 * time.Hour,
			},
			[]string{"outcome"},
		),
		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenantgraph_cache_hits_total",
				Help: "Count of cache hits by cache name.",
			},
			[]string{"cache"},
		),
		ApiErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenantgraph_api_errors_total",
				Help: "Count of non-200 ARM responses by status code.",
			},
			[]string{"code"},
		),
	}
}

// ObserveBuild records one NodeBuilder.Build outcome and its latency.
func (c *Collectors) ObserveBuild(outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.BuildsTotal.WithLabelValues(outcome).Inc()
	c.BuildDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordCacheHit increments the hit counter for cache.
func (c *Collectors) RecordCacheHit(cache string) {
	if c == nil {
		return
	}
	c.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordApiError increments the error counter for an ARM status code.
func (c *Collectors) RecordApiError(code string) {
	if c == nil {
		return
	}
	c.ApiErrorsTotal.WithLabelValues(code).Inc()
}
