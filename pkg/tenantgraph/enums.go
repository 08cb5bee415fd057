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

// CacheMode governs whether a build consults StateCache/RawResponseCache
// before dispatching to the transport.
type CacheMode int

const (
	// UseCache is the default: a cache hit returns immediately.
	UseCache CacheMode = iota
	// SkipCache always calls the transport and writes the result back to
	// the cache, so a subsequent UseCache call benefits.
	SkipCache
)

func (m CacheMode) String() string {
	switch m {
	case UseCache:
		return "UseCache"
	case SkipCache:
		return "SkipCache"
	default:
		return "Unknown"
	}
}

// Release selects which API-version channel ApiVersionRegistry resolves to.
type Release int

const (
	// Stable is the default release channel: the newest api-version
	// matching the yyyy-MM-dd stable date format.
	Stable Release = iota
	// Latest is the lexicographically greatest api-version regardless of
	// whether it is a stable, preview, or other suffixed version.
	Latest
)

func (r Release) String() string {
	switch r {
	case Stable:
		return "stable"
	case Latest:
		return "latest"
	default:
		return "unknown"
	}
}

// DiscoveryMode controls which optional aspects NodeBuilder populates
// alongside a node's primary record and children.
type DiscoveryMode int

const (
	// ExcludeBoth is the default: neither IAM nor policy is fetched.
	ExcludeBoth DiscoveryMode = iota
	// IncludeIAM fetches role definitions and role assignments.
	IncludeIAM
	// IncludePolicy fetches policy definitions, policy set definitions,
	// and policy assignments.
	IncludePolicy
	// IncludeBoth fetches both IAM and policy.
	IncludeBoth
)

func (m DiscoveryMode) String() string {
	switch m {
	case ExcludeBoth:
		return "ExcludeBoth"
	case IncludeIAM:
		return "IncludeIAM"
	case IncludePolicy:
		return "IncludePolicy"
	case IncludeBoth:
		return "IncludeBoth"
	default:
		return "Unknown"
	}
}

// WantsIAM reports whether this mode requests IAM sub-queries.
func (m DiscoveryMode) WantsIAM() bool {
	return m == IncludeIAM || m == IncludeBoth
}

// WantsPolicy reports whether this mode requests policy sub-queries.
func (m DiscoveryMode) WantsPolicy() bool {
	return m == IncludePolicy || m == IncludeBoth
}

// Union returns the mode that requests everything either m or other
// requests — used when upgrading an already-cached node (§4.3 step 1) to
// add whatever aspects the new request wants that the old one lacked.
func (m DiscoveryMode) Union(other DiscoveryMode) DiscoveryMode {
	wantsIAM := m.WantsIAM() || other.WantsIAM()
	wantsPolicy := m.WantsPolicy() || other.WantsPolicy()

	switch {
	case wantsIAM && wantsPolicy:
		return IncludeBoth
	case wantsIAM:
		return IncludeIAM
	case wantsPolicy:
		return IncludePolicy
	default:
		return ExcludeBoth
	}
}
