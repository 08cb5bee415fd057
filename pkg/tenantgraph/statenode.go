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

import "github.com/Azure/azure-tenant-graph/pkg/graphid"

// IAM holds the access-control associations NodeBuilder attaches to a node
// when DiscoveryMode requests them.
type IAM struct {
	RoleDefinitions []graphid.Ref `json:"roleDefinitions"`
	RoleAssignments []graphid.Ref `json:"roleAssignments"`
}

func (i IAM) isEmpty() bool {
	return len(i.RoleDefinitions) == 0 && len(i.RoleAssignments) == 0
}

// merge returns other when it carries any refs and i otherwise: a non-empty
// other replaces i as a whole, and an empty other (an upgrade that did not
// fetch IAM) leaves the refs already in i in place.
func (i IAM) merge(other IAM) IAM {
	if other.isEmpty() {
		return i
	}
	return other
}

// Policy holds the governance associations NodeBuilder attaches to a node
// when DiscoveryMode requests them.
type Policy struct {
	PolicyDefinitions    []graphid.Ref `json:"policyDefinitions"`
	PolicySetDefinitions []graphid.Ref `json:"policySetDefinitions"`
	PolicyAssignments    []graphid.Ref `json:"policyAssignments"`
}

func (p Policy) isEmpty() bool {
	return len(p.PolicyDefinitions) == 0 && len(p.PolicySetDefinitions) == 0 && len(p.PolicyAssignments) == 0
}

func (p Policy) merge(other Policy) Policy {
	if other.isEmpty() {
		return p
	}
	return other
}

// StateNode is the primary record type: an immutable-after-build snapshot
// of one resource, its type-derived relations, its IAM and policy
// associations, and its computed hierarchical path. Every StateNode a
// caller observes, whether freshly built or read from StateCache, is a
// complete value — there are no pointers into engine-internal state.
type StateNode struct {
	ID       graphid.ID
	Type     graphid.ResourceType
	Name     string
	Raw      any
	Provider string

	Children        []graphid.Ref
	LinkedResources []graphid.Ref

	Parent  *graphid.Ref
	Parents []graphid.Ref

	ParentPath   string
	ResourcePath string

	IAM    IAM
	Policy Policy

	// fetched records which DiscoveryMode aspects have actually been
	// populated on this node, independent of whether the resulting slices
	// ended up empty (e.g. a subscription with zero role assignments still
	// "has" IAM fetched). NodeBuilder consults this to decide whether an
	// existing cached node needs upgrading (§4.3 step 1).
	fetched DiscoveryMode
}

// HasAspects reports whether this node already has every aspect mode
// requests populated.
func (n *StateNode) HasAspects(mode DiscoveryMode) bool {
	if n == nil {
		return false
	}
	return (!mode.WantsIAM() || n.fetched.WantsIAM()) && (!mode.WantsPolicy() || n.fetched.WantsPolicy())
}

// withAspects returns a copy of n with iam/policy merged in and fetched
// widened to include mode — the monotonic "upgrade in place" the design
// notes describe, expressed as producing a new immutable value rather than
// mutating n.
func (n *StateNode) withAspects(mode DiscoveryMode, iam IAM, policy Policy) *StateNode {
	upgraded := *n
	upgraded.IAM = n.IAM.merge(iam)
	upgraded.Policy = n.Policy.merge(policy)
	upgraded.fetched = n.fetched.Union(mode)
	return &upgraded
}

// depth returns len(Parents), the distance from the root.
func (n *StateNode) depth() int {
	return len(n.Parents)
}
