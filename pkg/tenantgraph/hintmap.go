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
	"sync"

	"github.com/Azure/azure-tenant-graph/pkg/graphid"
)

// ParentHintMap opportunistically records child->parent edges harvested
// from management-group /descendants listings, so that resolving a
// subscription's parent (normally an expensive scope-wide management-group
// listing, §4.5) becomes an O(1) lookup. It is a plain sync.Map rather than
// a sharded concurrent-map: entries are written once per child during a
// descendants listing and read many times afterward, the same access
// pattern the teacher's per-subscription listers are built around.
type ParentHintMap struct {
	delegate sync.Map // graphid.ID (canonical) -> graphid.Ref (parent)
}

// NewParentHintMap returns an empty ParentHintMap.
func NewParentHintMap() *ParentHintMap {
	return &ParentHintMap{}
}

// Record stores childID -> parent, overwriting any previous hint for the
// same child. Descendants listings are expected to be internally
// consistent, so last-write-wins is acceptable.
func (m *ParentHintMap) Record(childID graphid.ID, parent graphid.Ref) {
	m.delegate.Store(string(childID.Canonical()), parent)
}

// Lookup returns the hinted parent for childID, if one has been recorded.
func (m *ParentHintMap) Lookup(childID graphid.ID) (graphid.Ref, bool) {
	v, ok := m.delegate.Load(string(childID.Canonical()))
	if !ok {
		return graphid.Ref{}, false
	}
	return v.(graphid.Ref), true
}

// Reset clears every recorded hint.
func (m *ParentHintMap) Reset() {
	m.delegate.Range(func(key, _ any) bool {
		m.delegate.Delete(key)
		return true
	})
}
