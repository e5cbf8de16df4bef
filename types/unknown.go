// Copyright 2025 The Kubernetes Authors.
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

package types

import (
	"strings"

	"github.com/google/cel-core/attribute"
	"github.com/google/cel-core/types/ref"
)

// Unknown is the set of attribute paths whose values were not supplied
// to the evaluation. Unknowns absorb strict operations and merge at
// short-circuit boundaries; an unknown result tells the caller which
// inputs it must provide to obtain a definite answer.
type Unknown struct {
	attrs []attribute.Attribute
}

var _ ref.Val = (*Unknown)(nil)

// NewUnknown returns an unknown-set over the given attributes,
// deduplicated structurally while preserving first-seen order.
func NewUnknown(attrs ...attribute.Attribute) *Unknown {
	u := &Unknown{}
	for _, a := range attrs {
		u.add(a)
	}
	return u
}

// MergeUnknowns unions any number of unknown-sets; nil inputs are
// skipped and a nil result means no input was an unknown.
func MergeUnknowns(unknowns ...*Unknown) *Unknown {
	var out *Unknown
	for _, u := range unknowns {
		if u == nil {
			continue
		}
		if out == nil {
			out = &Unknown{attrs: append([]attribute.Attribute(nil), u.attrs...)}
			continue
		}
		for _, a := range u.attrs {
			out.add(a)
		}
	}
	return out
}

func (u *Unknown) add(a attribute.Attribute) {
	for _, existing := range u.attrs {
		if existing.Equal(a) {
			return
		}
	}
	u.attrs = append(u.attrs, a)
}

// Attributes returns the attributes in the set, in first-seen order.
func (u *Unknown) Attributes() []attribute.Attribute {
	return append([]attribute.Attribute(nil), u.attrs...)
}

// Contains reports whether the set names the given attribute.
func (u *Unknown) Contains(a attribute.Attribute) bool {
	for _, existing := range u.attrs {
		if existing.Equal(a) {
			return true
		}
	}
	return false
}

// ConvertToType returns the receiver; unknowns absorb conversions.
func (u *Unknown) ConvertToType(_ ref.Type) ref.Val {
	return u
}

// Equal returns the receiver; unknowns absorb equality tests.
func (u *Unknown) Equal(_ ref.Val) ref.Val {
	return u
}

// Type implements ref.Val.
func (u *Unknown) Type() ref.Type {
	return UnknownType
}

// Value returns the attribute set.
func (u *Unknown) Value() any {
	return u.Attributes()
}

func (u *Unknown) String() string {
	parts := make([]string, len(u.attrs))
	for i, a := range u.attrs {
		parts[i] = a.String()
	}
	return "unknown{" + strings.Join(parts, ", ") + "}"
}
