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

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// Map is the runtime association value. Keys are restricted to bool,
// int, uint, and string; keys equal under runtime equality (including
// heterogeneous numerics) are indistinguishable. Iteration follows
// construction order.
type Map struct {
	entries []mapEntry
	// index buckets entry positions by key hash; hash equality is
	// consistent with runtime equality, so equal keys share a bucket.
	index map[uint64][]int
}

type mapEntry struct {
	key   ref.Val
	value ref.Val
}

var _ traits.Mapper = (*Map)(nil)

// NewMap builds a map from alternating key/value pairs in construction
// order. A duplicate key (by runtime equality) or an unsupported key
// kind yields an error value instead of a map.
func NewMap(keyValues ...ref.Val) ref.Val {
	if len(keyValues)%2 != 0 {
		return NewErrf(ErrKindInternal, "map construction requires key/value pairs")
	}
	m := &Map{
		entries: make([]mapEntry, 0, len(keyValues)/2),
		index:   make(map[uint64][]int, len(keyValues)/2),
	}
	for i := 0; i < len(keyValues); i += 2 {
		if err := m.put(keyValues[i], keyValues[i+1]); err != nil {
			return err
		}
	}
	return m
}

func (m *Map) put(key, value ref.Val) ref.Val {
	switch key.(type) {
	case Bool, Int, Uint, String:
	default:
		return NewErrf(ErrKindInvalidArgument, "unsupported map key type '%s'", key.Type().TypeName())
	}
	h := Hash(key)
	for _, pos := range m.index[h] {
		if Equal(m.entries[pos].key, key) == True {
			return NewErrf(ErrKindInvalidArgument, "duplicate map key: %v", key.Value())
		}
	}
	m.index[h] = append(m.index[h], len(m.entries))
	m.entries = append(m.entries, mapEntry{key: key, value: value})
	return nil
}

// Find returns the value for the key, distinguishing a missing key
// from an error produced by the lookup itself.
func (m *Map) Find(key ref.Val) (ref.Val, bool) {
	switch key.(type) {
	case Bool, Int, Uint, Double, String:
	default:
		return MaybeNoSuchOverloadErr(key), true
	}
	for _, pos := range m.index[Hash(key)] {
		if Equal(m.entries[pos].key, key) == True {
			return m.entries[pos].value, true
		}
	}
	return nil, false
}

// Get implements the `_[_]` operator; a missing key is a no-such-key
// error.
func (m *Map) Get(key ref.Val) ref.Val {
	v, found := m.Find(key)
	if found {
		return v
	}
	return NoSuchKeyErr(key.Value())
}

// Contains implements the `in` operator over map keys.
func (m *Map) Contains(key ref.Val) ref.Val {
	v, found := m.Find(key)
	if v != nil && IsUnknownOrError(v) {
		return v
	}
	return Bool(found)
}

// Size implements traits.Sizer.
func (m *Map) Size() ref.Val {
	return Int(len(m.entries))
}

// Iterator walks the keys in construction order.
func (m *Map) Iterator() traits.Iterator {
	keys := make([]ref.Val, len(m.entries))
	for i, entry := range m.entries {
		keys[i] = entry.key
	}
	return &listIterator{elems: keys}
}

// ConvertToType implements ref.Val.
func (m *Map) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case MapType:
		return m
	case TypeType:
		return MapType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'map' to '%s'", t.TypeName())
}

// Equal implements ref.Val; maps are equal when size-equal and
// key/value-wise equal under runtime equality.
func (m *Map) Equal(other ref.Val) ref.Val {
	o, ok := other.(traits.Mapper)
	if !ok {
		return False
	}
	if o.Size() != Int(len(m.entries)) {
		return False
	}
	for _, entry := range m.entries {
		ov, found := o.Find(entry.key)
		if !found {
			return False
		}
		if IsUnknownOrError(ov) {
			return False
		}
		if Equal(entry.value, ov) != True {
			return False
		}
	}
	return True
}

// Type implements ref.Val.
func (m *Map) Type() ref.Type {
	return MapType
}

// Value returns the Go-native representation. String keys collapse to
// a map[string]any when every key is a string, otherwise keys keep
// their native forms in a map[any]any.
func (m *Map) Value() any {
	allStrings := true
	for _, entry := range m.entries {
		if _, ok := entry.key.(String); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		out := make(map[string]any, len(m.entries))
		for _, entry := range m.entries {
			out[string(entry.key.(String))] = entry.value.Value()
		}
		return out
	}
	out := make(map[any]any, len(m.entries))
	for _, entry := range m.entries {
		out[entry.key.Value()] = entry.value.Value()
	}
	return out
}

func (m *Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, entry := range m.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Format(entry.key))
		b.WriteString(": ")
		b.WriteString(Format(entry.value))
	}
	b.WriteByte('}')
	return b.String()
}
