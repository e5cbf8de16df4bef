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
	"slices"
	"time"

	"github.com/google/cel-core/types/ref"
)

// Adapter normalizes externally produced values into the engine value
// model. Implementations must unwrap well-known wrapper types at this
// boundary so the interpreter only ever observes primitives or null.
type Adapter interface {
	NativeToValue(value any) ref.Val
}

// FieldType describes one declared field of a structured type.
type FieldType struct {
	// Type is the runtime type descriptor of the field.
	Type *Type
}

// Provider supplies structured-type information and construction. It
// is shared across evaluations and must be safe for concurrent reads;
// the engine never mutates it.
type Provider interface {
	Adapter

	// FindStructType resolves a structured type descriptor by its fully
	// qualified name.
	FindStructType(typeName string) (*Type, bool)

	// FindStructFieldNames lists the declared field names of a type.
	FindStructFieldNames(typeName string) ([]string, bool)

	// FindStructFieldType resolves a declared field of a type.
	FindStructFieldType(typeName, fieldName string) (*FieldType, bool)

	// NewValue constructs a structured value with named fields. Unknown
	// type names and field names yield error values; optional wrapper
	// fields set to null stay unset.
	NewValue(typeName string, fields map[string]ref.Val) ref.Val
}

// defaultAdapter adapts Go-native values produced by callers or by
// JSON decoding.
type defaultAdapter struct {
	// unsignedLongs preserves uint64 as a distinct kind. When disabled,
	// unsigned inputs are represented as int, the representation used
	// before unsigned support existed.
	unsignedLongs bool
}

// DefaultAdapter adapts Go natives with uint preserved as a distinct
// kind.
var DefaultAdapter Adapter = defaultAdapter{unsignedLongs: true}

// SignedAdapter adapts Go natives with uint collapsed into int; it
// backs the enableUnsignedLongs=false feature flag.
var SignedAdapter Adapter = defaultAdapter{unsignedLongs: false}

// NativeToValue implements Adapter over Go-native inputs, JSON decoded
// values included.
func (a defaultAdapter) NativeToValue(value any) ref.Val {
	switch v := value.(type) {
	case nil:
		return NullValue
	case ref.Val:
		return v
	case bool:
		return Bool(v)
	case int:
		return Int(v)
	case int32:
		return Int(v)
	case int64:
		return Int(v)
	case uint:
		return a.uintValue(uint64(v))
	case uint32:
		return a.uintValue(uint64(v))
	case uint64:
		return a.uintValue(v)
	case float32:
		return Double(v)
	case float64:
		return Double(v)
	case string:
		return String(v)
	case []byte:
		return Bytes(v)
	case time.Duration:
		return Duration{Duration: v}
	case time.Time:
		return Timestamp{Time: v.UTC()}
	case []ref.Val:
		return NewList(v...)
	case []any:
		elems := make([]ref.Val, len(v))
		for i, elem := range v {
			elems[i] = a.NativeToValue(elem)
		}
		return NewList(elems...)
	case []string:
		elems := make([]ref.Val, len(v))
		for i, elem := range v {
			elems[i] = String(elem)
		}
		return NewList(elems...)
	case map[string]any:
		kvs := make([]ref.Val, 0, 2*len(v))
		for _, key := range sortedKeys(v) {
			kvs = append(kvs, String(key), a.NativeToValue(v[key]))
		}
		return NewMap(kvs...)
	case map[ref.Val]ref.Val:
		kvs := make([]ref.Val, 0, 2*len(v))
		for key, val := range v {
			kvs = append(kvs, key, val)
		}
		return NewMap(kvs...)
	default:
		return NewErrf(ErrKindInvalidArgument, "unsupported native type %T", value)
	}
}

func (a defaultAdapter) uintValue(u uint64) ref.Val {
	if a.unsignedLongs {
		return Uint(u)
	}
	i, ok := uint64ToInt64Checked(u)
	if !ok {
		return OverflowErr()
	}
	return Int(i)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
