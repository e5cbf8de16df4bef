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

package schema

import (
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// ObjectValue is a structured value with a schema-declared type. Only
// explicitly set fields are stored; reading an unset declared field
// yields its default so traversal stays safe, and presence testing
// distinguishes set from defaulted.
type ObjectValue struct {
	objectType *DeclType
	fields     map[string]ref.Val

	// nanFieldsEqual selects field-wise equality where NaN-valued
	// fields compare equal to themselves, the pre-differencer
	// structured equality mode.
	nanFieldsEqual bool
}

var (
	_ ref.Val            = (*ObjectValue)(nil)
	_ traits.Indexer     = (*ObjectValue)(nil)
	_ traits.FieldTester = (*ObjectValue)(nil)
)

// NewObjectValue returns an object of the declared type over the given
// set fields. The field map is owned by the object afterwards; nil is
// a valid empty field set.
func NewObjectValue(declType *DeclType, fields map[string]ref.Val) *ObjectValue {
	return &ObjectValue{objectType: declType, fields: fields}
}

// DeclType returns the declaration the object was constructed from.
func (o *ObjectValue) DeclType() *DeclType {
	return o.objectType
}

// Get returns the value of a declared field: the set value, or the
// field's default when unset. An undeclared field is a no-such-field
// error.
func (o *ObjectValue) Get(name ref.Val) ref.Val {
	n, ok := name.(types.String)
	if !ok {
		return types.MaybeNoSuchOverloadErr(name)
	}
	if v, found := o.fields[string(n)]; found {
		return v
	}
	fieldDef, found := o.objectType.Fields[string(n)]
	if !found {
		return types.NoSuchFieldErr(string(n))
	}
	return fieldDef.DefaultValue()
}

// IsSet implements presence testing: a field is present when it was
// explicitly set at construction, mirroring wrapper set/unset
// semantics rather than zero-value comparison.
func (o *ObjectValue) IsSet(name ref.Val) ref.Val {
	n, ok := name.(types.String)
	if !ok {
		return types.MaybeNoSuchOverloadErr(name)
	}
	if _, found := o.fields[string(n)]; found {
		return types.True
	}
	if _, declared := o.objectType.Fields[string(n)]; !declared {
		return types.NoSuchFieldErr(string(n))
	}
	return types.False
}

// ConvertToType implements ref.Val.
func (o *ObjectValue) ConvertToType(t ref.Type) ref.Val {
	if t == types.TypeType {
		return o.objectType.CelType()
	}
	if t.TypeName() == o.objectType.TypeName() {
		return o
	}
	return types.NewErrf(types.ErrKindNoSuchOverload,
		"type conversion error from '%s' to '%s'", o.objectType.TypeName(), t.TypeName())
}

// Equal implements field-wise equality over all declared fields of
// same-typed objects.
func (o *ObjectValue) Equal(other ref.Val) ref.Val {
	oo, ok := other.(*ObjectValue)
	if !ok || oo.objectType.TypeName() != o.objectType.TypeName() {
		return types.False
	}
	for name := range o.objectType.Fields {
		key := types.String(name)
		va, vb := o.Get(key), oo.Get(key)
		if types.Equal(va, vb) == types.True {
			continue
		}
		if o.nanFieldsEqual && bothNaN(va, vb) {
			continue
		}
		return types.False
	}
	return types.True
}

func bothNaN(a, b ref.Val) bool {
	da, okA := a.(types.Double)
	db, okB := b.(types.Double)
	return okA && okB && da != da && db != db
}

// Type implements ref.Val.
func (o *ObjectValue) Type() ref.Type {
	return o.objectType.CelType()
}

// Value returns the Go-native representation of the set fields.
func (o *ObjectValue) Value() any {
	out := make(map[string]any, len(o.fields))
	for name, v := range o.fields {
		out[name] = v.Value()
	}
	return out
}
