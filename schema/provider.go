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
	"slices"

	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// Provider is a structured-type provider backed by compiled schema
// declarations. It is immutable after construction and safe for
// concurrent reads.
type Provider struct {
	registeredTypes map[string]*DeclType
	adapter         types.Adapter
	nanFieldsEqual  bool
}

var _ types.Provider = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithAdapter overrides the base adapter used for native values that
// are not wrapper messages; the engine's default adapter otherwise.
func WithAdapter(adapter types.Adapter) ProviderOption {
	return func(p *Provider) {
		p.adapter = adapter
	}
}

// WithNaNFieldEquality selects the field-wise structured equality mode
// where NaN-valued fields compare equal to themselves instead of the
// canonical NaN != NaN comparison.
func WithNaNFieldEquality(equal bool) ProviderOption {
	return func(p *Provider) {
		p.nanFieldsEqual = equal
	}
}

// NewProvider indexes the given root declarations and every object,
// list, and map type nested within them, keyed by qualified type name.
func NewProvider(rootTypes []*DeclType, opts ...ProviderOption) *Provider {
	p := &Provider{
		registeredTypes: map[string]*DeclType{},
		adapter:         types.DefaultAdapter,
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, root := range rootTypes {
		registerDeclTypes(root, p.registeredTypes)
	}
	return p
}

func registerDeclTypes(t *DeclType, out map[string]*DeclType) {
	switch {
	case t.IsObject():
		out[t.TypeName()] = t
		for _, field := range t.Fields {
			registerDeclTypes(field.Type, out)
		}
	case t.IsMap(), t.IsList():
		registerDeclTypes(t.ElemType, out)
	}
}

// FindDeclType resolves a registered or scalar declaration by name.
func (p *Provider) FindDeclType(typeName string) (*DeclType, bool) {
	if declType, found := p.registeredTypes[typeName]; found {
		return declType, true
	}
	declType := Scalar(typeName)
	return declType, declType != nil
}

// FindStructType implements types.Provider.
func (p *Provider) FindStructType(typeName string) (*types.Type, bool) {
	declType, found := p.registeredTypes[typeName]
	if !found {
		return nil, false
	}
	return declType.CelType(), true
}

// FindStructFieldNames implements types.Provider with names in sorted
// order.
func (p *Provider) FindStructFieldNames(typeName string) ([]string, bool) {
	declType, found := p.registeredTypes[typeName]
	if !found || !declType.IsObject() {
		return nil, false
	}
	names := make([]string, 0, len(declType.Fields))
	for name := range declType.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, true
}

// FindStructFieldType implements types.Provider. Map declarations
// resolve every field name to their element type.
func (p *Provider) FindStructFieldType(typeName, fieldName string) (*types.FieldType, bool) {
	declType, found := p.FindDeclType(typeName)
	if !found {
		return nil, false
	}
	if declType.IsObject() {
		field, found := declType.Fields[fieldName]
		if !found {
			return nil, false
		}
		return &types.FieldType{Type: field.Type.CelType()}, true
	}
	if declType.IsMap() {
		return &types.FieldType{Type: declType.ElemType.CelType()}, true
	}
	return nil, false
}

// NewValue constructs a structured value with named fields. An unknown
// type name is an attribute-not-found error, an undeclared field is a
// bad-format error, and a field set to null stays unset the way an
// absent wrapper field would.
func (p *Provider) NewValue(typeName string, fields map[string]ref.Val) ref.Val {
	declType, found := p.registeredTypes[typeName]
	if !found || !declType.IsObject() {
		return types.NewErrf(types.ErrKindAttributeNotFound, "unknown type '%s'", typeName)
	}
	set := make(map[string]ref.Val, len(fields))
	for name, value := range fields {
		fieldDef, declared := declType.Fields[name]
		if !declared {
			return types.NewErrf(types.ErrKindBadFormat, "no such field '%s' on type '%s'", name, typeName)
		}
		if _, isNull := value.(types.Null); isNull {
			continue
		}
		adapted := p.adaptToFieldType(fieldDef, value)
		if types.IsError(adapted) {
			return adapted
		}
		set[name] = adapted
	}
	obj := NewObjectValue(declType, set)
	obj.nanFieldsEqual = p.nanFieldsEqual
	return obj
}

// adaptToFieldType checks a constructed field value against its
// declaration, building nested objects out of map values where the
// declaration requires an object.
func (p *Provider) adaptToFieldType(field *Field, value ref.Val) ref.Val {
	declared := field.Type.CelType()
	if declared.IsAssignableRuntimeType(types.TypeOf(value)) {
		if field.Type.IsObject() {
			if obj, ok := value.(*ObjectValue); ok && obj.DeclType().TypeName() != field.Type.TypeName() {
				return types.NewErrf(types.ErrKindBadFormat,
					"field '%s' expects type '%s', got '%s'", field.Name, field.Type.TypeName(), obj.DeclType().TypeName())
			}
		}
		return value
	}
	// A map value may satisfy an object declaration field-by-field.
	if field.Type.IsObject() {
		if mapper, ok := value.(traits.Mapper); ok {
			return p.objectFromMapper(field.Type, mapper)
		}
	}
	return types.NewErrf(types.ErrKindBadFormat,
		"field '%s' expects type '%s', got '%s'", field.Name, declared.DeclaredName(), value.Type().TypeName())
}

func (p *Provider) objectFromMapper(declType *DeclType, mapper traits.Mapper) ref.Val {
	fields := map[string]ref.Val{}
	it := mapper.Iterator()
	for it.HasNext() == types.True {
		key := it.Next()
		name, ok := key.(types.String)
		if !ok {
			return types.NewErrf(types.ErrKindBadFormat,
				"object construction requires string keys, got '%s'", key.Type().TypeName())
		}
		fields[string(name)] = mapper.Get(key)
	}
	return p.NewValue(declType.TypeName(), fields)
}

// NativeToValue implements the adapt operation of the structured-type
// boundary: well-known wrapper messages unwrap to primitives or null,
// and remaining natives adapt through the base adapter.
func (p *Provider) NativeToValue(value any) ref.Val {
	if v, ok := unwrapWellKnown(value); ok {
		return v
	}
	return p.adapter.NativeToValue(value)
}

// AdaptValue normalizes an external native value against a declared
// type name: maps become objects of the declared type, everything else
// adapts through NativeToValue.
func (p *Provider) AdaptValue(typeName string, value any) ref.Val {
	adapted := p.NativeToValue(value)
	if types.IsError(adapted) {
		return adapted
	}
	declType, found := p.registeredTypes[typeName]
	if !found {
		return types.NewErrf(types.ErrKindAttributeNotFound, "unknown type '%s'", typeName)
	}
	if !declType.IsObject() {
		return adapted
	}
	if mapper, ok := adapted.(traits.Mapper); ok {
		return p.objectFromMapper(declType, mapper)
	}
	if obj, ok := adapted.(*ObjectValue); ok {
		return obj
	}
	return types.NewErrf(types.ErrKindBadFormat,
		"cannot adapt value of type '%s' to '%s'", adapted.Type().TypeName(), typeName)
}
