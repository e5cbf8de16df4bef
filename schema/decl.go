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

// Package schema implements the structured-type adapter over JSON
// Schema documents: schemas compile into declaration types, and the
// provider built from them constructs, reads, and presence-tests
// structured values for the evaluator.
package schema

import (
	"time"

	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

// DeclType is the declaration of a type reachable from a compiled
// schema: a scalar, a parameterized list or map, or an object with
// named fields.
type DeclType struct {
	name string
	// Fields maps field names to declarations for object types.
	Fields map[string]*Field
	// KeyType and ElemType parameterize map types; ElemType alone
	// parameterizes list types.
	KeyType  *DeclType
	ElemType *DeclType

	celType   *types.Type
	zeroValue func(*DeclType) ref.Val
}

// Field declares the name, type, optionality, and default of one
// object field.
type Field struct {
	Name     string
	Type     *DeclType
	Required bool

	defaultValue any
}

// NewField returns a field declaration.
func NewField(name string, declType *DeclType, required bool, defaultValue any) *Field {
	return &Field{Name: name, Type: declType, Required: required, defaultValue: defaultValue}
}

// DefaultValue returns the value an unset field reads as: the schema
// default when declared, the type's zero value otherwise.
func (f *Field) DefaultValue() ref.Val {
	if f.defaultValue != nil {
		return types.DefaultAdapter.NativeToValue(f.defaultValue)
	}
	return f.Type.DefaultValue()
}

// TypeName returns the fully qualified name of the declaration.
func (t *DeclType) TypeName() string {
	return t.name
}

// CelType returns the runtime type descriptor of the declaration.
func (t *DeclType) CelType() *types.Type {
	return t.celType
}

// DefaultValue returns the zero value of the declared type, enabling
// safe traversal over unset fields.
func (t *DeclType) DefaultValue() ref.Val {
	return t.zeroValue(t)
}

// IsObject reports whether the declaration carries named fields.
func (t *DeclType) IsObject() bool {
	return t.Fields != nil && t.KeyType == nil && t.ElemType == nil
}

// IsMap reports whether the declaration is a parameterized map.
func (t *DeclType) IsMap() bool {
	return t.Fields == nil && t.KeyType != nil && t.ElemType != nil
}

// IsList reports whether the declaration is a parameterized list.
func (t *DeclType) IsList() bool {
	return t.Fields == nil && t.KeyType == nil && t.ElemType != nil
}

func simpleType(name string, celType *types.Type, zero ref.Val) *DeclType {
	return &DeclType{
		name:    name,
		celType: celType,
		zeroValue: func(*DeclType) ref.Val {
			return zero
		},
	}
}

var (
	// AnyType accepts any runtime kind; unset fields read as null.
	AnyType = simpleType("any", types.DynType, types.NullValue)
	// BoolType is the schema 'boolean' type.
	BoolType = simpleType("bool", types.BoolType, types.False)
	// BytesType is the schema 'string' type with format 'byte'.
	BytesType = simpleType("bytes", types.BytesType, types.Bytes{})
	// DoubleType is the schema 'number' type.
	DoubleType = simpleType("double", types.DoubleType, types.Double(0))
	// DurationType is the schema 'string' type with format 'duration'.
	DurationType = simpleType("duration", types.DurationType, types.Duration{Duration: time.Duration(0)})
	// IntType is the schema 'integer' type.
	IntType = simpleType("int", types.IntType, types.IntZero)
	// NullType is the schema 'null' type.
	NullType = simpleType("null_type", types.NullType, types.NullValue)
	// StringType is the schema 'string' type.
	StringType = simpleType("string", types.StringType, types.String(""))
	// TimestampType covers the 'date' and 'date-time' string formats.
	TimestampType = simpleType("timestamp", types.TimestampType, types.Timestamp{Time: time.Time{}})
	// UintType is available for integer schemas annotated with the
	// unsigned format extension.
	UintType = simpleType("uint", types.UintType, types.Uint(0))
)

// Scalar returns the scalar declaration for the given type name, or
// nil when the name does not denote a scalar.
func Scalar(typename string) *DeclType {
	switch typename {
	case AnyType.TypeName():
		return AnyType
	case BoolType.TypeName():
		return BoolType
	case BytesType.TypeName():
		return BytesType
	case DoubleType.TypeName():
		return DoubleType
	case DurationType.TypeName():
		return DurationType
	case IntType.TypeName():
		return IntType
	case NullType.TypeName():
		return NullType
	case StringType.TypeName():
		return StringType
	case TimestampType.TypeName():
		return TimestampType
	case UintType.TypeName():
		return UintType
	default:
		return nil
	}
}

// NewListType returns a parameterized list declaration.
func NewListType(elem *DeclType) *DeclType {
	return &DeclType{
		name:     "list",
		ElemType: elem,
		celType:  types.NewListType(elem.CelType()),
		zeroValue: func(*DeclType) ref.Val {
			return types.NewList()
		},
	}
}

// NewMapType returns a parameterized map declaration with string keys,
// the only key kind JSON objects support.
func NewMapType(key, elem *DeclType) *DeclType {
	return &DeclType{
		name:     "map",
		KeyType:  key,
		ElemType: elem,
		celType:  types.NewMapType(key.CelType(), elem.CelType()),
		zeroValue: func(*DeclType) ref.Val {
			return types.NewMap()
		},
	}
}

// NewObjectType returns an object declaration with a qualified name
// and field set.
func NewObjectType(name string, fields map[string]*Field) *DeclType {
	return &DeclType{
		name:    name,
		Fields:  fields,
		celType: types.NewObjectType(name),
		zeroValue: func(t *DeclType) ref.Val {
			return NewObjectValue(t, nil)
		},
	}
}
