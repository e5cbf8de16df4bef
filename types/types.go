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

// Package types implements the runtime value model: every value an
// evaluation can produce, runtime equality and ordering, hashing, and
// the type descriptors returned by the `type()` built-in.
package types

import (
	"fmt"
	"strings"

	"github.com/google/cel-core/types/ref"
)

// Kind classifies runtime types into the closed set of value kinds.
type Kind int

const (
	UnknownKind Kind = iota
	NullTypeKind
	BoolKind
	IntKind
	UintKind
	DoubleKind
	StringKind
	BytesKind
	DurationKind
	TimestampKind
	ListKind
	MapKind
	StructKind
	TypeKind
	OptionalKind
	ErrorKind
	DynKind
)

// Type is the concrete runtime type descriptor. Descriptors are
// immutable; the canonical primitives are package singletons and
// compare by name.
type Type struct {
	kind       Kind
	name       string
	parameters []*Type
}

var _ ref.Type = (*Type)(nil)

// NewObjectType returns the descriptor of a named structured type.
func NewObjectType(name string) *Type {
	return &Type{kind: StructKind, name: name}
}

// NewListType returns a parameterized list descriptor.
func NewListType(elem *Type) *Type {
	return &Type{kind: ListKind, name: "list", parameters: []*Type{elem}}
}

// NewMapType returns a parameterized map descriptor.
func NewMapType(key, value *Type) *Type {
	return &Type{kind: MapKind, name: "map", parameters: []*Type{key, value}}
}

// NewOptionalType returns a parameterized optional descriptor.
func NewOptionalType(param *Type) *Type {
	return &Type{kind: OptionalKind, name: "optional_type", parameters: []*Type{param}}
}

var (
	// NullType is the type of the null literal.
	NullType = &Type{kind: NullTypeKind, name: "null_type"}
	// BoolType is the CEL 'bool' type.
	BoolType = &Type{kind: BoolKind, name: "bool"}
	// IntType is the 64-bit signed integer type.
	IntType = &Type{kind: IntKind, name: "int"}
	// UintType is the 64-bit unsigned integer type, distinct from int.
	UintType = &Type{kind: UintKind, name: "uint"}
	// DoubleType is the 64-bit floating point type.
	DoubleType = &Type{kind: DoubleKind, name: "double"}
	// StringType is the UTF-8 string type.
	StringType = &Type{kind: StringKind, name: "string"}
	// BytesType is the opaque byte sequence type.
	BytesType = &Type{kind: BytesKind, name: "bytes"}
	// DurationType is the signed nanosecond duration type.
	DurationType = &Type{kind: DurationKind, name: "google.protobuf.Duration"}
	// TimestampType is the UTC nanosecond timestamp type.
	TimestampType = &Type{kind: TimestampKind, name: "google.protobuf.Timestamp"}
	// TypeType is the type of type descriptors; type(type(x)) is TypeType.
	TypeType = &Type{kind: TypeKind, name: "type"}
	// DynType matches any runtime kind during overload dispatch.
	DynType = &Type{kind: DynKind, name: "dyn"}
	// ErrType is the type reported by error values.
	ErrType = &Type{kind: ErrorKind, name: "error"}
	// UnknownType is the type reported by unknown-sets.
	UnknownType = &Type{kind: UnknownKind, name: "unknown"}

	// ListType is the unparameterized list(dyn) descriptor reported for
	// runtime list values.
	ListType = NewListType(DynType)
	// MapType is the unparameterized map(dyn, dyn) descriptor reported
	// for runtime map values.
	MapType = NewMapType(DynType, DynType)
	// OptionalType is the optional(dyn) descriptor reported for runtime
	// optional values.
	OptionalType = NewOptionalType(DynType)
)

// Kind returns the value kind the descriptor classifies.
func (t *Type) Kind() Kind {
	return t.kind
}

// TypeName returns the fully qualified type name.
func (t *Type) TypeName() string {
	return t.name
}

// Parameters returns the type parameters, e.g. the element type of a
// list descriptor.
func (t *Type) Parameters() []*Type {
	return t.parameters
}

// DeclaredName renders the descriptor with its parameters, e.g.
// "map(string, int)".
func (t *Type) DeclaredName() string {
	if len(t.parameters) == 0 {
		return t.name
	}
	params := make([]string, len(t.parameters))
	for i, p := range t.parameters {
		params[i] = p.DeclaredName()
	}
	return fmt.Sprintf("%s(%s)", t.name, strings.Join(params, ", "))
}

// IsEquivalentType reports whether two descriptors denote the same
// type, ignoring parameterization of dyn.
func (t *Type) IsEquivalentType(other *Type) bool {
	if t == other {
		return true
	}
	if other == nil {
		return false
	}
	return t.kind == other.kind && t.name == other.name
}

// IsAssignableRuntimeType reports whether a value of runtime type
// `actual` may bind to a parameter declared with the receiver type.
// Dyn accepts anything; null binds to structured types but never to
// primitives.
func (t *Type) IsAssignableRuntimeType(actual *Type) bool {
	if t.kind == DynKind {
		return true
	}
	if actual.kind == NullTypeKind {
		return t.kind == NullTypeKind || t.kind == StructKind
	}
	return t.kind == actual.kind && (t.kind != StructKind || t.name == actual.name)
}

// ref.Val implementation: type descriptors are first-class values.

// ConvertToType supports conversion of a descriptor to its own type
// sentinel only.
func (t *Type) ConvertToType(target ref.Type) ref.Val {
	switch target {
	case TypeType:
		return TypeType
	case StringType:
		return String(t.DeclaredName())
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'type' to '%s'", target.TypeName())
}

// Equal compares descriptors by name.
func (t *Type) Equal(other ref.Val) ref.Val {
	o, ok := other.(*Type)
	if !ok {
		return False
	}
	return Bool(t.IsEquivalentType(o))
}

// Type of a type descriptor is the runtime-type sentinel.
func (t *Type) Type() ref.Type {
	return TypeType
}

// Value returns the declared name of the descriptor.
func (t *Type) Value() any {
	return t.DeclaredName()
}

func (t *Type) String() string {
	return t.DeclaredName()
}

// TypeOf resolves the runtime type descriptor of any engine value; it
// backs the unary `type()` built-in.
func TypeOf(v ref.Val) *Type {
	if _, ok := v.(*Type); ok {
		return TypeType
	}
	if t, ok := v.Type().(*Type); ok {
		switch t.kind {
		case ListKind:
			return ListType
		case MapKind:
			return MapType
		case OptionalKind:
			return OptionalType
		}
		return t
	}
	return NewObjectType(v.Type().TypeName())
}
