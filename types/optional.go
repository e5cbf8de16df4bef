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

import "github.com/google/cel-core/types/ref"

// Optional either holds one value or is empty. Optional-marked literal
// entries use it to express conditionally present elements.
type Optional struct {
	value ref.Val
}

// OptionalNone is the singleton empty optional.
var OptionalNone = &Optional{}

var _ ref.Val = OptionalNone

// OptionalOf wraps a value in a non-empty optional.
func OptionalOf(v ref.Val) *Optional {
	return &Optional{value: v}
}

// HasValue reports whether the optional holds a value.
func (o *Optional) HasValue() bool {
	return o.value != nil
}

// GetValue returns the held value, or an error value when empty.
func (o *Optional) GetValue() ref.Val {
	if o.value == nil {
		return NewErrf(ErrKindInvalidArgument, "optional.none() dereference")
	}
	return o.value
}

// ConvertToType implements ref.Val.
func (o *Optional) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case OptionalType:
		return o
	case TypeType:
		return OptionalType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'optional_type' to '%s'", t.TypeName())
}

// Equal implements ref.Val; two optionals are equal when both are
// empty or both hold equal values.
func (o *Optional) Equal(other ref.Val) ref.Val {
	ov, ok := other.(*Optional)
	if !ok {
		return False
	}
	if !o.HasValue() || !ov.HasValue() {
		return Bool(o.HasValue() == ov.HasValue())
	}
	return Equal(o.value, ov.value)
}

// Type implements ref.Val.
func (o *Optional) Type() ref.Type {
	return OptionalType
}

// Value implements ref.Val.
func (o *Optional) Value() any {
	if o.value == nil {
		return nil
	}
	return o.value.Value()
}

func (o *Optional) String() string {
	if o.value == nil {
		return "optional.none()"
	}
	return "optional.of(" + Format(o.value) + ")"
}
