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
	"strconv"

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// Bool is the runtime bool value.
type Bool bool

const (
	// True is the runtime true value.
	True = Bool(true)
	// False is the runtime false value.
	False = Bool(false)
)

var (
	_ ref.Val         = True
	_ traits.Comparer = True
)

// ConvertToType implements ref.Val.
func (b Bool) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case BoolType:
		return b
	case StringType:
		return String(strconv.FormatBool(bool(b)))
	case TypeType:
		return BoolType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'bool' to '%s'", t.TypeName())
}

// Equal implements ref.Val; booleans only equal booleans.
func (b Bool) Equal(other ref.Val) ref.Val {
	o, ok := other.(Bool)
	return Bool(ok && b == o)
}

// Compare orders false before true and fails against other kinds.
func (b Bool) Compare(other ref.Val) ref.Val {
	o, ok := other.(Bool)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	if b == o {
		return IntZero
	}
	if !bool(b) {
		return IntNegOne
	}
	return IntOne
}

// Negate returns the logical complement.
func (b Bool) Negate() ref.Val {
	return !b
}

// Type implements ref.Val.
func (b Bool) Type() ref.Type {
	return BoolType
}

// Value implements ref.Val.
func (b Bool) Value() any {
	return bool(b)
}
