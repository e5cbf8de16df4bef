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

// Uint is the runtime 64-bit unsigned integer value, a kind distinct
// from Int; it is never silently widened.
type Uint uint64

var (
	_ ref.Val         = Uint(0)
	_ traits.Comparer = Uint(0)
)

// Add performs checked addition.
func (u Uint) Add(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	v, ok := addUint64Checked(uint64(u), uint64(o))
	if !ok {
		return NewErrf(ErrKindNumericOverflow, "unsigned integer overflow")
	}
	return Uint(v)
}

// Subtract performs checked subtraction.
func (u Uint) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	v, ok := subtractUint64Checked(uint64(u), uint64(o))
	if !ok {
		return NewErrf(ErrKindNumericOverflow, "unsigned integer overflow")
	}
	return Uint(v)
}

// Multiply performs checked multiplication.
func (u Uint) Multiply(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	v, ok := multiplyUint64Checked(uint64(u), uint64(o))
	if !ok {
		return NewErrf(ErrKindNumericOverflow, "unsigned integer overflow")
	}
	return Uint(v)
}

// Divide implements the `_/_` operator.
func (u Uint) Divide(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	if o == Uint(0) {
		return DivideByZeroErr()
	}
	return u / o
}

// Modulo implements the `_%_` operator.
func (u Uint) Modulo(other ref.Val) ref.Val {
	o, ok := other.(Uint)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	if o == Uint(0) {
		return NewErrf(ErrKindDivisionByZero, "modulus by zero")
	}
	return u % o
}

// Compare orders the receiver against another numeric value.
func (u Uint) Compare(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Uint:
		return compareUint(u, o)
	case Int:
		return invertCompare(compareIntUint(o, u))
	case Double:
		return compareUintDouble(u, o)
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// ConvertToType implements ref.Val with checked conversions.
func (u Uint) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case UintType:
		return u
	case IntType:
		v, ok := uint64ToInt64Checked(uint64(u))
		if !ok {
			return OverflowErr()
		}
		return Int(v)
	case DoubleType:
		return Double(u)
	case StringType:
		return String(strconv.FormatUint(uint64(u), 10))
	case TypeType:
		return UintType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'uint' to '%s'", t.TypeName())
}

// Equal implements ref.Val with heterogeneous numeric equality.
func (u Uint) Equal(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Uint:
		return Bool(u == o)
	case Int:
		return Bool(compareIntUint(o, u) == IntZero)
	case Double:
		return Bool(compareUintDouble(u, o) == IntZero)
	default:
		return False
	}
}

// Type implements ref.Val.
func (u Uint) Type() ref.Type {
	return UintType
}

// Value implements ref.Val.
func (u Uint) Value() any {
	return uint64(u)
}
