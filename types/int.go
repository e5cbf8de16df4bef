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
	"math"
	"strconv"
	"time"

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// Int is the runtime 64-bit signed integer value.
type Int int64

const (
	// IntZero is the zero int.
	IntZero = Int(0)
	// IntOne is the int 1.
	IntOne = Int(1)
	// IntNegOne is the int -1, the "less" result of Compare.
	IntNegOne = Int(-1)
)

var (
	_ ref.Val         = IntZero
	_ traits.Comparer = IntZero
)

// Add performs checked addition.
func (i Int) Add(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	v, ok := addInt64Checked(int64(i), int64(o))
	if !ok {
		return OverflowErr()
	}
	return Int(v)
}

// Subtract performs checked subtraction.
func (i Int) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	v, ok := subtractInt64Checked(int64(i), int64(o))
	if !ok {
		return OverflowErr()
	}
	return Int(v)
}

// Multiply performs checked multiplication.
func (i Int) Multiply(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	v, ok := multiplyInt64Checked(int64(i), int64(o))
	if !ok {
		return OverflowErr()
	}
	return Int(v)
}

// Divide performs checked division; dividing by zero or overflowing
// MinInt64 / -1 yields an error value.
func (i Int) Divide(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	if o == IntZero {
		return DivideByZeroErr()
	}
	v, ok := divideInt64Checked(int64(i), int64(o))
	if !ok {
		return OverflowErr()
	}
	return Int(v)
}

// Modulo implements the `_%_` operator.
func (i Int) Modulo(other ref.Val) ref.Val {
	o, ok := other.(Int)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	if o == IntZero {
		return NewErrf(ErrKindDivisionByZero, "modulus by zero")
	}
	if int64(i) == math.MinInt64 && o == IntNegOne {
		return OverflowErr()
	}
	return i % o
}

// Negate performs checked negation.
func (i Int) Negate() ref.Val {
	v, ok := negateInt64Checked(int64(i))
	if !ok {
		return OverflowErr()
	}
	return Int(v)
}

// Compare orders the receiver against another numeric value.
func (i Int) Compare(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Int:
		return compareInt(i, o)
	case Uint:
		return compareIntUint(i, o)
	case Double:
		return compareIntDouble(i, o)
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// ConvertToType implements ref.Val with checked conversions.
func (i Int) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case IntType:
		return i
	case UintType:
		u, ok := int64ToUint64Checked(int64(i))
		if !ok {
			return NewErrf(ErrKindNumericOverflow, "unsigned integer overflow")
		}
		return Uint(u)
	case DoubleType:
		return Double(i)
	case StringType:
		return String(strconv.FormatInt(int64(i), 10))
	case TimestampType:
		// Epoch-seconds conversion; enabled through the runtime feature
		// flag which selects the overload.
		if int64(i) < minUnixTime || int64(i) > maxUnixTime {
			return NewErrf(ErrKindNumericOverflow, "timestamp overflow")
		}
		return Timestamp{Time: time.Unix(int64(i), 0).UTC()}
	case TypeType:
		return IntType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'int' to '%s'", t.TypeName())
}

// Equal implements ref.Val with heterogeneous numeric equality.
func (i Int) Equal(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Int:
		return Bool(i == o)
	case Uint:
		return Bool(compareIntUint(i, o) == IntZero)
	case Double:
		return Bool(compareIntDouble(i, o) == IntZero)
	default:
		return False
	}
}

// Type implements ref.Val.
func (i Int) Type() ref.Type {
	return IntType
}

// Value implements ref.Val.
func (i Int) Value() any {
	return int64(i)
}
