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

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// Double is the runtime 64-bit floating point value.
type Double float64

var (
	_ ref.Val         = Double(0)
	_ traits.Comparer = Double(0)
)

// Add implements the `_+_` operator; floating point never overflows
// into an error, it saturates to infinity per IEEE 754.
func (d Double) Add(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return d + o
}

// Subtract implements the `_-_` operator.
func (d Double) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return d - o
}

// Multiply implements the `_*_` operator.
func (d Double) Multiply(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return d * o
}

// Divide implements the `_/_` operator. Division by a zero double is
// defined by IEEE 754 and yields an infinity, not an error.
func (d Double) Divide(other ref.Val) ref.Val {
	o, ok := other.(Double)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return d / o
}

// Negate returns the arithmetic complement.
func (d Double) Negate() ref.Val {
	return -d
}

// Compare orders the receiver against another numeric value; NaN never
// compares and yields an error value.
func (d Double) Compare(other ref.Val) ref.Val {
	if math.IsNaN(float64(d)) {
		return NewErrf(ErrKindNoSuchOverload, "NaN values cannot be ordered")
	}
	switch o := other.(type) {
	case Double:
		return compareDouble(d, o)
	case Int:
		return invertCompare(compareIntDouble(o, d))
	case Uint:
		return invertCompare(compareUintDouble(o, d))
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// ConvertToType implements ref.Val with checked conversions.
func (d Double) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case DoubleType:
		return d
	case IntType:
		v, ok := doubleToInt64Checked(float64(d))
		if !ok {
			return OverflowErr()
		}
		return Int(v)
	case UintType:
		v, ok := doubleToUint64Checked(float64(d))
		if !ok {
			return NewErrf(ErrKindNumericOverflow, "unsigned integer overflow")
		}
		return Uint(v)
	case StringType:
		return String(strconv.FormatFloat(float64(d), 'g', -1, 64))
	case TypeType:
		return DoubleType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'double' to '%s'", t.TypeName())
}

// Equal implements ref.Val with heterogeneous numeric equality; NaN is
// not equal to anything, including itself.
func (d Double) Equal(other ref.Val) ref.Val {
	if math.IsNaN(float64(d)) {
		return False
	}
	switch o := other.(type) {
	case Double:
		return Bool(d == o)
	case Int:
		return Bool(compareIntDouble(o, d) == IntZero)
	case Uint:
		return Bool(compareUintDouble(o, d) == IntZero)
	default:
		return False
	}
}

// Type implements ref.Val.
func (d Double) Type() ref.Type {
	return DoubleType
}

// Value implements ref.Val.
func (d Double) Value() any {
	return float64(d)
}
