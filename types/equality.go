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
	"fmt"
	"hash/fnv"
	"math"
	"strconv"

	"github.com/google/cel-core/types/ref"
)

// Equal is total runtime equality: it returns True or False for any
// pair of non-absorbing values, with cross-kind numeric equality
// between int, uint, and double. Errors and unknowns propagate.
func Equal(a, b ref.Val) ref.Val {
	if IsUnknownOrError(a) {
		return a
	}
	if IsUnknownOrError(b) {
		return b
	}
	return a.Equal(b)
}

// Compare orders two values of the same primitive kind (or mixed
// numerics), returning Int -1, 0, or 1, or a no-such-overload error
// for unordered kinds.
func Compare(a, b ref.Val) ref.Val {
	if IsUnknownOrError(a) {
		return a
	}
	if IsUnknownOrError(b) {
		return b
	}
	cmp, ok := a.(interface{ Compare(ref.Val) ref.Val })
	if !ok {
		return NewErrf(ErrKindNoSuchOverload, "no ordering for type '%s'", a.Type().TypeName())
	}
	return cmp.Compare(b)
}

func compareInt(a, b Int) Int {
	switch {
	case a < b:
		return IntNegOne
	case a > b:
		return IntOne
	default:
		return IntZero
	}
}

func compareUint(a, b Uint) Int {
	switch {
	case a < b:
		return IntNegOne
	case a > b:
		return IntOne
	default:
		return IntZero
	}
}

func compareDouble(a, b Double) ref.Val {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return NewErrf(ErrKindNoSuchOverload, "NaN values cannot be ordered")
	}
	switch {
	case a < b:
		return IntNegOne
	case a > b:
		return IntOne
	default:
		return IntZero
	}
}

// compareIntUint compares across the signed/unsigned boundary without
// widening through double.
func compareIntUint(i Int, u Uint) Int {
	if i < 0 {
		return IntNegOne
	}
	return compareUint(Uint(i), u)
}

// compareIntDouble compares an int against a double exactly. Doubles
// cannot represent every int64, so the double is first clamped against
// the int64 range and then compared against its truncation.
func compareIntDouble(i Int, d Double) Int {
	switch {
	case math.IsNaN(float64(d)):
		// NaN compares unequal; callers needing ordering reject NaN
		// before reaching here.
		return IntNegOne
	case float64(d) < float64(math.MinInt64):
		return IntOne
	case float64(d) >= float64(math.MaxInt64):
		return IntNegOne
	}
	trunc := int64(d)
	switch {
	case int64(i) < trunc:
		return IntNegOne
	case int64(i) > trunc:
		return IntOne
	}
	frac := float64(d) - float64(trunc)
	switch {
	case frac > 0:
		return IntNegOne
	case frac < 0:
		return IntOne
	default:
		return IntZero
	}
}

// compareUintDouble mirrors compareIntDouble for unsigned operands.
func compareUintDouble(u Uint, d Double) Int {
	switch {
	case math.IsNaN(float64(d)):
		return IntNegOne
	case float64(d) < 0:
		return IntOne
	case float64(d) >= float64(math.MaxUint64):
		return IntNegOne
	}
	trunc := uint64(d)
	switch {
	case uint64(u) < trunc:
		return IntNegOne
	case uint64(u) > trunc:
		return IntOne
	}
	frac := float64(d) - float64(trunc)
	switch {
	case frac > 0:
		return IntNegOne
	case frac < 0:
		return IntOne
	default:
		return IntZero
	}
}

func invertCompare(i Int) Int {
	return -i
}

// Hash returns a hash consistent with Equal: equal values hash equal,
// including across numeric kinds. NaN has a stable hash even though it
// never equals anything.
func Hash(v ref.Val) uint64 {
	h := fnv.New64a()
	hashInto(v, h)
	return h.Sum64()
}

type hasher interface {
	Write([]byte) (int, error)
}

func hashInto(v ref.Val, h hasher) {
	writeTag := func(tag byte) { h.Write([]byte{tag}) }
	writeUint := func(u uint64) {
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(u >> (8 * i))
		}
		h.Write(buf[:])
	}
	switch val := v.(type) {
	case Null:
		writeTag('n')
	case Bool:
		writeTag('b')
		if val {
			writeUint(1)
		} else {
			writeUint(0)
		}
	case Int:
		hashNumeric(int64(val) < 0, uint64(val), h)
	case Uint:
		hashNumeric(false, uint64(val), h)
	case Double:
		d := float64(val)
		switch {
		case math.IsNaN(d):
			writeTag('f')
			writeUint(math.Float64bits(math.NaN()))
		case d == math.Trunc(d) && d >= float64(math.MinInt64) && d < float64(math.MaxInt64):
			hashNumeric(d < 0, uint64(int64(d)), h)
		case d == math.Trunc(d) && d >= 0 && d < float64(math.MaxUint64):
			hashNumeric(false, uint64(d), h)
		default:
			writeTag('f')
			writeUint(math.Float64bits(d))
		}
	case String:
		writeTag('s')
		h.Write([]byte(val))
	case Bytes:
		writeTag('B')
		h.Write(val)
	case Duration:
		writeTag('d')
		writeUint(uint64(val.Duration))
	case Timestamp:
		writeTag('t')
		writeUint(uint64(val.UnixNano()))
	case *List:
		writeTag('l')
		for _, elem := range val.elems {
			hashInto(elem, h)
		}
	case *Map:
		writeTag('m')
		// Maps with equal content in different construction order must
		// hash equal; fold entry hashes with an order-insensitive sum.
		var sum uint64
		for _, entry := range val.entries {
			eh := fnv.New64a()
			hashInto(entry.key, eh)
			hashInto(entry.value, eh)
			sum += eh.Sum64()
		}
		writeUint(sum)
	case *Optional:
		writeTag('o')
		if val.HasValue() {
			hashInto(val.GetValue(), h)
		}
	case *Type:
		writeTag('T')
		h.Write([]byte(val.DeclaredName()))
	default:
		writeTag('x')
		h.Write([]byte(v.Type().TypeName()))
		h.Write([]byte(fmt.Sprintf("%v", v.Value())))
	}
}

// hashNumeric hashes any numeric value through its mathematical value
// so that 2, 2u, and 2.0 share a hash.
func hashNumeric(negative bool, magnitude uint64, h hasher) {
	tag := byte('i')
	if negative {
		tag = 'I'
	}
	var buf [9]byte
	buf[0] = tag
	for i := 0; i < 8; i++ {
		buf[i+1] = byte(magnitude >> (8 * i))
	}
	h.Write(buf[:])
}

// Format renders a value for diagnostics in CEL literal syntax.
func Format(v ref.Val) string {
	switch val := v.(type) {
	case String:
		return strconv.Quote(string(val))
	case Bytes:
		return "b" + strconv.Quote(string(val))
	case Uint:
		return strconv.FormatUint(uint64(val), 10) + "u"
	case Null:
		return "null"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v.Value())
	}
}
