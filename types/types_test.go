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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/cel-core/types/ref"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		value ref.Val
		want  *Type
	}{
		{value: True, want: BoolType},
		{value: Int(1), want: IntType},
		{value: Uint(1), want: UintType},
		{value: Double(1), want: DoubleType},
		{value: String(""), want: StringType},
		{value: Bytes(nil), want: BytesType},
		{value: NullValue, want: NullType},
		{value: Duration{}, want: DurationType},
		{value: Timestamp{}, want: TimestampType},
		{value: NewList(), want: ListType},
		{value: NewMap(), want: MapType},
		{value: OptionalNone, want: OptionalType},
	}
	for _, tc := range tests {
		assert.Same(t, tc.want, TypeOf(tc.value), "type of %v", tc.value)
	}

	// type(type(x)) is always the runtime-type sentinel.
	assert.Same(t, TypeType, TypeOf(TypeOf(Int(1))))
	assert.Same(t, TypeType, TypeOf(BoolType))
}

func TestTypeDescriptors(t *testing.T) {
	assert.Equal(t, "list(dyn)", ListType.DeclaredName())
	assert.Equal(t, "map(dyn, dyn)", MapType.DeclaredName())
	assert.Equal(t, "optional_type(dyn)", OptionalType.DeclaredName())
	assert.Equal(t, "int", IntType.TypeName())

	obj := NewObjectType("google.type.Money")
	assert.Equal(t, "google.type.Money", obj.TypeName())
	assert.Equal(t, True, obj.Equal(NewObjectType("google.type.Money")))
	assert.Equal(t, False, obj.Equal(NewObjectType("google.type.Date")))
}

func TestAssignability(t *testing.T) {
	assert.True(t, DynType.IsAssignableRuntimeType(IntType))
	assert.True(t, IntType.IsAssignableRuntimeType(IntType))
	assert.False(t, IntType.IsAssignableRuntimeType(UintType))

	// Null binds to structured expectations, not primitives.
	obj := NewObjectType("google.type.Money")
	assert.True(t, obj.IsAssignableRuntimeType(NullType))
	assert.False(t, StringType.IsAssignableRuntimeType(NullType))
}

func TestCheckedIntArithmetic(t *testing.T) {
	assert.Equal(t, Int(5), Int(2).Add(Int(3)))
	assert.Equal(t, Int(-1), Int(2).Subtract(Int(3)))
	assert.Equal(t, Int(6), Int(2).Multiply(Int(3)))
	assert.Equal(t, Int(2), Int(7).Divide(Int(3)))
	assert.Equal(t, Int(1), Int(7).Modulo(Int(3)))

	for name, got := range map[string]ref.Val{
		"add overflow":      Int(math.MaxInt64).Add(IntOne),
		"subtract overflow": Int(math.MinInt64).Subtract(IntOne),
		"multiply overflow": Int(math.MaxInt64).Multiply(Int(2)),
		"divide overflow":   Int(math.MinInt64).Divide(IntNegOne),
		"negate overflow":   Int(math.MinInt64).Negate(),
	} {
		e, ok := AsErr(got)
		require.True(t, ok, name)
		assert.Equal(t, ErrKindNumericOverflow, e.Kind(), name)
	}

	e, ok := AsErr(Int(1).Divide(IntZero))
	require.True(t, ok)
	assert.Equal(t, ErrKindDivisionByZero, e.Kind())

	e, ok = AsErr(Int(1).Modulo(IntZero))
	require.True(t, ok)
	assert.Equal(t, ErrKindDivisionByZero, e.Kind())
}

func TestCheckedUintArithmetic(t *testing.T) {
	assert.Equal(t, Uint(5), Uint(2).Add(Uint(3)))
	assert.Equal(t, Uint(1), Uint(3).Subtract(Uint(2)))

	e, ok := AsErr(Uint(0).Subtract(Uint(1)))
	require.True(t, ok)
	assert.Equal(t, ErrKindNumericOverflow, e.Kind())

	e, ok = AsErr(Uint(math.MaxUint64).Add(Uint(1)))
	require.True(t, ok)
	assert.Equal(t, ErrKindNumericOverflow, e.Kind())

	e, ok = AsErr(Uint(1).Divide(Uint(0)))
	require.True(t, ok)
	assert.Equal(t, ErrKindDivisionByZero, e.Kind())
}

func TestDoubleArithmeticFollowsIEEE(t *testing.T) {
	assert.Equal(t, Double(math.Inf(1)), Double(1).Divide(Double(0)))
	nan := Double(0).Divide(Double(0))
	assert.True(t, math.IsNaN(float64(nan.(Double))))
}

func TestConversions(t *testing.T) {
	assert.Equal(t, Int(2), Double(2.9).ConvertToType(IntType))
	assert.Equal(t, Uint(2), Int(2).ConvertToType(UintType))
	assert.Equal(t, Double(2), Uint(2).ConvertToType(DoubleType))
	assert.Equal(t, String("42"), Int(42).ConvertToType(StringType))
	assert.Equal(t, Int(42), String("42").ConvertToType(IntType))
	assert.Equal(t, Bytes("abc"), String("abc").ConvertToType(BytesType))
	assert.Equal(t, String("abc"), Bytes("abc").ConvertToType(StringType))

	e, ok := AsErr(Int(-1).ConvertToType(UintType))
	require.True(t, ok)
	assert.Equal(t, ErrKindNumericOverflow, e.Kind())

	e, ok = AsErr(String("abc").ConvertToType(IntType))
	require.True(t, ok)
	assert.Equal(t, ErrKindBadFormat, e.Kind())

	e, ok = AsErr(String("not a duration").ConvertToType(DurationType))
	require.True(t, ok)
	assert.Equal(t, ErrKindBadFormat, e.Kind())

	d := String("90s").ConvertToType(DurationType)
	assert.Equal(t, Duration{Duration: 90 * time.Second}, d)

	ts := String("2024-01-02T03:04:05Z").ConvertToType(TimestampType)
	require.IsType(t, Timestamp{}, ts)
	assert.Equal(t, int64(1704164645), ts.(Timestamp).Unix())

	// Epoch-seconds int conversion.
	assert.Equal(t, Int(1704164645), ts.(Timestamp).ConvertToType(IntType))
	epoch := Int(1704164645).ConvertToType(TimestampType)
	assert.Equal(t, ts, epoch)
}

func TestWrapperBoundaryInvariants(t *testing.T) {
	// Unset wrappers surface as null and never as a wrapper object.
	assert.Equal(t, NullValue, DefaultAdapter.NativeToValue(nil))

	// Native numerics promote into the value model.
	assert.Equal(t, Int(3), DefaultAdapter.NativeToValue(int32(3)))
	assert.Equal(t, Uint(3), DefaultAdapter.NativeToValue(uint32(3)))
	assert.Equal(t, Double(1.5), DefaultAdapter.NativeToValue(float32(1.5)))

	// The signed adapter collapses uint into int per feature flag.
	assert.Equal(t, Int(3), SignedAdapter.NativeToValue(uint64(3)))
	e, ok := AsErr(SignedAdapter.NativeToValue(uint64(math.MaxUint64)))
	require.True(t, ok)
	assert.Equal(t, ErrKindNumericOverflow, e.Kind())
}

func TestAdapterContainers(t *testing.T) {
	v := DefaultAdapter.NativeToValue(map[string]any{
		"names": []any{"a", "b"},
		"count": 2,
	})
	m, ok := v.(*Map)
	require.True(t, ok)
	assert.Equal(t, Int(2), m.Size())
	names, found := m.Find(String("names"))
	require.True(t, found)
	assert.Equal(t, Int(2), names.(*List).Size())
}

func TestUnknownAbsorption(t *testing.T) {
	u := NewUnknown()
	assert.Same(t, u, u.Equal(Int(1)))
	assert.Same(t, u, u.ConvertToType(IntType))
	assert.True(t, IsUnknown(u))
	assert.True(t, IsUnknownOrError(u))

	e := NewErrf(ErrKindNoSuchKey, "no such key: x")
	assert.Same(t, e, Equal(e, Int(1)))
	assert.True(t, IsError(e))
}

func TestErrWithID(t *testing.T) {
	e := DivideByZeroErr().WithID(7)
	assert.Equal(t, int64(7), e.ExprID())
	// The origin id sticks while the error propagates.
	assert.Equal(t, int64(7), e.WithID(9).ExprID())
}

func TestOptional(t *testing.T) {
	some := OptionalOf(Int(4))
	assert.True(t, some.HasValue())
	assert.Equal(t, Int(4), some.GetValue())
	assert.False(t, OptionalNone.HasValue())
	assert.Equal(t, True, some.Equal(OptionalOf(Double(4.0))))
	assert.Equal(t, False, some.Equal(OptionalNone))
	assert.Equal(t, True, OptionalNone.Equal(OptionalNone))
	assert.True(t, IsError(OptionalNone.GetValue()))
}
