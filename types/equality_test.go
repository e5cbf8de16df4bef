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

func TestHeterogeneousNumericEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b ref.Val
		want ref.Val
	}{
		{name: "int eq uint", a: Int(2), b: Uint(2), want: True},
		{name: "int eq double", a: Int(2), b: Double(2.0), want: True},
		{name: "uint eq double", a: Uint(2), b: Double(2.0), want: True},
		{name: "int ne fractional double", a: Int(2), b: Double(2.1), want: False},
		{name: "negative int ne uint", a: Int(-1), b: Uint(math.MaxUint64), want: False},
		{name: "large double ne maxint", a: Int(math.MaxInt64), b: Double(float64(math.MaxInt64)), want: False},
		{name: "nan ne nan", a: Double(math.NaN()), b: Double(math.NaN()), want: False},
		{name: "nan ne int", a: Double(math.NaN()), b: Int(0), want: False},
		{name: "int ne string", a: Int(2), b: String("2"), want: False},
		{name: "bool ne int", a: True, b: Int(1), want: False},
		{name: "null eq null", a: NullValue, b: NullValue, want: True},
		{name: "null ne zero", a: NullValue, b: Int(0), want: False},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(tc.a, tc.b))
			assert.Equal(t, tc.want, Equal(tc.b, tc.a), "equality is symmetric")
		})
	}
}

func TestContainerEquality(t *testing.T) {
	listA := NewList(Int(1), Double(2.0), String("x"))
	listB := NewList(Double(1.0), Uint(2), String("x"))
	assert.Equal(t, True, Equal(listA, listB))
	assert.Equal(t, False, Equal(listA, NewList(Int(1))))

	mapA := NewMap(String("a"), Int(1), Int(2), True)
	mapB := NewMap(Int(2), True, String("a"), Double(1.0))
	assert.Equal(t, True, Equal(mapA, mapB))

	mapC := NewMap(String("a"), Int(2))
	assert.Equal(t, False, Equal(mapA, mapC))

	assert.Equal(t, Bytes([]byte{1, 2}).Equal(Bytes([]byte{1, 2})), True)
	assert.Equal(t, Bytes([]byte{1, 2}).Equal(Bytes([]byte{2, 1})), False)
}

func TestMapHeterogeneousKeys(t *testing.T) {
	m := NewMap(Int(2), String("two")).(*Map)

	v, found := m.Find(Uint(2))
	require.True(t, found)
	assert.Equal(t, String("two"), v)

	v, found = m.Find(Double(2.0))
	require.True(t, found)
	assert.Equal(t, String("two"), v)

	_, found = m.Find(Double(2.1))
	assert.False(t, found)

	dup := NewMap(Int(2), String("a"), Double(2.0), String("b"))
	require.True(t, IsError(dup), "keys equal under numeric equality are indistinguishable")
}

func TestMembershipOperator(t *testing.T) {
	list := NewList(Double(2.0))
	assert.Equal(t, True, list.Contains(Int(2)))
	assert.Equal(t, False, NewList(Int(2)).Contains(Double(2.1)))
}

func TestHashConsistentWithEquality(t *testing.T) {
	equalGroups := [][]ref.Val{
		{Int(2), Uint(2), Double(2.0)},
		{Int(-7), Double(-7.0)},
		{String("abc"), String("abc")},
		{NewList(Int(1), Int(2)), NewList(Double(1.0), Uint(2))},
		{NewMap(String("k"), Int(1)), NewMap(String("k"), Double(1.0))},
		{Duration{Duration: time.Second}, Duration{Duration: time.Second}},
	}
	for _, group := range equalGroups {
		first := Hash(group[0])
		for _, v := range group[1:] {
			require.Equal(t, True, Equal(group[0], v))
			assert.Equal(t, first, Hash(v), "equal values must hash equal: %v", v)
		}
	}

	// NaN never equals itself but must hash stably.
	assert.Equal(t, Hash(Double(math.NaN())), Hash(Double(math.NaN())))
}

func TestOrdering(t *testing.T) {
	assert.Equal(t, IntNegOne, Compare(Int(1), Int(2)))
	assert.Equal(t, IntOne, Compare(Uint(3), Uint(2)))
	assert.Equal(t, IntZero, Compare(Double(2.0), Int(2)))
	assert.Equal(t, IntNegOne, Compare(Int(2), Double(2.5)))
	assert.Equal(t, IntOne, Compare(Uint(3), Double(2.5)))
	assert.Equal(t, IntNegOne, Compare(String("a"), String("b")))
	assert.Equal(t, IntNegOne, Compare(Bytes([]byte{1}), Bytes([]byte{2})))
	assert.Equal(t, IntOne, Compare(
		Timestamp{Time: time.Unix(100, 0)},
		Timestamp{Time: time.Unix(50, 0)},
	))
	assert.Equal(t, IntNegOne, Compare(
		Duration{Duration: time.Second},
		Duration{Duration: time.Minute},
	))

	// Mixed non-numeric kinds do not order.
	cmp := Compare(String("a"), Int(1))
	e, ok := AsErr(cmp)
	require.True(t, ok)
	assert.Equal(t, ErrKindNoSuchOverload, e.Kind())

	cmp = Compare(NullValue, NullValue)
	_, ok = AsErr(cmp)
	assert.True(t, ok, "null has no ordering")
}

func TestCompareLargeBoundaries(t *testing.T) {
	assert.Equal(t, IntNegOne, Compare(Int(math.MaxInt64), Double(math.MaxFloat64)))
	assert.Equal(t, IntOne, Compare(Int(math.MinInt64), Double(-math.MaxFloat64)))
	assert.Equal(t, IntNegOne, Compare(Uint(math.MaxUint64), Double(math.MaxFloat64)))
	assert.Equal(t, IntOne, Compare(Uint(0), Double(-0.5)))
}
