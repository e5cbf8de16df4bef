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

package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

func findOverload(t *testing.T, lib map[string][]*Overload, function, id string) *Overload {
	t.Helper()
	for _, o := range lib[function] {
		if o.ID == id {
			return o
		}
	}
	t.Fatalf("overload %s/%s not found", function, id)
	return nil
}

func TestStandardLibraryShape(t *testing.T) {
	lib := Standard(StandardOptions{HeterogeneousComparisons: true})
	for _, function := range []string{
		Add, Subtract, Multiply, Divide, Modulo, Negate, LogicalNot,
		Equals, NotEquals, Less, LessEquals, Greater, GreaterEquals,
		Index, In, "size", "type", "int", "uint", "double", "string",
		"bytes", "bool", "duration", "timestamp", "matches",
	} {
		assert.NotEmpty(t, lib[function], "missing function %s", function)
	}

	// Stable overload ids.
	assert.NotNil(t, findOverload(t, lib, Add, "add_int64"))
	assert.NotNil(t, findOverload(t, lib, "int", "string_to_int64"))
	assert.NotNil(t, findOverload(t, lib, Less, "less_int64_double"))
}

func TestStandardMatches(t *testing.T) {
	lib := Standard(StandardOptions{})
	matches := findOverload(t, lib, "matches", "matches_string")

	assert.Equal(t, types.True, matches.Function(types.String("tacocat"), types.String("^taco")))
	assert.Equal(t, types.False, matches.Function(types.String("tacocat"), types.String("^cat")))

	out := matches.Function(types.String("x"), types.String("((")) // malformed
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindBadFormat, e.Kind())
}

func TestStandardNotStrictlyFalse(t *testing.T) {
	lib := Standard(StandardOptions{})
	nsf := findOverload(t, lib, NotStrictlyFalse, "not_strictly_false")
	require.True(t, nsf.NonStrict)

	assert.Equal(t, types.False, nsf.Function(types.False))
	assert.Equal(t, types.True, nsf.Function(types.True))
	assert.Equal(t, types.True, nsf.Function(types.NewErr("boom")), "errors fold to true")
	assert.Equal(t, types.True, nsf.Function(types.NewUnknown()), "unknowns fold to true")
}

func TestStandardConcatGuard(t *testing.T) {
	lib := Standard(StandardOptions{MaxConcatLength: 5})
	add := findOverload(t, lib, Add, "add_string")

	assert.Equal(t, types.String("abcd"), add.Function(types.String("ab"), types.String("cd")))
	out := add.Function(types.String("abc"), types.String("defg"))
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindInvalidArgument, e.Kind())
}

func TestStandardHomogeneousEquality(t *testing.T) {
	lib := Standard(StandardOptions{HeterogeneousComparisons: false})
	var crossKind *Overload
	for _, o := range lib[Equals] {
		if o.Matches(types.Int(2), types.Uint(2)) {
			crossKind = o
		}
	}
	assert.Nil(t, crossKind, "2 == 2u has no overload in homogeneous mode")

	sameKind := findOverload(t, lib, Equals, "equals_int")
	assert.True(t, sameKind.Matches(types.Int(2), types.Int(2)))
}

func TestStandardTimestampEpochGating(t *testing.T) {
	without := Standard(StandardOptions{})
	for _, o := range without["timestamp"] {
		assert.NotEqual(t, "int64_to_timestamp", o.ID)
	}
	with := Standard(StandardOptions{TimestampEpoch: true})
	o := findOverload(t, with, "timestamp", "int64_to_timestamp")
	out := o.Function(types.Int(0))
	require.IsType(t, types.Timestamp{}, out)
	assert.Equal(t, int64(0), out.(types.Timestamp).Unix())
}

func TestOverloadMatching(t *testing.T) {
	o := &Overload{
		ID:       "add_int64",
		ArgTypes: []*types.Type{types.IntType, types.IntType},
		Function: func(args ...ref.Val) ref.Val { return types.IntZero },
	}
	assert.True(t, o.Matches(types.Int(1), types.Int(2)))
	assert.False(t, o.Matches(types.Int(1)))
	assert.False(t, o.Matches(types.Int(1), types.Uint(2)))
	// Absorbing arguments match any kind; strictness is applied at
	// invocation, not matching.
	assert.True(t, o.Matches(types.Int(1), types.NewErr("boom")))
	assert.True(t, o.Matches(types.NewUnknown(), types.Int(2)))
}
