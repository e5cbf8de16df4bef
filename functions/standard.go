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
	"regexp"

	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// StandardOptions tunes the shape of the built-in library.
type StandardOptions struct {
	// HeterogeneousComparisons enables cross-kind numeric equality and
	// ordering. When disabled, `2 == 2u` fails with no-such-overload.
	HeterogeneousComparisons bool

	// TimestampEpoch enables the timestamp(int) epoch-seconds
	// conversion overload.
	TimestampEpoch bool

	// MaxConcatLength bounds the result size of string and bytes
	// concatenation; zero means unbounded.
	MaxConcatLength int
}

// Standard returns the built-in function library keyed by function
// symbol. The returned map is freshly allocated and safe to filter or
// extend by the caller.
func Standard(opts StandardOptions) map[string][]*Overload {
	lib := map[string][]*Overload{}
	add := func(function string, overloads ...*Overload) {
		lib[function] = append(lib[function], overloads...)
	}

	concatGuard := func(impl Impl) Impl {
		if opts.MaxConcatLength <= 0 {
			return impl
		}
		limit := opts.MaxConcatLength
		return func(args ...ref.Val) ref.Val {
			total := 0
			for _, arg := range args {
				switch v := arg.(type) {
				case types.String:
					total += len(v)
				case types.Bytes:
					total += len(v)
				}
			}
			if total > limit {
				return types.NewErrf(types.ErrKindInvalidArgument,
					"concatenation would produce %d bytes, limit is %d", total, limit)
			}
			return impl(args...)
		}
	}

	// Arithmetic.
	add(Add,
		overload("add_int64", argTypes(types.IntType, types.IntType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Int).Add(args[1])
		}),
		overload("add_uint64", argTypes(types.UintType, types.UintType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Uint).Add(args[1])
		}),
		overload("add_double", argTypes(types.DoubleType, types.DoubleType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Double).Add(args[1])
		}),
		overload("add_string", argTypes(types.StringType, types.StringType), concatGuard(func(args ...ref.Val) ref.Val {
			return args[0].(types.String).Add(args[1])
		})),
		overload("add_bytes", argTypes(types.BytesType, types.BytesType), concatGuard(func(args ...ref.Val) ref.Val {
			return args[0].(types.Bytes).Add(args[1])
		})),
		overload("add_list", argTypes(types.ListType, types.ListType), func(args ...ref.Val) ref.Val {
			return args[0].(*types.List).Append(args[1])
		}),
		overload("add_duration_duration", argTypes(types.DurationType, types.DurationType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Duration).Add(args[1])
		}),
		overload("add_duration_timestamp", argTypes(types.DurationType, types.TimestampType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Duration).Add(args[1])
		}),
		overload("add_timestamp_duration", argTypes(types.TimestampType, types.DurationType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Timestamp).Add(args[1])
		}),
	)
	add(Subtract,
		overload("subtract_int64", argTypes(types.IntType, types.IntType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Int).Subtract(args[1])
		}),
		overload("subtract_uint64", argTypes(types.UintType, types.UintType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Uint).Subtract(args[1])
		}),
		overload("subtract_double", argTypes(types.DoubleType, types.DoubleType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Double).Subtract(args[1])
		}),
		overload("subtract_timestamp_timestamp", argTypes(types.TimestampType, types.TimestampType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Timestamp).Subtract(args[1])
		}),
		overload("subtract_timestamp_duration", argTypes(types.TimestampType, types.DurationType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Timestamp).Subtract(args[1])
		}),
		overload("subtract_duration_duration", argTypes(types.DurationType, types.DurationType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Duration).Subtract(args[1])
		}),
	)
	add(Multiply,
		overload("multiply_int64", argTypes(types.IntType, types.IntType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Int).Multiply(args[1])
		}),
		overload("multiply_uint64", argTypes(types.UintType, types.UintType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Uint).Multiply(args[1])
		}),
		overload("multiply_double", argTypes(types.DoubleType, types.DoubleType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Double).Multiply(args[1])
		}),
	)
	add(Divide,
		overload("divide_int64", argTypes(types.IntType, types.IntType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Int).Divide(args[1])
		}),
		overload("divide_uint64", argTypes(types.UintType, types.UintType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Uint).Divide(args[1])
		}),
		overload("divide_double", argTypes(types.DoubleType, types.DoubleType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Double).Divide(args[1])
		}),
	)
	add(Modulo,
		overload("modulo_int64", argTypes(types.IntType, types.IntType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Int).Modulo(args[1])
		}),
		overload("modulo_uint64", argTypes(types.UintType, types.UintType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Uint).Modulo(args[1])
		}),
	)
	add(Negate,
		overload("negate_int64", argTypes(types.IntType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Int).Negate()
		}),
		overload("negate_double", argTypes(types.DoubleType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Double).Negate()
		}),
	)

	// Logic. The short-circuiting forms are interpreted structurally;
	// the strict complements live here.
	add(LogicalNot,
		overload("logical_not", argTypes(types.BoolType), func(args ...ref.Val) ref.Val {
			return args[0].(types.Bool).Negate()
		}),
	)
	add(NotStrictlyFalse,
		nonStrict(overload("not_strictly_false", argTypes(types.BoolType), func(args ...ref.Val) ref.Val {
			if b, ok := args[0].(types.Bool); ok {
				return b
			}
			// Errors and unknowns fold to true so a failing loop
			// condition does not mask the loop body's own result.
			return types.True
		})),
	)

	// Equality.
	equalImpl := func(args ...ref.Val) ref.Val {
		return types.Equal(args[0], args[1])
	}
	notEqualImpl := func(args ...ref.Val) ref.Val {
		out := types.Equal(args[0], args[1])
		if b, ok := out.(types.Bool); ok {
			return b.Negate()
		}
		return out
	}
	if opts.HeterogeneousComparisons {
		add(Equals, overload("equals", argTypes(types.DynType, types.DynType), equalImpl))
		add(NotEquals, overload("not_equals", argTypes(types.DynType, types.DynType), notEqualImpl))
	} else {
		// Homogeneous-only equality: cross-kind operands find no
		// overload and the dispatcher reports it.
		for _, t := range comparableTypes() {
			add(Equals, overload("equals_"+t.TypeName(), argTypes(t, t), equalImpl))
			add(NotEquals, overload("not_equals_"+t.TypeName(), argTypes(t, t), notEqualImpl))
		}
	}

	// Ordering.
	type relation struct {
		symbol string
		prefix string
		accept func(types.Int) bool
	}
	relations := []relation{
		{symbol: Less, prefix: "less", accept: func(c types.Int) bool { return c == types.IntNegOne }},
		{symbol: LessEquals, prefix: "less_equals", accept: func(c types.Int) bool { return c != types.IntOne }},
		{symbol: Greater, prefix: "greater", accept: func(c types.Int) bool { return c == types.IntOne }},
		{symbol: GreaterEquals, prefix: "greater_equals", accept: func(c types.Int) bool { return c != types.IntNegOne }},
	}
	ordered := []*types.Type{
		types.BoolType, types.IntType, types.UintType, types.DoubleType,
		types.StringType, types.BytesType, types.DurationType, types.TimestampType,
	}
	numeric := []*types.Type{types.IntType, types.UintType, types.DoubleType}
	for _, rel := range relations {
		impl := func(accept func(types.Int) bool) Impl {
			return func(args ...ref.Val) ref.Val {
				out := types.Compare(args[0], args[1])
				c, ok := out.(types.Int)
				if !ok {
					return out
				}
				return types.Bool(accept(c))
			}
		}(rel.accept)
		for _, t := range ordered {
			add(rel.symbol, overload(rel.prefix+"_"+shortName(t), argTypes(t, t), impl))
		}
		if opts.HeterogeneousComparisons {
			for _, lhs := range numeric {
				for _, rhs := range numeric {
					if lhs == rhs {
						continue
					}
					id := rel.prefix + "_" + shortName(lhs) + "_" + shortName(rhs)
					add(rel.symbol, overload(id, argTypes(lhs, rhs), impl))
				}
			}
		}
	}

	// Indexing and membership.
	add(Index,
		overload("index_list", argTypes(types.ListType, types.IntType), indexImpl),
		overload("index_map", argTypes(types.MapType, types.DynType), indexImpl),
	)
	for _, symbol := range []string{In, InDeprecated} {
		add(symbol,
			overload("in_list", argTypes(types.DynType, types.ListType), inImpl),
			overload("in_map", argTypes(types.DynType, types.MapType), inImpl),
			overload("in_string", argTypes(types.StringType, types.StringType), func(args ...ref.Val) ref.Val {
				return args[1].(types.String).Contains(args[0])
			}),
		)
	}

	// Aggregates.
	sizeImpl := func(args ...ref.Val) ref.Val {
		s, ok := args[0].(traits.Sizer)
		if !ok {
			return types.MaybeNoSuchOverloadErr(args[0])
		}
		return s.Size()
	}
	add("size",
		overload("size_string", argTypes(types.StringType), sizeImpl),
		overload("size_bytes", argTypes(types.BytesType), sizeImpl),
		overload("size_list", argTypes(types.ListType), sizeImpl),
		overload("size_map", argTypes(types.MapType), sizeImpl),
	)

	// Type resolution and conversions.
	add("type",
		overload("type", argTypes(types.DynType), func(args ...ref.Val) ref.Val {
			return types.TypeOf(args[0])
		}),
	)
	conversions := []struct {
		function string
		target   *types.Type
		sources  []*types.Type
	}{
		{function: "int", target: types.IntType, sources: []*types.Type{
			types.IntType, types.UintType, types.DoubleType, types.StringType,
			types.TimestampType, types.DurationType,
		}},
		{function: "uint", target: types.UintType, sources: []*types.Type{
			types.UintType, types.IntType, types.DoubleType, types.StringType,
		}},
		{function: "double", target: types.DoubleType, sources: []*types.Type{
			types.DoubleType, types.IntType, types.UintType, types.StringType,
		}},
		{function: "string", target: types.StringType, sources: []*types.Type{
			types.StringType, types.BoolType, types.IntType, types.UintType,
			types.DoubleType, types.BytesType, types.TimestampType, types.DurationType,
		}},
		{function: "bytes", target: types.BytesType, sources: []*types.Type{
			types.BytesType, types.StringType,
		}},
		{function: "bool", target: types.BoolType, sources: []*types.Type{
			types.BoolType, types.StringType,
		}},
		{function: "duration", target: types.DurationType, sources: []*types.Type{
			types.DurationType, types.StringType,
		}},
		{function: "timestamp", target: types.TimestampType, sources: []*types.Type{
			types.TimestampType, types.StringType,
		}},
	}
	for _, conv := range conversions {
		target := conv.target
		impl := func(args ...ref.Val) ref.Val {
			return args[0].ConvertToType(target)
		}
		for _, source := range conv.sources {
			id := shortName(source) + "_to_" + shortName(target)
			add(conv.function, overload(id, argTypes(source), impl))
		}
	}
	if opts.TimestampEpoch {
		add("timestamp", overload("int64_to_timestamp", argTypes(types.IntType), func(args ...ref.Val) ref.Val {
			return args[0].ConvertToType(types.TimestampType)
		}))
	}

	// Regular expression matching, global and receiver style.
	add("matches",
		overload("matches_string", argTypes(types.StringType, types.StringType), matchesImpl),
	)

	return lib
}

func overload(id string, args []*types.Type, impl Impl) *Overload {
	return &Overload{ID: id, ArgTypes: args, Function: impl}
}

func nonStrict(o *Overload) *Overload {
	o.NonStrict = true
	return o
}

func argTypes(ts ...*types.Type) []*types.Type {
	return ts
}

func indexImpl(args ...ref.Val) ref.Val {
	indexer, ok := args[0].(traits.Indexer)
	if !ok {
		return types.MaybeNoSuchOverloadErr(args[0])
	}
	return indexer.Get(args[1])
}

func inImpl(args ...ref.Val) ref.Val {
	container, ok := args[1].(traits.Container)
	if !ok {
		return types.MaybeNoSuchOverloadErr(args[1])
	}
	return container.Contains(args[0])
}

func matchesImpl(args ...ref.Val) ref.Val {
	pattern, ok := args[1].(types.String)
	if !ok {
		return types.MaybeNoSuchOverloadErr(args[1])
	}
	re, err := regexp.Compile(string(pattern))
	if err != nil {
		return types.NewErrf(types.ErrKindBadFormat, "invalid matches pattern: %v", err)
	}
	return types.Bool(re.MatchString(string(args[0].(types.String))))
}

func comparableTypes() []*types.Type {
	return []*types.Type{
		types.BoolType, types.IntType, types.UintType, types.DoubleType,
		types.StringType, types.BytesType, types.DurationType, types.TimestampType,
		types.NullType, types.ListType, types.MapType, types.TypeType,
	}
}

func shortName(t *types.Type) string {
	switch t {
	case types.DurationType:
		return "duration"
	case types.TimestampType:
		return "timestamp"
	case types.IntType:
		return "int64"
	case types.UintType:
		return "uint64"
	default:
		return t.TypeName()
	}
}
