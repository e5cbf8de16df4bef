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

package interpreter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/cel-core/ast"
	"github.com/google/cel-core/attribute"
	"github.com/google/cel-core/functions"
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

func newTestInterpreter(t *testing.T, opts ...Option) *Interpreter {
	t.Helper()
	d := NewDispatcher(functions.Standard(functions.StandardOptions{
		HeterogeneousComparisons: true,
	}))
	return NewInterpreter(d, opts...)
}

func activation(t *testing.T, bindings map[string]any) Activation {
	t.Helper()
	act, err := NewActivation(bindings, nil)
	require.NoError(t, err)
	return act
}

// existsComprehension builds `[true].exists(i, i)` in expanded form.
func existsComprehension(f *ast.Factory) *ast.Expr {
	rng := f.NewList(f.NewBool(true))
	accuInit := f.NewBool(false)
	cond := f.NewCall(functions.NotStrictlyFalse, f.NewCall(functions.LogicalNot, f.NewIdent("@result")))
	step := f.NewCall(functions.LogicalOr, f.NewIdent("@result"), f.NewIdent("i"))
	result := f.NewIdent("@result")
	return f.NewComprehension("i", rng, "@result", accuInit, cond, step, result)
}

func TestEvalArithmeticWithBindings(t *testing.T) {
	// 1 + a + 2 with a = 3.
	f := ast.NewFactory()
	expr := f.NewCall(functions.Add,
		f.NewCall(functions.Add, f.NewInt(1), f.NewIdent("a")),
		f.NewInt(2),
	)
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, activation(t, map[string]any{"a": 3}))
	assert.Equal(t, types.Int(6), out)
}

func TestEvalDeterminism(t *testing.T) {
	f := ast.NewFactory()
	expr := f.NewCall(functions.Multiply, f.NewIdent("a"), f.NewInt(7))
	tree := &ast.AST{Expr: expr}
	interp := newTestInterpreter(t)
	act := activation(t, map[string]any{"a": 6})
	first := interp.Eval(context.Background(), tree, act)
	second := interp.Eval(context.Background(), tree, act)
	assert.Equal(t, first, second)
	assert.Equal(t, types.Int(42), first)
}

func TestEvalUndeclaredIdentifier(t *testing.T) {
	f := ast.NewFactory()
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: f.NewIdent("missing")}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindAttributeNotFound, e.Kind())
}

func TestEvalDottedNameResolution(t *testing.T) {
	f := ast.NewFactory()
	// a.b.c resolves as one dotted variable before field traversal.
	expr := f.NewSelect(f.NewSelect(f.NewIdent("a"), "b"), "c")
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr},
		activation(t, map[string]any{"a.b.c": 11}))
	assert.Equal(t, types.Int(11), out)

	// The same tree traverses maps field by field when no dotted
	// binding exists.
	out = interp.Eval(context.Background(), &ast.AST{Expr: expr},
		activation(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": 12}}}))
	assert.Equal(t, types.Int(12), out)
}

func TestEvalSelectErrors(t *testing.T) {
	f := ast.NewFactory()
	expr := f.NewSelect(f.NewIdent("m"), "missing")
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr},
		activation(t, map[string]any{"m": map[string]any{"present": 1}}))
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindNoSuchKey, e.Kind())

	out = interp.Eval(context.Background(), &ast.AST{Expr: f.NewSelect(f.NewInt(4), "x")}, EmptyActivation())
	e, ok = types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindAttributeNotFound, e.Kind())
}

func TestEvalPresenceTest(t *testing.T) {
	f := ast.NewFactory()
	interp := newTestInterpreter(t)

	has := f.NewPresenceTest(f.NewIdent("msg"), "standalone_message")
	out := interp.Eval(context.Background(), &ast.AST{Expr: has},
		activation(t, map[string]any{"msg": map[string]any{}}))
	assert.Equal(t, types.False, out)

	has2 := f.NewPresenceTest(f.NewIdent("msg"), "standalone_message")
	out = interp.Eval(context.Background(), &ast.AST{Expr: has2},
		activation(t, map[string]any{"msg": map[string]any{"standalone_message": "set"}}))
	assert.Equal(t, types.True, out)
}

func TestEvalDivisionByZero(t *testing.T) {
	f := ast.NewFactory()
	expr := f.NewCall(functions.Divide, f.NewInt(1), f.NewInt(0))
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindDivisionByZero, e.Kind())
	assert.Equal(t, expr.ID, e.ExprID())
}

func TestShortCircuitAbsorption(t *testing.T) {
	f := ast.NewFactory()
	divByZero := func() *ast.Expr {
		return f.NewCall(functions.Equals,
			f.NewCall(functions.Divide, f.NewInt(1), f.NewInt(0)),
			f.NewInt(0))
	}
	interp := newTestInterpreter(t)

	// 1 == 1 || 1/0 == 0  =>  true
	orExpr := f.NewCall(functions.LogicalOr,
		f.NewCall(functions.Equals, f.NewInt(1), f.NewInt(1)),
		divByZero(),
	)
	out := interp.Eval(context.Background(), &ast.AST{Expr: orExpr}, EmptyActivation())
	assert.Equal(t, types.True, out)

	// 1/0 == 0 || 1 == 1  =>  true, error absorbed from the left.
	orExpr2 := f.NewCall(functions.LogicalOr,
		divByZero(),
		f.NewCall(functions.Equals, f.NewInt(1), f.NewInt(1)),
	)
	out = interp.Eval(context.Background(), &ast.AST{Expr: orExpr2}, EmptyActivation())
	assert.Equal(t, types.True, out)

	// false && 1/0 == 0  =>  false
	andExpr := f.NewCall(functions.LogicalAnd, f.NewBool(false), divByZero())
	out = interp.Eval(context.Background(), &ast.AST{Expr: andExpr}, EmptyActivation())
	assert.Equal(t, types.False, out)

	// true && 1/0 == 0  =>  error propagates.
	andExpr2 := f.NewCall(functions.LogicalAnd, f.NewBool(true), divByZero())
	out = interp.Eval(context.Background(), &ast.AST{Expr: andExpr2}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindDivisionByZero, e.Kind())
}

func TestShortCircuitBypass(t *testing.T) {
	f := ast.NewFactory()
	rhs := f.NewIdent("never")
	expr := f.NewCall(functions.LogicalAnd, f.NewBool(false), rhs)
	interp := newTestInterpreter(t)

	evaluated := map[int64]bool{}
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation(),
		WithListener(func(e *ast.Expr, _ ref.Val) {
			evaluated[e.ID] = true
		}))
	assert.Equal(t, types.False, out)
	assert.False(t, evaluated[rhs.ID], "false && X must not evaluate X")

	orRhs := f.NewIdent("never2")
	orExpr := f.NewCall(functions.LogicalOr, f.NewBool(true), orRhs)
	evaluated = map[int64]bool{}
	out = interp.Eval(context.Background(), &ast.AST{Expr: orExpr}, EmptyActivation(),
		WithListener(func(e *ast.Expr, _ ref.Val) {
			evaluated[e.ID] = true
		}))
	assert.Equal(t, types.True, out)
	assert.False(t, evaluated[orRhs.ID], "true || X must not evaluate X")
}

func TestExhaustiveModeObservesBothBranches(t *testing.T) {
	f := ast.NewFactory()
	div := f.NewCall(functions.Divide, f.NewInt(1), f.NewInt(0))
	rhs := f.NewCall(functions.Equals, div, f.NewInt(0))
	expr := f.NewCall(functions.LogicalOr,
		f.NewCall(functions.Equals, f.NewInt(1), f.NewInt(1)),
		rhs,
	)
	interp := newTestInterpreter(t, WithShortCircuit(false))

	var observedDivErr bool
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation(),
		WithListener(func(e *ast.Expr, v ref.Val) {
			if e.ID == div.ID {
				if err, ok := types.AsErr(v); ok && err.Kind() == types.ErrKindDivisionByZero {
					observedDivErr = true
				}
			}
		}))
	assert.Equal(t, types.True, out, "result is unchanged in exhaustive mode")
	assert.True(t, observedDivErr, "listener observes the right-branch error")
}

func TestConditional(t *testing.T) {
	f := ast.NewFactory()
	interp := newTestInterpreter(t)

	cond := f.NewCall(functions.Conditional, f.NewBool(true), f.NewString("yes"), f.NewIdent("boom"))
	out := interp.Eval(context.Background(), &ast.AST{Expr: cond}, EmptyActivation())
	assert.Equal(t, types.String("yes"), out)

	condErr := f.NewCall(functions.Conditional,
		f.NewCall(functions.Divide, f.NewInt(1), f.NewInt(0)),
		f.NewString("yes"), f.NewString("no"))
	out = interp.Eval(context.Background(), &ast.AST{Expr: condErr}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindDivisionByZero, e.Kind())
}

func TestNoMatchingOverload(t *testing.T) {
	f := ast.NewFactory()
	// 1 + "a" finds no overload.
	expr := f.NewCall(functions.Add, f.NewInt(1), f.NewString("a"))
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindNoSuchOverload, e.Kind())
}

func TestCandidateOverloadsNarrowDispatch(t *testing.T) {
	f := ast.NewFactory()
	expr := f.NewCall(functions.Add, f.NewInt(1), f.NewInt(2))
	expr.Call.OverloadIDs = []string{"add_double"}
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindNoSuchOverload, e.Kind(),
		"checker candidates exclude the int overload")
}

func TestComprehensionExists(t *testing.T) {
	f := ast.NewFactory()
	expr := existsComprehension(f)
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	assert.Equal(t, types.True, out)
}

func TestComprehensionAll(t *testing.T) {
	// [1, 2, 3].all(x, x < 3) => false; only the last element fails.
	f := ast.NewFactory()
	rng := f.NewList(f.NewInt(1), f.NewInt(2), f.NewInt(3))
	cond := f.NewCall(functions.NotStrictlyFalse, f.NewIdent("@result"))
	step := f.NewCall(functions.LogicalAnd,
		f.NewIdent("@result"),
		f.NewCall(functions.Less, f.NewIdent("x"), f.NewInt(3)),
	)
	expr := f.NewComprehension("x", rng, "@result", f.NewBool(true), cond, step, f.NewIdent("@result"))
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	assert.Equal(t, types.False, out)
}

func TestComprehensionMapIterationOrder(t *testing.T) {
	// Iterating a map visits keys in construction order; accumulate
	// them into a concatenated string.
	f := ast.NewFactory()
	rng := f.NewMap(
		ast.MapEntry{Key: f.NewString("b"), Value: f.NewInt(1)},
		ast.MapEntry{Key: f.NewString("a"), Value: f.NewInt(2)},
		ast.MapEntry{Key: f.NewString("c"), Value: f.NewInt(3)},
	)
	cond := f.NewCall(functions.NotStrictlyFalse, f.NewBool(true))
	step := f.NewCall(functions.Add, f.NewIdent("@result"), f.NewIdent("k"))
	expr := f.NewComprehension("k", rng, "@result", f.NewString(""), cond, step, f.NewIdent("@result"))
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	assert.Equal(t, types.String("bac"), out)
}

func TestComprehensionIterationBudget(t *testing.T) {
	f := ast.NewFactory()
	elems := make([]*ast.Expr, 5)
	for i := range elems {
		elems[i] = f.NewInt(int64(i))
	}
	rng := f.NewList(elems...)
	cond := f.NewCall(functions.NotStrictlyFalse, f.NewBool(true))
	step := f.NewIdent("@result")
	expr := f.NewComprehension("x", rng, "@result", f.NewInt(0), cond, step, f.NewIdent("@result"))

	interp := newTestInterpreter(t, WithComprehensionMaxIterations(4))
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindIterationBudget, e.Kind())

	interp = newTestInterpreter(t, WithComprehensionMaxIterations(5))
	out = interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	assert.Equal(t, types.Int(0), out)
}

func TestComprehensionScopeIsolation(t *testing.T) {
	// The accumulator name of an inner comprehension must not leak
	// into the outer scope, and iteration variables must not survive
	// the loop.
	f := ast.NewFactory()
	inner := existsComprehension(f)
	// ["x"].exists(i, [true].exists(i, i) && i == "x")
	rng := f.NewList(f.NewString("x"))
	cond := f.NewCall(functions.NotStrictlyFalse, f.NewCall(functions.LogicalNot, f.NewIdent("@outer")))
	step := f.NewCall(functions.LogicalOr,
		f.NewIdent("@outer"),
		f.NewCall(functions.LogicalAnd,
			inner,
			f.NewCall(functions.Equals, f.NewIdent("i"), f.NewString("x")),
		),
	)
	expr := f.NewComprehension("i", rng, "@outer", f.NewBool(false), cond, step, f.NewIdent("@outer"))
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	assert.Equal(t, types.True, out)
}

func TestRecursionDepthLimit(t *testing.T) {
	f := ast.NewFactory()
	expr := f.NewInt(0)
	for i := int64(1); i <= 600; i++ {
		expr = f.NewCall(functions.Add, expr, f.NewInt(1))
	}
	interp := newTestInterpreter(t)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindRecursionDepth, e.Kind())

	interp = newTestInterpreter(t, WithMaxRecursionDepth(2000))
	out = interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	assert.Equal(t, types.Int(600), out)
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := ast.NewFactory()
	expr := f.NewCall(functions.Add, f.NewInt(1), f.NewInt(2))
	interp := newTestInterpreter(t)
	out := interp.Eval(ctx, &ast.AST{Expr: expr}, EmptyActivation())
	e, ok := types.AsErr(out)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindCancelled, e.Kind())
}

func TestUnknownTracking(t *testing.T) {
	f := ast.NewFactory()
	resolver := NewPartialResolver(attribute.MustParsePattern("request.auth"))
	base := activation(t, map[string]any{"size": 10})
	act := NewPartialActivation(base, resolver)
	interp := newTestInterpreter(t)

	// request.auth == "admin" propagates the unknown through the
	// strict equality call.
	expr := f.NewCall(functions.Equals,
		f.NewSelect(f.NewIdent("request"), "auth"),
		f.NewString("admin"),
	)
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, act)
	u, ok := out.(*types.Unknown)
	require.True(t, ok)
	require.Len(t, u.Attributes(), 1)
	assert.True(t, u.Attributes()[0].Equal(attribute.MustParse("request.auth")))

	// Unknowns union across strict arguments and win over errors.
	f2 := ast.NewFactory()
	resolver2 := NewPartialResolver(
		attribute.MustParsePattern("a"),
		attribute.MustParsePattern("b"),
	)
	act2 := NewPartialActivation(activation(t, map[string]any{}), resolver2)
	expr2 := f2.NewCall(functions.Add,
		f2.NewIdent("a"),
		f2.NewCall(functions.Add, f2.NewIdent("b"), f2.NewCall(functions.Divide, f2.NewInt(1), f2.NewInt(0))),
	)
	out = interp.Eval(context.Background(), &ast.AST{Expr: expr2}, act2)
	u, ok = out.(*types.Unknown)
	require.True(t, ok, "unknown union beats error, got %v", out)
	assert.Len(t, u.Attributes(), 2)
}

func TestUnknownAbsorbedByShortCircuit(t *testing.T) {
	f := ast.NewFactory()
	resolver := NewPartialResolver(attribute.MustParsePattern("flag"))
	act := NewPartialActivation(activation(t, map[string]any{}), resolver)
	interp := newTestInterpreter(t)

	// unknown || true => true
	expr := f.NewCall(functions.LogicalOr, f.NewIdent("flag"), f.NewBool(true))
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, act)
	assert.Equal(t, types.True, out)

	// unknown && true => unknown
	expr2 := f.NewCall(functions.LogicalAnd, f.NewIdent("flag"), f.NewBool(true))
	out = interp.Eval(context.Background(), &ast.AST{Expr: expr2}, act)
	assert.True(t, types.IsUnknown(out))
}

func TestLateBoundFunctions(t *testing.T) {
	f := ast.NewFactory()
	expr := f.NewMemberCall("format", f.NewString("%f %s"),
		f.NewList(f.NewDouble(3.14), f.NewString("test")))
	interp := newTestInterpreter(t)

	// Without the binding the call cannot resolve.
	out := interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation())
	require.True(t, types.IsError(out))

	late := map[string][]*functions.Overload{
		"format": {{
			ID:       "string_format_list",
			ArgTypes: []*types.Type{types.StringType, types.ListType},
			Function: func(args ...ref.Val) ref.Val {
				return types.String("3.140000 test")
			},
		}},
	}
	out = interp.Eval(context.Background(), &ast.AST{Expr: expr}, EmptyActivation(),
		WithLateBindings(late))
	assert.Equal(t, types.String("3.140000 test"), out)
}

func TestListAndMapLiterals(t *testing.T) {
	f := ast.NewFactory()
	interp := newTestInterpreter(t)

	list := f.NewList(f.NewInt(1), f.NewInt(2))
	out := interp.Eval(context.Background(), &ast.AST{Expr: list}, EmptyActivation())
	require.IsType(t, &types.List{}, out)
	assert.Equal(t, types.Int(2), out.(*types.List).Size())

	m := f.NewMap(
		ast.MapEntry{Key: f.NewString("k"), Value: f.NewInt(1)},
	)
	out = interp.Eval(context.Background(), &ast.AST{Expr: m}, EmptyActivation())
	require.IsType(t, &types.Map{}, out)

	dup := f.NewMap(
		ast.MapEntry{Key: f.NewInt(2), Value: f.NewInt(1)},
		ast.MapEntry{Key: f.NewDouble(2.0), Value: f.NewInt(2)},
	)
	out = interp.Eval(context.Background(), &ast.AST{Expr: dup}, EmptyActivation())
	assert.True(t, types.IsError(out), "heterogeneous-equal keys collide")
}

func TestOptionalLiteralEntries(t *testing.T) {
	f := ast.NewFactory()
	interp := newTestInterpreter(t)

	// An optional-marked element with an empty optional is skipped;
	// a full optional contributes its inner value.
	someCall := f.NewIdent("some")
	noneCall := f.NewIdent("none")
	list := f.NewList(f.NewInt(1), someCall, noneCall)
	list.List.OptionalIndices = []int32{1, 2}

	act := activation(t, map[string]any{
		"some": types.OptionalOf(types.Int(9)),
		"none": types.OptionalNone,
	})
	out := interp.Eval(context.Background(), &ast.AST{Expr: list}, act)
	require.IsType(t, &types.List{}, out)
	l := out.(*types.List)
	assert.Equal(t, types.Int(2), l.Size())
	assert.Equal(t, types.Int(9), l.Get(types.Int(1)))

	// A non-optional value in an optional slot is an error.
	bad := f.NewList(f.NewInt(1))
	bad.List.OptionalIndices = []int32{0}
	out = interp.Eval(context.Background(), &ast.AST{Expr: bad}, EmptyActivation())
	assert.True(t, types.IsError(out))
}

func TestPurityOfEval(t *testing.T) {
	f := ast.NewFactory()
	expr := f.NewCall(functions.Add, f.NewIdent("a"), f.NewInt(1))
	tree := &ast.AST{Expr: expr}
	bindings := map[string]any{"a": 1}
	act := activation(t, bindings)

	interp := newTestInterpreter(t)
	before := tree.MaxID()
	interp.Eval(context.Background(), tree, act)
	assert.Equal(t, before, tree.MaxID())
	// Adaptation memoizes bindings in place but never changes the
	// observable value.
	out := interp.Eval(context.Background(), tree, act)
	assert.Equal(t, types.Int(2), out)
}
