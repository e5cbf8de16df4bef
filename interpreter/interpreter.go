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

// Package interpreter evaluates checked expression trees against
// activations. The evaluator is a recursive tree walk: errors and
// unknowns are ordinary values that propagate outward unless a
// short-circuiting operator absorbs them, and every evaluation is a
// pure function of the tree and its bindings.
package interpreter

import (
	"context"
	"strings"

	"github.com/google/cel-core/ast"
	"github.com/google/cel-core/attribute"
	"github.com/google/cel-core/functions"
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// DefaultComprehensionMaxIterations caps the iteration count of a
// single comprehension; the cap is enforced against the iter-range
// size before the loop runs.
const DefaultComprehensionMaxIterations = 1000

// EvalListener observes every sub-expression result during a traced
// evaluation.
type EvalListener func(expr *ast.Expr, value ref.Val)

// Interpreter evaluates checked ASTs. It is immutable after
// construction and safe for concurrent use; each evaluation keeps its
// own scope chain.
type Interpreter struct {
	dispatcher    *Dispatcher
	provider      types.Provider
	adapter       types.Adapter
	shortCircuit  bool
	maxDepth      int
	maxIterations int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithProvider supplies the structured-type provider used for struct
// construction and field access.
func WithProvider(p types.Provider) Option {
	return func(i *Interpreter) {
		i.provider = p
		i.adapter = p
	}
}

// WithAdapter overrides the value adapter without a full provider.
func WithAdapter(a types.Adapter) Option {
	return func(i *Interpreter) {
		i.adapter = a
	}
}

// WithShortCircuit toggles short-circuit evaluation of the logical
// operators. Disabled, every branch is evaluated for observability
// while results stay unchanged.
func WithShortCircuit(enabled bool) Option {
	return func(i *Interpreter) {
		i.shortCircuit = enabled
	}
}

// WithMaxRecursionDepth bounds evaluation depth.
func WithMaxRecursionDepth(depth int) Option {
	return func(i *Interpreter) {
		i.maxDepth = depth
	}
}

// WithComprehensionMaxIterations bounds comprehension ranges.
func WithComprehensionMaxIterations(n int) Option {
	return func(i *Interpreter) {
		i.maxIterations = n
	}
}

// NewInterpreter returns an interpreter over the given dispatcher.
func NewInterpreter(dispatcher *Dispatcher, opts ...Option) *Interpreter {
	i := &Interpreter{
		dispatcher:    dispatcher,
		adapter:       types.DefaultAdapter,
		shortCircuit:  true,
		maxDepth:      ast.DefaultMaxRecursionDepth,
		maxIterations: DefaultComprehensionMaxIterations,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// EvalOption configures one evaluation.
type EvalOption func(*evaluation)

// WithListener attaches a per-evaluation trace listener.
func WithListener(l EvalListener) EvalOption {
	return func(e *evaluation) {
		e.listener = l
	}
}

// WithLateBindings adds a per-evaluation binding layer consulted after
// the standard and engine-registered layers. The bindings never mutate
// the interpreter.
func WithLateBindings(bindings map[string][]*functions.Overload) EvalOption {
	return func(e *evaluation) {
		e.late = bindings
	}
}

// Eval evaluates the checked AST against the activation and returns a
// single value, which may be an error value or an unknown-set. The
// context is checked between comprehension iterations and before each
// function dispatch.
func (i *Interpreter) Eval(ctx context.Context, checked *ast.AST, vars Activation, opts ...EvalOption) ref.Val {
	if checked == nil || checked.Expr == nil {
		return types.NewErrf(types.ErrKindInvalidArgument, "evaluation requires a non-empty ast")
	}
	if vars == nil {
		vars = EmptyActivation()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	e := &evaluation{
		interp:   i,
		ctx:      ctx,
		resolver: findResolver(vars),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e.eval(checked.Expr, vars)
}

// evaluation is the per-run state: cancellation, trace listener, late
// bindings, and the recursion depth counter.
type evaluation struct {
	interp   *Interpreter
	ctx      context.Context
	resolver AttributeResolver
	listener EvalListener
	late     map[string][]*functions.Overload
	depth    int
}

func (e *evaluation) eval(expr *ast.Expr, act Activation) ref.Val {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.interp.maxDepth {
		return types.NewErrf(types.ErrKindRecursionDepth,
			"expression recursion depth exceeds limit %d", e.interp.maxDepth).WithID(expr.ID)
	}

	var out ref.Val
	switch expr.Kind {
	case ast.ConstKind:
		out = constValue(expr.Const)
	case ast.IdentKind:
		out = e.evalIdent(expr, act)
	case ast.SelectKind:
		out = e.evalSelect(expr, act)
	case ast.CallKind:
		out = e.evalCall(expr, act)
	case ast.ListKind:
		out = e.evalList(expr, act)
	case ast.MapKind:
		out = e.evalMap(expr, act)
	case ast.StructKind:
		out = e.evalStruct(expr, act)
	case ast.ComprehensionKind:
		out = e.evalComprehension(expr, act)
	default:
		out = types.NewErrf(types.ErrKindInternal, "unexpected expression kind %v", expr.Kind)
	}
	if err, ok := types.AsErr(out); ok {
		out = err.WithID(expr.ID)
	}
	if e.listener != nil {
		e.listener(expr, out)
	}
	return out
}

func constValue(c *ast.Constant) ref.Val {
	switch c.Kind {
	case ast.NullConst:
		return types.NullValue
	case ast.BoolConst:
		return types.Bool(c.BoolValue)
	case ast.IntConst:
		return types.Int(c.IntValue)
	case ast.UintConst:
		return types.Uint(c.UintValue)
	case ast.DoubleConst:
		return types.Double(c.DoubleValue)
	case ast.StringConst:
		return types.String(c.StringValue)
	case ast.BytesConst:
		return types.Bytes(c.BytesValue)
	default:
		return types.NewErrf(types.ErrKindInternal, "unexpected constant kind %v", c.Kind)
	}
}

func (e *evaluation) evalIdent(expr *ast.Expr, act Activation) ref.Val {
	name := expr.Ident
	if e.resolver != nil {
		if v, found := e.resolver.Resolve(attribute.New(name)); found {
			return v
		}
	}
	if v, found := act.ResolveName(name); found {
		return v
	}
	return types.NewErrf(types.ErrKindAttributeNotFound, "undeclared reference to '%s'", name)
}

func (e *evaluation) evalSelect(expr *ast.Expr, act Activation) ref.Val {
	sel := expr.Select
	if !sel.TestOnly {
		// A select chain over an identifier may be a dotted variable
		// name or a name inside a package container; prefer the longest
		// binding before field-by-field evaluation.
		if attr, ok := selectChainAttribute(expr); ok {
			if e.resolver != nil {
				if v, found := e.resolver.Resolve(attr); found {
					return v
				}
			}
			if dotted, ok := dottedName(attr); ok {
				if v, found := act.ResolveName(dotted); found {
					return v
				}
			}
		}
	}

	operand := e.eval(sel.Operand, act)
	if types.IsUnknownOrError(operand) {
		return operand
	}
	field := types.String(sel.Field)

	if sel.TestOnly {
		switch holder := operand.(type) {
		case traits.Mapper:
			v, found := holder.Find(field)
			if v != nil && types.IsUnknownOrError(v) {
				return v
			}
			return types.Bool(found)
		case traits.FieldTester:
			return holder.IsSet(field)
		default:
			return types.NewErrf(types.ErrKindNoSuchOverload,
				"presence test is not supported on type '%s'", operand.Type().TypeName())
		}
	}

	switch holder := operand.(type) {
	case traits.Mapper:
		return holder.Get(field)
	case traits.Indexer:
		return holder.Get(field)
	default:
		return types.NewErrf(types.ErrKindAttributeNotFound,
			"no such attribute '%s' on type '%s'", sel.Field, operand.Type().TypeName())
	}
}

// selectChainAttribute flattens a pure ident/select chain into an
// attribute path rooted at the identifier.
func selectChainAttribute(expr *ast.Expr) (attribute.Attribute, bool) {
	var fields []string
	for expr.Kind == ast.SelectKind && !expr.Select.TestOnly {
		fields = append(fields, expr.Select.Field)
		expr = expr.Select.Operand
	}
	if expr.Kind != ast.IdentKind {
		return attribute.Attribute{}, false
	}
	attr := attribute.New(expr.Ident)
	for i := len(fields) - 1; i >= 0; i-- {
		attr = attr.Qualify(attribute.OfString(fields[i]))
	}
	return attr, true
}

func dottedName(attr attribute.Attribute) (string, bool) {
	parts := []string{attr.Root()}
	for _, q := range attr.Qualifiers() {
		if q.Kind != attribute.StringQualifier {
			return "", false
		}
		parts = append(parts, q.StringValue)
	}
	return strings.Join(parts, "."), true
}

func (e *evaluation) evalCall(expr *ast.Expr, act Activation) ref.Val {
	call := expr.Call
	switch call.Function {
	case functions.LogicalAnd:
		return e.evalLogical(call, act, false)
	case functions.LogicalOr:
		return e.evalLogical(call, act, true)
	case functions.Conditional:
		return e.evalConditional(call, act)
	case functions.NotStrictlyFalse:
		return e.evalNotStrictlyFalse(call, act)
	}

	args := make([]ref.Val, 0, len(call.Args)+1)
	if call.Target != nil {
		args = append(args, e.eval(call.Target, act))
	}
	for _, arg := range call.Args {
		args = append(args, e.eval(arg, act))
	}

	if err := e.ctx.Err(); err != nil {
		return types.NewErrf(types.ErrKindCancelled, "evaluation cancelled: %v", err)
	}

	overload, resolveErr := e.interp.dispatcher.Resolve(call.Function, call.OverloadIDs, args, e.late)
	if resolveErr != nil {
		// A call that cannot resolve still propagates absorbing
		// arguments in preference to the resolution failure.
		if absorbed := absorb(args); absorbed != nil {
			return absorbed
		}
		return resolveErr
	}

	if !overload.NonStrict {
		if absorbed := absorb(args); absorbed != nil {
			return absorbed
		}
	}
	return overload.Function(args...)
}

// absorb applies the strict-argument rules: unknown-sets union and win
// over errors, the first error wins otherwise, nil means all arguments
// are ordinary values.
func absorb(args []ref.Val) ref.Val {
	var unknowns []*types.Unknown
	var firstErr *types.Err
	for _, arg := range args {
		switch v := arg.(type) {
		case *types.Unknown:
			unknowns = append(unknowns, v)
		case *types.Err:
			if firstErr == nil {
				firstErr = v
			}
		}
	}
	if len(unknowns) > 0 {
		return types.MergeUnknowns(unknowns...)
	}
	if firstErr != nil {
		return firstErr
	}
	return nil
}

// evalLogical implements `_&&_` and `_||_`. The dual is selected by
// the identity element: or=true means a true operand forces true and
// false is the identity.
func (e *evaluation) evalLogical(call *ast.CallExpr, act Activation, or bool) ref.Val {
	force := types.Bool(or)
	lhs := e.eval(call.Args[0], act)
	if e.interp.shortCircuit && lhs == force {
		return force
	}
	rhs := e.eval(call.Args[1], act)
	if lhs == force || rhs == force {
		return force
	}
	if lhs == !force && rhs == !force {
		return !force
	}
	if absorbed := absorb([]ref.Val{lhs, rhs}); absorbed != nil {
		return absorbed
	}
	// Neither operand is a bool, an error, nor an unknown.
	return types.MaybeNoSuchOverloadErr(pickNonBool(lhs, rhs))
}

func pickNonBool(vals ...ref.Val) ref.Val {
	for _, v := range vals {
		if _, ok := v.(types.Bool); !ok {
			return v
		}
	}
	return vals[0]
}

func (e *evaluation) evalConditional(call *ast.CallExpr, act Activation) ref.Val {
	cond := e.eval(call.Args[0], act)
	if !e.interp.shortCircuit {
		// Exhaustive mode evaluates both branches so listeners observe
		// them; the selected result is unchanged.
		thenVal := e.eval(call.Args[1], act)
		elseVal := e.eval(call.Args[2], act)
		switch cond {
		case types.True:
			return thenVal
		case types.False:
			return elseVal
		}
		return types.MaybeNoSuchOverloadErr(cond)
	}
	switch cond {
	case types.True:
		return e.eval(call.Args[1], act)
	case types.False:
		return e.eval(call.Args[2], act)
	}
	// Error or unknown conditions propagate without evaluating either
	// branch.
	return types.MaybeNoSuchOverloadErr(cond)
}

func (e *evaluation) evalNotStrictlyFalse(call *ast.CallExpr, act Activation) ref.Val {
	v := e.eval(call.Args[0], act)
	if b, ok := v.(types.Bool); ok {
		return b
	}
	return types.True
}

func (e *evaluation) evalList(expr *ast.Expr, act Activation) ref.Val {
	list := expr.List
	optional := map[int]bool{}
	for _, idx := range list.OptionalIndices {
		optional[int(idx)] = true
	}
	elems := make([]ref.Val, 0, len(list.Elements))
	var raw []ref.Val
	for idx, elemExpr := range list.Elements {
		v := e.eval(elemExpr, act)
		raw = append(raw, v)
		if types.IsUnknownOrError(v) {
			continue
		}
		if optional[idx] {
			opt, ok := v.(*types.Optional)
			if !ok {
				return types.NewErrf(types.ErrKindInvalidArgument,
					"optional list element must be an optional, got '%s'", v.Type().TypeName())
			}
			if !opt.HasValue() {
				continue
			}
			v = opt.GetValue()
		}
		elems = append(elems, v)
	}
	if absorbed := absorb(raw); absorbed != nil {
		return absorbed
	}
	return types.NewList(elems...)
}

func (e *evaluation) evalMap(expr *ast.Expr, act Activation) ref.Val {
	entries := expr.Map.Entries
	kvs := make([]ref.Val, 0, 2*len(entries))
	var raw []ref.Val
	for _, entry := range entries {
		k := e.eval(entry.Key, act)
		v := e.eval(entry.Value, act)
		raw = append(raw, k, v)
		if types.IsUnknownOrError(k) || types.IsUnknownOrError(v) {
			continue
		}
		if entry.Optional {
			opt, ok := v.(*types.Optional)
			if !ok {
				return types.NewErrf(types.ErrKindInvalidArgument,
					"optional map entry must be an optional, got '%s'", v.Type().TypeName())
			}
			if !opt.HasValue() {
				continue
			}
			v = opt.GetValue()
		}
		kvs = append(kvs, k, v)
	}
	if absorbed := absorb(raw); absorbed != nil {
		return absorbed
	}
	return types.NewMap(kvs...)
}

func (e *evaluation) evalStruct(expr *ast.Expr, act Activation) ref.Val {
	if e.interp.provider == nil {
		return types.NewErrf(types.ErrKindAttributeNotFound,
			"unknown type '%s': no structured-type provider configured", expr.Struct.TypeName)
	}
	fields := make(map[string]ref.Val, len(expr.Struct.Fields))
	var raw []ref.Val
	for _, field := range expr.Struct.Fields {
		v := e.eval(field.Value, act)
		raw = append(raw, v)
		if types.IsUnknownOrError(v) {
			continue
		}
		if field.Optional {
			opt, ok := v.(*types.Optional)
			if !ok {
				return types.NewErrf(types.ErrKindInvalidArgument,
					"optional struct field must be an optional, got '%s'", v.Type().TypeName())
			}
			if !opt.HasValue() {
				continue
			}
			v = opt.GetValue()
		}
		fields[field.Name] = v
	}
	if absorbed := absorb(raw); absorbed != nil {
		return absorbed
	}
	return e.interp.provider.NewValue(expr.Struct.TypeName, fields)
}

func (e *evaluation) evalComprehension(expr *ast.Expr, act Activation) ref.Val {
	comp := expr.Comprehension

	iterRange := e.eval(comp.IterRange, act)
	if types.IsUnknownOrError(iterRange) {
		return iterRange
	}
	iterable, ok := iterRange.(traits.Iterable)
	if !ok {
		return types.NewErrf(types.ErrKindNoSuchOverload,
			"type '%s' does not support iteration", iterRange.Type().TypeName())
	}
	if sizer, ok := iterRange.(traits.Sizer); ok {
		if size, ok := sizer.Size().(types.Int); ok && int64(size) > int64(e.interp.maxIterations) {
			return types.NewErrf(types.ErrKindIterationBudget,
				"comprehension range of %d elements exceeds the iteration budget %d",
				int64(size), e.interp.maxIterations)
		}
	}

	accuInit := e.eval(comp.AccuInit, act)
	if _, isErr := types.AsErr(accuInit); isErr {
		return accuInit
	}
	// The accumulator frame lives for the whole loop; the iteration
	// frame is rebound per element on top of it.
	accuFrame := &varActivation{parent: act, name: comp.AccuVar, val: accuInit}
	iterFrame := &varActivation{parent: accuFrame, name: comp.IterVar}

	it := iterable.Iterator()
	for it.HasNext() == types.True {
		if err := e.ctx.Err(); err != nil {
			return types.NewErrf(types.ErrKindCancelled, "evaluation cancelled: %v", err)
		}
		iterFrame.val = it.Next()

		cond := e.eval(comp.LoopCondition, iterFrame)
		if cond == types.False {
			break
		}
		if types.IsUnknownOrError(cond) {
			return cond
		}
		if cond != types.True {
			return types.MaybeNoSuchOverloadErr(cond)
		}

		accuFrame.val = e.eval(comp.LoopStep, iterFrame)
	}
	return e.eval(comp.Result, accuFrame)
}
