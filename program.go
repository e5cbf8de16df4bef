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

package celcore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/google/cel-core/ast"
	"github.com/google/cel-core/functions"
	"github.com/google/cel-core/interpreter"
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

// Program is an evaluable expression produced by a Runtime from a
// checked AST. Programs are immutable and safe for concurrent
// evaluation; each Eval keeps its own scope state.
type Program struct {
	runtime *Runtime
	checked *ast.AST

	// The navigable view is derived lazily and cached per root.
	navOnce sync.Once
	nav     *ast.NavigableExpr
	navErr  error
}

// Program wraps a checked AST for evaluation against this runtime.
func (r *Runtime) Program(checked *ast.AST) (*Program, error) {
	if checked == nil || checked.Expr == nil {
		return nil, fmt.Errorf("program requires a non-empty checked ast")
	}
	return &Program{runtime: r, checked: checked}, nil
}

// AST returns the underlying checked tree.
func (p *Program) AST() *ast.AST {
	return p.checked
}

// NavigableAST returns the cached navigable view of the program's
// tree, building it on first use.
func (p *Program) NavigableAST() (*ast.NavigableExpr, error) {
	p.navOnce.Do(func() {
		p.nav, p.navErr = ast.NewNavigableAST(p.checked,
			ast.WithMaxRecursionDepth(p.runtime.features.MaxParseRecursionDepth))
	})
	return p.nav, p.navErr
}

// Eval evaluates the program against the given bindings. Bindings may
// be a map of variable names to values or a prebuilt Activation. The
// result is a value or an unknown-set; a root error value surfaces as
// an *EvalError.
func (p *Program) Eval(ctx context.Context, bindings any) (ref.Val, error) {
	return p.eval(ctx, bindings, nil, nil)
}

// EvalWithLateBindings evaluates with an additional per-call function
// binding layer. The late bindings never mutate the runtime.
func (p *Program) EvalWithLateBindings(ctx context.Context, bindings any, late map[string][]*functions.Overload) (ref.Val, error) {
	return p.eval(ctx, bindings, late, nil)
}

// Trace evaluates while reporting every sub-expression result to the
// listener. When a logger travels in the context or is configured on
// the runtime, each event is also logged at debug level.
func (p *Program) Trace(ctx context.Context, bindings any, listener interpreter.EvalListener) (ref.Val, error) {
	logger := p.runtime.logger
	if logger == nil {
		logger = slogctx.FromCtx(ctx)
	}
	traced := listener
	if logger != nil && logger.Enabled(ctx, slog.LevelDebug) {
		traced = func(expr *ast.Expr, value ref.Val) {
			logger.DebugContext(ctx, "eval step",
				"exprID", expr.ID,
				"kind", expr.Kind.String(),
				"value", types.Format(value),
			)
			if listener != nil {
				listener(expr, value)
			}
		}
	}
	return p.eval(ctx, bindings, nil, traced)
}

func (p *Program) eval(ctx context.Context, bindings any, late map[string][]*functions.Overload, listener interpreter.EvalListener) (ref.Val, error) {
	act, err := p.activationOf(bindings)
	if err != nil {
		return nil, err
	}
	var opts []interpreter.EvalOption
	switch {
	case listener != nil:
		opts = append(opts, interpreter.WithListener(listener))
	case p.runtime.listener != nil:
		opts = append(opts, interpreter.WithListener(p.runtime.listener))
	}
	if late != nil {
		opts = append(opts, interpreter.WithLateBindings(late))
	}

	out := p.runtime.interp.Eval(ctx, p.checked, act, opts...)
	if errVal, isErr := types.AsErr(out); isErr {
		return nil, newEvalError(errVal, p.checked.SourceInfo)
	}
	return out, nil
}

func (p *Program) activationOf(bindings any) (interpreter.Activation, error) {
	switch vars := bindings.(type) {
	case nil:
		return interpreter.EmptyActivation(), nil
	case interpreter.Activation:
		return vars, nil
	case map[string]any:
		return interpreter.NewActivation(vars, p.runtime.Adapter())
	default:
		return nil, fmt.Errorf("unsupported bindings type %T", bindings)
	}
}
