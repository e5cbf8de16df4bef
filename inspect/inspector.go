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

// Package inspect analyzes checked expressions without evaluating
// them: which input identifiers an expression reads, which functions
// it calls, and which references are undeclared. Static analyzers use
// it to compute dependency graphs before evaluation.
package inspect

import (
	"strings"

	"github.com/google/cel-core/ast"
	"github.com/google/cel-core/attribute"
	"github.com/google/cel-core/functions"
)

// Dependency is one declared input read by the expression, with the
// full access path observed, e.g. id "deployment" with path
// "deployment.spec.replicas".
type Dependency struct {
	// ID is the root identifier.
	ID string
	// Path is the access path rooted at ID.
	Path attribute.Attribute
}

// FunctionCall records one invocation of a declared, non-builtin
// function.
type FunctionCall struct {
	// Name is the function symbol; receiver-style calls keep their bare
	// symbol since the target is an ordinary argument expression.
	Name string
	// ArgCount is the number of arguments including any receiver.
	ArgCount int
}

// UnknownIdentifier is a root identifier that is neither declared nor
// internal.
type UnknownIdentifier struct {
	ID   string
	Path attribute.Attribute
}

// UnknownFunction is a called function that is neither declared nor a
// builtin.
type UnknownFunction struct {
	Name string
}

// Inspection aggregates all findings over one expression.
type Inspection struct {
	Dependencies       []Dependency
	FunctionCalls      []FunctionCall
	UnknownIdentifiers []UnknownIdentifier
	UnknownFunctions   []UnknownFunction
}

func (i *Inspection) merge(other Inspection) {
	i.Dependencies = append(i.Dependencies, other.Dependencies...)
	i.FunctionCalls = append(i.FunctionCalls, other.FunctionCalls...)
	i.UnknownIdentifiers = append(i.UnknownIdentifiers, other.UnknownIdentifiers...)
	i.UnknownFunctions = append(i.UnknownFunctions, other.UnknownFunctions...)
}

// Inspector analyzes expressions against a set of declared identifiers
// and functions. An Inspector may be reused across expressions.
type Inspector struct {
	identifiers map[string]struct{}
	functions   map[string]struct{}
	builtins    map[string]struct{}

	// loopVars tracks comprehension variables active during the walk so
	// they are not reported as unknown identifiers.
	loopVars map[string]struct{}
}

// NewInspector returns an inspector that treats the given identifiers
// and function names as declared. The standard built-in library and
// the operator forms are always known.
func NewInspector(identifiers, declaredFunctions []string) *Inspector {
	identMap := map[string]struct{}{}
	for _, id := range identifiers {
		identMap[id] = struct{}{}
	}
	functionMap := map[string]struct{}{}
	for _, fn := range declaredFunctions {
		functionMap[fn] = struct{}{}
	}
	builtins := map[string]struct{}{}
	for name := range functions.Standard(functions.StandardOptions{HeterogeneousComparisons: true}) {
		builtins[name] = struct{}{}
	}
	for _, op := range []string{
		functions.LogicalAnd, functions.LogicalOr, functions.Conditional,
		functions.NotStrictlyFalse,
	} {
		builtins[op] = struct{}{}
	}
	return &Inspector{
		identifiers: identMap,
		functions:   functionMap,
		builtins:    builtins,
		loopVars:    map[string]struct{}{},
	}
}

// Inspect walks the checked expression and reports its dependencies
// and calls.
func (a *Inspector) Inspect(tree *ast.AST) Inspection {
	if tree == nil || tree.Expr == nil {
		return Inspection{}
	}
	return a.inspectExpr(tree.Expr, nil)
}

// inspectExpr dispatches on the expression kind. The path argument
// accumulates the field-selection suffix while descending through
// select chains, so identifiers report their full access path.
func (a *Inspector) inspectExpr(expr *ast.Expr, path []attribute.Qualifier) Inspection {
	switch expr.Kind {
	case ast.IdentKind:
		return a.inspectIdent(expr, path)
	case ast.SelectKind:
		newPath := append([]attribute.Qualifier{attribute.OfString(expr.Select.Field)}, path...)
		return a.inspectExpr(expr.Select.Operand, newPath)
	case ast.CallKind:
		return a.inspectCall(expr.Call)
	case ast.ComprehensionKind:
		return a.inspectComprehension(expr.Comprehension)
	case ast.ListKind, ast.MapKind, ast.StructKind:
		return a.inspectChildren(expr)
	default:
		return Inspection{}
	}
}

func (a *Inspector) inspectChildren(expr *ast.Expr) Inspection {
	out := Inspection{}
	for _, child := range expr.Children() {
		out.merge(a.inspectExpr(child, nil))
	}
	return out
}

func (a *Inspector) inspectIdent(expr *ast.Expr, path []attribute.Qualifier) Inspection {
	name := expr.Ident
	if _, isLoopVar := a.loopVars[name]; isLoopVar {
		return Inspection{}
	}
	full := attribute.New(name, path...)
	if _, declared := a.identifiers[name]; declared {
		return Inspection{Dependencies: []Dependency{{ID: name, Path: full}}}
	}
	if isInternalIdentifier(name) {
		return Inspection{}
	}
	return Inspection{UnknownIdentifiers: []UnknownIdentifier{{ID: name, Path: full}}}
}

func (a *Inspector) inspectCall(call *ast.CallExpr) Inspection {
	out := Inspection{}
	argCount := len(call.Args)
	if call.Target != nil {
		argCount++
		out.merge(a.inspectExpr(call.Target, nil))
	}
	for _, arg := range call.Args {
		out.merge(a.inspectExpr(arg, nil))
	}

	fn := call.Function
	if _, declared := a.functions[fn]; declared {
		out.FunctionCalls = append(out.FunctionCalls, FunctionCall{Name: fn, ArgCount: argCount})
		return out
	}
	if _, builtin := a.builtins[fn]; !builtin {
		out.UnknownFunctions = append(out.UnknownFunctions, UnknownFunction{Name: fn})
	}
	return out
}

// inspectComprehension tracks the iteration and accumulator variables
// as loop-local for the duration of the walk so they are not reported
// as unknown identifiers.
func (a *Inspector) inspectComprehension(comp *ast.ComprehensionExpr) Inspection {
	out := Inspection{}
	out.merge(a.inspectExpr(comp.IterRange, nil))

	a.pushLoopVar(comp.IterVar)
	defer a.popLoopVar(comp.IterVar)
	a.pushLoopVar(comp.AccuVar)
	defer a.popLoopVar(comp.AccuVar)

	out.merge(a.inspectExpr(comp.AccuInit, nil))
	out.merge(a.inspectExpr(comp.LoopCondition, nil))
	out.merge(a.inspectExpr(comp.LoopStep, nil))
	out.merge(a.inspectExpr(comp.Result, nil))
	return out
}

func (a *Inspector) pushLoopVar(name string) {
	a.loopVars[name] = struct{}{}
}

func (a *Inspector) popLoopVar(name string) {
	delete(a.loopVars, name)
}

func isInternalIdentifier(name string) bool {
	return strings.HasPrefix(name, "@") || strings.HasPrefix(name, "$$")
}
