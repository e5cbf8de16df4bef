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
	"fmt"

	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

// Activation is a scoped mapping from variable names, possibly dotted,
// to values. Activations chain: a child shadows its parent, and
// comprehensions push ephemeral frames for their iteration and
// accumulator variables.
type Activation interface {
	// ResolveName returns the value bound to the name in this scope or
	// any parent scope.
	ResolveName(name string) (ref.Val, bool)

	// Parent returns the next activation in the chain, or nil.
	Parent() Activation
}

// EmptyActivation binds nothing.
func EmptyActivation() Activation {
	return emptyActivation{}
}

type emptyActivation struct{}

func (emptyActivation) ResolveName(string) (ref.Val, bool) { return nil, false }
func (emptyActivation) Parent() Activation                 { return nil }

// NewActivation builds an activation from a bindings map. Values may
// be engine values, Go natives (adapted lazily through the adapter),
// or zero-argument suppliers invoked on first resolution.
func NewActivation(bindings map[string]any, adapter types.Adapter) (Activation, error) {
	if bindings == nil {
		return nil, fmt.Errorf("activation requires a non-nil bindings map")
	}
	if adapter == nil {
		adapter = types.DefaultAdapter
	}
	return &mapActivation{bindings: bindings, adapter: adapter}, nil
}

type mapActivation struct {
	bindings map[string]any
	adapter  types.Adapter
}

func (a *mapActivation) ResolveName(name string) (ref.Val, bool) {
	raw, found := a.bindings[name]
	if !found {
		return nil, false
	}
	switch v := raw.(type) {
	case ref.Val:
		return v, true
	case func() ref.Val:
		resolved := v()
		a.bindings[name] = resolved
		return resolved, true
	default:
		resolved := a.adapter.NativeToValue(raw)
		a.bindings[name] = resolved
		return resolved, true
	}
}

func (a *mapActivation) Parent() Activation { return nil }

// NewHierarchicalActivation chains a child over a parent; the child
// shadows.
func NewHierarchicalActivation(parent, child Activation) Activation {
	return &hierarchicalActivation{parent: parent, child: child}
}

type hierarchicalActivation struct {
	parent Activation
	child  Activation
}

func (a *hierarchicalActivation) ResolveName(name string) (ref.Val, bool) {
	if v, found := a.child.ResolveName(name); found {
		return v, true
	}
	return a.parent.ResolveName(name)
}

func (a *hierarchicalActivation) Parent() Activation { return a.parent }

// varActivation is the single-variable frame comprehensions push for
// their accumulator and iteration variables. The value slot is
// mutable; the frame itself is never shared across evaluations.
type varActivation struct {
	parent Activation
	name   string
	val    ref.Val
}

func (a *varActivation) ResolveName(name string) (ref.Val, bool) {
	if name == a.name {
		return a.val, true
	}
	return a.parent.ResolveName(name)
}

func (a *varActivation) Parent() Activation { return a.parent }
