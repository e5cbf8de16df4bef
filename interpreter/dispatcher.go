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

	"github.com/google/cel-core/functions"
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

// Dispatcher resolves a function symbol plus runtime arguments to
// exactly one overload. Overloads live in precedence layers: the
// standard library first, engine-registered bindings second, and
// per-evaluation late bindings last. Within a call, the checker's
// candidate overload ids narrow the search.
type Dispatcher struct {
	layers []map[string][]*functions.Overload
}

// NewDispatcher returns a dispatcher over the given base library.
func NewDispatcher(standard map[string][]*functions.Overload) *Dispatcher {
	d := &Dispatcher{}
	if standard != nil {
		d.layers = append(d.layers, standard)
	}
	return d
}

// Register adds engine-level bindings as a new precedence layer. A
// duplicate overload id within the same function of the same layer is
// a configuration error.
func (d *Dispatcher) Register(bindings map[string][]*functions.Overload) error {
	for function, overloads := range bindings {
		seen := map[string]bool{}
		for _, o := range overloads {
			if o.ID == "" {
				return fmt.Errorf("function %q: overload id must not be empty", function)
			}
			if seen[o.ID] {
				return fmt.Errorf("function %q: duplicate overload id %q", function, o.ID)
			}
			seen[o.ID] = true
		}
	}
	d.layers = append(d.layers, bindings)
	return nil
}

// FindFunction reports whether any layer binds the function symbol.
func (d *Dispatcher) FindFunction(function string) bool {
	for _, layer := range d.layers {
		if len(layer[function]) > 0 {
			return true
		}
	}
	return false
}

// OverloadIDs lists the bound overload ids of a function across all
// layers, in precedence order.
func (d *Dispatcher) OverloadIDs(function string) []string {
	var out []string
	for _, layer := range d.layers {
		for _, o := range layer[function] {
			out = append(out, o.ID)
		}
	}
	return out
}

// Resolve selects the unique overload matching the runtime arguments.
// Late bindings, when non-nil, participate as the lowest-precedence
// layer for this resolution only. Candidates, when non-empty, restrict
// the considered overloads to the checker's list.
func (d *Dispatcher) Resolve(function string, candidates []string, args []ref.Val, late map[string][]*functions.Overload) (*functions.Overload, *types.Err) {
	layers := d.layers
	if len(late[function]) > 0 {
		layers = append(append([]map[string][]*functions.Overload(nil), layers...), late)
	}

	allowed := func(id string) bool {
		if len(candidates) == 0 {
			return true
		}
		for _, c := range candidates {
			if c == id {
				return true
			}
		}
		return false
	}

	var matched []*functions.Overload
	bound := false
	for _, layer := range layers {
		for _, o := range layer[function] {
			bound = true
			if !allowed(o.ID) || !o.Matches(args...) {
				continue
			}
			duplicate := false
			for _, m := range matched {
				if m.ID == o.ID {
					duplicate = true
					break
				}
			}
			if !duplicate {
				matched = append(matched, o)
			}
		}
	}

	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		if !bound {
			return nil, types.NewErrf(types.ErrKindAttributeNotFound, "unbound function: %s", function)
		}
		return nil, types.NewErrf(types.ErrKindNoSuchOverload, "found no matching overload for '%s' applied to %s", function, formatArgTypes(args))
	default:
		return nil, types.NewErrf(types.ErrKindAmbiguousOverload, "ambiguous overloads for '%s' applied to %s", function, formatArgTypes(args))
	}
}

func formatArgTypes(args []ref.Val) string {
	out := "("
	for i, arg := range args {
		if i > 0 {
			out += ", "
		}
		out += arg.Type().TypeName()
	}
	return out + ")"
}
