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
	"github.com/google/cel-core/attribute"
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

// AttributeResolver intercepts identifier and select resolution. Given
// a concrete attribute it returns either a resolved value, an
// unknown-set naming the attribute, or not-found, in which case the
// interpreter falls through to the activation.
type AttributeResolver interface {
	Resolve(attr attribute.Attribute) (ref.Val, bool)
}

// NewPartialResolver marks every attribute covered by one of the given
// patterns as unknown. Attributes outside the patterns fall through.
func NewPartialResolver(patterns ...attribute.Pattern) AttributeResolver {
	return &partialResolver{patterns: patterns}
}

type partialResolver struct {
	patterns []attribute.Pattern
}

func (r *partialResolver) Resolve(attr attribute.Attribute) (ref.Val, bool) {
	for _, p := range r.patterns {
		if p.Matches(attr) {
			return types.NewUnknown(attr), true
		}
	}
	return nil, false
}

// NewPartialActivation couples an activation with an attribute
// resolver. The resolver is consulted before the activation on
// identifier and qualified-select resolution.
func NewPartialActivation(base Activation, resolver AttributeResolver) Activation {
	return &partialActivation{base: base, resolver: resolver}
}

type partialActivation struct {
	base     Activation
	resolver AttributeResolver
}

func (a *partialActivation) ResolveName(name string) (ref.Val, bool) {
	return a.base.ResolveName(name)
}

func (a *partialActivation) Parent() Activation { return a.base }

// findResolver walks the activation chain for the nearest attribute
// resolver.
func findResolver(act Activation) AttributeResolver {
	for act != nil {
		if p, ok := act.(*partialActivation); ok {
			return p.resolver
		}
		act = act.Parent()
	}
	return nil
}
