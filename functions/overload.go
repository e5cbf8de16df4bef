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

// Package functions defines the overload data model of the dispatcher
// and the standard built-in function library. Each overload is a plain
// data record with an explicit implementation pointer; dispatch is
// table-driven, never virtual.
package functions

import (
	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

// Impl is the implementation of one overload. Receiver-style overloads
// receive their target as the first argument.
type Impl func(args ...ref.Val) ref.Val

// Overload binds a stable overload id to expected argument kinds and
// an implementation.
type Overload struct {
	// ID is the stable overload identifier the type checker attaches to
	// call nodes, e.g. "add_int64".
	ID string

	// ArgTypes are the expected runtime kinds, receiver first for
	// member-style overloads. DynType entries accept any kind.
	ArgTypes []*types.Type

	// NonStrict overloads accept error and unknown-set arguments; the
	// dispatcher short-circuits those away from strict overloads before
	// invocation.
	NonStrict bool

	// Function is the implementation invoked after dispatch.
	Function Impl
}

// Matches reports whether the runtime arguments are acceptable for the
// overload: the arity is exact and every argument's runtime type is
// assignable to the declared kind. Error and unknown arguments match
// any kind; whether they reach the implementation is a strictness
// decision made at invocation time, not a matching one.
func (o *Overload) Matches(args ...ref.Val) bool {
	if len(args) != len(o.ArgTypes) {
		return false
	}
	for i, arg := range args {
		if types.IsUnknownOrError(arg) {
			continue
		}
		if !o.ArgTypes[i].IsAssignableRuntimeType(types.TypeOf(arg)) {
			return false
		}
	}
	return true
}
