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
	"fmt"

	"github.com/google/cel-core/ast"
	"github.com/google/cel-core/types"
)

// EvalError is the structured failure a program surfaces when its root
// result is an error value: the error kind, a human-readable message,
// the source location when the AST carries a source map, and the
// wrapped cause when one exists.
type EvalError struct {
	Kind     types.ErrKind
	Message  string
	ExprID   int64
	Location *ast.Location

	cause error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("%s: %s (at line %d, column %d)", e.Kind, e.Message, e.Location.Line, e.Location.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause, if any.
func (e *EvalError) Unwrap() error {
	return e.cause
}

// newEvalError converts a root error value into the caller-facing
// form, resolving the source location from the program's source map.
func newEvalError(err *types.Err, info *ast.SourceInfo) *EvalError {
	out := &EvalError{
		Kind:    err.Kind(),
		Message: err.Error(),
		ExprID:  err.ExprID(),
		cause:   err.Unwrap(),
	}
	if loc, found := info.LocationOf(err.ExprID()); found {
		out.Location = &loc
	}
	return out
}
