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

package types

import (
	"fmt"

	"github.com/google/cel-core/types/ref"
)

// ErrKind classifies evaluation failures. Kinds are part of the public
// contract: callers route on them, messages are for humans.
type ErrKind string

const (
	ErrKindBadFormat         ErrKind = "bad-format"
	ErrKindNoSuchOverload    ErrKind = "no-such-overload"
	ErrKindAmbiguousOverload ErrKind = "ambiguous-overload"
	ErrKindAttributeNotFound ErrKind = "attribute-not-found"
	ErrKindNoSuchKey         ErrKind = "no-such-key"
	ErrKindNoSuchField       ErrKind = "no-such-field"
	ErrKindNumericOverflow   ErrKind = "numeric-overflow"
	ErrKindDivisionByZero    ErrKind = "division-by-zero"
	ErrKindInvalidArgument   ErrKind = "invalid-argument"
	ErrKindRecursionDepth    ErrKind = "recursion-depth-exceeded"
	ErrKindIterationBudget   ErrKind = "iteration-budget-exceeded"
	ErrKindCancelled         ErrKind = "cancelled"
	ErrKindInternal          ErrKind = "internal-error"
)

// Err is a deferred evaluation error carried through evaluation as an
// ordinary value. It propagates lazily and is absorbed only by the
// short-circuiting operators.
type Err struct {
	kind  ErrKind
	msg   string
	id    int64
	cause error
}

var _ ref.Val = (*Err)(nil)

// NewErr produces an internal-error value from a format string.
func NewErr(format string, args ...any) *Err {
	return NewErrf(ErrKindInternal, format, args...)
}

// NewErrf produces an error value of the given kind.
func NewErrf(kind ErrKind, format string, args ...any) *Err {
	return &Err{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WrapErr adapts a Go error into an error value, preserving it as the
// cause.
func WrapErr(kind ErrKind, err error) *Err {
	return &Err{kind: kind, msg: err.Error(), cause: err}
}

// WithID returns a copy of the error annotated with the expression id
// at which it was produced. The first annotation wins so the error
// keeps pointing at its origin while it propagates outward.
func (e *Err) WithID(id int64) *Err {
	if e.id != 0 {
		return e
	}
	out := *e
	out.id = id
	return &out
}

// Kind returns the failure classification.
func (e *Err) Kind() ErrKind {
	return e.kind
}

// ExprID returns the expression id the error was produced at, or zero.
func (e *Err) ExprID() int64 {
	return e.id
}

// ConvertToType returns the receiver; errors absorb conversions.
func (e *Err) ConvertToType(_ ref.Type) ref.Val {
	return e
}

// Equal returns the receiver; errors absorb equality tests.
func (e *Err) Equal(_ ref.Val) ref.Val {
	return e
}

// Type implements ref.Val.
func (e *Err) Type() ref.Type {
	return ErrType
}

// Value returns the underlying Go error.
func (e *Err) Value() any {
	return error(e)
}

// Error implements the Go error interface so a root error value can be
// surfaced directly to callers.
func (e *Err) Error() string {
	return e.msg
}

// Unwrap exposes the wrapped cause, if any.
func (e *Err) Unwrap() error {
	return e.cause
}

func (e *Err) String() string {
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Common error constructors used across the interpreter and the
// standard overloads.

// NoSuchOverloadErr signals that no overload of a function accepted
// the given arguments.
func NoSuchOverloadErr() *Err {
	return NewErrf(ErrKindNoSuchOverload, "no such overload")
}

// NoSuchKeyErr signals a missed map lookup.
func NoSuchKeyErr(key any) *Err {
	return NewErrf(ErrKindNoSuchKey, "no such key: %v", key)
}

// NoSuchFieldErr signals access to an undeclared structured field.
func NoSuchFieldErr(field string) *Err {
	return NewErrf(ErrKindNoSuchField, "no such field: %s", field)
}

// DivideByZeroErr signals integer division or modulo by zero.
func DivideByZeroErr() *Err {
	return NewErrf(ErrKindDivisionByZero, "division by zero")
}

// OverflowErr signals checked arithmetic or conversion out of range.
func OverflowErr() *Err {
	return NewErrf(ErrKindNumericOverflow, "integer overflow")
}

// MaybeNoSuchOverloadErr propagates val when it is already an error or
// unknown, and reports a missing overload otherwise.
func MaybeNoSuchOverloadErr(val ref.Val) ref.Val {
	return ValOrErr(val, "no such overload")
}

// ValOrErr propagates val when it is an error or unknown, and produces
// a fresh no-such-overload error otherwise.
func ValOrErr(val ref.Val, format string, args ...any) ref.Val {
	if val == nil {
		return NewErrf(ErrKindNoSuchOverload, format, args...)
	}
	switch val.(type) {
	case *Err, *Unknown:
		return val
	}
	return NewErrf(ErrKindNoSuchOverload, format, args...)
}

// IsError reports whether the value is an error value.
func IsError(val ref.Val) bool {
	_, ok := val.(*Err)
	return ok
}

// IsUnknown reports whether the value is an unknown-set.
func IsUnknown(val ref.Val) bool {
	_, ok := val.(*Unknown)
	return ok
}

// IsUnknownOrError reports whether the value must propagate through
// strict operations untouched.
func IsUnknownOrError(val ref.Val) bool {
	switch val.(type) {
	case *Err, *Unknown:
		return true
	}
	return false
}

// AsErr converts a value into a Go error when it is an error value.
func AsErr(val ref.Val) (*Err, bool) {
	e, ok := val.(*Err)
	return e, ok
}
