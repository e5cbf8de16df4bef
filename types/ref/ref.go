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

// Package ref holds the minimal reference interfaces shared by every
// runtime value. Concrete value and type implementations live in the
// types package; keeping the contracts here lets behavioral trait
// packages depend on values without importing their implementations.
package ref

// Type is the runtime descriptor of a value's type.
type Type interface {
	// TypeName returns the fully qualified type name, e.g. "int",
	// "list", or "google.type.Money".
	TypeName() string
}

// Val is a runtime value. Every value carries its type, exposes its
// Go-native representation, and answers equality and conversion in the
// value domain so that errors remain ordinary values.
type Val interface {
	// ConvertToType converts the value to the target type, or returns an
	// error value when the conversion is not supported.
	ConvertToType(t Type) Val

	// Equal returns True, False, or an error value when equality is not
	// defined between the operand kinds.
	Equal(other Val) Val

	// Type returns the runtime type descriptor of the value.
	Type() Type

	// Value returns the Go-native representation.
	Value() any
}
