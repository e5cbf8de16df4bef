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

import "github.com/google/cel-core/types/ref"

// Null is the runtime null value. Unset wrapper fields materialize as
// NullValue at the structured-type boundary.
type Null struct{}

// NullValue is the singleton null.
var NullValue = Null{}

var _ ref.Val = NullValue

// ConvertToType implements ref.Val.
func (n Null) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case NullType:
		return n
	case StringType:
		return String("null")
	case TypeType:
		return NullType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'null_type' to '%s'", t.TypeName())
}

// Equal implements ref.Val; null equals only null.
func (n Null) Equal(other ref.Val) ref.Val {
	_, ok := other.(Null)
	return Bool(ok)
}

// Type implements ref.Val.
func (n Null) Type() ref.Type {
	return NullType
}

// Value implements ref.Val.
func (n Null) Value() any {
	return nil
}
