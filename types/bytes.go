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
	"bytes"
	"unicode/utf8"

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// Bytes is the runtime opaque immutable byte sequence value.
type Bytes []byte

var (
	_ ref.Val         = Bytes(nil)
	_ traits.Comparer = Bytes(nil)
	_ traits.Sizer    = Bytes(nil)
)

// Add concatenates byte sequences.
func (b Bytes) Add(other ref.Val) ref.Val {
	o, ok := other.(Bytes)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	out := make([]byte, 0, len(b)+len(o))
	out = append(out, b...)
	return Bytes(append(out, o...))
}

// Compare orders byte sequences lexicographically.
func (b Bytes) Compare(other ref.Val) ref.Val {
	o, ok := other.(Bytes)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return Int(bytes.Compare(b, o))
}

// Size returns the octet count.
func (b Bytes) Size() ref.Val {
	return Int(len(b))
}

// ConvertToType implements ref.Val. Conversion to string validates
// UTF-8.
func (b Bytes) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case BytesType:
		return b
	case StringType:
		if !utf8.Valid(b) {
			return NewErrf(ErrKindBadFormat, "invalid UTF-8 in bytes, cannot convert to string")
		}
		return String(b)
	case TypeType:
		return BytesType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'bytes' to '%s'", t.TypeName())
}

// Equal implements ref.Val; equality is octet-wise.
func (b Bytes) Equal(other ref.Val) ref.Val {
	o, ok := other.(Bytes)
	return Bool(ok && bytes.Equal(b, o))
}

// Type implements ref.Val.
func (b Bytes) Type() ref.Type {
	return BytesType
}

// Value implements ref.Val.
func (b Bytes) Value() any {
	return []byte(b)
}
