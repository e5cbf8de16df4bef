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
	"strings"

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// List is the runtime ordered sequence value.
type List struct {
	elems []ref.Val
}

var _ traits.Lister = (*List)(nil)

// NewList returns a list over the given elements. The slice is owned
// by the list afterwards.
func NewList(elems ...ref.Val) *List {
	return &List{elems: elems}
}

// Append returns a new list with the other list's elements appended;
// lists are immutable so the receiver is unchanged.
func (l *List) Append(other ref.Val) ref.Val {
	o, ok := other.(*List)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	elems := make([]ref.Val, 0, len(l.elems)+len(o.elems))
	elems = append(elems, l.elems...)
	elems = append(elems, o.elems...)
	return &List{elems: elems}
}

// Get implements the `_[_]` operator with int, uint, or integral
// double indices.
func (l *List) Get(index ref.Val) ref.Val {
	i, err := indexOf(index, len(l.elems))
	if err != nil {
		return err
	}
	return l.elems[i]
}

func indexOf(index ref.Val, size int) (int, ref.Val) {
	var i int64
	switch idx := index.(type) {
	case Int:
		i = int64(idx)
	case Uint:
		v, ok := uint64ToInt64Checked(uint64(idx))
		if !ok {
			return 0, NewErrf(ErrKindInvalidArgument, "index out of range: %v", idx)
		}
		i = v
	case Double:
		v, ok := doubleToInt64Checked(float64(idx))
		if !ok || Double(v) != idx {
			return 0, NewErrf(ErrKindInvalidArgument, "invalid list index: %v", idx)
		}
		i = v
	default:
		return 0, ValOrErr(index, "unsupported index type '%s'", index.Type().TypeName())
	}
	if i < 0 || i >= int64(size) {
		return 0, NewErrf(ErrKindInvalidArgument, "index out of range: %d", i)
	}
	return int(i), nil
}

// Contains implements the `in` operator with heterogeneous numeric
// equality.
func (l *List) Contains(value ref.Val) ref.Val {
	if IsUnknownOrError(value) {
		return value
	}
	for _, elem := range l.elems {
		if Equal(elem, value) == True {
			return True
		}
	}
	return False
}

// Size implements traits.Sizer.
func (l *List) Size() ref.Val {
	return Int(len(l.elems))
}

// Iterator walks elements in list order.
func (l *List) Iterator() traits.Iterator {
	return &listIterator{elems: l.elems}
}

// ConvertToType implements ref.Val.
func (l *List) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case ListType:
		return l
	case TypeType:
		return ListType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'list' to '%s'", t.TypeName())
}

// Equal implements ref.Val; lists are equal when length-equal and
// element-wise equal.
func (l *List) Equal(other ref.Val) ref.Val {
	o, ok := other.(traits.Lister)
	if !ok {
		return False
	}
	if o.Size() != Int(len(l.elems)) {
		return False
	}
	for i, elem := range l.elems {
		if Equal(elem, o.Get(Int(i))) != True {
			return False
		}
	}
	return True
}

// Type implements ref.Val.
func (l *List) Type() ref.Type {
	return ListType
}

// Value returns the Go-native representation.
func (l *List) Value() any {
	out := make([]any, len(l.elems))
	for i, elem := range l.elems {
		out[i] = elem.Value()
	}
	return out
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, elem := range l.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(Format(elem))
	}
	b.WriteByte(']')
	return b.String()
}

type listIterator struct {
	elems []ref.Val
	idx   int
}

// HasNext implements traits.Iterator.
func (it *listIterator) HasNext() ref.Val {
	return Bool(it.idx < len(it.elems))
}

// Next implements traits.Iterator.
func (it *listIterator) Next() ref.Val {
	if it.idx >= len(it.elems) {
		return NewErrf(ErrKindInternal, "iterator exhausted")
	}
	out := it.elems[it.idx]
	it.idx++
	return out
}
