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

// Package traits declares the behavioral interfaces a runtime value may
// implement beyond the base value contract. The interpreter and the
// standard overloads discover capabilities through these interfaces
// rather than through concrete types, which keeps externally supplied
// structured values first-class.
package traits

import "github.com/google/cel-core/types/ref"

// Sizer values report their element count.
type Sizer interface {
	Size() ref.Val
}

// Indexer values support the `_[_]` operation.
type Indexer interface {
	Get(index ref.Val) ref.Val
}

// Container values support the `in` operator.
type Container interface {
	Contains(value ref.Val) ref.Val
}

// FieldTester values support presence testing via test-only selects.
type FieldTester interface {
	IsSet(field ref.Val) ref.Val
}

// Comparer values support relative ordering against values of the same
// kind.
type Comparer interface {
	Compare(other ref.Val) ref.Val
}

// Iterator walks the elements of an Iterable. HasNext and Next return
// engine values so iteration errors stay inside the value domain.
type Iterator interface {
	HasNext() ref.Val
	Next() ref.Val
}

// Iterable values produce iterators over their elements; maps iterate
// their keys.
type Iterable interface {
	Iterator() Iterator
}

// Lister is the aggregate contract of list values.
type Lister interface {
	ref.Val
	Sizer
	Indexer
	Container
	Iterable
}

// Mapper is the aggregate contract of map values. Find distinguishes
// missing keys from present-but-error lookups.
type Mapper interface {
	ref.Val
	Sizer
	Indexer
	Container
	Iterable
	Find(key ref.Val) (ref.Val, bool)
}
