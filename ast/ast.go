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

// Package ast defines the checked expression tree consumed by the
// evaluator. The tree is produced externally (by a parser and type
// checker) and is immutable once constructed; every node carries an
// expression id that is unique within its AST.
package ast

// Kind indicates the syntactic kind of an expression node.
type Kind int

const (
	// UnspecifiedKind is the zero value and marks an absent node.
	UnspecifiedKind Kind = iota
	// ConstKind is a scalar literal.
	ConstKind
	// IdentKind is a (possibly dotted) identifier reference.
	IdentKind
	// SelectKind is a field selection or presence test.
	SelectKind
	// CallKind is a free-function or receiver-style call.
	CallKind
	// ListKind is a list construction literal.
	ListKind
	// MapKind is a map construction literal.
	MapKind
	// StructKind is a named struct construction literal.
	StructKind
	// ComprehensionKind is the macro-expanded iteration construct.
	ComprehensionKind
)

func (k Kind) String() string {
	switch k {
	case ConstKind:
		return "const"
	case IdentKind:
		return "ident"
	case SelectKind:
		return "select"
	case CallKind:
		return "call"
	case ListKind:
		return "list"
	case MapKind:
		return "map"
	case StructKind:
		return "struct"
	case ComprehensionKind:
		return "comprehension"
	default:
		return "unspecified"
	}
}

// ConstantKind enumerates the scalar kinds a literal node may carry.
type ConstantKind int

const (
	NullConst ConstantKind = iota
	BoolConst
	IntConst
	UintConst
	DoubleConst
	StringConst
	BytesConst
)

// Constant is the payload of a ConstKind node. Exactly the field named
// by Kind is meaningful.
type Constant struct {
	Kind        ConstantKind
	BoolValue   bool
	IntValue    int64
	UintValue   uint64
	DoubleValue float64
	StringValue string
	BytesValue  []byte
}

// SelectExpr is a field selection `operand.field`. When TestOnly is set
// the node is a presence test produced by the `has()` macro.
type SelectExpr struct {
	Operand  *Expr
	Field    string
	TestOnly bool
}

// CallExpr is a function invocation. Target is nil for free functions
// and non-nil for receiver-style calls. OverloadIDs carries the
// candidate overload ids attached by the type checker, in checker
// preference order.
type CallExpr struct {
	Function    string
	Target      *Expr
	Args        []*Expr
	OverloadIDs []string
}

// ListExpr is a list literal. OptionalIndices marks element positions
// whose value is an optional to be skipped when empty.
type ListExpr struct {
	Elements        []*Expr
	OptionalIndices []int32
}

// MapEntry is one key/value pair of a map literal.
type MapEntry struct {
	Key      *Expr
	Value    *Expr
	Optional bool
}

// MapExpr is a map literal with entries in construction order.
type MapExpr struct {
	Entries []MapEntry
}

// StructField is one field initializer of a struct literal.
type StructField struct {
	Name     string
	Value    *Expr
	Optional bool
}

// StructExpr is a named struct construction literal.
type StructExpr struct {
	TypeName string
	Fields   []StructField
}

// ComprehensionExpr is the seven-slot macro-expanded loop form. The
// iteration variable and accumulator are scoped to the comprehension.
type ComprehensionExpr struct {
	IterVar       string
	IterRange     *Expr
	AccuVar       string
	AccuInit      *Expr
	LoopCondition *Expr
	LoopStep      *Expr
	Result        *Expr
}

// Expr is a single node of the checked tree, a tagged variant over the
// closed set of kinds. Exactly the payload field matching Kind is
// non-zero; the rest stay nil.
type Expr struct {
	ID   int64
	Kind Kind

	Const         *Constant
	Ident         string
	Select        *SelectExpr
	Call          *CallExpr
	List          *ListExpr
	Map           *MapExpr
	Struct        *StructExpr
	Comprehension *ComprehensionExpr
}

// Children returns the direct child nodes in construction order. A
// comprehension yields iter-range, accu-init, loop-condition,
// loop-step, result.
func (e *Expr) Children() []*Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case SelectKind:
		return []*Expr{e.Select.Operand}
	case CallKind:
		var out []*Expr
		if e.Call.Target != nil {
			out = append(out, e.Call.Target)
		}
		return append(out, e.Call.Args...)
	case ListKind:
		return append([]*Expr(nil), e.List.Elements...)
	case MapKind:
		out := make([]*Expr, 0, 2*len(e.Map.Entries))
		for _, entry := range e.Map.Entries {
			out = append(out, entry.Key, entry.Value)
		}
		return out
	case StructKind:
		out := make([]*Expr, 0, len(e.Struct.Fields))
		for _, field := range e.Struct.Fields {
			out = append(out, field.Value)
		}
		return out
	case ComprehensionKind:
		c := e.Comprehension
		return []*Expr{c.IterRange, c.AccuInit, c.LoopCondition, c.LoopStep, c.Result}
	default:
		return nil
	}
}

// SourceInfo maps expression ids back to positions in the original
// source text, when the checker preserved them.
type SourceInfo struct {
	// Description names the source, typically a file name or "<input>".
	Description string
	// LineOffsets holds the code point offset at which each line after
	// the first begins, enabling id -> (line, column) resolution.
	LineOffsets []int32
	// Positions maps an expression id to its code point offset.
	Positions map[int64]int32
}

// Location is a resolved 1-based line and 0-based column pair.
type Location struct {
	Line   int
	Column int
}

// LocationOf resolves the source location of an expression id, or
// false when the source map has no entry for it.
func (s *SourceInfo) LocationOf(id int64) (Location, bool) {
	if s == nil {
		return Location{}, false
	}
	offset, found := s.Positions[id]
	if !found {
		return Location{}, false
	}
	line := 1
	col := int(offset)
	for _, lineOffset := range s.LineOffsets {
		if lineOffset > offset {
			break
		}
		line++
		col = int(offset - lineOffset)
	}
	return Location{Line: line, Column: col}, true
}

// AST is a checked expression tree together with its source map.
type AST struct {
	Expr       *Expr
	SourceInfo *SourceInfo
}

// MaxID returns the highest expression id present in the tree. Ids are
// assigned monotonically by the checker, so this is also a safe base
// for generating fresh ids.
func (a *AST) MaxID() int64 {
	return maxID(a.Expr)
}

func maxID(e *Expr) int64 {
	if e == nil {
		return 0
	}
	id := e.ID
	for _, child := range e.Children() {
		if m := maxID(child); m > id {
			id = m
		}
	}
	return id
}
