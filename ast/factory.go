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

package ast

// Factory mints expression nodes with monotonically increasing ids.
// It is the construction path used by tooling and tests; checkers that
// produce their own ids can build Expr values directly.
type Factory struct {
	nextID int64
}

// NewFactory returns a factory whose first minted id is 1.
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) id() int64 {
	f.nextID++
	return f.nextID
}

// NewNull mints a null literal.
func (f *Factory) NewNull() *Expr {
	return &Expr{ID: f.id(), Kind: ConstKind, Const: &Constant{Kind: NullConst}}
}

// NewBool mints a bool literal.
func (f *Factory) NewBool(v bool) *Expr {
	return &Expr{ID: f.id(), Kind: ConstKind, Const: &Constant{Kind: BoolConst, BoolValue: v}}
}

// NewInt mints an int literal.
func (f *Factory) NewInt(v int64) *Expr {
	return &Expr{ID: f.id(), Kind: ConstKind, Const: &Constant{Kind: IntConst, IntValue: v}}
}

// NewUint mints a uint literal.
func (f *Factory) NewUint(v uint64) *Expr {
	return &Expr{ID: f.id(), Kind: ConstKind, Const: &Constant{Kind: UintConst, UintValue: v}}
}

// NewDouble mints a double literal.
func (f *Factory) NewDouble(v float64) *Expr {
	return &Expr{ID: f.id(), Kind: ConstKind, Const: &Constant{Kind: DoubleConst, DoubleValue: v}}
}

// NewString mints a string literal.
func (f *Factory) NewString(v string) *Expr {
	return &Expr{ID: f.id(), Kind: ConstKind, Const: &Constant{Kind: StringConst, StringValue: v}}
}

// NewBytes mints a bytes literal.
func (f *Factory) NewBytes(v []byte) *Expr {
	return &Expr{ID: f.id(), Kind: ConstKind, Const: &Constant{Kind: BytesConst, BytesValue: v}}
}

// NewIdent mints an identifier reference.
func (f *Factory) NewIdent(name string) *Expr {
	return &Expr{ID: f.id(), Kind: IdentKind, Ident: name}
}

// NewSelect mints a field selection.
func (f *Factory) NewSelect(operand *Expr, field string) *Expr {
	return &Expr{ID: f.id(), Kind: SelectKind, Select: &SelectExpr{Operand: operand, Field: field}}
}

// NewPresenceTest mints a test-only selection as produced by has().
func (f *Factory) NewPresenceTest(operand *Expr, field string) *Expr {
	return &Expr{ID: f.id(), Kind: SelectKind, Select: &SelectExpr{Operand: operand, Field: field, TestOnly: true}}
}

// NewCall mints a free-function call.
func (f *Factory) NewCall(function string, args ...*Expr) *Expr {
	return &Expr{ID: f.id(), Kind: CallKind, Call: &CallExpr{Function: function, Args: args}}
}

// NewMemberCall mints a receiver-style call.
func (f *Factory) NewMemberCall(function string, target *Expr, args ...*Expr) *Expr {
	return &Expr{ID: f.id(), Kind: CallKind, Call: &CallExpr{Function: function, Target: target, Args: args}}
}

// NewList mints a list literal.
func (f *Factory) NewList(elements ...*Expr) *Expr {
	return &Expr{ID: f.id(), Kind: ListKind, List: &ListExpr{Elements: elements}}
}

// NewMap mints a map literal from the given entries.
func (f *Factory) NewMap(entries ...MapEntry) *Expr {
	return &Expr{ID: f.id(), Kind: MapKind, Map: &MapExpr{Entries: entries}}
}

// NewStruct mints a struct construction literal.
func (f *Factory) NewStruct(typeName string, fields ...StructField) *Expr {
	return &Expr{ID: f.id(), Kind: StructKind, Struct: &StructExpr{TypeName: typeName, Fields: fields}}
}

// NewComprehension mints the seven-slot loop form.
func (f *Factory) NewComprehension(iterVar string, iterRange *Expr, accuVar string, accuInit, loopCondition, loopStep, result *Expr) *Expr {
	return &Expr{ID: f.id(), Kind: ComprehensionKind, Comprehension: &ComprehensionExpr{
		IterVar:       iterVar,
		IterRange:     iterRange,
		AccuVar:       accuVar,
		AccuInit:      accuInit,
		LoopCondition: loopCondition,
		LoopStep:      loopStep,
		Result:        result,
	}}
}
