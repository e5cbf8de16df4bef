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

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// The JSON form mirrors the tagged variant directly: exactly one
// payload field is set per node and determines the kind. 64-bit
// integers travel as strings so that values above 2^53 survive
// JavaScript-adjacent tooling.

type exprJSON struct {
	ID            int64              `json:"id"`
	Const         *constJSON         `json:"const,omitempty"`
	Ident         string             `json:"ident,omitempty"`
	Select        *selectJSON        `json:"select,omitempty"`
	Call          *callJSON          `json:"call,omitempty"`
	List          *listJSON          `json:"list,omitempty"`
	Map           *mapJSON           `json:"map,omitempty"`
	Struct        *structJSON        `json:"struct,omitempty"`
	Comprehension *comprehensionJSON `json:"comprehension,omitempty"`
}

type constJSON struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

type selectJSON struct {
	Operand  *exprJSON `json:"operand"`
	Field    string    `json:"field"`
	TestOnly bool      `json:"testOnly,omitempty"`
}

type callJSON struct {
	Function  string      `json:"function"`
	Target    *exprJSON   `json:"target,omitempty"`
	Args      []*exprJSON `json:"args,omitempty"`
	Overloads []string    `json:"overloads,omitempty"`
}

type listJSON struct {
	Elements        []*exprJSON `json:"elements,omitempty"`
	OptionalIndices []int32     `json:"optionalIndices,omitempty"`
}

type mapEntryJSON struct {
	Key      *exprJSON `json:"key"`
	Value    *exprJSON `json:"value"`
	Optional bool      `json:"optional,omitempty"`
}

type mapJSON struct {
	Entries []mapEntryJSON `json:"entries,omitempty"`
}

type structFieldJSON struct {
	Name     string    `json:"name"`
	Value    *exprJSON `json:"value"`
	Optional bool      `json:"optional,omitempty"`
}

type structJSON struct {
	TypeName string            `json:"typeName"`
	Fields   []structFieldJSON `json:"fields,omitempty"`
}

type comprehensionJSON struct {
	IterVar       string    `json:"iterVar"`
	IterRange     *exprJSON `json:"iterRange"`
	AccuVar       string    `json:"accuVar"`
	AccuInit      *exprJSON `json:"accuInit"`
	LoopCondition *exprJSON `json:"loopCondition"`
	LoopStep      *exprJSON `json:"loopStep"`
	Result        *exprJSON `json:"result"`
}

type astJSON struct {
	Expr       *exprJSON       `json:"expr"`
	SourceInfo *sourceInfoJSON `json:"sourceInfo,omitempty"`
}

type sourceInfoJSON struct {
	Description string           `json:"description,omitempty"`
	LineOffsets []int32          `json:"lineOffsets,omitempty"`
	Positions   map[string]int32 `json:"positions,omitempty"`
}

// MarshalJSON encodes the AST into its stable JSON wire form.
func (a *AST) MarshalJSON() ([]byte, error) {
	out := astJSON{Expr: exprToJSON(a.Expr)}
	if a.SourceInfo != nil {
		info := sourceInfoJSON{
			Description: a.SourceInfo.Description,
			LineOffsets: a.SourceInfo.LineOffsets,
		}
		if len(a.SourceInfo.Positions) > 0 {
			info.Positions = make(map[string]int32, len(a.SourceInfo.Positions))
			for id, pos := range a.SourceInfo.Positions {
				info.Positions[strconv.FormatInt(id, 10)] = pos
			}
		}
		out.SourceInfo = &info
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the JSON wire form back into a checked AST.
func (a *AST) UnmarshalJSON(data []byte) error {
	var in astJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	expr, err := exprFromJSON(in.Expr)
	if err != nil {
		return err
	}
	a.Expr = expr
	if in.SourceInfo != nil {
		info := &SourceInfo{
			Description: in.SourceInfo.Description,
			LineOffsets: in.SourceInfo.LineOffsets,
		}
		if len(in.SourceInfo.Positions) > 0 {
			info.Positions = make(map[int64]int32, len(in.SourceInfo.Positions))
			for idStr, pos := range in.SourceInfo.Positions {
				id, err := strconv.ParseInt(idStr, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid expression id %q in source info: %w", idStr, err)
				}
				info.Positions[id] = pos
			}
		}
		a.SourceInfo = info
	}
	return nil
}

func exprToJSON(e *Expr) *exprJSON {
	if e == nil {
		return nil
	}
	out := &exprJSON{ID: e.ID}
	switch e.Kind {
	case ConstKind:
		out.Const = constToJSON(e.Const)
	case IdentKind:
		out.Ident = e.Ident
	case SelectKind:
		out.Select = &selectJSON{
			Operand:  exprToJSON(e.Select.Operand),
			Field:    e.Select.Field,
			TestOnly: e.Select.TestOnly,
		}
	case CallKind:
		call := &callJSON{
			Function:  e.Call.Function,
			Target:    exprToJSON(e.Call.Target),
			Overloads: e.Call.OverloadIDs,
		}
		for _, arg := range e.Call.Args {
			call.Args = append(call.Args, exprToJSON(arg))
		}
		out.Call = call
	case ListKind:
		list := &listJSON{OptionalIndices: e.List.OptionalIndices}
		for _, elem := range e.List.Elements {
			list.Elements = append(list.Elements, exprToJSON(elem))
		}
		out.List = list
	case MapKind:
		m := &mapJSON{}
		for _, entry := range e.Map.Entries {
			m.Entries = append(m.Entries, mapEntryJSON{
				Key:      exprToJSON(entry.Key),
				Value:    exprToJSON(entry.Value),
				Optional: entry.Optional,
			})
		}
		out.Map = m
	case StructKind:
		s := &structJSON{TypeName: e.Struct.TypeName}
		for _, field := range e.Struct.Fields {
			s.Fields = append(s.Fields, structFieldJSON{
				Name:     field.Name,
				Value:    exprToJSON(field.Value),
				Optional: field.Optional,
			})
		}
		out.Struct = s
	case ComprehensionKind:
		c := e.Comprehension
		out.Comprehension = &comprehensionJSON{
			IterVar:       c.IterVar,
			IterRange:     exprToJSON(c.IterRange),
			AccuVar:       c.AccuVar,
			AccuInit:      exprToJSON(c.AccuInit),
			LoopCondition: exprToJSON(c.LoopCondition),
			LoopStep:      exprToJSON(c.LoopStep),
			Result:        exprToJSON(c.Result),
		}
	}
	return out
}

func constToJSON(c *Constant) *constJSON {
	switch c.Kind {
	case NullConst:
		return &constJSON{Type: "null"}
	case BoolConst:
		return &constJSON{Type: "bool", Value: c.BoolValue}
	case IntConst:
		return &constJSON{Type: "int", Value: strconv.FormatInt(c.IntValue, 10)}
	case UintConst:
		return &constJSON{Type: "uint", Value: strconv.FormatUint(c.UintValue, 10)}
	case DoubleConst:
		return &constJSON{Type: "double", Value: c.DoubleValue}
	case StringConst:
		return &constJSON{Type: "string", Value: c.StringValue}
	case BytesConst:
		return &constJSON{Type: "bytes", Value: c.BytesValue}
	default:
		return &constJSON{Type: "null"}
	}
}

func exprFromJSON(in *exprJSON) (*Expr, error) {
	if in == nil {
		return nil, nil
	}
	out := &Expr{ID: in.ID}
	switch {
	case in.Const != nil:
		c, err := constFromJSON(in.Const)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", in.ID, err)
		}
		out.Kind = ConstKind
		out.Const = c
	case in.Ident != "":
		out.Kind = IdentKind
		out.Ident = in.Ident
	case in.Select != nil:
		operand, err := exprFromJSON(in.Select.Operand)
		if err != nil {
			return nil, err
		}
		out.Kind = SelectKind
		out.Select = &SelectExpr{Operand: operand, Field: in.Select.Field, TestOnly: in.Select.TestOnly}
	case in.Call != nil:
		target, err := exprFromJSON(in.Call.Target)
		if err != nil {
			return nil, err
		}
		call := &CallExpr{Function: in.Call.Function, Target: target, OverloadIDs: in.Call.Overloads}
		for _, arg := range in.Call.Args {
			a, err := exprFromJSON(arg)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, a)
		}
		out.Kind = CallKind
		out.Call = call
	case in.List != nil:
		list := &ListExpr{OptionalIndices: in.List.OptionalIndices}
		for _, elem := range in.List.Elements {
			e, err := exprFromJSON(elem)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, e)
		}
		out.Kind = ListKind
		out.List = list
	case in.Map != nil:
		m := &MapExpr{}
		for _, entry := range in.Map.Entries {
			k, err := exprFromJSON(entry.Key)
			if err != nil {
				return nil, err
			}
			v, err := exprFromJSON(entry.Value)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, MapEntry{Key: k, Value: v, Optional: entry.Optional})
		}
		out.Kind = MapKind
		out.Map = m
	case in.Struct != nil:
		s := &StructExpr{TypeName: in.Struct.TypeName}
		for _, field := range in.Struct.Fields {
			v, err := exprFromJSON(field.Value)
			if err != nil {
				return nil, err
			}
			s.Fields = append(s.Fields, StructField{Name: field.Name, Value: v, Optional: field.Optional})
		}
		out.Kind = StructKind
		out.Struct = s
	case in.Comprehension != nil:
		c := in.Comprehension
		iterRange, err := exprFromJSON(c.IterRange)
		if err != nil {
			return nil, err
		}
		accuInit, err := exprFromJSON(c.AccuInit)
		if err != nil {
			return nil, err
		}
		cond, err := exprFromJSON(c.LoopCondition)
		if err != nil {
			return nil, err
		}
		step, err := exprFromJSON(c.LoopStep)
		if err != nil {
			return nil, err
		}
		result, err := exprFromJSON(c.Result)
		if err != nil {
			return nil, err
		}
		out.Kind = ComprehensionKind
		out.Comprehension = &ComprehensionExpr{
			IterVar:       c.IterVar,
			IterRange:     iterRange,
			AccuVar:       c.AccuVar,
			AccuInit:      accuInit,
			LoopCondition: cond,
			LoopStep:      step,
			Result:        result,
		}
	default:
		return nil, fmt.Errorf("node %d: no expression payload set", in.ID)
	}
	return out, nil
}

func constFromJSON(in *constJSON) (*Constant, error) {
	switch in.Type {
	case "null":
		return &Constant{Kind: NullConst}, nil
	case "bool":
		v, ok := in.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("bool constant holds %T", in.Value)
		}
		return &Constant{Kind: BoolConst, BoolValue: v}, nil
	case "int":
		s, ok := in.Value.(string)
		if !ok {
			return nil, fmt.Errorf("int constant holds %T, want string", in.Value)
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int constant: %w", err)
		}
		return &Constant{Kind: IntConst, IntValue: v}, nil
	case "uint":
		s, ok := in.Value.(string)
		if !ok {
			return nil, fmt.Errorf("uint constant holds %T, want string", in.Value)
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid uint constant: %w", err)
		}
		return &Constant{Kind: UintConst, UintValue: v}, nil
	case "double":
		v, ok := in.Value.(float64)
		if !ok {
			return nil, fmt.Errorf("double constant holds %T", in.Value)
		}
		return &Constant{Kind: DoubleConst, DoubleValue: v}, nil
	case "string":
		v, ok := in.Value.(string)
		if !ok {
			return nil, fmt.Errorf("string constant holds %T", in.Value)
		}
		return &Constant{Kind: StringConst, StringValue: v}, nil
	case "bytes":
		s, ok := in.Value.(string)
		if !ok {
			return nil, fmt.Errorf("bytes constant holds %T, want base64 string", in.Value)
		}
		var raw []byte
		if err := json.Unmarshal([]byte(strconv.Quote(s)), &raw); err != nil {
			return nil, fmt.Errorf("invalid bytes constant: %w", err)
		}
		return &Constant{Kind: BytesConst, BytesValue: raw}, nil
	default:
		return nil, fmt.Errorf("unsupported constant type %q", in.Type)
	}
}
