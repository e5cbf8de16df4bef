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

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CompileType compiles a JSON Schema document into a named object
// declaration. The document is validated by the schema compiler before
// declaration types are derived from it.
func CompileType(name string, schemaJSON string) (*DeclType, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid schema document for type %q: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	// Keep the format keyword on compiled schemas for every draft; the
	// scalar format mapping in declTypeOf reads it.
	compiler.AssertFormat()
	resource := name + ".schema.json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("failed to register schema for type %q: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for type %q: %w", name, err)
	}
	declType := declTypeOf(name, compiled)
	if declType == nil {
		return nil, fmt.Errorf("schema for type %q does not describe a declarable type", name)
	}
	return declType, nil
}

// declTypeOf converts a compiled schema into a declaration type, or
// nil when the schema cannot be exposed to expressions. The conversion
// supports the opinionated subset of JSON Schema the engine consumes:
// typed objects, arrays, maps via additionalProperties, and the scalar
// formats byte, duration, date, and date-time.
func declTypeOf(name string, s *jsonschema.Schema) *DeclType {
	if s == nil {
		return nil
	}
	switch schemaType(s) {
	case "array":
		items := itemsSchema(s)
		if items == nil {
			return NewListType(AnyType)
		}
		elem := declTypeOf(name+".@idx", items)
		if elem == nil {
			elem = AnyType
		}
		return NewListType(elem)

	case "object":
		// additionalProperties as a schema means map<string, X>.
		if extra, ok := s.AdditionalProperties.(*jsonschema.Schema); ok {
			elem := declTypeOf(name+".@elem", extra)
			if elem == nil {
				elem = AnyType
			}
			return NewMapType(StringType, elem)
		}
		if len(s.Properties) == 0 {
			return NewMapType(StringType, AnyType)
		}
		required := map[string]bool{}
		for _, f := range s.Required {
			required[f] = true
		}
		fields := make(map[string]*Field, len(s.Properties))
		for fieldName, prop := range s.Properties {
			fieldType := declTypeOf(name+"."+fieldName, prop)
			if fieldType == nil && prop.Ref != nil {
				fieldType = declTypeOf(name+"."+fieldName, prop.Ref)
			}
			if fieldType == nil {
				continue
			}
			fields[fieldName] = NewField(fieldName, fieldType, required[fieldName], defaultOf(prop))
		}
		return NewObjectType(name, fields)

	case "string":
		switch formatOf(s) {
		case "byte":
			return BytesType
		case "duration":
			return DurationType
		case "date", "date-time":
			return TimestampType
		}
		return StringType

	case "boolean":
		return BoolType
	case "number":
		return DoubleType
	case "integer":
		return IntType
	case "null":
		return NullType
	}
	if s.Ref != nil {
		return declTypeOf(name, s.Ref)
	}
	return nil
}

func schemaType(s *jsonschema.Schema) string {
	if s.Types == nil || s.Types.IsEmpty() {
		return ""
	}
	return s.Types.ToStrings()[0]
}

func itemsSchema(s *jsonschema.Schema) *jsonschema.Schema {
	if s.Items2020 != nil {
		return s.Items2020
	}
	switch items := s.Items.(type) {
	case *jsonschema.Schema:
		return items
	case []*jsonschema.Schema:
		if len(items) > 0 {
			return items[0]
		}
	}
	return nil
}

func formatOf(s *jsonschema.Schema) string {
	if s.Format == nil {
		return ""
	}
	return s.Format.Name
}

func defaultOf(s *jsonschema.Schema) any {
	if s.Default == nil {
		return nil
	}
	// Schema documents are decoded with json.Number; a numeric default
	// becomes int64 when integral and float64 otherwise.
	if n, ok := (*s.Default).(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return *s.Default
}
