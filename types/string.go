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
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// String is the runtime unicode string value.
type String string

var (
	_ ref.Val          = String("")
	_ traits.Comparer  = String("")
	_ traits.Sizer     = String("")
	_ traits.Container = String("")
)

// Add concatenates strings.
func (s String) Add(other ref.Val) ref.Val {
	o, ok := other.(String)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return s + o
}

// Compare orders strings lexicographically by bytes.
func (s String) Compare(other ref.Val) ref.Val {
	o, ok := other.(String)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	return Int(strings.Compare(string(s), string(o)))
}

// Contains implements the substring form of `in`.
func (s String) Contains(sub ref.Val) ref.Val {
	o, ok := sub.(String)
	if !ok {
		return MaybeNoSuchOverloadErr(sub)
	}
	return Bool(strings.Contains(string(s), string(o)))
}

// Size returns the number of unicode code points, not bytes.
func (s String) Size() ref.Val {
	return Int(utf8.RuneCountInString(string(s)))
}

// ConvertToType implements ref.Val. String conversions parse into the
// target kind and fail with bad-format on malformed input.
func (s String) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case StringType:
		return s
	case IntType:
		v, err := strconv.ParseInt(string(s), 10, 64)
		if err != nil {
			return NewErrf(ErrKindBadFormat, "cannot convert string %q to int", string(s))
		}
		return Int(v)
	case UintType:
		v, err := strconv.ParseUint(string(s), 10, 64)
		if err != nil {
			return NewErrf(ErrKindBadFormat, "cannot convert string %q to uint", string(s))
		}
		return Uint(v)
	case DoubleType:
		v, err := strconv.ParseFloat(string(s), 64)
		if err != nil {
			return NewErrf(ErrKindBadFormat, "cannot convert string %q to double", string(s))
		}
		return Double(v)
	case BoolType:
		switch string(s) {
		case "true":
			return True
		case "false":
			return False
		}
		return NewErrf(ErrKindBadFormat, "cannot convert string %q to bool", string(s))
	case BytesType:
		return Bytes(s)
	case DurationType:
		d, err := time.ParseDuration(string(s))
		if err != nil {
			return NewErrf(ErrKindBadFormat, "invalid duration %q", string(s))
		}
		return Duration{Duration: d}
	case TimestampType:
		ts, err := time.Parse(time.RFC3339Nano, string(s))
		if err != nil {
			return NewErrf(ErrKindBadFormat, "invalid timestamp %q", string(s))
		}
		if !timestampInRange(ts) {
			return NewErrf(ErrKindNumericOverflow, "timestamp out of range %q", string(s))
		}
		return Timestamp{Time: ts.UTC()}
	case TypeType:
		return StringType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'string' to '%s'", t.TypeName())
}

// Equal implements ref.Val.
func (s String) Equal(other ref.Val) ref.Val {
	o, ok := other.(String)
	return Bool(ok && s == o)
}

// Type implements ref.Val.
func (s String) Type() ref.Type {
	return StringType
}

// Value implements ref.Val.
func (s String) Value() any {
	return string(s)
}
