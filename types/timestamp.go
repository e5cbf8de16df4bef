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
	"time"

	"github.com/google/cel-core/types/ref"
	"github.com/google/cel-core/types/traits"
)

// Timestamp is the runtime UTC nanosecond timestamp value.
type Timestamp struct {
	time.Time
}

var (
	_ ref.Val         = Timestamp{}
	_ traits.Comparer = Timestamp{}
)

// Add shifts the timestamp by a duration with range checking.
func (t Timestamp) Add(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	out, ok := addTimeDurationChecked(t.Time, o.Duration)
	if !ok {
		return OverflowErr()
	}
	return Timestamp{Time: out}
}

// Subtract implements timestamp-timestamp and timestamp-duration
// subtraction.
func (t Timestamp) Subtract(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Timestamp:
		d, ok := subtractInt64Checked(t.UnixNano(), o.UnixNano())
		if !ok {
			return OverflowErr()
		}
		return Duration{Duration: time.Duration(d)}
	case Duration:
		out, ok := addTimeDurationChecked(t.Time, -o.Duration)
		if !ok {
			return OverflowErr()
		}
		return Timestamp{Time: out}
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// Compare orders timestamps.
func (t Timestamp) Compare(other ref.Val) ref.Val {
	o, ok := other.(Timestamp)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	switch {
	case t.Before(o.Time):
		return IntNegOne
	case t.After(o.Time):
		return IntOne
	default:
		return IntZero
	}
}

// ConvertToType implements ref.Val.
func (t Timestamp) ConvertToType(target ref.Type) ref.Val {
	switch target {
	case TimestampType:
		return t
	case IntType:
		return Int(t.Unix())
	case StringType:
		return String(t.UTC().Format(time.RFC3339Nano))
	case TypeType:
		return TimestampType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'timestamp' to '%s'", target.TypeName())
}

// Equal implements ref.Val.
func (t Timestamp) Equal(other ref.Val) ref.Val {
	o, ok := other.(Timestamp)
	return Bool(ok && t.Time.Equal(o.Time))
}

// Type implements ref.Val.
func (t Timestamp) Type() ref.Type {
	return TimestampType
}

// Value implements ref.Val.
func (t Timestamp) Value() any {
	return t.Time
}
