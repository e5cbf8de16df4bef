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

// Duration is the runtime signed nanosecond duration value.
type Duration struct {
	time.Duration
}

var (
	_ ref.Val         = Duration{}
	_ traits.Comparer = Duration{}
)

// Add performs checked duration addition; a timestamp operand shifts
// the timestamp.
func (d Duration) Add(other ref.Val) ref.Val {
	switch o := other.(type) {
	case Duration:
		v, ok := addDurationChecked(d.Duration, o.Duration)
		if !ok {
			return OverflowErr()
		}
		return Duration{Duration: v}
	case Timestamp:
		t, ok := addTimeDurationChecked(o.Time, d.Duration)
		if !ok {
			return OverflowErr()
		}
		return Timestamp{Time: t}
	default:
		return MaybeNoSuchOverloadErr(other)
	}
}

// Subtract performs checked duration subtraction.
func (d Duration) Subtract(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	v, ok := subtractDurationChecked(d.Duration, o.Duration)
	if !ok {
		return OverflowErr()
	}
	return Duration{Duration: v}
}

// Negate returns the negated duration.
func (d Duration) Negate() ref.Val {
	v, ok := negateInt64Checked(int64(d.Duration))
	if !ok {
		return OverflowErr()
	}
	return Duration{Duration: time.Duration(v)}
}

// Compare orders durations.
func (d Duration) Compare(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	if !ok {
		return MaybeNoSuchOverloadErr(other)
	}
	switch {
	case d.Duration < o.Duration:
		return IntNegOne
	case d.Duration > o.Duration:
		return IntOne
	default:
		return IntZero
	}
}

// ConvertToType implements ref.Val.
func (d Duration) ConvertToType(t ref.Type) ref.Val {
	switch t {
	case DurationType:
		return d
	case IntType:
		// Duration as whole seconds, matching duration.getSeconds().
		return Int(int64(d.Duration / time.Second))
	case StringType:
		return String(d.Duration.String())
	case TypeType:
		return DurationType
	}
	return NewErrf(ErrKindNoSuchOverload, "type conversion error from 'duration' to '%s'", t.TypeName())
}

// Equal implements ref.Val.
func (d Duration) Equal(other ref.Val) ref.Val {
	o, ok := other.(Duration)
	return Bool(ok && d.Duration == o.Duration)
}

// Type implements ref.Val.
func (d Duration) Type() ref.Type {
	return DurationType
}

// Value implements ref.Val.
func (d Duration) Value() any {
	return d.Duration
}
