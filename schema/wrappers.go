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
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

// unwrapWellKnown normalizes protobuf well-known types at the adapter
// boundary. Wrapper-of-scalar messages unwrap to their primitive; a
// nil wrapper pointer is an unset field and surfaces as null. The
// interpreter never observes a wrapper value directly.
func unwrapWellKnown(value any) (ref.Val, bool) {
	switch v := value.(type) {
	case *wrapperspb.BoolValue:
		if v == nil {
			return types.NullValue, true
		}
		return types.Bool(v.GetValue()), true
	case *wrapperspb.Int32Value:
		if v == nil {
			return types.NullValue, true
		}
		return types.Int(v.GetValue()), true
	case *wrapperspb.Int64Value:
		if v == nil {
			return types.NullValue, true
		}
		return types.Int(v.GetValue()), true
	case *wrapperspb.UInt32Value:
		if v == nil {
			return types.NullValue, true
		}
		return types.Uint(v.GetValue()), true
	case *wrapperspb.UInt64Value:
		if v == nil {
			return types.NullValue, true
		}
		return types.Uint(v.GetValue()), true
	case *wrapperspb.FloatValue:
		if v == nil {
			return types.NullValue, true
		}
		return types.Double(v.GetValue()), true
	case *wrapperspb.DoubleValue:
		if v == nil {
			return types.NullValue, true
		}
		return types.Double(v.GetValue()), true
	case *wrapperspb.StringValue:
		if v == nil {
			return types.NullValue, true
		}
		return types.String(v.GetValue()), true
	case *wrapperspb.BytesValue:
		if v == nil {
			return types.NullValue, true
		}
		return types.Bytes(v.GetValue()), true
	case *durationpb.Duration:
		if v == nil {
			return types.NullValue, true
		}
		return types.Duration{Duration: v.AsDuration()}, true
	case *timestamppb.Timestamp:
		if v == nil {
			return types.NullValue, true
		}
		return types.Timestamp{Time: v.AsTime()}, true
	case *structpb.Value:
		if v == nil {
			return types.NullValue, true
		}
		return types.DefaultAdapter.NativeToValue(v.AsInterface()), true
	case *structpb.Struct:
		if v == nil {
			return types.NullValue, true
		}
		return types.DefaultAdapter.NativeToValue(v.AsMap()), true
	case *structpb.ListValue:
		if v == nil {
			return types.NullValue, true
		}
		return types.DefaultAdapter.NativeToValue(v.AsSlice()), true
	default:
		return nil, false
	}
}
