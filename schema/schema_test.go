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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/google/cel-core/types"
	"github.com/google/cel-core/types/ref"
)

const deploymentSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"replicas": {"type": "integer", "default": 1},
		"paused": {"type": "boolean"},
		"labels": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		},
		"containers": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"image": {"type": "string"},
					"gracePeriod": {"type": "string", "format": "duration"}
				},
				"required": ["image"]
			}
		},
		"createdAt": {"type": "string", "format": "date-time"}
	},
	"required": ["name"]
}`

func compileDeployment(t *testing.T) *DeclType {
	t.Helper()
	declType, err := CompileType("apps.Deployment", deploymentSchema)
	require.NoError(t, err)
	return declType
}

func TestCompileTypeShape(t *testing.T) {
	declType := compileDeployment(t)
	require.True(t, declType.IsObject())
	assert.Equal(t, "apps.Deployment", declType.TypeName())

	name := declType.Fields["name"]
	require.NotNil(t, name)
	assert.True(t, name.Required)
	assert.Same(t, StringType, name.Type)

	labels := declType.Fields["labels"]
	require.NotNil(t, labels)
	assert.True(t, labels.Type.IsMap())
	assert.Same(t, StringType, labels.Type.ElemType)

	containers := declType.Fields["containers"]
	require.NotNil(t, containers)
	require.True(t, containers.Type.IsList())
	elem := containers.Type.ElemType
	require.True(t, elem.IsObject())
	assert.Equal(t, "apps.Deployment.containers.@idx", elem.TypeName())
	assert.Same(t, DurationType, elem.Fields["gracePeriod"].Type)

	assert.Same(t, TimestampType, declType.Fields["createdAt"].Type)
}

func TestCompileTypeRejectsMalformedSchema(t *testing.T) {
	_, err := CompileType("bad", `{"type": `)
	assert.Error(t, err)
}

func TestProviderTypeResolution(t *testing.T) {
	p := NewProvider([]*DeclType{compileDeployment(t)})

	celType, found := p.FindStructType("apps.Deployment")
	require.True(t, found)
	assert.Equal(t, "apps.Deployment", celType.TypeName())

	_, found = p.FindStructType("apps.Unknown")
	assert.False(t, found)

	// Nested object types register under their qualified names.
	_, found = p.FindStructType("apps.Deployment.containers.@idx")
	assert.True(t, found)

	names, found := p.FindStructFieldNames("apps.Deployment")
	require.True(t, found)
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "labels")

	ft, found := p.FindStructFieldType("apps.Deployment", "replicas")
	require.True(t, found)
	assert.Same(t, types.IntType, ft.Type)

	_, found = p.FindStructFieldType("apps.Deployment", "nope")
	assert.False(t, found)
}

func TestProviderNewValue(t *testing.T) {
	p := NewProvider([]*DeclType{compileDeployment(t)})

	v := p.NewValue("apps.Deployment", map[string]ref.Val{
		"name":     types.String("web"),
		"replicas": types.Int(3),
	})
	obj, ok := v.(*ObjectValue)
	require.True(t, ok, "construction failed: %v", v)

	assert.Equal(t, types.String("web"), obj.Get(types.String("name")))
	assert.Equal(t, types.Int(3), obj.Get(types.String("replicas")))
	assert.Equal(t, types.True, obj.IsSet(types.String("name")))
	assert.Equal(t, types.False, obj.IsSet(types.String("paused")))
	// Unset fields read as their defaults for safe traversal.
	assert.Equal(t, types.False, obj.Get(types.String("paused")))

	e, isErr := types.AsErr(obj.Get(types.String("bogus")))
	require.True(t, isErr)
	assert.Equal(t, types.ErrKindNoSuchField, e.Kind())
}

func TestProviderNewValueErrors(t *testing.T) {
	p := NewProvider([]*DeclType{compileDeployment(t)})

	e, ok := types.AsErr(p.NewValue("apps.Unknown", nil))
	require.True(t, ok)
	assert.Equal(t, types.ErrKindAttributeNotFound, e.Kind())

	e, ok = types.AsErr(p.NewValue("apps.Deployment", map[string]ref.Val{
		"bogus": types.Int(1),
	}))
	require.True(t, ok)
	assert.Equal(t, types.ErrKindBadFormat, e.Kind())

	e, ok = types.AsErr(p.NewValue("apps.Deployment", map[string]ref.Val{
		"name": types.Int(1),
	}))
	require.True(t, ok)
	assert.Equal(t, types.ErrKindBadFormat, e.Kind())
}

func TestProviderNullFieldStaysUnset(t *testing.T) {
	p := NewProvider([]*DeclType{compileDeployment(t)})
	v := p.NewValue("apps.Deployment", map[string]ref.Val{
		"name":   types.String("web"),
		"paused": types.NullValue,
	})
	obj, ok := v.(*ObjectValue)
	require.True(t, ok)
	assert.Equal(t, types.False, obj.IsSet(types.String("paused")))
}

func TestProviderDefaultFromSchema(t *testing.T) {
	p := NewProvider([]*DeclType{compileDeployment(t)})
	v := p.NewValue("apps.Deployment", map[string]ref.Val{
		"name": types.String("web"),
	})
	obj := v.(*ObjectValue)
	// replicas carries a schema default of 1.
	assert.Equal(t, types.Int(1), obj.Get(types.String("replicas")))
}

func TestObjectEquality(t *testing.T) {
	p := NewProvider([]*DeclType{compileDeployment(t)})
	build := func(replicas ref.Val) ref.Val {
		return p.NewValue("apps.Deployment", map[string]ref.Val{
			"name":     types.String("web"),
			"replicas": replicas,
		})
	}
	a := build(types.Int(2))
	b := build(types.Double(2.0))
	c := build(types.Int(3))
	assert.Equal(t, types.True, types.Equal(a, b), "field-wise equality with numeric cross-kind")
	assert.Equal(t, types.False, types.Equal(a, c))

	// A defaulted field equals an explicitly set default.
	d := p.NewValue("apps.Deployment", map[string]ref.Val{"name": types.String("web"), "replicas": types.Int(2), "paused": types.False})
	assert.Equal(t, types.True, types.Equal(a, d))
}

func TestAdaptValueBuildsObjects(t *testing.T) {
	p := NewProvider([]*DeclType{compileDeployment(t)})
	v := p.AdaptValue("apps.Deployment", map[string]any{
		"name": "web",
		"labels": map[string]any{
			"tier": "frontend",
		},
		"containers": []any{
			map[string]any{"image": "nginx"},
		},
	})
	obj, ok := v.(*ObjectValue)
	require.True(t, ok, "adaptation failed: %v", v)
	assert.Equal(t, types.String("web"), obj.Get(types.String("name")))

	e, isErr := types.AsErr(p.AdaptValue("apps.Deployment", map[string]any{"nope": 1}))
	require.True(t, isErr)
	assert.Equal(t, types.ErrKindBadFormat, e.Kind())
}

func TestWrapperUnwrapping(t *testing.T) {
	p := NewProvider(nil)

	assert.Equal(t, types.Int(42), p.NativeToValue(wrapperspb.Int64(42)))
	assert.Equal(t, types.String("x"), p.NativeToValue(wrapperspb.String("x")))
	assert.Equal(t, types.Bool(true), p.NativeToValue(wrapperspb.Bool(true)))
	assert.Equal(t, types.Double(1.5), p.NativeToValue(wrapperspb.Double(1.5)))
	assert.Equal(t, types.Uint(7), p.NativeToValue(wrapperspb.UInt64(7)))
	assert.Equal(t, types.Bytes([]byte{1}), p.NativeToValue(wrapperspb.Bytes([]byte{1})))

	// Unset wrappers materialize as null.
	assert.Equal(t, types.NullValue, p.NativeToValue((*wrapperspb.Int64Value)(nil)))
	assert.Equal(t, types.NullValue, p.NativeToValue((*wrapperspb.StringValue)(nil)))

	d := p.NativeToValue(durationpb.New(90 * time.Second))
	assert.Equal(t, types.Duration{Duration: 90 * time.Second}, d)

	ts := p.NativeToValue(timestamppb.New(time.Unix(100, 0)))
	require.IsType(t, types.Timestamp{}, ts)
	assert.Equal(t, int64(100), ts.(types.Timestamp).Unix())

	sv, err := structpb.NewValue(map[string]any{"k": []any{1.0, "two"}})
	require.NoError(t, err)
	adapted := p.NativeToValue(sv)
	m, ok := adapted.(*types.Map)
	require.True(t, ok)
	inner, found := m.Find(types.String("k"))
	require.True(t, found)
	assert.Equal(t, types.Int(2), inner.(*types.List).Size())
}
