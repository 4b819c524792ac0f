package glreflect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

func plainUniform(name string, t types.Type, size uint32) Uniform {
	return Uniform{Name: name, Type: t, ArraySize: size, Stages: frontend.StageAll}
}

func TestResolveAggregatesScalars(t *testing.T) {
	members, err := resolveAggregates([]Uniform{
		plainUniform("time", types.Float, 1),
		plainUniform("tint", types.FloatVec4, 1),
	})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "time", members[0].MemberName())
	assert.Equal(t, "tint", members[1].MemberName())
}

func TestResolveAggregatesStruct(t *testing.T) {
	members, err := resolveAggregates([]Uniform{
		plainUniform("light.color", types.FloatVec3, 1),
		plainUniform("time", types.Float, 1),
		plainUniform("light.intensity", types.Float, 1),
	})
	require.NoError(t, err)
	require.Len(t, members, 2)

	light, ok := members[0].(*Aggregate)
	require.True(t, ok, "first member is %T", members[0])
	assert.Equal(t, "light", light.Name)
	require.Len(t, light.Members, 2)
	assert.Equal(t, "color", light.Members[0].MemberName())
	assert.Equal(t, "intensity", light.Members[1].MemberName())

	assert.Equal(t, "time", members[1].MemberName())
}

func TestResolveAggregatesArrayOfStructs(t *testing.T) {
	members, err := resolveAggregates([]Uniform{
		plainUniform("lights[0].color", types.FloatVec3, 1),
		plainUniform("lights[0].radius", types.Float, 1),
		plainUniform("lights[1].color", types.FloatVec3, 1),
		plainUniform("lights[1].radius", types.Float, 1),
	})
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "lights[0]", members[0].MemberName())
	assert.Equal(t, "lights[1]", members[1].MemberName())
	for _, m := range members {
		agg := m.(*Aggregate)
		require.Len(t, agg.Members, 2)
		assert.Equal(t, "color", agg.Members[0].MemberName())
	}
}

func TestResolveAggregatesKeepsSlotsInIndexOrder(t *testing.T) {
	members, err := resolveAggregates([]Uniform{
		plainUniform("lights[2].color", types.FloatVec4, 1),
		plainUniform("time", types.Float, 1),
		plainUniform("lights[0].color", types.FloatVec4, 1),
		plainUniform("lights[1].color", types.FloatVec4, 1),
	})
	require.NoError(t, err)

	var names []string
	for _, m := range members {
		names = append(names, m.MemberName())
	}
	assert.Equal(t, []string{"lights[0]", "lights[1]", "lights[2]", "time"}, names)
}

func TestResolveAggregatesNested(t *testing.T) {
	members, err := resolveAggregates([]Uniform{
		plainUniform("scene.sun.dir", types.FloatVec3, 1),
		plainUniform("scene.sun.color", types.FloatVec3, 1),
		plainUniform("scene.ambient", types.FloatVec3, 1),
	})
	require.NoError(t, err)
	require.Len(t, members, 1)

	scene := members[0].(*Aggregate)
	require.Len(t, scene.Members, 2)
	sun := scene.Members[0].(*Aggregate)
	assert.Equal(t, "sun", sun.Name)
	assert.Len(t, sun.Members, 2)
	assert.Equal(t, "ambient", scene.Members[1].MemberName())
}

func TestResolveAggregatesFoldsIndexedLeaves(t *testing.T) {
	tests := []struct {
		name     string
		uniforms []Uniform
		size     uint32
	}{
		{
			name:     "first element carries the size",
			uniforms: []Uniform{plainUniform("bones[0]", types.FloatMat4, 4)},
			size:     4,
		},
		{
			name: "elements reported one by one",
			uniforms: []Uniform{
				plainUniform("bones[0]", types.FloatMat4, 1),
				plainUniform("bones[1]", types.FloatMat4, 1),
				plainUniform("bones[2]", types.FloatMat4, 1),
			},
			size: 3,
		},
		{
			name:     "highest index wins",
			uniforms: []Uniform{plainUniform("bones[5]", types.FloatMat4, 1), plainUniform("bones[0]", types.FloatMat4, 1)},
			size:     6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members, err := resolveAggregates(tt.uniforms)
			require.NoError(t, err)
			require.Len(t, members, 1)
			u := members[0].(*Uniform)
			assert.Equal(t, "bones", u.Name)
			assert.Equal(t, tt.size, u.ArraySize)
		})
	}
}

func TestResolveAggregatesErrors(t *testing.T) {
	tests := []struct {
		name     string
		uniforms []Uniform
		kind     ErrorKind
	}{
		{
			name:     "malformed name",
			uniforms: []Uniform{plainUniform("light..color", types.Float, 1)},
			kind:     ErrMalformedName,
		},
		{
			name: "leaf then container",
			uniforms: []Uniform{
				plainUniform("light", types.Float, 1),
				plainUniform("light.color", types.FloatVec3, 1),
			},
			kind: ErrMalformedName,
		},
		{
			name: "container then leaf",
			uniforms: []Uniform{
				plainUniform("light.color", types.FloatVec3, 1),
				plainUniform("light", types.Float, 1),
			},
			kind: ErrMalformedName,
		},
		{
			name: "structure and array of structures",
			uniforms: []Uniform{
				plainUniform("light.color", types.FloatVec3, 1),
				plainUniform("light[0].color", types.FloatVec3, 1),
			},
			kind: ErrMalformedName,
		},
		{
			name: "index with leading zero",
			uniforms: []Uniform{
				plainUniform("bones[1]", types.FloatMat4, 1),
				plainUniform("bones[01]", types.FloatMat4, 1),
			},
			kind: ErrMalformedName,
		},
		{
			name: "duplicate array element",
			uniforms: []Uniform{
				plainUniform("bones[1]", types.FloatMat4, 1),
				plainUniform("bones[1]", types.FloatMat4, 1),
			},
			kind: ErrDuplicateName,
		},
		{
			name: "duplicate leaf",
			uniforms: []Uniform{
				plainUniform("time", types.Float, 1),
				plainUniform("time", types.Float, 1),
			},
			kind: ErrDuplicateName,
		},
		{
			name: "array element type mismatch",
			uniforms: []Uniform{
				plainUniform("bones[0]", types.FloatMat4, 1),
				plainUniform("bones[1]", types.FloatMat3, 1),
			},
			kind: ErrMalformedName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveAggregates(tt.uniforms)
			if !errors.Is(err, tt.kind) {
				t.Errorf("error = %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestFoldOpaque(t *testing.T) {
	out, err := foldOpaque([]Uniform{
		{Name: "shadow", Type: types.Sampler2DShadow, ArraySize: 1, Stages: frontend.StageFragment},
		{Name: "layers[0]", Type: types.Sampler2D, ArraySize: 1, Stages: frontend.StageVertex},
		{Name: "layers[1]", Type: types.Sampler2D, ArraySize: 1, Stages: frontend.StageFragment},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "shadow", out[0].Name)
	assert.Equal(t, "layers", out[1].Name)
	assert.Equal(t, uint32(2), out[1].ArraySize)
	assert.Equal(t, frontend.StageAll, out[1].Stages)

	_, err = foldOpaque([]Uniform{
		{Name: "tex", Type: types.Sampler2D, ArraySize: 1},
		{Name: "tex", Type: types.Sampler2D, ArraySize: 1},
	})
	assert.ErrorIs(t, err, ErrDuplicateName)
}
