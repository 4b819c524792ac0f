package glreflect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

// sceneProgram is a light structure followed by an array of two matrices.
func sceneProgram() *frontend.Static {
	return (&frontend.Static{}).
		AddUniform(frontend.Uniform{Name: "light.color", Type: types.FloatVec3, ArraySize: 1, Stages: frontend.StageFragment}).
		AddUniform(frontend.Uniform{Name: "light.intensity", Type: types.Float, ArraySize: 1, Stages: frontend.StageFragment}).
		AddUniform(frontend.Uniform{Name: "matrices", Type: types.FloatMat4, ArraySize: 2, Stages: frontend.StageVertex})
}

func TestBuildSceneLayout(t *testing.T) {
	refl, err := Build(nil, sceneProgram(), DefaultOptions())
	require.NoError(t, err)

	blocks := refl.Blocks()
	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, "uniforms", b.Name)
	assert.Equal(t, uint32(160), b.Size)
	assert.Equal(t, frontend.StageAll, b.Stages)
	assert.Equal(t, uint32(0), b.Binding)
	assert.Equal(t, uint32(0), b.Set)

	require.Len(t, b.Members, 2)
	light := b.Members[0].(*Aggregate)
	assert.Equal(t, uint32(0), light.Offset)
	assert.Equal(t, uint32(32), light.Size)
	assert.Equal(t, uint32(0), light.Members[0].MemberOffset())
	assert.Equal(t, uint32(16), light.Members[1].MemberOffset())

	matrices := b.Members[1].(*Uniform)
	assert.Equal(t, uint32(32), matrices.Offset)
	assert.Equal(t, uint32(64), matrices.Stride)
	assert.Equal(t, uint32(2), matrices.ArraySize)

	assert.Equal(t, []Field{
		{Path: "light.color", Type: types.FloatVec3, Offset: 0, ArraySize: 1},
		{Path: "light.intensity", Type: types.Float, Offset: 16, ArraySize: 1},
		{Path: "matrices", Type: types.FloatMat4, Offset: 32, ArraySize: 2, Stride: 64},
	}, b.Fields())
}

func TestLayoutAlignment(t *testing.T) {
	prog := &frontend.Static{}
	for _, u := range []struct {
		name string
		t    types.Type
		size uint32
	}{
		{"a", types.Float, 1},
		{"b", types.FloatVec2, 1},
		{"c", types.Float, 1},
		{"d", types.FloatVec3, 1},
		{"e", types.Int, 1},
		{"f", types.FloatMat3, 1},
		{"g", types.Double, 1},
		{"h", types.FloatVec2, 3},
		{"i", types.DoubleVec4, 1},
		{"s.x", types.Float, 1},
		{"j", types.Uint, 1},
	} {
		prog.AddUniform(frontend.Uniform{Name: u.name, Type: u.t, ArraySize: u.size})
	}

	refl, err := Build(nil, prog, DefaultOptions())
	require.NoError(t, err)
	b, ok := refl.Block("uniforms")
	require.True(t, ok)

	want := map[string]uint32{
		"a": 0, "b": 8, "c": 16, "d": 32, "e": 48, "f": 64,
		"g": 112, "h": 128, "i": 192, "s.x": 224, "j": 240,
	}
	for _, f := range b.Fields() {
		assert.Equal(t, want[f.Path], f.Offset, "offset of %s", f.Path)
	}
	assert.Equal(t, uint32(256), b.Size)

	for _, m := range b.Members {
		var align uint32 = types.SlotSize
		if u, ok := m.(*Uniform); ok && !u.IsArray() {
			align, _, _ = u.Type.Layout()
		}
		assert.Zero(t, m.MemberOffset()%align, "member %s misaligned", m.MemberName())
	}
	assert.Zero(t, b.Size%types.SlotSize)
}

func TestArrayStride(t *testing.T) {
	tests := []struct {
		t      types.Type
		stride uint32
	}{
		{types.Float, 16},
		{types.FloatVec2, 16},
		{types.FloatVec3, 16},
		{types.FloatVec4, 16},
		{types.FloatMat2, 32},
		{types.FloatMat4, 64},
		{types.DoubleVec4, 32},
	}
	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			prog := (&frontend.Static{}).AddUniform(frontend.Uniform{Name: "arr", Type: tt.t, ArraySize: 3})
			refl, err := Build(nil, prog, DefaultOptions())
			require.NoError(t, err)
			_, f, ok := refl.FindUniform("arr")
			require.True(t, ok)
			assert.Equal(t, tt.stride, f.Stride)
			assert.Zero(t, f.Stride%types.SlotSize)
		})
	}
}

func TestArrayOfLengthOneIsScalar(t *testing.T) {
	prog := (&frontend.Static{}).
		AddUniform(frontend.Uniform{Name: "a", Type: types.Float, ArraySize: 1}).
		AddUniform(frontend.Uniform{Name: "b", Type: types.Float, ArraySize: 0})
	refl, err := Build(nil, prog, DefaultOptions())
	require.NoError(t, err)

	b, _ := refl.Block("uniforms")
	fields := b.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, uint32(4), fields[1].Offset)
	assert.Zero(t, fields[1].Stride)
	assert.Equal(t, uint32(16), b.Size)
}

func TestBuildDeterministic(t *testing.T) {
	first, err := Build(nil, sceneProgram(), DefaultOptions())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Build(nil, sceneProgram(), DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, first, again)

		a, _ := first.MarshalBinary()
		b, _ := again.MarshalBinary()
		assert.Equal(t, a, b)
	}
}

func TestBlockPolicyPerStage(t *testing.T) {
	prog := (&frontend.Static{}).
		AddUniform(frontend.Uniform{Name: "mvp", Type: types.FloatMat4, ArraySize: 1, Stages: frontend.StageVertex}).
		AddUniform(frontend.Uniform{Name: "tint", Type: types.FloatVec4, ArraySize: 1, Stages: frontend.StageFragment}).
		AddUniform(frontend.Uniform{Name: "time", Type: types.Float, ArraySize: 1, Stages: frontend.StageAll}).
		AddUniform(frontend.Uniform{Name: "fog.color", Type: types.FloatVec3, ArraySize: 1, Stages: frontend.StageFragment, Block: "Fog"})

	opts := DefaultOptions()
	opts.BlockPolicy = PolicyPerStage
	refl, err := Build(nil, prog, opts)
	require.NoError(t, err)

	var names []string
	for _, b := range refl.Blocks() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"uniforms_vs", "uniforms_fs", "Fog"}, names)

	vs, _ := refl.Block("uniforms_vs")
	require.Len(t, vs.Members, 2)
	assert.Equal(t, "time", vs.Members[1].MemberName())
	assert.Equal(t, uint32(64), vs.Members[1].MemberOffset())

	for i, b := range refl.Blocks() {
		assert.Equal(t, uint32(i), b.Binding, "binding of %s", b.Name)
	}
}

func TestBlockPolicySingleDefaultWithNamedBlock(t *testing.T) {
	prog := (&frontend.Static{}).
		AddUniform(frontend.Uniform{Name: "tint", Type: types.FloatVec4, ArraySize: 1}).
		AddUniform(frontend.Uniform{Name: "cam.view", Type: types.FloatMat4, ArraySize: 1, Block: "Camera",
			Binding: frontend.Some(0), Set: frontend.Some(1)})

	opts := DefaultOptions()
	opts.DefaultBlockName = "globals"
	opts.DefaultSet = 2
	refl, err := Build(nil, prog, opts)
	require.NoError(t, err)

	cam, ok := refl.Block("Camera")
	require.True(t, ok)
	assert.Equal(t, uint32(1), cam.Set)
	assert.Equal(t, uint32(0), cam.Binding)

	globals, ok := refl.Block("globals")
	require.True(t, ok)
	assert.Equal(t, uint32(2), globals.Set)
	assert.Equal(t, uint32(0), globals.Binding)
}

func TestBindingAllocationSkipsExplicit(t *testing.T) {
	prog := (&frontend.Static{}).
		AddUniform(frontend.Uniform{Name: "a.x", Type: types.Float, ArraySize: 1, Block: "A"}).
		AddUniform(frontend.Uniform{Name: "b.x", Type: types.Float, ArraySize: 1, Block: "B", Binding: frontend.Some(0)}).
		AddUniform(frontend.Uniform{Name: "tex", Type: types.Sampler2D, ArraySize: 1, Binding: frontend.Some(1)}).
		AddUniform(frontend.Uniform{Name: "c.x", Type: types.Float, ArraySize: 1, Block: "C"}).
		AddUniform(frontend.Uniform{Name: "shadow", Type: types.Sampler2DShadow, ArraySize: 1})

	refl, err := Build(nil, prog, DefaultOptions())
	require.NoError(t, err)

	got := map[string]uint32{}
	for _, b := range refl.Blocks() {
		got[b.Name] = b.Binding
	}
	assert.Equal(t, map[string]uint32{"A": 2, "B": 0, "C": 3}, got)

	opaque := refl.OpaqueUniforms()
	require.Len(t, opaque, 2)
	assert.Equal(t, frontend.Some(1), opaque[0].Binding)
	assert.Equal(t, frontend.Some(4), opaque[1].Binding)
	assert.Equal(t, frontend.Some(0), opaque[1].Set)
}

func TestOpaqueBindingsLeftForBinder(t *testing.T) {
	prog := (&frontend.Static{}).
		AddUniform(frontend.Uniform{Name: "tex", Type: types.Sampler2D, ArraySize: 1})
	opts := DefaultOptions()
	opts.AssignOpaqueBindings = false

	refl, err := Build(nil, prog, opts)
	require.NoError(t, err)
	assert.Empty(t, refl.Blocks())
	require.Len(t, refl.OpaqueUniforms(), 1)
	assert.False(t, refl.OpaqueUniforms()[0].Binding.Valid)
}

func TestBuildErrors(t *testing.T) {
	small := func() frontend.Resources {
		r := frontend.DefaultResources()
		r.MaxUniformBlockSize = 64
		r.MaxBindingsPerSet = 2
		r.MaxVertexAttribs = 1
		return r
	}

	tests := []struct {
		name string
		prog *frontend.Static
		kind ErrorKind
	}{
		{
			name: "binding collision between blocks",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "a.x", Type: types.Float, Block: "A", Binding: frontend.Some(0)}).
				AddUniform(frontend.Uniform{Name: "b.x", Type: types.Float, Block: "B", Binding: frontend.Some(0)}),
			kind: ErrBindingCollision,
		},
		{
			name: "binding collision with opaque",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "a.x", Type: types.Float, Block: "A", Binding: frontend.Some(1)}).
				AddUniform(frontend.Uniform{Name: "tex", Type: types.Sampler2D, Binding: frontend.Some(1)}),
			kind: ErrBindingCollision,
		},
		{
			name: "block too large",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "bones", Type: types.FloatMat4, ArraySize: 2}),
			kind: ErrLimitExceeded,
		},
		{
			name: "bindings exhausted",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "a", Type: types.Sampler2D}).
				AddUniform(frontend.Uniform{Name: "b", Type: types.Sampler2D}).
				AddUniform(frontend.Uniform{Name: "c", Type: types.Sampler2D}),
			kind: ErrLimitExceeded,
		},
		{
			name: "descriptor set out of range",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "a", Type: types.Sampler2D, Set: frontend.Some(9), Binding: frontend.Some(0)}),
			kind: ErrLimitExceeded,
		},
		{
			name: "too many attributes",
			prog: (&frontend.Static{}).
				AddAttribute(frontend.Attribute{Name: "pos", Type: types.FloatVec3}).
				AddAttribute(frontend.Attribute{Name: "uv", Type: types.FloatVec2}),
			kind: ErrLimitExceeded,
		},
		{
			name: "unknown uniform type",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "x", Type: types.Type(0x1234)}),
			kind: ErrUnsupportedType,
		},
		{
			name: "opaque attribute",
			prog: (&frontend.Static{}).
				AddAttribute(frontend.Attribute{Name: "tex", Type: types.Sampler2D}),
			kind: ErrUnsupportedType,
		},
	}
	env := NewEnvironment(small)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refl, err := Build(env, tt.prog, DefaultOptions())
			assert.Nil(t, refl)
			assert.ErrorIs(t, err, tt.kind)

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.True(t, e.IsBuildError())
		})
	}
}

func TestDuplicateNames(t *testing.T) {
	tests := []struct {
		name string
		prog *frontend.Static
	}{
		{
			name: "attribute",
			prog: (&frontend.Static{}).
				AddAttribute(frontend.Attribute{Name: "pos", Type: types.FloatVec3}).
				AddAttribute(frontend.Attribute{Name: "pos", Type: types.FloatVec4}),
		},
		{
			name: "uniform shadows opaque",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "tex", Type: types.Sampler2D}).
				AddUniform(frontend.Uniform{Name: "tex", Type: types.Float}),
		},
		{
			name: "array element reported twice",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "bones[0]", Type: types.FloatMat4}).
				AddUniform(frontend.Uniform{Name: "bones[0]", Type: types.FloatMat4}),
		},
		{
			name: "same name in two blocks",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "exposure", Type: types.Float, Block: "A"}).
				AddUniform(frontend.Uniform{Name: "exposure", Type: types.Float, Block: "B"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(nil, tt.prog, DefaultOptions())
			assert.ErrorIs(t, err, ErrDuplicateName)
		})
	}
}

func TestLayoutOverflow(t *testing.T) {
	unlimited := NewEnvironment(func() frontend.Resources {
		r := frontend.DefaultResources()
		r.MaxUniformBlockSize = 0
		return r
	})

	tests := []struct {
		name string
		prog *frontend.Static
		kind ErrorKind
	}{
		{
			name: "array past 4 GiB",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "head", Type: types.FloatVec4}).
				AddUniform(frontend.Uniform{Name: "tail", Type: types.FloatVec4, ArraySize: 1 << 28}),
			kind: ErrLimitExceeded,
		},
		{
			name: "array of structures past 4 GiB",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "s[4294967294].x", Type: types.Float}),
			kind: ErrLimitExceeded,
		},
		{
			name: "index past the largest array length",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "v[4294967295]", Type: types.FloatVec4}),
			kind: ErrMalformedName,
		},
		{
			name: "opaque index past the largest array length",
			prog: (&frontend.Static{}).
				AddUniform(frontend.Uniform{Name: "maps[4294967295]", Type: types.Sampler2D}),
			kind: ErrMalformedName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refl, err := Build(unlimited, tt.prog, DefaultOptions())
			assert.Nil(t, refl)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestArrayOfStructuresPlacedByIndex(t *testing.T) {
	offsets := func(t *testing.T, prog *frontend.Static, opts Options) (map[string]uint32, *Reflection) {
		t.Helper()
		refl, err := Build(nil, prog, opts)
		require.NoError(t, err)
		got := make(map[string]uint32)
		for _, b := range refl.Blocks() {
			for _, f := range b.Fields() {
				got[f.Path] = f.Offset
			}
		}
		return got, refl
	}

	t.Run("missing slot", func(t *testing.T) {
		got, refl := offsets(t, (&frontend.Static{}).
			AddUniform(frontend.Uniform{Name: "lights[0].color", Type: types.FloatVec4}).
			AddUniform(frontend.Uniform{Name: "lights[2].color", Type: types.FloatVec4}), DefaultOptions())
		assert.Equal(t, map[string]uint32{"lights[0].color": 0, "lights[2].color": 32}, got)
		b, _ := refl.Block("uniforms")
		assert.Equal(t, uint32(48), b.Size)
	})

	t.Run("slots out of order", func(t *testing.T) {
		got, refl := offsets(t, (&frontend.Static{}).
			AddUniform(frontend.Uniform{Name: "lights[1].color", Type: types.FloatVec4}).
			AddUniform(frontend.Uniform{Name: "time", Type: types.Float}).
			AddUniform(frontend.Uniform{Name: "lights[0].color", Type: types.FloatVec4}), DefaultOptions())
		assert.Equal(t, map[string]uint32{"lights[0].color": 0, "lights[1].color": 16, "time": 32}, got)

		b, _ := refl.Block("uniforms")
		var names []string
		for _, m := range b.Members {
			names = append(names, m.MemberName())
		}
		assert.Equal(t, []string{"lights[0]", "lights[1]", "time"}, names)
	})

	t.Run("slots share one layout", func(t *testing.T) {
		got, refl := offsets(t, (&frontend.Static{}).
			AddUniform(frontend.Uniform{Name: "lights[0].radius", Type: types.Float}).
			AddUniform(frontend.Uniform{Name: "lights[1].color", Type: types.FloatVec4}).
			AddUniform(frontend.Uniform{Name: "lights[1].radius", Type: types.Float}), DefaultOptions())
		assert.Equal(t, map[string]uint32{
			"lights[0].radius": 16,
			"lights[1].color":  32,
			"lights[1].radius": 48,
		}, got)

		b, _ := refl.Block("uniforms")
		require.Len(t, b.Members, 2)
		assert.Equal(t, uint32(32), b.Members[0].(*Aggregate).Size)
		assert.Equal(t, uint32(32), b.Members[1].(*Aggregate).Size)
		assert.Equal(t, uint32(64), b.Size)
	})

	t.Run("slots stay in one block per stage", func(t *testing.T) {
		opts := DefaultOptions()
		opts.BlockPolicy = PolicyPerStage
		got, refl := offsets(t, (&frontend.Static{}).
			AddUniform(frontend.Uniform{Name: "lights[0].color", Type: types.FloatVec4, Stages: frontend.StageVertex}).
			AddUniform(frontend.Uniform{Name: "lights[1].color", Type: types.FloatVec4, Stages: frontend.StageFragment}), opts)
		assert.Equal(t, map[string]uint32{"lights[0].color": 0, "lights[1].color": 16}, got)
		require.Len(t, refl.Blocks(), 1)
		assert.Equal(t, frontend.StageAll, refl.Blocks()[0].Stages)
	})

	t.Run("element type differs between slots", func(t *testing.T) {
		_, err := Build(nil, (&frontend.Static{}).
			AddUniform(frontend.Uniform{Name: "lights[0].color", Type: types.FloatVec4}).
			AddUniform(frontend.Uniform{Name: "lights[1].color", Type: types.FloatVec3}), DefaultOptions())
		assert.ErrorIs(t, err, ErrMalformedName)
	})
}
