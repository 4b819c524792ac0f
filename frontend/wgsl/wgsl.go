// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgsl reports the active attributes and uniforms of a WGSL program
// compiled by the naga front-end, in the flattened form frontend.Program
// describes.
//
// The translation follows what a GLSL front-end reports for the equivalent
// program:
//   - the @location inputs of the vertex entry point (struct members
//     included) become attributes;
//   - every var<uniform> becomes an explicit uniform block named after the
//     variable, its structure flattened into "camera.view",
//     "lights[1].color" and "bones[0]" style names;
//   - textures and samplers become opaque uniforms;
//   - @group and @binding become set and binding.
//
// Only globals referenced from a vertex or fragment entry point are active.
// Storage buffers, workgroup memory and compute entry points are ignored.
//
// The reflection engine assigns block offsets itself. A uniform block whose
// naga offsets or array strides differ from those offsets is rejected with
// ErrUnsupported, so a reflected block always matches the SPIR-V it
// describes. Declaring vec3 and mat2x2 members as vec4 and mat2x4, or
// placing them last in their structure, avoids the mismatch.
package wgsl

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

// ErrUnsupported is returned for declarations that have no uniform
// reflection equivalent, such as runtime-sized arrays in a uniform buffer.
var ErrUnsupported = errors.New("wgsl: unsupported declaration")

// Program is a compiled WGSL program. It implements frontend.Program,
// frontend.SourceProvider and frontend.BinaryProvider.
type Program struct {
	source   string
	spirv    []byte
	stages   frontend.Stage
	attrs    []frontend.Attribute
	uniforms []frontend.Uniform
}

// Attributes implements frontend.Program.
func (p *Program) Attributes() []frontend.Attribute { return p.attrs }

// Uniforms implements frontend.Program.
func (p *Program) Uniforms() []frontend.Uniform { return p.uniforms }

// Source returns the WGSL source for stages the program has an entry point
// for. Both stages share one source.
func (p *Program) Source(stage frontend.Stage) (string, bool) {
	if p.stages&stage == 0 {
		return "", false
	}
	return p.source, true
}

// Binary returns the SPIR-V module for stages the program has an entry
// point for. Both stages share one module.
func (p *Program) Binary(stage frontend.Stage) ([]byte, bool) {
	if p.stages&stage == 0 || len(p.spirv) == 0 {
		return nil, false
	}
	return p.spirv, true
}

// Stages returns the stages the program has entry points for.
func (p *Program) Stages() frontend.Stage { return p.stages }

// Compile parses and lowers source with naga, generates SPIR-V and collects
// the reflection input.
func Compile(source string) (*Program, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("wgsl: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("wgsl: %w", err)
	}
	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3, Debug: true})
	if err != nil {
		return nil, fmt.Errorf("wgsl: %w", err)
	}

	c := &collector{module: module}
	p := &Program{source: source, spirv: code}
	p.stages = c.usage()
	if p.attrs, err = c.attributes(); err != nil {
		return nil, err
	}
	if p.uniforms, err = c.globals(); err != nil {
		return nil, err
	}
	return p, nil
}

// collector walks a lowered naga module.
type collector struct {
	module *ir.Module
	used   map[ir.GlobalVariableHandle]frontend.Stage
}

func stageOf(s ir.ShaderStage) frontend.Stage {
	switch s {
	case ir.StageVertex:
		return frontend.StageVertex
	case ir.StageFragment:
		return frontend.StageFragment
	}
	return frontend.StageNone
}

// usage records which stages reference each global and returns the stages
// that have entry points.
func (c *collector) usage() frontend.Stage {
	c.used = make(map[ir.GlobalVariableHandle]frontend.Stage)
	var stages frontend.Stage
	for _, ep := range c.module.EntryPoints {
		stage := stageOf(ep.Stage)
		if stage == frontend.StageNone {
			continue
		}
		stages |= stage
		c.walkFunction(ep.Function, stage, make(map[ir.FunctionHandle]bool))
	}
	return stages
}

func (c *collector) walkFunction(h ir.FunctionHandle, stage frontend.Stage, seen map[ir.FunctionHandle]bool) {
	if seen[h] || int(h) >= len(c.module.Functions) {
		return
	}
	seen[h] = true
	fn := &c.module.Functions[h]
	for _, e := range fn.Expressions {
		switch k := e.Kind.(type) {
		case ir.ExprGlobalVariable:
			c.used[k.Variable] |= stage
		case ir.ExprCallResult:
			c.walkFunction(k.Function, stage, seen)
		}
	}
	c.walkBlock(fn.Body, stage, seen)
}

func (c *collector) walkBlock(b ir.Block, stage frontend.Stage, seen map[ir.FunctionHandle]bool) {
	for _, s := range b {
		switch k := s.Kind.(type) {
		case ir.StmtCall:
			c.walkFunction(k.Function, stage, seen)
		case ir.StmtBlock:
			c.walkBlock(k.Block, stage, seen)
		case ir.StmtIf:
			c.walkBlock(k.Accept, stage, seen)
			c.walkBlock(k.Reject, stage, seen)
		case ir.StmtSwitch:
			for _, cs := range k.Cases {
				c.walkBlock(cs.Body, stage, seen)
			}
		case ir.StmtLoop:
			c.walkBlock(k.Body, stage, seen)
			c.walkBlock(k.Continuing, stage, seen)
		}
	}
}

func (c *collector) inner(h ir.TypeHandle) ir.TypeInner {
	if int(h) >= len(c.module.Types) {
		return nil
	}
	return c.module.Types[h].Inner
}

// attributes returns the @location inputs of the first vertex entry point.
func (c *collector) attributes() ([]frontend.Attribute, error) {
	for _, ep := range c.module.EntryPoints {
		if ep.Stage != ir.StageVertex || int(ep.Function) >= len(c.module.Functions) {
			continue
		}
		var attrs []frontend.Attribute
		for _, arg := range c.module.Functions[ep.Function].Arguments {
			if st, ok := c.inner(arg.Type).(ir.StructType); ok {
				for _, m := range st.Members {
					a, ok, err := c.attribute(m.Name, m.Type, m.Binding)
					if err != nil {
						return nil, err
					}
					if ok {
						attrs = append(attrs, a)
					}
				}
				continue
			}
			a, ok, err := c.attribute(arg.Name, arg.Type, arg.Binding)
			if err != nil {
				return nil, err
			}
			if ok {
				attrs = append(attrs, a)
			}
		}
		return attrs, nil
	}
	return nil, nil
}

func (c *collector) attribute(name string, th ir.TypeHandle, binding *ir.Binding) (frontend.Attribute, bool, error) {
	if binding == nil {
		return frontend.Attribute{}, false, nil
	}
	loc, ok := (*binding).(ir.LocationBinding)
	if !ok {
		return frontend.Attribute{}, false, nil
	}
	t, err := c.leafType(name, c.inner(th))
	if err != nil {
		return frontend.Attribute{}, false, err
	}
	return frontend.Attribute{Name: name, Type: t, Location: frontend.Some(loc.Location)}, true, nil
}

// globals returns the active uniform and handle-space globals in
// declaration order.
func (c *collector) globals() ([]frontend.Uniform, error) {
	var out []frontend.Uniform
	for i, gv := range c.module.GlobalVariables {
		stages := c.used[ir.GlobalVariableHandle(i)]
		if stages == frontend.StageNone {
			continue
		}
		u := frontend.Uniform{Stages: stages}
		if gv.Binding != nil {
			u.Set = frontend.Some(gv.Binding.Group)
			u.Binding = frontend.Some(gv.Binding.Binding)
		}
		switch gv.Space {
		case ir.SpaceUniform:
			u.Block = gv.Name
			if err := c.flatten(gv.Name, gv.Type, u, &out); err != nil {
				return nil, err
			}
			if _, _, err := c.blockLayout(gv.Name, gv.Type); err != nil {
				return nil, err
			}
		case ir.SpaceHandle:
			u.Name = gv.Name
			u.ArraySize = 1
			inner := c.inner(gv.Type)
			if arr, ok := inner.(ir.ArrayType); ok {
				if arr.Size.Constant == nil {
					return nil, fmt.Errorf("%w: %q is a runtime-sized binding array", ErrUnsupported, gv.Name)
				}
				u.ArraySize = *arr.Size.Constant
				inner = c.inner(arr.Base)
			}
			t, err := c.leafType(gv.Name, inner)
			if err != nil {
				return nil, err
			}
			u.Type = t
			out = append(out, u)
		}
	}
	return out, nil
}

// flatten appends the leaves of a uniform-space value named prefix.
// Arrays of leaves keep one entry named "prefix[0]" with the array size.
func (c *collector) flatten(prefix string, th ir.TypeHandle, u frontend.Uniform, out *[]frontend.Uniform) error {
	switch t := c.inner(th).(type) {
	case ir.StructType:
		for _, m := range t.Members {
			if err := c.flatten(prefix+"."+m.Name, m.Type, u, out); err != nil {
				return err
			}
		}
		return nil
	case ir.ArrayType:
		if t.Size.Constant == nil {
			return fmt.Errorf("%w: %q is a runtime-sized array", ErrUnsupported, prefix)
		}
		n := *t.Size.Constant
		base := c.inner(t.Base)
		if _, ok := base.(ir.StructType); ok {
			for i := uint32(0); i < n; i++ {
				if err := c.flatten(fmt.Sprintf("%s[%d]", prefix, i), t.Base, u, out); err != nil {
					return err
				}
			}
			return nil
		}
		leaf, err := c.leafType(prefix, base)
		if err != nil {
			return err
		}
		u.Name = prefix + "[0]"
		u.Type = leaf
		u.ArraySize = n
		*out = append(*out, u)
		return nil
	default:
		leaf, err := c.leafType(prefix, t)
		if err != nil {
			return err
		}
		u.Name = prefix
		u.Type = leaf
		u.ArraySize = 1
		*out = append(*out, u)
		return nil
	}
}

// blockLayout returns the alignment and size the reflection engine gives
// the flattened value named name, failing where naga laid the value out
// differently.
func (c *collector) blockLayout(name string, th ir.TypeHandle) (align, size uint64, err error) {
	switch t := c.inner(th).(type) {
	case ir.StructType:
		var cursor uint64
		for _, m := range t.Members {
			path := name + "." + m.Name
			a, sz, err := c.blockLayout(path, m.Type)
			if err != nil {
				return 0, 0, err
			}
			offset := roundUp(cursor, a)
			if uint64(m.Offset) != offset {
				return 0, 0, fmt.Errorf("%w: %q lies at offset %d, reflected at %d", ErrUnsupported, path, m.Offset, offset)
			}
			cursor = offset + sz
		}
		size = roundUp(cursor, types.SlotSize)
		if uint64(t.Span) > size {
			return 0, 0, fmt.Errorf("%w: %q spans %d bytes, reflected as %d", ErrUnsupported, name, t.Span, size)
		}
		return types.SlotSize, size, nil
	case ir.ArrayType:
		if t.Size.Constant == nil {
			return 0, 0, fmt.Errorf("%w: %q is a runtime-sized array", ErrUnsupported, name)
		}
		n := uint64(*t.Size.Constant)
		var stride uint64
		if _, ok := c.inner(t.Base).(ir.StructType); ok {
			// Element size is already a multiple of 16.
			if _, stride, err = c.blockLayout(name+"[0]", t.Base); err != nil {
				return 0, 0, err
			}
		} else {
			leaf, err := c.leafType(name, c.inner(t.Base))
			if err != nil {
				return 0, 0, err
			}
			if n <= 1 {
				return leafLayout(name, leaf)
			}
			s, ok := leaf.ArrayStride()
			if !ok {
				return 0, 0, fmt.Errorf("%w: %q has no size in a uniform block", ErrUnsupported, name)
			}
			stride = uint64(s)
		}
		if t.Stride != 0 && uint64(t.Stride) != stride {
			return 0, 0, fmt.Errorf("%w: %q has array stride %d, reflected as %d", ErrUnsupported, name, t.Stride, stride)
		}
		return types.SlotSize, stride * n, nil
	default:
		leaf, err := c.leafType(name, t)
		if err != nil {
			return 0, 0, err
		}
		return leafLayout(name, leaf)
	}
}

func leafLayout(name string, t types.Type) (align, size uint64, err error) {
	a, sz, ok := t.Layout()
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q has no size in a uniform block", ErrUnsupported, name)
	}
	return uint64(a), uint64(sz), nil
}

func roundUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// leafType maps a naga type to the GL type a GLSL front-end would report.
func (c *collector) leafType(name string, inner ir.TypeInner) (types.Type, error) {
	var t types.Type
	switch v := inner.(type) {
	case ir.ScalarType:
		t = scalarType(v)
	case ir.VectorType:
		t = vectorType(v)
	case ir.MatrixType:
		if v.Scalar.Kind == ir.ScalarFloat && v.Scalar.Width == 4 {
			t = matrixTypes[[2]ir.VectorSize{v.Columns, v.Rows}]
		}
	case ir.SamplerType:
		t = types.Sampler
		if v.Comparison {
			t = types.SamplerComparison
		}
	case ir.ImageType:
		t = imageType(v)
	}
	if t == types.Invalid {
		return types.Invalid, fmt.Errorf("%w: %q has type %T with no GLSL equivalent", ErrUnsupported, name, inner)
	}
	return t, nil
}

func scalarType(s ir.ScalarType) types.Type {
	switch s.Kind {
	case ir.ScalarFloat:
		if s.Width == 8 {
			return types.Double
		}
		if s.Width == 4 {
			return types.Float
		}
	case ir.ScalarSint:
		return types.Int
	case ir.ScalarUint:
		return types.Uint
	case ir.ScalarBool:
		return types.Bool
	}
	return types.Invalid
}

var vectorTypes = map[types.Type][3]types.Type{
	types.Float:  {types.FloatVec2, types.FloatVec3, types.FloatVec4},
	types.Double: {types.DoubleVec2, types.DoubleVec3, types.DoubleVec4},
	types.Int:    {types.IntVec2, types.IntVec3, types.IntVec4},
	types.Uint:   {types.UintVec2, types.UintVec3, types.UintVec4},
	types.Bool:   {types.BoolVec2, types.BoolVec3, types.BoolVec4},
}

func vectorType(v ir.VectorType) types.Type {
	row, ok := vectorTypes[scalarType(v.Scalar)]
	if !ok || v.Size < ir.Vec2 || v.Size > ir.Vec4 {
		return types.Invalid
	}
	return row[v.Size-ir.Vec2]
}

// matrixTypes is keyed by columns, rows.
var matrixTypes = map[[2]ir.VectorSize]types.Type{
	{ir.Vec2, ir.Vec2}: types.FloatMat2,
	{ir.Vec3, ir.Vec3}: types.FloatMat3,
	{ir.Vec4, ir.Vec4}: types.FloatMat4,
	{ir.Vec2, ir.Vec3}: types.FloatMat2x3,
	{ir.Vec2, ir.Vec4}: types.FloatMat2x4,
	{ir.Vec3, ir.Vec2}: types.FloatMat3x2,
	{ir.Vec3, ir.Vec4}: types.FloatMat3x4,
	{ir.Vec4, ir.Vec2}: types.FloatMat4x2,
	{ir.Vec4, ir.Vec3}: types.FloatMat4x3,
}

func imageType(img ir.ImageType) types.Type {
	switch img.Class {
	case ir.ImageClassSampled:
		switch {
		case img.Multisampled && img.Dim == ir.Dim2D && !img.Arrayed:
			return types.TextureMultisampled2D
		case img.Dim == ir.Dim2D && img.Arrayed:
			return types.Texture2DArray
		case img.Dim == ir.Dim2D:
			return types.Texture2D
		case img.Dim == ir.Dim3D:
			return types.Texture3D
		case img.Dim == ir.DimCube && !img.Arrayed:
			return types.TextureCube
		}
	case ir.ImageClassDepth:
		switch {
		case img.Dim == ir.Dim2D && img.Arrayed:
			return types.TextureDepth2DArray
		case img.Dim == ir.Dim2D && !img.Multisampled:
			return types.TextureDepth2D
		case img.Dim == ir.DimCube && !img.Arrayed:
			return types.TextureDepthCube
		}
	case ir.ImageClassStorage:
		switch {
		case img.Dim == ir.Dim2D && img.Arrayed:
			return types.TextureStorage2DArray
		case img.Dim == ir.Dim2D:
			return types.TextureStorage2D
		case img.Dim == ir.Dim3D:
			return types.TextureStorage3D
		case img.Dim == ir.DimCube:
			return types.TextureStorageCube
		}
	}
	return types.Invalid
}
