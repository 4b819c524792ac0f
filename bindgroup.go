package glreflect

import (
	"sort"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

// BindGroupLayoutEntries returns the layout entries of descriptor set set,
// ordered by binding: one uniform buffer per block, one texture or sampler
// entry per bound opaque uniform.
//
// Combined samplers (sampler2D and friends) are reported as their texture
// half. Storage images and atomic counters carry no layout a uniform
// reflection can describe and are skipped, as are opaque uniforms without a
// binding.
func (r *Reflection) BindGroupLayoutEntries(set uint32) []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry

	for i := range r.blocks {
		b := &r.blocks[i]
		if b.Set != set {
			continue
		}
		e := gputypes.BindGroupLayoutEntry{
			Binding: b.Binding,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: uint64(b.Size),
			},
		}
		setVisibility(&e, b.Stages)
		entries = append(entries, e)
	}

	for i := range r.opaque {
		u := &r.opaque[i]
		binding, ok := u.Binding.Get()
		if !ok || u.Set.Value != set {
			continue
		}
		e := gputypes.BindGroupLayoutEntry{Binding: binding}
		switch {
		case u.Type.Class() == types.ClassSampler && u.Type.Dim() == types.DimNone:
			e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
			if u.Type.IsShadow() {
				e.Sampler.Type = gputypes.SamplerBindingTypeComparison
			}
		case u.Type.Class() == types.ClassSampler, u.Type.Class() == types.ClassTexture:
			e.Texture = &gputypes.TextureBindingLayout{
				SampleType:    sampleType(u.Type),
				ViewDimension: viewDimension(u.Type.Dim()),
				Multisampled:  u.Type == types.TextureMultisampled2D,
			}
		default:
			Logger().Warn("glreflect: no bind group layout for uniform",
				"uniform", u.Name, "type", u.Type)
			continue
		}
		setVisibility(&e, u.Stages)
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
	return entries
}

func setVisibility(e *gputypes.BindGroupLayoutEntry, stages frontend.Stage) {
	if stages&frontend.StageVertex != 0 {
		e.Visibility |= gputypes.ShaderStageVertex
	}
	if stages&frontend.StageFragment != 0 {
		e.Visibility |= gputypes.ShaderStageFragment
	}
}

func sampleType(t types.Type) gputypes.TextureSampleType {
	if t.IsShadow() {
		return gputypes.TextureSampleTypeDepth
	}
	switch t.Kind() {
	case types.KindInt:
		return gputypes.TextureSampleTypeSint
	case types.KindUint:
		return gputypes.TextureSampleTypeUint
	default:
		return gputypes.TextureSampleTypeFloat
	}
}

func viewDimension(d types.Dim) gputypes.TextureViewDimension {
	switch d {
	case types.Dim3D:
		return gputypes.TextureViewDimension3D
	case types.DimCube:
		return gputypes.TextureViewDimensionCube
	case types.Dim2DArray:
		return gputypes.TextureViewDimension2DArray
	default:
		return gputypes.TextureViewDimension2D
	}
}

// vertexFormats maps attribute types to vertex formats and their byte size.
var vertexFormats = map[types.Type]struct {
	format gputypes.VertexFormat
	size   uint64
}{
	types.Float:     {gputypes.VertexFormatFloat32, 4},
	types.FloatVec2: {gputypes.VertexFormatFloat32x2, 8},
	types.FloatVec3: {gputypes.VertexFormatFloat32x3, 12},
	types.FloatVec4: {gputypes.VertexFormatFloat32x4, 16},
	types.Int:       {gputypes.VertexFormatSint32, 4},
	types.IntVec2:   {gputypes.VertexFormatSint32x2, 8},
	types.IntVec3:   {gputypes.VertexFormatSint32x3, 12},
	types.IntVec4:   {gputypes.VertexFormatSint32x4, 16},
	types.Uint:      {gputypes.VertexFormatUint32, 4},
	types.UintVec2:  {gputypes.VertexFormatUint32x2, 8},
	types.UintVec3:  {gputypes.VertexFormatUint32x3, 12},
	types.UintVec4:  {gputypes.VertexFormatUint32x4, 16},
}

// VertexAttributes returns a tightly packed single-buffer vertex layout:
// attributes in location order, each at the end of the previous one, and
// the resulting array stride.
//
// Attributes without a location or with a type that has no vertex format
// (matrices, booleans, doubles) are skipped with a warning.
func (r *Reflection) VertexAttributes() ([]gputypes.VertexAttribute, uint64) {
	attrs := make([]Attribute, 0, len(r.attributes))
	for _, a := range r.attributes {
		if !a.Location.Valid {
			Logger().Warn("glreflect: attribute has no location", "attribute", a.Name)
			continue
		}
		if _, ok := vertexFormats[a.Type]; !ok {
			Logger().Warn("glreflect: attribute has no vertex format",
				"attribute", a.Name, "type", a.Type)
			continue
		}
		attrs = append(attrs, a)
	}
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Location.Value < attrs[j].Location.Value })

	var out []gputypes.VertexAttribute
	var offset uint64
	for _, a := range attrs {
		vf := vertexFormats[a.Type]
		out = append(out, gputypes.VertexAttribute{
			Format:         vf.format,
			Offset:         offset,
			ShaderLocation: a.Location.Value,
		})
		offset += vf.size
	}
	return out, offset
}
