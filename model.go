package glreflect

import (
	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

// Attribute is an active vertex input.
type Attribute struct {
	Name     string
	Type     types.Type
	Location frontend.Optional
}

// Uniform is a uniform variable: a block member, an aggregate member, or an
// opaque uniform bound on its own.
type Uniform struct {
	Name string
	Type types.Type

	// ArraySize is the array length, 1 if the uniform is not an array.
	ArraySize uint32

	// Offset is the byte offset within the enclosing block or aggregate.
	// Zero for opaque uniforms.
	Offset uint32

	// Stride is the distance between array elements, 0 if not an array.
	Stride uint32

	// Stages lists the stages referencing the uniform.
	Stages frontend.Stage

	// Block is the explicit block the front-end declared the uniform in.
	Block string

	Location frontend.Optional
	Binding  frontend.Optional
	Set      frontend.Optional
}

// Opaque reports whether the uniform is a sampler, image or atomic counter.
func (u *Uniform) Opaque() bool { return u.Type.IsOpaque() }

// IsArray reports whether the uniform is an array.
func (u *Uniform) IsArray() bool { return u.ArraySize > 1 }

// Aggregate is a structured uniform value. One element of an array of
// structures is an Aggregate of its own, named with its slot ("lights[1]").
// The slots of one array share a layout: slot i lies i*Size bytes past
// where slot 0 lies, whether or not slot 0 was reported.
type Aggregate struct {
	Name    string
	Offset  uint32
	Size    uint32
	Members []Member
}

// Member is an element of a uniform block or aggregate: a *Uniform or an
// *Aggregate.
type Member interface {
	MemberName() string
	MemberOffset() uint32
	member()
}

// MemberName implements Member.
func (u *Uniform) MemberName() string { return u.Name }

// MemberOffset implements Member.
func (u *Uniform) MemberOffset() uint32 { return u.Offset }

func (*Uniform) member() {}

// MemberName implements Member.
func (a *Aggregate) MemberName() string { return a.Name }

// MemberOffset implements Member.
func (a *Aggregate) MemberOffset() uint32 { return a.Offset }

func (*Aggregate) member() {}

// UniformBlock is a contiguous uniform buffer bound as a unit.
type UniformBlock struct {
	Name    string
	Binding uint32
	Set     uint32
	Stages  frontend.Stage
	Size    uint32
	Members []Member
}

// Field is a leaf uniform of a block with its absolute offset.
type Field struct {
	// Path is the full name, e.g. "lights[1].color".
	Path      string
	Type      types.Type
	Offset    uint32
	ArraySize uint32
	Stride    uint32
}

// Fields flattens the block into its leaf uniforms in layout order.
func (b *UniformBlock) Fields() []Field {
	var out []Field
	appendFields(&out, "", 0, b.Members)
	return out
}

func appendFields(out *[]Field, prefix string, base uint32, members []Member) {
	for _, m := range members {
		switch m := m.(type) {
		case *Uniform:
			*out = append(*out, Field{
				Path:      prefix + m.Name,
				Type:      m.Type,
				Offset:    base + m.Offset,
				ArraySize: m.ArraySize,
				Stride:    m.Stride,
			})
		case *Aggregate:
			appendFields(out, prefix+m.Name+".", base+m.Offset, m.Members)
		}
	}
}

// Field returns the leaf uniform with the given full path.
func (b *UniformBlock) Field(path string) (Field, bool) {
	for _, f := range b.Fields() {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

// cloneMembers returns a deep copy of a member tree.
func cloneMembers(members []Member) []Member {
	if members == nil {
		return nil
	}
	out := make([]Member, len(members))
	for i, m := range members {
		out[i] = cloneMember(m)
	}
	return out
}

func cloneMember(m Member) Member {
	switch m := m.(type) {
	case *Uniform:
		u := *m
		return &u
	case *Aggregate:
		a := *m
		a.Members = cloneMembers(m.Members)
		return &a
	}
	return m
}

// clone returns a copy of b that shares no members with it.
func (b *UniformBlock) clone() UniformBlock {
	c := *b
	c.Members = cloneMembers(b.Members)
	return c
}
