package glreflect

import (
	"github.com/gogpu/glreflect/frontend"
)

// Reflection is the descriptive metadata of one compiled program: its vertex
// attributes, opaque uniforms, uniform blocks and the raw per-uniform
// metadata reported by the front-end.
//
// A Reflection is immutable. Accessors return copies, member trees
// included.
type Reflection struct {
	attributes []Attribute
	opaque     []Uniform
	blocks     []UniformBlock
	blockIndex map[string]int
	uniforms   []Uniform
}

// Attributes returns the active vertex attributes in declaration order.
func (r *Reflection) Attributes() []Attribute {
	return append([]Attribute(nil), r.attributes...)
}

// Attribute returns the attribute with the given name.
func (r *Reflection) Attribute(name string) (Attribute, bool) {
	for _, a := range r.attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// OpaqueUniforms returns the samplers, images and atomic counters, each
// with its binding and set.
func (r *Reflection) OpaqueUniforms() []Uniform {
	return append([]Uniform(nil), r.opaque...)
}

// Blocks returns the uniform blocks in a stable order.
func (r *Reflection) Blocks() []UniformBlock {
	if r.blocks == nil {
		return nil
	}
	out := make([]UniformBlock, len(r.blocks))
	for i := range r.blocks {
		out[i] = r.blocks[i].clone()
	}
	return out
}

// Block returns the uniform block with the given name.
func (r *Reflection) Block(name string) (UniformBlock, bool) {
	i, ok := r.blockIndex[name]
	if !ok {
		return UniformBlock{}, false
	}
	return r.blocks[i].clone(), true
}

// Uniforms returns the per-uniform metadata as reported by the front-end,
// before aggregate grouping.
func (r *Reflection) Uniforms() []Uniform {
	return append([]Uniform(nil), r.uniforms...)
}

// FindUniform locates a uniform by its front-end name. For block members it
// returns the containing block and the field with its absolute offset.
func (r *Reflection) FindUniform(name string) (block string, field Field, ok bool) {
	for i := range r.blocks {
		if f, found := r.blocks[i].Field(name); found {
			return r.blocks[i].Name, f, true
		}
	}
	return "", Field{}, false
}

// assemble combines the pipeline outputs into a Reflection after checking
// that names are unique in each namespace.
func assemble(attrs []Attribute, opaque []Uniform, blocks []UniformBlock, raw []Uniform, res frontend.Resources) (*Reflection, error) {
	if res.MaxVertexAttribs != 0 && uint32(len(attrs)) > res.MaxVertexAttribs {
		return nil, newError(ErrLimitExceeded, "", "%d attributes exceed limit %d", len(attrs), res.MaxVertexAttribs)
	}

	if err := checkNames(attrs, opaque, blocks, raw); err != nil {
		return nil, err
	}
	return newReflection(attrs, opaque, blocks, raw)
}

// checkNames fails with ErrDuplicateName unless attribute names, top-level
// uniform names across opaque uniforms and blocks, and the names of the
// front-end uniform list are each unique.
func checkNames(attrs []Attribute, opaque []Uniform, blocks []UniformBlock, raw []Uniform) error {
	attrNames := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if attrNames[a.Name] {
			return newError(ErrDuplicateName, a.Name, "duplicate attribute")
		}
		attrNames[a.Name] = true
	}

	uniformNames := make(map[string]bool)
	for _, u := range opaque {
		if uniformNames[u.Name] {
			return newError(ErrDuplicateName, u.Name, "duplicate uniform")
		}
		uniformNames[u.Name] = true
	}
	for _, b := range blocks {
		for _, m := range b.Members {
			if uniformNames[m.MemberName()] {
				return newError(ErrDuplicateName, m.MemberName(), "duplicate uniform")
			}
			uniformNames[m.MemberName()] = true
		}
	}

	rawNames := make(map[string]bool, len(raw))
	for _, u := range raw {
		if rawNames[u.Name] {
			return newError(ErrDuplicateName, u.Name, "uniform reported twice")
		}
		rawNames[u.Name] = true
	}
	return nil
}

// newReflection indexes blocks by name. Empty lists are stored as nil so
// that equal reflections compare equal whichever way they were produced.
func newReflection(attrs []Attribute, opaque []Uniform, blocks []UniformBlock, raw []Uniform) (*Reflection, error) {
	index := make(map[string]int, len(blocks))
	for i, b := range blocks {
		if _, dup := index[b.Name]; dup {
			return nil, newError(ErrDuplicateName, b.Name, "duplicate uniform block")
		}
		index[b.Name] = i
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	if len(opaque) == 0 {
		opaque = nil
	}
	if len(blocks) == 0 {
		blocks = nil
	}
	if len(raw) == 0 {
		raw = nil
	}
	return &Reflection{
		attributes: attrs,
		opaque:     opaque,
		blocks:     blocks,
		blockIndex: index,
		uniforms:   raw,
	}, nil
}
