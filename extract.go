package glreflect

import (
	"github.com/gogpu/glreflect/frontend"
)

// extractAttributes converts the front-end's active attribute list.
// Locations stay absent when the front-end did not assign one; a later
// binding stage picks them.
func extractAttributes(prog frontend.Program) ([]Attribute, error) {
	src := prog.Attributes()
	attrs := make([]Attribute, 0, len(src))
	for _, a := range src {
		if !a.Type.Valid() {
			return nil, newError(ErrUnsupportedType, a.Name, "attribute has unknown type %v", a.Type)
		}
		if a.Type.IsOpaque() {
			return nil, newError(ErrUnsupportedType, a.Name, "attribute cannot have opaque type %v", a.Type)
		}
		attrs = append(attrs, Attribute{
			Name:     a.Name,
			Type:     a.Type,
			Location: a.Location,
		})
	}
	return attrs, nil
}

// extractUniforms converts the front-end's active uniform list and splits it
// into ordinary and opaque uniforms, both in declaration order.
func extractUniforms(prog frontend.Program) (plain, opaque []Uniform, err error) {
	for _, u := range prog.Uniforms() {
		if !u.Type.Valid() {
			return nil, nil, newError(ErrUnsupportedType, u.Name, "uniform has unknown type %v", u.Type)
		}
		size := u.ArraySize
		if size == 0 {
			size = 1
		}
		stages := u.Stages
		if stages == frontend.StageNone {
			stages = frontend.StageAll
		}
		out := Uniform{
			Name:      u.Name,
			Type:      u.Type,
			ArraySize: size,
			Stages:    stages,
			Block:     u.Block,
			Location:  u.Location,
			Binding:   u.Binding,
			Set:       u.Set,
		}
		if out.Opaque() {
			opaque = append(opaque, out)
		} else {
			plain = append(plain, out)
		}
	}
	return plain, opaque, nil
}
