// Package glreflect builds shader reflection for GLSL ES programs that run on
// a descriptor-set based API.
//
// A GLSL ES program exposes a flat, location-addressed uniform space. A
// Vulkan-style backend needs uniform blocks instead: every ordinary uniform
// has to live at a known offset in a buffer bound at a (set, binding) pair.
// glreflect rebuilds that layout from what a front-end compiler reports:
//
//	prog, err := wgsl.Compile(source)   // or a frontend.Static
//	refl, err := glreflect.Build(env, prog, glreflect.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range refl.Blocks() {
//	    fmt.Println(b.Name, b.Set, b.Binding, b.Size)
//	}
//
// The pipeline is synchronous and deterministic:
//  1. extract attributes and uniforms from the frontend.Program
//  2. rebuild aggregates (structures, arrays of structures) from names
//  3. group uniforms into blocks, compute offsets, sizes and bindings
//  4. assemble an immutable Reflection
//
// A Reflection serializes to a versioned blob (MarshalBinary/Unmarshal) that
// can be cached alongside the compiled program.
package glreflect

import (
	"fmt"

	"github.com/gogpu/glreflect/frontend"
)

// Build reflects a compiled program.
//
// env provides the shared resource table; a nil env uses the default
// resources. On failure no partial reflection is returned.
func Build(env *Environment, prog frontend.Program, opts Options) (*Reflection, error) {
	if env == nil {
		env = NewEnvironment(nil)
	}
	res := env.Resources()
	log := Logger()

	attrs, err := extractAttributes(prog)
	if err != nil {
		return nil, fmt.Errorf("extract attributes: %w", err)
	}
	plain, opaque, err := extractUniforms(prog)
	if err != nil {
		return nil, fmt.Errorf("extract uniforms: %w", err)
	}
	raw := make([]Uniform, 0, len(plain)+len(opaque))
	raw = append(raw, plain...)
	raw = append(raw, opaque...)
	log.Debug("glreflect: extracted",
		"attributes", len(attrs), "uniforms", len(plain), "opaque", len(opaque))

	members, err := resolveAggregates(plain)
	if err != nil {
		return nil, fmt.Errorf("resolve aggregates: %w", err)
	}
	opaque, err = foldOpaque(opaque)
	if err != nil {
		return nil, fmt.Errorf("resolve aggregates: %w", err)
	}

	blocks, err := buildBlocks(members, opaque, opts, res)
	if err != nil {
		return nil, fmt.Errorf("build uniform blocks: %w", err)
	}

	refl, err := assemble(attrs, opaque, blocks, raw, res)
	if err != nil {
		return nil, fmt.Errorf("assemble reflection: %w", err)
	}
	log.Debug("glreflect: reflection built", "blocks", len(blocks))
	return refl, nil
}
