// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package frontend defines what the reflection engine needs from a shader
// compiler front-end: the active attributes and uniforms of one linked
// program, each with independently optional location, binding and set.
//
// The engine never links a compiler directly. Any front-end (the naga WGSL
// front-end in frontend/wgsl, a glslang wrapper, or the in-memory Static
// program used by tests) plugs in by implementing Program.
package frontend

import (
	"fmt"
	"strings"

	"github.com/gogpu/glreflect/types"
)

// Program is a compiled and linked shader program as reported by a front-end.
//
// Both lists are in declaration order. Uniform names follow the glslang
// convention for flattened aggregates: "light.color", "lights[1].color",
// "bones[0]".
type Program interface {
	// Attributes returns the active vertex attributes.
	Attributes() []Attribute

	// Uniforms returns the active uniforms, opaque ones included.
	Uniforms() []Uniform
}

// SourceProvider is implemented by programs that can return the source text
// of a stage after front-end preprocessing.
type SourceProvider interface {
	Source(stage Stage) (string, bool)
}

// BinaryProvider is implemented by programs that can return the compiled
// binary (SPIR-V words, little-endian) of a stage.
type BinaryProvider interface {
	Binary(stage Stage) ([]byte, bool)
}

// Optional is a value the front-end may or may not have reported.
type Optional struct {
	Value uint32
	Valid bool
}

// None is the absent Optional.
var None = Optional{}

// Some returns a present Optional holding v.
func Some(v uint32) Optional {
	return Optional{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (o Optional) Get() (uint32, bool) {
	return o.Value, o.Valid
}

// String returns the value, or "-" when absent.
func (o Optional) String() string {
	if !o.Valid {
		return "-"
	}
	return fmt.Sprintf("%d", o.Value)
}

// Stage is a set of program stages.
type Stage uint32

const (
	StageVertex Stage = 1 << iota
	StageFragment

	StageNone Stage = 0
	StageAll        = StageVertex | StageFragment
)

// Stages lists every single stage in pipeline order.
var Stages = []Stage{StageVertex, StageFragment}

// String returns a short name such as "vs", "fs" or "vs|fs".
func (s Stage) String() string {
	if s == StageNone {
		return "none"
	}
	var parts []string
	if s&StageVertex != 0 {
		parts = append(parts, "vs")
	}
	if s&StageFragment != 0 {
		parts = append(parts, "fs")
	}
	if rest := s &^ StageAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// Attribute is an active vertex input.
type Attribute struct {
	Name     string
	Type     types.Type
	Location Optional
}

// Uniform is an active uniform variable.
type Uniform struct {
	Name string
	Type types.Type

	// ArraySize is the declared array length; 0 and 1 both mean "not an array".
	ArraySize uint32

	// Stages lists the stages that reference the uniform.
	// StageNone means all stages.
	Stages Stage

	// Block names the explicit uniform block declaring the uniform.
	// Empty for uniforms in the default block.
	Block string

	Location Optional
	Binding  Optional
	Set      Optional
}
