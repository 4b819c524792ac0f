// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

// Static is a Program whose reflection data is supplied up front.
// It serves callers that run their own compiler and tests that need a
// deterministic front-end.
type Static struct {
	Attrs    []Attribute
	Unifs    []Uniform
	Sources  map[Stage]string
	Binaries map[Stage][]byte
}

// Attributes implements Program.
func (s *Static) Attributes() []Attribute { return s.Attrs }

// Uniforms implements Program.
func (s *Static) Uniforms() []Uniform { return s.Unifs }

// Source implements SourceProvider.
func (s *Static) Source(stage Stage) (string, bool) {
	src, ok := s.Sources[stage]
	return src, ok
}

// Binary implements BinaryProvider.
func (s *Static) Binary(stage Stage) ([]byte, bool) {
	bin, ok := s.Binaries[stage]
	return bin, ok
}

// AddAttribute appends an attribute and returns s for chaining.
func (s *Static) AddAttribute(a Attribute) *Static {
	s.Attrs = append(s.Attrs, a)
	return s
}

// AddUniform appends a uniform and returns s for chaining.
func (s *Static) AddUniform(u Uniform) *Static {
	s.Unifs = append(s.Unifs, u)
	return s
}
