// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

// Resources is the built-in resource-limits table a front-end compiles
// against. It is shared by every build that uses the same environment and is
// never modified after initialisation.
type Resources struct {
	MaxVertexAttribs             uint32
	MaxVertexUniformVectors      uint32
	MaxFragmentUniformVectors    uint32
	MaxVaryingVectors            uint32
	MaxVertexTextureImageUnits   uint32
	MaxCombinedTextureImageUnits uint32
	MaxTextureImageUnits         uint32
	MaxDrawBuffers               uint32

	// MaxUniformBlockSize is the largest uniform block in bytes.
	MaxUniformBlockSize uint32

	// MaxDescriptorSets bounds the descriptor set index.
	MaxDescriptorSets uint32

	// MaxBindingsPerSet bounds the binding index within one set.
	MaxBindingsPerSet uint32
}

// DefaultResources returns the limits of an OpenGL ES 3.2 implementation
// running on a baseline Vulkan 1.0 device.
func DefaultResources() Resources {
	return Resources{
		MaxVertexAttribs:             16,
		MaxVertexUniformVectors:      256,
		MaxFragmentUniformVectors:    256,
		MaxVaryingVectors:            15,
		MaxVertexTextureImageUnits:   16,
		MaxCombinedTextureImageUnits: 32,
		MaxTextureImageUnits:         16,
		MaxDrawBuffers:               4,
		MaxUniformBlockSize:          16384,
		MaxDescriptorSets:            4,
		MaxBindingsPerSet:            64,
	}
}
