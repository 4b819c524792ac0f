// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

// Block layout constants.
const (
	// SlotSize is the alignment of matrices, arrays and aggregates and the
	// granularity of block sizes and array strides.
	SlotSize = 16
)

// Layout returns the base alignment and size in bytes that one element of t
// occupies inside a uniform block. ok is false for opaque and unknown types,
// which have no size in block memory.
//
//	scalar  | align = size = N (component size)
//	vec2    | align = size = 2N
//	vec3/4  | align = size = 4N
//	matCxR  | align 16, C columns of a 16-byte padded vecR
func (t Type) Layout() (align, size uint32, ok bool) {
	inf, known := infos[t]
	if !known {
		return 0, 0, false
	}
	n := t.ComponentSize()
	switch inf.class {
	case ClassScalar:
		return n, n, true
	case ClassVector:
		if inf.rows == 2 {
			return 2 * n, 2 * n, true
		}
		return 4 * n, 4 * n, true
	case ClassMatrix:
		col := RoundUp(4*n, SlotSize)
		return SlotSize, col * uint32(inf.cols), true
	}
	return 0, 0, false
}

// ArrayStride returns the distance between consecutive array elements of t:
// the element size rounded up to a 16-byte slot.
func (t Type) ArrayStride() (uint32, bool) {
	_, size, ok := t.Layout()
	if !ok {
		return 0, false
	}
	return RoundUp(size, SlotSize), true
}

// RoundUp rounds v up to a multiple of align, which must be a power of two.
func RoundUp(v, align uint32) uint32 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
