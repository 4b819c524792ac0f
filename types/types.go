// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package types describes the GLSL ES variable types a front-end reports for
// active attributes and uniforms.
//
// A Type is the OpenGL enum value of the type (GL_FLOAT_VEC3 is 0x8B51 and so
// on), which keeps reflection blobs readable by anything that speaks GL.
// Besides naming, the package knows which types are opaque and the size and
// alignment every non-opaque type takes inside a uniform block.
package types

import "fmt"

// Type is a GLSL variable type, identified by its OpenGL enum value.
type Type uint32

// Invalid is the zero Type. No front-end reports it.
const Invalid Type = 0

// Scalar, vector and matrix types.
const (
	Int         Type = 0x1404
	Uint        Type = 0x1405
	Float       Type = 0x1406
	Double      Type = 0x140A
	FloatVec2   Type = 0x8B50
	FloatVec3   Type = 0x8B51
	FloatVec4   Type = 0x8B52
	IntVec2     Type = 0x8B53
	IntVec3     Type = 0x8B54
	IntVec4     Type = 0x8B55
	Bool        Type = 0x8B56
	BoolVec2    Type = 0x8B57
	BoolVec3    Type = 0x8B58
	BoolVec4    Type = 0x8B59
	FloatMat2   Type = 0x8B5A
	FloatMat3   Type = 0x8B5B
	FloatMat4   Type = 0x8B5C
	FloatMat2x3 Type = 0x8B65
	FloatMat2x4 Type = 0x8B66
	FloatMat3x2 Type = 0x8B67
	FloatMat3x4 Type = 0x8B68
	FloatMat4x2 Type = 0x8B69
	FloatMat4x3 Type = 0x8B6A
	UintVec2    Type = 0x8DC6
	UintVec3    Type = 0x8DC7
	UintVec4    Type = 0x8DC8
	DoubleVec2  Type = 0x8FFC
	DoubleVec3  Type = 0x8FFD
	DoubleVec4  Type = 0x8FFE
)

// Opaque types.
const (
	Sampler2D              Type = 0x8B5E
	Sampler3D              Type = 0x8B5F
	SamplerCube            Type = 0x8B60
	Sampler2DShadow        Type = 0x8B62
	SamplerExternalOES     Type = 0x8D66
	Sampler2DArray         Type = 0x8DC1
	Sampler2DArrayShadow   Type = 0x8DC4
	SamplerCubeShadow      Type = 0x8DC5
	IntSampler2D           Type = 0x8DCA
	IntSampler3D           Type = 0x8DCB
	IntSamplerCube         Type = 0x8DCC
	IntSampler2DArray      Type = 0x8DCF
	UintSampler2D          Type = 0x8DD2
	UintSampler3D          Type = 0x8DD3
	UintSamplerCube        Type = 0x8DD4
	UintSampler2DArray     Type = 0x8DD7
	Image2D                Type = 0x904D
	Image3D                Type = 0x904E
	ImageCube              Type = 0x9050
	Image2DArray           Type = 0x9053
	UintAtomicCounter      Type = 0x92DB
	Sampler                Type = 0xFF01 // separate sampler object, no GL enum
	Texture2D              Type = 0xFF02 // separate texture object, no GL enum
	TextureCube            Type = 0xFF03
	Texture3D              Type = 0xFF04
	Texture2DArray         Type = 0xFF05
	TextureDepth2D         Type = 0xFF06
	SamplerComparison      Type = 0xFF07
	TextureDepthCube       Type = 0xFF08
	TextureDepth2DArray    Type = 0xFF09
	TextureMultisampled2D  Type = 0xFF0A
	TextureStorage2D       Type = 0xFF0B
	TextureStorage3D       Type = 0xFF0C
	TextureStorage2DArray  Type = 0xFF0D
	TextureStorageCube     Type = 0xFF0E
	IntTexture2D           Type = 0xFF10
	UintTexture2D          Type = 0xFF11
)

// Class groups types by how they are laid out and bound.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassScalar
	ClassVector
	ClassMatrix
	ClassSampler
	ClassTexture
	ClassImage
	ClassAtomicCounter
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "scalar"
	case ClassVector:
		return "vector"
	case ClassMatrix:
		return "matrix"
	case ClassSampler:
		return "sampler"
	case ClassTexture:
		return "texture"
	case ClassImage:
		return "image"
	case ClassAtomicCounter:
		return "atomic_uint"
	default:
		return "invalid"
	}
}

// Kind is the scalar kind of a type's components, or of the texels an opaque
// type samples.
type Kind uint8

const (
	KindNone Kind = iota
	KindFloat
	KindInt
	KindUint
	KindBool
	KindDouble
)

// Dim is the dimensionality of a sampler, texture or image.
type Dim uint8

const (
	DimNone Dim = iota
	Dim2D
	Dim3D
	DimCube
	Dim2DArray
	DimExternal
)

type info struct {
	name   string
	class  Class
	kind   Kind
	cols   uint8 // matrix columns; 1 for scalars and vectors
	rows   uint8 // vector components
	dim    Dim
	shadow bool
}

var infos = map[Type]info{
	Float:       {name: "float", class: ClassScalar, kind: KindFloat, cols: 1, rows: 1},
	Int:         {name: "int", class: ClassScalar, kind: KindInt, cols: 1, rows: 1},
	Uint:        {name: "uint", class: ClassScalar, kind: KindUint, cols: 1, rows: 1},
	Bool:        {name: "bool", class: ClassScalar, kind: KindBool, cols: 1, rows: 1},
	Double:      {name: "double", class: ClassScalar, kind: KindDouble, cols: 1, rows: 1},
	FloatVec2:   {name: "vec2", class: ClassVector, kind: KindFloat, cols: 1, rows: 2},
	FloatVec3:   {name: "vec3", class: ClassVector, kind: KindFloat, cols: 1, rows: 3},
	FloatVec4:   {name: "vec4", class: ClassVector, kind: KindFloat, cols: 1, rows: 4},
	IntVec2:     {name: "ivec2", class: ClassVector, kind: KindInt, cols: 1, rows: 2},
	IntVec3:     {name: "ivec3", class: ClassVector, kind: KindInt, cols: 1, rows: 3},
	IntVec4:     {name: "ivec4", class: ClassVector, kind: KindInt, cols: 1, rows: 4},
	UintVec2:    {name: "uvec2", class: ClassVector, kind: KindUint, cols: 1, rows: 2},
	UintVec3:    {name: "uvec3", class: ClassVector, kind: KindUint, cols: 1, rows: 3},
	UintVec4:    {name: "uvec4", class: ClassVector, kind: KindUint, cols: 1, rows: 4},
	BoolVec2:    {name: "bvec2", class: ClassVector, kind: KindBool, cols: 1, rows: 2},
	BoolVec3:    {name: "bvec3", class: ClassVector, kind: KindBool, cols: 1, rows: 3},
	BoolVec4:    {name: "bvec4", class: ClassVector, kind: KindBool, cols: 1, rows: 4},
	DoubleVec2:  {name: "dvec2", class: ClassVector, kind: KindDouble, cols: 1, rows: 2},
	DoubleVec3:  {name: "dvec3", class: ClassVector, kind: KindDouble, cols: 1, rows: 3},
	DoubleVec4:  {name: "dvec4", class: ClassVector, kind: KindDouble, cols: 1, rows: 4},
	FloatMat2:   {name: "mat2", class: ClassMatrix, kind: KindFloat, cols: 2, rows: 2},
	FloatMat3:   {name: "mat3", class: ClassMatrix, kind: KindFloat, cols: 3, rows: 3},
	FloatMat4:   {name: "mat4", class: ClassMatrix, kind: KindFloat, cols: 4, rows: 4},
	FloatMat2x3: {name: "mat2x3", class: ClassMatrix, kind: KindFloat, cols: 2, rows: 3},
	FloatMat2x4: {name: "mat2x4", class: ClassMatrix, kind: KindFloat, cols: 2, rows: 4},
	FloatMat3x2: {name: "mat3x2", class: ClassMatrix, kind: KindFloat, cols: 3, rows: 2},
	FloatMat3x4: {name: "mat3x4", class: ClassMatrix, kind: KindFloat, cols: 3, rows: 4},
	FloatMat4x2: {name: "mat4x2", class: ClassMatrix, kind: KindFloat, cols: 4, rows: 2},
	FloatMat4x3: {name: "mat4x3", class: ClassMatrix, kind: KindFloat, cols: 4, rows: 3},

	Sampler2D:            {name: "sampler2D", class: ClassSampler, kind: KindFloat, dim: Dim2D},
	Sampler3D:            {name: "sampler3D", class: ClassSampler, kind: KindFloat, dim: Dim3D},
	SamplerCube:          {name: "samplerCube", class: ClassSampler, kind: KindFloat, dim: DimCube},
	Sampler2DShadow:      {name: "sampler2DShadow", class: ClassSampler, kind: KindFloat, dim: Dim2D, shadow: true},
	SamplerExternalOES:   {name: "samplerExternalOES", class: ClassSampler, kind: KindFloat, dim: DimExternal},
	Sampler2DArray:       {name: "sampler2DArray", class: ClassSampler, kind: KindFloat, dim: Dim2DArray},
	Sampler2DArrayShadow: {name: "sampler2DArrayShadow", class: ClassSampler, kind: KindFloat, dim: Dim2DArray, shadow: true},
	SamplerCubeShadow:    {name: "samplerCubeShadow", class: ClassSampler, kind: KindFloat, dim: DimCube, shadow: true},
	IntSampler2D:         {name: "isampler2D", class: ClassSampler, kind: KindInt, dim: Dim2D},
	IntSampler3D:         {name: "isampler3D", class: ClassSampler, kind: KindInt, dim: Dim3D},
	IntSamplerCube:       {name: "isamplerCube", class: ClassSampler, kind: KindInt, dim: DimCube},
	IntSampler2DArray:    {name: "isampler2DArray", class: ClassSampler, kind: KindInt, dim: Dim2DArray},
	UintSampler2D:        {name: "usampler2D", class: ClassSampler, kind: KindUint, dim: Dim2D},
	UintSampler3D:        {name: "usampler3D", class: ClassSampler, kind: KindUint, dim: Dim3D},
	UintSamplerCube:      {name: "usamplerCube", class: ClassSampler, kind: KindUint, dim: DimCube},
	UintSampler2DArray:   {name: "usampler2DArray", class: ClassSampler, kind: KindUint, dim: Dim2DArray},
	Image2D:              {name: "image2D", class: ClassImage, kind: KindFloat, dim: Dim2D},
	Image3D:              {name: "image3D", class: ClassImage, kind: KindFloat, dim: Dim3D},
	ImageCube:            {name: "imageCube", class: ClassImage, kind: KindFloat, dim: DimCube},
	Image2DArray:         {name: "image2DArray", class: ClassImage, kind: KindFloat, dim: Dim2DArray},
	UintAtomicCounter:    {name: "atomic_uint", class: ClassAtomicCounter, kind: KindUint},

	Sampler:               {name: "sampler", class: ClassSampler},
	SamplerComparison:     {name: "samplerShadow", class: ClassSampler, shadow: true},
	Texture2D:             {name: "texture2D", class: ClassTexture, kind: KindFloat, dim: Dim2D},
	Texture3D:             {name: "texture3D", class: ClassTexture, kind: KindFloat, dim: Dim3D},
	TextureCube:           {name: "textureCube", class: ClassTexture, kind: KindFloat, dim: DimCube},
	Texture2DArray:        {name: "texture2DArray", class: ClassTexture, kind: KindFloat, dim: Dim2DArray},
	TextureDepth2D:        {name: "texture2DDepth", class: ClassTexture, kind: KindFloat, dim: Dim2D, shadow: true},
	TextureDepthCube:      {name: "textureCubeDepth", class: ClassTexture, kind: KindFloat, dim: DimCube, shadow: true},
	TextureDepth2DArray:   {name: "texture2DArrayDepth", class: ClassTexture, kind: KindFloat, dim: Dim2DArray, shadow: true},
	TextureMultisampled2D: {name: "texture2DMS", class: ClassTexture, kind: KindFloat, dim: Dim2D},
	IntTexture2D:          {name: "itexture2D", class: ClassTexture, kind: KindInt, dim: Dim2D},
	UintTexture2D:         {name: "utexture2D", class: ClassTexture, kind: KindUint, dim: Dim2D},
	TextureStorage2D:      {name: "image2DStorage", class: ClassImage, kind: KindFloat, dim: Dim2D},
	TextureStorage3D:      {name: "image3DStorage", class: ClassImage, kind: KindFloat, dim: Dim3D},
	TextureStorage2DArray: {name: "image2DArrayStorage", class: ClassImage, kind: KindFloat, dim: Dim2DArray},
	TextureStorageCube:    {name: "imageCubeStorage", class: ClassImage, kind: KindFloat, dim: DimCube},
}

var byName map[string]Type

func init() {
	byName = make(map[string]Type, len(infos))
	for t, inf := range infos {
		byName[inf.name] = t
	}
}

// Parse returns the Type with the given GLSL name.
func Parse(name string) (Type, bool) {
	t, ok := byName[name]
	return t, ok
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	_, ok := infos[t]
	return ok
}

// String returns the GLSL name of t.
func (t Type) String() string {
	if inf, ok := infos[t]; ok {
		return inf.name
	}
	return fmt.Sprintf("type(0x%04X)", uint32(t))
}

// Class returns the class of t.
func (t Type) Class() Class { return infos[t].class }

// Kind returns the component kind of t.
func (t Type) Kind() Kind { return infos[t].kind }

// Dim returns the dimensionality of an opaque type, DimNone otherwise.
func (t Type) Dim() Dim { return infos[t].dim }

// IsShadow reports whether t is a depth-comparison sampler or depth texture.
func (t Type) IsShadow() bool { return infos[t].shadow }

// IsOpaque reports whether t is a sampler, texture, image or atomic counter.
// Opaque uniforms are bound individually and never live in a uniform block.
func (t Type) IsOpaque() bool {
	switch infos[t].class {
	case ClassSampler, ClassTexture, ClassImage, ClassAtomicCounter:
		return true
	}
	return false
}

// Columns returns the number of matrix columns, 1 for scalars and vectors
// and 0 for opaque or unknown types.
func (t Type) Columns() uint32 { return uint32(infos[t].cols) }

// Rows returns the number of vector components (the column height of a matrix).
func (t Type) Rows() uint32 { return uint32(infos[t].rows) }

// ComponentSize returns the size in bytes of one scalar component.
func (t Type) ComponentSize() uint32 {
	switch infos[t].kind {
	case KindDouble:
		return 8
	case KindNone:
		return 0
	}
	return 4
}
