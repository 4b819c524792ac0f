package spvtext

// Operand layout codes used by opInfo.operands. Upper-case codes consume
// every remaining word.
//
//	i  id               I  ids
//	n  literal number   N  literal numbers
//	s  literal string
//	C  capability       S  storage class
//	A  addressing model M  memory model
//	X  execution model  E  execution mode
//	D  decoration, with a BuiltIn name when it is one
//	d  image dimension
type opInfo struct {
	name     string
	typed    bool // first word is a result type id
	result   bool // a result id follows the optional type
	operands string
}

var opcodes = map[uint16]opInfo{
	0:  {name: "OpNop"},
	1:  {name: "OpUndef", typed: true, result: true},
	3:  {name: "OpSource", operands: "nnN"},
	4:  {name: "OpSourceExtension", operands: "s"},
	5:  {name: "OpName", operands: "is"},
	6:  {name: "OpMemberName", operands: "ins"},
	7:  {name: "OpString", result: true, operands: "s"},
	10: {name: "OpExtension", operands: "s"},
	11: {name: "OpExtInstImport", result: true, operands: "s"},
	12: {name: "OpExtInst", typed: true, result: true, operands: "inI"},
	14: {name: "OpMemoryModel", operands: "AM"},
	15: {name: "OpEntryPoint", operands: "XisI"},
	16: {name: "OpExecutionMode", operands: "iEN"},
	17: {name: "OpCapability", operands: "C"},

	19: {name: "OpTypeVoid", result: true},
	20: {name: "OpTypeBool", result: true},
	21: {name: "OpTypeInt", result: true, operands: "nn"},
	22: {name: "OpTypeFloat", result: true, operands: "n"},
	23: {name: "OpTypeVector", result: true, operands: "in"},
	24: {name: "OpTypeMatrix", result: true, operands: "in"},
	25: {name: "OpTypeImage", result: true, operands: "idnnnnnN"},
	26: {name: "OpTypeSampler", result: true},
	27: {name: "OpTypeSampledImage", result: true, operands: "i"},
	28: {name: "OpTypeArray", result: true, operands: "ii"},
	29: {name: "OpTypeRuntimeArray", result: true, operands: "i"},
	30: {name: "OpTypeStruct", result: true, operands: "I"},
	32: {name: "OpTypePointer", result: true, operands: "Si"},
	33: {name: "OpTypeFunction", result: true, operands: "I"},

	41: {name: "OpConstantTrue", typed: true, result: true},
	42: {name: "OpConstantFalse", typed: true, result: true},
	43: {name: "OpConstant", typed: true, result: true, operands: "N"},
	44: {name: "OpConstantComposite", typed: true, result: true, operands: "I"},
	46: {name: "OpConstantNull", typed: true, result: true},

	54: {name: "OpFunction", typed: true, result: true, operands: "ni"},
	55: {name: "OpFunctionParameter", typed: true, result: true},
	56: {name: "OpFunctionEnd"},
	57: {name: "OpFunctionCall", typed: true, result: true, operands: "I"},
	59: {name: "OpVariable", typed: true, result: true, operands: "SI"},
	61: {name: "OpLoad", typed: true, result: true, operands: "iN"},
	62: {name: "OpStore", operands: "iiN"},
	65: {name: "OpAccessChain", typed: true, result: true, operands: "I"},
	66: {name: "OpInBoundsAccessChain", typed: true, result: true, operands: "I"},
	68: {name: "OpArrayLength", typed: true, result: true, operands: "in"},
	71: {name: "OpDecorate", operands: "iD"},
	72: {name: "OpMemberDecorate", operands: "inD"},

	77: {name: "OpVectorExtractDynamic", typed: true, result: true, operands: "ii"},
	78: {name: "OpVectorInsertDynamic", typed: true, result: true, operands: "iii"},
	79: {name: "OpVectorShuffle", typed: true, result: true, operands: "iiN"},
	80: {name: "OpCompositeConstruct", typed: true, result: true, operands: "I"},
	81: {name: "OpCompositeExtract", typed: true, result: true, operands: "iN"},
	82: {name: "OpCompositeInsert", typed: true, result: true, operands: "iiN"},
	83: {name: "OpCopyObject", typed: true, result: true, operands: "i"},
	84: {name: "OpTranspose", typed: true, result: true, operands: "i"},

	86:  {name: "OpSampledImage", typed: true, result: true, operands: "ii"},
	87:  {name: "OpImageSampleImplicitLod", typed: true, result: true, operands: "iiN"},
	88:  {name: "OpImageSampleExplicitLod", typed: true, result: true, operands: "iiN"},
	89:  {name: "OpImageSampleDrefImplicitLod", typed: true, result: true, operands: "iiiN"},
	90:  {name: "OpImageSampleDrefExplicitLod", typed: true, result: true, operands: "iiiN"},
	95:  {name: "OpImageFetch", typed: true, result: true, operands: "iiN"},
	98:  {name: "OpImageRead", typed: true, result: true, operands: "iiN"},
	99:  {name: "OpImageWrite", operands: "iiiN"},
	100: {name: "OpImage", typed: true, result: true, operands: "i"},
	103: {name: "OpImageQuerySizeLod", typed: true, result: true, operands: "ii"},
	104: {name: "OpImageQuerySize", typed: true, result: true, operands: "i"},

	109: {name: "OpConvertFToU", typed: true, result: true, operands: "i"},
	110: {name: "OpConvertFToS", typed: true, result: true, operands: "i"},
	111: {name: "OpConvertSToF", typed: true, result: true, operands: "i"},
	112: {name: "OpConvertUToF", typed: true, result: true, operands: "i"},
	124: {name: "OpBitcast", typed: true, result: true, operands: "i"},
	126: {name: "OpSNegate", typed: true, result: true, operands: "i"},
	127: {name: "OpFNegate", typed: true, result: true, operands: "i"},
	128: {name: "OpIAdd", typed: true, result: true, operands: "ii"},
	129: {name: "OpFAdd", typed: true, result: true, operands: "ii"},
	130: {name: "OpISub", typed: true, result: true, operands: "ii"},
	131: {name: "OpFSub", typed: true, result: true, operands: "ii"},
	132: {name: "OpIMul", typed: true, result: true, operands: "ii"},
	133: {name: "OpFMul", typed: true, result: true, operands: "ii"},
	134: {name: "OpUDiv", typed: true, result: true, operands: "ii"},
	135: {name: "OpSDiv", typed: true, result: true, operands: "ii"},
	136: {name: "OpFDiv", typed: true, result: true, operands: "ii"},
	142: {name: "OpVectorTimesScalar", typed: true, result: true, operands: "ii"},
	143: {name: "OpMatrixTimesScalar", typed: true, result: true, operands: "ii"},
	144: {name: "OpVectorTimesMatrix", typed: true, result: true, operands: "ii"},
	145: {name: "OpMatrixTimesVector", typed: true, result: true, operands: "ii"},
	146: {name: "OpMatrixTimesMatrix", typed: true, result: true, operands: "ii"},
	148: {name: "OpDot", typed: true, result: true, operands: "ii"},
	169: {name: "OpSelect", typed: true, result: true, operands: "iii"},
	170: {name: "OpIEqual", typed: true, result: true, operands: "ii"},
	180: {name: "OpFOrdEqual", typed: true, result: true, operands: "ii"},
	184: {name: "OpFOrdLessThan", typed: true, result: true, operands: "ii"},
	186: {name: "OpFOrdGreaterThan", typed: true, result: true, operands: "ii"},

	245: {name: "OpPhi", typed: true, result: true, operands: "I"},
	246: {name: "OpLoopMerge", operands: "iinN"},
	247: {name: "OpSelectionMerge", operands: "in"},
	248: {name: "OpLabel", result: true},
	249: {name: "OpBranch", operands: "i"},
	250: {name: "OpBranchConditional", operands: "iiiN"},
	251: {name: "OpSwitch", operands: "iiN"},
	252: {name: "OpKill"},
	253: {name: "OpReturn"},
	254: {name: "OpReturnValue", operands: "i"},
	255: {name: "OpUnreachable"},
}

var capabilities = map[uint32]string{
	0: "Matrix", 1: "Shader", 9: "Float16", 10: "Float64", 11: "Int64",
	14: "ImageReadWrite", 15: "ImageMipmap", 21: "AtomicStorage", 22: "Int16",
	32: "CullDistance", 33: "ImageCubeArray", 34: "SampleRateShading",
	38: "Int8", 42: "Sampled1D", 43: "Image1D", 44: "SampledCubeArray",
	47: "ImageMSArray", 49: "ImageQuery", 50: "DerivativeControl",
	55: "StorageImageWriteWithoutFormat", 56: "MultiViewport",
	4427: "DrawParameters", 4442: "MultiView",
}

var addressingModels = map[uint32]string{
	0: "Logical", 1: "Physical32", 2: "Physical64", 5348: "PhysicalStorageBuffer64",
}

var memoryModels = map[uint32]string{
	0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan",
}

var executionModels = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute", 6: "Kernel",
}

var executionModes = map[uint32]string{
	7: "OriginUpperLeft", 8: "OriginLowerLeft", 9: "EarlyFragmentTests",
	12: "DepthReplacing", 14: "DepthGreater", 15: "DepthLess",
	16: "DepthUnchanged", 17: "LocalSize",
}

var storageClasses = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 5: "CrossWorkgroup", 6: "Private", 7: "Function",
	8: "Generic", 9: "PushConstant", 10: "AtomicCounter", 11: "Image",
	12: "StorageBuffer",
}

var decorations = map[uint32]string{
	0: "RelaxedPrecision", 1: "SpecId", 2: "Block", 3: "BufferBlock",
	4: "RowMajor", 5: "ColMajor", 6: "ArrayStride", 7: "MatrixStride",
	11: "BuiltIn", 13: "NoPerspective", 14: "Flat", 16: "Centroid",
	17: "Sample", 18: "Invariant", 24: "NonWritable", 25: "NonReadable",
	30: "Location", 31: "Component", 32: "Index", 33: "Binding",
	34: "DescriptorSet", 35: "Offset",
}

const decorationBuiltIn = 11

var builtins = map[uint32]string{
	0: "Position", 1: "PointSize", 3: "CullDistance", 14: "FragCoord",
	15: "PointCoord", 16: "FrontFacing", 17: "SampleId", 18: "SamplePosition",
	19: "SampleMask", 22: "FragDepth", 24: "NumWorkgroups", 26: "WorkgroupId",
	27: "LocalInvocationId", 28: "GlobalInvocationId", 29: "LocalInvocationIndex",
	42: "VertexIndex", 43: "InstanceIndex",
}

var dims = map[uint32]string{
	0: "1D", 1: "2D", 2: "3D", 3: "Cube", 4: "Rect", 5: "Buffer", 6: "SubpassData",
}
