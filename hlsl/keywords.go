// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// Prefixes and names of identifiers the translator generates itself.
const (
	BuiltInPrefix       = "gl_"
	VariablePrefix      = "_"
	FunctionPrefix      = "f_"
	PrivatePrefix       = "dx_"
	PaddingPrefix       = "pad_"
	ImageFunctionPrefix = "gl_image"
	ConstructorSuffix   = "_ctor"
)

// FXC and DXC keywords, resource object types, and the intrinsics a
// declaration could shadow.
var reservedWords = []string{
	"AppendStructuredBuffer", "asm", "asm_fragment", "BlendState", "bool", "break",
	"Buffer", "ByteAddressBuffer", "case", "cbuffer", "centroid", "class",
	"column_major", "compile", "compile_fragment", "CompileShader", "const",
	"continue", "ComputeShader", "ConsumeStructuredBuffer", "default",
	"DepthStencilState", "DepthStencilView", "discard", "do", "double",
	"DomainShader", "dword", "else", "export", "extern", "false", "float", "for",
	"fxgroup", "GeometryShader", "groupshared", "half", "Hullshader", "if", "in",
	"inline", "inout", "InputPatch", "int", "interface", "line", "lineadj",
	"linear", "LineStream", "matrix", "min10float", "min12int", "min16float",
	"min16int", "min16uint", "namespace", "nointerpolation", "noperspective",
	"NULL", "out", "OutputPatch", "packoffset", "pass", "pixelfragment",
	"PixelShader", "point", "PointStream", "precise", "RasterizerState",
	"RenderTargetView", "return", "register", "row_major", "RWBuffer",
	"RWByteAddressBuffer", "RWStructuredBuffer", "RWTexture1D",
	"RWTexture1DArray", "RWTexture2D", "RWTexture2DArray", "RWTexture3D",
	"sample", "sampler", "SamplerState", "SamplerComparisonState", "shared",
	"snorm", "stateblock", "stateblock_state", "static", "string", "struct",
	"switch", "StructuredBuffer", "tbuffer", "technique", "technique10",
	"technique11", "texture", "Texture1D", "Texture1DArray", "Texture2D",
	"Texture2DArray", "Texture2DMS", "Texture2DMSArray", "Texture3D",
	"TextureCube", "TextureCubeArray", "true", "typedef", "triangle",
	"triangleadj", "TriangleStream", "uint", "uniform", "unorm", "unsigned",
	"vector", "vertexfragment", "VertexShader", "void", "volatile", "while",

	// Intrinsics.
	"abs", "acos", "all", "any", "asfloat", "asin", "asint", "asuint", "atan",
	"atan2", "ceil", "clamp", "clip", "cos", "cosh", "cross", "ddx", "ddy",
	"degrees", "determinant", "distance", "dot", "exp", "exp2", "floor", "fmod",
	"frac", "frexp", "fwidth", "isfinite", "isinf", "isnan", "ldexp", "length",
	"lerp", "log", "log10", "log2", "mad", "max", "min", "modf", "mul",
	"normalize", "pow", "radians", "rcp", "reflect", "refract", "round", "rsqrt",
	"saturate", "sign", "sin", "sincos", "sinh", "smoothstep", "sqrt", "step",
	"tan", "tanh", "transpose", "trunc",
}

// Keywords the legacy effect compiler matches without regard to case.
var caseInsensitiveWords = []string{
	"asm", "decl", "pass", "technique", "texture1d", "texture2d", "texture3d",
	"texturecube",
}

var (
	reservedKeywords       = toSet(reservedWords)
	caseInsensitiveReserve = toSet(caseInsensitiveWords)
	typeShorthands         = shorthands()
)

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// shorthands lists scalar, vector, and matrix type names such as float3
// or int4x4.
func shorthands() map[string]struct{} {
	result := make(map[string]struct{})
	for _, base := range []string{"bool", "int", "uint", "dword", "half", "float", "double", "min16float", "min16int", "min16uint"} {
		result[base] = struct{}{}
		for i := 1; i <= 4; i++ {
			result[base+strconv.Itoa(i)] = struct{}{}
			for j := 1; j <= 4; j++ {
				result[base+strconv.Itoa(i)+"x"+strconv.Itoa(j)] = struct{}{}
			}
		}
	}
	return result
}

// IsReserved checks if a name is an HLSL reserved keyword or type name.
func IsReserved(name string) bool {
	if _, ok := reservedKeywords[name]; ok {
		return true
	}
	_, ok := typeShorthands[name]
	return ok
}

// IsCaseInsensitiveReserved checks if a name conflicts with case-insensitive keywords.
func IsCaseInsensitiveReserved(name string) bool {
	_, ok := caseInsensitiveReserve[cases.Fold().String(name)]
	return ok
}

// IsGenerated reports whether name lies in a namespace the translator
// generates into, so a raw symbol with that name could collide.
func IsGenerated(name string) bool {
	for _, prefix := range []string{FunctionPrefix, PrivatePrefix, ImageFunctionPrefix, PaddingPrefix} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return strings.HasPrefix(name, VariablePrefix)
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	if IsReserved(name) || IsCaseInsensitiveReserved(name) {
		return "_" + name
	}
	return name
}
