// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/shtrans/types"
)

// HLSL type name constants.
const (
	hlslFloat = "float"
	hlslInt   = "int"
	hlslUint  = "uint"
	hlslBool  = "bool"
)

// TypeString returns the HLSL spelling of t without array dimensions.
// Named structures are referred to by name; nameless ones are defined in
// place. Matrices are spelled floatCxR.
// Ref: https://learn.microsoft.com/en-us/windows/win32/direct3dhlsl/dx-graphics-hlsl-data-types
func TypeString(t *types.Type) string {
	if s := t.Structure(); s != nil {
		if s.Symbol != types.SymbolEmpty {
			return StructNameString(s)
		}
		return DefineNameless(s)
	}
	if t.IsMatrix() {
		return hlslFloat + strconv.Itoa(t.Cols()) + "x" + strconv.Itoa(t.Rows())
	}

	var scalar string
	switch t.Basic() {
	case types.Float:
		scalar = hlslFloat
	case types.Int:
		scalar = hlslInt
	case types.UInt:
		scalar = hlslUint
	case types.Bool:
		scalar = hlslBool
	case types.Void:
		return "void"
	case types.Sampler2D, types.ISampler2D, types.USampler2D, types.Sampler2DArray,
		types.ISampler2DArray, types.USampler2DArray, types.SamplerExternalOES:
		return "sampler2D"
	case types.SamplerCube, types.ISamplerCube, types.USamplerCube:
		return "samplerCUBE"
	default:
		unreachable("no HLSL spelling for %s", t)
	}
	if n := t.NominalSize(); n > 1 {
		return scalar + strconv.Itoa(n)
	}
	return scalar
}

// ArrayString returns the bracketed dimensions of t, outermost first, or
// the empty string for non-arrays.
func ArrayString(t *types.Type) string {
	if !t.IsArray() {
		return ""
	}
	var sb strings.Builder
	for _, n := range t.ArraySizes() {
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatUint(uint64(n), 10))
		sb.WriteByte(']')
	}
	return sb.String()
}

// StructNameString returns the declared name of s. Global structures keep a
// decorated name that matches across stages; scoped ones include their
// unique id. Nameless structures have no name.
func StructNameString(s *types.Structure) string {
	if s.Symbol == types.SymbolEmpty {
		return ""
	}
	if s.AtGlobalScope {
		return Decorate(s.Name)
	}
	return "ss" + strconv.Itoa(s.UniqueID) + "_" + s.Name
}

// QualifiedStructNameString names one packing variant of s. GLSL
// column-major matrices are HLSL row-major, so "rm_" structures serve
// column-major blocks.
func QualifiedStructNameString(s *types.Structure, hlslRowMajor, std140, forcePadding bool) string {
	if s.Symbol == types.SymbolEmpty {
		return ""
	}
	var prefix string
	if std140 {
		prefix += "std_"
	}
	if hlslRowMajor {
		prefix += "rm_"
	}
	if forcePadding {
		prefix += "fp_"
	}
	return prefix + StructNameString(s)
}

// QualifierString returns the HLSL parameter qualifier. "out" becomes
// "inout": FXC rejects out parameters that are not written on every path.
func QualifierString(q types.Qualifier) string {
	switch q {
	case types.QualParamIn:
		return "in"
	case types.QualParamOut, types.QualParamInOut:
		return "inout"
	case types.QualParamConst:
		return "const"
	case types.QualSampleOut:
		return "sample"
	}
	unreachable("no parameter qualifier for %s", q)
	return ""
}

// InterpolationString returns the HLSL interpolation modifier of a stage
// input or output, empty for the default.
func InterpolationString(q types.Qualifier) string {
	switch q {
	case types.QualVaryingIn, types.QualVaryingOut:
		return ""
	case types.QualSmoothIn, types.QualSmoothOut:
		return "linear"
	case types.QualFlatIn, types.QualFlatOut:
		return "nointerpolation"
	case types.QualCentroidIn, types.QualCentroidOut:
		return "centroid"
	case types.QualNoPerspectiveIn, types.QualNoPerspectiveOut:
		return "noperspective"
	case types.QualSampleIn, types.QualSampleOut:
		return "sample"
	}
	unreachable("no interpolation for %s", q)
	return ""
}

// SamplerString returns the sampler state object type for the samplers
// of group g.
func SamplerString(g TextureGroup) string {
	if g.IsComparison() {
		return "SamplerComparisonState"
	}
	return "SamplerState"
}

// ZeroInitializer returns a brace initializer of zeros for t, e.g.
// "{0, 0, 0}" for a float3.
func ZeroInitializer(t *types.Type) string {
	n := t.ObjectSize()
	var sb strings.Builder
	sb.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('0')
	}
	sb.WriteByte('}')
	return sb.String()
}
