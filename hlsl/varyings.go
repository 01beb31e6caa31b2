// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/shtrans/types"
)

// Varying is a pixel shader input.
type Varying struct {
	Name string
	Type *types.Type
}

// varyingRegisters is the number of TEXCOORD semantics a varying occupies.
func varyingRegisters(t *types.Type) int {
	n := 1
	if t.IsMatrix() {
		n = t.Cols()
	}
	return n * t.ArraySizeProduct()
}

// VaryingsString returns the pixel shader input struct and the static
// variables the shader body reads varyings from. Semantics are assigned
// TEXCOORD0 upwards in declaration order.
//
//	struct PS_INPUT
//	{
//	    noperspective float2 _v_uv : TEXCOORD0;
//	};
//
//	static float2 _v_uv = {0, 0};
func VaryingsString(varyings []Varying) string {
	if len(varyings) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("struct PS_INPUT\n{\n")
	semantic := 0
	for _, v := range varyings {
		if !v.Type.Qualifier().IsVaryingIn() {
			unreachable("varying %s has qualifier %s", v.Name, v.Type.Qualifier())
		}
		sb.WriteString("    ")
		if interp := InterpolationString(v.Type.Qualifier()); interp != "" {
			sb.WriteString(interp)
			sb.WriteByte(' ')
		}
		sb.WriteString(TypeString(v.Type) + " " + Decorate(v.Name) + ArrayString(v.Type))
		sb.WriteString(" : TEXCOORD" + strconv.Itoa(semantic) + ";\n")
		semantic += varyingRegisters(v.Type)
	}
	sb.WriteString("};\n\n")

	for _, v := range varyings {
		sb.WriteString("static " + TypeString(v.Type) + " " + Decorate(v.Name) + ArrayString(v.Type))
		sb.WriteString(" = " + ZeroInitializer(v.Type) + ";\n")
	}
	sb.WriteByte('\n')
	return sb.String()
}
