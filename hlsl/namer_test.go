// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/gogpu/shtrans/types"
)

func TestNamer_Call(t *testing.T) {
	n := newNamer()

	if got := n.call("Lights"); got != "Lights" {
		t.Errorf("call(\"Lights\") = %q, want \"Lights\"", got)
	}
	if got := n.call("Lights"); got != "Lights_1" {
		t.Errorf("second call = %q, want \"Lights_1\"", got)
	}
	if got := n.call("Camera"); got != "Camera" {
		t.Errorf("call(\"Camera\") = %q, want \"Camera\"", got)
	}
}

func TestNamer_CaseInsensitivity(t *testing.T) {
	n := newNamer()
	n.call("block")

	// FXC matches cbuffer names without regard to case.
	if got := n.call("BLOCK"); got == "BLOCK" {
		t.Error("BLOCK should conflict with block")
	}
}

func TestNamer_ReservedKeywords(t *testing.T) {
	n := newNamer()
	tests := []struct {
		input    string
		expected string
	}{
		{"float", "_float"},
		{"cbuffer", "_cbuffer"},
		{"Pass", "_Pass"},
	}
	for _, tt := range tests {
		if got := n.call(tt.input); got != tt.expected {
			t.Errorf("call(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNamer_Reserve(t *testing.T) {
	n := newNamer()
	n.reserve("_Light")
	if got := n.call("_light"); got == "_light" {
		t.Error("reserved name handed out again")
	}
}

func TestDecorate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"color", "_color"},
		{"float", "_float"},
		{"gl_FragCoord", "gl_FragCoord"},
		{"_x", "__x"},
	}
	for _, tt := range tests {
		if got := Decorate(tt.input); got != tt.expected {
			t.Errorf("Decorate(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDecorationCollisionFree(t *testing.T) {
	names := []string{"a", "f", "f_a", "main", "_", "x1", "dx_", "pad_0", "Light", "light"}

	vars := make(map[string]string)
	for _, u := range names {
		v := Decorate(u)
		if prev, ok := vars[v]; ok {
			t.Errorf("Decorate(%q) = Decorate(%q) = %q", u, prev, v)
		}
		vars[v] = u
		if IsReserved(v) {
			t.Errorf("Decorate(%q) = %q is reserved", u, v)
		}
	}
	for _, u := range names {
		fn := DecorateFunction(u)
		if prev, ok := vars[fn]; ok {
			t.Errorf("DecorateFunction(%q) collides with Decorate(%q)", u, prev)
		}
	}
}

func TestDecorateVariable(t *testing.T) {
	tests := []struct {
		name     string
		symbol   types.SymbolType
		q        types.Qualifier
		expected string
	}{
		{"builtin", types.SymbolBuiltIn, types.QualTemporary, "x"},
		{"internal", types.SymbolInternal, types.QualGlobal, "x"},
		{"temporary", types.SymbolUserDefined, types.QualTemporary, "_x12"},
		{"global", types.SymbolUserDefined, types.QualGlobal, "_x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecorateVariable("x", tt.symbol, tt.q, 12); got != tt.expected {
				t.Errorf("DecorateVariable = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDecorateField(t *testing.T) {
	user := globalStruct("S")
	builtin := &types.Structure{Name: "gl_DepthRangeParameters", Symbol: types.SymbolBuiltIn}
	if got := DecorateField("near", user); got != "_near" {
		t.Errorf("user field = %q", got)
	}
	if got := DecorateField("near", builtin); got != "near" {
		t.Errorf("built-in field = %q", got)
	}
}

func TestDisambiguateFunctionName(t *testing.T) {
	s := globalStruct("S", field("a", newType(types.Float, 1, 1)))
	tests := []struct {
		name     string
		params   []*types.Type
		expected string
	}{
		{"none", nil, ""},
		{"scalars", []*types.Type{newType(types.Float, 1, 1), newType(types.Int, 4, 1)}, ""},
		{"vec4", []*types.Type{newType(types.Float, 4, 1)}, "_float4"},
		{"mat2", []*types.Type{newType(types.Float, 2, 2)}, "_float2x2"},
		{"struct", []*types.Type{types.NewStruct(s, types.QualParamIn)}, "__S"},
		{"mixed", []*types.Type{
			newType(types.Float, 4, 1),
			newType(types.Float, 1, 1),
			newType(types.Float, 2, 2),
			types.NewStruct(s, types.QualParamIn),
		}, "_float4_float2x2__S"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisambiguateFunctionName(tt.params); got != tt.expected {
				t.Errorf("DisambiguateFunctionName = %q, want %q", got, tt.expected)
			}
		})
	}
}
