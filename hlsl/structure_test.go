// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/shtrans/types"
)

func innerOuter() (inner, outer *types.Structure) {
	inner = globalStruct("Inner",
		field("x", newType(types.Float, 1, 1)),
		field("y", newType(types.Float, 3, 1)),
	)
	outer = globalStruct("Outer",
		field("in", types.NewStruct(inner, types.QualTemporary)),
		field("w", newType(types.Float, 1, 1)),
	)
	return inner, outer
}

func TestEnsureStructDefinedOrder(t *testing.T) {
	_, outer := innerOuter()
	s := NewStructures()
	s.EnsureStructDefined(outer)

	header := s.Header()
	innerAt := strings.Index(header, "struct _Inner\n")
	outerAt := strings.Index(header, "struct _Outer\n")
	if innerAt < 0 || outerAt < 0 {
		t.Fatalf("missing declarations in:\n%s", header)
	}
	if innerAt >= outerAt {
		t.Errorf("Inner declared at %d, after Outer at %d", innerAt, outerAt)
	}

	decls := s.Declarations()
	if len(decls) != 8 {
		t.Fatalf("got %d declarations, want 4 variants of 2 structs", len(decls))
	}
	if !s.IsDefined("_Inner") || !s.IsDefined("_Outer") {
		t.Error("structures not marked defined")
	}
}

func TestEnsureStructDefinedIdempotent(t *testing.T) {
	inner, outer := innerOuter()
	s := NewStructures()
	s.EnsureStructDefined(inner)
	s.EnsureStructDefined(outer)
	s.EnsureStructDefined(inner)
	s.EnsureStructDefined(outer)
	if got := len(s.Declarations()); got != 8 {
		t.Errorf("got %d declarations after repeated calls, want 8", got)
	}

	nameless := &types.Structure{Symbol: types.SymbolEmpty, Fields: inner.Fields}
	s.EnsureStructDefined(nameless)
	if got := len(s.Declarations()); got != 8 {
		t.Errorf("nameless struct was declared")
	}
}

func TestStructVariants(t *testing.T) {
	_, outer := innerOuter()
	s := NewStructures()
	s.EnsureStructDefined(outer)
	decls := s.Declarations()

	tests := []struct {
		name     string
		index    int
		expected string
	}{
		{"inner_default", 0, "struct _Inner\n{\n    float _x;\n    float3 _y;\n};\n"},
		{"inner_row_major", 1, "#pragma pack_matrix(row_major)\n" +
			"struct rm__Inner\n{\n    float _x;\n    float3 _y;\n};\n" +
			"#pragma pack_matrix(column_major)\n"},
		{"inner_std140", 2, "struct std__Inner\n{\n    float _x;\n" +
			"    float pad_0;\n    float pad_1;\n    float pad_2;\n" +
			"    float3 _y;\n};\n"},
		{"outer_default", 4, "struct _Outer\n{\n    _Inner _in;\n    float _w;\n};\n"},
		{"outer_std140", 6, "struct std__Outer\n{\n    std__Inner _in;\n" +
			"    float pad_6;\n    float _w;\n};\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if decls[tt.index] != tt.expected {
				t.Errorf("declaration %d =\n%s\nwant\n%s", tt.index, decls[tt.index], tt.expected)
			}
		})
	}
}

func TestStructSkipsSamplers(t *testing.T) {
	st := globalStruct("Material",
		field("tex", newType(types.Sampler2D, 1, 1)),
		field("scale", newType(types.Float, 1, 1)),
	)
	s := NewStructures()
	s.AddStructConstructor(st)
	header := s.Header()
	if strings.Contains(header, "_tex") {
		t.Errorf("sampler field emitted:\n%s", header)
	}
	if !strings.Contains(header, "_Material _Material_ctor(float x0)\n") {
		t.Errorf("constructor takes sampler:\n%s", header)
	}
}

func TestAddStructConstructor(t *testing.T) {
	inner, _ := innerOuter()
	s := NewStructures()

	name := s.AddStructConstructor(inner)
	if name != "_Inner_ctor" {
		t.Errorf("constructor name = %q", name)
	}
	if again := s.AddStructConstructor(inner); again != name {
		t.Errorf("second call = %q, want %q", again, name)
	}
	if !s.IsDefined("_Inner") {
		t.Error("constructor did not define the structure")
	}

	want := "_Inner _Inner_ctor(float x0, float3 x1)\n{\n" +
		"    _Inner structure = { x0, x1};\n" +
		"    return structure;\n}\n"
	header := s.Header()
	if strings.Count(header, want) != 1 {
		t.Errorf("header does not hold exactly one constructor %q:\n%s", want, header)
	}
	if got := s.StructConstructors(); !slices.Equal(got, []string{"_Inner_ctor"}) {
		t.Errorf("StructConstructors() = %v", got)
	}

	empty := globalStruct("Empty")
	s.AddStructConstructor(empty)
	if !strings.Contains(s.Header(), "    _Empty structure;\n") {
		t.Error("empty structure constructor should not initialize")
	}
	if s.AddStructConstructor(&types.Structure{Symbol: types.SymbolEmpty}) != "" {
		t.Error("nameless structure got a constructor")
	}
}

func TestAddBuiltInConstructor(t *testing.T) {
	float := newType(types.Float, 1, 1)
	vec2 := newType(types.Float, 2, 1)
	vec4 := newType(types.Float, 4, 1)
	mat2 := newType(types.Float, 2, 2)
	mat3 := newType(types.Float, 3, 3)

	tests := []struct {
		name     string
		typ      *types.Type
		args     []*types.Type
		ctor     string
		expected string
	}{
		{"vec4_splat", vec4, []*types.Type{float}, "vec4_ctor",
			"float4 vec4_ctor(float x0)\n{\n    return float4(x0, x0, x0, x0);\n}\n"},
		{"vec4_parts", vec4, []*types.Type{vec2, float, float}, "vec4_ctor",
			"float4 vec4_ctor(float2 x0, float x1, float x2)\n{\n    return float4(x0, x1, x2);\n}\n"},
		{"vec3_truncate", newType(types.Float, 3, 1), []*types.Type{vec4}, "vec3_ctor_float4",
			"float3 vec3_ctor_float4(float4 x0)\n{\n    return float3(x0.xyz);\n}\n"},
		{"mat2_diagonal", mat2, []*types.Type{float}, "mat2_ctor",
			"float2x2 mat2_ctor(float x0)\n{\n    return float2x2(x0, 0.0, 0.0, x0);\n}\n"},
		{"mat2_from_vec4", mat2, []*types.Type{vec4}, "mat2_ctor_float4",
			"float2x2 mat2_ctor_float4(float4 x0)\n{\n    return float2x2(x0);\n}\n"},
		{"mat2_from_mat3", mat2, []*types.Type{mat3}, "mat2_ctor",
			"float2x2 mat2_ctor(float3x3 x0)\n{\n    return float2x2(x0[0][0], x0[0][1], x0[1][0], x0[1][1]);\n}\n"},
		{"mat3_from_mat2", mat3, []*types.Type{mat2}, "mat3_ctor_float2x2",
			"float3x3 mat3_ctor_float2x2(float2x2 x0)\n{\n    return float3x3(x0[0][0], x0[0][1], 0.0, x0[1][0], x0[1][1], 0.0, 0.0, 0.0, 1.0);\n}\n"},
		{"vec2_from_mat2", vec2, []*types.Type{mat2}, "vec2_ctor_float2x2",
			"float2 vec2_ctor_float2x2(float2x2 x0)\n{\n    return float2(x0[0]);\n}\n"},
		{"vec3_from_mat2", newType(types.Float, 3, 1), []*types.Type{mat2}, "vec3_ctor_float2x2",
			"float3 vec3_ctor_float2x2(float2x2 x0)\n{\n    return float3(x0[0], x0[1].x);\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStructures()
			if got := s.AddBuiltInConstructor(tt.typ, tt.args); got != tt.ctor {
				t.Errorf("name = %q, want %q", got, tt.ctor)
			}
			if got := s.Header(); got != tt.expected {
				t.Errorf("header =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestBuiltInConstructorOverloads(t *testing.T) {
	float := newType(types.Float, 1, 1)
	vec2 := newType(types.Float, 2, 1)
	vec4 := newType(types.Float, 4, 1)

	s := NewStructures()
	s.AddBuiltInConstructor(vec4, []*types.Type{float})
	s.AddBuiltInConstructor(vec4, []*types.Type{vec2, vec2})
	s.AddBuiltInConstructor(vec4, []*types.Type{float})

	if got := strings.Count(s.Header(), " vec4_ctor("); got != 2 {
		t.Errorf("got %d vec4_ctor overloads, want 2", got)
	}
	if got := s.BuiltInConstructors(); !slices.Equal(got, []string{"vec4_ctor"}) {
		t.Errorf("BuiltInConstructors() = %v", got)
	}
}

func TestAddBuiltInConstructorUnreachable(t *testing.T) {
	s := NewStructures()
	expectUnreachable(t, func() {
		s.AddBuiltInConstructor(arrayOf(newType(types.Float, 4, 1), 2), []*types.Type{newType(types.Float, 1, 1)})
	})
	expectUnreachable(t, func() {
		s.AddBuiltInConstructor(newType(types.Float, 2, 1), nil)
	})
}

func TestHeaderGroups(t *testing.T) {
	inner, _ := innerOuter()
	b := globalStruct("B", field("v", newType(types.Float, 1, 1)))
	a := globalStruct("A", field("v", newType(types.Float, 1, 1)))

	s := NewStructures()
	s.AddBuiltInConstructor(newType(types.Float, 2, 1), []*types.Type{newType(types.Float, 1, 1)})
	s.AddStructConstructor(b)
	s.AddStructConstructor(inner)
	s.AddStructConstructor(a)

	header := s.Header()
	// Declarations in first-seen order.
	if strings.Index(header, "struct _B\n") > strings.Index(header, "struct _Inner\n") {
		t.Error("declarations reordered")
	}
	// Constructors after every declaration, sorted by name.
	lastDecl := len(strings.Join(s.Declarations(), ""))
	ctorA := strings.Index(header, "_A _A_ctor(")
	ctorB := strings.Index(header, "_B _B_ctor(")
	vec2 := strings.Index(header, "float2 vec2_ctor(")
	if !(lastDecl <= ctorA && ctorA < ctorB && ctorB < vec2) {
		t.Errorf("unexpected order: decl end %d, A %d, B %d, vec2 %d", lastDecl, ctorA, ctorB, vec2)
	}
}
