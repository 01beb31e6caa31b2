// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/gogpu/shtrans/types"
)

func TestStd140PrePadding(t *testing.T) {
	float := newType(types.Float, 1, 1)
	vec2 := newType(types.Float, 2, 1)
	vec3 := newType(types.Float, 3, 1)
	vec4 := newType(types.Float, 4, 1)
	mat3 := newType(types.Float, 3, 3)

	tests := []struct {
		name     string
		fields   []*types.Type
		padding  []int
		offset   int
		size     int
		lastElem int
	}{
		{"float_vec3", []*types.Type{float, vec3}, []int{0, 3}, 7, 8, 3},
		{"float_vec2", []*types.Type{float, vec2}, []int{0, 1}, 4, 4, 0},
		{"vec3_float", []*types.Type{vec3, float}, []int{0, 0}, 4, 4, 0},
		{"vec3_vec2", []*types.Type{vec3, vec2}, []int{0, 0}, 6, 8, 2},
		{"floats_then_vec4", []*types.Type{float, float, float, float, vec4}, []int{0, 0, 0, 0, 0}, 8, 8, 0},
		{"float_mat3", []*types.Type{float, mat3}, []int{0, 0}, 16, 16, 0},
		{"float_array", []*types.Type{float, arrayOf(float, 3)}, []int{0, 0}, 16, 16, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var counter int
			h := NewStd140PaddingHelper(&counter, nil)
			prev := 0
			for i, f := range tt.fields {
				if got := h.PrePadding(f, true); got != tt.padding[i] {
					t.Errorf("field %d: padding = %d, want %d", i, got, tt.padding[i])
				}
				if h.Offset() < prev {
					t.Errorf("field %d: offset went back from %d to %d", i, prev, h.Offset())
				}
				prev = h.Offset()
			}
			if h.Offset() != tt.offset {
				t.Errorf("Offset() = %d, want %d", h.Offset(), tt.offset)
			}
			if h.Size() != tt.size {
				t.Errorf("Size() = %d, want %d", h.Size(), tt.size)
			}
			if h.ElementIndex() != tt.lastElem {
				t.Errorf("ElementIndex() = %d, want %d", h.ElementIndex(), tt.lastElem)
			}
			if counter != 0 {
				t.Errorf("PrePadding consumed %d padding names", counter)
			}
		})
	}
}

func TestStd140PaddingStrings(t *testing.T) {
	var counter int
	h := NewStd140PaddingHelper(&counter, nil)

	h.PrePadding(newType(types.Float, 1, 1), true)
	got := h.PrePaddingString(newType(types.Float, 3, 1), true)
	want := "    float pad_0;\n    float pad_1;\n    float pad_2;\n"
	if got != want {
		t.Errorf("PrePaddingString = %q, want %q", got, want)
	}

	// A second helper continues the numbering.
	h2 := NewStd140PaddingHelper(&counter, nil)
	mat2x3 := newType(types.Float, 2, 3)
	h2.PrePadding(mat2x3, true)
	if got := h2.PostPaddingString(mat2x3, true, false); got != "    float pad_3;\n" {
		t.Errorf("PostPaddingString(mat2x3, row major) = %q", got)
	}
	if got := h2.PostPaddingString(mat2x3, false, false); got != "    float pad_4;\n    float pad_5;\n" {
		t.Errorf("PostPaddingString(mat2x3, column major) = %q", got)
	}
	if got := h2.PostPaddingString(newType(types.Float, 2, 1), true, false); got != "" {
		t.Errorf("vector padded without force: %q", got)
	}
	if got := h2.PostPaddingString(newType(types.Float, 2, 1), true, true); got != "    float pad_6;\n    float pad_7;\n" {
		t.Errorf("forced vector padding = %q", got)
	}
	if got := h2.PostPaddingString(newType(types.Float, 4, 4), true, false); got != "" {
		t.Errorf("mat4 padded: %q", got)
	}
	if counter != 8 {
		t.Errorf("counter = %d, want 8", counter)
	}
}

func TestStd140NestedStructPadding(t *testing.T) {
	inner := globalStruct("Inner", field("a", newType(types.Float, 2, 1)))
	s := NewStructures()
	s.EnsureStructDefined(inner)

	h := s.PaddingHelper()
	innerType := types.NewStruct(inner, types.QualTemporary)
	if got := h.PrePadding(innerType, false); got != 0 {
		t.Errorf("struct pre-padding = %d", got)
	}
	if got := h.Size(); got != 4 {
		t.Errorf("struct size = %d, want one register", got)
	}
	// Inner ends at element 2: two floats fill its register.
	got := h.PostPaddingString(innerType, false, false)
	if got != "    float pad_0;\n    float pad_1;\n" {
		t.Errorf("PostPaddingString(Inner) = %q", got)
	}
}
