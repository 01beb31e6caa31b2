// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestIsReserved(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		// FXC keywords
		{"fxc_keyword_bool", "bool", true},
		{"fxc_keyword_float", "float", true},
		{"fxc_keyword_struct", "struct", true},
		{"fxc_keyword_cbuffer", "cbuffer", true},
		{"fxc_keyword_texture2d", "Texture2D", true},
		{"fxc_keyword_rwtexture3d", "RWTexture3D", true},
		{"fxc_keyword_packoffset", "packoffset", true},

		// Intrinsics
		{"intrinsic_lerp", "lerp", true},
		{"intrinsic_saturate", "saturate", true},
		{"intrinsic_mul", "mul", true},

		// Type shorthands
		{"type_float3", "float3", true},
		{"type_int4x4", "int4x4", true},
		{"type_min16float2", "min16float2", true},
		{"type_dword", "dword", true},

		// Not reserved
		{"user_position", "position", false},
		{"user_color", "color", false},
		{"case_differs", "Float", false},
		{"type_float5", "float5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReserved(tt.input); got != tt.expected {
				t.Errorf("IsReserved(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsCaseInsensitiveReserved(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"pass", true},
		{"PASS", true},
		{"Technique", true},
		{"TEXTURE2D", true},
		{"TextureCube", true},
		{"texture2", false},
		{"passes", false},
	}
	for _, tt := range tests {
		if got := IsCaseInsensitiveReserved(tt.input); got != tt.expected {
			t.Errorf("IsCaseInsensitiveReserved(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", UnnamedIdentifier},
		{"keyword", "float", "_float"},
		{"intrinsic", "lerp", "_lerp"},
		{"case_insensitive", "Technique", "_Technique"},
		{"plain", "light", "light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.input); got != tt.expected {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsGenerated(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"f_main", true},
		{"dx_Block_type", true},
		{"pad_3", true},
		{"gl_imageRW2D_float4_Load", true},
		{"_color", true},
		{"main", false},
		{"gl_Position", false},
	}
	for _, tt := range tests {
		if got := IsGenerated(tt.input); got != tt.expected {
			t.Errorf("IsGenerated(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
