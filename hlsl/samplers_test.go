// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/gogpu/shtrans/types"
)

func samplerType(b types.BasicType, sizes ...uint32) *types.Type {
	t := types.Make(b, types.PrecisionUndefined, types.QualUniform, 1, 1)
	if len(sizes) > 0 {
		t.SetArraySizes(sizes...)
	}
	return &t
}

func TestSamplerResourcesDeclare(t *testing.T) {
	r := NewSamplerResources()
	r.Add(SamplerUniform{Name: "shadow", Type: samplerType(types.Sampler2DShadow)})
	r.Add(SamplerUniform{Name: "cubes", Type: samplerType(types.ISamplerCube, 4)})
	r.Add(SamplerUniform{Name: "albedo", Type: samplerType(types.Sampler2D)})
	r.Add(SamplerUniform{Name: "layers", Type: samplerType(types.ISampler2DArray)})

	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}

	regs := newRegisterAllocator(0, [RegisterTypeU + 1]uint32{RegisterTypeT: 1})
	got := r.Declare(regs)
	want := "static const uint _albedo = 1;\n" +
		"static const uint textureIndexOffset2D = 1;\n" +
		"uniform Texture2D<float4> textures2D[1] : register(t1);\n" +
		"uniform SamplerState samplers2D[1] : register(s0);\n" +
		"static const uint _cubes[4] = {2, 3, 4, 5};\n" +
		"static const uint _layers = 6;\n" +
		"static const uint textureIndexOffset2DArray_int4_ = 2;\n" +
		"uniform Texture2DArray<int4> textures2DArray_int4_[5] : register(t2);\n" +
		"uniform SamplerState samplers2DArray_int4_[5] : register(s1);\n" +
		"static const uint _shadow = 7;\n" +
		"static const uint textureIndexOffset2D_comparison = 7;\n" +
		"uniform Texture2D textures2D_comparison[1] : register(t7);\n" +
		"uniform SamplerComparisonState samplers2D_comparison[1] : register(s6);\n"
	if got != want {
		t.Errorf("Declare() =\n%s\nwant\n%s", got, want)
	}

	indices := r.Indices()
	for name, idx := range map[string]uint32{"_albedo": 1, "_cubes": 2, "_layers": 6, "_shadow": 7} {
		if indices[name] != idx {
			t.Errorf("index of %s = %d, want %d", name, indices[name], idx)
		}
	}
	bindings := r.Bindings()
	if bt := bindings["samplers2D_comparison"]; bt.Slot() != "s6" || bt.Count != 1 {
		t.Errorf("comparison sampler binding = %+v", bt)
	}
	if bt := bindings["textures2DArray_int4_"]; bt.Slot() != "t2" || bt.Count != 5 {
		t.Errorf("texture binding = %+v", bt)
	}
	if regs.peek(RegisterTypeT) != 8 || regs.peek(RegisterTypeS) != 7 {
		t.Errorf("allocator left at t%d s%d", regs.peek(RegisterTypeT), regs.peek(RegisterTypeS))
	}
}

func TestSamplerResourcesUnreachable(t *testing.T) {
	r := NewSamplerResources()
	expectUnreachable(t, func() {
		r.Add(SamplerUniform{Name: "i", Type: imageType(types.Image2D, types.FormatRGBA8, true)})
	})
}
