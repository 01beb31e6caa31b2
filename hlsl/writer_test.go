// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/shtrans/types"
)

func TestNewWriterOptions(t *testing.T) {
	tests := []struct {
		name string
		opts *Options
		kind ErrorKind
		ok   bool
	}{
		{"nil", nil, 0, true},
		{"sm4", &Options{ShaderModel: ShaderModel4_0}, 0, true},
		{"unknown_sm", &Options{ShaderModel: ShaderModel(42)}, ErrInvalidShaderModel, false},
		{"space_needs_sm51", &Options{ShaderModel: ShaderModel5_0, RegisterSpace: 1}, ErrInvalidShaderModel, false},
		{"space_sm51", &Options{ShaderModel: ShaderModel5_1, RegisterSpace: 1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWriter(tt.opts)
			if tt.ok {
				if err != nil || w == nil {
					t.Fatalf("NewWriter: %v", err)
				}
				return
			}
			if !IsKind(err, tt.kind) {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestWriterOutputOrder(t *testing.T) {
	w, err := NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}

	light := globalStruct("Light", field("color", newType(types.Float, 3, 1)))
	if got := w.DeclareStruct(light); got != "_Light" {
		t.Errorf("DeclareStruct = %q", got)
	}
	names, err := w.DeclareUniformBlock(&types.InterfaceBlock{
		Name:    "Camera",
		Storage: types.StorageStd140,
		Fields:  []*types.Field{field("view", newType(types.Float, 4, 4))},
	})
	if err != nil || !slices.Equal(names, []string{"Camera"}) {
		t.Fatalf("DeclareUniformBlock = %v, %v", names, err)
	}

	img := imageType(types.Image2D, types.FormatRGBA32F, false)
	if err := w.DeclareImage(ImageUniform{Name: "target", Type: img}); err != nil {
		t.Fatal(err)
	}
	w.DeclareSampler(SamplerUniform{Name: "shadow", Type: samplerType(types.Sampler2DShadow)})
	load, err := w.CallImage("imageLoad", img)
	if err != nil || load != "gl_imageRW2D_float4_Load" {
		t.Fatalf("CallImage = %q, %v", load, err)
	}

	ctor := w.ConstructBuiltIn(newType(types.Float, 4, 1), []*types.Type{newType(types.Float, 1, 1)})
	sctor := w.ConstructStruct(light)
	w.DeclareVarying(Varying{Name: "uv", Type: qualified(types.Float, types.QualVaryingIn, 2, 1)})
	mainFn := &Function{Name: "main", Symbol: types.SymbolUserDefined, Return: newType(types.Void, 1, 1)}
	if got := w.DeclareFunction(mainFn); got != "gl_main" {
		t.Errorf("DeclareFunction = %q", got)
	}
	w.DeclareFunction(mainFn)

	var sb strings.Builder
	n, err := w.WriteTo(&sb)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	out := sb.String()
	if n != int64(len(out)) {
		t.Errorf("WriteTo reported %d bytes, wrote %d", n, len(out))
	}

	markers := []string{
		"// Generated by shtrans for SM 5.0\n",
		"struct _Light\n",
		"_Light _Light_ctor(",
		"float4 vec4_ctor(",
		"cbuffer Camera : register(b1)\n",
		"static const uint _shadow = 0;\n",
		"uniform SamplerComparisonState samplers2D_comparison[1] : register(s0);\n",
		"static const uint _target = 0;\n",
		"uniform RWTexture2D<float4> imagesRW2D_float4_[1] : register(u0);\n",
		"float4 gl_imageRW2D_float4_Load(",
		"struct PS_INPUT\n",
		"void gl_main();\n",
	}
	last := -1
	for _, m := range markers {
		at := strings.Index(out, m)
		if at < 0 {
			t.Fatalf("missing %q in:\n%s", m, out)
		}
		if at < last {
			t.Errorf("%q out of order", m)
		}
		last = at
	}
	if strings.Count(out, "void gl_main();") != 1 {
		t.Error("duplicate prototype")
	}

	info := w.Info()
	if info.RequiredShaderModel != ShaderModel5_0 {
		t.Errorf("RequiredShaderModel = %s", info.RequiredShaderModel)
	}
	if !slices.Equal(info.FunctionNames["main"], []string{"gl_main"}) {
		t.Errorf("FunctionNames = %v", info.FunctionNames)
	}
	if !slices.Equal(info.StructConstructors, []string{sctor}) || !slices.Equal(info.BuiltInConstructors, []string{ctor}) {
		t.Errorf("constructors = %v, %v", info.StructConstructors, info.BuiltInConstructors)
	}
	if !slices.Equal(info.HelperFunctions, []string{load}) {
		t.Errorf("HelperFunctions = %v", info.HelperFunctions)
	}
	if info.ImageIndices["_target"] != 0 {
		t.Errorf("ImageIndices = %v", info.ImageIndices)
	}
	if idx, ok := info.SamplerIndices["_shadow"]; !ok || idx != 0 {
		t.Errorf("SamplerIndices = %v", info.SamplerIndices)
	}
	if info.RegisterBindings["textures2D_comparison"] != "register(t0)" {
		t.Errorf("RegisterBindings = %v", info.RegisterBindings)
	}
	if info.RegisterBindings["Camera"] != "register(b1)" || info.RegisterBindings["imagesRW2D_float4_"] != "register(u0)" {
		t.Errorf("RegisterBindings = %v", info.RegisterBindings)
	}
}

func TestWriterNoHeaderComment(t *testing.T) {
	w, err := NewWriter(&Options{ShaderModel: ShaderModel5_0})
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if _, err := w.WriteTo(&sb); err != nil {
		t.Fatal(err)
	}
	if sb.Len() != 0 {
		t.Errorf("empty shader produced %q", sb.String())
	}
	if w.Info().RequiredShaderModel != ShaderModel4_0 {
		t.Error("empty shader should need only SM 4.0")
	}
}

func TestWriterImagesNeedSM5(t *testing.T) {
	w, err := NewWriter(&Options{ShaderModel: ShaderModel4_1})
	if err != nil {
		t.Fatal(err)
	}
	img := imageType(types.Image2D, types.FormatRGBA32F, true)
	if err := w.DeclareImage(ImageUniform{Name: "src", Type: img}); !IsKind(err, ErrUnsupportedFeature) {
		t.Errorf("DeclareImage: got %v, want unsupported feature", err)
	}
	_, err = w.CallImage("imageSize", img)
	if !IsKind(err, ErrUnsupportedFeature) {
		t.Errorf("CallImage: got %v, want unsupported feature", err)
	}
	if w.Info().RequiredShaderModel != ShaderModel4_0 {
		t.Error("rejected images raised the required shader model")
	}
}

func TestWriterUniformBlockErrors(t *testing.T) {
	w, err := NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.DeclareUniformBlock(&types.InterfaceBlock{Name: "Arr", ArraySize: 2})
	if !IsKind(err, ErrInvalidModule) {
		t.Errorf("array block without instance: %v", err)
	}
	_, err = w.DeclareUniformBlock(&types.InterfaceBlock{
		Name:   "Tex",
		Fields: []*types.Field{field("s", newType(types.Sampler2D, 1, 1))},
	})
	if !IsKind(err, ErrUnsupportedType) {
		t.Errorf("opaque member: %v", err)
	}
}

func TestWriterUniformBlockArray(t *testing.T) {
	w, err := NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	names, err := w.DeclareUniformBlock(&types.InterfaceBlock{
		Name:         "Lights",
		InstanceName: "lights",
		ArraySize:    2,
		Fields:       []*types.Field{field("intensity", newType(types.Float, 1, 1))},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(names, []string{"Lights0", "Lights1"}) {
		t.Errorf("names = %v", names)
	}

	var sb strings.Builder
	if _, err := w.WriteTo(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if strings.Count(out, "struct dx_Lights_type\n") != 1 {
		t.Errorf("block struct not emitted once:\n%s", out)
	}
	for _, want := range []string{
		"cbuffer Lights0 : register(b1)\n{\n    dx_Lights_type dx_lights_0;\n",
		"cbuffer Lights1 : register(b2)\n{\n    dx_Lights_type dx_lights_1;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestWriterConstantBufferLimit(t *testing.T) {
	w, err := NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	block := func(i int) *types.InterfaceBlock {
		return &types.InterfaceBlock{
			Name:   fmt.Sprintf("B%d", i),
			Fields: []*types.Field{field("v", newType(types.Float, 4, 1))},
		}
	}
	// b0 is left for the default block, so b1 to b13 remain.
	for i := 1; i < maxConstantBuffers; i++ {
		if _, err := w.DeclareUniformBlock(block(i)); err != nil {
			t.Fatalf("block %d: %v", i, err)
		}
	}
	_, err = w.DeclareUniformBlock(block(maxConstantBuffers))
	if !IsKind(err, ErrUnsupportedFeature) {
		t.Errorf("got %v, want unsupported feature", err)
	}
}

type failingWriter struct{ after int }

var errSink = errors.New("sink closed")

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errSink
	}
	f.after--
	return len(p), nil
}

func TestWriterStopsOnError(t *testing.T) {
	w, err := NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	w.DeclareStruct(globalStruct("S", field("a", newType(types.Float, 1, 1))))
	_, err = w.WriteTo(&failingWriter{after: 1})
	if !errors.Is(err, errSink) {
		t.Errorf("WriteTo error = %v", err)
	}
}

func TestWriterEmitsTextVerbatim(t *testing.T) {
	var sb strings.Builder
	w := &Writer{out: &sb}
	w.writeString("float4 f(float x) { return x %d 100%; }\n")
	w.writeLine("// %s", "done")
	if want := "float4 f(float x) { return x %d 100%; }\n// done\n"; sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}
