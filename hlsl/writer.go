// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/gogpu/shtrans/types"
)

// maxConstantBuffers is the number of cbuffer slots per stage.
const maxConstantBuffers = 14

// Writer generates the HLSL declarations of one shader.
//
// The IR walk reports what the shader uses through the Declare, Construct,
// and CallImage methods in a single forward pass; WriteTo then emits
// structs, uniform blocks, sampler and image resources, image helpers,
// varyings, and prototypes in that order. Helper output does not depend on
// the order of the calls that requested it.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	options *Options
	out     io.Writer
	err     error

	namer     *namer
	regs      *registerAllocator
	structs   *Structures
	images    *ImageFunctions
	resources *ImageResources
	samplers  *SamplerResources

	blocks     strings.Builder
	varyings   []Varying
	prototypes []string

	functionNames    map[string][]string
	registerBindings map[string]string
	required         ShaderModel
}

// NewWriter returns a writer for the given options; nil means defaults.
func NewWriter(options *Options) (*Writer, error) {
	if options == nil {
		options = DefaultOptions()
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	var first [RegisterTypeU + 1]uint32
	first[RegisterTypeB] = options.FirstUniformBlockRegister
	first[RegisterTypeT] = options.FirstTextureRegister
	return &Writer{
		options:          options,
		namer:            newNamer(),
		regs:             newRegisterAllocator(options.RegisterSpace, first),
		structs:          NewStructures(),
		images:           NewImageFunctions(options.RobustImageLoads),
		resources:        NewImageResources(),
		samplers:         NewSamplerResources(),
		functionNames:    make(map[string][]string),
		registerBindings: make(map[string]string),
		required:         ShaderModel4_0,
	}, nil
}

// Structures exposes the struct collection, for callers that need
// padding helpers of their own.
func (w *Writer) Structures() *Structures {
	return w.structs
}

func (w *Writer) require(sm ShaderModel) {
	w.required = max(w.required, sm)
}

// DeclareStruct declares a structure and the structures nested in it.
func (w *Writer) DeclareStruct(st *types.Structure) string {
	w.structs.EnsureStructDefined(st)
	name := StructNameString(st)
	if name != "" {
		w.namer.reserve(name)
	}
	return name
}

// DeclareUniformBlock declares a uniform block as one cbuffer, or one
// cbuffer per element of a block array, and returns the cbuffer names.
func (w *Writer) DeclareUniformBlock(b *types.InterfaceBlock) ([]string, error) {
	if b.ArraySize > 0 && b.InstanceName == "" {
		return nil, Errorf(ErrInvalidModule, "block array %s has no instance name", b.Name)
	}
	std140 := b.Storage == types.StorageStd140
	for _, f := range b.Fields {
		if f.Type.Basic().IsOpaque() {
			return nil, Errorf(ErrUnsupportedType, "block %s member %s has opaque type %s", b.Name, f.Name, f.Type)
		}
		if st := f.Type.Structure(); st != nil {
			w.structs.EnsureStructDefined(st)
		}
	}

	helper := func() *Std140PaddingHelper {
		if std140 {
			return w.structs.PaddingHelper()
		}
		return nil
	}

	if b.InstanceName != "" {
		w.blocks.WriteString(UniformBlockStructString(b, helper()))
	}

	var names []string
	elements := max(b.ArraySize, 1)
	for i := range elements {
		arrayIndex := -1
		base := b.Name
		if b.ArraySize > 0 {
			arrayIndex = i
			base = fmt.Sprintf("%s%d", b.Name, i)
		}
		name := w.namer.call(base)
		target := w.regs.allocate(RegisterTypeB, 1)
		if target.Register >= maxConstantBuffers {
			return nil, Errorf(ErrUnsupportedFeature, "block %s needs constant buffer slot %d, only %d exist", b.Name, target.Register, maxConstantBuffers)
		}
		w.registerBindings[name] = target.String()
		w.blocks.WriteString(UniformBlockString(b, name, target, arrayIndex, helper()))
		names = append(names, name)
	}
	return names, nil
}

// DeclareSampler adds a sampler uniform.
func (w *Writer) DeclareSampler(u SamplerUniform) {
	w.samplers.Add(u)
}

// DeclareImage adds an image uniform. Images need SM 5.0.
func (w *Writer) DeclareImage(u ImageUniform) error {
	if !w.options.ShaderModel.SupportsImages() {
		return Errorf(ErrUnsupportedFeature, "image %s needs SM 5.0, target is %s", u.Name, w.options.ShaderModel)
	}
	w.require(ShaderModel5_0)
	w.resources.Add(u)
	return nil
}

// CallImage returns the helper replacing a call of an image built-in on an
// image of type t.
func (w *Writer) CallImage(builtin string, t *types.Type) (string, error) {
	if !w.options.ShaderModel.SupportsImages() {
		return "", Errorf(ErrUnsupportedFeature, "%s needs SM 5.0, target is %s", builtin, w.options.ShaderModel)
	}
	w.require(ShaderModel5_0)
	return w.images.Use(builtin, t.Basic(), t.ImageFormat(), t.Memory().ReadOnly()), nil
}

// ConstructStruct returns the constructor function of st.
func (w *Writer) ConstructStruct(st *types.Structure) string {
	return w.structs.AddStructConstructor(st)
}

// ConstructBuiltIn returns the constructor function of a vector or matrix
// type built from arguments of the given types.
func (w *Writer) ConstructBuiltIn(t *types.Type, args []*types.Type) string {
	return w.structs.AddBuiltInConstructor(t, args)
}

// DeclareFunction records a prototype and returns the HLSL function name.
func (w *Writer) DeclareFunction(fn *Function) string {
	for _, p := range fn.Params {
		if st := p.Type.Structure(); st != nil {
			w.structs.EnsureStructDefined(st)
		}
	}
	if st := fn.Return.Structure(); st != nil {
		w.structs.EnsureStructDefined(st)
	}
	name := FunctionName(fn)
	if !slices.Contains(w.functionNames[fn.Name], name) {
		w.functionNames[fn.Name] = append(w.functionNames[fn.Name], name)
		w.prototypes = append(w.prototypes, PrototypeString(fn))
	}
	return name
}

// DeclareVarying adds a pixel shader input.
func (w *Writer) DeclareVarying(v Varying) {
	if st := v.Type.Structure(); st != nil {
		w.structs.EnsureStructDefined(st)
	}
	w.varyings = append(w.varyings, v)
}

// WriteTo emits every declaration to out. Image registers are assigned
// here, so call it once, after the walk.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	cw := &countingWriter{w: out}
	w.out = cw
	w.err = nil

	if w.options.HeaderComment {
		w.writeLine("// Generated by shtrans for %s", w.options.ShaderModel)
		w.writeLine("")
	}
	w.writeString(w.structs.Header())
	w.writeString(w.blocks.String())
	if w.samplers.Len() > 0 {
		w.writeString(w.samplers.Declare(w.regs))
		for name, bt := range w.samplers.Bindings() {
			w.registerBindings[name] = bt.String()
		}
		w.writeLine("")
	}
	if w.resources.Len() > 0 {
		w.writeString(w.resources.Declare(w.regs))
		for name, bt := range w.resources.Bindings() {
			w.registerBindings[name] = bt.String()
		}
		w.writeLine("")
	}
	w.writeString(w.images.Header())
	w.writeString(VaryingsString(w.varyings))
	for _, p := range w.prototypes {
		w.writeString(p)
	}
	return cw.n, w.err
}

// Info returns metadata about the generated code. Call it after WriteTo.
func (w *Writer) Info() *TranslationInfo {
	return &TranslationInfo{
		RequiredShaderModel: w.required,
		FunctionNames:       maps.Clone(w.functionNames),
		StructConstructors:  w.structs.StructConstructors(),
		BuiltInConstructors: w.structs.BuiltInConstructors(),
		HelperFunctions:     w.images.Names(),
		ImageIndices:        maps.Clone(w.resources.Indices()),
		SamplerIndices:      maps.Clone(w.samplers.Indices()),
		RegisterBindings:    maps.Clone(w.registerBindings),
	}
}

// Output helpers

// writeString writes already formatted text to the output.
func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}

// write writes text to the output. If args are provided, uses fmt.Fprintf.
//
//nolint:goprintffuncname
func (w *Writer) write(format string, args ...any) {
	if w.err != nil {
		return
	}
	if len(args) == 0 {
		_, w.err = io.WriteString(w.out, format)
	} else {
		_, w.err = fmt.Fprintf(w.out, format, args...)
	}
}

// writeLine writes a line with optional format args and a newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.write(format, args...)
	w.write("\n")
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
