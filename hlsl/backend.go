// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

// Options configures HLSL code generation.
type Options struct {
	// ShaderModel specifies the target shader model.
	// Defaults to ShaderModel5_0, the first with image load/store.
	ShaderModel ShaderModel

	// RobustImageLoads makes image loads outside the image return zero
	// instead of undefined values.
	RobustImageLoads bool

	// HeaderComment starts the output with a comment naming the target
	// shader model.
	HeaderComment bool

	// RegisterSpace is the register space of every binding. Non-zero
	// spaces need SM 5.1.
	RegisterSpace uint8

	// FirstTextureRegister is the first t register available to readonly
	// images; lower ones are left to samplers bound elsewhere.
	FirstTextureRegister uint32

	// FirstUniformBlockRegister is the first b register available to
	// uniform blocks. b0 usually holds the default uniform block.
	FirstUniformBlockRegister uint32
}

// DefaultOptions returns sensible default options for HLSL generation.
func DefaultOptions() *Options {
	return &Options{
		ShaderModel:               ShaderModel5_0,
		HeaderComment:             true,
		FirstUniformBlockRegister: 1,
	}
}

// Validate checks option combinations the target cannot express.
func (o *Options) Validate() error {
	if o.ShaderModel > ShaderModel6_0 {
		return Errorf(ErrInvalidShaderModel, "unknown shader model %d", o.ShaderModel)
	}
	if o.RegisterSpace != 0 && o.ShaderModel < ShaderModel5_1 {
		return Errorf(ErrInvalidShaderModel, "register space %d needs SM 5.1, have %s", o.RegisterSpace, o.ShaderModel)
	}
	return nil
}

// TranslationInfo contains metadata about the HLSL translation.
type TranslationInfo struct {
	// RequiredShaderModel is the minimum shader model the output needs.
	RequiredShaderModel ShaderModel `yaml:"requiredShaderModel"`

	// FunctionNames maps source function names to HLSL names. Overloads
	// share a source name, so the value lists every HLSL name.
	FunctionNames map[string][]string `yaml:"functionNames,omitempty"`

	// StructConstructors and BuiltInConstructors list generated
	// constructor functions, sorted.
	StructConstructors  []string `yaml:"structConstructors,omitempty"`
	BuiltInConstructors []string `yaml:"builtInConstructors,omitempty"`

	// HelperFunctions lists the image helper functions in emission order.
	HelperFunctions []string `yaml:"helperFunctions,omitempty"`

	// ImageIndices maps decorated image names to image indices.
	ImageIndices map[string]uint32 `yaml:"imageIndices,omitempty"`

	// SamplerIndices maps decorated sampler names to texture registers.
	SamplerIndices map[string]uint32 `yaml:"samplerIndices,omitempty"`

	// RegisterBindings maps resource names to their register clause,
	// e.g. "images2D_float4_" -> "register(u0)".
	RegisterBindings map[string]string `yaml:"registerBindings,omitempty"`
}
