// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"
)

// SamplerUniform is a sampler variable declared at global scope.
type SamplerUniform = Uniform

// SamplerResources lays out sampler uniforms as a texture array and a
// sampler state array per texture group. A sampler's index is the texture
// register it is bound to; its state sits at the same position of the
// group's sampler array.
type SamplerResources struct {
	groups map[TextureGroup][]Uniform

	indices  map[string]uint32
	bindings map[string]BindTarget
}

// NewSamplerResources returns an empty layout.
func NewSamplerResources() *SamplerResources {
	return &SamplerResources{
		groups:   make(map[TextureGroup][]Uniform),
		indices:  make(map[string]uint32),
		bindings: make(map[string]BindTarget),
	}
}

// Add classifies a sampler uniform. Samplers within a group keep the
// order they were added in.
func (r *SamplerResources) Add(u SamplerUniform) {
	b := u.Type.Basic()
	if !b.IsSampler() {
		unreachable("sampler uniform %s has type %s", u.Name, u.Type)
	}
	g := TextureGroupOf(b, u.Type.ImageFormat())
	r.groups[g] = append(r.groups[g], u)
}

// Len returns the number of sampler uniforms added.
func (r *SamplerResources) Len() int {
	n := 0
	for _, g := range r.groups {
		n += len(g)
	}
	return n
}

// Indices maps decorated sampler names to their texture register. Valid
// after Declare.
func (r *SamplerResources) Indices() map[string]uint32 {
	return r.indices
}

// Bindings maps texture and sampler array names to their registers. Valid
// after Declare.
func (r *SamplerResources) Bindings() map[string]BindTarget {
	return r.bindings
}

// Declare returns the index constants, group offsets, and the texture and
// sampler state arrays, allocating t and s registers from regs.
func (r *SamplerResources) Declare(regs *registerAllocator) string {
	var sb strings.Builder
	for _, g := range sortedGroups(r.groups) {
		first := regs.peek(RegisterTypeT)
		count := writeIndices(&sb, r.indices, r.groups[g], first)
		suffix := g.Suffix()
		textures := regs.allocate(RegisterTypeT, count)
		samplers := regs.allocate(RegisterTypeS, count)
		r.bindings["textures"+suffix] = textures
		r.bindings["samplers"+suffix] = samplers

		n := strconv.Itoa(count)
		sb.WriteString("static const uint textureIndexOffset" + suffix + " = " + strconv.FormatUint(uint64(first), 10) + ";\n")
		sb.WriteString("uniform " + g.String() + " textures" + suffix + "[" + n + "] : " + textures.String() + ";\n")
		sb.WriteString("uniform " + SamplerString(g) + " samplers" + suffix + "[" + n + "] : " + samplers.String() + ";\n")
	}
	return sb.String()
}
