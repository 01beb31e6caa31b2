// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/gogpu/shtrans/types"
)

// Uniform is an opaque variable declared at global scope.
type Uniform struct {
	Name string
	Type *types.Type
}

// ImageUniform is an image variable declared at global scope.
type ImageUniform = Uniform

func (u Uniform) readonly() bool {
	return u.Type.Memory().ReadOnly()
}

// ImageResources lays out image uniforms as resource arrays, one per
// resource group. Readonly images are bound as textures, the others as
// UAVs. Every image receives an image index equal to its register slot, so
// readonly and read-write images number independently in the t and u
// register files. Helper functions are chosen by access kind and subtract
// the group offset from the index to address the group's array.
type ImageResources struct {
	readonly map[TextureGroup][]ImageUniform
	rw       map[RWTextureGroup][]ImageUniform

	indices  map[string]uint32
	bindings map[string]BindTarget
}

// NewImageResources returns an empty layout.
func NewImageResources() *ImageResources {
	return &ImageResources{
		readonly: make(map[TextureGroup][]ImageUniform),
		rw:       make(map[RWTextureGroup][]ImageUniform),
		indices:  make(map[string]uint32),
		bindings: make(map[string]BindTarget),
	}
}

// Add classifies an image uniform. Images within a group keep the order
// they were added in.
func (r *ImageResources) Add(u ImageUniform) {
	b, format := u.Type.Basic(), u.Type.ImageFormat()
	if !b.IsImage() {
		unreachable("image uniform %s has type %s", u.Name, u.Type)
	}
	if u.readonly() {
		g := TextureGroupOf(b, format)
		r.readonly[g] = append(r.readonly[g], u)
		return
	}
	g := RWTextureGroupOf(b, format)
	r.rw[g] = append(r.rw[g], u)
}

// Len returns the number of image uniforms added.
func (r *ImageResources) Len() int {
	n := 0
	for _, g := range r.readonly {
		n += len(g)
	}
	for _, g := range r.rw {
		n += len(g)
	}
	return n
}

// Indices maps decorated image names to their first image index. Valid
// after Declare.
func (r *ImageResources) Indices() map[string]uint32 {
	return r.indices
}

// Bindings maps resource array names to their registers. Valid after
// Declare.
func (r *ImageResources) Bindings() map[string]BindTarget {
	return r.bindings
}

// Declare returns the index constants, group offsets, and resource arrays,
// allocating texture and UAV registers from regs.
func (r *ImageResources) Declare(regs *registerAllocator) string {
	var sb strings.Builder
	for _, g := range sortedGroups(r.readonly) {
		group := r.readonly[g]
		first := regs.peek(RegisterTypeT)
		count := writeIndices(&sb, r.indices, group, first)
		suffix := g.Suffix()
		bt := regs.allocate(RegisterTypeT, count)
		r.bindings["readonlyImages"+suffix] = bt

		sb.WriteString("static const uint readonlyImageIndexOffset" + suffix + " = " + strconv.FormatUint(uint64(first), 10) + ";\n")
		sb.WriteString("uniform " + g.String() + " readonlyImages" + suffix + "[" + strconv.Itoa(count) + "] : " + bt.String() + ";\n")
	}
	for _, g := range sortedGroups(r.rw) {
		group := r.rw[g]
		first := regs.peek(RegisterTypeU)
		count := writeIndices(&sb, r.indices, group, first)
		suffix := g.Suffix()
		bt := regs.allocate(RegisterTypeU, count)
		r.bindings["images"+suffix] = bt

		sb.WriteString("static const uint imageIndexOffset" + suffix + " = " + strconv.FormatUint(uint64(first), 10) + ";\n")
		sb.WriteString("uniform " + g.String() + " images" + suffix + "[" + strconv.Itoa(count) + "] : " + bt.String() + ";\n")
	}
	return sb.String()
}

// writeIndices emits one index constant per uniform, an initializer list
// for arrays, records the indices, and returns the registers the group
// needs.
func writeIndices(sb *strings.Builder, indices map[string]uint32, group []Uniform, first uint32) int {
	count := 0
	for _, u := range group {
		n := u.Type.ArraySizeProduct()
		index := first + toRegister(count)
		name := DecorateVariable(u.Name, types.SymbolUserDefined, types.QualUniform, 0)
		indices[name] = index

		sb.WriteString("static const uint " + name + ArrayString(u.Type) + " = ")
		if u.Type.IsArray() {
			writeIndexInitializer(sb, u.Type.ArraySizes(), index)
		} else {
			sb.WriteString(strconv.FormatUint(uint64(index), 10))
		}
		sb.WriteString(";\n")
		count += n
	}
	return count
}

// writeIndexInitializer writes "{3, 4, 5}" style lists, nested for arrays
// of arrays.
func writeIndexInitializer(sb *strings.Builder, sizes []uint32, start uint32) {
	inner := uint32(1)
	for _, s := range sizes[1:] {
		inner *= s
	}
	sb.WriteByte('{')
	for i := uint32(0); i < sizes[0]; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if len(sizes) > 1 {
			writeIndexInitializer(sb, sizes[1:], start+i*inner)
		} else {
			sb.WriteString(strconv.FormatUint(uint64(start+i), 10))
		}
	}
	sb.WriteByte('}')
}

func toRegister(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		unreachable("register index %d: %v", n, err)
	}
	return v
}

func sortedGroups[G TextureGroup | RWTextureGroup](m map[G][]Uniform) []G {
	groups := make([]G, 0, len(m))
	for g := range m {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	return groups
}

// InterfaceBlockStructName names the struct type holding the members of an
// instanced block.
func InterfaceBlockStructName(b *types.InterfaceBlock) string {
	return DecoratePrivate(b.Name) + "_type"
}

// InterfaceBlockInstanceString names a block instance. Elements of block
// arrays are separate cbuffers; arrayIndex is -1 for non-array blocks.
func InterfaceBlockInstanceString(name string, arrayIndex int) string {
	if arrayIndex >= 0 {
		return DecoratePrivate(name) + "_" + strconv.Itoa(arrayIndex)
	}
	return Decorate(name)
}

// hlslRowMajor reports whether a block field is laid out with HLSL
// row-major packing. GLSL column-major matrices, the default, are HLSL
// row-major.
func hlslRowMajor(t *types.Type) bool {
	return t.Packing() != types.PackingRowMajor
}

// InterfaceBlockFieldTypeString returns the declared type of a block field.
// Matrices carry an explicit packing qualifier; structures select their
// packing variant.
func InterfaceBlockFieldTypeString(f *types.Field, std140 bool) string {
	t := f.Type
	switch {
	case t.IsMatrix():
		if hlslRowMajor(t) {
			return "row_major " + TypeString(t)
		}
		return "column_major " + TypeString(t)
	case t.Structure() != nil:
		return QualifiedStructNameString(t.Structure(), hlslRowMajor(t), std140, false)
	}
	return TypeString(t)
}

// uniformBlockMembersString returns the member declarations of b. A
// non-nil padding helper makes the layout std140.
func uniformBlockMembersString(b *types.InterfaceBlock, h *Std140PaddingHelper) string {
	std140 := h != nil
	var sb strings.Builder
	for _, f := range b.Fields {
		t := f.Type
		if std140 {
			sb.WriteString(h.PrePaddingString(t, hlslRowMajor(t)))
		}
		sb.WriteString("    ")
		sb.WriteString(InterfaceBlockFieldTypeString(f, std140))
		sb.WriteByte(' ')
		sb.WriteString(Decorate(f.Name))
		sb.WriteString(ArrayString(t))
		sb.WriteString(";\n")
		if std140 {
			sb.WriteString(h.PostPaddingString(t, hlslRowMajor(t), false))
		}
	}
	return sb.String()
}

// UniformBlockStructString returns the struct type of an instanced block.
func UniformBlockStructString(b *types.InterfaceBlock, h *Std140PaddingHelper) string {
	return "struct " + InterfaceBlockStructName(b) + "\n{\n" + uniformBlockMembersString(b, h) + "};\n\n"
}

// UniformBlockString returns the cbuffer declaration of one block, or one
// element of a block array. name is the cbuffer name. Instanced blocks
// hold a single member of the block struct type; the others list the
// block members directly.
func UniformBlockString(b *types.InterfaceBlock, name string, target BindTarget, arrayIndex int, h *Std140PaddingHelper) string {
	var sb strings.Builder
	sb.WriteString("cbuffer " + name + " : " + target.String() + "\n{\n")
	if b.InstanceName != "" {
		sb.WriteString("    " + InterfaceBlockStructName(b) + " " + InterfaceBlockInstanceString(b.InstanceName, arrayIndex) + ";\n")
	} else {
		sb.WriteString(uniformBlockMembersString(b, h))
	}
	sb.WriteString("};\n\n")
	return sb.String()
}
