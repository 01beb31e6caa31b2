// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/shtrans/types"
)

// Std140PaddingHelper inserts dummy float fields so that HLSL constant
// buffer packing reproduces std140 offsets.
//
// HLSL packs scalars and short vectors into the tail of a 16-byte register
// when they fit; std140 aligns vec2 to 8 and vec3 to 16 bytes. Arrays,
// matrices, and structures start a new register in both, but HLSL lets the
// next field share their last register, so they need padding after them.
//
// Fields must be fed in declaration order. The padding counter is shared by
// every helper of a compilation so padding names never repeat.
type Std140PaddingHelper struct {
	counter       *int
	elementIndex  int
	structIndexes map[string]int

	// offset counts scalar slots consumed so far, padding included.
	offset int
}

// NewStd140PaddingHelper returns a helper drawing names from counter.
// structIndexes maps qualified std140 structure names to the element index
// their last field leaves behind; it may be nil when no field is a struct.
func NewStd140PaddingHelper(counter *int, structIndexes map[string]int) *Std140PaddingHelper {
	return &Std140PaddingHelper{counter: counter, structIndexes: structIndexes}
}

// ElementIndex returns the position, 0 to 3, inside the current register.
func (h *Std140PaddingHelper) ElementIndex() int {
	return h.elementIndex
}

// Offset returns the scalar slots consumed so far.
func (h *Std140PaddingHelper) Offset() int {
	return h.offset
}

// Size returns the std140 size in scalar slots: the offset rounded up to a
// whole register.
func (h *Std140PaddingHelper) Size() int {
	return roundRegister(h.offset)
}

// PrePadding returns how many floats must precede a field of type t and
// advances the element index past it. hlslRowMajor selects the register
// count of matrices.
func (h *Std140PaddingHelper) PrePadding(t *types.Type, hlslRowMajor bool) int {
	if t.Basic() == types.Struct || t.IsMatrix() || t.IsArray() {
		h.elementIndex = 0
		h.offset = roundRegister(h.offset) + 4*registerCount(t, hlslRowMajor)
		return 0
	}
	n := t.ComponentCount()
	if n >= 4 {
		h.elementIndex = 0
		h.offset = roundRegister(h.offset) + 4
		return 0
	}
	if h.elementIndex+n > 4 {
		h.elementIndex = n
		h.offset = roundRegister(h.offset) + n
		return 0
	}

	alignment := n
	if n == 3 {
		alignment = 4
	}
	padding := 0
	if rem := h.elementIndex % alignment; rem != 0 {
		padding = alignment - rem
	}
	h.elementIndex = (h.elementIndex + padding + n) % 4
	h.offset += padding + n
	return padding
}

// PrePaddingString renders PrePadding as field declarations.
func (h *Std140PaddingHelper) PrePaddingString(t *types.Type, hlslRowMajor bool) string {
	return h.paddingFields(h.PrePadding(t, hlslRowMajor))
}

// PostPaddingString pads the last register of an array, matrix, or
// structure field. Scalars and vectors get padding only with forcePadding.
func (h *Std140PaddingHelper) PostPaddingString(t *types.Type, hlslRowMajor, forcePadding bool) string {
	if !forcePadding && !t.IsMatrix() && !t.IsArray() && t.Basic() != types.Struct {
		return ""
	}
	var used int
	switch {
	case t.IsMatrix():
		// One register per HLSL row or column; the last holds the
		// components of one GLSL column (row-major) or row.
		if hlslRowMajor {
			used = t.Rows()
		} else {
			used = t.Cols()
		}
	case t.Structure() != nil:
		name := QualifiedStructNameString(t.Structure(), hlslRowMajor, true, false)
		used = h.structIndexes[name]
		if used == 0 {
			return ""
		}
	default:
		used = t.ComponentCount()
	}
	return h.paddingFields(4 - used)
}

func (h *Std140PaddingHelper) paddingFields(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString("    float ")
		sb.WriteString(h.nextPaddingName())
		sb.WriteString(";\n")
	}
	return sb.String()
}

// nextPaddingName never reuses a number, even across helpers.
func (h *Std140PaddingHelper) nextPaddingName() string {
	n := *h.counter
	*h.counter++
	return PaddingPrefix + strconv.Itoa(n)
}

func roundRegister(slots int) int {
	return (slots + 3) &^ 3
}

// registerCount is the number of 16-byte registers a struct, matrix, or
// array field spans once padded.
func registerCount(t *types.Type, hlslRowMajor bool) int {
	per := 1
	switch {
	case t.Structure() != nil:
		per = structRegisters(t.Structure(), hlslRowMajor)
	case t.IsMatrix():
		if hlslRowMajor {
			per = t.Cols()
		} else {
			per = t.Rows()
		}
	}
	return per * t.ArraySizeProduct()
}

func structRegisters(s *types.Structure, hlslRowMajor bool) int {
	var scratch int
	h := NewStd140PaddingHelper(&scratch, nil)
	for _, f := range s.Fields {
		if f.Type.Basic().IsOpaque() {
			continue
		}
		h.PrePadding(f.Type, hlslRowMajor)
	}
	return max(h.Size()/4, 1)
}
