// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Type describes the type of a variable, field, parameter, or expression.
//
// A Type is built with Make and the setters, then frozen with Realize.
// Setters panic on a realized type; Clone yields a mutable copy. Cached
// types are always realized, so they may be compared by pointer.
//
// For matrices the primary size is the column count and the secondary size
// the row count. Vectors have secondary size 1.
type Type struct {
	basic     BasicType
	precision Precision
	qualifier Qualifier
	primary   uint8
	secondary uint8

	arraySizes []uint32 // outermost first
	structure  *Structure
	block      *InterfaceBlock

	packing MatrixPacking
	storage BlockStorage
	format  ImageInternalFormat
	memory  MemoryQualifier

	realized bool
}

// Make returns an unrealized type. Sizes below 1 are raised to 1.
func Make(b BasicType, p Precision, q Qualifier, primary, secondary uint8) Type {
	return Type{
		basic:     b,
		precision: p,
		qualifier: q,
		primary:   max(primary, 1),
		secondary: max(secondary, 1),
	}
}

// NewStruct returns an unrealized type referring to s.
func NewStruct(s *Structure, q Qualifier) *Type {
	t := Make(Struct, PrecisionUndefined, q, 1, 1)
	t.structure = s
	return &t
}

// NewBlock returns an unrealized type referring to an interface block.
func NewBlock(b *InterfaceBlock, q Qualifier) *Type {
	t := Make(Block, PrecisionUndefined, q, 1, 1)
	t.block = b
	t.storage = b.Storage
	return &t
}

// Realize freezes t and returns it.
func (t *Type) Realize() *Type {
	t.realized = true
	return t
}

// Realized reports whether t is frozen.
func (t *Type) Realized() bool { return t.realized }

// Clone returns a mutable deep copy of t. Structures are shared.
func (t *Type) Clone() Type {
	c := *t
	c.realized = false
	if t.arraySizes != nil {
		c.arraySizes = append([]uint32(nil), t.arraySizes...)
	}
	return c
}

func (t *Type) mutate(field string) {
	if t.realized {
		panic(fmt.Sprintf("types: set %s on realized type %s", field, t))
	}
}

// SetPrecision sets the precision qualifier.
func (t *Type) SetPrecision(p Precision) {
	t.mutate("precision")
	t.precision = p
}

// SetQualifier sets the storage qualifier.
func (t *Type) SetQualifier(q Qualifier) {
	t.mutate("qualifier")
	t.qualifier = q
}

// SetPacking sets the matrix layout qualifier.
func (t *Type) SetPacking(m MatrixPacking) {
	t.mutate("matrix packing")
	t.packing = m
}

// SetImageFormat sets the image layout format.
func (t *Type) SetImageFormat(f ImageInternalFormat) {
	t.mutate("image format")
	t.format = f
}

// SetMemory sets the image memory qualifiers.
func (t *Type) SetMemory(m MemoryQualifier) {
	t.mutate("memory qualifier")
	t.memory = m
}

// SetArraySizes makes t an array. Sizes are listed outermost first, as
// written in a declaration.
func (t *Type) SetArraySizes(sizes ...uint32) {
	t.mutate("array sizes")
	t.arraySizes = append(t.arraySizes[:0], sizes...)
}

func (t *Type) Basic() BasicType                 { return t.basic }
func (t *Type) Precision() Precision             { return t.precision }
func (t *Type) Qualifier() Qualifier             { return t.qualifier }
func (t *Type) PrimarySize() int                 { return int(t.primary) }
func (t *Type) SecondarySize() int               { return int(t.secondary) }
func (t *Type) Structure() *Structure            { return t.structure }
func (t *Type) Block() *InterfaceBlock           { return t.block }
func (t *Type) Packing() MatrixPacking           { return t.packing }
func (t *Type) Storage() BlockStorage            { return t.storage }
func (t *Type) ImageFormat() ImageInternalFormat { return t.format }
func (t *Type) Memory() MemoryQualifier          { return t.memory }

// NominalSize is the vector size, or the column count of a matrix.
func (t *Type) NominalSize() int { return int(t.primary) }

// Cols returns the number of matrix columns.
func (t *Type) Cols() int { return int(t.primary) }

// Rows returns the number of matrix rows.
func (t *Type) Rows() int { return int(t.secondary) }

// ArraySizes returns the array dimensions, outermost first.
func (t *Type) ArraySizes() []uint32 { return t.arraySizes }

func (t *Type) IsArray() bool  { return len(t.arraySizes) > 0 }
func (t *Type) IsMatrix() bool { return t.secondary > 1 }
func (t *Type) IsVector() bool { return t.primary > 1 && !t.IsMatrix() }

// IsScalar reports whether t is a single non-array scalar.
func (t *Type) IsScalar() bool {
	return t.primary == 1 && t.secondary == 1 && t.structure == nil && !t.IsArray()
}

// ArraySizeProduct multiplies all array dimensions, 1 for non-arrays.
func (t *Type) ArraySizeProduct() int {
	n := 1
	for _, s := range t.arraySizes {
		n *= int(s)
	}
	return n
}

// ObjectSize is the number of scalar components in t, arrays included.
func (t *Type) ObjectSize() int {
	var n int
	if t.structure != nil {
		n = t.structure.ObjectSize()
	} else {
		n = int(t.primary) * int(t.secondary)
	}
	return n * t.ArraySizeProduct()
}

// ComponentCount is the number of components of one array element of a
// scalar, vector, or matrix type.
func (t *Type) ComponentCount() int {
	return int(t.primary) * int(t.secondary)
}

// ElementType returns an unrealized copy of t with the outermost array
// dimension removed.
func (t *Type) ElementType() Type {
	c := t.Clone()
	if len(c.arraySizes) > 0 {
		c.arraySizes = c.arraySizes[1:]
		if len(c.arraySizes) == 0 {
			c.arraySizes = nil
		}
	}
	return c
}

// BuiltInTypeNameString returns the ESSL spelling of a non-array
// built-in type, such as "vec4", "mat2x3", or "isampler2D".
func (t *Type) BuiltInTypeNameString() string {
	switch t.basic {
	case Float, Int, UInt, Bool:
	case Struct:
		if t.structure != nil {
			return t.structure.Name
		}
		return "struct"
	default:
		return t.basic.String()
	}
	if t.IsMatrix() {
		if t.primary == t.secondary {
			return "mat" + strconv.Itoa(int(t.primary))
		}
		return "mat" + strconv.Itoa(int(t.primary)) + "x" + strconv.Itoa(int(t.secondary))
	}
	if t.primary == 1 {
		return t.basic.String()
	}
	prefix := map[BasicType]string{Float: "vec", Int: "ivec", UInt: "uvec", Bool: "bvec"}[t.basic]
	return prefix + strconv.Itoa(int(t.primary))
}

// String renders t as an ESSL declaration type for diagnostics.
func (t *Type) String() string {
	var sb strings.Builder
	if p := t.precision.String(); p != "" {
		sb.WriteString(p)
		sb.WriteByte(' ')
	}
	sb.WriteString(t.BuiltInTypeNameString())
	for _, s := range t.arraySizes {
		fmt.Fprintf(&sb, "[%d]", s)
	}
	return sb.String()
}

// SameShape reports whether two types have identical basic type, sizes,
// array dimensions and structure, ignoring precision and qualifier.
func (t *Type) SameShape(o *Type) bool {
	if t.basic != o.basic || t.primary != o.primary || t.secondary != o.secondary || t.structure != o.structure {
		return false
	}
	if len(t.arraySizes) != len(o.arraySizes) {
		return false
	}
	for i := range t.arraySizes {
		if t.arraySizes[i] != o.arraySizes[i] {
			return false
		}
	}
	return true
}
