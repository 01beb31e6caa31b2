// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/shtrans/types"
)

const (
	pragmaRowMajor    = "#pragma pack_matrix(row_major)\n"
	pragmaColumnMajor = "#pragma pack_matrix(column_major)\n"
)

// Structures collects the struct declarations and constructor functions a
// shader needs.
//
// Each named structure is declared once, in four packing variants: default,
// HLSL row-major ("rm_"), std140 ("std_"), and std140 row-major. Nested
// structures are declared before the structures containing them.
// Declarations keep first-seen order. Struct constructors are emitted
// sorted by structure name, built-in constructors sorted by their text.
type Structures struct {
	padCounter int

	defined       map[string]struct{}
	declarations  []string
	structIndexes map[string]int

	structCtors  map[string]string   // struct name -> constructor text
	builtInCtors map[string]string   // constructor text -> name
	builtInNames map[string]struct{} // overloads share a name
}

// NewStructures returns an empty collection.
func NewStructures() *Structures {
	return &Structures{
		defined:       make(map[string]struct{}),
		structIndexes: make(map[string]int),
		structCtors:   make(map[string]string),
		builtInCtors:  make(map[string]string),
		builtInNames:  make(map[string]struct{}),
	}
}

// PaddingHelper returns a std140 padding helper that shares this
// collection's padding counter and nested structure element indexes.
func (s *Structures) PaddingHelper() *Std140PaddingHelper {
	return NewStd140PaddingHelper(&s.padCounter, s.structIndexes)
}

// Declarations returns the struct declarations in emission order.
func (s *Structures) Declarations() []string {
	return slices.Clone(s.declarations)
}

// StructConstructors returns the names of the struct constructors, sorted.
func (s *Structures) StructConstructors() []string {
	names := make([]string, 0, len(s.structCtors))
	for name := range s.structCtors {
		names = append(names, name+ConstructorSuffix)
	}
	slices.Sort(names)
	return names
}

// BuiltInConstructors returns the names of the vector and matrix
// constructors, sorted.
func (s *Structures) BuiltInConstructors() []string {
	names := make([]string, 0, len(s.builtInNames))
	for name := range s.builtInNames {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsDefined reports whether a structure with the given name was declared.
func (s *Structures) IsDefined(name string) bool {
	_, ok := s.defined[name]
	return ok
}

// EnsureStructDefined declares st and every structure nested in it.
// Nameless structures are defined in place and are skipped.
func (s *Structures) EnsureStructDefined(st *types.Structure) {
	name := StructNameString(st)
	if name == "" {
		return
	}
	if _, ok := s.defined[name]; ok {
		return
	}
	for _, f := range st.Fields {
		if nested := f.Type.Structure(); nested != nil {
			s.EnsureStructDefined(nested)
		}
	}
	s.defined[name] = struct{}{}

	s.storeStd140ElementIndex(st, false)
	s.storeStd140ElementIndex(st, true)

	s.declarations = append(s.declarations,
		s.DefineQualified(st, false, false, false),
		pragmaRowMajor+s.DefineQualified(st, true, false, false)+pragmaColumnMajor,
		s.DefineQualified(st, false, true, false),
		pragmaRowMajor+s.DefineQualified(st, true, true, false)+pragmaColumnMajor,
	)
}

// storeStd140ElementIndex records where the last field of the std140
// variant leaves the register, for padding structures nested in blocks.
func (s *Structures) storeStd140ElementIndex(st *types.Structure, hlslRowMajor bool) {
	h := s.PaddingHelper()
	for _, f := range st.Fields {
		if f.Type.Basic().IsOpaque() {
			continue
		}
		h.PrePadding(f.Type, hlslRowMajor)
	}
	s.structIndexes[QualifiedStructNameString(st, hlslRowMajor, true, false)] = h.ElementIndex()
}

// DefineQualified returns the declaration of one packing variant of st.
// std140 variants carry padding fields.
func (s *Structures) DefineQualified(st *types.Structure, hlslRowMajor, std140, forcePadding bool) string {
	var h *Std140PaddingHelper
	if std140 {
		h = s.PaddingHelper()
	}
	return define(st, hlslRowMajor, std140, forcePadding, h)
}

// DefineNameless returns the in-place definition of a nameless structure.
// The closing brace is left open for the instance name.
func DefineNameless(st *types.Structure) string {
	return define(st, false, false, false, nil)
}

func define(st *types.Structure, hlslRowMajor, std140, forcePadding bool, h *Std140PaddingHelper) string {
	nameless := st.Symbol == types.SymbolEmpty

	var sb strings.Builder
	if nameless {
		sb.WriteString("struct\n{\n")
	} else {
		sb.WriteString("struct ")
		sb.WriteString(QualifiedStructNameString(st, hlslRowMajor, std140, forcePadding))
		sb.WriteString("\n{\n")
	}

	for _, f := range st.Fields {
		t := f.Type
		// Samplers live outside structures in HLSL.
		if t.Basic().IsSampler() {
			continue
		}
		typeName := TypeString(t)
		if nested := t.Structure(); nested != nil {
			typeName = QualifiedStructNameString(nested, hlslRowMajor, std140, false)
		}
		if h != nil {
			sb.WriteString(h.PrePaddingString(t, hlslRowMajor))
		}
		sb.WriteString("    ")
		sb.WriteString(typeName)
		sb.WriteByte(' ')
		sb.WriteString(DecorateField(f.Name, st))
		sb.WriteString(ArrayString(t))
		sb.WriteString(";\n")
		if h != nil {
			sb.WriteString(h.PostPaddingString(t, hlslRowMajor, forcePadding))
		}
	}

	if nameless {
		sb.WriteString("} ")
	} else {
		sb.WriteString("};\n")
	}
	return sb.String()
}

// AddStructConstructor declares st if needed and returns the name of its
// constructor function, generating the function on first use.
func (s *Structures) AddStructConstructor(st *types.Structure) string {
	if st.Symbol == types.SymbolEmpty {
		return ""
	}
	name := StructNameString(st)
	ctorName := name + ConstructorSuffix
	s.EnsureStructDefined(st)
	if _, ok := s.structCtors[name]; ok {
		return ctorName
	}

	var params []*types.Type
	for _, f := range st.Fields {
		if !f.Type.Basic().IsSampler() {
			params = append(params, f.Type)
		}
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte(' ')
	sb.WriteString(ctorName)
	sb.WriteByte('(')
	writeParameterList(&sb, params)
	sb.WriteString(")\n{\n    ")
	sb.WriteString(name)
	sb.WriteString(" structure")
	if len(params) == 0 {
		sb.WriteString(";\n")
	} else {
		sb.WriteString(" = { ")
		for i := range params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("x" + strconv.Itoa(i))
		}
		sb.WriteString("};\n")
	}
	sb.WriteString("    return structure;\n}\n")

	s.structCtors[name] = sb.String()
	return ctorName
}

func writeParameterList(sb *strings.Builder, params []*types.Type) {
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(TypeString(p))
		sb.WriteString(" x")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(ArrayString(p))
	}
}

// AddBuiltInConstructor returns the name of a function constructing the
// vector or matrix type t from arguments of the given types, generating it
// once per distinct signature. Signatures the name suffix does not tell
// apart become HLSL overloads of one name.
//
// A single scalar fills a matrix diagonal; a single matrix is copied into
// the top-left corner of an identity. Otherwise arguments are consumed
// component by component and the last one is swizzled down to what is left.
func (s *Structures) AddBuiltInConstructor(t *types.Type, args []*types.Type) string {
	if t.IsArray() || t.Structure() != nil || len(args) == 0 {
		unreachable("no built-in constructor for %s from %d arguments", t, len(args))
	}
	ctorType := t.Clone()
	ctorType.SetPrecision(types.PrecisionHigh)
	ctorType.SetQualifier(types.QualTemporary)
	typeName := TypeString(&ctorType)

	name := t.BuiltInTypeNameString() + ConstructorSuffix + DisambiguateFunctionName(args)

	var sb strings.Builder
	sb.WriteString(typeName)
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteByte('(')
	for _, a := range args {
		if a.IsArray() {
			unreachable("array argument to %s constructor", t)
		}
	}
	writeParameterList(&sb, args)
	sb.WriteString(")\n{\n    return ")
	sb.WriteString(typeName)
	sb.WriteByte('(')
	if ctorType.IsMatrix() && len(args) == 1 {
		writeMatrixFromOne(&sb, &ctorType, args[0])
	} else {
		writeComponents(&sb, &ctorType, args)
	}
	sb.WriteString(");\n}\n")

	s.builtInCtors[sb.String()] = name
	s.builtInNames[name] = struct{}{}
	return name
}

func writeMatrixFromOne(sb *strings.Builder, t, arg *types.Type) {
	rows, cols := t.Rows(), t.Cols()
	switch {
	case arg.IsScalar():
		for col := 0; col < cols; col++ {
			for row := 0; row < rows; row++ {
				if row == col {
					sb.WriteString("x0")
				} else {
					sb.WriteString("0.0")
				}
				if row < rows-1 || col < cols-1 {
					sb.WriteString(", ")
				}
			}
		}
	case arg.IsMatrix():
		for col := 0; col < cols; col++ {
			for row := 0; row < rows; row++ {
				switch {
				case row < arg.Rows() && col < arg.Cols():
					sb.WriteString("x0[" + strconv.Itoa(col) + "][" + strconv.Itoa(row) + "]")
				case row == col:
					sb.WriteString("1.0")
				default:
					sb.WriteString("0.0")
				}
				if row < rows-1 || col < cols-1 {
					sb.WriteString(", ")
				}
			}
		}
	default:
		// mat2(vec4)
		if rows != 2 || cols != 2 || !arg.IsVector() || arg.NominalSize() != 4 {
			unreachable("cannot construct %s from %s", t, arg)
		}
		sb.WriteString("x0")
	}
}

var swizzles = [...]string{"", ".x", ".xy", ".xyz", ".xyzw"}

func writeComponents(sb *strings.Builder, t *types.Type, args []*types.Type) {
	remaining := t.ObjectSize()
	i := 0
	for remaining > 0 {
		arg := args[i]
		size := arg.ObjectSize()
		more := i+1 < len(args)
		x := "x" + strconv.Itoa(i)
		sb.WriteString(x)

		switch {
		case arg.IsScalar():
			remaining -= size
		case arg.IsVector():
			switch {
			case remaining == size || more:
				if size > remaining {
					unreachable("too many components for %s", t)
				}
				remaining -= size
			case remaining < arg.NominalSize():
				sb.WriteString(swizzles[remaining])
				remaining = 0
			default:
				unreachable("too few components for %s", t)
			}
		case arg.IsMatrix():
			for col := 0; remaining > 0 && col < arg.Cols(); col++ {
				sb.WriteString("[" + strconv.Itoa(col) + "]")
				if remaining < arg.Rows() {
					sb.WriteString(swizzles[remaining])
					remaining = 0
					break
				}
				remaining -= arg.Rows()
				if remaining > 0 {
					sb.WriteString(", " + x)
				}
			}
		default:
			unreachable("cannot construct %s from %s", t, arg)
		}

		if more {
			i++
		}
		if remaining > 0 {
			sb.WriteString(", ")
		}
	}
}

// Header returns every declaration followed by the struct constructors,
// sorted by name, and then the built-in constructors, sorted by text.
func (s *Structures) Header() string {
	var sb strings.Builder
	for _, d := range s.declarations {
		sb.WriteString(d)
	}
	for _, name := range sortedKeys(s.structCtors) {
		sb.WriteString(s.structCtors[name])
	}
	for _, text := range sortedKeys(s.builtInCtors) {
		sb.WriteString(text)
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
