// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Decl is a parsed ESSL type spelling. StructName is set, and Basic is
// Struct, when the spelling names a user structure.
type Decl struct {
	Precision  Precision
	Basic      BasicType
	Primary    uint8
	Secondary  uint8
	ArraySizes []uint32
	StructName string
}

// Parse reads an ESSL type spelling such as "highp vec4", "mat2x3",
// "float[4][2]", or "Light[3]".
func Parse(s string) (Decl, error) {
	var d Decl
	words := strings.Fields(s)
	if len(words) == 0 {
		return d, fmt.Errorf("types: empty type")
	}
	switch words[0] {
	case "lowp":
		d.Precision = PrecisionLow
	case "mediump":
		d.Precision = PrecisionMedium
	case "highp":
		d.Precision = PrecisionHigh
	}
	if d.Precision != PrecisionUndefined {
		words = words[1:]
	}
	if len(words) == 0 {
		return d, fmt.Errorf("types: %q: missing type after precision", s)
	}
	rest := strings.Join(words, "")

	name := rest
	if i := strings.IndexByte(rest, '['); i >= 0 {
		name = rest[:i]
		sizes, err := parseArraySizes(rest[i:])
		if err != nil {
			return d, fmt.Errorf("types: %q: %w", s, err)
		}
		d.ArraySizes = sizes
	}
	if name == "" {
		return d, fmt.Errorf("types: %q: missing type name", s)
	}

	d.Primary, d.Secondary = 1, 1
	if b, ok := LookupBasic(name); ok {
		d.Basic = b
		return d, nil
	}
	if b, n, ok := parseVector(name); ok {
		d.Basic, d.Primary = b, n
		return d, nil
	}
	if cols, rows, ok := parseMatrix(name); ok {
		d.Basic, d.Primary, d.Secondary = Float, cols, rows
		return d, nil
	}
	if !isIdentifier(name) || looksBuiltIn(name) {
		return d, fmt.Errorf("types: %q: invalid type name %q", s, name)
	}
	d.Basic = Struct
	d.StructName = name
	return d, nil
}

// Type converts a non-struct declaration into an unrealized type.
func (d Decl) Type(q Qualifier) Type {
	t := Make(d.Basic, d.Precision, q, d.Primary, d.Secondary)
	if len(d.ArraySizes) > 0 {
		t.SetArraySizes(d.ArraySizes...)
	}
	return t
}

func parseArraySizes(s string) ([]uint32, error) {
	var sizes []uint32
	for s != "" {
		if s[0] != '[' {
			return nil, fmt.Errorf("unexpected %q after array size", s)
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("unterminated array size")
		}
		n, err := strconv.ParseUint(s[1:end], 10, 32)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid array size %q", s[1:end])
		}
		sizes = append(sizes, uint32(n))
		s = s[end+1:]
	}
	return sizes, nil
}

func parseVector(name string) (BasicType, uint8, bool) {
	var b BasicType
	switch {
	case strings.HasPrefix(name, "vec"):
		b = Float
	case strings.HasPrefix(name, "ivec"):
		b = Int
	case strings.HasPrefix(name, "uvec"):
		b = UInt
	case strings.HasPrefix(name, "bvec"):
		b = Bool
	default:
		return 0, 0, false
	}
	n, ok := componentCount(name[len(name)-1:])
	if !ok || len(name) != strings.Index(name, "vec")+4 {
		return 0, 0, false
	}
	return b, n, true
}

func parseMatrix(name string) (cols, rows uint8, ok bool) {
	dims, found := strings.CutPrefix(name, "mat")
	if !found {
		return 0, 0, false
	}
	c, r, hasRows := strings.Cut(dims, "x")
	cols, ok = componentCount(c)
	if !ok {
		return 0, 0, false
	}
	if !hasRows {
		return cols, cols, true
	}
	rows, ok = componentCount(r)
	return cols, rows, ok
}

func componentCount(s string) (uint8, bool) {
	switch s {
	case "2":
		return 2, true
	case "3":
		return 3, true
	case "4":
		return 4, true
	}
	return 0, false
}

// looksBuiltIn reports names shaped like vector or matrix keywords with
// unsupported sizes, such as "vec5" or "mat4x7".
func looksBuiltIn(name string) bool {
	for _, prefix := range []string{"vec", "ivec", "uvec", "bvec", "mat"} {
		dims, ok := strings.CutPrefix(name, prefix)
		if !ok || dims == "" {
			continue
		}
		if strings.Trim(dims, "0123456789x") == "" && dims[0] != 'x' {
			return true
		}
	}
	return false
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
