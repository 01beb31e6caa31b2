// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/shtrans/types"
)

// Decorate prefixes a user identifier so it cannot collide with HLSL
// keywords, intrinsics, or generated names. Built-in names keep their
// "gl_" spelling.
func Decorate(name string) string {
	if strings.HasPrefix(name, BuiltInPrefix) {
		return name
	}
	return VariablePrefix + name
}

// DecorateFunction prefixes a function name. The prefix differs from the
// variable prefix, so a local variable may shadow a function its own
// initializer calls.
func DecorateFunction(name string) string {
	return FunctionPrefix + name
}

// DecoratePrivate names a translator-internal declaration derived from a
// user name, e.g. the struct type of an interface block.
func DecoratePrivate(name string) string {
	return PrivatePrefix + name
}

// DecorateField decorates a structure field unless the structure is
// built in.
func DecorateField(name string, s *types.Structure) string {
	if s.Symbol == types.SymbolBuiltIn {
		return name
	}
	return Decorate(name)
}

// DecorateVariable returns the HLSL name of a variable. Built-in, internal,
// and nameless symbols pass through. User temporaries get their unique id
// appended so equally named locals in sibling scopes stay distinct.
func DecorateVariable(name string, symbol types.SymbolType, q types.Qualifier, uniqueID int) string {
	switch symbol {
	case types.SymbolBuiltIn, types.SymbolInternal, types.SymbolEmpty:
		return name
	}
	if q == types.QualTemporary {
		return Decorate(name) + strconv.Itoa(uniqueID)
	}
	return Decorate(name)
}

// DecorateFunctionIfNeeded leaves internal function names alone.
func DecorateFunctionIfNeeded(name string, symbol types.SymbolType) string {
	if symbol == types.SymbolInternal {
		return name
	}
	return DecorateFunction(name)
}

// DisambiguateFunctionName returns the suffix that keeps overloads apart
// where HLSL overload resolution cannot. HLSL treats float4 and float2x2 as
// one type, and structs with equal members as interchangeable, so those
// parameter types are spelled into the name. Other parameters add nothing.
func DisambiguateFunctionName(params []*types.Type) string {
	var sb strings.Builder
	for _, p := range params {
		switch {
		case p.Basic() == types.Float && p.ObjectSize() == 4:
			sb.WriteString("_")
			sb.WriteString(TypeString(p))
		case p.Basic() == types.Struct:
			if p.Structure() == nil || p.Structure().Symbol == types.SymbolEmpty {
				unreachable("nameless struct parameter")
			}
			sb.WriteString("_")
			sb.WriteString(TypeString(p))
		}
	}
	return sb.String()
}

// namer generates unique identifiers for HLSL output.
// It tracks used names to ensure uniqueness and handles
// HLSL's case-insensitive keyword matching.
type namer struct {
	// usedNames tracks generated names, lowercased.
	usedNames map[string]struct{}

	// counter is used to generate unique suffixes.
	counter uint32
}

// newNamer creates a new namer instance.
func newNamer() *namer {
	return &namer{usedNames: make(map[string]struct{})}
}

// call generates a unique name based on the given base.
// It escapes reserved keywords and adds numeric suffixes if needed.
func (n *namer) call(base string) string {
	escaped := Escape(base)
	lower := strings.ToLower(escaped)
	if !n.isUsedLower(lower) {
		n.usedNames[lower] = struct{}{}
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		lowerCandidate := strings.ToLower(candidate)
		if !n.isUsedLower(lowerCandidate) {
			n.usedNames[lowerCandidate] = struct{}{}
			return candidate
		}
	}
}

// isUsedLower checks if a lowercase name has already been used.
func (n *namer) isUsedLower(lowerName string) bool {
	_, used := n.usedNames[lowerName]
	return used
}

// reserve marks a name as used without returning it.
func (n *namer) reserve(name string) {
	n.usedNames[strings.ToLower(name)] = struct{}{}
}
