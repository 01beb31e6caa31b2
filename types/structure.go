// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

// Field is a member of a structure or interface block.
type Field struct {
	Name string
	Type *Type
}

// Structure is a user or built-in struct declaration.
type Structure struct {
	Name   string
	Fields []*Field

	// Symbol tells who declared the structure. SymbolEmpty marks a nameless
	// struct, which is defined in place instead of by name.
	Symbol SymbolType

	// UniqueID distinguishes structures with equal names in nested scopes.
	UniqueID int

	// AtGlobalScope structures keep a stable name so shader stages link.
	AtGlobalScope bool
}

// ObjectSize is the number of scalar components in one instance.
func (s *Structure) ObjectSize() int {
	n := 0
	for _, f := range s.Fields {
		n += f.Type.ObjectSize()
	}
	return n
}

// ContainsSamplers reports whether any field, nested or not, is opaque.
func (s *Structure) ContainsSamplers() bool {
	for _, f := range s.Fields {
		if f.Type.Basic().IsOpaque() {
			return true
		}
		if f.Type.Structure() != nil && f.Type.Structure().ContainsSamplers() {
			return true
		}
	}
	return false
}

// InterfaceBlock is a uniform or shader storage block.
type InterfaceBlock struct {
	Name         string
	InstanceName string // empty when the block has no instance name
	Fields       []*Field
	Storage      BlockStorage
	Binding      int
	ArraySize    int // 0 for non-array blocks
}
