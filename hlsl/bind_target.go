// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"

	"fortio.org/safecast"
)

// RegisterType represents the HLSL register type.
type RegisterType uint8

const (
	// RegisterTypeB is for constant buffers (cbuffer).
	RegisterTypeB RegisterType = iota

	// RegisterTypeT is for textures and shader resource views.
	RegisterTypeT

	// RegisterTypeS is for samplers.
	RegisterTypeS

	// RegisterTypeU is for unordered access views (UAV).
	RegisterTypeU
)

// String returns the single-character register prefix.
func (rt RegisterType) String() string {
	switch rt {
	case RegisterTypeB:
		return "b"
	case RegisterTypeT:
		return "t"
	case RegisterTypeS:
		return "s"
	case RegisterTypeU:
		return "u"
	default:
		return "b"
	}
}

// BindTarget is the register range a resource or resource array is bound to.
type BindTarget struct {
	Type RegisterType

	// Space is the register space. Only SM 5.1 and later accept a
	// non-zero space.
	Space uint8

	// Register is the first register index.
	Register uint32

	// Count is the number of consecutive registers, 1 for a single resource.
	Count uint32
}

// Slot returns the register name, such as "t3".
func (bt BindTarget) Slot() string {
	return bt.Type.String() + strconv.FormatUint(uint64(bt.Register), 10)
}

// String returns the register clause without the leading colon:
//
//	register(t0)
//	register(u2, space1)
func (bt BindTarget) String() string {
	if bt.Space == 0 {
		return "register(" + bt.Slot() + ")"
	}
	return "register(" + bt.Slot() + ", space" + strconv.Itoa(int(bt.Space)) + ")"
}

// registerAllocator hands out consecutive registers per register type.
type registerAllocator struct {
	space uint8
	next  [RegisterTypeU + 1]uint32
}

func newRegisterAllocator(space uint8, first [RegisterTypeU + 1]uint32) *registerAllocator {
	return &registerAllocator{space: space, next: first}
}

// peek returns the next free register of type rt.
func (a *registerAllocator) peek(rt RegisterType) uint32 {
	return a.next[rt]
}

// allocate reserves count registers of type rt.
func (a *registerAllocator) allocate(rt RegisterType, count int) BindTarget {
	n, err := safecast.Conv[uint32](count)
	if err != nil {
		unreachable("register count %d: %v", count, err)
	}
	bt := BindTarget{Type: rt, Space: a.space, Register: a.next[rt], Count: n}
	a.next[rt] += n
	return bt
}
