// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import "strings"

// Precision is an ESSL precision qualifier.
type Precision uint8

const (
	PrecisionUndefined Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

// String returns the ESSL keyword, empty for PrecisionUndefined.
func (p Precision) String() string {
	switch p {
	case PrecisionLow:
		return "lowp"
	case PrecisionMedium:
		return "mediump"
	case PrecisionHigh:
		return "highp"
	default:
		return ""
	}
}

// Qualifier is the storage class of a variable or parameter.
type Qualifier uint8

const (
	QualTemporary Qualifier = iota
	QualGlobal
	QualConst
	QualAttribute
	QualVaryingIn
	QualVaryingOut
	QualUniform
	QualBuffer
	QualShared

	QualVertexIn
	QualFragmentOut

	QualSmoothIn
	QualSmoothOut
	QualFlatIn
	QualFlatOut
	QualCentroidIn
	QualCentroidOut
	QualNoPerspectiveIn
	QualNoPerspectiveOut
	QualSampleIn
	QualSampleOut

	QualParamIn
	QualParamOut
	QualParamInOut
	QualParamConst

	QualPosition
	QualPointSize
	QualFragCoord
	QualFrontFacing
	QualPointCoord
	QualFragColor
	QualFragDepth

	qualifierCount
)

var qualifierNames = [qualifierCount]string{
	QualTemporary:        "temporary",
	QualGlobal:           "global",
	QualConst:            "const",
	QualAttribute:        "attribute",
	QualVaryingIn:        "varying in",
	QualVaryingOut:       "varying out",
	QualUniform:          "uniform",
	QualBuffer:           "buffer",
	QualShared:           "shared",
	QualVertexIn:         "in",
	QualFragmentOut:      "out",
	QualSmoothIn:         "smooth in",
	QualSmoothOut:        "smooth out",
	QualFlatIn:           "flat in",
	QualFlatOut:          "flat out",
	QualCentroidIn:       "centroid in",
	QualCentroidOut:      "centroid out",
	QualNoPerspectiveIn:  "noperspective in",
	QualNoPerspectiveOut: "noperspective out",
	QualSampleIn:         "sample in",
	QualSampleOut:        "sample out",
	QualParamIn:          "in",
	QualParamOut:         "out",
	QualParamInOut:       "inout",
	QualParamConst:       "const in",
	QualPosition:         "Position",
	QualPointSize:        "PointSize",
	QualFragCoord:        "FragCoord",
	QualFrontFacing:      "FrontFacing",
	QualPointCoord:       "PointCoord",
	QualFragColor:        "FragColor",
	QualFragDepth:        "FragDepth",
}

func (q Qualifier) String() string {
	if q < qualifierCount {
		return qualifierNames[q]
	}
	return "unknown"
}

// IsVaryingIn reports whether q declares a fragment stage input.
func (q Qualifier) IsVaryingIn() bool {
	switch q {
	case QualVaryingIn, QualSmoothIn, QualFlatIn, QualCentroidIn, QualNoPerspectiveIn, QualSampleIn:
		return true
	}
	return false
}

// IsVaryingOut reports whether q declares a vertex stage output.
func (q Qualifier) IsVaryingOut() bool {
	switch q {
	case QualVaryingOut, QualSmoothOut, QualFlatOut, QualCentroidOut, QualNoPerspectiveOut, QualSampleOut:
		return true
	}
	return false
}

// IsParam reports whether q qualifies a function parameter.
func (q Qualifier) IsParam() bool {
	return q >= QualParamIn && q <= QualParamConst
}

var qualifierByKeyword = map[string]Qualifier{
	"temporary":         QualTemporary,
	"global":            QualGlobal,
	"const":             QualConst,
	"uniform":           QualUniform,
	"buffer":            QualBuffer,
	"shared":            QualShared,
	"varying":           QualVaryingIn,
	"smooth in":         QualSmoothIn,
	"smooth out":        QualSmoothOut,
	"flat in":           QualFlatIn,
	"flat out":          QualFlatOut,
	"centroid in":       QualCentroidIn,
	"centroid out":      QualCentroidOut,
	"noperspective in":  QualNoPerspectiveIn,
	"noperspective out": QualNoPerspectiveOut,
	"sample in":         QualSampleIn,
	"sample out":        QualSampleOut,
	"in":                QualParamIn,
	"out":               QualParamOut,
	"inout":             QualParamInOut,
	"const in":          QualParamConst,
}

// LookupQualifier maps a declaration keyword sequence such as "flat in" or
// "inout" to its qualifier. Whitespace between words is normalised.
func LookupQualifier(s string) (Qualifier, bool) {
	q, ok := qualifierByKeyword[strings.Join(strings.Fields(s), " ")]
	return q, ok
}

// ImageInternalFormat is the layout format of an image uniform.
type ImageInternalFormat uint8

const (
	FormatUnspecified ImageInternalFormat = iota
	FormatRGBA32F
	FormatRGBA16F
	FormatR32F
	FormatRGBA32UI
	FormatRGBA16UI
	FormatRGBA8UI
	FormatR32UI
	FormatRGBA32I
	FormatRGBA16I
	FormatRGBA8I
	FormatR32I
	FormatRGBA8
	FormatRGBA8SNorm

	imageFormatCount
)

var imageFormatNames = [imageFormatCount]string{
	FormatUnspecified: "unspecified",
	FormatRGBA32F:     "rgba32f",
	FormatRGBA16F:     "rgba16f",
	FormatR32F:        "r32f",
	FormatRGBA32UI:    "rgba32ui",
	FormatRGBA16UI:    "rgba16ui",
	FormatRGBA8UI:     "rgba8ui",
	FormatR32UI:       "r32ui",
	FormatRGBA32I:     "rgba32i",
	FormatRGBA16I:     "rgba16i",
	FormatRGBA8I:      "rgba8i",
	FormatR32I:        "r32i",
	FormatRGBA8:       "rgba8",
	FormatRGBA8SNorm:  "rgba8_snorm",
}

// String returns the layout qualifier spelling, e.g. "rgba8_snorm".
func (f ImageInternalFormat) String() string {
	if f < imageFormatCount {
		return imageFormatNames[f]
	}
	return "unknown"
}

// LookupImageFormat parses a layout qualifier spelling.
func LookupImageFormat(s string) (ImageInternalFormat, bool) {
	for f := FormatRGBA32F; f < imageFormatCount; f++ {
		if imageFormatNames[f] == s {
			return f, true
		}
	}
	return FormatUnspecified, false
}

// MatrixPacking is the row_major/column_major layout qualifier.
type MatrixPacking uint8

const (
	PackingUnspecified MatrixPacking = iota
	PackingColumnMajor
	PackingRowMajor
)

func (m MatrixPacking) String() string {
	switch m {
	case PackingColumnMajor:
		return "column_major"
	case PackingRowMajor:
		return "row_major"
	default:
		return ""
	}
}

// BlockStorage is the memory layout of an interface block.
type BlockStorage uint8

const (
	StorageUnspecified BlockStorage = iota
	StorageShared
	StoragePacked
	StorageStd140
	StorageStd430
)

func (s BlockStorage) String() string {
	switch s {
	case StorageShared:
		return "shared"
	case StoragePacked:
		return "packed"
	case StorageStd140:
		return "std140"
	case StorageStd430:
		return "std430"
	default:
		return ""
	}
}

// LookupBlockStorage parses a block layout qualifier.
func LookupBlockStorage(s string) (BlockStorage, bool) {
	for st := StorageShared; st <= StorageStd430; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return StorageUnspecified, false
}

// MemoryQualifier is a set of image memory access qualifiers.
type MemoryQualifier uint8

const (
	MemoryReadOnly MemoryQualifier = 1 << iota
	MemoryWriteOnly
	MemoryCoherent
	MemoryRestrict
	MemoryVolatile
)

// ReadOnly reports whether the readonly qualifier is present.
func (m MemoryQualifier) ReadOnly() bool {
	return m&MemoryReadOnly != 0
}

// SymbolType tells who introduced a symbol, which controls decoration.
type SymbolType uint8

const (
	SymbolBuiltIn SymbolType = iota
	SymbolUserDefined
	SymbolInternal
	SymbolEmpty
)

func (s SymbolType) String() string {
	switch s {
	case SymbolBuiltIn:
		return "built-in"
	case SymbolUserDefined:
		return "user-defined"
	case SymbolInternal:
		return "internal"
	case SymbolEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
