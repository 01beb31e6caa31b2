// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package types describes the symbols and types of the ESSL front end:
// basic types, precisions, storage qualifiers, layout qualifiers, and the
// type, field, and structure descriptors every later stage consumes.
//
// Every enumeration here is a single byte wide. The type cache packs basic
// type, precision, and qualifier into one byte each of a 64-bit key, so the
// compiler rejects an enumeration that outgrows its byte.
package types

// BasicType is the scalar kind, sampler kind, or image kind of a type.
type BasicType uint8

// Basic types. Order matters: predicates below test ranges.
const (
	Void BasicType = iota
	Float
	Int
	UInt
	Bool

	// Float samplers.
	Sampler2D
	Sampler3D
	SamplerCube
	Sampler2DArray
	SamplerExternalOES
	Sampler2DMS
	Sampler2DMSArray

	// Signed integer samplers.
	ISampler2D
	ISampler3D
	ISamplerCube
	ISampler2DArray
	ISampler2DMS
	ISampler2DMSArray

	// Unsigned integer samplers.
	USampler2D
	USampler3D
	USamplerCube
	USampler2DArray
	USampler2DMS
	USampler2DMSArray

	// Shadow samplers.
	Sampler2DShadow
	SamplerCubeShadow
	Sampler2DArrayShadow

	// Images.
	Image2D
	IImage2D
	UImage2D
	Image3D
	IImage3D
	UImage3D
	Image2DArray
	IImage2DArray
	UImage2DArray
	ImageCube
	IImageCube
	UImageCube

	Struct
	Block

	basicTypeCount
)

var basicTypeNames = [basicTypeCount]string{
	Void:                 "void",
	Float:                "float",
	Int:                  "int",
	UInt:                 "uint",
	Bool:                 "bool",
	Sampler2D:            "sampler2D",
	Sampler3D:            "sampler3D",
	SamplerCube:          "samplerCube",
	Sampler2DArray:       "sampler2DArray",
	SamplerExternalOES:   "samplerExternalOES",
	Sampler2DMS:          "sampler2DMS",
	Sampler2DMSArray:     "sampler2DMSArray",
	ISampler2D:           "isampler2D",
	ISampler3D:           "isampler3D",
	ISamplerCube:         "isamplerCube",
	ISampler2DArray:      "isampler2DArray",
	ISampler2DMS:         "isampler2DMS",
	ISampler2DMSArray:    "isampler2DMSArray",
	USampler2D:           "usampler2D",
	USampler3D:           "usampler3D",
	USamplerCube:         "usamplerCube",
	USampler2DArray:      "usampler2DArray",
	USampler2DMS:         "usampler2DMS",
	USampler2DMSArray:    "usampler2DMSArray",
	Sampler2DShadow:      "sampler2DShadow",
	SamplerCubeShadow:    "samplerCubeShadow",
	Sampler2DArrayShadow: "sampler2DArrayShadow",
	Image2D:              "image2D",
	IImage2D:             "iimage2D",
	UImage2D:             "uimage2D",
	Image3D:              "image3D",
	IImage3D:             "iimage3D",
	UImage3D:             "uimage3D",
	Image2DArray:         "image2DArray",
	IImage2DArray:        "iimage2DArray",
	UImage2DArray:        "uimage2DArray",
	ImageCube:            "imageCube",
	IImageCube:           "iimageCube",
	UImageCube:           "uimageCube",
	Struct:               "struct",
	Block:                "interface block",
}

// String returns the ESSL keyword for b.
func (b BasicType) String() string {
	if b < basicTypeCount {
		return basicTypeNames[b]
	}
	return "unknown"
}

// IsSampler reports whether b is any sampler kind.
func (b BasicType) IsSampler() bool {
	return b >= Sampler2D && b <= Sampler2DArrayShadow
}

// IsShadowSampler reports whether b samples with depth comparison.
func (b BasicType) IsShadowSampler() bool {
	return b >= Sampler2DShadow && b <= Sampler2DArrayShadow
}

// IsImage reports whether b is any image kind.
func (b BasicType) IsImage() bool {
	return b >= Image2D && b <= UImageCube
}

// IsImage2D reports whether b is a two-dimensional, non-array image.
func (b BasicType) IsImage2D() bool {
	return b == Image2D || b == IImage2D || b == UImage2D
}

// IsImage3D reports whether b is a volume image.
func (b BasicType) IsImage3D() bool {
	return b == Image3D || b == IImage3D || b == UImage3D
}

// IsImage2DArray reports whether b is a layered two-dimensional image.
func (b BasicType) IsImage2DArray() bool {
	return b == Image2DArray || b == IImage2DArray || b == UImage2DArray
}

// IsImageCube reports whether b is a cube image.
func (b BasicType) IsImageCube() bool {
	return b == ImageCube || b == IImageCube || b == UImageCube
}

// IsIntegerImage reports whether b is a signed integer image.
func (b BasicType) IsIntegerImage() bool {
	return b == IImage2D || b == IImage3D || b == IImage2DArray || b == IImageCube
}

// IsUnsignedImage reports whether b is an unsigned integer image.
func (b BasicType) IsUnsignedImage() bool {
	return b == UImage2D || b == UImage3D || b == UImage2DArray || b == UImageCube
}

// IsOpaque reports whether values of b cannot live in memory blocks.
func (b BasicType) IsOpaque() bool {
	return b.IsSampler() || b.IsImage()
}

// IsScalarKind reports whether b is one of the arithmetic or boolean kinds.
func (b BasicType) IsScalarKind() bool {
	return b >= Float && b <= Bool
}

var basicByName = func() map[string]BasicType {
	m := make(map[string]BasicType, basicTypeCount)
	for b := Void; b < Struct; b++ {
		m[basicTypeNames[b]] = b
	}
	return m
}()

// LookupBasic returns the basic type spelled name in ESSL, such as
// "sampler2D" or "uimage3D". Vector and matrix names are handled by Parse.
func LookupBasic(name string) (BasicType, bool) {
	b, ok := basicByName[name]
	return b, ok
}
