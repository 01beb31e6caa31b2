// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "github.com/gogpu/shtrans/types"

// TextureGroup is the read-only resource bucket a sampler or readonly image
// is declared in. Every resource in a group shares one HLSL object type and
// one binding array.
type TextureGroup uint8

const (
	Texture2D TextureGroup = iota
	TextureCube
	Texture2DArray
	Texture3D
	Texture2DUnorm
	TextureCubeUnorm
	Texture2DArrayUnorm
	Texture3DUnorm
	Texture2DSnorm
	TextureCubeSnorm
	Texture2DArraySnorm
	Texture3DSnorm
	Texture2DMS
	Texture2DMSArray
	Texture2DInt4
	Texture3DInt4
	Texture2DArrayInt4
	Texture2DMSInt4
	Texture2DMSArrayInt4
	Texture2DUint4
	Texture3DUint4
	Texture2DArrayUint4
	Texture2DMSUint4
	Texture2DMSArrayUint4
	Texture2DComparison
	TextureCubeComparison
	Texture2DArrayComparison

	textureGroupCount
)

var textureStrings = [textureGroupCount]string{
	Texture2D:                "Texture2D<float4>",
	TextureCube:              "TextureCube<float4>",
	Texture2DArray:           "Texture2DArray<float4>",
	Texture3D:                "Texture3D<float4>",
	Texture2DUnorm:           "Texture2D<unorm float4>",
	TextureCubeUnorm:         "TextureCube<unorm float4>",
	Texture2DArrayUnorm:      "Texture2DArray<unorm float4>",
	Texture3DUnorm:           "Texture3D<unorm float4>",
	Texture2DSnorm:           "Texture2D<snorm float4>",
	TextureCubeSnorm:         "TextureCube<snorm float4>",
	Texture2DArraySnorm:      "Texture2DArray<snorm float4>",
	Texture3DSnorm:           "Texture3D<snorm float4>",
	Texture2DMS:              "Texture2DMS<float4>",
	Texture2DMSArray:         "Texture2DMSArray<float4>",
	Texture2DInt4:            "Texture2D<int4>",
	Texture3DInt4:            "Texture3D<int4>",
	Texture2DArrayInt4:       "Texture2DArray<int4>",
	Texture2DMSInt4:          "Texture2DMS<int4>",
	Texture2DMSArrayInt4:     "Texture2DMSArray<int4>",
	Texture2DUint4:           "Texture2D<uint4>",
	Texture3DUint4:           "Texture3D<uint4>",
	Texture2DArrayUint4:      "Texture2DArray<uint4>",
	Texture2DMSUint4:         "Texture2DMS<uint4>",
	Texture2DMSArrayUint4:    "Texture2DMSArray<uint4>",
	Texture2DComparison:      "Texture2D",
	TextureCubeComparison:    "TextureCube",
	Texture2DArrayComparison: "Texture2DArray",
}

var textureSuffixes = [textureGroupCount]string{
	Texture2D:                "2D",
	TextureCube:              "Cube",
	Texture2DArray:           "2DArray",
	Texture3D:                "3D",
	Texture2DUnorm:           "2D_unorm_float4_",
	TextureCubeUnorm:         "Cube_unorm_float4_",
	Texture2DArrayUnorm:      "2DArray_unorm_float4_",
	Texture3DUnorm:           "3D_unorm_float4_",
	Texture2DSnorm:           "2D_snorm_float4_",
	TextureCubeSnorm:         "Cube_snorm_float4_",
	Texture2DArraySnorm:      "2DArray_snorm_float4_",
	Texture3DSnorm:           "3D_snorm_float4_",
	Texture2DMS:              "2DMS",
	Texture2DMSArray:         "2DMSArray",
	Texture2DInt4:            "2D_int4_",
	Texture3DInt4:            "3D_int4_",
	Texture2DArrayInt4:       "2DArray_int4_",
	Texture2DMSInt4:          "2DMS_int4_",
	Texture2DMSArrayInt4:     "2DMSArray_int4_",
	Texture2DUint4:           "2D_uint4_",
	Texture3DUint4:           "3D_uint4_",
	Texture2DArrayUint4:      "2DArray_uint4_",
	Texture2DMSUint4:         "2DMS_uint4_",
	Texture2DMSArrayUint4:    "2DMSArray_uint4_",
	Texture2DComparison:      "2D_comparison",
	TextureCubeComparison:    "Cube_comparison",
	Texture2DArrayComparison: "2DArray_comparison",
}

// String returns the HLSL object type declared for the group.
func (g TextureGroup) String() string {
	if g >= textureGroupCount {
		unreachable("texture group %d", g)
	}
	return textureStrings[g]
}

// Suffix returns the token used in binding-array and helper names.
func (g TextureGroup) Suffix() string {
	if g >= textureGroupCount {
		unreachable("texture group %d", g)
	}
	return textureSuffixes[g]
}

// IsComparison reports whether the group holds shadow samplers.
func (g TextureGroup) IsComparison() bool {
	return g >= Texture2DComparison && g <= Texture2DArrayComparison
}

// formatBucket is the component encoding implied by an image format.
type formatBucket uint8

const (
	bucketNone formatBucket = iota
	bucketFloat
	bucketUnorm
	bucketSnorm
	bucketInt
	bucketUint
)

func bucketOf(f types.ImageInternalFormat) formatBucket {
	switch f {
	case types.FormatRGBA32F, types.FormatRGBA16F, types.FormatR32F:
		return bucketFloat
	case types.FormatRGBA8:
		return bucketUnorm
	case types.FormatRGBA8SNorm:
		return bucketSnorm
	case types.FormatRGBA32I, types.FormatRGBA16I, types.FormatRGBA8I, types.FormatR32I:
		return bucketInt
	case types.FormatRGBA32UI, types.FormatRGBA16UI, types.FormatRGBA8UI, types.FormatR32UI:
		return bucketUint
	}
	return bucketNone
}

// imageBucket checks that format suits the component kind of image and
// returns its bucket. Float images accept float, unorm, and snorm formats;
// integer images only their own kind.
func imageBucket(image types.BasicType, format types.ImageInternalFormat) formatBucket {
	b := bucketOf(format)
	switch {
	case image.IsIntegerImage():
		if b == bucketInt {
			return b
		}
	case image.IsUnsignedImage():
		if b == bucketUint {
			return b
		}
	case b == bucketFloat || b == bucketUnorm || b == bucketSnorm:
		return b
	}
	unreachable("image %s cannot have format %s", image, format)
	return bucketNone
}

// TextureGroupOf classifies a sampler or readonly image. The format is
// ignored for samplers. Integer cube samplers and cube images are read
// through 2D array views.
func TextureGroupOf(b types.BasicType, format types.ImageInternalFormat) TextureGroup {
	switch b {
	case types.Sampler2D, types.SamplerExternalOES:
		return Texture2D
	case types.SamplerCube:
		return TextureCube
	case types.Sampler2DArray:
		return Texture2DArray
	case types.Sampler3D:
		return Texture3D
	case types.Sampler2DMS:
		return Texture2DMS
	case types.Sampler2DMSArray:
		return Texture2DMSArray
	case types.ISampler2D:
		return Texture2DInt4
	case types.ISampler3D:
		return Texture3DInt4
	case types.ISamplerCube, types.ISampler2DArray:
		return Texture2DArrayInt4
	case types.ISampler2DMS:
		return Texture2DMSInt4
	case types.ISampler2DMSArray:
		return Texture2DMSArrayInt4
	case types.USampler2D:
		return Texture2DUint4
	case types.USampler3D:
		return Texture3DUint4
	case types.USamplerCube, types.USampler2DArray:
		return Texture2DArrayUint4
	case types.USampler2DMS:
		return Texture2DMSUint4
	case types.USampler2DMSArray:
		return Texture2DMSArrayUint4
	case types.Sampler2DShadow:
		return Texture2DComparison
	case types.SamplerCubeShadow:
		return TextureCubeComparison
	case types.Sampler2DArrayShadow:
		return Texture2DArrayComparison
	}

	if !b.IsImage() {
		unreachable("%s has no texture group", b)
	}
	bucket := imageBucket(b, format)
	switch {
	case b.IsImage2D():
		return pickTexture(bucket, Texture2D, Texture2DUnorm, Texture2DSnorm, Texture2DInt4, Texture2DUint4)
	case b.IsImage3D():
		return pickTexture(bucket, Texture3D, Texture3DUnorm, Texture3DSnorm, Texture3DInt4, Texture3DUint4)
	default: // 2D array and cube
		return pickTexture(bucket, Texture2DArray, Texture2DArrayUnorm, Texture2DArraySnorm, Texture2DArrayInt4, Texture2DArrayUint4)
	}
}

func pickTexture(b formatBucket, fl, un, sn, si, ui TextureGroup) TextureGroup {
	switch b {
	case bucketUnorm:
		return un
	case bucketSnorm:
		return sn
	case bucketInt:
		return si
	case bucketUint:
		return ui
	default:
		return fl
	}
}

// TextureString returns the HLSL object type for a sampler or readonly image.
func TextureString(b types.BasicType, format types.ImageInternalFormat) string {
	return TextureGroupOf(b, format).String()
}

// TextureGroupSuffix returns the group suffix for a sampler or readonly image.
func TextureGroupSuffix(b types.BasicType, format types.ImageInternalFormat) string {
	return TextureGroupOf(b, format).Suffix()
}

// TextureTypeSuffix names helper functions for a sampler or readonly image.
// It equals the group suffix except for types that share a group with a
// different dimensionality: integer cubes, cube images, and external
// samplers.
func TextureTypeSuffix(b types.BasicType, format types.ImageInternalFormat) string {
	switch b {
	case types.ISamplerCube:
		return "Cube_int4_"
	case types.USamplerCube:
		return "Cube_uint4_"
	case types.SamplerExternalOES:
		return "_External"
	case types.ImageCube:
		switch imageBucket(b, format) {
		case bucketUnorm:
			return "Cube_unorm_float4_"
		case bucketSnorm:
			return "Cube_snorm_float4_"
		default:
			return "Cube_float4_"
		}
	case types.IImageCube:
		imageBucket(b, format)
		return "Cube_int4_"
	case types.UImageCube:
		imageBucket(b, format)
		return "Cube_uint4_"
	}
	return TextureGroupSuffix(b, format)
}

// RWTextureGroup is the read-write resource bucket of an image.
type RWTextureGroup uint8

const (
	RWTexture2DFloat4 RWTextureGroup = iota
	RWTexture2DArrayFloat4
	RWTexture3DFloat4
	RWTexture2DUnorm
	RWTexture2DArrayUnorm
	RWTexture3DUnorm
	RWTexture2DSnorm
	RWTexture2DArraySnorm
	RWTexture3DSnorm
	RWTexture2DUint4
	RWTexture2DArrayUint4
	RWTexture3DUint4
	RWTexture2DInt4
	RWTexture2DArrayInt4
	RWTexture3DInt4

	rwTextureGroupCount
)

var rwTextureStrings = [rwTextureGroupCount]string{
	RWTexture2DFloat4:      "RWTexture2D<float4>",
	RWTexture2DArrayFloat4: "RWTexture2DArray<float4>",
	RWTexture3DFloat4:      "RWTexture3D<float4>",
	RWTexture2DUnorm:       "RWTexture2D<unorm float4>",
	RWTexture2DArrayUnorm:  "RWTexture2DArray<unorm float4>",
	RWTexture3DUnorm:       "RWTexture3D<unorm float4>",
	RWTexture2DSnorm:       "RWTexture2D<snorm float4>",
	RWTexture2DArraySnorm:  "RWTexture2DArray<snorm float4>",
	RWTexture3DSnorm:       "RWTexture3D<snorm float4>",
	RWTexture2DUint4:       "RWTexture2D<uint4>",
	RWTexture2DArrayUint4:  "RWTexture2DArray<uint4>",
	RWTexture3DUint4:       "RWTexture3D<uint4>",
	RWTexture2DInt4:        "RWTexture2D<int4>",
	RWTexture2DArrayInt4:   "RWTexture2DArray<int4>",
	RWTexture3DInt4:        "RWTexture3D<int4>",
}

var rwTextureSuffixes = [rwTextureGroupCount]string{
	RWTexture2DFloat4:      "RW2D_float4_",
	RWTexture2DArrayFloat4: "RW2DArray_float4_",
	RWTexture3DFloat4:      "RW3D_float4_",
	RWTexture2DUnorm:       "RW2D_unorm_float4_",
	RWTexture2DArrayUnorm:  "RW2DArray_unorm_float4_",
	RWTexture3DUnorm:       "RW3D_unorm_float4_",
	RWTexture2DSnorm:       "RW2D_snorm_float4_",
	RWTexture2DArraySnorm:  "RW2DArray_snorm_float4_",
	RWTexture3DSnorm:       "RW3D_snorm_float4_",
	RWTexture2DUint4:       "RW2D_uint4_",
	RWTexture2DArrayUint4:  "RW2DArray_uint4_",
	RWTexture3DUint4:       "RW3D_uint4_",
	RWTexture2DInt4:        "RW2D_int4_",
	RWTexture2DArrayInt4:   "RW2DArray_int4_",
	RWTexture3DInt4:        "RW3D_int4_",
}

// String returns the HLSL object type declared for the group.
func (g RWTextureGroup) String() string {
	if g >= rwTextureGroupCount {
		unreachable("rw texture group %d", g)
	}
	return rwTextureStrings[g]
}

// Suffix returns the token used in binding-array and helper names.
func (g RWTextureGroup) Suffix() string {
	if g >= rwTextureGroupCount {
		unreachable("rw texture group %d", g)
	}
	return rwTextureSuffixes[g]
}

// RWTextureGroupOf classifies a writable image by dimensionality and
// format. Cube images are written through 2D array views.
func RWTextureGroupOf(b types.BasicType, format types.ImageInternalFormat) RWTextureGroup {
	if !b.IsImage() {
		unreachable("%s has no read-write texture group", b)
	}
	bucket := imageBucket(b, format)
	switch {
	case b.IsImage2D():
		return pickRW(bucket, RWTexture2DFloat4, RWTexture2DUnorm, RWTexture2DSnorm, RWTexture2DInt4, RWTexture2DUint4)
	case b.IsImage3D():
		return pickRW(bucket, RWTexture3DFloat4, RWTexture3DUnorm, RWTexture3DSnorm, RWTexture3DInt4, RWTexture3DUint4)
	default:
		return pickRW(bucket, RWTexture2DArrayFloat4, RWTexture2DArrayUnorm, RWTexture2DArraySnorm, RWTexture2DArrayInt4, RWTexture2DArrayUint4)
	}
}

func pickRW(b formatBucket, fl, un, sn, si, ui RWTextureGroup) RWTextureGroup {
	switch b {
	case bucketUnorm:
		return un
	case bucketSnorm:
		return sn
	case bucketInt:
		return si
	case bucketUint:
		return ui
	default:
		return fl
	}
}

// RWTextureString returns the HLSL object type for a writable image.
func RWTextureString(b types.BasicType, format types.ImageInternalFormat) string {
	return RWTextureGroupOf(b, format).String()
}

// RWTextureGroupSuffix returns the group suffix for a writable image.
func RWTextureGroupSuffix(b types.BasicType, format types.ImageInternalFormat) string {
	return RWTextureGroupOf(b, format).Suffix()
}

// RWTextureTypeSuffix names helper functions for a writable image. Cube
// images get their own suffix although they share a 2D array group.
func RWTextureTypeSuffix(b types.BasicType, format types.ImageInternalFormat) string {
	switch b {
	case types.ImageCube:
		switch imageBucket(b, format) {
		case bucketUnorm:
			return "RWCube_unorm_float4_"
		case bucketSnorm:
			return "RWCube_snorm_float4_"
		default:
			return "RWCube_float4_"
		}
	case types.IImageCube:
		imageBucket(b, format)
		return "RWCube_int4_"
	case types.UImageCube:
		imageBucket(b, format)
		return "RWCube_uint4_"
	}
	return RWTextureGroupSuffix(b, format)
}
