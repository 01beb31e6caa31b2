// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gogpu/shtrans/types"
)

// ImageMethod is the operation of an image helper function.
type ImageMethod uint8

const (
	ImageSize ImageMethod = iota
	ImageLoad
	ImageStore
)

var imageMethodNames = [...]string{"Size", "Load", "Store"}

// String returns the suffix the method adds to helper names.
func (m ImageMethod) String() string {
	if int(m) < len(imageMethodNames) {
		return imageMethodNames[m]
	}
	return "Unknown"
}

// ImageMethodOf maps an ESSL image built-in to its method.
func ImageMethodOf(builtin string) ImageMethod {
	switch builtin {
	case "imageSize":
		return ImageSize
	case "imageLoad":
		return ImageLoad
	case "imageStore":
		return ImageStore
	}
	unreachable("%q is not an image built-in", builtin)
	return 0
}

// imageFunction describes one emitted helper. Fields are in sort order.
type imageFunction struct {
	image    types.BasicType
	format   types.ImageInternalFormat
	readonly bool
	method   ImageMethod
}

func (f imageFunction) compare(o imageFunction) int {
	if c := cmp.Compare(f.image, o.image); c != 0 {
		return c
	}
	if c := cmp.Compare(f.format, o.format); c != 0 {
		return c
	}
	if f.readonly != o.readonly {
		if f.readonly {
			return 1
		}
		return -1
	}
	return cmp.Compare(f.method, o.method)
}

func (f imageFunction) name() string {
	var suffix string
	if f.readonly {
		suffix = TextureTypeSuffix(f.image, f.format)
	} else {
		suffix = RWTextureTypeSuffix(f.image, f.format)
	}
	return ImageFunctionPrefix + suffix + f.method.String()
}

// dimensions is 2 for 2D images and 3 for 3D, 2D array, and cube images.
func (f imageFunction) dimensions() int {
	if f.image.IsImage2D() {
		return 2
	}
	return 3
}

func (f imageFunction) dataType() string {
	switch {
	case f.image.IsIntegerImage():
		return "int4"
	case f.image.IsUnsignedImage():
		return "uint4"
	default:
		return "float4"
	}
}

// sizeComponents is 3 for 3D and 2D array images. Cube images are stored
// as 2D arrays but report only their face size.
func (f imageFunction) sizeComponents() int {
	if f.image.IsImage2D() || f.image.IsImageCube() {
		return 2
	}
	return 3
}

func (f imageFunction) returnType() string {
	switch f.method {
	case ImageSize:
		if f.sizeComponents() == 2 {
			return "int2"
		}
		return "int3"
	case ImageLoad:
		return f.dataType()
	default:
		return "void"
	}
}

func (f imageFunction) arguments() string {
	args := "uint imageIndex"
	if f.method == ImageSize {
		return args
	}
	if f.dimensions() == 2 {
		args += ", int2 p"
	} else {
		args += ", int3 p"
	}
	if f.method == ImageStore {
		args += ", " + f.dataType() + " data"
	}
	return args
}

// resource returns the expression selecting the image out of its group's
// array, after the body has computed the local index.
func (f imageFunction) resource() (offset, ref string) {
	if f.readonly {
		suffix := TextureGroupSuffix(f.image, f.format)
		return "readonlyImageIndexOffset" + suffix, "readonlyImages" + suffix + "[index]"
	}
	suffix := RWTextureGroupSuffix(f.image, f.format)
	return "imageIndexOffset" + suffix, "images" + suffix + "[index]"
}

// ImageFunctions records which image helper functions a shader calls and
// emits them sorted by image type, format, access, and method, regardless
// of the order they were requested in.
type ImageFunctions struct {
	used   map[imageFunction]struct{}
	robust bool
}

// NewImageFunctions returns an empty set. With robust set, loads outside
// the image return zero.
func NewImageFunctions(robust bool) *ImageFunctions {
	return &ImageFunctions{used: make(map[imageFunction]struct{}), robust: robust}
}

// Use records a call of the image built-in on an image of type b and
// returns the helper name to call instead. Equal arguments yield equal
// names.
func (fs *ImageFunctions) Use(builtin string, b types.BasicType, format types.ImageInternalFormat, readonly bool) string {
	if !b.IsImage() {
		unreachable("%s called on %s", builtin, b)
	}
	f := imageFunction{image: b, format: format, readonly: readonly, method: ImageMethodOf(builtin)}
	name := f.name()
	fs.used[f] = struct{}{}
	return name
}

// Len returns the number of distinct helpers.
func (fs *ImageFunctions) Len() int {
	return len(fs.used)
}

func (fs *ImageFunctions) sorted() []imageFunction {
	list := make([]imageFunction, 0, len(fs.used))
	for f := range fs.used {
		list = append(list, f)
	}
	slices.SortFunc(list, imageFunction.compare)
	return list
}

// Names returns the helper names in emission order.
func (fs *ImageFunctions) Names() []string {
	list := fs.sorted()
	names := make([]string, len(list))
	for i, f := range list {
		names[i] = f.name()
	}
	return names
}

// Header returns the helper function definitions.
func (fs *ImageFunctions) Header() string {
	var sb strings.Builder
	for _, f := range fs.sorted() {
		fs.writeFunction(&sb, f)
	}
	return sb.String()
}

func (fs *ImageFunctions) writeFunction(sb *strings.Builder, f imageFunction) {
	offset, ref := f.resource()

	sb.WriteString(f.returnType() + " " + f.name() + "(" + f.arguments() + ")\n{\n")
	sb.WriteString("    const uint index = imageIndex - " + offset + ";\n")

	switch f.method {
	case ImageSize:
		writeDimensions(sb, f, ref)
		if f.sizeComponents() == 2 {
			sb.WriteString("    return int2(width, height);\n")
		} else {
			sb.WriteString("    return int3(width, height, depth);\n")
		}
	case ImageLoad:
		if fs.robust {
			writeDimensions(sb, f, ref)
			if f.dimensions() == 2 {
				sb.WriteString("    if (p.x < 0 || p.y < 0 || uint(p.x) >= width || uint(p.y) >= height)\n")
			} else {
				sb.WriteString("    if (p.x < 0 || p.y < 0 || p.z < 0 || uint(p.x) >= width || uint(p.y) >= height || uint(p.z) >= depth)\n")
			}
			sb.WriteString("    {\n        return " + f.dataType() + "(0, 0, 0, 0);\n    }\n")
		}
		if f.dimensions() == 2 {
			sb.WriteString("    return " + ref + "[uint2(p.x, p.y)];\n")
		} else {
			sb.WriteString("    return " + ref + "[uint3(p.x, p.y, p.z)];\n")
		}
	case ImageStore:
		sb.WriteString("    " + ref + "[p] = data;\n")
	}
	sb.WriteString("}\n\n")
}

func writeDimensions(sb *strings.Builder, f imageFunction, ref string) {
	if f.dimensions() == 2 {
		sb.WriteString("    uint width; uint height;\n")
		sb.WriteString("    " + ref + ".GetDimensions(width, height);\n")
		return
	}
	sb.WriteString("    uint width; uint height; uint depth;\n")
	sb.WriteString("    " + ref + ".GetDimensions(width, height, depth);\n")
}
