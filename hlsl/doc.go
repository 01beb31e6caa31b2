// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl emits the HLSL declarations an ESSL shader needs when it is
// translated for Direct3D: struct definitions in every packing variant,
// constructor functions, std140-padded constant buffers, texture and
// sampler state arrays, image resource arrays, and the helper functions
// that implement imageSize, imageLoad, and imageStore on top of them.
//
// # Shader Model Support
//
// Output targets the legacy FXC compiler:
//   - SM 4.x: no image load/store
//   - SM 5.0: RWTexture resources in every stage (default)
//   - SM 5.1: register spaces
//
// # Usage
//
//	w, err := hlsl.NewWriter(hlsl.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w.DeclareStruct(light)
//	load, err := w.CallImage("imageLoad", imageType)
//	...
//	w.WriteTo(out)
//
// # Naming
//
// User identifiers get a "_" prefix and functions an "f_" prefix, so a
// variable can shadow a function it calls. Generated names use prefixes a
// decorated name never starts with: "dx_", "pad_", and "gl_image".
//
// # Unreachable Input
//
// Type and format combinations the mapping tables do not cover panic with
// an *Error of kind ErrUnreachable; the validator upstream should have
// rejected them. Compile drivers convert those panics with
// RecoverUnreachable.
package hlsl
