// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shader describes the interface of a fragment shader as the
// translator sees it: the structures, uniform blocks, samplers, images,
// varyings, and functions it declares, and the constructors and image built-ins its
// body calls.
//
// A Module is usually written by hand or by a front end as a TOML or YAML
// manifest:
//
//	name = "blur"
//
//	[[structs]]
//	name = "Light"
//	fields = [{ name = "color", type = "vec3" }, { name = "power", type = "float" }]
//
//	[[images]]
//	name = "target"
//	type = "image2D"
//	format = "rgba8"
//
//	[[calls]]
//	builtin = "imageStore"
//	image = "target"
//
// Walk resolves the spellings in a Module to type descriptors and reports
// each declaration and use to a Visitor in a fixed order.
package shader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every error describing a malformed module.
var ErrInvalid = errors.New("invalid shader module")

// Module is the declarative interface of one shader.
type Module struct {
	Name string `toml:"name" yaml:"name"`

	Structs      []Struct      `toml:"structs" yaml:"structs"`
	Blocks       []Block       `toml:"blocks" yaml:"blocks"`
	Samplers     []Sampler     `toml:"samplers" yaml:"samplers"`
	Images       []Image       `toml:"images" yaml:"images"`
	Varyings     []Varying     `toml:"varyings" yaml:"varyings"`
	Functions    []Function    `toml:"functions" yaml:"functions"`
	Constructors []Constructor `toml:"constructors" yaml:"constructors"`
	Calls        []Call        `toml:"calls" yaml:"calls"`
}

// Field is a structure or block member. Type is an ESSL spelling such as
// "highp vec4", "mat3", "float[4]", or the name of a declared structure.
type Field struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type"`

	// Layout is "row_major", "column_major", or empty.
	Layout string `toml:"layout" yaml:"layout"`
}

// Struct declares a structure. Scope is zero for structures at global
// scope and a unique id for structures declared inside functions.
type Struct struct {
	Name   string  `toml:"name" yaml:"name"`
	Scope  int     `toml:"scope" yaml:"scope"`
	Fields []Field `toml:"fields" yaml:"fields"`
}

// Block declares a uniform block.
type Block struct {
	Name     string `toml:"name" yaml:"name"`
	Instance string `toml:"instance" yaml:"instance"`

	// Layout is "std140", "shared", "packed", or empty.
	Layout    string  `toml:"layout" yaml:"layout"`
	Binding   int     `toml:"binding" yaml:"binding"`
	ArraySize int     `toml:"array_size" yaml:"array_size"`
	Fields    []Field `toml:"fields" yaml:"fields"`
}

// Sampler declares a sampler uniform such as "sampler2DShadow" or
// "isamplerCube[4]".
type Sampler struct {
	Name string `toml:"name" yaml:"name"`
	Type string `toml:"type" yaml:"type"`
}

// Image declares an image uniform such as "image2D" or "uimage3D[2]".
type Image struct {
	Name     string `toml:"name" yaml:"name"`
	Type     string `toml:"type" yaml:"type"`
	Format   string `toml:"format" yaml:"format"`
	ReadOnly bool   `toml:"readonly" yaml:"readonly"`
}

// Varying declares a fragment shader input. Interpolation is "smooth",
// "flat", "centroid", "noperspective", "sample", or empty.
type Varying struct {
	Name          string `toml:"name" yaml:"name"`
	Type          string `toml:"type" yaml:"type"`
	Interpolation string `toml:"interpolation" yaml:"interpolation"`
}

// Param is a function parameter. Qualifier is "in", "out", "inout",
// "const in", or empty for "in".
type Param struct {
	Name      string `toml:"name" yaml:"name"`
	Type      string `toml:"type" yaml:"type"`
	Qualifier string `toml:"qualifier" yaml:"qualifier"`
}

// Function declares a function signature. Internal functions are written
// by the translator itself and keep their names.
type Function struct {
	Name     string  `toml:"name" yaml:"name"`
	Return   string  `toml:"return" yaml:"return"`
	Params   []Param `toml:"params" yaml:"params"`
	Internal bool    `toml:"internal" yaml:"internal"`
}

// Constructor is a constructor call in the shader body: a vector, matrix,
// or structure built from arguments of the given types.
type Constructor struct {
	Type string   `toml:"type" yaml:"type"`
	Args []string `toml:"args" yaml:"args"`
}

// Call is a call of imageSize, imageLoad, or imageStore on a declared
// image.
type Call struct {
	Builtin string `toml:"builtin" yaml:"builtin"`
	Image   string `toml:"image" yaml:"image"`
}

// Format is a manifest encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "toml"
}

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%s: unknown manifest extension %q", path, filepath.Ext(path))
}

// Load reads a manifest, choosing the decoder by extension.
func Load(path string) (*Module, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Decode reads a manifest. Unknown keys are errors in both encodings.
func Decode(r io.Reader, format Format) (*Module, error) {
	var m Module
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		meta, err := toml.NewDecoder(r).Decode(&m)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
		}
	}
	return &m, nil
}

// Encode writes m in the given encoding.
func Encode(w io.Writer, m *Module, format Format) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	}
	return toml.NewEncoder(w).Encode(m)
}
