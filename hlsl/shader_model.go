// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// ShaderModel represents a Direct3D Shader Model version.
// Shader Models define the feature set available for shader compilation.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel4_0 is the Direct3D 10 feature level. No unordered access
	// views, so no image load/store.
	ShaderModel4_0 ShaderModel = iota

	// ShaderModel4_1 adds Texture2DMS array loads and cube arrays.
	ShaderModel4_1

	// ShaderModel5_0 is the base SM5 version (DirectX 11) and the first with
	// RWTexture resources in every stage.
	ShaderModel5_0

	// ShaderModel5_1 provides improved resource binding (default).
	ShaderModel5_1

	// ShaderModel6_0 introduces wave intrinsics and DXIL.
	ShaderModel6_0
)

// String returns a human-readable representation of the shader model.
// Example: "SM 5.1", "SM 6.0"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "5_1", "6_0"
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// Profile returns the compiler target profile for a stage prefix such as
// "ps" or "vs", e.g. "ps_5_0".
func (sm ShaderModel) Profile(stage string) string {
	return stage + "_" + sm.ProfileSuffix()
}

// version returns the major and minor version numbers.
func (sm ShaderModel) version() (major, minor uint8) {
	switch sm {
	case ShaderModel4_0:
		return 4, 0
	case ShaderModel4_1:
		return 4, 1
	case ShaderModel5_0:
		return 5, 0
	case ShaderModel5_1:
		return 5, 1
	case ShaderModel6_0:
		return 6, 0
	default:
		return 5, 1 // Default to 5.1 for unknown
	}
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// SupportsImages returns true if RWTexture load/store is available.
func (sm ShaderModel) SupportsImages() bool {
	return sm >= ShaderModel5_0
}

// SupportsDXIL returns true if this shader model uses DXIL output.
func (sm ShaderModel) SupportsDXIL() bool {
	return sm >= ShaderModel6_0
}

// ParseShaderModel accepts "5_0", "5.0", "sm5.0", or "SM 5.0".
func ParseShaderModel(s string) (ShaderModel, error) {
	norm := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	norm = strings.TrimPrefix(norm, "sm")
	norm = strings.ReplaceAll(norm, ".", "_")
	for sm := ShaderModel4_0; sm <= ShaderModel6_0; sm++ {
		if sm.ProfileSuffix() == norm {
			return sm, nil
		}
	}
	return ShaderModel5_1, Errorf(ErrInvalidShaderModel, "unknown shader model %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (sm ShaderModel) MarshalText() ([]byte, error) {
	return []byte(sm.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with ParseShaderModel.
func (sm *ShaderModel) UnmarshalText(text []byte) error {
	v, err := ParseShaderModel(string(text))
	if err != nil {
		return err
	}
	*sm = v
	return nil
}
