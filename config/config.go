// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config reads shtrans configuration files.
//
// A configuration is a TOML or YAML file, usually shtrans.toml at the root
// of a shader tree:
//
//	[hlsl]
//	shader_model = "5.1"
//	robust_image_loads = true
//	register_space = 1
//
//	[pool]
//	page_size = 65536
//	guards = true
//
//	[build]
//	jobs = 8
//	cache_dir = ".shtrans-cache"
//
// Keys that are not set keep their defaults. Unknown keys are errors.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/shtrans"
	"github.com/gogpu/shtrans/hlsl"
	"github.com/gogpu/shtrans/pool"
)

// FileName is the configuration file Find looks for.
const FileName = "shtrans.toml"

// Config is the decoded configuration.
type Config struct {
	// Path is the file the configuration was loaded from, empty for
	// defaults.
	Path string `toml:"-" yaml:"-"`

	HLSL  HLSL  `toml:"hlsl" yaml:"hlsl"`
	Pool  Pool  `toml:"pool" yaml:"pool"`
	Build Build `toml:"build" yaml:"build"`
}

// HLSL mirrors hlsl.Options.
type HLSL struct {
	ShaderModel               hlsl.ShaderModel `toml:"shader_model" yaml:"shader_model"`
	RobustImageLoads          bool             `toml:"robust_image_loads" yaml:"robust_image_loads"`
	HeaderComment             bool             `toml:"header_comment" yaml:"header_comment"`
	RegisterSpace             uint8            `toml:"register_space" yaml:"register_space"`
	FirstTextureRegister      uint32           `toml:"first_texture_register" yaml:"first_texture_register"`
	FirstUniformBlockRegister uint32           `toml:"first_uniform_block_register" yaml:"first_uniform_block_register"`
}

// Pool mirrors pool.Options.
type Pool struct {
	PageSize  int  `toml:"page_size" yaml:"page_size"`
	Alignment int  `toml:"alignment" yaml:"alignment"`
	Guards    bool `toml:"guards" yaml:"guards"`
	MaxBytes  int  `toml:"max_bytes" yaml:"max_bytes"`
}

// Build holds settings of the command line tool.
type Build struct {
	// Jobs is the number of parallel compilations. Zero means one per CPU.
	Jobs int `toml:"jobs" yaml:"jobs"`

	// CacheDir holds compiled output keyed by input hash. Relative paths
	// are resolved against the configuration file. Empty disables the
	// cache.
	CacheDir string `toml:"cache_dir" yaml:"cache_dir"`

	// OutDir receives the .hlsl files. Empty writes next to each input.
	OutDir string `toml:"out_dir" yaml:"out_dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	h := hlsl.DefaultOptions()
	p := pool.DefaultOptions()
	return &Config{
		HLSL: HLSL{
			ShaderModel:               h.ShaderModel,
			RobustImageLoads:          h.RobustImageLoads,
			HeaderComment:             h.HeaderComment,
			RegisterSpace:             h.RegisterSpace,
			FirstTextureRegister:      h.FirstTextureRegister,
			FirstUniformBlockRegister: h.FirstUniformBlockRegister,
		},
		Pool: Pool{
			PageSize:  p.PageSize,
			Alignment: p.Alignment,
			Guards:    p.Guards,
			MaxBytes:  p.MaxBytes,
		},
	}
}

// Load reads a .toml, .yaml, or .yml configuration file on top of the
// defaults and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported configuration format", path)
	}

	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find walks from startDir up to the filesystem root looking for
// shtrans.toml. The boolean is false when there is none.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest shtrans.toml above startDir, or returns the
// defaults when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate reports settings no compilation could run with.
func (c *Config) Validate() error {
	opts := c.Options()
	if err := opts.HLSL.Validate(); err != nil {
		return err
	}
	switch {
	case c.Pool.PageSize < 0:
		return fmt.Errorf("pool.page_size %d is negative", c.Pool.PageSize)
	case c.Pool.Alignment < 0:
		return fmt.Errorf("pool.alignment %d is negative", c.Pool.Alignment)
	case c.Pool.MaxBytes < 0:
		return fmt.Errorf("pool.max_bytes %d is negative", c.Pool.MaxBytes)
	case c.Pool.MaxBytes > 0 && c.Pool.MaxBytes < c.Pool.PageSize:
		return fmt.Errorf("pool.max_bytes %d is smaller than one page", c.Pool.MaxBytes)
	case c.Build.Jobs < 0:
		return fmt.Errorf("build.jobs %d is negative", c.Build.Jobs)
	}
	return nil
}

// Options converts the configuration to compiler options.
func (c *Config) Options() shtrans.Options {
	return shtrans.Options{
		HLSL: hlsl.Options{
			ShaderModel:               c.HLSL.ShaderModel,
			RobustImageLoads:          c.HLSL.RobustImageLoads,
			HeaderComment:             c.HLSL.HeaderComment,
			RegisterSpace:             c.HLSL.RegisterSpace,
			FirstTextureRegister:      c.HLSL.FirstTextureRegister,
			FirstUniformBlockRegister: c.HLSL.FirstUniformBlockRegister,
		},
		Pool: pool.Options{
			PageSize:  c.Pool.PageSize,
			Alignment: c.Pool.Alignment,
			Guards:    c.Pool.Guards,
			MaxBytes:  c.Pool.MaxBytes,
		},
	}
}

// CacheDir returns Build.CacheDir resolved against the configuration
// file's directory.
func (c *Config) CacheDir() string {
	dir := c.Build.CacheDir
	if dir == "" || filepath.IsAbs(dir) || c.Path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(c.Path), dir)
}
