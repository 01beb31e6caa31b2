// Package shtrans translates the interface of ESSL fragment shaders to HLSL
// for Direct3D 11 and 12.
//
// A compilation takes a shader.Module, the declarative description of a
// shader's structures, uniform blocks, images, varyings, functions, and the
// constructors and image built-ins its body calls, and emits the HLSL
// declarations a body translation builds on: packed struct variants and
// constructors, cbuffers with std140 padding, image resource arrays and
// helper functions, the pixel shader input struct, and prototypes.
//
// Example:
//
//	m, err := shader.Load("blur.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := shtrans.Compile(m, shtrans.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Code)
//
// Compilations are single threaded. To compile in parallel, give every
// goroutine its own Compiler and share one typecache.Registry.
package shtrans

import (
	"errors"
	"fmt"

	"github.com/gogpu/shtrans/hlsl"
	"github.com/gogpu/shtrans/pool"
	"github.com/gogpu/shtrans/shader"
	"github.com/gogpu/shtrans/typecache"
	"github.com/gogpu/shtrans/types"
)

// Options configures compilation.
type Options struct {
	// HLSL controls code generation.
	HLSL hlsl.Options

	// Pool configures the compiler arena and the type cache arenas.
	Pool pool.Options
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		HLSL: *hlsl.DefaultOptions(),
		Pool: pool.DefaultOptions(),
	}
}

// Result is the output of one compilation.
type Result struct {
	// Code is the generated HLSL.
	Code string

	// Info lists the names and bindings the code declares.
	Info *hlsl.TranslationInfo
}

// Compiler compiles modules one at a time, reusing its arena between
// compilations.
type Compiler struct {
	opts   Options
	alloc  *pool.Allocator
	arena  *shader.Arena
	caches *typecache.Registry
	worker int
}

// NewCompiler returns a compiler that takes its type cache from caches
// under the given worker id. Workers running at the same time need
// distinct ids. A nil registry gives the compiler a private one.
func NewCompiler(opts Options, caches *typecache.Registry, worker int) *Compiler {
	if caches == nil {
		caches = typecache.NewRegistry(opts.Pool)
	}
	alloc := pool.New(opts.Pool)
	return &Compiler{
		opts:   opts,
		alloc:  alloc,
		arena:  shader.NewArena(alloc),
		caches: caches,
		worker: worker,
	}
}

// Close frees the compiler's arena. The compiler must not be used again.
func (c *Compiler) Close() {
	c.alloc.Destroy()
}

// Compile compiles m with a throwaway compiler.
func Compile(m *shader.Module, opts Options) (*Result, error) {
	c := NewCompiler(opts, nil, 0)
	defer c.Close()
	return c.Compile(m)
}

// Compile translates m. On failure no partial output is returned.
//
// Everything the compilation allocates lives between a mark pushed on
// entry and popped on return, and the worker's type cache is held for
// the same span.
func (c *Compiler) Compile(m *shader.Module) (res *Result, err error) {
	log := Logger()
	log.Debug("compile start", "module", m.Name, "shaderModel", c.opts.HLSL.ShaderModel.String())

	w, err := hlsl.NewWriter(&c.opts.HLSL)
	if err != nil {
		return nil, err
	}

	c.alloc.Push()
	defer c.alloc.Pop()
	cache := c.caches.Acquire(c.worker)
	defer c.caches.Release(c.worker)

	defer func() {
		if hlsl.IsKind(err, hlsl.ErrUnreachable) {
			log.Warn("internal error", "module", m.Name, "err", err)
		}
	}()
	defer hlsl.RecoverUnreachable(&err)

	if err := shader.Walk(m, c.arena, cache, &emitter{w: w}); err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}

	buf := pool.NewBuffer(c.alloc, 0)
	if _, err := w.WriteTo(buf); err != nil {
		if errors.Is(err, pool.ErrOutOfMemory) {
			return nil, hlsl.Errorf(hlsl.ErrOutOfMemory, "%s: output exceeds the arena limit", m.Name)
		}
		return nil, err
	}

	// Nothing allocates past this point.
	c.alloc.Lock()
	res = &Result{Code: buf.String(), Info: w.Info()}
	c.alloc.Unlock()

	stats := c.alloc.Stats()
	log.Debug("compile done",
		"module", m.Name,
		"bytes", len(res.Code),
		"helpers", len(res.Info.HelperFunctions),
		"pages", stats.PagesInUse,
		"arenaBytes", stats.BytesAllocated,
		"cachedTypes", cache.Len(),
	)
	return res, nil
}

// emitter forwards walk events to the HLSL writer.
type emitter struct {
	w *hlsl.Writer
}

func (e *emitter) Struct(s *types.Structure) error {
	e.w.DeclareStruct(s)
	return nil
}

func (e *emitter) UniformBlock(b *types.InterfaceBlock) error {
	_, err := e.w.DeclareUniformBlock(b)
	return err
}

func (e *emitter) Sampler(name string, t *types.Type) error {
	e.w.DeclareSampler(hlsl.SamplerUniform{Name: name, Type: t})
	return nil
}

func (e *emitter) Image(name string, t *types.Type) error {
	return e.w.DeclareImage(hlsl.ImageUniform{Name: name, Type: t})
}

func (e *emitter) Varying(name string, t *types.Type) error {
	e.w.DeclareVarying(hlsl.Varying{Name: name, Type: t})
	return nil
}

func (e *emitter) Function(name string, internal bool, ret *types.Type, params []*types.Field) error {
	fn := &hlsl.Function{Name: name, Symbol: types.SymbolUserDefined, Return: ret}
	if internal {
		fn.Symbol = types.SymbolInternal
	}
	for _, p := range params {
		fn.Params = append(fn.Params, hlsl.Param{Name: p.Name, Type: p.Type})
	}
	e.w.DeclareFunction(fn)
	return nil
}

func (e *emitter) Constructor(t *types.Type, args []*types.Type) error {
	if s := t.Structure(); s != nil {
		e.w.ConstructStruct(s)
		return nil
	}
	e.w.ConstructBuiltIn(t, args)
	return nil
}

func (e *emitter) ImageCall(builtin, _ string, t *types.Type) error {
	_, err := e.w.CallImage(builtin, t)
	return err
}
