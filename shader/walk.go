// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"fmt"

	"github.com/gogpu/shtrans/pool"
	"github.com/gogpu/shtrans/typecache"
	"github.com/gogpu/shtrans/types"
)

// Visitor receives the declarations and uses of a module. Returning an
// error stops the walk.
type Visitor interface {
	Struct(s *types.Structure) error
	UniformBlock(b *types.InterfaceBlock) error
	Sampler(name string, t *types.Type) error
	Image(name string, t *types.Type) error
	Varying(name string, t *types.Type) error
	Function(name string, internal bool, ret *types.Type, params []*types.Field) error
	Constructor(t *types.Type, args []*types.Type) error
	ImageCall(builtin, image string, t *types.Type) error
}

// Arena holds the descriptors a walk builds that the type cache cannot
// share: arrays, structures, images, and fields. The slabs follow the
// allocator's marks, so popping the mark pushed before Walk frees them.
type Arena struct {
	types   *pool.Objects[types.Type]
	structs *pool.Objects[types.Structure]
	fields  *pool.Objects[types.Field]
	blocks  *pool.Objects[types.InterfaceBlock]
}

// NewArena attaches descriptor slabs to a. Create it once per allocator.
func NewArena(a *pool.Allocator) *Arena {
	return &Arena{
		types:   pool.NewObjects[types.Type](a),
		structs: pool.NewObjects[types.Structure](a),
		fields:  pool.NewObjects[types.Field](a),
		blocks:  pool.NewObjects[types.InterfaceBlock](a),
	}
}

// Len returns the number of live descriptors.
func (ar *Arena) Len() int {
	return ar.types.Len() + ar.structs.Len() + ar.fields.Len() + ar.blocks.Len()
}

type resolver struct {
	arena   *Arena
	cache   *typecache.Cache
	structs  map[string]*types.Structure
	samplers map[string]*types.Type
	images   map[string]*types.Type
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Walk resolves m and reports it to v: structures in declaration order,
// then uniform blocks, samplers, images, varyings, functions,
// constructors, and image calls. Scalar, vector, and matrix types come from c, which must
// be initialized; everything else is allocated in ar.
func Walk(m *Module, ar *Arena, c *typecache.Cache, v Visitor) error {
	r := &resolver{
		arena:    ar,
		cache:    c,
		structs:  make(map[string]*types.Structure),
		samplers: make(map[string]*types.Type),
		images:   make(map[string]*types.Type),
	}
	for i := range m.Structs {
		s, err := r.structure(&m.Structs[i])
		if err != nil {
			return err
		}
		if err := v.Struct(s); err != nil {
			return err
		}
	}
	for i := range m.Blocks {
		b, err := r.block(&m.Blocks[i])
		if err != nil {
			return err
		}
		if err := v.UniformBlock(b); err != nil {
			return err
		}
	}
	for _, smp := range m.Samplers {
		t, err := r.sampler(smp)
		if err != nil {
			return err
		}
		if err := v.Sampler(smp.Name, t); err != nil {
			return err
		}
	}
	for _, img := range m.Images {
		t, err := r.image(img)
		if err != nil {
			return err
		}
		if err := v.Image(img.Name, t); err != nil {
			return err
		}
	}
	for _, vr := range m.Varyings {
		t, err := r.varying(vr)
		if err != nil {
			return err
		}
		if err := v.Varying(vr.Name, t); err != nil {
			return err
		}
	}
	for i := range m.Functions {
		fn := &m.Functions[i]
		ret, params, err := r.function(fn)
		if err != nil {
			return err
		}
		if err := v.Function(fn.Name, fn.Internal, ret, params); err != nil {
			return err
		}
	}
	for _, ctor := range m.Constructors {
		t, args, err := r.constructor(ctor)
		if err != nil {
			return err
		}
		if err := v.Constructor(t, args); err != nil {
			return err
		}
	}
	for _, call := range m.Calls {
		t, err := r.call(call)
		if err != nil {
			return err
		}
		if err := v.ImageCall(call.Builtin, call.Image, t); err != nil {
			return err
		}
	}
	return nil
}

// resolve turns a type spelling into a descriptor. Plain scalar, vector,
// and matrix types are shared through the cache; edit forces a private
// copy.
func (r *resolver) resolve(spelling string, q types.Qualifier, edit func(*types.Type)) (*types.Type, error) {
	d, err := types.Parse(spelling)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if d.StructName != "" {
		s, ok := r.structs[d.StructName]
		if !ok {
			return nil, invalid("structure %q used before its declaration", d.StructName)
		}
		t := types.NewStruct(s, q)
		t.SetPrecision(d.Precision)
		if len(d.ArraySizes) > 0 {
			t.SetArraySizes(d.ArraySizes...)
		}
		if edit != nil {
			edit(t)
		}
		return r.arena.types.New(*t).Realize(), nil
	}
	if len(d.ArraySizes) == 0 && edit == nil {
		return r.cache.Type(d.Basic, d.Precision, q, int(d.Primary), int(d.Secondary)), nil
	}
	t := d.Type(q)
	if edit != nil {
		edit(&t)
	}
	return r.arena.types.New(t).Realize(), nil
}

func packing(layout string) (types.MatrixPacking, error) {
	switch layout {
	case "":
		return types.PackingUnspecified, nil
	case "row_major":
		return types.PackingRowMajor, nil
	case "column_major":
		return types.PackingColumnMajor, nil
	}
	return 0, invalid("unknown matrix layout %q", layout)
}

// fields resolves members. Opaque members are allowed only in structures.
func (r *resolver) fields(owner string, in []Field, allowOpaque bool) ([]*types.Field, error) {
	out := make([]*types.Field, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, f := range in {
		if f.Name == "" {
			return nil, invalid("%s has a member without a name", owner)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, invalid("%s declares %q twice", owner, f.Name)
		}
		seen[f.Name] = struct{}{}

		m, err := packing(f.Layout)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", owner, f.Name, err)
		}
		var edit func(*types.Type)
		if m != types.PackingUnspecified {
			edit = func(t *types.Type) { t.SetPacking(m) }
		}
		t, err := r.resolve(f.Type, types.QualTemporary, edit)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", owner, f.Name, err)
		}
		if t.Basic() == types.Void {
			return nil, invalid("%s.%s has type void", owner, f.Name)
		}
		if !allowOpaque && containsOpaque(t) {
			return nil, invalid("%s.%s has opaque type %s", owner, f.Name, t)
		}
		out = append(out, r.arena.fields.New(types.Field{Name: f.Name, Type: t}))
	}
	return out, nil
}

func containsOpaque(t *types.Type) bool {
	if t.Basic().IsOpaque() {
		return true
	}
	return t.Structure() != nil && t.Structure().ContainsSamplers()
}

func (r *resolver) structure(s *Struct) (*types.Structure, error) {
	if d, err := types.Parse(s.Name); err != nil || d.StructName != s.Name || d.Precision != types.PrecisionUndefined {
		return nil, invalid("bad structure name %q", s.Name)
	}
	if _, dup := r.structs[s.Name]; dup {
		return nil, invalid("structure %q declared twice", s.Name)
	}
	fields, err := r.fields("struct "+s.Name, s.Fields, true)
	if err != nil {
		return nil, err
	}
	st := r.arena.structs.New(types.Structure{
		Name:          s.Name,
		Fields:        fields,
		Symbol:        types.SymbolUserDefined,
		UniqueID:      s.Scope,
		AtGlobalScope: s.Scope == 0,
	})
	r.structs[s.Name] = st
	return st, nil
}

func (r *resolver) block(b *Block) (*types.InterfaceBlock, error) {
	if b.Name == "" {
		return nil, invalid("uniform block without a name")
	}
	storage := types.StorageUnspecified
	if b.Layout != "" {
		var ok bool
		if storage, ok = types.LookupBlockStorage(b.Layout); !ok {
			return nil, invalid("block %s: unknown layout %q", b.Name, b.Layout)
		}
	}
	if b.ArraySize < 0 {
		return nil, invalid("block %s: negative array size", b.Name)
	}
	fields, err := r.fields("block "+b.Name, b.Fields, false)
	if err != nil {
		return nil, err
	}
	return r.arena.blocks.New(types.InterfaceBlock{
		Name:         b.Name,
		InstanceName: b.Instance,
		Fields:       fields,
		Storage:      storage,
		Binding:      b.Binding,
		ArraySize:    b.ArraySize,
	}), nil
}

// formatFits applies the ESSL rule that an image format matches the
// component type of the image.
func formatFits(b types.BasicType, f types.ImageInternalFormat) bool {
	switch f {
	case types.FormatRGBA32I, types.FormatRGBA16I, types.FormatRGBA8I, types.FormatR32I:
		return b.IsIntegerImage()
	case types.FormatRGBA32UI, types.FormatRGBA16UI, types.FormatRGBA8UI, types.FormatR32UI:
		return b.IsUnsignedImage()
	case types.FormatUnspecified:
		return false
	}
	return !b.IsIntegerImage() && !b.IsUnsignedImage()
}

// declared reports whether name is taken by a sampler or image.
func (r *resolver) declared(name string) bool {
	_, smp := r.samplers[name]
	_, img := r.images[name]
	return smp || img
}

func (r *resolver) sampler(s Sampler) (*types.Type, error) {
	if s.Name == "" {
		return nil, invalid("sampler without a name")
	}
	if r.declared(s.Name) {
		return nil, invalid("uniform %q declared twice", s.Name)
	}
	t, err := r.resolve(s.Type, types.QualUniform, nil)
	if err != nil {
		return nil, fmt.Errorf("sampler %s: %w", s.Name, err)
	}
	if !t.Basic().IsSampler() {
		return nil, invalid("sampler %s has non-sampler type %s", s.Name, t)
	}
	r.samplers[s.Name] = t
	return t, nil
}

func (r *resolver) image(img Image) (*types.Type, error) {
	if img.Name == "" {
		return nil, invalid("image without a name")
	}
	if r.declared(img.Name) {
		return nil, invalid("uniform %q declared twice", img.Name)
	}
	format, ok := types.LookupImageFormat(img.Format)
	if !ok {
		return nil, invalid("image %s: unknown format %q", img.Name, img.Format)
	}
	t, err := r.resolve(img.Type, types.QualUniform, func(t *types.Type) {
		t.SetImageFormat(format)
		if img.ReadOnly {
			t.SetMemory(types.MemoryReadOnly)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", img.Name, err)
	}
	if !t.Basic().IsImage() {
		return nil, invalid("image %s has non-image type %s", img.Name, t)
	}
	if !formatFits(t.Basic(), format) {
		return nil, invalid("image %s: format %s does not match %s", img.Name, format, t.Basic())
	}
	r.images[img.Name] = t
	return t, nil
}

func (r *resolver) varying(v Varying) (*types.Type, error) {
	keyword := "varying"
	if v.Interpolation != "" {
		keyword = v.Interpolation + " in"
	}
	q, ok := types.LookupQualifier(keyword)
	if !ok || !q.IsVaryingIn() {
		return nil, invalid("varying %s: unknown interpolation %q", v.Name, v.Interpolation)
	}
	t, err := r.resolve(v.Type, q, nil)
	if err != nil {
		return nil, fmt.Errorf("varying %s: %w", v.Name, err)
	}
	if t.Basic() == types.Bool || t.Basic() == types.Void || containsOpaque(t) {
		return nil, invalid("varying %s cannot have type %s", v.Name, t)
	}
	if t.Structure() != nil {
		return nil, invalid("varying %s: structure varyings are not supported", v.Name)
	}
	return t, nil
}

func (r *resolver) function(fn *Function) (*types.Type, []*types.Field, error) {
	if fn.Name == "" {
		return nil, nil, invalid("function without a name")
	}
	ret := fn.Return
	if ret == "" {
		ret = "void"
	}
	rt, err := r.resolve(ret, types.QualTemporary, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("function %s: %w", fn.Name, err)
	}
	params := make([]*types.Field, 0, len(fn.Params))
	for _, p := range fn.Params {
		keyword := p.Qualifier
		if keyword == "" {
			keyword = "in"
		}
		q, ok := types.LookupQualifier(keyword)
		if !ok || !q.IsParam() {
			return nil, nil, invalid("function %s: parameter %s has qualifier %q", fn.Name, p.Name, p.Qualifier)
		}
		t, err := r.resolve(p.Type, q, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("function %s: parameter %s: %w", fn.Name, p.Name, err)
		}
		if t.Basic() == types.Void {
			return nil, nil, invalid("function %s: parameter %s has type void", fn.Name, p.Name)
		}
		params = append(params, r.arena.fields.New(types.Field{Name: p.Name, Type: t}))
	}
	return rt, params, nil
}

func (r *resolver) constructor(c Constructor) (*types.Type, []*types.Type, error) {
	t, err := r.resolve(c.Type, types.QualTemporary, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("constructor %s: %w", c.Type, err)
	}
	if t.IsArray() {
		return nil, nil, invalid("constructor %s: arrays are built inline", c.Type)
	}
	args := make([]*types.Type, 0, len(c.Args))
	for _, a := range c.Args {
		at, err := r.resolve(a, types.QualTemporary, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("constructor %s: %w", c.Type, err)
		}
		args = append(args, at)
	}

	if s := t.Structure(); s != nil {
		if len(args) != len(s.Fields) {
			return nil, nil, invalid("constructor %s takes %d arguments, got %d", c.Type, len(s.Fields), len(args))
		}
		return t, args, nil
	}
	if t.IsScalar() || !t.Basic().IsScalarKind() {
		return nil, nil, invalid("constructor %s: only vectors, matrices, and structures have constructor functions", c.Type)
	}
	if len(args) == 0 {
		return nil, nil, invalid("constructor %s without arguments", c.Type)
	}
	for _, at := range args {
		if at.IsArray() || at.Structure() != nil || !at.Basic().IsScalarKind() {
			return nil, nil, invalid("constructor %s: argument of type %s", c.Type, at)
		}
	}
	if len(args) == 1 {
		if err := checkSingleArgument(t, args[0]); err != nil {
			return nil, nil, fmt.Errorf("constructor %s: %w", c.Type, err)
		}
		return t, args, nil
	}
	if err := checkComponents(t, args); err != nil {
		return nil, nil, fmt.Errorf("constructor %s: %w", c.Type, err)
	}
	return t, args, nil
}

// checkSingleArgument accepts a scalar, anything with at least as many
// components for a vector, and a matrix or mat2(vec4) for a matrix.
func checkSingleArgument(t, arg *types.Type) error {
	if arg.IsScalar() {
		return nil
	}
	if t.IsMatrix() {
		if arg.IsMatrix() || (t.Rows() == 2 && t.Cols() == 2 && arg.IsVector() && arg.NominalSize() == 4) {
			return nil
		}
		return invalid("cannot build from %s", arg)
	}
	if arg.ObjectSize() < t.ObjectSize() {
		return invalid("%d components for %d", arg.ObjectSize(), t.ObjectSize())
	}
	return nil
}

// checkComponents applies the rules for several arguments: together they
// cover the target, each one contributes, only the last may be cut short,
// and matrices never mix with other arguments in a matrix constructor.
func checkComponents(t *types.Type, args []*types.Type) error {
	want := t.ObjectSize()
	have := 0
	for i, at := range args {
		if t.IsMatrix() && at.IsMatrix() {
			return invalid("matrix argument %s among others", at)
		}
		if have >= want {
			return invalid("argument %d of type %s is unused", i+1, at)
		}
		have += at.ObjectSize()
		if i < len(args)-1 && at.IsVector() && have > want {
			return invalid("argument %d of type %s overflows %d components", i+1, at, want)
		}
	}
	if have < want {
		return invalid("%d components for %d", have, want)
	}
	return nil
}

func (r *resolver) call(c Call) (*types.Type, error) {
	switch c.Builtin {
	case "imageSize", "imageLoad", "imageStore":
	default:
		return nil, invalid("%q is not an image built-in", c.Builtin)
	}
	t, ok := r.images[c.Image]
	if !ok {
		return nil, invalid("%s on undeclared image %q", c.Builtin, c.Image)
	}
	if c.Builtin == "imageStore" && t.Memory().ReadOnly() {
		return nil, invalid("imageStore on readonly image %q", c.Image)
	}
	return t, nil
}
