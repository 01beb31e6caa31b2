package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/shtrans"
	"github.com/gogpu/shtrans/internal/dcache"
	"github.com/gogpu/shtrans/shader"
	"github.com/gogpu/shtrans/typecache"
)

// builder compiles manifests on a fixed set of workers. Each worker owns a
// Compiler; all of them share one type cache registry.
type builder struct {
	opts   shtrans.Options
	cache  *dcache.Cache
	outDir string
	info   bool
	stdout io.Writer

	jobs      int
	compilers chan *shtrans.Compiler
}

type buildSettings struct {
	opts     shtrans.Options
	jobs     int
	cacheDir string
	outDir   string
	info     bool
	// stdout, when set, receives the generated code instead of files.
	stdout io.Writer
}

func newBuilder(s buildSettings) (*builder, error) {
	jobs := s.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	b := &builder{
		opts:      s.opts,
		outDir:    s.outDir,
		info:      s.info,
		stdout:    s.stdout,
		jobs:      jobs,
		compilers: make(chan *shtrans.Compiler, jobs),
	}
	if s.cacheDir != "" {
		c, err := dcache.Open(s.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		b.cache = c
	}
	caches := typecache.NewRegistry(s.opts.Pool)
	for worker := range jobs {
		b.compilers <- shtrans.NewCompiler(s.opts, caches, worker)
	}
	return b, nil
}

func (b *builder) Close() {
	for range b.jobs {
		(<-b.compilers).Close()
	}
}

// outcome is the result of building one manifest.
type outcome struct {
	Path   string
	Output string
	Cached bool
	Result *shtrans.Result
	Err    error
}

// run builds every file. Per-file failures are reported in the outcomes;
// the error is only set when ctx is cancelled.
func (b *builder) run(ctx context.Context, files []string) ([]outcome, error) {
	results := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(b.jobs, max(len(files), 1)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			c := <-b.compilers
			defer func() { b.compilers <- c }()

			results[i] = b.buildOne(c, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if b.stdout != nil {
		for _, r := range results {
			if r.Err == nil {
				if err := b.writeStdout(r); err != nil {
					return results, err
				}
			}
		}
	}
	return results, nil
}

func (b *builder) buildOne(c *shtrans.Compiler, path string) outcome {
	o := outcome{Path: path}
	res, cached, err := b.compile(c, path)
	if err != nil {
		o.Err = err
		return o
	}
	o.Result = res
	o.Cached = cached
	if b.stdout == nil {
		o.Output, o.Err = b.writeFiles(path, res)
	}
	return o
}

func (b *builder) compile(c *shtrans.Compiler, path string) (*shtrans.Result, bool, error) {
	format, err := shader.FormatOf(path)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	name := manifestName(path)

	var key dcache.Digest
	if b.cache != nil {
		key, err = dcache.Key(b.opts, data)
		if err != nil {
			return nil, false, err
		}
		e, ok, err := b.cache.Get(key)
		if err != nil {
			shtrans.Logger().Warn("disk cache read failed", "file", path, "err", err)
		} else if ok {
			return &shtrans.Result{Code: e.Code, Info: e.Info}, true, nil
		}
	}

	m, err := shader.Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = name
	}
	res, err := c.Compile(m)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}

	if b.cache != nil {
		err := b.cache.Put(key, &dcache.Entry{Module: m.Name, Code: res.Code, Info: res.Info})
		if err != nil {
			shtrans.Logger().Warn("disk cache write failed", "file", path, "err", err)
		}
	}
	return res, false, nil
}

// writeFiles writes <name>.hlsl, and <name>.info.yaml with --info, into
// the output directory or next to the manifest.
func (b *builder) writeFiles(path string, res *shtrans.Result) (string, error) {
	dir := b.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Join(dir, manifestName(path))

	out := base + ".hlsl"
	if err := os.WriteFile(out, []byte(res.Code), 0o644); err != nil {
		return "", err
	}
	if b.info {
		data, err := yaml.Marshal(res.Info)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(base+".info.yaml", data, 0o644); err != nil {
			return "", err
		}
	}
	return out, nil
}

func (b *builder) writeStdout(o outcome) error {
	if _, err := fmt.Fprintf(b.stdout, "// %s\n%s", o.Path, o.Result.Code); err != nil {
		return err
	}
	if !b.info {
		return nil
	}
	enc := yaml.NewEncoder(b.stdout)
	enc.SetIndent(2)
	if _, err := io.WriteString(b.stdout, "---\n"); err != nil {
		return err
	}
	if err := enc.Encode(o.Result.Info); err != nil {
		return err
	}
	return enc.Close()
}

func manifestName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
