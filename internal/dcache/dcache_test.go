// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dcache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/gogpu/shtrans"
	"github.com/gogpu/shtrans/hlsl"
)

func sampleEntry() *Entry {
	return &Entry{
		Module: "blur",
		Code:   "cbuffer Params : register(b1)\n{\n    float _radius;\n};\n",
		Info: &hlsl.TranslationInfo{
			RequiredShaderModel: hlsl.ShaderModel5_0,
			FunctionNames:       map[string][]string{"main": {"gl_main"}},
			HelperFunctions:     []string{"gl_image2DLoad"},
			ImageIndices:        map[string]uint32{"_src": 0},
			RegisterBindings:    map[string]string{"Params": "register(b1)"},
		},
	}
}

func TestKey(t *testing.T) {
	opts := shtrans.DefaultOptions()
	a, err := Key(opts, []byte("name = \"a\""))
	require.NoError(t, err)
	again, err := Key(opts, []byte("name = \"a\""))
	require.NoError(t, err)
	assert.Equal(t, a, again)
	assert.Len(t, a.String(), 64)

	b, err := Key(opts, []byte("name = \"b\""))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	opts.HLSL.RobustImageLoads = true
	c, err := Key(opts, []byte("name = \"a\""))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "options are part of the key")
}

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key, err := Key(shtrans.DefaultOptions(), []byte("x"))
	require.NoError(t, err)

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleEntry()
	require.NoError(t, c.Put(key, want))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schemaVersion, got.Schema)
	assert.Equal(t, want.Code, got.Code)
	assert.Equal(t, want.Info, got.Info)
	assert.Zero(t, want.Schema, "Put must not modify its argument")

	matches, err := filepath.Glob(filepath.Join(c.Dir(), "*", "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary files left behind")
}

func TestStaleSchemaIsMiss(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key, err := Key(shtrans.DefaultOptions(), []byte("x"))
	require.NoError(t, err)

	data, err := msgpack.Marshal(&Entry{Schema: schemaVersion + 1, Code: "old"})
	require.NoError(t, err)
	p := c.pathFor(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(p, []byte{0xc1}, 0o644))
	_, _, err = c.Get(key)
	assert.Error(t, err)
}

func TestDropAll(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key, err := Key(shtrans.DefaultOptions(), []byte("x"))
	require.NoError(t, err)
	require.NoError(t, c.Put(key, sampleEntry()))

	require.NoError(t, c.DropAll())
	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, sampleEntry()), "cache stays usable after DropAll")
}

func TestNilCache(t *testing.T) {
	var c *Cache
	require.NoError(t, c.Put(Digest{}, sampleEntry()))
	_, ok, err := c.Get(Digest{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.DropAll())
}

func TestConcurrentAccess(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key, err := Key(shtrans.DefaultOptions(), []byte("shared"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Put(key, sampleEntry()))
			_, _, err := c.Get(key)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
