// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/devblok/vkboot/src/utility/kar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyShader(t *testing.T) {
	for file, expected := range map[string]struct {
		name string
		kind ShaderType
	}{
		"triangle.vert.spv":         {"triangle", VertexShaderType},
		"shaders/triangle.frag.spv": {"triangle", FragmentShaderType},
		"triangle.geom.spv":         {"", UnknownShaderType},
		"triangle.vert":             {"", UnknownShaderType},
		"tri.angle.vert.spv":        {"", UnknownShaderType},
		"triangle.spv":              {"", UnknownShaderType},
	} {
		name, kind := classifyShader(file)
		assert.Equal(t, expected.name, name, file)
		assert.Equal(t, expected.kind, kind, file)
	}
}

func TestFindShaderPair(t *testing.T) {
	files := []string{"quad.vert.spv", "triangle.frag.spv", "triangle.vert.spv", "box.frag.spv"}

	vertex, fragment, err := findShaderPair(files, "")
	require.NoError(t, err)
	assert.Equal(t, "triangle.vert.spv", vertex)
	assert.Equal(t, "triangle.frag.spv", fragment)

	_, _, err = findShaderPair(files, "quad")
	assert.Error(t, err)

	_, _, err = findShaderPair(nil, "")
	assert.Error(t, err)
}

func TestShaderBox(t *testing.T) {
	box, err := NewShaderBox("testdata/shaders", "triangle")
	require.NoError(t, err)

	vertex, err := box.Vertex()
	require.NoError(t, err)
	assert.Len(t, vertex, 8)

	fragment, err := box.Fragment()
	require.NoError(t, err)
	assert.Len(t, fragment, 12)

	_, err = NewShaderBox("testdata/shaders", "quad")
	assert.Error(t, err)

	_, err = NewShaderBox("testdata/broken", "")
	assert.Error(t, err)
}

func writeShaderArchive(t *testing.T, files ...string) string {
	builder, err := kar.NewBuilder(kar.Header{Author: "test", Version: 1})
	require.NoError(t, err)
	defer builder.Close()

	for _, f := range files {
		data, err := ioutil.ReadFile(filepath.Join("testdata/shaders", f))
		require.NoError(t, err)
		require.NoError(t, builder.Add(f, bytes.NewReader(data)))
	}

	path := filepath.Join(t.TempDir(), "shaders.kar")
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	_, err = builder.WriteTo(out)
	require.NoError(t, err)
	return path
}

func TestShaderArchive(t *testing.T) {
	path := writeShaderArchive(t, "triangle.vert.spv", "triangle.frag.spv", "quad.vert.spv")

	archive, err := OpenShaderArchive(path, "")
	require.NoError(t, err)
	defer archive.Release()

	vertex, err := archive.Vertex()
	require.NoError(t, err)
	expected, err := ioutil.ReadFile("testdata/shaders/triangle.vert.spv")
	require.NoError(t, err)
	assert.Equal(t, expected, vertex)

	fragment, err := archive.Fragment()
	require.NoError(t, err)
	assert.Len(t, fragment, 12)
}

func TestShaderArchiveIncomplete(t *testing.T) {
	path := writeShaderArchive(t, "quad.vert.spv")

	_, err := OpenShaderArchive(path, "quad")
	assert.Error(t, err)

	_, err = OpenShaderArchive(filepath.Join(t.TempDir(), "missing.kar"), "")
	assert.Error(t, err)
}
