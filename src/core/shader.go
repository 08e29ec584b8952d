// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devblok/vkboot/src/gfx"
	"github.com/devblok/vkboot/src/utility/kar"
	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

const shaderSuffix = ".spv"

// classifyShader reads a compiled shader file name. The name must not
// contain more than two dots: the first part is the name of the shader,
// the second its type, and the .spv extension ensures it is compiled.
func classifyShader(file string) (string, ShaderType) {
	base := path.Base(filepath.ToSlash(file))
	if !strings.HasSuffix(base, shaderSuffix) {
		return "", UnknownShaderType
	}
	nodes := strings.Split(strings.TrimSuffix(base, shaderSuffix), ".")
	if len(nodes) != 2 {
		return "", UnknownShaderType
	}
	switch nodes[1] {
	case "vert":
		return nodes[0], VertexShaderType
	case "frag":
		return nodes[0], FragmentShaderType
	default:
		return "", UnknownShaderType
	}
}

// findShaderPair picks the vertex and fragment files of the shader called
// name out of files. An empty name takes the first complete pair in
// lexical order.
func findShaderPair(files []string, name string) (vertex, fragment string, err error) {
	type pair struct{ vertex, fragment string }
	pairs := map[string]*pair{}
	for _, f := range files {
		shader, kind := classifyShader(f)
		if kind == UnknownShaderType || (name != "" && shader != name) {
			continue
		}
		p, ok := pairs[shader]
		if !ok {
			p = &pair{}
			pairs[shader] = p
		}
		if kind == VertexShaderType {
			p.vertex = f
		} else {
			p.fragment = f
		}
	}

	names := make([]string, 0, len(pairs))
	for n := range pairs {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if p := pairs[n]; p.vertex != "" && p.fragment != "" {
			return p.vertex, p.fragment, nil
		}
	}
	if name == "" {
		return "", "", errors.New("no vertex and fragment shader pair found")
	}
	return "", "", errors.Errorf("shader %q needs both %s.vert%s and %s.frag%s", name, name, shaderSuffix, name, shaderSuffix)
}

// ShaderBox serves shader bytecode out of a packr box, which reads
// from disk during development and from the binary when packed
type ShaderBox struct {
	box      packr.Box
	vertex   string
	fragment string
}

// NewShaderBox looks up the shader pair called name in dir
func NewShaderBox(dir, name string) (*ShaderBox, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "shader directory")
	}
	box := packr.NewBox(abs)
	vertex, fragment, err := findShaderPair(box.List(), name)
	if err != nil {
		return nil, errors.Wrap(err, abs)
	}
	return &ShaderBox{
		box:      box,
		vertex:   vertex,
		fragment: fragment,
	}, nil
}

// Vertex implements gfx.ShaderSource
func (s *ShaderBox) Vertex() ([]byte, error) {
	return s.box.Find(s.vertex)
}

// Fragment implements gfx.ShaderSource
func (s *ShaderBox) Fragment() ([]byte, error) {
	return s.box.Find(s.fragment)
}

var (
	_ gfx.ShaderSource = (*ShaderBox)(nil)
	_ gfx.ShaderSource = (*ShaderArchive)(nil)
	_ gfx.Releasable   = (*ShaderArchive)(nil)
)

// ShaderArchive serves shader bytecode out of a memory mapped kar archive
type ShaderArchive struct {
	file     *mmap.ReaderAt
	archive  *kar.Archive
	vertex   string
	fragment string
}

// OpenShaderArchive maps the archive at file and looks up the
// shader pair called name
func OpenShaderArchive(file, name string) (*ShaderArchive, error) {
	r, err := mmap.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "mmap.Open()")
	}
	archive, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, errors.Wrap(err, "kar.Open()")
	}
	vertex, fragment, err := findShaderPair(archive.Files(), name)
	if err != nil {
		r.Close()
		return nil, errors.Wrap(err, file)
	}
	return &ShaderArchive{
		file:     r,
		archive:  archive,
		vertex:   vertex,
		fragment: fragment,
	}, nil
}

// Vertex implements gfx.ShaderSource
func (s *ShaderArchive) Vertex() ([]byte, error) {
	return s.archive.ReadAll(s.vertex)
}

// Fragment implements gfx.ShaderSource
func (s *ShaderArchive) Fragment() ([]byte, error) {
	return s.archive.ReadAll(s.fragment)
}

// Release unmaps the archive
func (s *ShaderArchive) Release() {
	s.file.Close()
}
