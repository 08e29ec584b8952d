// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the collaborators that the renderer setup needs
// from the outside world: a window to present into and compiled shaders.
package gfx

import "unsafe"

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Window describes a native window that Vulkan can present into.
// *sdl.Window satisfies it.
type Window interface {

	// VulkanCreateSurface creates a presentation surface for the given
	// instance and returns its raw handle.
	VulkanCreateSurface(instance interface{}) (unsafe.Pointer, error)

	// VulkanGetInstanceExtensions returns the instance extensions
	// the windowing system requires.
	VulkanGetInstanceExtensions() []string

	// GetSize returns the current window size in pixels.
	GetSize() (int32, int32)
}

// ShaderSource provides compiled SPIR-V bytecode for the two
// programmable stages of the triangle pipeline.
type ShaderSource interface {

	// Vertex returns the vertex stage bytecode.
	Vertex() ([]byte, error)

	// Fragment returns the fragment stage bytecode.
	Fragment() ([]byte, error)
}

// Extent2D is a width and height pair in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}
