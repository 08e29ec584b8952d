// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core builds the one-time Vulkan object graph a triangle
// renderer needs: instance, surface, device, swapchain, image views,
// render pass and pipeline layout, and tears it down again.
package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// Driver is the seam between the construction chain and the Vulkan API.
// Every call the chain makes into Vulkan goes through it, so the chain
// can be exercised without a GPU. The vkr package provides the real one.
//
// Query methods return dereferenced Go values. Create methods take the
// fully populated create-info and return the handle or the driver error.
type Driver interface {
	// InstanceLayers lists layer names the loader can enable
	InstanceLayers() ([]string, error)
	CreateInstance(*vk.InstanceCreateInfo) (vk.Instance, error)
	DestroyInstance(vk.Instance)

	CreateDebugReportCallback(vk.Instance, *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error)
	DestroyDebugReportCallback(vk.Instance, vk.DebugReportCallback)

	DestroySurface(vk.Instance, vk.Surface)

	PhysicalDevices(vk.Instance) ([]vk.PhysicalDevice, error)
	PhysicalDeviceProperties(vk.PhysicalDevice) PhysicalDeviceInfo
	QueueFamilies(vk.PhysicalDevice) []QueueFamily
	SurfaceSupport(device vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error)
	DeviceExtensions(vk.PhysicalDevice) ([]string, error)
	SurfaceCapabilities(vk.PhysicalDevice, vk.Surface) (SurfaceCapabilities, error)
	SurfaceFormats(vk.PhysicalDevice, vk.Surface) ([]vk.SurfaceFormat, error)
	SurfacePresentModes(vk.PhysicalDevice, vk.Surface) ([]vk.PresentMode, error)

	CreateDevice(vk.PhysicalDevice, *vk.DeviceCreateInfo) (vk.Device, error)
	DeviceQueue(device vk.Device, family uint32) vk.Queue
	DeviceWaitIdle(vk.Device) error
	DestroyDevice(vk.Device)

	CreateSwapchain(vk.Device, *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	SwapchainImages(vk.Device, vk.Swapchain) ([]vk.Image, error)
	DestroySwapchain(vk.Device, vk.Swapchain)

	CreateImageView(vk.Device, *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(vk.Device, vk.ImageView)

	CreateRenderPass(vk.Device, *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(vk.Device, vk.RenderPass)

	CreateShaderModule(vk.Device, *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error)
	DestroyShaderModule(vk.Device, vk.ShaderModule)

	CreatePipelineLayout(vk.Device, *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error)
	DestroyPipelineLayout(vk.Device, vk.PipelineLayout)
}

// QueueFamily is the subset of queue family properties the selector uses
type QueueFamily struct {
	Graphics   bool
	QueueCount uint32
}

// SurfaceCapabilities mirrors vk.SurfaceCapabilities with nested
// structures already dereferenced
type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           vk.Extent2D
	MinImageExtent          vk.Extent2D
	MaxImageExtent          vk.Extent2D
	SupportedTransforms     vk.SurfaceTransformFlags
	CurrentTransform        vk.SurfaceTransformFlagBits
	SupportedCompositeAlpha vk.CompositeAlphaFlags
}

// SurfaceSupport groups everything a device reports about a surface
type SurfaceSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// QuerySurfaceSupport fetches capabilities, formats and present modes
func QuerySurfaceSupport(d Driver, device vk.PhysicalDevice, surface vk.Surface) (SurfaceSupport, error) {
	var (
		support SurfaceSupport
		err     error
	)
	if support.Capabilities, err = d.SurfaceCapabilities(device, surface); err != nil {
		return SurfaceSupport{}, err
	}
	if support.Formats, err = d.SurfaceFormats(device, surface); err != nil {
		return SurfaceSupport{}, err
	}
	if support.PresentModes, err = d.SurfacePresentModes(device, surface); err != nil {
		return SurfaceSupport{}, err
	}
	return support, nil
}

// PhysicalDeviceInfo describes a physical device for reporting
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        uint

	Suitable bool
	Reason   string `json:",omitempty"`
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (s ShaderType) String() string {
	switch s {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	default:
		return "unknown"
	}
}
