// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements core.Driver on top of the Vulkan API.
package vkr

import (
	"unsafe"

	"github.com/devblok/vkboot/src/core"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Init loads the Vulkan entry points. With a nil procAddr the
// system loader is used, otherwise the given vkGetInstanceProcAddr,
// as provided by sdl.VulkanGetVkGetInstanceProcAddr().
func Init(procAddr unsafe.Pointer) error {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "vk.Init()")
	}
	return nil
}

// Driver issues the calls of the construction chain to Vulkan
type Driver struct{}

// NewDriver returns a Driver. Init must have succeeded before use.
func NewDriver() *Driver {
	return &Driver{}
}

var _ core.Driver = (*Driver)(nil)

// InstanceLayers implements core.Driver
func (Driver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range layers[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// CreateInstance implements core.Driver
func (Driver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(info, nil, &instance)); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}
	return instance, nil
}

// DestroyInstance implements core.Driver
func (Driver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

// CreateDebugReportCallback implements core.Driver
func (Driver) CreateDebugReportCallback(instance vk.Instance, info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error) {
	var callback vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(instance, info, nil, &callback)); err != nil {
		return vk.NullDebugReportCallback, err
	}
	return callback, nil
}

// DestroyDebugReportCallback implements core.Driver
func (Driver) DestroyDebugReportCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(instance, callback, nil)
}

// DestroySurface implements core.Driver
func (Driver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

// PhysicalDevices implements core.Driver
func (Driver) PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, err
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return nil, err
	}
	return devices[:count], nil
}

// PhysicalDeviceProperties implements core.Driver
func (d Driver) PhysicalDeviceProperties(device vk.PhysicalDevice) core.PhysicalDeviceInfo {
	var info core.PhysicalDeviceInfo

	if extensions, err := d.DeviceExtensions(device); err != nil {
		info.Invalid = true
	} else {
		info.Extensions = extensions
	}

	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(device, &numDeviceLayers, nil)); err != nil {
		info.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(device, &numDeviceLayers, deviceLayers)); err != nil {
		info.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(device, &memoryProperties)
	memoryProperties.Deref()
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		info.Memory += uint(memoryProperties.MemoryHeaps[iMem].Size)
	}

	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	info.ID = int(properties.DeviceID)
	info.VendorID = int(properties.VendorID)
	info.Name = vk.ToString(properties.DeviceName[:])
	info.DriverVersion = int(properties.DriverVersion)

	return info
}

// QueueFamilies implements core.Driver
func (Driver) QueueFamilies(device vk.PhysicalDevice) []core.QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	properties := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, properties)

	families := make([]core.QueueFamily, 0, count)
	for _, p := range properties[:count] {
		p.Deref()
		families = append(families, core.QueueFamily{
			Graphics:   p.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			QueueCount: p.QueueCount,
		})
	}
	return families
}

// SurfaceSupport implements core.Driver
func (Driver) SurfaceSupport(device vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(device, family, surface, &supported)); err != nil {
		return false, err
	}
	return supported.B(), nil
}

// DeviceExtensions implements core.Driver
func (Driver) DeviceExtensions(device vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &count, nil)); err != nil {
		return nil, err
	}
	extensions := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &count, extensions)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range extensions[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// SurfaceCapabilities implements core.Driver
func (Driver) SurfaceCapabilities(device vk.PhysicalDevice, surface vk.Surface) (core.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &caps)); err != nil {
		return core.SurfaceCapabilities{}, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	return core.SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           caps.CurrentExtent,
		MinImageExtent:          caps.MinImageExtent,
		MaxImageExtent:          caps.MaxImageExtent,
		SupportedTransforms:     caps.SupportedTransforms,
		CurrentTransform:        caps.CurrentTransform,
		SupportedCompositeAlpha: caps.SupportedCompositeAlpha,
	}, nil
}

// SurfaceFormats implements core.Driver
func (Driver) SurfaceFormats(device vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(device, surface, &count, nil)); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(device, surface, &count, formats)); err != nil {
		return nil, err
	}
	for i := range formats[:count] {
		formats[i].Deref()
	}
	return formats[:count], nil
}

// SurfacePresentModes implements core.Driver
func (Driver) SurfacePresentModes(device vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &count, nil)); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &count, modes)); err != nil {
		return nil, err
	}
	return modes[:count], nil
}

// CreateDevice implements core.Driver
func (Driver) CreateDevice(physical vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	var device vk.Device
	if err := vk.Error(vk.CreateDevice(physical, info, nil, &device)); err != nil {
		return nil, err
	}
	return device, nil
}

// DeviceQueue implements core.Driver
func (Driver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, 0, &queue)
	return queue
}

// DeviceWaitIdle implements core.Driver
func (Driver) DeviceWaitIdle(device vk.Device) error {
	return vk.Error(vk.DeviceWaitIdle(device))
}

// DestroyDevice implements core.Driver
func (Driver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

// CreateSwapchain implements core.Driver
func (Driver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(device, info, nil, &swapchain)); err != nil {
		return vk.NullSwapchain, err
	}
	return swapchain, nil
}

// SwapchainImages implements core.Driver
func (Driver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	if err := vk.Error(vk.GetSwapchainImages(device, swapchain, &count, nil)); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := vk.Error(vk.GetSwapchainImages(device, swapchain, &count, images)); err != nil {
		return nil, err
	}
	return images[:count], nil
}

// DestroySwapchain implements core.Driver
func (Driver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

// CreateImageView implements core.Driver
func (Driver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(device, info, nil, &view)); err != nil {
		return nil, err
	}
	return view, nil
}

// DestroyImageView implements core.Driver
func (Driver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

// CreateRenderPass implements core.Driver
func (Driver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(device, info, nil, &renderPass)); err != nil {
		return nil, err
	}
	return renderPass, nil
}

// DestroyRenderPass implements core.Driver
func (Driver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device, renderPass, nil)
}

// CreateShaderModule implements core.Driver
func (Driver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device, info, nil, &module)); err != nil {
		return nil, err
	}
	return module, nil
}

// DestroyShaderModule implements core.Driver
func (Driver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

// CreatePipelineLayout implements core.Driver
func (Driver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(device, info, nil, &layout)); err != nil {
		return nil, err
	}
	return layout, nil
}

// DestroyPipelineLayout implements core.Driver
func (Driver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}
