// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/devblok/vkboot/src/core"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const swapchainExtension = "VK_KHR_swapchain"

var errRejected = errors.New("driver rejected the call")

func newHandle() unsafe.Pointer {
	return unsafe.Pointer(new(uint64))
}

// fakeGPU is a physical device as the fake driver reports it
type fakeGPU struct {
	handle     vk.PhysicalDevice
	name       string
	families   []core.QueueFamily
	present    []bool
	extensions []string
	caps       core.SurfaceCapabilities
	formats    []vk.SurfaceFormat
	modes      []vk.PresentMode
}

func newGPU(name string) *fakeGPU {
	return &fakeGPU{
		handle:     vk.PhysicalDevice(newHandle()),
		name:       name,
		families:   []core.QueueFamily{{Graphics: true, QueueCount: 1}},
		present:    []bool{true},
		extensions: []string{swapchainExtension},
		caps: core.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           0,
			CurrentExtent:           vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          vk.Extent2D{Width: 4096, Height: 4096},
			SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
			CurrentTransform:        vk.SurfaceTransformIdentityBit,
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
		},
		formats: []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		modes:   []vk.PresentMode{vk.PresentModeFifo},
	}
}

// fakeDriver implements core.Driver without touching a GPU. It records
// every create, destroy and wait call in order and tracks live handles.
type fakeDriver struct {
	calls  []string
	live   map[unsafe.Pointer]string
	faults []string

	layers []string
	gpus   []*fakeGPU

	// fail makes the named call return errRejected
	fail map[string]bool
	// failViewAt makes the n-th CreateImageView call fail, counting from 0
	failViewAt int
	views      int

	instanceInfo  *vk.InstanceCreateInfo
	debugInfo     *vk.DebugReportCallbackCreateInfo
	deviceInfo    *vk.DeviceCreateInfo
	swapchainInfo *vk.SwapchainCreateInfo
	viewInfos     []*vk.ImageViewCreateInfo
	passInfo      *vk.RenderPassCreateInfo
	shaderInfos   []*vk.ShaderModuleCreateInfo
	layoutInfo    *vk.PipelineLayoutCreateInfo
}

func newFakeDriver(gpus ...*fakeGPU) *fakeDriver {
	return &fakeDriver{
		live:       map[unsafe.Pointer]string{},
		fail:       map[string]bool{},
		failViewAt: -1,
		layers:     []string{core.ValidationLayer},
		gpus:       gpus,
	}
}

func (f *fakeDriver) create(kind string) unsafe.Pointer {
	h := newHandle()
	f.live[h] = kind
	f.calls = append(f.calls, "Create"+kind)
	return h
}

func (f *fakeDriver) destroy(kind string, h unsafe.Pointer) {
	f.calls = append(f.calls, "Destroy"+kind)
	if got, ok := f.live[h]; !ok {
		f.faults = append(f.faults, fmt.Sprintf("destroy of unknown or dead %s", kind))
	} else if got != kind {
		f.faults = append(f.faults, fmt.Sprintf("destroy %s called with a %s", kind, got))
	}
	delete(f.live, h)
}

// lifecycleCalls drops the shader module calls, which are not owned
// by the lifecycle
func (f *fakeDriver) lifecycleCalls() []string {
	var out []string
	for _, c := range f.calls {
		if !strings.HasSuffix(c, "ShaderModule") && c != "DeviceWaitIdle" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDriver) count(call string) int {
	var n int
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeDriver) gpu(device vk.PhysicalDevice) *fakeGPU {
	for _, g := range f.gpus {
		if g.handle == device {
			return g
		}
	}
	panic("unknown physical device")
}

func (f *fakeDriver) InstanceLayers() ([]string, error) {
	if f.fail["InstanceLayers"] {
		return nil, errRejected
	}
	return f.layers, nil
}

func (f *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	f.instanceInfo = info
	if f.fail["CreateInstance"] {
		return nil, errRejected
	}
	return vk.Instance(f.create("Instance")), nil
}

func (f *fakeDriver) DestroyInstance(instance vk.Instance) {
	f.destroy("Instance", unsafe.Pointer(instance))
}

func (f *fakeDriver) CreateDebugReportCallback(instance vk.Instance, info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error) {
	f.debugInfo = info
	if f.fail["CreateDebugReportCallback"] {
		return vk.NullDebugReportCallback, errRejected
	}
	return vk.DebugReportCallback(f.create("DebugReportCallback")), nil
}

func (f *fakeDriver) DestroyDebugReportCallback(instance vk.Instance, callback vk.DebugReportCallback) {
	f.destroy("DebugReportCallback", unsafe.Pointer(callback))
}

func (f *fakeDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	f.destroy("Surface", unsafe.Pointer(surface))
}

func (f *fakeDriver) PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	if f.fail["PhysicalDevices"] {
		return nil, errRejected
	}
	devices := make([]vk.PhysicalDevice, 0, len(f.gpus))
	for _, g := range f.gpus {
		devices = append(devices, g.handle)
	}
	return devices, nil
}

func (f *fakeDriver) PhysicalDeviceProperties(device vk.PhysicalDevice) core.PhysicalDeviceInfo {
	g := f.gpu(device)
	return core.PhysicalDeviceInfo{Name: g.name, Extensions: g.extensions}
}

func (f *fakeDriver) QueueFamilies(device vk.PhysicalDevice) []core.QueueFamily {
	return f.gpu(device).families
}

func (f *fakeDriver) SurfaceSupport(device vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	g := f.gpu(device)
	if int(family) >= len(g.present) {
		return false, nil
	}
	return g.present[family], nil
}

func (f *fakeDriver) DeviceExtensions(device vk.PhysicalDevice) ([]string, error) {
	return f.gpu(device).extensions, nil
}

func (f *fakeDriver) SurfaceCapabilities(device vk.PhysicalDevice, surface vk.Surface) (core.SurfaceCapabilities, error) {
	return f.gpu(device).caps, nil
}

func (f *fakeDriver) SurfaceFormats(device vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	return f.gpu(device).formats, nil
}

func (f *fakeDriver) SurfacePresentModes(device vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	return f.gpu(device).modes, nil
}

func (f *fakeDriver) CreateDevice(physical vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	f.deviceInfo = info
	if f.fail["CreateDevice"] {
		return nil, errRejected
	}
	return vk.Device(f.create("Device")), nil
}

func (f *fakeDriver) DeviceQueue(device vk.Device, family uint32) vk.Queue {
	return vk.Queue(newHandle())
}

func (f *fakeDriver) DeviceWaitIdle(device vk.Device) error {
	f.calls = append(f.calls, "DeviceWaitIdle")
	return nil
}

func (f *fakeDriver) DestroyDevice(device vk.Device) {
	f.destroy("Device", unsafe.Pointer(device))
}

func (f *fakeDriver) CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	f.swapchainInfo = info
	if f.fail["CreateSwapchain"] {
		return vk.NullSwapchain, errRejected
	}
	return vk.Swapchain(f.create("Swapchain")), nil
}

func (f *fakeDriver) SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error) {
	if f.fail["SwapchainImages"] {
		return nil, errRejected
	}
	images := make([]vk.Image, f.swapchainInfo.MinImageCount)
	for i := range images {
		images[i] = vk.Image(newHandle())
	}
	return images, nil
}

func (f *fakeDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	f.destroy("Swapchain", unsafe.Pointer(swapchain))
}

func (f *fakeDriver) CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	f.viewInfos = append(f.viewInfos, info)
	n := f.views
	f.views++
	if n == f.failViewAt {
		return nil, errRejected
	}
	return vk.ImageView(f.create("ImageView")), nil
}

func (f *fakeDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	f.destroy("ImageView", unsafe.Pointer(view))
}

func (f *fakeDriver) CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	f.passInfo = info
	if f.fail["CreateRenderPass"] {
		return nil, errRejected
	}
	return vk.RenderPass(f.create("RenderPass")), nil
}

func (f *fakeDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	f.destroy("RenderPass", unsafe.Pointer(renderPass))
}

func (f *fakeDriver) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	f.shaderInfos = append(f.shaderInfos, info)
	if f.fail["CreateShaderModule"] {
		return nil, errRejected
	}
	return vk.ShaderModule(f.create("ShaderModule")), nil
}

func (f *fakeDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	f.destroy("ShaderModule", unsafe.Pointer(module))
}

func (f *fakeDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, error) {
	f.layoutInfo = info
	if f.fail["CreatePipelineLayout"] {
		return nil, errRejected
	}
	return vk.PipelineLayout(f.create("PipelineLayout")), nil
}

func (f *fakeDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	f.destroy("PipelineLayout", unsafe.Pointer(layout))
}

// fakeWindow hands out surfaces the same way SDL does, as a pointer
// to the surface handle, and registers them with the fake driver
type fakeWindow struct {
	driver        *fakeDriver
	width, height int32
	extensions    []string
	err           error

	surfaceRef *unsafe.Pointer
}

func newFakeWindow(d *fakeDriver) *fakeWindow {
	return &fakeWindow{
		driver:     d,
		width:      800,
		height:     600,
		extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
	}
}

func (w *fakeWindow) VulkanCreateSurface(instance interface{}) (unsafe.Pointer, error) {
	if w.err != nil {
		return nil, w.err
	}
	ref := new(unsafe.Pointer)
	*ref = w.driver.create("Surface")
	w.surfaceRef = ref
	return unsafe.Pointer(ref), nil
}

func (w *fakeWindow) VulkanGetInstanceExtensions() []string {
	return w.extensions
}

func (w *fakeWindow) GetSize() (int32, int32) {
	return w.width, w.height
}

type fakeShaders struct {
	vertex, fragment []byte
	err              error
}

func validShaders() *fakeShaders {
	return &fakeShaders{
		vertex:   []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00},
		fragment: []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00},
	}
}

func (s *fakeShaders) Vertex() ([]byte, error) {
	return s.vertex, s.err
}

func (s *fakeShaders) Fragment() ([]byte, error) {
	return s.fragment, s.err
}
