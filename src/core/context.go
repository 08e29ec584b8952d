// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/vkboot/src/gfx"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// State is the lifecycle state of a Context
type State int

// Lifecycle states. A Context only ever moves forward.
const (
	Uninitialized State = iota
	Initialized
	TornDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case TornDown:
		return "torn down"
	default:
		return "unknown"
	}
}

// Option configures a Context
type Option func(*Context)

// WithLogger sets the logger used for construction, teardown
// and validation messages
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Context) {
		c.log = logger
	}
}

// Context owns every object of the renderer setup and is the only
// place they are destroyed
type Context struct {
	driver        Driver
	configuration Configuration
	log           logrus.FieldLogger
	state         State

	instance       vk.Instance
	debugCallback  vk.DebugReportCallback
	surface        vk.Surface
	physicalDevice vk.PhysicalDevice
	device         *Device
	swapchain      *Swapchain
	imageViews     []vk.ImageView
	renderPass     vk.RenderPass
	pipelineLayout *PipelineLayout
}

// NewContext builds the whole object graph for window. When a step
// fails everything created before it is destroyed and the error of
// that step is returned.
func NewContext(d Driver, window gfx.Window, shaders gfx.ShaderSource, cfg Configuration, opts ...Option) (*Context, error) {
	c := &Context{
		driver:        d,
		configuration: cfg,
		log:           logrus.StandardLogger(),
		state:         Uninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initialise(window, shaders); err != nil {
		c.log.WithError(err).Error("renderer setup failed, releasing partial state")
		c.Destroy()
		return nil, err
	}
	c.state = Initialized
	return c, nil
}

func (c *Context) initialise(window gfx.Window, shaders gfx.ShaderSource) error {
	var err error
	cfg := c.configuration

	instanceCfg := cfg.Instance
	instanceCfg.Extensions = appendUnique(instanceCfg.Extensions, window.VulkanGetInstanceExtensions()...)

	/* Instance */
	if c.instance, err = CreateInstance(c.driver, instanceCfg); err != nil {
		return err
	}
	c.log.WithField("stage", "instance").Debug("created")

	/* Debug callback */
	if instanceCfg.DebugMode {
		if c.debugCallback, err = CreateDebugCallback(c.driver, c.instance, c.log); err != nil {
			return err
		}
		c.log.WithField("stage", "debug callback").Debug("created")
	}

	/* Surface */
	if c.surface, err = CreateSurface(c.instance, window); err != nil {
		return err
	}
	c.log.WithField("stage", "surface").Debug("created")

	/* Physical device */
	extensions := cfg.Renderer.DeviceExtensions
	if c.physicalDevice, err = PickPhysicalDevice(c.driver, c.instance, c.surface, extensions); err != nil {
		return err
	}
	props := c.driver.PhysicalDeviceProperties(c.physicalDevice)
	c.log.WithFields(logrus.Fields{"stage": "physical device", "name": props.Name}).Debug("selected")

	/* Logical device */
	if c.device, err = CreateLogicalDevice(c.driver, c.physicalDevice, instanceCfg, extensions, c.surface); err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"stage":    "device",
		"graphics": c.device.Indices.Graphics,
		"present":  c.device.Indices.Present,
	}).Debug("created")

	/* Swapchain */
	support, err := QuerySurfaceSupport(c.driver, c.physicalDevice, c.surface)
	if err != nil {
		return stageError(ErrSwapchainCreation, err, "surface query")
	}
	width, height := window.GetSize()
	desc := ChooseSwapchain(support, gfx.Extent2D{Width: uint32(width), Height: uint32(height)}, c.device.Indices)
	c.swapchain, err = CreateSwapchain(c.driver, c.device.Handle, c.surface, desc)
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"stage":   "swapchain",
		"images":  len(c.swapchain.Images),
		"extent":  desc.Extent,
		"present": desc.PresentMode,
	}).Debug("created")

	/* Image views */
	c.imageViews, err = CreateImageViews(c.driver, c.device.Handle, desc.Format.Format, c.swapchain.Images)
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{"stage": "image views", "count": len(c.imageViews)}).Debug("created")

	/* Render pass */
	if c.renderPass, err = CreateRenderPass(c.driver, c.device.Handle, desc.Format.Format); err != nil {
		return err
	}
	c.log.WithField("stage", "render pass").Debug("created")

	/* Pipeline layout */
	if c.pipelineLayout, err = CreatePipelineLayout(c.driver, c.device.Handle, shaders, desc.Extent); err != nil {
		return err
	}
	c.log.WithField("stage", "pipeline layout").Debug("created")

	return nil
}

// Destroy releases everything in reverse order of creation. Objects
// that were never created are skipped and later calls do nothing.
func (c *Context) Destroy() {
	if c.state == TornDown {
		return
	}
	defer func() {
		c.state = TornDown
	}()

	if c.device != nil && c.device.Handle != nil {
		if err := c.driver.DeviceWaitIdle(c.device.Handle); err != nil {
			c.log.WithError(err).Warn("vk.DeviceWaitIdle() failed before teardown")
		}
	}

	if c.pipelineLayout != nil {
		c.driver.DestroyPipelineLayout(c.device.Handle, c.pipelineLayout.Handle)
		c.pipelineLayout = nil
		c.log.WithField("stage", "pipeline layout").Debug("destroyed")
	}
	if c.renderPass != nil {
		c.driver.DestroyRenderPass(c.device.Handle, c.renderPass)
		c.renderPass = nil
		c.log.WithField("stage", "render pass").Debug("destroyed")
	}
	for _, view := range c.imageViews {
		c.driver.DestroyImageView(c.device.Handle, view)
	}
	if len(c.imageViews) > 0 {
		c.log.WithFields(logrus.Fields{"stage": "image views", "count": len(c.imageViews)}).Debug("destroyed")
		c.imageViews = nil
	}
	if c.swapchain != nil {
		c.driver.DestroySwapchain(c.device.Handle, c.swapchain.Handle)
		c.swapchain = nil
		c.log.WithField("stage", "swapchain").Debug("destroyed")
	}
	if c.device != nil {
		c.driver.DestroyDevice(c.device.Handle)
		c.device = nil
		c.log.WithField("stage", "device").Debug("destroyed")
	}
	c.physicalDevice = nil
	if c.surface != vk.NullSurface {
		c.driver.DestroySurface(c.instance, c.surface)
		c.surface = vk.NullSurface
		c.log.WithField("stage", "surface").Debug("destroyed")
	}
	if c.debugCallback != vk.NullDebugReportCallback {
		c.driver.DestroyDebugReportCallback(c.instance, c.debugCallback)
		c.debugCallback = vk.NullDebugReportCallback
		c.log.WithField("stage", "debug callback").Debug("destroyed")
	}
	if c.instance != nil {
		c.driver.DestroyInstance(c.instance)
		c.instance = nil
		c.log.WithField("stage", "instance").Debug("destroyed")
	}
}

// State returns the lifecycle state
func (c *Context) State() State {
	return c.state
}

// Instance returns the Vulkan instance
func (c *Context) Instance() vk.Instance {
	return c.instance
}

// Surface returns the window surface
func (c *Context) Surface() vk.Surface {
	return c.surface
}

// PhysicalDevice returns the selected physical device
func (c *Context) PhysicalDevice() vk.PhysicalDevice {
	return c.physicalDevice
}

// Device returns the logical device and its queues
func (c *Context) Device() *Device {
	return c.device
}

// Swapchain returns the swapchain and its images
func (c *Context) Swapchain() *Swapchain {
	return c.swapchain
}

// ImageViews returns one view per swapchain image
func (c *Context) ImageViews() []vk.ImageView {
	return c.imageViews
}

// RenderPass returns the render pass
func (c *Context) RenderPass() vk.RenderPass {
	return c.renderPass
}

// PipelineLayout returns the pipeline layout and the state built with it
func (c *Context) PipelineLayout() *PipelineLayout {
	return c.pipelineLayout
}

// ClearValue is the colour the render pass clears its attachment to
func (c *Context) ClearValue() vk.ClearValue {
	var value vk.ClearValue
	color := c.ClearColor()
	value.SetColor(color[:])
	return value
}

// ClearColor is the configured clear colour
func (c *Context) ClearColor() glm.Vec4 {
	return c.configuration.Renderer.ClearColor
}
