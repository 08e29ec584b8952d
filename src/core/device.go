// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// QueueFamilyIndices is the resolved pair of queue families used for
// graphics and presentation. They may be the same family.
type QueueFamilyIndices struct {
	Graphics uint32
	Present  uint32
}

// Shared reports whether graphics and presentation use one family
func (q QueueFamilyIndices) Shared() bool {
	return q.Graphics == q.Present
}

// Unique returns the distinct family indices, graphics first
func (q QueueFamilyIndices) Unique() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

// FindQueueFamilies walks the queue families of device in order. A family
// that does both graphics and presentation to surface wins outright,
// otherwise the first graphics family and the first present family are
// taken. ok is false unless both were found.
func FindQueueFamilies(d Driver, device vk.PhysicalDevice, surface vk.Surface) (indices QueueFamilyIndices, ok bool, err error) {
	var graphicsFound, presentFound bool
	for i, family := range d.QueueFamilies(device) {
		if family.QueueCount == 0 {
			continue
		}
		supported, err := d.SurfaceSupport(device, uint32(i), surface)
		if err != nil {
			return QueueFamilyIndices{}, false, err
		}
		if family.Graphics && supported {
			return QueueFamilyIndices{Graphics: uint32(i), Present: uint32(i)}, true, nil
		}
		if !graphicsFound && family.Graphics {
			indices.Graphics = uint32(i)
			graphicsFound = true
		}
		if !presentFound && supported {
			indices.Present = uint32(i)
			presentFound = true
		}
	}
	if graphicsFound && presentFound {
		return indices, true, nil
	}
	return QueueFamilyIndices{}, false, nil
}

// DeviceIsSuitable checks if the device given is suitable
// for the rendering pipeline. If not suitable string contains the reason
func DeviceIsSuitable(d Driver, device vk.PhysicalDevice, surface vk.Surface, requiredExtensions []string) (bool, string) {
	families := d.QueueFamilies(device)
	var hasGraphics bool
	for _, f := range families {
		if f.Graphics && f.QueueCount > 0 {
			hasGraphics = true
			break
		}
	}
	if !hasGraphics {
		return false, "no queue family with graphics support"
	}

	if _, ok, err := FindQueueFamilies(d, device, surface); err != nil {
		return false, "vk.GetPhysicalDeviceSurfaceSupport(): " + err.Error()
	} else if !ok {
		return false, "no queue family can present to the surface"
	}

	available, err := d.DeviceExtensions(device)
	if err != nil {
		return false, "vk.EnumerateDeviceExtensionProperties(): " + err.Error()
	}
	var missing []string
	for _, ext := range requiredExtensions {
		if !contains(available, ext) {
			missing = append(missing, ext)
		}
	}
	if len(missing) > 0 {
		return false, "missing extensions: " + strings.Join(missing, ", ")
	}

	support, err := QuerySurfaceSupport(d, device, surface)
	if err != nil {
		return false, "surface query failed: " + err.Error()
	}
	if len(support.Formats) == 0 {
		return false, "surface reports no formats"
	}
	if len(support.PresentModes) == 0 {
		return false, "surface reports no present modes"
	}

	return true, ""
}

// PickPhysicalDevice returns the first enumerated device that passes
// DeviceIsSuitable. There is no ranking between suitable devices.
func PickPhysicalDevice(d Driver, instance vk.Instance, surface vk.Surface, requiredExtensions []string) (vk.PhysicalDevice, error) {
	devices, err := d.PhysicalDevices(instance)
	if err != nil {
		return nil, stageError(ErrNoSuitableDevice, err, "vk.EnumeratePhysicalDevices()")
	}
	if len(devices) == 0 {
		return nil, stageError(ErrNoSuitableDevice, nil, "no physical devices present")
	}

	reasons := make([]string, 0, len(devices))
	for i, device := range devices {
		suitable, reason := DeviceIsSuitable(d, device, surface, requiredExtensions)
		if suitable {
			return device, nil
		}
		reasons = append(reasons, fmt.Sprintf("device %d: %s", i, reason))
	}
	return nil, stageError(ErrNoSuitableDevice, nil, strings.Join(reasons, "; "))
}

// PhysicalDevicesInfo returns a report for every physical device
// along with whether it could be picked for surface
func PhysicalDevicesInfo(d Driver, instance vk.Instance, surface vk.Surface, requiredExtensions []string) ([]PhysicalDeviceInfo, error) {
	devices, err := d.PhysicalDevices(instance)
	if err != nil {
		return nil, stageError(ErrInitialization, err, "vk.EnumeratePhysicalDevices()")
	}
	pdi := make([]PhysicalDeviceInfo, len(devices))
	for i, device := range devices {
		pdi[i] = d.PhysicalDeviceProperties(device)
		pdi[i].Suitable, pdi[i].Reason = DeviceIsSuitable(d, device, surface, requiredExtensions)
	}
	return pdi, nil
}

// Device is a logical device together with the queues it was created with
type Device struct {
	Handle  vk.Device
	Indices QueueFamilyIndices

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
}

// CreateLogicalDevice creates a logical device with one queue per
// distinct family in the resolved QueueFamilyIndices.
func CreateLogicalDevice(d Driver, physical vk.PhysicalDevice, cfg InstanceConfiguration, extensions []string, surface vk.Surface) (*Device, error) {
	indices, ok, err := FindQueueFamilies(d, physical, surface)
	if err != nil {
		return nil, stageError(ErrDeviceCreation, err, "vk.GetPhysicalDeviceSurfaceSupport()")
	}
	if !ok {
		return nil, stageError(ErrDeviceCreation, nil, "queue families not resolved")
	}

	unique := indices.Unique()
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(unique))
	for _, family := range unique {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}
	if layers := instanceLayers(cfg); len(layers) > 0 {
		dci.EnabledLayerCount = uint32(len(layers))
		dci.PpEnabledLayerNames = safeStrings(layers)
	}

	handle, err := d.CreateDevice(physical, &dci)
	if err != nil {
		return nil, stageError(ErrDeviceCreation, err, "vk.CreateDevice()")
	}

	return &Device{
		Handle:        handle,
		Indices:       indices,
		GraphicsQueue: d.DeviceQueue(handle, indices.Graphics),
		PresentQueue:  d.DeviceQueue(handle, indices.Present),
	}, nil
}
