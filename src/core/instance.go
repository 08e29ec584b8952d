// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	"github.com/devblok/vkboot/src/gfx"
	"github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

const (
	engineName           = "Koru3D"
	debugReportExtension = "VK_EXT_debug_report"
)

func instanceLayers(cfg InstanceConfiguration) []string {
	if cfg.DebugMode {
		return appendUnique(cfg.Layers, ValidationLayer)
	}
	return cfg.Layers
}

func instanceExtensions(cfg InstanceConfiguration) []string {
	if cfg.DebugMode {
		return appendUnique(cfg.Extensions, debugReportExtension)
	}
	return cfg.Extensions
}

// CreateInstance creates a Vulkan instance. With DebugMode the validation
// layer and the debug report extension are requested, and every requested
// layer must be offered by the loader.
func CreateInstance(d Driver, cfg InstanceConfiguration) (vk.Instance, error) {
	layers := instanceLayers(cfg)
	extensions := instanceExtensions(cfg)

	if len(layers) > 0 {
		available, err := d.InstanceLayers()
		if err != nil {
			return nil, stageError(ErrInitialization, err, "vk.EnumerateInstanceLayerProperties()")
		}
		for _, layer := range layers {
			if !contains(available, layer) {
				return nil, stageError(ErrInitialization, nil, "requested layer not available: "+layer)
			}
		}
	}

	name := cfg.ApplicationName
	if name == "" {
		name = engineName
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         vk.MakeVersion(1, 0, 0),
			ApplicationVersion: vk.MakeVersion(1, 0, 0),
			PApplicationName:   safeString(name),
			PEngineName:        safeString(engineName),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	instance, err := d.CreateInstance(&instanceInfo)
	if err != nil {
		return nil, stageError(ErrInitialization, err, "vk.CreateInstance()")
	}
	return instance, nil
}

// CreateSurface asks the window for a presentation surface
func CreateSurface(instance vk.Instance, window gfx.Window) (vk.Surface, error) {
	if width, height := window.GetSize(); width <= 0 || height <= 0 {
		return vk.NullSurface, stageError(ErrSurfaceCreation, nil, "window has no drawable area")
	}
	pSurface, err := window.VulkanCreateSurface(instance)
	if err != nil {
		return vk.NullSurface, stageError(ErrSurfaceCreation, err, "VulkanCreateSurface()")
	}
	if pSurface == nil {
		return vk.NullSurface, stageError(ErrSurfaceCreation, nil, "VulkanCreateSurface(): nil surface")
	}
	return vk.SurfaceFromPointer(uintptr(pSurface)), nil
}

// CreateDebugCallback registers a debug report callback that forwards
// validation messages to logger
func CreateDebugCallback(d Driver, instance vk.Instance, logger logrus.FieldLogger) (vk.DebugReportCallback, error) {
	info := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit | vk.DebugReportDebugBit),
		PfnCallback: debugReportFunc(logger),
	}
	callback, err := d.CreateDebugReportCallback(instance, &info)
	if err != nil {
		return vk.NullDebugReportCallback, stageError(ErrInitialization, err, "vk.CreateDebugReportCallback()")
	}
	return callback, nil
}

func debugReportFunc(logger logrus.FieldLogger) vk.DebugReportCallbackFunc {
	return func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint64, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

		entry := logger.WithFields(logrus.Fields{
			"layer": pLayerPrefix,
			"code":  messageCode,
		})
		switch {
		case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
			entry.Error(pMessage)
		case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
			entry.Warn(pMessage)
		case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
			entry.Info(pMessage)
		default:
			entry.Debug(pMessage)
		}
		return vk.Bool32(vk.False)
	}
}
