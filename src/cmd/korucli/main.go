// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"runtime"

	"github.com/devblok/vkboot/src/core"
	"github.com/devblok/vkboot/src/gfx/vkr"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

var (
	debug  = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	indent = flag.Bool("indent", false, "Indent the JSON output")
)

// korucli prints every physical device as JSON, including whether
// it could drive a window surface with the configured extensions.
func main() {
	defer closer.Close()
	flag.Parse()

	cfg, err := core.LoadConfiguration(".env")
	if err != nil {
		closer.Fatalln(err)
	}
	cfg.Instance.DebugMode = cfg.Instance.DebugMode || *debug
	log.SetLevel(cfg.LogLevel)

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		closer.Fatalln("sdl.Init():", err)
	}
	closer.Bind(sdl.Quit)
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		closer.Fatalln("sdl.VulkanLoadLibrary():", err)
	}
	closer.Bind(sdl.VulkanUnloadLibrary)

	if err := vkr.Init(sdl.VulkanGetVkGetInstanceProcAddr()); err != nil {
		closer.Fatalln(err)
	}

	window, err := sdl.CreateWindow("korucli", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Renderer.ScreenWidth), int32(cfg.Renderer.ScreenHeight), sdl.WINDOW_VULKAN|sdl.WINDOW_HIDDEN)
	if err != nil {
		closer.Fatalln("sdl.CreateWindow():", err)
	}
	closer.Bind(func() {
		window.Destroy()
	})

	driver := vkr.NewDriver()
	cfg.Instance.Extensions = append(cfg.Instance.Extensions, window.VulkanGetInstanceExtensions()...)
	instance, err := core.CreateInstance(driver, cfg.Instance)
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(func() {
		driver.DestroyInstance(instance)
	})

	surface, err := core.CreateSurface(instance, window)
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(func() {
		driver.DestroySurface(instance, surface)
	})

	info, err := core.PhysicalDevicesInfo(driver, instance, surface, cfg.Renderer.DeviceExtensions)
	if err != nil {
		closer.Fatalln(err)
	}

	var bytes []byte
	if *indent {
		bytes, err = json.MarshalIndent(info, "", "  ")
	} else {
		bytes, err = json.Marshal(info)
	}
	if err != nil {
		closer.Fatalln(err)
	}
	fmt.Printf("%s\n", bytes)
}
