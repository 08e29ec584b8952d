// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/devblok/vkboot/src/core"
	"github.com/devblok/vkboot/src/gfx"
	"github.com/devblok/vkboot/src/gfx/vkr"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

var (
	cpuProfile = flag.String("cpuprof", "", "Profile CPU usage to file")
	envFile    = flag.String("env", ".env", "Configuration file with KORU_* settings")
	debug      = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	shaderName = flag.String("shader", "", "Name of the shader pair to load, first found when empty")
)

func newWindow(cfg core.Configuration) (*sdl.Window, error) {
	return sdl.CreateWindow(cfg.Instance.ApplicationName,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Renderer.ScreenWidth),
		int32(cfg.Renderer.ScreenHeight),
		sdl.WINDOW_VULKAN)
}

func loadShaders(cfg core.RendererConfiguration) (gfx.ShaderSource, error) {
	if cfg.ShaderArchive != "" {
		return core.OpenShaderArchive(cfg.ShaderArchive, *shaderName)
	}
	return core.NewShaderBox(cfg.ShaderDirectory, *shaderName)
}

func main() {
	defer closer.Close()
	flag.Parse()

	configuration, err := core.LoadConfiguration(*envFile)
	if err != nil {
		closer.Fatalln("configuration:", err)
	}
	if *debug {
		configuration.Instance.DebugMode = true
	}
	log.SetLevel(configuration.LogLevel)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			closer.Fatalln(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			closer.Fatalln(err)
		}
		closer.Bind(pprof.StopCPUProfile)
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
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

	window, err := newWindow(configuration)
	if err != nil {
		closer.Fatalln("sdl.CreateWindow():", err)
	}
	closer.Bind(func() {
		window.Destroy()
	})

	shaders, err := loadShaders(configuration.Renderer)
	if err != nil {
		closer.Fatalln("shaders:", err)
	}
	if r, ok := shaders.(gfx.Releasable); ok {
		closer.Bind(r.Release)
	}

	ctx, err := core.NewContext(vkr.NewDriver(), window, shaders, configuration,
		core.WithLogger(log.StandardLogger()))
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(ctx.Destroy)

	log.WithFields(log.Fields{
		"images": len(ctx.ImageViews()),
		"extent": ctx.Swapchain().Descriptor.Extent,
		"clear":  ctx.ClearColor(),
	}).Info("renderer ready")

	timeService := core.NewTime(configuration.Time)
	closer.Bind(timeService.Stop)

	/* Event loop */
EventLoop:
	for timeService.NextPoll() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch et := event.(type) {
			case *sdl.KeyboardEvent:
				if et.Keysym.Sym == sdl.K_ESCAPE {
					break EventLoop
				}
			case *sdl.QuitEvent:
				break EventLoop
			}
		}
	}
	log.WithFields(log.Fields{
		"uptime": timeService.Uptime(),
		"polls":  timeService.Polls(),
	}).Info("event loop exited")
}
