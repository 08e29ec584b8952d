// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"strconv"
	"strings"

	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ValidationLayer is the layer requested when DebugMode is enabled.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Renderer RendererConfiguration

	LogLevel logrus.Level
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the delay in milliseconds between event polls
	EventPollDelay int
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	ApplicationName string

	// DebugMode enables validation layers and the debug report callback
	DebugMode bool

	// Extensions are the instance extensions, usually the ones
	// the window reports as required
	Extensions []string
	Layers     []string
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	DeviceExtensions []string

	ScreenWidth  uint32
	ScreenHeight uint32

	// ShaderDirectory holds *.vert.spv and *.frag.spv files.
	// ShaderArchive, when set, takes precedence.
	ShaderDirectory string
	ShaderArchive   string

	ClearColor glm.Vec4
}

// DefaultConfiguration returns the settings used when nothing is overridden
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  50,
		},
		Instance: InstanceConfiguration{
			ApplicationName: "Koru3D",
		},
		Renderer: RendererConfiguration{
			ScreenWidth:      800,
			ScreenHeight:     600,
			DeviceExtensions: []string{"VK_KHR_swapchain"},
			ShaderDirectory:  "./shaders",
			ClearColor:       glm.Vec4{0, 0, 0, 1},
		},
		LogLevel: logrus.InfoLevel,
	}
}

// Environment keys read by LoadConfiguration
const (
	EnvApplicationName = "KORU_APP_NAME"
	EnvDebug           = "KORU_DEBUG"
	EnvLayers          = "KORU_LAYERS"
	EnvWidth           = "KORU_WIDTH"
	EnvHeight          = "KORU_HEIGHT"
	EnvFPS             = "KORU_FPS"
	EnvEventPollDelay  = "KORU_EVENT_POLL_DELAY"
	EnvShaderDirectory = "KORU_SHADER_DIR"
	EnvShaderArchive   = "KORU_SHADER_ARCHIVE"
	EnvLogLevel        = "KORU_LOG_LEVEL"
	EnvClearColor      = "KORU_CLEAR_COLOR"
)

// LoadConfiguration starts from DefaultConfiguration, loads the given
// dotenv files (missing ones are skipped) and applies the KORU_*
// environment overrides.
func LoadConfiguration(files ...string) (Configuration, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Configuration{}, errors.Wrap(err, "godotenv.Load()")
		}
	}
	envy.Reload()

	cfg := DefaultConfiguration()
	cfg.Instance.ApplicationName = envy.Get(EnvApplicationName, cfg.Instance.ApplicationName)
	cfg.Renderer.ShaderDirectory = envy.Get(EnvShaderDirectory, cfg.Renderer.ShaderDirectory)
	cfg.Renderer.ShaderArchive = envy.Get(EnvShaderArchive, cfg.Renderer.ShaderArchive)

	if v := envy.Get(EnvDebug, ""); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Configuration{}, errors.Wrap(err, EnvDebug)
		}
		cfg.Instance.DebugMode = debug
	}
	if v := envy.Get(EnvLayers, ""); v != "" {
		cfg.Instance.Layers = splitList(v)
	}

	var err error
	if cfg.Renderer.ScreenWidth, err = envUint32(EnvWidth, cfg.Renderer.ScreenWidth); err != nil {
		return Configuration{}, err
	}
	if cfg.Renderer.ScreenHeight, err = envUint32(EnvHeight, cfg.Renderer.ScreenHeight); err != nil {
		return Configuration{}, err
	}
	if cfg.Time.FramesPerSecond, err = envInt(EnvFPS, cfg.Time.FramesPerSecond); err != nil {
		return Configuration{}, err
	}
	if cfg.Time.EventPollDelay, err = envInt(EnvEventPollDelay, cfg.Time.EventPollDelay); err != nil {
		return Configuration{}, err
	}

	if v := envy.Get(EnvLogLevel, ""); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return Configuration{}, errors.Wrap(err, EnvLogLevel)
		}
		cfg.LogLevel = level
	}

	if v := envy.Get(EnvClearColor, ""); v != "" {
		color, err := parseColor(v)
		if err != nil {
			return Configuration{}, errors.Wrap(err, EnvClearColor)
		}
		cfg.Renderer.ClearColor = color
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	v := envy.Get(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return n, nil
}

func envUint32(key string, def uint32) (uint32, error) {
	v := envy.Get(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return uint32(n), nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseColor reads "r,g,b,a" with components in [0,1]
func parseColor(v string) (glm.Vec4, error) {
	parts := splitList(v)
	if len(parts) != 4 {
		return glm.Vec4{}, errors.Errorf("expected 4 components, got %d", len(parts))
	}
	var color glm.Vec4
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return glm.Vec4{}, err
		}
		if f < 0 || f > 1 {
			return glm.Vec4{}, errors.Errorf("component %d out of range: %s", i, p)
		}
		color[i] = float32(f)
	}
	return color, nil
}
