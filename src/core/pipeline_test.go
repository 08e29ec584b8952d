// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"testing"

	"github.com/devblok/vkboot/src/core"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestCreateShaderModuleRejectsBadLength(t *testing.T) {
	d := newFakeDriver()
	device := vk.Device(newHandle())

	for _, code := range [][]byte{nil, {}, make([]byte, 7), make([]byte, 1), make([]byte, 10)} {
		module, err := core.CreateShaderModule(d, device, code)
		assert.ErrorIs(t, err, core.ErrShaderModuleCreation, "length %d", len(code))
		assert.Nil(t, module)
	}
	assert.Empty(t, d.calls, "bad bytecode never reaches the driver")
}

func TestCreateShaderModule(t *testing.T) {
	d := newFakeDriver()
	code := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

	module, err := core.CreateShaderModule(d, vk.Device(newHandle()), code)
	require.NoError(t, err)
	assert.NotNil(t, module)

	require.Len(t, d.shaderInfos, 1)
	info := d.shaderInfos[0]
	assert.Equal(t, uint(8), info.CodeSize)
	assert.Equal(t, []uint32{0x07230203, 0x00010000}, info.PCode)
}

func TestCreateShaderModuleRejected(t *testing.T) {
	d := newFakeDriver()
	d.fail["CreateShaderModule"] = true

	_, err := core.CreateShaderModule(d, vk.Device(newHandle()), make([]byte, 4))
	require.ErrorIs(t, err, core.ErrShaderModuleCreation)
	assert.Equal(t, errRejected, errors.Cause(errors.Unwrap(err)))
}

func TestFixedFunctionState(t *testing.T) {
	extent := vk.Extent2D{Width: 800, Height: 600}
	s := core.NewFixedFunctionState(extent)

	assert.Zero(t, s.VertexInput.VertexBindingDescriptionCount)
	assert.Zero(t, s.VertexInput.VertexAttributeDescriptionCount)

	assert.Equal(t, vk.PrimitiveTopologyTriangleList, s.InputAssembly.Topology)
	assert.Equal(t, vk.Bool32(vk.False), s.InputAssembly.PrimitiveRestartEnable)

	assert.Equal(t, vk.Viewport{Width: 800, Height: 600, MinDepth: 0, MaxDepth: 1}, s.Viewport)
	assert.Equal(t, vk.Rect2D{Extent: extent}, s.Scissor)
	assert.Equal(t, uint32(1), s.ViewportState.ViewportCount)
	assert.Equal(t, uint32(1), s.ViewportState.ScissorCount)

	assert.Equal(t, vk.PolygonModeFill, s.Rasterization.PolygonMode)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), s.Rasterization.CullMode)
	assert.Equal(t, vk.FrontFaceClockwise, s.Rasterization.FrontFace)
	assert.Equal(t, float32(1), s.Rasterization.LineWidth)
	assert.Equal(t, vk.Bool32(vk.False), s.Rasterization.DepthBiasEnable)

	assert.Equal(t, vk.SampleCount1Bit, s.Multisample.RasterizationSamples)
	assert.Equal(t, vk.Bool32(vk.False), s.Multisample.SampleShadingEnable)

	assert.Equal(t, vk.Bool32(vk.False), s.DepthStencil.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.False), s.DepthStencil.DepthWriteEnable)
	assert.Equal(t, vk.CompareOpLessOrEqual, s.DepthStencil.DepthCompareOp)
	assert.Equal(t, vk.StencilOpKeep, s.DepthStencil.Front.FailOp)
	assert.Equal(t, vk.CompareOpAlways, s.DepthStencil.Back.CompareOp)

	assert.Equal(t, vk.Bool32(vk.False), s.BlendState.BlendEnable)
	assert.Equal(t, vk.BlendFactorOne, s.BlendState.SrcColorBlendFactor)
	assert.Equal(t, vk.BlendFactorZero, s.BlendState.DstColorBlendFactor)
	assert.Equal(t, vk.BlendOpAdd, s.BlendState.AlphaBlendOp)
	assert.Equal(t, vk.ColorComponentFlags(vk.ColorComponentRBit|vk.ColorComponentGBit|
		vk.ColorComponentBBit|vk.ColorComponentABit), s.BlendState.ColorWriteMask)

	assert.Equal(t, vk.Bool32(vk.False), s.ColorBlend.LogicOpEnable)
	assert.Equal(t, vk.LogicOpCopy, s.ColorBlend.LogicOp)
	assert.Equal(t, uint32(1), s.ColorBlend.AttachmentCount)
}

func TestCreatePipelineLayout(t *testing.T) {
	d := newFakeDriver()
	extent := vk.Extent2D{Width: 640, Height: 480}

	layout, err := core.CreatePipelineLayout(d, vk.Device(newHandle()), validShaders(), extent)
	require.NoError(t, err)
	assert.NotNil(t, layout.Handle)
	assert.Equal(t, []vk.ShaderStageFlagBits{vk.ShaderStageVertexBit, vk.ShaderStageFragmentBit}, layout.Stages)
	assert.Equal(t, float32(640), layout.State.Viewport.Width)

	require.NotNil(t, d.layoutInfo)
	assert.Zero(t, d.layoutInfo.SetLayoutCount)
	assert.Zero(t, d.layoutInfo.PushConstantRangeCount)

	assert.Equal(t, 2, d.count("CreateShaderModule"))
	assert.Equal(t, 2, d.count("DestroyShaderModule"))
	assert.Len(t, d.live, 1, "only the layout outlives the call")
	assert.Empty(t, d.faults)
}

func TestCreatePipelineLayoutBadFragment(t *testing.T) {
	d := newFakeDriver()
	shaders := validShaders()
	shaders.fragment = shaders.fragment[:7]

	layout, err := core.CreatePipelineLayout(d, vk.Device(newHandle()), shaders, vk.Extent2D{Width: 1, Height: 1})
	require.ErrorIs(t, err, core.ErrShaderModuleCreation)
	assert.Nil(t, layout)
	assert.Equal(t, []string{"CreateShaderModule", "DestroyShaderModule"}, d.calls)
	assert.Empty(t, d.live)
}

func TestCreatePipelineLayoutShaderSourceFails(t *testing.T) {
	d := newFakeDriver()
	shaders := validShaders()
	shaders.err = errors.New("no such file")

	_, err := core.CreatePipelineLayout(d, vk.Device(newHandle()), shaders, vk.Extent2D{})
	require.ErrorIs(t, err, core.ErrShaderModuleCreation)
	assert.Empty(t, d.calls)
}

func TestCreatePipelineLayoutRejected(t *testing.T) {
	d := newFakeDriver()
	d.fail["CreatePipelineLayout"] = true

	layout, err := core.CreatePipelineLayout(d, vk.Device(newHandle()), validShaders(), vk.Extent2D{Width: 1, Height: 1})
	require.ErrorIs(t, err, core.ErrPipelineLayoutCreation)
	assert.Nil(t, layout)
	assert.Equal(t, 2, d.count("DestroyShaderModule"))
	assert.Empty(t, d.live)
	assert.Empty(t, d.faults)
}
