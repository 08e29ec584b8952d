// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/devblok/vkboot/src/gfx"
	vk "github.com/vulkan-go/vulkan"
)

const shaderEntryPoint = "main"

// FixedFunctionState is the non-programmable pipeline state used by the
// triangle pipeline. Every value is fixed except the viewport extent.
type FixedFunctionState struct {
	VertexInput   vk.PipelineVertexInputStateCreateInfo
	InputAssembly vk.PipelineInputAssemblyStateCreateInfo
	Viewport      vk.Viewport
	Scissor       vk.Rect2D
	ViewportState vk.PipelineViewportStateCreateInfo
	Rasterization vk.PipelineRasterizationStateCreateInfo
	Multisample   vk.PipelineMultisampleStateCreateInfo
	DepthStencil  vk.PipelineDepthStencilStateCreateInfo
	BlendState    vk.PipelineColorBlendAttachmentState
	ColorBlend    vk.PipelineColorBlendStateCreateInfo
}

// NewFixedFunctionState assembles the fixed-function state for extent
func NewFixedFunctionState(extent vk.Extent2D) FixedFunctionState {
	var s FixedFunctionState

	s.VertexInput = vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   0,
		VertexAttributeDescriptionCount: 0,
	}

	s.InputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	s.Viewport = vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	s.Scissor = vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	s.ViewportState = vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{s.Viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{s.Scissor},
	}

	s.Rasterization = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	s.Multisample = vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples:  vk.SampleCount1Bit,
		SampleShadingEnable:   vk.False,
		MinSampleShading:      0.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	stencil := vk.StencilOpState{
		FailOp:      vk.StencilOpKeep,
		PassOp:      vk.StencilOpKeep,
		DepthFailOp: vk.StencilOpKeep,
		CompareOp:   vk.CompareOpAlways,
	}
	s.DepthStencil = vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.False,
		DepthWriteEnable:      vk.False,
		DepthCompareOp:        vk.CompareOpLessOrEqual,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		Front:                 stencil,
		Back:                  stencil,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
	}

	s.BlendState = vk.PipelineColorBlendAttachmentState{
		BlendEnable:         vk.False,
		SrcColorBlendFactor: vk.BlendFactorOne,
		DstColorBlendFactor: vk.BlendFactorZero,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	s.ColorBlend = vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{s.BlendState},
		BlendConstants:  [4]float32{0, 0, 0, 0},
	}

	return s
}

// CreateShaderModule wraps SPIR-V bytecode in a shader module. The
// bytecode must be a non-empty sequence of 32-bit words.
func CreateShaderModule(d Driver, device vk.Device, code []byte) (vk.ShaderModule, error) {
	if len(code) == 0 {
		return nil, stageError(ErrShaderModuleCreation, nil, "empty bytecode")
	}
	if len(code)%4 != 0 {
		return nil, stageError(ErrShaderModuleCreation, nil,
			fmt.Sprintf("bytecode length %d is not a multiple of 4", len(code)))
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    SliceUint32(code),
	}
	module, err := d.CreateShaderModule(device, &smci)
	if err != nil {
		return nil, stageError(ErrShaderModuleCreation, err, "vk.CreateShaderModule()")
	}
	return module, nil
}

// PipelineLayout is the created layout together with the state and
// shader stages that were assembled alongside it
type PipelineLayout struct {
	Handle vk.PipelineLayout
	State  FixedFunctionState
	Stages []vk.ShaderStageFlagBits
}

// CreatePipelineLayout loads both shader stages, assembles the
// fixed-function state for extent and creates an empty pipeline layout.
// The shader modules only live for the duration of this call.
func CreatePipelineLayout(d Driver, device vk.Device, shaders gfx.ShaderSource, extent vk.Extent2D) (*PipelineLayout, error) {
	vertCode, err := shaders.Vertex()
	if err != nil {
		return nil, stageError(ErrShaderModuleCreation, err, "vertex shader")
	}
	fragCode, err := shaders.Fragment()
	if err != nil {
		return nil, stageError(ErrShaderModuleCreation, err, "fragment shader")
	}

	vertModule, err := CreateShaderModule(d, device, vertCode)
	if err != nil {
		return nil, err
	}
	defer d.DestroyShaderModule(device, vertModule)

	fragModule, err := CreateShaderModule(d, device, fragCode)
	if err != nil {
		return nil, err
	}
	defer d.DestroyShaderModule(device, fragModule)

	// Stage descriptions reference the modules and are only
	// meaningful until the deferred destroys above run.
	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vertModule,
		PName:  safeString(shaderEntryPoint),
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: fragModule,
		PName:  safeString(shaderEntryPoint),
	}}

	layout := &PipelineLayout{
		State: NewFixedFunctionState(extent),
	}
	for _, stage := range stages {
		layout.Stages = append(layout.Stages, stage.Stage)
	}

	plci := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         0,
		PushConstantRangeCount: 0,
	}
	if layout.Handle, err = d.CreatePipelineLayout(device, &plci); err != nil {
		return nil, stageError(ErrPipelineLayoutCreation, err, "vk.CreatePipelineLayout()")
	}
	return layout, nil
}
