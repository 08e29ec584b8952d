// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	vk "github.com/vulkan-go/vulkan"
)

// CreateRenderPass creates a single subpass render pass with one colour
// attachment that is cleared on load and left ready for presentation.
func CreateRenderPass(d Driver, device vk.Device, colorFormat vk.Format) (vk.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorReferences := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorReferences)),
		PColorAttachments:    colorReferences,
	}}

	// TODO: no subpass dependency guards the UNDEFINED -> COLOR_ATTACHMENT
	// transition against image acquisition. The frame loop has to add one
	// waiting on the colour attachment output stage before it submits work.
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
	}

	renderPass, err := d.CreateRenderPass(device, &renderPassInfo)
	if err != nil {
		return nil, stageError(ErrRenderPassCreation, err, "vk.CreateRenderPass()")
	}
	return renderPass, nil
}
