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

// SwapchainDescriptor holds every choice made for the swapchain
// before it is created
type SwapchainDescriptor struct {
	Format         vk.SurfaceFormat
	PresentMode    vk.PresentMode
	Extent         vk.Extent2D
	ImageCount     uint32
	SharingMode    vk.SharingMode
	QueueFamilies  []uint32
	PreTransform   vk.SurfaceTransformFlagBits
	CompositeAlpha vk.CompositeAlphaFlagBits
}

// ChooseSwapchain derives the swapchain parameters from what the
// surface supports, the window size and the queue families in use
func ChooseSwapchain(support SurfaceSupport, window gfx.Extent2D, indices QueueFamilyIndices) SwapchainDescriptor {
	desc := SwapchainDescriptor{
		Format:         ChooseSurfaceFormat(support.Formats),
		PresentMode:    ChoosePresentMode(support.PresentModes),
		Extent:         ChooseExtent(support.Capabilities, window),
		ImageCount:     ChooseImageCount(support.Capabilities),
		PreTransform:   choosePreTransform(support.Capabilities),
		CompositeAlpha: chooseCompositeAlpha(support.Capabilities),
	}
	if indices.Shared() {
		desc.SharingMode = vk.SharingModeExclusive
	} else {
		desc.SharingMode = vk.SharingModeConcurrent
		desc.QueueFamilies = []uint32{indices.Graphics, indices.Present}
	}
	return desc
}

// ChooseSurfaceFormat prefers B8G8R8A8 unorm with sRGB non-linear colour
// space, otherwise the first offered format
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) == 0 {
		return vk.SurfaceFormat{}
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox, and falls back to FIFO
// which every implementation has to support
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent uses the surface's current extent, unless the surface
// leaves it to the application, then the window size is clamped into
// the supported range
func ChooseExtent(caps SurfaceCapabilities, window gfx.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image above the minimum. A maximum
// of zero means there is no upper limit.
func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func choosePreTransform(caps SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if caps.SupportedTransforms&vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit) != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

func chooseCompositeAlpha(caps SurfaceCapabilities) vk.CompositeAlphaFlagBits {
	for _, alpha := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(alpha) != 0 {
			return alpha
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func clamp(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Swapchain is a created swapchain with the images it owns
type Swapchain struct {
	Handle     vk.Swapchain
	Descriptor SwapchainDescriptor
	Images     []vk.Image
}

// CreateSwapchain creates the swapchain described by desc and
// fetches its images. Images are owned by the swapchain.
func CreateSwapchain(d Driver, device vk.Device, surface vk.Surface, desc SwapchainDescriptor) (*Swapchain, error) {
	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    desc.ImageCount,
		ImageFormat:      desc.Format.Format,
		ImageColorSpace:  desc.Format.ColorSpace,
		ImageExtent:      desc.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: desc.SharingMode,
		PreTransform:     desc.PreTransform,
		CompositeAlpha:   desc.CompositeAlpha,
		PresentMode:      desc.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if desc.SharingMode == vk.SharingModeConcurrent {
		info.QueueFamilyIndexCount = uint32(len(desc.QueueFamilies))
		info.PQueueFamilyIndices = desc.QueueFamilies
	}

	handle, err := d.CreateSwapchain(device, &info)
	if err != nil {
		return nil, stageError(ErrSwapchainCreation, err, "vk.CreateSwapchain()")
	}

	swapchain := &Swapchain{
		Handle:     handle,
		Descriptor: desc,
	}
	if swapchain.Images, err = d.SwapchainImages(device, handle); err != nil {
		// the handle is still returned so the owner can destroy it
		return swapchain, stageError(ErrSwapchainCreation, err, "vk.GetSwapchainImages()")
	}
	return swapchain, nil
}

// CreateImageViews creates one 2D colour view per image. It stops at the
// first failure and returns the views created before it together with
// the error; releasing those is left to the owner.
func CreateImageViews(d Driver, device vk.Device, format vk.Format, images []vk.Image) ([]vk.ImageView, error) {
	views := make([]vk.ImageView, 0, len(images))
	for i, image := range images {
		info := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		view, err := d.CreateImageView(device, &info)
		if err != nil {
			return views, stageError(ErrViewCreation, err, fmt.Sprintf("vk.CreateImageView(): image %d", i))
		}
		views = append(views, view)
	}
	return views, nil
}
