package anvil

import (
	"fmt"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/anvil/gfxutil"
	"github.com/vkngwrapper/anvil/isl"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// ImageSurface is one hardware surface backing an image aspect, placed at a
// byte offset within the image's memory range.
type ImageSurface struct {
	Surf   *isl.Surf
	Offset int
}

// Image is a multi-aspect resource laid out onto one or more hardware
// surfaces sharing a single memory range.
type Image struct {
	Type     core1_0.ImageType
	Format   core1_0.Format
	Extent   core1_0.Extent3D
	Levels   int
	ArrayLen int
	Samples  int
	Tiling   core1_0.ImageTiling

	// Usage is the usage the image was created with. FullUsage widens it to
	// every way the driver itself may touch the image while servicing
	// transfers and resolves.
	Usage     core1_0.ImageUsageFlags
	FullUsage core1_0.ImageUsageFlags

	// Size is the memory range the image requires, Alignment its base
	// alignment requirement
	Size      int
	Alignment int

	colorSurface   ImageSurface
	depthSurface   ImageSurface
	stencilSurface ImageSurface
}

// fullImageUsage widens the created usage to cover driver-internal paths:
// transfer destinations are written through render-target states, and
// multisampled color attachments are sampled during resolves.
func fullImageUsage(usage core1_0.ImageUsageFlags, properties FormatProperties, samples int) core1_0.ImageUsageFlags {
	if usage&core1_0.ImageUsageTransferDst != 0 {
		usage |= core1_0.ImageUsageColorAttachment
		if properties.HasDepth || properties.HasStencil {
			usage |= core1_0.ImageUsageDepthStencilAttachment
		}
	}
	if samples > 1 && usage&core1_0.ImageUsageColorAttachment != 0 {
		usage |= core1_0.ImageUsageSampled
	}
	return usage
}

// chooseSurfUsage translates API usage into layout-engine usage for one
// aspect of the image.
func chooseSurfUsage(createFlags core1_0.ImageCreateFlags, usage core1_0.ImageUsageFlags, aspect core1_0.ImageAspectFlags) isl.UsageFlags {
	var surfUsage isl.UsageFlags

	if usage&core1_0.ImageUsageSampled != 0 {
		surfUsage |= isl.UsageTextureBit
	}
	if usage&core1_0.ImageUsageInputAttachment != 0 {
		surfUsage |= isl.UsageTextureBit
	}
	if usage&core1_0.ImageUsageColorAttachment != 0 {
		surfUsage |= isl.UsageRenderTargetBit
	}
	if usage&core1_0.ImageUsageStorage != 0 {
		surfUsage |= isl.UsageStorageBit
	}
	if createFlags&core1_0.ImageCreateCubeCompatible != 0 {
		surfUsage |= isl.UsageCubeBit
	}

	if usage&core1_0.ImageUsageDepthStencilAttachment != 0 {
		switch aspect {
		case core1_0.ImageAspectDepth:
			surfUsage |= isl.UsageDepthBit
		case core1_0.ImageAspectStencil:
			surfUsage |= isl.UsageStencilBit
		}
	}

	if usage&core1_0.ImageUsageTransferSrc != 0 {
		// Blit sources are sampled by the transfer shaders
		surfUsage |= isl.UsageTextureBit
	}
	if usage&core1_0.ImageUsageTransferDst != 0 {
		// Blit destinations are bound as render targets
		surfUsage |= isl.UsageRenderTargetBit
	}

	return surfUsage
}

func surfDimForImageType(imageType core1_0.ImageType) isl.SurfDim {
	switch imageType {
	case core1_0.ImageType1D:
		return isl.SurfDim1D
	case core1_0.ImageType3D:
		return isl.SurfDim3D
	default:
		return isl.SurfDim2D
	}
}

func tilingFlagsForImageTiling(tiling core1_0.ImageTiling) isl.TilingFlags {
	if tiling == core1_0.ImageTilingLinear {
		return isl.TilingLinearBit
	}
	return isl.TilingAnyMask
}

// makeSurface lays out one aspect of the image and appends it to the image's
// memory range at the surface's own alignment.
func (d *Device) makeSurface(createInfo core1_0.ImageCreateInfo, aspect core1_0.ImageAspectFlags, image *Image) (*ImageSurface, error) {
	format, _, err := GetISLFormat(createInfo.Format, aspect, createInfo.Tiling)
	if err != nil {
		return nil, err
	}

	surf, err := d.islDevice.SurfInit(&isl.SurfInitInfo{
		Dim:         surfDimForImageType(createInfo.ImageType),
		Format:      format,
		Width:       createInfo.Extent.Width,
		Height:      createInfo.Extent.Height,
		Depth:       createInfo.Extent.Depth,
		Levels:      createInfo.MipLevels,
		ArrayLen:    createInfo.ArrayLayers,
		Samples:     int(createInfo.Samples),
		Usage:       chooseSurfUsage(createInfo.Flags, image.FullUsage, aspect),
		TilingFlags: tilingFlagsForImageTiling(createInfo.Tiling),
	})
	if err != nil {
		return nil, err
	}

	surface := &ImageSurface{
		Surf:   surf,
		Offset: gfxutil.AlignUp(image.Size, uint(surf.Alignment)),
	}

	image.Size = surface.Offset + surf.Size
	if surf.Alignment > image.Alignment {
		image.Alignment = surf.Alignment
	}

	return surface, nil
}

// CreateImage lays out a new image and returns a handle to it. No memory is
// bound; Image.Size and Image.Alignment describe the range the consumer must
// provide.
func (d *Device) CreateImage(createInfo core1_0.ImageCreateInfo) (ImageHandle, common.VkResult, error) {
	if createInfo.MipLevels < 1 || createInfo.ArrayLayers < 1 {
		return 0, core1_0.VKErrorUnknown, cerrors.Newf(
			"attempted to create an image with %d mip levels and %d array layers",
			createInfo.MipLevels, createInfo.ArrayLayers)
	}
	if createInfo.Extent.Width < 1 || createInfo.Extent.Height < 1 || createInfo.Extent.Depth < 1 {
		return 0, core1_0.VKErrorUnknown, cerrors.Newf(
			"attempted to create an image with degenerate extent %+v", createInfo.Extent)
	}

	properties, err := GetFormatProperties(createInfo.Format)
	if err != nil {
		return 0, core1_0.VKErrorFormatNotSupported, err
	}

	samples := int(createInfo.Samples)
	if samples == 0 {
		samples = 1
	}

	image := &Image{
		Type:      createInfo.ImageType,
		Format:    createInfo.Format,
		Extent:    createInfo.Extent,
		Levels:    createInfo.MipLevels,
		ArrayLen:  createInfo.ArrayLayers,
		Samples:   samples,
		Tiling:    createInfo.Tiling,
		Usage:     createInfo.Usage,
		FullUsage: fullImageUsage(createInfo.Usage, properties, samples),
	}
	createInfo.Samples = core1_0.SampleCountFlags(samples)

	if properties.HasDepth || properties.HasStencil {
		if properties.HasDepth {
			surface, err := d.makeSurface(createInfo, core1_0.ImageAspectDepth, image)
			if err != nil {
				return 0, core1_0.VKErrorUnknown, err
			}
			image.depthSurface = *surface
		}
		if properties.HasStencil {
			surface, err := d.makeSurface(createInfo, core1_0.ImageAspectStencil, image)
			if err != nil {
				return 0, core1_0.VKErrorUnknown, err
			}
			image.stencilSurface = *surface
		}
	} else {
		surface, err := d.makeSurface(createInfo, core1_0.ImageAspectColor, image)
		if err != nil {
			return 0, core1_0.VKErrorUnknown, err
		}
		image.colorSurface = *surface
	}

	handle := ImageHandle(d.images.Put(image))
	return handle, core1_0.VKSuccess, nil
}

// Image resolves a handle to the image it refers to.
func (d *Device) Image(handle ImageHandle) (*Image, error) {
	return d.images.Get(Handle(handle))
}

// DestroyImage releases the image behind the handle. The handle is dead
// afterwards.
func (d *Device) DestroyImage(handle ImageHandle) error {
	_, err := d.images.Remove(Handle(handle))
	return err
}

// SurfaceForAspect returns the surface backing an aspect selection. A color
// request against a depth/stencil image resolves to the depth surface when
// one exists, which is how the transfer paths address such images. A combined
// depth/stencil selection resolves to depth.
func (i *Image) SurfaceForAspect(aspectMask core1_0.ImageAspectFlags) *ImageSurface {
	switch aspectMask {
	case core1_0.ImageAspectColor:
		if i.colorSurface.Surf != nil {
			return &i.colorSurface
		}
		if i.depthSurface.Surf != nil {
			return &i.depthSurface
		}
		return &i.stencilSurface
	case core1_0.ImageAspectDepth:
		return &i.depthSurface
	case core1_0.ImageAspectStencil:
		return &i.stencilSurface
	case core1_0.ImageAspectDepth | core1_0.ImageAspectStencil:
		return &i.depthSurface
	}

	panic(fmt.Sprintf("anvil: no surface matches aspect mask %s", aspectMask))
}

// SubresourceLayout reports the placement of one subresource within the
// image's memory range. Only the base mip of the base layer can be queried;
// asking for any other subresource is a contract violation.
func (i *Image) SubresourceLayout(subresource core1_0.ImageSubresource) core1_0.SubresourceLayout {
	if subresource.MipLevel != 0 || subresource.ArrayLayer != 0 {
		panic("anvil: subresource layout queries are limited to mip 0, layer 0")
	}

	surface := i.SurfaceForAspect(subresource.AspectMask)
	if surface.Surf == nil {
		panic(fmt.Sprintf("anvil: image has no surface for aspect mask %s", subresource.AspectMask))
	}

	return core1_0.SubresourceLayout{
		Offset:     surface.Offset,
		Size:       surface.Surf.Size,
		RowPitch:   surface.Surf.RowPitch,
		ArrayPitch: surface.Surf.ArrayPitch(),
		DepthPitch: surface.Surf.ArrayPitch(),
	}
}
