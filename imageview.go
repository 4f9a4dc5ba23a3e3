package anvil

import (
	"fmt"

	"github.com/vkngwrapper/anvil/gfxutil"
	"github.com/vkngwrapper/anvil/isl"
	"github.com/vkngwrapper/anvil/statepool"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// ImageViewCreateInfo describes a view onto a subresource range of an image.
type ImageViewCreateInfo struct {
	Image    ImageHandle
	ViewType core1_0.ImageViewType
	Format   core1_0.Format

	// Components remaps the view's channels on top of the format's own
	// internal permutation
	Components core1_0.ComponentMapping

	SubresourceRange core1_0.ImageSubresourceRange
}

// ImageView is a shader-visible window onto one aspect of an image. It owns
// up to three encoded surface-state blocks, one per way the view can be
// bound.
type ImageView struct {
	Image  *Image
	Format isl.Format
	Extent core1_0.Extent3D

	// SamplerSurfaceState is bound for sampled and input-attachment reads,
	// ColorRTSurfaceState for render-target writes, and StorageSurfaceState
	// for storage-image access. A state with AllocSize 0 was not created.
	SamplerSurfaceState statepool.State
	ColorRTSurfaceState statepool.State
	StorageSurfaceState statepool.State

	// pooled marks states owned by the device pool rather than a transient
	// stream
	pooled bool
}

// remapSwizzle resolves one view component through the two swizzle layers.
// Identity falls through to the component's own channel; the constants are
// absolute; everything else routes through the format's internal permutation.
func remapSwizzle(swizzle core1_0.ComponentSwizzle, component core1_0.ComponentSwizzle, formatSwizzle isl.FormatSwizzle) isl.ChannelSelect {
	if swizzle == core1_0.ComponentSwizzleIdentity {
		swizzle = component
	}

	switch swizzle {
	case core1_0.ComponentSwizzleZero:
		return isl.ChannelSelectZero
	case core1_0.ComponentSwizzleOne:
		return isl.ChannelSelectOne
	case core1_0.ComponentSwizzleRed:
		return formatSwizzle.R
	case core1_0.ComponentSwizzleGreen:
		return formatSwizzle.G
	case core1_0.ComponentSwizzleBlue:
		return formatSwizzle.B
	case core1_0.ComponentSwizzleAlpha:
		return formatSwizzle.A
	}

	panic(fmt.Sprintf("anvil: unknown component swizzle %d", swizzle))
}

func resolveComponentMapping(components core1_0.ComponentMapping, formatSwizzle isl.FormatSwizzle) [4]isl.ChannelSelect {
	return [4]isl.ChannelSelect{
		remapSwizzle(components.R, core1_0.ComponentSwizzleRed, formatSwizzle),
		remapSwizzle(components.G, core1_0.ComponentSwizzleGreen, formatSwizzle),
		remapSwizzle(components.B, core1_0.ComponentSwizzleBlue, formatSwizzle),
		remapSwizzle(components.A, core1_0.ComponentSwizzleAlpha, formatSwizzle),
	}
}

// validateViewAspect enforces the aspect rules for views: a view names
// exactly the aspects its image can serve through a single surface.
func validateViewAspect(image *Image, aspectMask core1_0.ImageAspectFlags) {
	hasColor := image.colorSurface.Surf != nil
	hasDepth := image.depthSurface.Surf != nil
	hasStencil := image.stencilSurface.Surf != nil

	switch {
	case hasColor:
		if aspectMask != core1_0.ImageAspectColor {
			panic(fmt.Sprintf("anvil: aspect mask %s is invalid for a color image", aspectMask))
		}
	case hasDepth && hasStencil:
		if aspectMask&^(core1_0.ImageAspectDepth|core1_0.ImageAspectStencil) != 0 || aspectMask == 0 {
			panic(fmt.Sprintf("anvil: aspect mask %s is invalid for a depth/stencil image", aspectMask))
		}
	case hasDepth:
		if aspectMask != core1_0.ImageAspectDepth {
			panic(fmt.Sprintf("anvil: aspect mask %s is invalid for a depth-only image", aspectMask))
		}
	case hasStencil:
		if aspectMask != core1_0.ImageAspectStencil {
			panic(fmt.Sprintf("anvil: aspect mask %s is invalid for a stencil-only image", aspectMask))
		}
	}
}

// CreateImageView encodes the surface states for a view of an image. States
// are cut from the device pool unless a transient stream is provided, in
// which case they live until the stream is reset.
func (d *Device) CreateImageView(createInfo ImageViewCreateInfo, transient *statepool.Stream) (ImageViewHandle, common.VkResult, error) {
	image, err := d.images.Get(Handle(createInfo.Image))
	if err != nil {
		return 0, core1_0.VKErrorUnknown, err
	}

	subRange := createInfo.SubresourceRange
	validateViewAspect(image, subRange.AspectMask)

	if subRange.LevelCount < 1 || subRange.LayerCount < 1 {
		panic(fmt.Sprintf("anvil: view requested %d levels and %d layers, both must be at least 1",
			subRange.LevelCount, subRange.LayerCount))
	}
	if subRange.BaseMipLevel < 0 || subRange.BaseMipLevel+subRange.LevelCount > image.Levels {
		panic(fmt.Sprintf("anvil: mip range [%d, %d) exceeds the image's %d levels",
			subRange.BaseMipLevel, subRange.BaseMipLevel+subRange.LevelCount, image.Levels))
	}
	layerBound := image.ArrayLen
	if image.Type == core1_0.ImageType3D {
		layerBound = gfxutil.Minify(image.Extent.Depth, subRange.BaseMipLevel)
	}
	if subRange.BaseArrayLayer < 0 || subRange.BaseArrayLayer+subRange.LayerCount > layerBound {
		panic(fmt.Sprintf("anvil: layer range [%d, %d) exceeds the subresource's %d layers",
			subRange.BaseArrayLayer, subRange.BaseArrayLayer+subRange.LayerCount, layerBound))
	}

	surface := image.SurfaceForAspect(subRange.AspectMask)
	surf := surface.Surf

	format, formatSwizzle, err := GetISLFormat(createInfo.Format, viewAspect(subRange.AspectMask), image.Tiling)
	if err != nil {
		return 0, core1_0.VKErrorFormatNotSupported, err
	}

	view := isl.View{
		Format:         format,
		BaseLevel:      subRange.BaseMipLevel,
		Levels:         subRange.LevelCount,
		BaseArrayLayer: subRange.BaseArrayLayer,
		ArrayLen:       subRange.LayerCount,
		ChannelSelects: resolveComponentMapping(createInfo.Components, formatSwizzle),
	}

	level0Extent := isl.Extent4D{
		Width:    surf.LogicalLevel0.Width,
		Height:   surf.LogicalLevel0.Height,
		Depth:    surf.LogicalLevel0.Depth,
		ArrayLen: image.ArrayLen,
	}

	// An uncompressed view of a compressed surface addresses compression
	// blocks directly. The hardware is pointed at the block grid reshaped
	// into a 2D array surface, so the mip and layer selection collapses to
	// zero and the extent is taken from the surface's physical pitches.
	if !format.IsCompressed() && surf.Format.IsCompressed() {
		blockDepth := surf.Format.Layout().BlockDepth
		minifiedDepth := gfxutil.Minify(image.Extent.Depth, subRange.BaseMipLevel)

		level0Extent = isl.Extent4D{
			Width:    surf.RowPitchEl(),
			Height:   surf.ArrayPitchElRows() * image.ArrayLen,
			Depth:    gfxutil.DivRoundUp(minifiedDepth, blockDepth),
			ArrayLen: 1,
		}
		view.BaseLevel = 0
		view.BaseArrayLayer = 0
	}

	imageView := &ImageView{
		Image:  image,
		Format: format,
		Extent: core1_0.Extent3D{
			Width:  gfxutil.Minify(image.Extent.Width, subRange.BaseMipLevel),
			Height: gfxutil.Minify(image.Extent.Height, subRange.BaseMipLevel),
			Depth:  gfxutil.Minify(image.Extent.Depth, subRange.BaseMipLevel),
		},
		pooled: transient == nil,
	}

	allocState := func() (statepool.State, error) {
		if transient != nil {
			return transient.Alloc(isl.SurfaceStateSize, isl.SurfaceStateAlignment), nil
		}
		return d.surfaceStatePool.Alloc()
	}

	usage := image.FullUsage

	if usage&(core1_0.ImageUsageSampled|core1_0.ImageUsageInputAttachment) != 0 {
		state, err := allocState()
		if err != nil {
			return 0, core1_0.VKErrorOutOfHostMemory, err
		}

		samplerView := view
		samplerView.Usage = isl.UsageTextureBit
		isl.FillSurfaceState(state.Map, surf, &samplerView, surface.Offset, level0Extent)
		d.flushState(state)
		imageView.SamplerSurfaceState = state
	}

	if usage&core1_0.ImageUsageColorAttachment != 0 {
		state, err := allocState()
		if err != nil {
			d.releaseViewStates(imageView)
			return 0, core1_0.VKErrorOutOfHostMemory, err
		}

		rtView := view
		rtView.Usage = isl.UsageRenderTargetBit
		isl.FillSurfaceState(state.Map, surf, &rtView, surface.Offset, level0Extent)
		d.flushState(state)
		imageView.ColorRTSurfaceState = state
	}

	if usage&core1_0.ImageUsageStorage != 0 {
		state, err := allocState()
		if err != nil {
			d.releaseViewStates(imageView)
			return 0, core1_0.VKErrorOutOfHostMemory, err
		}

		storageView := view
		storageView.Usage = isl.UsageStorageBit
		if !d.islDevice.HasMatchingStorageTypedFormat(format) {
			// No typed format at this width, fall back to untyped access
			// over the surface's byte range
			isl.FillBufferSurfaceState(state.Map, isl.FormatRaw, surface.Offset, surf.Size, 1)
		} else {
			isl.FillSurfaceState(state.Map, surf, &storageView, surface.Offset, level0Extent)
		}
		d.flushState(state)
		imageView.StorageSurfaceState = state
	}

	handle := ImageViewHandle(d.imageViews.Put(imageView))
	return handle, core1_0.VKSuccess, nil
}

func viewAspect(aspectMask core1_0.ImageAspectFlags) core1_0.ImageAspectFlags {
	if aspectMask == core1_0.ImageAspectDepth|core1_0.ImageAspectStencil {
		return core1_0.ImageAspectDepth
	}
	return aspectMask
}

// ImageView resolves a handle to the view it refers to.
func (d *Device) ImageView(handle ImageViewHandle) (*ImageView, error) {
	return d.imageViews.Get(Handle(handle))
}

// DestroyImageView releases the view and returns its pool-owned surface
// states. Stream-owned states are reclaimed when their stream is reset.
func (d *Device) DestroyImageView(handle ImageViewHandle) error {
	imageView, err := d.imageViews.Remove(Handle(handle))
	if err != nil {
		return err
	}

	d.releaseViewStates(imageView)
	return nil
}

func (d *Device) releaseViewStates(imageView *ImageView) {
	if !imageView.pooled {
		return
	}
	for _, state := range []statepool.State{
		imageView.SamplerSurfaceState,
		imageView.ColorRTSurfaceState,
		imageView.StorageSurfaceState,
	} {
		if state.AllocSize > 0 {
			d.surfaceStatePool.Free(state)
		}
	}
}

// flushState is the writeback point for surface states on parts where the
// GPU does not snoop the CPU cache. The backing here is plain process memory,
// so there is nothing to write back, but every encode path funnels through
// this so a real mapping only has one place to hook.
func (d *Device) flushState(state statepool.State) {
	if d.info.HasLLC {
		return
	}
	_ = state
}
