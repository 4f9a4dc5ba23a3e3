package anvil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/anvil/hwinfo"
	"github.com/vkngwrapper/anvil/isl"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func TestCreateColorImage(t *testing.T) {
	device := testDevice(t, hwinfo.SkylakeGT2())

	handle, res, err := device.CreateImage(core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatR8G8B8A8SRGB,
		Extent:    core1_0.Extent3D{Width: 256, Height: 256, Depth: 1},
		MipLevels: 1, ArrayLayers: 1,
		Samples: core1_0.Samples1,
		Tiling:  core1_0.ImageTilingLinear,
		Usage:   core1_0.ImageUsageColorAttachment,
	})
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)

	image, err := device.Image(handle)
	require.NoError(t, err)

	surface := image.SurfaceForAspect(core1_0.ImageAspectColor)
	require.NotNil(t, surface.Surf)
	require.Equal(t, 0, surface.Offset)
	require.Equal(t, 1024, surface.Surf.RowPitch)
	require.Equal(t, 256*1024, image.Size)
	require.Equal(t, 64, image.Alignment)

	require.NoError(t, device.DestroyImage(handle))
}

func TestCreateDepthStencilImageGetsTwoSurfaces(t *testing.T) {
	device := testDevice(t, hwinfo.SkylakeGT2())

	handle, _, err := device.CreateImage(core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatD24UnsignedNormalizedS8UnsignedInt,
		Extent:    core1_0.Extent3D{Width: 128, Height: 128, Depth: 1},
		MipLevels: 1, ArrayLayers: 1,
		Samples: core1_0.Samples1,
		Tiling:  core1_0.ImageTilingOptimal,
		Usage:   core1_0.ImageUsageDepthStencilAttachment,
	})
	require.NoError(t, err)

	image, err := device.Image(handle)
	require.NoError(t, err)

	depth := image.SurfaceForAspect(core1_0.ImageAspectDepth)
	stencil := image.SurfaceForAspect(core1_0.ImageAspectStencil)
	require.NotNil(t, depth.Surf)
	require.NotNil(t, stencil.Surf)

	require.Equal(t, isl.FormatR24UnormX8, depth.Surf.Format)
	require.Equal(t, isl.FormatR8Uint, stencil.Surf.Format)
	require.Equal(t, isl.TilingW, stencil.Surf.Tiling)

	// The stencil surface follows depth at its own alignment without
	// overlapping it
	require.Zero(t, depth.Offset)
	require.GreaterOrEqual(t, stencil.Offset, depth.Surf.Size)
	require.Zero(t, stencil.Offset%stencil.Surf.Alignment)
	require.Equal(t, stencil.Offset+stencil.Surf.Size, image.Size)

	// Combined depth/stencil selection resolves to the depth surface
	require.Same(t, depth.Surf,
		image.SurfaceForAspect(core1_0.ImageAspectDepth|core1_0.ImageAspectStencil).Surf)

	// Meta color access to a depth/stencil image resolves to depth
	require.Same(t, depth.Surf, image.SurfaceForAspect(core1_0.ImageAspectColor).Surf)
}

func TestFullImageUsageWidening(t *testing.T) {
	device := testDevice(t, hwinfo.SkylakeGT2())

	handle, _, err := device.CreateImage(core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatR8G8B8A8UnsignedNormalized,
		Extent:    core1_0.Extent3D{Width: 64, Height: 64, Depth: 1},
		MipLevels: 1, ArrayLayers: 1,
		Samples: core1_0.Samples1,
		Tiling:  core1_0.ImageTilingOptimal,
		Usage:   core1_0.ImageUsageTransferDst,
	})
	require.NoError(t, err)

	image, err := device.Image(handle)
	require.NoError(t, err)

	// Transfer destinations are written through render-target bindings
	require.NotZero(t, image.FullUsage&core1_0.ImageUsageColorAttachment)
	require.Equal(t, core1_0.ImageUsageTransferDst, image.Usage)
}

func TestMultisampledColorGetsSampledUsage(t *testing.T) {
	device := testDevice(t, hwinfo.SkylakeGT2())

	handle, _, err := device.CreateImage(core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatR8G8B8A8UnsignedNormalized,
		Extent:    core1_0.Extent3D{Width: 64, Height: 64, Depth: 1},
		MipLevels: 1, ArrayLayers: 1,
		Samples: core1_0.Samples4,
		Tiling:  core1_0.ImageTilingOptimal,
		Usage:   core1_0.ImageUsageColorAttachment,
	})
	require.NoError(t, err)

	image, err := device.Image(handle)
	require.NoError(t, err)

	// Resolves sample the source, so multisampled color is always sampleable
	require.NotZero(t, image.FullUsage&core1_0.ImageUsageSampled)
	require.Equal(t, isl.MSAALayoutArray, image.SurfaceForAspect(core1_0.ImageAspectColor).Surf.MSAALayout)
}

func TestCreateImageRejectsBadRequests(t *testing.T) {
	device := testDevice(t, hwinfo.SkylakeGT2())

	_, res, err := device.CreateImage(core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatR8G8B8A8SRGB,
		Extent:    core1_0.Extent3D{Width: 64, Height: 64, Depth: 1},
		MipLevels: 0, ArrayLayers: 1,
		Usage: core1_0.ImageUsageSampled,
	})
	require.Error(t, err)
	require.NotEqual(t, core1_0.VKSuccess, res)

	_, res, err = device.CreateImage(core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.Format(99999),
		Extent:    core1_0.Extent3D{Width: 64, Height: 64, Depth: 1},
		MipLevels: 1, ArrayLayers: 1,
		Usage: core1_0.ImageUsageSampled,
	})
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorFormatNotSupported, res)
}

func TestSubresourceLayout(t *testing.T) {
	device := testDevice(t, hwinfo.SkylakeGT2())

	handle, _, err := device.CreateImage(core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatR8G8B8A8SRGB,
		Extent:    core1_0.Extent3D{Width: 256, Height: 256, Depth: 1},
		MipLevels: 2, ArrayLayers: 1,
		Samples: core1_0.Samples1,
		Tiling:  core1_0.ImageTilingLinear,
		Usage:   core1_0.ImageUsageSampled,
	})
	require.NoError(t, err)

	image, err := device.Image(handle)
	require.NoError(t, err)

	layout := image.SubresourceLayout(core1_0.ImageSubresource{
		AspectMask: core1_0.ImageAspectColor,
	})
	require.Equal(t, 0, layout.Offset)
	require.Equal(t, image.Size, layout.Size)
	require.Equal(t, 1024, layout.RowPitch)

	// Only the base subresource can be queried
	require.Panics(t, func() {
		image.SubresourceLayout(core1_0.ImageSubresource{
			AspectMask: core1_0.ImageAspectColor,
			MipLevel:   1,
		})
	})
}
