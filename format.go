package anvil

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/anvil/isl"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Compressed formats the mapping table covers. The values are the Vulkan
// format enum constants.
const (
	formatBC1RGBUnormBlock     core1_0.Format = 131
	formatBC3UnormBlock        core1_0.Format = 137
	formatETC2R8G8B8UnormBlock core1_0.Format = 147
)

// FormatProperties describes how an API format maps onto hardware surface
// formats, per aspect.
type FormatProperties struct {
	// SurfaceFormat is the hardware format for the color or depth aspect
	SurfaceFormat isl.Format
	// Swizzle is the format's internal channel permutation
	Swizzle isl.FormatSwizzle
	// HasDepth and HasStencil report which depth/stencil aspects the format carries
	HasDepth   bool
	HasStencil bool
}

var UnsupportedFormatError = cerrors.New("format has no hardware mapping")

func colorFormat(surfaceFormat isl.Format) FormatProperties {
	return FormatProperties{SurfaceFormat: surfaceFormat, Swizzle: isl.RGBASwizzle}
}

func swizzledFormat(surfaceFormat isl.Format, swizzle isl.FormatSwizzle) FormatProperties {
	return FormatProperties{SurfaceFormat: surfaceFormat, Swizzle: swizzle}
}

func depthFormat(surfaceFormat isl.Format, hasStencil bool) FormatProperties {
	return FormatProperties{
		SurfaceFormat: surfaceFormat,
		Swizzle:       isl.RGBASwizzle,
		HasDepth:      true,
		HasStencil:    hasStencil,
	}
}

var vkFormatMap = map[core1_0.Format]FormatProperties{
	core1_0.FormatR8UnsignedNormalized:             colorFormat(isl.FormatR8Unorm),
	core1_0.FormatR8G8UnsignedNormalized:           colorFormat(isl.FormatR8G8Unorm),
	core1_0.FormatR8G8B8A8UnsignedNormalized:       colorFormat(isl.FormatR8G8B8A8Unorm),
	core1_0.FormatR8G8B8A8SRGB:                     colorFormat(isl.FormatR8G8B8A8Srgb),
	core1_0.FormatB8G8R8A8UnsignedNormalized:       colorFormat(isl.FormatB8G8R8A8Unorm),
	core1_0.FormatB8G8R8A8SRGB:                     colorFormat(isl.FormatB8G8R8A8Srgb),
	core1_0.FormatA1R5G5B5UnsignedNormalizedPacked: colorFormat(isl.FormatB5G5R5A1Unorm),
	core1_0.FormatR4G4B4A4UnsignedNormalizedPacked: swizzledFormat(isl.FormatB4G4R4A4Unorm, isl.FormatSwizzle{
		R: isl.ChannelSelectBlue,
		G: isl.ChannelSelectGreen,
		B: isl.ChannelSelectRed,
		A: isl.ChannelSelectAlpha,
	}),
	core1_0.FormatR16G16B16A16SignedFloat: colorFormat(isl.FormatR16G16B16A16Float),
	core1_0.FormatR32G32SignedFloat:       colorFormat(isl.FormatR32G32Float),
	core1_0.FormatR32G32B32SignedFloat:    colorFormat(isl.FormatR32G32B32Float),
	core1_0.FormatR32G32B32A32SignedFloat: colorFormat(isl.FormatR32G32B32A32Float),

	formatBC1RGBUnormBlock:     colorFormat(isl.FormatBC1RGBUnorm),
	formatBC3UnormBlock:        colorFormat(isl.FormatBC3Unorm),
	formatETC2R8G8B8UnormBlock: colorFormat(isl.FormatETC2R8G8B8Unorm),

	core1_0.FormatD16UnsignedNormalized:              depthFormat(isl.FormatR16Unorm, false),
	core1_0.FormatD32SignedFloat:                     depthFormat(isl.FormatR32Float, false),
	core1_0.FormatD24UnsignedNormalizedS8UnsignedInt: depthFormat(isl.FormatR24UnormX8, true),
	core1_0.FormatD32SignedFloatS8UnsignedInt:        depthFormat(isl.FormatR32Float, true),
	core1_0.FormatS8UnsignedInt: {
		Swizzle:    isl.RGBASwizzle,
		HasStencil: true,
	},
}

// GetFormatProperties returns the hardware mapping for an API format, or
// UnsupportedFormatError if the format is outside the supported set.
func GetFormatProperties(format core1_0.Format) (FormatProperties, error) {
	properties, ok := vkFormatMap[format]
	if !ok {
		return FormatProperties{}, cerrors.Wrapf(UnsupportedFormatError, "format %d", format)
	}
	return properties, nil
}

// GetISLFormat resolves an API format to the hardware surface format for a
// single aspect. The aspect must be one the format actually carries.
func GetISLFormat(format core1_0.Format, aspect core1_0.ImageAspectFlags, tiling core1_0.ImageTiling) (isl.Format, isl.FormatSwizzle, error) {
	properties, err := GetFormatProperties(format)
	if err != nil {
		return isl.FormatRaw, isl.RGBASwizzle, err
	}

	switch aspect {
	case core1_0.ImageAspectColor:
		return properties.SurfaceFormat, properties.Swizzle, nil
	case core1_0.ImageAspectDepth:
		if !properties.HasDepth {
			return isl.FormatRaw, isl.RGBASwizzle, cerrors.Newf("format %d has no depth aspect", format)
		}
		return properties.SurfaceFormat, isl.RGBASwizzle, nil
	case core1_0.ImageAspectStencil:
		if !properties.HasStencil {
			return isl.FormatRaw, isl.RGBASwizzle, cerrors.Newf("format %d has no stencil aspect", format)
		}
		// Stencil is always read and written through its own W-tiled R8_UINT
		// surface, regardless of the combined format it came from.
		return isl.FormatR8Uint, isl.RGBASwizzle, nil
	}

	return isl.FormatRaw, isl.RGBASwizzle, cerrors.Newf("aspect mask %s does not name a single aspect", aspect)
}
