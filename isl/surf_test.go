package isl

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/anvil/hwinfo"
)

func TestSurfInitLinearRenderTarget(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 256, Height: 256, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage:       UsageRenderTargetBit,
		TilingFlags: TilingLinearBit,
	})
	require.NoError(t, err)

	require.Equal(t, TilingLinear, surf.Tiling)
	require.Equal(t, 1024, surf.RowPitch)
	require.Equal(t, 256*1024, surf.Size)
	require.Equal(t, 64, surf.Alignment)
}

func TestSurfInitPrefersY0ForOptimalTextures(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 64, Height: 64, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage:       UsageTextureBit,
		TilingFlags: TilingAnyMask,
	})
	require.NoError(t, err)

	require.Equal(t, TilingY0, surf.Tiling)
	require.Equal(t, 256, surf.RowPitch)
	require.Equal(t, 64, surf.ArrayPitchElRows())
	require.Equal(t, 4096, surf.Alignment)
}

func TestSurfInitStencilUsesWTiling(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8Uint,
		Width: 128, Height: 128, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage:       UsageStencilBit,
		TilingFlags: TilingAnyMask,
	})
	require.NoError(t, err)

	require.Equal(t, TilingW, surf.Tiling)
	require.Equal(t, Extent3D{8, 8, 1}, surf.LODAlignmentEl)
}

func TestSurfInitNoUsableTiling(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	_, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8Uint,
		Width: 128, Height: 128, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage:       UsageStencilBit,
		TilingFlags: TilingXBit,
	})
	require.Error(t, err)
}

func TestSurfInitMipLevelsDoNotOverlap(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 64, Height: 64, Depth: 1,
		Levels: 7, ArrayLen: 1, Samples: 1,
		Usage:       UsageTextureBit,
		TilingFlags: TilingLinearBit,
	})
	require.NoError(t, err)

	type rect struct{ x, y, w, h int }
	rects := make([]rect, surf.Levels)

	layout := surf.Format.Layout()
	for level := 0; level < surf.Levels; level++ {
		x, y := surf.ImageOffsetEl(level)
		w := surf.PhysLevel0Sa.Width >> level
		if w < 1 {
			w = 1
		}
		h := surf.PhysLevel0Sa.Height >> level
		if h < 1 {
			h = 1
		}
		rects[level] = rect{x: x, y: y, w: w / layout.BlockWidth, h: h / layout.BlockHeight}
	}

	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			overlaps := a.x < b.x+b.w && b.x < a.x+a.w &&
				a.y < b.y+b.h && b.y < a.y+a.h
			require.False(t, overlaps, "levels %d and %d overlap", i, j)
		}
	}

	// Every level sits inside the slice footprint
	for level, r := range rects {
		require.LessOrEqual(t, (r.x+r.w)*layout.BlockSize, surf.RowPitch, "level %d row", level)
		require.LessOrEqual(t, r.y+r.h, surf.ArrayPitchElRows(), "level %d column", level)
	}
}

func TestSurfInitArrayLayersDoNotOverlap(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 32, Height: 32, Depth: 1,
		Levels: 1, ArrayLen: 4, Samples: 1,
		Usage:       UsageTextureBit,
		TilingFlags: TilingLinearBit,
	})
	require.NoError(t, err)

	previous := -1
	for layer := 0; layer < 4; layer++ {
		offset := surf.ImageByteOffset(0, layer)
		require.Greater(t, offset, previous)
		previous = offset
	}
	require.LessOrEqual(t, surf.ImageByteOffset(0, 3)+surf.RowPitch*32, surf.Size)
}

func TestSurfInitMinPitchAndAlignment(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 16, Height: 16, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		MinPitch:     1000,
		MinAlignment: 8192,
		Usage:        UsageTextureBit,
		TilingFlags:  TilingLinearBit,
	})
	require.NoError(t, err)

	require.Equal(t, 1000, surf.RowPitch)
	require.Equal(t, 8192, surf.Alignment)
}

func TestSurfInitRejectsNonPow2MinAlignment(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	_, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 16, Height: 16, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		MinAlignment: 3000,
		Usage:        UsageTextureBit,
		TilingFlags:  TilingLinearBit,
	})
	require.Error(t, err)
}

func TestSurfInitPanicsOnMalformedRequests(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	base := SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 16, Height: 16, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage:       UsageTextureBit,
		TilingFlags: TilingAnyMask,
	}

	tests := []struct {
		name   string
		mutate func(info *SurfInitInfo)
	}{
		{"zero width", func(info *SurfInitInfo) { info.Width = 0 }},
		{"zero levels", func(info *SurfInitInfo) { info.Levels = 0 }},
		{"non-pow2 samples", func(info *SurfInitInfo) { info.Samples = 3 }},
		{"multisampled 3D", func(info *SurfInitInfo) {
			info.Dim = SurfDim3D
			info.Samples = 4
		}},
		{"tall 1D", func(info *SurfInitInfo) { info.Dim = SurfDim1D }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info := base
			test.mutate(&info)
			require.Panics(t, func() {
				_, _ = device.SurfInit(&info)
			})
		})
	}
}

func TestSurfInitInterleavedMultisampleDepth(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR32Float,
		Width: 64, Height: 64, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 4,
		Usage:       UsageDepthBit,
		TilingFlags: TilingY0Bit,
	})
	require.NoError(t, err)

	require.Equal(t, MSAALayoutInterleaved, surf.MSAALayout)
	require.Equal(t, 128, surf.PhysLevel0Sa.Width)
	require.Equal(t, 128, surf.PhysLevel0Sa.Height)
	require.Equal(t, 64, surf.LogicalLevel0.Width)
}

func TestSurfInitArrayMultisampleColor(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 64, Height: 64, Depth: 1,
		Levels: 1, ArrayLen: 2, Samples: 4,
		Usage:       UsageRenderTargetBit,
		TilingFlags: TilingY0Bit,
	})
	require.NoError(t, err)

	require.Equal(t, MSAALayoutArray, surf.MSAALayout)
	require.Equal(t, 8, surf.PhysLevel0Sa.ArrayLen)
	require.Equal(t, 8*surf.ArrayPitch(), surf.Size)
}

func TestSurfInit3DUsesFullSpanArrayLayout(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim3D, Format: FormatR8G8B8A8Unorm,
		Width: 16, Height: 16, Depth: 8,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage:       UsageTextureBit,
		TilingFlags: TilingLinearBit,
	})
	require.NoError(t, err)

	require.Equal(t, 8*surf.ArrayPitch(), surf.Size)
	require.Equal(t, surf.ArrayPitch(), surf.ImageByteOffset(0, 1))
}

func TestSurfInit1DConcatenatesLevels(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim1D, Format: FormatR32Float,
		Width: 256, Height: 1, Depth: 1,
		Levels: 3, ArrayLen: 1, Samples: 1,
		Usage:       UsageTextureBit,
		TilingFlags: TilingLinearBit,
	})
	require.NoError(t, err)

	x0, y0 := surf.ImageOffsetEl(0)
	x1, y1 := surf.ImageOffsetEl(1)
	x2, y2 := surf.ImageOffsetEl(2)
	require.Equal(t, 0, x0)
	require.Equal(t, 256, x1)
	require.Equal(t, 256+128, x2)
	require.Zero(t, y0)
	require.Zero(t, y1)
	require.Zero(t, y2)
	require.Equal(t, 1, surf.ArrayPitchElRows())
}

func TestSurfYsBaseAlignment(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	surf, err := device.SurfInit(&SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 1024, Height: 1024, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage:       UsageTextureBit,
		TilingFlags: TilingYsBit,
	})
	require.NoError(t, err)

	require.Equal(t, TilingYs, surf.Tiling)
	require.Equal(t, 64*1024, surf.Alignment)
	require.Zero(t, surf.Size%(64*1024))
}
