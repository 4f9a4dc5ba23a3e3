package isl

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/anvil/gfxutil"
	"github.com/vkngwrapper/anvil/hwinfo"
)

type recordingReporter struct {
	features []string
}

func (r *recordingReporter) Finishme(feature string) {
	r.features = append(r.features, feature)
}

func newTestDevice(t *testing.T, info *hwinfo.DeviceInfo) (*Device, *recordingReporter) {
	reporter := &recordingReporter{}
	device, err := NewDevice(info, reporter)
	require.NoError(t, err)
	return device, reporter
}

func TestNewDeviceRejectsUnknownGeneration(t *testing.T) {
	info := hwinfo.SkylakeGT2()
	info.Gen = 6
	_, err := NewDevice(info, &recordingReporter{})
	require.ErrorIs(t, err, gfxutil.NotImplementedError)
}

func TestStdYAlignment2D(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	tests := []struct {
		name   string
		format Format
		tiling Tiling
		want   Extent3D
	}{
		{"R8 Yf", FormatR8Unorm, TilingYf, Extent3D{64, 64, 1}},
		{"R8G8 Yf", FormatR8G8Unorm, TilingYf, Extent3D{64, 32, 1}},
		{"RGBA8 Yf", FormatR8G8B8A8Unorm, TilingYf, Extent3D{32, 32, 1}},
		{"RG32F Yf", FormatR32G32Float, TilingYf, Extent3D{32, 16, 1}},
		{"RGBA32F Yf", FormatR32G32B32A32Float, TilingYf, Extent3D{16, 16, 1}},
		{"RGBA8 Ys", FormatR8G8B8A8Unorm, TilingYs, Extent3D{512, 512, 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info := &SurfInitInfo{
				Dim: SurfDim2D, Format: test.format,
				Width: 256, Height: 256, Depth: 1,
				Levels: 1, ArrayLen: 1, Samples: 1,
				Usage: UsageTextureBit,
			}
			got := device.ChooseLODAlignmentEl(info, test.tiling, MSAALayoutNone)
			require.Equal(t, test.want, got)
		})
	}
}

func TestStdYAlignment1DAnd3D(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	info1D := &SurfInitInfo{
		Dim: SurfDim1D, Format: FormatR8G8B8A8Unorm,
		Width: 4096, Height: 1, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage: UsageTextureBit,
	}
	require.Equal(t, Extent3D{1024, 1, 1},
		device.ChooseLODAlignmentEl(info1D, TilingYf, MSAALayoutNone))

	info3D := &SurfInitInfo{
		Dim: SurfDim3D, Format: FormatR8G8B8A8Unorm,
		Width: 64, Height: 64, Depth: 64,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage: UsageTextureBit,
	}
	require.Equal(t, Extent3D{8, 16, 8},
		device.ChooseLODAlignmentEl(info3D, TilingYf, MSAALayoutNone))
}

func TestStdYAlignmentIsPow2(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	formats := []Format{
		FormatR8Unorm, FormatR8G8Unorm, FormatR8G8B8A8Unorm,
		FormatR16G16B16A16Float, FormatR32G32Float, FormatR32G32B32A32Float,
	}
	dims := []SurfDim{SurfDim1D, SurfDim2D, SurfDim3D}
	tilings := []Tiling{TilingYf, TilingYs}

	for _, format := range formats {
		for _, dim := range dims {
			for _, tiling := range tilings {
				info := &SurfInitInfo{
					Dim: dim, Format: format,
					Width: 256, Height: 1, Depth: 1,
					Levels: 1, ArrayLen: 1, Samples: 1,
					Usage: UsageTextureBit,
				}
				if dim != SurfDim1D {
					info.Height = 256
				}
				if dim == SurfDim3D {
					info.Depth = 16
				}

				got := device.ChooseLODAlignmentEl(info, tiling, MSAALayoutNone)
				require.True(t, gfxutil.IsPow2(got.Width),
					"width %d for %s dim %s %s", got.Width, format, dim, tiling)
				require.True(t, gfxutil.IsPow2(got.Height),
					"height %d for %s dim %s %s", got.Height, format, dim, tiling)
				require.True(t, gfxutil.IsPow2(got.Depth),
					"depth %d for %s dim %s %s", got.Depth, format, dim, tiling)
			}
		}
	}
}

func TestMultisampleYsAlignmentReportsFinishme(t *testing.T) {
	device, reporter := newTestDevice(t, hwinfo.SkylakeGT2())

	info := &SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 256, Height: 256, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 4,
		Usage: UsageRenderTargetBit,
	}
	got := device.ChooseLODAlignmentEl(info, TilingYs, MSAALayoutArray)

	// The single-sample 512x512 alignment shrinks by the documented
	// sample-count shifts
	require.Equal(t, Extent3D{256, 256, 1}, got)
	require.Len(t, reporter.features, 1)
	require.Contains(t, reporter.features[0], "samples=4")
}

func TestCompressedAlignment(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.SkylakeGT2())

	info := &SurfInitInfo{
		Dim: SurfDim2D, Format: FormatBC3Unorm,
		Width: 256, Height: 256, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage: UsageTextureBit,
	}
	require.Equal(t, Extent3D{4, 4, 1},
		device.ChooseLODAlignmentEl(info, TilingY0, MSAALayoutNone))
}

func TestBroadwellFallbackAlignment(t *testing.T) {
	device, _ := newTestDevice(t, hwinfo.BroadwellGT2())

	tests := []struct {
		name  string
		usage UsageFlags
		want  Extent3D
	}{
		{"color", UsageRenderTargetBit, Extent3D{4, 4, 1}},
		{"depth", UsageDepthBit, Extent3D{8, 4, 1}},
		{"stencil", UsageStencilBit, Extent3D{8, 8, 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info := &SurfInitInfo{
				Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
				Width: 128, Height: 128, Depth: 1,
				Levels: 1, ArrayLen: 1, Samples: 1,
				Usage: test.usage,
			}
			require.Equal(t, test.want,
				device.ChooseLODAlignmentEl(info, TilingY0, MSAALayoutNone))
		})
	}
}

func TestGen9DelegatesLegacyTilingToGen8(t *testing.T) {
	skylake, _ := newTestDevice(t, hwinfo.SkylakeGT2())
	broadwell, _ := newTestDevice(t, hwinfo.BroadwellGT2())

	info := &SurfInitInfo{
		Dim: SurfDim2D, Format: FormatR8G8B8A8Unorm,
		Width: 128, Height: 128, Depth: 1,
		Levels: 1, ArrayLen: 1, Samples: 1,
		Usage: UsageTextureBit,
	}
	require.Equal(t,
		broadwell.ChooseLODAlignmentEl(info, TilingY0, MSAALayoutNone),
		skylake.ChooseLODAlignmentEl(info, TilingY0, MSAALayoutNone))
}
