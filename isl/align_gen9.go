package isl

import (
	"fmt"

	"github.com/vkngwrapper/anvil/gfxutil"
)

// gen9AlignmentEngine implements the Skylake LOD alignment rules. It owns the
// standard Yf/Ys tiling cases, the fixed 1D and compressed-format alignments,
// and hands every remaining tiling to the Broadwell engine.
type gen9AlignmentEngine struct {
	prior    AlignmentEngine
	reporter FinishmeReporter
}

var _ AlignmentEngine = &gen9AlignmentEngine{}

// stdLODAlignmentSa calculates the LOD alignment, in units of surface samples,
// for the standard tiling formats Yf and Ys.
//
// The width/height shifts are functions of log2 of the format's byte size,
// split asymmetrically between the axes so that a fixed-size tile always spans
// whole alignment units no matter the pixel size.
func (e *gen9AlignmentEngine) stdLODAlignmentSa(info *SurfInitInfo, tiling Tiling, msaaLayout MSAALayout) Extent3D {
	if !tiling.IsStdY() {
		panic("isl: standard-Y alignment requested for a non-standard tiling")
	}

	bs := uint32(info.Format.Layout().BlockSize)
	ysShift := 0
	if tiling == TilingYs {
		ysShift = 1
	}

	switch info.Dim {
	case SurfDim1D:
		return Extent3D{
			Width:  1 << (12 - (gfxutil.FFS(bs) - 1) + (4 * ysShift)),
			Height: 1,
			Depth:  1,
		}

	case SurfDim2D:
		alignSa := Extent3D{
			Width:  1 << (6 - ((gfxutil.FFS(bs) - 1) / 2) + (4 * ysShift)),
			Height: 1 << (6 - (gfxutil.FFS(bs) / 2) + (4 * ysShift)),
			Depth:  1,
		}

		if tiling == TilingYs && msaaLayout == MSAALayoutArray {
			// The documented sample-count right-shift below has never been
			// exercised against hardware. Keep the upstream formula, but make
			// every arrival here observable instead of quietly trusting it.
			e.reporter.Finishme(fmt.Sprintf("multisample TileYs 2D alignment (samples=%d) is unvalidated", info.Samples))

			alignSa.Width >>= gfxutil.FFS(uint32(info.Samples)) / 2
			alignSa.Height >>= (gfxutil.FFS(uint32(info.Samples)) - 1) / 2
		}

		return alignSa

	case SurfDim3D:
		return Extent3D{
			Width:  1 << (4 - ((gfxutil.FFS(bs) + 1) / 3) + (4 * ysShift)),
			Height: 1 << (4 - ((gfxutil.FFS(bs) - 1) / 3) + (2 * ysShift)),
			Depth:  1 << (4 - (gfxutil.FFS(bs) / 3) + (2 * ysShift)),
		}
	}

	panic("isl: bad surface dimensionality")
}

func (e *gen9AlignmentEngine) ChooseLODAlignmentEl(info *SurfInitInfo, tiling Tiling, msaaLayout MSAALayout) Extent3D {
	if tiling.IsStdY() {
		alignSa := e.stdLODAlignmentSa(info, tiling, msaaLayout)
		return extent3DSaToEl(info.Format, alignSa)
	}

	if info.Dim == SurfDim1D {
		// 1D surfaces on Skylake are cache-line padded to 64 elements
		// regardless of format.
		return Extent3D{Width: 64, Height: 1, Depth: 1}
	}

	if info.Format.IsCompressed() {
		// Horizontal and vertical alignment fields count compression blocks on
		// Skylake, so the smallest legal values waste the least memory.
		return Extent3D{Width: 4, Height: 4, Depth: 1}
	}

	return e.prior.ChooseLODAlignmentEl(info, tiling, msaaLayout)
}
