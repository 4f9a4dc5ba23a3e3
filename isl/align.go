package isl

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/anvil/gfxutil"
)

// AlignmentEngine computes per-LOD alignment for a single hardware generation.
// Each generation's engine only implements the cases that generation changed
// and delegates everything else to the prior generation's engine, forming an
// explicit fallback chain.
type AlignmentEngine interface {
	// ChooseLODAlignmentEl returns the minimum alignment, in elements, that an
	// LOD of the described surface must satisfy. Every returned dimension is a
	// power of two.
	ChooseLODAlignmentEl(info *SurfInitInfo, tiling Tiling, msaaLayout MSAALayout) Extent3D
}

// alignmentEngineForGen assembles the engine chain for a hardware generation.
func alignmentEngineForGen(gen int, reporter FinishmeReporter) (AlignmentEngine, error) {
	switch gen {
	case 8:
		return &gen8AlignmentEngine{}, nil
	case 9:
		return &gen9AlignmentEngine{
			prior:    &gen8AlignmentEngine{},
			reporter: reporter,
		}, nil
	}

	return nil, errors.Wrapf(gfxutil.NotImplementedError, "no alignment engine for hardware generation %d", gen)
}

// extent3DSaToEl converts an extent in units of surface samples to units of
// elements by dividing out the format's compression block footprint. The
// depth axis is unaffected by 2D compression blocks.
func extent3DSaToEl(format Format, extentSa Extent3D) Extent3D {
	layout := format.Layout()

	return Extent3D{
		Width:  extentSa.Width / layout.BlockWidth,
		Height: extentSa.Height / layout.BlockHeight,
		Depth:  extentSa.Depth,
	}
}
