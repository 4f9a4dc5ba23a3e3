package isl

// gen8AlignmentEngine implements the Broadwell LOD alignment rules. It is the
// terminal engine of the fallback chain: every tiling the newer generations do
// not lay out differently ends up here.
type gen8AlignmentEngine struct{}

var _ AlignmentEngine = &gen8AlignmentEngine{}

func (e *gen8AlignmentEngine) ChooseLODAlignmentEl(info *SurfInitInfo, tiling Tiling, msaaLayout MSAALayout) Extent3D {
	switch info.Dim {
	case SurfDim1D:
		return Extent3D{Width: 64, Height: 1, Depth: 1}

	case SurfDim2D, SurfDim3D:
		if info.Format.IsCompressed() {
			return Extent3D{Width: 4, Height: 4, Depth: 1}
		}

		if info.Usage&UsageStencilBit != 0 {
			return Extent3D{Width: 8, Height: 8, Depth: 1}
		}

		if info.Usage&UsageDepthBit != 0 {
			// The depth hardware reads HiZ-sized blocks even with aux
			// disabled, so depth LODs keep the wider horizontal alignment.
			return Extent3D{Width: 8, Height: 4, Depth: 1}
		}

		return Extent3D{Width: 4, Height: 4, Depth: 1}
	}

	panic("isl: bad surface dimensionality")
}
