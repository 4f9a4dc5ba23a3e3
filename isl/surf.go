package isl

import (
	"fmt"

	"github.com/vkngwrapper/anvil/gfxutil"
)

// Surf is the complete physical layout of a single-aspect surface: where every
// LOD and array slice of one aspect lives relative to the surface's base
// address. Computed once by SurfInit and immutable afterward.
type Surf struct {
	Dim        SurfDim
	Format     Format
	Tiling     Tiling
	MSAALayout MSAALayout
	Usage      UsageFlags

	// LogicalLevel0 is the API-visible level-0 extent in pixels
	LogicalLevel0 Extent4D
	// PhysLevel0Sa is the physical level-0 extent in samples, after
	// interleaved-multisample scaling and array-multisample slice expansion
	PhysLevel0Sa Extent4D

	Levels  int
	Samples int

	// LODAlignmentEl is the per-LOD alignment, in elements, every level of
	// this surface was padded to
	LODAlignmentEl Extent3D

	// RowPitch is the byte distance between adjacent element rows
	RowPitch int
	// Size is the total footprint of the surface in bytes
	Size int
	// Alignment is the base-address alignment this surface requires
	Alignment int

	levelOffsetsEl   []levelOffsetEl
	sliceWidthEl     int
	arrayPitchElRows int
}

type levelOffsetEl struct {
	x int
	y int
}

// tileGeom captures how a tiling constrains the surface footprint: the byte
// granularity of a row of tiles and the row count a slice must pad to.
type tileGeom struct {
	rowPitchAlign int
	heightRows    int
	baseAlignment int
}

func tileGeometry(tiling Tiling, format Format, lodAlignEl Extent3D, usage UsageFlags) tileGeom {
	bs := format.Layout().BlockSize

	switch tiling {
	case TilingLinear:
		align := bs
		if usage&UsageRenderTargetBit != 0 {
			// The render-target data port requires cache-line aligned rows
			// even for linear surfaces.
			align = 64
		}
		return tileGeom{rowPitchAlign: align, heightRows: 1, baseAlignment: 64}
	case TilingX:
		return tileGeom{rowPitchAlign: 512, heightRows: 8, baseAlignment: 4096}
	case TilingY0:
		return tileGeom{rowPitchAlign: 128, heightRows: 32, baseAlignment: 4096}
	case TilingW:
		return tileGeom{rowPitchAlign: 128, heightRows: 64, baseAlignment: 4096}
	case TilingYf:
		return tileGeom{rowPitchAlign: lodAlignEl.Width * bs, heightRows: lodAlignEl.Height, baseAlignment: 4096}
	case TilingYs:
		return tileGeom{rowPitchAlign: lodAlignEl.Width * bs, heightRows: lodAlignEl.Height, baseAlignment: 64 * 1024}
	}

	panic("isl: bad tiling")
}

// tilingPreference is the order surfaces prefer tilings in when more than one
// is permitted. Stencil is W-tiled hardware-side and consults its own list.
var tilingPreference = []Tiling{TilingY0, TilingYf, TilingYs, TilingX, TilingW, TilingLinear}
var stencilTilingPreference = []Tiling{TilingW, TilingLinear}
var oneDimTilingPreference = []Tiling{TilingLinear, TilingYf, TilingYs}

func chooseTiling(info *SurfInitInfo) (Tiling, error) {
	preference := tilingPreference
	if info.Usage&UsageStencilBit != 0 {
		preference = stencilTilingPreference
	}
	if info.Dim == SurfDim1D {
		preference = oneDimTilingPreference
	}

	for _, tiling := range preference {
		if info.TilingFlags&tiling.Bit() != 0 {
			return tiling, nil
		}
	}

	return TilingLinear, fmt.Errorf("isl: no usable tiling in flags %s for usage %s", info.TilingFlags, info.Usage)
}

func chooseMSAALayout(info *SurfInitInfo) MSAALayout {
	if info.Samples <= 1 {
		return MSAALayoutNone
	}
	if info.Usage&(UsageDepthBit|UsageStencilBit) != 0 {
		return MSAALayoutInterleaved
	}
	return MSAALayoutArray
}

// interleavedScale returns the level-0 footprint multiplier for interleaved
// multisampling.
func interleavedScale(samples int) (wScale, hScale int) {
	switch samples {
	case 2:
		return 2, 1
	case 4:
		return 2, 2
	case 8:
		return 4, 2
	case 16:
		return 4, 4
	}
	panic("isl: bad sample count for interleaved msaa")
}

func assertInitInfo(info *SurfInitInfo) {
	if info.Width < 1 || info.Height < 1 || info.Depth < 1 {
		panic("isl: surface extent must be at least 1 in every dimension")
	}
	if info.Levels < 1 || info.ArrayLen < 1 || info.Samples < 1 {
		panic("isl: level, layer, and sample counts must be at least 1")
	}
	if !gfxutil.IsPow2(info.Samples) {
		panic("isl: sample count must be a power of two")
	}
	if info.Dim == SurfDim3D && (info.Samples > 1 || info.ArrayLen > 1) {
		panic("isl: 3D surfaces are single-sample and single-layer")
	}
	if info.Dim == SurfDim1D && info.Height > 1 {
		panic("isl: 1D surfaces have height 1")
	}
}

// SurfInit computes the full physical layout for one aspect of an image.
// Malformed requests (zero extents or counts, undefined dimensionality) are
// caller contract violations and panic; only genuinely unsatisfiable requests
// (no permitted tiling) return an error.
func (d *Device) SurfInit(info *SurfInitInfo) (*Surf, error) {
	assertInitInfo(info)

	tiling, err := chooseTiling(info)
	if err != nil {
		return nil, err
	}

	msaaLayout := chooseMSAALayout(info)
	lodAlignEl := d.ChooseLODAlignmentEl(info, tiling, msaaLayout)

	layout := info.Format.Layout()

	physLevel0Sa := Extent4D{
		Width:    info.Width,
		Height:   info.Height,
		Depth:    info.Depth,
		ArrayLen: info.ArrayLen,
	}
	switch msaaLayout {
	case MSAALayoutInterleaved:
		wScale, hScale := interleavedScale(info.Samples)
		physLevel0Sa.Width *= wScale
		physLevel0Sa.Height *= hScale
	case MSAALayoutArray:
		physLevel0Sa.ArrayLen *= info.Samples
	}

	surf := &Surf{
		Dim:        info.Dim,
		Format:     info.Format,
		Tiling:     tiling,
		MSAALayout: msaaLayout,
		Usage:      info.Usage,
		LogicalLevel0: Extent4D{
			Width:    info.Width,
			Height:   info.Height,
			Depth:    info.Depth,
			ArrayLen: info.ArrayLen,
		},
		PhysLevel0Sa:   physLevel0Sa,
		Levels:         info.Levels,
		Samples:        info.Samples,
		LODAlignmentEl: lodAlignEl,
	}

	surf.placeLevels()

	geom := tileGeometry(tiling, info.Format, lodAlignEl, info.Usage)

	rowPitch := surf.sliceWidthEl * layout.BlockSize
	rowPitch = gfxutil.RoundUpToMultiple(rowPitch, geom.rowPitchAlign)
	if info.MinPitch > rowPitch {
		rowPitch = gfxutil.RoundUpToMultiple(info.MinPitch, geom.rowPitchAlign)
	}
	surf.RowPitch = rowPitch

	surf.arrayPitchElRows = gfxutil.RoundUpToMultiple(surf.arrayPitchElRows, geom.heightRows)

	totalSlices := surf.totalSlices()
	size := rowPitch * surf.arrayPitchElRows * totalSlices

	alignment := geom.baseAlignment
	if info.MinAlignment > alignment {
		if err := gfxutil.CheckPow2(info.MinAlignment, "MinAlignment"); err != nil {
			return nil, err
		}
		alignment = info.MinAlignment
	}

	surf.Size = gfxutil.AlignUp(size, uint(geom.baseAlignment))
	surf.Alignment = alignment

	return surf, nil
}

// totalSlices is the number of independently addressed slices: array layers
// (times samples for array multisampling, already folded into PhysLevel0Sa)
// for 1D/2D surfaces, level-0 depth for 3D surfaces laid out as arrays.
func (s *Surf) totalSlices() int {
	if s.Dim == SurfDim3D {
		// Full-span array layout: every z-slice gets a full mip chain, the
		// way Skylake addresses 3D surfaces through the 2D path.
		return s.PhysLevel0Sa.Depth
	}
	return s.PhysLevel0Sa.ArrayLen
}

// placeLevels computes per-level offsets within one array slice, in elements.
//
// 1D surfaces concatenate levels along the row. 2D (and array-laid-out 3D)
// surfaces use the classic two-column arrangement: level 0 on top, level 1
// below it on the left, levels 2+ stacked in a right-hand column whose x
// offset is level 1's padded width.
func (s *Surf) placeLevels() {
	layout := s.Format.Layout()

	widthEl := func(level int) int {
		sa := gfxutil.Minify(s.PhysLevel0Sa.Width, level)
		el := gfxutil.DivRoundUp(sa, layout.BlockWidth)
		return gfxutil.AlignUp(el, uint(s.LODAlignmentEl.Width))
	}
	heightEl := func(level int) int {
		sa := gfxutil.Minify(s.PhysLevel0Sa.Height, level)
		el := gfxutil.DivRoundUp(sa, layout.BlockHeight)
		return gfxutil.AlignUp(el, uint(s.LODAlignmentEl.Height))
	}

	s.levelOffsetsEl = make([]levelOffsetEl, s.Levels)

	if s.Dim == SurfDim1D {
		x := 0
		for level := 0; level < s.Levels; level++ {
			s.levelOffsetsEl[level] = levelOffsetEl{x: x, y: 0}
			x += widthEl(level)
		}
		s.sliceWidthEl = x
		s.arrayPitchElRows = 1
		return
	}

	h0 := heightEl(0)
	s.levelOffsetsEl[0] = levelOffsetEl{x: 0, y: 0}

	leftColumnHeight := h0
	rightColumnHeight := h0
	rightColumnWidth := 0

	if s.Levels > 1 {
		s.levelOffsetsEl[1] = levelOffsetEl{x: 0, y: h0}
		leftColumnHeight = h0 + heightEl(1)

		x := widthEl(1)
		y := h0
		for level := 2; level < s.Levels; level++ {
			s.levelOffsetsEl[level] = levelOffsetEl{x: x, y: y}
			if w := widthEl(level); w > rightColumnWidth {
				rightColumnWidth = w
			}
			y += heightEl(level)
		}
		rightColumnHeight = y
	}

	s.sliceWidthEl = widthEl(0)
	if s.Levels > 1 {
		if w := widthEl(1) + rightColumnWidth; w > s.sliceWidthEl {
			s.sliceWidthEl = w
		}
	}

	s.arrayPitchElRows = leftColumnHeight
	if rightColumnHeight > s.arrayPitchElRows {
		s.arrayPitchElRows = rightColumnHeight
	}
}

// RowPitchEl returns the row pitch in elements.
func (s *Surf) RowPitchEl() int {
	return s.RowPitch / s.Format.Layout().BlockSize
}

// ArrayPitchElRows returns the element-row distance between adjacent array
// slices.
func (s *Surf) ArrayPitchElRows() int {
	return s.arrayPitchElRows
}

// ArrayPitch returns the byte distance between adjacent array slices.
func (s *Surf) ArrayPitch() int {
	return s.arrayPitchElRows * s.RowPitch
}

// ImageOffsetEl returns the (x, y) element offset of the given level within
// an array slice.
func (s *Surf) ImageOffsetEl(level int) (x, y int) {
	if level < 0 || level >= s.Levels {
		panic("isl: level out of range")
	}
	off := s.levelOffsetsEl[level]
	return off.x, off.y
}

// ImageByteOffset returns the byte offset of (level, layer) from the surface
// base. The x element offset must land on a whole byte boundary, which every
// supported format satisfies.
func (s *Surf) ImageByteOffset(level, layer int) int {
	if layer < 0 || layer >= s.totalSlices() {
		panic("isl: layer out of range")
	}
	x, y := s.ImageOffsetEl(level)
	return layer*s.ArrayPitch() + y*s.RowPitch + x*s.Format.Layout().BlockSize
}
