// Package isl computes the physical layout of GPU surfaces: tiling selection,
// per-LOD alignment, row pitch, per-level placement, and the hardware-readable
// surface-state descriptors that describe them to the sampler, render-target,
// and storage data ports.
package isl

import (
	"github.com/vkngwrapper/core/v2/common"

	"github.com/vkngwrapper/anvil/hwinfo"
)

// SurfDim is the logical dimensionality of a surface.
type SurfDim uint8

const (
	SurfDim1D SurfDim = iota + 1
	SurfDim2D
	SurfDim3D
)

var surfDimNames = map[SurfDim]string{
	SurfDim1D: "SurfDim1D",
	SurfDim2D: "SurfDim2D",
	SurfDim3D: "SurfDim3D",
}

func (d SurfDim) String() string {
	return surfDimNames[d]
}

// Tiling is a physical byte-addressing scheme for surface data.
type Tiling uint8

const (
	// TilingLinear is simple row-major addressing
	TilingLinear Tiling = iota
	// TilingX is the legacy 512Bx8 row-interleaved tile
	TilingX
	// TilingY0 is the standard 128Bx32 column-interleaved tile
	TilingY0
	// TilingW is the 64x64 stencil tile, addressed through Y-tiled footprints
	TilingW
	// TilingYf is the gen9 4KB standard tiling
	TilingYf
	// TilingYs is the gen9 64KB standard tiling
	TilingYs
)

var tilingNames = map[Tiling]string{
	TilingLinear: "TilingLinear",
	TilingX:      "TilingX",
	TilingY0:     "TilingY0",
	TilingW:      "TilingW",
	TilingYf:     "TilingYf",
	TilingYs:     "TilingYs",
}

func (t Tiling) String() string {
	return tilingNames[t]
}

// IsStdY reports whether this is one of the gen9 standard tiling formats,
// which carry their own alignment rules.
func (t Tiling) IsStdY() bool {
	return t == TilingYf || t == TilingYs
}

// TilingFlags selects the set of tilings a surface is permitted to use.
type TilingFlags int32

var tilingFlagsMapping = common.NewFlagStringMapping[TilingFlags]()

func (f TilingFlags) Register(str string) {
	tilingFlagsMapping.Register(f, str)
}
func (f TilingFlags) String() string {
	return tilingFlagsMapping.FlagsToString(f)
}

const (
	TilingLinearBit TilingFlags = 1 << iota
	TilingXBit
	TilingY0Bit
	TilingWBit
	TilingYfBit
	TilingYsBit

	TilingAnyMask TilingFlags = TilingLinearBit | TilingXBit | TilingY0Bit |
		TilingWBit | TilingYfBit | TilingYsBit
)

func init() {
	TilingLinearBit.Register("TilingLinearBit")
	TilingXBit.Register("TilingXBit")
	TilingY0Bit.Register("TilingY0Bit")
	TilingWBit.Register("TilingWBit")
	TilingYfBit.Register("TilingYfBit")
	TilingYsBit.Register("TilingYsBit")
}

// Bit returns the TilingFlags bit corresponding to this tiling.
func (t Tiling) Bit() TilingFlags {
	return 1 << TilingFlags(t)
}

// MSAALayout describes how a multisampled surface arranges its samples.
type MSAALayout uint8

const (
	// MSAALayoutNone is the single-sample layout
	MSAALayoutNone MSAALayout = iota
	// MSAALayoutInterleaved spreads samples through an enlarged level-0
	// footprint, used by depth and stencil surfaces
	MSAALayoutInterleaved
	// MSAALayoutArray stores each sample as its own array slice, used by
	// multisampled color surfaces
	MSAALayoutArray
)

var msaaLayoutNames = map[MSAALayout]string{
	MSAALayoutNone:        "MSAALayoutNone",
	MSAALayoutInterleaved: "MSAALayoutInterleaved",
	MSAALayoutArray:       "MSAALayoutArray",
}

func (l MSAALayout) String() string {
	return msaaLayoutNames[l]
}

// UsageFlags are hardware surface-usage bits. They shape layout decisions
// (stencil gets W tiling, render targets get stricter pitch alignment) and are
// baked into surface-state descriptors.
type UsageFlags int32

var usageFlagsMapping = common.NewFlagStringMapping[UsageFlags]()

func (f UsageFlags) Register(str string) {
	usageFlagsMapping.Register(f, str)
}
func (f UsageFlags) String() string {
	return usageFlagsMapping.FlagsToString(f)
}

const (
	UsageTextureBit UsageFlags = 1 << iota
	UsageRenderTargetBit
	UsageDepthBit
	UsageStencilBit
	UsageStorageBit
	UsageCubeBit
	UsageDisableAuxBit
)

func init() {
	UsageTextureBit.Register("UsageTextureBit")
	UsageRenderTargetBit.Register("UsageRenderTargetBit")
	UsageDepthBit.Register("UsageDepthBit")
	UsageStencilBit.Register("UsageStencilBit")
	UsageStorageBit.Register("UsageStorageBit")
	UsageCubeBit.Register("UsageCubeBit")
	UsageDisableAuxBit.Register("UsageDisableAuxBit")
}

// Extent3D is a three-dimensional extent, in whatever unit the context
// declares (pixels, samples, or elements).
type Extent3D struct {
	Width  int
	Height int
	Depth  int
}

// Extent4D is an extent plus an array length.
type Extent4D struct {
	Width    int
	Height   int
	Depth    int
	ArrayLen int
}

// SurfInitInfo is the request accepted by SurfInit. The caller guarantees
// extents, level, layer, and sample counts are all at least 1; this layer
// asserts instead of validating.
type SurfInitInfo struct {
	Dim    SurfDim
	Format Format

	Width    int
	Height   int
	Depth    int
	Levels   int
	ArrayLen int
	Samples  int

	// MinAlignment, when non-zero, raises the surface's base alignment
	MinAlignment int
	// MinPitch, when non-zero, raises the surface's row pitch
	MinPitch int

	Usage       UsageFlags
	TilingFlags TilingFlags
}

// FinishmeReporter receives a signal whenever a code path that exists in the
// hardware documentation but is unvalidated (or unimplemented) in this driver
// is reached. Implementations must never suppress the signal silently.
type FinishmeReporter interface {
	Finishme(feature string)
}

// Device carries the generation-specific state the layout engine needs: the
// capability descriptor and the alignment-engine chain for this generation.
type Device struct {
	Info     *hwinfo.DeviceInfo
	reporter FinishmeReporter
	align    AlignmentEngine
}

// NewDevice builds the layout device for the given hardware generation. The
// reporter must be non-nil; unvalidated layout paths report through it.
func NewDevice(info *hwinfo.DeviceInfo, reporter FinishmeReporter) (*Device, error) {
	engine, err := alignmentEngineForGen(info.Gen, reporter)
	if err != nil {
		return nil, err
	}

	return &Device{
		Info:     info,
		reporter: reporter,
		align:    engine,
	}, nil
}

// ChooseLODAlignmentEl computes the minimum alignment, in elements, that every
// LOD of a surface described by info must satisfy under the given tiling and
// multisample layout.
func (d *Device) ChooseLODAlignmentEl(info *SurfInitInfo, tiling Tiling, msaaLayout MSAALayout) Extent3D {
	return d.align.ChooseLODAlignmentEl(info, tiling, msaaLayout)
}
