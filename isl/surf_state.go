package isl

import (
	"encoding/binary"
)

const (
	// SurfaceStateSize is the byte size of one hardware surface-state
	// descriptor block
	SurfaceStateSize = 64
	// SurfaceStateAlignment is the alignment the sampler requires of a
	// descriptor block's base address
	SurfaceStateAlignment = 64
)

// View selects the portion of a surface a descriptor exposes: a mip/layer
// window, a format reinterpretation, and a resolved per-channel select.
type View struct {
	Format Format

	BaseLevel int
	Levels    int

	BaseArrayLayer int
	ArrayLen       int

	// ChannelSelects are the fully resolved R, G, B, A selects wired into the
	// descriptor; identity/zero/one resolution happens before this layer
	ChannelSelects [4]ChannelSelect

	Usage UsageFlags
}

// HasMatchingStorageTypedFormat reports whether the data port on this
// generation can address the format as a typed storage image. When it cannot,
// storage descriptors fall back to a raw untyped buffer view.
func (d *Device) HasMatchingStorageTypedFormat(format Format) bool {
	bs := format.Layout().BlockSize

	return bs <= 4 ||
		(bs <= 8 && (d.Info.Gen >= 8 || d.Info.IsHaswell)) ||
		d.Info.Gen >= 9
}

// FillSurfaceState writes a hardware surface-state descriptor for viewing
// surf through view into dst. baseOffset is the byte address of the surface
// within its backing allocation. level0ExtentPx carries the extent the view
// exposes at its base level, which differs from the surface's logical extent
// when an uncompressed view windows a compressed surface.
//
// dst must hold at least SurfaceStateSize bytes.
func FillSurfaceState(dst []byte, surf *Surf, view *View, baseOffset int, level0ExtentPx Extent4D) {
	if len(dst) < SurfaceStateSize {
		panic("isl: surface state destination smaller than SurfaceStateSize")
	}

	for i := 0; i < SurfaceStateSize; i++ {
		dst[i] = 0
	}

	putU32 := func(dword int, value uint32) {
		binary.LittleEndian.PutUint32(dst[dword*4:], value)
	}

	putU32(0, uint32(view.Format))
	putU32(1, uint32(view.Usage))
	putU32(2, uint32(level0ExtentPx.Width-1)|uint32(level0ExtentPx.Height-1)<<16)
	putU32(3, uint32(level0ExtentPx.Depth-1)|uint32(level0ExtentPx.ArrayLen-1)<<16)
	putU32(4, uint32(surf.RowPitch))
	putU32(5, uint32(view.BaseLevel)|uint32(view.Levels)<<8|uint32(view.BaseArrayLayer)<<16)
	putU32(6, packChannelSelects(view.ChannelSelects)|
		uint32(surf.Dim)<<12|
		uint32(surf.Tiling)<<16|
		uint32(surf.MSAALayout)<<20)
	putU32(7, uint32(surf.Samples))
	binary.LittleEndian.PutUint64(dst[8*4:], uint64(baseOffset))
	putU32(10, uint32(surf.ArrayPitchElRows()))
}

// FillBufferSurfaceState writes a descriptor that addresses a byte range as a
// (possibly raw) buffer with the given element stride.
func FillBufferSurfaceState(dst []byte, format Format, baseOffset, rangeBytes, stride int) {
	if len(dst) < SurfaceStateSize {
		panic("isl: surface state destination smaller than SurfaceStateSize")
	}

	for i := 0; i < SurfaceStateSize; i++ {
		dst[i] = 0
	}

	numElements := rangeBytes / stride

	binary.LittleEndian.PutUint32(dst[0:], uint32(format))
	binary.LittleEndian.PutUint32(dst[4:], uint32(numElements))
	binary.LittleEndian.PutUint32(dst[8:], uint32(stride))
	binary.LittleEndian.PutUint64(dst[12:], uint64(baseOffset))
}

func packChannelSelects(selects [4]ChannelSelect) uint32 {
	return uint32(selects[0]) |
		uint32(selects[1])<<3 |
		uint32(selects[2])<<6 |
		uint32(selects[3])<<9
}
