package isl

// Format identifies a hardware surface format: the bit layout the sampler and
// render-target hardware read, as opposed to the API-level format an image was
// created with. A single API format can map to different hardware formats per
// aspect (combined depth/stencil) or per usage (raw storage fallback).
type Format int32

const (
	// FormatRaw addresses a surface as an untyped linear byte range. It is used
	// as the storage fallback when no typed format exists at the surface's
	// bytes-per-pixel on the target generation.
	FormatRaw Format = iota
	FormatR8Unorm
	FormatR8Uint
	FormatR8G8Unorm
	FormatR8G8B8A8Unorm
	FormatR8G8B8A8Srgb
	FormatB8G8R8A8Unorm
	FormatB8G8R8A8Srgb
	FormatB5G5R5A1Unorm
	FormatB4G4R4A4Unorm
	FormatR16G16B16A16Float
	FormatR32G32Float
	FormatR32G32B32Float
	FormatR32G32B32A32Float

	// FormatR24UnormX8 is the depth portion of a packed depth24/stencil8
	// surface. The top byte is undefined padding.
	FormatR24UnormX8
	FormatR16Unorm
	FormatR32Float

	FormatBC1RGBUnorm
	FormatBC3Unorm
	FormatETC2R8G8B8Unorm
)

// ChannelSelect is a hardware shader-channel-select encoding, wired directly
// into surface-state descriptors. The numeric values match the SCS fields of
// RENDER_SURFACE_STATE: 0/1 are the constants, 4-7 select a source channel.
type ChannelSelect uint8

const (
	ChannelSelectZero  ChannelSelect = 0
	ChannelSelectOne   ChannelSelect = 1
	ChannelSelectRed   ChannelSelect = 4
	ChannelSelectGreen ChannelSelect = 5
	ChannelSelectBlue  ChannelSelect = 6
	ChannelSelectAlpha ChannelSelect = 7
)

var channelSelectNames = map[ChannelSelect]string{
	ChannelSelectZero:  "ChannelSelectZero",
	ChannelSelectOne:   "ChannelSelectOne",
	ChannelSelectRed:   "ChannelSelectRed",
	ChannelSelectGreen: "ChannelSelectGreen",
	ChannelSelectBlue:  "ChannelSelectBlue",
	ChannelSelectAlpha: "ChannelSelectAlpha",
}

func (c ChannelSelect) String() string {
	return channelSelectNames[c]
}

// FormatSwizzle is a format's internal channel permutation: the mapping from
// the RGBA order the API speaks to the channel order the format stores in
// memory. Identity for most formats.
type FormatSwizzle struct {
	R, G, B, A ChannelSelect
}

// RGBASwizzle is the identity permutation.
var RGBASwizzle = FormatSwizzle{ChannelSelectRed, ChannelSelectGreen, ChannelSelectBlue, ChannelSelectAlpha}

// FormatLayout describes the physical layout of a hardware format. Looked up
// from a process-wide static table and never mutated.
type FormatLayout struct {
	// BlockSize is the size in bytes of one element (a pixel for uncompressed
	// formats, a compression block for compressed formats)
	BlockSize int
	// BlockWidth and BlockHeight are the compression block dimensions in
	// pixels, 1x1 for uncompressed formats
	BlockWidth  int
	BlockHeight int
	BlockDepth  int

	Name string
}

var formatLayouts = map[Format]FormatLayout{
	FormatRaw:               {BlockSize: 1, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "RAW"},
	FormatR8Unorm:           {BlockSize: 1, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R8_UNORM"},
	FormatR8Uint:            {BlockSize: 1, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R8_UINT"},
	FormatR8G8Unorm:         {BlockSize: 2, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R8G8_UNORM"},
	FormatR8G8B8A8Unorm:     {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R8G8B8A8_UNORM"},
	FormatR8G8B8A8Srgb:      {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R8G8B8A8_UNORM_SRGB"},
	FormatB8G8R8A8Unorm:     {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "B8G8R8A8_UNORM"},
	FormatB8G8R8A8Srgb:      {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "B8G8R8A8_UNORM_SRGB"},
	FormatB5G5R5A1Unorm:     {BlockSize: 2, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "B5G5R5A1_UNORM"},
	FormatB4G4R4A4Unorm:     {BlockSize: 2, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "B4G4R4A4_UNORM"},
	FormatR16G16B16A16Float: {BlockSize: 8, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R16G16B16A16_FLOAT"},
	FormatR32G32Float:       {BlockSize: 8, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R32G32_FLOAT"},
	FormatR32G32B32Float:    {BlockSize: 12, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R32G32B32_FLOAT"},
	FormatR32G32B32A32Float: {BlockSize: 16, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R32G32B32A32_FLOAT"},
	FormatR24UnormX8:        {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R24_UNORM_X8_TYPELESS"},
	FormatR16Unorm:          {BlockSize: 2, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R16_UNORM"},
	FormatR32Float:          {BlockSize: 4, BlockWidth: 1, BlockHeight: 1, BlockDepth: 1, Name: "R32_FLOAT"},
	FormatBC1RGBUnorm:       {BlockSize: 8, BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, Name: "BC1_UNORM"},
	FormatBC3Unorm:          {BlockSize: 16, BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, Name: "BC3_UNORM"},
	FormatETC2R8G8B8Unorm:   {BlockSize: 8, BlockWidth: 4, BlockHeight: 4, BlockDepth: 1, Name: "ETC2_RGB8"},
}

// Layout returns the physical layout descriptor for this format. Requesting
// the layout for a format outside the table is a programming error.
func (f Format) Layout() FormatLayout {
	layout, ok := formatLayouts[f]
	if !ok {
		panic("isl: no layout registered for format")
	}
	return layout
}

func (f Format) String() string {
	return f.Layout().Name
}

// IsCompressed reports whether elements of this format are compression blocks
// rather than single pixels.
func (f Format) IsCompressed() bool {
	layout := f.Layout()
	return layout.BlockWidth != 1 || layout.BlockHeight != 1
}
