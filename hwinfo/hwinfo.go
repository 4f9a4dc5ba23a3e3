// Package hwinfo describes the fixed capabilities of a single GPU generation:
// hardware limits that layout and compilation decisions depend on, captured once
// at device creation and read-only afterward.
package hwinfo

// URBLimits is the fixed budget of the unified return buffer shared by the
// geometry pipeline stages.
type URBLimits struct {
	// SizeKB is the total URB size in kilobytes
	SizeKB int
	// MinVSEntries is the hardware-mandated minimum number of vertex-stage entries
	MinVSEntries int
	// MaxVSEntries is the largest number of vertex-stage entries the hardware accepts
	MaxVSEntries int
	// MaxGSEntries is the largest number of geometry-stage entries the hardware accepts
	MaxGSEntries int
}

// DeviceInfo captures everything about a hardware generation that the surface
// layout engine and the shader compilation driver consult. It is supplied when
// a device object is created and must not be mutated afterward.
type DeviceInfo struct {
	// Gen is the hardware generation tag (8 for Broadwell-class parts, 9 for
	// Skylake-class parts)
	Gen int
	// IsHaswell widens the typed storage-format range on gen7.5 parts
	IsHaswell bool
	// HasLLC reports whether the CPU and GPU share a last-level cache. When false,
	// descriptor blocks written by the CPU must be flushed explicitly.
	HasLLC bool

	MaxVSThreads int
	MaxGSThreads int
	MaxWMThreads int
	MaxCSThreads int

	URB URBLimits
}

// SkylakeGT2 returns the capability descriptor for a Skylake GT2 part, the
// primary target of this driver.
func SkylakeGT2() *DeviceInfo {
	return &DeviceInfo{
		Gen:          9,
		HasLLC:       true,
		MaxVSThreads: 336,
		MaxGSThreads: 336,
		MaxWMThreads: 576,
		MaxCSThreads: 672,
		URB: URBLimits{
			SizeKB:       384,
			MinVSEntries: 64,
			MaxVSEntries: 1856,
			MaxGSEntries: 640,
		},
	}
}

// BroadwellGT2 returns the capability descriptor for a Broadwell GT2 part.
// Surfaces that gen9 does not lay out differently fall back to this
// generation's rules.
func BroadwellGT2() *DeviceInfo {
	return &DeviceInfo{
		Gen:          8,
		HasLLC:       true,
		MaxVSThreads: 504,
		MaxGSThreads: 504,
		MaxWMThreads: 384,
		MaxCSThreads: 448,
		URB: URBLimits{
			SizeKB:       384,
			MinVSEntries: 64,
			MaxVSEntries: 2560,
			MaxGSEntries: 960,
		},
	}
}
