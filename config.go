package anvil

import "github.com/vkngwrapper/core/v2/common"

// CreateFlags indicate specific device behaviors to activate or deactivate
type CreateFlags int32

var deviceCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	deviceCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return deviceCreateFlagsMapping.FlagsToString(f)
}

const (
	// DeviceCreateExternallySynchronized ensures that this device and all objects created from it
	// will not be synchronized internally. The consumer must guarantee they are used from only one
	// thread at a time or are synchronized by some other mechanism, but performance may improve
	// because internal mutexes are not used.
	DeviceCreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	DeviceCreateExternallySynchronized.Register("DeviceCreateExternallySynchronized")
}

const (
	// defaultSurfaceStateSlots is the number of fixed surface-state slots the device
	// pool starts with when CreateOptions does not provide one
	defaultSurfaceStateSlots = 4096
	// defaultProgramStoreCapacity is the initial instruction-store capacity, 1Mb
	defaultProgramStoreCapacity = 1024 * 1024
	// defaultScratchBlockSize is the granularity scratch space grows by, 16Kb
	defaultScratchBlockSize = 16 * 1024
	// defaultStreamBlockSize is the block size for transient surface-state streams
	defaultStreamBlockSize = 16 * 1024
)

// CreateOptions contains optional settings when creating a device
type CreateOptions struct {
	// Flags indicates specific device behaviors to activate or deactivate
	Flags CreateFlags

	// SurfaceStateSlots is the number of slots in the fixed surface-state pool.
	// It must be a power of two. Leave it 0 to accept the default.
	SurfaceStateSlots int

	// ProgramStoreCapacity is the initial capacity of the shader instruction
	// store in bytes. Leave it 0 to accept the default.
	ProgramStoreCapacity int

	// ScratchBlockSize is the granularity the shared scratch space grows by,
	// in bytes. Leave it 0 to accept the default.
	ScratchBlockSize int
}
