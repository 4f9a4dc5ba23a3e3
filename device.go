// Package anvil is a software rendition of an Intel gen8/gen9 Vulkan driver's
// resource layout and pipeline compilation core. It lays out images and
// buffers onto surfaces, encodes the hardware surface-state blocks that
// describe them, and drives shader compilation through binding-table
// assignment, scratch accounting, and URB partitioning.
//
// The device owns the backing pools for surface states, uploaded shader
// kernels, and scratch space. Objects created from it are referenced through
// opaque handles and must be destroyed through the device that created them.
package anvil

import (
	"sync/atomic"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/anvil/hwinfo"
	"github.com/vkngwrapper/anvil/isl"
	"github.com/vkngwrapper/anvil/statepool"
	"golang.org/x/exp/slog"
)

// Device is the top-level object resources and pipelines are created from.
type Device struct {
	logger *slog.Logger
	flags  CreateFlags

	info      *hwinfo.DeviceInfo
	islDevice *isl.Device

	surfaceStatePool *statepool.Pool
	programStore     *statepool.Arena
	scratchPool      *statepool.ScratchPool

	images      *registry[*Image]
	imageViews  *registry[*ImageView]
	buffers     *registry[*Buffer]
	bufferViews *registry[*BufferView]
	pipelines   *registry[*Pipeline]

	finishmeCount uint64
}

// New creates a Device for the provided hardware description.
func New(logger *slog.Logger, info *hwinfo.DeviceInfo, options CreateOptions) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if info == nil {
		return nil, cerrors.New("attempted to create a device with a nil hardware description")
	}

	slots := options.SurfaceStateSlots
	if slots == 0 {
		slots = defaultSurfaceStateSlots
	}
	storeCapacity := options.ProgramStoreCapacity
	if storeCapacity == 0 {
		storeCapacity = defaultProgramStoreCapacity
	}
	scratchBlockSize := options.ScratchBlockSize
	if scratchBlockSize == 0 {
		scratchBlockSize = defaultScratchBlockSize
	}

	externallySynchronized := options.Flags&DeviceCreateExternallySynchronized != 0

	device := &Device{
		logger: logger,
		flags:  options.Flags,
		info:   info,

		programStore: statepool.NewArena(storeCapacity, externallySynchronized),
		scratchPool:  statepool.NewScratchPool(scratchBlockSize, externallySynchronized),

		images:      newRegistry[*Image](externallySynchronized),
		imageViews:  newRegistry[*ImageView](externallySynchronized),
		buffers:     newRegistry[*Buffer](externallySynchronized),
		bufferViews: newRegistry[*BufferView](externallySynchronized),
		pipelines:   newRegistry[*Pipeline](externallySynchronized),
	}

	var err error
	device.surfaceStatePool, err = statepool.NewPool(slots, isl.SurfaceStateSize, externallySynchronized)
	if err != nil {
		return nil, err
	}

	device.islDevice, err = isl.NewDevice(info, device)
	if err != nil {
		return nil, err
	}

	return device, nil
}

// Info returns the hardware description this device was created for.
func (d *Device) Info() *hwinfo.DeviceInfo {
	return d.info
}

// Layout returns the surface layout engine for this device's hardware.
func (d *Device) Layout() *isl.Device {
	return d.islDevice
}

// Finishme records a hardware path that is reachable but not yet validated.
// Each report is counted and logged once per occurrence.
func (d *Device) Finishme(feature string) {
	atomic.AddUint64(&d.finishmeCount, 1)
	d.logger.Warn("FINISHME", slog.String("feature", feature))
}

// FinishmeCount returns how many unvalidated-path reports this device has seen.
func (d *Device) FinishmeCount() uint64 {
	return atomic.LoadUint64(&d.finishmeCount)
}

// Destroy tears down the device. All objects created from the device must be
// destroyed first.
func (d *Device) Destroy() error {
	live := d.images.Count() + d.imageViews.Count() + d.buffers.Count() +
		d.bufferViews.Count() + d.pipelines.Count()
	if live > 0 {
		return cerrors.Newf("attempted to destroy a device with %d live objects", live)
	}
	return nil
}

// BuildStatsString writes device statistics as a JSON string. If detailedMap
// is true, the surface-state pool and program store contents are included.
func (d *Device) BuildStatsString(detailedMap bool) string {
	writer := jwriter.NewWriter()

	objState := writer.Object()

	objState.Name("Images").Int(d.images.Count())
	objState.Name("ImageViews").Int(d.imageViews.Count())
	objState.Name("Buffers").Int(d.buffers.Count())
	objState.Name("BufferViews").Int(d.bufferViews.Count())
	objState.Name("Pipelines").Int(d.pipelines.Count())
	objState.Name("SurfaceStates").Int(d.surfaceStatePool.LiveCount())
	objState.Name("ProgramStoreBytes").Int(d.programStore.Size())
	objState.Name("ScratchBytes").Int(d.scratchPool.Size())
	objState.Name("FinishmeCount").Int(int(d.FinishmeCount()))

	if detailedMap {
		poolObj := objState.Name("SurfaceStatePool").Object()
		d.surfaceStatePool.PrintDetailedMap(&poolObj)
		poolObj.End()

		storeObj := objState.Name("ProgramStore").Object()
		d.programStore.PrintDetailedMap(&storeObj)
		storeObj.End()
	}

	objState.End()

	return string(writer.Bytes())
}
