package anvil

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/anvil/isl"
	"github.com/vkngwrapper/anvil/statepool"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// BufferCreateInfo describes a linear buffer resource.
type BufferCreateInfo struct {
	Size  int
	Usage core1_0.BufferUsageFlags
}

// Buffer is a linear memory resource. Like images, buffers carry only layout
// information; the memory range itself is the consumer's to provide.
type Buffer struct {
	Size  int
	Usage core1_0.BufferUsageFlags
}

// WholeSize as a BufferViewCreateInfo.Range runs the view to the end of the
// buffer.
const WholeSize = -1

// BufferViewCreateInfo describes a formatted window onto a buffer.
type BufferViewCreateInfo struct {
	Buffer BufferHandle
	Format core1_0.Format
	Offset int

	// Range is the view's length in bytes, or WholeSize to run to the end of
	// the buffer
	Range int
}

// BufferView is a texel view onto a buffer range, with encoded surface
// states for uniform-texel and storage-texel binding.
type BufferView struct {
	Buffer *Buffer
	Format isl.Format
	Offset int
	Range  int

	// UniformSurfaceState serves uniform-texel reads, StorageSurfaceState
	// storage-texel access. A state with AllocSize 0 was not created.
	UniformSurfaceState statepool.State
	StorageSurfaceState statepool.State

	pooled bool
}

// CreateBuffer records a new buffer resource and returns a handle to it.
func (d *Device) CreateBuffer(createInfo BufferCreateInfo) (BufferHandle, common.VkResult, error) {
	if createInfo.Size < 1 {
		return 0, core1_0.VKErrorUnknown, cerrors.Newf(
			"attempted to create a buffer of size %d", createInfo.Size)
	}

	buffer := &Buffer{
		Size:  createInfo.Size,
		Usage: createInfo.Usage,
	}
	return BufferHandle(d.buffers.Put(buffer)), core1_0.VKSuccess, nil
}

// Buffer resolves a handle to the buffer it refers to.
func (d *Device) Buffer(handle BufferHandle) (*Buffer, error) {
	return d.buffers.Get(Handle(handle))
}

// DestroyBuffer releases the buffer behind the handle.
func (d *Device) DestroyBuffer(handle BufferHandle) error {
	_, err := d.buffers.Remove(Handle(handle))
	return err
}

// CreateBufferView encodes texel surface states over a buffer range. States
// come from the device pool unless a transient stream is provided.
func (d *Device) CreateBufferView(createInfo BufferViewCreateInfo, transient *statepool.Stream) (BufferViewHandle, common.VkResult, error) {
	buffer, err := d.buffers.Get(Handle(createInfo.Buffer))
	if err != nil {
		return 0, core1_0.VKErrorUnknown, err
	}

	viewRange := createInfo.Range
	if viewRange == WholeSize {
		viewRange = buffer.Size - createInfo.Offset
	}
	if createInfo.Offset < 0 || viewRange < 1 || createInfo.Offset+viewRange > buffer.Size {
		return 0, core1_0.VKErrorUnknown, cerrors.Newf(
			"view range [%d, %d) exceeds the buffer's %d bytes",
			createInfo.Offset, createInfo.Offset+viewRange, buffer.Size)
	}

	format, _, err := GetISLFormat(createInfo.Format, core1_0.ImageAspectColor, core1_0.ImageTilingLinear)
	if err != nil {
		return 0, core1_0.VKErrorFormatNotSupported, err
	}
	stride := format.Layout().BlockSize

	bufferView := &BufferView{
		Buffer: buffer,
		Format: format,
		Offset: createInfo.Offset,
		Range:  viewRange,
		pooled: transient == nil,
	}

	allocState := func() (statepool.State, error) {
		if transient != nil {
			return transient.Alloc(isl.SurfaceStateSize, isl.SurfaceStateAlignment), nil
		}
		return d.surfaceStatePool.Alloc()
	}

	if buffer.Usage&core1_0.BufferUsageUniformTexelBuffer != 0 {
		state, err := allocState()
		if err != nil {
			return 0, core1_0.VKErrorOutOfHostMemory, err
		}

		isl.FillBufferSurfaceState(state.Map, format, createInfo.Offset, viewRange, stride)
		d.flushState(state)
		bufferView.UniformSurfaceState = state
	}

	if buffer.Usage&core1_0.BufferUsageStorageTexelBuffer != 0 {
		state, err := allocState()
		if err != nil {
			d.releaseBufferViewStates(bufferView)
			return 0, core1_0.VKErrorOutOfHostMemory, err
		}

		storageFormat := format
		storageStride := stride
		if !d.islDevice.HasMatchingStorageTypedFormat(format) {
			storageFormat = isl.FormatRaw
			storageStride = 1
		}
		isl.FillBufferSurfaceState(state.Map, storageFormat, createInfo.Offset, viewRange, storageStride)
		d.flushState(state)
		bufferView.StorageSurfaceState = state
	}

	return BufferViewHandle(d.bufferViews.Put(bufferView)), core1_0.VKSuccess, nil
}

// BufferView resolves a handle to the view it refers to.
func (d *Device) BufferView(handle BufferViewHandle) (*BufferView, error) {
	return d.bufferViews.Get(Handle(handle))
}

// DestroyBufferView releases the view and returns its pool-owned states.
func (d *Device) DestroyBufferView(handle BufferViewHandle) error {
	bufferView, err := d.bufferViews.Remove(Handle(handle))
	if err != nil {
		return err
	}

	d.releaseBufferViewStates(bufferView)
	return nil
}

func (d *Device) releaseBufferViewStates(bufferView *BufferView) {
	if !bufferView.pooled {
		return
	}
	for _, state := range []statepool.State{
		bufferView.UniformSurfaceState,
		bufferView.StorageSurfaceState,
	} {
		if state.AllocSize > 0 {
			d.surfaceStatePool.Free(state)
		}
	}
}
