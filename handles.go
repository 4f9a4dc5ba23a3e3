package anvil

import (
	"sync/atomic"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/anvil/internal/utils"
)

// Handle is an opaque reference to a device-owned object. Handle values are
// never reused, so a lookup with a stale handle fails rather than aliasing a
// newer object.
type Handle uint64

// NoHandle is the zero Handle and never refers to a live object.
const NoHandle Handle = 0

// Typed handles for each object class the device hands out.
type (
	ImageHandle      Handle
	ImageViewHandle  Handle
	BufferHandle     Handle
	BufferViewHandle Handle
	PipelineHandle   Handle
)

var StaleHandleError = errors.New("handle does not refer to a live object")

// registry maps handles to live objects. The counter is shared process-wide
// so handles stay unique even across registries.
var nextHandleValue uint64

type registry[T any] struct {
	mutex   utils.OptionalMutex
	entries *swiss.Map[Handle, T]
}

func newRegistry[T any](externallySynchronized bool) *registry[T] {
	return &registry[T]{
		mutex: utils.OptionalMutex{
			UseMutex: !externallySynchronized,
		},
		entries: swiss.NewMap[Handle, T](31),
	}
}

func (r *registry[T]) Put(value T) Handle {
	handle := Handle(atomic.AddUint64(&nextHandleValue, 1))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.entries.Put(handle, value)
	return handle
}

func (r *registry[T]) Get(handle Handle) (T, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	value, ok := r.entries.Get(handle)
	if !ok {
		return value, errors.WithStack(StaleHandleError)
	}
	return value, nil
}

func (r *registry[T]) Remove(handle Handle) (T, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	value, ok := r.entries.Get(handle)
	if !ok {
		return value, errors.WithStack(StaleHandleError)
	}
	r.entries.Delete(handle)
	return value, nil
}

func (r *registry[T]) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.entries.Count()
}
