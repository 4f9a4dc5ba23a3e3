package statepool

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/vkngwrapper/anvil/gfxutil"
	"github.com/vkngwrapper/anvil/internal/utils"
)

// Arena is an append-only byte arena. Uploads return stable byte offsets:
// the arena grows monotonically and never compacts, so an offset stays valid
// for the arena's lifetime. The device's shared shader program store is one
// of these.
type Arena struct {
	mutex utils.OptionalMutex

	buf     []byte
	uploads int
}

// NewArena creates an arena with the given starting capacity.
func NewArena(initialCapacity int, externallySynchronized bool) *Arena {
	return &Arena{
		mutex: utils.OptionalMutex{UseMutex: !externallySynchronized},
		buf:   make([]byte, 0, initialCapacity),
	}
}

// Upload appends data at the requested power-of-two alignment and returns its
// byte offset within the arena.
func (a *Arena) Upload(data []byte, alignment uint) int {
	gfxutil.DebugCheckPow2(uint(alignment), "alignment")

	a.mutex.Lock()
	defer a.mutex.Unlock()

	offset := gfxutil.AlignUp(len(a.buf), alignment)
	for len(a.buf) < offset {
		a.buf = append(a.buf, 0)
	}
	a.buf = append(a.buf, data...)
	a.uploads++

	return offset
}

// At returns a read-only window of size bytes at offset.
func (a *Arena) At(offset, size int) []byte {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return a.buf[offset : offset+size]
}

// Size returns the current total size of the arena in bytes.
func (a *Arena) Size() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return len(a.buf)
}

// PrintDetailedMap populates a json object with the arena's usage.
func (a *Arena) PrintDetailedMap(json *jwriter.ObjectState) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	json.Name("TotalBytes").Int(len(a.buf))
	json.Name("Uploads").Int(a.uploads)
}
