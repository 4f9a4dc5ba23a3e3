package statepool

import (
	"github.com/vkngwrapper/anvil/internal/utils"
)

// ScratchPool sizes the device's scratch backing allocation: per-thread spill
// space shared by every pipeline. It only ever grows, in whole blocks, to the
// worst-case requirement seen so far.
type ScratchPool struct {
	mutex utils.OptionalMutex

	blockSize int
	size      int
}

// NewScratchPool creates a scratch pool that grows in blockSize increments.
func NewScratchPool(blockSize int, externallySynchronized bool) *ScratchPool {
	return &ScratchPool{
		mutex:     utils.OptionalMutex{UseMutex: !externallySynchronized},
		blockSize: blockSize,
	}
}

// EnsureCapacity grows the pool until it is at least required bytes. It never
// shrinks.
func (s *ScratchPool) EnsureCapacity(required int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for s.size < required {
		s.size += s.blockSize
	}
}

// Size returns the pool's current capacity in bytes.
func (s *ScratchPool) Size() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.size
}
