package statepool

import (
	"github.com/vkngwrapper/anvil/gfxutil"
)

// Stream is a bump allocator for transient state: allocations are cheap,
// individually unaligned in lifetime, and all reclaimed together by Reset.
// Command buffers use one per recording session for mid-stream descriptors.
type Stream struct {
	blocks    [][]byte
	blockSize int
	offset    int
}

// NewStream creates a stream allocator that grows in blockSize increments.
// Individual allocations must fit in one block.
func NewStream(blockSize int) *Stream {
	return &Stream{blockSize: blockSize}
}

// Alloc carves size bytes at the requested power-of-two alignment out of the
// stream's current block, growing the stream when the block is exhausted.
func (s *Stream) Alloc(size int, alignment uint) State {
	if size > s.blockSize {
		panic("statepool: stream allocation larger than block size")
	}
	gfxutil.DebugCheckPow2(uint(alignment), "alignment")

	aligned := gfxutil.AlignUp(s.offset, alignment)
	if aligned%s.blockSize+size > s.blockSize || aligned >= len(s.blocks)*s.blockSize {
		// The allocation would cross a block boundary (or no block exists
		// yet); restart it at the next block start, which satisfies any
		// in-range alignment.
		aligned = len(s.blocks) * s.blockSize
		s.blocks = append(s.blocks, make([]byte, s.blockSize))
	}

	blockIndex := aligned / s.blockSize
	within := aligned - blockIndex*s.blockSize
	s.offset = aligned + size

	return State{
		Offset:    aligned,
		Map:       s.blocks[blockIndex][within : within+size],
		AllocSize: size,
	}
}

// Reset reclaims every allocation the stream has handed out. Outstanding
// State windows become invalid.
func (s *Stream) Reset() {
	s.offset = 0
	if len(s.blocks) > 1 {
		s.blocks = s.blocks[:1]
	}
}
