package statepool

import (
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocFree(t *testing.T) {
	pool, err := NewPool(4, 64, false)
	require.NoError(t, err)
	require.Equal(t, 64, pool.SlotSize())

	state, err := pool.Alloc()
	require.NoError(t, err)
	require.Equal(t, 64, state.AllocSize)
	require.Len(t, state.Map, 64)
	require.Equal(t, 0, state.Offset%64)
	require.Equal(t, 1, pool.LiveCount())

	pool.Free(state)
	require.Equal(t, 0, pool.LiveCount())
}

func TestPoolExhaustion(t *testing.T) {
	pool, err := NewPool(2, 64, false)
	require.NoError(t, err)

	first, err := pool.Alloc()
	require.NoError(t, err)
	second, err := pool.Alloc()
	require.NoError(t, err)
	require.NotEqual(t, first.Offset, second.Offset)

	_, err = pool.Alloc()
	require.Error(t, err)

	pool.Free(first)
	reused, err := pool.Alloc()
	require.NoError(t, err)
	require.Equal(t, first.Offset, reused.Offset)
}

func TestPoolFreeEmptyStateIsNoOp(t *testing.T) {
	pool, err := NewPool(2, 64, false)
	require.NoError(t, err)

	pool.Free(State{})
	require.Equal(t, 0, pool.LiveCount())
}

func TestPoolFreeForeignStatePanics(t *testing.T) {
	pool, err := NewPool(2, 64, false)
	require.NoError(t, err)

	require.Panics(t, func() {
		pool.Free(State{Offset: 32, AllocSize: 64})
	})
}

func TestPoolRejectsBadSlotSize(t *testing.T) {
	_, err := NewPool(4, 96, false)
	require.Error(t, err)
}

func TestStreamAlloc(t *testing.T) {
	stream := NewStream(256)

	first := stream.Alloc(64, 64)
	require.Equal(t, 0, first.Offset)
	require.Equal(t, 64, first.AllocSize)

	second := stream.Alloc(16, 64)
	require.Equal(t, 64, second.Offset)

	third := stream.Alloc(32, 64)
	require.Equal(t, 128, third.Offset)
}

func TestStreamGrowsAcrossBlocks(t *testing.T) {
	stream := NewStream(128)

	stream.Alloc(100, 4)
	// 100 aligned to 4 is 100 and 100+64 crosses the block boundary, so the
	// allocation restarts at the next block
	second := stream.Alloc(64, 4)
	require.Equal(t, 128, second.Offset)
	require.Len(t, second.Map, 64)
}

func TestStreamReset(t *testing.T) {
	stream := NewStream(128)
	stream.Alloc(128, 64)
	stream.Alloc(128, 64)

	stream.Reset()
	state := stream.Alloc(64, 64)
	require.Equal(t, 0, state.Offset)
}

func TestStreamRejectsOversizedAlloc(t *testing.T) {
	stream := NewStream(64)
	require.Panics(t, func() {
		stream.Alloc(128, 64)
	})
}

func TestArenaUpload(t *testing.T) {
	arena := NewArena(1024, false)

	first := arena.Upload([]byte{1, 2, 3}, 64)
	require.Equal(t, 0, first)

	second := arena.Upload([]byte{4, 5}, 64)
	require.Equal(t, 64, second)

	require.Equal(t, []byte{1, 2, 3}, arena.At(first, 3))
	require.Equal(t, []byte{4, 5}, arena.At(second, 2))
	require.Equal(t, 66, arena.Size())
}

func TestArenaOffsetsAreStable(t *testing.T) {
	arena := NewArena(16, false)

	offset := arena.Upload([]byte{7, 7, 7, 7}, 4)
	for i := 0; i < 64; i++ {
		arena.Upload(make([]byte, 100), 64)
	}
	require.Equal(t, []byte{7, 7, 7, 7}, arena.At(offset, 4))
}

func TestScratchPoolGrowsInBlocks(t *testing.T) {
	scratch := NewScratchPool(1024, false)
	require.Equal(t, 0, scratch.Size())

	scratch.EnsureCapacity(100)
	require.Equal(t, 1024, scratch.Size())

	scratch.EnsureCapacity(1025)
	require.Equal(t, 2048, scratch.Size())

	// Never shrinks
	scratch.EnsureCapacity(10)
	require.Equal(t, 2048, scratch.Size())
}

func TestPoolPrintDetailedMap(t *testing.T) {
	pool, err := NewPool(4, 64, false)
	require.NoError(t, err)
	_, err = pool.Alloc()
	require.NoError(t, err)

	writer := jwriter.NewWriter()
	obj := writer.Object()
	pool.PrintDetailedMap(&obj)
	obj.End()

	require.Contains(t, string(writer.Bytes()), "\"LiveSlots\":1")
}
