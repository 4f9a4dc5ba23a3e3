// Package statepool provides the device-level allocators that back hardware
// state: a fixed-slot pool for surface-state descriptor blocks, a transient
// stream allocator for per-command-buffer state, and an append-only arena used
// as the shared shader program store.
package statepool

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/vkngwrapper/anvil/gfxutil"
	"github.com/vkngwrapper/anvil/internal/utils"
)

// State is one allocation handed out by a pool or stream: a window into the
// allocator's backing memory. An AllocSize of zero means "never allocated"
// and is the idiom consumers use to track optional descriptor blocks.
type State struct {
	// Offset is the byte offset of this state within the owning allocator
	Offset int
	// Map is the CPU-writable window for this state
	Map []byte
	// AllocSize is the size handed out, zero for an empty State
	AllocSize int
}

// Pool is a fixed-size slot pool. Every slot has the same size and alignment;
// slots are allocated and freed independently and reused after free.
type Pool struct {
	mutex utils.OptionalMutex

	backing   []byte
	slotSize  int
	freeSlots []int
	liveCount int
}

// NewPool creates a pool of slotCount slots of slotSize bytes each, every
// slot aligned to slotSize. slotSize must be a power of two.
func NewPool(slotCount, slotSize int, externallySynchronized bool) (*Pool, error) {
	if slotCount < 1 {
		return nil, errors.New("statepool: pool must have at least one slot")
	}
	if err := gfxutil.CheckPow2(slotSize, "slotSize"); err != nil {
		return nil, err
	}

	pool := &Pool{
		mutex:    utils.OptionalMutex{UseMutex: !externallySynchronized},
		backing:  make([]byte, slotCount*slotSize),
		slotSize: slotSize,
	}
	for slot := slotCount - 1; slot >= 0; slot-- {
		pool.freeSlots = append(pool.freeSlots, slot)
	}

	return pool, nil
}

// Alloc takes a free slot from the pool. It fails with an exhaustion error,
// never blocks, when no slots remain.
func (p *Pool) Alloc() (State, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.freeSlots) == 0 {
		return State{}, errors.New("statepool: descriptor pool exhausted")
	}

	slot := p.freeSlots[len(p.freeSlots)-1]
	p.freeSlots = p.freeSlots[:len(p.freeSlots)-1]
	p.liveCount++

	offset := slot * p.slotSize
	return State{
		Offset:    offset,
		Map:       p.backing[offset : offset+p.slotSize],
		AllocSize: p.slotSize,
	}, nil
}

// Free returns a slot to the pool. Freeing an empty State is a no-op; freeing
// a State this pool did not hand out is a caller error.
func (p *Pool) Free(state State) {
	if state.AllocSize == 0 {
		return
	}
	if state.AllocSize != p.slotSize || state.Offset%p.slotSize != 0 ||
		state.Offset < 0 || state.Offset >= len(p.backing) {
		panic("statepool: freed state does not belong to this pool")
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.freeSlots = append(p.freeSlots, state.Offset/p.slotSize)
	p.liveCount--
}

// LiveCount returns the number of currently allocated slots.
func (p *Pool) LiveCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.liveCount
}

// SlotSize returns the fixed size of every slot in the pool.
func (p *Pool) SlotSize() int {
	return p.slotSize
}

// PrintDetailedMap populates a json object with the pool's occupancy.
func (p *Pool) PrintDetailedMap(json *jwriter.ObjectState) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	json.Name("SlotSize").Int(p.slotSize)
	json.Name("TotalSlots").Int(len(p.backing) / p.slotSize)
	json.Name("LiveSlots").Int(p.liveCount)
}
