package anvil

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/anvil/shaderir"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	// MaxRenderTargets is the number of binding-table slots reserved at the
	// front of the fragment stage's table for render targets
	MaxRenderTargets = 8

	// maxBindingTableSize is the hardware limit on binding-table entries
	maxBindingTableSize = 240
)

// bindingTable maps a pipeline layout's descriptor sets onto binding-table
// slots for one stage.
type bindingTable struct {
	// SurfaceCount is the total number of slots the table occupies,
	// including the render-target bias
	SurfaceCount int

	// SetOffsets[i] is the slot where descriptor set i begins
	SetOffsets []int
}

// assignBindings lays a pipeline layout's descriptor surfaces out into
// binding-table slots for one stage. The fragment stage's table is biased so
// render targets occupy the first MaxRenderTargets slots. A nil layout
// produces a table with only the bias.
func assignBindings(layout *PipelineLayout, stage shaderir.Stage) (bindingTable, common.VkResult, error) {
	bias := 0
	if stage == shaderir.StageFragment {
		bias = MaxRenderTargets
	}

	if layout == nil {
		return bindingTable{SurfaceCount: bias}, core1_0.VKSuccess, nil
	}

	table := bindingTable{
		SurfaceCount: bias,
		SetOffsets:   make([]int, len(layout.Sets)),
	}

	slot := bias
	for setIndex, set := range layout.Sets {
		table.SetOffsets[setIndex] = slot
		slot += set.StageSurfaceCount[stage]
	}
	table.SurfaceCount = slot

	if table.SurfaceCount > maxBindingTableSize {
		return bindingTable{}, core1_0.VKErrorOutOfHostMemory, cerrors.Newf(
			"%s stage requires %d binding-table entries, the hardware provides %d",
			stage, table.SurfaceCount, maxBindingTableSize)
	}

	return table, core1_0.VKSuccess, nil
}

// DynamicOffsetCount is the total number of dynamic buffer bindings across
// the layout's sets.
func (l *PipelineLayout) DynamicOffsetCount() int {
	total := 0
	for _, set := range l.Sets {
		total += set.DynamicOffsetCount
	}
	return total
}
