package anvil

import (
	"github.com/vkngwrapper/anvil/shaderir"
)

// DescriptorSetLayout describes the binding-table footprint of one
// descriptor set: how many surface slots it consumes per stage and how many
// of its bindings take dynamic offsets.
type DescriptorSetLayout struct {
	StageSurfaceCount  [shaderir.StageCount]int
	DynamicOffsetCount int
}

// PipelineLayout is the ordered set of descriptor sets a pipeline binds.
type PipelineLayout struct {
	Sets []*DescriptorSetLayout
}

// StageSurfaceCount is the total number of descriptor surface slots the
// layout consumes in one stage.
func (l *PipelineLayout) StageSurfaceCount(stage shaderir.Stage) int {
	total := 0
	for _, set := range l.Sets {
		total += set.StageSurfaceCount[stage]
	}
	return total
}

// DispatchMode is the execution mode a compiled kernel was generated for.
type DispatchMode uint8

const (
	DispatchModeSIMD8 DispatchMode = iota
	DispatchModeVec4
)

// NoKernel marks a kernel slot with no uploaded program.
const NoKernel = -1

// stageProgData is the metadata every compiled stage carries.
type stageProgData struct {
	BindingTable bindingTable

	// ParamCount is the number of push-constant parameter slots reserved for
	// the stage
	ParamCount int

	// ScratchPerThread is the stage's per-thread scratch requirement in bytes
	ScratchPerThread int
}

// VSProgData is the compiled vertex-stage metadata.
type VSProgData struct {
	stageProgData

	DispatchMode DispatchMode
	// URBEntrySize is the output vertex entry size in 64-byte units
	URBEntrySize int
}

// ControlDataFormat selects what a geometry shader's control data header
// carries.
type ControlDataFormat uint8

const (
	ControlDataFormatNone ControlDataFormat = iota
	// ControlDataFormatCut stores one cut bit per emitted vertex
	ControlDataFormatCut
	// ControlDataFormatStreamID stores a two-bit stream ID per emitted vertex
	ControlDataFormatStreamID
)

// GSProgData is the compiled geometry-stage metadata.
type GSProgData struct {
	stageProgData

	ControlDataFormat           ControlDataFormat
	ControlDataHeaderSizeHwords int
	OutputVertexSizeHwords      int
	// URBEntrySize is in 64-byte units on gen7 and later
	URBEntrySize       int
	Invocations        int
	IncludePrimitiveID bool
}

// WMProgData is the compiled fragment-stage metadata.
type WMProgData struct {
	stageProgData

	BarycentricInterpModes uint32
	UsesKill               bool
	ComputedDepthMode      shaderir.DepthLayout
	NumVaryingInputs       int
}

// CSProgData is the compiled compute-stage metadata.
type CSProgData struct {
	stageProgData

	SIMDWidth int
}

// Pipeline is a fully compiled pipeline: uploaded kernels, per-stage
// metadata, the scratch layout, and the URB partition the stages share.
type Pipeline struct {
	VS *VSProgData
	GS *GSProgData
	WM *WMProgData
	CS *CSProgData

	// Kernel offsets into the device program store. A slot holding NoKernel
	// has no program for that dispatch width.
	VSSimd8  int
	VSVec4   int
	GSVec4   int
	PSSimd8  int
	PSSimd16 int
	CSSimd   int

	// ScratchStart is each stage's byte offset into the shared scratch
	// space; TotalScratch is the overall requirement
	ScratchStart [shaderir.StageCount]int
	TotalScratch int

	URB URBPartition
}

func newPipeline() *Pipeline {
	return &Pipeline{
		VSSimd8:  NoKernel,
		VSVec4:   NoKernel,
		GSVec4:   NoKernel,
		PSSimd8:  NoKernel,
		PSSimd16: NoKernel,
		CSSimd:   NoKernel,
	}
}

// ActiveStages reports which stages the pipeline carries programs for.
func (p *Pipeline) ActiveStages() []shaderir.Stage {
	var stages []shaderir.Stage
	if p.VS != nil {
		stages = append(stages, shaderir.StageVertex)
	}
	if p.GS != nil {
		stages = append(stages, shaderir.StageGeometry)
	}
	if p.WM != nil {
		stages = append(stages, shaderir.StageFragment)
	}
	if p.CS != nil {
		stages = append(stages, shaderir.StageCompute)
	}
	return stages
}

// Pipeline resolves a handle to the pipeline it refers to.
func (d *Device) Pipeline(handle PipelineHandle) (*Pipeline, error) {
	return d.pipelines.Get(Handle(handle))
}

// DestroyPipeline releases the pipeline behind the handle. Uploaded kernels
// stay resident in the program store.
func (d *Device) DestroyPipeline(handle PipelineHandle) error {
	_, err := d.pipelines.Remove(Handle(handle))
	return err
}

// uploadKernel places compiled machine code into the device program store at
// the instruction-fetch alignment and returns its offset.
func (d *Device) uploadKernel(code []byte) int {
	return d.programStore.Upload(code, kernelAlignment)
}

const kernelAlignment = 64
