package anvil

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/anvil/gfxutil"
	"github.com/vkngwrapper/anvil/hwinfo"
	"github.com/vkngwrapper/anvil/shaderir"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

const (
	// maxPushConstantSize is the push-constant range in bytes
	maxPushConstantSize = 128
	// maxDynamicBuffers is the number of dynamic buffer bindings a pipeline
	// layout can carry
	maxDynamicBuffers = 16

	// pushConstantParamSlots is the number of 32-bit parameter slots the
	// push-constant range occupies
	pushConstantParamSlots = maxPushConstantSize / 4

	// scratchAlignment is the alignment of each stage's slice of the shared
	// scratch space
	scratchAlignment = 1024

	// maxGSURBEntrySizeBytes is the hardware bound on a geometry shader's
	// URB entry
	maxGSURBEntrySizeBytes = 64 * 1024

	// vueHeaderSlots is the number of vec4 slots the vertex URB entry header
	// occupies ahead of the user varyings
	vueHeaderSlots = 2
)

// Barycentric interpolation modes the fragment payload can request.
const (
	barycentricPerspectivePixel uint32 = 1 << iota
	barycentricPerspectiveCentroid
	barycentricPerspectiveSample
	barycentricNonPerspectivePixel
	barycentricNonPerspectiveCentroid
	barycentricNonPerspectiveSample
)

// Per-stage compilation keys. A key captures the fixed-function state the
// generated code specializes against, so compiled kernels are a pure function
// of (module, key, hardware).
type VSKey struct {
	ClampVertexColor bool
	UserClipPlanes   int
}

type GSKey struct {
	UserClipPlanes int
}

type WMKey struct {
	FlatShade        bool
	PersampleShading bool
	ReplicateAlpha   bool
	ColorOutputs     int
}

type CSKey struct{}

// CompiledProgram is what a code generator hands back for one stage.
type CompiledProgram struct {
	// Code is the generated machine code
	Code []byte

	// DispatchMode is the execution mode the code was generated for
	DispatchMode DispatchMode

	// HasSIMD16 marks fragment programs carrying a SIMD16 variant, placed at
	// SIMD16Offset bytes into Code. NoSIMD8 marks fragment programs where
	// the SIMD8 variant was dropped.
	HasSIMD16    bool
	SIMD16Offset int
	NoSIMD8      bool

	// SIMDWidth is the compute dispatch width, 8 when unset
	SIMDWidth int

	// ScratchPerThread is the per-thread spill space the code requires, in
	// bytes
	ScratchPerThread int
}

// CodeGenerator turns shader modules into machine code. Implementations must
// be deterministic for a given (module, key, hardware) triple.
type CodeGenerator interface {
	CompileVertex(module *shaderir.Module, key *VSKey, info *hwinfo.DeviceInfo) (*CompiledProgram, error)
	CompileGeometry(module *shaderir.Module, key *GSKey, info *hwinfo.DeviceInfo) (*CompiledProgram, error)
	CompileFragment(module *shaderir.Module, key *WMKey, info *hwinfo.DeviceInfo) (*CompiledProgram, error)
	CompileCompute(module *shaderir.Module, key *CSKey, info *hwinfo.DeviceInfo) (*CompiledProgram, error)
}

// GraphicsPipelineCreateInfo carries the shader modules and fixed-function
// keys for a graphics pipeline. The vertex stage is mandatory.
type GraphicsPipelineCreateInfo struct {
	VertexShader   *shaderir.Module
	GeometryShader *shaderir.Module
	FragmentShader *shaderir.Module

	Layout *PipelineLayout

	VSKey VSKey
	GSKey GSKey
	WMKey WMKey
}

// ComputePipelineCreateInfo carries the compute module for a compute
// pipeline.
type ComputePipelineCreateInfo struct {
	ComputeShader *shaderir.Module
	Layout        *PipelineLayout
	CSKey         CSKey
}

func stageParamCount(module *shaderir.Module, layout *PipelineLayout) int {
	if module.UniformComponents == 0 && (layout == nil || layout.DynamicOffsetCount() == 0) {
		return 0
	}
	// Sized for the worst case up front so relocation never reallocates:
	// the full push-constant range plus base and size for every dynamic
	// buffer binding
	return pushConstantParamSlots + 2*maxDynamicBuffers
}

func (d *Device) stageMaxThreads(stage shaderir.Stage) int {
	switch stage {
	case shaderir.StageVertex:
		return d.info.MaxVSThreads
	case shaderir.StageGeometry:
		return d.info.MaxGSThreads
	case shaderir.StageFragment:
		return d.info.MaxWMThreads
	case shaderir.StageCompute:
		return d.info.MaxCSThreads
	}
	return 0
}

// accountScratch assigns the stage its slice of the shared scratch space and
// grows the pipeline total.
func (d *Device) accountScratch(pipeline *Pipeline, stage shaderir.Stage, perThread int) {
	pipeline.ScratchStart[stage] = pipeline.TotalScratch
	if perThread > 0 {
		pipeline.TotalScratch = gfxutil.AlignUp(pipeline.TotalScratch, scratchAlignment) +
			perThread*d.stageMaxThreads(stage)
	}
}

func (d *Device) compileStage(
	module *shaderir.Module,
	layout *PipelineLayout,
	compile func() (*CompiledProgram, error),
) (*CompiledProgram, stageProgData, common.VkResult, error) {
	table, res, err := assignBindings(layout, module.Stage)
	if err != nil {
		return nil, stageProgData{}, res, err
	}

	program, err := compile()
	if err != nil {
		return nil, stageProgData{}, core1_0.VKErrorUnknown, cerrors.Wrapf(err,
			"failed to compile the %s stage", module.Stage)
	}
	if program == nil || len(program.Code) == 0 {
		return nil, stageProgData{}, core1_0.VKErrorOutOfHostMemory, cerrors.Newf(
			"the code generator produced no kernel for the %s stage", module.Stage)
	}

	return program, stageProgData{
		BindingTable:     table,
		ParamCount:       stageParamCount(module, layout),
		ScratchPerThread: program.ScratchPerThread,
	}, core1_0.VKSuccess, nil
}

// vertexURBEntrySize is the vertex output entry size in 64-byte units: the
// VUE header plus one vec4 slot per varying, padded to the hardware
// granularity.
func vertexURBEntrySize(gen int, module *shaderir.Module) int {
	slots := vueHeaderSlots + len(module.Outputs)
	bytes := slots * 16
	if gen >= 7 {
		return gfxutil.AlignUp(bytes, 64) / 64
	}
	return gfxutil.AlignUp(bytes, 128) / 128
}

// geometryControlData works out what the geometry shader's control data
// header carries and how large it is, from the output topology and the
// features the module uses.
func geometryControlData(module *shaderir.Module) (ControlDataFormat, int) {
	bitsPerVertex := 0
	format := ControlDataFormatNone

	switch module.OutputTopology {
	case shaderir.TopologyPoints:
		if module.UsesStreams {
			format = ControlDataFormatStreamID
			bitsPerVertex = 2
		}
	default:
		if module.UsesEndPrimitive {
			format = ControlDataFormatCut
			bitsPerVertex = 1
		}
	}

	bits := bitsPerVertex * module.VerticesOut
	headerHwords := gfxutil.AlignUp(bits, 256) / 256
	return format, headerHwords
}

func (d *Device) buildGSProgData(module *shaderir.Module, base stageProgData) (*GSProgData, error) {
	format, headerHwords := geometryControlData(module)

	outputSlots := vueHeaderSlots + len(module.Outputs)
	outputVertexSizeHwords := gfxutil.AlignUp(outputSlots*16, 32) / 32

	outputSizeBytes := outputVertexSizeHwords*32*module.VerticesOut + 32*headerHwords
	if d.info.Gen >= 8 {
		// One additional hword slot holds the emitted vertex count
		outputSizeBytes += 32
	}

	if outputSizeBytes > maxGSURBEntrySizeBytes {
		return nil, cerrors.Newf(
			"geometry output requires a %d byte URB entry, the hardware bound is %d",
			outputSizeBytes, maxGSURBEntrySizeBytes)
	}

	urbEntrySize := gfxutil.AlignUp(outputSizeBytes, 64) / 64
	if d.info.Gen < 7 {
		urbEntrySize = gfxutil.AlignUp(outputSizeBytes, 128) / 128
	}

	invocations := module.Invocations
	if invocations < 1 {
		invocations = 1
	}

	return &GSProgData{
		stageProgData:               base,
		ControlDataFormat:           format,
		ControlDataHeaderSizeHwords: headerHwords,
		OutputVertexSizeHwords:      outputVertexSizeHwords,
		URBEntrySize:                urbEntrySize,
		Invocations:                 invocations,
		IncludePrimitiveID:          module.ReadsPrimitiveID,
	}, nil
}

// computeBarycentricInterpModes derives the barycentric setups the fragment
// payload must provide from the declared inputs.
func computeBarycentricInterpModes(module *shaderir.Module, key *WMKey) uint32 {
	var modes uint32

	for _, input := range module.Inputs {
		if input.Interp == shaderir.InterpFlat {
			continue
		}
		noPerspective := input.Interp == shaderir.InterpNoPerspective

		var mode uint32
		switch {
		case input.Sample || key.PersampleShading:
			mode = barycentricPerspectiveSample
		case input.Centroid:
			mode = barycentricPerspectiveCentroid
		default:
			mode = barycentricPerspectivePixel
		}
		if noPerspective {
			// The non-perspective bits sit three positions above their
			// perspective counterparts
			mode <<= 3
		}
		modes |= mode
	}

	if modes == 0 {
		modes = barycentricPerspectivePixel
	}
	return modes
}

// CreateGraphicsPipeline compiles and uploads every stage of a graphics
// pipeline, then partitions the URB between the vertex and geometry stages.
func (d *Device) CreateGraphicsPipeline(createInfo GraphicsPipelineCreateInfo, generator CodeGenerator) (PipelineHandle, common.VkResult, error) {
	if createInfo.VertexShader == nil {
		return 0, core1_0.VKErrorUnknown, cerrors.New("attempted to create a graphics pipeline with no vertex stage")
	}
	if generator == nil {
		return 0, core1_0.VKErrorUnknown, cerrors.New("attempted to create a pipeline with no code generator")
	}

	pipeline := newPipeline()

	vsModule := createInfo.VertexShader
	vsProgram, vsBase, res, err := d.compileStage(vsModule, createInfo.Layout, func() (*CompiledProgram, error) {
		return generator.CompileVertex(vsModule, &createInfo.VSKey, d.info)
	})
	if err != nil {
		return 0, res, err
	}

	pipeline.VS = &VSProgData{
		stageProgData: vsBase,
		DispatchMode:  vsProgram.DispatchMode,
		URBEntrySize:  vertexURBEntrySize(d.info.Gen, vsModule),
	}
	offset := d.uploadKernel(vsProgram.Code)
	if vsProgram.DispatchMode == DispatchModeSIMD8 {
		pipeline.VSSimd8 = offset
	} else {
		pipeline.VSVec4 = offset
	}
	d.accountScratch(pipeline, shaderir.StageVertex, vsProgram.ScratchPerThread)

	if createInfo.GeometryShader != nil {
		gsModule := createInfo.GeometryShader
		gsProgram, gsBase, res, err := d.compileStage(gsModule, createInfo.Layout, func() (*CompiledProgram, error) {
			return generator.CompileGeometry(gsModule, &createInfo.GSKey, d.info)
		})
		if err != nil {
			return 0, res, err
		}

		pipeline.GS, err = d.buildGSProgData(gsModule, gsBase)
		if err != nil {
			return 0, core1_0.VKErrorUnknown, err
		}
		pipeline.GSVec4 = d.uploadKernel(gsProgram.Code)
		d.accountScratch(pipeline, shaderir.StageGeometry, gsProgram.ScratchPerThread)
	}

	if createInfo.FragmentShader != nil {
		wmModule := createInfo.FragmentShader
		wmProgram, wmBase, res, err := d.compileStage(wmModule, createInfo.Layout, func() (*CompiledProgram, error) {
			return generator.CompileFragment(wmModule, &createInfo.WMKey, d.info)
		})
		if err != nil {
			return 0, res, err
		}

		pipeline.WM = &WMProgData{
			stageProgData:          wmBase,
			BarycentricInterpModes: computeBarycentricInterpModes(wmModule, &createInfo.WMKey),
			UsesKill:               wmModule.UsesKill,
			ComputedDepthMode:      wmModule.DepthLayout,
			NumVaryingInputs:       len(wmModule.Inputs),
		}

		offset := d.uploadKernel(wmProgram.Code)
		if !wmProgram.NoSIMD8 {
			pipeline.PSSimd8 = offset
		}
		if wmProgram.HasSIMD16 {
			pipeline.PSSimd16 = offset + wmProgram.SIMD16Offset
		}
		d.accountScratch(pipeline, shaderir.StageFragment, wmProgram.ScratchPerThread)
	}

	vsEntrySize := pipeline.VS.URBEntrySize
	gsEntrySize := 0
	if pipeline.GS != nil {
		gsEntrySize = pipeline.GS.URBEntrySize
	}
	pipeline.URB = computeURBPartition(d.info, vsEntrySize, gsEntrySize, pipeline.GS != nil)

	d.scratchPool.EnsureCapacity(pipeline.TotalScratch)

	d.logger.Debug("compiled graphics pipeline",
		slog.Int("totalScratch", pipeline.TotalScratch),
		slog.Int("nrVSEntries", pipeline.URB.NrVSEntries),
		slog.Int("nrGSEntries", pipeline.URB.NrGSEntries),
	)

	return PipelineHandle(d.pipelines.Put(pipeline)), core1_0.VKSuccess, nil
}

// CreateComputePipeline compiles and uploads a compute pipeline.
func (d *Device) CreateComputePipeline(createInfo ComputePipelineCreateInfo, generator CodeGenerator) (PipelineHandle, common.VkResult, error) {
	if createInfo.ComputeShader == nil {
		return 0, core1_0.VKErrorUnknown, cerrors.New("attempted to create a compute pipeline with no compute stage")
	}
	if generator == nil {
		return 0, core1_0.VKErrorUnknown, cerrors.New("attempted to create a pipeline with no code generator")
	}

	pipeline := newPipeline()

	csModule := createInfo.ComputeShader
	csProgram, csBase, res, err := d.compileStage(csModule, createInfo.Layout, func() (*CompiledProgram, error) {
		return generator.CompileCompute(csModule, &createInfo.CSKey, d.info)
	})
	if err != nil {
		return 0, res, err
	}

	simdWidth := csProgram.SIMDWidth
	if simdWidth == 0 {
		simdWidth = 8
	}

	pipeline.CS = &CSProgData{
		stageProgData: csBase,
		SIMDWidth:     simdWidth,
	}
	pipeline.CSSimd = d.uploadKernel(csProgram.Code)
	d.accountScratch(pipeline, shaderir.StageCompute, csProgram.ScratchPerThread)

	d.scratchPool.EnsureCapacity(pipeline.TotalScratch)

	return PipelineHandle(d.pipelines.Put(pipeline)), core1_0.VKSuccess, nil
}
