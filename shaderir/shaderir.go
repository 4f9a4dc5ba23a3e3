// Package shaderir defines the intermediate shader representation the
// compilation driver consumes. A front end (SPIR-V translation, or the meta
// helpers handing over prebuilt modules) produces these; the driver treats the
// instruction payload as opaque and reads only the declared interface.
package shaderir

// Stage identifies a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageGeometry
	StageFragment
	StageCompute

	// StageCount is the number of stage slots a pipeline carries
	StageCount
)

var stageNames = map[Stage]string{
	StageVertex:   "vertex",
	StageGeometry: "geometry",
	StageFragment: "fragment",
	StageCompute:  "compute",
}

func (s Stage) String() string {
	return stageNames[s]
}

// InterpQualifier is the interpolation mode declared on a fragment input.
type InterpQualifier uint8

const (
	InterpNone InterpQualifier = iota
	InterpSmooth
	InterpFlat
	InterpNoPerspective
)

// Varying is one declared input or output slot.
type Varying struct {
	// Slot is the varying location
	Slot int
	// Interp is the declared interpolation qualifier, fragment inputs only
	Interp InterpQualifier
	// Centroid and Sample carry the matching declaration qualifiers
	Centroid bool
	Sample   bool
}

// OutputTopology is the primitive topology a geometry shader emits.
type OutputTopology uint8

const (
	TopologyPoints OutputTopology = iota
	TopologyLineStrip
	TopologyTriangleStrip
)

// DepthLayout is a fragment shader's declared depth-output contract.
type DepthLayout uint8

const (
	DepthLayoutNone DepthLayout = iota
	DepthLayoutAny
	DepthLayoutGreater
	DepthLayoutLess
	DepthLayoutUnchanged
)

// Module is one translated shader. Everything the compilation driver needs is
// declared up front; Code is an opaque payload interpreted only by the code
// generator.
type Module struct {
	Stage      Stage
	EntryPoint string

	Inputs  []Varying
	Outputs []Varying

	// UniformComponents is the number of scalar uniform components the shader
	// reads; non-zero means the stage uses push constants
	UniformComponents int
	// ImageCount is the number of storage images the shader declares
	ImageCount int

	// WritesPointSize reports whether the shader writes the point-size output
	WritesPointSize bool

	// UsesKill reports whether a fragment shader can discard
	UsesKill bool
	// DepthLayout is the fragment depth-output contract
	DepthLayout DepthLayout

	// Geometry-stage interface
	OutputTopology   OutputTopology
	VerticesIn       int
	VerticesOut      int
	Invocations      int
	UsesEndPrimitive bool
	UsesStreams      bool
	ReadsPrimitiveID bool

	// Code is the opaque instruction payload handed to the code generator
	Code []byte
}

// WritesOutput reports whether the module declares an output at slot.
func (m *Module) WritesOutput(slot int) bool {
	for _, out := range m.Outputs {
		if out.Slot == slot {
			return true
		}
	}
	return false
}
