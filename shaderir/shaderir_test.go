package shaderir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStageString(t *testing.T) {
	require.Equal(t, "vertex", StageVertex.String())
	require.Equal(t, "fragment", StageFragment.String())
}

func TestWritesOutput(t *testing.T) {
	module := &Module{
		Stage:   StageVertex,
		Outputs: []Varying{{Slot: 0}, {Slot: 3}},
	}

	require.True(t, module.WritesOutput(0))
	require.True(t, module.WritesOutput(3))
	require.False(t, module.WritesOutput(1))
}
