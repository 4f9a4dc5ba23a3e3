package anvil

import (
	"fmt"
	"math"

	"github.com/vkngwrapper/anvil/gfxutil"
	"github.com/vkngwrapper/anvil/hwinfo"
)

const (
	// urbChunkSize is the granularity the URB is partitioned at, in bytes
	urbChunkSize = 8192

	// pushConstantBytes is the URB space reserved for push constants ahead
	// of the stage partitions
	pushConstantBytes = 32 * 1024
)

// URBPartition is the division of the unified return buffer between push
// constants and the vertex and geometry stages. Starts and sizes are in
// chunks of urbChunkSize; entry sizes are in 64-byte units.
type URBPartition struct {
	PushConstantChunks int

	VSStart     int
	VSChunks    int
	VSEntrySize int
	NrVSEntries int

	GSStart     int
	GSChunks    int
	GSEntrySize int
	NrGSEntries int
}

// entryGranularity returns the allocation granularity for a stage's URB
// entries. Small entries are handed out in blocks of 8.
func entryGranularity(entrySize int) int {
	if entrySize < 9 {
		return 8
	}
	return 1
}

// computeURBPartition divides the URB between the vertex and geometry
// stages. Each stage is first granted the minimum footprint it cannot run
// without; leftover space is then shared in proportion to how much each
// stage could still use. The configuration is infeasible only through a
// programming error upstream, so violated floors are fatal.
func computeURBPartition(info *hwinfo.DeviceInfo, vsEntrySize, gsEntrySize int, gsPresent bool) URBPartition {
	if vsEntrySize < 1 {
		vsEntrySize = 1
	}
	if gsEntrySize < 1 {
		gsEntrySize = 1
	}

	urbChunks := info.URB.SizeKB * 1024 / urbChunkSize
	pushConstantChunks := pushConstantBytes / urbChunkSize

	vsGranularity := entryGranularity(vsEntrySize)
	gsGranularity := entryGranularity(gsEntrySize)

	vsEntryBytes := vsEntrySize * 64
	gsEntryBytes := gsEntrySize * 64

	// Floor: the hardware minimum of VS entries, and enough GS entries to
	// keep the stage from deadlocking
	vsChunks := gfxutil.AlignUp(info.URB.MinVSEntries*vsEntryBytes, urbChunkSize) / urbChunkSize
	vsWants := gfxutil.AlignUp(info.URB.MaxVSEntries*vsEntryBytes, urbChunkSize)/urbChunkSize - vsChunks

	gsChunks := 0
	gsWants := 0
	if gsPresent {
		minGSEntries := gsGranularity
		if minGSEntries < 2 {
			minGSEntries = 2
		}
		gsChunks = gfxutil.AlignUp(minGSEntries*gsEntryBytes, urbChunkSize) / urbChunkSize
		gsWants = gfxutil.AlignUp(info.URB.MaxGSEntries*gsEntryBytes, urbChunkSize)/urbChunkSize - gsChunks
	}
	totalNeeds := pushConstantChunks + vsChunks + gsChunks
	totalWants := vsWants + gsWants

	if totalNeeds > urbChunks {
		panic(fmt.Sprintf("anvil: URB floor of %d chunks exceeds the %d available", totalNeeds, urbChunks))
	}

	remaining := urbChunks - totalNeeds
	if remaining > totalWants {
		remaining = totalWants
	}

	if totalWants > 0 {
		vsAdditional := int(math.Round(float64(vsWants) * float64(remaining) / float64(totalWants)))
		vsChunks += vsAdditional
		remaining -= vsAdditional
		gsChunks += remaining
	}

	nrVSEntries := vsChunks * urbChunkSize / vsEntryBytes
	if nrVSEntries > info.URB.MaxVSEntries {
		nrVSEntries = info.URB.MaxVSEntries
	}
	nrVSEntries = gfxutil.RoundDownToMultiple(nrVSEntries, vsGranularity)

	nrGSEntries := 0
	if gsPresent {
		nrGSEntries = gsChunks * urbChunkSize / gsEntryBytes
		if nrGSEntries > info.URB.MaxGSEntries {
			nrGSEntries = info.URB.MaxGSEntries
		}
		nrGSEntries = gfxutil.RoundDownToMultiple(nrGSEntries, gsGranularity)
	}

	if nrVSEntries < info.URB.MinVSEntries {
		panic(fmt.Sprintf("anvil: partitioned %d VS URB entries below the hardware minimum of %d",
			nrVSEntries, info.URB.MinVSEntries))
	}
	if gsPresent && nrGSEntries < 2 {
		panic(fmt.Sprintf("anvil: partitioned %d GS URB entries, the stage needs at least 2", nrGSEntries))
	}

	return URBPartition{
		PushConstantChunks: pushConstantChunks,

		VSStart:     pushConstantChunks,
		VSChunks:    vsChunks,
		VSEntrySize: vsEntrySize,
		NrVSEntries: nrVSEntries,

		GSStart:     pushConstantChunks + vsChunks,
		GSChunks:    gsChunks,
		GSEntrySize: gsEntrySize,
		NrGSEntries: nrGSEntries,
	}
}
