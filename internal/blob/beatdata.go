package blob

import (
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/byteio"
)

// BeatGridMarker is one entry in a beat grid: the sample offset of a beat
// and its index (beat number). A sequence of two or more markers defines
// piecewise-constant tempo regions between each adjacent pair.
type BeatGridMarker struct {
	SampleOffset float64
	BeatIndex    int64
}

// BeatData is the decoded form of the beat_data BLOB.
type BeatData struct {
	SampleRate     float64
	SampleCount    float64
	IsBeatgridSet  bool
	DefaultGrid    []BeatGridMarker
	AdjustedGrid   []BeatGridMarker
}

const beatDataMinLen = 33
const beatGridMarkerLen = 24

// Encode serializes b into the beat_data wire format.
func (b BeatData) Encode() []byte {
	size := beatDataMinLen - 1 + beatGridSize(b.DefaultGrid) + beatGridSize(b.AdjustedGrid)
	c := byteio.NewCursor(size)
	c.PutDoubleBE(b.SampleRate)
	c.PutDoubleBE(b.SampleCount)
	if b.IsBeatgridSet {
		c.PutUint8(1)
	} else {
		c.PutUint8(0)
	}
	encodeBeatGrid(c, b.DefaultGrid)
	encodeBeatGrid(c, b.AdjustedGrid)
	return byteio.EncodeEnvelope(c.Bytes())
}

func beatGridSize(grid []BeatGridMarker) int {
	return 8 + beatGridMarkerLen*len(grid)
}

// encodeBeatGrid writes count followed by count 24-byte markers: sample
// offset (double LE), beat index (int64 LE), beats-until-next (int32 LE,
// 0 on the final marker), and a 4-byte reserved field always written zero
// (the "unknown_value_1" field; see SPEC_FULL.md Open Question notes).
func encodeBeatGrid(c *byteio.Cursor, grid []BeatGridMarker) {
	c.PutInt64BE(int64(len(grid)))
	for i, m := range grid {
		c.PutDoubleLE(m.SampleOffset)
		c.PutInt64LE(m.BeatIndex)
		var beatsUntilNext int32
		if i < len(grid)-1 {
			beatsUntilNext = int32(grid[i+1].BeatIndex - m.BeatIndex)
		}
		c.PutInt32LE(beatsUntilNext)
		c.PutInt32LE(0) // reserved/unknown, always zero
	}
}

// decodeBeatGrid parses one beat grid section, applying the ascending
// index/offset and beats-until-next-marker consistency checks. A failure
// here is isolated to this section: the caller may choose to keep the
// other section's already-decoded value.
func decodeBeatGrid(r *byteio.Reader) ([]BeatGridMarker, error) {
	if r.Remaining() < 8 {
		return nil, fmt.Errorf("missing beat grid count")
	}
	count := r.Int64BE()
	if count == 0 {
		return nil, nil
	}
	if count < 2 {
		return nil, fmt.Errorf("beat grid has invalid marker count %d", count)
	}
	if r.Remaining() < int(count)*beatGridMarkerLen {
		return nil, fmt.Errorf("beat grid is missing marker data")
	}

	// Read every marker unconditionally first, so the reader always
	// advances past this whole section regardless of validation outcome;
	// that keeps a corrupt section from misaligning the section that
	// follows it (needed so a bad default grid does not also corrupt an
	// otherwise-valid adjusted grid read).
	grid := make([]BeatGridMarker, count)
	beatsUntilNext := make([]int32, count)
	for i := range grid {
		offset := r.DoubleLE()
		index := r.Int64LE()
		grid[i] = BeatGridMarker{SampleOffset: offset, BeatIndex: index}
		beatsUntilNext[i] = r.Int32LE()
		r.Skip(4) // reserved/unknown field, ignored
	}

	for i := 1; i < len(grid); i++ {
		if grid[i].BeatIndex <= grid[i-1].BeatIndex {
			return nil, fmt.Errorf("beat grid has unsorted indices")
		}
		if grid[i].SampleOffset <= grid[i-1].SampleOffset {
			return nil, fmt.Errorf("beat grid has unsorted sample offsets")
		}
		if grid[i].BeatIndex-grid[i-1].BeatIndex != int64(beatsUntilNext[i-1]) {
			return nil, fmt.Errorf("beat grid has conflicting markers")
		}
	}
	if beatsUntilNext[len(beatsUntilNext)-1] != 0 {
		return nil, fmt.Errorf("beat grid's final marker promises a non-existent marker")
	}
	return grid, nil
}

// DecodeBeatData parses the beat_data BLOB. A structurally invalid default
// or adjusted grid does not fail the whole decode: that section is
// replaced with its empty value and the other, if valid, is preserved —
// per the partial-success policy for isolable BLOB corruption.
func DecodeBeatData(compressed []byte) (BeatData, error) {
	raw, err := byteio.DecodeEnvelope(compressed)
	if err != nil {
		return BeatData{}, malformed("beat_data", err)
	}
	if len(raw) < beatDataMinLen {
		return BeatData{}, malformed("beat_data",
			fmt.Errorf("expected at least %d bytes, got %d", beatDataMinLen, len(raw)))
	}

	r := byteio.NewReader(raw)
	var b BeatData
	b.SampleRate = r.DoubleBE()
	b.SampleCount = r.DoubleBE()
	b.IsBeatgridSet = r.Uint8() == 1 // any non-1 byte is treated as false

	defaultGrid, defaultErr := decodeBeatGrid(r)
	adjustedGrid, adjustedErr := decodeBeatGrid(r)
	b.DefaultGrid = defaultGrid
	b.AdjustedGrid = adjustedGrid

	if defaultErr != nil && adjustedErr != nil {
		return b, malformed("beat_data", fmt.Errorf("both grids invalid: default: %v, adjusted: %v",
			defaultErr, adjustedErr))
	}

	return b, nil
}
