package analysis

import (
	"testing"

	"github.com/kitsune-dj/enginelib/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyGridUnchanged(t *testing.T) {
	got, err := Normalize(nil, 16140600)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNormalizeExtrapolatesEndpoints(t *testing.T) {
	grid := []blob.BeatGridMarker{
		{SampleOffset: 0, BeatIndex: 0},
		{SampleOffset: 44100, BeatIndex: 1},
		{SampleOffset: 88200, BeatIndex: 2},
	}
	got, err := Normalize(grid, 132300)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// first marker is extrapolated back to beat -4
	assert.Equal(t, int64(-4), got[0].BeatIndex)
	assert.InDelta(t, -176400, got[0].SampleOffset, 0.001)

	// last marker is extrapolated forward to cover sampleCount
	last := got[len(got)-1]
	assert.GreaterOrEqual(t, last.SampleOffset, 132300.0)
}

func TestNormalizeTrimsOutOfRangeMarkers(t *testing.T) {
	grid := []blob.BeatGridMarker{
		{SampleOffset: -10, BeatIndex: -1},
		{SampleOffset: -5, BeatIndex: 0},
		{SampleOffset: 100, BeatIndex: 1},
		{SampleOffset: 200, BeatIndex: 2},
		{SampleOffset: 1000, BeatIndex: 3},
	}
	got, err := Normalize(grid, 200)
	require.NoError(t, err)

	// only the last leading non-positive marker survives trimming; the
	// 1000 marker is the first (and only) one past sampleCount, so it is
	// kept as the terminal anchor
	assert.Len(t, got, 4)
}

func TestNormalizeTooFewMarkersErrors(t *testing.T) {
	grid := []blob.BeatGridMarker{{SampleOffset: 1000, BeatIndex: 5}}
	_, err := Normalize(grid, 500)
	require.Error(t, err)
	var target *ErrInvalidBeatgrid
	assert.ErrorAs(t, err, &target)
}
