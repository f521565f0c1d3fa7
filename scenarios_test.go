package enginelib

import (
	"context"
	"testing"

	"github.com/kitsune-dj/enginelib/internal/analysis"
	"github.com/kitsune-dj/enginelib/internal/blob"
	"github.com/kitsune-dj/enginelib/internal/byteio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() TrackSnapshot {
	path := "../01 - X - Y.mp3"
	sampleRate := 44100.0
	sampleCount := uint64(16140600)
	bpm := 120
	key := blob.KeyAMinor
	rating := 60
	mainCue := 0.0

	_, samplesPerEntry := analysis.OverviewExtent(float64(sampleCount), sampleRate)
	waveform := make([]blob.WaveformEntry, 1024)
	for i := range waveform {
		band := blob.WaveformBand{Value: uint8(i % 256), Opacity: 255}
		waveform[i] = blob.WaveformEntry{Low: band, Mid: band, High: band}
	}
	_ = samplesPerEntry

	return TrackSnapshot{
		RelativePath:    &path,
		SampleRate:      &sampleRate,
		SampleCount:     &sampleCount,
		BPM:             &bpm,
		Key:             &key,
		Rating:          &rating,
		AverageLoudness: 0.5,
		Beatgrid: []blob.BeatGridMarker{
			{BeatIndex: -4, SampleOffset: -83316.78},
			{BeatIndex: 812, SampleOffset: 17470734.439},
		},
		MainCue: &mainCue,
		HotCues: [8]*blob.HotCue{
			0: {Label: "Cue 1", SampleOffset: 1377924.5, Color: blob.Pad1},
		},
		Loops: [8]*blob.Loop{
			0: {Label: "Loop 1", StartSampleOffset: 1144.012, EndSampleOffset: 345339.134,
				IsStartSet: true, IsEndSet: true, Color: blob.Pad1},
		},
		Waveform: waveform,
	}
}

// Scenario A: round-trip a fully-populated track through v2_21_2.
func TestScenarioARoundTripV2_21_2(t *testing.T) {
	ctx := context.Background()
	db, err := CreateTemporary(ctx, LatestV2(), nil)
	require.NoError(t, err)
	defer db.Close()

	want := sampleSnapshot()
	track, err := db.CreateTrack(ctx, want)
	require.NoError(t, err)

	got, err := track.Snapshot(ctx)
	require.NoError(t, err)

	require.NotNil(t, got.RelativePath)
	assert.Equal(t, *want.RelativePath, *got.RelativePath)
	require.NotNil(t, got.SampleRate)
	assert.Equal(t, *want.SampleRate, *got.SampleRate)
	require.NotNil(t, got.SampleCount)
	assert.Equal(t, *want.SampleCount, *got.SampleCount)
	require.NotNil(t, got.BPM)
	assert.Equal(t, *want.BPM, *got.BPM)
	require.NotNil(t, got.Key)
	assert.Equal(t, *want.Key, *got.Key)
	require.NotNil(t, got.Rating)
	assert.Equal(t, *want.Rating, *got.Rating)
	assert.Equal(t, want.AverageLoudness, got.AverageLoudness)
	assert.Equal(t, want.Beatgrid, got.Beatgrid)
	require.NotNil(t, got.HotCues[0])
	assert.Equal(t, *want.HotCues[0], *got.HotCues[0])
	require.NotNil(t, got.Loops[0])
	assert.Equal(t, *want.Loops[0], *got.Loops[0])
	assert.Equal(t, want.Waveform, got.Waveform)
}

// Scenario B: repeat the same write across every supported schema and
// assert the structural verifier accepts what was just written.
func TestScenarioBCrossSchemaWriteVerifies(t *testing.T) {
	ctx := context.Background()
	for _, id := range SupportedSchemas() {
		id := id
		t.Run(id.String(), func(t *testing.T) {
			db, err := CreateTemporary(ctx, id, nil)
			require.NoError(t, err)
			defer db.Close()

			_, err = db.CreateTrack(ctx, sampleSnapshot())
			require.NoError(t, err)
			assert.NoError(t, db.Verify(ctx))
		})
	}
}

// Scenario C: G -> F -> S, then reparent F to root; G loses its only
// child, S stays under F, F becomes a root.
func TestScenarioCCrateTreeReparent(t *testing.T) {
	ctx := context.Background()
	db, err := CreateTemporary(ctx, LatestV1(), nil)
	require.NoError(t, err)
	defer db.Close()

	g, err := db.CreateRootCrate(ctx, "G")
	require.NoError(t, err)
	f, err := db.CreateSubCrate(ctx, g, "F")
	require.NoError(t, err)
	s, err := db.CreateSubCrate(ctx, f, "S")
	require.NoError(t, err)

	require.NoError(t, f.SetParent(ctx, nil))

	children, err := g.Children(ctx)
	require.NoError(t, err)
	assert.Empty(t, children)

	sParent, err := s.Parent(ctx)
	require.NoError(t, err)
	require.NotNil(t, sParent)
	assert.Equal(t, f.ID(), sParent.ID())

	fParent, err := f.Parent(ctx)
	require.NoError(t, err)
	assert.Nil(t, fParent)
}

// Scenario D: beatgrid extrapolation boundary values.
func TestScenarioDBeatgridExtrapolation(t *testing.T) {
	grid := []blob.BeatGridMarker{
		{BeatIndex: 0, SampleOffset: 22050.0},
		{BeatIndex: 4, SampleOffset: 110250.0},
	}
	got, err := analysis.Normalize(grid, 441000)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, int64(-4), got[0].BeatIndex)
	assert.GreaterOrEqual(t, got[len(got)-1].SampleOffset, 441000.0)
}

// Scenario E: a beat_data BLOB whose adjusted grid is missing marker bytes
// decodes with the default grid intact and the adjusted grid empty, raising
// no error — partial corruption in one grid section must not invalidate
// the other. Built by hand at the byte level (rather than truncating a
// well-formed Encode() output) so the corruption lands precisely inside
// the adjusted grid's marker data rather than the zlib envelope itself.
func TestScenarioEPartialBeatDataCorruption(t *testing.T) {
	c := byteio.NewCursor(64)
	c.PutDoubleBE(44100)    // SampleRate
	c.PutDoubleBE(16140600) // SampleCount
	c.PutUint8(1)           // IsBeatgridSet

	// default grid: two well-formed markers
	c.PutInt64BE(2)
	c.PutDoubleLE(0)
	c.PutInt64LE(0)
	c.PutInt32LE(4)
	c.PutInt32LE(0)
	c.PutDoubleLE(88200)
	c.PutInt64LE(4)
	c.PutInt32LE(0)
	c.PutInt32LE(0)

	// adjusted grid: declares 2 markers but only carries bytes for one
	c.PutInt64BE(2)
	c.PutDoubleLE(0)
	c.PutInt64LE(0)
	c.PutInt32LE(4)
	c.PutInt32LE(0)

	encoded := byteio.EncodeEnvelope(c.Bytes())

	got, err := blob.DecodeBeatData(encoded)
	require.NoError(t, err)
	assert.Equal(t, []blob.BeatGridMarker{
		{SampleOffset: 0, BeatIndex: 0},
		{SampleOffset: 88200, BeatIndex: 4},
	}, got.DefaultGrid)
	assert.Empty(t, got.AdjustedGrid)
}

// Scenario F: create_or_load twice against the same empty directory.
func TestScenarioFCreateOrLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db1, created1, err := CreateOrLoad(ctx, dir, LatestV3(), nil)
	require.NoError(t, err)
	assert.True(t, created1)
	uid1 := db1.UUID()
	require.NoError(t, db1.Close())

	db2, created2, err := CreateOrLoad(ctx, dir, LatestV3(), nil)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, uid1, db2.UUID())
	require.NoError(t, db2.Close())
}
