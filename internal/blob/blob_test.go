package blob

import (
	"testing"

	"github.com/kitsune-dj/enginelib/internal/byteio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackDataRoundTrip(t *testing.T) {
	cases := []TrackData{
		{},
		{SampleRate: 44100, SampleCount: 16140600, AverageLoudness: 0.5, Key: KeyAMinor},
		{SampleRate: 48000, SampleCount: 1, AverageLoudness: 1, Key: KeyCMajor},
	}
	for _, want := range cases {
		got, err := DecodeTrackData(want.Encode())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestTrackDataWrongLength(t *testing.T) {
	_, err := DecodeTrackData([]byte{0, 0, 0, 4, 1, 2, 3, 4})
	assert.Error(t, err)
}

func TestBeatDataRoundTrip(t *testing.T) {
	cases := []BeatData{
		{SampleRate: 44100, SampleCount: 16140600, IsBeatgridSet: true},
		{
			SampleRate: 44100, SampleCount: 16140600, IsBeatgridSet: true,
			DefaultGrid:  []BeatGridMarker{{SampleOffset: -83316.78, BeatIndex: -4}, {SampleOffset: 17470734.439, BeatIndex: 812}},
			AdjustedGrid: []BeatGridMarker{{SampleOffset: -83316.78, BeatIndex: -4}, {SampleOffset: 17470734.439, BeatIndex: 812}},
		},
	}
	for _, want := range cases {
		got, err := DecodeBeatData(want.Encode())
		require.NoError(t, err)
		assert.Equal(t, want.SampleRate, got.SampleRate)
		assert.Equal(t, want.DefaultGrid, got.DefaultGrid)
		assert.Equal(t, want.AdjustedGrid, got.AdjustedGrid)
	}
}

func TestBeatDataPartialCorruption(t *testing.T) {
	// Scenario E: valid default grid, truncated/corrupt adjusted grid.
	valid := BeatData{
		SampleRate: 44100, SampleCount: 1000, IsBeatgridSet: true,
		DefaultGrid:  []BeatGridMarker{{SampleOffset: 0, BeatIndex: -4}, {SampleOffset: 1000, BeatIndex: 10}},
		AdjustedGrid: []BeatGridMarker{{SampleOffset: 0, BeatIndex: -4}, {SampleOffset: 1000, BeatIndex: 10}},
	}
	encoded := valid.Encode()

	// Decode it first to find where the adjusted grid's declared count
	// lives, then corrupt the adjusted grid's ordering.
	raw, err := byteio.DecodeEnvelope(encoded)
	require.NoError(t, err)

	// Header (17) + default grid (8 + 2*24) brings us to the adjusted
	// grid's count field.
	adjustedStart := 17 + 8 + 2*24
	// Corrupt the adjusted grid's second marker sample offset to break
	// ordering (the offset is the first 8 bytes of each 24-byte marker).
	markerStart := adjustedStart + 8 + 24 // second marker of adjusted grid
	// Zero the sample_offset field so it equals the first marker's offset
	// (0), breaking the strictly-ascending offset invariant.
	for i := 0; i < 8; i++ {
		raw[markerStart+i] = 0
	}

	reencoded := byteio.EncodeEnvelope(raw)
	got, err := DecodeBeatData(reencoded)
	require.NoError(t, err, "partial corruption must not be fatal")
	assert.Equal(t, valid.DefaultGrid, got.DefaultGrid)
	assert.Empty(t, got.AdjustedGrid)
}

func TestOverviewWaveformRoundTrip(t *testing.T) {
	w := OverviewWaveform{
		SamplesPerEntry: 420,
		Entries: []WaveformEntry{
			{Low: WaveformBand{Value: 10, Opacity: 255}, Mid: WaveformBand{Value: 20, Opacity: 255}, High: WaveformBand{Value: 30, Opacity: 255}},
		},
	}
	got, err := DecodeOverviewWaveform(w.Encode())
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestHighResWaveformRoundTrip(t *testing.T) {
	w := HighResWaveform{
		SamplesPerEntry: 420,
		Entries: []WaveformEntry{
			{Low: WaveformBand{Value: 10, Opacity: 1}, Mid: WaveformBand{Value: 20, Opacity: 2}, High: WaveformBand{Value: 30, Opacity: 3}},
		},
	}
	got, err := DecodeHighResWaveform(w.Encode())
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestQuickCuesRoundTrip(t *testing.T) {
	q := QuickCues{
		DefaultMainCue: 1000,
		AdjustedMainCue: 1000,
	}
	q.HotCues[0] = &HotCue{Label: "Cue 1", SampleOffset: 1377924.5, Color: Pad1}
	got, err := DecodeQuickCues(q.Encode())
	require.NoError(t, err)
	assert.Equal(t, q.HotCues, got.HotCues)
	assert.Equal(t, q.DefaultMainCue, got.DefaultMainCue)
	assert.Equal(t, q.AdjustedMainCue, got.AdjustedMainCue)
	assert.False(t, got.IsMainCueAdjusted)
}

func TestQuickCuesExtraDataRoundTrips(t *testing.T) {
	q := QuickCues{DefaultMainCue: 5, AdjustedMainCue: 5, ExtraData: []byte{0xDE, 0xAD, 0xBE, 0xEF}}
	got, err := DecodeQuickCues(q.Encode())
	require.NoError(t, err)
	assert.Equal(t, q.ExtraData, got.ExtraData)
}

func TestQuickCuesInconsistentMainCueIsMalformed(t *testing.T) {
	q := QuickCues{DefaultMainCue: 5, AdjustedMainCue: 6, IsMainCueAdjusted: false}
	_, err := DecodeQuickCues(q.Encode())
	assert.Error(t, err)
}

func TestLoopsRoundTrip(t *testing.T) {
	l := Loops{}
	l.Loops[0] = &Loop{Label: "Loop 1", StartSampleOffset: 1144.012, EndSampleOffset: 345339.134, IsStartSet: true, IsEndSet: true, Color: Pad1}
	got, err := DecodeLoops(l.Encode())
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestLoopsWrongCount(t *testing.T) {
	raw := make([]byte, 192)
	_, err := DecodeLoops(raw) // count defaults to 0, not 8
	assert.Error(t, err)
}
