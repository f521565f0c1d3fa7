package blob

import (
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/byteio"
)

// TrackData is the decoded form of the track_data BLOB: sample rate,
// sample count, average loudness, and musical key. It is always exactly
// 28 bytes uncompressed.
type TrackData struct {
	SampleRate      float64 // 0 means unknown
	SampleCount     int64
	AverageLoudness float64    // (0, 1]; 0 means absent
	Key             MusicalKey // 0 means absent
}

const trackDataUncompressedLen = 28

// Encode serializes t into the track_data wire format: a zlib envelope
// around 28 fixed bytes (sample_rate, sample_count, average_loudness, key;
// all big-endian).
func (t TrackData) Encode() []byte {
	c := byteio.NewCursor(trackDataUncompressedLen)
	c.PutDoubleBE(t.SampleRate)
	c.PutInt64BE(t.SampleCount)
	c.PutDoubleBE(t.AverageLoudness)
	c.PutInt32BE(int32(t.Key))
	return byteio.EncodeEnvelope(c.Bytes())
}

// DecodeTrackData parses the track_data BLOB, returning *ErrMalformed if
// the decompressed payload is not exactly 28 bytes.
func DecodeTrackData(compressed []byte) (TrackData, error) {
	raw, err := byteio.DecodeEnvelope(compressed)
	if err != nil {
		return TrackData{}, malformed("track_data", err)
	}
	if len(raw) != trackDataUncompressedLen {
		return TrackData{}, malformed("track_data",
			fmt.Errorf("expected %d bytes, got %d", trackDataUncompressedLen, len(raw)))
	}

	r := byteio.NewReader(raw)
	var t TrackData
	t.SampleRate = r.DoubleBE()
	t.SampleCount = r.Int64BE()
	t.AverageLoudness = r.DoubleBE()
	t.Key = MusicalKey(r.Int32BE())
	return t, nil
}
