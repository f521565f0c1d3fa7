package blob

import (
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/byteio"
)

// WaveformBand is one frequency band's value at a given waveform entry.
type WaveformBand struct {
	Value   uint8
	Opacity uint8
}

// WaveformEntry is one entry (one time-slice) of a waveform: three
// frequency bands, low/mid/high.
type WaveformEntry struct {
	Low, Mid, High WaveformBand
}

// OverviewWaveform is the decoded overview_waveform_data BLOB: a fixed
// 1024-entry, three-band summary of an entire track with no opacity
// channel (decoders synthesize Opacity = 255 for every band).
type OverviewWaveform struct {
	SamplesPerEntry float64
	Entries         []WaveformEntry
}

const overviewMinLen = 27

// Encode serializes w into the overview_waveform_data wire format: count
// (twice), samples-per-entry, then one low/mid/high triple per entry,
// followed by a trailing triple of per-band maxima.
func (w OverviewWaveform) Encode() []byte {
	c := byteio.NewCursor(overviewMinLen + 3*len(w.Entries))
	c.PutInt64BE(int64(len(w.Entries)))
	c.PutInt64BE(int64(len(w.Entries)))
	c.PutDoubleBE(w.SamplesPerEntry)

	var maxLow, maxMid, maxHigh uint8
	for _, e := range w.Entries {
		maxLow = max(maxLow, e.Low.Value)
		maxMid = max(maxMid, e.Mid.Value)
		maxHigh = max(maxHigh, e.High.Value)
		c.PutUint8(e.Low.Value)
		c.PutUint8(e.Mid.Value)
		c.PutUint8(e.High.Value)
	}
	c.PutUint8(maxLow)
	c.PutUint8(maxMid)
	c.PutUint8(maxHigh)

	return byteio.EncodeEnvelope(c.Bytes())
}

// DecodeOverviewWaveform parses the overview_waveform_data BLOB.
func DecodeOverviewWaveform(compressed []byte) (OverviewWaveform, error) {
	raw, err := byteio.DecodeEnvelope(compressed)
	if err != nil {
		return OverviewWaveform{}, malformed("overview_waveform_data", err)
	}
	if len(raw) < overviewMinLen {
		return OverviewWaveform{}, malformed("overview_waveform_data",
			fmt.Errorf("expected at least %d bytes, got %d", overviewMinLen, len(raw)))
	}

	r := byteio.NewReader(raw)
	count1 := r.Int64BE()
	count2 := r.Int64BE()
	if count1 != count2 {
		return OverviewWaveform{}, malformed("overview_waveform_data",
			fmt.Errorf("conflicting entry counts %d and %d", count1, count2))
	}

	var w OverviewWaveform
	w.SamplesPerEntry = r.DoubleBE()

	if r.Remaining() != 3*(int(count1)+1) {
		return OverviewWaveform{}, malformed("overview_waveform_data",
			fmt.Errorf("incorrect body length for %d entries", count1))
	}

	w.Entries = make([]WaveformEntry, count1)
	for i := range w.Entries {
		w.Entries[i] = WaveformEntry{
			Low:  WaveformBand{Value: r.Uint8(), Opacity: 255},
			Mid:  WaveformBand{Value: r.Uint8(), Opacity: 255},
			High: WaveformBand{Value: r.Uint8(), Opacity: 255},
		}
	}
	r.Skip(3) // trailing per-band maxima, not retained on the decoded value

	return w, nil
}
