package blob

import (
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/byteio"
)

// HighResWaveform is the decoded high_res_waveform_data BLOB: a variable
// number of entries, each with a value and opacity per band. v1-only; v2
// and v3 do not persist this (the hardware re-derives it).
type HighResWaveform struct {
	SamplesPerEntry float64
	Entries         []WaveformEntry
}

const highResMinLen = 30

// Encode serializes w into the high_res_waveform_data wire format: count
// (twice), samples-per-entry, then a six-uint8 entry (value+opacity per
// band) per sample, followed by a trailing six-uint8 maxima record.
func (w HighResWaveform) Encode() []byte {
	c := byteio.NewCursor(highResMinLen + 6*len(w.Entries))
	c.PutInt64BE(int64(len(w.Entries)))
	c.PutInt64BE(int64(len(w.Entries)))
	c.PutDoubleBE(w.SamplesPerEntry)

	var maxLow, maxMid, maxHigh, maxLowOpc, maxMidOpc, maxHighOpc uint8
	for _, e := range w.Entries {
		maxLow = max(maxLow, e.Low.Value)
		maxMid = max(maxMid, e.Mid.Value)
		maxHigh = max(maxHigh, e.High.Value)
		maxLowOpc = max(maxLowOpc, e.Low.Opacity)
		maxMidOpc = max(maxMidOpc, e.Mid.Opacity)
		maxHighOpc = max(maxHighOpc, e.High.Opacity)
		c.PutUint8(e.Low.Value)
		c.PutUint8(e.Mid.Value)
		c.PutUint8(e.High.Value)
		c.PutUint8(e.Low.Opacity)
		c.PutUint8(e.Mid.Opacity)
		c.PutUint8(e.High.Opacity)
	}
	c.PutUint8(maxLow)
	c.PutUint8(maxMid)
	c.PutUint8(maxHigh)
	c.PutUint8(maxLowOpc)
	c.PutUint8(maxMidOpc)
	c.PutUint8(maxHighOpc)

	return byteio.EncodeEnvelope(c.Bytes())
}

// DecodeHighResWaveform parses the high_res_waveform_data BLOB.
func DecodeHighResWaveform(compressed []byte) (HighResWaveform, error) {
	raw, err := byteio.DecodeEnvelope(compressed)
	if err != nil {
		return HighResWaveform{}, malformed("high_res_waveform_data", err)
	}
	if len(raw) < highResMinLen {
		return HighResWaveform{}, malformed("high_res_waveform_data",
			fmt.Errorf("expected at least %d bytes, got %d", highResMinLen, len(raw)))
	}

	r := byteio.NewReader(raw)
	count1 := r.Int64BE()
	count2 := r.Int64BE()
	if count1 != count2 {
		return HighResWaveform{}, malformed("high_res_waveform_data",
			fmt.Errorf("conflicting entry counts %d and %d", count1, count2))
	}

	var w HighResWaveform
	w.SamplesPerEntry = r.DoubleBE()

	if r.Remaining() != 6*(int(count1)+1) {
		return HighResWaveform{}, malformed("high_res_waveform_data",
			fmt.Errorf("incorrect body length for %d entries", count1))
	}

	// Each entry is six bytes: low/mid/high value, then low/mid/high opacity.
	w.Entries = make([]WaveformEntry, count1)
	for i := range w.Entries {
		low := r.Uint8()
		mid := r.Uint8()
		high := r.Uint8()
		lowOpc := r.Uint8()
		midOpc := r.Uint8()
		highOpc := r.Uint8()
		w.Entries[i] = WaveformEntry{
			Low:  WaveformBand{Value: low, Opacity: lowOpc},
			Mid:  WaveformBand{Value: mid, Opacity: midOpc},
			High: WaveformBand{Value: high, Opacity: highOpc},
		}
	}
	r.Skip(6) // trailing per-band value/opacity maxima, not retained

	return w, nil
}
