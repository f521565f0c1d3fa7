package blob

import (
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/byteio"
)

// HotCue is one named, colored position marker, or nil if the slot is empty.
type HotCue struct {
	Label        string
	SampleOffset float64
	Color        RGBA
}

// QuickCues is the decoded quick_cues BLOB: exactly 8 hot cue slots plus
// the main cue. ExtraData preserves any trailing bytes newer firmwares may
// append, re-emitted verbatim on encode.
type QuickCues struct {
	HotCues            [8]*HotCue
	AdjustedMainCue    float64
	IsMainCueAdjusted  bool
	DefaultMainCue     float64
	ExtraData          []byte
}

const quickCuesMinLen = 129 // 8 (count) + 8*(1+12) (eight empty slots) + 17 (main cue trailer)
const hotCueFixedLen = 1 + 8 + 4 // label_length + sample_offset + ARGB, when empty the 12 placeholder bytes follow label_length

// Encode serializes q into the quick_cues wire format.
func (q QuickCues) Encode() []byte {
	total := 0
	for _, hc := range q.HotCues {
		if hc != nil {
			total += len(hc.Label)
		}
	}
	size := 8 + 8*(1+12) + total + 17 + len(q.ExtraData)
	c := byteio.NewCursor(size)
	c.PutInt64BE(8)

	for _, hc := range q.HotCues {
		if hc == nil {
			c.PutUint8(0)
			c.PutDoubleBE(0)
			c.PutUint8(0)
			c.PutUint8(0)
			c.PutUint8(0)
			c.PutUint8(0)
			continue
		}
		if len(hc.Label) == 0 {
			panic("blob: hot cue label must not be empty")
		}
		c.PutUint8(uint8(len(hc.Label)))
		c.PutBytes([]byte(hc.Label))
		c.PutDoubleBE(hc.SampleOffset)
		c.PutUint8(hc.Color.A)
		c.PutUint8(hc.Color.R)
		c.PutUint8(hc.Color.G)
		c.PutUint8(hc.Color.B)
	}

	c.PutDoubleBE(q.AdjustedMainCue)
	if q.IsMainCueAdjusted {
		c.PutUint8(1)
	} else {
		c.PutUint8(0)
	}
	c.PutDoubleBE(q.DefaultMainCue)
	c.PutBytes(q.ExtraData)

	return byteio.EncodeEnvelope(c.Bytes())
}

// DecodeQuickCues parses the quick_cues BLOB.
func DecodeQuickCues(compressed []byte) (QuickCues, error) {
	raw, err := byteio.DecodeEnvelope(compressed)
	if err != nil {
		return QuickCues{}, malformed("quick_cues", err)
	}
	if len(raw) < quickCuesMinLen {
		return QuickCues{}, malformed("quick_cues",
			fmt.Errorf("expected at least %d bytes, got %d", quickCuesMinLen, len(raw)))
	}

	r := byteio.NewReader(raw)
	count := r.Int64BE()
	if count != 8 {
		return QuickCues{}, malformed("quick_cues", fmt.Errorf("expected 8 hot cue slots, got %d", count))
	}

	var q QuickCues
	for i := range q.HotCues {
		if r.Remaining() < 1 {
			return QuickCues{}, malformed("quick_cues", fmt.Errorf("hot cue %d is missing its length byte", i))
		}
		labelLen := r.Uint8()
		if labelLen == 0 {
			if r.Remaining() < 12 {
				return QuickCues{}, malformed("quick_cues", fmt.Errorf("hot cue %d is missing placeholder bytes", i))
			}
			r.Skip(12)
			continue
		}
		if r.Remaining() < int(labelLen)+12 {
			return QuickCues{}, malformed("quick_cues", fmt.Errorf("hot cue %d is missing data", i))
		}
		label := string(r.Bytes(int(labelLen)))
		offset := r.DoubleBE()
		a := r.Uint8()
		rr := r.Uint8()
		g := r.Uint8()
		b := r.Uint8()
		q.HotCues[i] = &HotCue{Label: label, SampleOffset: offset, Color: RGBA{R: rr, G: g, B: b, A: a}}
	}

	if r.Remaining() < 17 {
		return QuickCues{}, malformed("quick_cues", fmt.Errorf("missing main cue trailer"))
	}
	q.AdjustedMainCue = r.DoubleBE()
	isAdjusted := r.Uint8()
	q.DefaultMainCue = r.DoubleBE()
	q.IsMainCueAdjusted = isAdjusted != 0

	if !q.IsMainCueAdjusted && q.AdjustedMainCue != q.DefaultMainCue {
		return QuickCues{}, malformed("quick_cues",
			fmt.Errorf("main cue not flagged as adjusted but adjusted (%v) != default (%v)",
				q.AdjustedMainCue, q.DefaultMainCue))
	}

	q.ExtraData = r.Rest()

	return q, nil
}
