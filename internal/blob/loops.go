package blob

import (
	"fmt"

	"github.com/kitsune-dj/enginelib/internal/byteio"
)

// Loop is one named, colored loop region, or nil if the slot is empty.
type Loop struct {
	Label             string
	StartSampleOffset float64
	EndSampleOffset   float64
	IsStartSet        bool
	IsEndSet          bool
	Color             RGBA
}

// Loops is the decoded loops BLOB: exactly 8 slots. Unlike every other
// BLOB in this package, loops is stored uncompressed and its count field
// is little-endian.
type Loops struct {
	Loops [8]*Loop
}

const loopsMinLen = 192

// Encode serializes l into the (uncompressed) loops wire format.
func (l Loops) Encode() []byte {
	total := 0
	for _, lp := range l.Loops {
		if lp != nil {
			total += len(lp.Label)
		}
	}
	c := byteio.NewCursor(8 + 8*22 + total)
	c.PutInt64LE(8)

	for _, lp := range l.Loops {
		if lp == nil {
			c.PutUint8(0)
			c.PutDoubleLE(-1)
			c.PutDoubleLE(-1)
			for i := 0; i < 6; i++ {
				c.PutUint8(0)
			}
			continue
		}
		if len(lp.Label) == 0 {
			panic("blob: loop label must not be empty")
		}
		c.PutUint8(uint8(len(lp.Label)))
		c.PutBytes([]byte(lp.Label))
		c.PutDoubleLE(lp.StartSampleOffset)
		c.PutDoubleLE(lp.EndSampleOffset)
		if lp.IsStartSet {
			c.PutUint8(1)
		} else {
			c.PutUint8(0)
		}
		if lp.IsEndSet {
			c.PutUint8(1)
		} else {
			c.PutUint8(0)
		}
		c.PutUint8(lp.Color.A)
		c.PutUint8(lp.Color.R)
		c.PutUint8(lp.Color.G)
		c.PutUint8(lp.Color.B)
	}

	return c.Bytes() // note: not zlib-wrapped
}

// DecodeLoops parses the (uncompressed) loops BLOB.
func DecodeLoops(raw []byte) (Loops, error) {
	if len(raw) < loopsMinLen {
		return Loops{}, malformed("loops",
			fmt.Errorf("expected at least %d bytes, got %d", loopsMinLen, len(raw)))
	}

	r := byteio.NewReader(raw)
	count := r.Int64LE()
	if count != 8 {
		return Loops{}, malformed("loops", fmt.Errorf("expected 8 loop slots, got %d", count))
	}

	var l Loops
	for i := range l.Loops {
		if r.Remaining() < 1 {
			return Loops{}, malformed("loops", fmt.Errorf("loop %d is missing its length byte", i))
		}
		labelLen := r.Uint8()
		if labelLen == 0 {
			if r.Remaining() < 22 {
				return Loops{}, malformed("loops", fmt.Errorf("loop %d is missing placeholder bytes", i))
			}
			r.Skip(22)
			continue
		}
		if r.Remaining() < int(labelLen)+22 {
			return Loops{}, malformed("loops", fmt.Errorf("loop %d is missing data", i))
		}
		label := string(r.Bytes(int(labelLen)))
		start := r.DoubleLE()
		end := r.DoubleLE()
		isStartSet := r.Uint8() != 0
		isEndSet := r.Uint8() != 0
		a := r.Uint8()
		rr := r.Uint8()
		g := r.Uint8()
		b := r.Uint8()
		l.Loops[i] = &Loop{
			Label:             label,
			StartSampleOffset: start,
			EndSampleOffset:   end,
			IsStartSet:        isStartSet,
			IsEndSet:          isEndSet,
			Color:             RGBA{R: rr, G: g, B: b, A: a},
		}
	}

	if r.Remaining() != 0 {
		return Loops{}, malformed("loops", fmt.Errorf("trailing %d unexpected bytes", r.Remaining()))
	}

	return l, nil
}
