// Package byteio provides the fixed-width integer/float codec primitives
// and zlib envelope shared by every BLOB format in internal/blob.
package byteio

import (
	"encoding/binary"
	"math"
)

// Cursor is an append-only byte buffer used while encoding a BLOB body.
type Cursor struct {
	buf []byte
}

// NewCursor returns a Cursor whose buffer is pre-sized to n bytes, matching
// the reference codec's pattern of allocating the exact uncompressed size
// up front before writing into it field by field.
func NewCursor(n int) *Cursor {
	return &Cursor{buf: make([]byte, 0, n)}
}

// Bytes returns the accumulated buffer.
func (c *Cursor) Bytes() []byte { return c.buf }

// Len returns the number of bytes written so far.
func (c *Cursor) Len() int { return len(c.buf) }

func (c *Cursor) PutUint8(v uint8) {
	c.buf = append(c.buf, v)
}

func (c *Cursor) PutInt32BE(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) PutInt32LE(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) PutInt64BE(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) PutInt64LE(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) PutDoubleBE(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) PutDoubleLE(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	c.buf = append(c.buf, b[:]...)
}

func (c *Cursor) PutBytes(v []byte) {
	c.buf = append(c.buf, v...)
}

// Reader walks a byte slice field by field, tracking position. Each getter
// panics with ErrShortRead style behaviour is avoided; instead callers must
// check Remaining before each read, matching the length checks the
// reference codec performs before decoding every section.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) { r.pos += n }

func (r *Reader) Uint8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) Int32BE() int32 {
	v := int32(binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4]))
	r.pos += 4
	return v
}

func (r *Reader) Int32LE() int32 {
	v := int32(binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4]))
	r.pos += 4
	return v
}

func (r *Reader) Int64BE() int64 {
	v := int64(binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v
}

func (r *Reader) Int64LE() int64 {
	v := int64(binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v
}

func (r *Reader) DoubleBE() float64 {
	v := math.Float64frombits(binary.BigEndian.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v
}

func (r *Reader) DoubleLE() float64 {
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v
}

// Bytes returns the next n bytes without copying the backing array.
func (r *Reader) Bytes(n int) []byte {
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v
}

// Rest returns every byte from the current position to the end.
func (r *Reader) Rest() []byte {
	v := r.buf[r.pos:]
	r.pos = len(r.buf)
	return v
}
