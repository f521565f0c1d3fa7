package byteio

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// ErrEnvelopeMalformed is returned when a compressed BLOB's declared
// length and actual payload disagree, or the zlib stream itself is corrupt.
type ErrEnvelopeMalformed struct {
	msg string
}

func (e *ErrEnvelopeMalformed) Error() string { return e.msg }

func malformed(format string, args ...any) error {
	return &ErrEnvelopeMalformed{msg: fmt.Sprintf(format, args...)}
}

// EncodeEnvelope wraps uncompressed in the zlib envelope used throughout
// the Engine BLOB formats: a 4-byte big-endian uncompressed length,
// followed by a zlib-compressed payload. An empty input produces the
// 4-byte sentinel 00 00 00 00 with no payload.
func EncodeEnvelope(uncompressed []byte) []byte {
	if len(uncompressed) == 0 {
		return []byte{0, 0, 0, 0}
	}

	var out bytes.Buffer
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(uncompressed)))
	out.Write(lenPrefix[:])

	w := zlib.NewWriter(&out)
	_, _ = w.Write(uncompressed)
	_ = w.Close()

	return out.Bytes()
}

// DecodeEnvelope reverses EncodeEnvelope. It returns ErrEnvelopeMalformed if
// the declared length is nonzero but the payload is missing or corrupt.
func DecodeEnvelope(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return nil, nil
	}
	if len(compressed) < 4 {
		return nil, malformed("envelope shorter than the 4-byte length prefix (got %s)",
			humanize.Bytes(uint64(len(compressed))))
	}

	declared := binary.BigEndian.Uint32(compressed[:4])
	if declared == 0 {
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(compressed[4:]))
	if err != nil {
		return nil, malformed("corrupt zlib stream: %v", err)
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, int64(declared)+1))
	if err != nil {
		return nil, malformed("corrupt zlib stream: %v", err)
	}
	if uint32(len(out)) != declared {
		return nil, malformed("declared length %s does not match decompressed length %s",
			humanize.Bytes(uint64(declared)), humanize.Bytes(uint64(len(out))))
	}

	return out, nil
}
