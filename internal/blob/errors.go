// Package blob implements the typed encode/decode routines for every
// Engine BLOB format: track_data, beat_data, overview_waveform_data,
// high_res_waveform_data, quick_cues, and loops.
package blob

import "fmt"

// ErrMalformed is returned whenever a BLOB fails one of the structural
// decode checks from the wire format (length mismatch, out-of-order
// markers, unexpected counts, and so on).
type ErrMalformed struct {
	Format string
	Err    error
}

func (e *ErrMalformed) Error() string {
	return fmt.Sprintf("%s: malformed blob: %v", e.Format, e.Err)
}

func (e *ErrMalformed) Unwrap() error { return e.Err }

func malformed(format string, err error) *ErrMalformed {
	return &ErrMalformed{Format: format, Err: err}
}
