// Package analysis implements the derived beatgrid-normalization and
// waveform-extent calculations layered over the raw BLOB codec in
// internal/blob.
package analysis

import (
	"fmt"
	"math"

	"github.com/kitsune-dj/enginelib/internal/blob"
)

// ErrInvalidBeatgrid is returned when normalization leaves fewer than two
// markers.
type ErrInvalidBeatgrid struct {
	msg string
}

func (e *ErrInvalidBeatgrid) Error() string { return e.msg }

// Normalize trims a beatgrid to its meaningful markers and extrapolates
// its first and last markers to the track's conventional anchor points:
// beat index -4 before the start, and the first beat at or after the end
// of the track (sample_count).
//
// An empty beatgrid is returned unchanged. Fewer than two markers
// remaining after trimming is an error.
func Normalize(grid []blob.BeatGridMarker, sampleCount float64) ([]blob.BeatGridMarker, error) {
	if len(grid) == 0 {
		return grid, nil
	}

	trimmed := trimTrailing(grid, sampleCount)
	trimmed = trimLeading(trimmed)

	if len(trimmed) < 2 {
		return nil, &ErrInvalidBeatgrid{msg: fmt.Sprintf(
			"fewer than two markers remain after trimming (%d)", len(trimmed))}
	}

	out := make([]blob.BeatGridMarker, len(trimmed))
	copy(out, trimmed)

	// Compute both extrapolated endpoints from the original (pre-mutation)
	// markers before writing either back: with exactly two markers,
	// grid[0] and grid[len-1] are the same pair used for both the first-
	// and last-marker tempo, so mutating one in place before computing
	// the other would corrupt its local tempo.
	newFirst := extrapolatedFirst(trimmed)
	newLast := extrapolatedLast(trimmed, sampleCount)
	out[0] = newFirst
	out[len(out)-1] = newLast

	return out, nil
}

// trimTrailing drops markers whose sample offset exceeds sampleCount,
// except the first such marker, which is kept as the terminal anchor.
func trimTrailing(grid []blob.BeatGridMarker, sampleCount float64) []blob.BeatGridMarker {
	for i, m := range grid {
		if float64(m.SampleOffset) > sampleCount {
			return grid[:i+1]
		}
	}
	return grid
}

// trimLeading drops markers whose sample offset is <= 0, except the last
// such marker, which is kept as the leading anchor.
func trimLeading(grid []blob.BeatGridMarker) []blob.BeatGridMarker {
	lastNonPositive := -1
	for i, m := range grid {
		if m.SampleOffset <= 0 {
			lastNonPositive = i
		}
	}
	if lastNonPositive <= 0 {
		return grid
	}
	return grid[lastNonPositive:]
}

// extrapolatedFirst computes a replacement for grid[0] sitting at beat
// index -4, using the local tempo between the original first and second
// markers.
func extrapolatedFirst(grid []blob.BeatGridMarker) blob.BeatGridMarker {
	first, second := grid[0], grid[1]
	samplesPerBeat := (second.SampleOffset - first.SampleOffset) / float64(second.BeatIndex-first.BeatIndex)
	const anchorIndex = -4
	return blob.BeatGridMarker{
		BeatIndex:    anchorIndex,
		SampleOffset: first.SampleOffset + samplesPerBeat*float64(anchorIndex-first.BeatIndex),
	}
}

// extrapolatedLast computes a replacement for the final marker, at the
// smallest beat index whose sample offset is at or beyond sampleCount,
// using the local tempo between the last two markers.
func extrapolatedLast(grid []blob.BeatGridMarker, sampleCount float64) blob.BeatGridMarker {
	n := len(grid)
	secondLast, last := grid[n-2], grid[n-1]
	samplesPerBeat := (last.SampleOffset - secondLast.SampleOffset) / float64(last.BeatIndex-secondLast.BeatIndex)

	beatsNeeded := int64(math.Ceil((sampleCount - last.SampleOffset) / samplesPerBeat))
	if beatsNeeded < 0 {
		beatsNeeded = 0
	}
	newIndex := last.BeatIndex + beatsNeeded
	return blob.BeatGridMarker{
		BeatIndex:    newIndex,
		SampleOffset: last.SampleOffset + samplesPerBeat*float64(newIndex-last.BeatIndex),
	}
}
