package tablelayer

import (
	"time"

	"github.com/kitsune-dj/enginelib/internal/blob"
)

// TrackSnapshot is a value-typed aggregate carrying every per-track
// attribute the library models, independent of which schema it is read
// from or written to. It may outlive the database it was read from and
// be replayed into a different one.
type TrackSnapshot struct {
	// Metadata
	Album     *string
	Artist    *string
	Comment   *string
	Composer  *string
	Genre     *string
	Publisher *string
	Title     *string

	Bitrate     *int
	BPM         *int
	TrackNumber *int
	Year        *int
	Rating      *int // 0..100

	Duration  *time.Duration
	FileBytes *uint64
	Key       *blob.MusicalKey

	// File binding
	RelativePath *string

	// Sampling
	SampleCount *uint64
	SampleRate  *float64

	// Analysis
	AverageLoudness float64 // (0, 1]
	Beatgrid        []blob.BeatGridMarker
	MainCue         *float64
	HotCues         [8]*blob.HotCue
	Loops           [8]*blob.Loop
	Waveform        []blob.WaveformEntry

	// History
	LastPlayedAt *time.Time
}

// Filename returns the basename of RelativePath, or "" if unset. Always
// derived, never stored independently.
func (s TrackSnapshot) Filename() string {
	if s.RelativePath == nil {
		return ""
	}
	return basename(*s.RelativePath)
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
