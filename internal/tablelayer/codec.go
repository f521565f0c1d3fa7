package tablelayer

import (
	"github.com/kitsune-dj/enginelib/internal/analysis"
	"github.com/kitsune-dj/enginelib/internal/blob"
)

// blobSet is the five (v1: six) BLOBs derived from one TrackSnapshot.
// The snapshot carries a single overview-resolution waveform; v1 also
// persists it as the high-resolution waveform, since the snapshot does
// not separately model full-resolution sample data (see DESIGN.md).
type blobSet struct {
	trackData []byte
	beatData  []byte
	overview  []byte
	highRes   []byte // v1 only
	quickCues []byte
	loops     []byte
}

func encodeBlobs(s TrackSnapshot) blobSet {
	var sampleRate float64
	if s.SampleRate != nil {
		sampleRate = *s.SampleRate
	}
	var sampleCount int64
	if s.SampleCount != nil {
		sampleCount = int64(*s.SampleCount)
	}
	var key blob.MusicalKey
	if s.Key != nil {
		key = *s.Key
	}

	td := blob.TrackData{
		SampleRate:      sampleRate,
		SampleCount:     sampleCount,
		AverageLoudness: s.AverageLoudness,
		Key:             key,
	}

	bd := blob.BeatData{
		SampleRate:    sampleRate,
		SampleCount:   float64(sampleCount),
		IsBeatgridSet: len(s.Beatgrid) > 0,
		DefaultGrid:   s.Beatgrid,
		AdjustedGrid:  s.Beatgrid,
	}

	_, samplesPerEntry := analysis.OverviewExtent(float64(sampleCount), sampleRate)
	ov := blob.OverviewWaveform{SamplesPerEntry: samplesPerEntry, Entries: s.Waveform}

	_, highResSamplesPerEntry := analysis.HighResExtent(float64(sampleCount), sampleRate)
	hr := blob.HighResWaveform{SamplesPerEntry: highResSamplesPerEntry, Entries: s.Waveform}

	var mainCue float64
	isMainCueAdjusted := false
	if s.MainCue != nil {
		mainCue = *s.MainCue
		isMainCueAdjusted = true
	}
	qc := blob.QuickCues{
		HotCues:           s.HotCues,
		AdjustedMainCue:   mainCue,
		IsMainCueAdjusted: isMainCueAdjusted,
		DefaultMainCue:    mainCue,
	}

	lp := blob.Loops{Loops: s.Loops}

	return blobSet{
		trackData: td.Encode(),
		beatData:  bd.Encode(),
		overview:  ov.Encode(),
		highRes:   hr.Encode(),
		quickCues: qc.Encode(),
		loops:     lp.Encode(),
	}
}

// decodeBlobsInto fills in the analysis-derived fields of a TrackSnapshot
// from its raw BLOB columns. No BLOB decode error is fatal to the whole
// row per the partial-success policy: a failing BLOB simply leaves its
// fields at their zero value.
func decodeBlobsInto(s *TrackSnapshot, set rawBlobs) {
	if td, err := blob.DecodeTrackData(set.trackData); err == nil {
		if td.SampleRate != 0 {
			sr := td.SampleRate
			s.SampleRate = &sr
		}
		if td.SampleCount != 0 {
			sc := uint64(td.SampleCount)
			s.SampleCount = &sc
		}
		s.AverageLoudness = td.AverageLoudness
		if td.Key != 0 {
			k := td.Key
			s.Key = &k
		}
	}

	if bd, err := blob.DecodeBeatData(set.beatData); err == nil {
		if len(bd.AdjustedGrid) > 0 {
			s.Beatgrid = bd.AdjustedGrid
		} else {
			s.Beatgrid = bd.DefaultGrid
		}
	}

	if ov, err := blob.DecodeOverviewWaveform(set.overview); err == nil {
		s.Waveform = ov.Entries
	}

	if qc, err := blob.DecodeQuickCues(set.quickCues); err == nil {
		s.HotCues = qc.HotCues
		if qc.IsMainCueAdjusted {
			mc := qc.AdjustedMainCue
			s.MainCue = &mc
		}
	}

	if lp, err := blob.DecodeLoops(set.loops); err == nil {
		s.Loops = lp.Loops
	}
}

// rawBlobs is the set of raw BLOB columns read back from a row, before
// decoding into snapshot fields.
type rawBlobs struct {
	trackData, beatData, overview, highRes, quickCues, loops []byte
}
