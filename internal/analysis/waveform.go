package analysis

import "math"

// QuantisationNumber returns the stride unit shared by both waveform
// resolutions: 2 * floor(sample_rate / 210).
func QuantisationNumber(sampleRate float64) int64 {
	return 2 * int64(math.Floor(sampleRate/210))
}

// OverviewExtent returns the fixed entry count (always 1024) and the
// samples-per-entry for the overview waveform.
func OverviewExtent(sampleCount, sampleRate float64) (size int64, samplesPerEntry float64) {
	qn := QuantisationNumber(sampleRate)
	if qn == 0 {
		return 1024, 0
	}
	quantised := math.Floor(sampleCount/float64(qn)) * float64(qn)
	return 1024, math.Floor(quantised) / 1024
}

// HighResExtent returns the entry count and samples-per-entry for the
// high-resolution waveform: samples-per-entry is qn directly, and size is
// floor(sample_count / qn).
func HighResExtent(sampleCount, sampleRate float64) (size int64, samplesPerEntry float64) {
	qn := QuantisationNumber(sampleRate)
	if qn == 0 {
		return 0, 0
	}
	return int64(math.Floor(sampleCount / float64(qn))), float64(qn)
}
