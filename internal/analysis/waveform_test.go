package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantisationNumber(t *testing.T) {
	assert.Equal(t, int64(420), QuantisationNumber(44100))
	assert.Equal(t, int64(0), QuantisationNumber(0))
}

func TestOverviewExtentAlwaysHas1024Entries(t *testing.T) {
	size, samplesPerEntry := OverviewExtent(16140600, 44100)
	assert.Equal(t, int64(1024), size)
	assert.Greater(t, samplesPerEntry, 0.0)
}

func TestOverviewExtentZeroSampleRate(t *testing.T) {
	size, samplesPerEntry := OverviewExtent(16140600, 0)
	assert.Equal(t, int64(1024), size)
	assert.Equal(t, 0.0, samplesPerEntry)
}

func TestHighResExtentUsesQuantisationNumberDirectly(t *testing.T) {
	size, samplesPerEntry := HighResExtent(16140600, 44100)
	qn := QuantisationNumber(44100)
	assert.Equal(t, float64(qn), samplesPerEntry)
	assert.Equal(t, int64(16140600)/qn, size)
}

func TestHighResExtentZeroSampleRate(t *testing.T) {
	size, samplesPerEntry := HighResExtent(16140600, 0)
	assert.Equal(t, int64(0), size)
	assert.Equal(t, 0.0, samplesPerEntry)
}
