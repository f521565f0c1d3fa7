package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderingIsTotal(t *testing.T) {
	all := All()
	for i := range all {
		for j := range all {
			a, b := all[i], all[j]
			lt := a.Less(b)
			gt := b.Less(a)
			assert.False(t, lt && gt, "%s and %s can't both be less than each other", a, b)
			if i != j {
				assert.True(t, lt || gt || a == b, "%s and %s must be comparable", a, b)
			}
		}
	}
}

func TestOrderingIsAscending(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Less(all[i]) || all[i-1] == all[i],
			"%s must sort before %s", all[i-1], all[i])
	}
}

func TestIsV2Like(t *testing.T) {
	assert.False(t, V1_18_0OS.IsV2Like())
	assert.True(t, V2_18_0.IsV2Like())
	assert.True(t, V3_0_0.IsV2Like())
}

func TestLatestConstants(t *testing.T) {
	assert.Equal(t, V3_0_0, Latest())
	assert.Equal(t, V1_18_0OS, LatestV1())
	assert.Equal(t, V2_21_2, LatestV2())
	assert.Equal(t, V3_0_0, LatestV3())
}

func TestLookup(t *testing.T) {
	id, ok := Lookup(2, 21, 2)
	assert.True(t, ok)
	assert.Equal(t, V2_21_2, id)

	_, ok = Lookup(9, 9, 9)
	assert.False(t, ok)
}
