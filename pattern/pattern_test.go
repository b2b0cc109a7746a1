package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var startPattern = []int{8, 1, 1, 1, 1, 1, 1, 3}

func TestVariancePerfectMatch(t *testing.T) {
	counters := []int{8, 1, 1, 1, 1, 1, 1, 3}
	assert.Equal(t, 0, Variance(counters, startPattern, 255))
}

func TestVarianceTooFewPixels(t *testing.T) {
	counters := []int{4, 1, 1, 1, 1, 1, 1, 2}
	assert.Equal(t, NoMatch, Variance(counters, startPattern, ResultScaleFactor))
}

func TestVarianceScaleInvariant(t *testing.T) {
	counters := []int{9, 1, 1, 1, 1, 1, 1, 3}
	base := Variance(counters, startPattern, ResultScaleFactor)
	assert.NotEqual(t, NoMatch, base)

	for _, k := range []int{2, 3, 5, 10} {
		scaled := make([]int, len(counters))
		for i, c := range counters {
			scaled[i] = c * k
		}
		got := Variance(scaled, startPattern, ResultScaleFactor)
		// Scaling the observation should preserve the variance ratio up
		// to fixed-point rounding.
		assert.InDelta(t, base, got, 4, "scale factor %d", k)
	}
}

func TestVarianceIndividualCap(t *testing.T) {
	// One run is wildly off even though the total is plausible.
	counters := []int{8, 1, 1, 1, 1, 1, 1, 30}
	maxIndividual := 80 * ResultScaleFactor / 100
	assert.Equal(t, NoMatch, Variance(counters, startPattern, maxIndividual))
}

func TestVarianceModerateMismatch(t *testing.T) {
	// 3 pixels per module with one run off by one pixel.
	counters := []int{24, 3, 3, 4, 3, 3, 3, 9}
	got := Variance(counters, startPattern, 80*ResultScaleFactor/100)
	assert.NotEqual(t, NoMatch, got)
	assert.Greater(t, got, 0)
	assert.Less(t, got, 42*ResultScaleFactor/100)
}
