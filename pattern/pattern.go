// Package pattern scores observed runs of black/white pixels against
// expected guard patterns using fixed-point integer arithmetic.
package pattern

import "math"

const (
	// IntegerMathShift is the number of fractional bits used to fake
	// floating-point math in integers.
	IntegerMathShift = 8

	// ResultScaleFactor is the fixed-point scale applied to returned
	// variances: a result of 256 means the total variance between the
	// counters and the pattern equals the pattern length.
	ResultScaleFactor = 1 << IntegerMathShift

	// NoMatch is returned when the counters cannot match the pattern at all.
	NoMatch = math.MaxInt32
)

// Variance determines how closely a set of observed counts of runs of
// black/white values matches a given target pattern. This is reported as the
// ratio of the total variance from the expected pattern proportions across
// all pattern elements, to the length of the pattern, multiplied by
// ResultScaleFactor. So, 0 means no variance (perfect match); 256 means the
// total variance between counters and pattern equals the pattern length.
//
// Variance returns NoMatch if the counters do not even cover one pixel per
// unit of bar width, or if any individual counter differs from its scaled
// pattern element by more than maxIndividualVariance (itself expressed at
// the ResultScaleFactor scale).
func Variance(counters, pattern []int, maxIndividualVariance int) int {
	numCounters := len(counters)
	total := 0
	patternLength := 0
	for i := 0; i < numCounters; i++ {
		total += counters[i]
		patternLength += pattern[i]
	}
	if total < patternLength {
		// If we don't even have one pixel per unit of bar width, assume
		// this is too small to reliably match, so fail.
		return NoMatch
	}

	unitBarWidth := (total << IntegerMathShift) / patternLength
	maxIndividualVariance = (maxIndividualVariance * unitBarWidth) >> IntegerMathShift

	totalVariance := 0
	for x := 0; x < numCounters; x++ {
		counter := counters[x] << IntegerMathShift
		scaledPattern := pattern[x] * unitBarWidth
		variance := counter - scaledPattern
		if variance < 0 {
			variance = -variance
		}
		if variance > maxIndividualVariance {
			return NoMatch
		}
		totalVariance += variance
	}
	return totalVariance / total
}
