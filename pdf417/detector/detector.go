// Package detector implements PDF417 start/stop guard-pattern detection in
// binary images. It locates the four barcode vertices and the codeword
// area vertices under pixel drift and scan noise, and estimates the
// codeword width from the start and stop patterns.
package detector

import (
	symbolgo "github.com/symbolgo/symbolgo"
	"github.com/symbolgo/symbolgo/pattern"
)

// Image is the read-only view of a binary image the detector scans.
// *bitutil.BitMatrix satisfies it.
type Image interface {
	Get(x, y int) bool
	Width() int
	Height() int
}

var (
	indexesStartPattern = [4]int{0, 4, 1, 5}
	indexesStopPattern  = [4]int{6, 2, 7, 3}
)

const (
	maxAvgVariance        = 42 * pattern.ResultScaleFactor / 100
	maxIndividualVariance = 80 * pattern.ResultScaleFactor / 100

	maxPixelDrift      = 3
	maxPatternDrift    = 5
	skippedRowCountMax = 50
	rowStep            = 5

	// modulesInCodeword is the number of modules in one codeword column.
	modulesInCodeword = 17
)

// B S B S B S B S Bar/Space pattern
// 11111111 0 1 0 1 0 1 000
var startPattern = []int{8, 1, 1, 1, 1, 1, 1, 3}

// 1111111 0 1 000 1 0 1 00 1
var stopPattern = []int{7, 1, 1, 3, 1, 1, 1, 2, 1}

// moduleCountStopPattern is the module count of the stop pattern.
const moduleCountStopPattern = 7 + 1 + 1 + 3 + 1 + 1 + 1 + 2 + 1

// rotated180 virtualises a 180 degree flip of the underlying image.
type rotated180 struct {
	img Image
}

func (r rotated180) Get(x, y int) bool {
	return r.img.Get(r.img.Width()-1-x, r.img.Height()-1-y)
}

func (r rotated180) Width() int  { return r.img.Width() }
func (r rotated180) Height() int { return r.img.Height() }

// Detect detects a PDF417 code in an image. Only 0 and 180 degree
// rotations are checked: if the top-left vertex is missing in the upright
// scan the search is retried once on a 180 degree view.
//
// TODO: tryHarder could try several different luminance thresholds or even
// different binarizers; the guard pattern scan itself does not use it yet.
func Detect(image Image, tryHarder bool) (*DetectorResult, error) {
	vertices := findVertices(image)
	rotated := false
	if vertices[0] == nil {
		// Maybe the image is rotated 180 degrees?
		image = rotated180{img: image}
		vertices = findVertices(image)
		rotated = true
	}

	if vertices[0] == nil {
		return nil, symbolgo.ErrNotFound
	}

	codewordWidth, err := computeCodewordWidthFromStartStopPattern(vertices)
	if err != nil {
		return nil, err
	}
	if codewordWidth < modulesInCodeword {
		return nil, symbolgo.ErrNotFound
	}

	return &DetectorResult{
		Bits:          image,
		Points:        vertices,
		CodewordWidth: codewordWidth,
		Rotated:       rotated,
	}, nil
}

// findVertices locates the vertices and the codewords area of a black blob
// using the Start and Stop patterns as locators.
//
// Returns an 8-element slice:
//
//	[0] x, y top left barcode
//	[1] x, y bottom left barcode
//	[2] x, y top right barcode
//	[3] x, y bottom right barcode
//	[4] x, y top left codeword area
//	[5] x, y bottom left codeword area
//	[6] x, y top right codeword area
//	[7] x, y bottom right codeword area
func findVertices(image Image) []*symbolgo.ResultPoint {
	height := image.Height()
	width := image.Width()

	result := make([]*symbolgo.ResultPoint, 8)
	copyToResult(result, findRowsWithPattern(image, height, width, startPattern), indexesStartPattern[:])
	copyToResult(result, findRowsWithPattern(image, height, width, stopPattern), indexesStopPattern[:])
	return result
}

// copyToResult copies elements from tmpResult into result at the specified
// destination indexes.
func copyToResult(result, tmpResult []*symbolgo.ResultPoint, destinationIndexes []int) {
	for i, idx := range destinationIndexes {
		result[idx] = tmpResult[i]
	}
}

// findRowsWithPattern finds the top and bottom rows where a guard pattern
// occurs, returning a 4-element slice of result points: the two top
// vertices followed by the two bottom vertices.
func findRowsWithPattern(image Image, height, width int, guard []int) []*symbolgo.ResultPoint {
	result := make([]*symbolgo.ResultPoint, 4)
	found := false
	counters := make([]int, len(guard))

	// First row that contains the pattern.
	startRow := 0
	for ; startRow < height; startRow += rowStep {
		loc := findGuardPattern(image, 0, startRow, width, guard, counters)
		if loc != nil {
			// Backtrack to the earliest consecutive row that still matches.
			for startRow > 0 {
				startRow--
				previousRowLoc := findGuardPattern(image, 0, startRow, width, guard, counters)
				if previousRowLoc != nil {
					loc = previousRowLoc
				} else {
					startRow++
					break
				}
			}
			result[0] = &symbolgo.ResultPoint{X: float64(loc[0]), Y: float64(startRow)}
			result[1] = &symbolgo.ResultPoint{X: float64(loc[1]), Y: float64(startRow)}
			found = true
			break
		}
	}

	// Last row of the current symbol that contains the pattern.
	if found {
		skippedRowCount := 0
		stopRow := startRow + 1
		previousRowLoc := [2]int{int(result[0].X), int(result[1].X)}
		for ; stopRow < height; stopRow++ {
			loc := findGuardPattern(image, previousRowLoc[0], stopRow, width, guard, counters)
			// A found pattern only belongs to the same barcode if the start
			// and end positions don't drift too far between rows.
			if loc != nil &&
				abs(previousRowLoc[0]-loc[0]) < maxPatternDrift &&
				abs(previousRowLoc[1]-loc[1]) < maxPatternDrift {
				previousRowLoc = [2]int{loc[0], loc[1]}
				skippedRowCount = 0
			} else {
				if skippedRowCount > skippedRowCountMax {
					break
				}
				skippedRowCount++
			}
		}
		stopRow -= skippedRowCount
		result[2] = &symbolgo.ResultPoint{X: float64(previousRowLoc[0]), Y: float64(stopRow)}
		result[3] = &symbolgo.ResultPoint{X: float64(previousRowLoc[1]), Y: float64(stopRow)}
	}
	return result
}

// findGuardPattern searches a row for a guard pattern and returns the
// start/end horizontal offset as a two-element slice, or nil if not found.
func findGuardPattern(image Image, column, row, width int, guard []int, counters []int) []int {
	for i := range counters {
		counters[i] = 0
	}
	patternStart := column
	pixelDrift := 0

	// If there are black pixels left of the current pixel shift to the
	// left, but only for maxPixelDrift pixels.
	for patternStart > 0 && pixelDrift < maxPixelDrift && image.Get(patternStart, row) {
		patternStart--
		pixelDrift++
	}

	x := patternStart
	counterPosition := 0
	patternLength := len(guard)
	isWhite := false

	for ; x < width; x++ {
		pixel := image.Get(x, row)
		if pixel != isWhite {
			counters[counterPosition]++
		} else {
			if counterPosition == patternLength-1 {
				if pattern.Variance(counters, guard, maxIndividualVariance) < maxAvgVariance {
					return []int{patternStart, x}
				}
				patternStart += counters[0] + counters[1]
				copy(counters, counters[2:counterPosition+1])
				counters[counterPosition-1] = 0
				counters[counterPosition] = 0
				counterPosition--
			} else {
				counterPosition++
			}
			counters[counterPosition] = 1
			isWhite = !isWhite
		}
	}

	if counterPosition == patternLength-1 &&
		pattern.Variance(counters, guard, maxIndividualVariance) < maxAvgVariance {
		return []int{patternStart, x - 1}
	}
	return nil
}

// computeCodewordWidthFromStartStopPattern estimates the codeword width in
// pixels from the start and stop patterns. The stop pattern spans 18
// modules and is rescaled to the 17 modules of a codeword column.
func computeCodewordWidthFromStartStopPattern(vertices []*symbolgo.ResultPoint) (float64, error) {
	coordinates := patternCoordinates(vertices, indexesStartPattern[:])
	if coordinates == nil {
		return 0, symbolgo.ErrNotFound
	}
	startPatternWidth := codewordWidthFromPattern(coordinates)

	coordinates = patternCoordinates(vertices, indexesStopPattern[:])
	if coordinates == nil {
		return startPatternWidth, nil
	}
	return (startPatternWidth +
		codewordWidthFromPattern(coordinates)*modulesInCodeword/moduleCountStopPattern) / 2, nil
}

// codewordWidthFromPattern averages the top and bottom widths of one guard
// pattern given its four coordinates.
func codewordWidthFromPattern(coordinates []symbolgo.ResultPoint) float64 {
	return (symbolgo.Distance(coordinates[0], coordinates[1]) +
		symbolgo.Distance(coordinates[2], coordinates[3])) / 2
}

// patternCoordinates collects the vertices at the given indexes, or nil if
// any of them is missing.
func patternCoordinates(vertices []*symbolgo.ResultPoint, indexes []int) []symbolgo.ResultPoint {
	result := make([]symbolgo.ResultPoint, len(indexes))
	for i, idx := range indexes {
		if vertices[idx] == nil {
			return nil
		}
		result[i] = *vertices[idx]
	}
	return result
}

// abs returns the absolute value of an int.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
