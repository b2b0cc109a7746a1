package detector

import symbolgo "github.com/symbolgo/symbolgo"

// DetectorResult holds the vertices of a detected PDF417 barcode together
// with the image view they were found in.
type DetectorResult struct {
	// Bits is the image view the vertices refer to; when Rotated is true
	// it is a 180 degree view of the input.
	Bits Image

	// Points holds eight vertices: indexes 0-3 are the top left, bottom
	// left, top right and bottom right barcode corners; 4-7 the
	// corresponding codeword-area corners.
	Points []*symbolgo.ResultPoint

	// CodewordWidth is the estimated width in pixels of one 17-module
	// codeword column.
	CodewordWidth float64

	// Rotated reports whether the barcode was found on the 180 degree
	// retry.
	Rotated bool
}
