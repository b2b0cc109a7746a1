package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	symbolgo "github.com/symbolgo/symbolgo"
	"github.com/symbolgo/symbolgo/bitutil"
)

func TestDetectAllWhite(t *testing.T) {
	image := bitutil.NewBitMatrixWithSize(20, 20)
	d, err := New(image, false)
	require.NoError(t, err)

	_, err = d.Detect()
	assert.ErrorIs(t, err, symbolgo.ErrNotFound)
}

func TestNewImageTooSmall(t *testing.T) {
	image := bitutil.NewBitMatrixWithSize(8, 8)
	_, err := New(image, false)
	assert.ErrorIs(t, err, symbolgo.ErrNotFound)
}

func TestDetectFilledRectangle(t *testing.T) {
	image := bitutil.NewBitMatrixWithSize(40, 40)
	// black rectangle x in [12,27], y in [14,25]
	image.SetRegion(12, 14, 16, 12)

	d, err := New(image, false)
	require.NoError(t, err)

	points, err := d.Detect()
	require.NoError(t, err)
	require.Len(t, points, 4)

	// ordered [topmost, leftmost, rightmost, bottommost]
	assert.LessOrEqual(t, points[0].Y, points[1].Y)
	assert.LessOrEqual(t, points[0].Y, points[2].Y)
	assert.GreaterOrEqual(t, points[3].Y, points[1].Y)
	assert.GreaterOrEqual(t, points[3].Y, points[2].Y)

	// points 0/3 and 1/2 are diagonal opposites; the diagonals cross
	assert.Less(t, points[0].X, points[3].X)
	assert.Less(t, points[0].Y, points[3].Y)
	assert.Less(t, points[1].X, points[2].X)
	assert.Greater(t, points[1].Y, points[2].Y)

	corners := []symbolgo.ResultPoint{
		{X: 12, Y: 14}, // top left
		{X: 12, Y: 25}, // bottom left
		{X: 27, Y: 14}, // top right
		{X: 27, Y: 25}, // bottom right
	}
	for i, want := range corners {
		assert.InDelta(t, want.X, points[i].X, corr+2, "point %d x", i)
		assert.InDelta(t, want.Y, points[i].Y, corr+2, "point %d y", i)
	}
}

func TestDetectTryHarderToleratesBorderNoise(t *testing.T) {
	image := bitutil.NewBitMatrixWithSize(200, 200)
	// black square x, y in [80,119]
	image.SetRegion(80, 80, 40, 40)
	// stray black pixels, one per final border, each under the 2% tolerance
	image.Set(79, 101)
	image.Set(120, 85)
	image.Set(100, 79)
	image.Set(105, 120)

	d, err := New(image, true)
	require.NoError(t, err)

	points, err := d.Detect()
	require.NoError(t, err)
	require.Len(t, points, 4)

	corners := []symbolgo.ResultPoint{
		{X: 80, Y: 80},
		{X: 80, Y: 119},
		{X: 119, Y: 80},
		{X: 119, Y: 119},
	}
	for i, want := range corners {
		assert.InDelta(t, want.X, points[i].X, 3, "point %d x", i)
		assert.InDelta(t, want.Y, points[i].Y, 3, "point %d y", i)
	}
}

func TestIsCornerPointAxisMismatchPanics(t *testing.T) {
	image := bitutil.NewBitMatrixWithSize(40, 40)
	d, err := New(image, true)
	require.NoError(t, err)

	assert.Panics(t, func() {
		d.isCornerPoint(symbolgo.ResultPoint{X: 1, Y: 2}, symbolgo.ResultPoint{X: 3, Y: 4}, 40, 40)
	})
}
