// Package detector locates a candidate barcode-like rectangular region
// within a binary image. Starting around the center of the image it
// increases the size of the candidate region until it finds a white
// rectangular border, then walks the edges to find precise corner
// coordinates.
package detector

import (
	"math"

	symbolgo "github.com/symbolgo/symbolgo"
	"github.com/symbolgo/symbolgo/bitutil"
)

const (
	initSize = 10
	corr     = 1
	// tolerance is the percentage of a border scan that may be black
	// before the border counts as not white, in try-harder mode.
	tolerance = 2
)

// WhiteRectangleDetector finds the smallest white-bordered axis-aligned
// rectangle around a candidate symbol and refines its four corners.
type WhiteRectangleDetector struct {
	image     *bitutil.BitMatrix
	width     int
	height    int
	leftInit  int
	rightInit int
	downInit  int
	upInit    int
	tryHarder bool
}

// New creates a detector searching from the center of the image with the
// default initial size.
func New(image *bitutil.BitMatrix, tryHarder bool) (*WhiteRectangleDetector, error) {
	return NewWithInit(image, initSize, image.Width()/2, image.Height()/2, tryHarder)
}

// NewWithInit creates a detector with an explicit initial search size and
// center. It fails with ErrNotFound if the image is too small to
// accommodate the initial search area.
func NewWithInit(image *bitutil.BitMatrix, initSz, x, y int, tryHarder bool) (*WhiteRectangleDetector, error) {
	w := image.Width()
	h := image.Height()

	halfsize := initSz / 2
	li := x - halfsize
	ri := x + halfsize
	ui := y - halfsize
	di := y + halfsize

	if ui < 0 || li < 0 || di >= h || ri >= w {
		return nil, symbolgo.ErrNotFound
	}
	return &WhiteRectangleDetector{
		image: image, width: w, height: h,
		leftInit: li, rightInit: ri, downInit: di, upInit: ui,
		tryHarder: tryHarder,
	}, nil
}

// Detect expands the search rectangle until each side is white, then
// refines the corners. The returned points are ordered
// [topmost, leftmost, rightmost, bottommost]; the first and last points are
// opposed on the diagonal, as are the second and third.
func (d *WhiteRectangleDetector) Detect() ([]symbolgo.ResultPoint, error) {
	left := d.leftInit
	right := d.rightInit
	up := d.upInit
	down := d.downInit

	sizeExceeded := false
	aBlackPointFoundOnBorder := true
	atLeastOneBlackPointFoundOnBorder := false

	atLeastOneBlackPointFoundOnRight := false
	atLeastOneBlackPointFoundOnBottom := false
	atLeastOneBlackPointFoundOnLeft := false
	atLeastOneBlackPointFoundOnTop := false

	for aBlackPointFoundOnBorder {
		aBlackPointFoundOnBorder = false

		// .....
		// .   |
		// .....
		rightBorderNotWhite := true
		for (rightBorderNotWhite || !atLeastOneBlackPointFoundOnRight) && right < d.width {
			rightBorderNotWhite = d.containsBlackPoint(up, down, right, false)
			if rightBorderNotWhite {
				right++
				aBlackPointFoundOnBorder = true
				atLeastOneBlackPointFoundOnRight = true
			} else if !atLeastOneBlackPointFoundOnRight {
				right++
			}
		}
		if right >= d.width {
			sizeExceeded = true
			break
		}

		// .....
		// .   .
		// .___.
		bottomBorderNotWhite := true
		for (bottomBorderNotWhite || !atLeastOneBlackPointFoundOnBottom) && down < d.height {
			bottomBorderNotWhite = d.containsBlackPoint(left, right, down, true)
			if bottomBorderNotWhite {
				down++
				aBlackPointFoundOnBorder = true
				atLeastOneBlackPointFoundOnBottom = true
			} else if !atLeastOneBlackPointFoundOnBottom {
				down++
			}
		}
		if down >= d.height {
			sizeExceeded = true
			break
		}

		// .....
		// |   .
		// .....
		leftBorderNotWhite := true
		for (leftBorderNotWhite || !atLeastOneBlackPointFoundOnLeft) && left >= 0 {
			leftBorderNotWhite = d.containsBlackPoint(up, down, left, false)
			if leftBorderNotWhite {
				left--
				aBlackPointFoundOnBorder = true
				atLeastOneBlackPointFoundOnLeft = true
			} else if !atLeastOneBlackPointFoundOnLeft {
				left--
			}
		}
		if left < 0 {
			sizeExceeded = true
			break
		}

		// .___.
		// .   .
		// .....
		topBorderNotWhite := true
		for (topBorderNotWhite || !atLeastOneBlackPointFoundOnTop) && up >= 0 {
			topBorderNotWhite = d.containsBlackPoint(left, right, up, true)
			if topBorderNotWhite {
				up--
				aBlackPointFoundOnBorder = true
				atLeastOneBlackPointFoundOnTop = true
			} else if !atLeastOneBlackPointFoundOnTop {
				up--
			}
		}
		if up < 0 {
			sizeExceeded = true
			break
		}

		if aBlackPointFoundOnBorder {
			atLeastOneBlackPointFoundOnBorder = true
		}
	}

	if sizeExceeded || !atLeastOneBlackPointFoundOnBorder {
		return nil, symbolgo.ErrNotFound
	}

	fLeft := float64(left)
	fRight := float64(right)
	fUp := float64(up)
	fDown := float64(down)

	// go up right
	z, zOK := d.findEdgePoint(symbolgo.ResultPoint{X: fLeft, Y: fDown}, symbolgo.ResultPoint{X: fRight, Y: fUp})
	// go down right
	t, tOK := d.findEdgePoint(symbolgo.ResultPoint{X: fLeft, Y: fUp}, symbolgo.ResultPoint{X: fRight, Y: fDown})
	// go down left
	x, xOK := d.findEdgePoint(symbolgo.ResultPoint{X: fRight, Y: fUp}, symbolgo.ResultPoint{X: fLeft, Y: fDown})
	// go up left
	y, yOK := d.findEdgePoint(symbolgo.ResultPoint{X: fRight, Y: fDown}, symbolgo.ResultPoint{X: fLeft, Y: fUp})

	if !zOK || !tOK || !xOK || !yOK {
		return nil, symbolgo.ErrNotFound
	}

	return d.centerEdges(y, z, x, t), nil
}

// findEdgePoint returns the edge point of the symbol that is closest to the
// rectangle corner passed as the first argument, walking parallel diagonals
// from edge toward oppEdge. The i/j double-step pattern is deliberate; the
// two offset probes cover twice the slope of the diagonal probe.
func (d *WhiteRectangleDetector) findEdgePoint(edge, oppEdge symbolgo.ResultPoint) (symbolgo.ResultPoint, bool) {
	maxSize := int(math.Abs(edge.X - oppEdge.X))
	verticalMaxSize := int(math.Abs(edge.Y - oppEdge.Y))

	var a, a1, a2 symbolgo.ResultPoint
	var aOK, a1OK, a2OK bool
	bordersChecked := false

	for i, j := 1, 2; j < maxSize/2 && j < verticalMaxSize/2; i, j = i+1, j+2 {
		// In try-harder mode a black point may exist on the border lines
		// because of the scan tolerance. In that case the first points to
		// check are the black points on the two borders emanating from
		// edge, accepted only if they hold up as genuine corners.
		if d.tryHarder && !bordersChecked {
			hx := edge.X - float64(maxSize/2)
			if edge.X < oppEdge.X {
				hx = edge.X + float64(maxSize/2)
			}
			a1, a1OK = d.getBlackPointOnSegment(edge.X, edge.Y, hx, edge.Y)
			vy := edge.Y + float64(verticalMaxSize/2)
			if edge.Y > oppEdge.Y {
				vy = edge.Y - float64(verticalMaxSize/2)
			}
			a2, a2OK = d.getBlackPointOnSegment(edge.X, edge.Y, edge.X, vy)
			if a1OK && !d.isCornerPoint(a1, edge, maxSize, verticalMaxSize) {
				a1OK = false
			}
			if a2OK && !d.isCornerPoint(a2, edge, verticalMaxSize, maxSize) {
				a2OK = false
			}
			bordersChecked = true
		}

		if !aOK {
			ay := edge.Y + float64(i)
			if edge.Y > oppEdge.Y {
				ay = edge.Y - float64(i)
			}
			ax := edge.X - float64(i)
			if edge.X < oppEdge.X {
				ax = edge.X + float64(i)
			}
			a, aOK = d.getBlackPointOnSegment(edge.X, ay, ax, edge.Y)
		}
		if !a1OK {
			x1 := edge.X - float64(j)
			if edge.X < oppEdge.X {
				x1 = edge.X + float64(j)
			}
			y1 := edge.Y + float64(i)
			if edge.Y > oppEdge.Y {
				y1 = edge.Y - float64(i)
			}
			a1, a1OK = d.getBlackPointOnSegment(x1, edge.Y, edge.X, y1)
		}
		if !a2OK {
			y2 := edge.Y + float64(j)
			if edge.Y > oppEdge.Y {
				y2 = edge.Y - float64(j)
			}
			x2 := edge.X - float64(i)
			if edge.X < oppEdge.X {
				x2 = edge.X + float64(i)
			}
			a2, a2OK = d.getBlackPointOnSegment(edge.X, y2, x2, edge.Y)
		}

		if aOK && !d.tryHarder {
			break
		} else if a1OK && a2OK && d.tryHarder {
			if !d.inBlackModule(a1, a2) {
				// not inside a black module: take the middle, pushed
				// clear of the symbol
				a = symbolgo.ResultPoint{X: (a1.X + a2.X) / 2, Y: (a1.Y + a2.Y) / 2}
				a = d.decentralizePoint(a, edge, oppEdge)
			} else if d.inBorderLine(a1, edge, oppEdge) {
				a = a1
			} else if d.inBorderLine(a2, edge, oppEdge) {
				a = a2
			} else {
				ax := math.Max(a1.X, a2.X)
				if edge.X < oppEdge.X {
					ax = math.Min(a1.X, a2.X)
				}
				ay := math.Min(a1.Y, a2.Y)
				if edge.Y > oppEdge.Y {
					ay = math.Max(a1.Y, a2.Y)
				}
				a = symbolgo.ResultPoint{X: ax, Y: ay}
			}
			aOK = true
			break
		}
	}
	return a, aOK
}

// inBorderLine reports whether a lies on one of the four border lines of
// the rectangle spanned by edge and oppEdge.
func (d *WhiteRectangleDetector) inBorderLine(a, edge, oppEdge symbolgo.ResultPoint) bool {
	return a.X == edge.X || a.X == oppEdge.X || a.Y == edge.Y || a.Y == oppEdge.Y
}

// decentralizePoint shifts a black point away from oppEdge until it leaves
// the black module, then two more pixels so the later centering offset
// leaves it cleanly outside.
func (d *WhiteRectangleDetector) decentralizePoint(a, edge, oppEdge symbolgo.ResultPoint) symbolgo.ResultPoint {
	for d.isBlack(int(a.X), int(a.Y)) {
		x := a.X - corr
		if edge.X > oppEdge.X {
			x = a.X + corr
		}
		y := a.Y - corr
		if edge.Y > oppEdge.Y {
			y = a.Y + corr
		}
		a = symbolgo.ResultPoint{X: x, Y: y}
	}
	x := a.X - corr - 1
	if edge.X > oppEdge.X {
		x = a.X + corr + 1
	}
	y := a.Y - corr - 1
	if edge.Y > oppEdge.Y {
		y = a.Y + corr + 1
	}
	return symbolgo.ResultPoint{X: x, Y: y}
}

// isCornerPoint determines heuristically whether a is a genuine corner of
// the symbol. a and b must share an axis; an axis mismatch is a contract
// violation and panics.
//
// For 5% of the short axis, segments from a to close neighbours of b must
// stay at or below 10% black; for 100% of the long axis they must stay at
// or below 15% black.
func (d *WhiteRectangleDetector) isCornerPoint(a, b symbolgo.ResultPoint, pointsSideMaxSize, pointsVerticalSideMaxSize int) bool {
	switch {
	case a.X == b.X:
		i := 1
		for ; i < pointsVerticalSideMaxSize*5/100; i++ {
			bx1 := float64(d.width - 1)
			if b.X+float64(i) < float64(d.width) {
				bx1 = b.X + float64(i)
			}
			bx2 := 0.0
			if b.X-float64(i) > 0 {
				bx2 = b.X - float64(i)
			}

			dist1 := mathRound(distanceFloat(a.X, a.Y, bx1, b.Y))
			dist2 := mathRound(distanceFloat(a.X, a.Y, bx2, b.Y))
			blackPoints1 := d.countBlackPointsOnSegment(a.X, a.Y, bx1, b.Y)
			blackPoints2 := d.countBlackPointsOnSegment(a.X, a.Y, bx2, b.Y)

			if float64(blackPoints1)/float64(dist1) > 0.1 || float64(blackPoints2)/float64(dist2) > 0.1 {
				return false
			}
		}
		for j := 1; j < pointsSideMaxSize; j++ {
			// i keeps its value from the short-axis sweep above
			var ex float64
			if math.Abs(float64(d.width)-a.X) < a.X {
				ex = float64(d.width - 1)
				if b.X+float64(i) < float64(d.width) {
					ex = b.X + float64(i)
				}
			} else {
				ex = 0
				if b.X-float64(i) > 0 {
					ex = b.X - float64(i)
				}
			}
			ey := b.Y + float64(j)
			if math.Abs(float64(d.height)-b.Y) < b.Y {
				ey = b.Y - float64(j)
			}

			dist1 := mathRound(distanceFloat(a.X, a.Y, ex, ey))
			blackPoints1 := d.countBlackPointsOnSegment(a.X, a.Y, ex, ey)
			if float64(blackPoints1)/float64(dist1) > 0.15 {
				return false
			}
		}
	case a.Y == b.Y:
		i := 1
		for ; i < pointsVerticalSideMaxSize*5/100; i++ {
			by1 := float64(d.height - 1)
			if b.Y+float64(i) < float64(d.height) {
				by1 = b.Y + float64(i)
			}
			by2 := 0.0
			if b.Y-float64(i) > 0 {
				by2 = b.Y - float64(i)
			}

			dist1 := mathRound(distanceFloat(a.X, a.Y, b.X, by1))
			dist2 := mathRound(distanceFloat(a.X, a.Y, b.X, by2))
			blackPoints1 := d.countBlackPointsOnSegment(a.X, a.Y, b.X, by1)
			blackPoints2 := d.countBlackPointsOnSegment(a.X, a.Y, b.X, by2)

			if float64(blackPoints1)/float64(dist1) > 0.1 || float64(blackPoints2)/float64(dist2) > 0.1 {
				return false
			}
		}
		for j := 1; j < pointsSideMaxSize; j++ {
			ex := b.X + float64(j)
			if math.Abs(float64(d.width)-b.X) < b.X {
				ex = b.X - float64(j)
			}
			var ey float64
			if math.Abs(float64(d.height)-a.Y) < a.Y {
				ey = float64(d.height - 1)
				if b.Y+float64(i) < float64(d.height) {
					ey = b.Y + float64(i)
				}
			} else {
				ey = 0
				if b.Y-float64(i) > 0 {
					ey = b.Y - float64(i)
				}
			}

			dist1 := mathRound(distanceFloat(a.X, a.Y, ex, ey))
			blackPoints1 := d.countBlackPointsOnSegment(a.X, a.Y, ex, ey)
			if float64(blackPoints1)/float64(dist1) > 0.15 {
				return false
			}
		}
	default:
		panic("detector: corner point candidates must share an axis")
	}
	return true
}

// inBlackModule reports whether the segment (a1, a2) lies inside a black
// module: over 90% of its samples are black. If a1 and a2 coincide the
// single pixel decides.
func (d *WhiteRectangleDetector) inBlackModule(a1, a2 symbolgo.ResultPoint) bool {
	dist := mathRound(distanceFloat(a1.X, a1.Y, a2.X, a2.Y))
	if dist == 0 {
		return d.isBlack(int(a1.X), int(a1.Y))
	}
	blackPoints := d.countBlackPointsOnSegment(a1.X, a1.Y, a2.X, a2.Y)
	return float64(blackPoints)/float64(dist) > 0.9
}

// getBlackPointOnSegment walks from (aX,aY) toward (bX,bY) and returns the
// first black pixel found, or false if none is found.
func (d *WhiteRectangleDetector) getBlackPointOnSegment(aX, aY, bX, bY float64) (symbolgo.ResultPoint, bool) {
	dist := mathRound(distanceFloat(aX, aY, bX, bY))
	if dist < 1 {
		return symbolgo.ResultPoint{}, false
	}
	xStep := (bX - aX) / float64(dist)
	yStep := (bY - aY) / float64(dist)

	for i := 0; i < dist; i++ {
		px := mathRound(aX + float64(i)*xStep)
		py := mathRound(aY + float64(i)*yStep)
		if d.isBlack(px, py) {
			return symbolgo.ResultPoint{X: float64(px), Y: float64(py)}, true
		}
	}
	return symbolgo.ResultPoint{}, false
}

// countBlackPointsOnSegment counts black pixels on the closed segment from
// (aX,aY) to (bX,bY).
func (d *WhiteRectangleDetector) countBlackPointsOnSegment(aX, aY, bX, bY float64) int {
	counter := 0
	dist := mathRound(distanceFloat(aX, aY, bX, bY))
	if dist == 0 {
		if d.isBlack(int(aX), int(aY)) {
			return 1
		}
		return 0
	}
	xStep := (bX - aX) / float64(dist)
	yStep := (bY - aY) / float64(dist)

	for i := 0; i <= dist; i++ {
		px := mathRound(aX + float64(i)*xStep)
		py := mathRound(aY + float64(i)*yStep)
		if d.isBlack(px, py) {
			counter++
		}
	}
	return counter
}

// centerEdges recenters the points at a constant distance towards the center.
// y is the bottommost point, z leftmost, x rightmost, t topmost.
func (d *WhiteRectangleDetector) centerEdges(y, z, x, t symbolgo.ResultPoint) []symbolgo.ResultPoint {
	//
	//       t            t
	//  z                      x
	//        x    OR    z
	//   y                    y
	//

	yi := y.X
	yj := y.Y
	zi := z.X
	zj := z.Y
	xi := x.X
	xj := x.Y
	ti := t.X
	tj := t.Y

	if yi < float64(d.width)/2.0 {
		return []symbolgo.ResultPoint{
			{X: ti - corr, Y: tj + corr},
			{X: zi + corr, Y: zj + corr},
			{X: xi - corr, Y: xj - corr},
			{X: yi + corr, Y: yj - corr},
		}
	}
	return []symbolgo.ResultPoint{
		{X: ti + corr, Y: tj + corr},
		{X: zi + corr, Y: zj - corr},
		{X: xi - corr, Y: xj + corr},
		{X: yi - corr, Y: yj - corr},
	}
}

// containsBlackPoint checks whether a border segment contains a black pixel.
// When horizontal is true, fixed is the y coordinate and a..b are x values;
// otherwise fixed is the x coordinate and a..b are y values. In try-harder
// mode up to tolerance percent of the segment may be black before it counts.
func (d *WhiteRectangleDetector) containsBlackPoint(a, b, fixed int, horizontal bool) bool {
	tolerancePixels := mathRound(math.Abs(float64(a-b)) * tolerance / 100)
	blackBitsCounter := 0
	if horizontal {
		for x := a; x <= b; x++ {
			if d.image.Get(x, fixed) {
				blackBitsCounter++
				if !d.tryHarder || blackBitsCounter > tolerancePixels {
					return true
				}
			}
		}
	} else {
		for y := a; y <= b; y++ {
			if d.image.Get(fixed, y) {
				blackBitsCounter++
				if !d.tryHarder || blackBitsCounter > tolerancePixels {
					return true
				}
			}
		}
	}
	return false
}

// isBlack is a clamped pixel read; out-of-range coordinates are white.
func (d *WhiteRectangleDetector) isBlack(x, y int) bool {
	return x >= 0 && x < d.width && y >= 0 && y < d.height && d.image.Get(x, y)
}

// mathRound rounds to the nearest int, halves away from zero.
func mathRound(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// distanceFloat returns the Euclidean distance between two points.
func distanceFloat(aX, aY, bX, bY float64) float64 {
	dx := aX - bX
	dy := aY - bY
	return math.Sqrt(dx*dx + dy*dy)
}
