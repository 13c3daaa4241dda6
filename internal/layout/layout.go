package layout

// SampleStride is the pixel skip used in both axes when enumerating a node's
// sampling window (a fixed 4x area downsample).
const SampleStride = 2

// Screen is the resolution of the captured source image. The image holds two
// half-width views side by side; node geometry is computed against the left
// half and reused, offset by HalfX, for the right half.
type Screen struct{ X, Y int }

// HalfX is the width of one view and the offset of the right view.
func (s Screen) HalfX() int { return s.X / 2 }

// Pixels is the total pixel count of the source image.
func (s Screen) Pixels() int { return s.X * s.Y }

// LedNode is the sampling definition of one physical LED: its configured
// coordinate and radius, and the flat pixel indices derived from them.
type LedNode struct {
	X, Y, R   int
	Positions []int
}

// NewLedNode maps (x, y) from the confW x confH configuration space into the
// left view of screen and enumerates a clipped, strided window of radius r.
// Every returned index lies in [0, screen.Pixels()). The window may be empty.
func NewLedNode(x, y, r, confW, confH int, screen Screen) LedNode {
	n := LedNode{X: x, Y: y, R: r}
	if confW <= 0 || confH <= 0 || screen.X <= 0 || screen.Y <= 0 {
		return n
	}
	half := screen.HalfX()
	mx := int(float64(x) / float64(confW) * float64(half))
	my := int(float64(y) / float64(confH) * float64(screen.Y))

	minX := max(mx-r, 0)
	maxX := min(mx+r, half)
	minY := max(my-r, 0)
	maxY := min(my+r, screen.Y)

	for ix := minX; ix < maxX; ix += SampleStride {
		for iy := minY; iy < maxY; iy += SampleStride {
			n.Positions = append(n.Positions, iy*screen.X+ix)
		}
	}
	return n
}

// Point is a configured LED coordinate and sampling radius.
type Point struct{ X, Y, R int }

// Build computes the nodes for pts, in order.
func Build(pts []Point, confW, confH int, screen Screen) []LedNode {
	out := make([]LedNode, len(pts))
	for i, p := range pts {
		out[i] = NewLedNode(p.X, p.Y, p.R, confW, confH, screen)
	}
	return out
}
