package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLedNodeBounds(t *testing.T) {
	screens := []Screen{{X: 64, Y: 36}, {X: 65, Y: 17}, {X: 2, Y: 1}, {X: 320, Y: 180}}
	for _, s := range screens {
		for x := 0; x <= 120; x += 7 {
			for y := 0; y <= 120; y += 11 {
				for _, r := range []int{0, 1, 3, 10, 400} {
					n := NewLedNode(x, y, r, 100, 100, s)
					for _, p := range n.Positions {
						if p < 0 || p >= s.Pixels() {
							t.Fatalf("screen %+v node (%d,%d,%d): index %d out of range", s, x, y, r, p)
						}
						// left view only
						assert.Less(t, p%s.X, s.HalfX())
					}
				}
			}
		}
	}
}

func TestNewLedNodeWindow(t *testing.T) {
	s := Screen{X: 40, Y: 20}
	// (50,50) in 100x100 maps to (10,10) in the 20x20 left view.
	n := NewLedNode(50, 50, 2, 100, 100, s)
	want := []int{
		8*40 + 8, 10*40 + 8,
		8*40 + 10, 10*40 + 10,
	}
	assert.Equal(t, want, n.Positions)
	assert.Equal(t, 50, n.X)
	assert.Equal(t, 2, n.R)
}

func TestNewLedNodeClipsAtEdge(t *testing.T) {
	s := Screen{X: 40, Y: 20}
	n := NewLedNode(0, 0, 3, 100, 100, s)
	// x in {0,2}, y in {0,2}
	assert.Equal(t, []int{0, 2 * 40, 2, 2*40 + 2}, n.Positions)
}

func TestNewLedNodeEmpty(t *testing.T) {
	s := Screen{X: 40, Y: 20}
	assert.Empty(t, NewLedNode(50, 50, 0, 100, 100, s).Positions)
	// mapped past the right edge of the left view
	assert.Empty(t, NewLedNode(200, 50, 1, 100, 100, s).Positions)
	assert.Empty(t, NewLedNode(10, 10, 5, 0, 100, s).Positions)
}

func TestBuildKeepsOrder(t *testing.T) {
	s := Screen{X: 40, Y: 20}
	nodes := Build([]Point{{X: 10, Y: 10, R: 2}, {X: 90, Y: 90, R: 2}}, 100, 100, s)
	if assert.Len(t, nodes, 2) {
		assert.Equal(t, 10, nodes[0].X)
		assert.Equal(t, 90, nodes[1].X)
	}
}
