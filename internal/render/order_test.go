package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorOrderApply(t *testing.T) {
	in := ColorRGB{R: 1, G: 2, B: 3}
	tests := []struct {
		order ColorOrder
		want  ColorRGB
	}{
		{OrderRGB, ColorRGB{1, 2, 3}},
		{OrderRBG, ColorRGB{1, 3, 2}},
		{OrderGRB, ColorRGB{2, 1, 3}},
		{OrderBRG, ColorRGB{3, 1, 2}},
		{OrderGBR, ColorRGB{2, 3, 1}},
		{OrderBGR, ColorRGB{3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.Apply(in))
		})
	}
}

func TestColorOrderRoundTrip(t *testing.T) {
	step := 1
	if testing.Short() {
		step = 5
	}
	for o := OrderRGB; o <= OrderBGR; o++ {
		for r := 0; r < 256; r += step {
			for g := 0; g < 256; g += step {
				for b := 0; b < 256; b += step {
					c := ColorRGB{uint8(r), uint8(g), uint8(b)}
					if got := o.Invert(o.Apply(c)); got != c {
						t.Fatalf("%s: %v -> %v", o, c, got)
					}
				}
			}
		}
	}
}

func TestParseColorOrder(t *testing.T) {
	for _, name := range []string{"rgb", "rbg", "grb", "brg", "gbr", "bgr"} {
		o, ok := ParseColorOrder(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, o.String())
	}
	o, ok := ParseColorOrder("GRB")
	assert.False(t, ok)
	assert.Equal(t, OrderRGB, o)
	assert.Equal(t, "ColorOrder(9)", ColorOrder(9).String())
}
