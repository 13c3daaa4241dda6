package render

import (
	"github.com/coreman2200/ambilight/internal/frame"
	"github.com/coreman2200/ambilight/internal/layout"
)

// Views are sampled only while the crossfade leaves them above 1% weight.
const crossfadeThreshold = 0.99

// Average returns the unweighted mean color of img at positions+offset.
// Positions outside img are skipped; an empty set averages to black.
func Average(img frame.Image, positions []int, offset int) ColorRGB {
	n := img.Width() * img.Height()
	var sr, sg, sb, count uint32
	for _, p := range positions {
		i := p + offset
		if i < 0 || i >= n {
			continue
		}
		r, g, b := img.RGBAt(i)
		sr += uint32(r)
		sg += uint32(g)
		sb += uint32(b)
		count++
	}
	if count == 0 {
		return ColorRGB{}
	}
	return ColorRGB{R: uint8(sr / count), G: uint8(sg / count), B: uint8(sb / count)}
}

// Pipeline turns a source frame into one corrected color per node. It keeps
// its output buffer and gamma table between frames; the slice returned by
// Compute is overwritten by the next call.
type Pipeline struct {
	Screen layout.Screen
	Order  ColorOrder

	gamma *GammaLUT
	out   []ColorRGB
}

func NewPipeline(screen layout.Screen, order ColorOrder) *Pipeline {
	return &Pipeline{Screen: screen, Order: order, gamma: NewGammaLUT(1)}
}

// Compute runs sampling, crossfade, desaturation, gamma, brightness and
// channel reorder for every node, in node order.
func (p *Pipeline) Compute(img frame.Image, nodes []layout.LedNode, params Params) []ColorRGB {
	params = params.Sanitize()
	if p.gamma.Gamma() != params.Gamma {
		p.gamma.reset(params.Gamma)
	}
	if cap(p.out) < len(nodes) {
		p.out = make([]ColorRGB, len(nodes))
	}
	p.out = p.out[:len(nodes)]

	fade := params.Crossfade
	sampleL := fade < crossfadeThreshold
	sampleR := fade > 1-crossfadeThreshold
	half := p.Screen.HalfX()

	for i := range nodes {
		var left, right, c ColorRGB
		if sampleL {
			left = Average(img, nodes[i].Positions, 0)
		}
		if sampleR {
			right = Average(img, nodes[i].Positions, half)
		}
		switch {
		case sampleL && sampleR:
			c = Mix(left, right, fade)
		case sampleL:
			c = left
		default:
			c = right
		}
		c = Desaturate(c, params.Desaturation)
		c = p.gamma.Apply(c)
		c = Scale(c, params.Brightness)
		p.out[i] = p.Order.Apply(c)
	}
	return p.out
}

// ComputeFrame is a one-shot Compute returning a freshly allocated slice.
func ComputeFrame(img frame.Image, nodes []layout.LedNode, screen layout.Screen, params Params, order ColorOrder) []ColorRGB {
	out := NewPipeline(screen, order).Compute(img, nodes, params)
	return append([]ColorRGB(nil), out...)
}
