package render

import "math"

// BT.601 luma weights.
const (
	lumaR = 0.2989
	lumaG = 0.5870
	lumaB = 0.1140
)

// Desaturate mixes c toward its luma by amount (0 is identity, 1 is gray).
func Desaturate(c ColorRGB, amount float64) ColorRGB {
	if amount <= 0 {
		return c
	}
	gray := lumaR*float64(c.R) + lumaG*float64(c.G) + lumaB*float64(c.B)
	inv := 1 - amount
	return ColorRGB{
		R: clamp255(gray*amount + float64(c.R)*inv),
		G: clamp255(gray*amount + float64(c.G)*inv),
		B: clamp255(gray*amount + float64(c.B)*inv),
	}
}

// GammaLUT maps v to 255*(v/255)^(1/gamma), truncated.
type GammaLUT struct {
	gamma float64
	table [256]uint8
}

// NewGammaLUT builds the table for gamma. Non-positive gamma is treated as 1.
func NewGammaLUT(gamma float64) *GammaLUT {
	l := &GammaLUT{}
	l.reset(gamma)
	return l
}

func (l *GammaLUT) reset(gamma float64) {
	if !(gamma > 0) {
		gamma = 1
	}
	l.gamma = gamma
	for v := range l.table {
		if gamma == 1 {
			l.table[v] = uint8(v)
			continue
		}
		l.table[v] = clamp255(255 * math.Pow(float64(v)/255, 1/gamma))
	}
}

// Gamma returns the exponent the table was built for.
func (l *GammaLUT) Gamma() float64 { return l.gamma }

// Apply corrects each channel independently.
func (l *GammaLUT) Apply(c ColorRGB) ColorRGB {
	return ColorRGB{R: l.table[c.R], G: l.table[c.G], B: l.table[c.B]}
}

// Scale multiplies each channel by brightness, saturating at 255.
func Scale(c ColorRGB, brightness float64) ColorRGB {
	if brightness == 1 {
		return c
	}
	return ColorRGB{
		R: clamp255(float64(c.R) * brightness),
		G: clamp255(float64(c.G) * brightness),
		B: clamp255(float64(c.B) * brightness),
	}
}

func clamp255(x float64) uint8 {
	if !(x > 0) {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}
