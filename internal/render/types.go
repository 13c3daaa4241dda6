package render

// ColorRGB is one LED value.
type ColorRGB struct{ R, G, B uint8 }

// Params are the per-frame correction scalars.
type Params struct {
	Brightness   float64 // >= 0, values above 1 amplify
	Desaturation float64 // 0..1
	Gamma        float64 // > 0
	Crossfade    float64 // 0 selects the left view, 1 the right view
}

// DefaultParams is the identity transform on the left view.
func DefaultParams() Params {
	return Params{Brightness: 1, Desaturation: 0, Gamma: 1, Crossfade: 0}
}

// Sanitize clamps every field into its domain. A non-positive gamma becomes 1.
func (p Params) Sanitize() Params {
	if p.Brightness < 0 {
		p.Brightness = 0
	}
	p.Desaturation = clamp01(p.Desaturation)
	p.Crossfade = clamp01(p.Crossfade)
	if !(p.Gamma > 0) {
		p.Gamma = 1
	}
	return p
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
