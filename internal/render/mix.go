package render

// Mix blends a toward b by alpha (0..1) per channel, truncating the result.
func Mix(a, b ColorRGB, alpha float64) ColorRGB {
	if alpha <= 0 {
		return a
	}
	if alpha >= 1 {
		return b
	}
	return ColorRGB{
		R: lerp(a.R, b.R, alpha),
		G: lerp(a.G, b.G, alpha),
		B: lerp(a.B, b.B, alpha),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + t*float64(int(b)-int(a)))
}
