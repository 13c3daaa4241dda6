package render

import "fmt"

// ColorOrder is the channel transmission order expected by the LED hardware.
type ColorOrder uint8

const (
	OrderRGB ColorOrder = iota
	OrderRBG
	OrderGRB
	OrderBRG
	OrderGBR
	OrderBGR
)

var orderNames = [...]string{"rgb", "rbg", "grb", "brg", "gbr", "bgr"}

func (o ColorOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("ColorOrder(%d)", uint8(o))
}

// ParseColorOrder matches the lowercase configuration names exactly.
func ParseColorOrder(s string) (ColorOrder, bool) {
	for i, name := range orderNames {
		if s == name {
			return ColorOrder(i), true
		}
	}
	return OrderRGB, false
}

// Apply permutes c into transmission order.
func (o ColorOrder) Apply(c ColorRGB) ColorRGB {
	switch o {
	case OrderRBG:
		c.G, c.B = c.B, c.G
	case OrderGRB:
		c.R, c.G = c.G, c.R
	case OrderBRG:
		c.R, c.B = c.B, c.R
		c.G, c.B = c.B, c.G
	case OrderGBR:
		c.R, c.G = c.G, c.R
		c.G, c.B = c.B, c.G
	case OrderBGR:
		c.R, c.B = c.B, c.R
	}
	return c
}

// Invert undoes Apply. BRG and GBR are each other's inverse; the rest are
// single swaps.
func (o ColorOrder) Invert(c ColorRGB) ColorRGB {
	switch o {
	case OrderBRG:
		return OrderGBR.Apply(c)
	case OrderGBR:
		return OrderBRG.Apply(c)
	default:
		return o.Apply(c)
	}
}
