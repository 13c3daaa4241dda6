// Package pattern generates synthetic capture frames for checking LED
// placement and channel wiring without a video source.
package pattern

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/ambilight/internal/frame"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	Rainbow    Kind = "rainbow"
	Split      Kind = "split"
)

// SweepBands is the number of columns the sweep visits in each view.
const SweepBands = 16

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case IndexSweep, RGBTest, Rainbow, Split:
		return k, nil
	}
	return None, fmt.Errorf("unknown pattern %q", s)
}

type Plan struct {
	Kind Kind
	Hold int // frames per step, at least 1
}

type Runner struct {
	plan  Plan
	step  int
	frame int
}

func NewRunner(plan Plan) *Runner {
	if plan.Hold < 1 {
		plan.Hold = 1
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step paints the current step into dst; returns false when complete.
// Both halves of dst receive the same picture unless the pattern is Split.
func (r *Runner) Step(dst *frame.RGB) bool {
	dst.Clear()
	half := dst.W / 2

	switch r.plan.Kind {
	case IndexSweep:
		if r.step >= SweepBands {
			return false
		}
		bw := max(half/SweepBands, 1)
		x0 := r.step * bw
		dst.FillRect(x0, 0, x0+bw, dst.H, 255, 255, 255)
		dst.FillRect(half+x0, 0, half+x0+bw, dst.H, 255, 255, 255)
	case RGBTest:
		c := primary(r.step)
		dst.FillRect(0, 0, dst.W, dst.H, c[0], c[1], c[2])
	case Rainbow:
		for x := 0; x < half; x++ {
			hue := (x*360/max(half, 1) + r.step*6) % 360
			cr, cg, cb := colorful.Hsv(float64(hue), 1, 1).Clamped().RGB255()
			dst.FillRect(x, 0, x+1, dst.H, cr, cg, cb)
			dst.FillRect(half+x, 0, half+x+1, dst.H, cr, cg, cb)
		}
	case Split:
		l, rt := primary(r.step), primary(r.step+1)
		dst.FillRect(0, 0, half, dst.H, l[0], l[1], l[2])
		dst.FillRect(half, 0, dst.W, dst.H, rt[0], rt[1], rt[2])
	default:
		return false
	}

	r.frame++
	if r.frame >= r.plan.Hold {
		r.frame = 0
		r.step++
	}
	return true
}

func primary(step int) [3]uint8 {
	var c [3]uint8
	c[step%3] = 255
	return c
}
