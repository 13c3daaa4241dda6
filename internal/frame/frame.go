// Package frame holds source images handed to the color pipeline.
//
// A frame is owned by its producer. Consumers read it for the duration of one
// pipeline pass and must not modify or retain it.
package frame

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Image is a read-only pixel buffer addressed by flat index y*Width()+x.
type Image interface {
	Width() int
	Height() int
	RGBAt(i int) (r, g, b uint8)
}

// RGB is a packed 8-bit RGB image, 3 bytes per pixel, row-major.
type RGB struct {
	W, H int
	Pix  []uint8
}

// NewRGB returns a black w x h image.
func NewRGB(w, h int) *RGB {
	return &RGB{W: w, H: h, Pix: make([]uint8, w*h*3)}
}

func (m *RGB) Width() int  { return m.W }
func (m *RGB) Height() int { return m.H }

// RGBAt reads pixel i. Indices past the end of Pix read as black, so a
// buffer shorter than W*H*3 never panics a sampling pass.
func (m *RGB) RGBAt(i int) (r, g, b uint8) {
	if i < 0 || i*3+3 > len(m.Pix) {
		return 0, 0, 0
	}
	p := m.Pix[i*3 : i*3+3 : i*3+3]
	return p[0], p[1], p[2]
}

// Set writes one pixel. Out of range coordinates are ignored.
func (m *RGB) Set(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	i := (y*m.W + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// FillRect paints the rectangle [x0,x1) x [y0,y1), clipped to the image.
func (m *RGB) FillRect(x0, y0, x1, y1 int, r, g, b uint8) {
	for y := max(y0, 0); y < min(y1, m.H); y++ {
		for x := max(x0, 0); x < min(x1, m.W); x++ {
			i := (y*m.W + x) * 3
			m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
		}
	}
}

// Clear paints the whole image black.
func (m *RGB) Clear() {
	clear(m.Pix)
}

// FromImage copies img into a packed RGB buffer. Alpha is dropped.
func FromImage(img image.Image) *RGB {
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := NewRGB(w, h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			o := (y*w + x) * 3
			out.Pix[o], out.Pix[o+1], out.Pix[o+2] = row[x*4], row[x*4+1], row[x*4+2]
		}
	}
	return out
}

// SideBySide scales left and right into the two half-width views of a
// w x h frame.
func SideBySide(left, right image.Image, w, h int) *RGB {
	half := w / 2
	dst := imaging.New(w, h, color.Black)
	if left != nil {
		dst = imaging.Paste(dst, imaging.Resize(left, half, h, imaging.Lanczos), image.Pt(0, 0))
	}
	if right != nil {
		dst = imaging.Paste(dst, imaging.Resize(right, half, h, imaging.Lanczos), image.Pt(half, 0))
	}
	return FromImage(dst)
}

// Load opens a still image and lays it out in both views of a w x h frame.
func Load(path string, w, h int) (*RGB, error) {
	return LoadPair(path, path, w, h)
}

// LoadPair opens one still image per view.
func LoadPair(leftPath, rightPath string, w, h int) (*RGB, error) {
	if w < 2 || h < 1 {
		return nil, fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	left, err := imaging.Open(leftPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", leftPath, err)
	}
	right := left
	if rightPath != leftPath {
		if right, err = imaging.Open(rightPath); err != nil {
			return nil, fmt.Errorf("open %s: %w", rightPath, err)
		}
	}
	return SideBySide(left, right, w, h), nil
}
