package led

import "github.com/coreman2200/ambilight/internal/render"

const adalightHeaderLen = 6

// AdalightFramer frames colors for Adalight serial controllers:
//
//	'A' 'd' 'a' hi(N-1) lo(N-1) hi^lo^0x55 R G B ...
//
// The header is built the first time a frame of a given size is needed and
// reused until the LED count changes.
type AdalightFramer struct {
	buf []byte
}

// Frame returns the wire buffer for colors. It is reused by the next call.
func (f *AdalightFramer) Frame(colors []render.ColorRGB) []byte {
	size := adalightHeaderLen + 3*len(colors)
	if len(f.buf) != size {
		f.buf = make([]byte, adalightHeaderLen, size)
		n := len(colors) - 1
		f.buf[0], f.buf[1], f.buf[2] = 'A', 'd', 'a'
		f.buf[3] = byte(n >> 8)
		f.buf[4] = byte(n)
		f.buf[5] = f.buf[3] ^ f.buf[4] ^ 0x55
	}
	f.buf = Pack(f.buf[:adalightHeaderLen], colors)
	return f.buf
}

// Adalight is the serial Adalight transport.
type Adalight struct {
	framer AdalightFramer
	link   *Link
}

func NewAdalight(link *Link) *Adalight {
	return &Adalight{link: link}
}

func (a *Adalight) Write(colors []render.ColorRGB) error {
	if len(colors) == 0 {
		return nil
	}
	return a.link.Write(a.framer.Frame(colors))
}

func (a *Adalight) Close() error { return a.link.Close() }

// Link exposes the connection state for diagnostics.
func (a *Adalight) Link() *Link { return a.link }

// RawSerial writes the bare RGB payload to a serial link, for controllers
// that latch on line idle instead of a header.
type RawSerial struct {
	buf  []byte
	link *Link
}

func NewRawSerial(link *Link) *RawSerial {
	return &RawSerial{link: link}
}

func (u *RawSerial) Write(colors []render.ColorRGB) error {
	if len(colors) == 0 {
		return nil
	}
	u.buf = Pack(u.buf[:0], colors)
	return u.link.Write(u.buf)
}

func (u *RawSerial) Close() error { return u.link.Close() }

func (u *RawSerial) Link() *Link { return u.link }
