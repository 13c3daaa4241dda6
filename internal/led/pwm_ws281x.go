//go:build linux && cgo && ws281x

package led

/*
#cgo LDFLAGS: -lws2811
#include <stdlib.h>
#include <stdint.h>
#include <ws2811/ws2811.h>

static ws2811_channel_t *first_channel(ws2811_t *d) { return &d->channel[0]; }
*/
import "C"
import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/coreman2200/ambilight/internal/render"
)

var errPWMClosed = errors.New("pwm: closed")

// PWMDriver drives a strip through rpi_ws281x (PWM + DMA on the BCM283x).
// Colors arrive already in wire order, so the strip is declared RGB.
type PWMDriver struct {
	dev  *C.ws2811_t
	leds []C.ws2811_led_t
}

func NewPWM(props PWMProps, count int) (*PWMDriver, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	dev := (*C.ws2811_t)(C.calloc(1, C.size_t(C.sizeof_ws2811_t)))
	if dev == nil {
		return nil, errors.New("pwm: out of memory")
	}
	configure(dev, props, count)

	if st := C.ws2811_init(dev); st != C.WS2811_SUCCESS {
		C.free(unsafe.Pointer(dev))
		return nil, fmt.Errorf("ws2811_init gpio %d dma %d: status %d", props.GPIO, props.DMA, int(st))
	}
	return &PWMDriver{dev: dev, leds: ledView(dev, count)}, nil
}

// configure fills the device header and its only channel.
func configure(dev *C.ws2811_t, props PWMProps, count int) {
	dev.freq = C.WS2811_TARGET_FREQ
	dev.dmanum = C.int(props.DMA)

	ch := C.first_channel(dev)
	ch.gpionum = C.int(props.GPIO)
	ch.count = C.int(count)
	ch.strip_type = C.WS2811_STRIP_RGB
	ch.brightness = C.uint8_t(props.Brightness)
	if props.Invert {
		ch.invert = 1
	}
}

// ledView exposes the library-owned LED array of channel 0 as a Go slice.
func ledView(dev *C.ws2811_t, count int) []C.ws2811_led_t {
	return unsafe.Slice(C.first_channel(dev).leds, count)
}

func (p *PWMDriver) Write(colors []render.ColorRGB) error {
	if p.dev == nil {
		return errPWMClosed
	}
	if len(colors) != len(p.leds) {
		return fmt.Errorf("pwm: got %d colors for %d LEDs", len(colors), len(p.leds))
	}
	for i, c := range colors {
		p.leds[i] = C.ws2811_led_t(uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B))
	}
	if st := C.ws2811_render(p.dev); st != C.WS2811_SUCCESS {
		return fmt.Errorf("ws2811_render: status %d", int(st))
	}
	return nil
}

func (p *PWMDriver) Close() error {
	if p.dev == nil {
		return nil
	}
	C.ws2811_fini(p.dev)
	C.free(unsafe.Pointer(p.dev))
	p.dev, p.leds = nil, nil
	return nil
}
