package led

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiostream"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"

	"github.com/coreman2200/ambilight/internal/render"
)

// SPIProps configures the SPI1 output.
type SPIProps struct {
	Device   string `yaml:"device"`
	SpeedHz  int    `yaml:"speedHz"`
	Channels int    `yaml:"channels"`
}

// StreamProps configures the GPIO and PWM_pigpio outputs.
type StreamProps struct {
	Pin     string `yaml:"pin"`
	SpeedHz int    `yaml:"speedHz"`
}

// pixelDev is the subset of nrzled.Dev used here.
type pixelDev interface {
	Write(pixels []byte) (int, error)
	Halt() error
}

// Strip drives a WS281x strip through a periph pixel device.
type Strip struct {
	name   string
	dev    pixelDev
	closer io.Closer
	count  int
	buf    []byte
}

func (s *Strip) Write(colors []render.ColorRGB) error {
	if len(colors) != s.count {
		return fmt.Errorf("%s: got %d colors for %d LEDs", s.name, len(colors), s.count)
	}
	s.buf = Pack(s.buf[:0], colors)
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

func (s *Strip) Close() error {
	err := s.dev.Halt()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Strip) String() string { return s.name }

// NewSPIStrip encodes count LEDs over an already opened SPI port.
func NewSPIStrip(p spi.Port, count int, freq physic.Frequency) (*Strip, error) {
	return newSPIStrip(p, count, 3, freq)
}

func newSPIStrip(p spi.Port, count, channels int, freq physic.Frequency) (*Strip, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if channels != 3 {
		return nil, fmt.Errorf("unsupported channel count %d", channels)
	}
	if freq <= 0 {
		freq = 2400 * physic.KiloHertz
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: count, Channels: channels, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled spi: %w", err)
	}
	return &Strip{name: d.String(), dev: d, count: count, buf: make([]byte, 0, 3*count)}, nil
}

func openSPI(props SPIProps, count int) (*Strip, error) {
	p, err := spireg.Open(props.Device)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", props.Device, err)
	}
	s, err := newSPIStrip(p, count, props.Channels, physic.Frequency(props.SpeedHz)*physic.Hertz)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	s.closer = p
	return s, nil
}

// NewStreamStrip bit-streams count LEDs on p.
func NewStreamStrip(p gpiostream.PinOut, count int, freq physic.Frequency) (*Strip, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freq <= 0 {
		freq = 800 * physic.KiloHertz
	}
	d, err := nrzled.NewStream(p, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled stream: %w", err)
	}
	return &Strip{name: d.String(), dev: d, count: count, buf: make([]byte, 0, 3*count)}, nil
}

// hardware PWM capable pins on the BCM283x header
var pwmPins = map[string]bool{"GPIO12": true, "GPIO13": true, "GPIO18": true, "GPIO19": true}

func openStream(props StreamProps, count int, needPWM bool) (*Strip, error) {
	if needPWM && !pwmPins[props.Pin] {
		return nil, fmt.Errorf("pin %q has no hardware PWM", props.Pin)
	}
	pin := gpioreg.ByName(props.Pin)
	if pin == nil {
		return nil, fmt.Errorf("no such pin %q", props.Pin)
	}
	out, ok := pin.(gpiostream.PinOut)
	if !ok {
		return nil, fmt.Errorf("pin %s cannot stream", pin)
	}
	return NewStreamStrip(out, count, physic.Frequency(props.SpeedHz)*physic.Hertz)
}
