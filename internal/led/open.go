package led

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/host/v3"
)

// Properties decodes the transport-specific configuration block.
type Properties interface {
	Decode(v any) error
}

// PWMProps configures the PWM_bcm2835 output.
type PWMProps struct {
	GPIO       int  `yaml:"gpio"`
	DMA        int  `yaml:"dma"`
	Brightness int  `yaml:"brightness"`
	Invert     bool `yaml:"invert"`
}

// Options carries what Open needs beyond the properties block.
type Options struct {
	Count   int
	Backoff Backoff
	Log     zerolog.Logger
}

// Open builds the transport for kind. Properties missing from props take the
// variant's defaults.
func Open(kind Kind, props Properties, opts Options) (Transport, error) {
	switch kind {
	case KindAdalight, KindUART:
		sp := SerialProps{Port: "/dev/ttyACM0", BaudRate: 115200}
		if kind == KindUART {
			sp = SerialProps{Port: "/dev/serial0", BaudRate: 2000000}
		}
		if err := decode(props, &sp); err != nil {
			return nil, err
		}
		link := NewLink(sp.Port, SerialOpener(sp.Port, sp.BaudRate),
			WithBackoff(opts.Backoff), WithLinkLogger(opts.Log))
		opts.Log.Info().Str("port", sp.Port).Int("baudrate", sp.BaudRate).Msg("serial output")
		if kind == KindUART {
			return NewRawSerial(link), nil
		}
		return NewAdalight(link), nil

	case KindSPI:
		p := SPIProps{SpeedHz: 2400000, Channels: 3}
		if err := decode(props, &p); err != nil {
			return nil, err
		}
		if err := initHost(); err != nil {
			return nil, err
		}
		return openSPI(p, opts.Count)

	case KindGPIO, KindPWMPigpio:
		p := StreamProps{Pin: "GPIO10", SpeedHz: 800000}
		if kind == KindPWMPigpio {
			p.Pin = "GPIO18"
		}
		if err := decode(props, &p); err != nil {
			return nil, err
		}
		if err := initHost(); err != nil {
			return nil, err
		}
		return openStream(p, opts.Count, kind == KindPWMPigpio)

	case KindPWM:
		p := PWMProps{GPIO: 18, DMA: 10, Brightness: 255}
		if err := decode(props, &p); err != nil {
			return nil, err
		}
		d, err := NewPWM(p, opts.Count)
		if err != nil {
			return nil, err
		}
		return d, nil

	case KindSim:
		return NewSim(opts.Count), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
}

func decode(props Properties, v any) error {
	if props == nil {
		return nil
	}
	if err := props.Decode(v); err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}
	return nil
}

func initHost() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	return nil
}
