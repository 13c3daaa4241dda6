// Package led delivers color sequences to LED hardware.
//
// Every output variant satisfies Transport. Variants form a closed set (Kind)
// selected once from the configuration's type string.
package led

import (
	"errors"
	"fmt"

	"github.com/coreman2200/ambilight/internal/render"
)

// Transport pushes one frame of colors to hardware. Write reports failures as
// errors and never panics; a failed frame may be retried with the next one.
type Transport interface {
	Write(colors []render.ColorRGB) error
	Close() error
}

// Kind selects a transport variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindAdalight     // "WS2812": Adalight framed serial
	KindGPIO         // "GPIO": NRZ bit stream on a GPIO pin
	KindSPI          // "SPI1": NRZ encoded over SPI
	KindUART         // "UART": raw RGB payload over a serial port
	KindPWM          // "PWM_bcm2835", "PWM": rpi_ws281x PWM/DMA
	KindPWMPigpio    // "PWM_pigpio": NRZ bit stream on a hardware PWM pin
	KindSim          // "SIM": console emulator
)

var ErrUnknownKind = errors.New("unknown output type")

var kindNames = map[string]Kind{
	"WS2812":      KindAdalight,
	"GPIO":        KindGPIO,
	"SPI1":        KindSPI,
	"UART":        KindUART,
	"PWM_bcm2835": KindPWM,
	"PWM":         KindPWM,
	"PWM_pigpio":  KindPWMPigpio,
	"SIM":         KindSim,
}

// ParseKind maps a configuration type string to its Kind.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindNames[s]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string {
	switch k {
	case KindAdalight:
		return "WS2812"
	case KindGPIO:
		return "GPIO"
	case KindSPI:
		return "SPI1"
	case KindUART:
		return "UART"
	case KindPWM:
		return "PWM_bcm2835"
	case KindPWMPigpio:
		return "PWM_pigpio"
	case KindSim:
		return "SIM"
	default:
		return "unknown"
	}
}

// Pack appends the colors to dst as consecutive R, G, B bytes.
func Pack(dst []byte, colors []render.ColorRGB) []byte {
	for _, c := range colors {
		dst = append(dst, c.R, c.G, c.B)
	}
	return dst
}
