//go:build !(linux && cgo && ws281x)

package led

import (
	"errors"

	"github.com/coreman2200/ambilight/internal/render"
)

var errNoPWM = errors.New("pwm driver not built in (needs linux, cgo and -tags ws281x)")

type PWMDriver struct{}

func NewPWM(props PWMProps, count int) (*PWMDriver, error) {
	return nil, errNoPWM
}

func (p *PWMDriver) Write(colors []render.ColorRGB) error { return errNoPWM }
func (p *PWMDriver) Close() error                        { return nil }
