package led

import (
	"periph.io/x/devices/v3/screen1d"
)

// NewSim prints frames to the terminal as a row of colored blocks.
func NewSim(count int) *Strip {
	return &Strip{
		name:  "screen1d",
		dev:   screen1d.New(&screen1d.Opts{X: count}),
		count: count,
		buf:   make([]byte, 0, 3*count),
	}
}
