package led

import (
	"go.bug.st/serial"
)

// SerialProps configures the WS2812 (Adalight) and UART outputs.
type SerialProps struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baudrate"`
}

// SerialOpener opens name at baud, 8N1.
func SerialOpener(name string, baud int) PortOpener {
	return func() (Port, error) {
		p, err := serial.Open(name, &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
