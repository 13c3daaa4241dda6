package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/ambilight/internal/device"
	"github.com/coreman2200/ambilight/internal/led"
)

func TestForUpdate(t *testing.T) {
	tests := []struct {
		kind led.Kind
		err  error
		sev  Severity
		code string
	}{
		{led.KindAdalight, nil, Info, CodeLinkRecovered},
		{led.KindSim, fmt.Errorf("output 0: %w", device.ErrNoTransport), Err, CodeNoTransport},
		{led.KindAdalight, fmt.Errorf("output 0: %w", led.ErrBackoff), Warn, CodeLinkDown},
		{led.KindUART, errors.New("write /dev/serial0: i/o error"), Err, CodeLinkDown},
		{led.KindSPI, errors.New("spi: transfer failed"), Err, CodeWriteFailed},
	}
	for _, tt := range tests {
		d := ForUpdate(3, tt.kind, tt.err)
		assert.Equal(t, tt.sev, d.Severity, tt.code)
		assert.Equal(t, tt.code, d.Code)
		assert.Equal(t, 3, d.Output)
		assert.Equal(t, tt.kind.String(), d.Evidence["type"])
		if tt.err != nil {
			assert.Equal(t, tt.err.Error(), d.Detail)
		}
	}
}
