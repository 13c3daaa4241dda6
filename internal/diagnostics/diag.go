package diagnostics

import (
	"errors"
	"time"

	"github.com/coreman2200/ambilight/internal/device"
	"github.com/coreman2200/ambilight/internal/led"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

const (
	CodeNoTransport   = "no_transport"
	CodeLinkDown      = "link_down"
	CodeLinkRecovered = "link_recovered"
	CodeWriteFailed   = "write_failed"
)

type Diagnostic struct {
	Time           time.Time      `json:"time"`
	Output         int            `json:"output"`
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// ForUpdate describes the outcome of an output update after a state change.
// A nil err reports recovery.
func ForUpdate(output int, kind led.Kind, err error) Diagnostic {
	d := Diagnostic{
		Time:     time.Now(),
		Output:   output,
		Evidence: map[string]any{"type": kind.String()},
	}
	switch {
	case err == nil:
		d.Severity, d.Code, d.Summary = Info, CodeLinkRecovered, "output is writing frames again"
	case errors.Is(err, device.ErrNoTransport):
		d.Severity, d.Code, d.Summary = Err, CodeNoTransport, "output has no transport"
		d.LikelyCauses = []string{"unknown output type", "device could not be opened at startup"}
		d.SuggestedFixes = []string{"check the type and properties in the config", "restart after connecting the device"}
	case errors.Is(err, led.ErrBackoff):
		d.Severity, d.Code, d.Summary = Warn, CodeLinkDown, "serial link down, waiting to reopen"
	case kind == led.KindAdalight || kind == led.KindUART:
		d.Severity, d.Code, d.Summary = Err, CodeLinkDown, "serial link down"
		d.LikelyCauses = []string{"controller unplugged", "wrong port or baud rate"}
		d.SuggestedFixes = []string{"reconnect the controller", "check port and baudrate properties"}
	default:
		d.Severity, d.Code, d.Summary = Err, CodeWriteFailed, "frame write failed"
	}
	if err != nil {
		d.Detail = err.Error()
	}
	return d
}
