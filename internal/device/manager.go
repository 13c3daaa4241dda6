// Package device binds one configured output to its geometry, color pipeline
// and transport.
package device

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ambilight/internal/config"
	"github.com/coreman2200/ambilight/internal/frame"
	"github.com/coreman2200/ambilight/internal/layout"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/render"
)

// ErrNoTransport is returned by Update when the output could not be opened.
var ErrNoTransport = errors.New("output has no transport")

// Opener builds a transport; led.Open in production.
type Opener func(kind led.Kind, props led.Properties, opts led.Options) (led.Transport, error)

type Option func(*Manager)

func WithLogger(lg zerolog.Logger) Option { return func(m *Manager) { m.log = lg } }

func WithOpener(open Opener) Option { return func(m *Manager) { m.open = open } }

func WithBackoff(b led.Backoff) Option { return func(m *Manager) { m.backoff = b } }

// WithKind replaces the configured output type, e.g. to run every output on
// the simulator.
func WithKind(k led.Kind) Option { return func(m *Manager) { m.override = k } }

// Manager owns one output. It is not safe for concurrent use.
type Manager struct {
	index  int
	output config.Output
	kind   led.Kind
	order  render.ColorOrder
	screen layout.Screen
	confW  int
	confH  int
	nodes  []layout.LedNode
	pipe   *render.Pipeline
	out    led.Transport
	colors []render.ColorRGB

	log      zerolog.Logger
	open     Opener
	backoff  led.Backoff
	override led.Kind
}

// NewManager sets up output index of cfg for captures of size screen. A bad
// output type or a transport that fails to open is logged and leaves the
// manager without a transport; only an invalid index is an error.
func NewManager(cfg *config.Config, index int, screen layout.Screen, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if index < 0 || index >= len(cfg.Outputs) {
		return nil, fmt.Errorf("output %d out of range (%d outputs)", index, len(cfg.Outputs))
	}
	m := &Manager{
		index:   index,
		output:  cfg.Outputs[index],
		screen:  screen,
		confW:   cfg.Window.Width,
		confH:   cfg.Window.Height,
		log:     log.Logger,
		open:    led.Open,
		backoff: led.DefaultBackoff(),
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With().Int("output", index).Logger()

	m.log.Info().
		Str("type", m.output.Type).
		Int("leds", len(m.output.Leds)).
		Interface("properties", m.output.PropertiesMap()).
		Msg("output")

	raw, present := m.output.ColorOrder()
	order, substituted := colorOrderFallback(raw, present)
	if substituted {
		m.log.Warn().Str("colorOrder", raw).Bool("set", present).Msg("color order missing or invalid, using rgb")
	}
	m.order = order
	m.nodes = layout.Build(m.output.Points(), m.confW, m.confH, screen)
	m.pipe = render.NewPipeline(screen, order)

	kind, err := led.ParseKind(m.output.Type)
	if m.override != led.KindUnknown {
		kind, err = m.override, nil
	}
	if err != nil {
		m.log.Error().Err(err).Msg("no transport")
		return m, nil
	}
	m.kind = kind

	out, err := m.open(kind, &m.output, led.Options{Count: len(m.nodes), Backoff: m.backoff, Log: m.log})
	if err != nil {
		m.log.Error().Err(err).Str("kind", kind.String()).Msg("transport open failed")
		return m, nil
	}
	m.out = out
	return m, nil
}

// NewManagers builds one manager per configured output.
func NewManagers(cfg *config.Config, screen layout.Screen, opts ...Option) ([]*Manager, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	ms := make([]*Manager, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		m, err := NewManager(cfg, i, screen, opts...)
		if err != nil {
			CloseAll(ms)
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// CloseAll closes every manager and returns the first error.
func CloseAll(ms []*Manager) error {
	var first error
	for _, m := range ms {
		if err := m.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// colorOrderFallback resolves the colorOrder property. The second result
// reports whether RGB was substituted for a missing or unknown value.
func colorOrderFallback(raw string, present bool) (render.ColorOrder, bool) {
	if !present {
		return render.OrderRGB, true
	}
	o, ok := render.ParseColorOrder(raw)
	if !ok {
		return render.OrderRGB, true
	}
	return o, false
}

// Update computes the colors for img and writes them to the transport.
// A capture whose size differs from the configured screen reconfigures the
// geometry first.
func (m *Manager) Update(img frame.Image, p render.Params) error {
	if s := (layout.Screen{X: img.Width(), Y: img.Height()}); s != m.screen {
		m.Reconfigure(s)
	}
	colors := m.pipe.Compute(img, m.nodes, p)
	m.colors = append(m.colors[:0], colors...)
	if m.out == nil {
		return ErrNoTransport
	}
	if err := m.out.Write(colors); err != nil {
		return fmt.Errorf("output %d: %w", m.index, err)
	}
	return nil
}

// Reconfigure recomputes the sampling geometry for a new capture size.
func (m *Manager) Reconfigure(screen layout.Screen) {
	m.log.Info().Int("x", screen.X).Int("y", screen.Y).Msg("capture size changed")
	m.screen = screen
	m.nodes = layout.Build(m.output.Points(), m.confW, m.confH, screen)
	m.pipe.Screen = screen
}

// Colors returns a copy of the last computed colors.
func (m *Manager) Colors() []render.ColorRGB {
	return append([]render.ColorRGB(nil), m.colors...)
}

func (m *Manager) Nodes() []layout.LedNode { return m.nodes }

func (m *Manager) Index() int { return m.index }

func (m *Manager) Kind() led.Kind { return m.kind }

func (m *Manager) Order() render.ColorOrder { return m.order }

func (m *Manager) Screen() layout.Screen { return m.screen }

func (m *Manager) HasTransport() bool { return m.out != nil }

// Link returns the serial link of Adalight and UART outputs, nil otherwise.
func (m *Manager) Link() *led.Link {
	if l, ok := m.out.(interface{ Link() *led.Link }); ok {
		return l.Link()
	}
	return nil
}

func (m *Manager) Close() error {
	if m.out == nil {
		return nil
	}
	err := m.out.Close()
	m.out = nil
	return err
}

// Status maps an Update result to the wire status code: 0 ok, -1 failure.
func Status(err error) int {
	if err != nil {
		return -1
	}
	return 0
}
