package device

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ambilight/internal/config"
	"github.com/coreman2200/ambilight/internal/frame"
	"github.com/coreman2200/ambilight/internal/layout"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/render"
)

type recorder struct {
	frames [][]render.ColorRGB
	err    error
	closed bool
}

func (r *recorder) Write(c []render.ColorRGB) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, append([]render.ColorRGB(nil), c...))
	return nil
}

func (r *recorder) Close() error { r.closed = true; return nil }

type opened struct {
	kind  led.Kind
	count int
	rec   *recorder
}

func fakeOpener(log *[]opened) Opener {
	return func(kind led.Kind, props led.Properties, opts led.Options) (led.Transport, error) {
		r := &recorder{}
		*log = append(*log, opened{kind: kind, count: opts.Count, rec: r})
		return r, nil
	}
}

func mustParse(t *testing.T, doc string) *config.Config {
	t.Helper()
	c, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return c
}

const twoOutputs = `
window: {width: 100, height: 100}
outputs:
  - type: WS2812
    properties: {colorOrder: grb}
    leds: [{x: 10, y: 10, r: 5}, {x: 90, y: 90, r: 5}]
  - type: SPI1
    leds: [{x: 50, y: 50, r: 10}]
`

// left half red, right half blue
func sideBySide(w, h int) *frame.RGB {
	img := frame.NewRGB(w, h)
	img.FillRect(0, 0, w/2, h, 255, 0, 0)
	img.FillRect(w/2, 0, w, h, 0, 0, 255)
	return img
}

func TestManagerUpdate(t *testing.T) {
	var opens []opened
	cfg := mustParse(t, twoOutputs)
	screen := layout.Screen{X: 40, Y: 20}
	m, err := NewManager(cfg, 0, screen, WithOpener(fakeOpener(&opens)), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	require.Len(t, opens, 1)
	assert.Equal(t, led.KindAdalight, opens[0].kind)
	assert.Equal(t, 2, opens[0].count)
	assert.Equal(t, render.OrderGRB, m.Order())
	assert.True(t, m.HasTransport())

	require.NoError(t, m.Update(sideBySide(40, 20), render.DefaultParams()))
	// red in GRB order
	want := []render.ColorRGB{{R: 0, G: 255, B: 0}, {R: 0, G: 255, B: 0}}
	assert.Equal(t, [][]render.ColorRGB{want}, opens[0].rec.frames)
	assert.Equal(t, want, m.Colors())

	p := render.DefaultParams()
	p.Crossfade = 1
	require.NoError(t, m.Update(sideBySide(40, 20), p))
	assert.Equal(t, []render.ColorRGB{{B: 255}, {B: 255}}, m.Colors())

	require.NoError(t, m.Close())
	assert.True(t, opens[0].rec.closed)
	assert.ErrorIs(t, m.Update(sideBySide(40, 20), p), ErrNoTransport)
}

func TestManagerColorsIsCopy(t *testing.T) {
	var opens []opened
	m, err := NewManager(mustParse(t, twoOutputs), 1, layout.Screen{X: 40, Y: 20},
		WithOpener(fakeOpener(&opens)), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, m.Update(sideBySide(40, 20), render.DefaultParams()))

	c := m.Colors()
	c[0] = render.ColorRGB{R: 1, G: 1, B: 1}
	assert.NotEqual(t, c, m.Colors())
}

func TestUnknownTypeHasNoTransport(t *testing.T) {
	var opens []opened
	cfg := mustParse(t, "window: {width: 10, height: 10}\noutputs: [{type: APA102, leds: [{x: 1, y: 1, r: 1}]}]")
	m, err := NewManager(cfg, 0, layout.Screen{X: 10, Y: 10}, WithOpener(fakeOpener(&opens)), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	assert.Empty(t, opens)
	assert.False(t, m.HasTransport())
	assert.Nil(t, m.Link())

	err = m.Update(frame.NewRGB(10, 10), render.DefaultParams())
	assert.ErrorIs(t, err, ErrNoTransport)
	assert.Equal(t, -1, Status(err))
	assert.Len(t, m.Colors(), 1, "colors are still computed")
	assert.NoError(t, m.Close())
}

func TestOpenFailureHasNoTransport(t *testing.T) {
	fail := func(led.Kind, led.Properties, led.Options) (led.Transport, error) {
		return nil, errors.New("no such device")
	}
	m, err := NewManager(mustParse(t, twoOutputs), 1, layout.Screen{X: 10, Y: 10}, WithOpener(fail), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	assert.Equal(t, led.KindSPI, m.Kind())
	assert.False(t, m.HasTransport())
}

func TestWriteErrorReported(t *testing.T) {
	var opens []opened
	m, err := NewManager(mustParse(t, twoOutputs), 0, layout.Screen{X: 10, Y: 10}, WithOpener(fakeOpener(&opens)), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	boom := errors.New("boom")
	opens[0].rec.err = boom

	err = m.Update(frame.NewRGB(10, 10), render.DefaultParams())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, -1, Status(err))
	assert.Equal(t, 0, Status(nil))
}

func TestColorOrderFallback(t *testing.T) {
	o, sub := colorOrderFallback("", false)
	assert.Equal(t, render.OrderRGB, o)
	assert.True(t, sub)

	o, sub = colorOrderFallback("GRB", true)
	assert.Equal(t, render.OrderRGB, o, "names are case sensitive")
	assert.True(t, sub)

	o, sub = colorOrderFallback("bgr", true)
	assert.Equal(t, render.OrderBGR, o)
	assert.False(t, sub)
}

func TestKindOverride(t *testing.T) {
	var opens []opened
	ms, err := NewManagers(mustParse(t, twoOutputs), layout.Screen{X: 10, Y: 10},
		WithOpener(fakeOpener(&opens)), WithKind(led.KindSim), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.Len(t, ms, 2)
	for i, m := range ms {
		assert.Equal(t, i, m.Index())
		assert.Equal(t, led.KindSim, m.Kind())
	}
	assert.Equal(t, 2, opens[0].count)
	assert.Equal(t, 1, opens[1].count)
	assert.NoError(t, CloseAll(ms))
}

func TestReconfigureOnSizeChange(t *testing.T) {
	var opens []opened
	m, err := NewManager(mustParse(t, twoOutputs), 1, layout.Screen{X: 10, Y: 10},
		WithOpener(fakeOpener(&opens)), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	before := m.Nodes()[0].Positions

	require.NoError(t, m.Update(sideBySide(80, 40), render.DefaultParams()))
	assert.Equal(t, layout.Screen{X: 80, Y: 40}, m.Screen())
	assert.NotEqual(t, before, m.Nodes()[0].Positions)
	for _, p := range m.Nodes()[0].Positions {
		assert.Less(t, p, 80*40)
	}
}

func TestNewManagerBadIndex(t *testing.T) {
	_, err := NewManager(mustParse(t, twoOutputs), 2, layout.Screen{X: 10, Y: 10})
	assert.Error(t, err)
	_, err = NewManager(nil, 0, layout.Screen{X: 10, Y: 10})
	assert.Error(t, err)
}
