package device

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ambilight/internal/frame"
	"github.com/coreman2200/ambilight/internal/layout"
	"github.com/coreman2200/ambilight/internal/led"
	"github.com/coreman2200/ambilight/internal/render"
)

type mockTransport struct {
	mock.Mock
}

func (_m *mockTransport) Write(colors []render.ColorRGB) error {
	return _m.Called(colors).Error(0)
}

func (_m *mockTransport) Close() error {
	return _m.Called().Error(0)
}

func TestTransportSeesEveryFrame(t *testing.T) {
	tr := &mockTransport{}
	open := func(led.Kind, led.Properties, led.Options) (led.Transport, error) { return tr, nil }
	m, err := NewManager(mustParse(t, twoOutputs), 1, layout.Screen{X: 10, Y: 10}, WithOpener(open), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	fault := errors.New("link down")
	tr.On(`Write`, []render.ColorRGB{{}}).Return(nil).Once()
	tr.On(`Write`, mock.Anything).Return(fault).Once()
	tr.On(`Close`).Return(nil).Once()

	img := frame.NewRGB(10, 10)
	assert.NoError(t, m.Update(img, render.DefaultParams()))
	err = m.Update(img, render.DefaultParams())
	assert.ErrorIs(t, err, fault)
	assert.Equal(t, -1, Status(err))
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close(), "second close is a no-op")

	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, `Write`, 2)
}
