package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ambilight/internal/layout"
)

const yamlDoc = `
window: {width: 1000, height: 500}
outputs:
  - type: WS2812
    properties: {colorOrder: grb, port: /dev/ttyUSB0, baudrate: 115200}
    leds:
      - {x: 10, y: 20, r: 15}
      - {x: 990, y: 20, r: 15}
  - type: SIM
    leds: [{x: 0, y: 0, r: 0}]
`

// tab indented, as written by some tools
const jsonDoc = "{\n\t\"window\": {\"width\": 1000, \"height\": 500},\n\t\"outputs\": [{\n\t\t\"type\": \"SPI1\",\n\t\t\"properties\": {\"colorOrder\": \"bgr\", \"speedHz\": 2400000},\n\t\t\"leds\": [{\"x\": 1, \"y\": 2, \"r\": 3}]\n\t}]\n}"

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, Window{Width: 1000, Height: 500}, c.Window)
	require.Len(t, c.Outputs, 2)

	o := c.Outputs[0]
	assert.Equal(t, "WS2812", o.Type)
	assert.Equal(t, []layout.Point{{X: 10, Y: 20, R: 15}, {X: 990, Y: 20, R: 15}}, o.Points())

	order, ok := o.ColorOrder()
	assert.True(t, ok)
	assert.Equal(t, "grb", order)

	var sp struct {
		Port     string `yaml:"port"`
		BaudRate int    `yaml:"baudrate"`
	}
	require.NoError(t, o.Decode(&sp))
	assert.Equal(t, "/dev/ttyUSB0", sp.Port)
	assert.Equal(t, 115200, sp.BaudRate)
	assert.Equal(t, "grb", o.PropertiesMap()["colorOrder"])
}

func TestMissingProperties(t *testing.T) {
	c, err := Parse([]byte(yamlDoc))
	require.NoError(t, err)
	o := c.Outputs[1]

	_, ok := o.ColorOrder()
	assert.False(t, ok)

	sp := struct {
		Port string `yaml:"port"`
	}{Port: "default"}
	require.NoError(t, o.Decode(&sp))
	assert.Equal(t, "default", sp.Port)
	assert.Empty(t, o.PropertiesMap())
}

func TestParseJSON(t *testing.T) {
	c, err := Parse([]byte(jsonDoc))
	require.NoError(t, err)
	assert.Equal(t, 1000, c.Window.Width)
	require.Len(t, c.Outputs, 1)
	assert.Equal(t, []layout.Point{{X: 1, Y: 2, R: 3}}, c.Outputs[0].Points())

	var p struct {
		SpeedHz int `yaml:"speedHz"`
	}
	require.NoError(t, c.Outputs[0].Decode(&p))
	assert.Equal(t, 2400000, p.SpeedHz)

	order, ok := c.Outputs[0].ColorOrder()
	assert.True(t, ok)
	assert.Equal(t, "bgr", order)
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"no window":       "outputs: []",
		"zero height":     "window: {width: 10, height: 0}",
		"negative led":    "window: {width: 10, height: 10}\noutputs: [{type: SIM, leds: [{x: -1, y: 0, r: 1}]}]",
		"negative radius": "window: {width: 10, height: 10}\noutputs: [{type: SIM, leds: [{x: 1, y: 0, r: -1}]}]",
	}
	for name, doc := range tests {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}

	_, err := Parse([]byte("window: {width: 10, height: 10}\noutputs: [{type: NOPE}]"))
	assert.NoError(t, err, "unknown types are not a structural error")
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(src, []byte(jsonDoc), 0644))

	c, err := Load(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "out.yaml")
	require.NoError(t, Save(dst, c))
	back, err := Load(dst)
	require.NoError(t, err)
	assert.Equal(t, c.Window, back.Window)
	assert.Equal(t, c.Outputs[0].Points(), back.Outputs[0].Points())
	order, _ := back.Outputs[0].ColorOrder()
	assert.Equal(t, "bgr", order)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
