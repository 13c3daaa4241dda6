package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ambilight/internal/layout"
)

// ErrInvalid marks structural configuration errors.
var ErrInvalid = errors.New("invalid config")

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Led struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	R int `yaml:"r"`
}

// Output is one LED channel. Properties are transport specific and decoded
// on demand by the transport that understands them.
type Output struct {
	Type       string    `yaml:"type"`
	Properties yaml.Node `yaml:"properties,omitempty"`
	Leds       []Led     `yaml:"leds"`
}

type Config struct {
	Window  Window   `yaml:"window"`
	Outputs []Output `yaml:"outputs"`
}

// Load reads a YAML or JSON config file and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML or JSON document.
func Parse(b []byte) (*Config, error) {
	if json.Valid(b) {
		// JSON may carry tab indentation that YAML rejects.
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, err
		}
		out, err := yaml.Marshal(integral(v))
		if err != nil {
			return nil, err
		}
		b = out
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate rejects configs the geometry cannot work with. Output types are
// not checked here; an unknown type only disables that output.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	for i, o := range c.Outputs {
		for j, l := range o.Leds {
			if l.X < 0 || l.Y < 0 || l.R < 0 {
				return fmt.Errorf("%w: output %d led %d: negative coordinate (%d,%d,%d)", ErrInvalid, i, j, l.X, l.Y, l.R)
			}
		}
	}
	return nil
}

// Decode unmarshals the properties block into v. A missing block leaves v
// untouched.
func (o *Output) Decode(v any) error {
	if o.Properties.Kind == 0 {
		return nil
	}
	return o.Properties.Decode(v)
}

// ColorOrder returns the raw colorOrder property and whether it was set.
func (o *Output) ColorOrder() (string, bool) {
	var p struct {
		ColorOrder *string `yaml:"colorOrder"`
	}
	if err := o.Decode(&p); err != nil || p.ColorOrder == nil {
		return "", false
	}
	return *p.ColorOrder, true
}

// PropertiesMap returns the properties block for logging.
func (o *Output) PropertiesMap() map[string]any {
	m := map[string]any{}
	if err := o.Decode(&m); err != nil {
		return nil
	}
	return m
}

func (o *Output) Points() []layout.Point {
	pts := make([]layout.Point, len(o.Leds))
	for i, l := range o.Leds {
		pts[i] = layout.Point{X: l.X, Y: l.Y, R: l.R}
	}
	return pts
}

// integral turns whole JSON numbers back into integers so they decode into
// int fields.
func integral(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = integral(e)
		}
	case []any:
		for i, e := range t {
			t[i] = integral(e)
		}
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
	}
	return v
}
