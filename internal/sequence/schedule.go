package sequence

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ambilight/internal/render"
)

// Schedule animates the color parameters over time. A parameter without keys
// keeps its base value.
type Schedule struct {
	Loop         bool     `yaml:"loop,omitempty"`
	Brightness   Envelope `yaml:"brightness,omitempty"`
	Desaturation Envelope `yaml:"desaturation,omitempty"`
	Gamma        Envelope `yaml:"gamma,omitempty"`
	Crossfade    Envelope `yaml:"crossfade,omitempty"`
}

func LoadSchedule(path string) (*Schedule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Schedule
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Duration is the time of the latest key over all envelopes.
func (s *Schedule) Duration() float64 {
	return math.Max(math.Max(s.Brightness.End(), s.Desaturation.End()),
		math.Max(s.Gamma.End(), s.Crossfade.End()))
}

// At returns base with every animated parameter replaced by its value at t.
func (s *Schedule) At(t float64, base render.Params) render.Params {
	if d := s.Duration(); s.Loop && d > 0 {
		t = math.Mod(t, d)
		if t < 0 {
			t += d
		}
	}
	p := base
	if !s.Brightness.Empty() {
		p.Brightness = s.Brightness.Eval(t)
	}
	if !s.Desaturation.Empty() {
		p.Desaturation = s.Desaturation.Eval(t)
	}
	if !s.Gamma.Empty() {
		p.Gamma = s.Gamma.Eval(t)
	}
	if !s.Crossfade.Empty() {
		p.Crossfade = s.Crossfade.Eval(t)
	}
	return p
}
