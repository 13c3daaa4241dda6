package sequence

import (
	"sync"

	"github.com/coreman2200/ambilight/internal/render"
)

// PlayerState enumerates player states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Player advances a Schedule by frame time and yields the parameters for the
// current frame. Without a schedule it returns the base parameters unchanged.
type Player struct {
	mu    sync.Mutex
	state PlayerState
	sched *Schedule
	base  render.Params
	nowS  float64
}

func NewPlayer(s *Schedule, base render.Params) *Player {
	return &Player{state: Idle, sched: s, base: base}
}

func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nowS = 0
	p.state = Running
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running {
		p.state = Paused
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Paused {
		p.state = Running
	}
}

func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Idle
	p.nowS = 0
}

func (p *Player) Seek(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nowS = max(t, 0)
}

func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetBase replaces the parameters that unanimated values fall back to.
func (p *Player) SetBase(base render.Params) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = base
}

// Tick advances the clock by dt seconds while running and returns the
// parameters at the new position. A one-shot schedule stops at its end and
// holds the final values.
func (p *Player) Tick(dt float64) render.Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sched == nil {
		return p.base
	}
	if p.state == Running {
		p.nowS += dt
		if d := p.sched.Duration(); !p.sched.Loop && p.nowS >= d {
			p.nowS = d
			p.state = Idle
		}
	}
	return p.sched.At(p.nowS, p.base)
}
