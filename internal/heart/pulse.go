package heart

import (
	"image/color"
	"math"
	"time"
)

const (
	MinPulseHz = 0.3
	MaxPulseHz = 8.0

	pulseAmplitude = 0.07
	pulseEaseRate  = 0.05
	pulseSnap      = 0.05

	ColorSteps = 20

	PulseInterval    = 30 * time.Millisecond
	ParticleInterval = 16 * time.Millisecond
	ColorInterval    = 40 * time.Millisecond

	// steps replayed at most per Advance; the rest is dropped after a stall
	maxCatchUp = 60
)

// ClampFrequency limits hz to the displayable range.
func ClampFrequency(hz float64) float64 {
	if math.IsNaN(hz) {
		return MinPulseHz
	}
	return math.Max(MinPulseHz, math.Min(hz, MaxPulseHz))
}

// Pulse is the continuous heartbeat: the current frequency eases toward the
// target and the phase angle advances with it.
type Pulse struct {
	Current float64
	Target  float64
	Angle   float64
}

func NewPulse(hz float64) Pulse {
	hz = ClampFrequency(hz)
	return Pulse{Current: hz, Target: hz}
}

func (p *Pulse) SetTarget(hz float64) {
	p.Target = ClampFrequency(hz)
}

// Step advances the pulse by one tick of length dt.
func (p *Pulse) Step(dt time.Duration) {
	if math.Abs(p.Current-p.Target) > pulseSnap {
		p.Current += (p.Target - p.Current) * pulseEaseRate
	} else {
		p.Current = p.Target
	}

	p.Angle += p.Current * 2 * math.Pi * dt.Seconds()
	p.Angle = math.Mod(p.Angle, 2*math.Pi)
}

func (p Pulse) Scale() float64 {
	return 1 + pulseAmplitude*math.Sin(p.Angle)
}

// ColorTransition eases Base toward Target over ColorSteps steps.
type ColorTransition struct {
	Base   color.NRGBA
	Target color.NRGBA
	step   int
	active bool
}

func NewColorTransition(c color.NRGBA) ColorTransition {
	return ColorTransition{Base: c, Target: c}
}

// Set restarts the ramp toward target from the current base.
func (t *ColorTransition) Set(target color.NRGBA) {
	t.Target = target
	t.step = 0
	t.active = true
}

func (t *ColorTransition) Active() bool {
	return t.active
}

// Step moves every channel step/ColorSteps of the remaining way; the last
// step lands exactly on Target and ends the transition.
func (t *ColorTransition) Step() {
	if !t.active {
		return
	}
	t.step++
	if t.step >= ColorSteps {
		t.Base = t.Target
		t.active = false
		return
	}
	f := float64(t.step) / ColorSteps
	t.Base = color.NRGBA{
		R: lerpChannel(t.Base.R, t.Target.R, f),
		G: lerpChannel(t.Base.G, t.Target.G, f),
		B: lerpChannel(t.Base.B, t.Target.B, f),
		A: 255,
	}
}

func lerpChannel(from, to uint8, f float64) uint8 {
	return uint8(float64(from) + (float64(to)-float64(from))*f)
}

// stepper converts wall-clock progress into whole fixed-interval ticks.
type stepper struct {
	interval time.Duration
	last     time.Time
	running  bool
}

func (s *stepper) start(now time.Time) {
	s.last = now
	s.running = true
}

func (s *stepper) stop() {
	s.running = false
}

// due returns the number of whole intervals elapsed since the last call.
func (s *stepper) due(now time.Time) int {
	if !s.running {
		s.start(now)
		return 0
	}
	if now.Before(s.last) {
		s.last = now
		return 0
	}
	n := int(now.Sub(s.last) / s.interval)
	if n > maxCatchUp {
		s.last = now
		return maxCatchUp
	}
	s.last = s.last.Add(time.Duration(n) * s.interval)
	return n
}
