// Package heart is the animation engine of the companion heart: timed
// effects, the heartbeat, color easing, particles and the per-frame
// composition of all of them.
//
// Nothing in here touches the screen or the clock. The host reads the clock
// once per tick and passes it to Advance and Compose, so a State is fully
// deterministic for a given RNG and sequence of times.
package heart

import (
	"image/color"
	"math/rand/v2"
	"time"
)

// State is the whole visual state of one heart widget.
type State struct {
	effects   *Effects
	particles *Particles
	pulse     Pulse
	color     ColorTransition
	text      string

	bounds   Rect
	visible  bool
	longForm bool

	pulseClock    stepper
	particleClock stepper
	colorClock    stepper

	rng *rand.Rand
}

// NewState creates a heart of the given widget size with the default color
// and pulse.
func NewState(width, height float64, rng *rand.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &State{
		effects:       NewEffects(rng),
		particles:     NewParticles(rng),
		pulse:         NewPulse(1.0),
		color:         NewColorTransition(defaultNRGBA),
		bounds:        Rect{W: width, H: height},
		visible:       true,
		pulseClock:    stepper{interval: PulseInterval},
		particleClock: stepper{interval: ParticleInterval},
		colorClock:    stepper{interval: ColorInterval},
		rng:           rng,
	}
}

// Advance runs every fixed-rate update that is due at now: pulsation,
// particles and (while one is in progress) the color ramp. It then retires
// expired effects.
func (s *State) Advance(now time.Time) {
	for n := s.pulseClock.due(now); n > 0; n-- {
		s.pulse.Step(PulseInterval)
	}

	for n := s.particleClock.due(now); n > 0; n-- {
		s.particles.Tick(ParticleInterval)
	}

	if s.color.Active() {
		for n := s.colorClock.due(now); n > 0 && s.color.Active(); n-- {
			s.color.Step()
		}
		if !s.color.Active() {
			s.colorClock.stop()
		}
	}

	s.effects.Expire(now)
}

// Trigger arms an effect. A glow also releases a burst of sparkles in the
// current base color.
func (s *State) Trigger(k Kind, now time.Time) bool {
	if !s.effects.Trigger(k, now) {
		return false
	}
	if k == Glow {
		s.particles.Emit(randInt(s.rng, 5, 10), s.bounds, s.color.Base, Sparkle)
	}
	return true
}

func (s *State) MajorActive(now time.Time) bool {
	return s.effects.MajorActive(now)
}

func (s *State) Effect(k Kind) Effect {
	return s.effects.Get(k)
}

func (s *State) SetHover(on bool) {
	s.effects.SetHover(on)
}

// SetPulsation sets the target heartbeat; the current frequency eases to it.
func (s *State) SetPulsation(hz float64) {
	s.pulse.SetTarget(hz)
}

func (s *State) Frequency() float64 {
	return s.pulse.Current
}

func (s *State) TargetFrequency() float64 {
	return s.pulse.Target
}

// SetColor starts a color transition toward hex, or toward DefaultColor
// when hex does not parse.
func (s *State) SetColor(hex string) {
	s.color.Set(ParseColorOrDefault(hex))
}

func (s *State) BaseColor() color.NRGBA {
	return s.color.Base
}

func (s *State) TargetColor() color.NRGBA {
	return s.color.Target
}

func (s *State) SetDisplayText(text string) {
	s.text = text
}

func (s *State) DisplayText() string {
	return s.text
}

// Emit adds particles. region is in widget coordinates.
func (s *State) Emit(count int, region Rect, c color.NRGBA, kind ParticleKind) int {
	return s.particles.Emit(count, region, c, kind)
}

func (s *State) Particles() []Particle {
	return s.particles.Live()
}

func (s *State) Bounds() Rect {
	return s.bounds
}

func (s *State) SetVisible(v bool) {
	s.visible = v
}

func (s *State) Visible() bool {
	return s.visible
}

// SetLongFormVisible records whether a long reply is on screen; it
// suppresses idle animations.
func (s *State) SetLongFormVisible(v bool) {
	s.longForm = v
}

func (s *State) LongFormVisible() bool {
	return s.longForm
}
