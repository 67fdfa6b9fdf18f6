package heart

import (
	"math"
	"math/rand/v2"
	"time"
)

// Kind identifies one of the fixed animation effects.
type Kind int

const (
	Pulsation Kind = iota
	Shiver
	Pop
	Spin
	Glow
	Jiggle
	Press
	Hover
	kindCount
)

var kindNames = [kindCount]string{"pulsation", "shiver", "pop", "spin", "glow", "jiggle", "press", "hover"}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Major reports whether k belongs to the mutually exclusive group.
func (k Kind) Major() bool {
	switch k {
	case Shiver, Pop, Spin, Glow, Jiggle, Press:
		return true
	}
	return false
}

// IdleKinds are the effects the idle scheduler picks from.
var IdleKinds = []Kind{Shiver, Pop, Spin, Glow, Jiggle}

const (
	ShiverIntensity = 0.8
	PopBonus        = 0.15
	PressScale      = 0.90
	PressDuration   = 250 * time.Millisecond
	HoverBonus      = 0.03
	GlowScaleBonus  = 0.1
)

// Effect is one armed timed effect. The parameter fields are sampled once at
// trigger time; which of them matter depends on Kind.
type Effect struct {
	Kind     Kind
	Start    time.Time
	Until    time.Time
	Duration time.Duration

	Intensity float64 // shiver, glow
	Angle     float64 // spin target, degrees
	Magnitude float64 // jiggle, pixels
}

// Active reports whether the effect is still running at now.
// A zero-duration effect is never active.
func (e Effect) Active(now time.Time) bool {
	return e.Duration > 0 && now.Before(e.Until)
}

func (e Effect) progress(now time.Time) float64 {
	if e.Duration <= 0 {
		return 1
	}
	return clamp01(float64(now.Sub(e.Start)) / float64(e.Duration))
}

// PopBonus is the additive scale bonus of a pop, decaying linearly.
func (e Effect) PopBonus(now time.Time) float64 {
	if !e.Active(now) {
		return 0
	}
	return PopBonus * (1 - e.progress(now))
}

func (e Effect) PressScale(now time.Time) float64 {
	if !e.Active(now) {
		return 1
	}
	return PressScale
}

// GlowIntensity rises and falls as a half sine over the glow duration.
func (e Effect) GlowIntensity(now time.Time) float64 {
	if !e.Active(now) {
		return 0
	}
	return e.Intensity * math.Sin(e.progress(now)*math.Pi)
}

// SpinAngle eases in and out toward the target angle.
func (e Effect) SpinAngle(now time.Time) float64 {
	if !e.Active(now) {
		return 0
	}
	eased := 0.5 * (1 - math.Cos(e.progress(now)*math.Pi))
	return e.Angle * eased
}

// ShiverOffset is a random jitter proportional to the decaying intensity and
// the current cell size.
func (e Effect) ShiverOffset(now time.Time, pixel int, rng *rand.Rand) (float64, float64) {
	if !e.Active(now) || pixel <= 0 {
		return 0, 0
	}
	eff := e.Intensity * (1 - e.progress(now))
	dx := uniform(rng, -eff, eff) * float64(pixel) * 0.5
	dy := uniform(rng, -eff, eff) * float64(pixel) * 0.5
	return dx, dy
}

// JiggleOffset is a damped oscillation with a random sign per axis.
func (e Effect) JiggleOffset(now time.Time, rng *rand.Rand) (float64, float64) {
	if !e.Active(now) {
		return 0, 0
	}
	p := e.progress(now)
	osc := math.Sin(p*math.Pi*4) * (1 - p)
	return e.Magnitude * osc * randSign(rng), e.Magnitude * osc * randSign(rng)
}

// Effects holds one slot per kind plus the continuous hover flag.
type Effects struct {
	slots [kindCount]Effect
	hover bool
	rng   *rand.Rand
}

func NewEffects(rng *rand.Rand) *Effects {
	es := &Effects{rng: rng}
	for k := range es.slots {
		es.slots[k].Kind = Kind(k)
	}
	return es
}

// Get returns a copy of the slot for k.
func (es *Effects) Get(k Kind) Effect {
	if k < 0 || k >= kindCount {
		return Effect{Kind: k}
	}
	return es.slots[k]
}

// MajorActive is true iff any effect of the exclusive group is running.
func (es *Effects) MajorActive(now time.Time) bool {
	for k := range es.slots {
		if Kind(k).Major() && es.slots[k].Active(now) {
			return true
		}
	}
	return false
}

// Trigger arms k with freshly sampled parameters. Major kinds are rejected
// while another major effect runs; the running effect is left untouched.
func (es *Effects) Trigger(k Kind, now time.Time) bool {
	switch k {
	case Pulsation:
		return true
	case Hover:
		es.hover = true
		return true
	}
	if !k.Major() {
		return false
	}
	if es.MajorActive(now) {
		return false
	}

	e := Effect{Kind: k}
	switch k {
	case Shiver:
		e.Duration = randDuration(es.rng, 0.4, 0.7)
		e.Intensity = ShiverIntensity
	case Pop:
		e.Duration = randDuration(es.rng, 0.3, 0.6)
	case Spin:
		e.Duration = randDuration(es.rng, 0.5, 1.0)
		e.Angle = 360 * randSign(es.rng)
	case Glow:
		e.Duration = randDuration(es.rng, 0.8, 1.5)
		e.Intensity = uniform(es.rng, 0.5, 1.0)
	case Jiggle:
		e.Duration = randDuration(es.rng, 0.3, 0.6)
		e.Magnitude = uniform(es.rng, 3, 7)
	case Press:
		e.Duration = PressDuration
	}
	es.arm(e, now)
	return true
}

func (es *Effects) arm(e Effect, now time.Time) {
	e.Start = now
	e.Until = now.Add(e.Duration)
	es.slots[e.Kind] = e
}

// SetHover switches the continuous hover bonus.
func (es *Effects) SetHover(on bool) {
	es.hover = on
}

func (es *Effects) HoverBonus() float64 {
	if es.hover {
		return HoverBonus
	}
	return 0
}

// Expire resets every timed slot whose deadline has passed.
func (es *Effects) Expire(now time.Time) {
	for k := range es.slots {
		e := &es.slots[k]
		if !e.Until.IsZero() && !e.Active(now) {
			*e = Effect{Kind: Kind(k)}
		}
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func randSign(rng *rand.Rand) float64 {
	if rng.IntN(2) == 0 {
		return -1
	}
	return 1
}

func randDuration(rng *rand.Rand, loSec, hiSec float64) time.Duration {
	return time.Duration(uniform(rng, loSec, hiSec) * float64(time.Second))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
