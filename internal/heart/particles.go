package heart

import (
	"image/color"
	"math/rand/v2"
	"time"
)

// ParticleKind selects the motion and color profile of emitted particles.
type ParticleKind int

const (
	Generic ParticleKind = iota
	Sparkle
	Teardrop
)

func (k ParticleKind) String() string {
	switch k {
	case Sparkle:
		return "sparkle"
	case Teardrop:
		return "teardrop"
	}
	return "generic"
}

var teardropBlue = color.NRGBA{R: 0, G: 100, B: 255, A: 255}

// Rect is an axis-aligned region in widget coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Particle is a short-lived point; velocity is in pixels per second.
type Particle struct {
	X, Y   float64
	VX, VY float64

	Life      time.Duration
	Remaining time.Duration

	StartColor, EndColor color.NRGBA
	StartSize, EndSize   float64
}

// Progress is the elapsed fraction of the particle's life.
func (p *Particle) Progress() float64 {
	if p.Life <= 0 {
		return 1
	}
	return clamp01(float64(p.Life-p.Remaining) / float64(p.Life))
}

func (p *Particle) Color() color.NRGBA {
	return lerpColor(p.StartColor, p.EndColor, p.Progress())
}

func (p *Particle) Size() float64 {
	return p.StartSize + (p.EndSize-p.StartSize)*p.Progress()
}

func (p *Particle) Alive() bool {
	return p.Remaining > 0
}

// tick reports whether the particle survives dt.
func (p *Particle) tick(dt time.Duration) bool {
	p.Remaining -= dt
	if p.Remaining <= 0 {
		return false
	}
	sec := dt.Seconds()
	p.X += p.VX * sec
	p.Y += p.VY * sec
	return true
}

// Particles owns the live particle set.
type Particles struct {
	live []Particle
	rng  *rand.Rand
}

func NewParticles(rng *rand.Rand) *Particles {
	return &Particles{
		live: make([]Particle, 0, 64),
		rng:  rng,
	}
}

// Emit spawns count particles around the center of region and returns how
// many were created.
func (ps *Particles) Emit(count int, region Rect, base color.NRGBA, kind ParticleKind) int {
	if count <= 0 {
		return 0
	}
	cx, cy := region.Center()
	for i := 0; i < count; i++ {
		p := Particle{
			X: cx + uniform(ps.rng, -region.W*0.2, region.W*0.2),
			Y: cy + uniform(ps.rng, -region.H*0.2, region.H*0.2),
		}
		switch kind {
		case Sparkle:
			p.VX = uniform(ps.rng, -30, 30)
			p.VY = uniform(ps.rng, -50, -10)
			p.Life = time.Duration(randInt(ps.rng, 500, 1500)) * time.Millisecond
			p.StartColor = withAlpha(base, 255)
			p.EndColor = withAlpha(base, 0)
			p.StartSize = uniform(ps.rng, 2, 5)
			p.EndSize = 0.5
		case Teardrop:
			p.VX = uniform(ps.rng, -10, 10)
			p.VY = uniform(ps.rng, 20, 60)
			p.Life = time.Duration(randInt(ps.rng, 800, 2000)) * time.Millisecond
			p.StartColor = teardropBlue
			p.EndColor = withAlpha(teardropBlue, 0)
			p.StartSize = uniform(ps.rng, 3, 6)
			p.EndSize = 1
		default:
			p.VX = uniform(ps.rng, -20, 20)
			p.VY = uniform(ps.rng, -20, 20)
			p.Life = time.Duration(randInt(ps.rng, 500, 1000)) * time.Millisecond
			p.StartColor = withAlpha(base, 200)
			p.EndColor = withAlpha(base, 0)
			p.StartSize = 3
			p.EndSize = 0
		}
		p.Remaining = p.Life
		ps.live = append(ps.live, p)
	}
	return count
}

// Tick advances every particle by dt and compacts out the dead ones.
func (ps *Particles) Tick(dt time.Duration) {
	alive := 0
	for i := range ps.live {
		if !ps.live[i].tick(dt) {
			continue
		}
		ps.live[alive] = ps.live[i]
		alive++
	}
	clear(ps.live[alive:])
	ps.live = ps.live[:alive]
}

func (ps *Particles) Len() int {
	return len(ps.live)
}

// Live returns the current particles. The slice is only valid until the
// next Emit or Tick.
func (ps *Particles) Live() []Particle {
	return ps.live
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
