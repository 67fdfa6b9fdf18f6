// Package mood turns the companion's moods into animation: idle fidgets on a
// random schedule, the poke reaction and particle bursts for strong emotions.
package mood

import (
	"image/color"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/iburimskiy/heart-companion/internal/heart"
)

// Payload is the structured mood reply from the language model.
type Payload struct {
	ShortText string  `json:"short_dialogue"`
	LongText  string  `json:"long_dialogue"`
	Color     string  `json:"color_hex"`
	PulseHz   float64 `json:"frequency_hz"`
}

// Heart is the part of heart.State the animator drives.
type Heart interface {
	Trigger(k heart.Kind, now time.Time) bool
	MajorActive(now time.Time) bool
	Visible() bool
	LongFormVisible() bool
	Bounds() heart.Rect
	Emit(count int, region heart.Rect, c color.NRGBA, kind heart.ParticleKind) int
}

// Cues plays named sound cues. A negative volume selects the player default.
type Cues interface {
	Play(name string, volume float64)
}

const defaultVolume = -1

var (
	positiveWords = []string{"开心", "兴奋", "耶", "happy", "excited", "yay"}
	sadWords      = []string{"悲伤", "难过", "呜", "sad", "upset", "sob"}
)

// idleCues maps idle picks to their cue; shiver and glow are silent.
var idleCues = map[heart.Kind]struct {
	name   string
	volume float64
}{
	heart.Pop:    {"pop", defaultVolume},
	heart.Spin:   {"spin", defaultVolume},
	heart.Jiggle: {"jiggle", 0.4},
}

// Animator schedules idle animations and maps moods onto particles.
type Animator struct {
	heart Heart
	cues  Cues
	rng   *rand.Rand

	minDelay time.Duration
	maxDelay time.Duration

	deadline time.Time
	armed    bool
	fired    int
}

func NewAnimator(h Heart, cues Cues, minDelay, maxDelay time.Duration, rng *rand.Rand) *Animator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Animator{
		heart:    h,
		cues:     cues,
		rng:      rng,
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Start arms the idle deadline relative to now.
func (a *Animator) Start(now time.Time) {
	a.rearm(now)
}

func (a *Animator) Stop() {
	a.armed = false
}

func (a *Animator) rearm(now time.Time) {
	span := a.maxDelay - a.minDelay
	delay := a.minDelay
	if span > 0 {
		delay += time.Duration(a.rng.Int64N(int64(span) + 1))
	}
	a.deadline = now.Add(delay)
	a.armed = true
}

// Poll runs the idle scheduler. When the deadline is reached it tries one
// idle animation and always re-arms. It reports the kind that played, if any.
func (a *Animator) Poll(now time.Time) (heart.Kind, bool) {
	if !a.armed || now.Before(a.deadline) {
		return 0, false
	}
	a.fired++
	defer a.rearm(now)

	h := a.heart
	if !h.Visible() || h.MajorActive(now) || h.LongFormVisible() {
		return 0, false
	}
	k := heart.IdleKinds[a.rng.IntN(len(heart.IdleKinds))]
	if !h.Trigger(k, now) {
		return 0, false
	}
	if cue, ok := idleCues[k]; ok {
		a.play(cue.name, cue.volume)
	}
	return k, true
}

// Pending is the number of armed idle deadlines: 1 while running, else 0.
func (a *Animator) Pending() int {
	if a.armed {
		return 1
	}
	return 0
}

func (a *Animator) Deadline() time.Time {
	return a.deadline
}

// Fired counts deadlines reached, whether or not an animation played.
func (a *Animator) Fired() int {
	return a.fired
}

// Poke jiggles the heart and plays the poke cue.
func (a *Animator) Poke(now time.Time) {
	a.heart.Trigger(heart.Jiggle, now)
	a.play("poke", defaultVolume)
}

// React emits mood particles for p and returns how many were created.
func (a *Animator) React(p Payload) int {
	text := strings.ToLower(p.LongText + " " + p.ShortText)
	c := heart.ParseColorOrDefault(p.Color)
	region := a.heart.Bounds()

	switch {
	case p.PulseHz > 4 && containsAny(text, positiveWords):
		return a.heart.Emit(a.between(7, 15), region, c, heart.Sparkle)
	case p.PulseHz < 1 && containsAny(text, sadWords):
		return a.heart.Emit(a.between(3, 7), region, c, heart.Teardrop)
	}
	return 0
}

func (a *Animator) between(lo, hi int) int {
	return lo + a.rng.IntN(hi-lo+1)
}

func (a *Animator) play(name string, volume float64) {
	if a.cues != nil {
		a.cues.Play(name, volume)
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
