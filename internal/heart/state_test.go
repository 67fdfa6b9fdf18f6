package heart

import (
	"image/color"
	"testing"
	"time"
)

func TestAdvancePulseCadence(t *testing.T) {
	s := NewState(280, 230, testRNG())
	s.Advance(t0)
	s.SetPulsation(8)

	s.Advance(t0.Add(300 * time.Millisecond))

	want := NewPulse(1)
	want.SetTarget(8)
	for i := 0; i < 10; i++ {
		want.Step(PulseInterval)
	}
	if s.Frequency() != want.Current {
		t.Errorf("frequency after 10 ticks: got %v, want %v", s.Frequency(), want.Current)
	}
	if s.TargetFrequency() != 8 {
		t.Errorf("target: got %v", s.TargetFrequency())
	}
}

func TestAdvanceColorRamp(t *testing.T) {
	s := NewState(280, 230, testRNG())
	s.Advance(t0)
	start := s.BaseColor()

	s.SetColor("#000000")
	black := color.NRGBA{A: 255}
	if s.TargetColor() != black {
		t.Fatalf("target: got %v", s.TargetColor())
	}

	now := t0.Add(40 * time.Millisecond)
	s.Advance(now)
	if s.BaseColor() != start {
		t.Errorf("ramp moved before its first interval: %v", s.BaseColor())
	}

	now = now.Add(ColorSteps/2*ColorInterval + time.Millisecond)
	s.Advance(now)
	if b := s.BaseColor(); b == start || b == black {
		t.Errorf("ramp should be midway, got %v", b)
	}

	now = now.Add(ColorSteps / 2 * ColorInterval)
	s.Advance(now)
	if s.BaseColor() != black {
		t.Errorf("base after full ramp: got %v, want %v", s.BaseColor(), black)
	}

	// a stopped ramp does not replay stale time on the next transition
	s.SetColor("#FFFFFF")
	s.Advance(now.Add(time.Minute))
	if s.BaseColor() != black {
		t.Errorf("new ramp jumped ahead: %v", s.BaseColor())
	}
}

func TestSetColorFallsBack(t *testing.T) {
	s := NewState(280, 230, testRNG())
	s.SetColor("#123456")
	s.SetColor("bogus")
	if s.TargetColor() != defaultNRGBA {
		t.Errorf("target: got %v, want default", s.TargetColor())
	}
}

func TestGlowReleasesSparkles(t *testing.T) {
	s := NewState(280, 230, testRNG())
	if !s.Trigger(Glow, t0) {
		t.Fatal("glow rejected")
	}
	n := len(s.Particles())
	if n < 5 || n > 10 {
		t.Fatalf("sparkles: got %d, want 5..10", n)
	}
	for _, p := range s.Particles() {
		if p.EndSize != 0.5 || p.VY > -10 {
			t.Errorf("not a sparkle: %+v", p)
		}
	}

	if s.Trigger(Pop, t0.Add(10*time.Millisecond)) {
		t.Error("pop accepted during glow")
	}
	if len(s.Particles()) != n {
		t.Error("rejected trigger emitted particles")
	}
}

func TestAdvanceRetiresParticlesAndEffects(t *testing.T) {
	s := NewState(280, 230, testRNG())
	s.Advance(t0)
	s.Emit(5, s.Bounds(), color.NRGBA{A: 255}, Teardrop)
	s.Trigger(Jiggle, t0)

	now := t0
	for i := 0; i < 22; i++ {
		now = now.Add(100 * time.Millisecond)
		s.Advance(now)
	}

	if n := len(s.Particles()); n != 0 {
		t.Errorf("particles left after 2.2s: %d", n)
	}
	if e := s.Effect(Jiggle); !e.Until.IsZero() {
		t.Errorf("jiggle not retired: %+v", e)
	}
	if s.MajorActive(now) {
		t.Error("major effect still active")
	}
}

func TestVisibilityFlags(t *testing.T) {
	s := NewState(280, 230, nil)
	if !s.Visible() || s.LongFormVisible() {
		t.Fatal("unexpected initial flags")
	}
	s.SetVisible(false)
	s.SetLongFormVisible(true)
	if s.Visible() || !s.LongFormVisible() {
		t.Error("flags not stored")
	}
}
