package heart

import (
	"image/color"
	"math"
	"time"
)

const (
	fillRatio       = 0.8
	textWidthRatio  = 0.8
	textHeightRatio = 0.6
	minFontSize     = 7
)

var (
	textLight = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	textDark  = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
)

// Frame is everything needed to paint one frame of the heart. Heart-local
// coordinates (Offset, TextRect) are relative to the widget center and are
// rotated by Rotation; particles are in plain widget coordinates.
type Frame struct {
	Bounds   Rect
	Scale    float64
	Pixel    int
	Rotation float64 // degrees, clockwise

	OffsetX, OffsetY float64 // top-left corner of the bitmap

	Palette Palette
	Glow    float64

	Text      string
	TextRect  Rect
	TextSize  float64
	TextColor color.NRGBA

	Particles []Particle
}

// CellRect returns the on-screen square of bitmap cell (row, col) in
// heart-local coordinates.
func (f Frame) CellRect(row, col int) Rect {
	px := float64(f.Pixel)
	return Rect{
		X: math.Trunc(f.OffsetX + float64(col)*px),
		Y: math.Trunc(f.OffsetY + float64(row)*px),
		W: px,
		H: px,
	}
}

// Compose samples every effect at now and folds them into a Frame.
func (s *State) Compose(now time.Time) Frame {
	es := s.effects

	pop := es.slots[Pop].PopBonus(now)
	press := es.slots[Press].PressScale(now)
	glow := es.slots[Glow].GlowIntensity(now)

	scale := (s.pulse.Scale() + pop + es.HoverBonus() + glow*GlowScaleBonus) * press

	w, h := s.bounds.W, s.bounds.H
	pw := w * fillRatio * scale / BitmapWidth
	ph := h * fillRatio * scale / BitmapHeight
	pixel := int(math.Min(pw, ph))
	if pixel < 1 {
		pixel = 1
	}

	heartW := float64(BitmapWidth * pixel)
	heartH := float64(BitmapHeight * pixel)

	sx, sy := es.slots[Shiver].ShiverOffset(now, pixel, s.rng)
	jx, jy := es.slots[Jiggle].JiggleOffset(now, s.rng)

	f := Frame{
		Bounds:    s.bounds,
		Scale:     scale,
		Pixel:     pixel,
		Rotation:  es.slots[Spin].SpinAngle(now),
		OffsetX:   -heartW/2 + sx + jx,
		OffsetY:   -heartH/2 + sy + jy,
		Palette:   NewPalette(s.color.Base, glow),
		Glow:      glow,
		Text:      s.text,
		Particles: s.particles.Live(),
	}

	if f.Text != "" {
		tw := heartW * textWidthRatio
		th := heartH * textHeightRatio
		f.TextRect = Rect{
			X: f.OffsetX + (heartW-tw)/2,
			Y: f.OffsetY + (heartH-th)/2,
			W: tw,
			H: th,
		}
		f.TextSize = fontSize(pixel, th)
		f.TextColor = textColorFor(f.Palette.Base, glow)
	}
	return f
}

func fontSize(pixel int, rectH float64) float64 {
	size := int(float64(pixel) * 1.6)
	if byHeight := int(rectH * 0.3); byHeight > 0 && byHeight < size {
		size = byHeight
	}
	if size < minFontSize {
		size = minFontSize
	}
	return float64(size)
}

// textColorFor picks white or black for contrast; a glowing heart keeps
// white text a little longer.
func textColorFor(base color.NRGBA, glow float64) color.NRGBA {
	threshold := 0.5
	if glow > 0 {
		threshold = 0.6
	}
	if Lightness(base) < threshold {
		return textLight
	}
	return textDark
}
