package heart

import (
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is used whenever a requested color cannot be parsed.
const DefaultColor = "#FFC0CB"

var defaultNRGBA = mustParse(DefaultColor)

// ParseColor accepts "#RRGGBB" or "#RGB".
func ParseColor(hex string) (color.NRGBA, bool) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return color.NRGBA{}, false
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, true
}

// ParseColorOrDefault substitutes DefaultColor for malformed input.
func ParseColorOrDefault(hex string) color.NRGBA {
	if c, ok := ParseColor(hex); ok {
		return c
	}
	return defaultNRGBA
}

func mustParse(hex string) color.NRGBA {
	c, ok := ParseColor(hex)
	if !ok {
		panic("heart: bad built-in color " + hex)
	}
	return c
}

// Palette is the three tones the bitmap is painted with.
type Palette struct {
	Base      color.NRGBA
	Highlight color.NRGBA
	Shadow    color.NRGBA
}

// NewPalette derives highlight and shadow from base. glow in [0,1] brightens
// and desaturates the base first.
func NewPalette(base color.NRGBA, glow float64) Palette {
	if glow > 0 {
		base = shiftHSV(base, -30*glow, 50*glow)
	}
	return Palette{
		Base:      base,
		Highlight: shiftHSV(base, -50, 70),
		Shadow:    shiftHSV(base, 20, -50),
	}
}

func (p Palette) Color(c Cell) (color.NRGBA, bool) {
	switch c {
	case CellBody:
		return p.Base, true
	case CellHighlight:
		return p.Highlight, true
	case CellShadow:
		return p.Shadow, true
	}
	return color.NRGBA{}, false
}

// shiftHSV moves saturation and value by deltas expressed on a 0-255 scale,
// keeping hue and alpha.
func shiftHSV(c color.NRGBA, ds, dv float64) color.NRGBA {
	h, s, v := toColorful(c).Hsv()
	s = clamp01(s + ds/255)
	v = clamp01(v + dv/255)
	r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: c.A}
}

// Lightness is the HSL lightness in [0,1].
func Lightness(c color.NRGBA) float64 {
	_, _, l := toColorful(c).Hsl()
	return l
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func lerpColor(from, to color.NRGBA, f float64) color.NRGBA {
	return color.NRGBA{
		R: lerpChannel(from.R, to.R, f),
		G: lerpChannel(from.G, to.G, f),
		B: lerpChannel(from.B, to.B, f),
		A: lerpChannel(from.A, to.A, f),
	}
}
