package game

import (
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/heart-companion/internal/config"
	"github.com/iburimskiy/heart-companion/internal/heart"
)

const (
	lineSpacing      = 1.2
	dialogueFontSize = 14
	dialoguePadding  = 10

	minParticleRadius = 0.5
)

var (
	dialogueFill   = color.RGBA{R: 255, G: 245, B: 248, A: 230}
	dialogueBorder = color.RGBA{R: 255, G: 150, B: 170, A: 255}
	dialogueText   = color.RGBA{R: 60, G: 30, B: 40, A: 255}
)

// Draw leaves the background untouched so the window stays transparent.
func (g *Game) Draw(screen *ebiten.Image) {
	f := g.heart.Compose(g.frameTime)
	if g.heart.Visible() {
		g.drawHeart(screen, f)
	}
	g.drawParticles(screen, f)
	g.drawDialogue(screen)
}

// drawHeart paints the bitmap and its text around the center of an
// offscreen square, then draws that square rotated onto the widget.
func (g *Game) drawHeart(screen *ebiten.Image, f heart.Frame) {
	side := int(1.5 * math.Max(f.Bounds.W, f.Bounds.H))
	if g.heartImg == nil || g.heartImg.Bounds().Dx() != side {
		g.heartImg = ebiten.NewImage(side, side)
	}
	img := g.heartImg
	img.Clear()
	c := float64(side) / 2

	for row := range heart.Bitmap {
		for col, cell := range heart.Bitmap[row] {
			clr, ok := f.Palette.Color(cell)
			if !ok {
				continue
			}
			r := f.CellRect(row, col)
			vector.DrawFilledRect(img, float32(c+r.X), float32(c+r.Y), float32(r.W), float32(r.H), clr, false)
		}
	}

	if f.Text != "" {
		g.drawHeartText(img, f, c)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-c, -c)
	op.GeoM.Rotate(f.Rotation * math.Pi / 180)
	op.GeoM.Translate(config.HeartX+f.Bounds.W/2, config.HeartY+f.Bounds.H/2)
	screen.DrawImage(img, op)
}

func (g *Game) drawHeartText(img *ebiten.Image, f heart.Frame, c float64) {
	face := &text.GoTextFace{Source: g.font, Size: f.TextSize}
	lineH := f.TextSize * lineSpacing

	lines := wrapText(f.Text, f.TextRect.W, func(s string) float64 { return text.Advance(s, face) })
	lines = clipLines(lines, int(f.TextRect.H/lineH))

	op := &text.DrawOptions{}
	op.GeoM.Translate(c+f.TextRect.X+f.TextRect.W/2, c+f.TextRect.Y+f.TextRect.H/2)
	op.ColorScale.ScaleWithColor(f.TextColor)
	op.LineSpacing = lineH
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	text.Draw(img, strings.Join(lines, "\n"), face, op)
}

// drawParticles paints particles unrotated, in widget coordinates.
func (g *Game) drawParticles(screen *ebiten.Image, f heart.Frame) {
	for _, p := range f.Particles {
		vector.DrawFilledCircle(screen, float32(config.HeartX+p.X), float32(config.HeartY+p.Y), float32(particleRadius(&p)), p.Color(), true)
	}
}

// particleRadius treats a particle's size as its radius.
func particleRadius(p *heart.Particle) float64 {
	return math.Max(p.Size(), minParticleRadius)
}

func (g *Game) drawDialogue(screen *ebiten.Image) {
	msg, shown := g.session.Dialogue()
	if !shown || msg == "" {
		return
	}

	x, y := float32(config.DialogueX), float32(config.DialogueY)
	w, h := float32(config.DialogueWidth), float32(config.DialogueHeight)
	vector.DrawFilledRect(screen, x, y, w, h, dialogueFill, false)
	vector.StrokeRect(screen, x, y, w, h, 2, dialogueBorder, false)

	face := &text.GoTextFace{Source: g.font, Size: dialogueFontSize}
	lineH := dialogueFontSize * lineSpacing
	inner := float64(w) - 2*dialoguePadding

	lines := wrapText(msg, inner, func(s string) float64 { return text.Advance(s, face) })
	lines = clipLines(lines, int((float64(h)-2*dialoguePadding)/lineH))

	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x)+dialoguePadding, float64(y)+dialoguePadding)
	op.ColorScale.ScaleWithColor(dialogueText)
	op.LineSpacing = lineH
	text.Draw(screen, strings.Join(lines, "\n"), face, op)
}
