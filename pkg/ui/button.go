package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick once per press.
type Button struct {
	Rect
	Label   string
	OnClick func()
	hover   bool
	press   press

	BGColor    color.RGBA
	HoverColor color.RGBA
}

func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Rect:       Rect{X: x, Y: y, W: width, H: height},
		Label:      label,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Update(in Input) {
	b.hover = b.Contains(in.X, in.Y)
	if b.press.click(in, b.Rect) && b.OnClick != nil {
		b.OnClick()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	if b.hover {
		bg = b.HoverColor
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), bg, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+8), int(b.Y+b.H/2-8))
}

// buttons carry their own caption
func (b *Button) Height() float64 { return b.H + 10 }

func (b *Button) MoveTo(x, y float64) { b.X, b.Y = x, y }
