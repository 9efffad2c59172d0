package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30
	sectionHeight = 25
	labelHeight   = 15
	margin        = 10
	scrollStep    = 20
)

// entry is a section header when widget is nil.
type entry struct {
	title  string
	widget Widget
	y      float64 // scrolled top, set by layout
}

// Panel stacks widgets under section headers and scrolls them with the wheel.
type Panel struct {
	Rect
	Title        string
	ScrollOffset float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	entries []entry
}

func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		Rect:        Rect{X: x, Y: y, W: width, H: height},
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (p *Panel) AddSection(title string) {
	p.entries = append(p.entries, entry{title: title})
	p.layout()
}

func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+margin, 0, p.W-2*margin, label, min, max, value)
	p.add(label, s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+margin, 0, label, value)
	p.add(label, c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+margin, 0, p.W-2*margin, 24, label, onClick)
	p.add("", b)
	return b
}

func (p *Panel) add(label string, w Widget) {
	p.entries = append(p.entries, entry{title: label, widget: w})
	p.layout()
}

// ContentHeight is the unscrolled height of everything in the panel.
func (p *Panel) ContentHeight() float64 {
	h := float64(titleHeight)
	for _, e := range p.entries {
		if e.widget == nil {
			h += sectionHeight
			continue
		}
		h += e.widget.Height()
	}
	return h
}

// layout moves every widget to its scrolled position.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for i := range p.entries {
		e := &p.entries[i]
		e.y = y
		if e.widget == nil {
			y += sectionHeight
			continue
		}
		top := y
		if e.title != "" {
			top += labelHeight
		}
		e.widget.MoveTo(p.X+margin, top)
		y += e.widget.Height()
	}
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y+titleHeight-labelHeight && y <= p.Y+p.H
}

// Update scrolls and forwards the input to the visible widgets.
func (p *Panel) Update(in Input) {
	if in.WheelY != 0 && p.Contains(in.X, in.Y) {
		p.ScrollOffset -= in.WheelY * scrollStep
		maxScroll := max(p.ContentHeight()-p.H+40, 0)
		p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
		p.layout()
	}
	for _, e := range p.entries {
		if e.widget == nil {
			continue
		}
		if p.visible(e.y) {
			e.widget.Update(in)
		}
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	for _, e := range p.entries {
		if !p.visible(e.y) {
			continue
		}
		if e.widget == nil {
			vector.FillRect(screen, float32(p.X+5), float32(e.y), float32(p.W-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, e.title, int(p.X+margin), int(e.y+3))
			continue
		}
		if e.title != "" {
			ebitenutil.DebugPrintAt(screen, e.title, int(p.X+margin), int(e.y))
		}
		e.widget.Draw(screen)
	}
}
