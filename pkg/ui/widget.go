// Package ui holds the few immediate-mode widgets the viewer needs.
//
// Widgets never poll ebiten themselves: the panel samples the mouse once per
// frame into an Input and hands it down, so widget logic runs without a window.
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Input is the pointer state of one frame.
type Input struct {
	X, Y    float64
	Pressed bool    // left button held
	WheelY  float64 // vertical wheel delta
}

// PollInput samples the mouse.
func PollInput() Input {
	mx, my := ebiten.CursorPosition()
	_, dy := ebiten.Wheel()
	return Input{
		X:       float64(mx),
		Y:       float64(my),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		WheelY:  dy,
	}
}

// Rect is a screen area.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Widget is anything the panel can stack.
type Widget interface {
	Update(in Input)
	Draw(screen *ebiten.Image)
	// Height is the vertical space taken in the panel, label included.
	Height() float64
	// MoveTo places the widget body at the given top left corner.
	MoveTo(x, y float64)
}

// press turns a held button into a single click.
type press struct {
	latched bool
}

// click reports true only on the first frame the button is held over the area.
func (p *press) click(in Input, area Rect) bool {
	if in.Pressed && area.Contains(in.X, in.Y) {
		if !p.latched {
			p.latched = true
			return true
		}
		return false
	}
	p.latched = false
	return false
}
