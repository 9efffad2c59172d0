package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider picks a value in [Min, Max] by dragging.
type Slider struct {
	Rect
	Label    string
	Value    float64
	Min, Max float64
	Step     float64 // 0 means continuous
}

// NewSlider creates a slider, the value is clamped into range.
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Rect:  Rect{X: x, Y: y, W: width, H: 12},
		Label: label,
		Min:   min,
		Max:   max,
	}
	s.Set(value)
	return s
}

// Set clamps and snaps v before storing it.
func (s *Slider) Set(v float64) {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	s.Value = math.Max(s.Min, math.Min(s.Max, v))
}

func (s *Slider) Update(in Input) {
	if in.Pressed && s.Contains(in.X, in.Y) && s.W > 0 {
		s.Set(s.Min + (in.X-s.X)/s.W*(s.Max-s.Min))
	}
}

func (s *Slider) ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

func (s *Slider) Height() float64 { return s.H + 25 }

func (s *Slider) MoveTo(x, y float64) { s.X, s.Y = x, y }
