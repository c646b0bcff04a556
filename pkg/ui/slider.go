package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float in [Min, Max]. A drag that started on the bar keeps
// moving the value even when the cursor leaves it.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
	Format   string // how the value is printed next to the label

	dragging bool
}

// NewSlider creates a slider, the value is clamped into range.
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label:  label,
		Min:    min,
		Max:    max,
		X:      x,
		Y:      y,
		W:      width,
		H:      12,
		Format: "%.3f",
	}
	s.Set(value)
	return s
}

// Set changes the value, clamped into [Min, Max], and reports whether it moved.
func (s *Slider) Set(v float64) bool {
	v = min(max(v, s.Min), s.Max)
	if v == s.Value {
		return false
	}
	s.Value = v
	return true
}

// Ratio is the position of the value along the bar, in [0, 1].
func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) HandlePointer(p Pointer) bool {
	if !p.Pressed {
		s.dragging = false
		return false
	}
	if !s.dragging && !p.In(s.X, s.Y, s.W, s.H) {
		return false
	}
	s.dragging = true
	return s.Set(s.Min + (p.X-s.X)/s.W*(s.Max-s.Min))
}

func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, s.Label+": "+fmt.Sprintf(s.Format, s.Value), int(s.X), int(s.Y)-16)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H),
		color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H),
		color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

func (s *Slider) Height() float64 { return s.H + 24 } // bar + label line

func (s *Slider) SetPosition(x, y float64) {
	s.X, s.Y = x, y+16
}
