package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable UI button
type Button struct {
	Label   string
	X, Y    float64
	W, H    float64
	OnClick func()

	held  bool
	hover bool

	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a new button instance
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		W:          width,
		H:          height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

// HandlePointer fires OnClick once per press. A button holds no value, so it
// never reports a change.
func (b *Button) HandlePointer(p Pointer) bool {
	b.hover = p.In(b.X, b.Y, b.W, b.H)
	if !p.Pressed {
		b.held = false
		return false
	}
	if b.hover && !b.held {
		b.held = true
		if b.OnClick != nil {
			b.OnClick()
		}
	}
	return false
}

func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	if b.hover {
		bg = b.HoverColor
	}
	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		bg, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+8), int(b.Y+b.H/2-8))
}

func (b *Button) Height() float64 { return b.H + 6 }

func (b *Button) SetPosition(x, y float64) { b.X, b.Y = x, y }
