package ui

import "github.com/hajimehoshi/ebiten/v2"

// Pointer is the mouse state widgets react to.
type Pointer struct {
	X, Y    float64
	Pressed bool
}

// CurrentPointer reads the left mouse button and the cursor position.
func CurrentPointer() Pointer {
	mx, my := ebiten.CursorPosition()
	return Pointer{
		X:       float64(mx),
		Y:       float64(my),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
	}
}

// In reports whether the pointer is over the rectangle.
func (p Pointer) In(x, y, w, h float64) bool {
	return p.X >= x && p.X <= x+w && p.Y >= y && p.Y <= y+h
}

// Widget is anything the Panel can lay out.
type Widget interface {
	// HandlePointer reacts to the pointer and reports whether the widget value changed.
	HandlePointer(p Pointer) bool
	Draw(screen *ebiten.Image)
	Height() float64
	SetPosition(x, y float64)
}
