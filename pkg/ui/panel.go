package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 26.0
	sectionHeight = 24.0
	margin        = 10.0
)

// Panel stacks widgets in titled sections and scrolls them with the wheel.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64

	BGColor      color.RGBA
	BorderColor  color.RGBA
	SectionColor color.RGBA

	sections []*section
}

type section struct {
	title   string
	widgets []Widget
	y       float64   // header position after the last layout
	slots   []float64 // widget positions after the last layout
}

// NewPanel creates an empty panel.
func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:        title,
		X:            x,
		Y:            y,
		Width:        width,
		Height:       height,
		BGColor:      color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor:  color.RGBA{R: 100, G: 100, B: 110, A: 255},
		SectionColor: color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// AddSection starts a new section; following widgets go into it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, &section{title: title})
}

// Add appends a widget to the current section, opening an untitled one if needed.
func (p *Panel) Add(w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	cur := p.sections[len(p.sections)-1]
	cur.widgets = append(cur.widgets, w)
	p.layout()
}

// AddSlider adds a slider to the current section.
func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(0, 0, p.Width-2*margin, label, min, max, value)
	p.Add(s)
	return s
}

// AddCheckbox adds a checkbox to the current section.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.Add(c)
	return c
}

// AddButton adds a button to the current section.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.Width-2*margin, 20, label, onClick)
	p.Add(b)
	return b
}

// Contains reports whether (x, y) is over the panel, so the caller can ignore
// the click for anything drawn behind it.
func (p *Panel) Contains(x, y float64) bool {
	return Pointer{X: x, Y: y}.In(p.X, p.Y, p.Width, p.Height)
}

// ContentHeight is the height of everything in the panel, scrolled or not.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		h += sectionHeight
		for _, w := range s.widgets {
			h += w.Height()
		}
	}
	return h
}

// Scroll moves the content by dy wheel notches, clamped to the content.
func (p *Panel) Scroll(dy float64) {
	maxScroll := max(p.ContentHeight()-p.Height+margin, 0)
	p.ScrollOffset = min(max(p.ScrollOffset-dy*20, 0), maxScroll)
	p.layout()
}

// layout positions every widget for the current scroll offset.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		s.y = y
		s.slots = s.slots[:0]
		y += sectionHeight
		for _, w := range s.widgets {
			w.SetPosition(p.X+margin, y)
			s.slots = append(s.slots, y)
			y += w.Height()
		}
	}
}

// HandlePointer feeds the pointer to every widget and reports whether any value changed.
func (p *Panel) HandlePointer(ptr Pointer) bool {
	changed := false
	for _, s := range p.sections {
		for _, w := range s.widgets {
			if w.HandlePointer(ptr) {
				changed = true
			}
		}
	}
	return changed
}

func (p *Panel) visible(y, h float64) bool {
	return y+h >= p.Y+titleHeight && y <= p.Y+p.Height
}

func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+margin), int(p.Y+5))

	for _, s := range p.sections {
		if s.title != "" && p.visible(s.y, sectionHeight) {
			vector.FillRect(screen,
				float32(p.X+5), float32(s.y),
				float32(p.Width-10), sectionHeight-4,
				p.SectionColor, true)
			ebitenutil.DebugPrintAt(screen, s.title, int(p.X+margin), int(s.y+3))
		}
		for i, w := range s.widgets {
			if p.visible(s.slots[i], w.Height()) {
				w.Draw(screen)
			}
		}
	}
}
