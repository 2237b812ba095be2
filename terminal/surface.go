package terminal

import (
	"errors"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

// ErrDetached is returned when a detached surface is detached again.
var ErrDetached = errors.New("terminal: surface detached")

// Braille cells hold a 2x4 dot matrix. dotBits[row][col] is the bit that
// raises the dot at that position; the glyph is brailleBase + mask.
const brailleBase = 0x2800

var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is the part of tcell.Screen the surface draws through.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
}

type cell struct {
	mask  uint8
	alpha float64     // strongest contribution so far
	color color.NRGBA // color of that contribution
}

// Surface rasterizes the field into braille glyphs. One terminal cell
// covers cellW x cellH backing pixels and shows up to eight dots, each
// lit by any circle or line that touches it. A cell takes the color of
// its most opaque contribution, blended over the background.
type Surface struct {
	canvas       Canvas
	cellW, cellH float64
	background   color.NRGBA

	w, h       int
	scale      float64
	cols, rows int
	cells      []cell
	detached   bool
}

// NewSurface creates a surface of w x h backing pixels drawn onto canvas.
func NewSurface(canvas Canvas, w, h int, scale, cellW, cellH float64, background color.NRGBA) *Surface {
	s := &Surface{
		canvas:     canvas,
		cellW:      cellW,
		cellH:      cellH,
		background: background,
	}
	s.Resize(w, h, scale)
	return s
}

// Resize reallocates the cell grid for a new backing size.
func (s *Surface) Resize(w, h int, scale float64) {
	if s.detached {
		return
	}
	s.w, s.h, s.scale = w, h, scale
	s.cols = int(math.Ceil(float64(w) / s.cellW))
	s.rows = int(math.Ceil(float64(h) / s.cellH))
	s.cells = make([]cell, s.cols*s.rows)
}

// Clear resets every dot.
func (s *Surface) Clear() {
	clear(s.cells)
}

// FillCircle lights the dot under the circle's center. Particles are
// smaller than one dot, so the radius never spans more.
func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	s.plot(s.dot(x, y), c)
}

// StrokeLine lights every dot on the segment.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	p0, p1 := s.dot(x0, y0), s.dot(x1, y1)

	// Bresenham over the dot grid
	dx := abs(p1[0] - p0[0])
	dy := -abs(p1[1] - p0[1])
	sx, sy := sign(p1[0]-p0[0]), sign(p1[1]-p0[1])
	err := dx + dy
	x, y := p0[0], p0[1]
	for {
		s.plot([2]int{x, y}, c)
		if x == p1[0] && y == p1[1] {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// Flush writes the grid to the canvas and shows it.
func (s *Surface) Flush() {
	if s.detached {
		return
	}
	bg := toTcell(s.background)
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			r, fg := s.Cell(col, row)
			style := tcell.StyleDefault.Background(bg).Foreground(fg)
			s.canvas.SetContent(col, row, r, nil, style)
		}
	}
	s.canvas.Show()
}

// Detach blanks the drawn area. A second call returns ErrDetached.
func (s *Surface) Detach() error {
	if s.detached {
		return ErrDetached
	}
	s.Clear()
	s.Flush()
	s.detached = true
	s.cells = nil
	return nil
}

// Cell returns the glyph and foreground color for a cell. Empty cells
// are a space in the background color.
func (s *Surface) Cell(col, row int) (rune, tcell.Color) {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows || s.cells == nil {
		return ' ', toTcell(s.background)
	}
	c := s.cells[row*s.cols+col]
	if c.mask == 0 {
		return ' ', toTcell(s.background)
	}
	return rune(brailleBase + int(c.mask)), toTcell(blend(s.background, c.color, c.alpha))
}

// Grid returns the number of columns and rows.
func (s *Surface) Grid() (cols, rows int) {
	return s.cols, s.rows
}

// dot maps a backing pixel to dot coordinates.
func (s *Surface) dot(x, y float64) [2]int {
	return [2]int{
		int(math.Floor(x * 2 / s.cellW)),
		int(math.Floor(y * 4 / s.cellH)),
	}
}

func (s *Surface) plot(d [2]int, c color.NRGBA) {
	// A point exactly on the right or bottom edge lands one dot out
	dx := min(d[0], s.cols*2-1)
	dy := min(d[1], s.rows*4-1)
	if s.cells == nil || dx < 0 || dy < 0 {
		return
	}
	cl := &s.cells[(dy/4)*s.cols+dx/2]
	cl.mask |= dotBits[dy%4][dx%2]
	if a := float64(c.A) / 255; a > cl.alpha {
		cl.alpha = a
		cl.color = c
	}
}

// blend composites c at opacity a over an opaque background.
func blend(bg, c color.NRGBA, a float64) color.NRGBA {
	mix := func(b, f uint8) uint8 {
		return uint8(math.Round(float64(b) + (float64(f)-float64(b))*a))
	}
	return color.NRGBA{R: mix(bg.R, c.R), G: mix(bg.G, c.G), B: mix(bg.B, c.B), A: 255}
}

func toTcell(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
