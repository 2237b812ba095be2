package terminal

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
)

type recordingCanvas struct {
	runes map[[2]int]rune
	shows int
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{runes: make(map[[2]int]rune)}
}

func (c *recordingCanvas) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	c.runes[[2]int{x, y}] = primary
}

func (c *recordingCanvas) Show() { c.shows++ }

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestSurfaceGrid(t *testing.T) {
	s := NewSurface(newRecordingCanvas(), 80, 64, 1, 8, 16, black)
	if cols, rows := s.Grid(); cols != 10 || rows != 4 {
		t.Errorf("grid = %dx%d, want 10x4", cols, rows)
	}

	s.Resize(81, 64, 1)
	if cols, _ := s.Grid(); cols != 11 {
		t.Errorf("partial column should round up, got %d", cols)
	}
}

func TestFillCircleDotBits(t *testing.T) {
	// One cell is 8x16 px, so one dot is 4x4 px
	tests := []struct {
		name string
		x, y float64
		want rune
	}{
		{"top left", 1, 1, 0x2801},
		{"top right", 5, 1, 0x2808},
		{"second row left", 1, 5, 0x2802},
		{"third row right", 5, 9, 0x2820},
		{"bottom left", 1, 13, 0x2840},
		{"bottom right", 5, 13, 0x2880},
		{"right edge", 8, 16, 0x2880},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSurface(newRecordingCanvas(), 8, 16, 1, 8, 16, black)
			s.FillCircle(tt.x, tt.y, 1, white)
			if r, _ := s.Cell(0, 0); r != tt.want {
				t.Errorf("rune = %U, want %U", r, tt.want)
			}
		})
	}
}

func TestStrokeLineCoversCells(t *testing.T) {
	s := NewSurface(newRecordingCanvas(), 80, 16, 1, 8, 16, black)
	s.StrokeLine(0, 1, 79, 1, 0.8, color.NRGBA{R: 255, G: 255, B: 255, A: 128})

	for col := 0; col < 10; col++ {
		r, _ := s.Cell(col, 0)
		// Both dots of the top row
		if r != 0x2809 {
			t.Errorf("col %d rune = %U, want U+2809", col, r)
		}
	}
}

func TestCellColorFollowsOpacity(t *testing.T) {
	s := NewSurface(newRecordingCanvas(), 16, 16, 1, 8, 16, black)
	s.StrokeLine(1, 1, 1, 13, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 51})
	s.StrokeLine(9, 1, 9, 13, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 204})

	_, faint := s.Cell(0, 0)
	_, strong := s.Cell(1, 0)
	fr, _, _ := faint.RGB()
	sr, _, _ := strong.RGB()
	if fr != 51 || sr != 204 {
		t.Errorf("gray levels = %d, %d, want 51, 204", fr, sr)
	}

	// The strongest contribution wins within a cell
	s.FillCircle(1, 1, 1, white)
	if _, c := s.Cell(0, 0); c != tcell.NewRGBColor(255, 255, 255) {
		t.Errorf("color = %v, want white", c)
	}
}

func TestFlushAndClear(t *testing.T) {
	canvas := newRecordingCanvas()
	s := NewSurface(canvas, 16, 16, 1, 8, 16, black)

	s.FillCircle(1, 1, 1, white)
	s.Flush()
	if canvas.runes[[2]int{0, 0}] != 0x2801 || canvas.runes[[2]int{1, 0}] != ' ' {
		t.Errorf("flushed %v", canvas.runes)
	}
	if canvas.shows != 1 {
		t.Errorf("shows = %d, want 1", canvas.shows)
	}

	s.Clear()
	if r, _ := s.Cell(0, 0); r != ' ' {
		t.Errorf("after Clear rune = %U, want space", r)
	}
}

func TestDetach(t *testing.T) {
	canvas := newRecordingCanvas()
	s := NewSurface(canvas, 16, 16, 1, 8, 16, black)
	s.FillCircle(1, 1, 1, white)

	if err := s.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if canvas.runes[[2]int{0, 0}] != ' ' {
		t.Error("detach should blank the drawn area")
	}

	shows := canvas.shows
	s.FillCircle(1, 1, 1, white)
	s.Flush()
	if canvas.shows != shows {
		t.Error("detached surface drew")
	}
	if err := s.Detach(); !errors.Is(err, ErrDetached) {
		t.Errorf("second Detach = %v, want ErrDetached", err)
	}
}
