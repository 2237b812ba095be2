// Package renderer provides the raylib drawing surface for the particle field.
package renderer

import (
	"errors"
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrDetached is returned when a detached surface is detached again.
var ErrDetached = errors.New("renderer: surface detached")

// Surface draws the field into an offscreen render texture at backing
// resolution. The host composites it under the UI each frame with Draw.
type Surface struct {
	target   rl.RenderTexture2D
	w, h     int
	scale    float64
	drawing  bool
	detached bool
}

// NewSurface allocates a render texture of w x h backing pixels.
func NewSurface(w, h int, scale float64) (*Surface, error) {
	s := &Surface{}
	if err := s.load(w, h, scale); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Surface) load(w, h int, scale float64) error {
	// Zero-sized textures fail to allocate; keep at least one pixel
	tw, th := max(w, 1), max(h, 1)
	s.target = rl.LoadRenderTexture(int32(tw), int32(th))
	if s.target.ID == 0 {
		return errors.New("renderer: render texture allocation failed")
	}
	rl.SetTextureFilter(s.target.Texture, rl.FilterBilinear)
	s.w, s.h, s.scale = w, h, scale
	return nil
}

// Resize reallocates the render texture for a new backing size.
func (s *Surface) Resize(w, h int, scale float64) {
	if s.detached {
		return
	}
	if w == s.w && h == s.h {
		s.scale = scale
		return
	}
	s.endDrawing()
	rl.UnloadRenderTexture(s.target)
	if err := s.load(w, h, scale); err != nil {
		// Draw skips a zero-sized surface; the next resize retries
		s.w, s.h, s.scale = 0, 0, scale
	}
}

// Clear starts a new frame on the texture with a transparent background.
func (s *Surface) Clear() {
	if s.detached || s.target.ID == 0 {
		return
	}
	if !s.drawing {
		rl.BeginTextureMode(s.target)
		s.drawing = true
	}
	rl.ClearBackground(rl.Blank)
}

// FillCircle draws a filled circle in backing pixels.
func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	if !s.drawing {
		return
	}
	rl.DrawCircleV(rl.Vector2{X: float32(x), Y: float32(y)}, float32(r), toColor(c))
}

// StrokeLine draws a line segment in backing pixels.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if !s.drawing {
		return
	}
	rl.DrawLineEx(
		rl.Vector2{X: float32(x0), Y: float32(y0)},
		rl.Vector2{X: float32(x1), Y: float32(y1)},
		float32(width),
		toColor(c),
	)
}

// Flush ends the texture frame.
func (s *Surface) Flush() {
	s.endDrawing()
}

func (s *Surface) endDrawing() {
	if s.drawing {
		rl.EndTextureMode()
		s.drawing = false
	}
}

// Draw composites the texture into dst in window coordinates. Render
// textures are stored bottom-up, so the source rectangle flips y.
func (s *Surface) Draw(dst rl.Rectangle) {
	if s.detached || s.w == 0 || s.h == 0 {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(s.w), Height: -float32(s.h)}
	rl.DrawTexturePro(s.target.Texture, src, dst, rl.Vector2{}, 0, rl.White)
}

// Export writes the current texture contents to an image file. The
// format follows the extension, and cleared areas stay transparent.
func (s *Surface) Export(path string) error {
	if s.detached || s.w == 0 || s.h == 0 {
		return ErrDetached
	}
	s.endDrawing()
	img := rl.LoadImageFromTexture(s.target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)
	if !rl.ExportImage(*img, path) {
		return fmt.Errorf("renderer: exporting %s failed", path)
	}
	return nil
}

// Size returns the backing size and scale.
func (s *Surface) Size() (w, h int, scale float64) {
	return s.w, s.h, s.scale
}

// Detach frees the render texture. A second call returns ErrDetached.
func (s *Surface) Detach() error {
	if s.detached {
		return ErrDetached
	}
	s.endDrawing()
	rl.UnloadRenderTexture(s.target)
	s.detached = true
	return nil
}

func toColor(c color.NRGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
