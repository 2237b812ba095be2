package ui

import (
	"fmt"
	"image/color"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title         string
	FPS           int32
	Particles     int
	Lines         int
	Executed      int
	Skipped       int
	ReducedMotion bool
	DPR           float64
	Fill          color.NRGBA
	Line          color.NRGBA
	ScreenWidth   int32
	ScreenHeight  int32
}

// HUDActions reports what the user clicked this frame.
type HUDActions struct {
	Reseed bool
}

// HUD renders the stats panel and the reseed button.
type HUD struct {
	renderer *Renderer
	visible  bool
	x, y     int32
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		visible:  true,
		x:        10,
		y:        10,
		width:    240,
	}
}

// Toggle switches HUD visibility.
func (h *HUD) Toggle() bool {
	h.visible = !h.visible
	return h.visible
}

// IsVisible returns whether the HUD is shown.
func (h *HUD) IsVisible() bool {
	return h.visible
}

// Draw renders the HUD and returns the actions triggered this frame.
func (h *HUD) Draw(data HUDData) HUDActions {
	var actions HUDActions
	if !h.visible {
		return actions
	}

	r := h.renderer
	pad := r.Theme.Padding
	x := h.x + pad
	height := r.Theme.LineHeight*9 + pad*3 + 30

	r.DrawPanel(h.x, h.y, h.width, height)

	y := r.DrawSectionHeader(x, h.y+pad, data.Title)
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Links", fmt.Sprintf("%d", data.Lines))
	y = r.DrawLabelValue(x, y, "Frames", fmt.Sprintf("%d run / %d gated", data.Executed, data.Skipped))
	y = r.DrawLabelValue(x, y, "DPR", fmt.Sprintf("%.2f", data.DPR))

	var gated float32
	if total := data.Executed + data.Skipped; total > 0 {
		gated = float32(data.Skipped) / float32(total)
	}
	y = r.DrawBar(x, y, "Gated", gated, 0.9, h.width-pad*2)

	y = r.DrawColorSwatch(x, y, "Fill", data.Fill)
	y = r.DrawColorSwatch(x, y, "Line", data.Line)

	if data.ReducedMotion {
		rl.DrawText("Reduced motion: field paused", x, y, r.Theme.FontSize, r.Theme.SectionHeader)
	}
	y += r.Theme.LineHeight

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 100, Height: 24}, "Reseed") {
		actions.Reseed = true
	}

	return actions
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	if !h.visible {
		return
	}
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
